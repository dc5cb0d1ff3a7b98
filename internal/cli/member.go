package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/almanac/pkg/lunar"
	"github.com/mesh-intelligence/almanac/pkg/types"
)

// memberView is the output form of a member.
type memberView struct {
	MemberID     string     `json:"member_id"`
	Name         string     `json:"name"`
	Birthday     lunar.Date `json:"birthday"`
	Lunar        string     `json:"lunar"`
	Solar        string     `json:"solar"`
	NextBirthday string     `json:"next_birthday,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func viewMember(m *types.Member, now time.Time) memberView {
	v := memberView{
		MemberID:  m.MemberID,
		Name:      m.Name,
		Birthday:  m.Birthday,
		Lunar:     m.Birthday.String(),
		Solar:     solarString(m.Birthday),
		CreatedAt: m.CreatedAt,
	}
	if next, err := m.NextBirthday(now); err == nil {
		v.NextBirthday = next.Format(time.DateOnly)
	}
	return v
}

func solarString(d lunar.Date) string {
	return d.Time(time.UTC).Format(time.DateOnly)
}

// parseBirthday reads a birthday given either as a lunar date
// (2018-05-03, 2020-L04-01) or as a Gregorian date.
func parseBirthday(lunarVal, solarVal string) (lunar.Date, error) {
	if lunarVal != "" {
		return lunar.Parse(lunarVal)
	}
	t, err := time.Parse(time.DateOnly, solarVal)
	if err != nil {
		return lunar.Date{}, err
	}
	return lunar.FromTime(t)
}

func newMemberCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage members and their lunar birthdays",
	}
	cmd.AddCommand(newMemberAddCmd(a))
	cmd.AddCommand(newMemberGetCmd(a))
	cmd.AddCommand(newMemberListCmd(a))
	cmd.AddCommand(newMemberDeleteCmd(a))
	return cmd
}

func newMemberAddCmd(a *app) *cobra.Command {
	var name, birthday, solar string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a member",
		Long: `Add stores a member with a lunar birthday.

Example:
  almanac member add --name "Li Wei" --birthday 2018-05-03
  almanac member add --name "Wang Fang" --birthday 2020-L04-01
  almanac member add --name "Zhang San" --solar 2018-06-16`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseBirthday(birthday, solar)
			if err != nil {
				return userError("invalid birthday: %w", err)
			}
			m := &types.Member{Name: name, Birthday: d}
			return a.withMembers(cmd.Context(), func(tbl types.Table) error {
				if _, err := tbl.Set("", m); err != nil {
					return tableError("add member", err)
				}
				out := cmd.OutOrStdout()
				if a.flags.jsonMode {
					return writeJSON(out, viewMember(m, time.Now()))
				}
				fmt.Fprintf(out, "Created member: %s\n", m.MemberID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "member name (required)")
	cmd.Flags().StringVar(&birthday, "birthday", "", "lunar birthday, e.g. 2018-05-03 or 2020-L04-01")
	cmd.Flags().StringVar(&solar, "solar", "", "Gregorian birthday, e.g. 2018-06-16")
	_ = cmd.MarkFlagRequired("name")
	cmd.MarkFlagsMutuallyExclusive("birthday", "solar")
	cmd.MarkFlagsOneRequired("birthday", "solar")
	return cmd
}

func newMemberGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <member-id>",
		Short: "Show a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withMembers(cmd.Context(), func(tbl types.Table) error {
				e, err := tbl.Get(args[0])
				if err != nil {
					return tableError("get member", err)
				}
				v := viewMember(e.(*types.Member), time.Now())
				out := cmd.OutOrStdout()
				if a.flags.jsonMode {
					return writeJSON(out, v)
				}
				fmt.Fprintf(out, "ID:            %s\n", v.MemberID)
				fmt.Fprintf(out, "Name:          %s\n", v.Name)
				fmt.Fprintf(out, "Birthday:      %s (%s)\n", v.Lunar, v.Solar)
				if v.NextBirthday != "" {
					fmt.Fprintf(out, "Next birthday: %s\n", v.NextBirthday)
				}
				return nil
			})
		},
	}
}

func newMemberListCmd(a *app) *cobra.Command {
	var (
		name        string
		year, month int
		leap        bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List members in birthday order",
		Long: `List shows members ordered by lunar birthday.

Example:
  almanac member list
  almanac member list --year 2020 --month 4 --leap`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := map[string]any{}
			flags := cmd.Flags()
			if flags.Changed("name") {
				filter[types.FilterName] = name
			}
			if flags.Changed("year") {
				filter[types.FilterYear] = year
			}
			if flags.Changed("month") {
				filter[types.FilterMonth] = month
			}
			if flags.Changed("leap") {
				filter[types.FilterLeap] = leap
			}
			return a.withMembers(cmd.Context(), func(tbl types.Table) error {
				entities, err := tbl.Fetch(filter)
				if err != nil {
					return tableError("list members", err)
				}
				now := time.Now()
				views := make([]memberView, len(entities))
				for i, e := range entities {
					views[i] = viewMember(e.(*types.Member), now)
				}
				if a.flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), views)
				}
				return printMembers(cmd.OutOrStdout(), views)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "filter by name")
	cmd.Flags().IntVar(&year, "year", 0, "filter by lunar birth year")
	cmd.Flags().IntVar(&month, "month", 0, "filter by lunar birth month")
	cmd.Flags().BoolVar(&leap, "leap", false, "filter by leap month (--leap=false for regular months)")
	return cmd
}

func printMembers(w io.Writer, views []memberView) error {
	if len(views) == 0 {
		_, err := fmt.Fprintln(w, "No members found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLUNAR\tSOLAR")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.MemberID, v.Name, v.Lunar, v.Solar)
	}
	return tw.Flush()
}

func newMemberDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <member-id>",
		Short: "Delete a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withMembers(cmd.Context(), func(tbl types.Table) error {
				if err := tbl.Delete(args[0]); err != nil {
					return tableError("delete member", err)
				}
				if !a.flags.jsonMode {
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted member: %s\n", args[0])
				}
				return nil
			})
		},
	}
}
