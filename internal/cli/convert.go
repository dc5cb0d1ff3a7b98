package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// conversion is the output of the convert command.
type conversion struct {
	Lunar   string `json:"lunar"`
	Encoded string `json:"encoded"`
	Solar   string `json:"solar"`
}

func newConvertCmd(a *app) *cobra.Command {
	var lunarVal, solarVal string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert between lunar and Gregorian dates",
		Long: `Convert prints a date in lunar, encoded and Gregorian form.

Example:
  almanac convert --lunar 2018-05-03
  almanac convert --lunar 2020-L04-01
  almanac convert --solar 2020-05-23`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseBirthday(lunarVal, solarVal)
			if err != nil {
				return userError("invalid date: %w", err)
			}
			c := conversion{Lunar: d.String(), Encoded: d.Encode(), Solar: solarString(d)}
			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return writeJSON(out, c)
			}
			fmt.Fprintf(out, "lunar:   %s\nencoded: %s\nsolar:   %s\n", c.Lunar, c.Encoded, c.Solar)
			return nil
		},
	}
	cmd.Flags().StringVar(&lunarVal, "lunar", "", "lunar date, e.g. 2018-05-03 or 2020-L04-01")
	cmd.Flags().StringVar(&solarVal, "solar", "", "Gregorian date, e.g. 2018-06-16")
	cmd.MarkFlagsMutuallyExclusive("lunar", "solar")
	cmd.MarkFlagsOneRequired("lunar", "solar")
	return cmd
}
