package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/almanac/pkg/lunar"
	"github.com/mesh-intelligence/almanac/pkg/types"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.jsonl>",
		Short: "Write all members to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			b, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if derr := b.Detach(); derr != nil && err == nil {
					err = sysError("detach backend: %w", derr)
				}
			}()
			n, err := b.ExportMembers(cmd.Context(), args[0])
			if err != nil {
				return sysError("export: %w", err)
			}
			return reportCount(cmd, a, "exported", n)
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.jsonl>",
		Short: "Add or update members from a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			b, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if derr := b.Detach(); derr != nil && err == nil {
					err = sysError("detach backend: %w", derr)
				}
			}()
			n, err := b.ImportMembers(cmd.Context(), args[0])
			switch {
			case errors.Is(err, os.ErrNotExist),
				errors.Is(err, lunar.ErrDecode),
				errors.Is(err, types.ErrInvalidName),
				errors.Is(err, types.ErrInvalidData):
				return userError("import (%d applied): %w", n, err)
			case err != nil:
				return sysError("import (%d applied): %w", n, err)
			}
			return reportCount(cmd, a, "imported", n)
		},
	}
}

func reportCount(cmd *cobra.Command, a *app, verb string, n int) error {
	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]int{verb: n})
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %d members\n", verb, n)
	return err
}
