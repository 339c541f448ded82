package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the catalog builds into a graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cat, source, err := a.loadCatalog(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "%s %s\n", statusIcon(false), source)
				return err
			}
			if err := cat.Validate(); err != nil {
				fmt.Fprintf(out, "%s %s\n", statusIcon(false), catalogSummary(cat, source))
				return err
			}

			fmt.Fprintf(out, "%s %s\n", statusIcon(true), catalogSummary(cat, source))
			for _, id := range cat.Unknown() {
				Warn.Fprintf(out, "  ! %s has an unknown category and renders as a circle\n", id)
			}
			Subtle.Fprintf(out, "  fingerprint %s\n", cat.Fingerprint())
			return nil
		},
	}
}
