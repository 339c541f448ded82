package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func routesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Show where clicking each node navigates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, source, err := a.loadCatalog(cmd.Context())
			if err != nil {
				return fmt.Errorf("load catalog %s: %w", source, err)
			}

			rows := make([][]string, 0, len(cat.Nodes))
			for _, n := range cat.Nodes {
				route, ok := a.cfg.Routes.Resolve(n.ID)
				if !ok {
					route = Subtle.Sprint("-")
				}
				rows = append(rows, []string{n.ID, n.Label, route})
			}
			table(cmd.OutOrStdout(), []string{"NODE", "LABEL", "ROUTE"}, rows)
			return nil
		},
	}
}
