package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"coremap/internal/catalog"
	"coremap/internal/catalog/sqlite"

	"github.com/spf13/cobra"
)

func exportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Convert the catalog to another format",
		Long: `Write the configured catalog to file. The format follows the extension:
.yaml, .yml, .json, .toml or .db (SQLite, replacing its contents).`,
		Example: `  coremap export map.toml
  coremap --catalog map.yaml export map.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dst := args[0]

			cat, source, err := a.loadCatalog(cmd.Context())
			if err != nil {
				return fmt.Errorf("load catalog %s: %w", source, err)
			}
			if err := cat.Validate(); err != nil {
				return fmt.Errorf("catalog %s: %w", source, err)
			}

			switch strings.ToLower(filepath.Ext(dst)) {
			case ".db", ".sqlite", ".sqlite3":
				db, err := sqlite.New(dst)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.Import(cmd.Context(), cat); err != nil {
					return err
				}
			default:
				if err := catalog.WriteFile(dst, cat); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s → %s\n", statusIcon(true), catalogSummary(cat, source), dst)
			return nil
		},
	}
}
