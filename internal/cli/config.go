package cli

import (
	"errors"
	"fmt"
	"os"

	"coremap/internal/config"

	"github.com/spf13/cobra"
)

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}
	cmd.AddCommand(configInitCmd(), configShowCmd(a))
	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default config",
		Long: `Write the default configuration to path, or to the user config
location ($XDG_CONFIG_HOME/coremap/config.yaml) when no path is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", statusIcon(true), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func configShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if a.cfgPath == "" {
				Subtle.Fprintln(out, "No config file found, using defaults. Searched:")
				for _, p := range config.SearchPaths() {
					Subtle.Fprintf(out, "  %s\n", p)
				}
			} else {
				fmt.Fprintf(out, "%s %s\n", statusIcon(true), a.cfgPath)
			}
			fmt.Fprintln(out, a.cfg.Summary())
			return nil
		},
	}
}
