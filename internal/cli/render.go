package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"coremap/internal/domain"
	"coremap/internal/interaction"
	"coremap/internal/render"

	"github.com/spf13/cobra"
)

func renderCmd(a *app) *cobra.Command {
	var (
		out      string
		format   string
		hover    string
		maxTicks int
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Settle the layout and write it as SVG",
		Example: `  coremap render -o map.svg
  coremap render --hover MEMORY_CORE -o memory.svg
  coremap render --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, _, err := a.layout(cmd.Context(), maxTicks)
			if err != nil {
				return err
			}

			var st domain.InteractionState
			if hover != "" {
				known := false
				for _, n := range snap.Nodes {
					known = known || n.ID == hover
				}
				if !known {
					return fmt.Errorf("hover: %w: %s", domain.ErrNotFound, hover)
				}
				st = domain.InteractionState{Hovered: hover, Highlighted: interaction.Neighborhood(snap.Edges, hover)}
			}
			scene := render.Compose(snap, st, a.cfg.Style())

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "svg":
				err = render.SVG(w, scene)
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				err = enc.Encode(scene)
			default:
				return fmt.Errorf("unknown format %q (svg, json)", format)
			}
			if err != nil {
				return err
			}
			if out != "" && out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s wrote %s\n", statusIcon(true), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "svg", "Output format: svg, json")
	cmd.Flags().StringVar(&hover, "hover", "", "Render with this node hovered")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", defaultMaxTicks, "Stop the layout after this many ticks")
	return cmd
}
