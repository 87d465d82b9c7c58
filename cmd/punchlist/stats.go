package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ganot/punchlist/internal/domain/catalog"
	"github.com/ganot/punchlist/internal/domain/checkpoint"
	"github.com/spf13/cobra"
)

func statsCommand(c *cli) *cobra.Command {
	var projectID, phase string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print completion stats of a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			pid, err := resolveProject(a, projectID)
			if err != nil {
				return err
			}
			proj, err := a.Projects.Get(pid)
			if err != nil {
				return err
			}

			p := catalog.Phase(phase)
			if phase == "" {
				p = a.Preferences.Get().Phase
			}
			if !p.Valid() {
				return fmt.Errorf("invalid phase %q", phase)
			}

			stats := checkpoint.Stats(a.Catalog, a.Ledger, pid, p)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s), %s phase\n\n", proj.Title, proj.ID, p)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tDONE\tTOTAL\tDEFECTS\tPROGRESS")
			for _, cs := range stats.Categories {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d%%\n", cs.CategoryID, cs.Completed, cs.Total, cs.Defects, cs.Percentage)
			}
			fmt.Fprintf(w, "total\t%d\t%d\t%d\t%d%%\n", stats.Completed, stats.Total, stats.Defects, stats.Percentage)
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "project id (defaults to the active project)")
	cmd.Flags().StringVar(&phase, "phase", "", "draft or finish (defaults to the selected phase)")
	return cmd
}
