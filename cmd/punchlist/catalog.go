package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ganot/punchlist/internal/domain/catalog"
	"github.com/spf13/cobra"
)

func catalogCommand(c *cli) *cobra.Command {
	var categoryID, phase string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List catalog categories, or the checkpoints of one category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(c.cfg.Catalog.Path)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			if categoryID == "" {
				fmt.Fprintf(w, "catalog %s\n", cat.Version())
				fmt.Fprintln(w, "CATEGORY\tTITLE\tDRAFT\tFINISH")
				for _, s := range cat.Categories() {
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", s.ID, s.Title, s.DraftCount, s.FinishCount)
				}
				return w.Flush()
			}

			if !cat.HasCategory(categoryID) {
				return fmt.Errorf("%w: %s", catalog.ErrCategoryNotFound, categoryID)
			}
			phases := catalog.Phases
			if phase != "" {
				p := catalog.Phase(phase)
				if !p.Valid() {
					return fmt.Errorf("invalid phase %q", phase)
				}
				phases = []catalog.Phase{p}
			}
			fmt.Fprintln(w, "PHASE\tID\tTITLE\tTOLERANCE")
			for _, p := range phases {
				for _, def := range cat.Slice(categoryID, p) {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p, def.ID, def.Title, def.Tolerance)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&categoryID, "category", "", "category to list")
	cmd.Flags().StringVar(&phase, "phase", "", "restrict to draft or finish")
	return cmd
}

func searchCommand(c *cli) *cobra.Command {
	var categoryID, phase string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			hits, err := a.Index.Search(cmd.Context(), args[0], catalog.SearchOptions{
				CategoryID: categoryID,
				Phase:      catalog.Phase(phase),
				Limit:      limit,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCATEGORY\tPHASE\tTITLE")
			for _, h := range hits {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.CheckpointID, h.CategoryID, h.Phase, h.Title)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&categoryID, "category", "", "restrict to one category")
	cmd.Flags().StringVar(&phase, "phase", "", "restrict to draft or finish")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results")
	return cmd
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}
