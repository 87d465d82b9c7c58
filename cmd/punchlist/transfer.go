package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ganot/punchlist/internal/transfer"
	"github.com/spf13/cobra"
)

func exportCommand(c *cli) *cobra.Command {
	var projectID, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a project's checkpoint data as JSON",
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
			bundle, err := transfer.Export(a.Projects, a.Ledger, a.Catalog, pid, time.Now())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := transfer.Write(w, bundle); err != nil {
				return err
			}
			c.logger.Info("project exported", "project_id", pid, "overlays", len(bundle.Overlays))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "project id (defaults to the active project)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (defaults to stdout)")
	return cmd
}

func importCommand(c *cli) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "import [bundle.json]",
		Short: "Replace a project's checkpoint data from an exported bundle",
		Long: `Replace a project's checkpoint data from an exported bundle.
The bundle's project is created when it does not exist yet. Reads stdin when
no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open bundle: %w", err)
				}
				defer f.Close()
				r = f
			}
			bundle, err := transfer.Read(r)
			if err != nil {
				return err
			}

			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := transfer.Import(cmd.Context(), a.Projects, a.Ledger, a.Catalog, bundle, projectID)
			if err != nil {
				return err
			}
			for _, id := range res.Unknown {
				c.logger.Warn("imported overlay for unknown checkpoint", "checkpoint_id", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d overlays into %s\n", res.Overlays, res.ProjectID)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "target project id (defaults to the bundled project)")
	return cmd
}
