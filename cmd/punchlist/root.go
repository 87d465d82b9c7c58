package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ganot/punchlist/internal/app"
	"github.com/ganot/punchlist/internal/config"
	"github.com/spf13/cobra"
)

// cli carries state shared by every subcommand.
type cli struct {
	cfg     config.Config
	logger  *slog.Logger
	logFile io.Closer

	// flag values; applied over cfg only when set on the command line
	dbPath    string
	ephemeral bool
	catalog   string
	logLevel  string
}

func rootCommand() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "punchlist",
		Short:         "Apartment inspection checklist server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.dbPath, "db", "", "SQLite database path")
	flags.BoolVar(&c.ephemeral, "ephemeral", false, "keep all state in memory")
	flags.StringVar(&c.catalog, "catalog", "", "catalog YAML replacing the embedded dataset")
	flags.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return c.initialize(cmd)
	}
	rootCmd.PersistentPostRun = func(*cobra.Command, []string) {
		if c.logFile != nil {
			_ = c.logFile.Close()
		}
	}

	rootCmd.AddCommand(
		serveCommand(c),
		statsCommand(c),
		exportCommand(c),
		importCommand(c),
		catalogCommand(c),
		searchCommand(c),
	)
	return rootCmd
}

func (c *cli) initialize(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DB.Path = c.dbPath
	}
	if flags.Changed("ephemeral") {
		cfg.DB.Ephemeral = c.ephemeral
	}
	if flags.Changed("catalog") {
		cfg.Catalog.Path = c.catalog
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = c.logLevel
	}
	if flags.Changed("transport") {
		cfg.Transport.Mode, _ = flags.GetString("transport")
	}
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC,
	// and for the one-shot commands whose stdout is their output.
	logWriter := io.Writer(os.Stderr)
	if cmd.Name() == "serve" && cfg.Transport.Mode == config.TransportHTTP {
		logWriter = os.Stdout
	}
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			c.logFile = file
			logWriter = fileWriter
		}
	}
	c.logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	return nil
}

func (c *cli) openApp(ctx context.Context) (*app.App, error) {
	a, err := app.Open(ctx, app.Options{
		DBPath:      c.cfg.DB.Path,
		Ephemeral:   c.cfg.DB.Ephemeral,
		CatalogPath: c.cfg.Catalog.Path,
		Logger:      c.logger,
	})
	if err != nil {
		c.logger.Error("failed to open punchlist", "error", err)
		return nil, err
	}
	return a, nil
}

// resolveProject returns projectID, falling back to the active project.
func resolveProject(a *app.App, projectID string) (string, error) {
	if projectID != "" {
		return projectID, nil
	}
	if active := a.Projects.Active(); active != nil {
		return active.ID, nil
	}
	return "", fmt.Errorf("no active project; pass --project")
}
