package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ganot/punchlist/internal/config"
	"github.com/ganot/punchlist/internal/mcp"
	"github.com/ganot/punchlist/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func serveCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio or streamable HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := c.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			mcpServer := mcp.NewServer(mcp.Config{
				Services:      a.Services(),
				TransportMode: c.cfg.Transport.Mode,
				Version:       version,
				Logger:        c.logger,
			})

			if c.cfg.Transport.Mode == config.TransportStdio {
				return runStdioMode(ctx, c.logger, mcpServer)
			}
			return runHTTPMode(ctx, c.logger, mcpServer, c.cfg.Server)
		},
	}

	cmd.Flags().String("transport", "", "stdio or http")
	cmd.Flags().String("host", "", "HTTP listen host")
	cmd.Flags().Int("port", 0, "HTTP listen port")
	return cmd
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport")

	// Run blocks until stdin closes or the context is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		return err
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server, cfg config.ServerConfig) error {
	var auth func(http.Handler) http.Handler
	if cfg.AuthToken != "" {
		auth = transport.BearerAuth(cfg.AuthToken)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(transport.NewMCPHandler(mcpServer), auth, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "auth", cfg.AuthToken != "")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
