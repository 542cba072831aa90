package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neerajchowdary889/doctx/internal/engine"
	"github.com/neerajchowdary889/doctx/internal/logging"
	mcpserver "github.com/neerajchowdary889/doctx/internal/mcp"
	"github.com/neerajchowdary889/doctx/internal/preflight"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the document index as MCP tools over stdio",
		Long: `Serve indexes the document root, keeps the index synchronized as
files change, and speaks the Model Context Protocol on stdin/stdout.

Stdout carries the protocol, so all logging goes to a file and stderr.
Point an MCP client at this command, for example:

  {"command": "doctx", "args": ["serve", "--root", "/path/to/docs"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	// Stdout belongs to the JSON-RPC stream from here on.
	logCfg := logging.Config{
		Level:         cfg.Server.LogLevel,
		FilePath:      cfg.Server.LogFile,
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: false,
	}
	if logCfg.FilePath == "" {
		logCfg.FilePath = logging.DefaultLogPath()
	}
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer cleanup()
	slog.SetDefault(logger)

	checks := preflight.Run(cfg.Root, cfg.DataDir())
	for _, c := range checks {
		if c.Status != preflight.StatusPass {
			logger.Warn("preflight check",
				slog.String("name", c.Name),
				slog.String("status", c.Status.String()),
				slog.String("message", c.Message))
		}
	}
	if preflight.HasCriticalFailure(checks) {
		return fmt.Errorf("preflight checks failed; see log at %s", logCfg.FilePath)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := engine.New(cfg, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.Start(ctx); err != nil {
		return err
	}

	stats, _ := eng.Stats()
	logger.Info("engine ready",
		slog.String("root", cfg.Root),
		slog.Int("documents", stats.Documents),
		slog.String("watcher", stats.WatcherType))

	srv, err := mcpserver.NewServer(eng, cfg, logger)
	if err != nil {
		return fmt.Errorf("create mcp server: %w", err)
	}
	if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
