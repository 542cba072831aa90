// Package cmd provides the CLI commands for doctx.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/neerajchowdary889/doctx/internal/config"
	"github.com/neerajchowdary889/doctx/internal/logging"
	"github.com/neerajchowdary889/doctx/internal/profiling"
	"github.com/neerajchowdary889/doctx/pkg/version"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	root       string
	debug      bool
	noColor    bool
	cpuProfile string
	memProfile string

	loggingCleanup func()
	profile        *profiling.Session
}

// NewRootCmd creates the root command for the doctx CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "doctx",
		Short: "Document context engine with full-text search over MCP",
		Long: `doctx indexes a tree of Markdown, plain-text and reStructuredText
documents, keeps the index synchronized as files change, and answers
ranked full-text queries.

Run 'doctx serve' inside a document tree to expose the index as MCP
tools, or use 'doctx search' directly from the shell.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("doctx version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&opts.root, "root", "r", ".", "Document root directory")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging to ~/.doctx/logs/")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().StringVar(&opts.cpuProfile, "cpu-profile", "", "Write a CPU profile to this file")
	cmd.PersistentFlags().StringVar(&opts.memProfile, "mem-profile", "", "Write a heap profile to this file on exit")
	_ = cmd.PersistentFlags().MarkHidden("cpu-profile")
	_ = cmd.PersistentFlags().MarkHidden("mem-profile")

	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		session, err := profiling.Start(opts.cpuProfile, opts.memProfile)
		if err != nil {
			return err
		}
		opts.profile = session

		if !opts.debug {
			return nil
		}
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("setup debug logging: %w", err)
		}
		opts.loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Info("debug logging enabled", slog.String("log_file", logging.DefaultLogPath()))
		return nil
	}
	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		if opts.loggingCleanup != nil {
			opts.loggingCleanup()
			opts.loggingCleanup = nil
		}
		return opts.profile.Stop()
	}

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newInitCmd(opts))
	cmd.AddCommand(newIndexCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newStatsCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig builds the effective configuration for the chosen root.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.root)
	if err != nil {
		return nil, err
	}
	if o.debug {
		cfg.Server.LogLevel = "debug"
	}
	return cfg, nil
}
