package cmd

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/neerajchowdary889/doctx/internal/engine"
	"github.com/neerajchowdary889/doctx/internal/ui"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print index statistics for the document root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, opts, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func runStats(cmd *cobra.Command, opts *rootOptions, jsonOut bool) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	cfg.Watch.Enabled = false

	eng, err := engine.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.Start(cmd.Context()); err != nil {
		return err
	}

	stats, err := eng.Stats()
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	ui.NewRenderer(cmd.OutOrStdout(), opts.noColor).Stats(stats)
	return nil
}
