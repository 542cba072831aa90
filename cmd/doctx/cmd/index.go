package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/neerajchowdary889/doctx/internal/engine"
	"github.com/neerajchowdary889/doctx/internal/ui"
)

func newIndexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Scan the document root once and report what was indexed",
		Long: `Index performs a one-shot warm scan of the document root without
starting the watcher or the server, then prints index statistics. Use
it to validate a tree before serving it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd, opts)
		},
	}
}

func runIndex(cmd *cobra.Command, opts *rootOptions) error {
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

	start := time.Now()
	if err := eng.Start(cmd.Context()); err != nil {
		return err
	}
	elapsed := time.Since(start)

	stats, err := eng.Stats()
	if err != nil {
		return err
	}

	r := ui.NewRenderer(cmd.OutOrStdout(), opts.noColor)
	r.Success(fmt.Sprintf("indexed %d document(s) in %s", stats.Documents, elapsed.Round(time.Millisecond)))
	fmt.Fprintln(cmd.OutOrStdout())
	r.Stats(stats)

	if health := eng.Health(); health.ParseFailures > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		r.Warning(fmt.Sprintf("%d file(s) failed to parse:", health.ParseFailures))
		for _, path := range health.SampleFailures {
			fmt.Fprintln(cmd.OutOrStdout(), "  "+path)
		}
	}
	return nil
}
