package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/neerajchowdary889/doctx/internal/engine"
	"github.com/neerajchowdary889/doctx/internal/search"
	"github.com/neerajchowdary889/doctx/internal/ui"
)

type searchOptions struct {
	tags     []string
	path     string
	fileType string
	since    string
	limit    int
	offset   int
	sortBy   string
	order    string
	format   string
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	sopts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the document tree from the command line",
		Long: `Search scans the document root, runs one ranked query against it, and
prints the results. With no query, all documents matching the filters
are listed.

Examples:
  doctx search "install guide"
  doctx search deploy --tags ops --limit 5
  doctx search --tags draft --sort-by modified --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			return runSearch(cmd, opts, sopts, query)
		},
	}

	cmd.Flags().StringSliceVarP(&sopts.tags, "tags", "t", nil, "Filter to documents with any of these tags")
	cmd.Flags().StringVar(&sopts.path, "path", "", "Filter to keys containing this substring")
	cmd.Flags().StringVar(&sopts.fileType, "file-type", "", "Filter to one extension, e.g. .md")
	cmd.Flags().StringVar(&sopts.since, "since", "", "Filter to documents modified at or after this RFC3339 time")
	cmd.Flags().IntVarP(&sopts.limit, "limit", "n", 10, "Maximum results to show")
	cmd.Flags().IntVar(&sopts.offset, "offset", 0, "Results to skip, for pagination")
	cmd.Flags().StringVar(&sopts.sortBy, "sort-by", "relevance", "Sort by: relevance, modified, created, title")
	cmd.Flags().StringVar(&sopts.order, "order", "desc", "Sort order: asc or desc")
	cmd.Flags().StringVarP(&sopts.format, "format", "f", "text", "Output format: text or json")

	return cmd
}

func runSearch(cmd *cobra.Command, opts *rootOptions, sopts *searchOptions, query string) error {
	if sopts.format != "text" && sopts.format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", sopts.format)
	}

	req := search.Request{
		Query:        query,
		Tags:         sopts.tags,
		PathContains: sopts.path,
		FileType:     sopts.fileType,
		Limit:        sopts.limit,
		Offset:       sopts.offset,
		SortBy:       search.ParseSortBy(sopts.sortBy),
		SortOrder:    search.ParseSortOrder(sopts.order),
	}
	if sopts.since != "" {
		ts, err := time.Parse(time.RFC3339, sopts.since)
		if err != nil {
			return fmt.Errorf("parse --since: %w", err)
		}
		req.Since = ts
	}
	if query == "" && len(sopts.tags) == 0 && sopts.path == "" && sopts.fileType == "" && sopts.since == "" {
		return fmt.Errorf("nothing to search for: give a query or at least one filter")
	}

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

	resp, err := eng.Search(cmd.Context(), req)
	if err != nil {
		return err
	}

	if sopts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	r := ui.NewRenderer(cmd.OutOrStdout(), opts.noColor)
	label := query
	if label == "" {
		label = strings.Join(sopts.tags, ", ")
	}
	r.SearchResults(label, resp)
	return nil
}
