package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/neerajchowdary889/doctx/internal/document"
	"github.com/neerajchowdary889/doctx/internal/engine"
	"github.com/neerajchowdary889/doctx/internal/search"
	"github.com/neerajchowdary889/doctx/internal/store"
)

// Renderer writes formatted engine results to a terminal or pipe.
type Renderer struct {
	out    io.Writer
	styles Styles
}

// NewRenderer creates a renderer. Pass noColor=true when the output is
// not a TTY.
func NewRenderer(out io.Writer, noColor bool) *Renderer {
	return &Renderer{out: out, styles: GetStyles(noColor)}
}

// Success prints a success message.
func (r *Renderer) Success(msg string) {
	fmt.Fprintln(r.out, r.styles.Success.Render("ok")+" "+msg)
}

// Warning prints a warning message.
func (r *Renderer) Warning(msg string) {
	fmt.Fprintln(r.out, r.styles.Warning.Render("warning:")+" "+msg)
}

// Error prints an error message.
func (r *Renderer) Error(msg string) {
	fmt.Fprintln(r.out, r.styles.Error.Render("error:")+" "+msg)
}

// SearchResults renders a ranked result page.
func (r *Renderer) SearchResults(query string, resp *search.Response) {
	if resp == nil || len(resp.Results) == 0 {
		if query != "" {
			fmt.Fprintf(r.out, "No results for %q\n", query)
		} else {
			fmt.Fprintln(r.out, "No documents matched.")
		}
		return
	}

	fmt.Fprintf(r.out, "%s  %s\n\n",
		r.styles.Title.Render(fmt.Sprintf("%d result(s)", resp.TotalMatched)),
		r.styles.Dim.Render(fmt.Sprintf("%.1fms, generation %d", resp.TookMs, resp.Generation)))

	for i, res := range resp.Results {
		doc := res.Document
		line := fmt.Sprintf("%2d. %s", i+1, r.styles.Title.Render(doc.Title))
		if res.Score > 0 {
			line += "  " + r.styles.Score.Render(fmt.Sprintf("(%.3f)", res.Score))
		}
		fmt.Fprintln(r.out, line)
		fmt.Fprintln(r.out, "    "+r.styles.Path.Render(doc.Key))
		if len(doc.Tags) > 0 {
			fmt.Fprintln(r.out, "    "+r.styles.Tag.Render(strings.Join(doc.Tags, ", ")))
		}
		if doc.Excerpt != "" {
			fmt.Fprintln(r.out, "    "+r.styles.Excerpt.Render(doc.Excerpt))
		}
		fmt.Fprintln(r.out)
	}
}

// Document renders one document's metadata and body.
func (r *Renderer) Document(doc *document.Document, includeBody bool) {
	fmt.Fprintln(r.out, r.styles.Title.Render(doc.Title))
	fmt.Fprintln(r.out, r.styles.Path.Render(doc.Key))
	fmt.Fprintf(r.out, "%s %s | %d words | %d bytes\n",
		r.styles.Label.Render("type:"), doc.FileType, doc.WordCount, doc.Size)
	fmt.Fprintf(r.out, "%s %s\n",
		r.styles.Label.Render("modified:"), doc.ModifiedAt.Format(time.RFC3339))
	if len(doc.Tags) > 0 {
		fmt.Fprintf(r.out, "%s %s\n",
			r.styles.Label.Render("tags:"), strings.Join(doc.Tags, ", "))
	}
	if doc.Metadata.Description != "" {
		fmt.Fprintf(r.out, "%s %s\n",
			r.styles.Label.Render("description:"), doc.Metadata.Description)
	}
	if includeBody {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, doc.Body)
	} else if doc.Excerpt != "" {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, r.styles.Excerpt.Render(doc.Excerpt))
	}
}

// DocumentList renders a key-ordered listing.
func (r *Renderer) DocumentList(docs []*document.Document) {
	if len(docs) == 0 {
		fmt.Fprintln(r.out, "No documents indexed.")
		return
	}
	for _, doc := range docs {
		line := r.styles.Path.Render(doc.Key) + "  " + doc.Title
		if len(doc.Tags) > 0 {
			line += "  " + r.styles.Tag.Render("["+strings.Join(doc.Tags, ", ")+"]")
		}
		fmt.Fprintln(r.out, line)
	}
}

// Tags renders the tag histogram.
func (r *Renderer) Tags(tags []store.TagCount) {
	if len(tags) == 0 {
		fmt.Fprintln(r.out, "No tags found.")
		return
	}
	for _, tc := range tags {
		fmt.Fprintf(r.out, "%s %d\n", r.styles.Tag.Render(tc.Tag), tc.Count)
	}
}

// Stats renders index statistics.
func (r *Renderer) Stats(st engine.Stats) {
	fmt.Fprintln(r.out, r.styles.Title.Render("Index Statistics"))
	r.statLine("status", string(st.Status))
	r.statLine("documents", fmt.Sprintf("%d", st.Documents))
	r.statLine("terms", fmt.Sprintf("%d", st.Terms))
	r.statLine("words", fmt.Sprintf("%d", st.TotalWords))
	r.statLine("size", fmt.Sprintf("%d bytes", st.TotalBytes))
	r.statLine("tags", fmt.Sprintf("%d", st.Tags))
	r.statLine("generation", fmt.Sprintf("%d", st.Generation))
	if st.WatcherType != "" {
		r.statLine("watcher", st.WatcherType)
	}
	if !st.LastUpdate.IsZero() {
		r.statLine("last update", st.LastUpdate.Format(time.RFC3339))
	}
	if st.Queries.TotalQueries > 0 {
		r.statLine("queries", fmt.Sprintf("%d (%d cached, avg %.1fms)",
			st.Queries.TotalQueries, st.Queries.CacheHits, st.Queries.AvgLatencyMs))
	}

	if len(st.FileTypes) > 0 {
		exts := make([]string, 0, len(st.FileTypes))
		for ext := range st.FileTypes {
			exts = append(exts, ext)
		}
		sort.Strings(exts)
		fmt.Fprintln(r.out)
		for _, ext := range exts {
			r.statLine(ext, fmt.Sprintf("%d", st.FileTypes[ext]))
		}
	}
}

func (r *Renderer) statLine(label, value string) {
	fmt.Fprintf(r.out, "  %s %s\n", r.styles.Label.Render(label+":"), value)
}
