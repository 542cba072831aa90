package mcp

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/neerajchowdary889/doctx/internal/document"
	"github.com/neerajchowdary889/doctx/internal/engine"
	"github.com/neerajchowdary889/doctx/internal/search"
	"github.com/neerajchowdary889/doctx/internal/store"
)

// FormatSearchResults formats a query response as markdown.
func FormatSearchResults(query string, resp *search.Response) string {
	if resp == nil || len(resp.Results) == 0 {
		if query == "" {
			return "No documents matched the given filters."
		}
		return fmt.Sprintf("No results found for %q", query)
	}

	var sb strings.Builder
	if query != "" {
		fmt.Fprintf(&sb, "## Search Results for %q\n\n", query)
	} else {
		sb.WriteString("## Matching Documents\n\n")
	}
	fmt.Fprintf(&sb, "Showing %d of %d match", len(resp.Results), resp.TotalMatched)
	if resp.TotalMatched != 1 {
		sb.WriteString("es")
	}
	fmt.Fprintf(&sb, " (%.1fms)\n\n", resp.TookMs)

	for i, r := range resp.Results {
		formatHit(&sb, i+1, r)
	}
	return sb.String()
}

func formatHit(sb *strings.Builder, num int, r search.Result) {
	doc := r.Document
	if doc == nil {
		return
	}

	fmt.Fprintf(sb, "### %d. %s\n", num, doc.Title)
	fmt.Fprintf(sb, "**Path:** `%s`", doc.Key)
	if r.Score > 0 {
		fmt.Fprintf(sb, " | **Score:** %.3f", r.Score)
	}
	sb.WriteString("\n")

	if len(doc.Tags) > 0 {
		fmt.Fprintf(sb, "**Tags:** %s\n", strings.Join(doc.Tags, ", "))
	}
	if len(r.MatchedTerms) > 0 {
		fmt.Fprintf(sb, "**Matched:** %s\n", strings.Join(r.MatchedTerms, ", "))
	}
	if doc.Excerpt != "" {
		fmt.Fprintf(sb, "\n> %s\n", doc.Excerpt)
	}
	sb.WriteString("\n")
}

// FormatDocument formats one document as markdown. The body is included
// only when requested; metadata and excerpt always are.
func FormatDocument(doc *document.Document, includeBody bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", doc.Title)
	fmt.Fprintf(&sb, "**Path:** `%s`\n", doc.Key)
	fmt.Fprintf(&sb, "**Type:** %s | **Words:** %d | **Size:** %d bytes\n",
		doc.FileType, doc.WordCount, doc.Size)
	fmt.Fprintf(&sb, "**Modified:** %s\n", doc.ModifiedAt.Format(time.RFC3339))

	if len(doc.Tags) > 0 {
		fmt.Fprintf(&sb, "**Tags:** %s\n", strings.Join(doc.Tags, ", "))
	}
	if doc.Metadata.Description != "" {
		fmt.Fprintf(&sb, "**Description:** %s\n", doc.Metadata.Description)
	}
	if doc.Metadata.Author != "" {
		fmt.Fprintf(&sb, "**Author:** %s\n", doc.Metadata.Author)
	}
	if doc.Metadata.Version != "" {
		fmt.Fprintf(&sb, "**Version:** %s\n", doc.Metadata.Version)
	}
	if len(doc.Metadata.Custom) > 0 {
		keys := make([]string, 0, len(doc.Metadata.Custom))
		for k := range doc.Metadata.Custom {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "**%s:** %v\n", k, doc.Metadata.Custom[k])
		}
	}

	sb.WriteString("\n")
	if includeBody {
		sb.WriteString("---\n\n")
		sb.WriteString(doc.Body)
		sb.WriteString("\n")
	} else if doc.Excerpt != "" {
		fmt.Fprintf(&sb, "> %s\n", doc.Excerpt)
	}
	return sb.String()
}

// FormatDocumentList formats a paginated document listing as markdown.
func FormatDocumentList(docs []*document.Document, total int) string {
	if total == 0 {
		return "No documents indexed."
	}

	var sb strings.Builder
	sb.WriteString("## Documents\n\n")
	fmt.Fprintf(&sb, "Showing %d of %d document", len(docs), total)
	if total != 1 {
		sb.WriteString("s")
	}
	sb.WriteString("\n\n")

	for _, doc := range docs {
		fmt.Fprintf(&sb, "- `%s` - %s", doc.Key, doc.Title)
		if len(doc.Tags) > 0 {
			fmt.Fprintf(&sb, " [%s]", strings.Join(doc.Tags, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatTags formats the tag histogram as markdown.
func FormatTags(tags []store.TagCount) string {
	if len(tags) == 0 {
		return "No tags found."
	}

	var sb strings.Builder
	sb.WriteString("## Tags\n\n")
	for _, tc := range tags {
		fmt.Fprintf(&sb, "- **%s** (%d)\n", tc.Tag, tc.Count)
	}
	return sb.String()
}

// FormatStats formats engine statistics as markdown.
func FormatStats(st engine.Stats) string {
	var sb strings.Builder
	sb.WriteString("## Index Statistics\n\n")
	fmt.Fprintf(&sb, "- **Status:** %s\n", st.Status)
	fmt.Fprintf(&sb, "- **Documents:** %d\n", st.Documents)
	fmt.Fprintf(&sb, "- **Distinct terms:** %d\n", st.Terms)
	fmt.Fprintf(&sb, "- **Total words:** %d\n", st.TotalWords)
	fmt.Fprintf(&sb, "- **Total size:** %d bytes\n", st.TotalBytes)
	fmt.Fprintf(&sb, "- **Tags:** %d\n", st.Tags)
	fmt.Fprintf(&sb, "- **Generation:** %d\n", st.Generation)
	if st.WatcherType != "" {
		fmt.Fprintf(&sb, "- **Watcher:** %s\n", st.WatcherType)
	}
	if !st.LastUpdate.IsZero() {
		fmt.Fprintf(&sb, "- **Last update:** %s\n", st.LastUpdate.Format(time.RFC3339))
	}
	if st.Queries.TotalQueries > 0 {
		fmt.Fprintf(&sb, "- **Queries served:** %d (%d cached, avg %.1fms, p95 %.1fms)\n",
			st.Queries.TotalQueries, st.Queries.CacheHits,
			st.Queries.AvgLatencyMs, st.Queries.P95LatencyMs)
	}

	if len(st.FileTypes) > 0 {
		exts := make([]string, 0, len(st.FileTypes))
		for ext := range st.FileTypes {
			exts = append(exts, ext)
		}
		sort.Strings(exts)
		sb.WriteString("\n**By file type:**\n")
		for _, ext := range exts {
			fmt.Fprintf(&sb, "- %s: %d\n", ext, st.FileTypes[ext])
		}
	}
	return sb.String()
}

// clampLimit ensures limit is within bounds.
func clampLimit(limit, defaultVal, min, max int) int {
	if limit <= 0 {
		return defaultVal
	}
	if limit < min {
		return min
	}
	if limit > max {
		return max
	}
	return limit
}
