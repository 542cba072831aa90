// Package search turns a query request into a ranked, paginated result
// list over one consistent index snapshot.
package search

import (
	"strconv"
	"strings"
	"time"

	"github.com/neerajchowdary889/doctx/internal/document"
	"github.com/neerajchowdary889/doctx/internal/index"
	"github.com/neerajchowdary889/doctx/internal/store"
)

// SortBy selects the result ordering.
type SortBy string

const (
	SortByRelevance SortBy = "relevance"
	SortByModified  SortBy = "modified"
	SortByCreated   SortBy = "created"
	SortByTitle     SortBy = "title"
)

// SortOrder is ascending or descending.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortBy maps a string to a SortBy, defaulting to relevance.
func ParseSortBy(s string) SortBy {
	switch SortBy(strings.ToLower(s)) {
	case SortByModified:
		return SortByModified
	case SortByCreated:
		return SortByCreated
	case SortByTitle:
		return SortByTitle
	default:
		return SortByRelevance
	}
}

// ParseSortOrder maps a string to a SortOrder, defaulting to descending.
func ParseSortOrder(s string) SortOrder {
	if SortOrder(strings.ToLower(s)) == SortAsc {
		return SortAsc
	}
	return SortDesc
}

// MaxLimit bounds a single result page.
const MaxLimit = 100

// Request is a normalized query request.
type Request struct {
	// Query is the free-text query. Empty means match everything,
	// subject to the filters.
	Query string

	// Tags filters to documents carrying at least one of the tags.
	Tags []string

	// PathContains filters to keys containing the substring,
	// case-insensitive.
	PathContains string

	// FileType filters to one extension, e.g. ".md".
	FileType string

	// Since filters to documents modified at or after the time.
	Since time.Time

	Limit  int
	Offset int

	SortBy    SortBy
	SortOrder SortOrder
}

// Normalize fills defaults and normalizes filter values.
func (r Request) Normalize() Request {
	if r.Limit <= 0 {
		r.Limit = 10
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
	if r.SortBy == "" {
		r.SortBy = SortByRelevance
	}
	if r.SortOrder == "" {
		r.SortOrder = SortDesc
	}
	r.Tags = document.NormalizeTags(r.Tags)
	r.FileType = strings.ToLower(strings.TrimSpace(r.FileType))
	r.Query = strings.TrimSpace(r.Query)
	return r
}

// CacheKey returns a stable string identity for a normalized request,
// used by the engine's per-generation query cache.
func (r Request) CacheKey() string {
	var b strings.Builder
	b.WriteString(r.Query)
	b.WriteByte('|')
	b.WriteString(strings.Join(r.Tags, ","))
	b.WriteByte('|')
	b.WriteString(strings.ToLower(r.PathContains))
	b.WriteByte('|')
	b.WriteString(r.FileType)
	b.WriteByte('|')
	if !r.Since.IsZero() {
		b.WriteString(r.Since.UTC().Format(time.RFC3339Nano))
	}
	b.WriteByte('|')
	b.WriteString(string(r.SortBy))
	b.WriteByte('|')
	b.WriteString(string(r.SortOrder))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(r.Limit))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(r.Offset))
	return b.String()
}

// Result is one ranked hit.
type Result struct {
	Document     *document.Document `json:"document"`
	Score        float64            `json:"score"`
	MatchedTerms []string           `json:"matched_terms,omitempty"`
	LineMatches  []LineMatch        `json:"line_matches,omitempty"`
}

// LineMatch is one body line containing a query term, for highlighting.
type LineMatch struct {
	Line int    `json:"line"` // 1-based
	Text string `json:"text"`
}

// Response is a complete query answer. Generation identifies the index
// state the query executed against so callers can detect staleness
// across paginated calls.
type Response struct {
	Results      []Result `json:"results"`
	TotalMatched int      `json:"total_matched"`
	Generation   uint64   `json:"generation"`
	TookMs       float64  `json:"took_ms"`
}

// Snapshot is the consistent index state a query executes against. The
// engine guarantees the components belong to one committed generation.
type Snapshot struct {
	Docs       *store.DocumentStore
	Index      *index.InvertedIndex
	Params     index.BM25Params
	Generation uint64
}
