package mcp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/neerajchowdary889/doctx/internal/document"
	"github.com/neerajchowdary889/doctx/internal/search"
	"github.com/neerajchowdary889/doctx/internal/store"
)

// SearchDocsInput defines the input schema for the search_docs tool.
type SearchDocsInput struct {
	Query         string   `json:"query,omitempty" jsonschema:"free-text query; empty matches everything subject to filters"`
	Tags          []string `json:"tags,omitempty" jsonschema:"filter to documents carrying at least one of these tags"`
	PathContains  string   `json:"path_contains,omitempty" jsonschema:"filter to document paths containing this substring"`
	FileType      string   `json:"file_type,omitempty" jsonschema:"filter by file extension, e.g. .md"`
	ModifiedSince string   `json:"modified_since,omitempty" jsonschema:"RFC3339 timestamp; only documents modified at or after it"`
	Limit         int      `json:"limit,omitempty" jsonschema:"maximum results per page, default 10, max 100"`
	Offset        int      `json:"offset,omitempty" jsonschema:"results to skip for pagination"`
	SortBy        string   `json:"sort_by,omitempty" jsonschema:"relevance, modified, created, or title; default relevance"`
	SortOrder     string   `json:"sort_order,omitempty" jsonschema:"asc or desc; default desc"`
}

// SearchHit is one ranked result in a search_docs response.
type SearchHit struct {
	Key          string             `json:"key" jsonschema:"document path relative to the root"`
	Title        string             `json:"title"`
	Score        float64            `json:"score,omitempty" jsonschema:"BM25 relevance score"`
	Tags         []string           `json:"tags,omitempty"`
	MatchedTerms []string           `json:"matched_terms,omitempty" jsonschema:"query terms present in this document"`
	LineMatches  []search.LineMatch `json:"line_matches,omitempty" jsonschema:"body lines containing query terms, for highlighting"`
	Excerpt      string             `json:"excerpt,omitempty"`
	ModifiedAt   string             `json:"modified_at"`
}

// SearchDocsOutput defines the output schema for the search_docs tool.
type SearchDocsOutput struct {
	Markdown     string      `json:"markdown" jsonschema:"results rendered as markdown"`
	TotalMatched int         `json:"total_matched" jsonschema:"matches before pagination"`
	Generation   uint64      `json:"generation" jsonschema:"index generation the query ran against"`
	TookMs       float64     `json:"took_ms"`
	Results      []SearchHit `json:"results"`
}

// GetDocumentInput defines the input schema for the get_document tool.
type GetDocumentInput struct {
	Key          string `json:"key" jsonschema:"document path relative to the root"`
	MetadataOnly bool   `json:"metadata_only,omitempty" jsonschema:"omit the full body, return metadata and excerpt only"`
}

// DocumentView is the wire representation of one document.
type DocumentView struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
	Author      string   `json:"author,omitempty"`
	Version     string   `json:"version,omitempty"`
	Excerpt     string   `json:"excerpt,omitempty"`
	WordCount   int      `json:"word_count"`
	SizeBytes   int64    `json:"size_bytes"`
	FileType    string   `json:"file_type"`
	CreatedAt   string   `json:"created_at,omitempty"`
	ModifiedAt  string   `json:"modified_at"`
	Body        string   `json:"body,omitempty"`
}

// GetDocumentOutput defines the output schema for the get_document tool.
type GetDocumentOutput struct {
	Markdown string       `json:"markdown"`
	Document DocumentView `json:"document"`
}

// ListDocumentsInput defines the input schema for the list_documents tool.
type ListDocumentsInput struct {
	Tag        string `json:"tag,omitempty" jsonschema:"only documents carrying this tag"`
	PathPrefix string `json:"path_prefix,omitempty" jsonschema:"only documents whose path starts with this prefix"`
	FileType   string `json:"file_type,omitempty" jsonschema:"only documents with this extension, e.g. .md"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum documents per page, default 50, max 200"`
	Offset     int    `json:"offset,omitempty" jsonschema:"documents to skip for pagination"`
}

// ListDocumentsOutput defines the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Markdown  string         `json:"markdown"`
	Total     int            `json:"total" jsonschema:"matching documents before pagination"`
	Documents []DocumentView `json:"documents"`
}

// GetTagsInput defines the input schema for the get_tags tool.
type GetTagsInput struct{}

// TagView is one entry of the tag histogram.
type TagView struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// GetTagsOutput defines the output schema for the get_tags tool.
type GetTagsOutput struct {
	Markdown string    `json:"markdown"`
	Tags     []TagView `json:"tags"`
}

// GetStatisticsInput defines the input schema for the get_statistics tool.
type GetStatisticsInput struct{}

// GetStatisticsOutput defines the output schema for the get_statistics tool.
type GetStatisticsOutput struct {
	Markdown      string         `json:"markdown"`
	Status        string         `json:"status"`
	Documents     int            `json:"documents"`
	Terms         int            `json:"terms"`
	TotalWords    int64          `json:"total_words"`
	TotalBytes    int64          `json:"total_bytes"`
	TagCount      int            `json:"tag_count"`
	FileTypes     map[string]int `json:"file_types,omitempty"`
	Generation    uint64         `json:"generation"`
	WatcherType   string         `json:"watcher_type,omitempty"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	TotalQueries  uint64         `json:"total_queries"`
	CacheHits     uint64         `json:"cache_hits"`
	AvgQueryMs    float64        `json:"avg_query_ms"`
	P95QueryMs    float64        `json:"p95_query_ms"`
}

// ReindexAllInput defines the input schema for the reindex_all tool.
type ReindexAllInput struct{}

// ClearIndexInput defines the input schema for the clear_index tool.
type ClearIndexInput struct {
	Confirm bool `json:"confirm" jsonschema:"must be true; guards against accidental clearing"`
}

// AdminOutput is the shared output schema for administrative tools.
type AdminOutput struct {
	Markdown   string `json:"markdown"`
	Documents  int    `json:"documents" jsonschema:"documents indexed after the operation"`
	Generation uint64 `json:"generation"`
}

// UploadDocumentInput defines the input schema for the upload_document tool.
type UploadDocumentInput struct {
	Path    string `json:"path" jsonschema:"destination path relative to the document root"`
	Content string `json:"content" jsonschema:"full document content, front matter included"`
}

// UploadDocumentOutput defines the output schema for the upload_document tool.
type UploadDocumentOutput struct {
	Markdown string `json:"markdown"`
	Key      string `json:"key" jsonschema:"normalized key the document is indexed under"`
}

func toDocumentView(doc *document.Document, includeBody bool) DocumentView {
	view := DocumentView{
		Key:         doc.Key,
		Title:       doc.Title,
		Tags:        doc.Tags,
		Description: doc.Metadata.Description,
		Author:      doc.Metadata.Author,
		Version:     doc.Metadata.Version,
		Excerpt:     doc.Excerpt,
		WordCount:   doc.WordCount,
		SizeBytes:   doc.Size,
		FileType:    doc.FileType,
		ModifiedAt:  doc.ModifiedAt.Format(time.RFC3339),
	}
	if !doc.CreatedAt.IsZero() {
		view.CreatedAt = doc.CreatedAt.Format(time.RFC3339)
	}
	if includeBody {
		view.Body = doc.Body
	}
	return view
}

// handleSearchDocs is the MCP handler for the search_docs tool.
func (s *Server) handleSearchDocs(ctx context.Context, _ *mcp.CallToolRequest, input SearchDocsInput) (
	*mcp.CallToolResult,
	SearchDocsOutput,
	error,
) {
	start := time.Now()
	requestID := generateRequestID()

	req := search.Request{
		Query:        input.Query,
		Tags:         input.Tags,
		PathContains: input.PathContains,
		FileType:     input.FileType,
		Limit:        input.Limit,
		Offset:       input.Offset,
		SortBy:       search.ParseSortBy(input.SortBy),
		SortOrder:    search.ParseSortOrder(input.SortOrder),
	}
	if input.ModifiedSince != "" {
		since, err := time.Parse(time.RFC3339, input.ModifiedSince)
		if err != nil {
			return nil, SearchDocsOutput{}, NewInvalidParamsError(
				"modified_since must be an RFC3339 timestamp")
		}
		req.Since = since
	}

	s.logger.Info("search_docs started",
		slog.String("request_id", requestID),
		slog.String("query", input.Query),
		slog.Int("limit", input.Limit))

	resp, err := s.engine.Search(ctx, req)
	if err != nil {
		s.logger.Error("search_docs failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return nil, SearchDocsOutput{}, MapError(err)
	}

	output := SearchDocsOutput{
		Markdown:     FormatSearchResults(strings.TrimSpace(input.Query), resp),
		TotalMatched: resp.TotalMatched,
		Generation:   resp.Generation,
		TookMs:       resp.TookMs,
		Results:      make([]SearchHit, 0, len(resp.Results)),
	}
	for _, r := range resp.Results {
		output.Results = append(output.Results, SearchHit{
			Key:          r.Document.Key,
			Title:        r.Document.Title,
			Score:        r.Score,
			Tags:         r.Document.Tags,
			MatchedTerms: r.MatchedTerms,
			LineMatches:  r.LineMatches,
			Excerpt:      r.Document.Excerpt,
			ModifiedAt:   r.Document.ModifiedAt.Format(time.RFC3339),
		})
	}

	s.logger.Info("search_docs completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", time.Since(start)),
		slog.Int("result_count", len(output.Results)))
	return nil, output, nil
}

// handleGetDocument is the MCP handler for the get_document tool.
func (s *Server) handleGetDocument(ctx context.Context, _ *mcp.CallToolRequest, input GetDocumentInput) (
	*mcp.CallToolResult,
	GetDocumentOutput,
	error,
) {
	if strings.TrimSpace(input.Key) == "" {
		return nil, GetDocumentOutput{}, NewInvalidParamsError("key parameter is required")
	}

	doc, err := s.engine.Get(input.Key)
	if err != nil {
		return nil, GetDocumentOutput{}, MapError(err)
	}

	includeBody := !input.MetadataOnly
	return nil, GetDocumentOutput{
		Markdown: FormatDocument(doc, includeBody),
		Document: toDocumentView(doc, includeBody),
	}, nil
}

// handleListDocuments is the MCP handler for the list_documents tool.
func (s *Server) handleListDocuments(ctx context.Context, _ *mcp.CallToolRequest, input ListDocumentsInput) (
	*mcp.CallToolResult,
	ListDocumentsOutput,
	error,
) {
	docs, err := s.engine.List(store.ListFilter{
		Tag:        input.Tag,
		PathPrefix: input.PathPrefix,
		FileType:   input.FileType,
	})
	if err != nil {
		return nil, ListDocumentsOutput{}, MapError(err)
	}

	total := len(docs)
	limit := clampLimit(input.Limit, 50, 1, 200)
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := docs[offset:end]

	output := ListDocumentsOutput{
		Markdown:  FormatDocumentList(page, total),
		Total:     total,
		Documents: make([]DocumentView, 0, len(page)),
	}
	for _, doc := range page {
		output.Documents = append(output.Documents, toDocumentView(doc, false))
	}
	return nil, output, nil
}

// handleGetTags is the MCP handler for the get_tags tool.
func (s *Server) handleGetTags(ctx context.Context, _ *mcp.CallToolRequest, _ GetTagsInput) (
	*mcp.CallToolResult,
	GetTagsOutput,
	error,
) {
	counts, err := s.engine.TagCounts()
	if err != nil {
		return nil, GetTagsOutput{}, MapError(err)
	}

	output := GetTagsOutput{
		Markdown: FormatTags(counts),
		Tags:     make([]TagView, 0, len(counts)),
	}
	for _, tc := range counts {
		output.Tags = append(output.Tags, TagView{Tag: tc.Tag, Count: tc.Count})
	}
	return nil, output, nil
}

// handleGetStatistics is the MCP handler for the get_statistics tool.
func (s *Server) handleGetStatistics(ctx context.Context, _ *mcp.CallToolRequest, _ GetStatisticsInput) (
	*mcp.CallToolResult,
	GetStatisticsOutput,
	error,
) {
	stats, err := s.engine.Stats()
	if err != nil {
		return nil, GetStatisticsOutput{}, MapError(err)
	}

	return nil, GetStatisticsOutput{
		Markdown:      FormatStats(stats),
		Status:        string(stats.Status),
		Documents:     stats.Documents,
		Terms:         stats.Terms,
		TotalWords:    stats.TotalWords,
		TotalBytes:    stats.TotalBytes,
		TagCount:      stats.Tags,
		FileTypes:     stats.FileTypes,
		Generation:    stats.Generation,
		WatcherType:   stats.WatcherType,
		UptimeSeconds: stats.UptimeSeconds,
		TotalQueries:  stats.Queries.TotalQueries,
		CacheHits:     stats.Queries.CacheHits,
		AvgQueryMs:    stats.Queries.AvgLatencyMs,
		P95QueryMs:    stats.Queries.P95LatencyMs,
	}, nil
}

// handleReindexAll is the MCP handler for the reindex_all tool. It runs
// synchronously; the response describes the reconciled index.
func (s *Server) handleReindexAll(ctx context.Context, _ *mcp.CallToolRequest, _ ReindexAllInput) (
	*mcp.CallToolResult,
	AdminOutput,
	error,
) {
	requestID := generateRequestID()
	s.logger.Info("reindex_all started", slog.String("request_id", requestID))

	if err := s.engine.ReindexAll(ctx); err != nil {
		s.logger.Error("reindex_all failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return nil, AdminOutput{}, MapError(err)
	}
	return nil, s.adminOutput("Re-scan complete."), nil
}

// handleClearIndex is the MCP handler for the clear_index tool.
func (s *Server) handleClearIndex(ctx context.Context, _ *mcp.CallToolRequest, input ClearIndexInput) (
	*mcp.CallToolResult,
	AdminOutput,
	error,
) {
	if !input.Confirm {
		return nil, AdminOutput{}, NewInvalidParamsError(
			"clear_index requires confirm=true")
	}

	requestID := generateRequestID()
	s.logger.Info("clear_index started", slog.String("request_id", requestID))

	if err := s.engine.ClearIndex(ctx); err != nil {
		s.logger.Error("clear_index failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return nil, AdminOutput{}, MapError(err)
	}
	return nil, s.adminOutput("Index cleared."), nil
}

// handleUploadDocument is the MCP handler for the upload_document tool.
func (s *Server) handleUploadDocument(ctx context.Context, _ *mcp.CallToolRequest, input UploadDocumentInput) (
	*mcp.CallToolResult,
	UploadDocumentOutput,
	error,
) {
	if strings.TrimSpace(input.Path) == "" {
		return nil, UploadDocumentOutput{}, NewInvalidParamsError("path parameter is required")
	}
	if input.Content == "" {
		return nil, UploadDocumentOutput{}, NewInvalidParamsError("content parameter is required")
	}

	requestID := generateRequestID()
	s.logger.Info("upload_document started",
		slog.String("request_id", requestID),
		slog.String("path", input.Path))

	key, err := s.engine.Upload(ctx, input.Path, []byte(input.Content))
	if err != nil {
		s.logger.Error("upload_document failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return nil, UploadDocumentOutput{}, MapError(err)
	}

	return nil, UploadDocumentOutput{
		Markdown: "Indexed `" + key + "`.",
		Key:      key,
	}, nil
}

func (s *Server) adminOutput(message string) AdminOutput {
	out := AdminOutput{Markdown: message, Generation: s.engine.CurrentGeneration()}
	if stats, err := s.engine.Stats(); err == nil {
		out.Documents = stats.Documents
	}
	return out
}
