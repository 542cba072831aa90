package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/neerajchowdary889/doctx/internal/document"
	"github.com/neerajchowdary889/doctx/internal/errors"
	"github.com/neerajchowdary889/doctx/internal/index"
	"github.com/neerajchowdary889/doctx/internal/store"
)

// Execute runs a query against a snapshot. Tag filtering is applied
// before ranking so scoring only touches the filtered candidate set.
// The result ordering is fully deterministic for a fixed generation:
// primary sort key, then modification time descending, then key
// ascending.
func Execute(ctx context.Context, snap Snapshot, req Request) (*Response, error) {
	start := time.Now()
	req = req.Normalize()

	if err := ctx.Err(); err != nil {
		return nil, errors.QueryTimeout(err)
	}

	candidates, scores, err := collect(snap, req)
	if err != nil {
		return nil, err
	}

	// Ranking can be the expensive part on large trees; honor the
	// budget between phases rather than mid-sort.
	if err := ctx.Err(); err != nil {
		return nil, errors.QueryTimeout(err)
	}

	order(candidates, scores, req)

	total := len(candidates)
	page := paginate(candidates, req.Limit, req.Offset)

	results := make([]Result, 0, len(page))
	var queryTerms []string
	if req.Query != "" {
		queryTerms = snap.Index.Tokenizer().Tokenize(req.Query)
	}
	for _, doc := range page {
		// collect already returned copies; no second clone needed.
		res := Result{
			Document: doc,
			Score:    scores[doc.Key],
		}
		if len(queryTerms) > 0 {
			res.MatchedTerms = snap.Index.MatchedTerms(doc.Key, queryTerms)
			res.LineMatches = findLineMatches(doc.Body, res.MatchedTerms, snap.Index.Tokenizer())
		}
		results = append(results, res)
	}

	return &Response{
		Results:      results,
		TotalMatched: total,
		Generation:   snap.Generation,
		TookMs:       float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

// collect builds the filtered candidate set and, for text queries,
// their BM25 scores.
func collect(snap Snapshot, req Request) ([]*document.Document, map[string]float64, error) {
	// Tag filter first: union of tag hits (a document qualifies when it
	// carries at least one requested tag), intersected with candidates.
	var allowed map[string]struct{}
	if len(req.Tags) > 0 {
		allowed = make(map[string]struct{})
		for _, tag := range req.Tags {
			for key := range snap.Docs.KeysWithTag(tag) {
				allowed[key] = struct{}{}
			}
		}
		if len(allowed) == 0 {
			return nil, nil, nil
		}
	}

	var scores map[string]float64
	var keys []string

	if req.Query != "" {
		terms := snap.Index.Tokenizer().Tokenize(req.Query)
		if len(terms) == 0 {
			return nil, nil, errors.InvalidQuery("query contains no indexable terms")
		}
		scores = snap.Index.Score(terms, snap.Params)
		keys = make([]string, 0, len(scores))
		for key := range scores {
			if allowed != nil {
				if _, ok := allowed[key]; !ok {
					continue
				}
			}
			keys = append(keys, key)
		}
	} else if allowed != nil {
		keys = make([]string, 0, len(allowed))
		for key := range allowed {
			keys = append(keys, key)
		}
	} else {
		for _, doc := range snap.Docs.List(store.ListFilter{}) {
			keys = append(keys, doc.Key)
		}
	}

	pathNeedle := strings.ToLower(req.PathContains)

	docs := make([]*document.Document, 0, len(keys))
	for _, key := range keys {
		doc, err := snap.Docs.Get(key)
		if err != nil {
			// Key sets and store are committed together; a miss here
			// would mean a torn snapshot.
			continue
		}
		if pathNeedle != "" && !strings.Contains(strings.ToLower(doc.Key), pathNeedle) {
			continue
		}
		if req.FileType != "" && doc.FileType != req.FileType {
			continue
		}
		if !req.Since.IsZero() && doc.ModifiedAt.Before(req.Since) {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, scores, nil
}

// order sorts candidates by the requested key with the deterministic
// tie-break chain.
func order(docs []*document.Document, scores map[string]float64, req Request) {
	asc := req.SortOrder == SortAsc

	sort.Slice(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]

		var less, equal bool
		switch req.SortBy {
		case SortByModified:
			less, equal = a.ModifiedAt.Before(b.ModifiedAt), a.ModifiedAt.Equal(b.ModifiedAt)
		case SortByCreated:
			less, equal = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		case SortByTitle:
			at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
			less, equal = at < bt, at == bt
		default:
			sa, sb := scores[a.Key], scores[b.Key]
			less, equal = sa < sb, sa == sb
		}

		if !equal {
			if asc {
				return less
			}
			return !less
		}

		// Tie-break: most recent modification first, then key, both
		// independent of the requested order so pagination stays stable.
		if !a.ModifiedAt.Equal(b.ModifiedAt) {
			return a.ModifiedAt.After(b.ModifiedAt)
		}
		return a.Key < b.Key
	})
}

func paginate(docs []*document.Document, limit, offset int) []*document.Document {
	if offset >= len(docs) {
		return nil
	}
	end := offset + limit
	if end > len(docs) {
		end = len(docs)
	}
	return docs[offset:end]
}

// maxLineMatches bounds the highlighting lines per result.
const maxLineMatches = 5

// maxLineMatchRunes truncates pathological single-line documents.
const maxLineMatchRunes = 200

// findLineMatches returns the first body lines containing any matched
// term, for client-side highlighting. Terms are compared post-stemming
// so "deploys" in the body matches a "deploy" query.
func findLineMatches(body string, matchedTerms []string, tok *index.Tokenizer) []LineMatch {
	if len(matchedTerms) == 0 || body == "" {
		return nil
	}
	terms := make(map[string]struct{}, len(matchedTerms))
	for _, t := range matchedTerms {
		terms[t] = struct{}{}
	}

	var matches []LineMatch
	for i, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		hit := false
		for _, token := range tok.Tokenize(trimmed) {
			if _, ok := terms[token]; ok {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		if runes := []rune(trimmed); len(runes) > maxLineMatchRunes {
			trimmed = string(runes[:maxLineMatchRunes])
		}
		matches = append(matches, LineMatch{Line: i + 1, Text: trimmed})
		if len(matches) == maxLineMatches {
			break
		}
	}
	return matches
}
