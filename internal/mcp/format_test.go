package mcp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/neerajchowdary889/doctx/internal/document"
	"github.com/neerajchowdary889/doctx/internal/engine"
	"github.com/neerajchowdary889/doctx/internal/search"
	"github.com/neerajchowdary889/doctx/internal/store"
)

func sampleDoc() *document.Document {
	return &document.Document{
		Key:   "guides/setup.md",
		Title: "Setup Guide",
		Tags:  []string{"guide", "setup"},
		Metadata: document.Metadata{
			Description: "How to get started",
			Author:      "docs team",
		},
		Body:       "# Setup Guide\n\nInstall the thing.",
		Excerpt:    "Install the thing.",
		WordCount:  5,
		Size:       42,
		FileType:   ".md",
		ModifiedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFormatSearchResults_Empty(t *testing.T) {
	out := FormatSearchResults("nothing", &search.Response{})
	assert.Contains(t, out, `No results found for "nothing"`)
}

func TestFormatSearchResults_RendersHits(t *testing.T) {
	resp := &search.Response{
		Results: []search.Result{
			{Document: sampleDoc(), Score: 1.234, MatchedTerms: []string{"setup"}},
		},
		TotalMatched: 1,
		TookMs:       0.5,
	}

	out := FormatSearchResults("setup", resp)

	assert.Contains(t, out, `## Search Results for "setup"`)
	assert.Contains(t, out, "Setup Guide")
	assert.Contains(t, out, "`guides/setup.md`")
	assert.Contains(t, out, "1.234")
	assert.Contains(t, out, "guide, setup")
	assert.Contains(t, out, "> Install the thing.")
}

func TestFormatSearchResults_PluralizesMatches(t *testing.T) {
	doc := sampleDoc()
	resp := &search.Response{
		Results:      []search.Result{{Document: doc}, {Document: doc}},
		TotalMatched: 2,
	}
	assert.Contains(t, FormatSearchResults("x", resp), "2 matches")
}

func TestFormatDocument_WithBody(t *testing.T) {
	out := FormatDocument(sampleDoc(), true)

	assert.Contains(t, out, "# Setup Guide")
	assert.Contains(t, out, "**Path:** `guides/setup.md`")
	assert.Contains(t, out, "**Description:** How to get started")
	assert.Contains(t, out, "**Author:** docs team")
	assert.Contains(t, out, "Install the thing.")
}

func TestFormatDocument_MetadataOnlyUsesExcerpt(t *testing.T) {
	out := FormatDocument(sampleDoc(), false)

	assert.Contains(t, out, "> Install the thing.")
	assert.NotContains(t, out, "---")
}

func TestFormatDocumentList(t *testing.T) {
	out := FormatDocumentList([]*document.Document{sampleDoc()}, 3)

	assert.Contains(t, out, "Showing 1 of 3 documents")
	assert.Contains(t, out, "`guides/setup.md` - Setup Guide")
	assert.Contains(t, out, "[guide, setup]")
}

func TestFormatDocumentList_EmptyIndex(t *testing.T) {
	assert.Equal(t, "No documents indexed.", FormatDocumentList(nil, 0))
}

func TestFormatTags(t *testing.T) {
	out := FormatTags([]store.TagCount{
		{Tag: "guide", Count: 4},
		{Tag: "api", Count: 2},
	})

	assert.Contains(t, out, "- **guide** (4)")
	assert.Contains(t, out, "- **api** (2)")
}

func TestFormatStats(t *testing.T) {
	st := engine.Stats{
		Stats: store.Stats{
			Documents:  7,
			TotalBytes: 1024,
			TotalWords: 500,
			Tags:       3,
			FileTypes:  map[string]int{".md": 5, ".txt": 2},
		},
		Generation:  12,
		Terms:       321,
		Status:      engine.StatusHealthy,
		WatcherType: "fsnotify",
	}

	out := FormatStats(st)

	assert.Contains(t, out, "**Documents:** 7")
	assert.Contains(t, out, "**Distinct terms:** 321")
	assert.Contains(t, out, "**Generation:** 12")
	assert.Contains(t, out, "**Watcher:** fsnotify")
	assert.Contains(t, out, ".md: 5")
	assert.Contains(t, out, ".txt: 2")
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 10, clampLimit(0, 10, 1, 50))
	assert.Equal(t, 10, clampLimit(-3, 10, 1, 50))
	assert.Equal(t, 25, clampLimit(25, 10, 1, 50))
	assert.Equal(t, 50, clampLimit(500, 10, 1, 50))
}
