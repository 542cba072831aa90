package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/neerajchowdary889/doctx/internal/document"
	"github.com/neerajchowdary889/doctx/internal/engine"
	"github.com/neerajchowdary889/doctx/internal/search"
	"github.com/neerajchowdary889/doctx/internal/store"
)

func testDoc() *document.Document {
	return &document.Document{
		Key:        "guides/intro.md",
		Title:      "Introduction",
		Tags:       []string{"guide"},
		Body:       "Welcome to the docs.",
		Excerpt:    "Welcome to the docs.",
		WordCount:  4,
		Size:       20,
		FileType:   ".md",
		ModifiedAt: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
	}
}

func TestRenderer_SearchResults_Plain(t *testing.T) {
	// Given: a plain renderer
	buf := &bytes.Buffer{}
	r := NewRenderer(buf, true)

	// When: rendering one hit
	r.SearchResults("intro", &search.Response{
		Results:      []search.Result{{Document: testDoc(), Score: 0.9}},
		TotalMatched: 1,
		Generation:   3,
	})

	// Then: the listing is readable without ANSI codes
	out := buf.String()
	assert.Contains(t, out, "Introduction")
	assert.Contains(t, out, "guides/intro.md")
	assert.Contains(t, out, "(0.900)")
	assert.NotContains(t, out, "\x1b[", "plain output should not contain ANSI escape codes")
}

func TestRenderer_SearchResults_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	NewRenderer(buf, true).SearchResults("missing", &search.Response{})
	assert.Contains(t, buf.String(), `No results for "missing"`)
}

func TestRenderer_Document_WithAndWithoutBody(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewRenderer(buf, true)

	r.Document(testDoc(), true)
	assert.Contains(t, buf.String(), "Welcome to the docs.")
	assert.Contains(t, buf.String(), "type: .md")

	buf.Reset()
	doc := testDoc()
	doc.Body = "full body"
	doc.Excerpt = "just the excerpt"
	r.Document(doc, false)
	assert.Contains(t, buf.String(), "just the excerpt")
	assert.NotContains(t, buf.String(), "full body")
}

func TestRenderer_DocumentList(t *testing.T) {
	buf := &bytes.Buffer{}
	NewRenderer(buf, true).DocumentList([]*document.Document{testDoc()})
	assert.Contains(t, buf.String(), "guides/intro.md  Introduction  [guide]")
}

func TestRenderer_Tags(t *testing.T) {
	buf := &bytes.Buffer{}
	NewRenderer(buf, true).Tags([]store.TagCount{{Tag: "guide", Count: 2}})
	assert.Contains(t, buf.String(), "guide 2")
}

func TestRenderer_Stats(t *testing.T) {
	buf := &bytes.Buffer{}
	NewRenderer(buf, true).Stats(engine.Stats{
		Stats:      store.Stats{Documents: 4, FileTypes: map[string]int{".md": 4}},
		Generation: 9,
		Status:     engine.StatusHealthy,
	})

	out := buf.String()
	assert.Contains(t, out, "status: healthy")
	assert.Contains(t, out, "documents: 4")
	assert.Contains(t, out, "generation: 9")
	assert.Contains(t, out, ".md: 4")
}

func TestGetStyles_NoColorIsZero(t *testing.T) {
	styles := GetStyles(true)
	assert.Equal(t, "plain", styles.Title.Render("plain"))
}
