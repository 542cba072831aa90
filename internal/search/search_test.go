package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neerajchowdary889/doctx/internal/document"
	"github.com/neerajchowdary889/doctx/internal/errors"
	"github.com/neerajchowdary889/doctx/internal/index"
	"github.com/neerajchowdary889/doctx/internal/store"
)

type fixture struct {
	docs  *store.DocumentStore
	index *index.InvertedIndex
}

func newFixture() *fixture {
	return &fixture{
		docs:  store.NewDocumentStore(),
		index: index.NewInvertedIndex(index.NewTokenizer(index.DefaultTokenizerConfig())),
	}
}

func (f *fixture) add(key, body string, modified time.Time, tags ...string) {
	doc := &document.Document{
		Key:        key,
		Title:      key,
		Body:       body,
		Tags:       document.NormalizeTags(tags),
		FileType:   ".md",
		WordCount:  document.CountWords(body),
		Hash:       document.HashContent([]byte(body)),
		ModifiedAt: modified,
		CreatedAt:  modified,
	}
	f.docs.Put(doc)
	f.index.Index(doc)
}

func (f *fixture) snapshot() Snapshot {
	return Snapshot{
		Docs:       f.docs,
		Index:      f.index,
		Params:     index.DefaultBM25Params(),
		Generation: 7,
	}
}

var baseTime = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func TestExecute_GammaScenario(t *testing.T) {
	// Three documents; "gamma" with limit 2 must return the two
	// containing the term, higher term frequency first.
	f := newFixture()
	f.add("one.md", "alpha beta", baseTime)
	f.add("two.md", "beta gamma", baseTime)
	f.add("three.md", "alpha gamma gamma", baseTime)

	resp, err := Execute(context.Background(), f.snapshot(), Request{Query: "gamma", Limit: 2})
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "three.md", resp.Results[0].Document.Key)
	assert.Equal(t, "two.md", resp.Results[1].Document.Key)
	assert.Greater(t, resp.Results[0].Score, resp.Results[1].Score)
	assert.Equal(t, 2, resp.TotalMatched)
	assert.Equal(t, uint64(7), resp.Generation)
}

func TestExecute_TagFilter(t *testing.T) {
	f := newFixture()
	f.add("setup.md", "install steps", baseTime, "guide", "setup")
	f.add("arch.md", "system layout", baseTime, "architecture")

	resp, err := Execute(context.Background(), f.snapshot(), Request{Tags: []string{"guide"}})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "setup.md", resp.Results[0].Document.Key)
}

func TestExecute_TagFilterAppliedBeforeRanking(t *testing.T) {
	f := newFixture()
	f.add("a.md", "gamma gamma gamma", baseTime)
	f.add("b.md", "gamma", baseTime, "keep")

	resp, err := Execute(context.Background(), f.snapshot(), Request{Query: "gamma", Tags: []string{"keep"}})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "b.md", resp.Results[0].Document.Key)
	assert.Equal(t, 1, resp.TotalMatched, "untagged match excluded before ranking")
}

func TestExecute_TagMembershipProperty(t *testing.T) {
	// D appears in search(text="", tags={t}) iff t is in D's tag set.
	f := newFixture()
	tagged := map[string][]string{
		"a.md": {"guide"},
		"b.md": {"guide", "ops"},
		"c.md": {"ops"},
		"d.md": nil,
	}
	for key, tags := range tagged {
		f.add(key, "body", baseTime, tags...)
	}

	for _, tag := range []string{"guide", "ops", "absent"} {
		resp, err := Execute(context.Background(), f.snapshot(), Request{Tags: []string{tag}, Limit: 100})
		require.NoError(t, err)

		got := make(map[string]bool)
		for _, r := range resp.Results {
			got[r.Document.Key] = true
		}
		for key, tags := range tagged {
			want := false
			for _, dt := range tags {
				if dt == tag {
					want = true
				}
			}
			assert.Equal(t, want, got[key], "tag %q key %s", tag, key)
		}
	}
}

func TestExecute_EmptyQueryListsAll(t *testing.T) {
	f := newFixture()
	f.add("a.md", "alpha", baseTime)
	f.add("b.md", "beta", baseTime.Add(time.Hour))

	resp, err := Execute(context.Background(), f.snapshot(), Request{})
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	// Relevance ties fall back to most recent modification first.
	assert.Equal(t, "b.md", resp.Results[0].Document.Key)
	assert.Zero(t, resp.Results[0].Score)
}

func TestExecute_DeterministicPagination(t *testing.T) {
	f := newFixture()
	for i := 0; i < 25; i++ {
		f.add(fmt.Sprintf("doc-%02d.md", i), "shared topic words", baseTime)
	}

	seen := make(map[string]int)
	for offset := 0; offset < 25; offset += 5 {
		resp, err := Execute(context.Background(), f.snapshot(),
			Request{Query: "topic", Limit: 5, Offset: offset})
		require.NoError(t, err)
		require.Len(t, resp.Results, 5)
		for _, r := range resp.Results {
			seen[r.Document.Key]++
		}
	}

	// No page may skip or duplicate a result within one generation.
	assert.Len(t, seen, 25)
	for key, n := range seen {
		assert.Equal(t, 1, n, "key %s appeared %d times", key, n)
	}
}

func TestExecute_RepeatedQueriesIdentical(t *testing.T) {
	f := newFixture()
	f.add("a.md", "alpha beta gamma", baseTime)
	f.add("b.md", "beta gamma delta", baseTime.Add(time.Minute))
	f.add("c.md", "gamma delta alpha", baseTime.Add(2*time.Minute))

	req := Request{Query: "gamma delta", Limit: 10}
	first, err := Execute(context.Background(), f.snapshot(), req)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Execute(context.Background(), f.snapshot(), req)
		require.NoError(t, err)
		for j := range first.Results {
			assert.Equal(t, first.Results[j].Document.Key, again.Results[j].Document.Key)
			assert.Equal(t, first.Results[j].Score, again.Results[j].Score)
		}
	}
}

func TestExecute_SortModes(t *testing.T) {
	f := newFixture()
	f.add("b.md", "beta", baseTime.Add(time.Hour))
	f.add("a.md", "alpha", baseTime.Add(2*time.Hour))
	f.add("c.md", "charlie", baseTime)

	t.Run("modified desc", func(t *testing.T) {
		resp, err := Execute(context.Background(), f.snapshot(), Request{SortBy: SortByModified})
		require.NoError(t, err)
		keys := resultKeys(resp)
		assert.Equal(t, []string{"a.md", "b.md", "c.md"}, keys)
	})

	t.Run("modified asc", func(t *testing.T) {
		resp, err := Execute(context.Background(), f.snapshot(),
			Request{SortBy: SortByModified, SortOrder: SortAsc})
		require.NoError(t, err)
		assert.Equal(t, []string{"c.md", "b.md", "a.md"}, resultKeys(resp))
	})

	t.Run("title asc", func(t *testing.T) {
		resp, err := Execute(context.Background(), f.snapshot(),
			Request{SortBy: SortByTitle, SortOrder: SortAsc})
		require.NoError(t, err)
		assert.Equal(t, []string{"a.md", "b.md", "c.md"}, resultKeys(resp))
	})
}

func TestExecute_Filters(t *testing.T) {
	f := newFixture()
	f.add("guides/setup.md", "install alpha", baseTime)
	f.add("notes/setup.md", "install alpha", baseTime)

	old := &document.Document{
		Key: "old.txt", Title: "old", Body: "install alpha", FileType: ".txt",
		ModifiedAt: baseTime.Add(-48 * time.Hour), CreatedAt: baseTime.Add(-48 * time.Hour),
	}
	f.docs.Put(old)
	f.index.Index(old)

	t.Run("path substring", func(t *testing.T) {
		resp, err := Execute(context.Background(), f.snapshot(),
			Request{Query: "install", PathContains: "GUIDES"})
		require.NoError(t, err)
		assert.Equal(t, []string{"guides/setup.md"}, resultKeys(resp))
	})

	t.Run("file type", func(t *testing.T) {
		resp, err := Execute(context.Background(), f.snapshot(),
			Request{Query: "install", FileType: ".txt"})
		require.NoError(t, err)
		assert.Equal(t, []string{"old.txt"}, resultKeys(resp))
	})

	t.Run("since", func(t *testing.T) {
		resp, err := Execute(context.Background(), f.snapshot(),
			Request{Query: "install", Since: baseTime.Add(-time.Hour)})
		require.NoError(t, err)
		assert.NotContains(t, resultKeys(resp), "old.txt")
	})
}

func TestExecute_MatchedTerms(t *testing.T) {
	f := newFixture()
	f.add("a.md", "alpha gamma", baseTime)

	resp, err := Execute(context.Background(), f.snapshot(), Request{Query: "alpha omega"})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, []string{"alpha"}, resp.Results[0].MatchedTerms)
}

func TestExecute_LineMatches(t *testing.T) {
	f := newFixture()
	f.add("a.md", "first line has deploy\nnothing here\ndeploys again on line three", baseTime)

	resp, err := Execute(context.Background(), f.snapshot(), Request{Query: "deploy"})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	lines := resp.Results[0].LineMatches
	require.Len(t, lines, 2)
	assert.Equal(t, LineMatch{Line: 1, Text: "first line has deploy"}, lines[0])
	// Stemmed comparison: "deploys" in the body matches the query term.
	assert.Equal(t, 3, lines[1].Line)
}

func TestExecute_LineMatchesCapped(t *testing.T) {
	f := newFixture()
	body := ""
	for i := 0; i < 8; i++ {
		body += "walrus sighting\n"
	}
	f.add("w.md", body, baseTime)

	resp, err := Execute(context.Background(), f.snapshot(), Request{Query: "walrus"})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Len(t, resp.Results[0].LineMatches, 5)
}

func TestExecute_StopWordOnlyQueryRejected(t *testing.T) {
	f := newFixture()
	f.add("a.md", "alpha", baseTime)

	_, err := Execute(context.Background(), f.snapshot(), Request{Query: "the of and"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidQuery, errors.GetCode(err))
}

func TestExecute_CancelledContext(t *testing.T) {
	f := newFixture()
	f.add("a.md", "alpha", baseTime)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Execute(ctx, f.snapshot(), Request{Query: "alpha"})
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
}

func TestExecute_OffsetPastEnd(t *testing.T) {
	f := newFixture()
	f.add("a.md", "alpha", baseTime)

	resp, err := Execute(context.Background(), f.snapshot(), Request{Query: "alpha", Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 1, resp.TotalMatched)
}

func resultKeys(resp *Response) []string {
	keys := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		keys = append(keys, r.Document.Key)
	}
	return keys
}
