// Package integration exercises the full flow from scan through index
// to ranked search, the way the MCP tools drive it.
package integration

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neerajchowdary889/doctx/internal/config"
	"github.com/neerajchowdary889/doctx/internal/engine"
	"github.com/neerajchowdary889/doctx/internal/search"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func startEngine(t *testing.T, root string, watch bool) *engine.Engine {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Root = root
	cfg.Watch.Enabled = watch
	cfg.Watch.Debounce = "20ms"

	eng, err := engine.New(cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	require.NoError(t, eng.Start(context.Background()))
	return eng
}

func TestIndexThenSearch_RankedResults(t *testing.T) {
	// Given: a tree where one document is clearly more relevant
	root := t.TempDir()
	writeDoc(t, root, "deploy.md",
		"---\ntitle: Deployment\ntags: [ops]\n---\n\ndeploy deploy deploy the service\n")
	writeDoc(t, root, "mention.md",
		"# Other\n\nthis mentions deploy once among many other words here\n")
	writeDoc(t, root, "unrelated.md", "# Unrelated\n\nnothing relevant at all\n")

	eng := startEngine(t, root, false)

	// When: searching
	resp, err := eng.Search(context.Background(), search.Request{Query: "deploy"})

	// Then: the term-heavy document ranks first
	require.NoError(t, err)
	require.Equal(t, 2, resp.TotalMatched)
	assert.Equal(t, "deploy.md", resp.Results[0].Document.Key)
	assert.Greater(t, resp.Results[0].Score, resp.Results[1].Score)
}

func TestIndexThenSearch_TagAndPathFilters(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "guides/a.md", "---\ntags: [guide]\n---\n\nalpha content\n")
	writeDoc(t, root, "guides/b.md", "---\ntags: [draft]\n---\n\nalpha content\n")
	writeDoc(t, root, "notes/c.md", "---\ntags: [guide]\n---\n\nalpha content\n")

	eng := startEngine(t, root, false)

	byTag, err := eng.Search(context.Background(),
		search.Request{Query: "alpha", Tags: []string{"guide"}})
	require.NoError(t, err)
	assert.Equal(t, 2, byTag.TotalMatched)

	byBoth, err := eng.Search(context.Background(),
		search.Request{Query: "alpha", Tags: []string{"guide"}, PathContains: "guides/"})
	require.NoError(t, err)
	require.Equal(t, 1, byBoth.TotalMatched)
	assert.Equal(t, "guides/a.md", byBoth.Results[0].Document.Key)
}

func TestIndexThenSearch_PaginationIsStable(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		writeDoc(t, root, name+".md", "# "+name+"\n\ncommon term everywhere\n")
	}

	eng := startEngine(t, root, false)

	var keys []string
	for offset := 0; offset < 5; offset += 2 {
		resp, err := eng.Search(context.Background(),
			search.Request{Query: "common", Limit: 2, Offset: offset, SortBy: search.SortByTitle, SortOrder: search.SortAsc})
		require.NoError(t, err)
		for _, res := range resp.Results {
			keys = append(keys, res.Document.Key)
		}
	}

	// Pages never overlap or skip on an unchanged index.
	assert.Equal(t, []string{"a.md", "b.md", "c.md", "d.md", "e.md"}, keys)
}

func TestReindexAll_PicksUpOutOfBandChanges(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.md", "# A\n\noriginal wording\n")

	eng := startEngine(t, root, false)

	// Changed behind the engine's back; no watcher is running.
	writeDoc(t, root, "a.md", "# A\n\nxylophone wording\n")
	writeDoc(t, root, "b.md", "# B\n\nxylophone too\n")
	require.NoError(t, eng.ReindexAll(context.Background()))

	resp, err := eng.Search(context.Background(), search.Request{Query: "xylophone"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalMatched)
}

func TestGitignoredFilesStayOut(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, ".gitignore", "drafts/\n")
	writeDoc(t, root, "published.md", "# Pub\n\nkangaroo\n")
	writeDoc(t, root, "drafts/wip.md", "# WIP\n\nkangaroo\n")

	eng := startEngine(t, root, false)

	resp, err := eng.Search(context.Background(), search.Request{Query: "kangaroo"})
	require.NoError(t, err)
	require.Equal(t, 1, resp.TotalMatched)
	assert.Equal(t, "published.md", resp.Results[0].Document.Key)
}

func TestQueryMetricsAccumulate(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.md", "# A\n\nsomething searchable\n")

	eng := startEngine(t, root, false)

	_, err := eng.Search(context.Background(), search.Request{Query: "searchable"})
	require.NoError(t, err)
	_, err = eng.Search(context.Background(), search.Request{Query: "searchable"})
	require.NoError(t, err)

	stats, err := eng.Stats()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.Queries.TotalQueries)
	assert.Equal(t, uint64(1), stats.Queries.CacheHits, "second identical query should hit the cache")
}
