package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with the given args and captures stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCmd()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// docTree writes a small document root and returns its path.
func docTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	docs := map[string]string{
		"guides/install.md": "---\ntitle: Install Guide\ntags: [guide, setup]\n---\n\nRun the installer and follow the prompts.\n",
		"guides/deploy.md":  "---\ntitle: Deploy Guide\ntags: [guide, ops]\n---\n\nDeploy with the release pipeline.\n",
		"notes.txt":         "Scratch notes about the installer.\n",
	}
	for rel, body := range docs {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return root
}

func TestVersionCommand(t *testing.T) {
	// When: printing the version
	out, err := execute(t, "version")

	// Then: the long form appears
	require.NoError(t, err)
	assert.Contains(t, out, "doctx")
	assert.Contains(t, out, "commit:")
}

func TestVersionCommand_Short(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestVersionCommand_JSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
}

func TestInitCommand_WritesConfig(t *testing.T) {
	// Given: an empty document root
	root := t.TempDir()

	// When: running init
	out, err := execute(t, "init", "--root", root, "--no-color")

	// Then: the config file exists
	require.NoError(t, err)
	assert.Contains(t, out, ".doctx.yaml")
	_, statErr := os.Stat(filepath.Join(root, ".doctx.yaml"))
	assert.NoError(t, statErr)
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ".doctx.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	out, err := execute(t, "init", "--root", root, "--no-color")

	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "version: 1\n", string(data), "existing file should be untouched")
}

func TestIndexCommand_ReportsStatistics(t *testing.T) {
	root := docTree(t)

	out, err := execute(t, "index", "--root", root, "--no-color")

	require.NoError(t, err)
	assert.Contains(t, out, "indexed 3 document(s)")
	assert.Contains(t, out, "documents: 3")
	assert.Contains(t, out, ".md: 2")
	assert.Contains(t, out, ".txt: 1")
}

func TestSearchCommand_Text(t *testing.T) {
	root := docTree(t)

	out, err := execute(t, "search", "installer", "--root", root, "--no-color")

	require.NoError(t, err)
	assert.Contains(t, out, "2 result(s)")
	assert.Contains(t, out, "Install Guide")
	assert.Contains(t, out, "notes.txt")
}

func TestSearchCommand_TagFilter(t *testing.T) {
	root := docTree(t)

	out, err := execute(t, "search", "--tags", "ops", "--root", root, "--no-color")

	require.NoError(t, err)
	assert.Contains(t, out, "Deploy Guide")
	assert.NotContains(t, out, "Install Guide")
}

func TestSearchCommand_JSON(t *testing.T) {
	root := docTree(t)

	out, err := execute(t, "search", "deploy", "--root", root, "--format", "json")

	require.NoError(t, err)
	var resp struct {
		TotalMatched int `json:"total_matched"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.TotalMatched)
}

func TestSearchCommand_RequiresQueryOrFilter(t *testing.T) {
	root := docTree(t)

	_, err := execute(t, "search", "--root", root)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to search for")
}

func TestSearchCommand_RejectsUnknownFormat(t *testing.T) {
	root := docTree(t)

	_, err := execute(t, "search", "deploy", "--root", root, "--format", "xml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestStatsCommand_JSON(t *testing.T) {
	root := docTree(t)

	out, err := execute(t, "stats", "--root", root, "--json")

	require.NoError(t, err)
	var stats struct {
		Documents int    `json:"documents"`
		Status    string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 3, stats.Documents)
	assert.Equal(t, "healthy", stats.Status)
}
