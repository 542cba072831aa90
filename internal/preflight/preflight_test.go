package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_HealthyEnvironment(t *testing.T) {
	// Given: a readable root and a creatable data dir
	root := t.TempDir()

	// When: running all checks
	results := Run(root, filepath.Join(root, ".doctx"))

	// Then: nothing required fails
	require.NotEmpty(t, results)
	assert.False(t, HasCriticalFailure(results))
}

func TestCheckRoot_Missing(t *testing.T) {
	result := checkRoot(filepath.Join(t.TempDir(), "absent"))
	assert.Equal(t, StatusFail, result.Status)
	assert.True(t, result.Critical())
}

func TestCheckRoot_FileNotDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	result := checkRoot(path)
	assert.Equal(t, StatusFail, result.Status)
}

func TestCheckDataDir_CreatesDirectory(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), ".doctx")

	result := checkDataDir(dataDir)

	assert.Equal(t, StatusPass, result.Status)
	info, err := os.Stat(dataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "PASS", StatusPass.String())
	assert.Equal(t, "WARN", StatusWarn.String())
	assert.Equal(t, "FAIL", StatusFail.String())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 bytes", formatBytes(512))
	assert.Equal(t, "1.0 KB", formatBytes(1024))
	assert.Equal(t, "100.0 MB", formatBytes(100*1024*1024))
	assert.Equal(t, "2.0 GB", formatBytes(2*1024*1024*1024))
}
