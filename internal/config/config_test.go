package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neerajchowdary889/doctx/internal/errors"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Root)
	assert.Equal(t, 1.2, cfg.Search.K1)
	assert.Equal(t, 0.75, cfg.Search.B)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout())
	assert.Equal(t, 200*time.Millisecond, cfg.DebounceWindow())
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, "stdio", cfg.Server.Transport)
}

func TestLoad_ProjectFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
version: 1
paths:
  include: ["docs/**"]
  exclude: ["docs/archive/**"]
search:
  k1: 1.5
  query_timeout: "2s"
watch:
  debounce: "500ms"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".doctx.yaml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/**"}, cfg.Paths.Include)
	assert.Equal(t, 1.5, cfg.Search.K1)
	assert.Equal(t, 2*time.Second, cfg.QueryTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.DebounceWindow())
	// Untouched values keep their defaults.
	assert.Equal(t, 0.75, cfg.Search.B)
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DOCTX_QUERY_TIMEOUT", "1s")
	t.Setenv("DOCTX_LOG_LEVEL", "debug")
	t.Setenv("DOCTX_WATCH", "false")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.QueryTimeout())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.False(t, cfg.Watch.Enabled)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".doctx.yaml"), []byte("search: [broken"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative k1", func(c *Config) { c.Search.K1 = -1 }},
		{"b out of range", func(c *Config) { c.Search.B = 1.5 }},
		{"bad timeout", func(c *Config) { c.Search.QueryTimeout = "soon" }},
		{"bad debounce", func(c *Config) { c.Watch.Debounce = "fast" }},
		{"unknown transport", func(c *Config) { c.Server.Transport = "websocket" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigNotFound, errors.GetCode(err))
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".doctx.yaml")

	cfg := NewConfig()
	cfg.Paths.Exclude = []string{"drafts/**"}
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"drafts/**"}, loaded.Paths.Exclude)
	assert.Equal(t, cfg.Search.K1, loaded.Search.K1)
}

func TestDataDirAndMaxFileSize(t *testing.T) {
	cfg := NewConfig()
	cfg.Root = "/srv/docs"

	assert.Equal(t, filepath.Join("/srv/docs", ".doctx"), cfg.DataDir())
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileSize())

	cfg.Index.MaxFileSizeMB = 0
	assert.Zero(t, cfg.MaxFileSize())
}
