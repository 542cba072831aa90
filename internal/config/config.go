// Package config loads and validates doctx configuration.
//
// Configuration hierarchy, lowest to highest precedence:
//  1. Hardcoded defaults (NewConfig)
//  2. Project config (.doctx.yaml in the document root)
//  3. Environment variables (DOCTX_*)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/neerajchowdary889/doctx/internal/errors"
)

// ProjectFileNames are the recognized project config file names, in
// lookup order.
var ProjectFileNames = []string{".doctx.yaml", ".doctx.yml"}

// Config is the complete doctx configuration.
type Config struct {
	Version int          `yaml:"version" json:"version"`
	Root    string       `yaml:"root" json:"root"`
	Paths   PathsConfig  `yaml:"paths" json:"paths"`
	Search  SearchConfig `yaml:"search" json:"search"`
	Index   IndexConfig  `yaml:"index" json:"index"`
	Watch   WatchConfig  `yaml:"watch" json:"watch"`
	Server  ServerConfig `yaml:"server" json:"server"`
}

// PathsConfig configures which paths to include and exclude.
type PathsConfig struct {
	Include []string `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude" json:"exclude"`
	// UseGitignore also excludes whatever the root's .gitignore ignores.
	UseGitignore bool `yaml:"use_gitignore" json:"use_gitignore"`
}

// SearchConfig configures ranking and query behavior.
type SearchConfig struct {
	// K1 is the BM25 term frequency saturation parameter.
	K1 float64 `yaml:"k1" json:"k1"`
	// B is the BM25 length normalization parameter.
	B float64 `yaml:"b" json:"b"`
	// ExtraStopWords extends the built-in stop word list.
	ExtraStopWords []string `yaml:"extra_stop_words" json:"extra_stop_words"`
	// MinTokenLength is the minimum token length to index.
	MinTokenLength int `yaml:"min_token_length" json:"min_token_length"`
	// QueryTimeout is the per-query budget, e.g. "5s".
	QueryTimeout string `yaml:"query_timeout" json:"query_timeout"`
	// CacheSize is the number of cached query responses per process.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// IndexConfig configures parsing and the initial scan.
type IndexConfig struct {
	// MaxFileSizeMB skips files larger than this during scan and parse.
	MaxFileSizeMB int `yaml:"max_file_size_mb" json:"max_file_size_mb"`
	// Workers is the parse parallelism for the initial scan.
	// Zero means GOMAXPROCS.
	Workers int `yaml:"workers" json:"workers"`
}

// WatchConfig configures the filesystem watcher.
type WatchConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Debounce is the coalescing window, e.g. "200ms".
	Debounce string `yaml:"debounce" json:"debounce"`
	// PollInterval is the fallback polling interval, e.g. "5s".
	PollInterval string `yaml:"poll_interval" json:"poll_interval"`
}

// ServerConfig configures the MCP server surface.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFile   string `yaml:"log_file" json:"log_file"`
}

// NewConfig returns the hardcoded defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Root:    ".",
		Paths: PathsConfig{
			Include:      nil, // every supported document type
			Exclude:      []string{"**/node_modules/**", ".git/**"},
			UseGitignore: true,
		},
		Search: SearchConfig{
			K1:             1.2,
			B:              0.75,
			MinTokenLength: 2,
			QueryTimeout:   "5s",
			CacheSize:      256,
		},
		Index: IndexConfig{
			MaxFileSizeMB: 10,
		},
		Watch: WatchConfig{
			Enabled:      true,
			Debounce:     "200ms",
			PollInterval: "5s",
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
	}
}

// Load builds the effective configuration for a document root: defaults,
// then the project file if present, then environment overrides.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()
	if dir != "" {
		cfg.Root = dir
	}

	for _, name := range ProjectFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadYAML(path); err != nil {
				return nil, err
			}
			break
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from an explicit path, then applies
// environment overrides.
func LoadFile(path string) (*Config, error) {
	cfg := NewConfig()
	if _, err := os.Stat(path); err != nil {
		return nil, errors.New(errors.ErrCodeConfigNotFound,
			fmt.Sprintf("config file not found: %s", path), err)
	}
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("parse %s: %v", path, err), err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DOCTX_ROOT"); v != "" {
		c.Root = v
	}
	if v := os.Getenv("DOCTX_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("DOCTX_LOG_FILE"); v != "" {
		c.Server.LogFile = v
	}
	if v := os.Getenv("DOCTX_QUERY_TIMEOUT"); v != "" {
		c.Search.QueryTimeout = v
	}
	if v := os.Getenv("DOCTX_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Watch.Enabled = b
		}
	}
}

// Validate checks values and normalizes out-of-range ones.
func (c *Config) Validate() error {
	if c.Search.K1 <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("search.k1 must be positive, got %g", c.Search.K1), nil)
	}
	if c.Search.B < 0 || c.Search.B > 1 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("search.b must be in [0,1], got %g", c.Search.B), nil)
	}
	if _, err := time.ParseDuration(c.Search.QueryTimeout); err != nil {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("search.query_timeout: %v", err), err)
	}
	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("watch.debounce: %v", err), err)
	}
	if _, err := time.ParseDuration(c.Watch.PollInterval); err != nil {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("watch.poll_interval: %v", err), err)
	}
	switch c.Server.Transport {
	case "", "stdio":
	default:
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("server.transport: unsupported %q", c.Server.Transport), nil)
	}
	return nil
}

// QueryTimeout returns the parsed per-query budget.
func (c *Config) QueryTimeout() time.Duration {
	d, err := time.ParseDuration(c.Search.QueryTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// DebounceWindow returns the parsed debounce window.
func (c *Config) DebounceWindow() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 200 * time.Millisecond
	}
	return d
}

// PollInterval returns the parsed polling fallback interval.
func (c *Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Watch.PollInterval)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// MaxFileSize returns the parse size limit in bytes. Zero disables the
// limit.
func (c *Config) MaxFileSize() int64 {
	if c.Index.MaxFileSizeMB <= 0 {
		return 0
	}
	return int64(c.Index.MaxFileSizeMB) * 1024 * 1024
}

// DataDir returns the engine's private directory under the root.
func (c *Config) DataDir() string {
	return filepath.Join(c.Root, ".doctx")
}

// WriteYAML writes the configuration to a file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
