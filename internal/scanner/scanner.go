// Package scanner discovers indexable documents under a root directory.
// It streams results so the engine can start parsing while the walk is
// still in progress.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/neerajchowdary889/doctx/internal/document"
	"github.com/neerajchowdary889/doctx/internal/gitignore"
	"github.com/neerajchowdary889/doctx/internal/globs"
)

// ScanOptions configures a scan.
type ScanOptions struct {
	// RootDir is the directory to scan. Defaults to ".".
	RootDir string

	// IncludePatterns restricts results to matching files. Empty means
	// every supported document type passes.
	IncludePatterns []string

	// ExcludePatterns drops matching files and prunes matching
	// directories.
	ExcludePatterns []string

	// MaxFileSize skips files larger than this many bytes. Zero means
	// no limit.
	MaxFileSize int64

	// Ignore drops paths the repository's .gitignore ignores. Nil means
	// no ignore rules apply.
	Ignore *gitignore.Matcher
}

// ScanResult is one discovered file, or a walk error.
type ScanResult struct {
	// Path is relative to the root, forward slashes.
	Path string
	// AbsPath is the absolute filesystem path.
	AbsPath string
	// Size is the file size in bytes.
	Size int64
	// ModTime is the file modification time.
	ModTime time.Time
	// Err is set for entries that could not be read. Path may be empty.
	Err error
}

// Scanner walks a document tree applying include/exclude patterns.
type Scanner struct{}

// New creates a Scanner.
func New() *Scanner {
	return &Scanner{}
}

// Scan streams indexable files under opts.RootDir. The returned channel
// is closed when the walk finishes or the context is cancelled.
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) (<-chan ScanResult, error) {
	rootDir := opts.RootDir
	if rootDir == "" {
		rootDir = "."
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve root directory: %w", err)
	}
	if info, err := os.Stat(absRoot); err != nil {
		return nil, fmt.Errorf("stat root directory: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", absRoot)
	}

	results := make(chan ScanResult, 64)
	go func() {
		defer close(results)
		s.walk(ctx, absRoot, opts, results)
	}()
	return results, nil
}

func (s *Scanner) walk(ctx context.Context, absRoot string, opts ScanOptions, results chan<- ScanResult) {
	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			// Report and continue; one unreadable entry must not abort
			// the whole scan.
			select {
			case results <- ScanResult{Err: err}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		}

		relPath, relErr := filepath.Rel(absRoot, path)
		if relErr != nil || relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if s.skipDir(relPath, opts) {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.wantFile(relPath, opts) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
			slog.Debug("skipping oversized file",
				slog.String("path", relPath),
				slog.Int64("size", info.Size()))
			return nil
		}

		select {
		case results <- ScanResult{Path: relPath, AbsPath: path, Size: info.Size(), ModTime: info.ModTime()}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})
	if err != nil && err != context.Canceled {
		slog.Warn("scan aborted", slog.String("error", err.Error()))
	}
}

func (s *Scanner) skipDir(relPath string, opts ScanOptions) bool {
	base := filepath.Base(relPath)
	if base == ".git" || base == ".doctx" || base == "node_modules" {
		return true
	}
	if opts.Ignore != nil && opts.Ignore.Match(relPath, true) {
		return true
	}
	return globs.MatchAnyDir(relPath, opts.ExcludePatterns)
}

func (s *Scanner) wantFile(relPath string, opts ScanOptions) bool {
	if !document.Supported(relPath) {
		return false
	}
	if opts.Ignore != nil && opts.Ignore.Match(relPath, false) {
		return false
	}
	if globs.MatchAnyFile(relPath, opts.ExcludePatterns) {
		return false
	}
	if len(opts.IncludePatterns) > 0 {
		return globs.MatchAnyFile(relPath, opts.IncludePatterns)
	}
	return true
}
