// Package globs matches slash-separated relative paths against glob
// patterns. Supported forms cover what indexing configs actually use:
// extension globs (*.md), **/ prefixes, dir/** subtree patterns, and
// exact names. Paths are always compared with forward slashes.
package globs

import (
	"path"
	"strings"
)

// MatchDir reports whether a directory relative path matches a pattern.
// A pattern like "archive/**" matches "archive" itself and everything
// under it, so walkers can prune the subtree early.
func MatchDir(relPath, pattern string) bool {
	relPath = normalize(relPath)
	pattern = normalize(pattern)

	// **/name or **/name/** matches any path segment
	if strings.HasPrefix(pattern, "**/") {
		suffix := strings.TrimPrefix(pattern, "**/")
		suffix = strings.TrimSuffix(suffix, "/**")
		for _, part := range strings.Split(relPath, "/") {
			if part == suffix {
				return true
			}
		}
		return false
	}

	// dir/** matches the directory itself or any path below it
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return relPath == prefix || strings.HasPrefix(relPath, prefix+"/")
	}

	return relPath == pattern || strings.HasPrefix(relPath, pattern+"/")
}

// MatchFile reports whether a file relative path matches a pattern.
func MatchFile(relPath, pattern string) bool {
	relPath = normalize(relPath)
	pattern = normalize(pattern)
	baseName := path.Base(relPath)

	// dir/** matches any file below the directory
	if strings.HasSuffix(pattern, "/**") && !strings.HasPrefix(pattern, "**/") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return strings.HasPrefix(relPath, prefix+"/")
	}

	// dir/name*.ext patterns with a directory component and a filename glob
	if strings.Contains(pattern, "/") && strings.Contains(pattern, "*") && !strings.HasPrefix(pattern, "**/") {
		dir := path.Dir(pattern)
		filePattern := path.Base(pattern)
		if path.Dir(relPath) == dir {
			matched, err := path.Match(filePattern, baseName)
			return err == nil && matched
		}
		return false
	}

	// **/suffix patterns
	if strings.HasPrefix(pattern, "**/") {
		suffix := strings.TrimPrefix(pattern, "**/")
		// **/dir/** matches any file below a dir segment at any depth
		if strings.HasSuffix(suffix, "/**") {
			seg := strings.TrimSuffix(suffix, "/**")
			parts := strings.Split(relPath, "/")
			for i, part := range parts {
				if part == seg && i < len(parts)-1 {
					return true
				}
			}
			return false
		}
		if strings.HasPrefix(suffix, "*.") {
			ext := strings.TrimPrefix(suffix, "*")
			return strings.HasSuffix(baseName, ext)
		}
		parts := strings.Split(relPath, "/")
		for i, part := range parts {
			if part == suffix && i < len(parts)-1 {
				return true
			}
		}
		matched, err := path.Match(suffix, baseName)
		return err == nil && matched
	}

	// *middle* contains match, case-insensitive
	if strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") && len(pattern) > 1 {
		middle := strings.TrimSuffix(strings.TrimPrefix(pattern, "*"), "*")
		return strings.Contains(strings.ToLower(baseName), strings.ToLower(middle))
	}

	// *.ext and other *suffix patterns
	if strings.HasPrefix(pattern, "*") {
		return strings.HasSuffix(baseName, strings.TrimPrefix(pattern, "*"))
	}

	// prefix* patterns
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(baseName, strings.TrimSuffix(pattern, "*"))
	}

	// Patterns with a directory component match the relative path exactly
	if strings.Contains(pattern, "/") {
		return relPath == pattern
	}

	return baseName == pattern
}

// MatchAnyFile reports whether relPath matches any of the patterns.
func MatchAnyFile(relPath string, patterns []string) bool {
	for _, p := range patterns {
		if MatchFile(relPath, p) {
			return true
		}
	}
	return false
}

// MatchAnyDir reports whether a directory matches any of the patterns.
func MatchAnyDir(relPath string, patterns []string) bool {
	for _, p := range patterns {
		if MatchDir(relPath, p) {
			return true
		}
	}
	return false
}

func normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimPrefix(p, "./")
}
