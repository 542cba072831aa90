// Package document defines the parsed document model and the pure
// parser that produces it from raw file bytes.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"
	"time"
)

// Metadata is the closed metadata envelope extracted from a document's
// front matter. Well-known fields are typed; everything else is
// preserved opaquely in Custom so future consumers are not blocked on
// parser changes.
type Metadata struct {
	Description string         `json:"description,omitempty"`
	Author      string         `json:"author,omitempty"`
	Version     string         `json:"version,omitempty"`
	Custom      map[string]any `json:"custom,omitempty"`
}

// Document is the authoritative parsed representation of one file.
type Document struct {
	// Key is the stable identity: the normalized relative path from the
	// indexed root, forward slashes, case-sensitive.
	Key string `json:"key"`

	// AbsPath is the absolute filesystem path the document was read from.
	AbsPath string `json:"path"`

	Title    string   `json:"title"`
	Tags     []string `json:"tags,omitempty"`
	Metadata Metadata `json:"metadata"`

	// Body is the plain text after the front matter block.
	Body    string `json:"-"`
	Excerpt string `json:"excerpt,omitempty"`

	WordCount int    `json:"word_count"`
	Size      int64  `json:"size"`
	FileType  string `json:"file_type"`

	// Hash is the sha256 of the raw file content, used for change
	// detection and idempotent re-indexing.
	Hash string `json:"hash"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`

	// Generation is assigned by the coordinator at last (re)index.
	Generation uint64 `json:"generation"`
}

// Clone returns a deep copy safe to hand to concurrent readers.
func (d *Document) Clone() *Document {
	cp := *d
	if d.Tags != nil {
		cp.Tags = append([]string(nil), d.Tags...)
	}
	if d.Metadata.Custom != nil {
		cp.Metadata.Custom = make(map[string]any, len(d.Metadata.Custom))
		for k, v := range d.Metadata.Custom {
			cp.Metadata.Custom[k] = v
		}
	}
	return &cp
}

// HasTag reports whether the document carries the normalized tag.
func (d *Document) HasTag(tag string) bool {
	tag = NormalizeTag(tag)
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// KeyFromPath derives a document key from a path relative to the
// indexed root. Separators are normalized to forward slashes.
func KeyFromPath(relPath string) string {
	k := strings.ReplaceAll(relPath, "\\", "/")
	k = strings.TrimPrefix(k, "./")
	return path.Clean(k)
}

// NormalizeTag lowercases and trims a tag.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags normalizes a tag list, dropping empties and duplicates
// while keeping first-occurrence order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// HashContent returns the hex sha256 of raw content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
