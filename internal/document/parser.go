package document

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/neerajchowdary889/doctx/internal/errors"
)

// FileStat carries the filesystem attributes the parser cannot derive
// from content. Passing them in keeps parsing pure and I/O-free.
type FileStat struct {
	Size    int64
	ModTime time.Time
}

// Parser turns raw file bytes into Document records.
type Parser struct {
	// MaxFileSize rejects files larger than this many bytes. Zero means
	// no limit.
	MaxFileSize int64

	// ExcerptLength bounds generated excerpts. Defaults to 200 runes.
	ExcerptLength int
}

// supportedExtensions maps recognized file extensions to true.
var supportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".text":     true,
	".rst":      true,
}

const defaultExcerptLength = 200

// NewParser returns a parser with default limits.
func NewParser() *Parser {
	return &Parser{
		MaxFileSize:   10 * 1024 * 1024,
		ExcerptLength: defaultExcerptLength,
	}
}

// Supported reports whether the path's extension is an indexable type.
func Supported(p string) bool {
	return supportedExtensions[strings.ToLower(path.Ext(KeyFromPath(p)))]
}

// Parse produces a Document from raw bytes, or a parse error that is
// localized to this one document. It never touches the filesystem.
func (p *Parser) Parse(relPath string, raw []byte, stat FileStat) (*Document, error) {
	key := KeyFromPath(relPath)
	ext := strings.ToLower(path.Ext(key))

	if !supportedExtensions[ext] {
		return nil, errors.Parse(errors.ErrCodeUnsupportedType, key,
			fmt.Errorf("unsupported extension %q", ext))
	}
	if p.MaxFileSize > 0 && int64(len(raw)) > p.MaxFileSize {
		return nil, errors.Parse(errors.ErrCodeFileTooLarge, key,
			fmt.Errorf("%d bytes exceeds limit %d", len(raw), p.MaxFileSize))
	}
	if bytes.IndexByte(raw, 0) >= 0 || !utf8.Valid(raw) {
		return nil, errors.Parse(errors.ErrCodeNotText, key,
			fmt.Errorf("content is not valid UTF-8 text"))
	}

	front, body, err := splitFrontMatter(string(raw))
	if err != nil {
		return nil, errors.Parse(errors.ErrCodeFrontMatterInvalid, key, err)
	}

	doc := &Document{
		Key:        key,
		Body:       body,
		Size:       stat.Size,
		FileType:   ext,
		Hash:       HashContent(raw),
		ModifiedAt: stat.ModTime,
		CreatedAt:  stat.ModTime,
	}
	applyFrontMatter(doc, front)

	if doc.Title == "" {
		doc.Title = firstHeading(body)
	}
	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(path.Base(key), ext)
	}

	doc.Excerpt = makeExcerpt(body, p.excerptLength())
	doc.WordCount = CountWords(body)

	return doc, nil
}

func (p *Parser) excerptLength() int {
	if p.ExcerptLength > 0 {
		return p.ExcerptLength
	}
	return defaultExcerptLength
}

const frontMatterDelim = "---"

// splitFrontMatter separates a leading YAML front matter block from the
// body. Files without a block return a nil map and the full content.
// A malformed block is an error; an absent one is not.
func splitFrontMatter(content string) (map[string]any, string, error) {
	rest, ok := strings.CutPrefix(content, frontMatterDelim+"\n")
	if !ok {
		if rest, ok = strings.CutPrefix(content, frontMatterDelim+"\r\n"); !ok {
			return nil, content, nil
		}
	}

	idx := strings.Index(rest, "\n"+frontMatterDelim)
	if idx < 0 {
		return nil, "", fmt.Errorf("unterminated front matter block")
	}
	block := rest[:idx]
	body := rest[idx+1+len(frontMatterDelim):]
	body = strings.TrimPrefix(body, "\r")
	body = strings.TrimPrefix(body, "\n")

	front := make(map[string]any)
	if err := yaml.Unmarshal([]byte(block), &front); err != nil {
		return nil, "", fmt.Errorf("invalid front matter: %w", err)
	}
	return front, body, nil
}

// applyFrontMatter fills the well-known fields and preserves everything
// else in Metadata.Custom.
func applyFrontMatter(doc *Document, front map[string]any) {
	if len(front) == 0 {
		return
	}

	for k, v := range front {
		switch strings.ToLower(k) {
		case "title":
			doc.Title = toString(v)
		case "description":
			doc.Metadata.Description = toString(v)
		case "author":
			doc.Metadata.Author = toString(v)
		case "version":
			doc.Metadata.Version = toString(v)
		case "tags":
			doc.Tags = NormalizeTags(toStringList(v))
		case "created":
			if ts, ok := toTime(v); ok {
				doc.CreatedAt = ts
			}
		case "modified":
			// Filesystem mtime wins; the header value is kept opaquely.
			doc.Metadata.Custom = setCustom(doc.Metadata.Custom, k, v)
		default:
			doc.Metadata.Custom = setCustom(doc.Metadata.Custom, k, v)
		}
	}
}

func setCustom(m map[string]any, k string, v any) map[string]any {
	if m == nil {
		m = make(map[string]any)
	}
	m[k] = v
	return m
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func toStringList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, toString(e))
		}
		return out
	case []string:
		return t
	case string:
		// Comma-separated fallback: "tags: a, b"
		parts := strings.Split(t, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		return out
	default:
		return nil
	}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

var headingRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// firstHeading returns the text of the first level-one heading.
func firstHeading(body string) string {
	if m := headingRe.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

var (
	excerptHeadingRe = regexp.MustCompile(`#{1,6}\s+`)
	excerptBoldRe    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	excerptItalicRe  = regexp.MustCompile(`\*(.+?)\*`)
	excerptCodeRe    = regexp.MustCompile("`(.+?)`")
	excerptLinkRe    = regexp.MustCompile(`\[(.+?)\]\(.+?\)`)
	excerptSpaceRe   = regexp.MustCompile(`\n+`)
	wordRe           = regexp.MustCompile(`\w+`)
)

// makeExcerpt strips markdown syntax and truncates to maxLen runes.
func makeExcerpt(body string, maxLen int) string {
	plain := excerptHeadingRe.ReplaceAllString(body, "")
	plain = excerptBoldRe.ReplaceAllString(plain, "$1")
	plain = excerptItalicRe.ReplaceAllString(plain, "$1")
	plain = excerptCodeRe.ReplaceAllString(plain, "$1")
	plain = excerptLinkRe.ReplaceAllString(plain, "$1")
	plain = excerptSpaceRe.ReplaceAllString(plain, " ")
	plain = strings.TrimSpace(plain)

	runes := []rune(plain)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return plain
}

// CountWords counts word tokens in content.
func CountWords(content string) int {
	return len(wordRe.FindAllStringIndex(content, -1))
}
