// Package store holds the authoritative mapping from document key to
// the latest parsed document, plus the tag index maintained in lockstep
// with it.
//
// The store is owned by the index coordinator. Put and Delete are only
// called inside the coordinator's exclusive mutation phase; readers go
// through the coordinator's snapshot discipline.
package store

import (
	"sort"
	"strings"
	"time"

	"github.com/neerajchowdary889/doctx/internal/document"
	"github.com/neerajchowdary889/doctx/internal/errors"
)

// DocumentStore maps keys to documents and tags to key sets.
type DocumentStore struct {
	docs map[string]*document.Document
	tags map[string]map[string]struct{}

	totalBytes int64
	totalWords int64
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]*document.Document),
		tags: make(map[string]map[string]struct{}),
	}
}

// Get returns the document for a key, or a not-found error. The result
// is a copy safe to hand out.
func (s *DocumentStore) Get(key string) (*document.Document, error) {
	doc, ok := s.docs[key]
	if !ok {
		return nil, errors.NotFound(key)
	}
	return doc.Clone(), nil
}

// Contains reports whether the key is present.
func (s *DocumentStore) Contains(key string) bool {
	_, ok := s.docs[key]
	return ok
}

// Hash returns the content hash for a key, or "" if absent. Used by
// the coordinator for idempotent re-indexing.
func (s *DocumentStore) Hash(key string) string {
	if doc, ok := s.docs[key]; ok {
		return doc.Hash
	}
	return ""
}

// Put inserts or replaces a document and updates the tag index.
func (s *DocumentStore) Put(doc *document.Document) {
	if old, ok := s.docs[doc.Key]; ok {
		s.retractTags(old)
		s.totalBytes -= old.Size
		s.totalWords -= int64(old.WordCount)
	}

	s.docs[doc.Key] = doc
	s.totalBytes += doc.Size
	s.totalWords += int64(doc.WordCount)

	for _, tag := range doc.Tags {
		set, ok := s.tags[tag]
		if !ok {
			set = make(map[string]struct{})
			s.tags[tag] = set
		}
		set[doc.Key] = struct{}{}
	}
}

// Delete removes a document and its tag entries. Deleting an unknown
// key is a no-op.
func (s *DocumentStore) Delete(key string) {
	doc, ok := s.docs[key]
	if !ok {
		return
	}
	s.retractTags(doc)
	s.totalBytes -= doc.Size
	s.totalWords -= int64(doc.WordCount)
	delete(s.docs, key)
}

func (s *DocumentStore) retractTags(doc *document.Document) {
	for _, tag := range doc.Tags {
		if set, ok := s.tags[tag]; ok {
			delete(set, doc.Key)
			if len(set) == 0 {
				delete(s.tags, tag)
			}
		}
	}
}

// ListFilter narrows List results. Zero value means no filtering.
type ListFilter struct {
	// Tag restricts to documents carrying the normalized tag.
	Tag string
	// PathPrefix restricts to keys under the given prefix.
	PathPrefix string
	// FileType restricts to one extension, e.g. ".md".
	FileType string
	// Since restricts to documents modified at or after the time.
	Since time.Time
}

// List returns copies of matching documents ordered by key. The slice
// is a point-in-time snapshot; re-iterating it never observes later
// mutations.
func (s *DocumentStore) List(filter ListFilter) []*document.Document {
	keys := make([]string, 0, len(s.docs))

	if filter.Tag != "" {
		tag := document.NormalizeTag(filter.Tag)
		for key := range s.tags[tag] {
			keys = append(keys, key)
		}
	} else {
		for key := range s.docs {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := make([]*document.Document, 0, len(keys))
	for _, key := range keys {
		doc := s.docs[key]
		if doc == nil {
			continue
		}
		if filter.PathPrefix != "" && !strings.HasPrefix(doc.Key, filter.PathPrefix) {
			continue
		}
		if filter.FileType != "" && doc.FileType != strings.ToLower(filter.FileType) {
			continue
		}
		if !filter.Since.IsZero() && doc.ModifiedAt.Before(filter.Since) {
			continue
		}
		out = append(out, doc.Clone())
	}
	return out
}

// KeysWithTag returns the set of keys carrying the normalized tag.
func (s *DocumentStore) KeysWithTag(tag string) map[string]struct{} {
	set, ok := s.tags[document.NormalizeTag(tag)]
	if !ok {
		return nil
	}
	out := make(map[string]struct{}, len(set))
	for k := range set {
		out[k] = struct{}{}
	}
	return out
}

// TagCount is one entry of the tag histogram.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagCounts returns every tag with its document count, ordered by
// descending count then tag name.
func (s *DocumentStore) TagCounts() []TagCount {
	out := make([]TagCount, 0, len(s.tags))
	for tag, set := range s.tags {
		out = append(out, TagCount{Tag: tag, Count: len(set)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// Stats summarizes store contents.
type Stats struct {
	Documents  int            `json:"documents"`
	TotalBytes int64          `json:"total_bytes"`
	TotalWords int64          `json:"total_words"`
	Tags       int            `json:"tags"`
	FileTypes  map[string]int `json:"file_types"`
	LastUpdate time.Time      `json:"last_update"`
}

// Stats computes the current store statistics.
func (s *DocumentStore) Stats() Stats {
	st := Stats{
		Documents:  len(s.docs),
		TotalBytes: s.totalBytes,
		TotalWords: s.totalWords,
		Tags:       len(s.tags),
		FileTypes:  make(map[string]int),
	}
	for _, doc := range s.docs {
		st.FileTypes[doc.FileType]++
		if doc.ModifiedAt.After(st.LastUpdate) {
			st.LastUpdate = doc.ModifiedAt
		}
	}
	return st
}

// Len returns the number of documents.
func (s *DocumentStore) Len() int { return len(s.docs) }

// Clear drops all documents and tags.
func (s *DocumentStore) Clear() {
	s.docs = make(map[string]*document.Document)
	s.tags = make(map[string]map[string]struct{})
	s.totalBytes = 0
	s.totalWords = 0
}
