package index

import (
	"sort"

	"github.com/neerajchowdary889/doctx/internal/document"
)

// Posting records one document's occurrences of a term.
type Posting struct {
	// Key is the document key.
	Key string
	// Frequency is the number of occurrences in the document.
	Frequency int
	// Positions are token offsets within the document's term stream.
	Positions []int
}

// InvertedIndex maps terms to postings lists. Postings lists are kept
// sorted by document key so merges and scans are deterministic.
//
// Not safe for concurrent mutation; the coordinator serializes writers.
type InvertedIndex struct {
	tokenizer *Tokenizer

	postings   map[string][]Posting
	docLengths map[string]int
	// docTerms remembers which terms each document contributed, so a
	// removal can retract every posting without a full scan.
	docTerms    map[string][]string
	totalLength int
}

// NewInvertedIndex creates an empty index using the given tokenizer.
func NewInvertedIndex(tok *Tokenizer) *InvertedIndex {
	return &InvertedIndex{
		tokenizer:  tok,
		postings:   make(map[string][]Posting),
		docLengths: make(map[string]int),
		docTerms:   make(map[string][]string),
	}
}

// Tokenizer returns the tokenizer used to build this index. Queries
// must be tokenized with the same one.
func (ix *InvertedIndex) Tokenizer() *Tokenizer { return ix.tokenizer }

// documentTerms builds the term stream indexed for a document: title
// first, then body, then tags, as one positional sequence.
func (ix *InvertedIndex) documentTerms(doc *document.Document) []string {
	terms := ix.tokenizer.Tokenize(doc.Title)
	terms = append(terms, ix.tokenizer.Tokenize(doc.Body)...)
	for _, tag := range doc.Tags {
		terms = append(terms, ix.tokenizer.Tokenize(tag)...)
	}
	return terms
}

// Index adds or replaces a document's postings. Re-indexing an existing
// key first retracts its previous postings, so the call is safe for
// content updates. Content-hash diffing happens at the coordinator; the
// index itself always does the work it is asked to.
func (ix *InvertedIndex) Index(doc *document.Document) {
	key := doc.Key
	if _, exists := ix.docLengths[key]; exists {
		ix.Remove(key)
	}

	terms := ix.documentTerms(doc)
	if len(terms) == 0 {
		// Empty documents still count as present so removal and
		// membership checks behave uniformly.
		ix.docLengths[key] = 0
		ix.docTerms[key] = nil
		return
	}

	byTerm := make(map[string][]int)
	for pos, term := range terms {
		byTerm[term] = append(byTerm[term], pos)
	}

	unique := make([]string, 0, len(byTerm))
	for term, positions := range byTerm {
		unique = append(unique, term)
		ix.insertPosting(term, Posting{
			Key:       key,
			Frequency: len(positions),
			Positions: positions,
		})
	}
	sort.Strings(unique)

	ix.docTerms[key] = unique
	ix.docLengths[key] = len(terms)
	ix.totalLength += len(terms)
}

// Remove retracts every posting the document contributed. Removing an
// unknown key is a no-op.
func (ix *InvertedIndex) Remove(key string) {
	length, exists := ix.docLengths[key]
	if !exists {
		return
	}

	for _, term := range ix.docTerms[key] {
		list := ix.postings[term]
		i := sort.Search(len(list), func(i int) bool { return list[i].Key >= key })
		if i < len(list) && list[i].Key == key {
			list = append(list[:i], list[i+1:]...)
		}
		if len(list) == 0 {
			delete(ix.postings, term)
		} else {
			ix.postings[term] = list
		}
	}

	delete(ix.docTerms, key)
	delete(ix.docLengths, key)
	ix.totalLength -= length
}

// insertPosting inserts into a term's list keeping key order.
func (ix *InvertedIndex) insertPosting(term string, p Posting) {
	list := ix.postings[term]
	i := sort.Search(len(list), func(i int) bool { return list[i].Key >= p.Key })
	list = append(list, Posting{})
	copy(list[i+1:], list[i:])
	list[i] = p
	ix.postings[term] = list
}

// Postings returns the postings list for a term, ordered by key. The
// returned slice must not be mutated.
func (ix *InvertedIndex) Postings(term string) []Posting {
	return ix.postings[term]
}

// Contains reports whether the key is present in the index.
func (ix *InvertedIndex) Contains(key string) bool {
	_, ok := ix.docLengths[key]
	return ok
}

// DocCount returns the number of indexed documents.
func (ix *InvertedIndex) DocCount() int { return len(ix.docLengths) }

// DocLength returns the term-stream length of a document.
func (ix *InvertedIndex) DocLength(key string) int { return ix.docLengths[key] }

// AvgDocLength returns the mean term-stream length across documents.
func (ix *InvertedIndex) AvgDocLength() float64 {
	if len(ix.docLengths) == 0 {
		return 0
	}
	return float64(ix.totalLength) / float64(len(ix.docLengths))
}

// TermCount returns the number of distinct terms in the index.
func (ix *InvertedIndex) TermCount() int { return len(ix.postings) }

// PostingsReferencing counts postings across all terms that reference
// the key. Zero after removal is the retraction-completeness invariant.
func (ix *InvertedIndex) PostingsReferencing(key string) int {
	n := 0
	for _, list := range ix.postings {
		i := sort.Search(len(list), func(i int) bool { return list[i].Key >= key })
		if i < len(list) && list[i].Key == key {
			n++
		}
	}
	return n
}

// Clear drops all postings and document state.
func (ix *InvertedIndex) Clear() {
	ix.postings = make(map[string][]Posting)
	ix.docLengths = make(map[string]int)
	ix.docTerms = make(map[string][]string)
	ix.totalLength = 0
}
