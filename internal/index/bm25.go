package index

import "math"

// BM25Params are the ranking parameters.
type BM25Params struct {
	// K1 is the term frequency saturation parameter (default: 1.2).
	K1 float64
	// B is the document length normalization parameter (default: 0.75).
	B float64
}

// DefaultBM25Params returns the standard BM25 parameters.
func DefaultBM25Params() BM25Params {
	return BM25Params{K1: 1.2, B: 0.75}
}

// Score computes BM25 scores for the query terms over the index.
// Retrieval is OR-of-terms: a document is a candidate iff it contains
// at least one query term, and its score is the sum of per-term
// contributions. The returned map is keyed by document key.
func (ix *InvertedIndex) Score(terms []string, params BM25Params) map[string]float64 {
	if len(terms) == 0 || ix.DocCount() == 0 {
		return nil
	}

	n := float64(ix.DocCount())
	avgLen := ix.AvgDocLength()
	scores := make(map[string]float64)

	// Duplicate query terms contribute once per occurrence, matching
	// the additive model for repeated terms in a query.
	for _, term := range terms {
		list := ix.postings[term]
		if len(list) == 0 {
			continue
		}

		df := float64(len(list))
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))

		for _, p := range list {
			tf := float64(p.Frequency)
			docLen := float64(ix.docLengths[p.Key])

			norm := 1.0
			if avgLen > 0 {
				norm = 1 - params.B + params.B*(docLen/avgLen)
			}
			scores[p.Key] += idf * (tf * (params.K1 + 1)) / (tf + params.K1*norm)
		}
	}

	if len(scores) == 0 {
		return nil
	}
	return scores
}

// MatchedTerms returns which of the query terms occur in the document.
func (ix *InvertedIndex) MatchedTerms(key string, terms []string) []string {
	var matched []string
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		for _, p := range ix.postings[term] {
			if p.Key == key {
				matched = append(matched, term)
				break
			}
		}
	}
	return matched
}
