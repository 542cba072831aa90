// Package index implements the inverted index: tokenization, postings
// lists, and BM25 ranking over them.
//
// The index is owned by a single writer. Mutating methods must be
// serialized by the caller; read methods may run concurrently with each
// other but not with a mutation.
package index

import (
	"regexp"
	"strings"
)

// tokenRegex matches alphanumeric runs after lowercasing.
var tokenRegex = regexp.MustCompile(`[a-z0-9]+`)

// DefaultStopWords are high-frequency English words carrying no ranking
// signal for prose documents.
var DefaultStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for",
	"from", "has", "have", "he", "her", "his", "if", "in", "is", "it",
	"its", "nor", "not", "of", "on", "or", "she", "so", "that", "the",
	"their", "them", "then", "there", "these", "they", "this", "those",
	"to", "was", "were", "will", "with", "you", "your",
}

// TokenizerConfig configures tokenization.
type TokenizerConfig struct {
	// StopWords is the list of words dropped during tokenization.
	StopWords []string

	// MinTokenLength is the minimum token length to index (default: 2).
	MinTokenLength int
}

// DefaultTokenizerConfig returns the default tokenizer configuration.
func DefaultTokenizerConfig() TokenizerConfig {
	return TokenizerConfig{
		StopWords:      DefaultStopWords,
		MinTokenLength: 2,
	}
}

// Tokenizer splits text into index terms. The same tokenizer must be
// used for documents and queries or terms will never line up.
type Tokenizer struct {
	stopWords map[string]struct{}
	minLength int
}

// NewTokenizer builds a tokenizer from config.
func NewTokenizer(cfg TokenizerConfig) *Tokenizer {
	stop := make(map[string]struct{}, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	minLength := cfg.MinTokenLength
	if minLength <= 0 {
		minLength = 2
	}
	return &Tokenizer{stopWords: stop, minLength: minLength}
}

// Tokenize lowercases, splits on non-alphanumeric boundaries, drops
// stop words and short tokens, and applies light suffix stemming.
func (t *Tokenizer) Tokenize(text string) []string {
	words := tokenRegex.FindAllString(strings.ToLower(text), -1)

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < t.minLength {
			continue
		}
		if _, isStop := t.stopWords[w]; isStop {
			continue
		}
		tokens = append(tokens, stem(w))
	}
	return tokens
}

// stem trims common English suffixes. Deliberately shallow; it trades a
// little precision for recall without a full stemmer's edge cases.
func stem(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 5 && strings.HasSuffix(w, "ing"):
		return w[:len(w)-3]
	case len(w) > 4 && strings.HasSuffix(w, "ed"):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "es"):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s") &&
		!strings.HasSuffix(w, "ss") && !strings.HasSuffix(w, "us") && !strings.HasSuffix(w, "is"):
		return w[:len(w)-1]
	}
	return w
}
