package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_LowercasesAndSplits(t *testing.T) {
	tok := NewTokenizer(DefaultTokenizerConfig())

	tokens := tok.Tokenize("Alpha-Beta GAMMA_delta")
	assert.Equal(t, []string{"alpha", "beta", "gamma", "delta"}, tokens)
}

func TestTokenize_DropsStopWordsAndShortTokens(t *testing.T) {
	tok := NewTokenizer(DefaultTokenizerConfig())

	tokens := tok.Tokenize("the quick fox is in a box")
	assert.Equal(t, []string{"quick", "fox", "box"}, tokens)
}

func TestTokenize_Stemming(t *testing.T) {
	tok := NewTokenizer(DefaultTokenizerConfig())

	tests := []struct {
		in   string
		want string
	}{
		{"indexes", "index"},
		{"watchers", "watcher"},
		{"running", "runn"},
		{"parsed", "pars"},
		{"queries", "query"},
		{"status", "status"},
		{"gamma", "gamma"},
	}
	for _, tt := range tests {
		got := tok.Tokenize(tt.in)
		assert.Equal(t, []string{tt.want}, got, "input %q", tt.in)
	}
}

func TestTokenize_QueryAndDocumentAgree(t *testing.T) {
	tok := NewTokenizer(DefaultTokenizerConfig())

	// A query term must reduce to the same stem as the document term.
	assert.Equal(t, tok.Tokenize("watchers"), tok.Tokenize("watcher"))
	assert.Equal(t, tok.Tokenize("indexes"), tok.Tokenize("index"))
}

func TestTokenize_CustomStopWords(t *testing.T) {
	tok := NewTokenizer(TokenizerConfig{StopWords: []string{"gamma"}, MinTokenLength: 2})

	tokens := tok.Tokenize("alpha gamma beta")
	assert.Equal(t, []string{"alpha", "beta"}, tokens)
}

func TestTokenize_Empty(t *testing.T) {
	tok := NewTokenizer(DefaultTokenizerConfig())
	assert.Empty(t, tok.Tokenize(""))
	assert.Empty(t, tok.Tokenize("--- !!! ---"))
}
