package keywords

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const abstract = `Graph neural networks learn representations of graph structured data.
We propose a sparse attention mechanism for large graphs. Experiments on citation
networks show that sparse attention improves accuracy in 2024 benchmarks.
The mechanism scales to millions of nodes.`

func TestNewRanker_UnsupportedLanguage(t *testing.T) {
	_, err := NewRanker("it")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	r, err := NewRanker("EN")
	require.NoError(t, err)
	assert.Equal(t, 3, r.MinLength)
}

func TestExtract_Properties(t *testing.T) {
	r, err := NewRanker("en")
	require.NoError(t, err)

	got, err := r.Extract(abstract, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)

	for _, kw := range got {
		assert.Equal(t, strings.ToLower(kw), kw)
		assert.GreaterOrEqual(t, len([]rune(kw)), 3, kw)
		assert.NotContains(t, englishStopwords, kw)
		assert.True(t, strings.IndexFunc(kw, unicode.IsLetter) >= 0, kw)
		assert.NotContains(t, kw, " ")
	}
	assert.NotContains(t, got, "2024")

	// deterministisch
	again, err := r.Extract(abstract, 5)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestExtract_LimitAndEmpty(t *testing.T) {
	r, err := NewRanker("en")
	require.NoError(t, err)

	got, err := r.Extract(abstract, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	for _, text := range []string{"", "   ", "the and of 12 34", "a. b. c."} {
		got, err := r.Extract(text, 5)
		require.NoError(t, err)
		assert.Empty(t, got, text)
	}

	got, err = r.Extract(abstract, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtract_TieBreakOnTerm(t *testing.T) {
	r, err := NewRanker("en")
	require.NoError(t, err)

	// Beide Terme haben identische Statistiken.
	got, err := r.Extract("Quantum computing. Quantum computing.", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"computing", "quantum"}, got)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"state-of-the-art", "GPT-4", "models"}, tokenize("--state-of-the-art GPT-4, (models)"))
	assert.True(t, isAcronym("NASA"))
	assert.False(t, isAcronym("Nasa"))
	assert.False(t, isAcronym("A"))
}
