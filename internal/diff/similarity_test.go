package diff

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimilarityIdentical(t *testing.T) {
	require.Equal(t, 1.0, Similarity("hello world", "hello world"))
}

func TestSimilarityBothEmpty(t *testing.T) {
	require.Equal(t, 1.0, Similarity("", ""))
}

func TestSimilarityOneEmpty(t *testing.T) {
	require.Equal(t, 0.0, Similarity("hello", ""))
}

func TestSimilarityDisjoint(t *testing.T) {
	require.Equal(t, 0.0, Similarity("abc", "xyz"))
}

func TestSimilarityKnownRatio(t *testing.T) {
	// Longest block "bcd" (3 runes), nothing else matches: 2*3/8.
	require.InDelta(t, 0.75, Similarity("abcd", "bcde"), 1e-9)
}

func TestSimilarityRecursesAroundLongestBlock(t *testing.T) {
	// "abc" matches, then "ef" matches to the right of it: 2*5/12.
	got := Similarity("abcXef", "abcYZef")
	require.InDelta(t, float64(10)/13.0, got, 1e-9)
}

func TestSimilarityMultibyteRunes(t *testing.T) {
	// 18°C vs 19°C: rune-wise three of four match on each side.
	got := Similarity("18°C", "19°C")
	require.InDelta(t, 0.75, got, 1e-9)
}

func TestSimilaritySymmetricEnough(t *testing.T) {
	a, b := "the quick brown fox", "the quick brown dog"
	require.InDelta(t, Similarity(a, b), Similarity(b, a), 0.05)
}
