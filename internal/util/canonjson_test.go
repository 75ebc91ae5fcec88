package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalJSONSortsKeys(t *testing.T) {
	data, err := CanonicalJSON(map[string]any{"b": 1, "a": 2})
	require.NoError(t, err)
	require.Equal(t, "{\n  \"a\": 2,\n  \"b\": 1\n}", string(data))
}

func TestCanonicalJSONIsDeterministic(t *testing.T) {
	value := map[string]any{
		"steps": []any{map[string]any{"tool": "search", "ok": true}},
		"name":  "checkout",
	}
	first, err := CanonicalJSON(value)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := CanonicalJSON(value)
		require.NoError(t, err)
		require.Equal(t, string(first), string(again))
	}
}

func TestCanonicalJSONEmptyContainers(t *testing.T) {
	data, err := CanonicalJSON(map[string]any{"arr": []any{}, "obj": map[string]any{}})
	require.NoError(t, err)
	require.Equal(t, "{\n  \"arr\": [],\n  \"obj\": {}\n}", string(data))
}

func TestCanonicalJSONDoesNotEscapeHTML(t *testing.T) {
	data, err := CanonicalJSON(map[string]any{"q": "a < b && c > d"})
	require.NoError(t, err)
	require.Contains(t, string(data), "a < b && c > d")
}

func TestHashString(t *testing.T) {
	require.Equal(t, HashString("sunny"), HashString("sunny"))
	require.NotEqual(t, HashString("sunny"), HashString("rainy"))
	require.Len(t, HashString(""), 64)
	require.Len(t, ShortHash("sunny"), 8)
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		require.Len(t, id, 16)
		require.False(t, seen[id])
		seen[id] = true
	}
}
