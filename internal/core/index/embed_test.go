package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbedIsDeterministic(t *testing.T) {
	for _, text := range []string{"", "hello", "hello world", "Pydantic agents validate output"} {
		a := Embed(text, 384)
		b := Embed(text, 384)
		require.Equal(t, a, b, "repeated calls must produce identical vectors for %q", text)
	}
}

func TestEmbedDimensionAndNorm(t *testing.T) {
	for _, text := range []string{"", "a", "some longer text with words"} {
		vec := Embed(text, 384)
		require.Len(t, vec, 384)

		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		require.InDelta(t, 1.0, math.Sqrt(norm), 1e-5, "vector for %q must be unit length", text)
	}
}

func TestEmbedRespectsConfiguredDimensionality(t *testing.T) {
	require.Len(t, Embed("text", 16), 16)
	require.Len(t, Embed("text", 768), 768)
}

func TestEmbedDistinctTextsDiffer(t *testing.T) {
	a := Embed("first document", 384)
	b := Embed("second document", 384)
	require.NotEqual(t, a, b)
}

func TestEmbedComponentsBounded(t *testing.T) {
	// Components are uniform draws in [-1, 1) scaled down by the norm.
	for _, v := range Embed("bounded", 384) {
		require.Less(t, math.Abs(float64(v)), 1.0)
	}
}
