package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine_Identical(t *testing.T) {
	v := []float32{1, 2, 3}

	assert.InDelta(t, 1.0, Cosine(v, v), 1e-9)
}

func TestCosine_Orthogonal(t *testing.T) {
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
}

func TestCosine_Opposite(t *testing.T) {
	assert.InDelta(t, -1.0, Cosine([]float32{1, 2}, []float32{-1, -2}), 1e-9)
}

func TestCosine_ScaleInvariant(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{10, 20, 30}

	assert.InDelta(t, 1.0, Cosine(a, b), 1e-6)
}

func TestCosine_MismatchedLengths(t *testing.T) {
	assert.Zero(t, Cosine([]float32{1, 2}, []float32{1, 2, 3}))
}

func TestCosine_ZeroVector(t *testing.T) {
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 2}))
	assert.Zero(t, Cosine(nil, nil))
}

func TestScan_RanksBySimilarity(t *testing.T) {
	vectors := map[string][]float32{
		"close":   {1, 0.1},
		"closer":  {1, 0.01},
		"far":     {0.1, 1},
		"against": {-1, 0},
	}

	hits := Scan(vectors, []float32{1, 0}, 10, 0.30)

	require.Len(t, hits, 2)
	assert.Equal(t, "closer", hits[0].PassageID)
	assert.Equal(t, "close", hits[1].PassageID)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestScan_FloorExcludesBeforeRanking(t *testing.T) {
	vectors := map[string][]float32{
		"weak": {0.1, 1},
	}

	// With k=1 and only a below-floor vector, nothing comes back; the
	// floor is not a post-truncation filter.
	hits := Scan(vectors, []float32{1, 0}, 1, 0.30)

	assert.Empty(t, hits)
}

func TestScan_TruncatesToK(t *testing.T) {
	vectors := map[string][]float32{
		"a": {1, 0},
		"b": {1, 0.1},
		"c": {1, 0.2},
	}

	hits := Scan(vectors, []float32{1, 0}, 2, 0.30)

	assert.Len(t, hits, 2)
}

func TestScan_TieBreaksByID(t *testing.T) {
	vectors := map[string][]float32{
		"b": {1, 0},
		"a": {2, 0},
	}

	hits := Scan(vectors, []float32{1, 0}, 10, 0.30)

	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].PassageID)
	assert.Equal(t, "b", hits[1].PassageID)
}

func TestScan_Empty(t *testing.T) {
	assert.Empty(t, Scan(nil, []float32{1}, 5, 0.30))
	assert.Empty(t, Scan(map[string][]float32{"a": {1}}, []float32{1}, 0, 0.30))
}
