// Package vector holds the scoring shared by the vector index adapters:
// cosine similarity and the floor-filtered top-k scan the in-memory and
// badger-backed indexes both run over their resident vectors.
package vector

import (
	"math"
	"sort"

	"github.com/custodia-labs/ancora/internal/core/ports/driven"
)

// DefaultMinSimilarity is the default cosine similarity floor. Hits
// below it never enter ranking: near-orthogonal embeddings are useless
// regardless of what fusion would do with their rank.
const DefaultMinSimilarity = 0.30

// Cosine returns the cosine similarity of two vectors. Mismatched
// lengths or zero vectors score zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Scan scores the query against every resident vector and returns up to
// k hits by descending similarity, excluding hits below minSimilarity.
// Ties break by passage ID so results are deterministic regardless of
// map iteration order. An empty map yields an empty slice.
func Scan(vectors map[string][]float32, query []float32, k int, minSimilarity float64) []driven.VectorHit {
	if k <= 0 || len(vectors) == 0 {
		return nil
	}

	hits := make([]driven.VectorHit, 0, len(vectors))
	for id, vec := range vectors {
		sim := Cosine(query, vec)
		if sim < minSimilarity {
			continue
		}
		hits = append(hits, driven.VectorHit{PassageID: id, Similarity: sim})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].PassageID < hits[j].PassageID
	})

	if len(hits) > k {
		hits = hits[:k]
	}

	return hits
}
