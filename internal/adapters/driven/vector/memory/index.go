// Package memory provides an in-memory vector index for tests and
// ephemeral runs. Vectors are lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/ancora/internal/adapters/driven/vector"
	"github.com/custodia-labs/ancora/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index keeps passage vectors in a map and serves queries by full scan.
type Index struct {
	mu            sync.RWMutex
	vectors       map[string][]float32
	minSimilarity float64
}

// NewIndex creates an empty in-memory vector index. minSimilarity <= 0
// falls back to the default floor.
func NewIndex(minSimilarity float64) *Index {
	if minSimilarity <= 0 {
		minSimilarity = vector.DefaultMinSimilarity
	}
	return &Index{
		vectors:       make(map[string][]float32),
		minSimilarity: minSimilarity,
	}
}

// Upsert inserts or replaces vectors for the given passage IDs.
func (i *Index) Upsert(_ context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("upsert: %d ids but %d vectors", len(ids), len(vectors))
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	for n, id := range ids {
		i.vectors[id] = vectors[n]
	}
	return nil
}

// Delete removes vectors from the index. Unknown IDs are ignored.
func (i *Index) Delete(_ context.Context, ids []string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, id := range ids {
		delete(i.vectors, id)
	}
	return nil
}

// Query finds up to k passages by descending cosine similarity.
func (i *Index) Query(_ context.Context, queryVec []float32, k int) ([]driven.VectorHit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return vector.Scan(i.vectors, queryVec, k, i.minSimilarity), nil
}

// Count returns the number of stored vectors.
func (i *Index) Count(_ context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.vectors), nil
}

// Close clears the index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.vectors = make(map[string][]float32)
	return nil
}
