package driven

import "context"

// VectorIndex stores passage embeddings and serves nearest-neighbour
// queries by cosine similarity. It owns the vectors: the passage store
// never sees them.
type VectorIndex interface {
	// Upsert inserts or replaces vectors for the given passage IDs.
	// ids and vectors are parallel slices. Upsert is idempotent by ID;
	// the index does not detect content drift behind an ID.
	Upsert(ctx context.Context, ids []string, vectors [][]float32) error

	// Delete removes vectors from the index. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) error

	// Query finds up to k passages by descending cosine similarity.
	// Hits below the index's similarity floor are excluded before
	// ranking. An empty index returns an empty slice, never an error.
	Query(ctx context.Context, vector []float32, k int) ([]VectorHit, error)

	// Count returns the number of stored vectors.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// PassageID is the matched passage.
	PassageID string

	// Similarity is the cosine similarity score.
	Similarity float64
}
