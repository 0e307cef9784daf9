package driven

import (
	"context"

	"github.com/custodia-labs/ancora/internal/core/domain"
)

// SearchEngine provides lexical relevance search over the indexed
// passages. Backed by an in-process BM25 ranking function.
type SearchEngine interface {
	// Index adds or updates passages in the search index.
	Index(ctx context.Context, passages []domain.Passage) error

	// Delete removes passages from the search index. Unknown IDs are
	// ignored.
	Delete(ctx context.Context, ids []string) error

	// Search scores the query against the corpus and returns up to k
	// hits by descending score. Hits with non-positive scores are
	// excluded. An empty corpus returns an empty slice, never an error.
	Search(ctx context.Context, query string, k int) ([]SearchHit, error)

	// Count returns the number of indexed passages.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// SearchHit represents a search result from the engine.
type SearchHit struct {
	// PassageID is the matched passage.
	PassageID string

	// Score is the lexical relevance score (BM25). Not comparable with
	// cosine similarities; rank order is what fusion consumes.
	Score float64
}
