package driven

import (
	"context"

	"github.com/custodia-labs/ancora/internal/core/domain"
)

// PassageStore persists passages and answers inventory queries.
// Backed by SQLite for durable storage or an in-memory map for tests.
//
// The store holds text and positional identity only. Embeddings live in
// the VectorIndex; the two are kept consistent by the ingest service.
type PassageStore interface {
	// SavePassages stores the given passages in one atomic batch.
	// Existing IDs are overwritten. A passage whose (source, index)
	// slot is already held by a different ID is rejected with
	// domain.ErrInvalidInput; the source must be deleted or reindexed
	// first.
	SavePassages(ctx context.Context, passages []domain.Passage) error

	// GetPassage retrieves a passage by ID.
	// Returns domain.ErrNotFound if no passage has the ID.
	GetPassage(ctx context.Context, id string) (*domain.Passage, error)

	// GetPassages retrieves the passages for the given IDs, preserving
	// input order. Unknown IDs are skipped, not errors.
	GetPassages(ctx context.Context, ids []string) ([]domain.Passage, error)

	// GetBySource returns all passages for a source ordered by Index.
	// An unknown source yields an empty slice.
	GetBySource(ctx context.Context, source string) ([]domain.Passage, error)

	// IDsBySource returns the set of passage IDs indexed for a source.
	IDsBySource(ctx context.Context, source string) (map[string]struct{}, error)

	// ListSources summarises every indexed source, sorted by name.
	ListSources(ctx context.Context) ([]domain.SourceSummary, error)

	// DeleteSource removes all passages for a source and reports how many
	// were removed. An unknown source removes zero.
	DeleteSource(ctx context.Context, source string) (int, error)

	// Count returns the total number of stored passages.
	Count(ctx context.Context) (int, error)

	// Stats aggregates chunk, source and character totals.
	Stats(ctx context.Context) (*domain.LibraryStats, error)

	// Close releases resources.
	Close() error
}
