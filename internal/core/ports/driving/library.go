package driving

import (
	"context"

	"github.com/custodia-labs/ancora/internal/core/domain"
)

// LibraryService manages the inventory of indexed sources.
type LibraryService interface {
	// ListSources summarises every indexed source, sorted by name.
	ListSources(ctx context.Context) ([]domain.SourceSummary, error)

	// InspectSource returns a source's passages ordered by position.
	// Returns domain.ErrNotFound for an unknown source.
	InspectSource(ctx context.Context, source string) ([]domain.Passage, error)

	// DeleteSource removes a source's passages from the store and both
	// indexes, reporting how many were removed. Returns
	// domain.ErrNotFound for an unknown source.
	DeleteSource(ctx context.Context, source string) (int, error)

	// ClearAll wipes every indexed passage and reports how many were
	// removed.
	ClearAll(ctx context.Context) (int, error)

	// Stats aggregates chunk, source and character totals.
	Stats(ctx context.Context) (*domain.LibraryStats, error)

	// ChunkCount returns the total number of indexed passages.
	ChunkCount(ctx context.Context) (int, error)
}
