package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ancora/internal/core/domain"
	"github.com/custodia-labs/ancora/internal/core/ports/driven"
	"github.com/custodia-labs/ancora/internal/core/ports/driving"
	"github.com/custodia-labs/ancora/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService manages the inventory of indexed sources. Deletions go
// through here so the passage store and both indexes stay consistent.
type LibraryService struct {
	passageStore driven.PassageStore
	vectorIndex  driven.VectorIndex
	searchEngine driven.SearchEngine
}

// NewLibraryService creates a new library service. The vectorIndex is
// optional (can be nil).
func NewLibraryService(
	passageStore driven.PassageStore,
	vectorIndex driven.VectorIndex,
	searchEngine driven.SearchEngine,
) *LibraryService {
	return &LibraryService{
		passageStore: passageStore,
		vectorIndex:  vectorIndex,
		searchEngine: searchEngine,
	}
}

// ListSources summarises every indexed source, sorted by name.
func (s *LibraryService) ListSources(ctx context.Context) ([]domain.SourceSummary, error) {
	return s.passageStore.ListSources(ctx)
}

// InspectSource returns a source's passages ordered by position.
func (s *LibraryService) InspectSource(ctx context.Context, source string) ([]domain.Passage, error) {
	passages, err := s.passageStore.GetBySource(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("inspect source %s: %w", source, err)
	}
	if len(passages) == 0 {
		return nil, fmt.Errorf("source %q: %w", source, domain.ErrNotFound)
	}
	return passages, nil
}

// DeleteSource removes a source's passages from the store and both
// indexes, reporting how many were removed.
func (s *LibraryService) DeleteSource(ctx context.Context, source string) (int, error) {
	existing, err := s.passageStore.IDsBySource(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("delete source %s: %w", source, err)
	}
	if len(existing) == 0 {
		return 0, fmt.Errorf("source %q: %w", source, domain.ErrNotFound)
	}

	ids := make([]string, 0, len(existing))
	for id := range existing {
		ids = append(ids, id)
	}

	if s.vectorIndex != nil {
		if err := s.vectorIndex.Delete(ctx, ids); err != nil {
			return 0, fmt.Errorf("delete vectors for %s: %w", source, err)
		}
	}
	if err := s.searchEngine.Delete(ctx, ids); err != nil {
		return 0, fmt.Errorf("delete %s from search index: %w", source, err)
	}

	removed, err := s.passageStore.DeleteSource(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("delete passages for %s: %w", source, err)
	}

	logger.Info("Deleted source %s: %d passages", source, removed)
	return removed, nil
}

// ClearAll wipes every indexed passage and reports how many were removed.
func (s *LibraryService) ClearAll(ctx context.Context) (int, error) {
	sources, err := s.passageStore.ListSources(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear all: %w", err)
	}

	total := 0
	for _, summary := range sources {
		removed, err := s.DeleteSource(ctx, summary.Source)
		if err != nil {
			return total, fmt.Errorf("clear %s: %w", summary.Source, err)
		}
		total += removed
	}

	logger.Info("Cleared library: %d passages across %d sources", total, len(sources))
	return total, nil
}

// Stats aggregates chunk, source and character totals.
func (s *LibraryService) Stats(ctx context.Context) (*domain.LibraryStats, error) {
	return s.passageStore.Stats(ctx)
}

// ChunkCount returns the total number of indexed passages.
func (s *LibraryService) ChunkCount(ctx context.Context) (int, error) {
	return s.passageStore.Count(ctx)
}
