package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/ancora/internal/core/domain"
	"github.com/custodia-labs/ancora/internal/core/ports/driven"
)

// Ensure PassageStore implements the interface.
var _ driven.PassageStore = (*PassageStore)(nil)

// position identifies a (source, index) slot. At most one passage may
// occupy a slot at a time.
type position struct {
	source string
	index  int
}

// PassageStore is an in-memory implementation of driven.PassageStore.
type PassageStore struct {
	mu        sync.RWMutex
	passages  map[string]domain.Passage // by ID
	bySource  map[string]map[string]struct{}
	positions map[position]string // slot -> owning passage ID
}

// NewPassageStore creates a new in-memory passage store.
func NewPassageStore() *PassageStore {
	return &PassageStore{
		passages:  make(map[string]domain.Passage),
		bySource:  make(map[string]map[string]struct{}),
		positions: make(map[position]string),
	}
}

// SavePassages stores the given passages in one atomic batch. Existing
// IDs are overwritten. A passage whose (source, index) slot is already
// held by a different ID is rejected: changed content gets a new ID,
// so the source's old passages must be deleted first, as reindex does.
func (s *PassageStore) SavePassages(_ context.Context, passages []domain.Passage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch before writing anything.
	claimed := make(map[position]string, len(passages))
	for _, p := range passages {
		slot := position{p.Source, p.Index}
		if owner, ok := claimed[slot]; ok && owner != p.ID {
			return positionConflict(p)
		}
		if owner, ok := s.positions[slot]; ok && owner != p.ID {
			return positionConflict(p)
		}
		claimed[slot] = p.ID
	}

	for _, p := range passages {
		if old, ok := s.passages[p.ID]; ok {
			delete(s.positions, position{old.Source, old.Index})
			if old.Source != p.Source {
				delete(s.bySource[old.Source], p.ID)
				if len(s.bySource[old.Source]) == 0 {
					delete(s.bySource, old.Source)
				}
			}
		}
		s.passages[p.ID] = p
		ids, ok := s.bySource[p.Source]
		if !ok {
			ids = make(map[string]struct{})
			s.bySource[p.Source] = ids
		}
		ids[p.ID] = struct{}{}
		s.positions[position{p.Source, p.Index}] = p.ID
	}
	return nil
}

func positionConflict(p domain.Passage) error {
	return fmt.Errorf("passage %s: chunk %d of %s is already indexed by another passage, reindex the source: %w",
		p.ID, p.Index, p.Source, domain.ErrInvalidInput)
}

// GetPassage retrieves a passage by ID.
func (s *PassageStore) GetPassage(_ context.Context, id string) (*domain.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.passages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// GetPassages retrieves the passages for the given IDs, preserving input
// order. Unknown IDs are skipped.
func (s *PassageStore) GetPassages(_ context.Context, ids []string) ([]domain.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Passage, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.passages[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

// GetBySource returns all passages for a source ordered by Index.
func (s *PassageStore) GetBySource(_ context.Context, source string) ([]domain.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Passage
	for id := range s.bySource[source] {
		result = append(result, s.passages[id])
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Index < result[j].Index
	})
	return result, nil
}

// IDsBySource returns the set of passage IDs indexed for a source.
func (s *PassageStore) IDsBySource(_ context.Context, source string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]struct{}, len(s.bySource[source]))
	for id := range s.bySource[source] {
		result[id] = struct{}{}
	}
	return result, nil
}

// ListSources summarises every indexed source, sorted by name.
func (s *PassageStore) ListSources(_ context.Context) ([]domain.SourceSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.SourceSummary, 0, len(s.bySource))
	for source, ids := range s.bySource {
		summary := domain.SourceSummary{Source: source, Chunks: len(ids)}
		for id := range ids {
			summary.TotalChars += len(s.passages[id].Text)
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Source < summaries[j].Source
	})
	return summaries, nil
}

// DeleteSource removes all passages for a source.
func (s *PassageStore) DeleteSource(_ context.Context, source string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.bySource[source]
	for id := range ids {
		delete(s.positions, position{source, s.passages[id].Index})
		delete(s.passages, id)
	}
	delete(s.bySource, source)
	return len(ids), nil
}

// Count returns the total number of stored passages.
func (s *PassageStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passages), nil
}

// Stats aggregates chunk, source and character totals.
func (s *PassageStore) Stats(_ context.Context) (*domain.LibraryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.LibraryStats{
		TotalChunks:  len(s.passages),
		TotalSources: len(s.bySource),
		Sources:      make([]string, 0, len(s.bySource)),
	}
	for source := range s.bySource {
		stats.Sources = append(stats.Sources, source)
	}
	sort.Strings(stats.Sources)

	for _, p := range s.passages {
		stats.TotalChars += len(p.Text)
	}
	if stats.TotalChunks > 0 {
		stats.AvgChunkChars = (stats.TotalChars + stats.TotalChunks/2) / stats.TotalChunks
	}
	return stats, nil
}

// Close releases resources.
func (s *PassageStore) Close() error {
	return nil
}
