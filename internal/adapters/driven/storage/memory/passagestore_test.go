package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ancora/internal/core/domain"
)

func seededStore(t *testing.T) *PassageStore {
	t.Helper()

	store := NewPassageStore()
	err := store.SavePassages(context.Background(), []domain.Passage{
		{ID: "a2", Text: "alpha second", Source: "alpha.md", Index: 1},
		{ID: "a1", Text: "alpha first", Source: "alpha.md", Index: 0},
		{ID: "b1", Text: "beta", Source: "beta.md", Index: 0},
	})
	require.NoError(t, err)
	return store
}

func TestGetPassage(t *testing.T) {
	store := seededStore(t)

	p, err := store.GetPassage(context.Background(), "a1")

	require.NoError(t, err)
	assert.Equal(t, "alpha first", p.Text)
	assert.Equal(t, 0, p.Index)
}

func TestGetPassage_NotFound(t *testing.T) {
	store := seededStore(t)

	_, err := store.GetPassage(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetPassages_PreservesOrderSkipsUnknown(t *testing.T) {
	store := seededStore(t)

	passages, err := store.GetPassages(context.Background(), []string{"b1", "missing", "a1"})

	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "b1", passages[0].ID)
	assert.Equal(t, "a1", passages[1].ID)
}

func TestGetBySource_OrderedByIndex(t *testing.T) {
	store := seededStore(t)

	passages, err := store.GetBySource(context.Background(), "alpha.md")

	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "a1", passages[0].ID)
	assert.Equal(t, "a2", passages[1].ID)
}

func TestGetBySource_Unknown(t *testing.T) {
	store := seededStore(t)

	passages, err := store.GetBySource(context.Background(), "missing.md")

	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestIDsBySource(t *testing.T) {
	store := seededStore(t)

	ids, err := store.IDsBySource(context.Background(), "alpha.md")

	require.NoError(t, err)
	require.Len(t, ids, 2)
	_, ok := ids["a1"]
	assert.True(t, ok)
	_, ok = ids["a2"]
	assert.True(t, ok)
}

func TestListSources_SortedByName(t *testing.T) {
	store := seededStore(t)

	sources, err := store.ListSources(context.Background())

	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "alpha.md", sources[0].Source)
	assert.Equal(t, 2, sources[0].Chunks)
	assert.Equal(t, len("alpha second")+len("alpha first"), sources[0].TotalChars)
	assert.Equal(t, "beta.md", sources[1].Source)
}

func TestDeleteSource(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	removed, err := store.DeleteSource(ctx, "alpha.md")

	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteSource_Unknown(t *testing.T) {
	store := seededStore(t)

	removed, err := store.DeleteSource(context.Background(), "missing.md")

	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestSavePassages_OverwritesByID(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	err := store.SavePassages(ctx, []domain.Passage{
		{ID: "a1", Text: "rewritten", Source: "alpha.md", Index: 0},
	})
	require.NoError(t, err)

	p, err := store.GetPassage(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "rewritten", p.Text)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSavePassages_RejectsPositionConflict(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	err := store.SavePassages(ctx, []domain.Passage{
		{ID: "a9", Text: "edited content", Source: "alpha.md", Index: 0},
	})

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "reindex")

	p, getErr := store.GetPassage(ctx, "a1")
	require.NoError(t, getErr)
	assert.Equal(t, "alpha first", p.Text)

	count, countErr := store.Count(ctx)
	require.NoError(t, countErr)
	assert.Equal(t, 3, count)
}

func TestSavePassages_ConflictingBatchWritesNothing(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	err := store.SavePassages(ctx, []domain.Passage{
		{ID: "c1", Text: "gamma", Source: "gamma.md", Index: 0},
		{ID: "a9", Text: "edited", Source: "alpha.md", Index: 0},
	})

	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, getErr := store.GetPassage(ctx, "c1")
	assert.ErrorIs(t, getErr, domain.ErrNotFound)
}

func TestSavePassages_DeletedSourceFreesPositions(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	_, err := store.DeleteSource(ctx, "alpha.md")
	require.NoError(t, err)

	err = store.SavePassages(ctx, []domain.Passage{
		{ID: "a9", Text: "rewritten first", Source: "alpha.md", Index: 0},
	})

	require.NoError(t, err)
}

func TestStats(t *testing.T) {
	store := seededStore(t)

	stats, err := store.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalChunks)
	assert.Equal(t, 2, stats.TotalSources)
	assert.Equal(t, []string{"alpha.md", "beta.md"}, stats.Sources)
	assert.Greater(t, stats.AvgChunkChars, 0)
}

func TestStats_Empty(t *testing.T) {
	store := NewPassageStore()

	stats, err := store.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalChunks)
	assert.Equal(t, 0, stats.AvgChunkChars)
}
