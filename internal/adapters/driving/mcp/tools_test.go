package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ancora/internal/core/domain"
)

func TestServer_handleIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("ingests a document", func(t *testing.T) {
		ports := validPorts()
		ports.Ingest = &mockIngestService{
			ingestReport: &domain.IngestReport{
				Source:      "guide.md",
				TotalChars:  420,
				TotalChunks: 3,
				NewChunks:   3,
			},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleIngest(ctx, nil, IngestInput{Source: "guide.md", Text: "content"})

		require.NoError(t, err)
		assert.Equal(t, "guide.md", output.Source)
		assert.Equal(t, 3, output.NewChunks)
		assert.Equal(t, 0, output.Deleted)
	})

	t.Run("fresh reindexes the source", func(t *testing.T) {
		ports := validPorts()
		ports.Ingest = &mockIngestService{
			reindexReport: &domain.ReindexReport{
				Source:      "guide.md",
				Deleted:     3,
				TotalChunks: 2,
				NewChunks:   2,
			},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleIngest(ctx, nil, IngestInput{Source: "guide.md", Text: "new", Fresh: true})

		require.NoError(t, err)
		assert.Equal(t, 3, output.Deleted)
		assert.Equal(t, 2, output.NewChunks)
	})

	t.Run("returns error on ingest failure", func(t *testing.T) {
		ports := validPorts()
		ports.Ingest = &mockIngestService{err: errors.New("embedding failed")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleIngest(ctx, nil, IngestInput{Source: "guide.md", Text: "content"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding failed")
	})
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns fused results", func(t *testing.T) {
		ports := validPorts()
		ports.Retrieval = &mockRetrievalService{
			results: []domain.FusedResult{
				{
					Passage: domain.Passage{ID: "p1", Source: "handbook.md", Index: 1, Text: "The limit is 50 km/h."},
					Score:   0.0328,
				},
			},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "speed limit", Limit: 5})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "handbook.md", output.Results[0].Source)
		assert.Equal(t, 2, output.Results[0].Chunk)
		assert.Equal(t, 0.0328, output.Results[0].Score)
		assert.Equal(t, "The limit is 50 km/h.", output.Results[0].Text)
	})

	t.Run("empty corpus yields empty results", func(t *testing.T) {
		server, err := NewServer(validPorts())
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "anything"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Empty(t, output.Results)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		ports := validPorts()
		ports.Retrieval = &mockRetrievalService{err: errors.New("search failed")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestServer_handleEvidence(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the rendered evidence set", func(t *testing.T) {
		ports := validPorts()
		ports.Evidence = &mockEvidenceService{
			evidence: &domain.EvidenceSet{
				ID:    "trace-1",
				Block: "[Source 1: handbook.md, chunk 2]\nThe limit is 50 km/h.",
				Index: map[int]domain.Passage{
					1: {ID: "p1", Source: "handbook.md", Index: 1},
				},
				Citations: []string{"[handbook.md, chunk 2]"},
			},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleEvidence(ctx, nil, EvidenceInput{Query: "speed limit"})

		require.NoError(t, err)
		assert.Equal(t, "trace-1", output.ID)
		assert.Contains(t, output.Block, "[Source 1: handbook.md, chunk 2]")
		assert.Equal(t, []string{"[handbook.md, chunk 2]"}, output.Citations)
		assert.Equal(t, 1, output.Size)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		ports := validPorts()
		ports.Retrieval = &mockRetrievalService{err: errors.New("search failed")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleEvidence(ctx, nil, EvidenceInput{Query: "test"})

		require.Error(t, err)
	})
}

func TestServer_handleGround(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the grounding report", func(t *testing.T) {
		ports := validPorts()
		ports.Evidence = &mockEvidenceService{
			report: &domain.GroundingReport{
				Grounded:              false,
				HallucinatedCitations: []string{"[Source 9: nowhere.md, chunk 9]"},
				SourcesCited:          []int{1},
				TotalChunksAvailable:  2,
				CleanedAnswer:         "Cleaned.",
			},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleGround(ctx, nil, GroundInput{Query: "q", Answer: "a"})

		require.NoError(t, err)
		assert.False(t, output.Grounded)
		assert.Equal(t, []string{"[Source 9: nowhere.md, chunk 9]"}, output.HallucinatedCitations)
		assert.Equal(t, []int{1}, output.SourcesCited)
		assert.Equal(t, 2, output.TotalChunksAvailable)
		assert.Equal(t, "Cleaned.", output.CleanedAnswer)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		ports := validPorts()
		ports.Retrieval = &mockRetrievalService{err: errors.New("search failed")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleGround(ctx, nil, GroundInput{Query: "q", Answer: "a"})

		require.Error(t, err)
	})
}

func TestServer_handleListSources(t *testing.T) {
	ctx := context.Background()

	t.Run("lists sources", func(t *testing.T) {
		ports := validPorts()
		ports.Library = &mockLibraryService{
			sources: []domain.SourceSummary{
				{Source: "alpha.md", Chunks: 2, TotalChars: 100},
				{Source: "beta.md", Chunks: 1, TotalChars: 40},
			},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleListSources(ctx, nil, ListSourcesInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "alpha.md", output.Sources[0].Source)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		ports := validPorts()
		ports.Library = &mockLibraryService{err: errors.New("store down")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleListSources(ctx, nil, ListSourcesInput{})

		require.Error(t, err)
	})
}

func TestServer_handleDeleteSource(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes a source", func(t *testing.T) {
		ports := validPorts()
		ports.Library = &mockLibraryService{removed: 4}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleDeleteSource(ctx, nil, DeleteSourceInput{Source: "alpha.md"})

		require.NoError(t, err)
		assert.Equal(t, "alpha.md", output.Source)
		assert.Equal(t, 4, output.Removed)
	})

	t.Run("returns error for unknown source", func(t *testing.T) {
		ports := validPorts()
		ports.Library = &mockLibraryService{err: domain.ErrNotFound}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleDeleteSource(ctx, nil, DeleteSourceInput{Source: "missing.md"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleStats(t *testing.T) {
	ctx := context.Background()

	t.Run("returns library stats", func(t *testing.T) {
		ports := validPorts()
		ports.Library = &mockLibraryService{
			stats: &domain.LibraryStats{
				TotalChunks:   5,
				TotalSources:  2,
				TotalChars:    900,
				AvgChunkChars: 180,
				Sources:       []string{"alpha.md", "beta.md"},
			},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleStats(ctx, nil, StatsInput{})

		require.NoError(t, err)
		assert.Equal(t, 5, output.Stats.TotalChunks)
		assert.Equal(t, 180, output.Stats.AvgChunkChars)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		ports := validPorts()
		ports.Library = &mockLibraryService{err: errors.New("store down")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleStats(ctx, nil, StatsInput{})

		require.Error(t, err)
	})
}
