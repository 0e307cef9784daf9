package cli

import (
	"context"
	"testing"

	"github.com/custodia-labs/ancora/internal/adapters/driven/ai"
	"github.com/custodia-labs/ancora/internal/adapters/driven/embedding/mock"
	"github.com/custodia-labs/ancora/internal/adapters/driven/search/bm25"
	storagememory "github.com/custodia-labs/ancora/internal/adapters/driven/storage/memory"
	vectormemory "github.com/custodia-labs/ancora/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/ancora/internal/chunker"
	"github.com/custodia-labs/ancora/internal/core/domain"
	"github.com/custodia-labs/ancora/internal/core/services"
)

// setupTestServices wires the commands to real services backed by
// in-memory adapters, pre-seeded with one document. The returned cleanup
// restores the previous services.
func setupTestServices() func() {
	oldIngest := ingestService
	oldRetrieval := retrievalService
	oldEvidence := evidenceService
	oldLibrary := libraryService
	oldSettings := settingsService

	store := storagememory.NewPassageStore()
	vectorIndex := vectormemory.NewIndex(0.30)
	searchEngine := bm25.New()
	// High dimensionality keeps random cosines of unrelated texts far
	// below the similarity floor.
	embedder := mock.NewEmbeddingService(256)
	chunkProcessor := chunker.New(chunker.WithChunkSize(120), chunker.WithOverlap(20))

	ingest, err := services.NewIngestService(store, vectorIndex, searchEngine, embedder, chunkProcessor)
	if err != nil {
		panic(err)
	}

	ingestService = ingest
	retrievalService = services.NewRetrievalService(store, searchEngine, vectorIndex, embedder, domain.RetrievalSettings{TopK: 5})
	evidenceService = services.NewEvidenceService()
	libraryService = services.NewLibraryService(store, vectorIndex, searchEngine)
	settingsService = services.NewSettingsService(storagememory.NewConfigStore(), ai.NewConfigValidator())

	seed := "A test query against the knowledge base returns passages about " +
		"hybrid retrieval. Keyword and semantic rankings are fused so the " +
		"best evidence surfaces first. Answers cite their passages."
	if _, err := ingestService.Ingest(context.Background(), "guide.md", seed); err != nil {
		panic(err)
	}

	return func() {
		_ = ingest.Close()
		ingestService = oldIngest
		retrievalService = oldRetrieval
		evidenceService = oldEvidence
		libraryService = oldLibrary
		settingsService = oldSettings
	}
}

// resetRootCmd clears argument and output state between executions.
func resetRootCmd(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})
}
