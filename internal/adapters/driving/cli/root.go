// Package cli implements the command-line interface. Commands are wired
// to the core services through package-level variables set once by
// initServices; tests swap them for mocks.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ancora/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/ancora/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ancora/internal/adapters/driven/search/bm25"
	"github.com/custodia-labs/ancora/internal/adapters/driven/storage/sqlite"
	vectorbadger "github.com/custodia-labs/ancora/internal/adapters/driven/vector/badger"
	vectormemory "github.com/custodia-labs/ancora/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/ancora/internal/chunker"
	"github.com/custodia-labs/ancora/internal/core/domain"
	"github.com/custodia-labs/ancora/internal/core/ports/driven"
	"github.com/custodia-labs/ancora/internal/core/ports/driving"
	"github.com/custodia-labs/ancora/internal/core/services"
	"github.com/custodia-labs/ancora/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Services used by the commands. Set by initServices on first run;
// tests replace them directly.
var (
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	evidenceService  driving.EvidenceService
	libraryService   driving.LibraryService
	settingsService  driving.SettingsService
)

// closers holds everything that needs releasing on exit, in open order.
var closers []io.Closer

var rootCmd = &cobra.Command{
	Use:   "ancora",
	Short: "Hybrid retrieval and citation grounding for your documents",
	Long: `Ancora indexes plain-text documents into a local knowledge base and
answers queries with hybrid retrieval: BM25 keyword search fused with
semantic vector search. Retrieved passages are rendered as labelled
evidence, and generated answers can be checked against that evidence so
fabricated citations are stripped before anyone reads them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		logger.SetOutput(cmd.ErrOrStderr())
		if skipsServices(cmd) {
			return nil
		}
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose diagnostics on stderr")
}

// skipsServices reports whether a command runs without the service stack.
func skipsServices(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return true
	}
	return false
}

// initServices builds the full adapter and service stack from the saved
// settings. Idempotent: a second call is a no-op, which lets tests inject
// their own services before Execute runs.
func initServices() error {
	if settingsService != nil {
		return nil
	}

	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}

	settingsService = services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("open passage store: %w", err)
	}
	closers = append(closers, store)

	vectorIndex, err := openVectorIndex(settings)
	if err != nil {
		return fmt.Errorf("open vector index: %w", err)
	}
	closers = append(closers, vectorIndex)

	searchEngine := bm25.New()
	if err := rebuildSearchIndex(store, searchEngine); err != nil {
		return fmt.Errorf("rebuild keyword index: %w", err)
	}

	// Embedding failures degrade to sparse-only retrieval rather than
	// blocking commands that never touch embeddings.
	embeddingService, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		logger.Warn("embedding provider unavailable, semantic search disabled: %v", err)
		embeddingService = nil
	} else {
		closers = append(closers, embeddingService)
	}

	chunkProcessor := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
		chunker.WithOverlapWordDivisor(settings.Chunking.OverlapWordDivisor),
	)

	ingest, err := services.NewIngestService(store, vectorIndex, searchEngine, embeddingService, chunkProcessor)
	if err != nil {
		return fmt.Errorf("create ingest service: %w", err)
	}
	closers = append(closers, ingest)

	ingestService = ingest
	retrievalService = services.NewRetrievalService(store, searchEngine, vectorIndex, embeddingService, settings.Retrieval)
	evidenceService = services.NewEvidenceService()
	libraryService = services.NewLibraryService(store, vectorIndex, searchEngine)

	return nil
}

// openVectorIndex opens the configured vector backend. The similarity
// floor comes from the retrieval settings so dense hits below it never
// surface.
func openVectorIndex(settings *domain.AppSettings) (driven.VectorIndex, error) {
	switch settings.Storage.VectorBackend {
	case domain.VectorBackendMemory:
		return vectormemory.NewIndex(settings.Retrieval.MinSimilarity), nil
	case domain.VectorBackendBadger:
		dataDir, err := sqlite.ResolveDataDir(settings.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		return vectorbadger.OpenIndex(filepath.Join(dataDir, "vectors"), false, settings.Retrieval.MinSimilarity)
	default:
		return nil, fmt.Errorf("unknown vector backend %q", settings.Storage.VectorBackend)
	}
}

// rebuildSearchIndex replays every stored passage into the in-memory BM25
// engine. The keyword index is rebuilt on each start; only passages and
// vectors persist.
func rebuildSearchIndex(store driven.PassageStore, engine driven.SearchEngine) error {
	ctx := context.Background()

	sources, err := store.ListSources(ctx)
	if err != nil {
		return err
	}
	for _, src := range sources {
		passages, err := store.GetBySource(ctx, src.Source)
		if err != nil {
			return err
		}
		if err := engine.Index(ctx, passages); err != nil {
			return err
		}
	}
	return nil
}

// closeAll releases resources in reverse open order.
func closeAll() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Warn("close: %v", err)
		}
	}
	closers = nil
}

// Execute runs the root command.
func Execute() error {
	defer closeAll()
	return rootCmd.Execute()
}
