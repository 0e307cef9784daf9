package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/ancora/internal/chunker"
	"github.com/custodia-labs/ancora/internal/core/domain"
	"github.com/custodia-labs/ancora/internal/core/ports/driven"
	"github.com/custodia-labs/ancora/internal/core/ports/driving"
	"github.com/custodia-labs/ancora/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// ingestStripes is the number of per-source ingest locks. Ingests of the
// same source serialise on one stripe; disjoint sources usually land on
// different stripes and proceed in parallel.
const ingestStripes = 16

// IngestService turns raw document text into indexed passages: chunk,
// diff against the existing index, embed only what is new, then write
// the store and both indexes.
type IngestService struct {
	passageStore     driven.PassageStore
	vectorIndex      driven.VectorIndex
	searchEngine     driven.SearchEngine
	embeddingService driven.EmbeddingService
	chunker          *chunker.Processor

	pool  *ants.Pool
	locks [ingestStripes]sync.Mutex
}

// NewIngestService creates a new ingest service. The worker pool that
// fans out embedding calls is sized to half the CPUs, minimum one.
func NewIngestService(
	passageStore driven.PassageStore,
	vectorIndex driven.VectorIndex,
	searchEngine driven.SearchEngine,
	embeddingService driven.EmbeddingService,
	chunkProcessor *chunker.Processor,
) (*IngestService, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("create embedding pool: %w", err)
	}

	return &IngestService{
		passageStore:     passageStore,
		vectorIndex:      vectorIndex,
		searchEngine:     searchEngine,
		embeddingService: embeddingService,
		chunker:          chunkProcessor,
		pool:             pool,
	}, nil
}

// Close releases the embedding worker pool.
func (s *IngestService) Close() error {
	s.pool.Release()
	return nil
}

// Ingest chunks, embeds and indexes a document. Chunk IDs are derived
// from content, so re-ingesting unchanged text finds every ID already
// present and reports NewChunks = 0 without touching the index.
func (s *IngestService) Ingest(ctx context.Context, source, text string) (*domain.IngestReport, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: empty source name", domain.ErrInvalidInput)
	}

	stripe := s.stripeFor(source)
	stripe.Lock()
	defer stripe.Unlock()

	return s.ingestLocked(ctx, source, text)
}

// Reindex deletes any passages indexed for the source, then ingests the
// given text fresh. This is the explicit path for changed documents.
func (s *IngestService) Reindex(ctx context.Context, source, text string) (*domain.ReindexReport, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: empty source name", domain.ErrInvalidInput)
	}

	stripe := s.stripeFor(source)
	stripe.Lock()
	defer stripe.Unlock()

	deleted, err := s.deleteSourceLocked(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("reindex %s: %w", source, err)
	}

	report, err := s.ingestLocked(ctx, source, text)
	if err != nil {
		return nil, err
	}

	return &domain.ReindexReport{
		Source:      source,
		Deleted:     deleted,
		TotalChars:  report.TotalChars,
		TotalChunks: report.TotalChunks,
		NewChunks:   report.NewChunks,
	}, nil
}

// ingestLocked runs the ingest pipeline. Caller holds the source stripe.
//
// Write ordering matters for query-during-ingest consistency: every
// embedding is computed (and can fail) before the first write, so a
// concurrent query sees either none or all of this call's passages and
// never a passage without its vector.
func (s *IngestService) ingestLocked(ctx context.Context, source, text string) (*domain.IngestReport, error) {
	logger.Section("Ingest")
	logger.Debug("Source: %s, %d chars", source, len(text))

	passages := s.chunker.Chunk(text, source)
	logger.Debug("Chunked into %d passages", len(passages))

	report := &domain.IngestReport{
		Source:      source,
		TotalChars:  len(text),
		TotalChunks: len(passages),
	}

	if len(passages) == 0 {
		return report, nil
	}

	existing, err := s.passageStore.IDsBySource(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("list existing passages for %s: %w", source, err)
	}

	var fresh []domain.Passage
	for _, p := range passages {
		if _, ok := existing[p.ID]; !ok {
			fresh = append(fresh, p)
		}
	}

	if len(fresh) == 0 {
		logger.Info("Ingest %s: unchanged, nothing to add", source)
		return report, nil
	}

	vectors, err := s.embedAll(ctx, fresh)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", source, err)
	}

	if err := s.passageStore.SavePassages(ctx, fresh); err != nil {
		return nil, fmt.Errorf("save passages for %s: %w", source, err)
	}

	ids := make([]string, len(fresh))
	for i, p := range fresh {
		ids[i] = p.ID
	}

	if s.vectorIndex != nil {
		if err := s.vectorIndex.Upsert(ctx, ids, vectors); err != nil {
			return nil, fmt.Errorf("index vectors for %s: %w", source, err)
		}
	}

	if err := s.searchEngine.Index(ctx, fresh); err != nil {
		return nil, fmt.Errorf("index passages for %s: %w", source, err)
	}

	report.NewChunks = len(fresh)
	logger.Info("Ingest %s: %d chunks, %d new", source, len(passages), len(fresh))

	return report, nil
}

// embedAll computes embeddings for the passages on the worker pool.
// Any single failure aborts the whole batch so the caller writes nothing.
func (s *IngestService) embedAll(ctx context.Context, passages []domain.Passage) ([][]float32, error) {
	if s.embeddingService == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vectors := make([][]float32, len(passages))
	errs := make([]error, len(passages))
	want := s.embeddingService.Dimensions()

	var wg sync.WaitGroup
	for i := range passages {
		i := i
		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			vec, err := s.embeddingService.Embed(ctx, passages[i].Text)
			if err != nil {
				errs[i] = err
				return
			}
			if want > 0 && len(vec) != want {
				errs[i] = fmt.Errorf("got %d dimensions, want %d", len(vec), want)
				return
			}
			vectors[i] = vec
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%w: passage %d: %w", domain.ErrEmbeddingFailure, i, err)
		}
	}

	return vectors, nil
}

// deleteSourceLocked removes a source's passages from the store and both
// indexes. Caller holds the source stripe. An unknown source removes zero.
func (s *IngestService) deleteSourceLocked(ctx context.Context, source string) (int, error) {
	existing, err := s.passageStore.IDsBySource(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("list passages: %w", err)
	}
	if len(existing) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(existing))
	for id := range existing {
		ids = append(ids, id)
	}

	if s.vectorIndex != nil {
		if err := s.vectorIndex.Delete(ctx, ids); err != nil {
			return 0, fmt.Errorf("delete vectors: %w", err)
		}
	}
	if err := s.searchEngine.Delete(ctx, ids); err != nil {
		return 0, fmt.Errorf("delete from search index: %w", err)
	}

	removed, err := s.passageStore.DeleteSource(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("delete passages: %w", err)
	}
	return removed, nil
}

// stripeFor maps a source name onto one of the ingest locks.
func (s *IngestService) stripeFor(source string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(source))
	return &s.locks[h.Sum32()%ingestStripes]
}
