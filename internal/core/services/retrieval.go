package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/custodia-labs/ancora/internal/core/domain"
	"github.com/custodia-labs/ancora/internal/core/ports/driven"
	"github.com/custodia-labs/ancora/internal/core/ports/driving"
	"github.com/custodia-labs/ancora/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService runs the hybrid search pipeline: parallel dense and
// sparse lookups, reciprocal-rank fusion, and the minimum fused-score
// cutoff.
type RetrievalService struct {
	passageStore     driven.PassageStore
	searchEngine     driven.SearchEngine
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService
	settings         domain.RetrievalSettings
}

// NewRetrievalService creates a new retrieval service. The vectorIndex and
// embeddingService are optional (can be nil); without them search degrades
// to sparse-only.
func NewRetrievalService(
	passageStore driven.PassageStore,
	searchEngine driven.SearchEngine,
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
	settings domain.RetrievalSettings,
) *RetrievalService {
	defaults := domain.DefaultAppSettings().Retrieval
	if settings.TopK <= 0 {
		settings.TopK = defaults.TopK
	}
	if settings.RRFConstant <= 0 {
		settings.RRFConstant = defaults.RRFConstant
	}
	if settings.MinFusedScore <= 0 {
		settings.MinFusedScore = defaults.MinFusedScore
	}

	return &RetrievalService{
		passageStore:     passageStore,
		searchEngine:     searchEngine,
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
		settings:         settings,
	}
}

// Search performs hybrid retrieval for the query and returns up to topK
// fused results in rank order. An empty corpus yields an empty slice.
func (s *RetrievalService) Search(
	ctx context.Context, query string, topK int,
) ([]domain.FusedResult, error) {
	logger.Section("Hybrid Retrieval")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	if topK <= 0 {
		topK = s.settings.TopK
	}

	// Request a larger candidate pool from each strategy so fusion has
	// enough overlap to work with before the cutoff trims it back.
	poolSize := topK * 2
	logger.Debug("Query: %q, topK: %d, pool per strategy: %d", query, topK, poolSize)

	denseHits, sparseHits, err := s.gatherHits(ctx, query, poolSize)
	if err != nil {
		return nil, err
	}

	dense, err := s.hydrate(ctx, denseHits)
	if err != nil {
		return nil, fmt.Errorf("hydrate dense hits: %w", err)
	}
	sparse, err := s.hydrate(ctx, sparseHits)
	if err != nil {
		return nil, fmt.Errorf("hydrate sparse hits: %w", err)
	}

	results := s.fuse(dense, sparse, topK)
	logger.Info("Fused results: %d (dense=%d, sparse=%d)", len(results), len(dense), len(sparse))

	return results, nil
}

// gatherHits runs the dense and sparse lookups in parallel. The two reads
// are independent and side-effect free; degrading to a single surviving
// list when one strategy fails keeps search usable.
func (s *RetrievalService) gatherHits(
	ctx context.Context, query string, k int,
) (denseIDs, sparseIDs []string, err error) {
	var (
		wg        sync.WaitGroup
		denseErr  error
		sparseErr error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		denseIDs, denseErr = s.denseSearch(ctx, query, k)
	}()

	go func() {
		defer wg.Done()
		sparseIDs, sparseErr = s.sparseSearch(ctx, query, k)
	}()

	wg.Wait()

	if denseErr != nil && sparseErr != nil {
		logger.Warn("Both retrieval strategies failed")
		return nil, nil, fmt.Errorf("%w: dense=%w, sparse=%w",
			domain.ErrRetrievalUnavailable, denseErr, sparseErr)
	}
	if denseErr != nil {
		logger.Warn("Dense retrieval failed, using sparse only: %v", denseErr)
		return nil, sparseIDs, nil
	}
	if sparseErr != nil {
		logger.Warn("Sparse retrieval failed, using dense only: %v", sparseErr)
		return denseIDs, nil, nil
	}

	return denseIDs, sparseIDs, nil
}

// denseSearch embeds the query and looks up nearest neighbours. The
// similarity floor is applied inside the vector index.
func (s *RetrievalService) denseSearch(ctx context.Context, query string, k int) ([]string, error) {
	if s.vectorIndex == nil || s.embeddingService == nil {
		return nil, fmt.Errorf("dense search: %w", domain.ErrEmbeddingUnavailable)
	}

	vector, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.vectorIndex.Query(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	logger.Debug("Dense search: %d hits", len(hits))

	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = hit.PassageID
	}
	return ids, nil
}

// sparseSearch runs the lexical BM25 lookup.
func (s *RetrievalService) sparseSearch(ctx context.Context, query string, k int) ([]string, error) {
	if s.searchEngine == nil {
		return nil, fmt.Errorf("sparse search: engine not configured")
	}

	hits, err := s.searchEngine.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	logger.Debug("Sparse search: %d hits", len(hits))

	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = hit.PassageID
	}
	return ids, nil
}

// hydrate resolves hit IDs to full passages, preserving rank order.
// Passages deleted since the index lookup are skipped.
func (s *RetrievalService) hydrate(ctx context.Context, ids []string) ([]domain.Passage, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.passageStore.GetPassages(ctx, ids)
}

// fusionKey identifies a passage across both ranked lists. Fusion sums
// contributions by (source, index), not by raw text equality.
func fusionKey(p domain.Passage) string {
	return p.Source + "::" + strconv.Itoa(p.Index)
}

// fuse merges the two ranked lists with Reciprocal Rank Fusion, truncates
// to topN, then drops results below the minimum fused score.
//
// A passage at 0-based rank r contributes 1/(k+r+1) from each list it
// appears in. Ties keep first-encounter order (dense before sparse): the
// sort is stable, so equal scores never reshuffle.
func (s *RetrievalService) fuse(dense, sparse []domain.Passage, topN int) []domain.FusedResult {
	scores := make(map[string]float64)
	passages := make(map[string]domain.Passage)
	var order []string

	accumulate := func(list []domain.Passage) {
		for rank, p := range list {
			key := fusionKey(p)
			if _, seen := passages[key]; !seen {
				passages[key] = p
				order = append(order, key)
			}
			scores[key] += 1.0 / float64(s.settings.RRFConstant+rank+1)
		}
	}

	accumulate(dense)
	accumulate(sparse)

	results := make([]domain.FusedResult, 0, len(order))
	for _, key := range order {
		results = append(results, domain.FusedResult{
			Passage: passages[key],
			Score:   scores[key],
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topN {
		results = results[:topN]
	}

	// RRF can rank a mediocre passage into the top-N purely through weak
	// single-strategy support. The cutoff keeps "best of a bad lot"
	// passages out of the evidence.
	kept := results[:0]
	for _, r := range results {
		if r.Score >= s.settings.MinFusedScore {
			kept = append(kept, r)
		}
	}

	if len(kept) < len(results) {
		logger.Debug("Fusion cutoff dropped %d results below %.4f",
			len(results)-len(kept), s.settings.MinFusedScore)
	}

	return kept
}
