package mcp

import (
	"context"

	"github.com/custodia-labs/ancora/internal/core/domain"
)

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	ingestReport  *domain.IngestReport
	reindexReport *domain.ReindexReport
	err           error
}

func (m *mockIngestService) Ingest(_ context.Context, _, _ string) (*domain.IngestReport, error) {
	return m.ingestReport, m.err
}

func (m *mockIngestService) Reindex(_ context.Context, _, _ string) (*domain.ReindexReport, error) {
	return m.reindexReport, m.err
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.FusedResult
	err     error
}

func (m *mockRetrievalService) Search(_ context.Context, _ string, _ int) ([]domain.FusedResult, error) {
	return m.results, m.err
}

// mockEvidenceService is a mock implementation of driving.EvidenceService.
type mockEvidenceService struct {
	evidence *domain.EvidenceSet
	cleaned  string
	removed  []string
	report   *domain.GroundingReport
}

func (m *mockEvidenceService) BuildEvidence(results []domain.FusedResult) *domain.EvidenceSet {
	if m.evidence != nil {
		return m.evidence
	}
	return &domain.EvidenceSet{Results: results, Index: map[int]domain.Passage{}}
}

func (m *mockEvidenceService) ValidateAnswer(generated string, _ map[int]domain.Passage) (string, []string) {
	if m.cleaned != "" {
		return m.cleaned, m.removed
	}
	return generated, m.removed
}

func (m *mockEvidenceService) CheckGrounding(generated string, _ map[int]domain.Passage) *domain.GroundingReport {
	if m.report != nil {
		return m.report
	}
	return &domain.GroundingReport{Grounded: true, CleanedAnswer: generated}
}

// mockLibraryService is a mock implementation of driving.LibraryService.
type mockLibraryService struct {
	sources  []domain.SourceSummary
	passages []domain.Passage
	removed  int
	cleared  int
	stats    *domain.LibraryStats
	count    int
	err      error
}

func (m *mockLibraryService) ListSources(_ context.Context) ([]domain.SourceSummary, error) {
	return m.sources, m.err
}

func (m *mockLibraryService) InspectSource(_ context.Context, _ string) ([]domain.Passage, error) {
	return m.passages, m.err
}

func (m *mockLibraryService) DeleteSource(_ context.Context, _ string) (int, error) {
	return m.removed, m.err
}

func (m *mockLibraryService) ClearAll(_ context.Context) (int, error) {
	return m.cleared, m.err
}

func (m *mockLibraryService) Stats(_ context.Context) (*domain.LibraryStats, error) {
	return m.stats, m.err
}

func (m *mockLibraryService) ChunkCount(_ context.Context) (int, error) {
	return m.count, m.err
}

// validPorts returns a Ports value with every service mocked.
func validPorts() *Ports {
	return &Ports{
		Ingest:    &mockIngestService{},
		Retrieval: &mockRetrievalService{},
		Evidence:  &mockEvidenceService{},
		Library:   &mockLibraryService{},
	}
}
