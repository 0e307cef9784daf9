package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/ancora/internal/core/domain"
	"github.com/custodia-labs/ancora/internal/core/ports/driving"
	"github.com/custodia-labs/ancora/internal/logger"
)

// Ensure EvidenceService implements the interface.
var _ driving.EvidenceService = (*EvidenceService)(nil)

// evidenceSeparator delimits passages inside the rendered evidence block.
const evidenceSeparator = "\n\n---\n\n"

// EvidenceService renders fused results into the labelled evidence block
// handed to an external text generator, and validates the generator's
// output against it.
type EvidenceService struct{}

// NewEvidenceService creates a new evidence service.
func NewEvidenceService() *EvidenceService {
	return &EvidenceService{}
}

// BuildEvidence mints citation labels 1..N over the fused results in rank
// order and renders the evidence block.
//
// The block layout is a compatibility surface: the generator's prompt
// tells it to cite "[Source N: ...]" and the grounding scanner parses the
// same shape back out. It must not drift between queries.
func (s *EvidenceService) BuildEvidence(results []domain.FusedResult) *domain.EvidenceSet {
	set := &domain.EvidenceSet{
		ID:      uuid.NewString(),
		Results: results,
		Index:   make(map[int]domain.Passage, len(results)),
	}

	if len(results) == 0 {
		logger.Debug("Evidence %s: no results, empty block", set.ID)
		return set
	}

	blocks := make([]string, len(results))
	seen := make(map[string]bool)

	for i, result := range results {
		label := i + 1
		p := result.Passage
		set.Index[label] = p

		blocks[i] = fmt.Sprintf("[Source %d: %s, chunk %d]\n%s",
			label, p.Source, p.ChunkNumber(), p.Text)

		citation := fmt.Sprintf("[%s, chunk %d]", p.Source, p.ChunkNumber())
		if !seen[citation] {
			seen[citation] = true
			set.Citations = append(set.Citations, citation)
		}
	}

	set.Block = strings.Join(blocks, evidenceSeparator)

	logger.Debug("Evidence %s: %d passages, %d distinct citations",
		set.ID, len(results), len(set.Citations))

	return set
}
