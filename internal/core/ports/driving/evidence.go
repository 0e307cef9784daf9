package driving

import "github.com/custodia-labs/ancora/internal/core/domain"

// EvidenceService renders retrieved passages into citable evidence and
// validates generated answers against it.
//
// None of these operations can fail: evidence building is pure
// formatting, and grounding validation always returns a best-effort
// cleaned answer because a user-facing answer must be produced even when
// citations get stripped.
type EvidenceService interface {
	// BuildEvidence mints citation labels 1..N over the fused results in
	// rank order and renders the evidence block handed to the generator.
	BuildEvidence(results []domain.FusedResult) *domain.EvidenceSet

	// ValidateAnswer scans generated text for citation labels and
	// removes any that do not resolve to a passage in the index. It
	// returns the cleaned text and the distinct removed citation spans
	// in first-seen order.
	ValidateAnswer(generated string, index map[int]domain.Passage) (string, []string)

	// CheckGrounding runs ValidateAnswer and assembles the full
	// grounding report for the answer.
	CheckGrounding(generated string, index map[int]domain.Passage) *domain.GroundingReport
}
