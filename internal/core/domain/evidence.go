package domain

// EvidenceSet is the per-query bundle handed to an external text generator:
// the ranked passages, their rendered evidence block, and the mapping from
// minted citation label to passage.
//
// Labels are 1-based integers minted in rank order and scoped to this one
// query. An EvidenceSet is created per query and discarded after the
// grounding validator consumes it for that query's answer.
type EvidenceSet struct {
	// ID is a per-query trace identifier for log correlation.
	ID string

	// Results are the fused results the evidence was built from, in rank order.
	Results []FusedResult

	// Block is the rendered evidence text. Each passage appears as
	//
	//	[Source N: {source}, chunk {M}]
	//	{text}
	//
	// joined with "\n\n---\n\n". The rendering is a compatibility surface
	// shared with the generator's instructions and the grounding scanner;
	// it must not drift between queries.
	Block string

	// Index maps citation label -> passage for labels 1..len(Results).
	Index map[int]Passage

	// Citations holds human-readable citation strings like
	// "[handbook.md, chunk 2]", deduplicated in first-seen order.
	Citations []string
}

// Size returns the number of labelled passages.
func (e EvidenceSet) Size() int {
	return len(e.Index)
}

// GroundingReport is the structured outcome of checking a generated answer
// against the evidence set it was produced from.
type GroundingReport struct {
	// Grounded is true when no citation had to be removed.
	Grounded bool `json:"grounded"`

	// HallucinatedCitations lists the removed citation spans, distinct,
	// in first-seen order.
	HallucinatedCitations []string `json:"hallucinated_citations"`

	// SourcesCited lists the labels still cited in the cleaned answer,
	// sorted and deduplicated.
	SourcesCited []int `json:"sources_cited"`

	// TotalChunksAvailable is the size of the evidence set the answer
	// was checked against.
	TotalChunksAvailable int `json:"total_chunks_available"`

	// CleanedAnswer is the answer after hallucinated citations were removed.
	CleanedAnswer string `json:"cleaned_answer"`
}
