package domain

// FusedResult is a passage ranked by reciprocal-rank fusion of the dense
// and sparse retrieval lists.
//
// Score is a unitless RRF sum. It is only comparable to other scores from
// the same fusion call, never across queries and never against the raw
// strategy scores that produced it.
type FusedResult struct {
	// Passage is the retrieved chunk.
	Passage Passage

	// Score is the summed reciprocal-rank contribution from both lists.
	Score float64
}
