package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/ancora/internal/core/domain"
	"github.com/custodia-labs/ancora/internal/logger"
)

// citationPattern matches citation-shaped references as the evidence
// block renders them: a bracketed "Source N" with anything up to the
// closing bracket, e.g. "[Source 2: handbook.md, chunk 3]".
var citationPattern = regexp.MustCompile(`(?i)\[Source\s+(\d+)[^\]]*\]`)

// multiSpace matches runs of two or more spaces left behind by removal.
var multiSpace = regexp.MustCompile(` {2,}`)

// emptyIndexNote is appended when citations are stripped from an answer
// generated with no evidence on offer.
const emptyIndexNote = "\n\n_(Note: Citations were removed as no documents are in the knowledge base.)_"

// citationMatch is one citation-shaped span found in generated text.
type citationMatch struct {
	// Span is the full matched text, brackets included.
	Span string

	// Digits is the label's raw digit run.
	Digits string

	// Label is the parsed citation label. Valid only when Parsed.
	Label int

	// Parsed is false when the digit run does not fit in an int.
	Parsed bool
}

// findCitations scans text for citation-shaped spans in order of
// appearance. The matching rule lives here, apart from removal logic, so
// it can be tested on its own.
func findCitations(text string) []citationMatch {
	raw := citationPattern.FindAllStringSubmatch(text, -1)
	if raw == nil {
		return nil
	}

	matches := make([]citationMatch, len(raw))
	for i, m := range raw {
		match := citationMatch{Span: m[0], Digits: m[1]}
		if label, err := strconv.Atoi(m[1]); err == nil {
			match.Label = label
			match.Parsed = true
		}
		matches[i] = match
	}
	return matches
}

// ValidateAnswer checks every citation-shaped reference in the generated
// text against the evidence index and removes those that resolve to
// nothing. It returns the cleaned text and the distinct removed spans in
// first-seen order.
//
// The generator is an untrusted collaborator: this is a referential
// integrity check only. A citation that points at a real passage but
// misrepresents it passes untouched. Validation never fails; a
// user-facing answer must come out even when citations get stripped.
func (s *EvidenceService) ValidateAnswer(
	generated string, index map[int]domain.Passage,
) (string, []string) {
	matches := findCitations(generated)
	if len(matches) == 0 {
		return generated, nil
	}

	if len(index) == 0 {
		return s.stripAll(generated, matches)
	}

	var removed []string
	removedSeen := make(map[string]bool)
	cleaned := generated

	for _, m := range matches {
		if !m.Parsed {
			// Citation-shaped but not a parseable label. Fail open:
			// treat as ordinary text.
			continue
		}
		if _, ok := index[m.Label]; ok {
			continue
		}
		if removedSeen[m.Span] {
			continue
		}
		removedSeen[m.Span] = true
		removed = append(removed, m.Span)
		cleaned = strings.ReplaceAll(cleaned, m.Span, "")
	}

	if len(removed) > 0 {
		logger.Warn("Grounding: removed %d hallucinated citation(s)", len(removed))
		cleaned = tidyWhitespace(cleaned)
	}

	return cleaned, removed
}

// stripAll handles the empty-index case: no evidence was ever offered, so
// every citation-shaped span is hallucinated, parseable or not.
func (s *EvidenceService) stripAll(generated string, matches []citationMatch) (string, []string) {
	var removed []string
	removedSeen := make(map[string]bool)
	cleaned := generated

	for _, m := range matches {
		label := fmt.Sprintf("[Source %s]", m.Digits)
		if !removedSeen[label] {
			removedSeen[label] = true
			removed = append(removed, label)
		}
		cleaned = strings.ReplaceAll(cleaned, m.Span, "")
	}

	logger.Warn("Grounding: stripped %d citation(s) from answer with no evidence", len(removed))

	return tidyWhitespace(cleaned) + emptyIndexNote, removed
}

// CheckGrounding validates the answer and assembles the full report:
// whether anything was removed, what was removed, and which labels the
// cleaned answer still cites.
func (s *EvidenceService) CheckGrounding(
	generated string, index map[int]domain.Passage,
) *domain.GroundingReport {
	cleaned, removed := s.ValidateAnswer(generated, index)

	citedSet := make(map[int]bool)
	for _, m := range findCitations(cleaned) {
		if !m.Parsed {
			continue
		}
		if _, ok := index[m.Label]; ok {
			citedSet[m.Label] = true
		}
	}

	cited := make([]int, 0, len(citedSet))
	for label := range citedSet {
		cited = append(cited, label)
	}
	sort.Ints(cited)

	return &domain.GroundingReport{
		Grounded:              len(removed) == 0,
		HallucinatedCitations: removed,
		SourcesCited:          cited,
		TotalChunksAvailable:  len(index),
		CleanedAnswer:         cleaned,
	}
}

// tidyWhitespace collapses double spaces left by span removal and trims.
func tidyWhitespace(text string) string {
	return strings.TrimSpace(multiSpace.ReplaceAllString(text, " "))
}
