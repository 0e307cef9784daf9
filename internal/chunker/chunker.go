// Package chunker splits raw document text into overlapping, bounded-size
// passages with stable positional identity.
package chunker

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-crypt/x/blake2b"

	"github.com/custodia-labs/ancora/internal/core/domain"
)

// DefaultChunkSize is the default maximum passage length in characters.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default trailing context carried across
// passage boundaries, in characters.
const DefaultChunkOverlap = 80

// DefaultOverlapWordDivisor converts the overlap into a word count:
// the last overlap/divisor words of an emitted passage seed the next one.
const DefaultOverlapWordDivisor = 6

// runsOfBlankLines matches three or more consecutive newlines.
var runsOfBlankLines = regexp.MustCompile(`\n{3,}`)

// Processor splits document text into passages along paragraph boundaries,
// falling back to a fixed character window for paragraphs that exceed the
// chunk size on their own.
type Processor struct {
	chunkSize   int
	overlap     int
	wordDivisor int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the maximum passage size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between passages in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithOverlapWordDivisor sets the divisor that converts the character
// overlap into a trailing word count.
func WithOverlapWordDivisor(divisor int) Option {
	return func(p *Processor) {
		if divisor > 0 {
			p.wordDivisor = divisor
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:   DefaultChunkSize,
		overlap:     DefaultChunkOverlap,
		wordDivisor: DefaultOverlapWordDivisor,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Chunk splits text into passages for the given source.
//
// Paragraphs (blank-line separated) are accumulated greedily into a buffer
// until the next one would push it past the chunk size. The emitted
// passage's trailing words seed the next buffer so context survives the
// boundary. A lone paragraph that cannot fit is hard-split on a fixed
// character window.
//
// Chunking is deterministic: the same text, source and parameters always
// yield identical passages with identical IDs. Empty or whitespace-only
// input yields nil.
func (p *Processor) Chunk(text, source string) []domain.Passage {
	text = runsOfBlankLines.ReplaceAllString(strings.TrimSpace(text), "\n\n")
	if text == "" {
		return nil
	}

	var passages []domain.Passage
	current := ""

	emit := func(raw string) {
		trimmed := strings.TrimSpace(raw)
		index := len(passages)
		passages = append(passages, domain.Passage{
			ID:     PassageID(source, index, trimmed),
			Text:   trimmed,
			Source: source,
			Index:  index,
		})
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		switch {
		case len(current)+len(para)+2 <= p.chunkSize:
			if current == "" {
				current = para
			} else {
				current = current + "\n\n" + para
			}

		case current != "":
			emit(current)
			if tail := p.overlapTail(current); tail != "" {
				current = tail + "\n\n" + para
			} else {
				current = para
			}

		default:
			// Single paragraph larger than the chunk size: hard split on a
			// character window, no paragraph awareness at this level.
			stride := p.chunkSize - p.overlap
			for start := 0; start < len(para); start += stride {
				end := start + p.chunkSize
				if end > len(para) {
					end = len(para)
				}
				emit(para[start:end])
			}
			current = ""
		}
	}

	if strings.TrimSpace(current) != "" {
		emit(current)
	}

	return passages
}

// overlapTail returns the last overlap/divisor words of text joined by
// single spaces, or "" when the overlap rounds down to zero words.
func (p *Processor) overlapTail(text string) string {
	if p.overlap <= 0 {
		return ""
	}
	count := p.overlap / p.wordDivisor
	if count <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) > count {
		words = words[len(words)-count:]
	}
	return strings.Join(words, " ")
}

// PassageID derives the stable identifier for a passage from its source,
// position and leading text. Identical content always produces the same ID,
// which is what lets re-ingestion diff against an existing index.
func PassageID(source string, index int, text string) string {
	leading := text
	if len(leading) > 40 {
		leading = leading[:40]
	}
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	fmt.Fprintf(h, "%s-%d-%s", source, index, leading)
	return hex.EncodeToString(h.Sum(nil))
}
