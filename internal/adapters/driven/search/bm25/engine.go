// Package bm25 provides an in-process BM25 search engine over the
// indexed passages. Tokenised corpus statistics are kept in memory and
// maintained incrementally as passages are indexed and deleted.
package bm25

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/ancora/internal/core/domain"
	"github.com/custodia-labs/ancora/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

// Okapi BM25 parameters. k1 controls term-frequency saturation, b the
// strength of document-length normalisation.
const (
	defaultK1 = 1.2
	defaultB  = 0.75
)

// Engine scores queries against the corpus with the Okapi BM25 ranking
// function. All state lives in process memory; the ingest service keeps
// it in step with the passage store.
type Engine struct {
	mu         sync.RWMutex
	termFreqs  map[string]map[string]int // passage ID -> term -> freq
	docFreqs   map[string]int            // term -> passage count
	docLengths map[string]int            // passage ID -> token count
	totalLen   int
	k1         float64
	b          float64
}

// New creates an empty BM25 engine.
func New() *Engine {
	return &Engine{
		termFreqs:  make(map[string]map[string]int),
		docFreqs:   make(map[string]int),
		docLengths: make(map[string]int),
		k1:         defaultK1,
		b:          defaultB,
	}
}

// Index adds or updates passages in the engine.
func (e *Engine) Index(_ context.Context, passages []domain.Passage) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, passage := range passages {
		e.remove(passage.ID)

		terms := tokenize(passage.Text)
		freqs := make(map[string]int, len(terms))
		for _, term := range terms {
			if freqs[term] == 0 {
				e.docFreqs[term]++
			}
			freqs[term]++
		}

		e.termFreqs[passage.ID] = freqs
		e.docLengths[passage.ID] = len(terms)
		e.totalLen += len(terms)
	}

	return nil
}

// Delete removes passages from the engine. Unknown IDs are ignored.
func (e *Engine) Delete(_ context.Context, ids []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range ids {
		e.remove(id)
	}

	return nil
}

// remove drops one passage's statistics. Caller holds the write lock.
func (e *Engine) remove(id string) {
	freqs, ok := e.termFreqs[id]
	if !ok {
		return
	}
	for term := range freqs {
		e.docFreqs[term]--
		if e.docFreqs[term] <= 0 {
			delete(e.docFreqs, term)
		}
	}
	e.totalLen -= e.docLengths[id]
	delete(e.termFreqs, id)
	delete(e.docLengths, id)
}

// Search scores the query against every indexed passage and returns up
// to k hits by descending score. Hits with non-positive scores are
// excluded; an empty corpus yields an empty slice.
func (e *Engine) Search(_ context.Context, query string, k int) ([]driven.SearchHit, error) {
	if k <= 0 {
		return nil, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	total := len(e.docLengths)
	if total == 0 {
		return nil, nil
	}

	avgLen := float64(e.totalLen) / float64(total)
	scores := make(map[string]float64)

	for _, term := range tokenize(query) {
		df, ok := e.docFreqs[term]
		if !ok {
			continue
		}
		idf := e.idf(df, total)

		for id, freqs := range e.termFreqs {
			tf, ok := freqs[term]
			if !ok {
				continue
			}
			scores[id] += idf * e.tfWeight(float64(tf), float64(e.docLengths[id]), avgLen)
		}
	}

	hits := make([]driven.SearchHit, 0, len(scores))
	for id, score := range scores {
		if score <= 0 {
			continue
		}
		hits = append(hits, driven.SearchHit{PassageID: id, Score: score})
	}

	// Descending by score; ties broken by ID so results are deterministic
	// regardless of map iteration order.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].PassageID < hits[j].PassageID
	})

	if len(hits) > k {
		hits = hits[:k]
	}

	return hits, nil
}

// Count returns the number of indexed passages.
func (e *Engine) Count(_ context.Context) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.docLengths), nil
}

// Close clears the engine's state.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.termFreqs = make(map[string]map[string]int)
	e.docFreqs = make(map[string]int)
	e.docLengths = make(map[string]int)
	e.totalLen = 0
	return nil
}

// idf is the Okapi BM25 inverse document frequency, floored above zero
// so common terms dampen rather than negate a score.
func (e *Engine) idf(df, total int) float64 {
	n := float64(total)
	d := float64(df)
	x := (n-d+0.5)/(d+0.5) + 1
	if x <= 0 {
		return 0
	}
	return math.Log(x)
}

// tfWeight saturates raw term frequency and normalises by document
// length relative to the corpus average.
func (e *Engine) tfWeight(tf, docLen, avgLen float64) float64 {
	return (tf * (e.k1 + 1)) / (tf + e.k1*(1-e.b+e.b*(docLen/avgLen)))
}

// tokenize lowercases and splits on whitespace. No stemming, no
// punctuation stripping: the sparse strategy matches surface forms.
func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
