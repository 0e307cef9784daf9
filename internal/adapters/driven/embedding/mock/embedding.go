// Package mock provides a deterministic offline embedding service.
// Vectors are derived from the text alone, so retrieval quality is
// nonsense but behaviour is reproducible. Useful for tests and
// air-gapped runs where no embedding provider is reachable.
package mock

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/custodia-labs/ancora/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the default mock vector size.
const DefaultDimensions = 384

// ModelName reported by the mock provider.
const modelName = "mock-embed"

// EmbeddingService generates deterministic pseudo-random unit vectors.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a mock embedding service. dimensions <= 0
// falls back to the default.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed generates a deterministic vector seeded by the text's FNV hash.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	return deterministicVector(text, s.dimensions), nil
}

// EmbedBatch generates deterministic vectors for each text.
func (s *EmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = deterministicVector(text, s.dimensions)
	}
	return vectors, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return modelName
}

// Ping always succeeds; there is nothing to reach.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// deterministicVector expands an FNV seed through a linear congruential
// generator and normalises the result to a unit vector, so cosine
// similarities stay in a sane range.
func deterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	var sumSquares float64
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000)/1000.0 - 0.5
		sumSquares += float64(vector[i]) * float64(vector[i])
	}

	if norm := math.Sqrt(sumSquares); norm > 0 {
		for i := range vector {
			vector[i] = float32(float64(vector[i]) / norm)
		}
	}

	return vector
}
