// Package ratelimit decorates an embedding service with a token-bucket
// request limiter, keeping ingest bursts inside a provider's quota.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ancora/internal/core/ports/driven"
)

// Ensure Service implements the interface.
var _ driven.EmbeddingService = (*Service)(nil)

// Service wraps an embedding service and waits on a token bucket before
// each embedding request reaches the provider.
type Service struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// Wrap decorates the service with a sustained requests-per-second limit.
// rps <= 0 means no limit; the service is returned unwrapped.
func Wrap(inner driven.EmbeddingService, rps float64) driven.EmbeddingService {
	if rps <= 0 {
		return inner
	}

	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	return &Service{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Embed waits for a token, then delegates.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.Embed(ctx, text)
}

// EmbedBatch takes one token per text. Waiting one token at a time keeps
// a large batch from failing outright when it exceeds the burst size.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for range texts {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return s.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the embedding vector size.
func (s *Service) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the name of the embedding model being used.
func (s *Service) ModelName() string {
	return s.inner.ModelName()
}

// Ping validates the underlying service is reachable. Pings bypass the
// limiter; they are lightweight and rare.
func (s *Service) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close releases the underlying service's resources.
func (s *Service) Close() error {
	return s.inner.Close()
}
