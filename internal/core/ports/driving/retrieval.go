package driving

import (
	"context"

	"github.com/custodia-labs/ancora/internal/core/domain"
)

// RetrievalService provides hybrid search over the indexed passages.
type RetrievalService interface {
	// Search runs the full dense + sparse + fusion + threshold pipeline
	// and returns up to topK fused results in rank order. topK <= 0 uses
	// the configured default. An empty corpus yields an empty slice, not
	// an error.
	Search(ctx context.Context, query string, topK int) ([]domain.FusedResult, error)
}
