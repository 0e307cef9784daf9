package driving

import (
	"context"

	"github.com/custodia-labs/ancora/internal/core/domain"
)

// IngestService turns raw document text into indexed passages.
type IngestService interface {
	// Ingest chunks, embeds and indexes a document. Re-ingesting
	// unchanged content is a no-op reported as NewChunks = 0. The call
	// is atomic: an embedding failure leaves nothing indexed.
	Ingest(ctx context.Context, source, text string) (*domain.IngestReport, error)

	// Reindex deletes any passages indexed for the source, then ingests
	// the given text fresh. Useful after editing a document.
	Reindex(ctx context.Context, source, text string) (*domain.ReindexReport, error)
}
