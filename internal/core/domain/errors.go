package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist, such as a
	// source name with zero indexed passages. Callers treat this as a
	// structured outcome, not a batch-aborting failure.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or backend name.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Ingestion and dense search cannot run without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingFailure indicates the embedding provider errored or
	// returned malformed output during an ingest. The ingest aborts
	// atomically; no partial passages are left indexed.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrRetrievalUnavailable indicates both retrieval strategies failed
	// for a query. A single failing strategy degrades with a warning
	// instead.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
)
