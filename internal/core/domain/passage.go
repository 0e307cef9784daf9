package domain

// Passage is the atomic retrieval unit: one chunk of an ingested document.
// Passages are immutable once indexed; re-ingesting a changed document
// requires deleting the source's passages first.
type Passage struct {
	// ID is the content-derived identifier, a deterministic hash of
	// source, position and leading text. Identical content always
	// produces the same ID, which is what makes re-ingestion idempotent.
	ID string

	// Text is the chunk text, trimmed of leading/trailing whitespace.
	Text string

	// Source is the originating document name, unique per ingested file.
	Source string

	// Index is the zero-based position within the source document.
	// The human-facing citation chunk number is Index + 1.
	Index int
}

// ChunkNumber returns the 1-based position used in citations.
func (p Passage) ChunkNumber() int {
	return p.Index + 1
}

// SourceSummary describes one indexed source in inventory listings.
type SourceSummary struct {
	// Source is the document name.
	Source string `json:"source"`

	// Chunks is the number of passages indexed for this source.
	Chunks int `json:"chunks"`

	// TotalChars is the summed character count of all passages.
	TotalChars int `json:"total_chars"`
}

// LibraryStats summarises the entire indexed corpus.
type LibraryStats struct {
	// TotalChunks is the passage count across all sources.
	TotalChunks int `json:"total_chunks"`

	// TotalSources is the number of distinct sources.
	TotalSources int `json:"total_sources"`

	// TotalChars is the summed character count of all passages.
	TotalChars int `json:"total_chars"`

	// AvgChunkChars is TotalChars / TotalChunks, rounded to nearest.
	AvgChunkChars int `json:"avg_chunk_chars"`

	// Sources lists the distinct source names, sorted.
	Sources []string `json:"sources"`
}

// IngestReport is the result of one ingest call.
type IngestReport struct {
	// Source is the ingested document name.
	Source string `json:"source"`

	// TotalChars is the character count of the raw document text.
	TotalChars int `json:"total_chars"`

	// TotalChunks is how many passages the document chunked into.
	TotalChunks int `json:"total_chunks"`

	// NewChunks is how many passages were actually added. Re-ingesting
	// unchanged content yields zero.
	NewChunks int `json:"new_chunks"`
}

// ReindexReport is the result of a delete-then-ingest cycle.
type ReindexReport struct {
	// Source is the reindexed document name.
	Source string `json:"source"`

	// Deleted is how many passages were removed before re-ingesting.
	Deleted int `json:"deleted"`

	// TotalChars is the character count of the raw document text.
	TotalChars int `json:"total_chars"`

	// TotalChunks is how many passages the document chunked into.
	TotalChunks int `json:"total_chunks"`

	// NewChunks is how many passages were added by the fresh ingest.
	NewChunks int `json:"new_chunks"`
}
