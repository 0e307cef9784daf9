package mcp

import (
	"github.com/custodia-labs/ancora/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ingest adds documents to the knowledge base.
	Ingest driving.IngestService

	// Retrieval provides hybrid search.
	Retrieval driving.RetrievalService

	// Evidence builds evidence blocks and checks grounding.
	Evidence driving.EvidenceService

	// Library manages the inventory of indexed sources.
	Library driving.LibraryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Ingest == nil {
		return ErrMissingIngestService
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.Evidence == nil {
		return ErrMissingEvidenceService
	}
	if p.Library == nil {
		return ErrMissingLibraryService
	}
	return nil
}
