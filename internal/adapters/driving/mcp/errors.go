// Package mcp provides an MCP (Model Context Protocol) server adapter for
// ancora. It lets AI assistants like Claude search the local knowledge
// base, build citable evidence, and check their answers against it.
package mcp

import "errors"

// Errors returned when required ports are missing.
var (
	// ErrMissingIngestService is returned when the ingest service is not provided.
	ErrMissingIngestService = errors.New("mcp: ingest service is required")

	// ErrMissingRetrievalService is returned when the retrieval service is not provided.
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

	// ErrMissingEvidenceService is returned when the evidence service is not provided.
	ErrMissingEvidenceService = errors.New("mcp: evidence service is required")

	// ErrMissingLibraryService is returned when the library service is not provided.
	ErrMissingLibraryService = errors.New("mcp: library service is required")
)
