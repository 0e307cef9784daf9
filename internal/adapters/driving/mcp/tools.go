package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ancora/internal/core/domain"
)

// IngestInput is the input schema for the ingest_document tool.
type IngestInput struct {
	Source string `json:"source" jsonschema:"document name, unique per ingested file"`
	Text   string `json:"text" jsonschema:"raw document text to index"`
	Fresh  bool   `json:"fresh,omitempty" jsonschema:"delete existing passages for the source before ingesting"`
}

// IngestOutput is the output schema for the ingest_document tool.
type IngestOutput struct {
	Source      string `json:"source"`
	Deleted     int    `json:"deleted,omitempty"`
	TotalChars  int    `json:"total_chars"`
	TotalChunks int    `json:"total_chunks"`
	NewChunks   int    `json:"new_chunks"`
}

// SearchInput is the input schema for the search_passages tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default from settings)"`
}

// SearchOutput is the output schema for the search_passages tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single fused search result.
type SearchResultOutput struct {
	Source string  `json:"source"`
	Chunk  int     `json:"chunk"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}

// EvidenceInput is the input schema for the build_evidence tool.
type EvidenceInput struct {
	Query string `json:"query" jsonschema:"the query to gather evidence for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of passages (default from settings)"`
}

// EvidenceOutput is the output schema for the build_evidence tool.
type EvidenceOutput struct {
	ID        string   `json:"id"`
	Block     string   `json:"block"`
	Citations []string `json:"citations"`
	Size      int      `json:"size"`
}

// GroundInput is the input schema for the ground_answer tool.
type GroundInput struct {
	Query  string `json:"query" jsonschema:"the query the answer responds to"`
	Answer string `json:"answer" jsonschema:"the generated answer to check"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of passages (default from settings)"`
}

// GroundOutput is the output schema for the ground_answer tool.
type GroundOutput struct {
	Grounded              bool     `json:"grounded"`
	HallucinatedCitations []string `json:"hallucinated_citations"`
	SourcesCited          []int    `json:"sources_cited"`
	TotalChunksAvailable  int      `json:"total_chunks_available"`
	CleanedAnswer         string   `json:"cleaned_answer"`
}

// ListSourcesInput is the input schema for the list_sources tool.
type ListSourcesInput struct{}

// ListSourcesOutput is the output schema for the list_sources tool.
type ListSourcesOutput struct {
	Sources []domain.SourceSummary `json:"sources"`
	Count   int                    `json:"count"`
}

// DeleteSourceInput is the input schema for the delete_source tool.
type DeleteSourceInput struct {
	Source string `json:"source" jsonschema:"the source name to delete"`
}

// DeleteSourceOutput is the output schema for the delete_source tool.
type DeleteSourceOutput struct {
	Source  string `json:"source"`
	Removed int    `json:"removed"`
}

// StatsInput is the input schema for the library_stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the library_stats tool.
type StatsOutput struct {
	Stats domain.LibraryStats `json:"stats"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Add a plain-text document to the knowledge base",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_passages",
		Description: "Hybrid search (keyword + semantic) across all indexed passages",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "build_evidence",
		Description: "Retrieve passages for a query and render them as a labelled evidence block",
	}, s.handleEvidence)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ground_answer",
		Description: "Check a generated answer's citations against retrieved evidence and strip any that do not resolve",
	}, s.handleGround)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_sources",
		Description: "List the indexed sources",
	}, s.handleListSources)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_source",
		Description: "Remove a source and its passages from the knowledge base",
	}, s.handleDeleteSource)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "library_stats",
		Description: "Knowledge base statistics: chunk, source and character totals",
	}, s.handleStats)
}

// handleIngest handles the ingest_document tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if input.Fresh {
		report, err := s.ports.Ingest.Reindex(ctx, input.Source, input.Text)
		if err != nil {
			return nil, IngestOutput{}, err
		}
		return nil, IngestOutput{
			Source:      report.Source,
			Deleted:     report.Deleted,
			TotalChars:  report.TotalChars,
			TotalChunks: report.TotalChunks,
			NewChunks:   report.NewChunks,
		}, nil
	}

	report, err := s.ports.Ingest.Ingest(ctx, input.Source, input.Text)
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, IngestOutput{
		Source:      report.Source,
		TotalChars:  report.TotalChars,
		TotalChunks: report.TotalChunks,
		NewChunks:   report.NewChunks,
	}, nil
}

// handleSearch handles the search_passages tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.Retrieval.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			Source: results[i].Passage.Source,
			Chunk:  results[i].Passage.ChunkNumber(),
			Score:  results[i].Score,
			Text:   results[i].Passage.Text,
		}
	}

	return nil, output, nil
}

// handleEvidence handles the build_evidence tool invocation.
func (s *Server) handleEvidence(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EvidenceInput,
) (*mcp.CallToolResult, EvidenceOutput, error) {
	results, err := s.ports.Retrieval.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, EvidenceOutput{}, err
	}

	evidence := s.ports.Evidence.BuildEvidence(results)
	return nil, EvidenceOutput{
		ID:        evidence.ID,
		Block:     evidence.Block,
		Citations: evidence.Citations,
		Size:      evidence.Size(),
	}, nil
}

// handleGround handles the ground_answer tool invocation. Retrieval runs
// fresh for the query, so the answer is checked against the same evidence
// a build_evidence call for that query would produce.
func (s *Server) handleGround(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GroundInput,
) (*mcp.CallToolResult, GroundOutput, error) {
	results, err := s.ports.Retrieval.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, GroundOutput{}, err
	}

	evidence := s.ports.Evidence.BuildEvidence(results)
	report := s.ports.Evidence.CheckGrounding(input.Answer, evidence.Index)

	return nil, GroundOutput{
		Grounded:              report.Grounded,
		HallucinatedCitations: report.HallucinatedCitations,
		SourcesCited:          report.SourcesCited,
		TotalChunksAvailable:  report.TotalChunksAvailable,
		CleanedAnswer:         report.CleanedAnswer,
	}, nil
}

// handleListSources handles the list_sources tool invocation.
func (s *Server) handleListSources(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListSourcesInput,
) (*mcp.CallToolResult, ListSourcesOutput, error) {
	sources, err := s.ports.Library.ListSources(ctx)
	if err != nil {
		return nil, ListSourcesOutput{}, err
	}
	return nil, ListSourcesOutput{Sources: sources, Count: len(sources)}, nil
}

// handleDeleteSource handles the delete_source tool invocation.
func (s *Server) handleDeleteSource(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteSourceInput,
) (*mcp.CallToolResult, DeleteSourceOutput, error) {
	removed, err := s.ports.Library.DeleteSource(ctx, input.Source)
	if err != nil {
		return nil, DeleteSourceOutput{}, err
	}
	return nil, DeleteSourceOutput{Source: input.Source, Removed: removed}, nil
}

// handleStats handles the library_stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Library.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	return nil, StatsOutput{Stats: *stats}, nil
}
