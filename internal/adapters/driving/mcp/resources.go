package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for ancora resources.
	uriScheme = "ancora://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing sources.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "List of all indexed sources",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	// Template for a source's passages.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sources/{source}",
		Name:        "source-passages",
		Description: "Passages indexed for a specific source, ordered by position",
		MIMEType:    "application/json",
	}, s.handlePassagesResource)
}

// handleSourcesResource returns a list of all indexed sources.
func (s *Server) handleSourcesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sources, err := s.ports.Library.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	data, err := json.MarshalIndent(sources, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sources: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handlePassagesResource returns the passages for a specific source.
func (s *Server) handlePassagesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract the source from URI: ancora://sources/{source}
	source := extractSource(req.Params.URI)
	if source == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	passages, err := s.ports.Library.InspectSource(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("inspecting source: %w", err)
	}

	// Build the passage list with 1-based citation chunk numbers.
	type passageInfo struct {
		ID    string `json:"id"`
		Chunk int    `json:"chunk"`
		Text  string `json:"text"`
	}

	infos := make([]passageInfo, len(passages))
	for i := range passages {
		infos[i] = passageInfo{
			ID:    passages[i].ID,
			Chunk: passages[i].ChunkNumber(),
			Text:  passages[i].Text,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling passages: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSource extracts the source name from a URI like ancora://sources/{source}.
func extractSource(uri string) string {
	const prefix = uriScheme + "sources/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
