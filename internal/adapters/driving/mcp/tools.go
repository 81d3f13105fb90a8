package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the ticket or question to answer"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string          `json:"answer"`
	Sources  []string        `json:"sources"`
	Passages []PassageOutput `json:"passages,omitempty"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to find similar passages for"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput is a single retrieved passage.
type PassageOutput struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}

// StatusInput is the (empty) input schema for the index_status tool.
type StatusInput struct{}

// StatusOutput is the output schema for the index_status tool.
type StatusOutput struct {
	DocsDir     string  `json:"docs_dir"`
	Backend     string  `json:"backend"`
	Stale       bool    `json:"stale"`
	Chunks      int     `json:"chunks"`
	LatestMTime float64 `json:"latest_mtime"`
	MarkerMTime float64 `json:"marker_mtime"`
	BuiltAt     string  `json:"built_at,omitempty"`
}

// ReindexInput is the input schema for the reindex tool.
type ReindexInput struct {
	Force bool `json:"force,omitempty" jsonschema:"rebuild even when no document changed"`
}

// ReindexOutput is the output schema for the reindex tool.
type ReindexOutput struct {
	Rebuilt   bool `json:"rebuilt"`
	Documents int  `json:"documents,omitempty"`
	Chunks    int  `json:"chunks,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a helpdesk question from the indexed documents, citing sources",
	}, s.handleAsk)

	if s.ports.Retrieval != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search",
			Description: "Return the indexed passages most similar to a query",
		}, s.handleSearch)
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_status",
		Description: "Report whether the document index is up to date",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reindex",
		Description: "Rebuild the document index if documents changed",
	}, s.handleReindex)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	result, err := s.ports.Answer.Answer(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:   result.Answer,
		Sources:  result.Sources,
		Passages: toPassages(result.Passages),
	}
	if output.Sources == nil {
		output.Sources = []string{}
	}
	if strings.TrimSpace(output.Answer) == "" {
		output.Answer = "(the model returned no answer)"
	}
	return nil, output, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchOutput{}, domain.ErrEmptyQuestion
	}
	if _, err := s.ports.Index.EnsureFresh(ctx); err != nil {
		return nil, SearchOutput{}, err
	}

	passages, err := s.ports.Retrieval.Retrieve(ctx, input.Query)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	out := toPassages(passages)
	return nil, SearchOutput{Passages: out, Count: len(out)}, nil
}

// handleStatus handles the index_status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	status, err := s.ports.Index.Status(ctx)
	if err != nil {
		return nil, StatusOutput{}, fmt.Errorf("index status: %w", err)
	}

	out := StatusOutput{
		DocsDir:     status.DocsDir,
		Backend:     status.Backend.String(),
		Stale:       status.Stale,
		Chunks:      status.Chunks,
		LatestMTime: status.LatestMTime,
		MarkerMTime: status.MarkerMTime,
	}
	if !status.BuiltAt.IsZero() {
		out.BuiltAt = status.BuiltAt.Format(time.RFC3339)
	}
	return nil, out, nil
}

// handleReindex handles the reindex tool invocation.
func (s *Server) handleReindex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReindexInput,
) (*mcp.CallToolResult, ReindexOutput, error) {
	if !input.Force {
		rebuilt, err := s.ports.Index.EnsureFresh(ctx)
		if err != nil {
			return nil, ReindexOutput{}, err
		}
		return nil, ReindexOutput{Rebuilt: rebuilt}, nil
	}

	report, err := s.ports.Index.Rebuild(ctx)
	if err != nil {
		return nil, ReindexOutput{}, err
	}
	return nil, ReindexOutput{
		Rebuilt:   !report.Skipped,
		Documents: report.Documents,
		Chunks:    report.Chunks,
	}, nil
}

func toPassages(passages []domain.RetrievedPassage) []PassageOutput {
	out := make([]PassageOutput, len(passages))
	for i, p := range passages {
		out[i] = PassageOutput{Source: p.SourceIdentifier, Score: p.Score, Text: p.ChunkText}
	}
	return out
}
