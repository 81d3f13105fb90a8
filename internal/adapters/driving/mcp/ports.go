package mcp

import (
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer runs the question pipeline.
	Answer driving.AnswerService

	// Index reports and rebuilds the index.
	Index driving.IndexService

	// Retrieval finds passages without generating. Optional.
	Retrieval driving.RetrievalService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Index == nil {
		return ErrMissingIndexService
	}
	return nil
}
