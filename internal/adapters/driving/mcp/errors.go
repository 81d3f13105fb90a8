// Package mcp provides an MCP (Model Context Protocol) server adapter for ragdesk.
// It lets AI assistants ask helpdesk questions against the local document index.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")

// ErrMissingIndexService is returned when the index service is not provided.
var ErrMissingIndexService = errors.New("mcp: index service is required")
