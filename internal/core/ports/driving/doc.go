// Package driving defines what the front-ends (CLI, chat TUI, MCP server)
// may ask of the core: answer a question, manage the index, keep it fresh
// and edit settings.
//
// Implementations live in internal/core/services.
package driving
