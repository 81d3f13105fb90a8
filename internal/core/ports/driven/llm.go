package driven

import (
	"context"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// LLMService generates text from a system instruction and a user message.
type LLMService interface {
	// Complete runs one generation. A response without text is returned as
	// domain.NoContent, not as an error.
	Complete(ctx context.Context, req CompletionRequest) (domain.Generation, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompletionRequest is one system + user exchange.
type CompletionRequest struct {
	// System is the system instruction.
	System string

	// User is the user message.
	User string

	// MaxTokens limits response length. Zero uses the provider default.
	MaxTokens int

	// Temperature controls randomness (0.0-1.0).
	Temperature float64
}
