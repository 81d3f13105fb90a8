package driving

import (
	"context"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// RetrievalService finds passages without generating an answer.
type RetrievalService interface {
	// Retrieve returns the passages most similar to question, best first.
	// An empty index yields an empty slice.
	Retrieve(ctx context.Context, question string) ([]domain.RetrievedPassage, error)
}
