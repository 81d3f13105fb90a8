package driving

import (
	"context"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// AnswerService is the query entry point for front-ends.
type AnswerService interface {
	// Answer refreshes the index if needed, retrieves passages and
	// synthesises a grounded answer. Failures are *domain.StageError values.
	Answer(ctx context.Context, question string) (domain.AnswerResult, error)
}

// TransitionFunc observes pipeline state changes.
type TransitionFunc func(from, to domain.PipelineState)

// PipelineObserver lets front-ends follow the answer pipeline.
type PipelineObserver interface {
	// OnTransition registers fn to observe state changes. Pass nil to remove it.
	OnTransition(fn TransitionFunc)
}
