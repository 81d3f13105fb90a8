// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// QuestionSubmitted is sent when the user submits a question.
type QuestionSubmitted struct {
	Question string
}

// AnswerCompleted carries the pipeline result back to the model.
type AnswerCompleted struct {
	Question string
	Result   domain.AnswerResult
	Err      error
}

// PipelineTransition reports a pipeline state change.
type PipelineTransition struct {
	From domain.PipelineState
	To   domain.PipelineState
}

// IndexRebuilt signals a user-requested rebuild finished.
type IndexRebuilt struct {
	Report domain.RebuildReport
	Err    error
}

// StatusLoaded carries the index status.
type StatusLoaded struct {
	Status domain.IndexStatus
	Err    error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}
