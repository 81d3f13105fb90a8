package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config not found")

	// ErrEmptyQuestion indicates a question with no content was submitted.
	ErrEmptyQuestion = errors.New("question is empty")

	// Provider Errors.

	// ErrLLMUnavailable indicates the generation provider could not be reached
	// or rejected the request.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding provider could not be reached
	// or rejected the request.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrProviderTimeout indicates a provider call exceeded its deadline.
	ErrProviderTimeout = errors.New("provider call timed out")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Index Errors.

	// ErrVectorStoreUnavailable indicates the vector store could not be opened.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrMarkerCorrupt indicates the staleness marker could not be decoded.
	ErrMarkerCorrupt = errors.New("staleness marker corrupt")
)

// Stage names the pipeline step a failure came from.
type Stage string

// Pipeline stages that can fail.
const (
	StageRebuild   Stage = "rebuild"
	StageRetrieval Stage = "retrieval"
	StageSynthesis Stage = "synthesis"
)

// String returns the string representation.
func (s Stage) String() string {
	return string(s)
}

// StageError wraps a failure with the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

// NewStageError wraps err with stage. A nil err returns nil.
func NewStageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// Error implements error.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the stage recorded in err, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
