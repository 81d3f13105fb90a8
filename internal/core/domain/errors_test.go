package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrConfigNotFound", ErrConfigNotFound},
		{"ErrEmptyQuestion", ErrEmptyQuestion},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrProviderTimeout", ErrProviderTimeout},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrVectorStoreUnavailable", ErrVectorStoreUnavailable},
		{"ErrMarkerCorrupt", ErrMarkerCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestStageError_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("embed chunk 3: %w", ErrEmbeddingUnavailable)
	err := NewStageError(StageRebuild, cause)

	assert.Equal(t, "rebuild failed: embed chunk 3: embedding service unavailable", err.Error())
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageRebuild, se.Stage)
}

func TestStageError_NilCause(t *testing.T) {
	assert.NoError(t, NewStageError(StageSynthesis, nil))
}

func TestStageOf(t *testing.T) {
	err := fmt.Errorf("answer: %w", NewStageError(StageRetrieval, ErrProviderTimeout))

	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageRetrieval, stage)

	_, ok = StageOf(ErrNotFound)
	assert.False(t, ok)
}
