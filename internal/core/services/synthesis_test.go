package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
)

var cajaPassages = []domain.RetrievedPassage{
	{ChunkText: "Mantenga pulsado el botón.", SourceIdentifier: "caja.md", Score: 0.9},
	{ChunkText: "Espere diez segundos.", SourceIdentifier: "caja.md", Score: 0.8},
	{ChunkText: "Revise el papel.", SourceIdentifier: "hw/impresora.md", Score: 0.4},
}

func TestBuildContext(t *testing.T) {
	got := BuildContext(cajaPassages[:2])

	want := "[Doc 1] (caja.md)\nMantenga pulsado el botón.\n\n[Doc 2] (caja.md)\nEspere diez segundos."
	assert.Equal(t, want, got)
	assert.Empty(t, BuildContext(nil))
}

func TestSynthesisService_Synthesize(t *testing.T) {
	llm := &mockLLM{gen: domain.GeneratedText("Mantenga pulsado el botón (caja.md).")}
	prompts := &mockPromptStore{prompts: map[string]string{
		driven.PromptAnswerSystem: "system prompt",
		driven.PromptAnswerUser:   "Q=%s C=%s",
	}}
	service := NewSynthesisService(llm, prompts, SynthesisOptions{Temperature: 0.2, MaxTokens: 300})

	result, err := service.Synthesize(context.Background(), "¿Cómo reinicio la caja?", cajaPassages)

	require.NoError(t, err)
	assert.Equal(t, "Mantenga pulsado el botón (caja.md).", result.Answer)
	assert.Equal(t, []string{"caja.md", "hw/impresora.md"}, result.Sources)
	assert.Equal(t, cajaPassages, result.Passages)

	require.Len(t, llm.requests, 1)
	req := llm.requests[0]
	assert.Equal(t, "system prompt", req.System)
	assert.Equal(t, "Q=¿Cómo reinicio la caja? C="+BuildContext(cajaPassages), req.User)
	assert.Equal(t, 300, req.MaxTokens)
	assert.InDelta(t, 0.2, req.Temperature, 1e-9)
}

func TestSynthesisService_FallbackPrompts(t *testing.T) {
	llm := &mockLLM{gen: domain.GeneratedText("ok")}
	service := NewSynthesisService(llm, &mockPromptStore{}, SynthesisOptions{})

	_, err := service.Synthesize(context.Background(), "caja", cajaPassages[:1])

	require.NoError(t, err)
	assert.Equal(t, fallbackAnswerSystem, llm.requests[0].System)
	assert.Contains(t, llm.requests[0].User, "[Doc 1] (caja.md)")
}

func TestSynthesisService_NoContentIsEmptyAnswer(t *testing.T) {
	llm := &mockLLM{gen: domain.NoContent()}
	service := NewSynthesisService(llm, nil, SynthesisOptions{})

	result, err := service.Synthesize(context.Background(), "caja", cajaPassages)

	require.NoError(t, err)
	assert.Empty(t, result.Answer)
	assert.Equal(t, []string{"caja.md", "hw/impresora.md"}, result.Sources)
}

func TestSynthesisService_NoPassagesStillCallsModel(t *testing.T) {
	llm := &mockLLM{gen: domain.GeneratedText("No encuentro información.")}
	service := NewSynthesisService(llm, nil, SynthesisOptions{})

	result, err := service.Synthesize(context.Background(), "caja", nil)

	require.NoError(t, err)
	assert.Len(t, llm.requests, 1)
	assert.Empty(t, result.Sources)
}

func TestSynthesisService_ProviderError(t *testing.T) {
	llm := &mockLLM{err: domain.ErrProviderTimeout}
	service := NewSynthesisService(llm, nil, SynthesisOptions{ProviderTimeout: time.Second})

	_, err := service.Synthesize(context.Background(), "caja", cajaPassages)

	assert.ErrorIs(t, err, domain.ErrProviderTimeout)
}
