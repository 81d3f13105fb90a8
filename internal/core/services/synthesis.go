package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
	"github.com/custodia-labs/ragdesk/internal/logger"
)

// Fallbacks used when the prompt store has nothing to offer.
const (
	fallbackAnswerSystem = "You are a helpdesk assistant. Answer only from the provided context and cite sources in parentheses."
	fallbackAnswerUser   = "Ticket:\n%s\n\nContext:\n%s"
)

// SynthesisOptions tunes the generation call.
type SynthesisOptions struct {
	Temperature     float64
	MaxTokens       int
	ProviderTimeout time.Duration
}

// SynthesisService turns retrieved passages into a cited answer.
type SynthesisService struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	opts    SynthesisOptions
}

// NewSynthesisService creates a synthesis service. prompts may be nil.
func NewSynthesisService(llm driven.LLMService, prompts driven.PromptStore, opts SynthesisOptions) *SynthesisService {
	return &SynthesisService{llm: llm, prompts: prompts, opts: opts}
}

// Synthesize makes exactly one LLM call. A response without text gives an
// empty answer, not an error.
func (s *SynthesisService) Synthesize(
	ctx context.Context, question string, passages []domain.RetrievedPassage,
) (domain.AnswerResult, error) {
	defer logger.Timed("synthesis")()

	req := driven.CompletionRequest{
		System:      s.prompt(driven.PromptAnswerSystem, fallbackAnswerSystem),
		User:        fmt.Sprintf(s.prompt(driven.PromptAnswerUser, fallbackAnswerUser), question, BuildContext(passages)),
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	}

	callCtx, cancel := withProviderTimeout(ctx, s.opts.ProviderTimeout)
	defer cancel()

	gen, err := s.llm.Complete(callCtx, req)
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("generate answer: %w", err)
	}
	if !gen.HasContent() {
		logger.Warn("model %s returned no content", s.llm.ModelName())
	}

	return domain.AnswerResult{
		Answer:   gen.Text(),
		Sources:  domain.UniqueSources(passages),
		Passages: passages,
	}, nil
}

func (s *SynthesisService) prompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	p, err := s.prompts.Load(name)
	if err != nil {
		logger.Debug("prompt %s unavailable, using fallback: %v", name, err)
		return fallback
	}
	return p
}

// BuildContext renders passages as numbered "[Doc i] (source)" sections in
// retrieval order. No passages give "".
func BuildContext(passages []domain.RetrievedPassage) string {
	sections := make([]string, len(passages))
	for i, p := range passages {
		sections[i] = fmt.Sprintf("[Doc %d] (%s)\n%s", i+1, p.SourceIdentifier, p.ChunkText)
	}
	return strings.Join(sections, "\n\n")
}
