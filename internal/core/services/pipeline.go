package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
	"github.com/custodia-labs/ragdesk/internal/logger"
)

// Ensure AnswerService implements the interfaces.
var (
	_ driving.AnswerService    = (*AnswerService)(nil)
	_ driving.PipelineObserver = (*AnswerService)(nil)
)

// AnswerService runs refresh, retrieval and synthesis for one question.
// Calls are independent and may run concurrently.
type AnswerService struct {
	index     driving.IndexService
	retrieval *RetrievalService
	synthesis *SynthesisService

	mu           sync.RWMutex
	onTransition driving.TransitionFunc
}

// NewAnswerService creates the answer pipeline.
func NewAnswerService(index driving.IndexService, retrieval *RetrievalService, synthesis *SynthesisService) *AnswerService {
	return &AnswerService{index: index, retrieval: retrieval, synthesis: synthesis}
}

// OnTransition registers fn to observe state changes. Pass nil to remove it.
func (s *AnswerService) OnTransition(fn driving.TransitionFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTransition = fn
}

// Answer refreshes the index if needed, then retrieves and synthesises.
func (s *AnswerService) Answer(ctx context.Context, question string) (domain.AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.AnswerResult{}, domain.ErrEmptyQuestion
	}

	run := &pipelineRun{state: domain.PipelineIdle, notify: s.observer()}

	if rebuilt, err := s.index.EnsureFresh(ctx); err != nil {
		return run.fail(domain.StageRebuild, err)
	} else if rebuilt {
		logger.Info("index refreshed before answering")
	}

	run.advance(domain.PipelineRetrieving)
	passages, err := s.retrieval.Retrieve(ctx, question)
	if err != nil {
		return run.fail(domain.StageRetrieval, err)
	}

	run.advance(domain.PipelineSynthesizing)
	result, err := s.synthesis.Synthesize(ctx, question, passages)
	if err != nil {
		return run.fail(domain.StageSynthesis, err)
	}

	run.advance(domain.PipelineDone)
	return result, nil
}

func (s *AnswerService) observer() driving.TransitionFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onTransition
}

// pipelineRun tracks the state of a single Answer call.
type pipelineRun struct {
	state  domain.PipelineState
	notify driving.TransitionFunc
}

func (r *pipelineRun) advance(next domain.PipelineState) {
	if !r.state.CanTransition(next) {
		logger.Warn("pipeline: unexpected transition %s -> %s", r.state, next)
	}
	prev := r.state
	r.state = next
	logger.Debug("pipeline: %s -> %s", prev, next)
	if r.notify != nil {
		r.notify(prev, next)
	}
}

func (r *pipelineRun) fail(stage domain.Stage, err error) (domain.AnswerResult, error) {
	r.advance(domain.PipelineFailed)
	if st, ok := domain.StageOf(err); ok && st == stage {
		return domain.AnswerResult{}, err
	}
	return domain.AnswerResult{}, domain.NewStageError(stage, err)
}
