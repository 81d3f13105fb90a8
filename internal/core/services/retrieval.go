package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
	"github.com/custodia-labs/ragdesk/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService finds the passages most similar to a question.
type RetrievalService struct {
	embedder driven.EmbeddingService
	gateway  *Gateway
	topK     int
	timeout  time.Duration
}

// NewRetrievalService creates a retrieval service returning topK passages.
func NewRetrievalService(embedder driven.EmbeddingService, gateway *Gateway, topK int, timeout time.Duration) *RetrievalService {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &RetrievalService{embedder: embedder, gateway: gateway, topK: topK, timeout: timeout}
}

// Retrieve embeds the question and returns up to topK passages, best first.
// An empty index yields an empty slice.
func (s *RetrievalService) Retrieve(ctx context.Context, question string) ([]domain.RetrievedPassage, error) {
	defer logger.Timed("retrieval")()

	embedCtx, cancel := withProviderTimeout(ctx, s.timeout)
	vector, err := s.embedder.Embed(embedCtx, question)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := s.gateway.Query(ctx, vector, s.topK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	passages := make([]domain.RetrievedPassage, len(hits))
	for i, h := range hits {
		passages[i] = domain.RetrievedPassage{
			ChunkText:        h.Chunk.Text,
			SourceIdentifier: h.Chunk.Source.Identifier(),
			Score:            h.Score,
		}
	}
	logger.Debug("retrieved %d passage(s)", len(passages))
	return passages, nil
}
