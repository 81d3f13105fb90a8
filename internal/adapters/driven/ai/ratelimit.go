package ai

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
)

// rateLimitedEmbedding waits on a token bucket before each provider call.
type rateLimitedEmbedding struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

// WithRateLimit throttles svc to rps calls per second.
// A non-positive rps returns svc unchanged.
func WithRateLimit(svc driven.EmbeddingService, rps float64, burst int) driven.EmbeddingService {
	if rps <= 0 {
		return svc
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedEmbedding{
		EmbeddingService: svc,
		limiter:          rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *rateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.EmbeddingService.Embed(ctx, text)
}

func (r *rateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.EmbeddingService.EmbedBatch(ctx, texts)
}

func (r *rateLimitedEmbedding) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		// Wait fails early when the deadline cannot be met.
		return fmt.Errorf("%w: %w: %w", domain.ErrEmbeddingUnavailable, domain.ErrRateLimited, err)
	}
	return nil
}
