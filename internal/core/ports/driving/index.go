package driving

import (
	"context"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// IndexService manages the retrieval index.
type IndexService interface {
	// Rebuild re-indexes every document unconditionally.
	Rebuild(ctx context.Context) (domain.RebuildReport, error)

	// EnsureFresh rebuilds only when documents changed since the last build.
	// It returns true when a rebuild ran.
	EnsureFresh(ctx context.Context) (bool, error)

	// Status reports the index state.
	Status(ctx context.Context) (domain.IndexStatus, error)
}
