package driving

import (
	"context"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// RefreshService keeps the index fresh while documents change.
type RefreshService interface {
	// Run refreshes until ctx is cancelled.
	Run(ctx context.Context) error

	// OnRefresh registers fn to observe each refresh. Pass nil to remove it.
	OnRefresh(fn func(domain.RefreshEvent))
}
