package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
	"github.com/custodia-labs/ragdesk/internal/logger"
)

// Ensure Refresher implements the interface.
var _ driving.RefreshService = (*Refresher)(nil)

// Refresher keeps the index fresh while documents are being edited.
// Changes are collected until the tree has been quiet for the debounce
// interval, then EnsureFresh runs once for the whole burst.
type Refresher struct {
	watcher  driven.DocumentWatcher
	index    driving.IndexService
	debounce time.Duration

	mu        sync.RWMutex
	onRefresh func(domain.RefreshEvent)
}

// NewRefresher creates a refresher.
func NewRefresher(watcher driven.DocumentWatcher, index driving.IndexService, debounce time.Duration) *Refresher {
	if debounce <= 0 {
		debounce = time.Millisecond
	}
	return &Refresher{watcher: watcher, index: index, debounce: debounce}
}

// OnRefresh registers fn to observe each refresh.
func (r *Refresher) OnRefresh(fn func(domain.RefreshEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRefresh = fn
}

// Run refreshes once, then after every burst of changes, until ctx is
// cancelled. It returns nil on cancellation.
func (r *Refresher) Run(ctx context.Context) error {
	changes, err := r.watcher.Watch(ctx)
	if err != nil {
		return err
	}

	r.refresh(ctx, nil)

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-changes:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("document watcher stopped")
			}
			logger.Debug("watch: %s changed", path)
			pending[path] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(r.debounce)
			} else {
				timer.Reset(r.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			r.refresh(ctx, changed)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context, changed []string) {
	rebuilt, err := r.index.EnsureFresh(ctx)
	switch {
	case err != nil && ctx.Err() != nil:
		return
	case err != nil:
		logger.Error("refresh index: %v", err)
	case rebuilt:
		logger.Info("index refreshed after %d change(s)", len(changed))
	}

	r.mu.RLock()
	fn := r.onRefresh
	r.mu.RUnlock()
	if fn != nil {
		fn(domain.RefreshEvent{Changed: changed, Rebuilt: rebuilt, Err: err})
	}
}
