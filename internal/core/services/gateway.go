package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
)

// Gateway holds the vector store that queries read from.
// Rebuilds swap in a new store under the write lock, so a query never sees a
// half-built index and the old handle is closed only after in-flight queries end.
type Gateway struct {
	mu         sync.RWMutex
	store      driven.VectorStore
	generation string
}

// NewGateway wraps store, which may be nil. generation names where the store
// was opened from and may be empty.
func NewGateway(store driven.VectorStore, generation string) *Gateway {
	return &Gateway{store: store, generation: generation}
}

// OpenGateway opens the published store, if any.
func OpenGateway(ctx context.Context, factory driven.VectorStoreFactory) (*Gateway, error) {
	store, generation, err := factory.OpenActive(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return NewGateway(nil, ""), nil
		}
		return nil, fmt.Errorf("open vector store: %w", err)
	}
	return NewGateway(store, generation), nil
}

// Generation returns the generation of the attached store.
func (g *Gateway) Generation() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.generation
}

// Loaded reports whether a store is attached.
func (g *Gateway) Loaded() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store != nil
}

// Query returns up to k chunks. Without a store the result is empty.
func (g *Gateway) Query(ctx context.Context, embedding []float32, k int) ([]domain.ScoredChunk, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.store == nil {
		return []domain.ScoredChunk{}, nil
	}
	return g.store.Query(ctx, embedding, k)
}

// Count returns the number of chunks in the active store.
func (g *Gateway) Count(ctx context.Context) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.store == nil {
		return 0, nil
	}
	return g.store.Count(ctx)
}

// Swap installs store, opened from generation, and closes the previous one.
func (g *Gateway) Swap(store driven.VectorStore, generation string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	old := g.store
	g.store = store
	g.generation = generation
	if old == nil || old == store {
		return nil
	}
	if err := old.Close(); err != nil {
		return fmt.Errorf("close previous store: %w", err)
	}
	return nil
}

// Close closes the active store.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.store == nil {
		return nil
	}
	err := g.store.Close()
	g.store = nil
	g.generation = ""
	return err
}
