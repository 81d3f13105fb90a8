package driven

import (
	"context"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// VectorStore holds embedded chunks and answers similarity queries.
type VectorStore interface {
	// Add stores chunks with their embeddings.
	Add(ctx context.Context, chunks []domain.EmbeddedChunk) error

	// Query returns up to k chunks sorted by decreasing similarity.
	// An empty store returns an empty result.
	Query(ctx context.Context, embedding []float32, k int) ([]domain.ScoredChunk, error)

	// Reset removes every stored chunk.
	Reset(ctx context.Context) error

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// StagingStore is a fresh store that queries cannot see until it is published.
type StagingStore interface {
	VectorStore

	// Publish makes this store the one OpenActive returns.
	// The store stays open and usable after publishing.
	Publish(ctx context.Context) error

	// Discard closes the store and removes its data. It is a no-op after Publish.
	Discard() error

	// Generation names the location this store was created at.
	Generation() string
}

// VectorStoreFactory owns the persisted index location.
// The core never looks inside it; it only stages, publishes and opens stores.
type VectorStoreFactory interface {
	// OpenActive opens the published store and returns its generation name.
	// Returns domain.ErrNotFound when nothing has been published.
	OpenActive(ctx context.Context) (VectorStore, string, error)

	// Active returns the published generation name, or "" when nothing is
	// published. Another process may change it at any time.
	Active(ctx context.Context) (string, error)

	// CreateStaging creates an empty store at a fresh location.
	CreateStaging(ctx context.Context) (StagingStore, error)

	// Prune removes generations older than the published one.
	Prune(ctx context.Context) error

	// Lock takes the rebuild lock shared by every process using this location.
	// It blocks until the lock is held or ctx ends.
	Lock(ctx context.Context) (unlock func() error, err error)

	// Backend names the implementation.
	Backend() domain.StoreBackend
}
