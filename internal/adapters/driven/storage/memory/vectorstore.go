package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/ragdesk/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
)

var (
	_ driven.VectorStore        = (*VectorStore)(nil)
	_ driven.StagingStore       = (*stagingStore)(nil)
	_ driven.VectorStoreFactory = (*Factory)(nil)
)

// VectorStore is an in-memory vector store. Nothing survives the process.
type VectorStore struct {
	mu     sync.RWMutex
	chunks []domain.EmbeddedChunk
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{}
}

// Add stores chunks with their embeddings.
func (s *VectorStore) Add(ctx context.Context, chunks []domain.EmbeddedChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		c.Embedding = append([]float32(nil), c.Embedding...)
		s.chunks = append(s.chunks, c)
	}
	return nil
}

// Query returns up to k chunks by cosine similarity.
func (s *VectorStore) Query(ctx context.Context, embedding []float32, k int) ([]domain.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranker := similarity.NewRanker(embedding, k)
	for _, c := range s.chunks {
		ranker.Offer(c.Chunk, c.Embedding)
	}
	return ranker.Result(), nil
}

// Reset removes every chunk.
func (s *VectorStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	return nil
}

// Count returns the number of stored chunks.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// Close is a no-op; the data lives as long as a reference does.
func (s *VectorStore) Close() error {
	return nil
}

// Factory hands out in-memory generations. Publishing swaps the active pointer.
type Factory struct {
	mu         sync.Mutex
	active     *VectorStore
	activeName string
	seq        int

	// build holds one token while a rebuild runs.
	build chan struct{}
}

// NewFactory creates a factory with nothing published.
func NewFactory() *Factory {
	return &Factory{build: make(chan struct{}, 1)}
}

// OpenActive returns the published store or domain.ErrNotFound.
func (f *Factory) OpenActive(_ context.Context) (driven.VectorStore, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == nil {
		return nil, "", domain.ErrNotFound
	}
	return f.active, f.activeName, nil
}

// Active returns the published generation name.
func (f *Factory) Active(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activeName, nil
}

// CreateStaging returns a fresh store that OpenActive does not see.
func (f *Factory) CreateStaging(_ context.Context) (driven.StagingStore, error) {
	f.mu.Lock()
	f.seq++
	name := fmt.Sprintf("mem-%d", f.seq)
	f.mu.Unlock()
	return &stagingStore{VectorStore: NewVectorStore(), factory: f, name: name}, nil
}

// Prune is a no-op; unpublished generations are garbage collected.
func (f *Factory) Prune(_ context.Context) error {
	return nil
}

// Lock serialises rebuilds within the process. Memory generations are
// never shared with another process.
func (f *Factory) Lock(ctx context.Context) (func() error, error) {
	select {
	case f.build <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	var once sync.Once
	return func() error {
		once.Do(func() { <-f.build })
		return nil
	}, nil
}

// Backend returns domain.StoreBackendMemory.
func (f *Factory) Backend() domain.StoreBackend {
	return domain.StoreBackendMemory
}

type stagingStore struct {
	*VectorStore
	factory   *Factory
	name      string
	published bool
}

func (s *stagingStore) Generation() string {
	return s.name
}

func (s *stagingStore) Publish(_ context.Context) error {
	s.factory.mu.Lock()
	defer s.factory.mu.Unlock()
	s.factory.active = s.VectorStore
	s.factory.activeName = s.name
	s.published = true
	return nil
}

func (s *stagingStore) Discard() error {
	if s.published {
		return nil
	}
	return s.Reset(context.Background())
}
