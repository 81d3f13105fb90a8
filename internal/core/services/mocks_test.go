package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/ragdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
)

// vocabulary gives the test embedder a stable, readable vector space.
var vocabulary = []string{"caja", "reinic", "pos", "impresora", "contraseña", "ticket"}

func keywordVector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(vocabulary))
	for i, word := range vocabulary {
		v[i] = float32(strings.Count(lower, word))
	}
	return v
}

func testDoc(rel, text string) domain.Document {
	return domain.Document{
		RawText:      text,
		SourcePath:   "/docs/" + rel,
		RelativePath: rel,
		DisplayName:  rel[strings.LastIndex(rel, "/")+1:],
		ModTime:      time.Unix(1_700_000_000, 0),
	}
}

type mockDocumentSource struct {
	mu         sync.Mutex
	docs       []domain.Document
	latest     float64
	unreadable int
	latestErr  error
	loadErr    error
	loads      int
}

func (m *mockDocumentSource) LatestModTime(_ context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, m.latestErr
}

func (m *mockDocumentSource) Load(_ context.Context) ([]domain.Document, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.loadErr != nil {
		return nil, 0, m.loadErr
	}
	return append([]domain.Document(nil), m.docs...), m.unreadable, nil
}

func (m *mockDocumentSource) Root() string { return "/docs" }

func (m *mockDocumentSource) set(latest float64, docs ...domain.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = latest
	m.docs = docs
}

type mockMarkerStore struct {
	mu       sync.Mutex
	marker   *domain.StalenessMarker
	readErr  error
	writeErr error
	writes   int
}

func (m *mockMarkerStore) Read(_ context.Context) (domain.StalenessMarker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return domain.StalenessMarker{}, m.readErr
	}
	if m.marker == nil {
		return domain.StalenessMarker{}, domain.ErrNotFound
	}
	return *m.marker, nil
}

func (m *mockMarkerStore) Write(_ context.Context, marker domain.StalenessMarker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.marker = &marker
	return nil
}

func (m *mockMarkerStore) Path() string { return "/index/index.stamp" }

func (m *mockMarkerStore) value() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.marker == nil {
		return domain.MissingMarker
	}
	return m.marker.LatestSourceMTime
}

// mockEmbedder embeds by keyword counts. failOnBatch is 1-based.
type mockEmbedder struct {
	mu          sync.Mutex
	batches     int
	failOnBatch int
	embedErr    error
	batchErr    error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return keywordVector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches++
	n := m.batches
	m.mu.Unlock()

	if m.failOnBatch > 0 && n == m.failOnBatch {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = keywordVector(t)
	}
	return out, nil
}

func (m *mockEmbedder) batchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches
}

func (m *mockEmbedder) Dimensions() int              { return len(vocabulary) }
func (m *mockEmbedder) ModelName() string            { return "keywords" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// countingFactory wraps the memory factory to count staging stores.
type countingFactory struct {
	*memory.Factory
	staged    int
	discarded int
	pruneErr  error
}

func newCountingFactory() *countingFactory {
	return &countingFactory{Factory: memory.NewFactory()}
}

func (f *countingFactory) CreateStaging(ctx context.Context) (driven.StagingStore, error) {
	f.staged++
	staging, err := f.Factory.CreateStaging(ctx)
	if err != nil {
		return nil, err
	}
	return &countingStaging{StagingStore: staging, factory: f}, nil
}

func (f *countingFactory) Prune(ctx context.Context) error {
	if f.pruneErr != nil {
		return f.pruneErr
	}
	return f.Factory.Prune(ctx)
}

type countingStaging struct {
	driven.StagingStore
	factory *countingFactory
}

func (s *countingStaging) Discard() error {
	s.factory.discarded++
	return s.StagingStore.Discard()
}

// trackingStore records Close calls.
type trackingStore struct {
	*memory.VectorStore
	closed int
}

func (s *trackingStore) Close() error {
	s.closed++
	return nil
}

type mockLLM struct {
	gen      domain.Generation
	err      error
	requests []driven.CompletionRequest
}

func (m *mockLLM) Complete(_ context.Context, req driven.CompletionRequest) (domain.Generation, error) {
	m.requests = append(m.requests, req)
	return m.gen, m.err
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

type mockIndexService struct {
	rebuilt   bool
	err       error
	freshness int
}

func (m *mockIndexService) Rebuild(_ context.Context) (domain.RebuildReport, error) {
	return domain.RebuildReport{}, m.err
}

func (m *mockIndexService) EnsureFresh(_ context.Context) (bool, error) {
	m.freshness++
	return m.rebuilt, m.err
}

func (m *mockIndexService) Status(_ context.Context) (domain.IndexStatus, error) {
	return domain.IndexStatus{}, nil
}
