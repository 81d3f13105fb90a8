package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
	"github.com/custodia-labs/ragdesk/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexOptions tunes the rebuild.
type IndexOptions struct {
	// BatchSize is how many chunks go into one embedding call.
	BatchSize int

	// ProviderTimeout bounds each embedding call. Zero means no bound.
	ProviderTimeout time.Duration
}

// IndexService rebuilds the vector index from the document tree.
// Rebuilds are serialised within the process by mu and across processes by
// the factory lock; queries keep reading the previous index until the new one
// is published. A generation published by another process is picked up on the
// next EnsureFresh.
type IndexService struct {
	source   driven.DocumentSource
	chunker  driven.Chunker
	embedder driven.EmbeddingService
	factory  driven.VectorStoreFactory
	gateway  *Gateway
	tracker  *StalenessTracker
	opts     IndexOptions

	mu sync.Mutex

	// swapMu orders gateway swaps so an older generation never replaces a newer one.
	swapMu sync.Mutex

	now func() time.Time
}

// NewIndexService creates an index service.
func NewIndexService(
	source driven.DocumentSource,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	factory driven.VectorStoreFactory,
	gateway *Gateway,
	tracker *StalenessTracker,
	opts IndexOptions,
) *IndexService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = domain.DefaultEmbedBatchSize
	}
	return &IndexService{
		source:   source,
		chunker:  chunker,
		embedder: embedder,
		factory:  factory,
		gateway:  gateway,
		tracker:  tracker,
		opts:     opts,
		now:      time.Now,
	}
}

// Rebuild re-indexes every document.
func (s *IndexService) Rebuild(ctx context.Context) (domain.RebuildReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(ctx)
	if err != nil {
		return domain.RebuildReport{}, err
	}
	defer unlock()

	return s.rebuild(ctx)
}

// EnsureFresh rebuilds when a document is newer than the marker, or when
// documents exist but no index is loaded. When the marker is fresh it first
// loads the published generation if another process replaced it.
func (s *IndexService) EnsureFresh(ctx context.Context) (bool, error) {
	// The marker is read before CURRENT. A rebuild publishes before it writes
	// the marker, so a fresh marker implies the loaded generation covers it.
	needed, err := s.needsRebuild(ctx)
	if err != nil {
		return false, err
	}
	if !needed {
		return false, s.syncActive(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	// Another caller or process may have rebuilt while we waited.
	if err := s.syncActive(ctx); err != nil {
		return false, err
	}
	needed, err = s.needsRebuild(ctx)
	if err != nil || !needed {
		return false, err
	}

	report, err := s.rebuild(ctx)
	if err != nil {
		return false, err
	}
	return !report.Skipped, nil
}

// Status reports the index state.
func (s *IndexService) Status(ctx context.Context) (domain.IndexStatus, error) {
	latest, err := s.tracker.LatestMTime(ctx)
	if err != nil {
		return domain.IndexStatus{}, err
	}
	chunks, err := s.gateway.Count(ctx)
	if err != nil {
		return domain.IndexStatus{}, fmt.Errorf("count chunks: %w", err)
	}

	status := domain.IndexStatus{
		DocsDir:     s.source.Root(),
		Backend:     s.factory.Backend(),
		LatestMTime: latest,
		MarkerMTime: domain.MissingMarker,
		Chunks:      chunks,
	}
	if m, ok := s.tracker.readRecord(ctx); ok {
		status.MarkerMTime = m.LatestSourceMTime
		status.BuiltAt = m.BuiltAt
	}
	status.Stale = latest > 0 && latest > status.MarkerMTime
	return status, nil
}

func (s *IndexService) needsRebuild(ctx context.Context) (bool, error) {
	stale, err := s.tracker.NeedsRebuild(ctx)
	if err != nil {
		return false, domain.NewStageError(domain.StageRebuild, err)
	}
	if stale {
		return true, nil
	}
	if s.gateway.Loaded() {
		return false, nil
	}
	// A fresh marker with nothing loaded means the store was lost or lives in memory.
	latest, err := s.tracker.LatestMTime(ctx)
	if err != nil {
		return false, domain.NewStageError(domain.StageRebuild, err)
	}
	return latest > 0, nil
}

// syncActive swaps in the published generation when it differs from the
// loaded one.
func (s *IndexService) syncActive(ctx context.Context) error {
	s.swapMu.Lock()
	defer s.swapMu.Unlock()

	current, err := s.factory.Active(ctx)
	if err != nil {
		return domain.NewStageError(domain.StageRebuild, err)
	}
	if current == "" || current == s.gateway.Generation() {
		return nil
	}

	store, generation, err := s.factory.OpenActive(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return domain.NewStageError(domain.StageRebuild, err)
	}
	logger.Info("loading index generation %s", generation)
	if err := s.gateway.Swap(store, generation); err != nil {
		logger.Warn("reload index: %v", err)
	}
	return nil
}

func (s *IndexService) lock(ctx context.Context) (func(), error) {
	unlock, err := s.factory.Lock(ctx)
	if err != nil {
		return nil, domain.NewStageError(domain.StageRebuild, fmt.Errorf("acquire rebuild lock: %w", err))
	}
	return func() {
		if err := unlock(); err != nil {
			logger.Warn("release rebuild lock: %v", err)
		}
	}, nil
}

// rebuild runs with s.mu and the factory lock held.
func (s *IndexService) rebuild(ctx context.Context) (domain.RebuildReport, error) {
	logger.Section("Index Rebuild")
	start := s.now()
	report := domain.RebuildReport{}

	// Taken before loading so edits made during the build trigger another one.
	latest, err := s.tracker.LatestMTime(ctx)
	if err != nil {
		return report, domain.NewStageError(domain.StageRebuild, err)
	}

	docs, unreadable, err := s.source.Load(ctx)
	if err != nil {
		return report, domain.NewStageError(domain.StageRebuild, fmt.Errorf("load documents: %w", err))
	}
	report.Unreadable = unreadable
	if unreadable > 0 {
		logger.Warn("skipped %d unreadable file(s) under %s", unreadable, s.source.Root())
	}
	if len(docs) == 0 {
		logger.Warn("no documents under %s, keeping the current index", s.source.Root())
		report.Skipped = true
		return report, nil
	}
	report.Documents = len(docs)

	var chunks []domain.Chunk
	for _, doc := range docs {
		chunks = append(chunks, s.chunker.Split(doc)...)
	}
	logger.Info("indexing %d chunk(s) from %d document(s)", len(chunks), len(docs))

	staging, err := s.factory.CreateStaging(ctx)
	if err != nil {
		return report, domain.NewStageError(domain.StageRebuild, err)
	}

	if err := s.populate(ctx, staging, chunks); err != nil {
		discard(staging)
		return report, domain.NewStageError(domain.StageRebuild, err)
	}
	if err := staging.Publish(ctx); err != nil {
		discard(staging)
		return report, domain.NewStageError(domain.StageRebuild, fmt.Errorf("publish index: %w", err))
	}
	s.swapMu.Lock()
	if err := s.gateway.Swap(staging, staging.Generation()); err != nil {
		logger.Warn("rebuild: %v", err)
	}
	s.swapMu.Unlock()

	report.Chunks = len(chunks)
	report.LatestMTime = latest
	marker := domain.StalenessMarker{
		LatestSourceMTime: latest,
		BuiltAt:           s.now(),
		Documents:         report.Documents,
		Chunks:            report.Chunks,
	}
	if err := s.tracker.WriteMarker(ctx, marker); err != nil {
		return report, domain.NewStageError(domain.StageRebuild, err)
	}

	if err := s.factory.Prune(ctx); err != nil {
		logger.Warn("prune old index generations: %v", err)
	}

	report.Duration = s.now().Sub(start)
	logger.Info("index rebuilt: %d document(s), %d chunk(s) in %s",
		report.Documents, report.Chunks, report.Duration.Round(time.Millisecond))
	return report, nil
}

// populate embeds chunks batch by batch and adds them to store.
func (s *IndexService) populate(ctx context.Context, store driven.VectorStore, chunks []domain.Chunk) error {
	defer logger.Timed("embed and store")()

	for start := 0; start < len(chunks); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := s.embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embed chunks %d-%d: %w: got %d vectors",
				start, end-1, domain.ErrEmbeddingUnavailable, len(vectors))
		}

		embedded := make([]domain.EmbeddedChunk, len(batch))
		for i, c := range batch {
			embedded[i] = domain.EmbeddedChunk{Chunk: c, Embedding: vectors[i]}
		}
		if err := store.Add(ctx, embedded); err != nil {
			return fmt.Errorf("store chunks %d-%d: %w", start, end-1, err)
		}
		logger.Debug("stored chunks %d-%d", start, end-1)
	}
	return nil
}

func (s *IndexService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := withProviderTimeout(ctx, s.opts.ProviderTimeout)
	defer cancel()
	return s.embedder.EmbedBatch(ctx, texts)
}

// withProviderTimeout bounds a provider call. A non-positive timeout leaves ctx as is.
func withProviderTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func discard(staging driven.StagingStore) {
	if err := staging.Discard(); err != nil {
		logger.Warn("discard staging index: %v", err)
	}
}
