package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
	"github.com/custodia-labs/ragdesk/internal/logger"
)

// StalenessTracker compares the newest document mtime with the recorded marker.
type StalenessTracker struct {
	source  driven.DocumentSource
	markers driven.MarkerStore
}

// NewStalenessTracker creates a tracker over source and markers.
func NewStalenessTracker(source driven.DocumentSource, markers driven.MarkerStore) *StalenessTracker {
	return &StalenessTracker{source: source, markers: markers}
}

// LatestMTime returns the newest eligible mtime in unix seconds, or 0 with no documents.
func (t *StalenessTracker) LatestMTime(ctx context.Context) (float64, error) {
	latest, err := t.source.LatestModTime(ctx)
	if err != nil {
		return 0, fmt.Errorf("scan documents: %w", err)
	}
	return latest, nil
}

// ReadMarker returns the recorded mtime, or domain.MissingMarker when there is
// no usable marker.
func (t *StalenessTracker) ReadMarker(ctx context.Context) float64 {
	m, ok := t.readRecord(ctx)
	if !ok {
		return domain.MissingMarker
	}
	return m.LatestSourceMTime
}

// WriteMarker records a completed build.
func (t *StalenessTracker) WriteMarker(ctx context.Context, m domain.StalenessMarker) error {
	if err := t.markers.Write(ctx, m); err != nil {
		return fmt.Errorf("write marker %s: %w", t.markers.Path(), err)
	}
	return nil
}

// NeedsRebuild reports whether an eligible document is newer than the marker.
// With no eligible documents it is always false.
func (t *StalenessTracker) NeedsRebuild(ctx context.Context) (bool, error) {
	latest, err := t.LatestMTime(ctx)
	if err != nil {
		return false, err
	}
	if latest == 0 {
		return false, nil
	}
	marker := t.ReadMarker(ctx)
	logger.Debug("staleness: latest=%.3f marker=%.3f", latest, marker)
	return latest > marker, nil
}

// readRecord loads the full marker. A corrupt or unreadable marker is
// reported as a warning and treated as absent.
func (t *StalenessTracker) readRecord(ctx context.Context) (domain.StalenessMarker, bool) {
	m, err := t.markers.Read(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("ignoring marker %s: %v", t.markers.Path(), err)
		}
		return domain.StalenessMarker{}, false
	}
	return m, true
}
