// Package marker persists the staleness marker as a small TOML file.
//
// The file is rewritten through a temporary file in the same directory and
// renamed into place, so readers see either the old or the new record.
package marker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/ragdesk/internal/adapters/driven/atomicfile"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.MarkerStore = (*FileStore)(nil)

// record is the on-disk layout.
type record struct {
	LatestSourceMTime *float64 `toml:"latest_source_mtime"`
	BuiltAt           time.Time `toml:"built_at"`
	Documents         int       `toml:"documents"`
	Chunks            int       `toml:"chunks"`
}

// FileStore keeps the marker at a fixed path.
type FileStore struct {
	path string
}

// NewFileStore creates a marker store for path. Nothing is touched on disk.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the marker file path.
func (s *FileStore) Path() string {
	return s.path
}

// Read loads the marker.
// Returns domain.ErrNotFound when the file does not exist and
// domain.ErrMarkerCorrupt when it cannot be decoded.
func (s *FileStore) Read(_ context.Context) (domain.StalenessMarker, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.StalenessMarker{}, domain.ErrNotFound
		}
		return domain.StalenessMarker{}, fmt.Errorf("read marker: %w", err)
	}

	var rec record
	if err := toml.Unmarshal(data, &rec); err != nil {
		return domain.StalenessMarker{}, fmt.Errorf("%w: %w", domain.ErrMarkerCorrupt, err)
	}
	if rec.LatestSourceMTime == nil {
		return domain.StalenessMarker{}, fmt.Errorf("%w: latest_source_mtime missing", domain.ErrMarkerCorrupt)
	}

	m := domain.StalenessMarker{
		LatestSourceMTime: *rec.LatestSourceMTime,
		Documents:         rec.Documents,
		Chunks:            rec.Chunks,
	}
	if !rec.BuiltAt.IsZero() {
		m.BuiltAt = rec.BuiltAt
	}
	return m, nil
}

// Write replaces the marker atomically.
func (s *FileStore) Write(_ context.Context, m domain.StalenessMarker) error {
	mtime := m.LatestSourceMTime
	rec := record{
		LatestSourceMTime: &mtime,
		Documents:         m.Documents,
		Chunks:            m.Chunks,
	}
	if !m.BuiltAt.IsZero() {
		rec.BuiltAt = m.BuiltAt.UTC().Truncate(time.Second)
	}
	data, err := toml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode marker: %w", err)
	}

	if err := atomicfile.WriteFile(s.path, data); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	return nil
}
