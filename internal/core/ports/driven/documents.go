package driven

import (
	"context"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// DocumentSource enumerates eligible documents under a root.
type DocumentSource interface {
	// LatestModTime returns the newest modification time of eligible files in
	// unix seconds, or 0 when there are none.
	LatestModTime(ctx context.Context) (float64, error)

	// Load reads every eligible document. Files that cannot be read are
	// skipped and counted in unreadable; they are not an error.
	Load(ctx context.Context) (docs []domain.Document, unreadable int, err error)

	// Root returns the document root.
	Root() string
}

// Chunker splits a document into overlapping passages.
type Chunker interface {
	// Split returns the document's chunks in text order.
	// An empty document yields no chunks.
	Split(doc domain.Document) []domain.Chunk
}

// MarkerStore persists the staleness marker.
type MarkerStore interface {
	// Read returns the stored marker.
	// Returns domain.ErrNotFound when no marker exists.
	Read(ctx context.Context) (domain.StalenessMarker, error)

	// Write replaces the marker atomically.
	Write(ctx context.Context, marker domain.StalenessMarker) error

	// Path returns where the marker lives.
	Path() string
}

// DocumentWatcher reports changes under the document root.
type DocumentWatcher interface {
	// Watch emits the path of each changed eligible file until ctx is cancelled,
	// then closes the channel.
	Watch(ctx context.Context) (<-chan string, error)
}
