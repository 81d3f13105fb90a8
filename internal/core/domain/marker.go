package domain

import "time"

// MissingMarker is the value reported when no usable marker exists.
// It is older than any real document, so any document forces a rebuild.
const MissingMarker = -1.0

// StalenessMarker records the newest source mtime covered by the current index.
type StalenessMarker struct {
	// LatestSourceMTime is in unix seconds. It alone decides freshness.
	LatestSourceMTime float64

	// BuiltAt is when the index was published.
	BuiltAt time.Time

	// Documents is the number of documents indexed.
	Documents int

	// Chunks is the number of chunks indexed.
	Chunks int
}

// IndexStatus summarises the index for status displays.
type IndexStatus struct {
	DocsDir     string       `json:"docs_dir"`
	Backend     StoreBackend `json:"backend"`
	LatestMTime float64      `json:"latest_mtime"`
	MarkerMTime float64      `json:"marker_mtime"`
	Stale       bool         `json:"stale"`
	Chunks      int          `json:"chunks"`
	BuiltAt     time.Time    `json:"built_at,omitzero"`
}

// RebuildReport describes one rebuild call.
type RebuildReport struct {
	// Skipped is true when no documents were read and nothing changed.
	Skipped bool

	// Documents is the number of documents read.
	Documents int

	// Unreadable is the number of eligible files that could not be read.
	Unreadable int

	// Chunks is the number of chunks stored.
	Chunks int

	// LatestMTime is the marker value written.
	LatestMTime float64

	// Duration is how long the rebuild took.
	Duration time.Duration
}

// RefreshEvent describes one refresh triggered by a document change.
type RefreshEvent struct {
	// Changed lists the paths reported since the previous refresh, sorted.
	// It is empty for the refresh done at startup.
	Changed []string

	// Rebuilt is true when the index was rebuilt.
	Rebuilt bool

	// Err is the refresh failure, if any. The refresher keeps running.
	Err error
}
