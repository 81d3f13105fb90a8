// Package sqlite implements the vector store on a single SQLite file per index generation.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Embeddings are stored as little-endian float32 blobs next to the chunk text.
//
// # Queries
//
// Similarity search is a full scan scored with cosine similarity. Indexes of a
// help-desk documentation folder stay small enough that this beats maintaining
// an ANN structure.
//
// # Data Location
//
// Each generation directory holds one vectors.db; see the generations package.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
