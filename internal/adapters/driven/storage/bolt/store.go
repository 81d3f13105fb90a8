// Package bolt implements the vector store on a bbolt file per index generation.
//
// Chunks live in one bucket keyed by a big-endian sequence number, so a cursor
// walk returns them in insertion order. A second bucket maps chunk IDs to their
// sequence keys so re-adding a chunk replaces it in place.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/custodia-labs/ragdesk/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
)

// DBFile is the database file name inside a generation directory.
const DBFile = "vectors.bolt"

var (
	bucketChunks = []byte("chunks")
	bucketIDs    = []byte("chunk_ids")
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// record is the stored JSON value.
type record struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	StartOffset  int       `json:"start_offset"`
	SourcePath   string    `json:"source_path"`
	RelativePath string    `json:"relative_path,omitempty"`
	DisplayName  string    `json:"display_name,omitempty"`
	Embedding    []float32 `json:"embedding"`
}

// Store is a bbolt-backed vector store.
type Store struct {
	db   *bbolt.DB
	path string
}

// NewStore opens or creates the vector database inside dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, DBFile)
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketChunks); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketIDs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Open adapts NewStore to the generations opener signature.
func Open(_ context.Context, dir string) (driven.VectorStore, error) {
	return NewStore(dir)
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add stores chunks in one write transaction.
func (s *Store) Add(ctx context.Context, chunks []domain.EmbeddedChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketChunks)
		ids := tx.Bucket(bucketIDs)

		for _, c := range chunks {
			value, err := json.Marshal(toRecord(c))
			if err != nil {
				return fmt.Errorf("encoding chunk %s: %w", c.ID, err)
			}

			key := ids.Get([]byte(c.ID))
			if key == nil {
				seq, err := data.NextSequence()
				if err != nil {
					return fmt.Errorf("allocating sequence: %w", err)
				}
				key = seqKey(seq)
				if err := ids.Put([]byte(c.ID), key); err != nil {
					return fmt.Errorf("indexing chunk %s: %w", c.ID, err)
				}
			}
			if err := data.Put(key, value); err != nil {
				return fmt.Errorf("saving chunk %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// Query walks every chunk and returns the k most similar.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]domain.ScoredChunk, error) {
	ranker := similarity.NewRanker(embedding, k)
	if k <= 0 {
		return ranker.Result(), nil
	}

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketChunks).ForEach(func(_, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decoding chunk: %w", err)
			}
			ranker.Offer(rec.chunk(), rec.Embedding)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ranker.Result(), nil
}

// Reset drops and recreates both buckets.
func (s *Store) Reset(_ context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketChunks, bucketIDs} {
			if err := tx.DeleteBucket(name); err != nil {
				return fmt.Errorf("dropping %s: %w", name, err)
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return fmt.Errorf("creating %s: %w", name, err)
			}
		}
		return nil
	})
}

// Count returns the number of stored chunks.
func (s *Store) Count(_ context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketChunks).Stats().KeyN
		return nil
	})
	return n, err
}

func toRecord(c domain.EmbeddedChunk) record {
	return record{
		ID:           c.ID,
		Text:         c.Text,
		StartOffset:  c.StartOffset,
		SourcePath:   c.Source.SourcePath,
		RelativePath: c.Source.RelativePath,
		DisplayName:  c.Source.DisplayName,
		Embedding:    c.Embedding,
	}
}

func (r record) chunk() domain.Chunk {
	return domain.Chunk{
		ID:          r.ID,
		Text:        r.Text,
		StartOffset: r.StartOffset,
		Source: domain.DocumentRef{
			SourcePath:   r.SourcePath,
			RelativePath: r.RelativePath,
			DisplayName:  r.DisplayName,
		},
	}
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
