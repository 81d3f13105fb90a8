// Package storage selects the vector store backend named in the index settings.
package storage

import (
	"fmt"

	"github.com/custodia-labs/ragdesk/internal/adapters/driven/storage/bolt"
	"github.com/custodia-labs/ragdesk/internal/adapters/driven/storage/generations"
	"github.com/custodia-labs/ragdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragdesk/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
)

// NewFactory returns the vector store factory for settings.Backend.
// Persistent backends keep their generations under settings.StoreDir.
func NewFactory(settings domain.IndexSettings) (driven.VectorStoreFactory, error) {
	switch settings.Backend {
	case domain.StoreBackendSQLite, "":
		return generations.NewManager(settings.StoreDir, domain.StoreBackendSQLite, sqlite.Open), nil
	case domain.StoreBackendBolt:
		return generations.NewManager(settings.StoreDir, domain.StoreBackendBolt, bolt.Open), nil
	case domain.StoreBackendMemory:
		return memory.NewFactory(), nil
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidInput, settings.Backend)
	}
}
