// Package generations lays out persistent vector store generations on disk.
//
// Each rebuild writes into a fresh gen-<uuid> directory under the store root.
// Generation names use time-ordered UUIDs, so a name sorting after CURRENT
// belongs to a build that started later. A CURRENT file names the published
// generation and is replaced atomically, so a crash mid-build leaves the
// previous generation in place. A LOCK file serialises rebuilds across
// processes sharing the root.
package generations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/custodia-labs/ragdesk/internal/adapters/driven/atomicfile"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
	"github.com/custodia-labs/ragdesk/internal/logger"
)

const (
	// CurrentFile names the pointer file in the store root.
	CurrentFile = "CURRENT"

	// LockFile names the rebuild lock in the store root.
	LockFile = "LOCK"

	prefix    = "gen-"
	lockRetry = 50 * time.Millisecond
)

// Opener opens or creates a backend store inside dir.
type Opener func(ctx context.Context, dir string) (driven.VectorStore, error)

// Ensure Manager implements the interface.
var _ driven.VectorStoreFactory = (*Manager)(nil)

// Manager implements driven.VectorStoreFactory over a directory of generations.
type Manager struct {
	root    string
	backend domain.StoreBackend
	open    Opener
}

// NewManager creates a generation manager rooted at root.
func NewManager(root string, backend domain.StoreBackend, open Opener) *Manager {
	return &Manager{root: root, backend: backend, open: open}
}

// Root returns the store root directory.
func (m *Manager) Root() string {
	return m.root
}

// Backend names the backend the opener creates.
func (m *Manager) Backend() domain.StoreBackend {
	return m.backend
}

// Current returns the published generation name, or domain.ErrNotFound.
func (m *Manager) Current() (string, error) {
	data, err := os.ReadFile(filepath.Join(m.root, CurrentFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("%w: read %s: %w", domain.ErrVectorStoreUnavailable, CurrentFile, err)
	}

	name := strings.TrimSpace(string(data))
	if !validName(name) {
		return "", fmt.Errorf("%w: invalid generation %q", domain.ErrVectorStoreUnavailable, name)
	}
	return name, nil
}

// Active returns the published generation name, or "" when nothing is published.
func (m *Manager) Active(_ context.Context) (string, error) {
	name, err := m.Current()
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	return name, err
}

// OpenActive opens the published generation.
func (m *Manager) OpenActive(ctx context.Context) (driven.VectorStore, string, error) {
	name, err := m.Current()
	if err != nil {
		return nil, "", err
	}

	dir := filepath.Join(m.root, name)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: %w", domain.ErrVectorStoreUnavailable, err)
	}

	store, err := m.open(ctx, dir)
	if err != nil {
		return nil, "", fmt.Errorf("%w: open %s: %w", domain.ErrVectorStoreUnavailable, name, err)
	}
	return store, name, nil
}

// CreateStaging creates an empty generation directory and opens a store in it.
func (m *Manager) CreateStaging(ctx context.Context) (driven.StagingStore, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("%w: generation id: %w", domain.ErrVectorStoreUnavailable, err)
	}
	name := prefix + id.String()
	dir := filepath.Join(m.root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create generation: %w", domain.ErrVectorStoreUnavailable, err)
	}

	store, err := m.open(ctx, dir)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: open staging: %w", domain.ErrVectorStoreUnavailable, err)
	}

	logger.Debug("staging generation %s", name)
	return &staging{VectorStore: store, manager: m, name: name, dir: dir}, nil
}

// Prune removes generations older than the published one. Newer directories
// may be another process's build in progress and are left alone.
// Without a published generation nothing is removed.
func (m *Manager) Prune(_ context.Context) error {
	current, err := m.Current()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	entries, err := os.ReadDir(m.root)
	if err != nil {
		return fmt.Errorf("list generations: %w", err)
	}

	var errs []error
	for _, e := range entries {
		if !e.IsDir() || !validName(e.Name()) || e.Name() >= current {
			continue
		}
		if err := os.RemoveAll(filepath.Join(m.root, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		logger.Debug("pruned generation %s", e.Name())
	}
	return errors.Join(errs...)
}

// Lock takes an exclusive lock on the LOCK file in the store root.
// The lock is released by the returned func or when the process exits.
func (m *Manager) Lock(ctx context.Context) (func() error, error) {
	if err := os.MkdirAll(m.root, 0755); err != nil {
		return nil, fmt.Errorf("%w: create store root: %w", domain.ErrVectorStoreUnavailable, err)
	}

	fl := flock.New(filepath.Join(m.root, LockFile))
	locked, err := fl.TryLockContext(ctx, lockRetry)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: lock %s: %w", domain.ErrVectorStoreUnavailable, m.root, err)
	}
	if !locked {
		return nil, ctx.Err()
	}
	logger.Debug("acquired rebuild lock in %s", m.root)
	return fl.Unlock, nil
}

func (m *Manager) publish(name string) error {
	if err := atomicfile.WriteFile(filepath.Join(m.root, CurrentFile), []byte(name+"\n")); err != nil {
		return fmt.Errorf("%w: publish %s: %w", domain.ErrVectorStoreUnavailable, name, err)
	}
	return nil
}

func validName(name string) bool {
	if !strings.HasPrefix(name, prefix) {
		return false
	}
	_, err := uuid.Parse(strings.TrimPrefix(name, prefix))
	return err == nil
}

// staging wraps a backend store living in an unpublished generation directory.
type staging struct {
	driven.VectorStore
	manager   *Manager
	name      string
	dir       string
	published bool
	discarded bool
}

func (s *staging) Generation() string {
	return s.name
}

func (s *staging) Publish(_ context.Context) error {
	if s.discarded {
		return fmt.Errorf("%w: generation %s was discarded", domain.ErrVectorStoreUnavailable, s.name)
	}
	if err := s.manager.publish(s.name); err != nil {
		return err
	}
	s.published = true
	return nil
}

func (s *staging) Discard() error {
	if s.published || s.discarded {
		return nil
	}
	s.discarded = true
	closeErr := s.VectorStore.Close()
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("remove generation %s: %w", s.name, err)
	}
	return closeErr
}
