package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

func TestWatchCmd_ReportsRefreshes(t *testing.T) {
	ts := setupTestServices(t)
	ts.refresh.events = []domain.RefreshEvent{
		{Rebuilt: false},
		{Changed: []string{"docs/caja.md", "docs/pos.md"}, Rebuilt: true},
		{Changed: []string{"docs/caja.md"}, Err: domain.ErrEmbeddingUnavailable},
	}

	out, err := execute(t, "watch")

	require.NoError(t, err)
	assert.Contains(t, out, "Index is up to date (startup)")
	assert.Contains(t, out, "Index rebuilt (docs/caja.md, docs/pos.md)")
	assert.Contains(t, out, "Refresh failed (docs/caja.md): embedding service unavailable")
	assert.Contains(t, out, "Stopped.")
	assert.Nil(t, ts.refresh.fn)
}

func TestWatchCmd_WatcherError(t *testing.T) {
	ts := setupTestServices(t)
	ts.refresh.err = errors.New("document watcher stopped")

	_, err := execute(t, "watch")

	assert.ErrorContains(t, err, "watch failed: document watcher stopped")
}

func TestWatchCmd_NotConfigured(t *testing.T) {
	setupTestServices(t)
	refreshService = nil

	_, err := execute(t, "watch")

	assert.ErrorContains(t, err, "watcher not configured")
}
