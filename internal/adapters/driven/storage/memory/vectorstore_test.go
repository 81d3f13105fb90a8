package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

func embedded(id string, vec ...float32) domain.EmbeddedChunk {
	return domain.EmbeddedChunk{
		Chunk:     domain.Chunk{ID: id, Text: "text " + id},
		Embedding: vec,
	}
}

func TestVectorStore_AddQueryCount(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()

	require.NoError(t, store.Add(ctx, []domain.EmbeddedChunk{
		embedded("a", 1, 0),
		embedded("b", 0, 1),
		embedded("c", 1, 1),
	}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := store.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestVectorStore_EmptyQuery(t *testing.T) {
	got, err := NewVectorStore().Query(context.Background(), []float32{1}, 4)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestVectorStore_AddCopiesEmbedding(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()
	vec := []float32{1, 0}
	require.NoError(t, store.Add(ctx, []domain.EmbeddedChunk{{Chunk: domain.Chunk{ID: "a"}, Embedding: vec}}))

	vec[0] = -1
	got, err := store.Query(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
}

func TestVectorStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()
	require.NoError(t, store.Add(ctx, []domain.EmbeddedChunk{embedded("a", 1)}))
	require.NoError(t, store.Reset(ctx))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestVectorStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewVectorStore()
	assert.ErrorIs(t, store.Add(ctx, nil), context.Canceled)
	_, err := store.Query(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFactory_PublishSwapsActive(t *testing.T) {
	ctx := context.Background()
	f := NewFactory()
	assert.Equal(t, domain.StoreBackendMemory, f.Backend())

	_, _, err := f.OpenActive(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	name, err := f.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, name)

	staging, err := f.CreateStaging(ctx)
	require.NoError(t, err)
	require.NoError(t, staging.Add(ctx, []domain.EmbeddedChunk{embedded("a", 1)}))

	_, _, err = f.OpenActive(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound, "staging must stay invisible before publish")

	require.NoError(t, staging.Publish(ctx))
	active, gen, err := f.OpenActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, staging.Generation(), gen)
	name, err = f.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, gen, name)
	n, err := active.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, staging.Discard(), "discard after publish is a no-op")
	n, err = active.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, f.Prune(ctx))
}

func TestFactory_DiscardLeavesActive(t *testing.T) {
	ctx := context.Background()
	f := NewFactory()

	first, err := f.CreateStaging(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Add(ctx, []domain.EmbeddedChunk{embedded("old", 1)}))
	require.NoError(t, first.Publish(ctx))

	second, err := f.CreateStaging(ctx)
	require.NoError(t, err)
	require.NoError(t, second.Add(ctx, []domain.EmbeddedChunk{embedded("new", 1), embedded("new2", 1)}))
	require.NoError(t, second.Discard())
	assert.NotEqual(t, first.Generation(), second.Generation())

	active, _, err := f.OpenActive(ctx)
	require.NoError(t, err)
	got, err := active.Query(ctx, []float32{1}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "old", got[0].ID)
}

func TestFactory_LockIsExclusive(t *testing.T) {
	f := NewFactory()

	unlock, err := f.Lock(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = f.Lock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock())
	require.NoError(t, unlock(), "unlock twice is harmless")

	again, err := f.Lock(context.Background())
	require.NoError(t, err)
	require.NoError(t, again())
}
