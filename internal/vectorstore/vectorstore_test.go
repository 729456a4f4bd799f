package vectorstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/codenav/navcore/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndQueryReturnsClosestFirst(t *testing.T) {
	store, err := vectorstore.New(3)
	require.NoError(t, err)

	err = store.Insert(context.Background(), []vectorstore.Record{
		{ID: "a", Path: "a.go", Text: "alpha", Embedding: []float32{1, 0, 0}},
		{ID: "b", Path: "b.go", Text: "beta", Embedding: []float32{0, 1, 0}},
		{ID: "c", Path: "c.go", Text: "gamma", Embedding: []float32{0.9, 0.1, 0}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, store.Count())

	results, err := store.Query(context.Background(), []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Record.ID)
	assert.Equal(t, "c", results[1].Record.ID)
}

func TestInsertReplacesExistingID(t *testing.T) {
	store, err := vectorstore.New(3)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, []vectorstore.Record{{ID: "a", Text: "v1", Embedding: []float32{1, 0, 0}}}))
	require.NoError(t, store.Insert(ctx, []vectorstore.Record{{ID: "a", Text: "v2", Embedding: []float32{1, 0, 0}}}))

	assert.Equal(t, 1, store.Count())
	results, err := store.Query(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "v2", results[0].Record.Text)
}

func TestDeleteRemovesRecord(t *testing.T) {
	store, err := vectorstore.New(3)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, []vectorstore.Record{{ID: "a", Embedding: []float32{1, 0, 0}}}))

	require.NoError(t, store.Delete(ctx, "a"))
	assert.Equal(t, 0, store.Count())
}

func TestPersistAndOpenRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.snapshot")

	store, err := vectorstore.New(3)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, []vectorstore.Record{
		{ID: "a", Path: "a.go", Text: "alpha", StartLine: 1, EndLine: 5, Embedding: []float32{1, 0, 0}},
	}))
	require.NoError(t, store.Persist(path))

	reopened, err := vectorstore.Open(path, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Count())

	results, err := reopened.Query(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.go", results[0].Record.Path)
	assert.Equal(t, 1, results[0].Record.StartLine)
	assert.Equal(t, 5, results[0].Record.EndLine)
}

func TestOpenMissingFileReturnsEmptyStore(t *testing.T) {
	store, err := vectorstore.Open(filepath.Join(t.TempDir(), "missing.snapshot"), 3)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Count())
}

func TestQueryZeroTopKReturnsNil(t *testing.T) {
	store, err := vectorstore.New(3)
	require.NoError(t, err)
	results, err := store.Query(context.Background(), []float32{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Nil(t, results)
}
