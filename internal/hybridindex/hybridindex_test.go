package hybridindex_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/codenav/navcore/internal/chunk"
	"github.com/codenav/navcore/internal/embedder"
	"github.com/codenav/navcore/internal/hybridindex"
	"github.com/codenav/navcore/internal/index"
	"github.com/codenav/navcore/internal/retrieval"
	"github.com/codenav/navcore/internal/vectorstore"
	"github.com/stretchr/testify/require"
)

func TestRebuildChunksEmbedsAndMakesRecordsSearchable(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "auth.go"), []byte(`package auth

func Login(user string) error {
	return nil
}

func Logout(user string) error {
	return nil
}
`), 0o644))

	snap := index.NewSnapshot()
	snap.AddFile(index.FileEntry{Path: "auth.go", Language: "go"}, nil)

	provider := embedder.NewHashProvider()
	store, err := vectorstore.New(provider.Dimensions())
	require.NoError(t, err)

	retriever, err := retrieval.New(retrieval.DefaultOptions(), nil, store, provider)
	require.NoError(t, err)
	t.Cleanup(func() { retriever.Close() })

	builder := &hybridindex.Builder{
		Root:      root,
		Options:   chunk.Options{Strategy: chunk.StrategySemantic, Language: "go", TargetTokens: 400},
		Provider:  provider,
		Store:     store,
		Retriever: retriever,
	}

	require.NoError(t, builder.Rebuild(context.Background(), snap))
	require.Greater(t, store.Count(), 0)

	results := retriever.Retrieve(context.Background(), "Login")
	require.NotEmpty(t, results.Results)
}

func TestRebuildWithNoFilesClearsStore(t *testing.T) {
	root := t.TempDir()
	snap := index.NewSnapshot()

	provider := embedder.NewHashProvider()
	store, err := vectorstore.New(provider.Dimensions())
	require.NoError(t, err)

	retriever, err := retrieval.New(retrieval.DefaultOptions(), nil, store, provider)
	require.NoError(t, err)
	t.Cleanup(func() { retriever.Close() })

	builder := &hybridindex.Builder{
		Root:      root,
		Options:   chunk.Options{Strategy: chunk.StrategyFixed, TargetTokens: 400},
		Provider:  provider,
		Store:     store,
		Retriever: retriever,
	}

	require.NoError(t, builder.Rebuild(context.Background(), snap))
	require.Equal(t, 0, store.Count())
}
