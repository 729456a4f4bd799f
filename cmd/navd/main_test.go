package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codenav/navcore/internal/config"
	"github.com/codenav/navcore/internal/daemon/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomSecretIsUniqueAndHex(t *testing.T) {
	a, err := randomSecret()
	require.NoError(t, err)
	b, err := randomSecret()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 64)
}

func TestPublishMetadataWritesAtomically(t *testing.T) {
	dir := t.TempDir()
	meta := client.Metadata{ProjectHash: "abc123", Port: 9001, Secret: "s"}

	require.NoError(t, publishMetadata(dir, meta))

	data, err := os.ReadFile(filepath.Join(dir, "daemon.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), meta.ProjectHash)

	_, err = os.Stat(filepath.Join(dir, "daemon.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildHybridPipelineRejectsUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Embedding.Provider = "bogus"

	_, _, _, err := buildHybridPipeline(cfg)
	assert.Error(t, err)
}

func TestBuildHybridPipelineBuildsHashProvider(t *testing.T) {
	cfg := config.Default()

	provider, store, retriever, err := buildHybridPipeline(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { provider.Close(); retriever.Close() })

	assert.Equal(t, cfg.Embedding.Dimensions, store.Dimensions())
}
