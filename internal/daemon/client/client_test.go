package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/codenav/navcore/internal/daemon/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectHashIsStableAndCanonical(t *testing.T) {
	h1 := client.ProjectHash("/home/user/project")
	h2 := client.ProjectHash("/home/user/project/")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 16)
}

func TestProjectHashDiffersAcrossRoots(t *testing.T) {
	assert.NotEqual(t, client.ProjectHash("/a"), client.ProjectHash("/b"))
}

func TestProjectRootFindsGitToplevel(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := client.ProjectRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestProjectRootFallsBackToStart(t *testing.T) {
	dir := t.TempDir()
	found, err := client.ProjectRoot(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, found)
}

func TestReadMetadataMissingReturnsError(t *testing.T) {
	_, err := client.ReadMetadata(t.TempDir(), "deadbeefdeadbeef")
	assert.Error(t, err)
}

func writeMetadata(t *testing.T, dataDir, hash string, meta client.Metadata) {
	t.Helper()
	dir := filepath.Join(dataDir, hash)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "daemon.json"), data, 0o644))
}

func TestDialReusesHealthyExistingDaemon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	parsed, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)

	dataDir := t.TempDir()
	const hash = "cafef00dcafef00d"
	writeMetadata(t, dataDir, hash, client.Metadata{ProjectHash: hash, Port: port, Secret: "s"})

	c, err := client.Dial(context.Background(), dataDir, hash, client.SpawnSpec{})
	require.NoError(t, err)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestDialWithNoMetadataAndNoSpawnCommandFails(t *testing.T) {
	_, err := client.Dial(context.Background(), t.TempDir(), "deadbeefdeadbeef", client.SpawnSpec{})
	assert.Error(t, err)
}

func TestHealthDecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			json.NewEncoder(w).Encode(map[string]string{"state": "ready"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	parsed, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)

	dataDir := t.TempDir()
	const hash = "cafef00dcafef00e"
	writeMetadata(t, dataDir, hash, client.Metadata{ProjectHash: hash, Port: port, Secret: "s"})

	c, err := client.Dial(context.Background(), dataDir, hash, client.SpawnSpec{})
	require.NoError(t, err)

	var body map[string]string
	require.NoError(t, c.Health(context.Background(), &body))
	assert.Equal(t, "ready", body["state"])
}

func TestRequestShutdownOnMissingPIDReturnsError(t *testing.T) {
	// A PID this large cannot correspond to a running process; this
	// verifies RequestShutdown surfaces the signal error rather than
	// swallowing it.
	err := client.RequestShutdown(999999999)
	assert.Error(t, err)
}

func TestIsConnectionErrorDetectsRefusal(t *testing.T) {
	assert.True(t, client.IsConnectionError(&testConnErr{}))
	assert.False(t, client.IsConnectionError(nil))
}

type testConnErr struct{}

func (testConnErr) Error() string   { return "dial tcp: connection refused" }
func (testConnErr) Timeout() bool   { return false }
func (testConnErr) Temporary() bool { return false }
