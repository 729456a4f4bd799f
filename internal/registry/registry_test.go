package registry_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/codenav/navcore/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.db")
	r, err := registry.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRegisterAndGet(t *testing.T) {
	r := openTestRegistry(t)
	require.NoError(t, r.Register(registry.Workspace{
		ProjectHash: "abc123",
		RootPath:    "/home/dev/project",
		PID:         4242,
		Port:        9001,
	}))

	ws, ok, err := r.Get("abc123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/home/dev/project", ws.RootPath)
	assert.Equal(t, 4242, ws.PID)
	assert.Equal(t, 9001, ws.Port)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	r := openTestRegistry(t)
	_, ok, err := r.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTouchUpdatesLastSeenWithoutChangingOtherFields(t *testing.T) {
	r := openTestRegistry(t)
	require.NoError(t, r.Register(registry.Workspace{ProjectHash: "abc", RootPath: "/x", PID: 1, Port: 2}))

	before, _, err := r.Get("abc")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, r.Touch("abc"))

	after, _, err := r.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, before.RootPath, after.RootPath)
	assert.True(t, after.LastSeenAt.After(before.LastSeenAt))
}

func TestSweepReturnsOnlyStaleWorkspaces(t *testing.T) {
	r := openTestRegistry(t)
	require.NoError(t, r.Register(registry.Workspace{
		ProjectHash: "fresh", RootPath: "/fresh", PID: 1, Port: 1,
		StartedAt: time.Now().UTC(), LastSeenAt: time.Now().UTC(),
	}))
	require.NoError(t, r.Register(registry.Workspace{
		ProjectHash: "stale", RootPath: "/stale", PID: 2, Port: 2,
		StartedAt: time.Now().UTC().Add(-time.Hour), LastSeenAt: time.Now().UTC().Add(-time.Hour),
	}))

	stale, err := r.Sweep(10 * time.Minute)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "stale", stale[0].ProjectHash)
}

func TestForgetRemovesWorkspace(t *testing.T) {
	r := openTestRegistry(t)
	require.NoError(t, r.Register(registry.Workspace{ProjectHash: "abc", RootPath: "/x", PID: 1, Port: 2}))
	require.NoError(t, r.Forget("abc"))

	_, ok, err := r.Get("abc")
	require.NoError(t, err)
	assert.False(t, ok)
}
