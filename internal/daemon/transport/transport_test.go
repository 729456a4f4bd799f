package transport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/codenav/navcore/internal/daemon/transport"
	"github.com/codenav/navcore/internal/search"
	"github.com/codenav/navcore/internal/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*transport.Server, string) {
	t.Helper()
	root := t.TempDir()

	coordinator, err := watch.New(watch.Options{
		Root:      root,
		IndexPath: filepath.Join(root, ".navcore", "index.gob"),
	})
	require.NoError(t, err)
	require.NoError(t, coordinator.Rebuild(context.Background()))

	engine, err := search.New(root, filepath.Join(root, ".navcore", "queries"))
	require.NoError(t, err)

	const secret = "test-secret"
	return transport.New(coordinator, engine, nil, secret), secret
}

func TestHealthRequiresNoAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var status transport.IndexStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, string(watch.StateReady), status.State)
}

func TestSearchRejectsMissingBearerToken(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/nav/search", bytes.NewBufferString(`{}`))

	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSearchRejectsWrongBearerToken(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/nav/search", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", "Bearer wrong-secret")

	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSearchAcceptsValidBearerToken(t *testing.T) {
	srv, secret := newTestServer(t)
	body, err := json.Marshal(transport.SearchRequest{Query: "anything", Limit: 5})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/nav/search", bytes.NewBuffer(body))
	req.Header.Set("Authorization", "Bearer "+secret)

	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp transport.SearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, string(watch.StateReady), resp.Index.State)
}

func TestOpenUnknownSymbolReturnsNotFound(t *testing.T) {
	srv, secret := newTestServer(t)
	body, err := json.Marshal(transport.OpenRequest{SymbolID: "missing"})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/nav/open", bytes.NewBuffer(body))
	req.Header.Set("Authorization", "Bearer "+secret)

	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReindexTriggersRebuild(t *testing.T) {
	srv, secret := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/nav/reindex", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", "Bearer "+secret)

	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var status transport.IndexStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, string(watch.StateReady), status.State)
}

func TestHybridSearchReturnsUnavailableWithoutRetriever(t *testing.T) {
	srv, secret := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/hr/search", bytes.NewBufferString(`{"query":"login"}`))
	req.Header.Set("Authorization", "Bearer "+secret)

	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
