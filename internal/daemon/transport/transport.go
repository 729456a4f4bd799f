// Package transport implements the Daemon Transport: an HTTP server
// exposing /health, /v1/nav/search, /v1/nav/open, /v1/nav/snippet, and
// /v1/nav/reindex, authenticated with a per-daemon bearer secret and
// rendezvoused with clients through an atomically published metadata
// file.
package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/codenav/navcore/internal/index"
	"github.com/codenav/navcore/internal/retrieval"
	"github.com/codenav/navcore/internal/search"
	"github.com/codenav/navcore/internal/watch"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const SchemaVersion = 1

// Server wires a Coordinator and a search Engine into an HTTP handler.
type Server struct {
	coordinator  *watch.Coordinator
	searchEngine *search.Engine
	retriever    *retrieval.Retriever
	secret       string
	router       chi.Router
}

// New builds the daemon's HTTP handler. secret is the bearer token
// every request (other than /health) must present. retriever may be
// nil, in which case /v1/hr/search answers 503 — a workspace that
// failed to build its embedding provider still serves symbol search.
func New(coordinator *watch.Coordinator, searchEngine *search.Engine, retriever *retrieval.Retriever, secret string) *Server {
	s := &Server{coordinator: coordinator, searchEngine: searchEngine, retriever: retriever, secret: secret}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://127.0.0.1:*", "http://localhost:*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.bearerAuth)
		r.Post("/v1/nav/search", s.handleSearch)
		r.Post("/v1/nav/open", s.handleOpen)
		r.Post("/v1/nav/snippet", s.handleSnippet)
		r.Post("/v1/nav/reindex", s.handleReindex)
		r.Post("/v1/hr/search", s.handleHybridSearch)
	})

	s.router = r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// bearerAuth enforces "Authorization: Bearer <secret>" on every
// protected route. It does not check the protocol version.
func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix || auth[len(prefix):] != s.secret {
			writeError(w, http.StatusUnauthorized, "invalid or missing bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.indexStatus())
}

// IndexStatus mirrors the wire contract's IndexStatus body.
type IndexStatus struct {
	State         string `json:"state"`
	Symbols       int    `json:"symbols"`
	Files         int    `json:"files"`
	Notice        string `json:"notice,omitempty"`
	SchemaVersion int    `json:"schema_version"`
}

func (s *Server) indexStatus() IndexStatus {
	snap, state := s.coordinator.Snapshot()
	return IndexStatus{
		State:         string(state),
		Symbols:       len(snap.Symbols),
		Files:         len(snap.Files),
		Notice:        s.coordinator.Notice(),
		SchemaVersion: SchemaVersion,
	}
}

// SearchRequest mirrors the wire SearchRequest body.
type SearchRequest struct {
	Query         string                 `json:"query,omitempty"`
	Filters       SearchFiltersWire      `json:"filters"`
	Limit         int                    `json:"limit"`
	WithRefs      bool                   `json:"with_refs"`
	RefsLimit     int                    `json:"refs_limit,omitempty"`
	HelpSymbol    string                 `json:"help_symbol,omitempty"`
	Refine        string                 `json:"refine,omitempty"`
	Profiles      []string               `json:"profiles,omitempty"`
	SchemaVersion int                    `json:"schema_version"`
}

// SearchFiltersWire is the JSON-friendly rendering of search.Filters.
type SearchFiltersWire struct {
	Kinds       []string `json:"kinds,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	PathGlobs   []string `json:"path_globs,omitempty"`
	FileSubstrs []string `json:"file_substrs,omitempty"`
	Identifier  string   `json:"identifier,omitempty"`
	RecentOnly  bool     `json:"recent_only,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}

// SearchResponse mirrors the wire SearchResponse body.
type SearchResponse struct {
	QueryID string         `json:"query_id,omitempty"`
	Hits    []search.Hit   `json:"hits"`
	Index   IndexStatus    `json:"index"`
	Error   string         `json:"error,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeSchemaChecked(w, r, &req, req.SchemaVersion) {
		return
	}

	status := s.indexStatus()
	if status.State != string(watch.StateReady) {
		writeJSON(w, http.StatusOK, SearchResponse{Hits: []search.Hit{}, Index: status})
		return
	}

	snap, _ := s.coordinator.Snapshot()
	hits, qid, err := s.searchEngine.Search(snap, toSearchRequest(req))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{QueryID: string(qid), Hits: hits, Index: status})
}

func toSearchRequest(req SearchRequest) search.Request {
	filters := search.Filters{
		Identifier: req.Filters.Identifier,
		RecentOnly: req.Filters.RecentOnly,
		PathGlobs:  req.Filters.PathGlobs,
		FileSubstrs: req.Filters.FileSubstrs,
	}
	if len(req.Filters.Kinds) > 0 {
		filters.Kinds = map[index.SymbolKind]bool{}
		for _, k := range req.Filters.Kinds {
			filters.Kinds[index.SymbolKind(k)] = true
		}
	}
	if len(req.Filters.Languages) > 0 {
		filters.Languages = map[string]bool{}
		for _, l := range req.Filters.Languages {
			filters.Languages[l] = true
		}
	}
	if len(req.Filters.Categories) > 0 {
		filters.Categories = map[index.Category]bool{}
		for _, c := range req.Filters.Categories {
			filters.Categories[index.Category(c)] = true
		}
	}
	profiles := make([]search.Profile, 0, len(req.Profiles))
	for _, p := range req.Profiles {
		profiles = append(profiles, search.Profile(p))
	}
	return search.Request{
		Query:      req.Query,
		Filters:    filters,
		Limit:      req.Limit,
		WithRefs:   req.WithRefs,
		RefsLimit:  req.RefsLimit,
		HelpSymbol: req.HelpSymbol,
		Refine:     search.QueryID(req.Refine),
		Profiles:   profiles,
	}
}

// OpenRequest asks for the file that owns a symbol.
type OpenRequest struct {
	SymbolID      string `json:"symbol_id"`
	SchemaVersion int    `json:"schema_version"`
}

// OpenResponse carries the path of a symbol's owning file. handleOpen
// sets only Path; Content is always left empty.
type OpenResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if !decodeSchemaChecked(w, r, &req, req.SchemaVersion) {
		return
	}
	snap, _ := s.coordinator.Snapshot()
	sym, ok := snap.Symbols[req.SymbolID]
	if !ok {
		writeError(w, http.StatusNotFound, "symbol not found")
		return
	}
	writeJSON(w, http.StatusOK, OpenResponse{Path: sym.Path})
}

// SnippetRequest requests a context-expanded slice around a symbol.
type SnippetRequest struct {
	SymbolID      string `json:"symbol_id"`
	ContextLines  int    `json:"context_lines,omitempty"`
	SchemaVersion int    `json:"schema_version"`
}

// SnippetResponse carries the expanded line range for a symbol.
type SnippetResponse struct {
	Path      string `json:"path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

func (s *Server) handleSnippet(w http.ResponseWriter, r *http.Request) {
	var req SnippetRequest
	if !decodeSchemaChecked(w, r, &req, req.SchemaVersion) {
		return
	}
	snap, _ := s.coordinator.Snapshot()
	sym, ok := snap.Symbols[req.SymbolID]
	if !ok {
		writeError(w, http.StatusNotFound, "symbol not found")
		return
	}
	ctx := req.ContextLines
	if ctx <= 0 {
		ctx = 5
	}
	start := sym.StartLine - ctx
	if start < 1 {
		start = 1
	}
	writeJSON(w, http.StatusOK, SnippetResponse{Path: sym.Path, StartLine: start, EndLine: sym.EndLine + ctx})
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	if err := s.coordinator.Rebuild(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.indexStatus())
}

// HybridSearchRequest mirrors the wire Hybrid Retrieval Pipeline query.
type HybridSearchRequest struct {
	Query         string `json:"query"`
	SchemaVersion int    `json:"schema_version"`
}

func (s *Server) handleHybridSearch(w http.ResponseWriter, r *http.Request) {
	var req HybridSearchRequest
	if !decodeSchemaChecked(w, r, &req, req.SchemaVersion) {
		return
	}
	if s.retriever == nil {
		writeError(w, http.StatusServiceUnavailable, "hybrid retrieval pipeline unavailable")
		return
	}
	writeJSON(w, http.StatusOK, s.retriever.Retrieve(r.Context(), req.Query))
}

// decodeSchemaChecked decodes the JSON request body into dst and
// answers 400 if the body is malformed. It does not compare the
// request's schema_version with the server's; the int argument is
// ignored.
func decodeSchemaChecked(w http.ResponseWriter, r *http.Request, dst interface{}, _ int) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
