// Package search implements the Search Engine: it scores symbols for a
// request, applies filters and profile bonuses, sorts, and caches
// candidate lists keyed by query id so a later request can refine them.
package search

import (
	"strings"

	"github.com/codenav/navcore/internal/index"
	"github.com/gobwas/glob"
	"github.com/sahilm/fuzzy"
)

// Profile biases scoring toward a particular use case.
type Profile string

const (
	ProfileBalanced   Profile = "balanced"
	ProfileFocused    Profile = "focused"
	ProfileBroad      Profile = "broad"
	ProfileSymbols    Profile = "symbols"
	ProfileFiles      Profile = "files"
	ProfileTests      Profile = "tests"
	ProfileDocs       Profile = "docs"
	ProfileDeps       Profile = "deps"
	ProfileRecent     Profile = "recent"
	ProfileReferences Profile = "references"
)

// QueryID identifies a cached candidate list returned to a client for
// later use as Request.Refine.
type QueryID string

// Filters narrows the candidate set before scoring.
type Filters struct {
	Kinds       map[index.SymbolKind]bool
	Languages   map[string]bool
	PathGlobs   []string
	FileSubstrs []string
	Identifier  string
	RecentOnly  bool
	Categories  map[index.Category]bool
}

// Request is a single search query.
type Request struct {
	Query      string
	Filters    Filters
	Limit      int
	WithRefs   bool
	RefsLimit  int
	HelpSymbol string
	Refine     QueryID
	Profiles   []Profile
}

// Reference is one textual occurrence of a symbol's identifier.
type Reference struct {
	Path    string
	Line    int
	Preview string
}

// Hit is a single scored, post-processed search result.
type Hit struct {
	SymbolID   string
	Path       string
	Line       int
	Kind       index.SymbolKind
	Language   string
	Module     string
	Layer      string
	Categories []index.Category
	Recent     bool
	Preview    string
	Score      float64
	References []Reference
	Help       string
}

const defaultLimit = 20

// Engine scores and caches searches against a single snapshot.
type Engine struct {
	root  string
	cache *queryCache
}

// New builds a search Engine backed by an in-memory + on-disk query
// cache rooted at cacheDir; root is the workspace root used to resolve
// reference scans.
func New(root, cacheDir string) (*Engine, error) {
	c, err := newQueryCache(cacheDir)
	if err != nil {
		return nil, err
	}
	return &Engine{root: root, cache: c}, nil
}

// Search scores req.Filters/req.Query against snap and returns ordered
// hits, truncated to req.Limit (default 20).
func (e *Engine) Search(snap *index.Snapshot, req Request) ([]Hit, QueryID, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	candidates, refineNotice := e.candidateIDs(snap, req)

	globs, err := compileGlobs(req.Filters.PathGlobs)
	if err != nil {
		return nil, "", err
	}

	var results []scoredID

	for _, id := range candidates {
		sym, ok := snap.Symbols[id]
		if !ok {
			continue
		}
		if !passesFilters(sym, req.Filters, globs) {
			continue
		}
		score, ok := score(sym, req)
		if !ok {
			continue
		}
		results = append(results, scoredID{id: id, score: score})
	}

	sortResults(results)

	if len(results) > limit {
		results = results[:limit]
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		sym := snap.Symbols[r.id]
		hit := Hit{
			SymbolID:   sym.ID,
			Path:       sym.Path,
			Line:       sym.StartLine,
			Kind:       sym.Kind,
			Language:   sym.Language,
			Module:     sym.Module,
			Layer:      sym.Layer,
			Categories: sym.Categories,
			Recent:     sym.Recent,
			Preview:    sym.Preview,
			Score:      r.score,
		}
		if req.WithRefs {
			hit.References = References(snap, e.root, sym.Identifier, refsLimit(req))
		}
		if req.HelpSymbol != "" && strings.EqualFold(req.HelpSymbol, sym.Identifier) {
			hit.Help = sym.DocSummary
		}
		hits = append(hits, hit)
	}

	var queryID QueryID
	if len(hits) > 0 {
		ids := make([]string, len(results))
		for i, r := range results {
			ids[i] = r.id
		}
		queryID, err = e.cache.store(ids, req)
		if err != nil {
			return hits, "", err
		}
	}
	_ = refineNotice

	return hits, queryID, nil
}

func refsLimit(req Request) int {
	if req.RefsLimit > 0 {
		return req.RefsLimit
	}
	return 10
}

// candidateIDs resolves the candidate set: either the cached list named
// by req.Refine (a subset filter, not a join), or every symbol id.
func (e *Engine) candidateIDs(snap *index.Snapshot, req Request) ([]string, string) {
	if req.Refine != "" {
		if cached, ok := e.cache.lookup(req.Refine); ok {
			return cached, ""
		}
		return allIDs(snap), "refine returned no hits"
	}
	return allIDs(snap), ""
}

func allIDs(snap *index.Snapshot) []string {
	ids := make([]string, 0, len(snap.Symbols))
	for id := range snap.Symbols {
		ids = append(ids, id)
	}
	return ids
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	var globs []glob.Glob
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func passesFilters(sym index.SymbolRecord, f Filters, globs []glob.Glob) bool {
	if len(f.Kinds) > 0 && !f.Kinds[sym.Kind] {
		return false
	}
	if len(f.Languages) > 0 && !f.Languages[sym.Language] {
		return false
	}
	if len(globs) > 0 {
		matched := false
		for _, g := range globs {
			if g.Match(sym.Path) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if len(f.FileSubstrs) > 0 {
		matched := false
		for _, s := range f.FileSubstrs {
			if strings.Contains(sym.Path, s) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if f.Identifier != "" && !strings.EqualFold(f.Identifier, sym.Identifier) {
		return false
	}
	if f.RecentOnly && !sym.Recent {
		return false
	}
	if len(f.Categories) > 0 {
		matched := false
		for _, c := range sym.Categories {
			if f.Categories[c] {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// score computes the additive score for sym under req, returning false
// when a fuzzy query is set but the symbol does not match at all.
func score(sym index.SymbolRecord, req Request) (float64, bool) {
	var total float64

	if req.Query != "" {
		haystack := sym.Identifier + " " + sym.Path + " " + sym.Preview
		matches := fuzzy.Find(req.Query, []string{haystack})
		if len(matches) == 0 {
			return 0, false
		}
		total += float64(matches[0].Score)
	} else {
		total += 1
	}

	if sym.Recent {
		total += 10
	}
	if req.Query != "" && strings.EqualFold(sym.Identifier, req.Query) {
		total += 200
	}
	if req.Query != "" && strings.Contains(strings.ToLower(sym.Preview), strings.ToLower(req.Query)) {
		total += 5
	}

	for _, p := range req.Profiles {
		total += profileBonus(p, sym, req)
	}

	return total, true
}

func profileBonus(p Profile, sym index.SymbolRecord, req Request) float64 {
	contains := req.Query != "" && (strings.Contains(sym.Identifier, req.Query) || strings.Contains(sym.Path, req.Query))
	isSymbolKind := sym.Kind != index.KindDocument

	hasCategory := func(c index.Category) bool {
		for _, cat := range sym.Categories {
			if cat == c {
				return true
			}
		}
		return false
	}
	isDepsPath := strings.HasSuffix(sym.Path, "cargo.toml") || strings.HasSuffix(sym.Path, "package.json") ||
		strings.Contains(sym.Path, "/deps/") || strings.Contains(sym.Path, "/dependencies")

	switch p {
	case ProfileFocused:
		if contains {
			return 40
		}
	case ProfileBroad:
		return 5
	case ProfileSymbols:
		if isSymbolKind {
			return 60
		}
		return -10
	case ProfileFiles:
		return 5
	case ProfileTests:
		if hasCategory(index.CategoryTests) {
			return 30
		}
		return -5
	case ProfileDocs:
		if hasCategory(index.CategoryDocs) {
			return 25
		}
		return -5
	case ProfileDeps:
		if isDepsPath {
			return 35
		}
		return -5
	case ProfileRecent:
		if sym.Recent {
			return 15
		}
		return -5
	case ProfileReferences:
		if isSymbolKind {
			return 10
		}
	}
	return 0
}

type scoredID struct {
	id    string
	score float64
}

func sortResults(results []scoredID) {
	for i := 1; i < len(results); i++ {
		for j := i; j > 0; j-- {
			a, b := results[j-1], results[j]
			if a.score > b.score || (a.score == b.score && a.id <= b.id) {
				break
			}
			results[j-1], results[j] = results[j], results[j-1]
		}
	}
}

// References looks up identifier's occurrences across every file known
// (via token_to_files) to contain that token, scanning lines under
// root for substring matches and returning up to limit results,
// preserving first-N semantics. Files absent from the token map are
// never opened.
func References(snap *index.Snapshot, root, identifier string, limit int) []Reference {
	files := snap.TokenToFiles[strings.ToLower(identifier)]
	if len(files) == 0 {
		return nil
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sortStrings(paths)

	var out []Reference
	for _, path := range paths {
		if len(out) >= limit {
			break
		}
		out = append(out, scanFileForIdentifier(root, path, identifier, limit-len(out))...)
	}
	return out
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
