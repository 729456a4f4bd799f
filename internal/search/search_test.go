package search_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codenav/navcore/internal/index"
	"github.com/codenav/navcore/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSnapshot() *index.Snapshot {
	snap := index.NewSnapshot()
	snap.AddFile(index.FileEntry{
		Path:      "src/lib.rs",
		Language:  "rust",
		SymbolIDs: []string{"s1"},
		Tokens:    []string{"codefinderhistorylinesfortest"},
	}, []index.SymbolRecord{
		{ID: "s1", Identifier: "code_finder_history_lines_for_test", Kind: index.KindFunction, Path: "src/lib.rs", StartLine: 4, Preview: "pub fn code_finder_history_lines_for_test() {}"},
	})
	snap.AddFile(index.FileEntry{Path: "other.rs", SymbolIDs: []string{"s2"}}, []index.SymbolRecord{
		{ID: "s2", Identifier: "unrelated", Kind: index.KindFunction, Path: "other.rs", StartLine: 1, Preview: "fn unrelated() {}"},
	})
	return snap
}

func newEngine(t *testing.T) *search.Engine {
	t.Helper()
	e, err := search.New(t.TempDir(), filepath.Join(t.TempDir(), "queries"))
	require.NoError(t, err)
	return e
}

func TestSearchSmokeFindsExactFile(t *testing.T) {
	e := newEngine(t)
	snap := buildSnapshot()

	hits, _, err := e.Search(snap, search.Request{Query: "code_finder_history_lines_for_test", Limit: 8})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "src/lib.rs", hits[0].Path)
}

func TestSearchIsDeterministic(t *testing.T) {
	e := newEngine(t)
	snap := buildSnapshot()

	h1, _, err := e.Search(snap, search.Request{Query: "unrelated"})
	require.NoError(t, err)
	h2, _, err := e.Search(snap, search.Request{Query: "unrelated"})
	require.NoError(t, err)

	require.Equal(t, len(h1), len(h2))
	for i := range h1 {
		assert.Equal(t, h1[i].SymbolID, h2[i].SymbolID)
		assert.Equal(t, h1[i].Score, h2[i].Score)
	}
}

func TestRefineNarrowsToPriorCandidates(t *testing.T) {
	e := newEngine(t)
	snap := buildSnapshot()

	_, qid, err := e.Search(snap, search.Request{Filters: search.Filters{Identifier: "unrelated"}, Query: "unrelated"})
	require.NoError(t, err)
	require.NotEmpty(t, qid)

	refined, _, err := e.Search(snap, search.Request{Refine: qid, Query: "code_finder_history_lines_for_test"})
	require.NoError(t, err)
	// The prior candidate set was just ["s2"], so refining must not
	// surface s1 even though it matches the new query text better.
	for _, h := range refined {
		assert.Equal(t, "other.rs", h.Path)
	}
}

func TestReferencesScansOnlyFilesInTokenMap(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib.rs"), []byte("fn greet() {}\nfn call() { greet(); }\n"), 0o644))

	snap := index.NewSnapshot()
	snap.AddFile(index.FileEntry{Path: "lib.rs", Tokens: []string{"greet"}}, nil)

	refs := search.References(snap, root, "greet", 10)
	require.Len(t, refs, 2)
	assert.Equal(t, 1, refs[0].Line)
	assert.Equal(t, 2, refs[1].Line)
}

func TestFiltersExcludeNonMatchingKind(t *testing.T) {
	e := newEngine(t)
	snap := buildSnapshot()

	hits, _, err := e.Search(snap, search.Request{
		Filters: search.Filters{Kinds: map[index.SymbolKind]bool{index.KindStruct: true}},
	})
	require.NoError(t, err)
	assert.Empty(t, hits)
}
