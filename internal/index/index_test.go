package index_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codenav/navcore/internal/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *index.Snapshot {
	snap := index.NewSnapshot()
	snap.AddFile(index.FileEntry{
		Path:      "src/lib.rs",
		Language:  "rust",
		SymbolIDs: []string{"abc123"},
		Tokens:    []string{"greet", "main"},
		LineCount: 3,
	}, []index.SymbolRecord{
		{ID: "abc123", Identifier: "greet", Kind: index.KindFunction, Language: "rust", Path: "src/lib.rs", StartLine: 1, EndLine: 1},
	})
	return snap
}

func TestValidateAcceptsConsistentSnapshot(t *testing.T) {
	require.NoError(t, sampleSnapshot().Validate())
}

func TestValidateRejectsDanglingSymbolID(t *testing.T) {
	snap := index.NewSnapshot()
	snap.Files["f.go"] = index.FileEntry{Path: "f.go", SymbolIDs: []string{"missing"}}
	err := snap.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.bin")

	snap := sampleSnapshot()
	require.NoError(t, index.Save(path, snap))

	result, err := index.Load(path)
	require.NoError(t, err)
	require.Equal(t, index.Loaded, result.Status)
	assert.Len(t, result.Snapshot.Symbols, 1)
	assert.Len(t, result.Snapshot.Files, 1)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should not survive a successful save")
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	result, err := index.Load(filepath.Join(dir, "absent.bin"))
	require.NoError(t, err)
	assert.Equal(t, index.Missing, result.Status)
}

func TestLoadCorruptFileResetsRatherThanErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.bin")
	require.NoError(t, os.WriteFile(path, []byte("not a gob stream"), 0o644))

	result, err := index.Load(path)
	require.NoError(t, err)
	assert.Equal(t, index.ResetAfterCorruption, result.Status)
	assert.NotNil(t, result.Cause)
	assert.NotNil(t, result.Snapshot)
}

func TestSavePreservesPreviousSnapshotOnCrashBetweenWriteAndRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.bin")

	require.NoError(t, index.Save(path, sampleSnapshot()))

	// Simulate a crash mid-save: a stray .tmp file exists but the
	// rename never happened.
	require.NoError(t, os.WriteFile(path+".tmp", []byte("partial"), 0o644))

	result, err := index.Load(path)
	require.NoError(t, err)
	require.Equal(t, index.Loaded, result.Status)
	assert.Len(t, result.Snapshot.Symbols, 1)
}
