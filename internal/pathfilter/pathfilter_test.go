package pathfilter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codenav/navcore/internal/pathfilter"
	"github.com/stretchr/testify/require"
)

func TestBuiltinIgnoresGitAndNodeModules(t *testing.T) {
	dir := t.TempDir()
	f, err := pathfilter.New(dir)
	require.NoError(t, err)

	require.True(t, f.IsIgnoredRel(".git/config", false))
	require.True(t, f.IsIgnoredRel("node_modules/left-pad/index.js", false))
	require.False(t, f.IsIgnoredRel("src/main.go", false))
}

func TestGitignorePatternsAreHonored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\nbuild/\n"), 0o644))

	f, err := pathfilter.New(dir)
	require.NoError(t, err)

	require.True(t, f.IsIgnoredRel("debug.log", false))
	require.True(t, f.IsIgnoredRel("build/output.bin", false))
	require.False(t, f.IsIgnoredRel("src/app.go", false))
}

func TestCodexignoreIsAlsoHonored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".codexignore"), []byte("vendor/\n"), 0o644))

	f, err := pathfilter.New(dir)
	require.NoError(t, err)

	require.True(t, f.IsIgnoredRel("vendor/lib/x.go", false))
}

func TestIsIgnoredPathResolvesRelativeToRoot(t *testing.T) {
	dir := t.TempDir()
	f, err := pathfilter.New(dir)
	require.NoError(t, err)

	require.True(t, f.IsIgnoredPath(filepath.Join(dir, ".git", "HEAD"), false))
	require.False(t, f.IsIgnoredPath(filepath.Join(dir, "main.go"), false))
}
