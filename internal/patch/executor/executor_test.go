package executor_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/codenav/navcore/internal/patch/executor"
	"github.com/codenav/navcore/internal/patch/parser"
	"github.com/codenav/navcore/internal/patch/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteApplyWritesFile(t *testing.T) {
	root := t.TempDir()
	sections, err := parser.Parse("*** Begin Patch\n*** Add File: a.rs\n+fn a() {}\n*** End Patch")
	require.NoError(t, err)
	plan, err := planner.New(root).Plan(sections)
	require.NoError(t, err)

	report := executor.Execute(context.Background(), executor.Options{Root: root, Mode: executor.ModeApply}, plan)

	assert.Equal(t, "success", report.Status)
	require.Len(t, report.Operations, 1)
	assert.Equal(t, planner.StatusApplied, report.Operations[0].Status)

	content, err := os.ReadFile(filepath.Join(root, "a.rs"))
	require.NoError(t, err)
	assert.Equal(t, "fn a() {}\n", string(content))
}

func TestExecuteDryRunDoesNotWriteFile(t *testing.T) {
	root := t.TempDir()
	sections, err := parser.Parse("*** Begin Patch\n*** Add File: a.rs\n+fn a() {}\n*** End Patch")
	require.NoError(t, err)
	plan, err := planner.New(root).Plan(sections)
	require.NoError(t, err)

	report := executor.Execute(context.Background(), executor.Options{Root: root, Mode: executor.ModeDryRun}, plan)

	assert.Equal(t, "success", report.Status)
	_, err = os.Stat(filepath.Join(root, "a.rs"))
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteDeleteRemovesFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "old.rs"), []byte("x"), 0o644))
	sections, err := parser.Parse("*** Begin Patch\n*** Delete File: old.rs\n*** End Patch")
	require.NoError(t, err)
	plan, err := planner.New(root).Plan(sections)
	require.NoError(t, err)

	report := executor.Execute(context.Background(), executor.Options{Root: root, Mode: executor.ModeApply}, plan)

	assert.Equal(t, "success", report.Status)
	_, err = os.Stat(filepath.Join(root, "old.rs"))
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteFailedPlanProducesAmendmentTemplate(t *testing.T) {
	root := t.TempDir()
	sections, err := parser.Parse("*** Begin Patch\n*** Delete File: missing.rs\n*** End Patch")
	require.NoError(t, err)
	plan, err := planner.New(root).Plan(sections)
	require.NoError(t, err)

	report := executor.Execute(context.Background(), executor.Options{Root: root, Mode: executor.ModeApply}, plan)

	assert.Equal(t, "failed", report.Status)
	assert.Contains(t, report.AmendmentTemplate, "*** Begin Patch")
	assert.Contains(t, report.AmendmentTemplate, "*** End Patch")
}

func TestExecutePostCheckSkippedWhenToolMissing(t *testing.T) {
	root := t.TempDir()
	sections, err := parser.Parse("*** Begin Patch\n*** Add File: a.rs\n+fn a() {}\n*** End Patch")
	require.NoError(t, err)
	plan, err := planner.New(root).Plan(sections)
	require.NoError(t, err)

	rules := []executor.LanguageRule{{Extension: ".rs", ManifestFile: "Cargo.toml", Tool: "definitely-not-a-real-tool-xyz"}}
	report := executor.Execute(context.Background(), executor.Options{Root: root, Mode: executor.ModeApply, Rules: rules}, plan)

	require.Len(t, report.PostChecks, 1)
	assert.Equal(t, "skipped", report.PostChecks[0].Status)
	assert.Equal(t, "success", report.Status)
}

func TestEmitTrailingLineWritesSchemaLine(t *testing.T) {
	var buf bufferWriter
	err := executor.EmitTrailingLine(&buf, executor.PatchReport{Status: "success", Mode: executor.ModeApply})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\"schema\":\"apply_patch/v2\"")
}

type bufferWriter struct{ data []byte }

func (b *bufferWriter) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *bufferWriter) String() string { return string(b.data) }
