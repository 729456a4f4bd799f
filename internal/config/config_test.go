package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codenav/navcore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWithNoConfigFile(t *testing.T) {
	root := t.TempDir()
	t.Setenv("CODEX_HOME", filepath.Join(root, "codex-home"))
	t.Setenv("NAVIGATOR_PLAN_PATH", "")

	cfg, err := config.Load(root)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Daemon.DebounceMillis)
	assert.Equal(t, "adaptive", cfg.Chunking.Strategy)
	assert.Equal(t, filepath.Join(root, "codex-home"), cfg.CodexHome)
}

func TestLoadReadsConfigFileOverridingDefaults(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".navcore"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".navcore", "config.yml"), []byte("chunking:\n  strategy: fixed\n  target_tokens: 200\n"), 0o644))
	t.Setenv("CODEX_HOME", filepath.Join(root, "codex-home"))

	cfg, err := config.Load(root)
	require.NoError(t, err)
	assert.Equal(t, "fixed", cfg.Chunking.Strategy)
	assert.Equal(t, 200, cfg.Chunking.TargetTokens)
}

func TestLoadEnvOverridesConfigFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".navcore"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".navcore", "config.yml"), []byte("chunking:\n  strategy: fixed\n"), 0o644))
	t.Setenv("CODEX_HOME", filepath.Join(root, "codex-home"))
	t.Setenv("NAVCTL_CHUNKING_STRATEGY", "sliding")

	cfg, err := config.Load(root)
	require.NoError(t, err)
	assert.Equal(t, "sliding", cfg.Chunking.Strategy)
}

func TestLoadResolvesPlanPathFromEnv(t *testing.T) {
	root := t.TempDir()
	t.Setenv("CODEX_HOME", filepath.Join(root, "codex-home"))
	t.Setenv("NAVIGATOR_PLAN_PATH", "/tmp/plan.json")

	cfg, err := config.Load(root)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/plan.json", cfg.PlanPath)
}

func TestValidateRejectsUnknownChunkingStrategy(t *testing.T) {
	cfg := config.Default()
	cfg.Chunking.Strategy = "bogus"
	assert.ErrorIs(t, config.Validate(cfg), config.ErrUnknownStrategy)
}

func TestValidateRejectsOutOfRangeFuzzyWeight(t *testing.T) {
	cfg := config.Default()
	cfg.Retrieval.FuzzyWeight = 1.5
	assert.ErrorIs(t, config.Validate(cfg), config.ErrInvalidRetrieval)
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, config.Validate(config.Default()))
}
