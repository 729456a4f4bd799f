package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration for the project rooted at rootDir, in
// priority order: environment variables (NAVCTL_*) override the
// config file (.navcore/config.yml under rootDir), which overrides
// the built-in defaults. CodexHome and PlanPath are resolved
// separately, since CODEX_HOME/NAVIGATOR_PLAN_PATH are unprefixed.
func Load(rootDir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(rootDir, ".navcore"))

	v.SetEnvPrefix("NAVCTL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	codexHome, err := resolveCodexHome()
	if err != nil {
		return nil, err
	}
	cfg.CodexHome = codexHome
	cfg.PlanPath = os.Getenv("NAVIGATOR_PLAN_PATH")

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("daemon.debounce_ms", d.Daemon.DebounceMillis)
	v.SetDefault("daemon.sweep_minutes", d.Daemon.SweepMinutes)

	v.SetDefault("paths.include", d.Paths.Include)
	v.SetDefault("paths.ignore", d.Paths.Ignore)

	v.SetDefault("chunking.strategy", d.Chunking.Strategy)
	v.SetDefault("chunking.target_tokens", d.Chunking.TargetTokens)
	v.SetDefault("chunking.overlap_lines", d.Chunking.OverlapLines)
	v.SetDefault("chunking.include_context", d.Chunking.IncludeContext)

	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)

	v.SetDefault("retrieval.min_query_length", d.Retrieval.MinQueryLength)
	v.SetDefault("retrieval.cache_size", d.Retrieval.CacheSize)
	v.SetDefault("retrieval.candidate_pool_size", d.Retrieval.CandidatePoolSize)
	v.SetDefault("retrieval.final_result_count", d.Retrieval.FinalResultCount)
	v.SetDefault("retrieval.rrf_k", d.Retrieval.RRFK)
	v.SetDefault("retrieval.fuzzy_weight", d.Retrieval.FuzzyWeight)
	v.SetDefault("retrieval.fusion", d.Retrieval.Fusion)
	v.SetDefault("retrieval.rerank", d.Retrieval.Rerank)

	v.SetDefault("post_check.languages", d.PostCheck.Languages)
}

// resolveCodexHome honors an explicit CODEX_HOME override, falling
// back to ~/.codex.
func resolveCodexHome() (string, error) {
	if home := os.Getenv("CODEX_HOME"); home != "" {
		return home, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(homeDir, ".codex"), nil
}
