// Package config loads navcore's project-level configuration: a YAML
// file under .navcore/config.yml, layered with environment overrides,
// the way the indexer's own config package layers .cortex/config.yml.
package config

import "time"

// Config is the complete, validated configuration for one project.
type Config struct {
	Daemon    DaemonConfig    `yaml:"daemon" mapstructure:"daemon"`
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
	Chunking  ChunkingConfig  `yaml:"chunking" mapstructure:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval" mapstructure:"retrieval"`
	PostCheck PostCheckConfig `yaml:"post_check" mapstructure:"post_check"`

	// CodexHome is not part of the YAML file; it is resolved from the
	// CODEX_HOME environment variable, or ~/.codex when that is unset.
	CodexHome string `yaml:"-" mapstructure:"-"`
	// PlanPath overrides the personal-signals heuristic input; set
	// from NAVIGATOR_PLAN_PATH, empty when unset.
	PlanPath string `yaml:"-" mapstructure:"-"`
}

// DaemonConfig configures the watcher/coordinator and HTTP server.
type DaemonConfig struct {
	DebounceMillis int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
	SweepMinutes   int `yaml:"sweep_minutes" mapstructure:"sweep_minutes"`
}

// Debounce returns DebounceMillis as a time.Duration.
func (d DaemonConfig) Debounce() time.Duration {
	return time.Duration(d.DebounceMillis) * time.Millisecond
}

// SweepInterval returns SweepMinutes as a time.Duration.
func (d DaemonConfig) SweepInterval() time.Duration {
	return time.Duration(d.SweepMinutes) * time.Minute
}

// PathsConfig selects which files the indexer and chunker walk.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"`
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`
}

// ChunkingConfig configures the default chunker strategy.
type ChunkingConfig struct {
	Strategy       string `yaml:"strategy" mapstructure:"strategy"`
	TargetTokens   int    `yaml:"target_tokens" mapstructure:"target_tokens"`
	OverlapLines   int    `yaml:"overlap_lines" mapstructure:"overlap_lines"`
	IncludeContext int    `yaml:"include_context" mapstructure:"include_context"`
}

// EmbeddingConfig selects the embedding provider the retrieval
// pipeline's semantic stage uses.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"`
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"`
}

// RetrievalConfig configures the Hybrid Retriever pipeline.
type RetrievalConfig struct {
	MinQueryLength    int     `yaml:"min_query_length" mapstructure:"min_query_length"`
	CacheSize         int     `yaml:"cache_size" mapstructure:"cache_size"`
	CandidatePoolSize int     `yaml:"candidate_pool_size" mapstructure:"candidate_pool_size"`
	FinalResultCount  int     `yaml:"final_result_count" mapstructure:"final_result_count"`
	RRFK              int     `yaml:"rrf_k" mapstructure:"rrf_k"`
	FuzzyWeight       float32 `yaml:"fuzzy_weight" mapstructure:"fuzzy_weight"`
	Fusion            string  `yaml:"fusion" mapstructure:"fusion"`
	Rerank            bool    `yaml:"rerank" mapstructure:"rerank"`
}

// LanguageCheck is one post-check rule as written in YAML.
type LanguageCheck struct {
	Extension     string   `yaml:"extension" mapstructure:"extension"`
	ManifestFile  string   `yaml:"manifest_file" mapstructure:"manifest_file"`
	Tool          string   `yaml:"tool" mapstructure:"tool"`
	PerCrateArgs  []string `yaml:"per_crate_args" mapstructure:"per_crate_args"`
	WorkspaceArgs []string `yaml:"workspace_args" mapstructure:"workspace_args"`
}

// PostCheckConfig lists the per-language formatter/checker rules the
// patch executor runs after a successful apply.
type PostCheckConfig struct {
	Languages []LanguageCheck `yaml:"languages" mapstructure:"languages"`
}

// Default returns navcore's built-in configuration.
func Default() *Config {
	return &Config{
		Daemon: DaemonConfig{DebounceMillis: 500, SweepMinutes: 5},
		Paths: PathsConfig{
			Include: []string{"**/*.go", "**/*.rs", "**/*.py", "**/*.ts", "**/*.tsx", "**/*.js", "**/*.cpp", "**/*.hpp", "**/*.sh", "**/*.md"},
			Ignore:  []string{"node_modules/**", "vendor/**", ".git/**", "target/**", "dist/**", "build/**", "__pycache__/**"},
		},
		Chunking: ChunkingConfig{
			Strategy:       "adaptive",
			TargetTokens:   400,
			OverlapLines:   20,
			IncludeContext: 10,
		},
		Embedding: EmbeddingConfig{
			Provider:   "hash",
			Dimensions: 384,
		},
		Retrieval: RetrievalConfig{
			MinQueryLength:    2,
			CacheSize:         256,
			CandidatePoolSize: 50,
			FinalResultCount:  10,
			RRFK:              60,
			FuzzyWeight:       0.5,
			Fusion:            "rrf",
			Rerank:            true,
		},
		PostCheck: PostCheckConfig{
			Languages: []LanguageCheck{
				{Extension: ".rs", ManifestFile: "Cargo.toml", Tool: "cargo", PerCrateArgs: []string{"fmt"}, WorkspaceArgs: []string{"fmt", "--all"}},
				{Extension: ".go", ManifestFile: "go.mod", Tool: "gofmt", PerCrateArgs: []string{"-w", "."}, WorkspaceArgs: []string{"-w", "."}},
			},
		},
	}
}
