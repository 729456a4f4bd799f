package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDimensions = errors.New("invalid embedding dimensions")
	ErrInvalidChunking   = errors.New("invalid chunking configuration")
	ErrInvalidRetrieval  = errors.New("invalid retrieval configuration")
	ErrEmptyProvider     = errors.New("empty embedding provider")
	ErrUnknownStrategy   = errors.New("unknown chunking strategy")
	ErrUnknownFusion     = errors.New("unknown fusion strategy")
)

var validStrategies = map[string]bool{
	"fixed":    true,
	"semantic": true,
	"adaptive": true,
	"sliding":  true,
}

var validFusions = map[string]bool{
	"rrf":            true,
	"weighted":       true,
	"max":            true,
	"fuzzy_only":     true,
	"semantic_only":  true,
}

// Validate checks that cfg is complete and internally consistent.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateEmbedding(&cfg.Embedding); err != nil {
		errs = append(errs, err)
	}
	if err := validateChunking(&cfg.Chunking); err != nil {
		errs = append(errs, err)
	}
	if err := validateRetrieval(&cfg.Retrieval); err != nil {
		errs = append(errs, err)
	}

	return joinErrors(errs)
}

func validateEmbedding(cfg *EmbeddingConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Provider) == "" {
		errs = append(errs, ErrEmptyProvider)
	}
	if cfg.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("%w: dimensions must be positive, got %d", ErrInvalidDimensions, cfg.Dimensions))
	}

	return joinErrors(errs)
}

func validateChunking(cfg *ChunkingConfig) error {
	var errs []error

	if !validStrategies[cfg.Strategy] {
		errs = append(errs, fmt.Errorf("%w: %q (valid: fixed, semantic, adaptive, sliding)", ErrUnknownStrategy, cfg.Strategy))
	}
	if cfg.TargetTokens <= 0 {
		errs = append(errs, fmt.Errorf("%w: target_tokens must be positive, got %d", ErrInvalidChunking, cfg.TargetTokens))
	}
	if cfg.OverlapLines < 0 {
		errs = append(errs, fmt.Errorf("%w: overlap_lines cannot be negative, got %d", ErrInvalidChunking, cfg.OverlapLines))
	}
	if cfg.IncludeContext < 0 {
		errs = append(errs, fmt.Errorf("%w: include_context cannot be negative, got %d", ErrInvalidChunking, cfg.IncludeContext))
	}

	return joinErrors(errs)
}

func validateRetrieval(cfg *RetrievalConfig) error {
	var errs []error

	if cfg.MinQueryLength < 0 {
		errs = append(errs, fmt.Errorf("%w: min_query_length cannot be negative, got %d", ErrInvalidRetrieval, cfg.MinQueryLength))
	}
	if cfg.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size must be positive, got %d", ErrInvalidRetrieval, cfg.CacheSize))
	}
	if cfg.CandidatePoolSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: candidate_pool_size must be positive, got %d", ErrInvalidRetrieval, cfg.CandidatePoolSize))
	}
	if cfg.FinalResultCount <= 0 {
		errs = append(errs, fmt.Errorf("%w: final_result_count must be positive, got %d", ErrInvalidRetrieval, cfg.FinalResultCount))
	}
	if cfg.FuzzyWeight < 0 || cfg.FuzzyWeight > 1 {
		errs = append(errs, fmt.Errorf("%w: fuzzy_weight must be within [0,1], got %f", ErrInvalidRetrieval, cfg.FuzzyWeight))
	}
	if !validFusions[cfg.Fusion] {
		errs = append(errs, fmt.Errorf("%w: %q (valid: rrf, weighted, max, fuzzy_only, semantic_only)", ErrUnknownFusion, cfg.Fusion))
	}

	return joinErrors(errs)
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
