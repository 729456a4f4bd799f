// Package chunk implements the Chunker: it splits a file's content
// into retrieval-sized pieces using one of several strategies,
// carrying 1-indexed inclusive line ranges and per-strategy metadata,
// grounded on the same target-size/overlap token-budget idiom the
// indexer's documentation chunker uses for markdown.
package chunk

import (
	"strings"
)

// Strategy selects which chunking algorithm Chunk uses.
type Strategy string

const (
	StrategyFixed    Strategy = "fixed"
	StrategySemantic Strategy = "semantic"
	StrategyAdaptive Strategy = "adaptive"
	StrategySliding  Strategy = "sliding"
)

// Chunk is one contiguous, 1-indexed inclusive line range of a file
// plus its strategy's metadata.
type Chunk struct {
	Path       string
	Strategy   Strategy
	StartLine  int
	EndLine    int
	Text       string
	TokenCount int
	Symbol     string // set by the semantic strategy when the chunk covers one declaration
}

// Options configures a single Chunk call.
type Options struct {
	Strategy       Strategy
	Language       string
	TargetTokens   int // default 400
	OverlapLines   int // sliding strategy only; default 0
	IncludeContext int // semantic strategy: up to N context lines of preamble; default 0
}

const defaultTargetTokens = 400

// tokensPerLineByLanguage is a rough per-language average-tokens-per-line
// multiplier used to convert a target token budget into a target line
// count; denser languages (Rust, C++) get a lower line budget per
// token than prose-like ones (markdown).
var tokensPerLineByLanguage = map[string]float64{
	"rust":       9,
	"go":         8,
	"cpp":        9,
	"python":     7,
	"typescript": 8,
	"javascript": 8,
	"shell":      6,
	"markdown":   5,
}

const defaultTokensPerLine = 7

// Chunk splits content (the text of the file at path) according to
// opts.Strategy.
func Chunk(path string, content []byte, opts Options) []Chunk {
	if opts.TargetTokens <= 0 {
		opts.TargetTokens = defaultTargetTokens
	}

	switch opts.Strategy {
	case StrategySemantic:
		chunks := chunkSemantic(path, content, opts)
		if len(chunks) > 0 {
			return chunks
		}
		return chunkFixed(path, content, opts)
	case StrategyAdaptive:
		chunks := chunkSemantic(path, content, opts)
		if len(chunks) > 0 {
			return chunks
		}
		return chunkFixed(path, content, opts)
	case StrategySliding:
		return chunkSliding(path, content, opts)
	default:
		return chunkFixed(path, content, opts)
	}
}

// targetLines converts opts' token budget into a target line count
// for language, using the per-language tokens-per-line multiplier.
func targetLines(opts Options) int {
	perLine, ok := tokensPerLineByLanguage[opts.Language]
	if !ok {
		perLine = defaultTokensPerLine
	}
	lines := int(float64(opts.TargetTokens) / perLine)
	if lines < 1 {
		lines = 1
	}
	return lines
}

func estimateTokens(text string, language string) int {
	perLine, ok := tokensPerLineByLanguage[language]
	if !ok {
		perLine = defaultTokensPerLine
	}
	lineCount := strings.Count(text, "\n") + 1
	return int(float64(lineCount) * perLine)
}

func splitLines(content []byte) []string {
	text := strings.TrimSuffix(string(content), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// locatorLanguage maps a chunker language name to the locator
// registry's language tag. The two use the same tags (tsx included),
// so the name is returned unchanged.
func locatorLanguage(language string) string {
	return language
}
