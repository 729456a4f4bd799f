package chunk_test

import (
	"strings"
	"testing"

	"github.com/codenav/navcore/internal/chunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkFixedCoversEveryLineExactlyOnce(t *testing.T) {
	lines := make([]string, 0, 40)
	for i := 1; i <= 40; i++ {
		lines = append(lines, strings.Repeat("x", 4))
		_ = i
	}
	content := []byte(strings.Join(lines, "\n") + "\n")

	chunks := chunk.Chunk("file.txt", content, chunk.Options{Strategy: chunk.StrategyFixed, TargetTokens: 56})
	require.NotEmpty(t, chunks)

	seen := 0
	for i, c := range chunks {
		assert.Equal(t, chunk.StrategyFixed, c.Strategy)
		assert.GreaterOrEqual(t, c.StartLine, 1)
		assert.GreaterOrEqual(t, c.EndLine, c.StartLine)
		if i > 0 {
			assert.Equal(t, chunks[i-1].EndLine+1, c.StartLine, "chunks must be contiguous with no gaps or overlaps")
		}
		seen = c.EndLine
	}
	assert.Equal(t, 40, seen)
}

func TestChunkSlidingOverlapsConsecutiveChunks(t *testing.T) {
	lines := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		lines = append(lines, "line")
	}
	content := []byte(strings.Join(lines, "\n") + "\n")

	chunks := chunk.Chunk("file.txt", content, chunk.Options{
		Strategy:     chunk.StrategySliding,
		TargetTokens: 70, // 10 lines/chunk at defaultTokensPerLine=7
		OverlapLines: 3,
	})
	require.Len(t, chunks, 4)

	for i := 1; i < len(chunks); i++ {
		assert.Less(t, chunks[i].StartLine, chunks[i-1].EndLine+1)
		assert.LessOrEqual(t, chunks[i].StartLine, chunks[i-1].EndLine)
	}
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 30, chunks[len(chunks)-1].EndLine)
}

func TestChunkSemanticProducesOneChunkPerGoDeclaration(t *testing.T) {
	src := []byte("package main\n\nfunc Greet(name string) string {\n\treturn \"hi \" + name\n}\n\nfunc Farewell(name string) string {\n\treturn \"bye \" + name\n}\n")

	chunks := chunk.Chunk("greet.go", src, chunk.Options{Strategy: chunk.StrategySemantic, Language: "go"})
	require.Len(t, chunks, 2)
	assert.Equal(t, "Greet", chunks[0].Symbol)
	assert.Equal(t, "Farewell", chunks[1].Symbol)
	assert.Contains(t, chunks[0].Text, "func Greet")
	assert.Contains(t, chunks[1].Text, "func Farewell")
}

func TestChunkSemanticIncludesContextPreamble(t *testing.T) {
	src := []byte("package main\n\nimport \"fmt\"\n\nfunc Greet(name string) string {\n\treturn fmt.Sprintf(\"hi %s\", name)\n}\n")

	chunks := chunk.Chunk("greet.go", src, chunk.Options{Strategy: chunk.StrategySemantic, Language: "go", IncludeContext: 4})
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "import \"fmt\"")
	assert.Contains(t, chunks[0].Text, "func Greet")
}

func TestChunkAdaptiveFallsBackToFixedForUnknownLanguage(t *testing.T) {
	content := []byte("one\ntwo\nthree\nfour\n")
	chunks := chunk.Chunk("notes.xyz", content, chunk.Options{Strategy: chunk.StrategyAdaptive, TargetTokens: 14})
	require.NotEmpty(t, chunks)
	assert.Equal(t, chunk.StrategyFixed, chunks[0].Strategy)
}

func TestChunkEmptyContentReturnsNoChunks(t *testing.T) {
	assert.Empty(t, chunk.Chunk("empty.go", nil, chunk.Options{Strategy: chunk.StrategyFixed}))
}
