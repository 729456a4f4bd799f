package chunk

import "strings"

// chunkFixed groups lines into consecutive, non-overlapping windows
// sized by targetLines(opts); the last window absorbs whatever
// remains, however small.
func chunkFixed(path string, content []byte, opts Options) []Chunk {
	lines := splitLines(content)
	if len(lines) == 0 {
		return nil
	}

	window := targetLines(opts)
	var chunks []Chunk
	for start := 0; start < len(lines); start += window {
		end := start + window
		if end > len(lines) {
			end = len(lines)
		}
		text := strings.Join(lines[start:end], "\n")
		chunks = append(chunks, Chunk{
			Path:       path,
			Strategy:   StrategyFixed,
			StartLine:  start + 1,
			EndLine:    end,
			Text:       text,
			TokenCount: estimateTokens(text, opts.Language),
		})
	}
	return chunks
}
