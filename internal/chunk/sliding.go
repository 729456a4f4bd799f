package chunk

import "strings"

// chunkSliding groups lines into fixed-size windows like chunkFixed,
// but advances by (window - overlap) lines instead of window lines,
// so consecutive chunks share opts.OverlapLines lines of context.
func chunkSliding(path string, content []byte, opts Options) []Chunk {
	lines := splitLines(content)
	if len(lines) == 0 {
		return nil
	}

	window := targetLines(opts)
	overlap := opts.OverlapLines
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= window {
		overlap = window - 1
	}
	stride := window - overlap

	var chunks []Chunk
	for start := 0; start < len(lines); start += stride {
		end := start + window
		if end > len(lines) {
			end = len(lines)
		}
		text := strings.Join(lines[start:end], "\n")
		chunks = append(chunks, Chunk{
			Path:       path,
			Strategy:   StrategySliding,
			StartLine:  start + 1,
			EndLine:    end,
			Text:       text,
			TokenCount: estimateTokens(text, opts.Language),
		})
		if end == len(lines) {
			break
		}
	}
	return chunks
}
