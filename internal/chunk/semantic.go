package chunk

import (
	"strings"

	"github.com/codenav/navcore/internal/locator"
	"github.com/codenav/navcore/internal/symbolpath"
)

// chunkSemantic produces one chunk per top-level declaration the
// language's locator finds, using the declaration's header+body byte
// range to pick line boundaries. It returns nil (letting the caller
// fall back to chunkFixed) when no locator is registered for the
// file's language, or the locator finds no declarations.
func chunkSemantic(path string, content []byte, opts Options) []Chunk {
	loc := resolveLocator(path, opts.Language)
	if loc == nil {
		return nil
	}

	targets := loc.Declarations(content)
	if len(targets) == 0 {
		return nil
	}

	offsets := lineOffsets(content)
	var chunks []Chunk
	for _, target := range targets {
		end := target.HeaderRange.End
		if target.BodyRange != nil && target.BodyRange.End > end {
			end = target.BodyRange.End
		}
		startLine := lineForOffset(offsets, target.HeaderRange.Start)
		endLine := lineForOffset(offsets, end)
		if endLine < startLine {
			endLine = startLine
		}

		text := string(content[target.HeaderRange.Start:end])
		if opts.IncludeContext > 0 {
			text = withContextPreamble(content, offsets, startLine, opts.IncludeContext, text)
		}

		chunks = append(chunks, Chunk{
			Path:       path,
			Strategy:   StrategySemantic,
			StartLine:  startLine,
			EndLine:    endLine,
			Text:       text,
			TokenCount: estimateTokens(text, opts.Language),
			Symbol:     symbolDisplay(target.SymbolPath),
		})
	}
	return chunks
}

func symbolDisplay(p symbolpath.Path) string {
	return p.Display()
}

func resolveLocator(path, language string) locator.Locator {
	if language != "" {
		if loc := locator.ByLanguage(locatorLanguage(language)); loc != nil {
			return loc
		}
	}
	ext := extOf(path)
	return locator.ByExtension(ext)
}

func extOf(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return ""
	}
	return path[idx:]
}

// lineOffsets returns the byte offset each 1-indexed line starts at;
// offsets[0] is unused so offsets[n] is line n's start.
func lineOffsets(content []byte) []int {
	offsets := []int{0, 0}
	for i, b := range content {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

func lineForOffset(offsets []int, offset int) int {
	line := 1
	for i := 2; i < len(offsets); i++ {
		if offsets[i] > offset {
			break
		}
		line = i
	}
	return line
}

// withContextPreamble prepends up to maxLines of the file's opening
// lines (the file's import block, by convention) ahead of a
// declaration that does not already start at line 1.
func withContextPreamble(content []byte, offsets []int, declLine, maxLines int, declText string) string {
	if declLine <= 1 {
		return declText
	}
	n := maxLines
	if n > declLine-1 {
		n = declLine - 1
	}
	preambleStart := offsets[1]
	preambleEnd := offsets[n+1]
	preamble := string(content[preambleStart:preambleEnd])
	if strings.TrimSpace(preamble) == "" {
		return declText
	}
	return preamble + declText
}
