package indexbuild

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/codenav/navcore/internal/index"
	"github.com/codenav/navcore/internal/locator"
)

// LocatorExtractor adapts internal/locator's bulk Declarations walk
// into a SymbolExtractor, so the index builder and the syntax locator
// agree on exactly what counts as a declaration.
func LocatorExtractor(path, language string, source []byte) []index.SymbolRecord {
	loc := locator.ByLanguage(normalizeLanguage(language))
	if loc == nil {
		return nil
	}

	var out []index.SymbolRecord
	for _, decl := range loc.Declarations(source) {
		name := decl.SymbolPath.Last()
		if name == "" {
			continue
		}
		startLine := 1 + strings.Count(string(source[:decl.HeaderRange.Start]), "\n")
		endLine := 1 + strings.Count(string(source[:decl.HeaderRange.End]), "\n")
		out = append(out, index.SymbolRecord{
			ID:         symbolID(path, startLine, name),
			Identifier: name,
			Kind:       index.SymbolKind(decl.SymbolKind),
			StartLine:  startLine,
			EndLine:    endLine,
			Module:     decl.SymbolPath.Parent().Display(),
			Preview:    preview(source, decl.HeaderRange.Start, decl.HeaderRange.End),
		})
	}
	return out
}

func normalizeLanguage(language string) string {
	if language == "tsx" {
		return "typescript"
	}
	return language
}

func symbolID(path string, startLine int, name string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", path, startLine, name)))
	return hex.EncodeToString(sum[:8])
}

func preview(source []byte, start, end int) string {
	line := string(source[start:end])
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if len(line) > 120 {
		line = line[:120]
	}
	return line
}
