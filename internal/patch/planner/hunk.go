package planner

import (
	"fmt"
	"strings"

	"github.com/codenav/navcore/internal/patch/parser"
)

// applyHunks applies each hunk's context/removed/added lines against
// content in order, matching each hunk's leading context+removed
// lines as a contiguous window and splicing in its added lines.
func applyHunks(content []byte, hunks []parser.Hunk) ([]byte, int, int, error) {
	lines := splitLines(string(content))
	added, removed := 0, 0

	for _, hunk := range hunks {
		search, replacement := hunkWindows(hunk)
		idx := findWindow(lines, search)
		if idx < 0 {
			return nil, 0, 0, fmt.Errorf("hunk context not found: %q", strings.Join(hunk.Context, " "))
		}
		for _, l := range hunk.Lines {
			switch l.Kind {
			case parser.LineAdded:
				added++
			case parser.LineRemoved:
				removed++
			}
		}
		lines = append(lines[:idx], append(replacement, lines[idx+len(search):]...)...)
	}

	return []byte(strings.Join(lines, "\n")), added, removed, nil
}

// hunkWindows returns the slice of lines expected to already be
// present (context + removed, in order) and the slice that should
// replace them (context + added, in order).
func hunkWindows(hunk parser.Hunk) (search, replacement []string) {
	for _, l := range hunk.Lines {
		switch l.Kind {
		case parser.LineContext:
			search = append(search, l.Text)
			replacement = append(replacement, l.Text)
		case parser.LineRemoved:
			search = append(search, l.Text)
		case parser.LineAdded:
			replacement = append(replacement, l.Text)
		}
	}
	return search, replacement
}

func findWindow(lines, window []string) int {
	if len(window) == 0 {
		return -1
	}
	for i := 0; i+len(window) <= len(lines); i++ {
		if slicesEqual(lines[i:i+len(window)], window) {
			return i
		}
	}
	return -1
}

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
