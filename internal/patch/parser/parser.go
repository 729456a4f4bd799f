// Package parser implements the Patch Parser: it splits a Begin/End
// Patch envelope into typed sections, one per header line, leaving
// hunk/payload interpretation to the planner.
package parser

import (
	"fmt"
	"strings"

	"github.com/codenav/navcore/internal/naverr"
)

const (
	beginMarker = "*** Begin Patch"
	endMarker   = "*** End Patch"
)

// SectionKind identifies which header introduced a Section.
type SectionKind string

const (
	KindAddFile            SectionKind = "add_file"
	KindDeleteFile         SectionKind = "delete_file"
	KindUpdateFile         SectionKind = "update_file"
	KindInsertBeforeSymbol SectionKind = "insert_before_symbol"
	KindInsertAfterSymbol  SectionKind = "insert_after_symbol"
	KindReplaceSymbolBody  SectionKind = "replace_symbol_body"
	KindAstOperation       SectionKind = "ast_operation"
	KindAstScript          SectionKind = "ast_script"
)

// Hunk is one `@@` block of an Update File section.
type Hunk struct {
	Context []string // the text following `@@` on the header line(s), most specific last
	Lines   []Line
}

// Line is one content line of a hunk, tagged by its prefix convention.
type Line struct {
	Kind LineKind
	Text string
}

// LineKind distinguishes +, -, and context lines.
type LineKind int

const (
	LineContext LineKind = iota
	LineAdded
	LineRemoved
)

// Section is one header-delimited unit of a patch envelope.
type Section struct {
	Kind SectionKind

	Path       string // workspace-relative, forward-slash form
	MoveTo     string // UpdateFile "*** Move to:" target, if present
	SymbolPath string // path::SymbolPath portion for symbol-targeted sections

	Hunks   []Hunk   // UpdateFile
	Payload []string // AddFile content, symbol-targeted payload, Ast Operation body

	Options     map[string]string // Ast Operation key=value pairs
	ScriptPath  string            // Ast Script path
}

// Parse splits raw into an ordered list of Sections. It returns a
// naverr.KindParse error if the envelope markers are missing, a header
// line is unrecognized, or the envelope holds no sections.
func Parse(raw string) ([]Section, error) {
	lines := strings.Split(raw, "\n")
	lines = trimTrailingBlank(lines)

	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != beginMarker {
		return nil, naverr.New(naverr.KindParse, "patch must start with \"*** Begin Patch\"")
	}
	last := len(lines) - 1
	if strings.TrimRight(lines[last], "\r") != endMarker {
		return nil, naverr.New(naverr.KindParse, "patch must end with \"*** End Patch\"")
	}
	body := lines[1:last]

	var sections []Section
	i := 0
	for i < len(body) {
		line := strings.TrimRight(body[i], "\r")
		if strings.TrimSpace(line) == "" {
			i++
			continue
		}
		if !strings.HasPrefix(line, "*** ") {
			return nil, naverr.New(naverr.KindParse, fmt.Sprintf("expected a section header, got %q", line))
		}

		section, err := parseHeader(line)
		if err != nil {
			return nil, err
		}
		i++

		switch section.Kind {
		case KindAddFile:
			section.Payload, i = collectPayload(body, i)
		case KindUpdateFile:
			if i < len(body) && strings.HasPrefix(strings.TrimRight(body[i], "\r"), "*** Move to:") {
				section.MoveTo = strings.TrimSpace(strings.TrimPrefix(strings.TrimRight(body[i], "\r"), "*** Move to:"))
				i++
			}
			section.Hunks, i = collectHunks(body, i)
		case KindInsertBeforeSymbol, KindInsertAfterSymbol, KindReplaceSymbolBody:
			section.Payload, i = collectPayload(body, i)
		case KindAstOperation:
			section.Payload, i = collectPayload(body, i)
		case KindAstScript, KindDeleteFile:
			// no body
		}

		sections = append(sections, section)
	}

	if len(sections) == 0 {
		return nil, naverr.New(naverr.KindParse, "patch has no sections")
	}
	return sections, nil
}

func trimTrailingBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func parseHeader(line string) (Section, error) {
	switch {
	case strings.HasPrefix(line, "*** Add File: "):
		return Section{Kind: KindAddFile, Path: headerValue(line, "*** Add File: ")}, nil
	case strings.HasPrefix(line, "*** Delete File: "):
		return Section{Kind: KindDeleteFile, Path: headerValue(line, "*** Delete File: ")}, nil
	case strings.HasPrefix(line, "*** Update File: "):
		return Section{Kind: KindUpdateFile, Path: headerValue(line, "*** Update File: ")}, nil
	case strings.HasPrefix(line, "*** Insert Before Symbol: "):
		path, sym := splitSymbolTarget(headerValue(line, "*** Insert Before Symbol: "))
		return Section{Kind: KindInsertBeforeSymbol, Path: path, SymbolPath: sym}, nil
	case strings.HasPrefix(line, "*** Insert After Symbol: "):
		path, sym := splitSymbolTarget(headerValue(line, "*** Insert After Symbol: "))
		return Section{Kind: KindInsertAfterSymbol, Path: path, SymbolPath: sym}, nil
	case strings.HasPrefix(line, "*** Replace Symbol Body: "):
		path, sym := splitSymbolTarget(headerValue(line, "*** Replace Symbol Body: "))
		return Section{Kind: KindReplaceSymbolBody, Path: path, SymbolPath: sym}, nil
	case strings.HasPrefix(line, "*** Ast Operation: "):
		path, opts := splitAstOperation(headerValue(line, "*** Ast Operation: "))
		return Section{Kind: KindAstOperation, Path: path, Options: opts}, nil
	case strings.HasPrefix(line, "*** Ast Script: "):
		return Section{Kind: KindAstScript, ScriptPath: headerValue(line, "*** Ast Script: ")}, nil
	default:
		return Section{}, naverr.New(naverr.KindParse, fmt.Sprintf("unrecognized section header: %q", line))
	}
}

func headerValue(line, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, prefix))
}

func splitSymbolTarget(value string) (path, symbolPath string) {
	idx := strings.Index(value, "::")
	if idx < 0 {
		return value, ""
	}
	return value[:idx], value[idx+2:]
}

func splitAstOperation(value string) (path string, options map[string]string) {
	fields := strings.Fields(value)
	options = map[string]string{}
	if len(fields) == 0 {
		return "", options
	}
	path = fields[0]
	for _, f := range fields[1:] {
		if k, v, ok := strings.Cut(f, "="); ok {
			options[k] = v
		}
	}
	return path, options
}

func collectPayload(body []string, i int) ([]string, int) {
	var payload []string
	for i < len(body) {
		line := strings.TrimRight(body[i], "\r")
		if strings.HasPrefix(line, "*** ") {
			break
		}
		payload = append(payload, strings.TrimPrefix(line, " "))
		i++
	}
	return payload, i
}

func collectHunks(body []string, i int) ([]Hunk, int) {
	var hunks []Hunk
	for i < len(body) {
		line := strings.TrimRight(body[i], "\r")
		if strings.HasPrefix(line, "*** ") {
			break
		}
		if !strings.HasPrefix(line, "@@") {
			i++
			continue
		}
		hunk := Hunk{Context: []string{strings.TrimSpace(strings.TrimPrefix(line, "@@"))}}
		i++
		for i < len(body) {
			l := strings.TrimRight(body[i], "\r")
			if strings.HasPrefix(l, "*** ") || strings.HasPrefix(l, "@@") {
				break
			}
			hunk.Lines = append(hunk.Lines, toLine(l))
			i++
		}
		hunks = append(hunks, hunk)
	}
	return hunks, i
}

func toLine(raw string) Line {
	if raw == "" {
		return Line{Kind: LineContext, Text: ""}
	}
	switch raw[0] {
	case '+':
		return Line{Kind: LineAdded, Text: raw[1:]}
	case '-':
		return Line{Kind: LineRemoved, Text: raw[1:]}
	case ' ':
		return Line{Kind: LineContext, Text: raw[1:]}
	default:
		return Line{Kind: LineContext, Text: raw}
	}
}
