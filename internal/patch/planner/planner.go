// Package planner implements the Patch Planner: it turns parsed patch
// sections into a linear sequence of file edits, resolving
// symbol-targeted sections via the locator (falling back through
// scoped/identifier/substring strategies) and composing later
// operations against the applied state of earlier ones in the same
// envelope.
package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codenav/navcore/internal/locator"
	"github.com/codenav/navcore/internal/patch/parser"
	"github.com/codenav/navcore/internal/symbolpath"
)

// ResolutionStrategy names one step of the symbol-resolution fallback
// cascade.
type ResolutionStrategy string

const (
	StrategyAST        ResolutionStrategy = "ast"
	StrategyScoped     ResolutionStrategy = "scoped"
	StrategyIdentifier ResolutionStrategy = "identifier"
	StrategySubstring  ResolutionStrategy = "substring"
)

// DefaultStrategyOrder is the fallback order used when the caller
// does not configure one explicitly.
var DefaultStrategyOrder = []ResolutionStrategy{StrategyAST, StrategyScoped, StrategyIdentifier, StrategySubstring}

// Planner composes a Plan from parsed sections against workspace root.
type Planner struct {
	root          string
	strategyOrder []ResolutionStrategy
	// state holds each touched file's content as of the most recently
	// applied operation in this envelope; lazily seeded from disk.
	state map[string][]byte
}

// New builds a Planner rooted at root with the default resolution
// strategy order.
func New(root string) *Planner {
	return &Planner{root: root, strategyOrder: DefaultStrategyOrder, state: map[string][]byte{}}
}

// WithStrategyOrder overrides the symbol-resolution fallback order.
func (p *Planner) WithStrategyOrder(order []ResolutionStrategy) *Planner {
	p.strategyOrder = order
	return p
}

// Plan composes sections, in textual order, into a Plan.
func (p *Planner) Plan(sections []parser.Section) (Plan, error) {
	var plan Plan

	for _, section := range sections {
		summary, edit, ok := p.planSection(section)
		plan.Summaries = append(plan.Summaries, summary)
		if ok {
			plan.Edits = append(plan.Edits, edit)
		}
		if summary.Status == StatusFailed {
			plan.FailedSections = append(plan.FailedSections, renderSection(section))
		}
	}
	return plan, nil
}

func (p *Planner) planSection(section parser.Section) (OperationSummary, FileEdit, bool) {
	switch section.Kind {
	case parser.KindAddFile:
		return p.planAddFile(section)
	case parser.KindDeleteFile:
		return p.planDeleteFile(section)
	case parser.KindUpdateFile:
		return p.planUpdateFile(section)
	case parser.KindInsertBeforeSymbol, parser.KindInsertAfterSymbol, parser.KindReplaceSymbolBody:
		return p.planSymbolSection(section)
	case parser.KindAstOperation:
		return p.planAstOperation(section)
	case parser.KindAstScript:
		return p.planAstScript(section)
	default:
		return failure(ActionUpdate, section.Path, fmt.Sprintf("unsupported section kind %q", section.Kind))
	}
}

func (p *Planner) planAddFile(section parser.Section) (OperationSummary, FileEdit, bool) {
	if p.fileExists(section.Path) {
		return failure(ActionAdd, section.Path, "file already exists")
	}
	content := []byte(strings.Join(stripAddPrefix(section.Payload), "\n") + "\n")
	p.setState(section.Path, content)

	summary := OperationSummary{Action: ActionAdd, Path: section.Path, Added: len(section.Payload), Status: StatusPlanned}
	return summary, FileEdit{Path: section.Path, NewContent: content}, true
}

func stripAddPrefix(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimPrefix(l, "+")
	}
	return out
}

func (p *Planner) planDeleteFile(section parser.Section) (OperationSummary, FileEdit, bool) {
	if !p.fileExists(section.Path) {
		return failure(ActionDelete, section.Path, "file does not exist")
	}
	p.setState(section.Path, nil)
	summary := OperationSummary{Action: ActionDelete, Path: section.Path, Status: StatusPlanned}
	return summary, FileEdit{Path: section.Path, Delete: true}, true
}

func (p *Planner) planUpdateFile(section parser.Section) (OperationSummary, FileEdit, bool) {
	content, err := p.readState(section.Path)
	if err != nil {
		return failure(ActionUpdate, section.Path, err.Error())
	}

	updated, added, removed, err := applyHunks(content, section.Hunks)
	if err != nil {
		return failure(ActionUpdate, section.Path, err.Error())
	}

	destPath := section.Path
	action := ActionUpdate
	if section.MoveTo != "" {
		destPath = section.MoveTo
		action = ActionMove
	}

	p.setState(section.Path, nil)
	p.setState(destPath, updated)

	summary := OperationSummary{Action: action, Path: section.Path, Added: added, Removed: removed, Status: StatusPlanned}
	if action == ActionMove {
		summary.RenamedTo = destPath
	}
	edit := FileEdit{Path: destPath, NewContent: updated}
	if destPath != section.Path {
		edit.RenameFrom = section.Path
	}
	return summary, edit, true
}

func (p *Planner) planSymbolSection(section parser.Section) (OperationSummary, FileEdit, bool) {
	content, err := p.readState(section.Path)
	if err != nil {
		return failure(ActionUpdate, section.Path, err.Error())
	}

	target, strategy, err := p.resolveSymbol(section.Path, content, section.SymbolPath)
	if err != nil {
		return failure(ActionUpdate, section.Path, err.Error())
	}

	payload := strings.Join(stripAddPrefix(section.Payload), "\n")
	updated, added := spliceSymbol(content, target, section.Kind, payload)
	p.setState(section.Path, updated)

	summary := OperationSummary{
		Action: ActionUpdate,
		Path:   section.Path,
		Added:  added,
		Status: StatusPlanned,
		Symbol: &SymbolSummary{
			Kind:     string(target.SymbolKind),
			Symbol:   target.SymbolPath.Display(),
			Strategy: string(strategy),
			Location: fmt.Sprintf("%d-%d", target.HeaderRange.Start, target.HeaderRange.End),
		},
	}
	return summary, FileEdit{Path: section.Path, NewContent: updated}, true
}

// resolveSymbol runs the configured fallback cascade until a strategy
// produces a strictly-ranged span, or returns an error if all abstain.
func (p *Planner) resolveSymbol(path string, content []byte, symbolPathRaw string) (locator.Target, ResolutionStrategy, error) {
	sp := symbolpath.Parse(symbolPathRaw)
	loc := locator.ByExtension(filepath.Ext(path))

	for _, strategy := range p.strategyOrder {
		switch strategy {
		case StrategyAST, StrategyScoped:
			if loc == nil {
				continue
			}
			res := loc.Locate(content, sp)
			if target, ok := res.Target(); ok {
				return target, strategy, nil
			}
		case StrategyIdentifier:
			if target, ok := findByIdentifier(content, sp.Last()); ok {
				return target, strategy, nil
			}
		case StrategySubstring:
			if target, ok := findBySubstring(content, sp.Last()); ok {
				return target, strategy, nil
			}
		}
	}
	return locator.Target{}, "", fmt.Errorf("could not resolve symbol %q in %s", symbolPathRaw, path)
}

// findByIdentifier locates the first line on which name's first
// occurrence either starts the line (after leading whitespace) or
// directly follows fn, func, def, class or struct.
func findByIdentifier(content []byte, name string) (locator.Target, bool) {
	if name == "" {
		return locator.Target{}, false
	}
	lines := strings.Split(string(content), "\n")
	offset := 0
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.Contains(trimmed, name) && looksLikeDeclaration(trimmed, name) {
			return locator.Target{
				SymbolPath:  symbolpath.New(name),
				HeaderRange: locator.ByteRange{Start: offset, End: offset + len(line)},
			}, true
		}
		offset += len(line) + 1
	}
	return locator.Target{}, false
}

func looksLikeDeclaration(line, name string) bool {
	idx := strings.Index(line, name)
	if idx < 0 {
		return false
	}
	before := strings.TrimSpace(line[:idx])
	return before == "" || strings.HasSuffix(before, "fn") || strings.HasSuffix(before, "func") ||
		strings.HasSuffix(before, "def") || strings.HasSuffix(before, "class") || strings.HasSuffix(before, "struct")
}

// findBySubstring locates the first raw textual occurrence of name,
// with no declaration-shape requirement: the last-resort strategy.
func findBySubstring(content []byte, name string) (locator.Target, bool) {
	if name == "" {
		return locator.Target{}, false
	}
	idx := strings.Index(string(content), name)
	if idx < 0 {
		return locator.Target{}, false
	}
	lineStart := strings.LastIndexByte(string(content[:idx]), '\n') + 1
	lineEnd := idx + strings.IndexByte(string(content[idx:])+"\n", '\n')
	return locator.Target{
		SymbolPath:  symbolpath.New(name),
		HeaderRange: locator.ByteRange{Start: lineStart, End: lineEnd},
	}, true
}

// spliceSymbol applies an Insert{Before,After}Symbol or
// ReplaceSymbolBody payload against target's header/body range.
func spliceSymbol(content []byte, target locator.Target, kind parser.SectionKind, payload string) ([]byte, int) {
	var insertAt int
	switch kind {
	case parser.KindInsertBeforeSymbol:
		insertAt = target.HeaderRange.Start
	case parser.KindInsertAfterSymbol:
		if target.BodyRange != nil {
			insertAt = target.BodyRange.End
		} else {
			insertAt = target.HeaderRange.End
		}
	case parser.KindReplaceSymbolBody:
		// header_range covers the full declaration including its
		// signature; body_range is a strict subrange covering just the
		// block, so only that subrange is replaced here.
		start, end := target.HeaderRange.Start, target.HeaderRange.End
		if target.BodyRange != nil {
			start, end = target.BodyRange.Start, target.BodyRange.End
		}
		var out []byte
		out = append(out, content[:start]...)
		out = append(out, []byte(payload)...)
		out = append(out, content[end:]...)
		return out, strings.Count(payload, "\n") + 1
	}

	var out []byte
	out = append(out, content[:insertAt]...)
	out = append(out, []byte(payload+"\n")...)
	out = append(out, content[insertAt:]...)
	return out, strings.Count(payload, "\n") + 1
}

func (p *Planner) fileExists(path string) bool {
	if content, ok := p.state[path]; ok {
		return content != nil
	}
	_, err := os.Stat(filepath.Join(p.root, path))
	return err == nil
}

func (p *Planner) readState(path string) ([]byte, error) {
	if content, ok := p.state[path]; ok {
		if content == nil {
			return nil, fmt.Errorf("file %s was deleted earlier in this patch", path)
		}
		return content, nil
	}
	content, err := os.ReadFile(filepath.Join(p.root, path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return content, nil
}

func (p *Planner) setState(path string, content []byte) {
	p.state[path] = content
}

func failure(action Action, path, message string) (OperationSummary, FileEdit, bool) {
	return OperationSummary{Action: action, Path: path, Status: StatusFailed, Message: message}, FileEdit{}, false
}

func renderSection(section parser.Section) string {
	var b strings.Builder
	switch section.Kind {
	case parser.KindAddFile:
		fmt.Fprintf(&b, "*** Add File: %s\n", section.Path)
		for _, l := range section.Payload {
			fmt.Fprintf(&b, "%s\n", l)
		}
	case parser.KindDeleteFile:
		fmt.Fprintf(&b, "*** Delete File: %s\n", section.Path)
	case parser.KindUpdateFile:
		fmt.Fprintf(&b, "*** Update File: %s\n", section.Path)
		if section.MoveTo != "" {
			fmt.Fprintf(&b, "*** Move to: %s\n", section.MoveTo)
		}
		for _, h := range section.Hunks {
			fmt.Fprintf(&b, "@@ %s\n", strings.Join(h.Context, " "))
			for _, l := range h.Lines {
				fmt.Fprintf(&b, "%s%s\n", linePrefix(l.Kind), l.Text)
			}
		}
	case parser.KindInsertBeforeSymbol:
		fmt.Fprintf(&b, "*** Insert Before Symbol: %s::%s\n", section.Path, section.SymbolPath)
	case parser.KindInsertAfterSymbol:
		fmt.Fprintf(&b, "*** Insert After Symbol: %s::%s\n", section.Path, section.SymbolPath)
	case parser.KindReplaceSymbolBody:
		fmt.Fprintf(&b, "*** Replace Symbol Body: %s::%s\n", section.Path, section.SymbolPath)
	case parser.KindAstOperation:
		fmt.Fprintf(&b, "*** Ast Operation: %s", section.Path)
		for k, v := range section.Options {
			fmt.Fprintf(&b, " %s=%s", k, v)
		}
		b.WriteByte('\n')
	case parser.KindAstScript:
		fmt.Fprintf(&b, "*** Ast Script: %s\n", section.ScriptPath)
	}
	return b.String()
}

func linePrefix(k parser.LineKind) string {
	switch k {
	case parser.LineAdded:
		return "+"
	case parser.LineRemoved:
		return "-"
	default:
		return " "
	}
}
