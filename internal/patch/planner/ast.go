package planner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/codenav/navcore/internal/locator"
	"github.com/codenav/navcore/internal/patch/parser"
)

// PropagationScope controls how far a rename's replacements extend.
type PropagationScope string

const (
	PropagationDefinition PropagationScope = "definition"
	PropagationFile        PropagationScope = "file"
)

func (p *Planner) planAstOperation(section parser.Section) (OperationSummary, FileEdit, bool) {
	op := section.Options["op"]
	switch op {
	case "rename-symbol":
		return p.planRenameSymbol(section)
	case "update-signature", "move-block", "update-imports", "insert-attributes", "template":
		return p.planGenericAstOperation(section, op)
	default:
		return failure(ActionUpdate, section.Path, fmt.Sprintf("unknown ast operation %q", op))
	}
}

// planRenameSymbol implements the rename-symbol AstOperation: replace
// every word-bounded occurrence of the old name with the new one,
// either across the whole file (propagate=file) or restricted to the
// symbol's own definition span (propagate=definition, the default).
func (p *Planner) planRenameSymbol(section parser.Section) (OperationSummary, FileEdit, bool) {
	oldName := section.Options["symbol"]
	newName := section.Options["new_name"]
	if oldName == "" || newName == "" {
		return failure(ActionUpdate, section.Path, "rename-symbol requires symbol= and new_name=")
	}
	scope := PropagationScope(section.Options["propagate"])
	if scope == "" {
		scope = PropagationDefinition
	}

	content, err := p.readState(section.Path)
	if err != nil {
		return failure(ActionUpdate, section.Path, err.Error())
	}

	pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(oldName) + `\b`)

	var updated []byte
	var count int
	switch scope {
	case PropagationFile:
		updated = pattern.ReplaceAll(content, []byte(newName))
		count = len(pattern.FindAll(content, -1))
	case PropagationDefinition:
		target, strategy, resolveErr := p.resolveSymbol(section.Path, content, oldName)
		if resolveErr != nil {
			return failure(ActionUpdate, section.Path, resolveErr.Error())
		}
		start, end := target.HeaderRange.Start, target.HeaderRange.End
		if target.BodyRange != nil {
			end = target.BodyRange.End
		}
		span := content[start:end]
		replaced := pattern.ReplaceAll(span, []byte(newName))
		count = len(pattern.FindAll(span, -1))

		var out []byte
		out = append(out, content[:start]...)
		out = append(out, replaced...)
		out = append(out, content[end:]...)
		updated = out

		summary := OperationSummary{
			Action: ActionUpdate, Path: section.Path, Added: count, Status: StatusPlanned,
			Symbol: &SymbolSummary{Kind: target.SymbolKind, Symbol: newName, Strategy: string(strategy), Location: fmt.Sprintf("%d-%d", start, end)},
		}
		p.setState(section.Path, updated)
		return summary, FileEdit{Path: section.Path, NewContent: updated}, true
	default:
		return failure(ActionUpdate, section.Path, fmt.Sprintf("unknown propagation scope %q", scope))
	}

	p.setState(section.Path, updated)
	summary := OperationSummary{Action: ActionUpdate, Path: section.Path, Added: count, Status: StatusPlanned}
	return summary, FileEdit{Path: section.Path, NewContent: updated}, true
}

// planGenericAstOperation handles the remaining AstOperation kinds
// with a best-effort textual transform driven by their options, since
// each is a thin, declaratively-specified edit rather than a rename's
// cross-file propagation.
func (p *Planner) planGenericAstOperation(section parser.Section, op string) (OperationSummary, FileEdit, bool) {
	content, err := p.readState(section.Path)
	if err != nil {
		return failure(ActionUpdate, section.Path, err.Error())
	}

	if op == "update-imports" {
		return p.planUpdateImports(section, content)
	}
	if op == "move-block" {
		return failure(ActionUpdate, section.Path, "move-block is not yet supported: no block-relocation target resolution")
	}

	payload := strings.Join(stripAddPrefix(section.Payload), "\n")

	target, _, resolveErr := p.resolveSymbol(section.Path, content, section.Options["symbol"])
	if resolveErr != nil {
		return failure(ActionUpdate, section.Path, resolveErr.Error())
	}

	insertAt := insertionPoint(target, section.Options["mode"], section.Options["placement"])
	var out []byte
	out = append(out, content[:insertAt]...)
	out = append(out, []byte(payload+"\n")...)
	out = append(out, content[insertAt:]...)
	updated := out

	p.setState(section.Path, updated)
	summary := OperationSummary{Action: ActionUpdate, Path: section.Path, Added: strings.Count(payload, "\n") + 1, Status: StatusPlanned}
	return summary, FileEdit{Path: section.Path, NewContent: updated}, true
}

// insertionPoint resolves where a template/insert-attributes/
// update-signature payload lands relative to target, honoring the
// operation's mode (template) or placement (insert-attributes)
// option. body-start places the payload just inside the symbol's
// opening brace, ahead of its first statement; placement=after
// inserts just past the symbol's body (or header); everything else
// inserts immediately before the declaration.
func insertionPoint(target locator.Target, mode, placement string) int {
	switch mode {
	case "body-start", "body":
		if target.BodyRange != nil {
			return bodyContentStart(target)
		}
	}
	switch placement {
	case "body-start", "body":
		if target.BodyRange != nil {
			return bodyContentStart(target)
		}
	case "after":
		if target.BodyRange != nil {
			return target.BodyRange.End
		}
		return target.HeaderRange.End
	}
	return target.HeaderRange.Start
}

// bodyContentStart returns the offset just after the body range's
// opening brace, so a body-start insertion lands ahead of the
// original first statement rather than replacing the brace itself.
func bodyContentStart(target locator.Target) int {
	return target.BodyRange.Start + 1
}

// importMutation is one "add <stmt>" or "remove <stmt>" directive
// parsed from an update-imports payload.
type importMutation struct {
	add   bool
	value string
}

func parseImportMutations(payload []string) ([]importMutation, error) {
	var mutations []importMutation
	for _, raw := range stripAddPrefix(payload) {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		cmd, rest, ok := strings.Cut(trimmed, " ")
		if !ok {
			return nil, fmt.Errorf("update-imports lines must be 'add <stmt>' or 'remove <stmt>', got %q", raw)
		}
		value := strings.TrimSpace(rest)
		if value == "" {
			return nil, fmt.Errorf("update-imports line %q is missing a statement", raw)
		}
		switch strings.ToLower(cmd) {
		case "add":
			mutations = append(mutations, importMutation{add: true, value: value})
		case "remove", "rm":
			mutations = append(mutations, importMutation{add: false, value: value})
		default:
			return nil, fmt.Errorf("update-imports command %q must be 'add' or 'remove'", cmd)
		}
	}
	return mutations, nil
}

// importLinePrefixes recognizes the import/use-statement forms seen
// across the locator's supported languages, used to find where
// existing imports end so additions land alongside them instead of
// at the very top of the file.
var importLinePrefixes = []string{"use ", "import ", "#include ", "from "}

func looksLikeImportLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range importLinePrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// planUpdateImports applies each parsed add/remove mutation against
// content: remove deletes any line whose trimmed text equals the
// statement, add appends a clean import line after the last existing
// import line (or at the top of the file when there is none),
// skipping statements already present.
func (p *Planner) planUpdateImports(section parser.Section, content []byte) (OperationSummary, FileEdit, bool) {
	mutations, err := parseImportMutations(section.Payload)
	if err != nil {
		return failure(ActionUpdate, section.Path, err.Error())
	}
	if len(mutations) == 0 {
		return failure(ActionUpdate, section.Path, "update-imports requires 'add <stmt>' or 'remove <stmt>' payload lines")
	}

	lines := strings.Split(string(content), "\n")
	trailingNewline := strings.HasSuffix(string(content), "\n")
	if trailingNewline && len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	present := make(map[string]bool, len(lines))
	for _, l := range lines {
		present[strings.TrimSpace(l)] = true
	}

	var removed, added int
	var kept []string
	for _, l := range lines {
		isRemoved := false
		for _, m := range mutations {
			if !m.add && strings.TrimSpace(l) == m.value {
				isRemoved = true
				break
			}
		}
		if isRemoved {
			removed++
			delete(present, strings.TrimSpace(l))
			continue
		}
		kept = append(kept, l)
	}

	lastImport := -1
	for i, l := range kept {
		if looksLikeImportLine(l) {
			lastImport = i
		}
	}

	var toAdd []string
	for _, m := range mutations {
		if !m.add || present[m.value] {
			continue
		}
		toAdd = append(toAdd, m.value)
		present[m.value] = true
		added++
	}

	var out []string
	if len(toAdd) > 0 {
		out = append(out, kept[:lastImport+1]...)
		out = append(out, toAdd...)
		out = append(out, kept[lastImport+1:]...)
	} else {
		out = kept
	}

	rendered := strings.Join(out, "\n")
	if trailingNewline || rendered != "" {
		rendered += "\n"
	}
	updated := []byte(rendered)

	p.setState(section.Path, updated)
	summary := OperationSummary{Action: ActionUpdate, Path: section.Path, Added: added, Removed: removed, Status: StatusPlanned}
	return summary, FileEdit{Path: section.Path, NewContent: updated}, true
}
