package locator

import (
	"strings"
	"sync"

	"github.com/codenav/navcore/internal/symbolpath"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// spec captures everything a language variant needs to drive the shared
// walk-and-match algorithm: which node kinds are candidate declarations,
// which node kinds establish a named scope for parent-segment matching,
// and how to pull a name/body out of a matched node.
type spec struct {
	tag        string
	extensions []string
	language   func() *sitter.Language

	// declKinds maps a tree-sitter node kind to the symbol kind it
	// represents (e.g. "function_item" -> "function").
	declKinds map[string]string

	// containerKinds maps a tree-sitter node kind that introduces a
	// named scope (impl block, class, module) to the field used to
	// recover its name; containers also act as declaration candidates
	// when their kind additionally appears in declKinds.
	containerKinds map[string]string // node kind -> field name holding the container's own name

	// containment, when true, matches names by substring containment
	// instead of equality (used for C++ to tolerate declarator noise
	// from pointers/references/templates).
	containment bool

	// methodContainers marks container kinds (impl blocks, class
	// bodies) whose direct function-like children should be reported
	// as symbol kind "method" instead of whatever declKinds says.
	methodContainers map[string]bool

	// nameFields is tried in order to extract a declaration's name.
	nameFields []string
	// bodyFields is tried in order to extract a declaration's body range.
	bodyFields []string

	// refineKind, when set, lets a variant pick a more specific symbol
	// kind than declKinds' static mapping by inspecting the matched
	// node (e.g. Go's type_spec is "struct", "interface", or
	// "type_alias" depending on its type child).
	refineKind func(node *sitter.Node) (kind string, ok bool)
}

func defaultSpec(s spec) spec {
	if len(s.nameFields) == 0 {
		s.nameFields = []string{"name", "declarator", "key", "property"}
	}
	if len(s.bodyFields) == 0 {
		s.bodyFields = []string{"body", "block", "suite"}
	}
	return s
}

// engine is the shared tree-sitter-backed Locator implementation driven
// by a spec. Each language file constructs one and registers it.
type engine struct {
	spec spec
	mu   sync.Mutex // serializes parse calls; each call creates and closes its own parser, none is shared
}

func newEngine(s spec) *engine {
	e := &engine{spec: defaultSpec(s)}
	register(e)
	return e
}

func (e *engine) Language() string     { return e.spec.tag }
func (e *engine) Extensions() []string { return e.spec.extensions }

func (e *engine) Locate(source []byte, symbol symbolpath.Path) Resolution {
	if symbol.Empty() {
		return notFound("empty symbol path")
	}

	e.mu.Lock()
	tree, ok := e.parse(source)
	e.mu.Unlock()
	if !ok {
		return unsupported("failed to parse source")
	}
	defer tree.Close()

	root := tree.RootNode()
	last := symbol.Last()
	parents := symbol.ParentSegments()

	var found *Target
	e.walk(root, source, walkState{}, func(node *sitter.Node, state walkState) bool {
		if found != nil {
			return false
		}
		kind, isDecl := e.spec.declKinds[node.Kind()]
		if !isDecl {
			return true
		}
		name, nameRange, ok := e.extractName(node, source)
		if !ok {
			return true
		}
		if !e.namesMatch(name, last) {
			return true
		}
		if !ancestorsMatch(state.names, parents) {
			return true
		}
		if len(state.kinds) > 0 && e.spec.methodContainers[state.kinds[len(state.kinds)-1]] {
			kind = "method"
		}
		if e.spec.refineKind != nil {
			if refined, ok := e.spec.refineKind(node); ok {
				kind = refined
			}
		}
		header := ByteRange{Start: int(node.StartByte()), End: int(node.EndByte())}
		var body *ByteRange
		if b := firstField(node, e.spec.bodyFields); b != nil {
			body = &ByteRange{Start: int(b.StartByte()), End: int(b.EndByte())}
		}
		found = &Target{
			Language:    e.spec.tag,
			HeaderRange: header,
			BodyRange:   body,
			SymbolPath:  symbol,
			SymbolKind:  kind,
			NameRange:   nameRange,
		}
		return false
	})

	if found == nil {
		return notFound("symbol '" + last + "' not found")
	}
	return matchResolution(*found)
}

// Declarations walks source once and returns every node matching
// declKinds, in document order, with its symbol path reconstructed
// from the ancestor container chain.
func (e *engine) Declarations(source []byte) []Target {
	e.mu.Lock()
	tree, ok := e.parse(source)
	e.mu.Unlock()
	if !ok {
		return nil
	}
	defer tree.Close()

	var out []Target
	e.walk(tree.RootNode(), source, walkState{}, func(node *sitter.Node, state walkState) bool {
		kind, isDecl := e.spec.declKinds[node.Kind()]
		if !isDecl {
			return true
		}
		name, nameRange, ok := e.extractName(node, source)
		if !ok || name == "" {
			return true
		}
		if len(state.kinds) > 0 && e.spec.methodContainers[state.kinds[len(state.kinds)-1]] {
			kind = "method"
		}
		if e.spec.refineKind != nil {
			if refined, ok := e.spec.refineKind(node); ok {
				kind = refined
			}
		}
		path := symbolpath.New(append(append([]string{}, state.names...), name)...)
		var body *ByteRange
		if b := firstField(node, e.spec.bodyFields); b != nil {
			body = &ByteRange{Start: int(b.StartByte()), End: int(b.EndByte())}
		}
		out = append(out, Target{
			Language:    e.spec.tag,
			HeaderRange: ByteRange{Start: int(node.StartByte()), End: int(node.EndByte())},
			BodyRange:   body,
			SymbolPath:  path,
			SymbolKind:  kind,
			NameRange:   nameRange,
		})
		return true
	})
	return out
}

// parse runs a fresh tree-sitter parser over source. Must be called
// with e.mu held; the parser itself is not safe for concurrent use.
func (e *engine) parse(source []byte) (*sitter.Tree, bool) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(e.spec.language())

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, false
	}
	return tree, true
}

// walkState threads the ancestor chain of named containers (impl
// blocks, classes, modules) seen so far during the traversal, in
// top-down order, alongside their node kinds.
type walkState struct {
	names []string
	kinds []string
}

// walk performs a depth-first traversal, threading a stack of ancestor
// container names so candidate nodes can be matched against parent
// segments. visit returns false to stop descending into node's children
// (used once a match is found).
func (e *engine) walk(node *sitter.Node, source []byte, state walkState, visit func(node *sitter.Node, state walkState) bool) {
	if node == nil {
		return
	}
	if !visit(node, state) {
		return
	}

	next := state
	if field, isContainer := e.spec.containerKinds[node.Kind()]; isContainer {
		if name := fieldText(node, field, source); name != "" {
			next = walkState{
				names: append(append([]string{}, state.names...), name),
				kinds: append(append([]string{}, state.kinds...), node.Kind()),
			}
		}
	}

	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		child := node.Child(uint(i))
		e.walk(child, source, next, visit)
	}
}

func (e *engine) extractName(node *sitter.Node, source []byte) (string, ByteRange, bool) {
	if n := firstField(node, e.spec.nameFields); n != nil {
		return nodeText(n, source), ByteRange{Start: int(n.StartByte()), End: int(n.EndByte())}, true
	}
	// Fall back to the type field, stripping generics/where-clause noise.
	if t := node.ChildByFieldName("type"); t != nil {
		raw := nodeText(t, source)
		stripped := stripGenerics(raw)
		return stripped, ByteRange{Start: int(t.StartByte()), End: int(t.EndByte())}, true
	}
	return "", ByteRange{}, false
}

func (e *engine) namesMatch(candidate, want string) bool {
	if e.spec.containment {
		return strings.Contains(candidate, want)
	}
	return candidate == want
}

// ancestorsMatch reports whether the last len(parents) entries of
// ancestors, in order, equal parents exactly.
func ancestorsMatch(ancestors, parents []string) bool {
	if len(parents) == 0 {
		return true
	}
	if len(ancestors) < len(parents) {
		return false
	}
	tail := ancestors[len(ancestors)-len(parents):]
	for i := range parents {
		if tail[i] != parents[i] {
			return false
		}
	}
	return true
}

func firstField(node *sitter.Node, fields []string) *sitter.Node {
	for _, f := range fields {
		if n := node.ChildByFieldName(f); n != nil {
			return n
		}
	}
	return nil
}

func fieldText(node *sitter.Node, field string, source []byte) string {
	n := node.ChildByFieldName(field)
	if n == nil {
		return ""
	}
	return nodeText(n, source)
}

func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// stripGenerics trims a trailing "<...>" type-parameter list and a
// leading "where ..." clause from a raw type-field rendering.
func stripGenerics(raw string) string {
	s := raw
	if idx := strings.Index(s, "where "); idx >= 0 {
		s = s[:idx]
	}
	if idx := strings.IndexByte(s, '<'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
