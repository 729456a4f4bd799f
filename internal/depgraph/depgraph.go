// Package depgraph builds a per-snapshot file-level import dependency
// graph. The index builder adds one vertex per indexed file and no
// import edges; SymbolRecord.dependencies is not filled from it.
package depgraph

import (
	"github.com/dominikbraun/graph"
)

// Graph is a directed file-import graph: an edge path -> dep means
// path imports dep.
type Graph struct {
	g graph.Graph[string, string]
}

// New builds an empty dependency graph.
func New() *Graph {
	return &Graph{g: graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())}
}

// AddFile registers a file as a vertex if it is not already known.
func (d *Graph) AddFile(path string) {
	_ = d.g.AddVertex(path)
}

// AddImport records that from imports to. Both vertices are created if
// absent. Edges that would introduce a cycle are dropped rather than
// erroring, since import cycles are legal in several source languages
// even though this graph represents them as acyclic for dependency
// ranking purposes.
func (d *Graph) AddImport(from, to string) {
	_ = d.g.AddVertex(from)
	_ = d.g.AddVertex(to)
	_ = d.g.AddEdge(from, to)
}

// DependenciesOf returns the files that path directly imports.
func (d *Graph) DependenciesOf(path string) []string {
	edges, err := d.g.Edges()
	if err != nil {
		return nil
	}
	var deps []string
	for _, e := range edges {
		if e.Source == path {
			deps = append(deps, e.Target)
		}
	}
	return deps
}

// Impacted returns every file reachable by following import edges
// backward from path — i.e. every file that, transitively, imports
// path and would be worth re-checking after path changes.
func (d *Graph) Impacted(path string) ([]string, error) {
	pm, err := d.g.PredecessorMap()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var queue []string
	for pred := range pm[path] {
		queue = append(queue, pred)
	}
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		for pred := range pm[cur] {
			queue = append(queue, pred)
		}
	}
	return out, nil
}
