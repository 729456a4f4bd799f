// Package symbolpath implements SymbolPath: an ordered, "::"-separated
// sequence of non-empty segments identifying a nested declaration, e.g.
// "Outer::Inner::method".
package symbolpath

import "strings"

const separator = "::"

// Path is an ordered sequence of non-empty segments.
type Path struct {
	segments []string
}

// New builds a Path from individual segments. Empty segments are dropped.
func New(segments ...string) Path {
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			out = append(out, s)
		}
	}
	return Path{segments: out}
}

// Parse splits a "a::b::c" display string into a Path.
func Parse(s string) Path {
	if s == "" {
		return Path{}
	}
	return New(strings.Split(s, separator)...)
}

// Segments returns the path's segments. The returned slice must not be mutated.
func (p Path) Segments() []string { return p.segments }

// Len reports the number of segments.
func (p Path) Len() int { return len(p.segments) }

// Empty reports whether the path has no segments.
func (p Path) Empty() bool { return len(p.segments) == 0 }

// Last returns the final segment, or "" for an empty path.
func (p Path) Last() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// ParentSegments returns every segment except the last.
func (p Path) ParentSegments() []string {
	if len(p.segments) <= 1 {
		return nil
	}
	parent := make([]string, len(p.segments)-1)
	copy(parent, p.segments[:len(p.segments)-1])
	return parent
}

// Parent returns the Path formed by dropping the last segment.
func (p Path) Parent() Path {
	return Path{segments: p.ParentSegments()}
}

// ReplaceLast returns a new Path with its final segment replaced by name.
// If p is empty, the result is a single-segment Path{name}.
func (p Path) ReplaceLast(name string) Path {
	if len(p.segments) == 0 {
		return New(name)
	}
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	out[len(out)-1] = name
	return Path{segments: out}
}

// Append returns a new Path with name appended as a final segment.
func (p Path) Append(name string) Path {
	out := make([]string, 0, len(p.segments)+1)
	out = append(out, p.segments...)
	out = append(out, name)
	return Path{segments: out}
}

// Display renders the path as "a::b::c".
func (p Path) Display() string {
	return strings.Join(p.segments, separator)
}

func (p Path) String() string { return p.Display() }

// Equal reports whether two paths have identical segments in order.
func (p Path) Equal(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}
