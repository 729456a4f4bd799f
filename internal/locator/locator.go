// Package locator implements the Syntax Locator: given source text, a
// language tag, and a symbol path, it returns byte ranges for the
// header, body, and name of the matching declaration. It is shared by
// the patch planner (symbol resolution) and the chunker (semantic
// chunk boundaries).
package locator

import (
	"fmt"

	"github.com/codenav/navcore/internal/symbolpath"
)

// ByteRange is a half-open [Start, End) byte offset range into source text.
type ByteRange struct {
	Start int
	End   int
}

// Len reports the number of bytes covered by the range.
func (r ByteRange) Len() int { return r.End - r.Start }

// Slice returns the bytes of src covered by r.
func (r ByteRange) Slice(src []byte) []byte { return src[r.Start:r.End] }

// Target describes a located declaration.
type Target struct {
	Language    string
	HeaderRange ByteRange
	BodyRange   *ByteRange
	SymbolPath  symbolpath.Path
	SymbolKind  string
	NameRange   ByteRange
}

// ResolutionStatus tags the outcome of a locate call.
type ResolutionStatus int

const (
	StatusMatch ResolutionStatus = iota
	StatusNotFound
	StatusUnsupported
)

// Resolution is the tagged variant Match(Target) | NotFound{reason} | Unsupported{reason}.
type Resolution struct {
	status ResolutionStatus
	reason string
	target Target
}

func matchResolution(t Target) Resolution {
	return Resolution{status: StatusMatch, target: t}
}

func notFound(reason string) Resolution {
	return Resolution{status: StatusNotFound, reason: reason}
}

func unsupported(reason string) Resolution {
	return Resolution{status: StatusUnsupported, reason: reason}
}

// IsMatch reports whether the resolution found a target.
func (r Resolution) IsMatch() bool { return r.status == StatusMatch }

// IsNotFound reports whether the resolution is a NotFound variant.
func (r Resolution) IsNotFound() bool { return r.status == StatusNotFound }

// IsUnsupported reports whether the resolution is an Unsupported variant.
func (r Resolution) IsUnsupported() bool { return r.status == StatusUnsupported }

// Target returns the matched target and true, or the zero value and false.
func (r Resolution) Target() (Target, bool) {
	if r.status != StatusMatch {
		return Target{}, false
	}
	return r.target, true
}

// Reason returns the NotFound/Unsupported explanation, or "" for a Match.
func (r Resolution) Reason() string { return r.reason }

func (r Resolution) String() string {
	switch r.status {
	case StatusMatch:
		return fmt.Sprintf("Match(%s %s)", r.target.SymbolKind, r.target.SymbolPath.Display())
	case StatusUnsupported:
		return fmt.Sprintf("Unsupported(%s)", r.reason)
	default:
		return fmt.Sprintf("NotFound(%s)", r.reason)
	}
}

// Locator is implemented by each language variant.
type Locator interface {
	Language() string
	Extensions() []string
	Locate(source []byte, symbol symbolpath.Path) Resolution
	// Declarations walks source once and returns every declaration it
	// finds, in document order. It is the bulk counterpart to Locate,
	// used by the index builder to extract a file's symbols without
	// probing one candidate name at a time.
	Declarations(source []byte) []Target
}

var registry = map[string]Locator{}
var byExtension = map[string]Locator{}

func register(l Locator) {
	registry[l.Language()] = l
	for _, ext := range l.Extensions() {
		byExtension[ext] = l
	}
}

// ByLanguage returns the Locator registered for tag, or nil.
func ByLanguage(tag string) Locator { return registry[tag] }

// ByExtension returns the Locator registered for a file extension
// (including the leading dot, e.g. ".go"), or nil.
func ByExtension(ext string) Locator { return byExtension[ext] }

// All returns every registered Locator.
func All() []Locator {
	out := make([]Locator, 0, len(registry))
	for _, l := range registry {
		out = append(out, l)
	}
	return out
}
