// Package index implements the Index Store: a persistent snapshot
// mapping files to entries, symbols to records, tokens to file-sets,
// and trigrams to file-sets, replaced wholesale and atomically on
// every rebuild.
package index

// SymbolKind enumerates the declaration kinds the locator and index
// builder can produce.
type SymbolKind string

const (
	KindFunction   SymbolKind = "function"
	KindMethod     SymbolKind = "method"
	KindStruct     SymbolKind = "struct"
	KindEnum       SymbolKind = "enum"
	KindTrait      SymbolKind = "trait"
	KindImpl       SymbolKind = "impl"
	KindModule     SymbolKind = "module"
	KindClass      SymbolKind = "class"
	KindInterface  SymbolKind = "interface"
	KindConstant   SymbolKind = "constant"
	KindTypeAlias  SymbolKind = "type_alias"
	KindTest       SymbolKind = "test"
	KindDocument   SymbolKind = "document"
)

// Category tags a file or symbol with a coarse workspace role.
type Category string

const (
	CategorySource Category = "source"
	CategoryTests  Category = "tests"
	CategoryDocs   Category = "docs"
	CategoryDeps   Category = "deps"
)

// SymbolRecord is a single indexed declaration.
type SymbolRecord struct {
	ID          string
	Identifier  string
	Kind        SymbolKind
	Language    string
	Path        string
	StartLine   int
	EndLine     int
	Module      string
	Layer       string
	Categories  []Category
	Recent      bool
	Preview     string
	DocSummary  string
	Dependencies []string
}

// Fingerprint identifies whether a file's content has genuinely changed.
type Fingerprint struct {
	ModTime int64 // unix nanos, 0 if unavailable
	Size    int64
	Digest  [16]byte // truncated 128-bit content digest
}

// FileEntry is a single indexed file.
type FileEntry struct {
	Path       string
	Language   string
	Categories []Category
	Recent     bool
	SymbolIDs  []string
	Tokens     []string
	Trigrams   []uint32
	LineCount  int
	Fingerprint Fingerprint
	Owners     []string
}

// TextBlock is a compressed slice of a file's text plus the line
// offsets needed to reconstruct snippets without re-reading the file.
type TextBlock struct {
	Compressed  []byte
	LineOffsets []int
}

// Snapshot is a complete, atomic view of a project's index.
type Snapshot struct {
	Symbols       map[string]SymbolRecord
	Files         map[string]FileEntry
	TokenToFiles  map[string]map[string]struct{}
	TrigramToFiles map[uint32]map[string]struct{}
	Text          map[string]TextBlock
}

// NewSnapshot returns an empty, ready-to-populate snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Symbols:        map[string]SymbolRecord{},
		Files:          map[string]FileEntry{},
		TokenToFiles:   map[string]map[string]struct{}{},
		TrigramToFiles: map[uint32]map[string]struct{}{},
		Text:           map[string]TextBlock{},
	}
}

// AddFile inserts a file entry along with its symbols, wiring up the
// token_to_files index as it goes. Callers own fingerprint/token
// extraction (internal/indexbuild); AddFile only maintains invariants.
func (s *Snapshot) AddFile(entry FileEntry, symbols []SymbolRecord) {
	s.Files[entry.Path] = entry
	for _, sym := range symbols {
		s.Symbols[sym.ID] = sym
	}
	for _, tok := range entry.Tokens {
		set, ok := s.TokenToFiles[tok]
		if !ok {
			set = map[string]struct{}{}
			s.TokenToFiles[tok] = set
		}
		set[entry.Path] = struct{}{}
	}
	for _, tg := range entry.Trigrams {
		set, ok := s.TrigramToFiles[tg]
		if !ok {
			set = map[string]struct{}{}
			s.TrigramToFiles[tg] = set
		}
		set[entry.Path] = struct{}{}
	}
}

// Validate checks the consistency invariants from §8 (Index
// consistency): every symbol_id referenced by a FileEntry resolves in
// Symbols, and every token in a FileEntry.Tokens maps the file's path
// in TokenToFiles[token].
func (s *Snapshot) Validate() error {
	for path, entry := range s.Files {
		for _, id := range entry.SymbolIDs {
			if _, ok := s.Symbols[id]; !ok {
				return &ConsistencyError{Path: path, Detail: "symbol_id " + id + " not found in symbols"}
			}
		}
		for _, tok := range entry.Tokens {
			set, ok := s.TokenToFiles[tok]
			if !ok {
				return &ConsistencyError{Path: path, Detail: "token " + tok + " missing from token_to_files"}
			}
			if _, ok := set[path]; !ok {
				return &ConsistencyError{Path: path, Detail: "token " + tok + " does not map back to file"}
			}
		}
	}
	return nil
}

// ConsistencyError reports a broken Snapshot invariant.
type ConsistencyError struct {
	Path   string
	Detail string
}

func (e *ConsistencyError) Error() string {
	return "index: inconsistent snapshot for " + e.Path + ": " + e.Detail
}
