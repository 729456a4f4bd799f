// Package indexbuild implements the Index Builder: it walks a project
// respecting the path filter, extracts tokens/trigrams/fingerprints per
// file, invokes the syntax locator's per-language extractors, and
// assembles a fresh index.Snapshot.
package indexbuild

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/codenav/navcore/internal/depgraph"
	"github.com/codenav/navcore/internal/index"
	"github.com/codenav/navcore/internal/pathfilter"
	"github.com/schollz/progressbar/v3"
	"lukechampine.com/blake3"
)

const maxFileSize = 2 << 20 // 2 MiB
const maxTokensPerFile = 256
const minTokenLength = 3

var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

var smallKeywords = map[string]bool{
	"the": true, "and": true, "for": true, "var": true, "let": true,
	"def": true, "end": true, "if": true, "else": true, "import": true,
	"from": true, "return": true, "func": true, "type": true, "int": true,
}

var languageByExt = map[string]string{
	".go": "go", ".rs": "rust", ".py": "python",
	".ts": "typescript", ".tsx": "tsx",
	".js": "javascript", ".jsx": "javascript", ".mjs": "javascript", ".cjs": "javascript",
	".cpp": "cpp", ".cc": "cpp", ".cxx": "cpp", ".hpp": "cpp", ".h": "cpp", ".hh": "cpp",
	".sh": "shell", ".bash": "shell",
	".md": "markdown", ".toml": "toml", ".yaml": "yaml", ".yml": "yaml", ".json": "json",
}

// SymbolExtractor produces candidate symbol records for a single file's
// contents. internal/locator's per-language engines are adapted to this
// shape by the caller (internal/indexbuild does not import locator
// directly so it can also index languages that only contribute tokens).
type SymbolExtractor func(path, language string, source []byte) []index.SymbolRecord

// Options configures a single build.
type Options struct {
	Root         string
	Filter       *pathfilter.Filter
	Extract      SymbolExtractor
	RecentPaths  map[string]bool
	ShowProgress bool
}

// Result bundles the built snapshot with a file-level graph holding
// one vertex per indexed file; Build adds no import edges to it (see
// internal/depgraph).
type Result struct {
	Snapshot *index.Snapshot
	Graph    *depgraph.Graph
}

// Build walks Root and produces a fresh snapshot. Determinism: the same
// (bytes, language) input for a given file always yields the same
// symbol ids and token set, since both derive solely from the file's
// path and content.
func Build(ctx context.Context, opts Options) (Result, error) {
	paths, err := collectPaths(opts.Root, opts.Filter)
	if err != nil {
		return Result{}, err
	}

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.Default(int64(len(paths)), "indexing")
	}

	snap := index.NewSnapshot()
	graph := depgraph.New()

	for _, rel := range paths {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		abs := filepath.Join(opts.Root, rel)
		entry, symbols, ok := indexFile(abs, rel, opts)
		if ok {
			snap.AddFile(entry, symbols)
			graph.AddFile(rel)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	return Result{Snapshot: snap, Graph: graph}, nil
}

func collectPaths(root string, filter *pathfilter.Filter) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if filter != nil && filter.IsIgnoredRel(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func indexFile(abs, rel string, opts Options) (index.FileEntry, []index.SymbolRecord, bool) {
	info, err := os.Stat(abs)
	if err != nil || info.Size() > maxFileSize {
		return index.FileEntry{}, nil, false
	}

	data, err := os.ReadFile(abs)
	if err != nil || !utf8.Valid(data) {
		return index.FileEntry{}, nil, false
	}

	language := languageFor(rel)
	tokens := extractTokens(data)
	digest := blake3.Sum256(data)
	var digest16 [16]byte
	copy(digest16[:], digest[:16])

	var symbols []index.SymbolRecord
	if opts.Extract != nil && language != "" {
		symbols = opts.Extract(rel, language, data)
	}

	symbolIDs := make([]string, 0, len(symbols))
	for i := range symbols {
		symbols[i].Path = rel
		symbols[i].Language = language
		symbols[i].Categories = categoriesFor(rel)
		symbols[i].Recent = opts.RecentPaths[rel]
		symbolIDs = append(symbolIDs, symbols[i].ID)
	}

	entry := index.FileEntry{
		Path:       rel,
		Language:   language,
		Categories: categoriesFor(rel),
		Recent:     opts.RecentPaths[rel],
		SymbolIDs:  symbolIDs,
		Tokens:     tokens,
		LineCount:  strings.Count(string(data), "\n") + 1,
		Fingerprint: index.Fingerprint{
			ModTime: info.ModTime().UnixNano(),
			Size:    info.Size(),
			Digest:  digest16,
		},
	}
	return entry, symbols, true
}

func languageFor(path string) string {
	return languageByExt[strings.ToLower(filepath.Ext(path))]
}

func categoriesFor(path string) []index.Category {
	lower := strings.ToLower(path)
	var cats []index.Category
	switch {
	case strings.Contains(lower, "test") || strings.HasSuffix(lower, "_test.go") || strings.Contains(lower, "/tests/"):
		cats = append(cats, index.CategoryTests)
	case strings.HasSuffix(lower, ".md") || strings.Contains(lower, "/docs/"):
		cats = append(cats, index.CategoryDocs)
	case strings.Contains(lower, "/deps/") || strings.Contains(lower, "/dependencies/") ||
		strings.HasSuffix(lower, "cargo.toml") || strings.HasSuffix(lower, "package.json"):
		cats = append(cats, index.CategoryDeps)
	default:
		cats = append(cats, index.CategorySource)
	}
	return cats
}

// extractTokens pulls up to maxTokensPerFile unique lowercased
// identifier-like substrings of length >= minTokenLength, excluding a
// small keyword set.
func extractTokens(data []byte) []string {
	seen := map[string]bool{}
	var out []string
	for _, match := range identifierPattern.FindAllString(string(data), -1) {
		if len(out) >= maxTokensPerFile {
			break
		}
		lower := strings.ToLower(match)
		if len(lower) < minTokenLength || smallKeywords[lower] || seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, lower)
	}
	sort.Strings(out)
	return out
}
