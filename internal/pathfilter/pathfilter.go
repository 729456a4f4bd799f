// Package pathfilter implements gitignore-aware path inclusion
// decisions used both to prune the index builder's walk and to
// suppress rebuilds when a watch event touches only ignored paths.
package pathfilter

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

var builtinIgnores = []string{
	"target/",
	".git/",
	"node_modules/",
}

// rule is one compiled ignore pattern plus whether it negates a prior match.
type rule struct {
	g        glob.Glob
	negate   bool
	dirOnly  bool
	raw      string
}

// Filter decides whether a workspace-relative path should be excluded
// from crawling and watching.
type Filter struct {
	root  string
	rules []rule
}

// New builds a Filter for the project rooted at root, loading
// .gitignore and .codexignore from root if present, in addition to the
// built-in ignore set.
func New(root string) (*Filter, error) {
	f := &Filter{root: root}
	for _, pat := range builtinIgnores {
		f.addPattern(pat)
	}
	for _, name := range []string{".gitignore", ".codexignore"} {
		if err := f.loadFile(filepath.Join(root, name)); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Filter) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f.addPattern(line)
	}
	return scanner.Err()
}

func (f *Filter) addPattern(pattern string) {
	negate := strings.HasPrefix(pattern, "!")
	if negate {
		pattern = pattern[1:]
	}
	dirOnly := strings.HasSuffix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")

	compiled := pattern
	if !strings.Contains(compiled, "/") {
		compiled = "{,**/}" + compiled
	}
	if !strings.HasSuffix(compiled, "*") {
		compiled = compiled + "{,/**}"
	}

	g, err := glob.Compile(compiled, '/')
	if err != nil {
		return
	}
	f.rules = append(f.rules, rule{g: g, negate: negate, dirOnly: dirOnly, raw: pattern})
}

// IsIgnoredPath reports whether an absolute or root-relative path
// should be excluded. isDir indicates whether path names a directory.
func (f *Filter) IsIgnoredPath(path string, isDir bool) bool {
	rel, err := filepath.Rel(f.root, path)
	if err != nil {
		rel = path
	}
	return f.IsIgnoredRel(filepath.ToSlash(rel), isDir)
}

// IsIgnoredRel reports whether a workspace-relative, forward-slash path
// should be excluded. isDir indicates whether the path names a directory.
func (f *Filter) IsIgnoredRel(relative string, isDir bool) bool {
	relative = strings.TrimPrefix(relative, "/")
	ignored := false
	for _, r := range f.rules {
		if r.g.Match(relative) {
			ignored = !r.negate
		}
	}
	return ignored
}
