package locator

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	bash "github.com/tree-sitter/tree-sitter-bash/bindings/go"
)

func init() {
	newEngine(spec{
		tag:        "shell",
		extensions: []string{".sh", ".bash"},
		language:   func() *sitter.Language { return sitter.NewLanguage(bash.Language()) },
		declKinds: map[string]string{
			"function_definition": "function",
		},
		nameFields: []string{"name"},
		bodyFields: []string{"body"},
	})
}
