package locator

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

func init() {
	newEngine(spec{
		tag:        "python",
		extensions: []string{".py"},
		language:   func() *sitter.Language { return sitter.NewLanguage(python.Language()) },
		declKinds: map[string]string{
			"function_definition": "function",
			"class_definition":    "class",
		},
		containerKinds: map[string]string{
			"class_definition": "name",
		},
		methodContainers: map[string]bool{"class_definition": true},
		nameFields:       []string{"name"},
		bodyFields:       []string{"body"},
	})
}
