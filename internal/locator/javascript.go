package locator

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

func init() {
	newEngine(spec{
		tag:        "javascript",
		extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
		language:   func() *sitter.Language { return sitter.NewLanguage(javascript.Language()) },
		declKinds: map[string]string{
			"function_declaration": "function",
			"method_definition":    "method",
			"class_declaration":    "class",
		},
		containerKinds: map[string]string{
			"class_declaration": "name",
		},
		methodContainers: map[string]bool{"class_declaration": true},
		nameFields:       []string{"name"},
		bodyFields:       []string{"body"},
	})
}
