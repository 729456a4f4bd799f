package locator

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

func init() {
	newEngine(spec{
		tag:        "go",
		extensions: []string{".go"},
		language:   func() *sitter.Language { return sitter.NewLanguage(golang.Language()) },
		declKinds: map[string]string{
			"function_declaration": "function",
			"method_declaration":   "method",
			"type_spec":            "type_alias",
			"const_spec":           "constant",
		},
		nameFields: []string{"name"},
		bodyFields: []string{"body"},
		refineKind: func(node *sitter.Node) (string, bool) {
			if node.Kind() != "type_spec" {
				return "", false
			}
			t := node.ChildByFieldName("type")
			if t == nil {
				return "", false
			}
			switch t.Kind() {
			case "struct_type":
				return "struct", true
			case "interface_type":
				return "interface", true
			}
			return "type_alias", true
		},
	})
}
