package locator

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

func init() {
	newEngine(spec{
		tag:        "rust",
		extensions: []string{".rs"},
		language:   func() *sitter.Language { return sitter.NewLanguage(rust.Language()) },
		declKinds: map[string]string{
			"function_item":  "function",
			"struct_item":    "struct",
			"enum_item":      "enum",
			"trait_item":     "trait",
			"impl_item":      "impl",
			"const_item":     "constant",
			"static_item":    "constant",
			"type_item":      "type_alias",
			"mod_item":       "module",
		},
		containerKinds: map[string]string{
			"impl_item": "type",
			"mod_item":  "name",
			"trait_item": "name",
		},
		methodContainers: map[string]bool{"impl_item": true, "trait_item": true},
	})
}
