package locator

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

func init() {
	newEngine(spec{
		tag:        "cpp",
		extensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".h", ".hh"},
		language:   func() *sitter.Language { return sitter.NewLanguage(cpp.Language()) },
		declKinds: map[string]string{
			"function_definition": "function",
			"struct_specifier":    "struct",
			"class_specifier":     "class",
			"enum_specifier":      "enum",
			"namespace_definition": "module",
		},
		containerKinds: map[string]string{
			"class_specifier":      "name",
			"struct_specifier":     "name",
			"namespace_definition": "name",
		},
		methodContainers: map[string]bool{"class_specifier": true, "struct_specifier": true},
		// C++ declarations carry declarator noise (pointers, references,
		// templates), so names are matched by containment rather than
		// equality; "declarator" is tried before "name" since
		// function_definition has no direct name field.
		nameFields: []string{"declarator", "name"},
		bodyFields: []string{"body"},
		containment: true,
	})
}
