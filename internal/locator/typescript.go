package locator

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

func init() {
	declKinds := map[string]string{
		"function_declaration":  "function",
		"method_definition":     "method",
		"class_declaration":     "class",
		"interface_declaration": "interface",
		"type_alias_declaration": "type_alias",
		"enum_declaration":      "enum",
	}
	containerKinds := map[string]string{
		"class_declaration":     "name",
		"interface_declaration": "name",
	}
	methodContainers := map[string]bool{"class_declaration": true, "interface_declaration": true}

	newEngine(spec{
		tag:              "typescript",
		extensions:       []string{".ts"},
		language:         func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTypescript()) },
		declKinds:        declKinds,
		containerKinds:   containerKinds,
		methodContainers: methodContainers,
		nameFields:       []string{"name"},
		bodyFields:       []string{"body"},
	})

	newEngine(spec{
		tag:              "tsx",
		extensions:       []string{".tsx"},
		language:         func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTSX()) },
		declKinds:        declKinds,
		containerKinds:   containerKinds,
		methodContainers: methodContainers,
		nameFields:       []string{"name"},
		bodyFields:       []string{"body"},
	})
}
