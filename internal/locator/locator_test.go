package locator_test

import (
	"testing"

	"github.com/codenav/navcore/internal/locator"
	"github.com/codenav/navcore/internal/symbolpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoLocatesTopLevelFunction(t *testing.T) {
	src := []byte("package main\n\nfunc Greet(name string) string {\n\treturn \"hi \" + name\n}\n")

	l := locator.ByExtension(".go")
	require.NotNil(t, l)

	res := l.Locate(src, symbolpath.Parse("Greet"))
	require.True(t, res.IsMatch(), res.String())

	target, ok := res.Target()
	require.True(t, ok)
	assert.Equal(t, "function", target.SymbolKind)
	assert.Equal(t, "Greet", string(src[target.NameRange.Start:target.NameRange.End]))
	require.NotNil(t, target.BodyRange)
}

func TestGoLocatesMethodOnReceiver(t *testing.T) {
	src := []byte("package main\n\ntype Counter struct{ n int }\n\nfunc (c *Counter) Inc() {\n\tc.n++\n}\n")

	l := locator.ByLanguage("go")
	require.NotNil(t, l)

	res := l.Locate(src, symbolpath.Parse("Inc"))
	require.True(t, res.IsMatch())
	target, _ := res.Target()
	assert.Equal(t, "method", target.SymbolKind)
}

func TestGoNotFound(t *testing.T) {
	src := []byte("package main\n\nfunc Greet() {}\n")
	l := locator.ByLanguage("go")

	res := l.Locate(src, symbolpath.Parse("Missing"))
	assert.True(t, res.IsNotFound())
	assert.Contains(t, res.Reason(), "Missing")
}

func TestEmptySymbolPathIsNotFound(t *testing.T) {
	l := locator.ByLanguage("go")
	res := l.Locate([]byte("package main\n"), symbolpath.Path{})
	assert.True(t, res.IsNotFound())
	assert.Equal(t, "empty symbol path", res.Reason())
}

func TestPythonLocatesMethodInsideClass(t *testing.T) {
	src := []byte("class Widget:\n    def render(self):\n        return 1\n")

	l := locator.ByLanguage("python")
	require.NotNil(t, l)

	res := l.Locate(src, symbolpath.Parse("Widget::render"))
	require.True(t, res.IsMatch(), res.String())
	target, _ := res.Target()
	assert.Equal(t, "method", target.SymbolKind)
}

func TestPythonWrongParentIsNotFound(t *testing.T) {
	src := []byte("class Widget:\n    def render(self):\n        return 1\n")

	l := locator.ByLanguage("python")
	res := l.Locate(src, symbolpath.Parse("OtherClass::render"))
	assert.True(t, res.IsNotFound())
}

func TestRustStructAndMethod(t *testing.T) {
	src := []byte("struct Point { x: i32, y: i32 }\n\nimpl Point {\n    fn magnitude(&self) -> f64 { 0.0 }\n}\n")

	l := locator.ByLanguage("rust")
	require.NotNil(t, l)

	structRes := l.Locate(src, symbolpath.Parse("Point"))
	require.True(t, structRes.IsMatch())
	st, _ := structRes.Target()
	assert.Equal(t, "struct", st.SymbolKind)

	methodRes := l.Locate(src, symbolpath.Parse("Point::magnitude"))
	require.True(t, methodRes.IsMatch(), methodRes.String())
	m, _ := methodRes.Target()
	assert.Equal(t, "method", m.SymbolKind)
}

func TestByExtensionUnknownReturnsNil(t *testing.T) {
	assert.Nil(t, locator.ByExtension(".unknownlang"))
}

func TestDeclarationsWalksWholeFile(t *testing.T) {
	src := []byte("package main\n\nfunc A() {}\n\nfunc B() {}\n\ntype T struct{}\n")

	l := locator.ByLanguage("go")
	decls := l.Declarations(src)

	names := make([]string, 0, len(decls))
	for _, d := range decls {
		names = append(names, d.SymbolPath.Display())
	}
	assert.Contains(t, names, "A")
	assert.Contains(t, names, "B")
	assert.Contains(t, names, "T")
}

func TestDeclarationsNestsParentSegments(t *testing.T) {
	src := []byte("class Widget:\n    def render(self):\n        return 1\n")

	l := locator.ByLanguage("python")
	decls := l.Declarations(src)

	var found bool
	for _, d := range decls {
		if d.SymbolPath.Display() == "Widget::render" {
			found = true
		}
	}
	assert.True(t, found)
}
