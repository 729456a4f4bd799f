package symbolpath_test

import (
	"testing"

	"github.com/codenav/navcore/internal/symbolpath"
	"github.com/stretchr/testify/assert"
)

func TestParseAndDisplayRoundTrip(t *testing.T) {
	p := symbolpath.Parse("Outer::Inner::method")
	assert.Equal(t, "Outer::Inner::method", p.Display())
	assert.Equal(t, []string{"Outer", "Inner", "method"}, p.Segments())
}

func TestLast(t *testing.T) {
	assert.Equal(t, "method", symbolpath.Parse("Outer::Inner::method").Last())
	assert.Equal(t, "", symbolpath.Path{}.Last())
}

func TestParentSegments(t *testing.T) {
	p := symbolpath.Parse("Outer::Inner::method")
	assert.Equal(t, []string{"Outer", "Inner"}, p.ParentSegments())
	assert.Nil(t, symbolpath.New("solo").ParentSegments())
}

func TestReplaceLast(t *testing.T) {
	p := symbolpath.Parse("Outer::Inner::method")
	replaced := p.ReplaceLast("renamed")
	assert.Equal(t, "Outer::Inner::renamed", replaced.Display())
	// original is untouched
	assert.Equal(t, "Outer::Inner::method", p.Display())
}

func TestReplaceLastOnEmptyPath(t *testing.T) {
	p := symbolpath.Path{}
	assert.Equal(t, "solo", p.ReplaceLast("solo").Display())
}

func TestAppend(t *testing.T) {
	p := symbolpath.New("Outer").Append("Inner").Append("method")
	assert.Equal(t, "Outer::Inner::method", p.Display())
}

func TestEmptySegmentsDropped(t *testing.T) {
	p := symbolpath.New("a", "", "b")
	assert.Equal(t, []string{"a", "b"}, p.Segments())
}

func TestEqual(t *testing.T) {
	a := symbolpath.Parse("a::b")
	b := symbolpath.New("a", "b")
	c := symbolpath.Parse("a::c")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
