package depgraph_test

import (
	"testing"

	"github.com/codenav/navcore/internal/depgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependenciesOf(t *testing.T) {
	g := depgraph.New()
	g.AddImport("main.go", "util.go")
	g.AddImport("main.go", "config.go")

	deps := g.DependenciesOf("main.go")
	assert.ElementsMatch(t, []string{"util.go", "config.go"}, deps)
}

func TestImpactedFollowsImportsBackward(t *testing.T) {
	g := depgraph.New()
	g.AddImport("main.go", "util.go")
	g.AddImport("handler.go", "util.go")

	impacted, err := g.Impacted("util.go")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main.go", "handler.go"}, impacted)
}

func TestAddFileWithoutEdgesIsSafe(t *testing.T) {
	g := depgraph.New()
	g.AddFile("isolated.go")
	assert.Empty(t, g.DependenciesOf("isolated.go"))
}
