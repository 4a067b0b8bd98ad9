package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDependency_KeepsCalleesAsKeys(t *testing.T) {
	t.Parallel()
	g := graphOf("Foo->Bar", "Bar->Baz")

	require.True(t, g.Contains(body("Baz")), "leaf callee must be a node")
	assert.Empty(t, g.DirectDependencies(body("Baz")))
	assert.Equal(t, []CallGraphNode{body("Bar"), body("Baz"), body("Foo")}, g.Nodes())
	assert.Equal(t, 3, g.Len())
}

func TestAddDependency_PreservesMultiplicity(t *testing.T) {
	t.Parallel()
	g := NewDependencyGraph()
	edge := CallGraphEdge{Site: Site{File: "demo.qs", Line: 3, Col: 5}}
	g.AddDependency(body("Foo"), body("Bar"), edge)
	g.AddDependency(body("Foo"), body("Bar"), edge)

	deps := g.DirectDependencies(body("Foo"))
	require.Len(t, deps, 1)
	assert.Equal(t, []CallGraphEdge{edge, edge}, deps[body("Bar")])
	assert.Equal(t, 2, g.EdgeCount())
}

func TestDirectDependencies_UnknownNodeIsEmpty(t *testing.T) {
	t.Parallel()
	g := graphOf("Foo->Bar")

	deps := g.DirectDependencies(body("Nope"))
	assert.NotNil(t, deps)
	assert.Empty(t, deps)
	assert.False(t, g.Contains(body("Nope")))
}

func TestDirectDependencies_ReturnsCopy(t *testing.T) {
	t.Parallel()
	g := graphOf("Foo->Bar")

	deps := g.DirectDependencies(body("Foo"))
	deps[body("Bar")] = append(deps[body("Bar")], CallGraphEdge{})
	delete(deps, body("Bar"))

	assert.Len(t, g.DirectDependencies(body("Foo"))[body("Bar")], 1)
	assert.Equal(t, 1, g.EdgeCount())
}

func TestCompareNodes_OrdersNameKindTypeArgs(t *testing.T) {
	t.Parallel()
	a := body("A")
	aAdj := spec("A", Adjoint)
	aInt := body("A")
	aInt.TypeArgs = NewTypeArgs([]string{"Int"})

	assert.Negative(t, CompareNodes(a, body("B")))
	assert.Negative(t, CompareNodes(a, aAdj))
	assert.Negative(t, CompareNodes(a, aInt))
	assert.Negative(t, CompareNodes(aInt, aAdj), "kind orders before type arguments")
	assert.Zero(t, CompareNodes(a, body("A")))
}

func TestCallGraphNode_String(t *testing.T) {
	t.Parallel()
	n := spec("Foo", ControlledAdjoint)
	n.TypeArgs = NewTypeArgs([]string{"Int", "(Qubit, Bool)"})

	assert.Equal(t, "Demo.Foo", body("Foo").String())
	assert.Equal(t, "Demo.Foo<Int, (Qubit, Bool)> (controlled-adjoint)", n.String())
}
