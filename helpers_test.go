package callgraph

import (
	"slices"
	"strings"

	"github.com/jward/callgraph/syntax"
)

func body(name string) CallGraphNode {
	return CallGraphNode{Routine: syntax.QualifiedName{Namespace: "Demo", Name: name}}
}

func spec(name string, kind SpecKind) CallGraphNode {
	n := body(name)
	n.Kind = kind
	return n
}

// graphOf builds a body-only graph from "Caller->Callee" pairs.
func graphOf(edges ...string) *DependencyGraph {
	g := NewDependencyGraph()
	for _, e := range edges {
		from, to, _ := strings.Cut(e, "->")
		g.AddDependency(body(from), body(to), CallGraphEdge{})
	}
	return g
}

// cycleKeys canonicalizes cycles as rotation-independent strings so tests
// compare sets of cyclic sequences.
func cycleKeys(cycles [][]CallGraphNode) []string {
	keys := make([]string, len(cycles))
	for i, c := range cycles {
		least := 0
		for j := range c {
			if CompareNodes(c[j], c[least]) < 0 {
				least = j
			}
		}
		names := make([]string, len(c))
		for j := range c {
			names[j] = c[(least+j)%len(c)].Routine.Name
		}
		keys[i] = strings.Join(names, ",")
	}
	slices.Sort(keys)
	return keys
}
