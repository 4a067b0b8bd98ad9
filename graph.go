package callgraph

import (
	"maps"
	"slices"
)

// DependencyGraph is a directed multigraph between routine specializations.
// Every node that appears as a callee is also a key of deps, so the node set
// is exactly the key set. The graph is built once by a Walker and is
// read-only afterwards; it is not safe for concurrent mutation.
type DependencyGraph struct {
	deps  map[CallGraphNode]map[CallGraphNode][]CallGraphEdge
	edges int
}

// NewDependencyGraph returns an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{deps: make(map[CallGraphNode]map[CallGraphNode][]CallGraphEdge)}
}

// AddDependency appends edge to the caller -> callee list. Identical edges
// are kept, one per call.
func (g *DependencyGraph) AddDependency(caller, callee CallGraphNode, edge CallGraphEdge) {
	targets, ok := g.deps[caller]
	if !ok {
		targets = make(map[CallGraphNode][]CallGraphEdge)
		g.deps[caller] = targets
	}
	targets[callee] = append(targets[callee], edge)
	if _, ok := g.deps[callee]; !ok {
		g.deps[callee] = make(map[CallGraphNode][]CallGraphEdge)
	}
	g.edges++
}

// DirectDependencies returns a copy of node's outgoing edges grouped by
// callee. Unknown nodes yield an empty map.
func (g *DependencyGraph) DirectDependencies(node CallGraphNode) map[CallGraphNode][]CallGraphEdge {
	targets := g.deps[node]
	out := make(map[CallGraphNode][]CallGraphEdge, len(targets))
	for callee, edges := range targets {
		out[callee] = slices.Clone(edges)
	}
	return out
}

// Contains reports whether node appears in the graph as caller or callee.
func (g *DependencyGraph) Contains(node CallGraphNode) bool {
	_, ok := g.deps[node]
	return ok
}

// Nodes returns every node in ascending CompareNodes order.
func (g *DependencyGraph) Nodes() []CallGraphNode {
	return slices.SortedFunc(maps.Keys(g.deps), CompareNodes)
}

// Len is the number of nodes.
func (g *DependencyGraph) Len() int {
	return len(g.deps)
}

// EdgeCount is the number of recorded edges, counting duplicates.
func (g *DependencyGraph) EdgeCount() int {
	return g.edges
}

// successors returns node's distinct callees in ascending order.
func (g *DependencyGraph) successors(node CallGraphNode) []CallGraphNode {
	return slices.SortedFunc(maps.Keys(g.deps[node]), CompareNodes)
}

// Components returns the strongly connected components of the graph in
// reverse topological order: a component is listed after every component
// reachable from it.
func (g *DependencyGraph) Components() []Component[CallGraphNode] {
	return StronglyConnectedComponents(g.Nodes(), g.successors, CompareNodes)
}
