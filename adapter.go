package callgraph

// indexedGraph relabels a DependencyGraph with dense integers. Labels follow
// CompareNodes, so integer order is the node order used for pivot
// selection. Parallel edges collapse: cycle enumeration is over vertices.
type indexedGraph struct {
	nodes []CallGraphNode
	label map[CallGraphNode]int
	succ  [][]int
}

func newIndexedGraph(g *DependencyGraph) *indexedGraph {
	nodes := g.Nodes()
	ig := &indexedGraph{
		nodes: nodes,
		label: make(map[CallGraphNode]int, len(nodes)),
		succ:  make([][]int, len(nodes)),
	}
	for i, n := range nodes {
		ig.label[n] = i
	}
	for i, n := range nodes {
		// successors are sorted, so labels come out ascending
		for _, callee := range g.successors(n) {
			ig.succ[i] = append(ig.succ[i], ig.label[callee])
		}
	}
	return ig
}

// relabel maps integer vertices back to nodes.
func (ig *indexedGraph) relabel(vertices []int) []CallGraphNode {
	out := make([]CallGraphNode, len(vertices))
	for i, v := range vertices {
		out[i] = ig.nodes[v]
	}
	return out
}
