package callgraph

import "slices"

// Component is one strongly connected component.
type Component[N any] struct {
	// Min is the least member under the order the components were computed with.
	Min N
	// Nodes holds the members in ascending order.
	Nodes []N
	// Cyclic is true when the component contains a cycle: it has more than
	// one member, or its single member has an edge to itself.
	Cyclic bool
}

// tarjanFrame is one suspended strongConnect call.
type tarjanFrame[N comparable] struct {
	node N
	succ []N
	next int
}

// StronglyConnectedComponents runs Tarjan's algorithm over the graph given by
// nodes and successors. Components come out in reverse topological order:
// every component reachable from C is emitted before C. compare must be a
// total order; it selects each component's Min.
//
// The search keeps its own frame stack instead of recursing, so deep call
// chains cannot exhaust the goroutine stack. Visitation order and low-link
// bookkeeping match the recursive formulation.
func StronglyConnectedComponents[N comparable](nodes []N, successors func(N) []N, compare func(a, b N) int) []Component[N] {
	var (
		counter int
		index   = make(map[N]int)
		lowlink = make(map[N]int)
		onStack = make(map[N]bool)
		stack   []N
		frames  []tarjanFrame[N]
		result  []Component[N]
	)

	enter := func(v N) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
		frames = append(frames, tarjanFrame[N]{node: v, succ: successors(v)})
	}

	for _, root := range nodes {
		if _, visited := index[root]; visited {
			continue
		}
		enter(root)

		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			if f.next < len(f.succ) {
				w := f.succ[f.next]
				f.next++
				if _, visited := index[w]; !visited {
					enter(w)
				} else if onStack[w] {
					lowlink[f.node] = min(lowlink[f.node], index[w])
				}
				continue
			}

			v := f.node
			selfLoop := slices.Contains(f.succ, v)
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := frames[len(frames)-1].node
				lowlink[parent] = min(lowlink[parent], lowlink[v])
			}
			if lowlink[v] != index[v] {
				continue
			}

			var members []N
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				members = append(members, w)
				if w == v {
					break
				}
			}
			slices.SortFunc(members, compare)
			result = append(result, Component[N]{
				Min:    members[0],
				Nodes:  members,
				Cyclic: len(members) > 1 || selfLoop,
			})
		}
	}
	return result
}
