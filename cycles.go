package callgraph

import (
	"cmp"
	"slices"
)

// Cycles enumerates every elementary cycle of the graph exactly once using
// Johnson's algorithm. Each cycle starts at its least member under
// CompareNodes and lists the members in path order; a self-recursive
// specialization is a one-node cycle.
//
// The number of elementary cycles can grow exponentially with graph
// density. Call this for diagnostics, not on a hot path.
func (g *DependencyGraph) Cycles() [][]CallGraphNode {
	ig := newIndexedGraph(g)
	raw := elementaryCycles(ig.succ)
	out := make([][]CallGraphNode, len(raw))
	for i, c := range raw {
		out[i] = ig.relabel(c)
	}
	return out
}

// elementaryCycles is Johnson's algorithm over vertices 0..len(succ)-1.
func elementaryCycles(succ [][]int) [][]int {
	all := make([]int, len(succ))
	member := make([]bool, len(succ))
	for v := range all {
		all[v] = v
		member[v] = true
	}

	var cycles [][]int
	work := pushComponents(nil, cyclicComponents(all, succ, member))
	clear(member)
	for len(work) > 0 {
		comp := work[len(work)-1]
		work = work[:len(work)-1]

		for _, v := range comp.Nodes {
			member[v] = true
		}
		s := comp.Min
		cycles = append(cycles, circuits(s, succ, member)...)

		// Drop the pivot and split what is left.
		member[s] = false
		rest := comp.Nodes[1:]
		work = pushComponents(work, cyclicComponents(rest, succ, member))
		for _, v := range rest {
			member[v] = false
		}
	}
	return cycles
}

// cyclicComponents returns the components of the subgraph induced by member
// that can contain a cycle.
func cyclicComponents(vertices []int, succ [][]int, member []bool) []Component[int] {
	induced := func(v int) []int {
		var out []int
		for _, w := range succ[v] {
			if member[w] {
				out = append(out, w)
			}
		}
		return out
	}
	var out []Component[int]
	for _, c := range StronglyConnectedComponents(vertices, induced, cmp.Compare[int]) {
		if c.Cyclic {
			out = append(out, c)
		}
	}
	return out
}

// pushComponents pushes comps onto the work stack so the one with the
// smallest Min is popped first.
func pushComponents(work, comps []Component[int]) []Component[int] {
	slices.SortFunc(comps, func(a, b Component[int]) int { return cmp.Compare(b.Min, a.Min) })
	return append(work, comps...)
}

// circuitFrame is one suspended call of Johnson's CIRCUIT procedure.
type circuitFrame struct {
	v     int
	succ  []int
	next  int
	found bool
}

// circuits finds every elementary cycle through s inside the subgraph
// induced by member, using Johnson's blocking discipline.
func circuits(s int, succ [][]int, member []bool) [][]int {
	var (
		cycles  [][]int
		path    []int
		frames  []circuitFrame
		blocked = make(map[int]bool)
		// blockedOn[w] holds vertices waiting for w to be unblocked.
		blockedOn = make(map[int]map[int]bool)
	)

	unblock := func(u int) {
		blocked[u] = false
		pending := []int{u}
		for len(pending) > 0 {
			x := pending[len(pending)-1]
			pending = pending[:len(pending)-1]
			for w := range blockedOn[x] {
				if blocked[w] {
					blocked[w] = false
					pending = append(pending, w)
				}
			}
			delete(blockedOn, x)
		}
	}

	enter := func(v int) {
		blocked[v] = true
		path = append(path, v)
		var next []int
		for _, w := range succ[v] {
			if member[w] {
				next = append(next, w)
			}
		}
		frames = append(frames, circuitFrame{v: v, succ: next})
	}

	enter(s)
	for len(frames) > 0 {
		f := &frames[len(frames)-1]
		if f.next < len(f.succ) {
			w := f.succ[f.next]
			f.next++
			if w == s {
				cycles = append(cycles, slices.Clone(path))
				f.found = true
			} else if !blocked[w] {
				enter(w)
			}
			continue
		}

		if f.found {
			unblock(f.v)
		} else {
			for _, w := range f.succ {
				if blockedOn[w] == nil {
					blockedOn[w] = make(map[int]bool)
				}
				blockedOn[w][f.v] = true
			}
		}
		found := f.found
		frames = frames[:len(frames)-1]
		path = path[:len(path)-1]
		if found && len(frames) > 0 {
			frames[len(frames)-1].found = true
		}
	}
	return cycles
}
