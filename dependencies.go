package callgraph

import (
	"errors"
	"fmt"
)

// ErrUnresolvedGenerics is returned by AllDependencies when the closure passes
// through a call site that instantiates type parameters. Node identities do
// not yet carry concrete instantiations, so such a closure is unknown, not
// empty.
var ErrUnresolvedGenerics = errors.New("transitive dependencies through generic call sites are not resolved")

// AllDependencies returns every routine reachable from node, each tagged with
// the strongest specialization kind required of it along any path (the join
// of all kinds reached, see SpecKind.Join). node's own routine appears only
// when some path reaches one of its specializations. Unknown nodes yield an
// empty map.
//
// If any traversed edge carries type-parameter resolutions the result would
// be incomplete, and ErrUnresolvedGenerics is returned instead.
func (g *DependencyGraph) AllDependencies(node CallGraphNode) (map[RoutineRef]SpecKind, error) {
	result := make(map[RoutineRef]SpecKind)
	if !g.Contains(node) {
		return result, nil
	}

	visited := map[CallGraphNode]bool{node: true}
	queue := []CallGraphNode{node}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, callee := range g.successors(current) {
			for _, edge := range g.deps[current][callee] {
				if len(edge.Resolutions) > 0 {
					return nil, fmt.Errorf("all dependencies of %s: %s -> %s: %w", node, current, callee, ErrUnresolvedGenerics)
				}
			}
			ref := callee.Ref()
			result[ref] = result[ref].Join(callee.Kind)
			if !visited[callee] {
				visited[callee] = true
				queue = append(queue, callee)
			}
		}
	}
	return result, nil
}
