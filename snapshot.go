package callgraph

import (
	"fmt"

	"github.com/jward/callgraph/internal/store"
	"github.com/jward/callgraph/syntax"
)

// SaveGraph writes g to s, replacing any stored snapshot. Node IDs follow
// CompareNodes order starting at 1.
func SaveGraph(s *Store, g *DependencyGraph) error {
	return saveGraph(s, g, nil)
}

// saveGraph is SaveGraph that also writes meta in the snapshot's transaction.
func saveGraph(s *Store, g *DependencyGraph, meta map[string]string) error {
	nodes := g.Nodes()
	ids := make(map[CallGraphNode]int64, len(nodes))
	rows := make([]*store.Node, len(nodes))
	for i, n := range nodes {
		ids[n] = int64(i + 1)
		rows[i] = nodeToRow(ids[n], n)
	}

	var edges []*store.Edge
	for _, caller := range nodes {
		for _, callee := range g.successors(caller) {
			for _, e := range g.deps[caller][callee] {
				edges = append(edges, &store.Edge{
					CallerID:    ids[caller],
					CalleeID:    ids[callee],
					File:        e.Site.File,
					Line:        e.Site.Line,
					Col:         e.Site.Col,
					Resolutions: resolutionsToRows(e.Resolutions),
				})
			}
		}
	}

	if err := s.ReplaceGraph(rows, edges, meta); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	return nil
}

// LoadGraph reads the stored snapshot back into a DependencyGraph.
func LoadGraph(s *Store) (*DependencyGraph, error) {
	byID, err := loadNodes(s)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	edges, err := s.AllEdges()
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}

	g := NewDependencyGraph()
	for _, e := range edges {
		caller, ok := byID[e.CallerID]
		if !ok {
			return nil, fmt.Errorf("load graph: edge %d: unknown caller %d", e.ID, e.CallerID)
		}
		callee, ok := byID[e.CalleeID]
		if !ok {
			return nil, fmt.Errorf("load graph: edge %d: unknown callee %d", e.ID, e.CalleeID)
		}
		g.AddDependency(caller, callee, CallGraphEdge{
			Site:        Site{File: e.File, Line: e.Line, Col: e.Col},
			Resolutions: rowsToResolutions(e.Resolutions),
		})
	}
	return g, nil
}

// SaveCycles stores cycles against the snapshot currently in s. Every node
// of every cycle must be part of that snapshot.
func SaveCycles(s *Store, cycles [][]CallGraphNode) error {
	byID, err := loadNodes(s)
	if err != nil {
		return fmt.Errorf("save cycles: %w", err)
	}
	ids := make(map[CallGraphNode]int64, len(byID))
	for id, n := range byID {
		ids[n] = id
	}

	rows := make([]store.Cycle, len(cycles))
	for i, c := range cycles {
		for _, n := range c {
			id, ok := ids[n]
			if !ok {
				return fmt.Errorf("save cycles: %s is not in the stored graph", n)
			}
			rows[i] = append(rows[i], id)
		}
	}
	if err := s.ReplaceCycles(rows); err != nil {
		return fmt.Errorf("save cycles: %w", err)
	}
	return nil
}

// LoadCycles returns the cycles last saved with SaveCycles.
func LoadCycles(s *Store) ([][]CallGraphNode, error) {
	byID, err := loadNodes(s)
	if err != nil {
		return nil, fmt.Errorf("load cycles: %w", err)
	}
	rows, err := s.AllCycles()
	if err != nil {
		return nil, fmt.Errorf("load cycles: %w", err)
	}
	out := make([][]CallGraphNode, len(rows))
	for i, c := range rows {
		for _, id := range c {
			out[i] = append(out[i], byID[id])
		}
	}
	return out, nil
}

func loadNodes(s *Store) (map[int64]CallGraphNode, error) {
	rows, err := s.AllNodes()
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]CallGraphNode, len(rows))
	for _, r := range rows {
		n, err := rowToNode(r)
		if err != nil {
			return nil, err
		}
		byID[r.ID] = n
	}
	return byID, nil
}

func nodeToRow(id int64, n CallGraphNode) *store.Node {
	return &store.Node{
		ID:       id,
		Routine:  n.Routine.String(),
		Kind:     n.Kind.String(),
		TypeArgs: string(n.TypeArgs),
	}
}

func rowToNode(r *store.Node) (CallGraphNode, error) {
	name, err := syntax.ParseQualifiedName(r.Routine)
	if err != nil {
		return CallGraphNode{}, fmt.Errorf("node %d: %w", r.ID, err)
	}
	kind, err := syntax.ParseSpecKind(r.Kind)
	if err != nil {
		return CallGraphNode{}, fmt.Errorf("node %d: %w", r.ID, err)
	}
	return CallGraphNode{Routine: name, Kind: kind, TypeArgs: TypeArgs(r.TypeArgs)}, nil
}

func resolutionsToRows(res []syntax.TypeArg) []store.Resolution {
	if len(res) == 0 {
		return nil
	}
	out := make([]store.Resolution, len(res))
	for i, r := range res {
		out[i] = store.Resolution{Param: r.Param, Type: r.Type}
	}
	return out
}

func rowsToResolutions(rows []store.Resolution) []syntax.TypeArg {
	if len(rows) == 0 {
		return nil
	}
	out := make([]syntax.TypeArg, len(rows))
	for i, r := range rows {
		out[i] = syntax.TypeArg{Param: r.Param, Type: r.Type}
	}
	return out
}
