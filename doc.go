// Package callgraph builds the dependency graph between routine
// specializations of a compiled program and analyzes its recursion.
//
// # Model
//
// A node is one specialization of a routine: its qualified name, a
// [SpecKind] (body, adjoint, controlled or controlled adjoint) and its
// type arguments. An edge records one call or reference site. Edges between
// the same pair of nodes are kept individually, so the graph is a
// multigraph.
//
// # Building
//
// A [Walker] visits every specialization body and records what it needs. A
// routine named in call position needs the specialization selected by the
// functor applications around it. A routine used as a value needs all four
// specializations.
//
//	prog, err := syntax.DecodeFile("program.yaml")
//	if err != nil { ... }
//	g := callgraph.Build(prog)
//
// # Analysis
//
//   - [DependencyGraph.Components] returns strongly connected components in
//     reverse topological order.
//   - [DependencyGraph.Cycles] enumerates every elementary cycle.
//   - [DependencyGraph.AllDependencies] returns the routines reachable from
//     a node with the kind each requires.
//
// # Persistence
//
// An [Engine] stores snapshots in SQLite:
//
//	e, err := callgraph.New("graph.db")
//	if err != nil { ... }
//	defer e.Close()
//
//	g, err := e.BuildFile("program.yaml")
//	cycles, err := e.Cycles()
//
// Every build replaces the previous snapshot and stamps it with a new random
// ID, available from [Engine.Snapshot].
package callgraph
