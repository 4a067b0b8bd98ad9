package callgraph

import (
	"log/slog"

	"github.com/jward/callgraph/syntax"
)

// Walker populates a DependencyGraph from compiled specializations. It only
// records dependencies; the tree is never modified.
type Walker struct {
	graph  *DependencyGraph
	logger *slog.Logger
}

// NewWalker returns a Walker that adds edges to g.
func NewWalker(g *DependencyGraph, opts ...Option) *Walker {
	return &Walker{graph: g, logger: newConfig(opts).logger}
}

// Build walks every specialization of prog into a new graph.
func Build(prog *syntax.Program, opts ...Option) *DependencyGraph {
	g := NewDependencyGraph()
	NewWalker(g, opts...).WalkProgram(prog)
	return g
}

// WalkProgram visits each specialization body in prog exactly once.
func (w *Walker) WalkProgram(prog *syntax.Program) {
	if prog == nil {
		return
	}
	for _, ns := range prog.Namespaces {
		for _, r := range ns.Routines {
			for _, spec := range r.Specializations {
				w.WalkSpecialization(r, spec)
			}
		}
	}
	w.logger.Debug("call graph built", "nodes", w.graph.Len(), "edges", w.graph.EdgeCount())
}

// WalkSpecialization records the dependencies of one specialization.
// Specializations without a body are skipped.
func (w *Walker) WalkSpecialization(r *syntax.Routine, spec *syntax.Specialization) {
	if spec.Body == nil {
		return
	}
	caller := CallGraphNode{
		Routine:  r.Name,
		Kind:     spec.Kind,
		TypeArgs: NewTypeArgs(spec.TypeArgs),
	}
	w.logger.Debug("walking specialization", "node", caller.String(), "statements", len(spec.Body.Stmts))
	w.block(walkContext{caller: caller, file: r.File}, spec.Body)
}

// walkContext is the state carried down the tree. It is passed by value,
// so every nested construct restores its parent's state on return.
type walkContext struct {
	caller     CallGraphNode
	file       string
	inCall     bool
	adjoint    bool
	controlled bool
}

// value drops call position; functor context still applies to nested calls.
func (c walkContext) value() walkContext {
	c.inCall = false
	return c
}

func (w *Walker) block(c walkContext, b *syntax.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		w.stmt(c, s)
	}
}

func (w *Walker) stmt(c walkContext, s syntax.Stmt) {
	c = c.value()
	switch s := s.(type) {
	case *syntax.ExprStmt:
		w.expr(c, s.X)
	case *syntax.Let:
		w.expr(c, s.Value)
	case *syntax.Set:
		w.expr(c, s.Value)
	case *syntax.Return:
		w.expr(c, s.Value)
	case *syntax.Fail:
		w.expr(c, s.Message)
	case *syntax.If:
		w.expr(c, s.Cond)
		w.block(c, s.Then)
		w.block(c, s.Else)
	case *syntax.For:
		w.expr(c, s.Iterable)
		w.block(c, s.Body)
	case *syntax.While:
		w.expr(c, s.Cond)
		w.block(c, s.Body)
	case *syntax.Repeat:
		w.block(c, s.Body)
		w.expr(c, s.Until)
		w.block(c, s.Fixup)
	case *syntax.Conjugation:
		// The within block also runs inverted after apply.
		w.block(c, s.Within)
		inverted := c
		inverted.adjoint = !inverted.adjoint
		w.block(inverted, s.Within)
		w.block(c, s.Apply)
	case *syntax.Using:
		w.expr(c, s.Init)
		w.block(c, s.Body)
	}
}

func (w *Walker) expr(c walkContext, x syntax.Expr) {
	switch x := x.(type) {
	case nil:
	case *syntax.Call:
		callee := c
		callee.inCall = true
		w.expr(callee, x.Callee)
		w.expr(c.value(), x.Args)
	case *syntax.AdjointApp:
		c.adjoint = !c.adjoint
		w.expr(c, x.Inner)
	case *syntax.ControlledApp:
		c.controlled = true
		w.expr(c, x.Inner)
	case *syntax.Global:
		w.reference(c, x)
	case *syntax.Tuple:
		for _, item := range x.Items {
			w.expr(c, item)
		}
	case *syntax.Array:
		for _, item := range x.Items {
			w.expr(c, item)
		}
	case *syntax.Index:
		w.expr(c, x.Array)
		w.expr(c.value(), x.Index)
	case *syntax.Conditional:
		w.expr(c.value(), x.Cond)
		w.expr(c, x.Then)
		w.expr(c, x.Else)
	case *syntax.Operator:
		for _, op := range x.Operands {
			w.expr(c.value(), op)
		}
	case *syntax.Local, *syntax.Literal, *syntax.Missing:
	}
}

// reference records the dependency created by naming a global routine. A
// direct invocation needs exactly the specialization selected by the functor
// context. A bare value may have any functor applied to it later, so every
// specialization is required.
func (w *Walker) reference(c walkContext, g *syntax.Global) {
	edge := CallGraphEdge{
		Site:        Site{File: c.file, Line: g.Pos.Line, Col: g.Pos.Col},
		Resolutions: g.TypeArgs,
	}
	if c.inCall {
		callee := CallGraphNode{Routine: g.Name, Kind: syntax.KindFor(c.adjoint, c.controlled)}
		w.graph.AddDependency(c.caller, callee, edge)
		return
	}
	for _, kind := range syntax.AllKinds {
		w.graph.AddDependency(c.caller, CallGraphNode{Routine: g.Name, Kind: kind}, edge)
	}
}
