package callgraph

import (
	"cmp"
	"strings"

	"github.com/jward/callgraph/syntax"
)

// TypeArgs is the canonical rendering of a resolved type-argument list,
// e.g. "Int, (Qubit, Bool)". The zero value means no type arguments. Kept as
// a string so CallGraphNode stays comparable.
type TypeArgs string

// NewTypeArgs renders a type-argument list.
func NewTypeArgs(args []string) TypeArgs {
	return TypeArgs(strings.Join(args, ", "))
}

// CallGraphNode identifies one specialization of a routine.
type CallGraphNode struct {
	Routine  syntax.QualifiedName
	Kind     SpecKind
	TypeArgs TypeArgs
}

func (n CallGraphNode) String() string {
	var b strings.Builder
	b.WriteString(n.Routine.String())
	if n.TypeArgs != "" {
		b.WriteString("<")
		b.WriteString(string(n.TypeArgs))
		b.WriteString(">")
	}
	if n.Kind != syntax.Body {
		b.WriteString(" (")
		b.WriteString(n.Kind.String())
		b.WriteString(")")
	}
	return b.String()
}

// CompareNodes is the total order on nodes: routine name, kind, then type
// arguments.
func CompareNodes(a, b CallGraphNode) int {
	if c := a.Routine.Compare(b.Routine); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	return strings.Compare(string(a.TypeArgs), string(b.TypeArgs))
}

// RoutineRef identifies a routine independent of its specialization kind.
type RoutineRef struct {
	Routine  syntax.QualifiedName
	TypeArgs TypeArgs
}

// Ref drops the specialization kind from n.
func (n CallGraphNode) Ref() RoutineRef {
	return RoutineRef{Routine: n.Routine, TypeArgs: n.TypeArgs}
}

// Site is the source location of a call or reference.
type Site struct {
	File string
	Line int
	Col  int
}

// CallGraphEdge is one recorded reason a caller depends on a callee. The
// type-parameter resolutions written at the site are carried as-is; they
// are not yet applied to the callee's identity.
type CallGraphEdge struct {
	Site        Site
	Resolutions []syntax.TypeArg
}
