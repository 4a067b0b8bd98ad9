// Package syntax defines the compiled-program tree consumed by the call graph
// builder. The tree is produced by an upstream front end after name
// resolution and type checking; this package only models the parts the
// dependency walk reads and can decode them from YAML or JSON program files.
package syntax

import (
	"fmt"
	"strings"
)

// QualifiedName is a namespace-qualified routine name.
type QualifiedName struct {
	Namespace string
	Name      string
}

// ParseQualifiedName splits "Ns.Sub.Name" at the last dot.
func ParseQualifiedName(s string) (QualifiedName, error) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return QualifiedName{}, fmt.Errorf("qualified name %q: expected Namespace.Name", s)
	}
	return QualifiedName{Namespace: s[:i], Name: s[i+1:]}, nil
}

func (q QualifiedName) String() string {
	return q.Namespace + "." + q.Name
}

// Compare orders names by namespace, then name.
func (q QualifiedName) Compare(other QualifiedName) int {
	if c := strings.Compare(q.Namespace, other.Namespace); c != 0 {
		return c
	}
	return strings.Compare(q.Name, other.Name)
}

// SpecKind is one variant of a routine's implementation. The values form a
// bit set: bit 0 is the adjoint functor, bit 1 the controlled functor.
type SpecKind uint8

const (
	Body              SpecKind = 0
	Adjoint           SpecKind = 1
	Controlled        SpecKind = 2
	ControlledAdjoint SpecKind = Adjoint | Controlled
)

// AllKinds lists every specialization kind in ascending order.
var AllKinds = [...]SpecKind{Body, Adjoint, Controlled, ControlledAdjoint}

// KindFor maps a functor context to the specialization it selects.
func KindFor(adjoint, controlled bool) SpecKind {
	var k SpecKind
	if adjoint {
		k |= Adjoint
	}
	if controlled {
		k |= Controlled
	}
	return k
}

// Join returns the weakest kind that requires both k and other.
func (k SpecKind) Join(other SpecKind) SpecKind {
	return k | other
}

func (k SpecKind) String() string {
	switch k {
	case Body:
		return "body"
	case Adjoint:
		return "adjoint"
	case Controlled:
		return "controlled"
	case ControlledAdjoint:
		return "controlled-adjoint"
	}
	return fmt.Sprintf("SpecKind(%d)", uint8(k))
}

// ParseSpecKind is the inverse of SpecKind.String. It also accepts the
// compact spellings "adj", "ctl" and "ctladj".
func ParseSpecKind(s string) (SpecKind, error) {
	switch strings.ToLower(s) {
	case "body", "":
		return Body, nil
	case "adjoint", "adj":
		return Adjoint, nil
	case "controlled", "ctl":
		return Controlled, nil
	case "controlled-adjoint", "controlledadjoint", "ctladj":
		return ControlledAdjoint, nil
	}
	return Body, fmt.Errorf("unknown specialization kind %q", s)
}

// Program is a compiled program: every namespace in the compilation.
type Program struct {
	Namespaces []*Namespace
}

type Namespace struct {
	Name     string
	Routines []*Routine
}

// Routine is a callable declaration decomposed into its specializations.
type Routine struct {
	Name            QualifiedName
	File            string
	Specializations []*Specialization
}

// Specialization carries the body of one routine variant. Body is nil for
// intrinsic or generated specializations; those are never walked.
type Specialization struct {
	Kind     SpecKind
	TypeArgs []string
	Body     *Block
}

// Pos is a source position, 1-based. The zero value means unknown.
type Pos struct {
	Line int
	Col  int
}

// TypeArg pairs a type parameter with the type written for it at a
// reference site.
type TypeArg struct {
	Param string
	Type  string
}
