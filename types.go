package callgraph

import (
	"github.com/jward/callgraph/internal/store"
	"github.com/jward/callgraph/syntax"
)

// Public type aliases so callers do not need to import syntax or the
// internal store for the common cases.

type SpecKind = syntax.SpecKind
type Store = store.Store

const (
	Body              = syntax.Body
	Adjoint           = syntax.Adjoint
	Controlled        = syntax.Controlled
	ControlledAdjoint = syntax.ControlledAdjoint
)
