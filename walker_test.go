package callgraph

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/callgraph/syntax"
)

func global(name string) *syntax.Global {
	return &syntax.Global{Name: syntax.QualifiedName{Namespace: "Demo", Name: name}, Pos: syntax.Pos{Line: 1, Col: 1}}
}

func call(callee syntax.Expr, args ...syntax.Expr) *syntax.Call {
	return &syntax.Call{Callee: callee, Args: &syntax.Tuple{Items: args}}
}

func adj(x syntax.Expr) syntax.Expr { return &syntax.AdjointApp{Inner: x} }
func ctl(x syntax.Expr) syntax.Expr { return &syntax.ControlledApp{Inner: x} }

// walkMain builds a graph from a single Demo.Main body holding stmts.
func walkMain(stmts ...syntax.Stmt) *DependencyGraph {
	prog := &syntax.Program{Namespaces: []*syntax.Namespace{{
		Name: "Demo",
		Routines: []*syntax.Routine{{
			Name: syntax.QualifiedName{Namespace: "Demo", Name: "Main"},
			File: "main.qs",
			Specializations: []*syntax.Specialization{
				{Kind: Body, Body: &syntax.Block{Stmts: stmts}},
			},
		}},
	}}}
	return Build(prog)
}

func expr(x syntax.Expr) syntax.Stmt { return &syntax.ExprStmt{X: x} }

// edgeCounts reports Main's edges per callee.
func edgeCounts(g *DependencyGraph) map[CallGraphNode]int {
	out := make(map[CallGraphNode]int)
	for callee, edges := range g.DirectDependencies(body("Main")) {
		out[callee] = len(edges)
	}
	return out
}

func TestWalker_AdjointParity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		callee syntax.Expr
		want   SpecKind
	}{
		{"plain", global("Op"), Body},
		{"one adjoint", adj(global("Op")), Adjoint},
		{"two adjoints cancel", adj(adj(global("Op"))), Body},
		{"three adjoints", adj(adj(adj(global("Op")))), Adjoint},
		{"controlled", ctl(global("Op")), Controlled},
		{"controlled adjoint", ctl(adj(global("Op"))), ControlledAdjoint},
		{"controlled does not cancel", ctl(ctl(global("Op"))), Controlled},
		{"adjoint of doubly controlled", adj(ctl(ctl(global("Op")))), ControlledAdjoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := walkMain(expr(call(tt.callee)))
			assert.Equal(t, map[CallGraphNode]int{spec("Op", tt.want): 1}, edgeCounts(g))
		})
	}
}

func TestWalker_FunctorContextRestoredOnExit(t *testing.T) {
	t.Parallel()
	g := walkMain(expr(&syntax.Tuple{Items: []syntax.Expr{
		call(ctl(adj(global("A")))),
		call(global("B")),
	}}))

	assert.Equal(t, map[CallGraphNode]int{
		spec("A", ControlledAdjoint): 1,
		body("B"):                    1,
	}, edgeCounts(g))
}

func TestWalker_BareValueNeedsEveryKind(t *testing.T) {
	t.Parallel()
	g := walkMain(&syntax.Let{Name: "f", Value: global("Op")})

	assert.Equal(t, map[CallGraphNode]int{
		spec("Op", Body):              1,
		spec("Op", Adjoint):           1,
		spec("Op", Controlled):        1,
		spec("Op", ControlledAdjoint): 1,
	}, edgeCounts(g))
}

func TestWalker_ArgumentsAreValues(t *testing.T) {
	t.Parallel()
	g := walkMain(expr(call(adj(global("ApplyTo")), global("Op"))))

	counts := edgeCounts(g)
	assert.Equal(t, 1, counts[spec("ApplyTo", Adjoint)])
	for _, kind := range syntax.AllKinds {
		assert.Equal(t, 1, counts[spec("Op", kind)], "argument needs %s", kind)
	}
	assert.Len(t, counts, 5)
}

func TestWalker_CalleeFunctorsDoNotReachArguments(t *testing.T) {
	t.Parallel()
	// Adjoint Outer(Inner()): Inner is invoked directly in the argument.
	g := walkMain(expr(call(adj(global("Outer")), call(global("Inner")))))

	counts := edgeCounts(g)
	assert.Equal(t, 1, counts[spec("Outer", Adjoint)])
	assert.Equal(t, 1, counts[body("Inner")])
	assert.Len(t, counts, 2)
}

func TestWalker_ConjugationWalksWithinTwice(t *testing.T) {
	t.Parallel()
	g := walkMain(&syntax.Conjugation{
		Within: &syntax.Block{Stmts: []syntax.Stmt{expr(call(global("Prep")))}},
		Apply:  &syntax.Block{Stmts: []syntax.Stmt{expr(call(global("Work")))}},
	})

	assert.Equal(t, map[CallGraphNode]int{
		body("Prep"):          1,
		spec("Prep", Adjoint): 1,
		body("Work"):          1,
	}, edgeCounts(g))
}

func TestWalker_VisitsNestedStatements(t *testing.T) {
	t.Parallel()
	block := func(s ...syntax.Stmt) *syntax.Block { return &syntax.Block{Stmts: s} }
	g := walkMain(
		&syntax.If{
			Cond: &syntax.Operator{Op: "==", Operands: []syntax.Expr{call(global("Measure")), &syntax.Literal{Value: "0"}}},
			Then: block(expr(call(global("X")))),
			Else: block(&syntax.Return{Value: call(global("Y"))}),
		},
		&syntax.For{Var: "q", Iterable: call(global("Range")), Body: block(expr(call(global("H"))))},
		&syntax.While{Cond: call(global("More")), Body: block(&syntax.Set{Name: "x", Value: call(global("Next"))})},
		&syntax.Repeat{Body: block(expr(call(global("Try")))), Until: call(global("Ok")), Fixup: block(expr(call(global("Reset"))))},
		&syntax.Using{Name: "q", Init: call(global("Alloc")), Body: block(&syntax.Fail{Message: call(global("Msg"))})},
		expr(&syntax.Index{Array: call(global("Arr")), Index: call(global("Idx"))}),
		expr(&syntax.Conditional{Cond: call(global("C")), Then: call(global("T")), Else: call(global("E"))}),
	)

	want := []string{"Measure", "X", "Y", "Range", "H", "More", "Next", "Try", "Ok", "Reset", "Alloc", "Msg", "Arr", "Idx", "C", "T", "E"}
	counts := edgeCounts(g)
	for _, name := range want {
		assert.Equal(t, 1, counts[body(name)], name)
	}
	assert.Len(t, counts, len(want))
}

func TestWalker_UnknownCalleeBecomesLeaf(t *testing.T) {
	t.Parallel()
	g := walkMain(expr(call(global("Undeclared"))))

	require.True(t, g.Contains(body("Undeclared")))
	assert.Empty(t, g.DirectDependencies(body("Undeclared")))
}

func TestWalker_RecordsSiteAndResolutions(t *testing.T) {
	t.Parallel()
	op := global("Op")
	op.Pos = syntax.Pos{Line: 12, Col: 4}
	op.TypeArgs = []syntax.TypeArg{{Param: "T", Type: "Int"}}
	g := walkMain(expr(call(op)))

	edges := g.DirectDependencies(body("Main"))[body("Op")]
	require.Len(t, edges, 1)
	assert.Equal(t, Site{File: "main.qs", Line: 12, Col: 4}, edges[0].Site)
	assert.Equal(t, []syntax.TypeArg{{Param: "T", Type: "Int"}}, edges[0].Resolutions)
}

func TestWalker_SkipsSpecializationsWithoutBody(t *testing.T) {
	t.Parallel()
	prog := &syntax.Program{Namespaces: []*syntax.Namespace{{
		Name: "Demo",
		Routines: []*syntax.Routine{{
			Name: syntax.QualifiedName{Namespace: "Demo", Name: "Intrinsic"},
			Specializations: []*syntax.Specialization{
				{Kind: Body},
				{Kind: Adjoint},
			},
		}},
	}}}

	g := Build(prog)
	assert.Zero(t, g.Len())
}

func TestWalker_SpecializationIdentity(t *testing.T) {
	t.Parallel()
	prog := &syntax.Program{Namespaces: []*syntax.Namespace{{
		Name: "Demo",
		Routines: []*syntax.Routine{{
			Name: syntax.QualifiedName{Namespace: "Demo", Name: "Gen"},
			Specializations: []*syntax.Specialization{{
				Kind:     Controlled,
				TypeArgs: []string{"Int", "Bool"},
				Body:     &syntax.Block{Stmts: []syntax.Stmt{expr(call(global("Op")))}},
			}},
		}},
	}}}

	g := Build(prog)
	caller := spec("Gen", Controlled)
	caller.TypeArgs = "Int, Bool"
	require.True(t, g.Contains(caller))
	assert.Len(t, g.DirectDependencies(caller), 1)
}

func TestBuild_FromDecodedProgram(t *testing.T) {
	t.Parallel()
	const src = `
namespaces:
  - name: Demo
    routines:
      - name: Main
        body:
          - expr: {call: {callee: {controlled: {global: Demo.Op}}, args: [{global: Demo.Helper}]}}
`
	prog, err := syntax.Decode(strings.NewReader(src))
	require.NoError(t, err)

	var buf bytes.Buffer
	g := Build(prog, WithLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))))

	counts := edgeCounts(g)
	assert.Equal(t, 1, counts[spec("Op", Controlled)])
	assert.Equal(t, 1, counts[spec("Helper", ControlledAdjoint)])
	assert.Equal(t, 5, g.EdgeCount())
	assert.Contains(t, buf.String(), "walking specialization")
}
