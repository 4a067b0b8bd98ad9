package syntax

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProgram = `
namespaces:
  - name: Demo
    routines:
      - name: Foo
        file: demo.qs
        specializations:
          - kind: body
            body:
              - let: {name: q, value: {call: {callee: {global: Demo.Alloc}}}}
              - expr: {call: {callee: {adjoint: {global: Demo.Bar}}, args: [{local: q}, 1]}}
              - conjugate:
                  within:
                    - expr: {call: {callee: {global: Demo.Prep}, args: [{local: q}]}}
                  apply:
                    - return: {global: {name: Demo.Baz, type_args: {T: Int}}}
          - kind: adjoint
      - name: Other.Ns.Bar
        body:
          - if:
              cond: {op: {op: "==", operands: [{local: x}, 0]}}
              then: [{fail: "zero"}]
`

func TestDecode_ParsesRoutinesAndSpecializations(t *testing.T) {
	t.Parallel()
	prog, err := Decode(strings.NewReader(sampleProgram))
	require.NoError(t, err)
	require.Len(t, prog.Namespaces, 1)

	ns := prog.Namespaces[0]
	assert.Equal(t, "Demo", ns.Name)
	require.Len(t, ns.Routines, 2)

	foo := ns.Routines[0]
	assert.Equal(t, QualifiedName{Namespace: "Demo", Name: "Foo"}, foo.Name)
	assert.Equal(t, "demo.qs", foo.File)
	require.Len(t, foo.Specializations, 2)
	assert.Equal(t, Body, foo.Specializations[0].Kind)
	assert.Equal(t, Adjoint, foo.Specializations[1].Kind)
	assert.Nil(t, foo.Specializations[1].Body, "specialization without body is intrinsic")

	body := foo.Specializations[0].Body
	require.Len(t, body.Stmts, 3)

	let, ok := body.Stmts[0].(*Let)
	require.True(t, ok)
	assert.Equal(t, "q", let.Name)
	call, ok := let.Value.(*Call)
	require.True(t, ok)
	assert.Equal(t, &Tuple{}, call.Args, "missing args decode as the empty tuple")

	es, ok := body.Stmts[1].(*ExprStmt)
	require.True(t, ok)
	call, ok = es.X.(*Call)
	require.True(t, ok)
	adj, ok := call.Callee.(*AdjointApp)
	require.True(t, ok)
	g, ok := adj.Inner.(*Global)
	require.True(t, ok)
	assert.Equal(t, "Demo.Bar", g.Name.String())
	assert.Positive(t, g.Pos.Line)
	args, ok := call.Args.(*Tuple)
	require.True(t, ok)
	assert.Equal(t, []Expr{&Local{Name: "q"}, &Literal{Value: "1"}}, args.Items)

	conj, ok := body.Stmts[2].(*Conjugation)
	require.True(t, ok)
	require.Len(t, conj.Within.Stmts, 1)
	ret, ok := conj.Apply.Stmts[0].(*Return)
	require.True(t, ok)
	baz, ok := ret.Value.(*Global)
	require.True(t, ok)
	assert.Equal(t, []TypeArg{{Param: "T", Type: "Int"}}, baz.TypeArgs)

	bar := ns.Routines[1]
	assert.Equal(t, QualifiedName{Namespace: "Other.Ns", Name: "Bar"}, bar.Name)
	require.Len(t, bar.Specializations, 1)
	assert.Equal(t, Body, bar.Specializations[0].Kind)
	ifs, ok := bar.Specializations[0].Body.Stmts[0].(*If)
	require.True(t, ok)
	assert.Nil(t, ifs.Else)
	require.Len(t, ifs.Then.Stmts, 1)
}

func TestDecode_BodyLists(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		src   string
		kinds []SpecKind
		stmts []int // statements per specialization; -1 means no body
	}{
		{
			name:  "top-level body",
			src:   "namespaces: [{name: Demo, routines: [{name: Foo, body: [{expr: {call: {callee: {global: Demo.Foo}}}}]}]}]",
			kinds: []SpecKind{Body},
			stmts: []int{1},
		},
		{
			name:  "specialization bodies",
			src:   "namespaces: [{name: Demo, routines: [{name: Foo, specializations: [{kind: body, body: [{return: 1}, {return: 2}]}, {kind: adjoint}]}]}]",
			kinds: []SpecKind{Body, Adjoint},
			stmts: []int{2, -1},
		},
		{
			name:  "null body is empty",
			src:   "namespaces: [{name: Demo, routines: [{name: Foo, body: null}]}]",
			kinds: []SpecKind{Body},
			stmts: []int{0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			prog, err := Decode(strings.NewReader(tt.src))
			require.NoError(t, err)
			specs := prog.Namespaces[0].Routines[0].Specializations
			require.Len(t, specs, len(tt.kinds))
			for i, sp := range specs {
				assert.Equal(t, tt.kinds[i], sp.Kind)
				if tt.stmts[i] < 0 {
					assert.Nil(t, sp.Body)
					continue
				}
				require.NotNil(t, sp.Body)
				assert.Len(t, sp.Body.Stmts, tt.stmts[i])
			}
		})
	}
}

func TestDecode_RejectsBodyWithSpecializations(t *testing.T) {
	t.Parallel()
	src := "namespaces: [{name: N, routines: [{name: F, body: [], specializations: [{kind: adjoint}]}]}]"
	_, err := Decode(strings.NewReader(src))
	require.ErrorIs(t, err, ErrInvalidProgram)
	assert.Contains(t, err.Error(), "both body and specializations")
}

func TestDecode_EmptyDocumentIsEmptyProgram(t *testing.T) {
	t.Parallel()
	prog, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, prog.Namespaces)
}

func TestDecode_AcceptsJSON(t *testing.T) {
	t.Parallel()
	src := `{"namespaces": [{"name": "N", "routines": [{"name": "F", "body": [{"expr": {"call": {"callee": {"global": "N.F"}}}}]}]}]}`
	prog, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, prog.Namespaces[0].Routines, 1)
}

func TestDecode_RejectsMalformedInput(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{"unknown statement", "namespaces: [{name: N, routines: [{name: F, body: [{goto: x}]}]}]"},
		{"unknown expression", "namespaces: [{name: N, routines: [{name: F, body: [{expr: {lambda: x}}]}]}]"},
		{"two keys in statement", "namespaces: [{name: N, routines: [{name: F, body: [{expr: 1, return: 2}]}]}]"},
		{"unqualified global", "namespaces: [{name: N, routines: [{name: F, body: [{expr: {global: F}}]}]}]"},
		{"bad kind", "namespaces: [{name: N, routines: [{name: F, specializations: [{kind: sideways}]}]}]"},
		{"duplicate kind", "namespaces: [{name: N, routines: [{name: F, specializations: [{kind: body}, {kind: body}]}]}]"},
		{"unknown field", "namespaces: [{name: N, routines: [{name: F, body: [{let: {name: x, colour: red}}]}]}]"},
		{"call without callee", "namespaces: [{name: N, routines: [{name: F, body: [{expr: {call: {args: []}}}]}]}]"},
		{"unnamed namespace", "namespaces: [{routines: []}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidProgram)
		})
	}
}

func TestDecodeFile_PrefixesPath(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("namespaces: [{routines: []}]"), 0o644))

	_, err := DecodeFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)

	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSpecKind_RoundTripAndJoin(t *testing.T) {
	t.Parallel()
	for _, k := range AllKinds {
		got, err := ParseSpecKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	assert.Equal(t, Body, KindFor(false, false))
	assert.Equal(t, Adjoint, KindFor(true, false))
	assert.Equal(t, Controlled, KindFor(false, true))
	assert.Equal(t, ControlledAdjoint, KindFor(true, true))
	assert.Equal(t, ControlledAdjoint, Adjoint.Join(Controlled))
	assert.Equal(t, Adjoint, Body.Join(Adjoint))
}

func TestParseQualifiedName(t *testing.T) {
	t.Parallel()
	q, err := ParseQualifiedName("A.B.C")
	require.NoError(t, err)
	assert.Equal(t, QualifiedName{Namespace: "A.B", Name: "C"}, q)
	assert.Equal(t, "A.B.C", q.String())

	for _, bad := range []string{"", "C", ".C", "A."} {
		_, err := ParseQualifiedName(bad)
		assert.Error(t, err, bad)
	}
}
