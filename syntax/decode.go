package syntax

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidProgram is wrapped by every structural decoding error.
var ErrInvalidProgram = errors.New("invalid program")

// Program files are YAML (JSON is accepted as a subset). Statements and
// expressions are single-key mappings naming the node kind:
//
//	namespaces:
//	  - name: Demo
//	    routines:
//	      - name: Foo
//	        specializations:
//	          - kind: adjoint
//	            body:
//	              - expr: {call: {callee: {adjoint: {global: Demo.Bar}}, args: [{local: q}]}}
//
// A routine with a top-level body and no specializations list has a single
// body specialization. A specialization without a body is intrinsic.

type programDoc struct {
	Namespaces []namespaceDoc `yaml:"namespaces"`
}

type namespaceDoc struct {
	Name     string       `yaml:"name"`
	Routines []routineDoc `yaml:"routines"`
}

// Body fields are yaml.Node values: yaml.v3 hands raw nodes only to fields
// of exactly that type. A zero Kind means the key was absent.
type routineDoc struct {
	Name            string    `yaml:"name"`
	File            string    `yaml:"file"`
	Body            yaml.Node `yaml:"body"`
	Specializations []specDoc `yaml:"specializations"`
}

type specDoc struct {
	Kind     string    `yaml:"kind"`
	TypeArgs []string  `yaml:"type_args"`
	Body     yaml.Node `yaml:"body"`
}

// DecodeFile reads a program file from disk.
func DecodeFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	defer f.Close()
	prog, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// Decode reads a program document from r.
func Decode(r io.Reader) (*Program, error) {
	var doc programDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Program{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidProgram, err)
	}

	prog := &Program{}
	for _, nd := range doc.Namespaces {
		if nd.Name == "" {
			return nil, fmt.Errorf("%w: namespace without a name", ErrInvalidProgram)
		}
		ns := &Namespace{Name: nd.Name}
		for _, rd := range nd.Routines {
			r, err := decodeRoutine(nd.Name, rd)
			if err != nil {
				return nil, err
			}
			ns.Routines = append(ns.Routines, r)
		}
		prog.Namespaces = append(prog.Namespaces, ns)
	}
	return prog, nil
}

func decodeRoutine(namespace string, rd routineDoc) (*Routine, error) {
	if rd.Name == "" {
		return nil, fmt.Errorf("%w: routine without a name in namespace %s", ErrInvalidProgram, namespace)
	}
	name := QualifiedName{Namespace: namespace, Name: rd.Name}
	if strings.Contains(rd.Name, ".") {
		q, err := ParseQualifiedName(rd.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProgram, err)
		}
		name = q
	}
	r := &Routine{Name: name, File: rd.File}

	if rd.Body.Kind != 0 {
		if len(rd.Specializations) > 0 {
			return nil, invalid(&rd.Body, "routine %s has both body and specializations", name)
		}
		body, err := decodeBlock(&rd.Body)
		if err != nil {
			return nil, err
		}
		r.Specializations = []*Specialization{{Kind: Body, Body: body}}
		return r, nil
	}

	seen := map[SpecKind]bool{}
	for _, sd := range rd.Specializations {
		kind, err := ParseSpecKind(sd.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: routine %s: %v", ErrInvalidProgram, name, err)
		}
		if seen[kind] && len(sd.TypeArgs) == 0 {
			return nil, fmt.Errorf("%w: routine %s: duplicate %s specialization", ErrInvalidProgram, name, kind)
		}
		seen[kind] = true
		var body *Block
		if sd.Body.Kind != 0 {
			if body, err = decodeBlock(&sd.Body); err != nil {
				return nil, err
			}
		}
		r.Specializations = append(r.Specializations, &Specialization{
			Kind:     kind,
			TypeArgs: sd.TypeArgs,
			Body:     body,
		})
	}
	return r, nil
}

func invalid(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%w: line %d col %d: %s", ErrInvalidProgram, n.Line, n.Column, fmt.Sprintf(format, args...))
}

// single unpacks a one-key mapping node into its key and value.
func single(n *yaml.Node, what string) (string, *yaml.Node, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return "", nil, invalid(n, "%s must be a mapping with exactly one key", what)
	}
	return n.Content[0].Value, n.Content[1], nil
}

// fields indexes a mapping node by key, rejecting keys outside allowed.
func fields(n *yaml.Node, what string, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, invalid(n, "%s must be a mapping", what)
	}
	m := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		ok := false
		for _, a := range allowed {
			if a == key {
				ok = true
				break
			}
		}
		if !ok {
			return nil, invalid(n.Content[i], "unknown field %q in %s", key, what)
		}
		m[key] = n.Content[i+1]
	}
	return m, nil
}

func scalar(n *yaml.Node, what string) (string, error) {
	if n == nil {
		return "", nil
	}
	if n.Kind != yaml.ScalarNode {
		return "", invalid(n, "%s must be a scalar", what)
	}
	return n.Value, nil
}

func decodeBlock(n *yaml.Node) (*Block, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return &Block{}, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, invalid(n, "block must be a sequence of statements")
	}
	b := &Block{Stmts: make([]Stmt, 0, len(n.Content))}
	for _, item := range n.Content {
		s, err := decodeStmt(item)
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	return b, nil
}

func decodeStmt(n *yaml.Node) (Stmt, error) {
	key, v, err := single(n, "statement")
	if err != nil {
		return nil, err
	}
	switch key {
	case "expr":
		x, err := decodeExpr(v)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{X: x}, nil
	case "return":
		x, err := decodeExpr(v)
		if err != nil {
			return nil, err
		}
		return &Return{Value: x}, nil
	case "fail":
		x, err := decodeExpr(v)
		if err != nil {
			return nil, err
		}
		return &Fail{Message: x}, nil
	case "let", "set":
		f, err := fields(v, key, "name", "value", "mutable")
		if err != nil {
			return nil, err
		}
		name, err := scalar(f["name"], "name")
		if err != nil {
			return nil, err
		}
		val, err := optExpr(f["value"])
		if err != nil {
			return nil, err
		}
		if key == "set" {
			return &Set{Name: name, Value: val}, nil
		}
		mutable, _ := scalar(f["mutable"], "mutable")
		return &Let{Name: name, Mutable: mutable == "true", Value: val}, nil
	case "if":
		f, err := fields(v, key, "cond", "then", "else")
		if err != nil {
			return nil, err
		}
		s := &If{}
		if s.Cond, err = optExpr(f["cond"]); err != nil {
			return nil, err
		}
		if s.Then, err = decodeBlock(f["then"]); err != nil {
			return nil, err
		}
		if s.Else, err = decodeBlock(f["else"]); err != nil {
			return nil, err
		}
		return s, nil
	case "for":
		f, err := fields(v, key, "var", "in", "body")
		if err != nil {
			return nil, err
		}
		s := &For{}
		if s.Var, err = scalar(f["var"], "var"); err != nil {
			return nil, err
		}
		if s.Iterable, err = optExpr(f["in"]); err != nil {
			return nil, err
		}
		if s.Body, err = decodeBlock(f["body"]); err != nil {
			return nil, err
		}
		return s, nil
	case "while":
		f, err := fields(v, key, "cond", "body")
		if err != nil {
			return nil, err
		}
		s := &While{}
		if s.Cond, err = optExpr(f["cond"]); err != nil {
			return nil, err
		}
		if s.Body, err = decodeBlock(f["body"]); err != nil {
			return nil, err
		}
		return s, nil
	case "repeat":
		f, err := fields(v, key, "body", "until", "fixup")
		if err != nil {
			return nil, err
		}
		s := &Repeat{}
		if s.Body, err = decodeBlock(f["body"]); err != nil {
			return nil, err
		}
		if s.Until, err = optExpr(f["until"]); err != nil {
			return nil, err
		}
		if s.Fixup, err = decodeBlock(f["fixup"]); err != nil {
			return nil, err
		}
		return s, nil
	case "conjugate":
		f, err := fields(v, key, "within", "apply")
		if err != nil {
			return nil, err
		}
		s := &Conjugation{}
		if s.Within, err = decodeBlock(f["within"]); err != nil {
			return nil, err
		}
		if s.Apply, err = decodeBlock(f["apply"]); err != nil {
			return nil, err
		}
		return s, nil
	case "use":
		f, err := fields(v, key, "name", "init", "body")
		if err != nil {
			return nil, err
		}
		s := &Using{}
		if s.Name, err = scalar(f["name"], "name"); err != nil {
			return nil, err
		}
		if s.Init, err = optExpr(f["init"]); err != nil {
			return nil, err
		}
		if s.Body, err = decodeBlock(f["body"]); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, invalid(n, "unknown statement %q", key)
}

func optExpr(n *yaml.Node) (Expr, error) {
	if n == nil {
		return nil, nil
	}
	return decodeExpr(n)
}

func decodeExprs(n *yaml.Node, what string) ([]Expr, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, invalid(n, "%s must be a sequence", what)
	}
	items := make([]Expr, 0, len(n.Content))
	for _, c := range n.Content {
		x, err := decodeExpr(c)
		if err != nil {
			return nil, err
		}
		items = append(items, x)
	}
	return items, nil
}

func decodeExpr(n *yaml.Node) (Expr, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Value == "_" {
			return &Missing{}, nil
		}
		return &Literal{Value: n.Value}, nil
	case yaml.SequenceNode:
		items, err := decodeExprs(n, "tuple")
		if err != nil {
			return nil, err
		}
		return &Tuple{Items: items}, nil
	}

	key, v, err := single(n, "expression")
	if err != nil {
		return nil, err
	}
	switch key {
	case "global":
		return decodeGlobal(v)
	case "local":
		name, err := scalar(v, "local")
		if err != nil {
			return nil, err
		}
		return &Local{Name: name}, nil
	case "literal":
		val, err := scalar(v, "literal")
		if err != nil {
			return nil, err
		}
		return &Literal{Value: val}, nil
	case "missing":
		return &Missing{}, nil
	case "adjoint":
		inner, err := decodeExpr(v)
		if err != nil {
			return nil, err
		}
		return &AdjointApp{Inner: inner}, nil
	case "controlled":
		inner, err := decodeExpr(v)
		if err != nil {
			return nil, err
		}
		return &ControlledApp{Inner: inner}, nil
	case "tuple", "array":
		items, err := decodeExprs(v, key)
		if err != nil {
			return nil, err
		}
		if key == "array" {
			return &Array{Items: items}, nil
		}
		return &Tuple{Items: items}, nil
	case "call":
		f, err := fields(v, key, "callee", "args")
		if err != nil {
			return nil, err
		}
		if f["callee"] == nil {
			return nil, invalid(v, "call without callee")
		}
		c := &Call{}
		if c.Callee, err = decodeExpr(f["callee"]); err != nil {
			return nil, err
		}
		if f["args"] == nil {
			c.Args = &Tuple{}
		} else if c.Args, err = decodeExpr(f["args"]); err != nil {
			return nil, err
		}
		return c, nil
	case "index":
		f, err := fields(v, key, "array", "index")
		if err != nil {
			return nil, err
		}
		x := &Index{}
		if x.Array, err = optExpr(f["array"]); err != nil {
			return nil, err
		}
		if x.Index, err = optExpr(f["index"]); err != nil {
			return nil, err
		}
		return x, nil
	case "cond":
		f, err := fields(v, key, "if", "then", "else")
		if err != nil {
			return nil, err
		}
		x := &Conditional{}
		if x.Cond, err = optExpr(f["if"]); err != nil {
			return nil, err
		}
		if x.Then, err = optExpr(f["then"]); err != nil {
			return nil, err
		}
		if x.Else, err = optExpr(f["else"]); err != nil {
			return nil, err
		}
		return x, nil
	case "op":
		f, err := fields(v, key, "op", "operands")
		if err != nil {
			return nil, err
		}
		x := &Operator{}
		if x.Op, err = scalar(f["op"], "op"); err != nil {
			return nil, err
		}
		if f["operands"] != nil {
			if x.Operands, err = decodeExprs(f["operands"], "operands"); err != nil {
				return nil, err
			}
		}
		return x, nil
	}
	return nil, invalid(n, "unknown expression %q", key)
}

// decodeGlobal accepts either "Ns.Name" or
// {name: Ns.Name, type_args: {T: Int}}.
func decodeGlobal(v *yaml.Node) (Expr, error) {
	g := &Global{Pos: Pos{Line: v.Line, Col: v.Column}}
	nameNode := v
	if v.Kind == yaml.MappingNode {
		f, err := fields(v, "global", "name", "type_args")
		if err != nil {
			return nil, err
		}
		if f["name"] == nil {
			return nil, invalid(v, "global without name")
		}
		nameNode = f["name"]
		if ta := f["type_args"]; ta != nil {
			if ta.Kind != yaml.MappingNode {
				return nil, invalid(ta, "type_args must map type parameters to types")
			}
			for i := 0; i+1 < len(ta.Content); i += 2 {
				g.TypeArgs = append(g.TypeArgs, TypeArg{Param: ta.Content[i].Value, Type: ta.Content[i+1].Value})
			}
		}
	}
	s, err := scalar(nameNode, "global")
	if err != nil {
		return nil, err
	}
	q, err := ParseQualifiedName(s)
	if err != nil {
		return nil, invalid(nameNode, "%v", err)
	}
	g.Name = q
	return g, nil
}
