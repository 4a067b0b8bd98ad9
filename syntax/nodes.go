package syntax

// Stmt is a statement inside a specialization body.
type Stmt interface {
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	exprNode()
}

// Block is a sequence of statements.
type Block struct {
	Stmts []Stmt
}

type (
	// ExprStmt evaluates X for its effect.
	ExprStmt struct {
		X Expr
	}

	// Let binds a new local.
	Let struct {
		Name    string
		Mutable bool
		Value   Expr
	}

	// Set reassigns a mutable local.
	Set struct {
		Name  string
		Value Expr
	}

	Return struct {
		Value Expr
	}

	Fail struct {
		Message Expr
	}

	// If with a nil Else has no else branch.
	If struct {
		Cond Expr
		Then *Block
		Else *Block
	}

	For struct {
		Var      string
		Iterable Expr
		Body     *Block
	}

	While struct {
		Cond Expr
		Body *Block
	}

	// Repeat runs Body until Until holds, running Fixup between attempts.
	Repeat struct {
		Body  *Block
		Until Expr
		Fixup *Block
	}

	// Conjugation is "within { Within } apply { Apply }": Within runs, then
	// Apply, then the adjoint of Within.
	Conjugation struct {
		Within *Block
		Apply  *Block
	}

	// Using allocates a resource bound to Name for the duration of Body.
	Using struct {
		Name string
		Init Expr
		Body *Block
	}
)

func (*ExprStmt) stmtNode()    {}
func (*Let) stmtNode()         {}
func (*Set) stmtNode()         {}
func (*Return) stmtNode()      {}
func (*Fail) stmtNode()        {}
func (*If) stmtNode()          {}
func (*For) stmtNode()         {}
func (*While) stmtNode()       {}
func (*Repeat) stmtNode()      {}
func (*Conjugation) stmtNode() {}
func (*Using) stmtNode()       {}

type (
	// Call invokes Callee with Args. A Callee written as a bare global
	// name is a direct invocation of that routine.
	Call struct {
		Callee Expr
		Args   Expr
	}

	// AdjointApp is the Adjoint functor applied to Inner.
	AdjointApp struct {
		Inner Expr
	}

	// ControlledApp is the Controlled functor applied to Inner.
	ControlledApp struct {
		Inner Expr
	}

	// Global references a globally declared routine.
	Global struct {
		Name     QualifiedName
		TypeArgs []TypeArg
		Pos      Pos
	}

	Local struct {
		Name string
	}

	Literal struct {
		Value string
	}

	Tuple struct {
		Items []Expr
	}

	Array struct {
		Items []Expr
	}

	Index struct {
		Array Expr
		Index Expr
	}

	Conditional struct {
		Cond Expr
		Then Expr
		Else Expr
	}

	// Operator is any unary or binary operator application.
	Operator struct {
		Op       string
		Operands []Expr
	}

	// Missing is the "_" placeholder of a partial application.
	Missing struct{}
)

func (*Call) exprNode()          {}
func (*AdjointApp) exprNode()    {}
func (*ControlledApp) exprNode() {}
func (*Global) exprNode()        {}
func (*Local) exprNode()         {}
func (*Literal) exprNode()       {}
func (*Tuple) exprNode()         {}
func (*Array) exprNode()         {}
func (*Index) exprNode()         {}
func (*Conditional) exprNode()   {}
func (*Operator) exprNode()      {}
func (*Missing) exprNode()       {}
