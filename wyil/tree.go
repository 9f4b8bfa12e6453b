package wyil

import "fmt"

// The statement and expression tree of a function body. Code
// generation walks this tree; the range analysis works on the flat
// bytecode of the same body.

type Stmt interface {
	stmt()
}

type Expr interface {
	expr()
}

type BlockStmt struct {
	List []Stmt
}

type (
	// DeclStmt declares local variable Var, optionally initialised.
	DeclStmt struct {
		Var  int
		Init Expr
	}

	// AliasStmt gives the variable in slot Var another name.
	AliasStmt struct {
		Var int
	}

	AssignStmt struct {
		LHS []Expr
		RHS []Expr
	}

	AssertStmt struct {
		Cond Expr
	}

	AssumeStmt struct {
		Cond Expr
	}

	BreakStmt    struct{}
	ContinueStmt struct{}

	DebugStmt struct {
		X Expr
	}

	DoWhileStmt struct {
		Body *BlockStmt
		Cond Expr
	}

	FailStmt struct{}

	// IfStmt is a conditional. Else may be nil.
	IfStmt struct {
		Cond Expr
		Then *BlockStmt
		Else *BlockStmt
	}

	// CallStmt is a call evaluated for its effects. Call is an
	// InvokeExpr or an IndirectInvokeExpr.
	CallStmt struct {
		Call Expr
	}

	NamedBlockStmt struct {
		Name string
		Body *BlockStmt
	}

	WhileStmt struct {
		Cond Expr
		Body *BlockStmt
	}

	ReturnStmt struct {
		Results []Expr
	}

	SkipStmt struct{}

	SwitchStmt struct {
		Tag   Expr
		Cases []*CaseClause
	}

	// CaseClause is one arm of a switch. A clause without values is
	// the default arm.
	CaseClause struct {
		Values []Constant
		Body   *BlockStmt
	}
)

func (*BlockStmt) stmt()      {}
func (*DeclStmt) stmt()       {}
func (*AliasStmt) stmt()      {}
func (*AssignStmt) stmt()     {}
func (*AssertStmt) stmt()     {}
func (*AssumeStmt) stmt()     {}
func (*BreakStmt) stmt()      {}
func (*ContinueStmt) stmt()   {}
func (*DebugStmt) stmt()      {}
func (*DoWhileStmt) stmt()    {}
func (*FailStmt) stmt()       {}
func (*IfStmt) stmt()         {}
func (*CallStmt) stmt()       {}
func (*NamedBlockStmt) stmt() {}
func (*WhileStmt) stmt()      {}
func (*ReturnStmt) stmt()     {}
func (*SkipStmt) stmt()       {}
func (*SwitchStmt) stmt()     {}

type (
	ConstExpr struct {
		Value Constant
	}

	// VarExpr reads the variable in slot Var.
	VarExpr struct {
		Var int
	}

	UnaryExpr struct {
		Op Operator
		X  Expr
	}

	BinaryExpr struct {
		Op   Operator
		X, Y Expr
	}

	ConvertExpr struct {
		Type Type
		X    Expr
	}

	DerefExpr struct {
		X Expr
	}

	FieldExpr struct {
		X    Expr
		Name string
	}

	LengthExpr struct {
		X Expr
	}

	IndexExpr struct {
		X     Expr
		Index Expr
	}

	ArrayLit struct {
		Elems []Expr
	}

	// ArrayGenExpr is an array of Len copies of Value.
	ArrayGenExpr struct {
		Value Expr
		Len   Expr
	}

	FieldInit struct {
		Name  string
		Value Expr
	}

	RecordLit struct {
		Fields []FieldInit
	}

	InvokeExpr struct {
		Name string
		Args []Expr
	}

	IndirectInvokeExpr struct {
		Fn   Expr
		Args []Expr
	}

	NewExpr struct {
		X Expr
	}

	LambdaExpr struct {
		Params []Variable
		Body   Expr
	}

	QuantifierExpr struct {
		Universal bool
		Var       int
		Low, High Expr
		Body      Expr
	}

	IsExpr struct {
		X    Expr
		Type Type
	}
)

func (*ConstExpr) expr()          {}
func (*VarExpr) expr()            {}
func (*UnaryExpr) expr()          {}
func (*BinaryExpr) expr()         {}
func (*ConvertExpr) expr()        {}
func (*DerefExpr) expr()          {}
func (*FieldExpr) expr()          {}
func (*LengthExpr) expr()         {}
func (*IndexExpr) expr()          {}
func (*ArrayLit) expr()           {}
func (*ArrayGenExpr) expr()       {}
func (*RecordLit) expr()          {}
func (*InvokeExpr) expr()         {}
func (*IndirectInvokeExpr) expr() {}
func (*NewExpr) expr()            {}
func (*LambdaExpr) expr()         {}
func (*QuantifierExpr) expr()     {}
func (*IsExpr) expr()             {}

// Operator is a unary or binary expression operator.
type Operator int

const (
	Neg Operator = iota
	Not
	BitwiseInvert

	Add
	Sub
	Mul
	Div
	Rem
	Eq
	Neq
	Lt
	LtEq
	Gt
	GtEq
	LogicalAnd
	LogicalOr
	BitwiseAnd
	BitwiseOr
	BitwiseXor
	Shl
	Shr
)

var operatorTokens = [...]string{
	Neg:           "-",
	Not:           "!",
	BitwiseInvert: "~",
	Add:           "+",
	Sub:           "-",
	Mul:           "*",
	Div:           "/",
	Rem:           "%",
	Eq:            "==",
	Neq:           "!=",
	Lt:            "<",
	LtEq:          "<=",
	Gt:            ">",
	GtEq:          ">=",
	LogicalAnd:    "&&",
	LogicalOr:     "||",
	BitwiseAnd:    "&",
	BitwiseOr:     "|",
	BitwiseXor:    "^",
	Shl:           "<<",
	Shr:           ">>",
}

func (op Operator) String() string {
	if op < 0 || int(op) >= len(operatorTokens) {
		return fmt.Sprintf("Operator(%d)", int(op))
	}
	return operatorTokens[op]
}

// IsUnary reports whether op is a prefix operator.
func (op Operator) IsUnary() bool {
	return op <= BitwiseInvert
}

// Inspect traverses the statements of b in depth-first order, calling
// fn for every statement and expression. If fn returns false, the
// children of that node are not visited.
func Inspect(b *BlockStmt, fn func(node any) bool) {
	if b == nil {
		return
	}
	for _, s := range b.List {
		inspectStmt(s, fn)
	}
}

func inspectStmt(s Stmt, fn func(any) bool) {
	if s == nil || !fn(s) {
		return
	}
	ex := func(es ...Expr) {
		for _, e := range es {
			inspectExpr(e, fn)
		}
	}
	switch s := s.(type) {
	case *BlockStmt:
		Inspect(s, fn)
	case *DeclStmt:
		ex(s.Init)
	case *AssignStmt:
		ex(s.LHS...)
		ex(s.RHS...)
	case *AssertStmt:
		ex(s.Cond)
	case *AssumeStmt:
		ex(s.Cond)
	case *DebugStmt:
		ex(s.X)
	case *DoWhileStmt:
		Inspect(s.Body, fn)
		ex(s.Cond)
	case *IfStmt:
		ex(s.Cond)
		Inspect(s.Then, fn)
		Inspect(s.Else, fn)
	case *CallStmt:
		ex(s.Call)
	case *NamedBlockStmt:
		Inspect(s.Body, fn)
	case *WhileStmt:
		ex(s.Cond)
		Inspect(s.Body, fn)
	case *ReturnStmt:
		ex(s.Results...)
	case *SwitchStmt:
		ex(s.Tag)
		for _, cc := range s.Cases {
			Inspect(cc.Body, fn)
		}
	case *AliasStmt, *BreakStmt, *ContinueStmt, *FailStmt, *SkipStmt:
	default:
		panic(fmt.Sprintf("unhandled statement %T", s))
	}
}

func inspectExpr(e Expr, fn func(any) bool) {
	if e == nil || !fn(e) {
		return
	}
	ex := func(es ...Expr) {
		for _, e := range es {
			inspectExpr(e, fn)
		}
	}
	switch e := e.(type) {
	case *ConstExpr, *VarExpr:
	case *UnaryExpr:
		ex(e.X)
	case *BinaryExpr:
		ex(e.X, e.Y)
	case *ConvertExpr:
		ex(e.X)
	case *DerefExpr:
		ex(e.X)
	case *FieldExpr:
		ex(e.X)
	case *LengthExpr:
		ex(e.X)
	case *IndexExpr:
		ex(e.X, e.Index)
	case *ArrayLit:
		ex(e.Elems...)
	case *ArrayGenExpr:
		ex(e.Value, e.Len)
	case *RecordLit:
		for _, f := range e.Fields {
			ex(f.Value)
		}
	case *InvokeExpr:
		ex(e.Args...)
	case *IndirectInvokeExpr:
		ex(e.Fn)
		ex(e.Args...)
	case *NewExpr:
		ex(e.X)
	case *LambdaExpr:
		ex(e.Body)
	case *QuantifierExpr:
		ex(e.Low, e.High, e.Body)
	case *IsExpr:
		ex(e.X)
	default:
		panic(fmt.Sprintf("unhandled expression %T", e))
	}
}
