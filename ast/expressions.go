// expressions.go contains all the expression AST nodes: arithmetic,
// bitwise, comparison, assignment (plain and compound), increment/
// decrement, address-of/dereference, member access, calls, casts, the
// comma operator, the conditional operator, and statement-expressions
// (spec.md §3 "AST node").
package ast

// Num is a numeric literal, integer or floating point.
type Num struct {
	ExprBase
	IntValue   int64
	FloatValue float64
	IsFloat    bool
}

func (n *Num) Accept(v ExprVisitor) any { return v.VisitNum(n) }

// VarRef is a reference to a previously declared variable.
type VarRef struct {
	ExprBase
	Var *Var
}

func (n *VarRef) Accept(v ExprVisitor) any { return v.VisitVarRef(n) }

// Binary covers every two-operand arithmetic, bitwise, comparison and
// logical operator (+, -, *, /, %, &, |, ^, <<, >>, ==, !=, <, <=, >, >=,
// &&, ||). Op is the operator's punctuator text (matching token.Text), kept
// as a string rather than a second enum since the lexer/parser already
// classify by punctuator text and a second parallel enum would just
// duplicate that classification.
type Binary struct {
	ExprBase
	Op   string
	X, Y Expr
}

func (n *Binary) Accept(v ExprVisitor) any { return v.VisitBinary(n) }

// Unary covers the prefix operators +, -, !, ~.
type Unary struct {
	ExprBase
	Op string
	X  Expr
}

func (n *Unary) Accept(v ExprVisitor) any { return v.VisitUnary(n) }

// Assign is a plain `lhs = rhs` assignment.
type Assign struct {
	ExprBase
	LHS, RHS Expr
}

func (n *Assign) Accept(v ExprVisitor) any { return v.VisitAssign(n) }

// CompoundAssign covers +=, -=, *=, /=, %=, &=, |=, ^=, <<=, >>=, restored
// from chibicc's ND_A_ADD family per SPEC_FULL.md §6.
type CompoundAssign struct {
	ExprBase
	Op       string // the operator without the trailing '=', e.g. "+"
	LHS, RHS Expr
}

func (n *CompoundAssign) Accept(v ExprVisitor) any { return v.VisitCompoundAssign(n) }

// IncDecKind distinguishes the four increment/decrement forms.
type IncDecKind int

const (
	PreInc IncDecKind = iota
	PreDec
	PostInc
	PostDec
)

// IncDec covers ++x, --x, x++, x--.
type IncDec struct {
	ExprBase
	Kind IncDecKind
	X    Expr
}

func (n *IncDec) Accept(v ExprVisitor) any { return v.VisitIncDec(n) }

// Addr is `&x`.
type Addr struct {
	ExprBase
	X Expr
}

func (n *Addr) Accept(v ExprVisitor) any { return v.VisitAddr(n) }

// Deref is `*x`.
type Deref struct {
	ExprBase
	X Expr
}

func (n *Deref) Accept(v ExprVisitor) any { return v.VisitDeref(n) }

// MemberRef is the resolved placement of a struct/union member, duplicated
// onto the Member expression node rather than referenced through the types
// package so codegen does not need to re-run member lookup.
type MemberRef struct {
	Offset     int
	IsBitfield bool
	BitOffset  int
	BitWidth   int
}

// Member is `.`/`->` member access. Arrow is recorded so codegen can tell
// whether X's address is already the struct's address (`.`) or must first
// be dereferenced (`->`); keeping Arrow explicit avoids an extra synthetic
// Deref node for every arrow access.
type Member struct {
	ExprBase
	X      Expr
	Name   string
	Arrow  bool
	Member *MemberRef
}

func (n *Member) Accept(v ExprVisitor) any { return v.VisitMember(n) }

// Call is a function call. FuncName is the callee's identifier text;
// spec.md §4.4 requires the callee be visible as a function, so calls
// through an arbitrary function-pointer expression are out of scope for
// this subset, matching chibicc's ND_FUNCALL (name-based, not value-based).
type Call struct {
	ExprBase
	FuncName string
	Args     []Expr
}

func (n *Call) Accept(v ExprVisitor) any { return v.VisitCall(n) }

// Cast is an explicit `(type)expr` cast.
type Cast struct {
	ExprBase
	X Expr
}

func (n *Cast) Accept(v ExprVisitor) any { return v.VisitCast(n) }

// Comma is the comma operator `x, y`, evaluating to y.
type Comma struct {
	ExprBase
	X, Y Expr
}

func (n *Comma) Accept(v ExprVisitor) any { return v.VisitComma(n) }

// Cond is the ternary conditional operator `c ? t : e`.
type Cond struct {
	ExprBase
	CondExpr Expr
	Then     Expr
	Else     Expr
}

func (n *Cond) Accept(v ExprVisitor) any { return v.VisitCond(n) }

// StmtExpr is a GNU statement-expression `({ ...; expr; })`, evaluating to
// the value of its last statement's expression (spec.md §4.4 primary
// grammar: `"(" "{" stmt+ "}" ")"`).
type StmtExpr struct {
	ExprBase
	Body []Stmt
}

func (n *StmtExpr) Accept(v ExprVisitor) any { return v.VisitStmtExpr(n) }
