// interfaces.go contains the visitor interfaces that any code walking the
// AST must implement, and the base Expr/Stmt interfaces every concrete node
// type implements via Accept. This follows the same visitor design pattern
// as the teacher's ast package (one Visit method per node type) generalized
// to the C node-kind enumeration from spec.md §3.
package ast

import (
	"nilan/token"
	"nilan/types"
)

// ExprVisitor is implemented by anything that walks expression nodes (this
// package's JSON printer, codegen).
type ExprVisitor interface {
	VisitNum(n *Num) any
	VisitVarRef(n *VarRef) any
	VisitBinary(n *Binary) any
	VisitUnary(n *Unary) any
	VisitAssign(n *Assign) any
	VisitCompoundAssign(n *CompoundAssign) any
	VisitIncDec(n *IncDec) any
	VisitAddr(n *Addr) any
	VisitDeref(n *Deref) any
	VisitMember(n *Member) any
	VisitCall(n *Call) any
	VisitCast(n *Cast) any
	VisitComma(n *Comma) any
	VisitCond(n *Cond) any
	VisitStmtExpr(n *StmtExpr) any
}

// StmtVisitor is implemented by anything that walks statement nodes.
type StmtVisitor interface {
	VisitExprStmt(n *ExprStmt) any
	VisitBlock(n *Block) any
	VisitIf(n *If) any
	VisitFor(n *For) any
	VisitWhile(n *While) any
	VisitDoWhile(n *DoWhile) any
	VisitSwitch(n *Switch) any
	VisitCase(n *Case) any
	VisitReturn(n *Return) any
	VisitBreak(n *Break) any
	VisitContinue(n *Continue) any
	VisitGoto(n *Goto) any
	VisitLabel(n *Label) any
	VisitNullStmt(n *NullStmt) any
}

// Expr is the base interface for all expression nodes. Every expression
// carries a representative token (for diagnostics) and, once type
// elaboration has run, an attached Type, per spec.md §3 ("AST node...
// carries: representative token..., attached type").
type Expr interface {
	Accept(v ExprVisitor) any
	Tok() *token.Token
	Type() *types.Type
	SetType(t *types.Type)
}

// Stmt is the base interface for all statement nodes.
type Stmt interface {
	Accept(v StmtVisitor) any
	Tok() *token.Token
}

// ExprBase is embedded by every concrete Expr so the representative token
// and attached type are stored once instead of being repeated per node
// type, while Accept still dispatches per concrete type exactly as the
// teacher's per-struct Accept methods do.
type ExprBase struct {
	Token *token.Token
	Typ   *types.Type
}

func (b *ExprBase) Tok() *token.Token      { return b.Token }
func (b *ExprBase) Type() *types.Type      { return b.Typ }
func (b *ExprBase) SetType(t *types.Type)  { b.Typ = t }

// StmtBase is the statement equivalent of ExprBase.
type StmtBase struct {
	Token *token.Token
}

func (b *StmtBase) Tok() *token.Token { return b.Token }
