package ast

import (
	"encoding/json"
	"fmt"
)

// jsonPrinter implements ExprVisitor and StmtVisitor and builds a
// JSON-friendly representation of the AST using maps and slices, the same
// approach as the teacher's parser.astPrinter, generalized to the full C
// node-kind set and moved into this package since nodes now live here
// rather than being printed by the parser package that builds them.
type jsonPrinter struct{}

func nilOrAcceptExpr(e Expr, p ExprVisitor) any {
	if e == nil {
		return nil
	}
	return e.Accept(p)
}

func nilOrAcceptStmt(s Stmt, p StmtVisitor) any {
	if s == nil {
		return nil
	}
	return s.Accept(p)
}

func (p jsonPrinter) VisitNum(n *Num) any {
	if n.IsFloat {
		return map[string]any{"type": "Num", "value": n.FloatValue}
	}
	return map[string]any{"type": "Num", "value": n.IntValue}
}

func (p jsonPrinter) VisitVarRef(n *VarRef) any {
	return map[string]any{"type": "VarRef", "name": n.Var.Name}
}

func (p jsonPrinter) VisitBinary(n *Binary) any {
	return map[string]any{"type": "Binary", "op": n.Op, "x": n.X.Accept(p), "y": n.Y.Accept(p)}
}

func (p jsonPrinter) VisitUnary(n *Unary) any {
	return map[string]any{"type": "Unary", "op": n.Op, "x": n.X.Accept(p)}
}

func (p jsonPrinter) VisitAssign(n *Assign) any {
	return map[string]any{"type": "Assign", "lhs": n.LHS.Accept(p), "rhs": n.RHS.Accept(p)}
}

func (p jsonPrinter) VisitCompoundAssign(n *CompoundAssign) any {
	return map[string]any{"type": "CompoundAssign", "op": n.Op + "=", "lhs": n.LHS.Accept(p), "rhs": n.RHS.Accept(p)}
}

func (p jsonPrinter) VisitIncDec(n *IncDec) any {
	kind := [...]string{"PreInc", "PreDec", "PostInc", "PostDec"}[n.Kind]
	return map[string]any{"type": "IncDec", "kind": kind, "x": n.X.Accept(p)}
}

func (p jsonPrinter) VisitAddr(n *Addr) any {
	return map[string]any{"type": "Addr", "x": n.X.Accept(p)}
}

func (p jsonPrinter) VisitDeref(n *Deref) any {
	return map[string]any{"type": "Deref", "x": n.X.Accept(p)}
}

func (p jsonPrinter) VisitMember(n *Member) any {
	return map[string]any{"type": "Member", "x": n.X.Accept(p), "name": n.Name, "arrow": n.Arrow}
}

func (p jsonPrinter) VisitCall(n *Call) any {
	args := make([]any, 0, len(n.Args))
	for _, a := range n.Args {
		args = append(args, a.Accept(p))
	}
	return map[string]any{"type": "Call", "func": n.FuncName, "args": args}
}

func (p jsonPrinter) VisitCast(n *Cast) any {
	return map[string]any{"type": "Cast", "x": n.X.Accept(p)}
}

func (p jsonPrinter) VisitComma(n *Comma) any {
	return map[string]any{"type": "Comma", "x": n.X.Accept(p), "y": n.Y.Accept(p)}
}

func (p jsonPrinter) VisitCond(n *Cond) any {
	return map[string]any{
		"type": "Cond", "cond": n.CondExpr.Accept(p),
		"then": n.Then.Accept(p), "else": n.Else.Accept(p),
	}
}

func (p jsonPrinter) VisitStmtExpr(n *StmtExpr) any {
	body := make([]any, 0, len(n.Body))
	for _, s := range n.Body {
		body = append(body, s.Accept(p))
	}
	return map[string]any{"type": "StmtExpr", "body": body}
}

func (p jsonPrinter) VisitExprStmt(n *ExprStmt) any {
	return map[string]any{"type": "ExprStmt", "x": n.X.Accept(p)}
}

func (p jsonPrinter) VisitBlock(n *Block) any {
	body := make([]any, 0, len(n.Body))
	for _, s := range n.Body {
		body = append(body, s.Accept(p))
	}
	return map[string]any{"type": "Block", "body": body}
}

func (p jsonPrinter) VisitIf(n *If) any {
	return map[string]any{
		"type": "If", "cond": n.Cond.Accept(p),
		"then": n.Then.Accept(p), "else": nilOrAcceptStmt(n.Else, p),
	}
}

func (p jsonPrinter) VisitFor(n *For) any {
	return map[string]any{
		"type": "For",
		"init": nilOrAcceptStmt(n.Init, p),
		"cond": nilOrAcceptExpr(n.Cond, p),
		"inc":  nilOrAcceptExpr(n.Inc, p),
		"body": n.Body.Accept(p),
	}
}

func (p jsonPrinter) VisitWhile(n *While) any {
	return map[string]any{"type": "While", "cond": n.Cond.Accept(p), "body": n.Body.Accept(p)}
}

func (p jsonPrinter) VisitDoWhile(n *DoWhile) any {
	return map[string]any{"type": "DoWhile", "cond": n.Cond.Accept(p), "body": n.Body.Accept(p)}
}

func (p jsonPrinter) VisitSwitch(n *Switch) any {
	return map[string]any{"type": "Switch", "tag": n.Tag.Accept(p), "body": n.Body.Accept(p)}
}

func (p jsonPrinter) VisitCase(n *Case) any {
	return map[string]any{
		"type": "Case", "isDefault": n.IsDefault, "value": n.Value,
		"body": nilOrAcceptStmt(n.Body, p),
	}
}

func (p jsonPrinter) VisitReturn(n *Return) any {
	return map[string]any{"type": "Return", "x": nilOrAcceptExpr(n.X, p)}
}

func (p jsonPrinter) VisitBreak(n *Break) any { return map[string]any{"type": "Break"} }

func (p jsonPrinter) VisitContinue(n *Continue) any { return map[string]any{"type": "Continue"} }

func (p jsonPrinter) VisitGoto(n *Goto) any {
	return map[string]any{"type": "Goto", "label": n.Label}
}

func (p jsonPrinter) VisitLabel(n *Label) any {
	return map[string]any{"type": "Label", "name": n.Name, "stmt": n.Stmt.Accept(p)}
}

func (p jsonPrinter) VisitNullStmt(n *NullStmt) any { return map[string]any{"type": "NullStmt"} }

// PrintProgramJSON renders every function body in prog as indented JSON,
// matching the teacher's PrintASTJSON (parser/printer.go) debugging aid.
func PrintProgramJSON(prog *Program) (string, error) {
	printer := jsonPrinter{}
	funcs := make([]any, 0, len(prog.Funcs))
	for _, fn := range prog.Funcs {
		entry := map[string]any{"name": fn.Name}
		if fn.Body != nil {
			entry["body"] = fn.Body.Accept(printer)
		}
		funcs = append(funcs, entry)
	}
	out := map[string]any{"functions": funcs}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal AST JSON: %w", err)
	}
	return string(b), nil
}
