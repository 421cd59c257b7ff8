// Statement grammar, grounded on original_source/parse.c's stmt/
// compound_stmt/expr_stmt/declaration, generalized per SPEC_FULL.md §4.5/§6
// with do-while, switch/case/default/fallthrough, goto/labeled-statements
// and break/continue target resolution, none of which this chibicc
// snapshot's stmt() has.
package parser

import (
	"nilan/ast"
	"nilan/token"
	"nilan/types"
)

// stmt dispatches on the statement's leading keyword, matching chibicc's
// stmt() generalized with the constructs listed above.
func (p *Parser) stmt(tok *token.Token) (ast.Stmt, *token.Token) {
	switch {
	case tok.Is("return"):
		return p.returnStmt(tok)
	case tok.Is("if"):
		return p.ifStmt(tok)
	case tok.Is("for"):
		return p.forStmt(tok)
	case tok.Is("while"):
		return p.whileStmt(tok)
	case tok.Is("do"):
		return p.doWhileStmt(tok)
	case tok.Is("switch"):
		return p.switchStmt(tok)
	case tok.Is("case"), tok.Is("default"):
		p.errorf(tok, "%q label not inside a switch", tok.Text)
	case tok.Is("break"):
		if len(p.breakTargets) == 0 {
			p.errorf(tok, "break statement not within a loop or switch")
		}
		n := &ast.Break{StmtBase: ast.StmtBase{Token: tok}, TargetLabel: p.breakTargets[len(p.breakTargets)-1]}
		return n, p.skip(tok.Next, ";")
	case tok.Is("continue"):
		if len(p.continueTargets) == 0 {
			p.errorf(tok, "continue statement not within a loop")
		}
		n := &ast.Continue{StmtBase: ast.StmtBase{Token: tok}, TargetLabel: p.continueTargets[len(p.continueTargets)-1]}
		return n, p.skip(tok.Next, ";")
	case tok.Is("goto"):
		name, rest := p.expectIdent(tok.Next)
		return &ast.Goto{StmtBase: ast.StmtBase{Token: tok}, Label: name}, p.skip(rest, ";")
	case tok.Is("{"):
		return p.compoundStmt(tok.Next)
	case tok.Is(";"):
		return &ast.NullStmt{StmtBase: ast.StmtBase{Token: tok}}, tok.Next
	}

	if tok.Kind == token.IDENT && tok.Next.Is(":") {
		body, rest := p.stmt(tok.Next.Next)
		return &ast.Label{StmtBase: ast.StmtBase{Token: tok}, Name: tok.Text, Stmt: body}, rest
	}

	return p.exprStmt(tok)
}

func (p *Parser) exprStmt(tok *token.Token) (ast.Stmt, *token.Token) {
	if ok, rest := p.consume(tok, ";"); ok {
		return &ast.NullStmt{StmtBase: ast.StmtBase{Token: tok}}, rest
	}
	x, rest := p.expr(tok)
	rest = p.skip(rest, ";")
	return &ast.ExprStmt{StmtBase: ast.StmtBase{Token: tok}, X: x}, rest
}

func (p *Parser) returnStmt(tok *token.Token) (ast.Stmt, *token.Token) {
	if ok, rest := p.consume(tok.Next, ";"); ok {
		return &ast.Return{StmtBase: ast.StmtBase{Token: tok}}, rest
	}
	x, rest := p.expr(tok.Next)
	rest = p.skip(rest, ";")
	if p.currentFn != nil {
		x = p.implicitCast(x, p.currentFn.Type.ReturnType)
	}
	return &ast.Return{StmtBase: ast.StmtBase{Token: tok}, X: x}, rest
}

func (p *Parser) ifStmt(tok *token.Token) (ast.Stmt, *token.Token) {
	rest := p.skip(tok.Next, "(")
	cond, rest2 := p.expr(rest)
	rest2 = p.skip(rest2, ")")
	then, rest3 := p.stmt(rest2)

	var els ast.Stmt
	if ok, rest4 := p.consume(rest3, "else"); ok {
		els, rest3 = p.stmt(rest4)
	}
	return &ast.If{StmtBase: ast.StmtBase{Token: tok}, Cond: cond, Then: then, Else: els}, rest3
}

func (p *Parser) forStmt(tok *token.Token) (ast.Stmt, *token.Token) {
	breakLabel := p.newLabel("break")
	continueLabel := p.newLabel("continue")

	p.enterScope()
	rest := p.skip(tok.Next, "(")

	var init ast.Stmt
	if p.isTypename(rest) {
		init, rest = p.declarationStmt(rest)
	} else {
		init, rest = p.exprStmt(rest)
	}

	var cond ast.Expr
	if !rest.Is(";") {
		cond, rest = p.expr(rest)
	}
	rest = p.skip(rest, ";")

	var inc ast.Expr
	if !rest.Is(")") {
		inc, rest = p.expr(rest)
	}
	rest = p.skip(rest, ")")

	p.breakTargets = append(p.breakTargets, breakLabel)
	p.continueTargets = append(p.continueTargets, continueLabel)
	body, rest2 := p.stmt(rest)
	p.breakTargets = p.breakTargets[:len(p.breakTargets)-1]
	p.continueTargets = p.continueTargets[:len(p.continueTargets)-1]
	p.leaveScope()

	return &ast.For{StmtBase: ast.StmtBase{Token: tok}, Init: init, Cond: cond, Inc: inc, Body: body,
		BreakLabel: breakLabel, ContinueLabel: continueLabel}, rest2
}

func (p *Parser) whileStmt(tok *token.Token) (ast.Stmt, *token.Token) {
	breakLabel := p.newLabel("break")
	continueLabel := p.newLabel("continue")

	rest := p.skip(tok.Next, "(")
	cond, rest2 := p.expr(rest)
	rest2 = p.skip(rest2, ")")

	p.breakTargets = append(p.breakTargets, breakLabel)
	p.continueTargets = append(p.continueTargets, continueLabel)
	body, rest3 := p.stmt(rest2)
	p.breakTargets = p.breakTargets[:len(p.breakTargets)-1]
	p.continueTargets = p.continueTargets[:len(p.continueTargets)-1]

	return &ast.While{StmtBase: ast.StmtBase{Token: tok}, Cond: cond, Body: body,
		BreakLabel: breakLabel, ContinueLabel: continueLabel}, rest3
}

func (p *Parser) doWhileStmt(tok *token.Token) (ast.Stmt, *token.Token) {
	breakLabel := p.newLabel("break")
	continueLabel := p.newLabel("continue")

	p.breakTargets = append(p.breakTargets, breakLabel)
	p.continueTargets = append(p.continueTargets, continueLabel)
	body, rest := p.stmt(tok.Next)
	p.breakTargets = p.breakTargets[:len(p.breakTargets)-1]
	p.continueTargets = p.continueTargets[:len(p.continueTargets)-1]

	rest = p.skip(rest, "while")
	rest = p.skip(rest, "(")
	cond, rest2 := p.expr(rest)
	rest2 = p.skip(rest2, ")")
	rest2 = p.skip(rest2, ";")

	return &ast.DoWhile{StmtBase: ast.StmtBase{Token: tok}, Body: body, Cond: cond,
		BreakLabel: breakLabel, ContinueLabel: continueLabel}, rest2
}

// switchStmt pre-scans its body for case/default labels per spec.md §4.5,
// mints a break label, then parses the body with both threaded onto the
// Switch node it builds.
func (p *Parser) switchStmt(tok *token.Token) (ast.Stmt, *token.Token) {
	breakLabel := p.newLabel("break")

	rest := p.skip(tok.Next, "(")
	tag, rest2 := p.expr(rest)
	rest2 = p.skip(rest2, ")")

	sw := &ast.Switch{StmtBase: ast.StmtBase{Token: tok}, Tag: tag, BreakLabel: breakLabel}

	p.breakTargets = append(p.breakTargets, breakLabel)
	body, rest3 := p.switchBody(rest2, sw)
	p.breakTargets = p.breakTargets[:len(p.breakTargets)-1]

	sw.Body = body
	return sw, rest3
}

// switchBody parses one statement, as switch's body, collecting every
// case/default label reached into sw.Cases/sw.Default and minting each a
// jump-target label as it's seen.
func (p *Parser) switchBody(tok *token.Token, sw *ast.Switch) (ast.Stmt, *token.Token) {
	if tok.Is("case") {
		val, rest := p.constExpr(tok.Next)
		rest = p.skip(rest, ":")
		inner, rest2 := p.switchBody(rest, sw)
		c := &ast.Case{StmtBase: ast.StmtBase{Token: tok}, Value: val, Body: inner, Label: p.newLabel("case")}
		sw.Cases = append(sw.Cases, c)
		return c, rest2
	}
	if tok.Is("default") {
		rest := p.skip(tok.Next, ":")
		inner, rest2 := p.switchBody(rest, sw)
		c := &ast.Case{StmtBase: ast.StmtBase{Token: tok}, IsDefault: true, Body: inner, Label: p.newLabel("default")}
		sw.Default = c
		return c, rest2
	}
	if tok.Is("{") {
		p.enterScope()
		rest := tok.Next
		var body []ast.Stmt
		for !rest.Is("}") {
			s, rest2 := p.blockItem(rest, sw)
			body = append(body, s)
			rest = rest2
		}
		p.leaveScope()
		return &ast.Block{StmtBase: ast.StmtBase{Token: tok}, Body: body}, rest.Next
	}
	return p.stmt(tok)
}

// blockItem parses one element of a block (typedef/declaration/statement)
// while still threading the enclosing switch so case/default labels nested
// inside braces are still pre-scanned, matching chibicc's compound_stmt
// loop generalized with the switch pre-scan.
func (p *Parser) blockItem(tok *token.Token, sw *ast.Switch) (ast.Stmt, *token.Token) {
	if p.isTypename(tok) && !tok.Next.Is(":") {
		attr := &declAttr{}
		basety, rest := p.typespec(tok, attr)
		if attr.isTypedef {
			rest = p.parseTypedef(rest, basety)
			return &ast.NullStmt{StmtBase: ast.StmtBase{Token: tok}}, rest
		}
		return p.declarationStmt(tok)
	}
	if sw != nil && (tok.Is("case") || tok.Is("default")) {
		return p.switchBody(tok, sw)
	}
	return p.stmt(tok)
}

// compoundStmt = (typedef | declaration | stmt)* "}"
func (p *Parser) compoundStmt(tok *token.Token) (*ast.Block, *token.Token) {
	p.enterScope()
	var body []ast.Stmt
	for !tok.Is("}") {
		if p.isTypename(tok) && !tok.Next.Is(":") {
			attr := &declAttr{}
			basety, rest := p.typespec(tok, attr)
			if attr.isTypedef {
				tok = p.parseTypedef(rest, basety)
				continue
			}
			s, rest2 := p.declarationStmtWithBase(rest, basety, attr)
			body = append(body, s...)
			tok = rest2
			continue
		}
		s, rest := p.stmt(tok)
		body = append(body, s)
		tok = rest
	}
	p.leaveScope()
	return &ast.Block{StmtBase: ast.StmtBase{Token: tok}, Body: body}, tok.Next
}

// declarationStmt parses a local declaration from its leading type
// specifier, returning a single Block-wrapped statement (used from
// contexts, like a for-loop's init clause, that need exactly one Stmt).
func (p *Parser) declarationStmt(tok *token.Token) (ast.Stmt, *token.Token) {
	attr := &declAttr{}
	basety, rest := p.typespec(tok, attr)
	stmts, rest2 := p.declarationStmtWithBase(rest, basety, attr)
	return &ast.Block{StmtBase: ast.StmtBase{Token: tok}, Body: stmts}, rest2
}

// declarationStmtWithBase = (declarator ("=" initializer)? ("," ...)*)? ";"
// matching chibicc's declaration(), generalized with full initializer-list
// elaboration (see init.go) rather than the scalar-only `"=" expr` this
// chibicc snapshot supports.
func (p *Parser) declarationStmtWithBase(tok *token.Token, basety *types.Type, attr *declAttr) ([]ast.Stmt, *token.Token) {
	var stmts []ast.Stmt
	first := true
	for !tok.Is(";") {
		if !first {
			tok = p.skip(tok, ",")
		}
		first = false

		ty, name, rest := p.declarator(tok, basety)
		tok = rest
		if ty.Kind == types.Void {
			p.errorf(tok, "variable declared void")
		}

		lv := &ast.Var{Name: name, Type: ty, Storage: ast.Local}
		p.declareVar(name, lv)
		p.locals = append(p.locals, lv)

		if ok, rest2 := p.consume(tok, "="); ok {
			init, rest3 := p.initializer(rest2, ty)
			tok = rest3
			lv.Type = init.Type
			lvExpr := &ast.VarRef{ExprBase: ast.ExprBase{Token: tok}, Var: lv}
			lvExpr.SetType(lv.Type)
			stmts = append(stmts, p.initToStmts(lvExpr, init)...)
		}
	}
	return stmts, tok.Next
}
