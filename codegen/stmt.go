package codegen

import "nilan/ast"

// The VisitXxx methods below implement chibicc's gen_stmt, generalized
// from original_source/codegen.c's ND_IF/ND_FOR/ND_BLOCK/ND_RETURN/
// ND_EXPR_STMT set to the richer statement set parser/stmt_parse.go builds
// (while/do-while, switch/case, break/continue/goto/label), per spec.md
// §4.5's control-flow paragraph.

func (g *Generator) VisitExprStmt(n *ast.ExprStmt) any {
	g.genExpr(n.X)
	return nil
}

func (g *Generator) VisitBlock(n *ast.Block) any {
	for _, s := range n.Body {
		g.genStmt(s)
	}
	return nil
}

func (g *Generator) VisitIf(n *ast.If) any {
	c := g.count()
	g.genExpr(n.Cond)
	g.emitf("  cmp $0, %%rax\n")
	g.emitf("  je  .L.else.%d\n", c)
	g.genStmt(n.Then)
	g.emitf("  jmp .L.end.%d\n", c)
	g.emitf(".L.else.%d:\n", c)
	if n.Else != nil {
		g.genStmt(n.Else)
	}
	g.emitf(".L.end.%d:\n", c)
	return nil
}

// VisitFor reuses the loop's parser-minted BreakLabel/ContinueLabel as the
// "exit the loop" and "go to the increment step" targets, and mints its
// own internal .L.begin.N for the top of the loop body (spec.md §4.5:
// labels decorated as ".L.begin.N").
func (g *Generator) VisitFor(n *ast.For) any {
	c := g.count()
	if n.Init != nil {
		g.genStmt(n.Init)
	}
	g.emitf(".L.begin.%d:\n", c)
	if n.Cond != nil {
		g.genExpr(n.Cond)
		g.emitf("  cmp $0, %%rax\n")
		g.emitf("  je  %s\n", n.BreakLabel)
	}
	g.genStmt(n.Body)
	g.emitf("%s:\n", n.ContinueLabel)
	if n.Inc != nil {
		g.genExpr(n.Inc)
	}
	g.emitf("  jmp .L.begin.%d\n", c)
	g.emitf("%s:\n", n.BreakLabel)
	return nil
}

func (g *Generator) VisitWhile(n *ast.While) any {
	c := g.count()
	g.emitf(".L.begin.%d:\n", c)
	g.genExpr(n.Cond)
	g.emitf("  cmp $0, %%rax\n")
	g.emitf("  je  %s\n", n.BreakLabel)
	g.genStmt(n.Body)
	g.emitf("%s:\n", n.ContinueLabel)
	g.emitf("  jmp .L.begin.%d\n", c)
	g.emitf("%s:\n", n.BreakLabel)
	return nil
}

func (g *Generator) VisitDoWhile(n *ast.DoWhile) any {
	c := g.count()
	g.emitf(".L.begin.%d:\n", c)
	g.genStmt(n.Body)
	g.emitf("%s:\n", n.ContinueLabel)
	g.genExpr(n.Cond)
	g.emitf("  cmp $0, %%rax\n")
	g.emitf("  jne .L.begin.%d\n", c)
	g.emitf("%s:\n", n.BreakLabel)
	return nil
}

// VisitSwitch emits the tag evaluation followed by a cascade of compares
// against each pre-scanned case value (spec.md §4.5: "a cascade of
// comparisons with a default fallthrough"). n.Body is built by parser's
// switchBody: each Case node sits in the body's statement list in source
// order and holds only the statement right after its label, so walking the
// body via genStmt emits labels and statements in sequence and reproduces
// C's fall-through-by-default semantics for free, with `break` jumping out
// via n.BreakLabel.
func (g *Generator) VisitSwitch(n *ast.Switch) any {
	g.genExpr(n.Tag)
	for _, c := range n.Cases {
		g.emitf("  cmp $%d, %%rax\n", c.Value)
		g.emitf("  je %s\n", c.Label)
	}
	if n.Default != nil {
		g.emitf("  jmp %s\n", n.Default.Label)
	} else {
		g.emitf("  jmp %s\n", n.BreakLabel)
	}
	g.genStmt(n.Body)
	g.emitf("%s:\n", n.BreakLabel)
	return nil
}

func (g *Generator) VisitCase(n *ast.Case) any {
	g.emitf("%s:\n", n.Label)
	if n.Body != nil {
		g.genStmt(n.Body)
	}
	return nil
}

func (g *Generator) VisitReturn(n *ast.Return) any {
	if n.X != nil {
		g.genExpr(n.X)
	}
	g.emitf("  jmp .L.return.%s\n", g.currentFn.Name)
	return nil
}

func (g *Generator) VisitBreak(n *ast.Break) any {
	g.emitf("  jmp %s\n", n.TargetLabel)
	return nil
}

func (g *Generator) VisitContinue(n *ast.Continue) any {
	g.emitf("  jmp %s\n", n.TargetLabel)
	return nil
}

// userLabel namespaces a goto/labeled-statement name under the enclosing
// function, the same way chibicc's ".L.return.%s" is suffixed by the
// function name: C allows the same label text in two different functions,
// but GAS labels share one flat namespace across the whole assembly file.
func (g *Generator) userLabel(name string) string {
	return ".L.user." + g.currentFn.Name + "." + name
}

func (g *Generator) VisitGoto(n *ast.Goto) any {
	g.emitf("  jmp %s\n", g.userLabel(n.Label))
	return nil
}

func (g *Generator) VisitLabel(n *ast.Label) any {
	g.emitf("%s:\n", g.userLabel(n.Name))
	g.genStmt(n.Stmt)
	return nil
}

func (g *Generator) VisitNullStmt(n *ast.NullStmt) any {
	return nil
}
