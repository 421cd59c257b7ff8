package parser

import (
	"testing"

	"nilan/ast"
	"nilan/cpp"
	"nilan/lexer"
	"nilan/source"
	"nilan/types"
)

func parseSrc(t *testing.T, src string) (*ast.Program, *source.CollectingReporter) {
	t.Helper()
	reg := &source.Registry{}
	rep := &source.CollectingReporter{}
	f := reg.Add("test.c", src)
	tok := lexer.New(f, rep).Scan()
	pp := cpp.New(reg, rep, nil, "test.c")
	tok = pp.Preprocess(tok)

	prog, err := New(rep).Parse(tok)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return prog, rep
}

func findFunc(prog *ast.Program, name string) *ast.Var {
	for _, fn := range prog.Funcs {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

func TestFunctionDefinitionParses(t *testing.T) {
	prog, _ := parseSrc(t, "int add(int a, int b) { return a + b; }")
	fn := findFunc(prog, "add")
	if fn == nil {
		t.Fatalf("expected function add")
	}
	if !fn.IsDefinition {
		t.Fatalf("expected add to be a definition")
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	block, ok := fn.Body.(*ast.Block)
	if !ok || len(block.Body) != 1 {
		t.Fatalf("expected a single return statement body")
	}
	ret, ok := block.Body[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected a return statement")
	}
	if ret.X.Type() == nil {
		t.Fatalf("return expression must have a type attached")
	}
}

func TestPointerArithmeticScalesByPointeeSize(t *testing.T) {
	prog, _ := parseSrc(t, "int f(int *p) { return *(p + 1); }")
	fn := findFunc(prog, "f")
	block := fn.Body.(*ast.Block)
	ret := block.Body[0].(*ast.Return)
	// returnStmt wraps the value in a cast to the function's return type.
	deref := ret.X.(*ast.Cast).X.(*ast.Deref)
	add := deref.X.(*ast.Binary)
	if add.Op != "+" {
		t.Fatalf("expected + binary, got %q", add.Op)
	}
	scaled, ok := add.Y.(*ast.Binary)
	if !ok || scaled.Op != "*" {
		t.Fatalf("expected the integer operand scaled by a multiplication")
	}
	size := scaled.Y.(*ast.Num)
	if size.IntValue != 4 {
		t.Fatalf("expected pointer arithmetic to scale by 4 (sizeof(int)), got %d", size.IntValue)
	}
}

func TestTypedefResolvesInLaterDeclarations(t *testing.T) {
	prog, rep := parseSrc(t, "typedef int myint; myint x;")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	if len(prog.Globals) != 1 {
		t.Fatalf("expected 1 global, got %d", len(prog.Globals))
	}
	if prog.Globals[0].Type.Kind != types.Int {
		t.Fatalf("expected myint to resolve to int, got %v", prog.Globals[0].Type.Kind)
	}
}

func TestScopeShadowing(t *testing.T) {
	prog, _ := parseSrc(t, "int x; int f(void) { int x; x = 1; return x; }")
	fn := findFunc(prog, "f")
	if len(fn.Locals) != 1 {
		t.Fatalf("expected 1 local, got %d", len(fn.Locals))
	}
	block := fn.Body.(*ast.Block)
	ret := block.Body[len(block.Body)-1].(*ast.Return)
	ref := ret.X.(*ast.Cast).X.(*ast.VarRef)
	if ref.Var.Storage != ast.Local {
		t.Fatalf("expected the returned x to resolve to the local, not the global")
	}
	_ = prog.Globals
}

func TestBitfieldSizeOf(t *testing.T) {
	src := "struct S { int a : 3; int b : 5; }; int f(void) { return sizeof(struct S); }"
	prog, rep := parseSrc(t, src)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	fn := findFunc(prog, "f")
	block := fn.Body.(*ast.Block)
	ret := block.Body[0].(*ast.Return)
	n := ret.X.(*ast.Cast).X.(*ast.Num)
	if n.IntValue != 4 {
		t.Fatalf("expected the 3+5-bit bitfield struct to pack into 4 bytes, got %d", n.IntValue)
	}
}

func TestFatalOnFirstErrorStopsParsing(t *testing.T) {
	reg := &source.Registry{}
	rep := &source.CollectingReporter{}
	f := reg.Add("test.c", "int f(void) { return )(; }")
	tok := lexer.New(f, rep).Scan()
	pp := cpp.New(reg, rep, nil, "test.c")
	tok = pp.Preprocess(tok)

	_, err := New(rep).Parse(tok)
	if err == nil {
		t.Fatalf("expected a syntax error")
	}
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("expected a *SyntaxError, got %T", err)
	}
}

func TestSwitchCasePreScan(t *testing.T) {
	src := "int f(int x) { switch (x) { case 1: return 1; case 2: return 2; default: return 0; } return 0; }"
	prog, rep := parseSrc(t, src)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	fn := findFunc(prog, "f")
	block := fn.Body.(*ast.Block)
	sw := block.Body[0].(*ast.Switch)
	if len(sw.Cases) != 2 {
		t.Fatalf("expected 2 case labels, got %d", len(sw.Cases))
	}
	if sw.Default == nil {
		t.Fatalf("expected a default label")
	}
}

func TestIncompleteArrayInitializerResolvesLength(t *testing.T) {
	src := "int a[] = {1, 2, 3};"
	prog, rep := parseSrc(t, src)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	if len(prog.Globals) != 1 {
		t.Fatalf("expected 1 global, got %d", len(prog.Globals))
	}
	g := prog.Globals[0]
	if g.Type.ArrayLen != 3 {
		t.Fatalf("expected array length 3, got %d", g.Type.ArrayLen)
	}
	if len(g.InitData) != 12 {
		t.Fatalf("expected 12 init bytes (3 ints), got %d", len(g.InitData))
	}
}
