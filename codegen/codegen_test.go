package codegen

import (
	"bytes"
	"strings"
	"testing"

	"nilan/cpp"
	"nilan/lexer"
	"nilan/parser"
	"nilan/source"
)

// compile runs a source string through the full lexer -> preprocessor ->
// parser -> codegen pipeline and returns the emitted assembly text, the
// same pipeline spec.md §8's end-to-end scenarios describe and
// parser_test.go's parseSrc helper builds halfway to.
func compile(t *testing.T, src string) (string, *source.CollectingReporter) {
	t.Helper()
	reg := &source.Registry{}
	rep := &source.CollectingReporter{}
	f := reg.Add("test.c", src)
	tok := lexer.New(f, rep).Scan()
	pp := cpp.New(reg, rep, nil, "test.c")
	tok = pp.Preprocess(tok)

	prog, err := parser.New(rep).Parse(tok)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := New(&buf, rep).Generate(prog); err != nil {
		t.Fatalf("unexpected codegen error: %v", err)
	}
	return buf.String(), rep
}

func TestSimpleReturnEmitsPrologueAndEpilogue(t *testing.T) {
	asm, rep := compile(t, "int main(void) { return 42; }")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	for _, want := range []string{".globl main", "main:", "push %rbp", "mov %rsp, %rbp", "pop %rbp", "ret"} {
		if !strings.Contains(asm, want) {
			t.Fatalf("expected assembly to contain %q, got:\n%s", want, asm)
		}
	}
}

func TestBinaryExpressionArithmetic(t *testing.T) {
	asm, rep := compile(t, "int add(int a, int b) { return a + b; }")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	if !strings.Contains(asm, "add %rdi, %rax") {
		t.Fatalf("expected an add instruction combining the two operands, got:\n%s", asm)
	}
}

func TestIfElseEmitsElseAndEndLabels(t *testing.T) {
	asm, rep := compile(t, "int f(int x) { if (x) { return 1; } else { return 0; } }")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	for _, want := range []string{".L.else.", ".L.end.", "je"} {
		if !strings.Contains(asm, want) {
			t.Fatalf("expected if/else codegen to contain %q, got:\n%s", want, asm)
		}
	}
}

func TestForLoopEmitsBeginAndBreakLabels(t *testing.T) {
	asm, rep := compile(t, "int f(void) { int s = 0; for (int i = 0; i < 10; i = i + 1) { s = s + i; } return s; }")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	if !strings.Contains(asm, ".L.begin.") {
		t.Fatalf("expected a .L.begin label for the loop top, got:\n%s", asm)
	}
	if !strings.Contains(asm, ".L.break.") {
		t.Fatalf("expected the loop's break label, got:\n%s", asm)
	}
}

func TestSwitchCaseFallsThroughToBreak(t *testing.T) {
	asm, rep := compile(t, "int f(int x) { switch (x) { case 1: return 1; case 2: return 2; default: return 0; } return 0; }")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	for _, want := range []string{"cmp $1, %rax", "cmp $2, %rax", ".L.case.", ".L.default."} {
		if !strings.Contains(asm, want) {
			t.Fatalf("expected switch codegen to contain %q, got:\n%s", want, asm)
		}
	}
}

func TestCallWithMoreThanSixArgumentsIsAnError(t *testing.T) {
	src := "int g(int,int,int,int,int,int,int); int f(void) { return g(1,2,3,4,5,6,7); }"
	reg := &source.Registry{}
	rep := &source.CollectingReporter{}
	f := reg.Add("test.c", src)
	tok := lexer.New(f, rep).Scan()
	pp := cpp.New(reg, rep, nil, "test.c")
	tok = pp.Preprocess(tok)
	prog, err := parser.New(rep).Parse(tok)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := New(&buf, rep).Generate(prog); err == nil {
		t.Fatalf("expected a codegen error for a call with more than 6 arguments")
	}
}

func TestStackSizeIsSixteenByteAligned(t *testing.T) {
	asm, rep := compile(t, "int f(void) { char a; char b; char c; return 0; }")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	if !strings.Contains(asm, "sub $16, %rsp") {
		t.Fatalf("expected three 1-byte locals to round the frame up to 16 bytes, got:\n%s", asm)
	}
}

func TestGlobalVariableEmitsDataSection(t *testing.T) {
	asm, rep := compile(t, "int counter = 7; int f(void) { return counter; }")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	for _, want := range []string{".data", ".globl counter", "counter:"} {
		if !strings.Contains(asm, want) {
			t.Fatalf("expected global codegen to contain %q, got:\n%s", want, asm)
		}
	}
}

func TestStructMemberAccessUsesByteOffset(t *testing.T) {
	src := "struct P { int x; int y; }; int f(struct P *p) { return p->y; }"
	asm, rep := compile(t, src)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	if !strings.Contains(asm, "add $4, %rax") {
		t.Fatalf("expected the second member's 4-byte offset to appear, got:\n%s", asm)
	}
}
