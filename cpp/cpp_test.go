package cpp

import (
	"strings"
	"testing"

	"nilan/lexer"
	"nilan/source"
	"nilan/token"
)

func runPreprocess(t *testing.T, src string) ([]string, *source.CollectingReporter) {
	t.Helper()
	reg := &source.Registry{}
	rep := &source.CollectingReporter{}
	f := reg.Add("test.c", src)
	tok := lexer.New(f, rep).Scan()

	p := New(reg, rep, nil, "test.c")
	out := p.Preprocess(tok)

	var texts []string
	for t := out; t != nil && t.Kind != token.EOF; t = t.Next {
		texts = append(texts, t.Text)
	}
	return texts, rep
}

func joinWords(words []string) string {
	return strings.Join(words, " ")
}

func TestObjectLikeMacroExpansion(t *testing.T) {
	texts, rep := runPreprocess(t, "#define FOO 42\nint x = FOO;\n")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	got := joinWords(texts)
	want := "int x = 42 ;"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFunctionLikeMacroExpansion(t *testing.T) {
	texts, rep := runPreprocess(t, "#define ADD(a, b) ((a) + (b))\nint x = ADD(1, 2);\n")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	got := joinWords(texts)
	want := "int x = ( ( 1 ) + ( 2 ) ) ;"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestVariadicMacroExpansion(t *testing.T) {
	texts, rep := runPreprocess(t, "#define LOG(fmt, ...) printf(fmt, __VA_ARGS__)\nLOG(\"x\", 1, 2);\n")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	got := joinWords(texts)
	want := `printf ( "x" , 1 , 2 ) ;`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStringizeOperator(t *testing.T) {
	texts, rep := runPreprocess(t, "#define STR(x) #x\nchar *s = STR(hello world);\n")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	got := joinWords(texts)
	want := `char * s = "hello world" ;`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTokenPasteOperator(t *testing.T) {
	texts, rep := runPreprocess(t, "#define CAT(a, b) a##b\nint CAT(fo, o) = 1;\n")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	got := joinWords(texts)
	want := "int foo = 1 ;"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestHidesetPreventsRecursiveExpansion(t *testing.T) {
	texts, rep := runPreprocess(t, "#define A A\nint x = A;\n")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	got := joinWords(texts)
	want := "int x = A ;"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMutuallyRecursiveMacrosTerminate(t *testing.T) {
	texts, rep := runPreprocess(t, "#define A B\n#define B A\nint x = A;\n")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	got := joinWords(texts)
	if got != "int x = A ;" && got != "int x = B ;" {
		t.Fatalf("expected expansion to terminate on one of the mutually-recursive names, got %q", got)
	}
}

func TestIfdefElseEndif(t *testing.T) {
	src := "#ifdef FOO\nint a;\n#else\nint b;\n#endif\n"
	texts, rep := runPreprocess(t, src)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	got := joinWords(texts)
	if got != "int b ;" {
		t.Fatalf("got %q, want %q", got, "int b ;")
	}
}

func TestIfDefinedConstantExpression(t *testing.T) {
	src := "#define FOO 1\n#if defined(FOO) && FOO == 1\nint yes;\n#else\nint no;\n#endif\n"
	texts, rep := runPreprocess(t, src)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	got := joinWords(texts)
	if got != "int yes ;" {
		t.Fatalf("got %q, want %q", got, "int yes ;")
	}
}

func TestIfArithmeticConstantExpression(t *testing.T) {
	src := "#if (1 + 2 * 3) == 7\nint ok;\n#endif\n"
	texts, rep := runPreprocess(t, src)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	got := joinWords(texts)
	if got != "int ok ;" {
		t.Fatalf("got %q, want %q", got, "int ok ;")
	}
}

func TestPredefinedMacros(t *testing.T) {
	texts, rep := runPreprocess(t, "int x = __STDC__;\n")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	got := joinWords(texts)
	if got != "int x = 1 ;" {
		t.Fatalf("got %q, want %q", got, "int x = 1 ;")
	}
}

func TestLineBuiltinExpandsToCurrentLine(t *testing.T) {
	texts, rep := runPreprocess(t, "int a;\nint b = __LINE__;\n")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	got := joinWords(texts)
	if got != "int a ; int b = 2 ;" {
		t.Fatalf("got %q, want %q", got, "int a ; int b = 2 ;")
	}
}

func TestCounterBuiltinIncrementsEachUse(t *testing.T) {
	texts, rep := runPreprocess(t, "int a = __COUNTER__; int b = __COUNTER__;\n")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	got := joinWords(texts)
	if got != "int a = 0 ; int b = 1 ;" {
		t.Fatalf("got %q, want %q", got, "int a = 0 ; int b = 1 ;")
	}
}

func TestAdjacentStringLiteralConcatenation(t *testing.T) {
	reg := &source.Registry{}
	rep := &source.CollectingReporter{}
	f := reg.Add("test.c", `char *s = "foo" "bar";`)
	tok := lexer.New(f, rep).Scan()
	p := New(reg, rep, nil, "test.c")
	out := p.Preprocess(tok)

	var strTok *token.Token
	for t := out; t != nil && t.Kind != token.EOF; t = t.Next {
		if t.Kind == token.STRING {
			strTok = t
		}
	}
	if strTok == nil {
		t.Fatalf("expected a STRING token in output")
	}
	if string(strTok.StrBytes) != "foobar\x00" {
		t.Fatalf("got %q, want %q", strTok.StrBytes, "foobar\x00")
	}
}

func TestUndefRemovesMacro(t *testing.T) {
	texts, rep := runPreprocess(t, "#define FOO 1\n#undef FOO\n#ifdef FOO\nint a;\n#else\nint b;\n#endif\n")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	got := joinWords(texts)
	if got != "int b ;" {
		t.Fatalf("got %q, want %q", got, "int b ;")
	}
}
