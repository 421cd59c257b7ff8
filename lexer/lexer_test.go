package lexer

import (
	"testing"

	"nilan/source"
	"nilan/token"
)

func scanAll(t *testing.T, text string) ([]*token.Token, *source.CollectingReporter) {
	t.Helper()
	var reg source.Registry
	f := reg.Add("test.c", text)
	rep := &source.CollectingReporter{}
	l := New(f, rep)
	head := l.Scan()

	var toks []*token.Token
	for tok := head; tok != nil; tok = tok.Next {
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks, rep
}

func kinds(toks []*token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func texts(toks []*token.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func TestScanPunctuatorsGreedy(t *testing.T) {
	toks, rep := scanAll(t, "==/=*+>-<!=<=>=!")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	want := []string{"==", "/=", "*", "+", ">", "-", "<", "!=", "<=", ">=", "!", ""}
	if got := texts(toks); !equalStrings(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if toks[len(toks)-1].Kind != token.EOF {
		t.Fatalf("expected trailing EOF token")
	}
}

func TestScanIdentifiersAndKeywords(t *testing.T) {
	toks, rep := scanAll(t, "int x = foo_bar;")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	wantKinds := []token.Kind{token.IDENT, token.IDENT, token.RESERVED, token.IDENT, token.RESERVED, token.EOF}
	if got := kinds(toks); !equalKinds(got, wantKinds) {
		t.Fatalf("got %v, want %v", got, wantKinds)
	}
	if !toks[0].IsKeyword("int") {
		t.Fatalf("expected 'int' to be classified as a keyword")
	}
}

func TestScanPPNumberThenConvert(t *testing.T) {
	toks, rep := scanAll(t, "0x1Au 3.14 0b101")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	for _, tok := range toks[:3] {
		if tok.Kind != token.PPNUMBER {
			t.Fatalf("expected PPNUMBER, got %v (%q)", tok.Kind, tok.Text)
		}
	}

	ConvertPPNumber(toks[0], rep)
	if toks[0].Kind != token.NUMBER || toks[0].IntValue != 0x1A || !toks[0].IsUnsigned {
		t.Fatalf("hex conversion failed: %+v", toks[0])
	}

	ConvertPPNumber(toks[1], rep)
	if toks[1].Kind != token.NUMBER || !toks[1].IsFloat || toks[1].FloatValue != 3.14 {
		t.Fatalf("float conversion failed: %+v", toks[1])
	}

	ConvertPPNumber(toks[2], rep)
	if toks[2].Kind != token.NUMBER || toks[2].IntValue != 5 {
		t.Fatalf("binary literal conversion failed: %+v", toks[2])
	}
}

func TestScanStringLiteralWithEscapes(t *testing.T) {
	toks, rep := scanAll(t, `"a\tb\x41\101\n"`)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	if toks[0].Kind != token.STRING {
		t.Fatalf("expected STRING token, got %v", toks[0].Kind)
	}
	want := []byte("a\tbAA\n\x00")
	if string(toks[0].StrBytes) != string(want) {
		t.Fatalf("got %q, want %q", toks[0].StrBytes, want)
	}
}

func TestScanCharLiteral(t *testing.T) {
	toks, rep := scanAll(t, `'\n' 'A' '\0'`)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	wantValues := []int64{'\n', 'A', 0}
	for i, want := range wantValues {
		if toks[i].Kind != token.CHAR || toks[i].IntValue != want {
			t.Fatalf("token %d: got %+v, want value %d", i, toks[i], want)
		}
	}
}

func TestScanPrefixedStringLiterals(t *testing.T) {
	toks, rep := scanAll(t, `u8"a" u"b" U"c" L"d"`)
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	wantKinds := []token.StringKind{token.StrU8, token.StrU16, token.StrU32, token.StrWide}
	for i, want := range wantKinds {
		if toks[i].StrKind != want {
			t.Fatalf("token %d: got StrKind %v, want %v", i, toks[i].StrKind, want)
		}
	}
}

func TestScanSkipsCommentsAndTracksSpace(t *testing.T) {
	toks, rep := scanAll(t, "a /* comment\nspanning lines */ b // trailing\nc")
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics)
	}
	want := []string{"a", "b", "c", ""}
	if got := texts(toks); !equalStrings(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if !toks[1].HasSpace {
		t.Fatalf("expected 'b' to have HasSpace set after the block comment")
	}
	if !toks[2].AtBOL {
		t.Fatalf("expected 'c' to be marked AtBOL after the line comment")
	}
}

func TestScanUnterminatedStringReportsError(t *testing.T) {
	_, rep := scanAll(t, `"unterminated`)
	if !rep.HasErrors() {
		t.Fatalf("expected an error for an unterminated string literal")
	}
}

func TestScanUnterminatedBlockCommentReportsError(t *testing.T) {
	_, rep := scanAll(t, "int x; /* never closed")
	if !rep.HasErrors() {
		t.Fatalf("expected an error for an unterminated block comment")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalKinds(a, b []token.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
