package token

import "testing"

func TestHidesetOperations(t *testing.T) {
	a := Hideset{}.With("FOO").With("BAR")
	b := Hideset{}.With("BAR").With("BAZ")

	if !a.Contains("FOO") || !a.Contains("BAR") {
		t.Fatalf("expected a to contain FOO and BAR, got %v", a)
	}
	if a.Contains("BAZ") {
		t.Fatalf("did not expect a to contain BAZ")
	}

	union := a.Union(b)
	for _, name := range []string{"FOO", "BAR", "BAZ"} {
		if !union.Contains(name) {
			t.Fatalf("expected union to contain %s, got %v", name, union)
		}
	}

	inter := a.Intersect(b)
	if !inter.Contains("BAR") || inter.Contains("FOO") || inter.Contains("BAZ") {
		t.Fatalf("expected intersection to be {BAR}, got %v", inter)
	}
}

func TestHidesetNilIsEmptySet(t *testing.T) {
	var h Hideset
	if h.Contains("anything") {
		t.Fatalf("nil hideset should contain nothing")
	}
	union := h.Union(Hideset{}.With("X"))
	if !union.Contains("X") {
		t.Fatalf("union with nil hideset should just be the other set")
	}
}

func TestTokenIsAndIsKeyword(t *testing.T) {
	tok := &Token{Kind: RESERVED, Text: "struct"}
	if !tok.Is("struct") {
		t.Fatalf("expected token to match 'struct'")
	}
	if !tok.IsKeyword("struct") {
		t.Fatalf("expected 'struct' to be a keyword")
	}

	punct := &Token{Kind: RESERVED, Text: "+"}
	if punct.IsKeyword("+") {
		t.Fatalf("'+' should never be classified as a keyword")
	}
}

func TestTokenCopyDetachesNext(t *testing.T) {
	tail := &Token{Kind: EOF}
	head := &Token{Kind: IDENT, Text: "x", Next: tail}

	cp := head.Copy()
	if cp.Next != nil {
		t.Fatalf("Copy should clear Next, got %v", cp.Next)
	}
	if cp.Text != "x" {
		t.Fatalf("Copy should preserve Text, got %q", cp.Text)
	}
}
