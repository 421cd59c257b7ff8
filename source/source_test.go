package source

import "testing"

func TestRegistryAssignsMonotonicFileNumbers(t *testing.T) {
	var reg Registry
	a := reg.Add("a.c", "int a;\n")
	b := reg.Add("b.c", "int b;\n")

	if a.Number() != 0 || b.Number() != 1 {
		t.Fatalf("expected file numbers 0,1; got %d,%d", a.Number(), b.Number())
	}
	if len(reg.Files()) != 2 {
		t.Fatalf("expected 2 registered files, got %d", len(reg.Files()))
	}
}

func TestPosOfFindsLineAndColumn(t *testing.T) {
	text := "int a;\nint b = 1;\n"
	line, col := PosOf(text, 7) // first byte of second line
	if line != 2 || col != 1 {
		t.Fatalf("expected line 2 col 1, got line %d col %d", line, col)
	}

	line, col = PosOf(text, 11) // the 'b' of "int b"
	if line != 2 || col != 5 {
		t.Fatalf("expected line 2 col 5, got line %d col %d", line, col)
	}
}

func TestDisplayNamePrefersOverride(t *testing.T) {
	f := &File{Path: "real.c", Display: "real.c"}
	if f.DisplayName() != "real.c" {
		t.Fatalf("expected real.c, got %s", f.DisplayName())
	}
	f.Display = "virtual.h"
	if f.DisplayName() != "virtual.h" {
		t.Fatalf("expected virtual.h after #line override, got %s", f.DisplayName())
	}
}

func TestCollectingReporterHasErrors(t *testing.T) {
	r := &CollectingReporter{}
	f := &File{Path: "x.c", Text: "int;\n"}
	r.Report(Diagnostic{Severity: Warning, File: f, Message: "unused"})
	if r.HasErrors() {
		t.Fatalf("a warning-only reporter should not report errors")
	}
	r.Report(Diagnostic{Severity: Error, File: f, Message: "boom"})
	if !r.HasErrors() {
		t.Fatalf("expected HasErrors to be true after an Error diagnostic")
	}
}
