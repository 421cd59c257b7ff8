package codegen

import (
	"fmt"

	"nilan/source"
	"nilan/token"
)

// InternalError is codegen's typed error, following the same File/Line/Col
// plus message shape as parser.SyntaxError (spec.md §7's "every error
// carries a source location" requirement, extended to the one stage that
// can still reject a tree the parser accepted: an invalid lvalue or a call
// with more than six arguments only surfaces once codegen walks the AST).
type InternalError struct {
	File    *source.File
	Line    int
	Col     int
	Message string
}

func (e *InternalError) Error() string {
	name := "<unknown>"
	if e.File != nil {
		name = e.File.DisplayName()
	}
	return fmt.Sprintf("%s:%d:%d: %s", name, e.Line, e.Col, e.Message)
}

// bailout unwinds code generation on the first error, matching the
// parser's fatal-on-first bailout (spec.md §7): codegen never emits
// assembly for a tree it can't fully lower.
type bailout struct {
	err *InternalError
}

func (g *Generator) errorf(tok *token.Token, format string, args ...interface{}) {
	var f *source.File
	var line, col, pos int
	if tok != nil {
		f, _ = tok.File.(*source.File)
		line, col, pos = tok.Line, tok.Col, tok.Pos
	}
	err := &InternalError{File: f, Line: line, Col: col, Message: fmt.Sprintf(format, args...)}
	if g.reporter != nil {
		g.reporter.Report(source.Diagnostic{
			Severity: source.Error,
			File:     f,
			Offset:   pos,
			Line:     line,
			Col:      col,
			Message:  err.Message,
		})
	}
	panic(bailout{err})
}
