package parser

import (
	"nilan/ast"
	"nilan/token"
	"nilan/types"
)

// identKind distinguishes the three kinds of bindings that share C's
// identifier namespace, per original_source/parse.c's VarScope (which
// holds a *Var, a Typedef, or an EnumVal in one struct).
type identKind int

const (
	identVar identKind = iota
	identTypedef
	identEnumConst
)

type identEntry struct {
	kind     identKind
	v        *ast.Var // identVar
	typedef  *types.Type
	enumVal  int64
}

type tagEntry struct {
	ty *types.Type
}

// scopeFrame is one block's worth of bindings: identifiers (variables,
// typedefs, enum constants) and tags (struct/union/enum names) live in
// separate namespaces, per original_source/parse.c's VarScope/TagScope
// split and spec.md §4.4's scoping rules.
type scopeFrame struct {
	idents map[string]*identEntry
	tags   map[string]*tagEntry
}

func newScopeFrame() *scopeFrame {
	return &scopeFrame{idents: map[string]*identEntry{}, tags: map[string]*tagEntry{}}
}

// enterScope pushes a fresh frame, matching chibicc's enter_scope.
func (p *Parser) enterScope() {
	p.scopes = append(p.scopes, newScopeFrame())
}

// leaveScope pops the innermost frame, matching chibicc's leave_scope.
func (p *Parser) leaveScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

func (p *Parser) top() *scopeFrame {
	return p.scopes[len(p.scopes)-1]
}

func (p *Parser) declareVar(name string, v *ast.Var) {
	p.top().idents[name] = &identEntry{kind: identVar, v: v}
}

func (p *Parser) declareTypedef(name string, ty *types.Type) {
	p.top().idents[name] = &identEntry{kind: identTypedef, typedef: ty}
}

func (p *Parser) declareEnumConst(name string, val int64) {
	p.top().idents[name] = &identEntry{kind: identEnumConst, enumVal: val}
}

func (p *Parser) declareTag(name string, ty *types.Type) {
	p.top().tags[name] = &tagEntry{ty: ty}
}

// findIdent walks the scope stack innermost-to-outermost, matching
// chibicc's find_var.
func (p *Parser) findIdent(name string) *identEntry {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if e, ok := p.scopes[i].idents[name]; ok {
			return e
		}
	}
	return nil
}

// findTag walks the scope stack for a struct/union/enum tag, matching
// chibicc's find_tag.
func (p *Parser) findTag(name string) *types.Type {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if e, ok := p.scopes[i].tags[name]; ok {
			return e.ty
		}
	}
	return nil
}

// findTypedef resolves tok to a typedef's underlying type, or nil if tok
// is not a typedef name in any visible scope, matching chibicc's
// find_typedef.
func (p *Parser) findTypedef(tok *token.Token) *types.Type {
	if tok.Kind != token.IDENT {
		return nil
	}
	e := p.findIdent(tok.Text)
	if e == nil || e.kind != identTypedef {
		return nil
	}
	return e.typedef
}
