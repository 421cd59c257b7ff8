// Initializer elaboration, per spec.md §4.4 ("Initializer handling"):
// scalar initializers lower to a single assignment, aggregate initializers
// recurse member-by-member with trailing unspecified members zero-filled.
// Not present in the narrower original_source/parse.c snapshot this
// grammar is otherwise grounded on (its declaration() only accepts a bare
// scalar `"=" expr`); built from spec.md's fuller description and the
// struct/array layout already implemented in the types package.
package parser

import (
	"nilan/ast"
	"nilan/token"
	"nilan/types"
)

// Initializer is an intermediate tree between the initializer-list grammar
// and the two things it's lowered into: a statement sequence for locals
// (initToStmts) or a byte image for globals (initToBytes).
type Initializer struct {
	Expr     ast.Expr
	Children []*Initializer
	Type     *types.Type
}

// initializer parses a brace-enclosed or scalar initializer against the
// expected type ty, matching the shape of chibicc's later (C99-complete)
// initializer() rather than this snapshot's scalar-only one.
func (p *Parser) initializer(tok *token.Token, ty *types.Type) (*Initializer, *token.Token) {
	if ty.Kind == types.Array && ty.Base.Kind == types.Char && tok.Kind == token.STRING {
		return p.stringInitializer(tok, ty)
	}

	if ty.Kind == types.Array {
		return p.arrayInitializer(tok, ty)
	}

	if ty.Kind == types.Struct || ty.Kind == types.Union {
		if tok.Is("{") {
			return p.structInitializer(tok, ty)
		}
	}

	x, rest := p.assign(tok)
	x = p.implicitCast(x, ty)
	return &Initializer{Expr: x, Type: ty}, rest
}

// stringInitializer expands a string literal's bytes into one Num child
// per byte, unifying with the generic array-initializer path rather than
// needing its own lowering rule.
func (p *Parser) stringInitializer(tok *token.Token, ty *types.Type) (*Initializer, *token.Token) {
	bytes := tok.StrBytes
	length := ty.ArrayLen
	if ty.Incomplete {
		length = len(bytes)
	}

	arrTy := types.ArrayOf(types.NewChar(), length)
	init := &Initializer{Type: arrTy}
	for i := 0; i < length; i++ {
		var b byte
		if i < len(bytes) {
			b = bytes[i]
		}
		n := p.newNum(tok, int64(b))
		init.Children = append(init.Children, &Initializer{Expr: n, Type: types.NewChar()})
	}
	return init, tok.Next
}

// arrayInitializer = "{" initializer ("," initializer)* ","? "}"
// Trailing unspecified elements are zero-filled once the element count is
// known, per spec.md §4.4.
func (p *Parser) arrayInitializer(tok *token.Token, ty *types.Type) (*Initializer, *token.Token) {
	tok = p.skip(tok, "{")

	var children []*Initializer
	for !tok.Is("}") {
		if len(children) > 0 {
			tok = p.skip(tok, ",")
			if tok.Is("}") {
				break
			}
		}
		child, rest := p.initializer(tok, ty.Base)
		children = append(children, child)
		tok = rest
	}
	tok = p.skip(tok, "}")

	length := ty.ArrayLen
	if ty.Incomplete {
		length = len(children)
	}
	for len(children) < length {
		children = append(children, p.zeroInitializer(ty.Base))
	}

	arrTy := types.ArrayOf(ty.Base, length)
	return &Initializer{Children: children, Type: arrTy}, tok
}

// structInitializer = "{" initializer ("," initializer)* ","? "}"
// unions only ever initialize their first member, matching chibicc's
// layout where a union's "struct_members" share offset 0.
func (p *Parser) structInitializer(tok *token.Token, ty *types.Type) (*Initializer, *token.Token) {
	tok = p.skip(tok, "{")

	members := ty.Members
	if ty.Kind == types.Union && len(members) > 1 {
		members = members[:1]
	}

	var children []*Initializer
	for i := 0; !tok.Is("}") && i < len(members); i++ {
		if i > 0 {
			tok = p.skip(tok, ",")
			if tok.Is("}") {
				break
			}
		}
		child, rest := p.initializer(tok, members[i].Type)
		children = append(children, child)
		tok = rest
	}
	tok = p.skip(tok, "}")

	for i := len(children); i < len(members); i++ {
		children = append(children, p.zeroInitializer(members[i].Type))
	}

	return &Initializer{Children: children, Type: ty}, tok
}

func (p *Parser) zeroInitializer(ty *types.Type) *Initializer {
	switch ty.Kind {
	case types.Array:
		init := &Initializer{Type: ty}
		for i := 0; i < ty.ArrayLen; i++ {
			init.Children = append(init.Children, p.zeroInitializer(ty.Base))
		}
		return init
	case types.Struct, types.Union:
		init := &Initializer{Type: ty}
		for _, m := range ty.Members {
			init.Children = append(init.Children, p.zeroInitializer(m.Type))
		}
		return init
	default:
		n := &ast.Num{ExprBase: ast.ExprBase{}, IntValue: 0}
		n.SetType(ty)
		return &Initializer{Expr: n, Type: ty}
	}
}

// initToStmts recursively lowers init into assignment statements targeting
// lvalue, zero-filling trailing unspecified members as it goes (those were
// already materialized as zero Initializer leaves by zeroInitializer).
func (p *Parser) initToStmts(lvalue ast.Expr, init *Initializer) []ast.Stmt {
	if init.Expr != nil {
		assign := p.newAssign(lvalue.Tok(), lvalue, init.Expr)
		return []ast.Stmt{&ast.ExprStmt{StmtBase: ast.StmtBase{Token: lvalue.Tok()}, X: assign}}
	}

	var stmts []ast.Stmt
	switch init.Type.Kind {
	case types.Array:
		for i, child := range init.Children {
			idx := p.newNum(lvalue.Tok(), int64(i))
			elem := p.deref(lvalue.Tok(), p.newAdd(lvalue.Tok(), lvalue, idx))
			stmts = append(stmts, p.initToStmts(elem, child)...)
		}
	case types.Struct, types.Union:
		for i, child := range init.Children {
			if i >= len(init.Type.Members) {
				break
			}
			m := init.Type.Members[i]
			member := p.newMember(lvalue.Tok(), lvalue, m.Name, false)
			stmts = append(stmts, p.initToStmts(member, child)...)
		}
	}
	return stmts
}

// initToBytes recursively packs init into a global's literal byte image,
// zero-filled for unspecified trailing members, matching spec.md §4.4's
// global-initializer requirement. Only constant sub-expressions are
// supported, matching chibicc's eval()-based global initializer packer.
func (p *Parser) initToBytes(init *Initializer, ty *types.Type) []byte {
	buf := make([]byte, types.SizeOf(ty))
	p.packInto(buf, 0, init)
	return buf
}

func (p *Parser) packInto(buf []byte, offset int, init *Initializer) {
	if init.Expr != nil {
		v := p.evalConst(init.Expr)
		size := types.SizeOf(init.Type)
		for i := 0; i < size && offset+i < len(buf); i++ {
			buf[offset+i] = byte(v >> (8 * uint(i)))
		}
		return
	}

	switch init.Type.Kind {
	case types.Array:
		elemSize := types.SizeOf(init.Type.Base)
		for i, child := range init.Children {
			p.packInto(buf, offset+i*elemSize, child)
		}
	case types.Struct:
		for i, child := range init.Children {
			if i >= len(init.Type.Members) {
				break
			}
			p.packInto(buf, offset+init.Type.Members[i].Offset, child)
		}
	case types.Union:
		if len(init.Children) > 0 {
			p.packInto(buf, offset, init.Children[0])
		}
	}
}
