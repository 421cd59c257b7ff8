// Type-name grammar: typespec, declarator, abstract-declarator, struct/
// union/enum declarations. Grounded on original_source/parse.c's typespec/
// declarator/type_suffix/struct_union_decl/struct_members, generalized per
// SPEC_FULL.md §4.4/§6 to add signed/unsigned modifiers, enums, and
// bit-fields that this chibicc snapshot's grammar predates.
package parser

import (
	"nilan/token"
	"nilan/types"
)

const (
	tyVoid = 1 << (2 * iota)
	tyBool
	tyChar
	tyShort
	tyInt
	tyLong
	tyOther
	tySigned
	tyUnsigned
)

// isTypename reports whether tok begins a type-name: a type keyword, a
// struct/union/enum keyword, or a typedef name bound in the current scope
// chain (matching chibicc's is_typename, generalized to also recognize
// signed/unsigned).
func (p *Parser) isTypename(tok *token.Token) bool {
	switch tok.Text {
	case "void", "_Bool", "char", "short", "int", "long", "struct", "union",
		"enum", "typedef", "static", "extern", "_Thread_local", "const",
		"signed", "unsigned", "typeof":
		return tok.Kind == token.RESERVED || tok.Kind == token.IDENT
	}
	return p.findTypedef(tok) != nil
}

// typespec parses declaration-specifiers: storage-class keywords feeding
// attr, plus the base type itself, matching chibicc's typespec/
// declspec split (merged here since this grammar has no function
// specifiers to separate out).
func (p *Parser) typespec(tok *token.Token, attr *declAttr) (*types.Type, *token.Token) {
	var counter int
	var ty *types.Type

loop:
	for p.isTypename(tok) {
		if attr != nil && (tok.Is("typedef") || tok.Is("static") || tok.Is("extern") || tok.Is("_Thread_local")) {
			switch {
			case tok.Is("typedef"):
				attr.isTypedef = true
			case tok.Is("static"):
				attr.isStatic = true
			case tok.Is("extern"):
				attr.isExtern = true
			case tok.Is("_Thread_local"):
				attr.isTLS = true
			}
			tok = tok.Next
			continue
		}

		if tok.Is("const") {
			tok = tok.Next
			continue
		}

		if tok.Is("struct") || tok.Is("union") || tok.Is("enum") {
			if counter != 0 {
				break loop
			}
			switch {
			case tok.Is("struct"):
				ty, tok = p.structUnionDecl(tok.Next, false)
			case tok.Is("union"):
				ty, tok = p.structUnionDecl(tok.Next, true)
			default:
				ty, tok = p.enumDecl(tok.Next)
			}
			counter += tyOther
			continue
		}

		if td := p.findTypedef(tok); td != nil {
			if counter != 0 {
				break loop
			}
			ty = td
			tok = tok.Next
			counter += tyOther
			continue
		}

		switch tok.Text {
		case "void":
			counter += tyVoid
		case "_Bool":
			counter += tyBool
		case "char":
			counter += tyChar
		case "short":
			counter += tyShort
		case "int":
			counter += tyInt
		case "long":
			counter += tyLong
		case "signed":
			counter += tySigned
		case "unsigned":
			counter += tyUnsigned
		default:
			break loop
		}
		tok = tok.Next
	}

	if counter == 0 {
		if ty == nil {
			p.errorf(tok, "expected a type name")
		}
		return ty, tok
	}

	switch counter {
	case tyOther:
		// struct/union/enum or typedef name: ty was set in the loop.
	case tyVoid:
		ty = types.NewVoid()
	case tyBool:
		ty = types.NewBool()
	case tyChar, tySigned + tyChar:
		ty = types.NewChar()
	case tyUnsigned + tyChar:
		ty = withUnsigned(types.NewChar())
	case tyShort, tyShort + tyInt, tySigned + tyShort, tySigned + tyShort + tyInt:
		ty = types.NewShort()
	case tyUnsigned + tyShort, tyUnsigned + tyShort + tyInt:
		ty = withUnsigned(types.NewShort())
	case tyInt, tySigned, tySigned + tyInt:
		ty = types.NewInt()
	case tyUnsigned, tyUnsigned + tyInt:
		ty = withUnsigned(types.NewInt())
	case tyLong, tyLong + tyInt, tyLong + tyLong, tyLong + tyLong + tyInt,
		tySigned + tyLong, tySigned + tyLong + tyInt:
		ty = types.NewLong()
	case tyUnsigned + tyLong, tyUnsigned + tyLong + tyInt,
		tyUnsigned + tyLong + tyLong, tyUnsigned + tyLong + tyLong + tyInt:
		ty = types.NewUnsignedLong()
	default:
		p.errorf(tok, "invalid type combination")
	}
	return ty, tok
}

func withUnsigned(ty *types.Type) *types.Type {
	ty.Unsigned = true
	return ty
}

// declarator = "*"* ("(" declarator ")" | ident) type-suffix
// matching chibicc's declarator. Returns the declared type, the declared
// identifier's name (empty for an abstract declarator), and the remaining
// tokens.
func (p *Parser) declarator(tok *token.Token, base *types.Type) (*types.Type, string, *token.Token) {
	ty := base
	for {
		ok, rest := p.consume(tok, "*")
		if !ok {
			break
		}
		tok = rest
		ty = types.PointerTo(ty)
	}

	if ok, rest := p.consume(tok, "("); ok {
		start := tok
		_ = start
		// Look ahead through a dummy declarator to find where the
		// parenthesized inner declarator ends, then parse the
		// type-suffix that follows, and finally re-parse the inner
		// declarator against the now-known base type. Mirrors
		// chibicc's declarator's two-pass "(" handling.
		dummy := types.NewInt()
		_, _, afterInner := p.declarator(rest, dummy)
		afterInner = p.skip(afterInner, ")")
		ty, afterSuffix := p.typeSuffix(afterInner, base)
		innerTy, name, _ := p.declarator(rest, ty)
		return innerTy, name, afterSuffix
	}

	name := ""
	if tok.Kind == token.IDENT {
		name = tok.Text
		tok = tok.Next
	}

	ty, tok = p.typeSuffix(tok, ty)
	ty.Name = name
	return ty, name, tok
}

// abstractDeclarator = "*"* ("(" abstractDeclarator ")")? type-suffix
func (p *Parser) abstractDeclarator(tok *token.Token, base *types.Type) (*types.Type, *token.Token) {
	ty := base
	for {
		ok, rest := p.consume(tok, "*")
		if !ok {
			break
		}
		tok = rest
		ty = types.PointerTo(ty)
	}

	if ok, rest := p.consume(tok, "("); ok {
		dummy := types.NewInt()
		_, afterInner := p.abstractDeclarator(rest, dummy)
		afterInner = p.skip(afterInner, ")")
		outerTy, afterSuffix := p.typeSuffix(afterInner, base)
		innerTy, _ := p.abstractDeclarator(rest, outerTy)
		return innerTy, afterSuffix
	}

	return p.typeSuffix(tok, ty)
}

// typeSuffix dispatches on what follows a declarator's base: function
// parameters, array dimensions, or nothing, matching chibicc's
// type_suffix.
func (p *Parser) typeSuffix(tok *token.Token, ty *types.Type) (*types.Type, *token.Token) {
	if ok, rest := p.consume(tok, "("); ok {
		return p.funcParams(rest, ty)
	}
	if ok, rest := p.consume(tok, "["); ok {
		return p.arrayDimensions(rest, ty)
	}
	return ty, tok
}

func (p *Parser) arrayDimensions(tok *token.Token, ty *types.Type) (*types.Type, *token.Token) {
	if ok, rest := p.consume(tok, "]"); ok {
		base, after := p.typeSuffix(rest, ty)
		arr := types.ArrayOf(base, 0)
		arr.Incomplete = true
		return arr, after
	}
	length, rest := p.constExpr(tok)
	rest = p.skip(rest, "]")
	base, after := p.typeSuffix(rest, ty)
	return types.ArrayOf(base, int(length)), after
}

// funcParams = (param ("," param)* ("," "...")? )? ")"
func (p *Parser) funcParams(tok *token.Token, retTy *types.Type) (*types.Type, *token.Token) {
	var params []*types.Type
	variadic := false

	if tok.Is("void") && tok.Next.Is(")") {
		tok = tok.Next
	}
	for !tok.Is(")") {
		if len(params) > 0 {
			tok = p.skip(tok, ",")
		}
		if ok, rest := p.consume(tok, "..."); ok {
			variadic = true
			tok = p.skip(rest, ")")
			break
		}

		basety, rest := p.typespec(tok, nil)
		ty, name, rest2 := p.declarator(rest, basety)
		ty = ty.Decay()
		ty.Name = name
		params = append(params, ty)
		tok = rest2
	}
	if !variadic {
		tok = p.skip(tok, ")")
	}

	fn := types.FuncType(retTy)
	fn.Params = params
	fn.IsVariadic = variadic
	return fn, tok
}

// typeName = typespec abstract-declarator, used by casts, sizeof,
// _Alignof and offsetof's type-name operand.
func (p *Parser) typeName(tok *token.Token) (*types.Type, *token.Token) {
	basety, rest := p.typespec(tok, nil)
	return p.abstractDeclarator(rest, basety)
}

// structUnionDecl = ident? ("{" structMembers)?
func (p *Parser) structUnionDecl(tok *token.Token, isUnion bool) (*types.Type, *token.Token) {
	var tagName string
	if tok.Kind == token.IDENT {
		tagName = tok.Text
		tok = tok.Next
	}

	if !tok.Is("{") {
		if tagName == "" {
			p.errorf(tok, "expected a struct/union tag or body")
		}
		if ty := p.findTag(tagName); ty != nil {
			return ty, tok
		}
		ty := &types.Type{Kind: types.Struct, Incomplete: true}
		if isUnion {
			ty.Kind = types.Union
		}
		p.declareTag(tagName, ty)
		return ty, tok
	}

	tok = tok.Next
	var members []*types.Member
	members, tok = p.structMembers(tok)

	var ty *types.Type
	if isUnion {
		ty = types.LayoutUnion(tagName, members)
	} else {
		ty = types.LayoutStruct(tagName, members)
	}
	if tagName != "" {
		p.declareTag(tagName, ty)
	}
	return ty, tok
}

// structMembers = (typespec declarator (":" const-expr)? ";")* "}"
// the ":" bit-field suffix is a supplemented addition beyond the chibicc
// snapshot this grammar is grounded on (see SPEC_FULL.md §6).
func (p *Parser) structMembers(tok *token.Token) ([]*types.Member, *token.Token) {
	var members []*types.Member
	for !tok.Is("}") {
		basety, rest := p.typespec(tok, nil)
		tok = rest

		first := true
		for !tok.Is(";") {
			if !first {
				tok = p.skip(tok, ",")
			}
			first = false

			ty, name, rest2 := p.declarator(tok, basety)
			tok = rest2

			m := &types.Member{Name: name, Type: ty}
			if ok, rest3 := p.consume(tok, ":"); ok {
				width, rest4 := p.constExpr(rest3)
				tok = rest4
				m.IsBitfield = true
				m.BitWidth = int(width)
			}
			members = append(members, m)
		}
		tok = p.skip(tok, ";")
	}
	return members, tok.Next
}

// enumDecl = ident? "{" enumerator ("," enumerator)* ","? "}"
// enumerator = ident ("=" const-expr)?
func (p *Parser) enumDecl(tok *token.Token) (*types.Type, *token.Token) {
	var tagName string
	if tok.Kind == token.IDENT {
		tagName = tok.Text
		tok = tok.Next
	}

	if !tok.Is("{") {
		if ty := p.findTag(tagName); ty != nil {
			return ty, tok
		}
		p.errorf(tok, "unknown enum tag")
	}
	tok = tok.Next

	ty := types.NewEnum()
	var val int64
	first := true
	for !tok.Is("}") {
		if !first {
			tok = p.skip(tok, ",")
			if tok.Is("}") {
				break
			}
		}
		first = false

		name, rest := p.expectIdent(tok)
		tok = rest
		if ok, rest2 := p.consume(tok, "="); ok {
			val, tok = p.constExpr(rest2)
		}
		p.declareEnumConst(name, val)
		val++
	}
	tok = p.skip(tok, "}")

	if tagName != "" {
		p.declareTag(tagName, ty)
	}
	return ty, tok
}

// parseTypedef registers each declarator of a `typedef` declaration as a
// typedef name in the current scope, matching chibicc's parse_typedef.
func (p *Parser) parseTypedef(tok *token.Token, basety *types.Type) *token.Token {
	first := true
	for !tok.Is(";") {
		if !first {
			tok = p.skip(tok, ",")
		}
		first = false

		ty, name, rest := p.declarator(tok, basety)
		tok = rest
		if name == "" {
			p.errorf(tok, "typedef name omitted")
		}
		p.declareTypedef(name, ty)
	}
	return tok.Next
}
