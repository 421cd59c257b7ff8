// Recursive descent parser, grounded on original_source/parse.c
// (rui314/chibicc): program := (typedef | function-def | global-var)*.
//
// Each parsing function conceptually returns two values, an AST node and
// the remaining part of the input tokens. Go supports multiple return
// values directly, so the cursor is threaded as an explicit second return
// rather than through an out-parameter pointer (spec.md §4.4: "a token
// cursor passed by out-parameter (never a global)" — here that
// out-parameter becomes a plain extra return value, the idiomatic Go
// rendering of the same contract).
package parser

import (
	"nilan/ast"
	"nilan/source"
	"nilan/token"
	"nilan/types"
)

// Parser holds everything threaded through one translation unit's worth of
// parsing: the scope stack, the accumulated globals/functions, and the
// function currently being parsed (needed so "return" can cast to its
// result type), and the break/continue label stacks for the enclosing
// loop/switch.
type Parser struct {
	reporter source.Reporter

	scopes []*scopeFrame

	locals  []*ast.Var
	globals []*ast.Var
	funcs   []*ast.Var

	currentFn *ast.Var

	// breakTargets/continueTargets are stacks of labels, pushed on
	// entering a loop or switch and popped on leaving, so break/continue
	// resolve to their nearest enclosing construct (spec.md §4.5: "break
	// and continue target labels stored on a small stack").
	breakTargets    []string
	continueTargets []string

	labelCounter int
	anonCounter  int
}

// New creates a Parser reporting diagnostics through rep.
func New(rep source.Reporter) *Parser {
	p := &Parser{reporter: rep}
	p.enterScope()
	return p
}

// Parse parses tok (the full, already-preprocessed token list for one
// translation unit) into a Program. It recovers from the first syntax
// error (spec.md §7: "fatal-on-first") and returns it rather than letting
// the panic escape, so callers get an ordinary (result, error) pair.
func (p *Parser) Parse(tok *token.Token) (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if b, ok := r.(bailout); ok {
				err = b.err
				return
			}
			panic(r)
		}
	}()
	prog = p.program(tok)
	return prog, nil
}

func (p *Parser) newLabel(purpose string) string {
	p.labelCounter++
	return ".L." + purpose + "." + itoa(p.labelCounter)
}

func (p *Parser) newAnonName() string {
	p.anonCounter++
	return ".L.." + itoa(p.anonCounter)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// skip requires tok to be the punctuator/keyword text and advances past
// it, matching chibicc's skip().
func (p *Parser) skip(tok *token.Token, text string) *token.Token {
	if !tok.Is(text) {
		p.errorf(tok, "expected %q", text)
	}
	return tok.Next
}

// consume reports whether tok is text; if so it advances past it,
// matching chibicc's consume().
func (p *Parser) consume(tok *token.Token, text string) (bool, *token.Token) {
	if tok.Is(text) {
		return true, tok.Next
	}
	return false, tok
}

func (p *Parser) expectIdent(tok *token.Token) (string, *token.Token) {
	if tok.Kind != token.IDENT {
		p.errorf(tok, "expected an identifier")
	}
	return tok.Text, tok.Next
}

func (p *Parser) expectNumber(tok *token.Token) (int64, *token.Token) {
	if tok.Kind != token.NUMBER {
		p.errorf(tok, "expected a number")
	}
	return tok.IntValue, tok.Next
}

// program = (typedef | function-definition | global-variable)*
func (p *Parser) program(tok *token.Token) *ast.Program {
	for tok.Kind != token.EOF {
		attr := &declAttr{}
		basety, rest := p.typespec(tok, attr)
		tok = rest

		if attr.isTypedef {
			tok = p.parseTypedef(tok, basety)
			continue
		}

		if p.isFunctionStart(tok) {
			tok = p.function(tok, basety, attr)
			continue
		}

		tok = p.globalVariable(tok, basety, attr)
	}

	return &ast.Program{Funcs: p.funcs, Globals: p.globals}
}

// isFunctionStart looks ahead through a declarator to see whether it
// produces a function type, matching chibicc's is_function. The lookahead
// runs in a disposable scope frame so any tag it would otherwise register
// (an inline struct in a parameter list) doesn't leak into the real parse.
func (p *Parser) isFunctionStart(tok *token.Token) bool {
	if tok.Is(";") {
		return false
	}
	p.enterScope()
	ty, _, _ := p.declarator(tok, types.NewInt())
	p.leaveScope()
	return ty.Kind == types.Function
}

type declAttr struct {
	isTypedef bool
	isStatic  bool
	isExtern  bool
	isTLS     bool
}

func (p *Parser) function(tok *token.Token, basety *types.Type, attr *declAttr) *token.Token {
	ty, name, rest := p.declarator(tok, basety)
	tok = rest

	fn := &ast.Var{Name: name, Type: ty, Storage: ast.Function, IsStatic: attr.isStatic, IsVariadic: ty.IsVariadic}
	p.declareVar(name, fn)
	p.globals = append(p.globals, fn)
	p.funcs = append(p.funcs, fn)

	if ok, rest2 := p.consume(tok, ";"); ok {
		fn.IsDefinition = false
		return rest2
	}
	fn.IsDefinition = true

	p.currentFn = fn
	p.locals = nil
	p.enterScope()
	for _, param := range ty.Params {
		pv := &ast.Var{Name: param.Name, Type: param, Storage: ast.Local}
		p.declareVar(param.Name, pv)
		p.locals = append(p.locals, pv)
	}
	fn.Params = append([]*ast.Var{}, p.locals...)

	tok = p.skip(tok, "{")
	body, rest3 := p.compoundStmt(tok)
	tok = rest3
	fn.Body = body
	fn.Locals = p.locals
	p.leaveScope()
	p.currentFn = nil
	return tok
}

func (p *Parser) globalVariable(tok *token.Token, basety *types.Type, attr *declAttr) *token.Token {
	first := true
	for {
		if ok, rest := p.consume(tok, ";"); ok {
			return rest
		}
		if !first {
			tok = p.skip(tok, ",")
		}
		first = false

		ty, name, rest := p.declarator(tok, basety)
		tok = rest

		gv := &ast.Var{Name: name, Type: ty, Storage: ast.Global, IsStatic: attr.isStatic, IsExtern: attr.isExtern, IsTLS: attr.isTLS}
		p.declareVar(name, gv)

		if ok, rest2 := p.consume(tok, "="); ok {
			init, rest3 := p.initializer(rest2, ty)
			tok = rest3
			gv.Type = init.Type
			gv.InitData = p.initToBytes(init, init.Type)
		} else if !attr.isExtern {
			gv.IsBSS = true
		}

		if !attr.isExtern {
			p.globals = append(p.globals, gv)
		}
	}
}
