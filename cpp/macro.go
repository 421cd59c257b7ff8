package cpp

import "nilan/token"

// Macro is an object-like, function-like, or built-in macro definition,
// per spec.md §3 ("Macro"). Function-like macros carry an ordered
// parameter list and an optional variadic-parameter name; built-ins
// instead carry a Handler that synthesizes a result token list from the
// invoking token, matching chibicc's Macro struct and macro_handler_fn.
type Macro struct {
	Name        string
	IsObjLike   bool
	Params      []string
	VarArgsName string // "" if the macro is not variadic
	Body        *token.Token
	Handler     func(tmpl *token.Token) *token.Token
}

// MacroArg is one actual argument bound during a function-like macro
// invocation, matching chibicc's MacroArg.
type MacroArg struct {
	Name      string
	IsVarArgs bool
	Tok       *token.Token
}

func (p *Preprocessor) findMacro(tok *token.Token) *Macro {
	if tok.Kind != token.IDENT {
		return nil
	}
	return p.macros[tok.Text]
}

func (p *Preprocessor) addMacro(name string, isObjLike bool, body *token.Token) *Macro {
	m := &Macro{Name: name, IsObjLike: isObjLike, Body: body}
	p.macros[name] = m
	return m
}

func (p *Preprocessor) addBuiltin(name string, fn func(tmpl *token.Token) *token.Token) *Macro {
	m := p.addMacro(name, true, nil)
	m.Handler = fn
	return m
}

// defineMacro installs a simple object-like macro from a textual body, used
// both by initMacros for predefined macros and by a `-D` CLI flag.
func (p *Preprocessor) defineMacro(name, text string) {
	tok := p.tokenizeString("<built-in>", text)
	p.addMacro(name, true, tok)
}

// undefMacro removes a macro definition, matching chibicc's undef_macro.
func (p *Preprocessor) undefMacro(name string) {
	delete(p.macros, name)
}

// DefineMacro installs an object-like macro from CLI text of the form
// "NAME=body" or plain "NAME" (equivalent to "NAME=1"), matching cc1's
// handling of a `-D` command-line flag (spec.md §6). It must be called
// before Preprocess.
func (p *Preprocessor) DefineMacro(def string) {
	name, text, found := splitDef(def)
	if !found {
		text = "1"
	}
	p.defineMacro(name, text)
}

// UndefMacro removes a macro definition (a predefined one or an earlier
// -D) in response to a CLI `-U` flag. It must be called before Preprocess;
// a later #define of the same name in the source still takes effect.
func (p *Preprocessor) UndefMacro(name string) {
	p.undefMacro(name)
}

func splitDef(def string) (name, text string, found bool) {
	for i := 0; i < len(def); i++ {
		if def[i] == '=' {
			return def[:i], def[i+1:], true
		}
	}
	return def, "", false
}

// readMacroParams parses a function-like macro's parameter list, returning
// the parameter names and (if present) the variadic parameter's name, per
// chibicc's read_macro_params. tok must point just past the opening '('.
func readMacroParams(tok *token.Token) (params []string, varArgsName string, rest *token.Token) {
	for !tok.Is(")") {
		if len(params) > 0 || varArgsName != "" {
			tok = tok.Next // skip ","
		}
		if tok.Is("...") {
			varArgsName = "__VA_ARGS__"
			return params, varArgsName, tok.Next.Next
		}
		if tok.Kind != token.IDENT {
			return params, varArgsName, tok
		}
		if tok.Next.Is("...") {
			varArgsName = tok.Text
			return params, varArgsName, tok.Next.Next.Next
		}
		params = append(params, tok.Text)
		tok = tok.Next
	}
	return params, varArgsName, tok.Next
}

// readMacroDefinition handles a `#define` directive's body (the part after
// the macro name), matching chibicc's read_macro_definition.
func (p *Preprocessor) readMacroDefinition(tok *token.Token) *token.Token {
	if tok.Kind != token.IDENT {
		p.errorf(tok, "macro name must be an identifier")
		return p.skipLine(tok)
	}
	name := tok.Text
	tok = tok.Next

	if !tok.HasSpace && tok.Is("(") {
		params, varArgsName, rest := readMacroParams(tok.Next)
		body, after := copyLine(rest)
		m := p.addMacro(name, false, body)
		m.Params = params
		m.VarArgsName = varArgsName
		return after
	}

	body, rest := copyLine(tok)
	p.addMacro(name, true, body)
	return rest
}

func findArg(args []*MacroArg, name string) *MacroArg {
	for _, a := range args {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// readMacroArgOne reads one actual argument up to the next top-level ","
// (or, if readRest, up to the closing ")"), tracking parenthesis nesting so
// a nested call's commas don't end the argument early. Matches chibicc's
// read_macro_arg_one.
func (p *Preprocessor) readMacroArgOne(tok *token.Token, readRest bool) (arg *MacroArg, rest *token.Token) {
	head := &token.Token{}
	cur := head
	level := 0
	for {
		if level == 0 && tok.Is(")") {
			break
		}
		if level == 0 && !readRest && tok.Is(",") {
			break
		}
		if tok.Kind == token.EOF {
			p.errorf(tok, "premature end of input")
			break
		}
		if tok.Is("(") {
			level++
		} else if tok.Is(")") {
			level--
		}
		cur.Next = tok.Copy()
		cur = cur.Next
		tok = tok.Next
	}
	cur.Next = newEOF(tok)
	return &MacroArg{Tok: head.Next}, tok
}

// readMacroArgs binds every actual argument of a function-like macro
// invocation to its formal parameter name, matching chibicc's
// read_macro_args. tok points at the macro-name token; rest ends up
// pointing AT the closing ")" itself (not past it), since expandMacro
// needs that token's hideset for Prossor's construction.
func (p *Preprocessor) readMacroArgs(tok *token.Token, params []string, varArgsName string) (args []*MacroArg, rest *token.Token) {
	start := tok
	tok = tok.Next.Next // skip name and "("

	for i, name := range params {
		if i > 0 {
			tok = p.expectSkip(tok, ",")
		}
		var arg *MacroArg
		arg, tok = p.readMacroArgOne(tok, false)
		arg.Name = name
		args = append(args, arg)
	}

	if varArgsName != "" {
		var arg *MacroArg
		if tok.Is(")") {
			arg = &MacroArg{Tok: newEOF(tok)}
		} else {
			if len(params) > 0 {
				tok = p.expectSkip(tok, ",")
			}
			arg, tok = p.readMacroArgOne(tok, true)
		}
		arg.Name = varArgsName
		arg.IsVarArgs = true
		args = append(args, arg)
	} else if len(args) < len(params) {
		p.errorf(start, "too few arguments")
	}

	if !tok.Is(")") {
		p.errorf(tok, "expected %q", ")")
	}
	return args, tok
}

// expectSkip returns tok.Next if tok matches text; otherwise it reports an
// error and returns tok unchanged (chibicc's skip() is fatal; this module keeps
// preprocessing best-effort through the reporter instead of panicking).
func (p *Preprocessor) expectSkip(tok *token.Token, text string) *token.Token {
	if !tok.Is(text) {
		p.errorf(tok, "expected %q", text)
		return tok
	}
	return tok.Next
}

func hasVarargs(args []*MacroArg) bool {
	for _, a := range args {
		if a.Name == "__VA_ARGS__" {
			return a.Tok.Kind != token.EOF
		}
	}
	return false
}
