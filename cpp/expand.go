package cpp

import (
	"nilan/token"
)

// quoteString escapes backslashes and double quotes and wraps str in
// quotes, matching chibicc's quote_string, used by the stringizing
// operator.
func quoteString(str string) string {
	out := make([]byte, 0, len(str)+2)
	out = append(out, '"')
	for i := 0; i < len(str); i++ {
		c := str[i]
		if c == '\\' || c == '"' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	out = append(out, '"')
	return string(out)
}

// stringize implements the `#` operator: join arg's source text and
// re-tokenize it as a single string literal, matching chibicc's stringize.
func (p *Preprocessor) stringize(hash *token.Token, arg *token.Token) *token.Token {
	s := joinTokens(arg, nil)
	return p.tokenizeString(hash.File.DisplayName(), quoteString(s))
}

// paste implements the `##` operator: concatenate two tokens' source text
// and re-tokenize the result, rejecting a result that isn't exactly one
// token, matching chibicc's paste.
func (p *Preprocessor) paste(lhs, rhs *token.Token) *token.Token {
	text := lhs.Text + rhs.Text
	result := p.tokenizeString(lhs.File.DisplayName(), text)
	if result.Next != nil && result.Next.Kind != token.EOF {
		p.errorf(lhs, "pasting forms %q, an invalid token", text)
	}
	return result
}

// subst replaces a function-like macro's formal parameters with their
// bound arguments (already macro-expanded where required), implementing
// `#`, `##`, `__VA_OPT__`, and the GNU `,##__VA_ARGS__` elision rule,
// matching chibicc's subst almost line for line.
func (p *Preprocessor) subst(tok *token.Token, args []*MacroArg) *token.Token {
	head := &token.Token{}
	cur := head

	for tok.Kind != token.EOF {
		if tok.Is("#") {
			arg := findArg(args, tok.Next.Text)
			if arg == nil {
				p.errorf(tok.Next, "'#' is not followed by a macro parameter")
				tok = tok.Next.Next
				continue
			}
			cur.Next = p.stringize(tok, arg.Tok)
			cur = cur.Next
			tok = tok.Next.Next
			continue
		}

		if tok.Is(",") && tok.Next.Is("##") {
			if arg := findArg(args, tok.Next.Next.Text); arg != nil && arg.IsVarArgs {
				if arg.Tok.Kind == token.EOF {
					tok = tok.Next.Next.Next
				} else {
					cur.Next = tok.Copy()
					cur = cur.Next
					tok = tok.Next.Next
				}
				continue
			}
		}

		if tok.Is("##") {
			if cur == head {
				p.errorf(tok, "'##' cannot appear at start of macro expansion")
			}
			if tok.Next.Kind == token.EOF {
				p.errorf(tok, "'##' cannot appear at end of macro expansion")
			}
			if arg := findArg(args, tok.Next.Text); arg != nil {
				if arg.Tok.Kind != token.EOF {
					*cur = *p.paste(cur, arg.Tok)
					for t := arg.Tok.Next; t.Kind != token.EOF; t = t.Next {
						cur.Next = t.Copy()
						cur = cur.Next
					}
				}
				tok = tok.Next.Next
				continue
			}
			*cur = *p.paste(cur, tok.Next)
			tok = tok.Next.Next
			continue
		}

		arg := findArg(args, tok.Text)

		if arg != nil && tok.Next.Is("##") {
			rhs := tok.Next.Next
			if arg.Tok.Kind == token.EOF {
				if arg2 := findArg(args, rhs.Text); arg2 != nil {
					for t := arg2.Tok; t.Kind != token.EOF; t = t.Next {
						cur.Next = t.Copy()
						cur = cur.Next
					}
				} else {
					cur.Next = rhs.Copy()
					cur = cur.Next
				}
				tok = rhs.Next
				continue
			}
			for t := arg.Tok; t.Kind != token.EOF; t = t.Next {
				cur.Next = t.Copy()
				cur = cur.Next
			}
			tok = tok.Next
			continue
		}

		if tok.Is("__VA_OPT__") && tok.Next.Is("(") {
			vaArg, after := p.readMacroArgOne(tok.Next.Next, true)
			if hasVarargs(args) {
				for t := vaArg.Tok; t.Kind != token.EOF; t = t.Next {
					cur.Next = t
					cur = cur.Next
				}
			}
			tok = p.expectSkip(after, ")")
			continue
		}

		if arg != nil {
			expanded := p.preprocess2(arg.Tok)
			expanded.AtBOL = tok.AtBOL
			expanded.HasSpace = tok.HasSpace
			for t := expanded; t.Kind != token.EOF; t = t.Next {
				cur.Next = t.Copy()
				cur = cur.Next
			}
			tok = tok.Next
			continue
		}

		cur.Next = tok.Copy()
		cur = cur.Next
		tok = tok.Next
	}

	cur.Next = tok
	return head.Next
}

// expandMacro expands tok in place if it names a visible macro, returning
// the updated cursor and true; otherwise returns (tok, false) so the caller
// passes the token through unchanged. Matches chibicc's expand_macro.
func (p *Preprocessor) expandMacro(tok *token.Token) (*token.Token, bool) {
	if tok.Hideset.Contains(tok.Text) {
		return tok, false
	}
	m := p.findMacro(tok)
	if m == nil {
		return tok, false
	}

	if m.Handler != nil {
		result := m.Handler(tok)
		last := result
		for last.Next != nil && last.Next.Kind != token.EOF {
			last = last.Next
		}
		if last.Kind != token.EOF {
			last.Next = tok.Next
		} else {
			result = appendTokens(result, tok.Next)
		}
		return result, true
	}

	if m.IsObjLike {
		hs := tok.Hideset.With(m.Name)
		body := addHideset(m.Body, hs)
		rest := appendTokens(body, tok.Next)
		rest.AtBOL = tok.AtBOL
		rest.HasSpace = tok.HasSpace
		return rest, true
	}

	if !tok.Next.Is("(") {
		return tok, false
	}

	macroTok := tok
	args, rparen := p.readMacroArgs(tok, m.Params, m.VarArgsName)

	// Prossor's construction: the result's hideset is the intersection of
	// the macro-name token's hideset and the closing paren's hideset, plus
	// the macro's own name.
	hs := macroTok.Hideset.Intersect(rparen.Hideset)
	hs = hs.With(m.Name)

	body := p.subst(m.Body, args)
	body = addHideset(body, hs)
	rest := appendTokens(body, rparen.Next)
	rest.AtBOL = macroTok.AtBOL
	rest.HasSpace = macroTok.HasSpace
	return rest, true
}

// addHideset returns a fresh copy of tok's list with hs unioned into every
// token's hideset, matching chibicc's add_hideset.
func addHideset(tok *token.Token, hs token.Hideset) *token.Token {
	head := &token.Token{}
	cur := head
	for ; tok != nil; tok = tok.Next {
		t := tok.Copy()
		t.Hideset = t.Hideset.Union(hs)
		cur.Next = t
		cur = cur.Next
	}
	return head.Next
}
