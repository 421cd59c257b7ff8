package cpp

import (
	"os"
	"path/filepath"

	"nilan/lexer"
	"nilan/source"
	"nilan/token"
)

// preprocess2 walks tok, expanding macros and executing directives,
// matching chibicc's preprocess2. It is also the recursive workhorse used
// to pre-expand macro arguments (subst) and #if expressions
// (evalConstExpr), exactly as chibicc calls preprocess2 from both places.
func (p *Preprocessor) preprocess2(tok *token.Token) *token.Token {
	head := &token.Token{}
	cur := head

	for tok.Kind != token.EOF {
		if expanded, ok := p.expandMacro(tok); ok {
			tok = expanded
			continue
		}

		if !isHash(tok) {
			cur.Next = tok
			cur = cur.Next
			tok = tok.Next
			continue
		}

		start := tok
		tok = tok.Next

		switch {
		case tok.Is("include"):
			filename, isDquote, rest := p.readIncludeFilename(tok.Next)
			tok = rest
			if len(filename) > 0 && filename[0] != '/' && isDquote {
				dir := filepath.Dir(start.File.DisplayName())
				path := filepath.Join(dir, filename)
				if fileExists(path) {
					tok = p.includeFile(tok, path, start.Next.Next)
					continue
				}
			}
			path := p.searchIncludePaths(filename)
			if path == "" {
				path = filename
			}
			tok = p.includeFile(tok, path, start.Next.Next)
			continue

		case tok.Is("include_next"):
			filename, _, rest := p.readIncludeFilename(tok.Next)
			tok = rest
			path := p.searchIncludeNext(filename)
			if path == "" {
				path = filename
			}
			tok = p.includeFile(tok, path, start.Next.Next)
			continue

		case tok.Is("define"):
			tok = p.readMacroDefinition(tok.Next)
			continue

		case tok.Is("undef"):
			tok = tok.Next
			if tok.Kind != token.IDENT {
				p.errorf(tok, "macro name must be an identifier")
			}
			p.undefMacro(tok.Text)
			tok = p.skipLine(tok.Next)
			continue

		case tok.Is("if"):
			val, rest := p.evalConstExpr(tok)
			tok = rest
			p.pushCondIncl(start, val != 0)
			if val == 0 {
				tok = p.skipCondIncl(tok)
			}
			continue

		case tok.Is("ifdef"):
			defined := p.findMacro(tok.Next) != nil
			p.pushCondIncl(tok, defined)
			tok = p.skipLine(tok.Next.Next)
			if !defined {
				tok = p.skipCondIncl(tok)
			}
			continue

		case tok.Is("ifndef"):
			defined := p.findMacro(tok.Next) != nil
			p.pushCondIncl(tok, !defined)
			tok = p.skipLine(tok.Next.Next)
			if defined {
				tok = p.skipCondIncl(tok)
			}
			continue

		case tok.Is("elif"):
			if len(p.condStack) == 0 || p.condStack[len(p.condStack)-1].ctx == inElse {
				p.errorf(start, "stray #elif")
			}
			top := p.condStack[len(p.condStack)-1]
			top.ctx = inElif
			val, rest := p.evalConstExpr(tok)
			tok = rest
			if !top.included && val != 0 {
				top.included = true
			} else {
				tok = p.skipCondIncl(tok)
			}
			continue

		case tok.Is("else"):
			if len(p.condStack) == 0 || p.condStack[len(p.condStack)-1].ctx == inElse {
				p.errorf(start, "stray #else")
			}
			top := p.condStack[len(p.condStack)-1]
			top.ctx = inElse
			tok = p.skipLine(tok.Next)
			if top.included {
				tok = p.skipCondIncl(tok)
			}
			continue

		case tok.Is("endif"):
			if len(p.condStack) == 0 {
				p.errorf(start, "stray #endif")
			} else {
				p.condStack = p.condStack[:len(p.condStack)-1]
			}
			tok = p.skipLine(tok.Next)
			continue

		case tok.Is("line"):
			tok = p.readLineMarker(tok.Next)
			continue
		}

		if tok.Kind == token.PPNUMBER {
			tok = p.readLineMarker(tok)
			continue
		}

		if tok.Is("pragma") && tok.Next.Is("once") {
			p.pragmaOnce[fileNumKey(start.File)] = true
			tok = p.skipLine(tok.Next.Next)
			continue
		}

		if tok.Is("pragma") {
			for !tok.AtBOL {
				tok = tok.Next
			}
			continue
		}

		if tok.Is("error") {
			p.errorf(tok, "error")
		}

		if tok.AtBOL {
			continue
		}

		p.errorf(tok, "invalid preprocessor directive")
	}

	cur.Next = tok
	return head.Next
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func fileNumKey(f token.SourceFile) string {
	if f == nil {
		return ""
	}
	return f.DisplayName()
}

// readIncludeFilename reads the filename operand of #include/#include_next,
// handling the "foo.h", <foo.h>, and macro-expanded FOO forms, matching
// chibicc's read_include_filename.
func (p *Preprocessor) readIncludeFilename(tok *token.Token) (filename string, isDquote bool, rest *token.Token) {
	if tok.Kind == token.STRING {
		rest = p.skipLine(tok.Next)
		return rawStringContent(tok.Text), true, rest
	}

	if tok.Is("<") {
		start := tok
		for !tok.Is(">") {
			if tok.AtBOL || tok.Kind == token.EOF {
				p.errorf(tok, "expected '>'")
				break
			}
			tok = tok.Next
		}
		rest = p.skipLine(tok.Next)
		return joinTokens(start.Next, tok), false, rest
	}

	if tok.Kind == token.IDENT {
		line, after := copyLine(tok)
		expanded := p.preprocess2(line)
		filename, isDquote, _ = p.readIncludeFilename(expanded)
		return filename, isDquote, after
	}

	p.errorf(tok, "expected a filename")
	return "", false, p.skipLine(tok)
}

// rawStringContent returns the bytes between the surrounding double quotes
// of a string literal's raw source text, without interpreting any escape
// sequences: a #include filename like "C:\foo" must keep its backslash
// literal, matching chibicc's comment on why read_include_filename uses
// tok->loc instead of tok->str.
func rawStringContent(raw string) string {
	start := -1
	for i := 0; i < len(raw); i++ {
		if raw[i] == '"' {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return raw
	}
	end := len(raw)
	if end > start && raw[end-1] == '"' {
		end--
	}
	return raw[start:end]
}

func (p *Preprocessor) searchIncludePaths(filename string) string {
	if len(filename) > 0 && filename[0] == '/' {
		return filename
	}
	for i, dir := range p.includePaths {
		path := filepath.Join(dir, filename)
		if fileExists(path) {
			p.includeNextIdx = i + 1
			return path
		}
	}
	return ""
}

func (p *Preprocessor) searchIncludeNext(filename string) string {
	for ; p.includeNextIdx < len(p.includePaths); p.includeNextIdx++ {
		path := filepath.Join(p.includePaths[p.includeNextIdx], filename)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// detectIncludeGuard recognizes the `#ifndef FOO\n#define FOO` ... `#endif`
// pattern so a second #include of the same guarded header can be skipped
// without rereading it, matching chibicc's detect_include_guard.
func detectIncludeGuard(tok *token.Token) string {
	if !isHash(tok) || !tok.Next.Is("ifndef") {
		return ""
	}
	tok = tok.Next.Next
	if tok.Kind != token.IDENT {
		return ""
	}
	macro := tok.Text
	tok = tok.Next

	if !isHash(tok) || !tok.Next.Is("define") || !tok.Next.Next.Is(macro) {
		return ""
	}

	for tok.Kind != token.EOF {
		if !isHash(tok) {
			tok = tok.Next
			continue
		}
		if tok.Next.Is("endif") && tok.Next.Next.Kind == token.EOF {
			return macro
		}
		if tok.Next.Is("if") || tok.Next.Is("ifdef") || tok.Next.Is("ifndef") {
			tok = skipCondIncl2(tok.Next.Next)
		} else {
			tok = tok.Next
		}
	}
	return ""
}

// includeFile reads path, honoring #pragma once and any previously detected
// include guard, and splices its tokens in front of tok, matching chibicc's
// include_file.
func (p *Preprocessor) includeFile(tok *token.Token, path string, filenameTok *token.Token) *token.Token {
	if p.pragmaOnce[path] {
		return tok
	}

	if guard := p.includeGuards[path]; guard != "" {
		if _, ok := p.macros[guard]; ok {
			return tok
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf(filenameTok, "%s: cannot open file: %v", path, err)
		return tok
	}

	f := p.reg.Add(path, string(data))
	tok2 := lexer.New(f, p.reporter).Scan()

	if guard := detectIncludeGuard(tok2); guard != "" {
		p.includeGuards[path] = guard
	}

	return appendTokens(tok2, tok)
}

// pushCondIncl records entry into a conditional-inclusion block.
func (p *Preprocessor) pushCondIncl(tok *token.Token, included bool) *condIncl {
	ci := &condIncl{ctx: inThen, tok: tok, included: included}
	p.condStack = append(p.condStack, ci)
	return ci
}

// skipCondIncl2 skips a fully nested #if...#endif block, matching
// chibicc's skip_cond_incl2.
func skipCondIncl2(tok *token.Token) *token.Token {
	for tok.Kind != token.EOF {
		if isHash(tok) && (tok.Next.Is("if") || tok.Next.Is("ifdef") || tok.Next.Is("ifndef")) {
			tok = skipCondIncl2(tok.Next.Next)
			continue
		}
		if isHash(tok) && tok.Next.Is("endif") {
			return tok.Next.Next
		}
		tok = tok.Next
	}
	return tok
}

// skipCondIncl skips until the next #elif/#else/#endif at the current
// nesting level, matching chibicc's skip_cond_incl.
func (p *Preprocessor) skipCondIncl(tok *token.Token) *token.Token {
	for tok.Kind != token.EOF {
		if isHash(tok) && (tok.Next.Is("if") || tok.Next.Is("ifdef") || tok.Next.Is("ifndef")) {
			tok = skipCondIncl2(tok.Next.Next)
			continue
		}
		if isHash(tok) && (tok.Next.Is("elif") || tok.Next.Is("else") || tok.Next.Is("endif")) {
			break
		}
		tok = tok.Next
	}
	return tok
}

// readLineMarker handles both an explicit `#line` directive and a bare
// pp-number line marker (GNU cpp output convention), matching chibicc's
// read_line_marker.
func (p *Preprocessor) readLineMarker(tok *token.Token) *token.Token {
	start := tok
	line, rest := copyLine(tok)
	line = p.Preprocess(line)

	if line.Kind != token.NUMBER || line.IsFloat {
		p.errorf(line, "invalid line marker")
		return rest
	}
	if f, ok := start.File.(*source.File); ok {
		f.LineDelta = int(line.IntValue) - start.Line
	}

	line = line.Next
	if line.Kind == token.EOF {
		return rest
	}
	if line.Kind != token.STRING {
		p.errorf(line, "filename expected")
		return rest
	}
	if f, ok := start.File.(*source.File); ok {
		f.Display = rawStringContent(line.Text)
	}
	return rest
}
