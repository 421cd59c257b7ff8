// Package cpp implements the C preprocessor (spec.md §2): macro expansion
// with the Prossor hideset algorithm, conditional inclusion, #include
// resolution with include-guard detection, and the predefined/dynamic
// built-in macros. It is grounded throughout on original_source/preprocess.c
// (rui314/chibicc), adapted into the teacher's struct-with-methods idiom
// (informatter-nilan's Lexer/Parser shape) instead of chibicc's file-scope
// static globals, since a package-level Preprocessor value lets tests run
// independent preprocessor instances concurrently.
package cpp

import (
	"fmt"
	"path/filepath"
	"strings"

	"nilan/lexer"
	"nilan/source"
	"nilan/token"
)

// condContext distinguishes which branch of an #if/#ifdef chain is active,
// mirroring chibicc's CondIncl.ctx enum.
type condContext int

const (
	inThen condContext = iota
	inElif
	inElse
)

type condIncl struct {
	ctx      condContext
	tok      *token.Token
	included bool
}

// Preprocessor holds all state threaded through directive processing for
// one translation unit: the macro table, the conditional-inclusion stack,
// the pragma-once and include-guard caches, and the search path list used
// to resolve #include/#include_next.
type Preprocessor struct {
	reg      *source.Registry
	reporter source.Reporter

	macros         map[string]*Macro
	condStack      []*condIncl
	pragmaOnce     map[string]bool
	includeGuards  map[string]string
	includePaths   []string
	includeNextIdx int

	baseFile string
	counter  int
}

// New creates a Preprocessor over reg (used to register any synthetic
// files created while tokenizing macro-expansion byproducts: stringized
// arguments, pasted tokens, __LINE__/__FILE__ results), reporting errors
// through rep. includePaths is consulted for angle-bracket #include
// resolution; baseFile backs __BASE_FILE__.
func New(reg *source.Registry, rep source.Reporter, includePaths []string, baseFile string) *Preprocessor {
	p := &Preprocessor{
		reg:           reg,
		reporter:      rep,
		macros:        map[string]*Macro{},
		pragmaOnce:    map[string]bool{},
		includeGuards: map[string]string{},
		includePaths:  includePaths,
		baseFile:      baseFile,
	}
	p.initMacros()
	return p
}

func (p *Preprocessor) errorf(tok *token.Token, format string, args ...interface{}) {
	if p.reporter == nil {
		return
	}
	f, _ := tok.File.(*source.File)
	p.reporter.Report(source.Diagnostic{
		Severity: source.Error,
		File:     f,
		Offset:   tok.Pos,
		Line:     tok.Line,
		Col:      tok.Col,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (p *Preprocessor) warnf(tok *token.Token, format string, args ...interface{}) {
	if p.reporter == nil {
		return
	}
	f, _ := tok.File.(*source.File)
	p.reporter.Report(source.Diagnostic{
		Severity: source.Warning,
		File:     f,
		Offset:   tok.Pos,
		Line:     tok.Line,
		Col:      tok.Col,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Preprocess is the entry point: expand macros and process directives,
// then join adjacent string literals, matching chibicc's preprocess().
func (p *Preprocessor) Preprocess(tok *token.Token) *token.Token {
	tok = p.preprocess2(tok)
	if len(p.condStack) > 0 {
		top := p.condStack[len(p.condStack)-1]
		p.errorf(top.tok, "unterminated conditional directive")
	}
	p.convertPPNumbers(tok)
	p.joinAdjacentStringLiterals(tok)

	for t := tok; t != nil; t = t.Next {
		if f, ok := t.File.(*source.File); ok {
			t.Line += f.LineDelta
		}
	}
	return tok
}

func (p *Preprocessor) convertPPNumbers(tok *token.Token) {
	for t := tok; t != nil && t.Kind != token.EOF; t = t.Next {
		if t.Kind == token.PPNUMBER {
			lexer.ConvertPPNumber(t, p.reporter)
		}
	}
}

// isHash reports whether tok is a "#" at the start of a line, per
// chibicc's is_hash.
func isHash(tok *token.Token) bool {
	return tok.AtBOL && tok.Is("#")
}

// skipLine tolerates (with a warning) extraneous tokens before the next
// newline, per chibicc's skip_line.
func (p *Preprocessor) skipLine(tok *token.Token) *token.Token {
	if tok.AtBOL {
		return tok
	}
	p.warnf(tok, "extra token")
	for !tok.AtBOL {
		tok = tok.Next
	}
	return tok
}

func newEOF(tmpl *token.Token) *token.Token {
	t := tmpl.Copy()
	t.Kind = token.EOF
	t.Text = ""
	return t
}

// appendTokens appends tok2 after the non-EOF prefix of tok1, matching
// chibicc's append().
func appendTokens(tok1, tok2 *token.Token) *token.Token {
	if tok1.Kind == token.EOF {
		return tok2
	}
	head := &token.Token{}
	cur := head
	for ; tok1.Kind != token.EOF; tok1 = tok1.Next {
		cur.Next = tok1.Copy()
		cur = cur.Next
	}
	cur.Next = tok2
	return head.Next
}

// copyLine copies tokens up to (not including) the next at_bol token,
// terminates them with a fresh EOF, and reports the stopping point through
// rest, matching chibicc's copy_line. Used to isolate one logical
// directive line (e.g. a #if's constant expression) from the rest of the
// stream.
func copyLine(tok *token.Token) (line *token.Token, rest *token.Token) {
	head := &token.Token{}
	cur := head
	for !tok.AtBOL {
		cur.Next = tok.Copy()
		cur = cur.Next
		tok = tok.Next
	}
	cur.Next = newEOF(tok)
	return head.Next, tok
}

// tokenizeString creates a fresh token list from a synthetic buffer,
// registering it as a new source.File so diagnostics and further
// preprocessing on the result still have a valid file to point at. Used
// for stringizing, token pasting, and the __LINE__/__FILE__/__COUNTER__
// builtins, grounded on chibicc's tokenize(new_file(...)) pattern.
func (p *Preprocessor) tokenizeString(name, text string) *token.Token {
	f := p.reg.Add(name, text)
	l := lexer.New(f, p.reporter)
	return l.Scan()
}

func resolveIncludePath(dir, filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(dir, filename)
}

func joinTokens(tok, end *token.Token) string {
	var b strings.Builder
	first := true
	for t := tok; t != end && t.Kind != token.EOF; t = t.Next {
		if !first && t.HasSpace {
			b.WriteByte(' ')
		}
		first = false
		b.WriteString(t.Text)
	}
	return b.String()
}
