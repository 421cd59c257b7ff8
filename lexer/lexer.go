// Package lexer turns source text into a forward list of tokens (spec.md
// §4.1). It keeps the teacher's shape of a Lexer struct walking the input
// by hand (see the teacher's isLetter/isNumber/peek/advance helpers) but
// works over bytes of UTF-8 source text and produces the richer token
// carrying file/line/column, AtBOL and HasSpace, matching chibicc's
// tokenize.c.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"nilan/source"
	"nilan/token"
)

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isPPNumCont(c byte) bool {
	return isDigit(c) || isIdentStart(c) || c == '.'
}

// Lexer scans one source.File into a token list. It is not reused across
// files; New returns a fresh instance per file, matching the teacher's
// lexer.New(input) constructor shape.
type Lexer struct {
	file     *source.File
	text     string
	pos      int
	line     int
	col      int
	atBOL    bool
	hasSpace bool
	reporter source.Reporter
}

// New creates a Lexer over file's text, reporting lexical errors through
// rep.
func New(file *source.File, rep source.Reporter) *Lexer {
	text := strings.TrimPrefix(file.Text, string(rune(0xFEFF))) // silently skip a leading BOM, per spec.md §6
	return &Lexer{
		file:     file,
		text:     text,
		pos:      0,
		line:     1,
		col:      1,
		atBOL:    true,
		reporter: rep,
	}
}

func (l *Lexer) errorf(pos int, format string, args ...interface{}) {
	line, col := source.PosOf(l.text, pos)
	l.reporter.Report(source.Diagnostic{
		Severity: source.Error,
		File:     l.file,
		Offset:   pos,
		Line:     line,
		Col:      col,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (l *Lexer) peekByte(off int) byte {
	if l.pos+off >= len(l.text) {
		return 0
	}
	return l.text[l.pos+off]
}

func (l *Lexer) cur() byte { return l.peekByte(0) }

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		if l.pos >= len(l.text) {
			return
		}
		if l.text[l.pos] == '\n' {
			l.line++
			l.col = 1
			l.atBOL = true
		} else {
			l.col++
		}
		l.pos++
	}
}

// newToken fills in the common positional fields for a token starting at
// startPos with the given text.
func (l *Lexer) newToken(kind token.Kind, startPos int, startLine, startCol int, text string) *token.Token {
	t := &token.Token{
		Kind:     kind,
		Text:     text,
		File:     l.file,
		Pos:      startPos,
		Line:     startLine,
		Col:      startCol,
		AtBOL:    l.atBOL,
		HasSpace: l.hasSpace,
	}
	l.atBOL = false
	l.hasSpace = false
	return t
}

// Scan tokenizes the whole file and returns the head of a token list
// terminated by an EOF token, per spec.md §4.1's lexer contract. Fatal
// lexical errors (unclosed comment/string, invalid escape, invalid UTF-8)
// are reported through the Lexer's Reporter and scanning stops at that
// point; callers should check the reporter before proceeding to the next
// pipeline stage (spec.md §7: errors are fatal-on-first).
func (l *Lexer) Scan() *token.Token {
	head := &token.Token{}
	cur := head

	for {
		if !l.skipTrivia() {
			break
		}
		if l.pos >= len(l.text) {
			break
		}

		startPos, startLine, startCol := l.pos, l.line, l.col
		tok, ok := l.scanOne(startPos, startLine, startCol)
		if !ok {
			break
		}
		cur.Next = tok
		cur = tok
	}

	eof := l.newToken(token.EOF, l.pos, l.line, l.col, "")
	cur.Next = eof
	return head.Next
}

// skipTrivia consumes whitespace and comments, setting AtBOL/HasSpace
// flags along the way. Returns false if a fatal error (unterminated block
// comment) stopped scanning.
func (l *Lexer) skipTrivia() bool {
	for l.pos < len(l.text) {
		c := l.cur()
		switch {
		case c == '\r', c == ' ', c == '\t', c == '\v', c == '\f', c == '\n':
			l.advanceN(1)
			l.hasSpace = true
		case c == '/' && l.peekByte(1) == '/':
			for l.pos < len(l.text) && l.cur() != '\n' {
				l.advanceN(1)
			}
			l.hasSpace = true
		case c == '/' && l.peekByte(1) == '*':
			startPos := l.pos
			l.advanceN(2)
			closed := false
			for l.pos < len(l.text) {
				if l.cur() == '*' && l.peekByte(1) == '/' {
					l.advanceN(2)
					closed = true
					break
				}
				l.advanceN(1)
			}
			if !closed {
				l.errorf(startPos, "unterminated block comment")
				return false
			}
			l.hasSpace = true
		default:
			return true
		}
	}
	return true
}

func (l *Lexer) scanOne(startPos, startLine, startCol int) (*token.Token, bool) {
	c := l.cur()

	// String/char literal prefixes: u8" u" U" L" and L'.
	if kind, width, ok := matchStringPrefix(l.text[l.pos:]); ok {
		l.advanceN(width)
		if l.text[startPos+width-1] == '\'' {
			return l.scanCharLiteral(startPos, startLine, startCol, kind)
		}
		return l.scanStringLiteral(startPos, startLine, startCol, kind)
	}
	if c == '"' {
		l.advanceN(1)
		return l.scanStringLiteral(startPos, startLine, startCol, token.StrNone)
	}
	if c == '\'' {
		l.advanceN(1)
		return l.scanCharLiteral(startPos, startLine, startCol, token.StrNone)
	}

	if isIdentStart(c) {
		for l.pos < len(l.text) && isIdentCont(l.cur()) {
			l.advanceN(1)
		}
		text := l.text[startPos:l.pos]
		return l.newToken(token.IDENT, startPos, startLine, startCol, text), true
	}

	if isDigit(c) || (c == '.' && isDigit(l.peekByte(1))) {
		return l.scanPPNumber(startPos, startLine, startCol), true
	}

	for _, p := range token.Punctuators {
		if strings.HasPrefix(l.text[l.pos:], p) {
			l.advanceN(len(p))
			return l.newToken(token.RESERVED, startPos, startLine, startCol, p), true
		}
	}

	if isASCIIPunct(c) {
		l.advanceN(1)
		return l.newToken(token.RESERVED, startPos, startLine, startCol, string(c)), true
	}

	r, size := utf8.DecodeRuneInString(l.text[l.pos:])
	if r == utf8.RuneError && size <= 1 {
		l.errorf(startPos, "invalid UTF-8 byte sequence")
		return nil, false
	}
	l.errorf(startPos, "invalid token: %q", r)
	return nil, false
}

func isASCIIPunct(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '%', '=', '!', '<', '>', '&', '|', '^', '~',
		'(', ')', '{', '}', '[', ']', ';', ',', '.', ':', '?', '#':
		return true
	}
	return false
}

// matchStringPrefix recognizes the u8"/u"/U"/L" prefixed literal opener at
// the start of s, returning the element kind and the number of bytes the
// prefix+opening quote occupy.
func matchStringPrefix(s string) (token.StringKind, int, bool) {
	switch {
	case strings.HasPrefix(s, `u8"`):
		return token.StrU8, 3, true
	case strings.HasPrefix(s, `u"`):
		return token.StrU16, 2, true
	case strings.HasPrefix(s, `U"`):
		return token.StrU32, 2, true
	case strings.HasPrefix(s, `L"`):
		return token.StrWide, 2, true
	case strings.HasPrefix(s, `L'`):
		return token.StrWide, 2, true
	}
	return token.StrNone, 0, false
}

// scanPPNumber captures a "preprocessor number" per spec.md §4.1: a digit
// or '.' followed by digits/letters/'.'/sign-after-exponent characters.
// Its precise numeric type is resolved later (see ConvertPPNumber).
func (l *Lexer) scanPPNumber(startPos, startLine, startCol int) *token.Token {
	for l.pos < len(l.text) {
		c := l.cur()
		if (c == 'e' || c == 'E' || c == 'p' || c == 'P') &&
			(l.peekByte(1) == '+' || l.peekByte(1) == '-') {
			l.advanceN(2)
			continue
		}
		if isPPNumCont(c) {
			l.advanceN(1)
			continue
		}
		break
	}
	text := l.text[startPos:l.pos]
	return l.newToken(token.PPNUMBER, startPos, startLine, startCol, text)
}

// ConvertPPNumber converts a PPNUMBER token in place into a NUMBER token,
// per spec.md §4.1 ("conversion to a typed numeric token is deferred").
// It supports the GNU 0b/0B binary-literal extension alongside decimal,
// octal and hex integers and decimal/hex floats, per spec.md §9 open
// question (b).
func ConvertPPNumber(t *token.Token, rep source.Reporter) {
	text := t.Text
	lower := strings.ToLower(text)
	isHex := strings.HasPrefix(lower, "0x")

	looksFloat := strings.ContainsRune(text, '.') ||
		(!isHex && strings.ContainsAny(lower, "e")) ||
		(isHex && strings.ContainsAny(lower, "p"))
	if looksFloat {
		if v, err := strconv.ParseFloat(stripFloatSuffix(text), 64); err == nil {
			t.Kind = token.NUMBER
			t.IsFloat = true
			t.FloatValue = v
			return
		}
	}

	digits, base := text, 10
	switch {
	case strings.HasPrefix(lower, "0b"):
		digits, base = text[2:], 2
	case isHex:
		digits, base = text[2:], 16
	case strings.HasPrefix(text, "0") && len(text) > 1:
		digits, base = text[1:], 8
	}
	digits = stripIntSuffix(digits)

	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		if rep != nil {
			if f, ok := t.File.(*source.File); ok {
				rep.Report(source.Diagnostic{
					Severity: source.Error,
					File:     f,
					Offset:   t.Pos,
					Line:     t.Line,
					Col:      t.Col,
					Message:  fmt.Sprintf("invalid preprocessor-number conversion: %q", text),
				})
			}
		}
		return
	}
	t.Kind = token.NUMBER
	t.IntValue = int64(v)
	t.IsUnsigned = strings.ContainsAny(lower, "u")
}

func stripIntSuffix(s string) string {
	i := len(s)
	for i > 0 && strings.ContainsRune("uUlL", rune(s[i-1])) {
		i--
	}
	if i == 0 {
		return s
	}
	return s[:i]
}

func stripFloatSuffix(s string) string {
	if n := len(s); n > 0 && strings.ContainsRune("fFlL", rune(s[n-1])) {
		return s[:n-1]
	}
	return s
}
