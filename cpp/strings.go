package cpp

import "nilan/token"

// joinAdjacentStringLiterals concatenates runs of adjacent STRING tokens
// into one, matching chibicc's join_adjacent_string_literals in spirit:
// first determine the run's element kind (a narrow literal adjacent to a
// prefixed one takes on the prefixed kind), then concatenate payloads. This
// lexer always decodes string bodies to UTF-8 bytes regardless of prefix
// (see lexer/literals.go), so unlike chibicc there is no byte-width
// re-encoding step here — only the StrKind tag needs reconciling before the
// byte payloads are spliced together.
func (p *Preprocessor) joinAdjacentStringLiterals(tok *token.Token) {
	for t1 := tok; t1.Kind != token.EOF; {
		if t1.Kind != token.STRING || t1.Next.Kind != token.STRING {
			t1 = t1.Next
			continue
		}

		kind := t1.StrKind
		for t := t1.Next; t.Kind == token.STRING; t = t.Next {
			if kind == token.StrNone {
				kind = t.StrKind
			} else if t.StrKind != token.StrNone && kind != t.StrKind {
				p.errorf(t, "unsupported non-standard concatenation of string literals")
			}
		}

		t2 := t1.Next
		for t2.Kind == token.STRING {
			t2 = t2.Next
		}

		var buf []byte
		for t := t1; t != t2; t = t.Next {
			payload := t.StrBytes
			if t.Next != t2 && len(payload) > 0 {
				// Drop every interior NUL terminator; only the final
				// segment's terminator survives.
				payload = payload[:len(payload)-1]
			}
			buf = append(buf, payload...)
		}

		t1.StrBytes = buf
		t1.StrKind = kind
		t1.Next = t2
		t1 = t2
	}
}
