// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import "go4.org/mem"

// endOfChunk is returned by the scanning primitives when the current chunk
// ran out before a terminating byte was found. It is never an error: the
// calling step turns it into a suspension.
const endOfChunk = -1

// skipWhitespace advances past JSON whitespace and returns the first other
// byte, which is consumed.
func (s *Session) skipWhitespace() int {
	for s.pos < len(s.chunk) {
		c := s.chunk[s.pos]
		s.pos++
		switch c {
		case ' ', '\t', '\r':
		case '\n':
			s.line++
			s.lineStart = s.base + int64(s.pos)
		default:
			s.begun = true
			return int(c)
		}
	}
	return endOfChunk
}

// Escape states of a string being scanned. A positive state counts the hex
// digits of a \u escape still to be read.
const (
	escNone  = 0
	escStart = -1 // after a backslash
)

// scanToQuote advances to the first unescaped double quote, which is
// consumed. Escape sequences are checked as they are scanned, and the escape
// state survives the end of a chunk.
func (s *Session) scanToQuote() int {
	for s.pos < len(s.chunk) {
		c := s.chunk[s.pos]
		s.pos++
		switch {
		case s.esc > 0:
			if !isHexDigit(c) {
				s.rewind()
				s.fail(ErrMalformedLiteral, "invalid Unicode escape: unexpected %s", describe(int(c)))
			}
			s.esc--
		case s.esc == escStart:
			switch c {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				s.esc = escNone
			case 'u':
				s.esc = 4
			default:
				s.rewind()
				s.fail(ErrMalformedLiteral, "invalid %q after escape", rune(c))
			}
		case c == '"':
			return '"'
		case c == '\\':
			s.esc = escStart
			s.escaped = true
		case c < ' ':
			s.rewind()
			s.fail(ErrUnexpectedByte, "unescaped control %q in string", rune(c))
		}
	}
	return endOfChunk
}

// scanDigits advances past a run of decimal digits and returns the first
// non-digit, which is consumed.
func (s *Session) scanDigits() int { return s.scanWhile(isDigit) }

// scanNumberTail advances past the bytes that may follow the integer part
// of a number (digits, point, exponent marker and sign).
func (s *Session) scanNumberTail() int { return s.scanWhile(isNumberTail) }

// scanAlphabetic advances past a run of ASCII letters and returns the first
// other byte, which is consumed.
func (s *Session) scanAlphabetic() int { return s.scanWhile(isAlpha) }

func (s *Session) scanWhile(f func(byte) bool) int {
	for s.pos < len(s.chunk) {
		c := s.chunk[s.pos]
		s.pos++
		if !f(c) {
			return int(c)
		}
	}
	return endOfChunk
}

// rewind steps back over the most recently consumed byte so that the
// enclosing rule can process it again.
func (s *Session) rewind() {
	if s.pos == 0 {
		panic("jchunk: rewind before start of chunk")
	}
	s.pos--
}

func isDigit(c byte) bool       { return '0' <= c && c <= '9' }
func isAlpha(c byte) bool       { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func isHexDigit(c byte) bool    { return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F') }
func isNumStart(c int) bool     { return c == '-' || ('0' <= c && c <= '9') }
func isFractionMark(c int) bool { return c == '.' || c == 'e' || c == 'E' }

func isNumberTail(c byte) bool {
	return isDigit(c) || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-'
}

// checkNumber validates the complete number token. Syntax is checked only
// once the whole token is known, so chunk boundaries cannot affect it.
func (s *Session) checkNumber() {
	tok := s.Token()
	if msg := numberError(tok); msg != "" {
		s.fail(ErrMalformedLiteral, "%s in number %q", msg, tok.StringCopy())
	}
}

// numberError describes what is wrong with the syntax of a number, or
// returns "" if it is valid.
func numberError(tok mem.RO) string {
	if hasExtraLeadingZeroes(tok) {
		return "extra leading zeroes"
	}
	i, n := 0, tok.Len()
	if tok.At(0) == '-' {
		i++
	}
	d := countDigits(tok, i)
	if d == 0 {
		return "missing digits"
	}
	i += d
	if i < n && tok.At(i) == '.' {
		d = countDigits(tok, i+1)
		if d == 0 {
			return "no digits after decimal point"
		}
		i += d + 1
	}
	if i < n && (tok.At(i) == 'e' || tok.At(i) == 'E') {
		i++
		if i < n && (tok.At(i) == '+' || tok.At(i) == '-') {
			i++
		}
		d = countDigits(tok, i)
		if d == 0 {
			return "no digits in exponent"
		}
		i += d
	}
	if i != n {
		return "unexpected " + describe(int(tok.At(i)))
	}
	return ""
}

func countDigits(tok mem.RO, i int) int {
	n := 0
	for i+n < tok.Len() && isDigit(tok.At(i+n)) {
		n++
	}
	return n
}

// hasExtraLeadingZeroes reports whether the representation of a number in
// buf has redundant leading zeroes, disallowed by the grammar.
//
// OK: 0, 0.1, -1.0, -0.1 are all OK.
// Bad: -01, 01.2, -01.0, 00.1.
func hasExtraLeadingZeroes(buf mem.RO) bool {
	if buf.Len() != 0 && buf.At(0) == '-' {
		buf = buf.SliceFrom(1) // skip leading sign
	}
	return buf.Len() > 1 && buf.At(0) == '0' && isDigit(buf.At(1))
}
