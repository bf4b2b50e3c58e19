// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import (
	"github.com/creachadair/jchunk/internal/escape"
	"go4.org/mem"
)

// startToken opens a token whose first byte is at offset pos of the current
// chunk. Any bytes carried from an earlier token are discarded.
func (s *Session) startToken(pos int) {
	s.tok = Span{Pos: pos, End: -1}
	s.pending = s.pending[:0]
	s.carried = false
	s.esc = escNone
	s.escaped = false
	s.null = false
}

// endToken closes the open token at offset end of the current chunk.
// If earlier bytes of the token were carried over from previous chunks, the
// tail is appended so the token is contiguous in the pending buffer.
func (s *Session) endToken(end int) {
	if s.carried {
		s.pending = append(s.pending, s.chunk[s.tok.Pos:end]...)
	}
	s.tok.End = end
}

// clearToken discards the current token.
func (s *Session) clearToken() {
	s.tok = noSpan
	s.carried = false
	s.pending = s.pending[:0]
}

// carry preserves the bytes of a token that is still open at the end of the
// current chunk, so that scanning can resume at offset 0 of the next chunk.
// A token that is complete but unconsumed does not outlive its chunk.
func (s *Session) carry() {
	switch {
	case s.tok.IsOpen():
		s.pending = append(s.pending, s.chunk[s.tok.Pos:]...)
		s.carried = true
		s.tok.Pos = 0
	case s.tok.IsComplete():
		s.clearToken()
	}
}

// tokenBytes returns the raw bytes of the current complete token.
// The result is only valid until the token is cleared or restarted.
func (s *Session) tokenBytes() []byte {
	if !s.tok.IsComplete() {
		return nil
	} else if s.carried {
		return s.pending
	}
	return s.chunk[s.tok.Pos:s.tok.End]
}

// Token returns a read-only view of the text of the current token. For a
// string or key the enclosing quotes are excluded and escapes are not
// decoded. The view is only valid until the next token begins.
func (s *Session) Token() mem.RO { return mem.B(s.tokenBytes()) }

// Span reports the span of the current token in the current chunk. For a
// token that began in an earlier chunk, Pos is 0.
func (s *Session) Span() Span { return s.tok }

// keyBytes returns the decoded text of the current key token. Keys with no
// escapes are returned without copying.
func (s *Session) keyBytes() []byte {
	raw := s.tokenBytes()
	if !s.escaped {
		return raw
	}
	dec, err := escape.AppendUnquote(s.scratch[:0], mem.B(raw))
	if err != nil {
		s.fail(ErrMalformedLiteral, "invalid key: %v", err)
	}
	s.scratch = dec
	return dec
}

// takeNull reports whether the most recent literal was null, and resets
// the indicator.
func (s *Session) takeNull() bool {
	if s.null {
		s.null = false
		s.clearToken()
		return true
	}
	return false
}
