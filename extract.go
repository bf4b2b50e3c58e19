// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import (
	"strconv"
	"time"

	"github.com/creachadair/jchunk/internal/escape"
	"github.com/oarkflow/date"
	"go4.org/mem"
)

// An Extractor converts the current token, or the value on top of the
// target stack, into a value of type T. Extractors hold no state and may be
// shared among sessions. An extractor consumes what it reads.
type Extractor[T any] func(*Session) T

// StringValue decodes the current string token.
func StringValue(s *Session) string {
	defer s.clearToken()
	if !s.escaped {
		return s.Token().StringCopy()
	}
	dec, err := escape.AppendUnquote(s.scratch[:0], s.Token())
	if err != nil {
		s.fail(ErrMalformedLiteral, "invalid string: %v", err)
	}
	s.scratch = dec
	return string(dec)
}

// IntValue parses the current token as an int.
func IntValue(s *Session) int { return int(parseInt(s, strconv.IntSize)) }

// Int64Value parses the current token as an int64.
func Int64Value(s *Session) int64 { return parseInt(s, 64) }

func parseInt(s *Session, bits int) int64 {
	defer s.clearToken()
	tok := s.Token()
	v, err := mem.ParseInt(tok, 10, bits)
	if err != nil {
		s.fail(ErrMalformedLiteral, "invalid %d-bit integer %q", bits, tok.StringCopy())
	}
	return v
}

// Float64Value parses the current token as a float64.
func Float64Value(s *Session) float64 { return parseFloat(s, 64) }

// Float32Value parses the current token as a float32.
func Float32Value(s *Session) float32 { return float32(parseFloat(s, 32)) }

func parseFloat(s *Session, bits int) float64 {
	defer s.clearToken()
	tok := s.Token()
	v, err := mem.ParseFloat(tok, bits)
	if err != nil {
		s.fail(ErrMalformedLiteral, "invalid number %q", tok.StringCopy())
	}
	return v
}

// BoolValue reports whether the current token is the literal true.
func BoolValue(s *Session) bool {
	defer s.clearToken()
	return s.Token().EqualString("true")
}

// DateValue parses the current string token as a date or timestamp. Any
// format understood by github.com/oarkflow/date is accepted.
func DateValue(s *Session) time.Time {
	text := StringValue(s)
	t, err := date.Parse(text)
	if err != nil {
		s.fail(ErrMalformedLiteral, "invalid date %q: %v", text, err)
	}
	return t
}

// TargetValue returns an extractor that pops the completed value on top of
// the target stack. A nil entry, as left by a null literal, yields the zero
// value of T.
func TargetValue[T any]() Extractor[T] {
	return func(s *Session) T {
		v, _ := s.PopTarget().(T)
		return v
	}
}
