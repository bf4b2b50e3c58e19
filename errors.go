// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import (
	"errors"
	"fmt"
)

// Kinds of parse failure. A *SyntaxError wraps exactly one of these, so
// callers can classify a failure with errors.Is.
var (
	// ErrUnexpectedByte reports a structural character where the grammar
	// forbids it, for example a missing ":" or a trailing comma.
	ErrUnexpectedByte = errors.New("unexpected byte")

	// ErrMalformedLiteral reports a number or constant that is not valid
	// JSON, or a number that does not fit the requested type.
	ErrMalformedLiteral = errors.New("malformed literal")

	// ErrIncomplete reports that the input ended before the top-level value
	// was complete.
	ErrIncomplete = errors.New("premature end of document")

	// ErrExtraInput reports non-whitespace input after a complete value in a
	// one-shot parse.
	ErrExtraInput = errors.New("extra input after value")

	// ErrDone reports a Feed to a session whose value is already complete.
	ErrDone = errors.New("session already complete")
)

// Errors reported while constructing a specialization.
var (
	// ErrUnsupportedKey reports a map whose key shape is not a scalar.
	ErrUnsupportedKey = errors.New("unsupported map key type")

	// ErrDuplicateField reports two fields of a schema with the same name.
	ErrDuplicateField = errors.New("duplicate field name")

	// ErrEmptyFieldName reports a schema field with an empty name.
	ErrEmptyFieldName = errors.New("empty field name")

	// ErrUndefinedSchema reports use of a schema that was declared but never
	// defined.
	ErrUndefinedSchema = errors.New("schema is not defined")
)

// SyntaxError is the concrete type of errors reported by a Session.
type SyntaxError struct {
	Location LineCol // where the failure was detected
	Offset   int64   // absolute byte offset in the input
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", s.Location, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }

// describe renders a byte for an error message.
func describe(c int) string {
	if c == endOfChunk {
		return "end of input"
	}
	return fmt.Sprintf("%q", rune(c))
}
