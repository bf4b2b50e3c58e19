// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import (
	"fmt"
	"slices"
)

// A Step is one resumable unit of grammar work. It reports true if it and
// everything it logically contains finished within the current chunk, or
// false if it suspended. A step that suspends has pushed the continuations
// needed to resume it.
//
// The session pops a continuation before running it, so the step that
// begins a rule is always a valid continuation for that rule.
type Step func(*Session) bool

// A Session holds the state of one parse. It owns the current input chunk,
// the continuation stack, the target stack, and the current token.
//
// A Session is not safe for concurrent use, but independent sessions share
// no mutable state and may be used concurrently.
type Session struct {
	start   Step               // the initial continuation
	finish  func(*Session) any // extracts the result, if set
	conts   []Step             // continuation stack
	targets []any              // values under construction
	nest    int                // containers entered by direct calls
	yielded bool               // a step suspended with input remaining

	chunk []byte // current input; valid until the next Feed
	pos   int    // offset of the next unread byte of chunk

	tok     Span   // current token in chunk
	pending []byte // bytes of tok carried from earlier chunks
	carried bool   // pending holds a prefix of tok
	esc     int8   // escape state of the current string
	escaped bool   // the current string token contains escapes
	null    bool   // the most recent literal was null
	scratch []byte // decoded key text

	base      int64 // absolute offset of chunk[0]
	line      int   // newlines seen
	lineStart int64 // absolute offset of the current line
	begun     bool  // a non-whitespace byte has been seen
	final     bool  // no more input will arrive
	done      bool  // a complete value has been produced
	result    any
	err       error // sticky
}

// NewSession constructs a session whose parse begins with start.
func NewSession(start Step) *Session {
	s := &Session{start: start}
	s.Reset()
	return s
}

// Reset discards all the state of s so that it is ready to parse a new,
// independent value from the beginning with the same initial continuation.
// Allocated buffers are retained.
func (s *Session) Reset() {
	s.conts = append(s.conts[:0], s.start)
	clear(s.targets)
	s.targets = s.targets[:0]
	s.nest, s.yielded = 0, false
	s.chunk, s.pos = nil, 0
	s.clearToken()
	s.esc, s.escaped, s.null = escNone, false, false
	s.base, s.line, s.lineStart = 0, 0, 0
	s.begun, s.final, s.done = false, false, false
	s.result, s.err = nil, nil
}

// Feed delivers the next chunk of input to s and runs the parse as far as
// that chunk allows. It reports true when a complete value has been read;
// the value is then available from Result and any unread input from
// Remaining. It reports false if more input is needed.
//
// The session retains chunk only until the next call to Feed or Finish; the
// caller may reuse it after Feed returns. Chunks need not be contiguous in
// memory.
//
// A syntax error has concrete type *SyntaxError and is sticky: once Feed has
// failed, every later call reports the same error until Reset. Calling Feed
// after a value is complete reports ErrDone.
func (s *Session) Feed(chunk []byte) (_ bool, err error) {
	if s.err != nil {
		return false, s.err
	} else if s.done {
		return false, ErrDone
	}
	defer s.recoverParseError(&err)

	s.base += int64(len(s.chunk))
	s.chunk, s.pos = chunk, 0
	return s.run(), nil
}

// Finish tells s that no more input will arrive. A number or literal that
// was waiting for a terminator is completed. If the value is still not
// complete, Finish reports an error wrapping ErrIncomplete.
func (s *Session) Finish() (err error) {
	if s.err != nil {
		return s.err
	} else if s.done {
		return nil
	}
	defer s.recoverParseError(&err)

	s.final = true
	s.base += int64(len(s.chunk))
	s.chunk, s.pos = nil, 0
	if !s.run() {
		s.fail(ErrIncomplete, "premature end of document")
	}
	return nil
}

// run drives continuations until the stack empties or a step suspends at
// the end of the chunk. A step that yielded with input remaining is resumed
// from here, on a fresh host stack.
func (s *Session) run() bool {
	for len(s.conts) != 0 {
		step := s.popStep()
		if step(s) {
			continue
		} else if s.yielded {
			s.yielded = false
			continue
		}
		s.carry()
		return false
	}
	if s.finish != nil {
		s.result = s.finish(s)
	} else if len(s.targets) != 0 {
		s.result = s.PopTarget()
	}
	s.clearToken()
	s.done = true
	return true
}

// yield suspends the current step although input remains, so that the host
// stack unwinds to run before step resumes.
func (s *Session) yield(step Step) bool {
	s.pushStep(step)
	s.yielded = true
	return false
}

// Done reports whether s has produced a complete value.
func (s *Session) Done() bool { return s.done }

// Err reports the sticky error of s, or nil.
func (s *Session) Err() error { return s.err }

// Result returns the value produced by a complete parse, or nil.
func (s *Session) Result() any { return s.result }

// Remaining returns the unread portion of the chunk most recently passed to
// Feed. It is only meaningful once the value is complete, and it is valid
// only as long as that chunk is.
func (s *Session) Remaining() []byte { return s.chunk[s.pos:] }

// Begun reports whether s has seen any non-whitespace input since the last
// Reset.
func (s *Session) Begun() bool { return s.begun }

// Offset returns the absolute offset in the input of the next unread byte.
func (s *Session) Offset() int64 { return s.base + int64(s.pos) }

// Location returns the line and column of the next unread byte.
func (s *Session) Location() LineCol {
	return LineCol{Line: s.line + 1, Column: int(s.Offset() - s.lineStart)}
}

// checkEnd reports an error if anything other than whitespace follows the
// complete value in the current chunk.
func (s *Session) checkEnd() (err error) {
	defer s.recoverParseError(&err)
	if c := s.skipWhitespace(); c != endOfChunk {
		s.rewind()
		s.fail(ErrExtraInput, "unexpected %s after value", describe(c))
	}
	return nil
}

// Parse parses doc as a single complete value using s, which is reset
// first, and returns the result. Input after the value other than
// whitespace is an error.
func Parse[T any](s *Session, doc []byte) (T, error) {
	var zero T
	s.Reset()
	done, err := s.Feed(doc)
	if err != nil {
		return zero, err
	} else if !done {
		if err := s.Finish(); err != nil {
			return zero, err
		}
	} else if err := s.checkEnd(); err != nil {
		return zero, err
	}
	if s.result == nil {
		return zero, nil
	}
	v, ok := s.result.(T)
	if !ok {
		return zero, fmt.Errorf("result has type %T, not %T", s.result, zero)
	}
	return v, nil
}

// ParseString is Parse for a string document.
func ParseString[T any](s *Session, doc string) (T, error) {
	return Parse[T](s, []byte(doc))
}

// Continuation stack.

func (s *Session) depth() int { return len(s.conts) }

func (s *Session) pushStep(step Step) { s.conts = append(s.conts, step) }

func (s *Session) popStep() Step {
	n := len(s.conts) - 1
	step := s.conts[n]
	s.conts[n] = nil
	s.conts = s.conts[:n]
	return step
}

// resumeAt inserts continuations at stack depth mark, beneath whatever a
// nested step pushed when it suspended. When the nested work completes,
// first runs and then then runs. If then is nil only first is inserted.
func (s *Session) resumeAt(mark int, first, then Step) {
	if then == nil {
		s.conts = slices.Insert(s.conts, mark, first)
	} else {
		s.conts = slices.Insert(s.conts, mark, then, first)
	}
}

// Target stack.

// PushTarget pushes v onto the target stack.
func (s *Session) PushTarget(v any) { s.targets = append(s.targets, v) }

// PopTarget removes and returns the top of the target stack.
func (s *Session) PopTarget() any {
	n := len(s.targets) - 1
	if n < 0 {
		panic("jchunk: pop of empty target stack")
	}
	v := s.targets[n]
	s.targets[n] = nil
	s.targets = s.targets[:n]
	return v
}

// Target returns the top of the target stack without removing it.
func (s *Session) Target() any { return s.targets[len(s.targets)-1] }

// SetTarget replaces the top of the target stack with v.
func (s *Session) SetTarget(v any) { s.targets[len(s.targets)-1] = v }

// Errors.

func (s *Session) recoverParseError(errp *error) {
	if v := recover(); v != nil {
		serr, ok := v.(*SyntaxError)
		if !ok {
			panic(v)
		}
		s.err = serr
		*errp = serr
	}
}

// fail aborts the parse with a *SyntaxError of the given kind at the
// current position. It does not return.
func (s *Session) fail(kind error, msg string, args ...any) {
	panic(&SyntaxError{
		Location: s.Location(),
		Offset:   s.Offset(),
		Message:  fmt.Sprintf(msg, args...),
		err:      kind,
	})
}
