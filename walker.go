// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import "strings"

// Hooks are the construction points of the grammar. A Walker calls them at
// each structural boundary of the input; the implementation decides what, if
// anything, to build. Scalar hooks are called with the completed token still
// current, so they may apply an Extractor to it.
type Hooks interface {
	// BeginObject is called after the "{" of an object.
	BeginObject(*Session)

	// BeginList is called after the "[" of an array.
	BeginList(*Session)

	// AddListValue is called after each element of an array is complete.
	AddListValue(*Session)

	// EndString is called when a string value is complete.
	EndString(*Session)

	// EndNumber is called when an integer value is complete.
	EndNumber(*Session)

	// EndFloat is called when a number with a fraction or exponent is
	// complete.
	EndFloat(*Session)

	// EndBool is called when a true or false literal is complete.
	EndBool(*Session)

	// EndNull is called when a null literal is complete.
	EndNull(*Session)

	// Member is called when the key of an object member is complete, and
	// returns the step that parses the member's value and the step that
	// commits it once parsed. The commit step may be nil.
	Member(*Session) (value, commit Step)
}

// kind is a set of JSON value types that a start step accepts.
type kind uint8

const (
	kString kind = 1 << iota
	kNumber
	kBool
	kNull
	kObject
	kList

	kAny = kString | kNumber | kBool | kNull | kObject | kList
)

func kindOf(c int) kind {
	switch {
	case c == '"':
		return kString
	case c == '{':
		return kObject
	case c == '[':
		return kList
	case c == 't' || c == 'f':
		return kBool
	case c == 'n':
		return kNull
	case isNumStart(c):
		return kNumber
	}
	return 0
}

var kindName = [...]string{"string", "number", "boolean", "null", "object", "array"}

func (k kind) String() string {
	if k == kAny {
		return "value"
	}
	var names []string
	for i, name := range kindName {
		if k&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, " or ")
}

// maxDirectNesting bounds the containers a session enters by direct calls
// before it yields to its driver, so the host stack stays bounded however
// deeply the input nests.
const maxDirectNesting = 64

// Parse states of the object and array loops.
const (
	afterOpen   = iota // after "{" or "["
	afterComma         // after "," (a member or element is required)
	afterMember        // after a complete member or element
)

// A Walker is the resumable grammar engine bound to one set of Hooks. All
// of its steps are allocated once, when the walker is constructed, so
// pushing a continuation never allocates.
type Walker struct {
	hooks Hooks
	elem  Step // parses an array element

	value      Step
	stringStep Step
	numberStep Step
	floatStep  Step
	literal    Step
	keyStep    Step
	addValue   Step
	objects    [3]Step // indexed by loop state
	lists      [3]Step
}

// NewWalker constructs a Walker that reports structure to h. Array elements
// are parsed with the walker's own Value step.
func NewWalker(h Hooks) *Walker { return newWalker(h, nil) }

func newWalker(h Hooks, elem Step) *Walker {
	w := &Walker{hooks: h}
	w.value = w.start(kAny)
	w.elem = elem
	if elem == nil {
		w.elem = w.value
	}
	w.stringStep = w.stringValue
	w.numberStep = w.numberValue
	w.floatStep = w.floatValue
	w.literal = w.literalValue
	w.keyStep = w.key
	w.addValue = func(s *Session) bool { w.hooks.AddListValue(s); return true }
	for i := range w.objects {
		w.objects[i] = func(s *Session) bool { return w.objectLoop(s, i) }
		w.lists[i] = func(s *Session) bool { return w.listLoop(s, i) }
	}
	return w
}

// Value returns the step that parses any JSON value.
func (w *Walker) Value() Step { return w.value }

// start returns a step that parses a value of one of the given kinds and
// reports any other as an unexpected byte. The result should be stored
// rather than constructed per use.
func (w *Walker) start(accept kind) Step {
	var step Step
	step = func(s *Session) bool {
		c := s.skipWhitespace()
		if c == endOfChunk {
			s.pushStep(step)
			return false
		}
		if kindOf(c)&accept == 0 {
			s.rewind()
			s.fail(ErrUnexpectedByte, "unexpected %s, want %v", describe(c), accept)
		}
		return w.dispatch(s, c)
	}
	return step
}

// dispatch begins a value whose first byte c has been consumed.
func (w *Walker) dispatch(s *Session, c int) bool {
	switch c {
	case '"':
		s.startToken(s.pos)
		return w.stringValue(s)
	case '{':
		w.hooks.BeginObject(s)
		if s.nest >= maxDirectNesting {
			return s.yield(w.objects[afterOpen])
		}
		s.nest++
		ok := w.objectLoop(s, afterOpen)
		s.nest--
		return ok
	case '[':
		w.hooks.BeginList(s)
		if s.nest >= maxDirectNesting {
			return s.yield(w.lists[afterOpen])
		}
		s.nest++
		ok := w.listLoop(s, afterOpen)
		s.nest--
		return ok
	case 't', 'f', 'n':
		s.startToken(s.pos - 1)
		return w.literalValue(s)
	default:
		s.startToken(s.pos - 1)
		return w.numberValue(s)
	}
}

func (w *Walker) stringValue(s *Session) bool {
	if s.scanToQuote() == endOfChunk {
		s.pushStep(w.stringStep)
		return false
	}
	s.endToken(s.pos - 1)
	w.hooks.EndString(s)
	return true
}

// endScalar closes a number or literal token at the byte c that stopped the
// scan. The terminator is left for the enclosing rule. It reports false if
// the chunk ran out and more input may follow.
func (s *Session) endScalar(c int) bool {
	if c == endOfChunk {
		if !s.final {
			return false
		}
	} else {
		s.rewind()
	}
	s.endToken(s.pos)
	return true
}

func (w *Walker) numberValue(s *Session) bool {
	c := s.scanDigits()
	if isFractionMark(c) {
		return w.floatValue(s)
	} else if !s.endScalar(c) {
		s.pushStep(w.numberStep)
		return false
	}
	s.checkNumber()
	w.hooks.EndNumber(s)
	return true
}

func (w *Walker) floatValue(s *Session) bool {
	if !s.endScalar(s.scanNumberTail()) {
		s.pushStep(w.floatStep)
		return false
	}
	s.checkNumber()
	w.hooks.EndFloat(s)
	return true
}

func (w *Walker) literalValue(s *Session) bool {
	if !s.endScalar(s.scanAlphabetic()) {
		s.pushStep(w.literal)
		return false
	}
	switch tok := s.Token(); {
	case tok.EqualString("true"), tok.EqualString("false"):
		w.hooks.EndBool(s)
	case tok.EqualString("null"):
		s.null = true
		w.hooks.EndNull(s)
	default:
		s.fail(ErrMalformedLiteral, "invalid literal %q", tok.StringCopy())
	}
	return true
}

// objectLoop parses the members of an object up to and including its
// closing brace, starting in the given state.
func (w *Walker) objectLoop(s *Session, state int) bool {
	for {
		c := s.skipWhitespace()
		switch {
		case c == endOfChunk:
			s.pushStep(w.objects[state])
			return false
		case c == '}' && state != afterComma:
			return true
		case c == ',' && state == afterMember:
			state = afterComma
		case c == '"' && state != afterMember:
			mark := s.depth()
			s.startToken(s.pos)
			if !w.key(s) {
				s.resumeAt(mark, w.objects[afterMember], nil)
				return false
			}
			state = afterMember
		default:
			s.rewind()
			s.fail(ErrUnexpectedByte, "unexpected %s in object, want %s", describe(c), objectWant[state])
		}
	}
}

var objectWant = [...]string{
	afterOpen:   `string or "}"`,
	afterComma:  "string",
	afterMember: `"," or "}"`,
}

// key finishes the key of an object member and then parses the rest of the
// member: the separator, the value, and the commit chosen by the hooks.
func (w *Walker) key(s *Session) bool {
	if s.scanToQuote() == endOfChunk {
		s.pushStep(w.keyStep)
		return false
	}
	s.endToken(s.pos - 1)
	value, commit := w.hooks.Member(s)

	mark := s.depth()
	if !expectColon(s) {
		s.resumeAt(mark, value, commit)
		return false
	}
	if !value(s) {
		if commit != nil {
			s.resumeAt(mark, commit, nil)
		}
		return false
	}
	return commit == nil || commit(s)
}

func expectColon(s *Session) bool {
	switch c := s.skipWhitespace(); c {
	case endOfChunk:
		s.pushStep(expectColon)
		return false
	case ':':
		return true
	default:
		s.rewind()
		s.fail(ErrUnexpectedByte, `unexpected %s, want ":"`, describe(c))
		return false
	}
}

// listLoop parses the elements of an array up to and including its closing
// bracket, starting in the given state.
func (w *Walker) listLoop(s *Session, state int) bool {
	for {
		if state != afterComma {
			c := s.skipWhitespace()
			switch {
			case c == endOfChunk:
				s.pushStep(w.lists[state])
				return false
			case c == ']':
				return true
			case c == ',' && state == afterMember:
				state = afterComma
				continue
			case state == afterOpen:
				s.rewind() // the first element begins here
			default:
				s.rewind()
				s.fail(ErrUnexpectedByte, `unexpected %s in array, want "," or "]"`, describe(c))
			}
		}

		mark := s.depth()
		if !w.elem(s) {
			s.resumeAt(mark, w.addValue, w.lists[afterMember])
			return false
		}
		w.hooks.AddListValue(s)
		state = afterMember
	}
}
