// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

// skipHooks implements Hooks by building nothing. Scalar tokens are left
// current, so a step of the skip walker can also serve as the value step of
// a field whose commit extracts the token.
type skipHooks struct{ value Step }

func (skipHooks) BeginObject(*Session)  {}
func (skipHooks) BeginList(*Session)    {}
func (skipHooks) AddListValue(*Session) {}
func (skipHooks) EndString(*Session)    {}
func (skipHooks) EndNumber(*Session)    {}
func (skipHooks) EndFloat(*Session)     {}
func (skipHooks) EndBool(*Session)      {}
func (skipHooks) EndNull(*Session)      {}

func (h *skipHooks) Member(s *Session) (value, commit Step) {
	s.clearToken()
	return h.value, nil
}

func newSkipper() *Walker {
	h := new(skipHooks)
	w := NewWalker(h)
	h.value = w.Value()
	return w
}

// skipper validates and discards values. Its steps are shared by every
// session, and also serve as the value steps of scalar shapes.
var skipper = newSkipper()

// Skip returns a session that checks the syntax of a value and discards it.
// The Result of a complete parse is nil.
func Skip() *Session { return NewSession(skipper.Value()) }
