// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

// genericHooks builds an untyped tree:
//
//	JSON type | Go type
//	--------- | --------------
//	object    | map[string]any
//	array     | []any
//	string    | string
//	integer   | int64
//	number    | float64
//	boolean   | bool
//	null      | nil
type genericHooks struct{ value Step }

func (genericHooks) BeginObject(s *Session) { s.PushTarget(make(map[string]any)) }
func (genericHooks) BeginList(s *Session)   { s.PushTarget(make([]any, 0)) }
func (genericHooks) EndString(s *Session)   { s.PushTarget(StringValue(s)) }
func (genericHooks) EndNumber(s *Session)   { s.PushTarget(Int64Value(s)) }
func (genericHooks) EndFloat(s *Session)    { s.PushTarget(Float64Value(s)) }
func (genericHooks) EndBool(s *Session)     { s.PushTarget(BoolValue(s)) }

func (genericHooks) EndNull(s *Session) {
	s.takeNull()
	s.PushTarget(nil)
}

func (genericHooks) AddListValue(s *Session) {
	v := s.PopTarget()
	s.SetTarget(append(s.Target().([]any), v))
}

// Member pushes the key. The value built above it is paired with the key by
// the fillKey commit.
func (h *genericHooks) Member(s *Session) (value, commit Step) {
	s.PushTarget(StringValue(s))
	return h.value, fillKey
}

func fillKey(s *Session) bool {
	v := s.PopTarget()
	key := s.PopTarget().(string)
	s.Target().(map[string]any)[key] = v
	return true
}

func newGeneric() *Walker {
	h := new(genericHooks)
	w := NewWalker(h)
	h.value = w.Value()
	return w
}

var generic = newGeneric()

// Generic returns a session that builds an untyped tree of maps, slices and
// scalars. See the package documentation for the types produced.
func Generic() *Session { return NewSession(generic.Value()) }
