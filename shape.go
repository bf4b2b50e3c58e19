// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import (
	"errors"
	"fmt"
	"time"
)

// A Shape describes how to parse a JSON value into a Go value of type V: the
// step that parses the value, and the extractor that yields the result once
// it is parsed. Shapes are resolved when they are constructed and may be
// shared by any number of schemas and sessions.
type Shape[V any] struct {
	start   Step
	extract Extractor[V]
	token   bool        // the value is a scalar token rather than a target
	needs   []schemaRef // schemas that must be defined before use
	err     error       // construction error, reported when the shape is used
}

// Err reports the construction error of sh, if any.
func (sh Shape[V]) Err() error { return sh.err }

// Session returns a new session whose top-level value has shape sh, and
// whose Result is a V. It reports the construction error of sh, or
// ErrUndefinedSchema if sh refers to a schema that is not yet defined.
func (sh Shape[V]) Session() (*Session, error) {
	if sh.err != nil {
		return nil, sh.err
	} else if sh.start == nil {
		return nil, errors.New("shape is not initialized")
	} else if err := checkDefined(sh.needs...); err != nil {
		return nil, err
	}
	s := NewSession(sh.start)
	s.finish = func(s *Session) any { return sh.extractOrZero(s) }
	return s, nil
}

func tokenShape[V any](accept kind, extract Extractor[V]) Shape[V] {
	return Shape[V]{start: skipper.start(accept | kNull), extract: extract, token: true}
}

// Scalar shapes. Each accepts null, which yields the zero value.
var (
	Strings  = tokenShape(kString, StringValue)
	Ints     = tokenShape(kNumber, IntValue)
	Int64s   = tokenShape(kNumber, Int64Value)
	Float64s = tokenShape(kNumber, Float64Value)
	Float32s = tokenShape(kNumber, Float32Value)
	Bools    = tokenShape(kBool, BoolValue)
	Dates    = tokenShape[time.Time](kString, DateValue)

	// Any parses any value as an untyped tree, as Generic does.
	Any = Shape[any]{start: generic.Value(), extract: TargetValue[any]()}
)

// extractOrZero extracts a value of shape sh, treating a null token as the
// zero value.
func (sh Shape[V]) extractOrZero(s *Session) V {
	if sh.token && s.takeNull() {
		var zero V
		return zero
	}
	return sh.extract(s)
}

// ObjectOf returns the shape of a JSON object parsed by sc. A null yields a
// nil pointer.
func ObjectOf[U any](sc *Schema[U]) Shape[*U] {
	return Shape[*U]{start: sc.object, extract: TargetValue[*U](), needs: []schemaRef{sc}}
}

// listHooks builds a []E from an array whose elements have shape elem.
type listHooks[E any] struct {
	skipHooks
	elem Shape[E]
}

func (*listHooks[E]) BeginList(s *Session) { s.PushTarget(make([]E, 0)) }

func (h *listHooks[E]) AddListValue(s *Session) {
	v := h.elem.extractOrZero(s)
	s.SetTarget(append(s.Target().([]E), v))
}

func (*listHooks[E]) EndNull(s *Session) {
	s.takeNull()
	s.PushTarget(nil)
}

// ListOf returns the shape of a JSON array whose elements have shape elem.
// A null yields a nil slice.
func ListOf[E any](elem Shape[E]) Shape[[]E] {
	h := &listHooks[E]{skipHooks: skipHooks{skipper.Value()}, elem: elem}
	w := newWalker(h, elem.start)
	return Shape[[]E]{
		start:   w.start(kList | kNull),
		extract: TargetValue[[]E](),
		needs:   elem.needs,
		err:     elem.err,
	}
}

// mapHooks builds a map[K]V from an object whose members have values of
// shape vals. Keys are extracted from the member names with keys.
type mapHooks[K comparable, V any] struct {
	skipHooks
	keys   Shape[K]
	vals   Shape[V]
	commit Step
}

func (*mapHooks[K, V]) BeginObject(s *Session) { s.PushTarget(make(map[K]V)) }

func (*mapHooks[K, V]) EndNull(s *Session) {
	s.takeNull()
	s.PushTarget(nil)
}

func (h *mapHooks[K, V]) Member(s *Session) (value, commit Step) {
	s.PushTarget(h.keys.extract(s))
	return h.vals.start, h.commit
}

func (h *mapHooks[K, V]) put(s *Session) bool {
	v := h.vals.extractOrZero(s)
	k := s.PopTarget().(K)
	s.Target().(map[K]V)[k] = v
	return true
}

// MapOf returns the shape of a JSON object treated as a map from keys of
// shape keys to values of shape vals. The key shape must be one of the
// scalar shapes; otherwise the result reports ErrUnsupportedKey. A null
// yields a nil map.
func MapOf[K comparable, V any](keys Shape[K], vals Shape[V]) Shape[map[K]V] {
	if !keys.token {
		var zero K
		return Shape[map[K]V]{err: fmt.Errorf("map key %T: %w", zero, ErrUnsupportedKey)}
	} else if vals.err != nil {
		return Shape[map[K]V]{err: vals.err}
	}
	h := &mapHooks[K, V]{skipHooks: skipHooks{skipper.Value()}, keys: keys, vals: vals}
	h.commit = h.put
	w := NewWalker(h)
	return Shape[map[K]V]{
		start:   w.start(kObject | kNull),
		extract: TargetValue[map[K]V](),
		needs:   vals.needs,
	}
}
