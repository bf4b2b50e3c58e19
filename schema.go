// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import (
	"errors"
	"fmt"
	"slices"

	"github.com/creachadair/mds/mapset"
)

// A Field binds the name of an object member to the shape of its value and
// a function that stores the parsed value into a record of type T.
type Field[T any] struct {
	name   string
	value  Step
	commit Step
	needs  []schemaRef
	err    error
}

// FieldOf constructs a Field of a record of type T named name, whose value
// has shape sh and is stored by set. A member whose value is null leaves
// the field with its zero value.
func FieldOf[T, V any](name string, sh Shape[V], set func(*T, V)) Field[T] {
	f := Field[T]{name: name, value: sh.start, needs: sh.needs}
	if sh.err != nil {
		f.err = fmt.Errorf("field %q: %w", name, sh.err)
	}
	f.commit = func(s *Session) bool {
		if sh.token && s.takeNull() {
			return true
		}
		v := sh.extract(s)
		set(s.Target().(*T), v)
		return true
	}
	return f
}

// Name reports the member name of f.
func (f Field[T]) Name() string { return f.name }

// A Schema parses JSON objects into records of type T. A schema is built
// once, and its key dispatch table is immutable once defined, so a schema
// may be shared by any number of sessions. Members whose names are not
// fields of the schema are checked and discarded.
type Schema[T any] struct {
	keys   KeyStrategy
	object Step // parses an object of T, or null
	fields []Field[T]
	needs  []schemaRef // schemas referred to by fields
	match  keyMatcher  // nil until defined
}

// Declare constructs a schema for T whose fields are not yet defined. This
// allows a schema to refer to itself, or to others not yet defined, with
// ObjectOf. The schema cannot be used to parse until Define is called.
func Declare[T any](keys KeyStrategy) *Schema[T] {
	sc := &Schema[T]{keys: keys}
	h := &schemaHooks[T]{skipHooks: skipHooks{skipper.Value()}, sc: sc}
	sc.object = NewWalker(h).start(kObject | kNull)
	return sc
}

// Define sets the fields of a declared schema and builds its key dispatch
// table. Define reports an error without modifying sc if a field is
// invalid, if two fields share a name, or if sc is already defined.
func (sc *Schema[T]) Define(fields ...Field[T]) error {
	if sc.match != nil {
		return errors.New("schema is already defined")
	}
	seen := mapset.New[string]()
	names := make([]string, len(fields))
	var needs []schemaRef
	for i, f := range fields {
		if f.err != nil {
			return f.err
		} else if f.name == "" {
			return fmt.Errorf("field %d: %w", i, ErrEmptyFieldName)
		} else if seen.Has(f.name) {
			return fmt.Errorf("field %q: %w", f.name, ErrDuplicateField)
		}
		seen.Add(f.name)
		names[i] = f.name
		needs = append(needs, f.needs...)
	}
	sc.fields = slices.Clone(fields)
	sc.needs = needs
	sc.match = newMatcher(sc.keys, names)
	return nil
}

// NewSchema constructs and defines a schema for T with the given fields.
func NewSchema[T any](keys KeyStrategy, fields ...Field[T]) (*Schema[T], error) {
	sc := Declare[T](keys)
	if err := sc.Define(fields...); err != nil {
		return nil, err
	}
	return sc, nil
}

// MustSchema returns sc if err is nil, and otherwise panics.
// It is intended for use with NewSchema in variable initialization.
func MustSchema[T any](sc *Schema[T], err error) *Schema[T] {
	if err != nil {
		panic(fmt.Sprintf("jchunk: invalid schema: %v", err))
	}
	return sc
}

// Session returns a new session that parses an object into a *T. A null
// yields a nil result. It reports ErrUndefinedSchema if sc, or any schema
// its fields refer to, has been declared but not defined.
func (sc *Schema[T]) Session() (*Session, error) {
	if err := checkDefined(sc); err != nil {
		return nil, err
	}
	return NewSession(sc.object), nil
}

// Fields returns the names of the fields of sc, in definition order.
func (sc *Schema[T]) Fields() []string {
	names := make([]string, len(sc.fields))
	for i, f := range sc.fields {
		names[i] = f.name
	}
	return names
}

// A schemaRef is a schema referred to by a shape, whatever its record type.
type schemaRef interface {
	defined() bool
	dependencies() []schemaRef
	typeName() string
}

func (sc *Schema[T]) defined() bool              { return sc.match != nil }
func (sc *Schema[T]) dependencies() []schemaRef { return sc.needs }
func (sc *Schema[T]) typeName() string          { return fmt.Sprintf("%T", (*T)(nil)) }

// checkDefined reports ErrUndefinedSchema if any schema reachable from refs
// is not defined. Schemas may refer to each other in cycles.
func checkDefined(refs ...schemaRef) error {
	seen := mapset.New[schemaRef]()
	refs = slices.Clone(refs)
	for len(refs) != 0 {
		ref := refs[len(refs)-1]
		refs = refs[:len(refs)-1]
		if seen.Has(ref) {
			continue
		}
		seen.Add(ref)
		if !ref.defined() {
			return fmt.Errorf("schema for %s: %w", ref.typeName(), ErrUndefinedSchema)
		}
		refs = append(refs, ref.dependencies()...)
	}
	return nil
}

// schemaHooks builds a *T from an object, dispatching each member by name.
type schemaHooks[T any] struct {
	skipHooks
	sc *Schema[T]
}

func (*schemaHooks[T]) BeginObject(s *Session) { s.PushTarget(new(T)) }

func (*schemaHooks[T]) EndNull(s *Session) {
	s.takeNull()
	s.PushTarget(nil)
}

func (h *schemaHooks[T]) Member(s *Session) (value, commit Step) {
	m := h.sc.match
	if m == nil {
		s.fail(ErrUndefinedSchema, "schema for %T is not defined", (*T)(nil))
	}
	i := m.match(s.keyBytes())
	s.clearToken()
	if i < 0 {
		return h.value, nil
	}
	f := &h.sc.fields[i]
	return f.value, f.commit
}
