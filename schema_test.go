// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk_test

import (
	"errors"
	"maps"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/creachadair/jchunk"
	"github.com/creachadair/jchunk/writer"
	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
)

type Pet struct {
	Kind string
	Legs int
}

func (p *Pet) WriteJSON(w *writer.Writer) {
	if p == nil {
		w.Null()
		return
	}
	w.BeginObject()
	w.Key("kind")
	w.Str(p.Kind)
	w.Key("legs")
	w.Int(int64(p.Legs))
	w.EndObject()
}

type Person struct {
	Name    string
	NameTag string
	Age     int
	Big     int64
	Score   float64
	Ratio   float32
	Active  bool
	Born    time.Time
	Tags    []string
	Attrs   map[string]int
	IDs     map[int]string
	Friend  *Person
	Pets    []*Pet
	Grid    [][]int
	Extra   any
}

func (p *Person) WriteJSON(w *writer.Writer) {
	if p == nil {
		w.Null()
		return
	}
	w.BeginObject()
	w.Key("name")
	w.Str(p.Name)
	w.Key("nameTag")
	w.Str(p.NameTag)
	w.Key("age")
	w.Int(int64(p.Age))
	w.Key("big")
	w.Int(p.Big)
	w.Key("score")
	w.Float(p.Score, 64)
	w.Key("ratio")
	w.Float(float64(p.Ratio), 32)
	w.Key("active")
	w.Bool(p.Active)
	if !p.Born.IsZero() {
		w.Key("born")
		w.Time(p.Born)
	}
	if p.Tags != nil {
		w.Key("tags")
		writer.List(w, p.Tags, (*writer.Writer).Str)
	}
	if p.Attrs != nil {
		w.Key("attrs")
		writer.Map(w, p.Attrs, func(w *writer.Writer, v int) { w.Int(int64(v)) })
	}
	if p.IDs != nil {
		w.Key("ids")
		w.BeginObject()
		for _, id := range slices.Sorted(maps.Keys(p.IDs)) {
			w.Key(strconv.Itoa(id))
			w.Str(p.IDs[id])
		}
		w.EndObject()
	}
	if p.Friend != nil {
		w.Key("friend")
		p.Friend.WriteJSON(w)
	}
	if p.Pets != nil {
		w.Key("pets")
		writer.List(w, p.Pets, func(w *writer.Writer, p *Pet) { p.WriteJSON(w) })
	}
	if p.Grid != nil {
		w.Key("grid")
		writer.List(w, p.Grid, func(w *writer.Writer, row []int) {
			writer.List(w, row, func(w *writer.Writer, v int) { w.Int(int64(v)) })
		})
	}
	if p.Extra != nil {
		w.Key("extra")
		w.Value(p.Extra)
	}
	w.EndObject()
}

func petSchema(keys jchunk.KeyStrategy) *jchunk.Schema[Pet] {
	return jchunk.MustSchema(jchunk.NewSchema(keys,
		jchunk.FieldOf("kind", jchunk.Strings, func(p *Pet, v string) { p.Kind = v }),
		jchunk.FieldOf("legs", jchunk.Ints, func(p *Pet, v int) { p.Legs = v }),
	))
}

func personSchema(t testing.TB, keys jchunk.KeyStrategy) *jchunk.Schema[Person] {
	t.Helper()
	ps := jchunk.Declare[Person](keys)
	if err := ps.Define(
		jchunk.FieldOf("name", jchunk.Strings, func(p *Person, v string) { p.Name = v }),
		jchunk.FieldOf("nameTag", jchunk.Strings, func(p *Person, v string) { p.NameTag = v }),
		jchunk.FieldOf("age", jchunk.Ints, func(p *Person, v int) { p.Age = v }),
		jchunk.FieldOf("big", jchunk.Int64s, func(p *Person, v int64) { p.Big = v }),
		jchunk.FieldOf("score", jchunk.Float64s, func(p *Person, v float64) { p.Score = v }),
		jchunk.FieldOf("ratio", jchunk.Float32s, func(p *Person, v float32) { p.Ratio = v }),
		jchunk.FieldOf("active", jchunk.Bools, func(p *Person, v bool) { p.Active = v }),
		jchunk.FieldOf("born", jchunk.Dates, func(p *Person, v time.Time) { p.Born = v }),
		jchunk.FieldOf("tags", jchunk.ListOf(jchunk.Strings), func(p *Person, v []string) { p.Tags = v }),
		jchunk.FieldOf("attrs", jchunk.MapOf(jchunk.Strings, jchunk.Ints), func(p *Person, v map[string]int) { p.Attrs = v }),
		jchunk.FieldOf("ids", jchunk.MapOf(jchunk.Ints, jchunk.Strings), func(p *Person, v map[int]string) { p.IDs = v }),
		jchunk.FieldOf("friend", jchunk.ObjectOf(ps), func(p *Person, v *Person) { p.Friend = v }),
		jchunk.FieldOf("pets", jchunk.ListOf(jchunk.ObjectOf(petSchema(keys))), func(p *Person, v []*Pet) { p.Pets = v }),
		jchunk.FieldOf("grid", jchunk.ListOf(jchunk.ListOf(jchunk.Ints)), func(p *Person, v [][]int) { p.Grid = v }),
		jchunk.FieldOf("extra", jchunk.Any, func(p *Person, v any) { p.Extra = v }),
	); err != nil {
		t.Fatalf("Define: %v", err)
	}
	return ps
}

// sessionOf returns a constructor for sessions of sc.
func sessionOf[T any](t testing.TB, sc *jchunk.Schema[T]) func() *jchunk.Session {
	return func() *jchunk.Session {
		s, err := sc.Session()
		if err != nil {
			t.Fatalf("Session: %v", err)
		}
		return s
	}
}

// shapeSession returns a constructor for sessions whose top-level value has
// shape sh.
func shapeSession[V any](t testing.TB, sh jchunk.Shape[V]) func() *jchunk.Session {
	return func() *jchunk.Session {
		s, err := sh.Session()
		if err != nil {
			t.Fatalf("Session: %v", err)
		}
		return s
	}
}

var strategies = []jchunk.KeyStrategy{jchunk.KeyTrie, jchunk.KeyTable}

func TestUnknownFields(t *testing.T) {
	type record struct {
		Name string
		Age  int
	}
	const input = `{"name":"Bill","junk":{"a":[1,2,3]},"age":50}`
	for _, keys := range strategies {
		t.Run(keys.String(), func(t *testing.T) {
			sc := jchunk.MustSchema(jchunk.NewSchema(keys,
				jchunk.FieldOf("name", jchunk.Strings, func(r *record, v string) { r.Name = v }),
				jchunk.FieldOf("age", jchunk.Ints, func(r *record, v int) { r.Age = v }),
			))
			got := checkChunked(t, sessionOf(t, sc), input)
			if diff := cmp.Diff(&record{Name: "Bill", Age: 50}, got.(*record)); diff != "" {
				t.Errorf("Parse (-want, +got):\n%s", diff)
			}

			// Keys that share a prefix with a field name are also unknown.
			got = checkChunked(t, sessionOf(t, sc),
				`{"nam":1,"names":[{}],"":null,"ag":true,"age":7,"agex":"y","name":"Al"}`)
			if diff := cmp.Diff(&record{Name: "Al", Age: 7}, got.(*record)); diff != "" {
				t.Errorf("Parse (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestKeyDispatchEquivalence(t *testing.T) {
	const input = `{"nameTag":"x","name":"y","n":1,"na":[],"nameTagz":2,"nameT":{},"name":"z"}`
	var results []*Person
	for _, keys := range strategies {
		got := checkChunked(t, sessionOf(t, personSchema(t, keys)), input)
		results = append(results, got.(*Person))
	}
	want := &Person{Name: "z", NameTag: "x"}
	for i, got := range results {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Parse with %v (-want, +got):\n%s", strategies[i], diff)
		}
	}
}

func TestSchemaValues(t *testing.T) {
	const input = `{
  "name": "Alice \"Al\" Smith",
  "age": 41,
  "big": -9223372036854775808,
  "score": 97.25,
  "ratio": 0.5,
  "active": true,
  "born": "2021-03-04T05:06:07Z",
  "tags": ["a", "b\n", ""],
  "attrs": {"x": 1, "y!": -2},
  "ids": {"1": "one", "20": "twenty"},
  "friend": {"name": "Bob", "friend": {"name": "Carol", "tags": []}},
  "pets": [{"kind": "cat", "legs": 4, "color": "grey"}, null],
  "grid": [[1, 2], [], [3]],
  "extra": {"k": [1, 2.5, "s", false, null]}
}`
	want := &Person{
		Name:   `Alice "Al" Smith`,
		Age:    41,
		Big:    -9223372036854775808,
		Score:  97.25,
		Ratio:  0.5,
		Active: true,
		Born:   time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC),
		Tags:   []string{"a", "b\n", ""},
		Attrs:  map[string]int{"x": 1, "y!": -2},
		IDs:    map[int]string{1: "one", 20: "twenty"},
		Friend: &Person{Name: "Bob", Friend: &Person{Name: "Carol", Tags: []string{}}},
		Pets:   []*Pet{{Kind: "cat", Legs: 4}, nil},
		Grid:   [][]int{{1, 2}, {}, {3}},
		Extra:  map[string]any{"k": []any{int64(1), 2.5, "s", false, nil}},
	}
	for _, keys := range strategies {
		got := checkChunked(t, sessionOf(t, personSchema(t, keys)), input)
		if diff := cmp.Diff(want, got.(*Person)); diff != "" {
			t.Errorf("Parse with %v (-want, +got):\n%s", keys, diff)
		}
	}
}

func TestSchemaNulls(t *testing.T) {
	sc := personSchema(t, jchunk.KeyTrie)
	got := checkChunked(t, sessionOf(t, sc), `{
  "name": null, "age": null, "active": null, "born": null,
  "tags": null, "friend": null, "extra": null,
  "pets": [null, {"kind": null, "legs": 2}],
  "attrs": {"a": null}, "grid": [[1, null], null]
}`)
	want := &Person{
		Pets:  []*Pet{nil, {Legs: 2}},
		Attrs: map[string]int{"a": 0},
		Grid:  [][]int{{1, 0}, nil},
	}
	if diff := cmp.Diff(want, got.(*Person)); diff != "" {
		t.Errorf("Parse (-want, +got):\n%s", diff)
	}

	s, err := sc.Session()
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if p, err := jchunk.ParseString[*Person](s, `null`); err != nil || p != nil {
		t.Errorf("Parse null: got %+v, %v; want nil, nil", p, err)
	}
}

func TestShapeRoots(t *testing.T) {
	for _, keys := range strategies {
		t.Run(keys.String(), func(t *testing.T) {
			pets := jchunk.ListOf(jchunk.ObjectOf(petSchema(keys)))
			got := checkChunked(t, shapeSession(t, pets),
				`[{"kind":"cat","legs":4}, null, {"legs":2,"wings":true}, {}]`)
			want := []*Pet{{Kind: "cat", Legs: 4}, nil, {Legs: 2}, {}}
			if diff := cmp.Diff(want, got.([]*Pet)); diff != "" {
				t.Errorf("Parse (-want, +got):\n%s", diff)
			}

			s, err := pets.Session()
			if err != nil {
				t.Fatalf("Session: %v", err)
			}
			if v, err := jchunk.ParseString[[]*Pet](s, ` [] `); err != nil || v == nil || len(v) != 0 {
				t.Errorf("Parse []: got %#v, %v; want empty slice", v, err)
			}
			if v, err := jchunk.ParseString[[]*Pet](s, `null`); err != nil || v != nil {
				t.Errorf("Parse null: got %#v, %v; want nil", v, err)
			}
			if _, err := jchunk.ParseString[[]*Pet](s, `{"kind":"cat"}`); !errors.Is(err, jchunk.ErrUnexpectedByte) {
				t.Errorf("Parse object: got %v, want %v", err, jchunk.ErrUnexpectedByte)
			}
		})
	}

	t.Run("Scalars", func(t *testing.T) {
		if got := checkChunked(t, shapeSession(t, jchunk.Strings), `"a\u00e9\"b"`); got != `aé"b` {
			t.Errorf("Strings: got %#v, want %q", got, `aé"b`)
		}
		if got := checkChunked(t, shapeSession(t, jchunk.Ints), ` -1234 `); got != -1234 {
			t.Errorf("Ints: got %#v, want -1234", got)
		}
		if got := checkChunked(t, shapeSession(t, jchunk.Float64s), `25e-1`); got != 2.5 {
			t.Errorf("Float64s: got %#v, want 2.5", got)
		}
		if got := checkChunked(t, shapeSession(t, jchunk.Bools), `null`); got != false {
			t.Errorf("Bools: got %#v, want false", got)
		}
		s, err := jchunk.Ints.Session()
		if err != nil {
			t.Fatalf("Session: %v", err)
		}
		if _, err := jchunk.ParseString[int](s, `"12"`); !errors.Is(err, jchunk.ErrUnexpectedByte) {
			t.Errorf("Parse string as int: got %v, want %v", err, jchunk.ErrUnexpectedByte)
		}
	})

	t.Run("Map", func(t *testing.T) {
		ids := jchunk.MapOf(jchunk.Ints, jchunk.ListOf(jchunk.Strings))
		got := checkChunked(t, shapeSession(t, ids), `{"1":["a","b"], "-2":[], "3":null}`)
		want := map[int][]string{1: {"a", "b"}, -2: {}, 3: nil}
		if diff := cmp.Diff(want, got.(map[int][]string)); diff != "" {
			t.Errorf("Parse (-want, +got):\n%s", diff)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		var zero jchunk.Shape[int]
		if _, err := zero.Session(); err == nil {
			t.Error("Session of zero shape: got nil error")
		}
	})
}

func TestSchemaErrors(t *testing.T) {
	sc := personSchema(t, jchunk.KeyTable)
	tests := []struct {
		input string
		kind  error
	}{
		{`[]`, jchunk.ErrUnexpectedByte},
		{`"x"`, jchunk.ErrUnexpectedByte},
		{`{"age":"41"}`, jchunk.ErrUnexpectedByte},
		{`{"name":5}`, jchunk.ErrUnexpectedByte},
		{`{"active":1}`, jchunk.ErrUnexpectedByte},
		{`{"tags":"a"}`, jchunk.ErrUnexpectedByte},
		{`{"tags":[1]}`, jchunk.ErrUnexpectedByte},
		{`{"tags":["a",]}`, jchunk.ErrUnexpectedByte},
		{`{"attrs":[]}`, jchunk.ErrUnexpectedByte},
		{`{"friend":[]}`, jchunk.ErrUnexpectedByte},
		{`{"age":3.5}`, jchunk.ErrMalformedLiteral},
		{`{"big":99999999999999999999}`, jchunk.ErrMalformedLiteral},
		{`{"born":"not a date at all"}`, jchunk.ErrMalformedLiteral},
		{`{"ids":{"x":"y"}}`, jchunk.ErrMalformedLiteral},
		{`{"junk":[1,}`, jchunk.ErrUnexpectedByte},
		{`{"name":"x"`, jchunk.ErrIncomplete},
	}
	for _, tc := range tests {
		s, err := sc.Session()
		if err != nil {
			t.Fatalf("Session: %v", err)
		}
		_, err = jchunk.ParseString[*Person](s, tc.input)
		if !errors.Is(err, tc.kind) {
			t.Errorf("Parse %#q: got error %v, want %v", tc.input, err, tc.kind)
		}
	}
}

func TestSchemaConstruction(t *testing.T) {
	type rec struct{ A, B string }
	setA := func(r *rec, v string) { r.A = v }

	t.Run("Duplicate", func(t *testing.T) {
		_, err := jchunk.NewSchema(jchunk.KeyTrie,
			jchunk.FieldOf("a", jchunk.Strings, setA),
			jchunk.FieldOf("a", jchunk.Strings, setA))
		if !errors.Is(err, jchunk.ErrDuplicateField) {
			t.Errorf("NewSchema: got %v, want %v", err, jchunk.ErrDuplicateField)
		}
	})
	t.Run("EmptyName", func(t *testing.T) {
		_, err := jchunk.NewSchema(jchunk.KeyTable, jchunk.FieldOf("", jchunk.Strings, setA))
		if !errors.Is(err, jchunk.ErrEmptyFieldName) {
			t.Errorf("NewSchema: got %v, want %v", err, jchunk.ErrEmptyFieldName)
		}
	})
	t.Run("UnsupportedKey", func(t *testing.T) {
		bad := jchunk.MapOf(jchunk.Any, jchunk.Ints)
		if !errors.Is(bad.Err(), jchunk.ErrUnsupportedKey) {
			t.Errorf("MapOf: got %v, want %v", bad.Err(), jchunk.ErrUnsupportedKey)
		}
		if _, err := bad.Session(); !errors.Is(err, jchunk.ErrUnsupportedKey) {
			t.Errorf("Session: got %v, want %v", err, jchunk.ErrUnsupportedKey)
		}
		pets := jchunk.MapOf(jchunk.ObjectOf(petSchema(jchunk.KeyTrie)), jchunk.Ints)
		if !errors.Is(pets.Err(), jchunk.ErrUnsupportedKey) {
			t.Errorf("MapOf: got %v, want %v", pets.Err(), jchunk.ErrUnsupportedKey)
		}
		nested := jchunk.ListOf(jchunk.MapOf(jchunk.Any, jchunk.Strings))
		_, err := jchunk.NewSchema(jchunk.KeyTrie,
			jchunk.FieldOf("m", nested, func(*rec, []map[any]string) {}))
		if !errors.Is(err, jchunk.ErrUnsupportedKey) {
			t.Errorf("NewSchema: got %v, want %v", err, jchunk.ErrUnsupportedKey)
		}
	})
	t.Run("Undefined", func(t *testing.T) {
		sc := jchunk.Declare[rec](jchunk.KeyTrie)
		if _, err := sc.Session(); !errors.Is(err, jchunk.ErrUndefinedSchema) {
			t.Errorf("Session: got %v, want %v", err, jchunk.ErrUndefinedSchema)
		}

		// A schema whose field refers to an undefined schema is reported when
		// a session is requested, however deeply the reference is nested.
		type outer struct{ R []map[string]*rec }
		out := jchunk.MustSchema(jchunk.NewSchema(jchunk.KeyTrie,
			jchunk.FieldOf("r", jchunk.ListOf(jchunk.MapOf(jchunk.Strings, jchunk.ObjectOf(sc))),
				func(o *outer, v []map[string]*rec) { o.R = v })))
		if _, err := out.Session(); !errors.Is(err, jchunk.ErrUndefinedSchema) {
			t.Errorf("Session: got %v, want %v", err, jchunk.ErrUndefinedSchema)
		}
		if _, err := jchunk.ListOf(jchunk.ObjectOf(out)).Session(); !errors.Is(err, jchunk.ErrUndefinedSchema) {
			t.Errorf("Shape session: got %v, want %v", err, jchunk.ErrUndefinedSchema)
		}

		// Once defined, the same shapes work.
		if err := sc.Define(jchunk.FieldOf("a", jchunk.Strings, setA)); err != nil {
			t.Fatalf("Define: %v", err)
		}
		s, err := out.Session()
		if err != nil {
			t.Fatalf("Session: %v", err)
		}
		got, err := jchunk.ParseString[*outer](s, `{"r":[{"k":{"a":"x"}}]}`)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		want := &outer{R: []map[string]*rec{{"k": {A: "x"}}}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Parse (-want, +got):\n%s", diff)
		}
		if err := sc.Define(); err == nil {
			t.Error("Define twice: got nil error")
		}
	})
	t.Run("MutualRecursion", func(t *testing.T) {
		type even struct{ Next any }
		type odd struct{ Next *even }
		evens := jchunk.Declare[even](jchunk.KeyTable)
		odds := jchunk.Declare[odd](jchunk.KeyTrie)
		if err := evens.Define(jchunk.FieldOf("next", jchunk.ObjectOf(odds), func(e *even, v *odd) { e.Next = v })); err != nil {
			t.Fatalf("Define even: %v", err)
		}
		if _, err := evens.Session(); !errors.Is(err, jchunk.ErrUndefinedSchema) {
			t.Errorf("Session: got %v, want %v", err, jchunk.ErrUndefinedSchema)
		}
		if err := odds.Define(jchunk.FieldOf("next", jchunk.ObjectOf(evens), func(o *odd, v *even) { o.Next = v })); err != nil {
			t.Fatalf("Define odd: %v", err)
		}
		got := checkChunked(t, sessionOf(t, evens), `{"next":{"next":{"next":null}}}`)
		want := &even{Next: &odd{Next: &even{Next: (*odd)(nil)}}}
		if diff := cmp.Diff(want, got.(*even)); diff != "" {
			t.Errorf("Parse (-want, +got):\n%s", diff)
		}
	})
	t.Run("MustSchema", func(t *testing.T) {
		mtest.MustPanic(t, func() {
			jchunk.MustSchema(jchunk.NewSchema(jchunk.KeyTrie,
				jchunk.FieldOf("a", jchunk.Strings, setA),
				jchunk.FieldOf("a", jchunk.Strings, setA)))
		})
	})
	t.Run("Fields", func(t *testing.T) {
		sc := personSchema(t, jchunk.KeyTrie)
		if got := sc.Fields(); len(got) != 15 || got[0] != "name" || got[14] != "extra" {
			t.Errorf("Fields: got %q", got)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input *Person
	}{
		{"Empty", &Person{}},
		{"EmptyCollections", &Person{Tags: []string{}, Attrs: map[string]int{}, Pets: []*Pet{}, Grid: [][]int{}}},
		{"Populated", &Person{
			Name:    "Dana \"D\" Scully",
			NameTag: "ds\t1",
			Age:     -3,
			Big:     1 << 62,
			Score:   3,
			Ratio:   0.1,
			Active:  true,
			Born:    time.Date(1964, 2, 23, 12, 0, 0, 0, time.UTC),
			Tags:    []string{"fbi", "x-files", "é"},
			Attrs:   map[string]int{"height": 160, "": 0},
			IDs:     map[int]string{-1: "neg", 7: "seven"},
			Friend:  &Person{Name: "Fox", Pets: []*Pet{nil}},
			Pets:    []*Pet{{Kind: "dog", Legs: 4}, {Kind: "snake"}},
			Grid:    [][]int{{1}, {}, {2, 3}},
			Extra:   []any{map[string]any{"deep": []any{1.5, nil, true}}, "s", int64(-7)},
		}},
	}
	for _, keys := range strategies {
		sc := personSchema(t, keys)
		for _, tc := range tests {
			t.Run(keys.String()+"/"+tc.name, func(t *testing.T) {
				w := writer.New("")
				tc.input.WriteJSON(w)
				if err := w.Err(); err != nil {
					t.Fatalf("Write: %v", err)
				}
				got := checkChunked(t, sessionOf(t, sc), string(w.Bytes()))
				if diff := cmp.Diff(tc.input, got.(*Person)); diff != "" {
					t.Errorf("Round trip of %s (-want, +got):\n%s", w.Bytes(), diff)
				}
			})
		}
	}
}
