// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package writer implements a single-pass JSON encoder for the values built
// by jchunk sessions: untyped trees of maps, slices and scalars, and records
// that implement the Marshaler interface.
package writer

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/creachadair/jchunk/internal/escape"
	"go4.org/mem"
)

// A Marshaler is a value that can encode itself to a Writer.
type Marshaler interface {
	WriteJSON(*Writer)
}

// A Writer accumulates the JSON encoding of a value. The zero value is ready
// for use and produces compact output.
type Writer struct {
	buf      []byte
	indent   string
	open     []bool // per open container: whether it has any elements
	afterKey bool
	err      error
}

// New constructs a Writer. If indent is not empty, the output is
// pretty-printed with one copy of indent per level of nesting.
func New(indent string) *Writer { return &Writer{indent: indent} }

// Bytes returns the encoded output. It is valid until the next write.
func (w *Writer) Bytes() []byte { return w.buf }

// Err reports the first error encountered while writing, if any. A value
// that cannot be encoded is written as null.
func (w *Writer) Err() error { return w.err }

// Reset discards the output and error of w, retaining its settings.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.open = w.open[:0]
	w.afterKey = false
	w.err = nil
}

// Marshal returns the compact JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	var w Writer
	w.Value(v)
	return w.buf, w.err
}

// sep writes the separator and indentation needed before a new value.
func (w *Writer) sep() {
	if w.afterKey {
		w.afterKey = false
		return
	}
	n := len(w.open)
	if n == 0 {
		return
	}
	if w.open[n-1] {
		w.buf = append(w.buf, ',')
	}
	w.open[n-1] = true
	w.newline(n)
}

func (w *Writer) newline(depth int) {
	if w.indent != "" {
		w.buf = append(w.buf, '\n')
		w.buf = append(w.buf, strings.Repeat(w.indent, depth)...)
	}
}

func (w *Writer) begin(c byte) {
	w.sep()
	w.buf = append(w.buf, c)
	w.open = append(w.open, false)
}

func (w *Writer) end(c byte) {
	n := len(w.open) - 1
	if w.open[n] {
		w.newline(n)
	}
	w.open = w.open[:n]
	w.buf = append(w.buf, c)
}

// BeginObject writes the start of an object.
func (w *Writer) BeginObject() { w.begin('{') }

// EndObject writes the end of the innermost open object.
func (w *Writer) EndObject() { w.end('}') }

// BeginList writes the start of an array.
func (w *Writer) BeginList() { w.begin('[') }

// EndList writes the end of the innermost open array.
func (w *Writer) EndList() { w.end(']') }

// Key writes the key of an object member. The next value written is the
// value of the member.
func (w *Writer) Key(key string) {
	w.sep()
	w.buf = escape.AppendQuote(w.buf, mem.S(key))
	w.buf = append(w.buf, ':')
	if w.indent != "" {
		w.buf = append(w.buf, ' ')
	}
	w.afterKey = true
}

// Str writes a string value.
func (w *Writer) Str(s string) {
	w.sep()
	w.buf = escape.AppendQuote(w.buf, mem.S(s))
}

// Int writes an integer value.
func (w *Writer) Int(v int64) {
	w.sep()
	w.buf = strconv.AppendInt(w.buf, v, 10)
}

// Float writes a floating-point value with the given precision (32 or 64).
// The output always has a fraction or an exponent, so that it parses back
// as a floating-point value. NaN and infinities are errors.
func (w *Writer) Float(v float64, bits int) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		w.fail(fmt.Errorf("unsupported float value %v", v))
		return
	}
	w.sep()
	start := len(w.buf)
	w.buf = strconv.AppendFloat(w.buf, v, 'g', -1, bits)
	if !slices.ContainsFunc(w.buf[start:], isFloatMark) {
		w.buf = append(w.buf, '.', '0')
	}
}

func isFloatMark(b byte) bool { return b == '.' || b == 'e' || b == 'E' }

// Bool writes a Boolean value.
func (w *Writer) Bool(v bool) {
	w.sep()
	w.buf = strconv.AppendBool(w.buf, v)
}

// Null writes a null value.
func (w *Writer) Null() {
	w.sep()
	w.buf = append(w.buf, "null"...)
}

// Time writes t as a string in RFC 3339 format.
func (w *Writer) Time(t time.Time) { w.Str(t.Format(time.RFC3339Nano)) }

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
	w.Null()
}

// Value writes v, which must be nil, a Marshaler, a scalar of a type
// produced by a jchunk session, or a map[string]any or []any of such
// values. Map keys are written in sorted order.
func (w *Writer) Value(v any) {
	switch t := v.(type) {
	case nil:
		w.Null()
	case Marshaler:
		t.WriteJSON(w)
	case string:
		w.Str(t)
	case int:
		w.Int(int64(t))
	case int64:
		w.Int(t)
	case float64:
		w.Float(t, 64)
	case float32:
		w.Float(float64(t), 32)
	case bool:
		w.Bool(t)
	case time.Time:
		w.Time(t)
	case []any:
		List(w, t, (*Writer).Value)
	case map[string]any:
		Map(w, t, (*Writer).Value)
	default:
		w.fail(fmt.Errorf("unsupported value type %T", v))
	}
}

// List writes vs as an array, writing each element with f. A nil slice is
// written as null.
func List[E any](w *Writer, vs []E, f func(*Writer, E)) {
	if vs == nil {
		w.Null()
		return
	}
	w.BeginList()
	for _, v := range vs {
		f(w, v)
	}
	w.EndList()
}

// Map writes m as an object with its keys in sorted order, writing each
// value with f. A nil map is written as null.
func Map[V any](w *Writer, m map[string]V, f func(*Writer, V)) {
	if m == nil {
		w.Null()
		return
	}
	w.BeginObject()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		w.Key(k)
		f(w, m[k])
	}
	w.EndObject()
}
