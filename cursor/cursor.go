// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package cursor implements traversal over an untyped JSON tree, as built by
// a jchunk.Generic session.
package cursor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/creachadair/jchunk"
)

// Path traverses a sequential path into the structure of v where path elements
// are as documented for the Cursor.Down method.  This is a convenience wrapper
// for creating a cursor, applying path, and retrieving its value.
func Path[T any](v any, path ...any) (T, error) {
	c := New(v).Down(path...)
	var result T
	if err := c.Err(); err != nil {
		return result, err
	}
	r, ok := c.Value().(T)
	if !ok {
		return result, fmt.Errorf("wrong value type %T", c.Value())
	}
	return r, nil
}

// A Cursor is a pointer that navigates into the structure of a tree of
// map[string]any, []any and scalar values.
type Cursor struct {
	org any
	stk []any
	err error
}

// New constructs a new Cursor to traverse the structure of origin.
func New(origin any) *Cursor { return &Cursor{org: origin} }

// Origin returns the origin value of c.
func (c *Cursor) Origin() any { return c.org }

// AtOrigin reports whether c is at its origin.
func (c *Cursor) AtOrigin() bool { return len(c.stk) == 0 }

// Value reports the current value under the cursor.
func (c *Cursor) Value() any {
	if c.AtOrigin() {
		return c.org
	}
	return c.stk[len(c.stk)-1]
}

// Path reports the complete sequence of values from the origin to the current
// location in c.
func (c *Cursor) Path() []any {
	return append([]any{c.org}, c.stk...)
}

// Err reports the error from the most recent traversal operation, if any.
func (c *Cursor) Err() error { return c.err }

// Up moves the cursor one position upward in the structure, if possible.
// It returns c to permit chaining.
func (c *Cursor) Up() *Cursor {
	if n := len(c.stk); n > 0 {
		c.stk = c.stk[:n-1]
	}
	return c
}

// Reset resets the cursor to its origin and clears its error.
func (c *Cursor) Reset() { c.stk = c.stk[:0]; c.err = nil }

// Down traverses a sequential path into the structure of c starting from the
// current value, where path elements are either strings (denoting object
// keys), integers (denoting offsets into arrays), or functions (see below).
// If the path cannot be completely consumed, traversal stops and an error is
// recorded. Use Err to recover the error.
//
// If a path element is an integer, the corresponding value must be an array.
// Negative indices count backward from the end (-1 is last, -2 second last).
// An error is reported if the index is out of bounds.
//
// If a path element is a function, the function is executed and its result
// becomes the next value in the sequence. The function must have a signature
//
//	func(any) (any, error)
//
// If the function reports an error, traversal stops and the error is recorded.
func (c *Cursor) Down(path ...any) *Cursor {
	c.err = nil // reset error
	cur := c.Value()
	for _, elt := range path {
		switch t := elt.(type) {
		case string:
			obj, ok := cur.(map[string]any)
			if !ok {
				return c.setErrorf("cannot traverse %T with %q", cur, elt)
			}
			v, ok := obj[t]
			if !ok {
				return c.setErrorf("key %q not found", t)
			}
			cur = c.push(v)

		case int:
			arr, ok := cur.([]any)
			if !ok {
				return c.setErrorf("cannot traverse %T with %v", cur, elt)
			}
			i, ok := fixArrayBound(len(arr), t)
			if !ok {
				return c.setErrorf("array index %d out of bounds (n=%d)", i, len(arr))
			}
			cur = c.push(arr[i])

		case func(any) (any, error):
			next, err := t(cur)
			if err != nil {
				c.err = err
				return c
			}
			cur = c.push(next)

		default:
			return c.setErrorf("invalid path element %T", elt)
		}
	}
	return c
}

// ParsePath parses a dotted path string such as "list.1.x" into path
// elements for Down. Elements that parse as integers become array offsets;
// all others are object keys. A key containing dots, or one that looks like
// an integer, may be written as a JSON string, as in `list."1.5"`. An empty
// string yields an empty path.
func ParsePath(s string) ([]any, error) {
	if s == "" {
		return nil, nil
	}
	var path []any
	for {
		if strings.HasPrefix(s, `"`) {
			end := closingQuote(s)
			if end < 0 {
				return nil, fmt.Errorf("unterminated key %s", s)
			}
			key, err := jchunk.Unquote(s[:end+1])
			if err != nil {
				return nil, fmt.Errorf("invalid key %s: %w", s[:end+1], err)
			}
			path = append(path, string(key))
			s = s[end+1:]
			if s == "" {
				return path, nil
			} else if s[0] != '.' {
				return nil, fmt.Errorf("unexpected %q after key", s[0])
			}
			s = s[1:]
			continue
		}

		elt, rest, more := strings.Cut(s, ".")
		if n, err := strconv.Atoi(elt); err == nil {
			path = append(path, n)
		} else {
			path = append(path, elt)
		}
		if !more {
			return path, nil
		}
		s = rest
	}
}

// closingQuote returns the offset of the double quote that closes the JSON
// string at the start of s, or -1.
func closingQuote(s string) int {
	esc := false
	for i := 1; i < len(s); i++ {
		switch {
		case esc:
			esc = false
		case s[i] == '\\':
			esc = true
		case s[i] == '"':
			return i
		}
	}
	return -1
}

// FormatPath renders path in the form accepted by ParsePath. Keys that would
// not parse back as themselves are quoted.
func FormatPath(path []any) string {
	var sb strings.Builder
	for i, elt := range path {
		if i > 0 {
			sb.WriteByte('.')
		}
		switch t := elt.(type) {
		case string:
			if needsQuote(t) {
				sb.WriteString(jchunk.Quote(t))
			} else {
				sb.WriteString(t)
			}
		case int:
			sb.WriteString(strconv.Itoa(t))
		default:
			fmt.Fprintf(&sb, "<%T>", elt)
		}
	}
	return sb.String()
}

func needsQuote(key string) bool {
	if _, err := strconv.Atoi(key); err == nil {
		return true
	}
	return key == "" || strings.HasPrefix(key, `"`) || strings.Contains(key, ".")
}

func (c *Cursor) push(v any) any { c.stk = append(c.stk, v); return v }

func (c *Cursor) setErrorf(msg string, args ...any) *Cursor {
	c.err = fmt.Errorf(msg, args...)
	return c
}

func fixArrayBound(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}
