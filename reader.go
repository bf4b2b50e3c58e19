// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import "io"

// DefaultChunkSize is the chunk size used by a Reader when none is given.
const DefaultChunkSize = 4096

// A Reader feeds input from an io.Reader to sessions in fixed-size chunks.
// It is a convenience for callers whose input is a stream; the session
// itself never blocks. A Reader can decode a sequence of values that are
// concatenated in the input, separated by optional whitespace.
type Reader struct {
	r    io.Reader
	buf  []byte
	rest []byte // unread input following the last value
	err  error  // deferred read error
}

// NewReader constructs a Reader that consumes input from r in chunks of at
// most chunkSize bytes. If chunkSize ≤ 0, DefaultChunkSize is used.
func NewReader(r io.Reader, chunkSize int) *Reader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Reader{r: r, buf: make([]byte, chunkSize)}
}

// Decode resets s and feeds it input until one complete value has been
// parsed, which is then available from s.Result. If the input contains no
// further values, Decode returns io.EOF. If the input ends in the middle of
// a value, the error wraps ErrIncomplete.
func (r *Reader) Decode(s *Session) error {
	s.Reset()
	if len(r.rest) != 0 {
		rest := r.rest
		r.rest = nil
		done, err := s.Feed(rest)
		if err != nil {
			return err
		} else if done {
			r.rest = s.Remaining()
			return nil
		}
	}
	for r.err == nil {
		nr, err := r.r.Read(r.buf)
		r.err = err
		if nr == 0 {
			continue
		}
		done, ferr := s.Feed(r.buf[:nr])
		if ferr != nil {
			return ferr
		} else if done {
			r.rest = s.Remaining()
			return nil
		}
	}
	if r.err != io.EOF {
		return r.err
	} else if !s.Begun() {
		return io.EOF
	}
	return s.Finish()
}
