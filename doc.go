// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jchunk implements a resumable JSON parser that consumes its input
// in chunks of any size.
//
// # Sessions
//
// A Session holds the state of one parse. The caller hands it successive
// chunks of input with Feed, which reports true once a complete value has
// been read. If a chunk ends in the middle of a token or a structure, the
// parse suspends and resumes exactly where it stopped when the next chunk
// arrives; the result does not depend on where the chunk boundaries fall:
//
//	s := jchunk.Generic()
//	for chunk := range chunks {
//	   done, err := s.Feed(chunk)
//	   if err != nil {
//	      log.Fatalf("Parse failed: %v", err)
//	   } else if done {
//	      break
//	   }
//	}
//	if err := s.Finish(); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//	v := s.Result()
//
// Finish tells the session that no more input will arrive. It completes a
// value such as a top-level number that can only end at the end of input,
// and reports an error if the value is incomplete. Errors have concrete
// type *SyntaxError and wrap one of the Err* kinds, so they can be
// classified with errors.Is. Once a session fails, it stays failed until
// Reset.
//
// For input that is already in memory, Parse and ParseString feed a single
// chunk and return the typed result. For an io.Reader, a Reader feeds a
// session in fixed-size chunks.
//
// The engine never blocks, and its use of the host stack is bounded: after a
// fixed number of directly nested containers, a session yields to its own
// driver loop and resumes from the continuation stack. The state of the parse
// lives entirely in the session's continuation and target stacks, so nesting
// depth is limited only by memory.
//
// # Specializations
//
// The same grammar engine builds different results depending on how it is
// specialized:
//
//	Session     | Result
//	----------- | ------------------------------------------------------
//	Generic     | map[string]any, []any, string, int64, float64, bool, nil
//	Skip        | nil (the input is checked and discarded)
//	Schema[T]   | *T, with each known member stored by its Field
//	Shape[V]    | V, for any shape such as ListOf(ObjectOf(schema))
//
// A Schema is built once from a list of fields and may be shared by any
// number of sessions:
//
//	var personSchema = jchunk.MustSchema(jchunk.NewSchema(jchunk.KeyTrie,
//	   jchunk.FieldOf("name", jchunk.Strings, func(p *Person, v string) { p.Name = v }),
//	   jchunk.FieldOf("age", jchunk.Ints, func(p *Person, v int) { p.Age = v }),
//	))
//
// Members whose names are not fields of the schema are checked and
// discarded without building anything. Custom specializations implement the
// Hooks interface and are driven by a Walker.
package jchunk
