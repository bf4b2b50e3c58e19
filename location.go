// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import "fmt"

// A Span describes a contiguous span of the current input chunk.
// A Pos of -1 means no token has been started.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive); -1 while open
}

// IsOpen reports whether sp marks a token that has started but not ended.
func (sp Span) IsOpen() bool { return sp.Pos >= 0 && sp.End < 0 }

// IsComplete reports whether sp marks a token that has started and ended.
func (sp Span) IsComplete() bool { return sp.Pos >= 0 && sp.End >= sp.Pos }

var noSpan = Span{Pos: -1, End: -1}

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Column) }
