package source

import (
	"fmt"
)

// Span is a source range reported by the parser. Positions are 1-based;
// a zero Line means the position is unknown.
type Span struct {
	File  FileID
	Start LineCol
	End   LineCol
}

// At builds a single-position span.
func At(file FileID, line, col uint32) Span {
	pos := LineCol{Line: line, Col: col}
	return Span{File: file, Start: pos, End: pos}
}

func (s Span) Empty() bool {
	return s.Start.Line == 0
}

// Before orders spans by file, then by start position.
func (s Span) Before(other Span) bool {
	if s.File != other.File {
		return s.File < other.File
	}
	if s.Start.Line != other.Start.Line {
		return s.Start.Line < other.Start.Line
	}
	return s.Start.Col < other.Start.Col
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d:%d", s.File, s.Start.Line, s.Start.Col)
}

// Cover returns the smallest span containing both spans.
func (s Span) Cover(other Span) Span {
	if s.File != other.File || other.Empty() {
		return s
	}
	if s.Empty() {
		return other
	}
	if other.Start.Line < s.Start.Line || (other.Start.Line == s.Start.Line && other.Start.Col < s.Start.Col) {
		s.Start = other.Start
	}
	if other.End.Line > s.End.Line || (other.End.Line == s.End.Line && other.End.Col > s.End.Col) {
		s.End = other.End
	}
	return s
}
