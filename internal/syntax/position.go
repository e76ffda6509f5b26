package syntax

import (
	"sort"

	"github.com/rivo/uniseg"

	"github.com/goliatone/go-directive/ast"
)

// LineIndex maps byte offsets of one source to line/column positions.
type LineIndex struct {
	source []byte
	starts []int
}

// NewLineIndex records the line starts of source.
func NewLineIndex(source []byte) *LineIndex {
	starts := []int{0}
	for i, c := range source {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{source: source, starts: starts}
}

// Position resolves offset. Offsets outside the source are clamped.
func (x *LineIndex) Position(offset int) ast.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(x.source) {
		offset = len(x.source)
	}
	line := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset }) - 1
	column := uniseg.GraphemeClusterCount(string(x.source[x.starts[line]:offset])) + 1
	return ast.Position{Offset: offset, Line: line + 1, Column: column}
}

// Span resolves the half-open range [start, stop).
func (x *LineIndex) Span(start, stop int) ast.Span {
	return ast.Span{Start: x.Position(start), End: x.Position(stop)}
}

// Lines returns the number of lines in the source.
func (x *LineIndex) Lines() int {
	return len(x.starts)
}
