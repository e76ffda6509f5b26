package ast

import "fmt"

// Position locates a byte in the source. Line and Column are 1-based;
// Column counts grapheme clusters from the start of the line.
type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// String renders the position as line:column.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is the half-open source range [Start, End) a node was built from.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// IsZero reports whether the span was never set, as for nodes constructed
// by a tree transform instead of the parser.
func (s Span) IsZero() bool {
	return s == Span{}
}

// String renders the span as start-end.
func (s Span) String() string {
	if s.IsZero() {
		return "-"
	}
	return s.Start.String() + "-" + s.End.String()
}
