package mdwriter

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/util"
)

// UnsafePattern marks a character that must be escaped when it appears in
// constructed text under the given conditions.
type UnsafePattern struct {
	Char byte
	// AtBreak limits the pattern to the first byte of a line.
	AtBreak bool
	// Before and After test the neighbouring bytes. Zero means none.
	Before func(prev byte) bool
	After  func(next byte) bool
	// InConstruct limits the pattern to these constructs; empty means any.
	InConstruct    []Construct
	NotInConstruct []Construct
}

func (p UnsafePattern) applies(s *State) bool {
	if len(p.InConstruct) > 0 {
		found := false
		for _, c := range p.InConstruct {
			if s.In(c) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, c := range p.NotInConstruct {
		if s.In(c) {
			return false
		}
	}
	return true
}

// Safe escapes value for the current position. Punctuation is escaped with
// a backslash, anything else with a character reference.
func (s *State) Safe(value string) string {
	if value == "" {
		return value
	}
	var active []UnsafePattern
	for _, p := range s.unsafe {
		if p.applies(s) {
			active = append(active, p)
		}
	}
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		prev := s.before
		atBreak := s.atBreak
		if i > 0 {
			prev = value[i-1]
			atBreak = prev == '\n'
		}
		var next byte
		if i+1 < len(value) {
			next = value[i+1]
		}
		if matchAny(active, c, prev, next, atBreak) {
			b.WriteString(escapeByte(c))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func matchAny(patterns []UnsafePattern, c, prev, next byte, atBreak bool) bool {
	for _, p := range patterns {
		if p.Char != c {
			continue
		}
		if p.AtBreak && !atBreak {
			continue
		}
		if p.Before != nil && !p.Before(prev) {
			continue
		}
		if p.After != nil && !p.After(next) {
			continue
		}
		return true
	}
	return false
}

func escapeByte(c byte) string {
	if util.IsPunct(c) {
		return `\` + string(c)
	}
	return fmt.Sprintf("&#x%X;", c)
}

// IsAlpha reports whether c is an ASCII letter.
func IsAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// IsDigit reports whether c is an ASCII digit.
func IsDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Is returns a predicate matching exactly c.
func Is(c byte) func(byte) bool {
	return func(v byte) bool { return v == c }
}

// IsNot returns a predicate matching anything but c.
func IsNot(c byte) func(byte) bool {
	return func(v byte) bool { return v != c }
}

func isSpaceOrEnd(c byte) bool {
	return c == 0 || c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

var commonMarkUnsafe = []UnsafePattern{
	{Char: '\\'},
	{Char: '*'},
	{Char: '_'},
	{Char: '`'},
	{Char: '['},
	{Char: ']'},
	{Char: '<'},
	{Char: '&', After: func(c byte) bool { return IsAlpha(c) || IsDigit(c) || c == '#' }},
	{Char: '!', After: Is('[')},
	{Char: '#', AtBreak: true},
	{Char: '>', AtBreak: true},
	{Char: '-', AtBreak: true, After: func(c byte) bool { return isSpaceOrEnd(c) || c == '-' }},
	{Char: '+', AtBreak: true, After: isSpaceOrEnd},
	{Char: '=', AtBreak: true},
	{Char: '~', AtBreak: true},
	{Char: '~', InConstruct: []Construct{ConstructPhrasing}},
	{Char: '.', Before: IsDigit, After: isSpaceOrEnd},
	{Char: ')', Before: IsDigit, After: isSpaceOrEnd},
	{Char: '|', InConstruct: []Construct{ConstructTableCell}},
	{Char: '\n', InConstruct: []Construct{ConstructHeading, ConstructTableCell}},
	{Char: '\r', InConstruct: []Construct{ConstructHeading, ConstructTableCell}},
}
