// Package syntax recognizes directive markup in raw source lines. Scanners
// are pure: they inspect a byte slice, report whether a construct starts at
// its beginning, and return a Token with absolute offsets. They never move a
// reader; callers advance only after a successful match so competing
// grammars can try the same position.
package syntax

import (
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-directive/ast"
)

// Kind classifies tokens.
type Kind uint8

const (
	KindContainerOpen Kind = iota + 1
	KindContainerClose
	KindLeaf
	KindText
)

// String renders the kind for token dumps.
func (k Kind) String() string {
	switch k {
	case KindContainerOpen:
		return "containerOpen"
	case KindContainerClose:
		return "containerClose"
	case KindLeaf:
		return "leaf"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Attribute is one raw attribute item in source order. Shorthands are
// already expanded: `#x` yields {id x} and `.y` yields {class y}.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Token is a recognized directive construct.
type Token struct {
	Kind Kind
	Name string
	// Fence is the colon count of container fences.
	Fence int
	// Indent is the indentation width of block constructs.
	Indent int
	// Label is the absolute segment between the label brackets.
	Label    text.Segment
	HasLabel bool
	// Attributes lists items in source order, duplicates included.
	Attributes []Attribute
	// Start and Stop delimit the construct, excluding line endings.
	Start int
	Stop  int
}

// Len returns the number of source bytes covered by the token.
func (t Token) Len() int {
	return t.Stop - t.Start
}

// Attrs folds the raw attribute items into a mapping: later keys overwrite
// earlier ones, class values accumulate.
func (t Token) Attrs() ast.Attributes {
	return FoldAttributes(t.Attributes)
}

// FoldAttributes folds raw attribute items into a mapping.
func FoldAttributes(items []Attribute) ast.Attributes {
	var attrs ast.Attributes
	for _, item := range items {
		if item.Key == "class" {
			if item.Value != "" {
				attrs.AppendClass(item.Value)
			} else if !attrs.Has("class") {
				attrs.Set("class", "")
			}
			continue
		}
		attrs.Set(item.Key, item.Value)
	}
	return attrs
}
