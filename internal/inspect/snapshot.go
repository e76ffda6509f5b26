// Package inspect converts parsed documents into plain values for JSON
// output and structural comparison.
package inspect

import (
	"strings"
	"unicode"
	"unicode/utf8"

	gast "github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/goliatone/go-directive/ast"
	"github.com/goliatone/go-directive/internal/pipeline"
	"github.com/goliatone/go-directive/internal/syntax"
)

// Node is a source-independent view of a tree node. Adjacent text nodes
// are merged, so two trees that differ only in how text was split compare
// equal.
type Node struct {
	Type       string            `json:"type"`
	Name       string            `json:"name,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Value      string            `json:"value,omitempty"`
	Depth      int               `json:"depth,omitempty"`
	URL        string            `json:"url,omitempty"`
	Position   *ast.Span         `json:"position,omitempty"`
	Children   []*Node           `json:"children,omitempty"`
}

// Option adjusts Tree.
type Option func(*options)

type options struct {
	positions bool
}

// WithPositions includes directive spans in the snapshot.
func WithPositions() Option {
	return func(o *options) { o.positions = true }
}

// Tree returns the snapshot of doc.
func Tree(doc *pipeline.Document, opts ...Option) *Node {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if doc == nil || doc.Root == nil {
		return &Node{Type: "root"}
	}
	return convert(doc.Root, doc.Source, o)
}

func convert(n gast.Node, source []byte, o options) *Node {
	out := &Node{Type: typeName(n)}

	switch v := n.(type) {
	case *gast.Document:
		out.Type = "root"
	case ast.Directive:
		out.Name = v.DirectiveName()
		if attrs := v.DirectiveAttributes(); attrs.Len() > 0 {
			out.Attributes = attrs.Map()
		}
		if span := v.DirectiveSpan(); o.positions && !span.IsZero() {
			out.Position = &span
		}
	case *gast.Heading:
		out.Depth = v.Level
	case *gast.Emphasis:
		out.Depth = v.Level
	case *gast.Link:
		out.URL = string(v.Destination)
	case *gast.Image:
		out.URL = string(v.Destination)
	case *gast.AutoLink:
		out.URL = string(v.URL(source))
	case *gast.FencedCodeBlock:
		if v.Info != nil {
			out.Name = string(v.Language(source))
		}
		out.Value = lines(v, source)
	case *gast.CodeBlock, *gast.HTMLBlock:
		out.Value = lines(n, source)
	case *gast.CodeSpan:
		out.Value = string(n.Text(source))
		return out
	case *gast.RawHTML:
		var b strings.Builder
		for i := 0; i < v.Segments.Len(); i++ {
			seg := v.Segments.At(i)
			b.Write(seg.Value(source))
		}
		out.Value = b.String()
	case *east.TaskCheckBox:
		if v.IsChecked {
			out.Value = "x"
		}
	}

	var pending *Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if emptyBlock(c) {
			continue
		}
		value, ok := textValue(c, source)
		if !ok {
			pending = nil
			out.Children = append(out.Children, convert(c, source, o))
			continue
		}
		if pending == nil {
			pending = &Node{Type: "text"}
			out.Children = append(out.Children, pending)
		}
		pending.Value += value
	}
	return out
}

// emptyBlock reports whether n is a paragraph or text block without
// content, as goldmark leaves behind for link reference definitions.
func emptyBlock(n gast.Node) bool {
	switch n.Kind() {
	case gast.KindParagraph, gast.KindTextBlock:
		return !n.HasChildren() && n.Lines().Len() == 0
	}
	return false
}

func textValue(n gast.Node, source []byte) (string, bool) {
	switch v := n.(type) {
	case *gast.Text:
		value := string(v.Segment.Value(source))
		if v.SoftLineBreak() || v.HardLineBreak() {
			value += "\n"
		}
		return value, true
	case *gast.String:
		return string(v.Value), true
	}
	return "", false
}

func lines(n gast.Node, source []byte) string {
	var b strings.Builder
	l := n.Lines()
	for i := 0; i < l.Len(); i++ {
		seg := l.At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}

// typeName lowers the first letter of the goldmark kind name.
func typeName(n gast.Node) string {
	if d, ok := n.(ast.Directive); ok {
		return d.DirectiveType().String()
	}
	name := n.Kind().String()
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:]
}

// Token is the JSON form of a recognized directive token.
type Token struct {
	Kind       string             `json:"kind"`
	Name       string             `json:"name,omitempty"`
	Label      *string            `json:"label,omitempty"`
	Attributes []syntax.Attribute `json:"attributes,omitempty"`
	Fence      int                `json:"fence,omitempty"`
	Start      ast.Position       `json:"start"`
	End        ast.Position       `json:"end"`
}

// Tokens returns the token stream of doc with line and column positions.
func Tokens(doc *pipeline.Document) []Token {
	if doc == nil {
		return nil
	}
	index := doc.Index()
	raw := doc.Tokens()
	out := make([]Token, 0, len(raw))
	for _, tok := range raw {
		item := Token{
			Kind:       tok.Kind.String(),
			Name:       tok.Name,
			Attributes: tok.Attributes,
			Fence:      tok.Fence,
			Start:      index.Position(tok.Start),
			End:        index.Position(tok.Stop),
		}
		if tok.HasLabel {
			label := string(tok.Label.Value(doc.Source))
			item.Label = &label
		}
		out = append(out, item)
	}
	return out
}
