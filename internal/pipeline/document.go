package pipeline

import (
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"

	"github.com/goliatone/go-directive/ast"
	"github.com/goliatone/go-directive/internal/syntax"
	"github.com/goliatone/go-directive/internal/tree"
)

// Document is a parsed tree with the source its segments point into.
type Document struct {
	Root   *gast.Document
	Source []byte

	contexts []parser.Context
}

// Tokens returns the directive tokens recognized while parsing, in document
// order per parse call.
func (d *Document) Tokens() []syntax.Token {
	var out []syntax.Token
	for _, pc := range d.contexts {
		if b := tree.FromContext(pc); b != nil {
			out = append(out, b.Tokens()...)
		}
	}
	return out
}

// Index returns a line index over the document source.
func (d *Document) Index() *syntax.LineIndex {
	return syntax.NewLineIndex(d.Source)
}

// Directives returns every directive node in document order.
func (d *Document) Directives() []ast.Directive {
	var out []ast.Directive
	if d.Root == nil {
		return out
	}
	_ = gast.Walk(d.Root, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		if dir, ok := ast.AsDirective(n); ok {
			out = append(out, dir)
		}
		return gast.WalkContinue, nil
	})
	return out
}
