// Package tree turns directive tokens into goldmark nodes. One Builder lives
// in each parse context; the grammar parsers report tokens to it and insert
// the nodes it returns.
package tree

import (
	"sort"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"

	"github.com/goliatone/go-directive/ast"
	"github.com/goliatone/go-directive/internal/syntax"
)

var builderKey = parser.NewContextKey()

// FromContext returns the builder installed in pc, or nil.
func FromContext(pc parser.Context) *Builder {
	if pc == nil {
		return nil
	}
	if b, ok := pc.Get(builderKey).(*Builder); ok {
		return b
	}
	return nil
}

// Install stores a fresh builder for source in pc and returns it.
func Install(pc parser.Context, source []byte) *Builder {
	b := NewBuilder(source)
	pc.Set(builderKey, b)
	return b
}

// frame is an open container in the arena.
type frame struct {
	node   *ast.ContainerDirective
	open   syntax.Token
	closed bool
}

// Builder constructs directive nodes for one document. Open containers are
// tracked as indices into an arena of frames; the stack never holds nodes
// directly.
type Builder struct {
	source []byte
	index  *syntax.LineIndex
	arena  []frame
	stack  []int
	tokens []syntax.Token
}

// NewBuilder returns a builder for source.
func NewBuilder(source []byte) *Builder {
	return &Builder{
		source: source,
		index:  syntax.NewLineIndex(source),
	}
}

// Source returns the document source.
func (b *Builder) Source() []byte {
	return b.source
}

// Index returns the line index of the document source.
func (b *Builder) Index() *syntax.LineIndex {
	return b.index
}

// Depth returns the number of open containers.
func (b *Builder) Depth() int {
	return len(b.stack)
}

// OpenContainer creates a container for tok and pushes it. A non-empty label
// becomes a DirectiveLabel first child whose lines hold the label source.
func (b *Builder) OpenContainer(tok syntax.Token) (*ast.ContainerDirective, bool) {
	node, err := ast.NewContainerDirective(tok.Name, tok.Attrs())
	if err != nil {
		return nil, false
	}
	node.Fence = tok.Fence
	node.Indent = tok.Indent
	node.Closed = false
	node.Span = b.index.Span(tok.Start, tok.Stop)
	if tok.HasLabel && tok.Label.Len() > 0 {
		label := ast.NewDirectiveLabel()
		label.Lines().Append(tok.Label)
		node.AppendChild(node, label)
	}
	b.arena = append(b.arena, frame{node: node, open: tok})
	b.stack = append(b.stack, len(b.arena)-1)
	b.tokens = append(b.tokens, tok)
	return node, true
}

// Top returns the innermost open container.
func (b *Builder) Top() (*ast.ContainerDirective, bool) {
	if len(b.stack) == 0 {
		return nil, false
	}
	return b.arena[b.stack[len(b.stack)-1]].node, true
}

func (b *Builder) lookup(node *ast.ContainerDirective) int {
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.arena[b.stack[i]].node == node {
			return i
		}
	}
	return -1
}

// CloseContainer records a closing fence for node. It is accepted only while
// node is open and not yet closed, so a close token always has a matching
// open token in the log.
func (b *Builder) CloseContainer(node *ast.ContainerDirective, tok syntax.Token) bool {
	at := b.lookup(node)
	if at < 0 {
		return false
	}
	f := &b.arena[b.stack[at]]
	if f.closed || tok.Fence < f.open.Fence {
		return false
	}
	f.closed = true
	node.Closed = true
	node.Span.End = b.index.Position(tok.Stop)
	b.tokens = append(b.tokens, tok)
	return true
}

// FinishContainer pops node and every container opened after it. Containers
// without a recorded close are auto-closed at the end of their content.
func (b *Builder) FinishContainer(node *ast.ContainerDirective) {
	at := b.lookup(node)
	if at < 0 {
		return
	}
	for i := len(b.stack) - 1; i >= at; i-- {
		f := &b.arena[b.stack[i]]
		if !f.closed {
			f.node.Closed = false
			f.node.Span.End = b.index.Position(b.contentEnd(f.node, f.open.Stop))
		}
	}
	b.stack = b.stack[:at]
}

// Leaf creates a leaf directive for tok.
func (b *Builder) Leaf(tok syntax.Token) (*ast.LeafDirective, bool) {
	node, err := ast.NewLeafDirective(tok.Name, tok.Attrs())
	if err != nil {
		return nil, false
	}
	node.Span = b.index.Span(tok.Start, tok.Stop)
	if tok.HasLabel && tok.Label.Len() > 0 {
		node.Lines().Append(tok.Label)
	}
	b.tokens = append(b.tokens, tok)
	return node, true
}

// Text creates a text directive for tok. Label children are moved in by the
// inline grammar.
func (b *Builder) Text(tok syntax.Token) (*ast.TextDirective, bool) {
	node, err := ast.NewTextDirective(tok.Name, tok.Attrs())
	if err != nil {
		return nil, false
	}
	node.Span = b.index.Span(tok.Start, tok.Stop)
	b.tokens = append(b.tokens, tok)
	return node, true
}

// Tokens returns the recorded tokens in document order.
func (b *Builder) Tokens() []syntax.Token {
	out := make([]syntax.Token, len(b.tokens))
	copy(out, b.tokens)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Finish auto-closes every container still open.
func (b *Builder) Finish() {
	if len(b.stack) == 0 {
		return
	}
	b.FinishContainer(b.arena[b.stack[0]].node)
}

// contentEnd returns the offset where the content of n ends, excluding the
// final line ending. fallback is used when n holds nothing.
func (b *Builder) contentEnd(n gast.Node, fallback int) int {
	end := fallback
	for c := n.LastChild(); c != nil; c = c.LastChild() {
		if d, ok := ast.AsDirective(c); ok && !d.DirectiveSpan().IsZero() {
			return max(end, d.DirectiveSpan().End.Offset)
		}
		if c.Type() == gast.TypeBlock {
			if lines := c.Lines(); lines.Len() > 0 {
				return max(end, b.trimLineEnd(lines.At(lines.Len()-1).Stop))
			}
		}
	}
	return end
}

func (b *Builder) trimLineEnd(stop int) int {
	for stop > 0 && stop <= len(b.source) && (b.source[stop-1] == '\n' || b.source[stop-1] == '\r') {
		stop--
	}
	return stop
}
