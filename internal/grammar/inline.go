package grammar

import (
	"fmt"
	"strings"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-directive/internal/syntax"
	"github.com/goliatone/go-directive/internal/tree"
)

var labelOpenersKey = parser.NewContextKey()

// labelOpener stands in for `:name[` until the matching `]` is reached.
type labelOpener struct {
	gast.BaseInline

	Segment text.Segment
	token   syntax.Token
	bottom  *parser.Delimiter
}

var kindLabelOpener = gast.NewNodeKind("DirectiveLabelOpener")

func (s *labelOpener) Kind() gast.NodeKind {
	return kindLabelOpener
}

func (s *labelOpener) Dump(source []byte, level int) {
	fmt.Printf("%sDirectiveLabelOpener: %q\n", strings.Repeat("    ", level), s.Segment.Value(source))
}

type openers struct {
	stack []*labelOpener
}

func openersFrom(pc parser.Context) *openers {
	v, _ := pc.ComputeIfAbsent(labelOpenersKey, func() any { return &openers{} }).(*openers)
	return v
}

type textParser struct {
	boundary Boundary
}

// NewTextParser returns an InlineParser for text directives.
func NewTextParser(boundary Boundary) parser.InlineParser {
	return &textParser{boundary: boundary}
}

func (p *textParser) Trigger() []byte {
	return []byte{':'}
}

func (p *textParser) Parse(parent gast.Node, block text.Reader, pc parser.Context) gast.Node {
	b := tree.FromContext(pc)
	if b == nil || !p.allowedAfter(block.PrecendingCharacter()) {
		return nil
	}
	line, segment := block.PeekLine()
	tok, ok := syntax.ScanText(line, segment.Start)
	if !ok {
		return nil
	}
	if !tok.HasLabel {
		node, ok := b.Text(tok)
		if !ok {
			return nil
		}
		block.Advance(tok.Len())
		return node
	}
	opener := &labelOpener{
		Segment: text.NewSegment(tok.Start, tok.Label.Start),
		token:   tok,
		bottom:  pc.LastDelimiter(),
	}
	list := openersFrom(pc)
	list.stack = append(list.stack, opener)
	block.Advance(tok.Label.Start - tok.Start)
	return opener
}

func (p *textParser) allowedAfter(prev rune) bool {
	if prev == ':' {
		return false
	}
	if p.boundary == BoundaryLoose {
		return true
	}
	isAlnum := (prev >= 'a' && prev <= 'z') || (prev >= 'A' && prev <= 'Z') || (prev >= '0' && prev <= '9')
	return !isAlnum
}

// labelCloser completes a text directive at the `]` recorded by its opener.
// It runs before the link parser so that `]` is not taken as a link end.
type labelCloser struct{}

func (p *labelCloser) Trigger() []byte {
	return []byte{']'}
}

func (p *labelCloser) Parse(parent gast.Node, block text.Reader, pc parser.Context) gast.Node {
	list, _ := pc.Get(labelOpenersKey).(*openers)
	if list == nil || len(list.stack) == 0 {
		return nil
	}
	_, segment := block.PeekLine()
	at := -1
	for i := len(list.stack) - 1; i >= 0; i-- {
		if list.stack[i].token.Label.Stop == segment.Start {
			at = i
			break
		}
	}
	if at < 0 {
		return nil
	}
	opener := list.stack[at]
	if opener.Parent() != parent {
		return nil
	}
	b := tree.FromContext(pc)
	if b == nil {
		return nil
	}
	node, ok := b.Text(opener.token)
	if !ok {
		return nil
	}
	list.stack = append(list.stack[:at], list.stack[at+1:]...)

	var bottom gast.Node
	if opener.bottom != nil {
		bottom = opener.bottom
	}
	parser.ProcessDelimiters(bottom, pc)
	for c := opener.NextSibling(); c != nil; {
		next := c.NextSibling()
		parent.RemoveChild(parent, c)
		node.AppendChild(node, c)
		c = next
	}
	parent.RemoveChild(parent, opener)
	block.Advance(opener.token.Stop - segment.Start)
	return node
}

// CloseBlock restores openers whose label never closed as literal text.
func (p *labelCloser) CloseBlock(parent gast.Node, block text.Reader, pc parser.Context) {
	list, _ := pc.Get(labelOpenersKey).(*openers)
	if list == nil {
		return
	}
	for _, opener := range list.stack {
		if owner := opener.Parent(); owner != nil {
			gast.MergeOrReplaceTextSegment(owner, opener, opener.Segment)
		}
	}
	pc.Set(labelOpenersKey, nil)
}
