package grammar

import (
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-directive/ast"
	"github.com/goliatone/go-directive/internal/syntax"
	"github.com/goliatone/go-directive/internal/tree"
)

type containerParser struct{}

// NewContainerParser returns a BlockParser for fenced container directives.
func NewContainerParser() parser.BlockParser {
	return &containerParser{}
}

func (p *containerParser) Trigger() []byte {
	return []byte{':'}
}

func (p *containerParser) Open(parent gast.Node, reader text.Reader, pc parser.Context) (gast.Node, parser.State) {
	b := tree.FromContext(pc)
	pos := pc.BlockOffset()
	if b == nil || pos < 0 {
		return nil, parser.NoChildren
	}
	line, segment := reader.PeekLine()
	base := segment.Start - segment.Padding
	tok, ok := syntax.ScanContainerOpen(line[pos:], base+pos)
	if !ok {
		return nil, parser.NoChildren
	}
	tok.Indent = pc.BlockIndent()
	node, ok := b.OpenContainer(tok)
	if !ok {
		return nil, parser.NoChildren
	}
	skipLine(reader, line, segment)
	return node, parser.HasChildren
}

func (p *containerParser) Continue(node gast.Node, reader text.Reader, pc parser.Context) parser.State {
	container := node.(*ast.ContainerDirective)
	line, segment := reader.PeekLine()
	if line == nil {
		return parser.Close
	}
	base := segment.Start - segment.Padding
	w, pos := util.IndentWidth(line, reader.LineOffset())
	if w <= container.Indent && w < 4 {
		tok, ok := syntax.ScanContainerClose(line[pos:], base+pos, container.Fence, 0)
		if ok {
			tok.Indent = w
			if b := tree.FromContext(pc); b != nil && b.CloseContainer(container, tok) {
				skipLine(reader, line, segment)
				return parser.Close
			}
		}
	}
	if container.Indent > 0 && !util.IsBlank(line) {
		ipos, padding := util.IndentPositionPadding(line, reader.LineOffset(), segment.Padding, container.Indent)
		if ipos < 0 {
			ipos = util.FirstNonSpacePosition(line)
			if ipos < 0 {
				ipos = 0
			}
			padding = 0
		}
		reader.AdvanceAndSetPadding(ipos, padding)
	}
	return parser.Continue | parser.HasChildren
}

func (p *containerParser) Close(node gast.Node, reader text.Reader, pc parser.Context) {
	if b := tree.FromContext(pc); b != nil {
		b.FinishContainer(node.(*ast.ContainerDirective))
	}
}

func (p *containerParser) CanInterruptParagraph() bool {
	return true
}

func (p *containerParser) CanAcceptIndentedLine() bool {
	return false
}

type leafParser struct{}

// NewLeafParser returns a BlockParser for single-line leaf directives.
func NewLeafParser() parser.BlockParser {
	return &leafParser{}
}

func (p *leafParser) Trigger() []byte {
	return []byte{':'}
}

func (p *leafParser) Open(parent gast.Node, reader text.Reader, pc parser.Context) (gast.Node, parser.State) {
	b := tree.FromContext(pc)
	pos := pc.BlockOffset()
	if b == nil || pos < 0 {
		return nil, parser.NoChildren
	}
	line, segment := reader.PeekLine()
	base := segment.Start - segment.Padding
	tok, ok := syntax.ScanLeaf(line[pos:], base+pos)
	if !ok {
		return nil, parser.NoChildren
	}
	tok.Indent = pc.BlockIndent()
	node, ok := b.Leaf(tok)
	if !ok {
		return nil, parser.NoChildren
	}
	skipLine(reader, line, segment)
	return node, parser.NoChildren
}

func (p *leafParser) Continue(node gast.Node, reader text.Reader, pc parser.Context) parser.State {
	return parser.Close
}

func (p *leafParser) Close(node gast.Node, reader text.Reader, pc parser.Context) {}

func (p *leafParser) CanInterruptParagraph() bool {
	return true
}

func (p *leafParser) CanAcceptIndentedLine() bool {
	return false
}

// skipLine advances the reader to the line ending of the current line.
func skipLine(reader text.Reader, line []byte, segment text.Segment) {
	newline := 0
	if n := len(line); n > 0 && line[n-1] == '\n' {
		newline = 1
	}
	reader.Advance(segment.Stop - segment.Start - newline + segment.Padding)
}
