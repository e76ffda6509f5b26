package tree

import (
	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-directive/ast"
)

// Extension installs the per-document builder and the finalize transformer.
type Extension struct{}

// NewExtension returns the tree-construction extension.
func NewExtension() *Extension {
	return &Extension{}
}

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&finalizer{}, 0),
	))
}

// Prepare installs a fresh builder for source in pc. It must run before
// each parse.
func (e *Extension) Prepare(pc parser.Context, source []byte) {
	Install(pc, source)
}

type finalizer struct{}

// Transform closes leftover containers and restores label whitespace the
// inline parser trims from the last text of a line.
func (f *finalizer) Transform(doc *gast.Document, reader text.Reader, pc parser.Context) {
	b := FromContext(pc)
	if b == nil {
		return
	}
	b.Finish()
	source := reader.Source()
	_ = gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindLeafDirective, ast.KindDirectiveLabel:
			restoreTrailingSpace(n, source)
		}
		return gast.WalkContinue, nil
	})
}

func restoreTrailingSpace(n gast.Node, source []byte) {
	lines := n.Lines()
	if lines.Len() == 0 {
		return
	}
	stop := lines.At(lines.Len() - 1).Stop
	last, ok := n.LastChild().(*gast.Text)
	if !ok || last.Segment.Stop >= stop {
		return
	}
	if !util.IsBlank(source[last.Segment.Stop:stop]) {
		return
	}
	last.Segment = last.Segment.WithStop(stop)
}
