package serialize

import (
	"fmt"
	"strings"

	gast "github.com/yuin/goldmark/ast"

	"github.com/goliatone/go-directive/ast"
	"github.com/goliatone/go-directive/internal/mdwriter"
	"github.com/goliatone/go-directive/internal/syntax"
)

const (
	ConstructTextLabel      mdwriter.Construct = "textDirectiveLabel"
	ConstructLeafLabel      mdwriter.Construct = "leafDirectiveLabel"
	ConstructContainerLabel mdwriter.Construct = "containerDirectiveLabel"
)

// Unsafe lists the patterns that keep constructed text from turning into
// directive markup.
var Unsafe = []mdwriter.UnsafePattern{
	{Char: '\r', InConstruct: []mdwriter.Construct{ConstructLeafLabel, ConstructContainerLabel}},
	{Char: '\n', InConstruct: []mdwriter.Construct{ConstructLeafLabel, ConstructContainerLabel}},
	{
		Char:        ':',
		Before:      mdwriter.IsNot(':'),
		After:       mdwriter.IsAlpha,
		InConstruct: []mdwriter.Construct{mdwriter.ConstructPhrasing},
	},
	{Char: ':', AtBreak: true, After: mdwriter.Is(':')},
}

// Extension registers directive handlers on a writer.
type Extension struct{}

// NewExtension returns the serialization extension.
func NewExtension() *Extension {
	return &Extension{}
}

// ExtendWriter installs the directive handlers and unsafe patterns.
func (e *Extension) ExtendWriter(w *mdwriter.Writer) {
	w.Register(ast.KindTextDirective, TextDirective)
	w.Register(ast.KindLeafDirective, LeafDirective)
	w.Register(ast.KindContainerDirective, ContainerDirective)
	w.Register(ast.KindDirectiveLabel, directiveLabel)
	w.AddUnsafe(Unsafe...)
}

func head(d ast.Directive) (string, error) {
	name := d.DirectiveName()
	if !ast.ValidName(name) {
		return "", fmt.Errorf("%w: %q", ast.ErrInvalidName, name)
	}
	return name, nil
}

func label(s *mdwriter.State, n gast.Node, construct mdwriter.Construct) (string, error) {
	if n == nil || n.ChildCount() == 0 {
		return "", nil
	}
	exit := s.Enter(construct)
	defer exit()
	content, err := s.Inline(n, '[')
	if err != nil {
		return "", err
	}
	return "[" + content + "]", nil
}

// TextDirective writes `:name[label]{attrs}`.
func TextDirective(s *mdwriter.State, n gast.Node) (string, error) {
	d := n.(*ast.TextDirective)
	name, err := head(d)
	if err != nil {
		return "", err
	}
	lbl, err := label(s, n, ConstructTextLabel)
	if err != nil {
		return "", err
	}
	attrs, err := Attributes(d.Attrs)
	if err != nil {
		return "", err
	}
	return ":" + name + lbl + attrs, nil
}

// LeafDirective writes `::name[label]{attrs}`.
func LeafDirective(s *mdwriter.State, n gast.Node) (string, error) {
	d := n.(*ast.LeafDirective)
	name, err := head(d)
	if err != nil {
		return "", err
	}
	lbl, err := label(s, n, ConstructLeafLabel)
	if err != nil {
		return "", err
	}
	attrs, err := Attributes(d.Attrs)
	if err != nil {
		return "", err
	}
	return "::" + name + lbl + attrs, nil
}

// ContainerDirective writes the opening fence, the block content and a
// closing fence longer than any colon run starting a content line.
func ContainerDirective(s *mdwriter.State, n gast.Node) (string, error) {
	d := n.(*ast.ContainerDirective)
	name, err := head(d)
	if err != nil {
		return "", err
	}
	var lbl string
	first := n.FirstChild()
	if l := d.Label(); l != nil {
		if lbl, err = label(s, l, ConstructContainerLabel); err != nil {
			return "", err
		}
		first = l.NextSibling()
	}
	attrs, err := Attributes(d.Attrs)
	if err != nil {
		return "", err
	}
	content, err := s.FlowFrom(first, "\n\n")
	if err != nil {
		return "", err
	}
	fence := strings.Repeat(":", FenceLength(content))
	open := fence + name + lbl + attrs
	if content == "" {
		return open + "\n" + fence, nil
	}
	return open + "\n" + content + "\n" + fence, nil
}

// FenceLength returns the colon count for a container holding content:
// at least three and longer than any colon run starting a line.
func FenceLength(content string) int {
	longest := 0
	for _, line := range strings.Split(content, "\n") {
		longest = max(longest, syntax.LineStartColonRun([]byte(line)))
	}
	return max(syntax.MinFence, longest+1)
}

func directiveLabel(s *mdwriter.State, n gast.Node) (string, error) {
	exit := s.Enter(ConstructContainerLabel)
	defer exit()
	return s.Block(n)
}
