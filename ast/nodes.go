// Package ast defines the directive nodes inserted into a goldmark document
// tree. Nodes carry their name, ordered attributes, and source span; labels
// are ordinary inline children so the host can render or serialize them.
package ast

import (
	"fmt"
	"strconv"

	gast "github.com/yuin/goldmark/ast"
)

// Type distinguishes the three directive forms.
type Type uint8

const (
	TypeText Type = iota + 1
	TypeLeaf
	TypeContainer
)

// String returns the node type name used in tree dumps and JSON output.
func (t Type) String() string {
	switch t {
	case TypeText:
		return "textDirective"
	case TypeLeaf:
		return "leafDirective"
	case TypeContainer:
		return "containerDirective"
	default:
		return "directive"
	}
}

var (
	// KindTextDirective is the NodeKind of inline directives.
	KindTextDirective = gast.NewNodeKind("TextDirective")
	// KindLeafDirective is the NodeKind of single-line block directives.
	KindLeafDirective = gast.NewNodeKind("LeafDirective")
	// KindContainerDirective is the NodeKind of fenced block directives.
	KindContainerDirective = gast.NewNodeKind("ContainerDirective")
	// KindDirectiveLabel is the NodeKind of a container's label block.
	KindDirectiveLabel = gast.NewNodeKind("DirectiveLabel")
)

// Directive is implemented by the three directive node kinds.
type Directive interface {
	gast.Node
	DirectiveType() Type
	DirectiveName() string
	DirectiveAttributes() *Attributes
	DirectiveSpan() Span
}

// Fields holds the state shared by every directive kind. The attribute
// mapping is called Attrs since goldmark nodes already have an Attributes
// method for renderer attributes.
type Fields struct {
	Name  string
	Attrs Attributes
	Span  Span
}

// DirectiveName returns the directive name.
func (f *Fields) DirectiveName() string { return f.Name }

// DirectiveAttributes returns a pointer to the attribute mapping so tree
// transforms can edit it in place.
func (f *Fields) DirectiveAttributes() *Attributes { return &f.Attrs }

// DirectiveSpan returns the source span recorded by the tree builder.
func (f *Fields) DirectiveSpan() Span { return f.Span }

func (f *Fields) dumpFields(extra map[string]string) map[string]string {
	kv := map[string]string{
		"Name":       f.Name,
		"Attributes": f.Attrs.String(),
		"Span":       f.Span.String(),
	}
	for k, v := range extra {
		kv[k] = v
	}
	return kv
}

func newFields(name string, attrs Attributes) (Fields, error) {
	if !ValidName(name) {
		return Fields{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return Fields{Name: name, Attrs: attrs.Clone()}, nil
}

// TextDirective is an inline directive: `:name[label]{attrs}`. Its children
// are the label's inline nodes.
type TextDirective struct {
	gast.BaseInline
	Fields
}

// NewTextDirective constructs a text directive after validating name.
func NewTextDirective(name string, attrs Attributes) (*TextDirective, error) {
	fields, err := newFields(name, attrs)
	if err != nil {
		return nil, err
	}
	return &TextDirective{Fields: fields}, nil
}

// Kind implements ast.Node.
func (n *TextDirective) Kind() gast.NodeKind { return KindTextDirective }

// DirectiveType implements Directive.
func (n *TextDirective) DirectiveType() Type { return TypeText }

// Dump implements ast.Node.
func (n *TextDirective) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, n.dumpFields(nil), nil)
}

// LeafDirective is a single-line block directive: `::name[label]{attrs}`.
// Its children are the label's inline nodes; it never holds blocks.
type LeafDirective struct {
	gast.BaseBlock
	Fields
}

// NewLeafDirective constructs a leaf directive after validating name.
func NewLeafDirective(name string, attrs Attributes) (*LeafDirective, error) {
	fields, err := newFields(name, attrs)
	if err != nil {
		return nil, err
	}
	return &LeafDirective{Fields: fields}, nil
}

// Kind implements ast.Node.
func (n *LeafDirective) Kind() gast.NodeKind { return KindLeafDirective }

// DirectiveType implements Directive.
func (n *LeafDirective) DirectiveType() Type { return TypeLeaf }

// Dump implements ast.Node.
func (n *LeafDirective) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, n.dumpFields(nil), nil)
}

// ContainerDirective is a fenced block directive holding block children
// between an opening `:::name` line and a closing colon fence.
type ContainerDirective struct {
	gast.BaseBlock
	Fields

	// Fence is the number of colons of the opening fence.
	Fence int
	// Indent is the indentation of the opening fence in columns.
	Indent int
	// Closed is false when the container ran to the end of its parent or
	// of the document without a closing fence.
	Closed bool
}

// NewContainerDirective constructs a container directive after validating name.
func NewContainerDirective(name string, attrs Attributes) (*ContainerDirective, error) {
	fields, err := newFields(name, attrs)
	if err != nil {
		return nil, err
	}
	return &ContainerDirective{Fields: fields, Fence: 3, Closed: true}, nil
}

// Kind implements ast.Node.
func (n *ContainerDirective) Kind() gast.NodeKind { return KindContainerDirective }

// DirectiveType implements Directive.
func (n *ContainerDirective) DirectiveType() Type { return TypeContainer }

// Label returns the container's label block, or nil when it has none.
func (n *ContainerDirective) Label() *DirectiveLabel {
	if label, ok := n.FirstChild().(*DirectiveLabel); ok {
		return label
	}
	return nil
}

// SetLabel replaces the label block. Passing nil removes it.
func (n *ContainerDirective) SetLabel(label *DirectiveLabel) {
	if current := n.Label(); current != nil {
		n.RemoveChild(n, current)
	}
	if label == nil {
		return
	}
	if first := n.FirstChild(); first != nil {
		n.InsertBefore(n, first, label)
		return
	}
	n.AppendChild(n, label)
}

// Dump implements ast.Node.
func (n *ContainerDirective) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, n.dumpFields(map[string]string{
		"Fence":  strconv.Itoa(n.Fence),
		"Closed": strconv.FormatBool(n.Closed),
	}), nil)
}

// DirectiveLabel holds the inline label of a container directive. It is
// always the first child of its container.
type DirectiveLabel struct {
	gast.BaseBlock
}

// NewDirectiveLabel returns an empty label block.
func NewDirectiveLabel() *DirectiveLabel {
	return &DirectiveLabel{}
}

// Kind implements ast.Node.
func (n *DirectiveLabel) Kind() gast.NodeKind { return KindDirectiveLabel }

// Dump implements ast.Node.
func (n *DirectiveLabel) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, nil, nil)
}

// AsDirective returns n as a Directive when it is one of the three kinds.
func AsDirective(n gast.Node) (Directive, bool) {
	d, ok := n.(Directive)
	return d, ok
}

var (
	_ Directive = (*TextDirective)(nil)
	_ Directive = (*LeafDirective)(nil)
	_ Directive = (*ContainerDirective)(nil)
)
