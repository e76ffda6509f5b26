// Package htmlrender renders directive nodes as neutral HTML elements that
// carry the directive name in a data-directive attribute. Individual names
// can be rendered by custom handlers.
package htmlrender

import (
	"bytes"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-directive/ast"
	"github.com/goliatone/go-directive/internal/syntax"
)

// HandlerFunc renders one directive. It is called when entering and when
// leaving the node, like a goldmark NodeRendererFunc.
type HandlerFunc func(w util.BufWriter, source []byte, d ast.Directive, entering bool) (gast.WalkStatus, error)

// Option configures the renderer.
type Option func(*Renderer)

// WithHandler renders directives called name with fn.
func WithHandler(name string, fn HandlerFunc) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.handlers[name] = fn
		}
	}
}

// WithSlugIDs gives labelled containers without an id an id derived from
// their label text.
func WithSlugIDs() Option {
	return func(r *Renderer) {
		r.slugIDs = true
	}
}

// WithSafeMode drops event handler and style attributes and empties
// dangerous URLs, matching how goldmark treats links without html.WithUnsafe.
func WithSafeMode() Option {
	return func(r *Renderer) {
		r.safe = true
	}
}

// Renderer is a goldmark NodeRenderer for directive nodes.
type Renderer struct {
	handlers map[string]HandlerFunc
	slugIDs  bool
	safe     bool
}

// NewRenderer returns a renderer with the given options applied.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{handlers: map[string]HandlerFunc{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *Renderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindTextDirective, r.dispatch(r.renderText))
	reg.Register(ast.KindLeafDirective, r.dispatch(r.renderLeaf))
	reg.Register(ast.KindContainerDirective, r.dispatch(r.renderContainer))
	reg.Register(ast.KindDirectiveLabel, r.renderLabel)
}

// Extend implements goldmark.Extender.
func (r *Renderer) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(r, 500),
	))
}

type directiveFunc func(w util.BufWriter, source []byte, d ast.Directive, entering bool) (gast.WalkStatus, error)

func (r *Renderer) dispatch(fallback directiveFunc) renderer.NodeRendererFunc {
	return func(w util.BufWriter, source []byte, n gast.Node, entering bool) (gast.WalkStatus, error) {
		d, ok := ast.AsDirective(n)
		if !ok {
			return gast.WalkContinue, nil
		}
		if fn, ok := r.handlers[d.DirectiveName()]; ok {
			return fn(w, source, d, entering)
		}
		return fallback(w, source, d, entering)
	}
}

func (r *Renderer) renderText(w util.BufWriter, source []byte, d ast.Directive, entering bool) (gast.WalkStatus, error) {
	if entering {
		r.openTag(w, "span", d, nil)
	} else {
		_, _ = w.WriteString("</span>")
	}
	return gast.WalkContinue, nil
}

func (r *Renderer) renderLeaf(w util.BufWriter, source []byte, d ast.Directive, entering bool) (gast.WalkStatus, error) {
	if entering {
		r.openTag(w, "div", d, nil)
	} else {
		_, _ = w.WriteString("</div>\n")
	}
	return gast.WalkContinue, nil
}

func (r *Renderer) renderContainer(w util.BufWriter, source []byte, d ast.Directive, entering bool) (gast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</div>\n")
		return gast.WalkContinue, nil
	}
	var extra []byte
	if c, ok := d.(*ast.ContainerDirective); ok && r.slugIDs && !d.DirectiveAttributes().Has("id") {
		if label := c.Label(); label != nil {
			if id, err := slug.Normalize(string(plainText(label, source))); err == nil && id != "" {
				extra = []byte(id)
			}
		}
	}
	r.openTag(w, "div", d, extra)
	_ = w.WriteByte('\n')
	return gast.WalkContinue, nil
}

func (r *Renderer) renderLabel(w util.BufWriter, source []byte, n gast.Node, entering bool) (gast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<p data-directive-label="">`)
	} else {
		_, _ = w.WriteString("</p>\n")
	}
	return gast.WalkContinue, nil
}

// openTag writes the opening tag with data-directive and the directive
// attributes. Keys that are not valid HTML attribute names are skipped.
func (r *Renderer) openTag(w util.BufWriter, tag string, d ast.Directive, id []byte) {
	_ = w.WriteByte('<')
	_, _ = w.WriteString(tag)
	_, _ = w.WriteString(` data-directive="`)
	_, _ = w.Write(util.EscapeHTML([]byte(d.DirectiveName())))
	_ = w.WriteByte('"')
	if id != nil {
		writeAttribute(w, "id", id)
	}
	for key, value := range d.DirectiveAttributes().All() {
		if !syntax.IsAttributeKey(key) {
			continue
		}
		v, ok := r.filter(key, []byte(value))
		if !ok {
			continue
		}
		writeAttribute(w, key, v)
	}
	_ = w.WriteByte('>')
}

// urlAttributes are checked with html.IsDangerousURL in safe mode.
var urlAttributes = map[string]bool{
	"action":     true,
	"background": true,
	"cite":       true,
	"formaction": true,
	"href":       true,
	"poster":     true,
	"src":        true,
	"xlink:href": true,
}

// filter applies safe mode to one attribute. It reports false for
// attributes that must not be written.
func (r *Renderer) filter(key string, value []byte) ([]byte, bool) {
	if !r.safe {
		return value, true
	}
	lower := strings.ToLower(key)
	switch {
	case strings.HasPrefix(lower, "on"), lower == "style", lower == "srcdoc":
		return nil, false
	case urlAttributes[lower]:
		trimmed := bytes.TrimLeftFunc(value, func(c rune) bool { return c <= ' ' })
		if html.IsDangerousURL(trimmed) {
			return []byte{}, true
		}
	}
	return value, true
}

func writeAttribute(w util.BufWriter, key string, value []byte) {
	_ = w.WriteByte(' ')
	_, _ = w.WriteString(key)
	_, _ = w.WriteString(`="`)
	_, _ = w.Write(util.EscapeHTML(value))
	_ = w.WriteByte('"')
}

func plainText(n gast.Node, source []byte) []byte {
	var buf bytes.Buffer
	_ = gast.Walk(n, func(c gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *gast.Text:
			buf.Write(v.Segment.Value(source))
			if v.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *gast.String:
			buf.Write(v.Value)
		case *gast.CodeSpan:
			buf.Write(v.Text(source))
			return gast.WalkSkipChildren, nil
		}
		return gast.WalkContinue, nil
	})
	return buf.Bytes()
}
