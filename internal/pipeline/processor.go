package pipeline

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-directive/internal/mdwriter"
)

// Processor parses, serializes and renders documents. It is safe for
// concurrent use; every call gets its own parse context.
type Processor struct {
	md     goldmark.Markdown
	writer *mdwriter.Writer
	tree   []TreeExtension
	inert  bool
}

// New builds a processor from cfg. The extension lists are snapshotted, so
// later appends to cfg do not affect the processor. On a legacy host the
// lists are ignored and the processor handles plain Markdown only.
func New(cfg *Config) *Processor {
	if cfg == nil {
		cfg = &Config{}
	}
	p := &Processor{
		writer: mdwriter.New(),
		inert:  cfg.Legacy(),
	}
	var extra []goldmark.Extender
	if !p.inert {
		for _, ext := range cfg.Syntax {
			if ext != nil {
				extra = append(extra, ext)
			}
		}
		for _, ext := range cfg.Tree {
			if ext != nil {
				extra = append(extra, ext)
				p.tree = append(p.tree, ext)
			}
		}
		for _, ext := range cfg.Serialize {
			if ext != nil {
				ext.ExtendWriter(p.writer)
			}
		}
	}
	for _, ext := range cfg.Render {
		if ext != nil {
			extra = append(extra, ext)
		}
	}
	p.md = newEngine(cfg.Host, extra...)
	return p
}

// Inert reports whether the processor ignores the extension lists.
func (p *Processor) Inert() bool {
	return p.inert
}

// Markdown exposes the underlying goldmark instance.
func (p *Processor) Markdown() goldmark.Markdown {
	return p.md
}

// Writer exposes the Markdown writer.
func (p *Processor) Writer() *mdwriter.Writer {
	return p.writer
}

// Parse parses source into a new document.
func (p *Processor) Parse(source []byte) *Document {
	doc := &Document{Root: gast.NewDocument()}
	return p.ParseInto(doc, source)
}

// ParseInto parses source and appends the resulting blocks to doc. The new
// text is appended to doc.Source, so segments of existing and new nodes
// stay valid against the combined source.
func (p *Processor) ParseInto(doc *Document, source []byte) *Document {
	if doc == nil {
		doc = &Document{}
	}
	if doc.Root == nil {
		doc.Root = gast.NewDocument()
	}
	combined := make([]byte, 0, len(doc.Source)+1+len(source))
	combined = append(combined, doc.Source...)
	if n := len(combined); n > 0 && combined[n-1] != '\n' {
		combined = append(combined, '\n')
	}
	offset := len(combined)
	combined = append(combined, source...)

	pc := parser.NewContext()
	for _, ext := range p.tree {
		ext.Prepare(pc, combined)
	}
	reader := text.NewReader(combined)
	if offset > 0 {
		reader.Advance(offset)
	}
	root := p.md.Parser().Parse(reader, parser.WithContext(pc))
	for c := root.FirstChild(); c != nil; {
		next := c.NextSibling()
		root.RemoveChild(root, c)
		doc.Root.AppendChild(doc.Root, c)
		c = next
	}
	doc.Source = combined
	doc.contexts = append(doc.contexts, pc)
	return doc
}

// Serialize writes doc back to Markdown.
func (p *Processor) Serialize(doc *Document) ([]byte, error) {
	if doc == nil || doc.Root == nil {
		return []byte{}, nil
	}
	out, err := p.writer.Write(doc.Root, doc.Source)
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	return out, nil
}

// Format parses and re-serializes source.
func (p *Processor) Format(source []byte) ([]byte, error) {
	return p.Serialize(p.Parse(source))
}

// Render writes the HTML rendering of doc to w.
func (p *Processor) Render(w io.Writer, doc *Document) error {
	if doc == nil || doc.Root == nil {
		return nil
	}
	if err := p.md.Renderer().Render(w, doc.Source, doc.Root); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// RenderSource parses source and returns its HTML rendering.
func (p *Processor) RenderSource(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Render(&buf, p.Parse(source)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
