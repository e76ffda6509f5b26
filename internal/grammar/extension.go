package grammar

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
)

// Extension registers the directive parsers on a goldmark instance.
type Extension struct {
	cfg config
}

// NewExtension returns the syntax extension configured by opts.
func NewExtension(opts ...Option) *Extension {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Extension{cfg: cfg}
}

// TextPriority returns the configured inline priority.
func (e *Extension) TextPriority() int {
	return e.cfg.textPriority
}

// Boundary returns the configured text directive boundary.
func (e *Extension) Boundary() Boundary {
	return e.cfg.boundary
}

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(NewContainerParser(), e.cfg.blockPriority),
		util.Prioritized(NewLeafParser(), e.cfg.blockPriority+1),
	))
	if e.cfg.disableText {
		return
	}
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewTextParser(e.cfg.boundary), e.cfg.textPriority),
		util.Prioritized(&labelCloser{}, labelCloserPriority),
	))
}
