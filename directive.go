// Package directive adds generic directive syntax to goldmark: text
// directives (:name[label]{attrs}), leaf directives (::name) and container
// directives (:::name ... :::). It parses them into dedicated nodes,
// serializes trees back to Markdown and renders neutral HTML.
package directive

import (
	"github.com/goliatone/go-directive/internal/grammar"
	"github.com/goliatone/go-directive/internal/htmlrender"
	"github.com/goliatone/go-directive/internal/inspect"
	"github.com/goliatone/go-directive/internal/lint"
	"github.com/goliatone/go-directive/internal/pipeline"
	"github.com/goliatone/go-directive/internal/registrar"
	"github.com/goliatone/go-directive/internal/runtimeconfig"
	"github.com/goliatone/go-directive/pkg/interfaces"
)

type (
	// Processor parses, serializes and renders documents.
	Processor = pipeline.Processor

	// Document is a parsed tree with its source.
	Document = pipeline.Document

	// PipelineConfig is the host configuration extensions register on.
	PipelineConfig = pipeline.Config

	// Capability is a feature a host declares.
	Capability = pipeline.Capability

	// HostOptions configures the goldmark instance.
	HostOptions = pipeline.HostOptions

	SyntaxExtension    = pipeline.SyntaxExtension
	TreeExtension      = pipeline.TreeExtension
	SerializeExtension = pipeline.SerializeExtension

	// Advisory is the once-only warning for hosts without extension
	// support.
	Advisory = registrar.Advisory

	// GrammarOption tunes the syntax extension.
	GrammarOption = grammar.Option

	// Boundary selects which characters may precede a text directive.
	Boundary = grammar.Boundary

	// RenderHandlerFunc renders directives with one name.
	RenderHandlerFunc = htmlrender.HandlerFunc

	// Token is a recognized directive token with line and column positions.
	Token = inspect.Token

	// Snapshot is a source-independent view of a tree.
	Snapshot = inspect.Node

	// Linter checks directives against per-name rules.
	Linter = lint.Linter

	// Finding is one lint problem.
	Finding = lint.Finding
)

const (
	CapabilityExtensions     = pipeline.CapabilityExtensions
	CapabilityLegacyParser   = pipeline.CapabilityLegacyParser
	CapabilityLegacyCompiler = pipeline.CapabilityLegacyCompiler

	BoundaryStrict = grammar.BoundaryStrict
	BoundaryLoose  = grammar.BoundaryLoose
)

// AdvisoryMessage is the text of the legacy host warning.
const AdvisoryMessage = registrar.AdvisoryMessage

var (
	// WithTextPriority sets the goldmark priority of the text directive
	// parser.
	WithTextPriority = grammar.WithTextPriority

	// WithBlockPriority sets the goldmark priority of the block parsers.
	WithBlockPriority = grammar.WithBlockPriority

	// WithTextBoundary selects the text directive boundary rule.
	WithTextBoundary = grammar.WithTextBoundary

	// WithoutText disables text directives.
	WithoutText = grammar.WithoutText

	// NewAdvisory returns an advisory writing to w.
	NewAdvisory = registrar.NewAdvisory

	// ProcessAdvisory returns the advisory shared by the process.
	ProcessAdvisory = registrar.ProcessAdvisory
)

// NewPipelineConfig returns a host configuration that supports extensions.
func NewPipelineConfig() *PipelineConfig {
	return pipeline.NewConfig()
}

// NewProcessor builds a processor from a host configuration.
func NewProcessor(cfg *PipelineConfig) *Processor {
	return pipeline.New(cfg)
}

// Register appends the syntax, tree and serialize extensions to cfg. It
// never fails; on a legacy host the process advisory is emitted once.
func Register(cfg *PipelineConfig, opts ...GrammarOption) {
	registrar.Register(cfg, registrar.Options{Grammar: opts})
}

// Option configures New.
type Option func(*options)

type options struct {
	config   Config
	advisory *Advisory
	provider interfaces.LoggerProvider
	render   []htmlrender.Option
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithAdvisory sets the advisory used when the configured host is legacy.
func WithAdvisory(advisory *Advisory) Option {
	return func(o *options) { o.advisory = advisory }
}

// WithLoggerProvider sets where registration diagnostics are logged.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *options) { o.provider = provider }
}

// WithRenderHandler renders directives named name with fn.
func WithRenderHandler(name string, fn RenderHandlerFunc) Option {
	return func(o *options) {
		o.render = append(o.render, htmlrender.WithHandler(name, fn))
	}
}

// New validates the configuration and returns a processor with the
// directive extensions and the HTML renderer registered.
func New(opts ...Option) (*Processor, error) {
	o := options{config: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	return o.config.NewProcessor(runtimeconfig.ProcessorOptions{
		Advisory: o.advisory,
		Logger:   o.provider,
		Render:   o.render,
	}), nil
}

// Tokens returns the directive tokens recognized while parsing doc.
func Tokens(doc *Document) []Token {
	return inspect.Tokens(doc)
}

// Inspect returns a snapshot of doc, with directive positions when
// positions is set.
func Inspect(doc *Document, positions bool) *Snapshot {
	if positions {
		return inspect.Tree(doc, inspect.WithPositions())
	}
	return inspect.Tree(doc)
}

// NewLinter compiles lint rules.
func NewLinter(cfg LintConfig) (*Linter, error) {
	return lint.New(cfg)
}
