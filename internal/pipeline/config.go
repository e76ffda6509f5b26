// Package pipeline is the host configuration object and processor. A Config
// carries three ordered extension lists plus the capabilities the host
// declares; New turns it into a Processor backed by goldmark.
package pipeline

import (
	"slices"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"

	"github.com/goliatone/go-directive/internal/mdwriter"
)

// Capability is a feature the host declares instead of being probed for.
type Capability string

const (
	// CapabilityExtensions marks a host that consumes the three extension
	// lists.
	CapabilityExtensions Capability = "extensions"
	// CapabilityLegacyParser marks a host whose parser predates extension
	// lists. Registered syntax and tree extensions are inert there.
	CapabilityLegacyParser Capability = "legacy-parser"
	// CapabilityLegacyCompiler marks a host whose serializer predates
	// extension lists.
	CapabilityLegacyCompiler Capability = "legacy-compiler"
)

// SyntaxExtension adds parsers to the goldmark instance.
type SyntaxExtension interface {
	goldmark.Extender
}

// TreeExtension adds tree construction. Prepare runs on every parse context
// before parsing starts.
type TreeExtension interface {
	goldmark.Extender
	Prepare(pc parser.Context, source []byte)
}

// SerializeExtension adds handlers to the Markdown writer.
type SerializeExtension interface {
	ExtendWriter(w *mdwriter.Writer)
}

// HostOptions configures the goldmark instance itself.
type HostOptions struct {
	// Extensions names host Markdown extensions (gfm, table, strikethrough,
	// linkify, tasklist, definition, footnote). Empty selects GFM, linkify
	// and tasklist.
	Extensions []string `json:"extensions" yaml:"extensions"`
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool `json:"hard_wraps" yaml:"hard_wraps"`
	// SafeMode suppresses raw HTML in rendered output.
	SafeMode bool `json:"safe_mode" yaml:"safe_mode"`
	// AutoHeadingID assigns ids to rendered headings.
	AutoHeadingID bool `json:"auto_heading_id" yaml:"auto_heading_id"`
}

// Config is the shared, mutable host configuration. Extension lists are
// appended to, never replaced; nil lists are valid.
type Config struct {
	Syntax       []SyntaxExtension
	Tree         []TreeExtension
	Serialize    []SerializeExtension
	Render       []goldmark.Extender
	Capabilities []Capability
	Host         HostOptions
}

// NewConfig returns a configuration for a host that supports extensions.
func NewConfig() *Config {
	return &Config{Capabilities: []Capability{CapabilityExtensions}}
}

// Has reports whether the host declared c.
func (c *Config) Has(capability Capability) bool {
	return c != nil && slices.Contains(c.Capabilities, capability)
}

// Legacy reports whether the host declared a legacy parser or compiler. A
// host that declares nothing still gets its lists used.
func (c *Config) Legacy() bool {
	return c.Has(CapabilityLegacyParser) || c.Has(CapabilityLegacyCompiler)
}

// Declare adds capabilities that are not declared yet.
func (c *Config) Declare(capabilities ...Capability) {
	for _, capability := range capabilities {
		if !c.Has(capability) {
			c.Capabilities = append(c.Capabilities, capability)
		}
	}
}
