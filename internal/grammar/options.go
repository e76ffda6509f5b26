// Package grammar wires the directive scanners into goldmark as block and
// inline parsers. Parsers only match when a tree builder is installed in
// the parse context; otherwise directive markup stays literal text.
package grammar

import "fmt"

// Boundary selects which preceding characters block a text directive.
type Boundary uint8

const (
	// BoundaryStrict rejects a text directive after a colon or an ASCII
	// letter or digit, so `mailto:x` and `urn:isbn` stay literal.
	BoundaryStrict Boundary = iota
	// BoundaryLoose only rejects a text directive after a colon.
	BoundaryLoose
)

// String implements fmt.Stringer.
func (b Boundary) String() string {
	switch b {
	case BoundaryStrict:
		return "strict"
	case BoundaryLoose:
		return "loose"
	default:
		return fmt.Sprintf("boundary(%d)", uint8(b))
	}
}

// ParseBoundary maps a configuration value to a Boundary.
func ParseBoundary(value string) (Boundary, error) {
	switch value {
	case "", "strict":
		return BoundaryStrict, nil
	case "loose":
		return BoundaryLoose, nil
	default:
		return 0, fmt.Errorf("grammar: unknown text boundary %q", value)
	}
}

const (
	// DefaultTextPriority runs text directives after code spans (100) and
	// before links (200).
	DefaultTextPriority = 150
	// DefaultBlockPriority runs block directives before thematic breaks.
	DefaultBlockPriority = 150

	labelCloserPriority = 190
)

type config struct {
	textPriority  int
	blockPriority int
	boundary      Boundary
	disableText   bool
}

func defaultConfig() config {
	return config{
		textPriority:  DefaultTextPriority,
		blockPriority: DefaultBlockPriority,
		boundary:      BoundaryStrict,
	}
}

// Option customises the grammar extension.
type Option func(*config)

// WithTextPriority sets the goldmark inline priority of the text directive
// parser. Lower values run first.
func WithTextPriority(priority int) Option {
	return func(c *config) {
		c.textPriority = priority
	}
}

// WithBlockPriority sets the goldmark block priority of the leaf and
// container parsers.
func WithBlockPriority(priority int) Option {
	return func(c *config) {
		c.blockPriority = priority
	}
}

// WithTextBoundary sets the preceding-character policy for text directives.
func WithTextBoundary(boundary Boundary) Option {
	return func(c *config) {
		c.boundary = boundary
	}
}

// WithoutText disables text directives; block forms are still recognized.
func WithoutText() Option {
	return func(c *config) {
		c.disableText = true
	}
}
