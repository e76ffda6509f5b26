// Package mdwriter serializes a goldmark document back to Markdown. Each node
// kind has a Handler; extensions register handlers for their own node kinds
// and add unsafe patterns for characters that would otherwise start their
// syntax. Text parsed from the source is written verbatim, so escapes and
// entities survive a round trip unchanged; constructed strings are escaped.
package mdwriter

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	gast "github.com/yuin/goldmark/ast"
)

// ErrUnsupportedNode is returned for node kinds without a handler.
var ErrUnsupportedNode = errors.New("mdwriter: unsupported node")

// Construct names a syntactic context on the state stack. Unsafe patterns
// are scoped to constructs.
type Construct string

const (
	ConstructPhrasing  Construct = "phrasing"
	ConstructHeading   Construct = "heading"
	ConstructLabel     Construct = "label"
	ConstructTableCell Construct = "tableCell"
	ConstructList      Construct = "list"
	ConstructQuote     Construct = "blockquote"
)

// Handler serializes n. Block handlers return the block text without a
// trailing line ending.
type Handler func(s *State, n gast.Node) (string, error)

// Writer holds the handler table and unsafe patterns. It is safe for
// concurrent use once configured.
type Writer struct {
	mu       sync.RWMutex
	handlers map[gast.NodeKind]Handler
	unsafe   []UnsafePattern
}

// Option configures a Writer.
type Option func(*Writer)

// WithHandler registers a handler for kind.
func WithHandler(kind gast.NodeKind, h Handler) Option {
	return func(w *Writer) {
		w.handlers[kind] = h
	}
}

// WithUnsafe adds unsafe patterns.
func WithUnsafe(patterns ...UnsafePattern) Option {
	return func(w *Writer) {
		w.unsafe = append(w.unsafe, patterns...)
	}
}

// New returns a writer with CommonMark and GFM handlers installed.
func New(opts ...Option) *Writer {
	w := &Writer{
		handlers: make(map[gast.NodeKind]Handler),
		unsafe:   append([]UnsafePattern(nil), commonMarkUnsafe...),
	}
	registerCommonMark(w)
	registerGFM(w)
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Register sets the handler for kind, replacing any previous one.
func (w *Writer) Register(kind gast.NodeKind, h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[kind] = h
}

// AddUnsafe appends unsafe patterns.
func (w *Writer) AddUnsafe(patterns ...UnsafePattern) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.unsafe = append(w.unsafe, patterns...)
}

// Handles reports whether kind has a handler.
func (w *Writer) Handles(kind gast.NodeKind) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.handlers[kind]
	return ok
}

func (w *Writer) handler(kind gast.NodeKind) (Handler, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	h, ok := w.handlers[kind]
	return h, ok
}

func (w *Writer) patterns() []UnsafePattern {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.unsafe
}

// Write serializes the tree rooted at n. The output ends with a single line
// ending unless it is empty.
func (w *Writer) Write(n gast.Node, source []byte) ([]byte, error) {
	s := &State{writer: w, Source: source, unsafe: w.patterns(), atBreak: true}
	out, err := s.Node(n)
	if err != nil {
		return nil, err
	}
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return []byte{}, nil
	}
	return []byte(out + "\n"), nil
}

// State is the per-call serialization state passed to handlers.
type State struct {
	writer *Writer
	unsafe []UnsafePattern
	stack  []Construct
	// Source is the document source the tree was parsed from.
	Source []byte
	// before is the last byte written in the current phrasing run.
	before byte
	// atBreak is true when the next byte starts a line.
	atBreak bool
}

// Node dispatches n to its handler.
func (s *State) Node(n gast.Node) (string, error) {
	h, ok := s.writer.handler(n.Kind())
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedNode, n.Kind())
	}
	return h(s, n)
}

// Enter pushes c and returns the function that pops it.
func (s *State) Enter(c Construct) func() {
	s.stack = append(s.stack, c)
	depth := len(s.stack)
	return func() {
		s.stack = s.stack[:depth-1]
	}
}

// In reports whether c is on the construct stack.
func (s *State) In(c Construct) bool {
	for _, v := range s.stack {
		if v == c {
			return true
		}
	}
	return false
}

// Flow serializes the block children of parent separated by sep.
func (s *State) Flow(parent gast.Node, sep string) (string, error) {
	return s.FlowFrom(parent.FirstChild(), sep)
}

// FlowFrom serializes first and its following siblings separated by sep.
// Blocks that serialize to nothing, such as the empty text block left where
// a link reference definition was, are skipped.
func (s *State) FlowFrom(first gast.Node, sep string) (string, error) {
	var parts []string
	for c := first; c != nil; c = c.NextSibling() {
		s.atBreak = true
		s.before = 0
		out, err := s.Node(c)
		if err != nil {
			return "", err
		}
		if out == "" {
			continue
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, sep), nil
}

// Phrasing serializes the inline children of parent.
func (s *State) Phrasing(parent gast.Node) (string, error) {
	exit := s.Enter(ConstructPhrasing)
	defer exit()
	var b strings.Builder
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		out, err := s.Node(c)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
		if out != "" {
			s.before = out[len(out)-1]
			s.atBreak = s.before == '\n'
		}
	}
	return b.String(), nil
}

// Block serializes an inline container at the start of a line, such as a
// paragraph or a label.
func (s *State) Block(parent gast.Node) (string, error) {
	s.atBreak = true
	s.before = 0
	out, err := s.Phrasing(parent)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// Inline serializes inline children that follow already written text, such
// as a directive label after its name.
func (s *State) Inline(parent gast.Node, before byte) (string, error) {
	s.atBreak = false
	s.before = before
	return s.Phrasing(parent)
}

// Indent prefixes every line of block: the first line with first, the
// others with rest. Blank lines get rest without trailing spaces.
func Indent(block, first, rest string) string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		prefix := rest
		if i == 0 {
			prefix = first
		}
		if line == "" {
			lines[i] = strings.TrimRight(prefix, " ")
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// LongestRun returns the longest run of c in value.
func LongestRun(value string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(value); i++ {
		if value[i] == c {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return longest
}
