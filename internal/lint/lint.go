// Package lint checks parsed directives against per-name rules. Attribute
// mappings are validated with JSON Schema.
package lint

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-directive/ast"
	"github.com/goliatone/go-directive/internal/pipeline"
)

// ErrInvalidRule is returned by New for rules that cannot be compiled.
var ErrInvalidRule = errors.New("lint: invalid rule")

// Rule constrains directives with one name.
type Rule struct {
	// Types lists the allowed forms: text, leaf, container. Empty allows
	// all of them.
	Types []string `json:"types" yaml:"types"`
	// Attributes is a JSON Schema for the attribute object. Values are
	// always strings.
	Attributes map[string]any `json:"attributes" yaml:"attributes"`
	// RequireLabel reports directives without a label.
	RequireLabel bool `json:"require_label" yaml:"require_label"`
}

// Config is the lint configuration.
type Config struct {
	Rules map[string]Rule `json:"rules" yaml:"rules"`
	// Strict reports directives that have no rule.
	Strict bool `json:"strict" yaml:"strict"`
}

// Finding is one problem found in a document.
type Finding struct {
	Directive string       `json:"directive"`
	Type      string       `json:"type"`
	Position  ast.Position `json:"position"`
	Location  string       `json:"location,omitempty"`
	Message   string       `json:"message"`
}

// String renders the finding as line:column: name: message.
func (f Finding) String() string {
	msg := f.Message
	if f.Location != "" && f.Location != "#" {
		msg = f.Location + ": " + msg
	}
	return fmt.Sprintf("%s: %s: %s", f.Position, f.Directive, msg)
}

type compiledRule struct {
	types        []string
	schema       *jsonschema.Schema
	requireLabel bool
}

// Linter holds compiled rules. It is safe for concurrent use.
type Linter struct {
	rules  map[string]compiledRule
	strict bool
}

// New compiles cfg.
func New(cfg Config) (*Linter, error) {
	l := &Linter{rules: make(map[string]compiledRule, len(cfg.Rules)), strict: cfg.Strict}
	for name, rule := range cfg.Rules {
		if !ast.ValidName(name) {
			return nil, fmt.Errorf("%w: %q is not a directive name", ErrInvalidRule, name)
		}
		compiled := compiledRule{requireLabel: rule.RequireLabel}
		for _, t := range rule.Types {
			t = strings.ToLower(strings.TrimSpace(t))
			if !slices.Contains(typeNames, t) {
				return nil, fmt.Errorf("%w: %s: unknown type %q", ErrInvalidRule, name, t)
			}
			compiled.types = append(compiled.types, t)
		}
		if len(rule.Attributes) > 0 {
			schema, err := compileSchema(name, rule.Attributes)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRule, name, err)
			}
			compiled.schema = schema
		}
		l.rules[name] = compiled
	}
	return l, nil
}

var typeNames = []string{"text", "leaf", "container"}

func typeName(t ast.Type) string {
	switch t {
	case ast.TypeText:
		return "text"
	case ast.TypeLeaf:
		return "leaf"
	default:
		return "container"
	}
}

func compileSchema(name string, schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	url := name + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// Check returns the findings for doc in document order.
func (l *Linter) Check(doc *pipeline.Document) []Finding {
	if l == nil || doc == nil {
		return nil
	}
	var findings []Finding
	for _, d := range doc.Directives() {
		base := Finding{
			Directive: d.DirectiveName(),
			Type:      typeName(d.DirectiveType()),
			Position:  d.DirectiveSpan().Start,
		}
		for _, msg := range l.check(d) {
			f := base
			f.Location, f.Message = msg.location, msg.message
			findings = append(findings, f)
		}
	}
	return findings
}

type problem struct {
	location string
	message  string
}

func (l *Linter) check(d ast.Directive) []problem {
	rule, ok := l.rules[d.DirectiveName()]
	if !ok {
		if l.strict {
			return []problem{{message: "unknown directive"}}
		}
		return nil
	}

	var out []problem
	kind := typeName(d.DirectiveType())
	if len(rule.types) > 0 && !slices.Contains(rule.types, kind) {
		out = append(out, problem{message: fmt.Sprintf("%s form not allowed (want %s)", kind, strings.Join(rule.types, ", "))})
	}
	if rule.requireLabel && !hasLabel(d) {
		out = append(out, problem{message: "missing label"})
	}
	if rule.schema != nil {
		out = append(out, validate(rule.schema, d.DirectiveAttributes())...)
	}
	return out
}

func hasLabel(d ast.Directive) bool {
	if c, ok := d.(*ast.ContainerDirective); ok {
		return c.Label() != nil
	}
	return d.HasChildren()
}

func validate(schema *jsonschema.Schema, attrs *ast.Attributes) []problem {
	payload := make(map[string]any, attrs.Len())
	for key, value := range attrs.All() {
		payload[key] = value
	}
	err := schema.Validate(payload)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []problem{{message: err.Error()}}
	}
	var out []problem
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			out = append(out, problem{
				location: "#" + strings.TrimPrefix(strings.TrimSpace(node.InstanceLocation), "#"),
				message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(verr)
	sort.SliceStable(out, func(i, j int) bool { return out[i].location < out[j].location })
	return out
}
