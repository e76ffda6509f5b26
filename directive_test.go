package directive_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-directive"
	"github.com/goliatone/go-directive/ast"
)

func TestNewFormatsAndRenders(t *testing.T) {
	p, err := directive.New(directive.WithAdvisory(directive.NewAdvisory(&bytes.Buffer{})))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	src := ":::note[Title]{.warn}\nHello :abbr[HTML]{title=\"x\"}\n:::\n"
	out, err := p.Format([]byte(src))
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if string(out) != src {
		t.Fatalf("expected canonical source to be stable, got %q", out)
	}

	html, err := p.RenderSource([]byte(src))
	if err != nil {
		t.Fatalf("RenderSource: %v", err)
	}
	if !strings.Contains(string(html), `<div data-directive="note" class="warn">`) {
		t.Fatalf("unexpected html %q", html)
	}
}

func TestNewWithRenderHandler(t *testing.T) {
	video := func(w util.BufWriter, _ []byte, d ast.Directive, entering bool) (gast.WalkStatus, error) {
		if entering {
			src, _ := d.DirectiveAttributes().Get("src")
			fmt.Fprintf(w, "<video src=%q></video>\n", src)
		}
		return gast.WalkSkipChildren, nil
	}
	p, err := directive.New(directive.WithRenderHandler("video", video))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	html, err := p.RenderSource([]byte("::video{src=a.mp4}\n"))
	if err != nil {
		t.Fatalf("RenderSource: %v", err)
	}
	if string(html) != "<video src=\"a.mp4\"></video>\n" {
		t.Fatalf("unexpected html %q", html)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := directive.DefaultConfig()
	cfg.Grammar.TextBoundary = "fuzzy"
	if _, err := directive.New(directive.WithConfig(cfg)); !errors.Is(err, directive.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestNewOnLegacyHostIsInert(t *testing.T) {
	var diag bytes.Buffer
	cfg := directive.DefaultConfig()
	cfg.Host.Capabilities = []string{string(directive.CapabilityLegacyParser)}

	p, err := directive.New(directive.WithConfig(cfg), directive.WithAdvisory(directive.NewAdvisory(&diag)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !p.Inert() {
		t.Fatal("expected an inert processor")
	}
	if !strings.Contains(diag.String(), directive.AdvisoryMessage) {
		t.Fatalf("expected advisory, got %q", diag.String())
	}
	if got := directive.Tokens(p.Parse([]byte("::video\n"))); len(got) != 0 {
		t.Fatalf("expected no tokens on a legacy host, got %+v", got)
	}
}

func TestRegisterOnPipelineConfig(t *testing.T) {
	cfg := directive.NewPipelineConfig()
	directive.Register(cfg)
	directive.Register(cfg, directive.WithTextBoundary(directive.BoundaryLoose))
	if len(cfg.Syntax) != 2 || len(cfg.Tree) != 2 || len(cfg.Serialize) != 2 {
		t.Fatalf("expected two of each extension, got %d/%d/%d", len(cfg.Syntax), len(cfg.Tree), len(cfg.Serialize))
	}
}

func TestTokensAndInspect(t *testing.T) {
	cfg := directive.NewPipelineConfig()
	directive.Register(cfg)
	doc := directive.NewProcessor(cfg).Parse([]byte("intro\n\n::video[Clip]{#v}\n"))

	tokens := directive.Tokens(doc)
	if len(tokens) != 1 || tokens[0].Kind != "leaf" || tokens[0].Name != "video" {
		t.Fatalf("unexpected tokens %+v", tokens)
	}
	if tokens[0].Label == nil || *tokens[0].Label != "Clip" || tokens[0].Start.Line != 3 {
		t.Fatalf("unexpected leaf token %+v", tokens[0])
	}

	snap := directive.Inspect(doc, true)
	leaf := snap.Children[1]
	if leaf.Type != "leafDirective" || leaf.Position == nil || leaf.Position.Start.Line != 3 {
		t.Fatalf("unexpected leaf snapshot %+v", leaf)
	}
}

func TestNewLinter(t *testing.T) {
	l, err := directive.NewLinter(directive.LintConfig{Rules: map[string]directive.LintRule{
		"video": {RequireLabel: true},
	}})
	if err != nil {
		t.Fatalf("NewLinter: %v", err)
	}
	p, err := directive.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	findings := l.Check(p.Parse([]byte("::video\n")))
	if len(findings) != 1 || findings[0].String() != "1:1: video: missing label" {
		t.Fatalf("unexpected findings %+v", findings)
	}
}

func TestNewSafeModeFiltersAttributes(t *testing.T) {
	cfg := directive.DefaultConfig()
	cfg.Host.SafeMode = true
	p, err := directive.New(directive.WithConfig(cfg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := p.RenderSource([]byte(`::v{href="javascript:alert(2)" onclick="y"}`))
	if err != nil {
		t.Fatalf("RenderSource: %v", err)
	}
	if want := "<div data-directive=\"v\" href=\"\"></div>\n"; string(out) != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}
