package pipeline_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-directive/ast"
	"github.com/goliatone/go-directive/internal/inspect"
	"github.com/goliatone/go-directive/internal/pipeline"
	"github.com/goliatone/go-directive/internal/registrar"
)

func newProcessor(t *testing.T) *pipeline.Processor {
	t.Helper()
	cfg := pipeline.NewConfig()
	registrar.Register(cfg, registrar.Options{})
	return pipeline.New(cfg)
}

func text(value string) *inspect.Node {
	return &inspect.Node{Type: "text", Value: value}
}

func TestParseExamples(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want *inspect.Node
	}{
		{
			name: "container",
			src:  ":::note\nHello\n:::",
			want: &inspect.Node{Type: "root", Children: []*inspect.Node{
				{Type: "containerDirective", Name: "note", Children: []*inspect.Node{
					{Type: "paragraph", Children: []*inspect.Node{text("Hello")}},
				}},
			}},
		},
		{
			name: "leaf",
			src:  "::note[Hi]{.warn}",
			want: &inspect.Node{Type: "root", Children: []*inspect.Node{
				{Type: "leafDirective", Name: "note", Attributes: map[string]string{"class": "warn"}, Children: []*inspect.Node{text("Hi")}},
			}},
		},
		{
			name: "text",
			src:  "a :b[c]{#d} e",
			want: &inspect.Node{Type: "root", Children: []*inspect.Node{
				{Type: "paragraph", Children: []*inspect.Node{
					text("a "),
					{Type: "textDirective", Name: "b", Attributes: map[string]string{"id": "d"}, Children: []*inspect.Node{text("c")}},
					text(" e"),
				}},
			}},
		},
		{
			name: "unterminated container",
			src:  ":::note\nHello",
			want: &inspect.Node{Type: "root", Children: []*inspect.Node{
				{Type: "containerDirective", Name: "note", Children: []*inspect.Node{
					{Type: "paragraph", Children: []*inspect.Node{text("Hello")}},
				}},
			}},
		},
		{
			name: "two colons never open a container",
			src:  "::name\nbody\n",
			want: &inspect.Node{Type: "root", Children: []*inspect.Node{
				{Type: "leafDirective", Name: "name"},
				{Type: "paragraph", Children: []*inspect.Node{text("body")}},
			}},
		},
	}

	p := newProcessor(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inspect.Tree(p.Parse([]byte(tc.src)))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnterminatedContainerEndsAtDocumentEnd(t *testing.T) {
	src := ":::note\nHello"
	doc := newProcessor(t).Parse([]byte(src))
	dirs := doc.Directives()
	if len(dirs) != 1 {
		t.Fatalf("expected one directive, got %d", len(dirs))
	}
	span := dirs[0].DirectiveSpan()
	if span.End.Offset != len(src) || span.End.Line != 2 {
		t.Fatalf("expected span to end at document end, got %s (offset %d)", span, span.End.Offset)
	}
}

var roundTripSources = []string{
	":::note\nHello\n:::",
	"::note[Hi]{.warn}",
	"a :b[c]{#d} e",
	":::note\nHello",
	"::::outer\n:::inner\nx\n:::\n::::\n",
	":::tip[Read **this**]{#t .a .b data-x=\"1 2\"}\n- one\n- two\n\n> quoted :em[word]\n:::\n",
	"# Title :abbr[HTML]{title=\"Hyper Text\"}\n\nSome `code` and [a link](https://example.com \"t\").\n",
	":::outer\n:::inner\ntext\n",
	"::video{src=\"a.mp4\" autoplay}\n\n1. first\n2. second\n",
	"| a | b |\n| - | :-: |\n| :x[y] | z |\n",
	"text with \\:escaped colon and a:b and ::c\n",
	":::note\n```go\nfmt.Println(\"::x\")\n```\n:::\n",
	"::note[ spaced label ]{title=\"a &amp; b\"}\n",
	":::a\n[r]: /u\n\n[r]\n:::\n",
	":::a\n\n    code\n:::\n",
	"[r]: /u\n\n:::a\n[r]\n:::\n",
}

func TestRoundTripFixpoint(t *testing.T) {
	p := newProcessor(t)
	for i, src := range roundTripSources {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			first := p.Parse([]byte(src))
			out, err := p.Serialize(first)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			second := p.Parse(out)
			if diff := cmp.Diff(inspect.Tree(first), inspect.Tree(second)); diff != "" {
				t.Fatalf("round trip changed the tree (-first +second):\n%s\noutput:\n%s", diff, out)
			}

			again, err := p.Serialize(second)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			if string(again) != string(out) {
				t.Fatalf("serializer output is not stable:\n%s\nthen:\n%s", out, again)
			}
		})
	}
}

func TestConstructedDirectivesRoundTrip(t *testing.T) {
	p := newProcessor(t)
	cases := []struct {
		name  string
		attrs ast.Attributes
	}{
		{"a", ast.Attributes{}},
		{"x-y_z", ast.NewAttributes("id", "main", "class", "a b")},
		{"note2", ast.NewAttributes("title", `He said "hi" & left`, "data-n", "1")},
		{"k", ast.NewAttributes("flag", "", "lang", "en-US")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			leaf, err := ast.NewLeafDirective(tc.name, tc.attrs)
			if err != nil {
				t.Fatalf("NewLeafDirective: %v", err)
			}
			doc := &pipeline.Document{Root: newRoot(leaf)}
			out, err := p.Serialize(doc)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			dirs := p.Parse(out).Directives()
			if len(dirs) != 1 {
				t.Fatalf("expected one directive from %q, got %d", out, len(dirs))
			}
			if dirs[0].DirectiveName() != tc.name {
				t.Fatalf("expected name %q, got %q", tc.name, dirs[0].DirectiveName())
			}
			if !dirs[0].DirectiveAttributes().Equal(tc.attrs) {
				t.Fatalf("attributes changed: %s -> %s (%q)", tc.attrs, dirs[0].DirectiveAttributes(), out)
			}
		})
	}
}

func TestFormatNestedFenceGrows(t *testing.T) {
	p := newProcessor(t)
	out, err := p.Format([]byte(":::::outer\n:::inner\nx\n:::\n:::::\n"))
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := "::::outer\n:::inner\nx\n:::\n::::\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIntoAppendsToExistingDocument(t *testing.T) {
	p := newProcessor(t)
	doc := p.Parse([]byte("# A"))
	p.ParseInto(doc, []byte(":::note\nx\n:::\n"))

	if got := doc.Root.ChildCount(); got != 2 {
		t.Fatalf("expected two top-level blocks, got %d", got)
	}
	out, err := p.Serialize(doc)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if diff := cmp.Diff("# A\n\n:::note\nx\n:::\n", string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	var kinds []string
	for _, tok := range doc.Tokens() {
		kinds = append(kinds, tok.Kind.String())
	}
	if diff := cmp.Diff([]string{"containerOpen", "containerClose"}, kinds); diff != "" {
		t.Fatalf("token mismatch (-want +got):\n%s", diff)
	}
	if pos := doc.Index().Position(doc.Tokens()[0].Start); pos.Line != 2 || pos.Column != 1 {
		t.Fatalf("expected container at 2:1, got %s", pos)
	}
}

func TestLegacyHostIsInert(t *testing.T) {
	var diag strings.Builder
	cfg := &pipeline.Config{}
	cfg.Declare(pipeline.CapabilityLegacyParser)
	registrar.Register(cfg, registrar.Options{Advisory: registrar.NewAdvisory(&diag)})

	p := pipeline.New(cfg)
	if !p.Inert() {
		t.Fatalf("expected inert processor")
	}
	src := ":::note\nHello\n:::"
	doc := p.Parse([]byte(src))
	if n := len(doc.Directives()); n != 0 {
		t.Fatalf("expected no directives on a legacy host, got %d", n)
	}
	out, err := p.Format([]byte(src))
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if string(out) != src+"\n" {
		t.Fatalf("expected literal output, got %q", out)
	}
	if !strings.Contains(diag.String(), registrar.AdvisoryMessage) {
		t.Fatalf("expected advisory, got %q", diag.String())
	}
}

func TestMissingListsParsePlainMarkdown(t *testing.T) {
	p := pipeline.New(pipeline.NewConfig())
	doc := p.Parse([]byte("::note\n"))
	if n := len(doc.Directives()); n != 0 {
		t.Fatalf("expected no directives without registration, got %d", n)
	}
}

func TestConfigSnapshotAtNew(t *testing.T) {
	cfg := pipeline.NewConfig()
	p := pipeline.New(cfg)
	registrar.Register(cfg, registrar.Options{})
	if n := len(p.Parse([]byte("::note\n")).Directives()); n != 0 {
		t.Fatalf("expected registration after New to have no effect, got %d directives", n)
	}
}

func TestIndependentProcessorsConcurrently(t *testing.T) {
	src := []byte(":::note[T]{.a}\nbody :x[y]\n:::\n")
	want, err := newProcessor(t).Format(src)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	shared := newProcessor(t)
	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := shared
			if i%2 == 0 {
				cfg := pipeline.NewConfig()
				registrar.Register(cfg, registrar.Options{})
				p = pipeline.New(cfg)
			}
			got, err := p.Format(src)
			if err != nil {
				errs <- err
				return
			}
			if string(got) != string(want) {
				errs <- fmt.Errorf("worker %d: got %q", i, got)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
