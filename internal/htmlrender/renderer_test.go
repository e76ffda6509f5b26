package htmlrender_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-directive/ast"
	"github.com/goliatone/go-directive/internal/htmlrender"
	"github.com/goliatone/go-directive/internal/pipeline"
	"github.com/goliatone/go-directive/internal/registrar"
)

func render(t *testing.T, src string, opts ...htmlrender.Option) string {
	t.Helper()
	cfg := pipeline.NewConfig()
	registrar.Register(cfg, registrar.Options{})
	cfg.Render = append(cfg.Render, htmlrender.NewRenderer(opts...))
	out, err := pipeline.New(cfg).RenderSource([]byte(src))
	if err != nil {
		t.Fatalf("RenderSource: %v", err)
	}
	return string(out)
}

func TestRenderDefaults(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "container with label",
			src:  ":::note[Title]{.warn}\nHello\n:::",
			want: "<div data-directive=\"note\" class=\"warn\">\n<p data-directive-label=\"\">Title</p>\n<p>Hello</p>\n</div>\n",
		},
		{
			name: "leaf",
			src:  "::video{#v src=\"a.mp4\"}",
			want: "<div data-directive=\"video\" id=\"v\" src=\"a.mp4\"></div>\n",
		},
		{
			name: "text with escaped attribute",
			src:  "a :abbr[HTML]{title=\"x <y>\"} b",
			want: "<p>a <span data-directive=\"abbr\" title=\"x &lt;y&gt;\">HTML</span> b</p>\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, render(t, tc.src)); diff != "" {
				t.Fatalf("html mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderCustomHandler(t *testing.T) {
	video := func(w util.BufWriter, source []byte, d ast.Directive, entering bool) (gast.WalkStatus, error) {
		if entering {
			_, _ = w.WriteString(`<video src="` + d.DirectiveAttributes().Value("src") + `"></video>` + "\n")
		}
		return gast.WalkSkipChildren, nil
	}
	got := render(t, "::video[ignored]{src=a.mp4}\n\n::other", htmlrender.WithHandler("video", video))
	want := "<video src=\"a.mp4\"></video>\n<div data-directive=\"other\"></div>\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("html mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderSlugIDs(t *testing.T) {
	got := render(t, ":::note[Read This]\nx\n:::", htmlrender.WithSlugIDs())
	if !strings.HasPrefix(got, `<div data-directive="note" id="read-this">`) {
		t.Fatalf("expected slug id, got %q", got)
	}

	kept := render(t, ":::note[Read This]{#own}\nx\n:::", htmlrender.WithSlugIDs())
	if !strings.HasPrefix(kept, `<div data-directive="note" id="own">`) {
		t.Fatalf("expected explicit id to win, got %q", kept)
	}
}

func TestRenderSkipsInvalidAttributeKeys(t *testing.T) {
	leaf, err := ast.NewLeafDirective("x", ast.NewAttributes("ok", "1", "bad key", "2"))
	if err != nil {
		t.Fatalf("NewLeafDirective: %v", err)
	}
	root := gast.NewDocument()
	root.AppendChild(root, leaf)

	cfg := pipeline.NewConfig()
	registrar.Register(cfg, registrar.Options{})
	cfg.Render = append(cfg.Render, htmlrender.NewRenderer())

	var b strings.Builder
	if err := pipeline.New(cfg).Render(&b, &pipeline.Document{Root: root}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if diff := cmp.Diff("<div data-directive=\"x\" ok=\"1\"></div>\n", b.String()); diff != "" {
		t.Fatalf("html mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderSafeMode(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "event handler dropped",
			src:  `a :b[x]{onclick="alert(1)" onMouseOver="y" title="t"}`,
			want: "<p>a <span data-directive=\"b\" title=\"t\">x</span></p>\n",
		},
		{
			name: "script url emptied",
			src:  `::v{href="javascript:alert(2)" title="t"}`,
			want: "<div data-directive=\"v\" href=\"\" title=\"t\"></div>\n",
		},
		{
			name: "padded script url emptied",
			src:  `::v{src=" JavaScript:alert(3)"}`,
			want: "<div data-directive=\"v\" src=\"\"></div>\n",
		},
		{
			name: "style dropped and safe url kept",
			src:  `::v{src="https://x.test/a.mp4" style="color:red"}`,
			want: "<div data-directive=\"v\" src=\"https://x.test/a.mp4\"></div>\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, render(t, tc.src, htmlrender.WithSafeMode())); diff != "" {
				t.Fatalf("html mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderUnsafeKeepsAttributes(t *testing.T) {
	got := render(t, `::v{href="javascript:x" onclick="y"}`)
	want := "<div data-directive=\"v\" href=\"javascript:x\" onclick=\"y\"></div>\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("html mismatch (-want +got):\n%s", diff)
	}
}
