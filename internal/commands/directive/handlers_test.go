package directivecmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-directive/internal/lint"
	"github.com/goliatone/go-directive/internal/registrar"
	"github.com/goliatone/go-directive/internal/runtimeconfig"
)

const (
	formatted   = ":::note\nx\n:::\n"
	unformatted = "---\ntitle: B\n---\n::video{src=a.mp4}\n"
	canonical   = "---\ntitle: B\n---\n::video{src=\"a.mp4\"}\n"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

func newWorkspace(t *testing.T, cfg runtimeconfig.Config) (*Workspace, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	ws, err := NewWorkspace(cfg,
		WithOutput(&out),
		WithAdvisory(registrar.NewAdvisory(io.Discard)),
	)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	return ws, &out
}

func readFile(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func TestFormatCheckListsUnformattedFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.md":      formatted,
		"docs/b.md": unformatted,
		"notes.txt": "::x{y=z}\n",
	})
	ws, out := newWorkspace(t, runtimeconfig.DefaultConfig())

	err := NewFormatHandler(ws).Execute(context.Background(), FormatCommand{Root: root, Check: true})
	if !errors.Is(err, ErrUnformatted) {
		t.Fatalf("expected ErrUnformatted, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if out.String() != "docs/b.md\n" {
		t.Fatalf("unexpected check output %q", out.String())
	}
	if got := readFile(t, root, "docs/b.md"); got != unformatted {
		t.Fatalf("check must not modify files, got %q", got)
	}
}

func TestFormatWriteRewritesChangedFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.md": formatted,
		"b.md": unformatted,
	})
	ws, out := newWorkspace(t, runtimeconfig.DefaultConfig())

	if err := NewFormatHandler(ws).Execute(context.Background(), FormatCommand{Root: root, Write: true}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := readFile(t, root, "b.md"); got != canonical {
		t.Fatalf("unexpected rewritten file %q", got)
	}
	if got := readFile(t, root, "a.md"); got != formatted {
		t.Fatalf("unexpected untouched file %q", got)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output in write mode, got %q", out.String())
	}

	if err := NewFormatHandler(ws).Execute(context.Background(), FormatCommand{Root: root, Check: true}); err != nil {
		t.Fatalf("expected formatted tree to pass the check, got %v", err)
	}
}

func TestFormatPrintsExplicitPaths(t *testing.T) {
	root := writeTree(t, map[string]string{"b.md": unformatted})
	ws, out := newWorkspace(t, runtimeconfig.DefaultConfig())

	cmd := FormatCommand{Root: root, Paths: []string{"./b.md", "b.md"}}
	if err := NewFormatHandler(ws).Execute(context.Background(), cmd); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.String() != canonical {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestFormatDiff(t *testing.T) {
	root := writeTree(t, map[string]string{"b.md": unformatted})
	ws, out := newWorkspace(t, runtimeconfig.DefaultConfig())

	if err := NewFormatHandler(ws).Execute(context.Background(), FormatCommand{Root: root, Diff: true}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := "--- a/b.md\n+++ b/b.md\n@@ -1,4 +1,4 @@\n ---\n title: B\n ---\n-::video{src=a.mp4}\n+::video{src=\"a.mp4\"}\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Fatalf("diff mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatValidation(t *testing.T) {
	ws, _ := newWorkspace(t, runtimeconfig.DefaultConfig())
	h := NewFormatHandler(ws)

	cases := map[string]FormatCommand{
		"missing root":      {},
		"write and check":   {Root: ".", Write: true, Check: true},
		"path outside root": {Root: ".", Paths: []string{"../x.md"}},
		"absolute path":     {Root: ".", Paths: []string{"/tmp/x.md"}},
	}
	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			err := h.Execute(context.Background(), cmd)
			if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRender(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.md": "---\ntitle: A\n---\n:::note[Read this]\nHello\n:::\n",
	})
	cfg := runtimeconfig.DefaultConfig()
	cfg.Render.SlugIDs = true
	ws, out := newWorkspace(t, cfg)

	if err := NewRenderHandler(ws).Execute(context.Background(), RenderCommand{Root: root, Path: "a.md"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := "<div data-directive=\"note\" id=\"read-this\">\n<p data-directive-label=\"\">Read this</p>\n<p>Hello</p>\n</div>\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Fatalf("html mismatch (-want +got):\n%s", diff)
	}

	dest := filepath.Join(t.TempDir(), "a.html")
	out.Reset()
	if err := NewRenderHandler(ws).Execute(context.Background(), RenderCommand{Root: root, Path: "a.md", Output: dest}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got, _ := os.ReadFile(dest); string(got) != want || out.Len() != 0 {
		t.Fatalf("expected html in %s only, got %q", dest, got)
	}
}

func TestInspectTokensShiftPastFrontMatter(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.md": "---\nauthor:\n  name: Ada\n---\n:::note\nx\n:::\n",
	})
	ws, out := newWorkspace(t, runtimeconfig.DefaultConfig())

	cmd := InspectCommand{Root: root, Path: "a.md", Tokens: true}
	if err := NewInspectHandler(ws).Execute(context.Background(), cmd); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	var got Inspection
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if got.Path != "a.md" || got.Tree != nil {
		t.Fatalf("unexpected inspection %+v", got)
	}
	if diff := cmp.Diff(map[string]any{"author": map[string]any{"name": "Ada"}}, got.FrontMatter); diff != "" {
		t.Fatalf("front matter mismatch (-want +got):\n%s", diff)
	}
	if len(got.Tokens) != 2 {
		t.Fatalf("expected open and close tokens, got %+v", got.Tokens)
	}
	if got.Tokens[0].Kind != "containerOpen" || got.Tokens[0].Start.Line != 5 || got.Tokens[0].Start.Column != 1 {
		t.Fatalf("unexpected open token %+v", got.Tokens[0])
	}
	if got.Tokens[1].Kind != "containerClose" || got.Tokens[1].Start.Line != 7 {
		t.Fatalf("unexpected close token %+v", got.Tokens[1])
	}
}

func TestInspectTree(t *testing.T) {
	root := writeTree(t, map[string]string{"a.md": "::video{#v}\n"})
	ws, out := newWorkspace(t, runtimeconfig.DefaultConfig())

	cmd := InspectCommand{Root: root, Path: "a.md", Positions: true}
	if err := NewInspectHandler(ws).Execute(context.Background(), cmd); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	var got Inspection
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Tree == nil || len(got.Tree.Children) != 1 {
		t.Fatalf("expected one child, got %+v", got.Tree)
	}
	leaf := got.Tree.Children[0]
	if leaf.Type != "leafDirective" || leaf.Name != "video" || leaf.Attributes["id"] != "v" {
		t.Fatalf("unexpected leaf %+v", leaf)
	}
	if leaf.Position == nil || leaf.Position.Start.Line != 1 {
		t.Fatalf("expected leaf position, got %+v", leaf.Position)
	}
}

func TestCheckReportsFindingsInFileCoordinates(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.md": "::video[Intro]\n",
		"c.md": "---\nx: 1\n---\n::video\n",
	})
	cfg := runtimeconfig.DefaultConfig()
	cfg.Lint = lint.Config{Rules: map[string]lint.Rule{
		"video": {Types: []string{"leaf"}, RequireLabel: true},
	}}
	ws, out := newWorkspace(t, cfg)

	err := NewCheckHandler(ws).Execute(context.Background(), CheckCommand{Root: root})
	if !errors.Is(err, ErrLintFindings) {
		t.Fatalf("expected ErrLintFindings, got %v", err)
	}
	if out.String() != "c.md:4:1: video: missing label\n" {
		t.Fatalf("unexpected findings %q", out.String())
	}
}

func TestCheckCleanTree(t *testing.T) {
	root := writeTree(t, map[string]string{"a.md": formatted})
	ws, out := newWorkspace(t, runtimeconfig.DefaultConfig())

	if err := NewCheckHandler(ws).Execute(context.Background(), CheckCommand{Root: root}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no findings, got %q", out.String())
	}
}

func TestMissingFileFails(t *testing.T) {
	ws, _ := newWorkspace(t, runtimeconfig.DefaultConfig())
	err := NewRenderHandler(ws).Execute(context.Background(), RenderCommand{Root: t.TempDir(), Path: "nope.md"})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if !strings.Contains(err.Error(), "nope.md") {
		t.Fatalf("expected path in error, got %v", err)
	}
}

func TestNewWorkspaceRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Lint = lint.Config{Rules: map[string]lint.Rule{"9bad": {}}}
	if _, err := NewWorkspace(cfg); !errors.Is(err, lint.ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule, got %v", err)
	}
}
