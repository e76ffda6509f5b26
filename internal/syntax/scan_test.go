package syntax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScanAttributes(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []Attribute
		n     int
		ok    bool
	}{
		{name: "empty", input: "{}", want: []Attribute{}, n: 2, ok: true},
		{name: "shorthands", input: "{#a .b .c}", want: []Attribute{{"id", "a"}, {"class", "b"}, {"class", "c"}}, n: 10, ok: true},
		{name: "adjacent shorthands", input: "{.a.b}", want: []Attribute{{"class", "a"}, {"class", "b"}}, n: 6, ok: true},
		{name: "quoted", input: `{title="a b" x='y'}`, want: []Attribute{{"title", "a b"}, {"x", "y"}}, n: 19, ok: true},
		{name: "unquoted", input: "{k=v}", want: []Attribute{{"k", "v"}}, n: 5, ok: true},
		{name: "bare key", input: "{hidden}", want: []Attribute{{"hidden", ""}}, n: 8, ok: true},
		{name: "entities", input: `{t="&quot;x&amp;&#65;"}`, want: []Attribute{{"t", `"x&A`}}, n: 23, ok: true},
		{name: "trailing text", input: "{a} tail", want: []Attribute{{"a", ""}}, n: 3, ok: true},
		{name: "unterminated", input: "{a=b", ok: false},
		{name: "unterminated quote", input: `{a="b}`, ok: false},
		{name: "empty shorthand", input: "{#}", ok: false},
		{name: "bad key", input: "{=x}", ok: false},
		{name: "line break", input: "{a\n}", ok: false},
		{name: "missing value", input: "{a=}", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, n, ok := ScanAttributes([]byte(tc.input))
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if !ok {
				return
			}
			if n != tc.n {
				t.Fatalf("consumed %d, want %d", n, tc.n)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("attributes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanLabel(t *testing.T) {
	cases := []struct {
		input string
		inner string
		ok    bool
	}{
		{"[Hi]", "Hi", true},
		{"[ spaced ]", " spaced ", true},
		{"[a [b] c]rest", "a [b] c", true},
		{`[a \] b]`, `a \] b`, true},
		{"[open", "", false},
		{"[a\nb]", "", false},
		{"nolabel", "", false},
	}
	for _, tc := range cases {
		start, stop, _, ok := ScanLabel([]byte(tc.input))
		if ok != tc.ok {
			t.Fatalf("ScanLabel(%q) ok = %v, want %v", tc.input, ok, tc.ok)
		}
		if ok && tc.input[start:stop] != tc.inner {
			t.Fatalf("ScanLabel(%q) = %q, want %q", tc.input, tc.input[start:stop], tc.inner)
		}
	}
}

func TestScanContainerOpen(t *testing.T) {
	tok, ok := ScanContainerOpen([]byte("::::note[Title]{.warn}  \n"), 10)
	if !ok {
		t.Fatalf("expected container open")
	}
	if tok.Name != "note" || tok.Fence != 4 || !tok.HasLabel {
		t.Fatalf("unexpected token %+v", tok)
	}
	if tok.Label.Start != 19 || tok.Label.Stop != 24 {
		t.Fatalf("unexpected label segment %+v", tok.Label)
	}
	if tok.Start != 10 || tok.Stop != 32 {
		t.Fatalf("unexpected bounds %d-%d", tok.Start, tok.Stop)
	}
	if got := tok.Attrs().Value("class"); got != "warn" {
		t.Fatalf("expected class warn, got %q", got)
	}

	for _, line := range []string{
		"::note\n",
		"::: note\n",
		":::note trailing\n",
		":::1x\n",
		"    :::note\n",
		":::note{a=}\n",
	} {
		if _, ok := ScanContainerOpen([]byte(line), 0); ok {
			t.Fatalf("expected %q not to open a container", line)
		}
	}
}

func TestScanContainerClose(t *testing.T) {
	if _, ok := ScanContainerClose([]byte(":::\n"), 0, 3, 0); !ok {
		t.Fatalf("expected close")
	}
	if _, ok := ScanContainerClose([]byte("::::: \n"), 0, 3, 0); !ok {
		t.Fatalf("expected longer fence to close")
	}
	if _, ok := ScanContainerClose([]byte(":::\n"), 0, 4, 0); ok {
		t.Fatalf("shorter fence must not close")
	}
	if _, ok := ScanContainerClose([]byte(":::x\n"), 0, 3, 0); ok {
		t.Fatalf("fence followed by text must not close")
	}
	if _, ok := ScanContainerClose([]byte("  :::\n"), 0, 3, 0); ok {
		t.Fatalf("deeper indentation must not close")
	}
	if _, ok := ScanContainerClose([]byte("  :::\n"), 0, 3, 2); !ok {
		t.Fatalf("same indentation must close")
	}
}

func TestScanLeaf(t *testing.T) {
	tok, ok := ScanLeaf([]byte("::note[Hi]{.warn}\n"), 0)
	if !ok || tok.Kind != KindLeaf || tok.Name != "note" {
		t.Fatalf("unexpected leaf %+v ok=%v", tok, ok)
	}
	if _, ok := ScanLeaf([]byte("::name"), 0); !ok {
		t.Fatalf("bare leaf must match")
	}
	for _, line := range []string{":::note\n", ":note\n", "::note text\n", ":: note\n"} {
		if _, ok := ScanLeaf([]byte(line), 0); ok {
			t.Fatalf("expected %q not to be a leaf", line)
		}
	}
}

func TestScanText(t *testing.T) {
	tok, ok := ScanText([]byte(":b[c]{#d} e"), 2)
	if !ok {
		t.Fatalf("expected text directive")
	}
	if tok.Start != 2 || tok.Stop != 11 {
		t.Fatalf("unexpected bounds %d-%d", tok.Start, tok.Stop)
	}
	if tok.Attrs().Value("id") != "d" {
		t.Fatalf("expected id d")
	}
	if tok, ok := ScanText([]byte(":name."), 0); !ok || tok.Stop != 5 {
		t.Fatalf("expected name-only directive, got %+v ok=%v", tok, ok)
	}
	for _, in := range []string{"::b", ":", ": b", ":b[c", ":b{x"} {
		if _, ok := ScanText([]byte(in), 0); ok {
			t.Fatalf("expected %q not to match", in)
		}
	}
}

func TestFoldAttributes(t *testing.T) {
	attrs := FoldAttributes([]Attribute{{"id", "a"}, {"class", "x"}, {"id", "b"}, {"class", "y"}})
	if attrs.Value("id") != "b" || attrs.Value("class") != "x y" {
		t.Fatalf("unexpected fold %s", attrs)
	}
	if diff := cmp.Diff([]string{"id", "class"}, attrs.Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestLineIndexPosition(t *testing.T) {
	idx := NewLineIndex([]byte("ab\ncé:x\n"))
	pos := idx.Position(6)
	if pos.Line != 2 || pos.Column != 3 {
		t.Fatalf("unexpected position %s", pos)
	}
	if got := idx.Position(100).Offset; got != 9 {
		t.Fatalf("expected clamp to source length, got %d", got)
	}
}
