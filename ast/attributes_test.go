package ast

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAttributes_ZeroValueIsEmpty(t *testing.T) {
	var attrs Attributes
	if attrs.Len() != 0 {
		t.Fatalf("expected empty mapping, got %d keys", attrs.Len())
	}
	if m := attrs.Map(); m == nil || len(m) != 0 {
		t.Fatalf("expected empty non-nil map, got %#v", m)
	}
	if _, ok := attrs.Get("id"); ok {
		t.Fatalf("expected missing key")
	}
}

func TestAttributes_SetKeepsFirstPositionLastValue(t *testing.T) {
	attrs := NewAttributes("a", "1", "b", "2")
	attrs.Set("a", "3")

	if diff := cmp.Diff([]string{"a", "b"}, attrs.Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
	if got := attrs.Value("a"); got != "3" {
		t.Fatalf("expected last value to win, got %q", got)
	}
}

func TestAttributes_AppendClass(t *testing.T) {
	var attrs Attributes
	attrs.AppendClass("a")
	attrs.AppendClass("b")
	if got := attrs.Value("class"); got != "a b" {
		t.Fatalf("expected space-joined class, got %q", got)
	}
}

func TestAttributes_DeleteAndEqual(t *testing.T) {
	attrs := NewAttributes("id", "x", "class", "y", "k", "v")
	attrs.Delete("class")
	attrs.Delete("missing")

	want := NewAttributes("k", "v", "id", "x")
	if !attrs.Equal(want) {
		t.Fatalf("expected %s to equal %s", attrs, want)
	}
	if diff := cmp.Diff([]string{"id", "k"}, attrs.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestAttributes_CloneIsIndependent(t *testing.T) {
	attrs := NewAttributes("id", "x")
	clone := attrs.Clone()
	clone.Set("id", "y")
	if attrs.Value("id") != "x" {
		t.Fatalf("clone mutated the original")
	}
}

func TestValidName(t *testing.T) {
	cases := map[string]bool{
		"note":     true,
		"a":        true,
		"a-b_c9":   true,
		"":         false,
		"9lives":   false,
		"-x":       false,
		"a-":       false,
		"a_":       false,
		"with sp":  false,
		"ünicode":  false,
		"CamelOK1": true,
	}
	for name, want := range cases {
		if got := ValidName(name); got != want {
			t.Errorf("ValidName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNewDirectiveRejectsInvalidName(t *testing.T) {
	if _, err := NewLeafDirective("1x", Attributes{}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	node, err := NewContainerDirective("note", NewAttributes("class", "warn"))
	if err != nil {
		t.Fatalf("NewContainerDirective: %v", err)
	}
	if node.Fence != 3 || !node.Closed {
		t.Fatalf("unexpected container defaults: fence=%d closed=%v", node.Fence, node.Closed)
	}
	if node.DirectiveAttributes().Value("class") != "warn" {
		t.Fatalf("attributes not stored")
	}
}

func TestContainerSetLabel(t *testing.T) {
	node, err := NewContainerDirective("note", Attributes{})
	if err != nil {
		t.Fatalf("NewContainerDirective: %v", err)
	}
	node.AppendChild(node, NewDirectiveLabel())
	if node.Label() == nil {
		t.Fatalf("expected label")
	}
	node.SetLabel(nil)
	if node.Label() != nil || node.ChildCount() != 0 {
		t.Fatalf("expected label removed")
	}
}
