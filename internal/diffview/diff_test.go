package diffview

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteSingleHunk(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, "docs/a.md", []byte("a\nb\nc\n"), []byte("a\nB\nc\n"), Options{})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "--- a/docs/a.md\n+++ b/docs/a.md\n@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n"
	if buf.String() != want {
		t.Fatalf("unexpected diff:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteEqualInputsIsSilent(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "a.md", []byte("x\n"), []byte("x\n"), Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestWriteSplitsDistantChanges(t *testing.T) {
	var before, after strings.Builder
	for i := range 20 {
		line := string(rune('a'+i)) + "\n"
		before.WriteString(line)
		switch i {
		case 1, 17:
			after.WriteString(strings.ToUpper(line))
		default:
			after.WriteString(line)
		}
	}

	var buf bytes.Buffer
	if err := Write(&buf, "a.md", []byte(before.String()), []byte(after.String()), Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if n := strings.Count(out, "@@ -"); n != 2 {
		t.Fatalf("expected two hunks, got %d:\n%s", n, out)
	}
	if !strings.Contains(out, "@@ -1,5 +1,5 @@\n") || !strings.Contains(out, "@@ -15,6 +15,6 @@\n") {
		t.Fatalf("unexpected hunk headers:\n%s", out)
	}
}

func TestWriteMissingTrailingNewline(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "a.md", []byte("a"), []byte("a\n"), Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "-a\n\\ No newline at end of file\n+a\n") {
		t.Fatalf("unexpected diff:\n%s", buf.String())
	}
}

func TestWriteColor(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "a.md", []byte("a\n"), []byte("b\n"), Options{Color: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[31m-a\n") {
		t.Fatalf("expected red deletion, got %q", buf.String())
	}
}
