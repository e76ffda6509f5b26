package mdwriter

import (
	"bytes"
	"strings"

	gast "github.com/yuin/goldmark/ast"
)

// endsBlock reports whether n is the last inline of its block, so a line
// break after it would not be one.
func endsBlock(n gast.Node) bool {
	for c := n; c != nil; c = c.Parent() {
		if c.NextSibling() != nil {
			return false
		}
		if p := c.Parent(); p == nil || p.Type() == gast.TypeBlock {
			return true
		}
	}
	return true
}

func lineBreak(s *State, n gast.Node, soft, hard bool) string {
	if (!soft && !hard) || endsBlock(n) {
		return ""
	}
	if s.In(ConstructHeading) || s.In(ConstructTableCell) {
		return " "
	}
	if hard {
		return "\\\n"
	}
	return "\n"
}

func textNode(s *State, n gast.Node) (string, error) {
	t := n.(*gast.Text)
	value := string(t.Segment.Value(s.Source))
	return value + lineBreak(s, n, t.SoftLineBreak(), t.HardLineBreak()), nil
}

func stringNode(s *State, n gast.Node) (string, error) {
	str := n.(*gast.String)
	if str.IsRaw() || str.IsCode() {
		return string(str.Value), nil
	}
	return s.Safe(string(str.Value)), nil
}

func inlineText(s *State, n gast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *gast.Text:
			b.Write(v.Segment.Value(s.Source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gast.String:
			b.Write(v.Value)
		}
	}
	return b.String()
}

func codeSpan(s *State, n gast.Node) (string, error) {
	value := inlineText(s, n)
	f := strings.Repeat("`", LongestRun(value, '`')+1)
	pad := ""
	if value != "" && (value[0] == '`' || value[len(value)-1] == '`' ||
		(value[0] == ' ' && value[len(value)-1] == ' ' && strings.Trim(value, " ") != "")) {
		pad = " "
	}
	return f + pad + value + pad + f, nil
}

// emphasisMarker reuses the delimiter found in the source when there is one.
func emphasisMarker(s *State, n gast.Node) byte {
	if t, ok := n.FirstChild().(*gast.Text); ok {
		if start := t.Segment.Start; start > 0 && start <= len(s.Source) {
			if c := s.Source[start-1]; c == '_' || c == '*' {
				return c
			}
		}
	}
	return '*'
}

func emphasis(s *State, n gast.Node) (string, error) {
	e := n.(*gast.Emphasis)
	marker := strings.Repeat(string(emphasisMarker(s, n)), e.Level)
	content, err := s.Inline(n, marker[0])
	if err != nil {
		return "", err
	}
	return marker + content + marker, nil
}

func label(s *State, n gast.Node) (string, error) {
	exit := s.Enter(ConstructLabel)
	defer exit()
	return s.Inline(n, '[')
}

func destination(dest []byte) string {
	if len(dest) == 0 {
		return "<>"
	}
	if bytes.ContainsAny(dest, " \t\n<>") || bytes.Count(dest, []byte("(")) != bytes.Count(dest, []byte(")")) {
		escaped := strings.NewReplacer("<", `\<`, ">", `\>`).Replace(string(dest))
		return "<" + escaped + ">"
	}
	return string(dest)
}

func title(t []byte) string {
	if len(t) == 0 {
		return ""
	}
	switch {
	case !bytes.ContainsRune(t, '"'):
		return ` "` + string(t) + `"`
	case !bytes.ContainsRune(t, '\''):
		return ` '` + string(t) + `'`
	default:
		return ` "` + strings.ReplaceAll(string(t), `"`, `\"`) + `"`
	}
}

func link(s *State, n gast.Node) (string, error) {
	l := n.(*gast.Link)
	content, err := label(s, n)
	if err != nil {
		return "", err
	}
	return "[" + content + "](" + destination(l.Destination) + title(l.Title) + ")", nil
}

func image(s *State, n gast.Node) (string, error) {
	img := n.(*gast.Image)
	content, err := label(s, n)
	if err != nil {
		return "", err
	}
	return "![" + content + "](" + destination(img.Destination) + title(img.Title) + ")", nil
}

func autoLink(s *State, n gast.Node) (string, error) {
	a := n.(*gast.AutoLink)
	value := string(a.Label(s.Source))
	if a.AutoLinkType == gast.AutoLinkEmail || strings.Contains(value, ":") {
		return "<" + value + ">", nil
	}
	return value, nil
}

func rawHTML(s *State, n gast.Node) (string, error) {
	r := n.(*gast.RawHTML)
	var b strings.Builder
	for i := 0; i < r.Segments.Len(); i++ {
		seg := r.Segments.At(i)
		b.Write(seg.Value(s.Source))
	}
	return b.String(), nil
}
