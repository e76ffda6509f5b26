package mdwriter

import (
	"strconv"
	"strings"

	gast "github.com/yuin/goldmark/ast"
)

func registerCommonMark(w *Writer) {
	w.handlers[gast.KindDocument] = document
	w.handlers[gast.KindParagraph] = paragraph
	w.handlers[gast.KindTextBlock] = paragraph
	w.handlers[gast.KindHeading] = heading
	w.handlers[gast.KindThematicBreak] = thematicBreak
	w.handlers[gast.KindCodeBlock] = codeBlock
	w.handlers[gast.KindFencedCodeBlock] = fencedCodeBlock
	w.handlers[gast.KindBlockquote] = blockquote
	w.handlers[gast.KindList] = list
	w.handlers[gast.KindListItem] = listItem
	w.handlers[gast.KindHTMLBlock] = htmlBlock

	w.handlers[gast.KindText] = textNode
	w.handlers[gast.KindString] = stringNode
	w.handlers[gast.KindCodeSpan] = codeSpan
	w.handlers[gast.KindEmphasis] = emphasis
	w.handlers[gast.KindLink] = link
	w.handlers[gast.KindImage] = image
	w.handlers[gast.KindAutoLink] = autoLink
	w.handlers[gast.KindRawHTML] = rawHTML
}

func document(s *State, n gast.Node) (string, error) {
	return s.Flow(n, "\n\n")
}

func paragraph(s *State, n gast.Node) (string, error) {
	return s.Block(n)
}

func heading(s *State, n gast.Node) (string, error) {
	h := n.(*gast.Heading)
	exit := s.Enter(ConstructHeading)
	defer exit()
	s.atBreak = false
	s.before = ' '
	content, err := s.Phrasing(n)
	if err != nil {
		return "", err
	}
	content = strings.TrimRight(content, "\n")
	prefix := strings.Repeat("#", h.Level)
	if content == "" {
		return prefix, nil
	}
	return prefix + " " + content, nil
}

func thematicBreak(s *State, n gast.Node) (string, error) {
	return "***", nil
}

func linesOf(s *State, n gast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(s.Source))
	}
	return b.String()
}

// fence picks a fence of c longer than any run of c in content.
func fence(content string, c byte) string {
	return strings.Repeat(string(c), max(3, LongestRun(content, c)+1))
}

// codeBlock keeps indented code indented. After a list the indent would
// continue the last item, so a fence is used there.
func codeBlock(s *State, n gast.Node) (string, error) {
	content := strings.TrimSuffix(linesOf(s, n), "\n")
	if content != "" && !followsList(n) {
		lines := strings.Split(content, "\n")
		for i, line := range lines {
			if line != "" {
				lines[i] = "    " + line
			}
		}
		return strings.Join(lines, "\n"), nil
	}
	f := fence(content, '`')
	if content == "" {
		return f + "\n" + f, nil
	}
	return f + "\n" + content + "\n" + f, nil
}

func followsList(n gast.Node) bool {
	prev := n.PreviousSibling()
	for prev != nil && isEmptyBlock(prev) {
		prev = prev.PreviousSibling()
	}
	return prev != nil && prev.Kind() == gast.KindList
}

// isEmptyBlock reports whether n is a paragraph or text block with no
// content.
func isEmptyBlock(n gast.Node) bool {
	switch n.Kind() {
	case gast.KindParagraph, gast.KindTextBlock:
		return !n.HasChildren() && n.Lines().Len() == 0
	}
	return false
}

func fencedCodeBlock(s *State, n gast.Node) (string, error) {
	code := n.(*gast.FencedCodeBlock)
	content := strings.TrimSuffix(linesOf(s, n), "\n")
	info := ""
	if code.Info != nil {
		info = string(code.Info.Segment.Value(s.Source))
	}
	c := byte('`')
	if strings.ContainsRune(info, '`') {
		c = '~'
	}
	f := fence(content, c)
	if content == "" {
		return f + info + "\n" + f, nil
	}
	return f + info + "\n" + content + "\n" + f, nil
}

func blockquote(s *State, n gast.Node) (string, error) {
	exit := s.Enter(ConstructQuote)
	defer exit()
	content, err := s.Flow(n, "\n\n")
	if err != nil {
		return "", err
	}
	if content == "" {
		return ">", nil
	}
	return Indent(content, "> ", "> "), nil
}

func list(s *State, n gast.Node) (string, error) {
	l := n.(*gast.List)
	exit := s.Enter(ConstructList)
	defer exit()
	sep := "\n\n"
	if l.IsTight {
		sep = "\n"
	}
	var items []string
	i := 0
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		marker := string(l.Marker)
		if l.IsOrdered() {
			marker = strconv.Itoa(l.Start+i) + marker
		}
		s.atBreak = true
		s.before = 0
		content, err := s.Node(c)
		if err != nil {
			return "", err
		}
		if content == "" {
			items = append(items, marker)
		} else {
			pad := strings.Repeat(" ", len(marker)+1)
			items = append(items, Indent(content, marker+" ", pad))
		}
		i++
	}
	return strings.Join(items, sep), nil
}

func listItem(s *State, n gast.Node) (string, error) {
	sep := "\n\n"
	if l, ok := n.Parent().(*gast.List); ok && l.IsTight {
		sep = "\n"
	}
	return s.Flow(n, sep)
}

func htmlBlock(s *State, n gast.Node) (string, error) {
	h := n.(*gast.HTMLBlock)
	content := linesOf(s, n)
	if h.HasClosure() {
		content += string(h.ClosureLine.Value(s.Source))
	}
	return strings.TrimRight(content, "\n"), nil
}
