package mdwriter

import (
	"strings"

	gast "github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

func registerGFM(w *Writer) {
	w.handlers[east.KindTable] = table
	w.handlers[east.KindStrikethrough] = strikethrough
	w.handlers[east.KindTaskCheckBox] = taskCheckBox
}

func strikethrough(s *State, n gast.Node) (string, error) {
	content, err := s.Inline(n, '~')
	if err != nil {
		return "", err
	}
	return "~~" + content + "~~", nil
}

func taskCheckBox(s *State, n gast.Node) (string, error) {
	if n.(*east.TaskCheckBox).IsChecked {
		return "[x] ", nil
	}
	return "[ ] ", nil
}

func alignmentRule(a east.Alignment) string {
	switch a {
	case east.AlignLeft:
		return ":---"
	case east.AlignRight:
		return "---:"
	case east.AlignCenter:
		return ":---:"
	default:
		return "---"
	}
}

func tableRow(s *State, row gast.Node) (string, error) {
	exit := s.Enter(ConstructTableCell)
	defer exit()
	var cells []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		content, err := s.Inline(c, ' ')
		if err != nil {
			return "", err
		}
		cells = append(cells, strings.TrimSpace(content))
	}
	return "| " + strings.Join(cells, " | ") + " |", nil
}

// table writes rows through tableRow; header, rows and cells never reach
// the handler table on their own.
func table(s *State, n gast.Node) (string, error) {
	t := n.(*east.Table)
	var lines []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		line, err := tableRow(s, c)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
		if c.Kind() == east.KindTableHeader {
			rules := make([]string, len(t.Alignments))
			for i, a := range t.Alignments {
				rules[i] = alignmentRule(a)
			}
			lines = append(lines, "| "+strings.Join(rules, " | ")+" |")
		}
	}
	return strings.Join(lines, "\n"), nil
}
