package syntax

import (
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-directive/ast"
)

// ScanName returns the directive name at the start of b.
func ScanName(b []byte) (string, int, bool) {
	n := ast.NameLength(b)
	if n == 0 {
		return "", 0, false
	}
	return string(b[:n]), n, true
}

// ScanLabel matches a bracketed label at the start of b. Brackets nest,
// backslash escapes are honoured, and a label never crosses a line ending.
// start and stop delimit the label content relative to b; n is the number
// of bytes consumed including both brackets.
func ScanLabel(b []byte) (start, stop, n int, ok bool) {
	if len(b) == 0 || b[0] != '[' {
		return 0, 0, 0, false
	}
	depth := 0
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case '\\':
			if i+1 < len(b) && util.IsPunct(b[i+1]) {
				i++
			}
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return 1, i, i + 1, true
			}
		case '\n', '\r':
			return 0, 0, 0, false
		}
	}
	return 0, 0, 0, false
}

// ScanAttributes matches a brace-delimited attribute list at the start of b.
// Any malformed item rejects the whole list.
func ScanAttributes(b []byte) ([]Attribute, int, bool) {
	if len(b) == 0 || b[0] != '{' {
		return nil, 0, false
	}
	attrs := []Attribute{}
	i := 1
	for {
		i = skipSpace(b, i)
		if i >= len(b) || isLineEnd(b[i]) {
			return nil, 0, false
		}
		c := b[i]
		switch {
		case c == '}':
			return attrs, i + 1, true
		case c == '#' || c == '.':
			j := i + 1
			for j < len(b) && isShorthandByte(b[j]) {
				j++
			}
			if j == i+1 {
				return nil, 0, false
			}
			key := "id"
			if c == '.' {
				key = "class"
			}
			attrs = append(attrs, Attribute{Key: key, Value: decode(b[i+1 : j])})
			i = j
		case isAttrNameStart(c):
			j := i + 1
			for j < len(b) && isAttrNameByte(b[j]) {
				j++
			}
			key := string(b[i:j])
			k := skipSpace(b, j)
			if k >= len(b) || b[k] != '=' {
				attrs = append(attrs, Attribute{Key: key})
				i = j
				break
			}
			value, next, ok := scanValue(b, skipSpace(b, k+1))
			if !ok {
				return nil, 0, false
			}
			attrs = append(attrs, Attribute{Key: key, Value: value})
			i = next
		default:
			return nil, 0, false
		}
		if i < len(b) && !isSpace(b[i]) && b[i] != '}' && b[i] != '#' && b[i] != '.' {
			return nil, 0, false
		}
	}
}

func scanValue(b []byte, i int) (string, int, bool) {
	if i >= len(b) {
		return "", 0, false
	}
	switch q := b[i]; q {
	case '"', '\'':
		for j := i + 1; j < len(b); j++ {
			if isLineEnd(b[j]) {
				return "", 0, false
			}
			if b[j] == q {
				return decode(b[i+1 : j]), j + 1, true
			}
		}
		return "", 0, false
	}
	j := i
	for j < len(b) && isUnquotedByte(b[j]) {
		j++
	}
	if j == i {
		return "", 0, false
	}
	return decode(b[i:j]), j, true
}

// scanHead matches name, label and attributes. base is the absolute offset
// of b[0]; the label segment is stored as absolute offsets.
func scanHead(b []byte, base int, tok *Token) (int, bool) {
	name, i, ok := ScanName(b)
	if !ok {
		return 0, false
	}
	tok.Name = name
	if i < len(b) && b[i] == '[' {
		start, stop, n, ok := ScanLabel(b[i:])
		if !ok {
			return 0, false
		}
		tok.Label = text.NewSegment(base+i+start, base+i+stop)
		tok.HasLabel = true
		i += n
	}
	if i < len(b) && b[i] == '{' {
		attrs, n, ok := ScanAttributes(b[i:])
		if !ok {
			return 0, false
		}
		tok.Attributes = attrs
		i += n
	}
	return i, true
}

func decode(v []byte) string {
	return string(util.ResolveEntityNames(util.ResolveNumericReferences(v)))
}

func skipSpace(b []byte, i int) int {
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' }

func isLineEnd(c byte) bool { return c == '\n' || c == '\r' }

func isAttrNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == ':'
}

func isAttrNameByte(c byte) bool {
	return isAttrNameStart(c) || (c >= '0' && c <= '9') || c == '-' || c == '.'
}

func isUnquotedByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '"', '\'', '<', '=', '>', '`', '}':
		return false
	}
	return true
}

func isShorthandByte(c byte) bool {
	return isUnquotedByte(c) && c != '#' && c != '.' && c != '{'
}

// IsShorthandValue reports whether v can be written as `#v` or `.v`.
func IsShorthandValue(v string) bool {
	if v == "" {
		return false
	}
	for i := 0; i < len(v); i++ {
		if !isShorthandByte(v[i]) || v[i] == '&' {
			return false
		}
	}
	return true
}

// IsAttributeKey reports whether key can be written as an attribute name.
func IsAttributeKey(key string) bool {
	if key == "" || !isAttrNameStart(key[0]) {
		return false
	}
	for i := 1; i < len(key); i++ {
		if !isAttrNameByte(key[i]) {
			return false
		}
	}
	return true
}
