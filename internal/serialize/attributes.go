// Package serialize writes directive nodes back to Markdown through the
// mdwriter handler table.
package serialize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-directive/ast"
	"github.com/goliatone/go-directive/internal/syntax"
)

// ErrInvalidAttributeKey is returned for keys the attribute grammar cannot
// express.
var ErrInvalidAttributeKey = errors.New("serialize: invalid attribute key")

var valueEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"\n", "&#xA;",
	"\r", "&#xD;",
)

// Attributes renders attrs as a brace list in insertion order. The empty
// mapping renders as the empty string.
func Attributes(attrs ast.Attributes) (string, error) {
	if attrs.Len() == 0 {
		return "", nil
	}
	parts := make([]string, 0, attrs.Len())
	for key, value := range attrs.All() {
		switch {
		case key == "id" && syntax.IsShorthandValue(value):
			parts = append(parts, "#"+value)
		case key == "class" && classShorthand(value) != "":
			parts = append(parts, classShorthand(value))
		case !syntax.IsAttributeKey(key):
			return "", fmt.Errorf("%w: %q", ErrInvalidAttributeKey, key)
		case value == "":
			parts = append(parts, key)
		default:
			parts = append(parts, key+`="`+valueEscaper.Replace(value)+`"`)
		}
	}
	return "{" + strings.Join(parts, " ") + "}", nil
}

// classShorthand returns `.a.b` for the class value "a b", or "" when the
// value cannot be written with shorthands and still parse back to itself.
func classShorthand(value string) string {
	names := strings.Split(value, " ")
	var b strings.Builder
	for _, name := range names {
		if !syntax.IsShorthandValue(name) {
			return ""
		}
		b.WriteByte('.')
		b.WriteString(name)
	}
	return b.String()
}
