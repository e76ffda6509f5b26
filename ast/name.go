package ast

import "errors"

// ErrInvalidName is returned when a directive name does not match the
// identifier grammar.
var ErrInvalidName = errors.New("directive: invalid name")

// NameLength returns the length of the directive name at the start of b, or
// zero when b does not start with a valid name. A name starts with an ASCII
// letter, continues with letters, digits, '-' or '_', and does not end with
// '-' or '_'. The whole run of name bytes is considered, so "a-" is not
// shortened to "a".
func NameLength(b []byte) int {
	if len(b) == 0 || !isASCIIAlpha(b[0]) {
		return 0
	}
	i := 1
	for i < len(b) && IsNameByte(b[i]) {
		i++
	}
	if last := b[i-1]; last == '-' || last == '_' {
		return 0
	}
	return i
}

// ValidName reports whether name matches the identifier grammar in full.
func ValidName(name string) bool {
	return name != "" && NameLength([]byte(name)) == len(name)
}

func isASCIIAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// IsNameByte reports whether c may appear after the first byte of a name.
func IsNameByte(c byte) bool {
	return isASCIIAlpha(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}
