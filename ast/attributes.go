package ast

import (
	"iter"
	"strings"
)

// Attributes is an ordered mapping from attribute key to string value. The
// zero value is an empty mapping ready to use. Keys keep the position of
// their first insertion; assigning an existing key replaces the value.
type Attributes struct {
	keys   []string
	values map[string]string
}

// NewAttributes builds an attribute mapping from alternating key/value pairs.
// A trailing key without a value is stored with an empty value.
func NewAttributes(pairs ...string) Attributes {
	var attrs Attributes
	for i := 0; i < len(pairs); i += 2 {
		value := ""
		if i+1 < len(pairs) {
			value = pairs[i+1]
		}
		attrs.Set(pairs[i], value)
	}
	return attrs
}

// Set assigns value to key.
func (a *Attributes) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// AppendClass adds a class name to the space-joined class value.
func (a *Attributes) AppendClass(name string) {
	current, ok := a.Get("class")
	if !ok || current == "" {
		a.Set("class", name)
		return
	}
	a.Set("class", current+" "+name)
}

// Get returns the value stored for key.
func (a Attributes) Get(key string) (string, bool) {
	value, ok := a.values[key]
	return value, ok
}

// Value returns the value stored for key or the empty string.
func (a Attributes) Value(key string) string {
	return a.values[key]
}

// Has reports whether key is present.
func (a Attributes) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Delete removes key. Deleting a missing key is a no-op.
func (a *Attributes) Delete(key string) {
	if _, ok := a.values[key]; !ok {
		return
	}
	delete(a.values, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys.
func (a Attributes) Len() int {
	return len(a.keys)
}

// Keys returns the keys in insertion order.
func (a Attributes) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// All iterates over key/value pairs in insertion order.
func (a Attributes) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, key := range a.keys {
			if !yield(key, a.values[key]) {
				return
			}
		}
	}
}

// Map returns an unordered copy of the mapping. It never returns nil.
func (a Attributes) Map() map[string]string {
	out := make(map[string]string, len(a.keys))
	for key, value := range a.values {
		out[key] = value
	}
	return out
}

// Clone returns an independent copy.
func (a Attributes) Clone() Attributes {
	var out Attributes
	for key, value := range a.All() {
		out.Set(key, value)
	}
	return out
}

// Equal reports whether both mappings hold the same keys and values. Key
// order is not compared.
func (a Attributes) Equal(other Attributes) bool {
	if a.Len() != other.Len() {
		return false
	}
	for key, value := range a.All() {
		if got, ok := other.Get(key); !ok || got != value {
			return false
		}
	}
	return true
}

// String renders the mapping in a debug-friendly form.
func (a Attributes) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for key, value := range a.All() {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		b.WriteString(key)
		b.WriteString(`="`)
		b.WriteString(value)
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}
