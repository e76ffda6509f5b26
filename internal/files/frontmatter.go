package files

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// Source is a Markdown file split into its front matter block and body.
type Source struct {
	// FrontMatter is the raw block including its delimiters, or nil.
	FrontMatter []byte
	// Meta is the decoded front matter.
	Meta map[string]any
	Body []byte
}

// Split separates the front matter from the Markdown body. Files without
// front matter have a nil FrontMatter and the whole input as Body.
func Split(source []byte) (Source, error) {
	meta := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return Source{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	out := Source{Meta: normalize(meta).(map[string]any), Body: source}
	if len(body) < len(source) && bytes.HasSuffix(source, body) {
		split := len(source) - len(body)
		out.FrontMatter = source[:split:split]
		out.Body = source[split:]
	}
	return out, nil
}

// Join reassembles a file from front matter and a body.
func (s Source) Join(body []byte) []byte {
	if len(s.FrontMatter) == 0 {
		return body
	}
	out := make([]byte, 0, len(s.FrontMatter)+len(body)+1)
	out = append(out, s.FrontMatter...)
	if out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return append(out, body...)
}

// normalize turns the map[any]any values produced by the YAML decoder into
// map[string]any so the metadata can be encoded as JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
