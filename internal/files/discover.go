// Package files finds Markdown files and runs per-file work concurrently.
package files

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidPattern is returned for malformed glob patterns.
var ErrInvalidPattern = errors.New("files: invalid pattern")

// DefaultInclude matches Markdown files at any depth.
var DefaultInclude = []string{"**/*.md", "**/*.markdown"}

// Discover returns the sorted, de-duplicated paths in fsys matching any
// include pattern and no exclude pattern.
func Discover(fsys fs.FS, include, exclude []string) ([]string, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, pattern := range slices.Concat(include, exclude) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}
	}

	seen := map[string]struct{}{}
	var out []string
	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			if excluded(match, exclude) {
				continue
			}
			if info, err := fs.Stat(fsys, match); err != nil || info.IsDir() {
				continue
			}
			out = append(out, match)
		}
	}
	slices.Sort(out)
	return out, nil
}

func excluded(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
