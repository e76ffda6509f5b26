package files

import "github.com/bmatcuk/doublestar/v4"

// Match reports whether the slash-separated path matches an include pattern
// and no exclude pattern. Empty include selects DefaultInclude.
func Match(path string, include, exclude []string) bool {
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, pattern := range include {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return !excluded(path, exclude)
		}
	}
	return false
}
