package filter

import "github.com/bmatcuk/doublestar/v4"

// matchesGlobs applies include/exclude glob gating on top of the
// extension-based destination rule: a path must match no exclude glob,
// and must match at least one include glob whenever any are configured.
func matchesGlobs(relativePath string, includeGlobs, excludeGlobs []string) bool {
	for _, pattern := range excludeGlobs {
		if ok, _ := doublestar.Match(pattern, relativePath); ok {
			return false
		}
	}
	if len(includeGlobs) == 0 {
		return true
	}
	for _, pattern := range includeGlobs {
		if ok, _ := doublestar.Match(pattern, relativePath); ok {
			return true
		}
	}
	return false
}
