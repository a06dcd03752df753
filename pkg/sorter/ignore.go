package sorter

import (
	"path/filepath"
	"strings"
)

// shouldIgnore reports whether a base name matches one of the ignore patterns.
// Patterns support:
//   - Glob patterns: *.part, *.crdownload, .~*
//   - Bare suffixes: .tmp (case-insensitive)
func shouldIgnore(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	lower := strings.ToLower(name)
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}

		if strings.HasPrefix(pattern, ".") && !strings.ContainsAny(pattern, "*?[") {
			if strings.HasSuffix(lower, strings.ToLower(pattern)) {
				return true
			}
		}
	}

	return false
}
