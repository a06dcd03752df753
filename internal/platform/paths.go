package platform

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrInvalidWatchRoot is returned when the supplied directory cannot be watched
var ErrInvalidWatchRoot = errors.New("invalid watch root")

// NormalizePath cleans a user-supplied path, stripping surrounding quotes
// left over from copy/paste out of a file manager
func NormalizePath(path string) string {
	trimmed := strings.TrimSpace(path)
	trimmed = strings.Trim(trimmed, `"'`)
	if trimmed == "" {
		return ""
	}

	normalized := filepath.Clean(trimmed)

	// On Windows, ensure UNC paths are preserved
	if runtime.GOOS == "windows" {
		if strings.HasPrefix(trimmed, `\\`) && !strings.HasPrefix(normalized, `\\`) {
			normalized = `\\` + normalized
		}
	}

	return normalized
}

// ResolveWatchRoot validates path and returns its absolute form.
// Failures wrap ErrInvalidWatchRoot.
func ResolveWatchRoot(path string) (string, error) {
	normalized := NormalizePath(path)
	if err := ValidatePath(normalized); err != nil {
		return "", errors.Join(ErrInvalidWatchRoot, err)
	}

	abs, err := filepath.Abs(normalized)
	if err != nil {
		return "", errors.Join(ErrInvalidWatchRoot, &PathError{Path: path, Message: err.Error()})
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return "", errors.Join(ErrInvalidWatchRoot, &PathError{Path: abs, Message: "path does not exist"})
	}
	if err != nil {
		return "", errors.Join(ErrInvalidWatchRoot, &PathError{Path: abs, Message: err.Error()})
	}
	if !info.IsDir() {
		return "", errors.Join(ErrInvalidWatchRoot, &PathError{Path: abs, Message: "not a directory"})
	}

	return abs, nil
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}

	if runtime.GOOS == "windows" {
		rest := path
		if len(rest) >= 2 && rest[1] == ':' {
			rest = rest[2:]
		}
		for _, char := range []string{"<", ">", ":", "\"", "|", "?", "*"} {
			if strings.Contains(rest, char) {
				return &PathError{Path: path, Message: "path contains invalid character: " + char}
			}
		}
	}

	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
