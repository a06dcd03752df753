package sorter

import (
	"path/filepath"
	"strings"

	"github.com/sdejongh/extsort/pkg/models"
)

// Extension returns the text after the last dot of the base name.
// Leading dots never start an extension, so ".bashrc" and "notes" both
// yield "", as does a trailing dot. Case is preserved.
func Extension(name string) string {
	base := filepath.Base(name)
	stripped := strings.TrimLeft(base, ".")

	i := strings.LastIndexByte(stripped, '.')
	if i < 0 {
		return ""
	}
	return stripped[i+1:]
}

// BucketFor returns the directory name, relative to the watch root, that a
// file with extension ext belongs in. Under the literal policy an empty
// extension maps to "", which joins back to the root itself.
func BucketFor(op *models.SortOperation, ext string) string {
	if ext != "" {
		return ext
	}
	if op.EmptyExtension == models.EmptyExtBucket {
		return op.UnsortedBucket
	}
	return ""
}
