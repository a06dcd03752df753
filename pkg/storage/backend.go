package storage

import (
	"context"
	"errors"
	"time"
)

// ErrDestinationExists is returned by Move when overwriting is not allowed
// and the destination path is already taken
var ErrDestinationExists = errors.New("destination already exists")

// FileInfo represents metadata about a child of the root
type FileInfo struct {
	Name        string
	Path        string
	Size        int64
	ModTime     time.Time
	IsDir       bool
	IsRegular   bool
	Permissions uint32
}

// Backend defines the filesystem operations the sorter needs.
// All path arguments are relative to the backend root.
type Backend interface {
	// Root returns the absolute root path
	Root() string

	// List returns the immediate children of the root, sorted by name
	List(ctx context.Context) ([]FileInfo, error)

	// Stat returns metadata without following symlinks
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Mkdir creates a single directory level. An existing directory is not an
	// error; created reports whether this call made it.
	Mkdir(ctx context.Context, path string) (created bool, err error)

	// Move relocates a file. With overwrite false an existing destination
	// yields ErrDestinationExists and the source is left untouched.
	Move(ctx context.Context, src, dst string, overwrite bool) error

	// Close releases any resources held by the backend
	Close() error
}
