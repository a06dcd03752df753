package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/zeebo/xxh3"
)

// ErrAlreadyWatched is returned when another process holds the lock for a root
var ErrAlreadyWatched = errors.New("directory is already being watched by another extsort process")

// RootLock prevents two extsort processes from sorting the same root.
// The lock file lives outside the root so it is never sorted itself.
type RootLock struct {
	path string
	lock *flock.Flock
}

// LockDir returns the directory holding lock files
func LockDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "extsort", "locks"), nil
}

// LockPath returns the lock file path for an absolute root
func LockPath(dir, root string) string {
	return filepath.Join(dir, fmt.Sprintf("%016x.lock", xxh3.HashString(root)))
}

// AcquireRootLock takes a non-blocking exclusive lock for root inside dir
func AcquireRootLock(dir, root string) (*RootLock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	path := LockPath(dir, root)
	lock := flock.New(path)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyWatched, root)
	}

	return &RootLock{path: path, lock: lock}, nil
}

// Path returns the lock file path
func (l *RootLock) Path() string {
	return l.path
}

// Release unlocks and removes the lock file
func (l *RootLock) Release() error {
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	os.Remove(l.path)
	return nil
}
