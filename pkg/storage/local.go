package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"syscall"
)

// Local is a filesystem-based storage backend rooted at the watch root
type Local struct {
	rootPath string
}

// NewLocal creates a new local filesystem backend
func NewLocal(rootPath string) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Local{rootPath: absPath}, nil
}

// Root returns the absolute root path
func (l *Local) Root() string {
	return l.rootPath
}

// List returns the immediate children of the root in lexicographic order
func (l *Local) List(ctx context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(l.rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", e.Name(), err)
		}
		files = append(files, toFileInfo(filepath.Join(l.rootPath, e.Name()), info))
	}

	// ReadDir already sorts by filename; keep the guarantee explicit
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	return files, nil
}

// Stat returns file metadata without following symlinks
func (l *Local) Stat(ctx context.Context, path string) (*FileInfo, error) {
	fullPath := filepath.Join(l.rootPath, path)

	info, err := os.Lstat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	fi := toFileInfo(fullPath, info)
	return &fi, nil
}

// Mkdir creates one directory level under the root
func (l *Local) Mkdir(ctx context.Context, path string) (bool, error) {
	fullPath := filepath.Join(l.rootPath, path)

	err := os.Mkdir(fullPath, 0755)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrExist) {
		// Lost a race with the listener or the user; fine as long as it is a directory
		info, statErr := os.Stat(fullPath)
		if statErr == nil && info.IsDir() {
			return false, nil
		}
		return false, fmt.Errorf("failed to create directory: %s exists and is not a directory", fullPath)
	}
	return false, fmt.Errorf("failed to create directory: %w", err)
}

// Move renames src to dst, falling back to copy and remove across devices
func (l *Local) Move(ctx context.Context, src, dst string, overwrite bool) error {
	srcPath := filepath.Join(l.rootPath, src)
	dstPath := filepath.Join(l.rootPath, dst)

	if !overwrite {
		if _, err := os.Lstat(dstPath); err == nil {
			return fmt.Errorf("failed to move %s: %w", src, ErrDestinationExists)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to check destination: %w", err)
		}
	}

	err := os.Rename(srcPath, dstPath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("failed to move %s: %w", src, err)
	}

	if err := copyFile(srcPath, dstPath); err != nil {
		return fmt.Errorf("failed to copy %s across devices: %w", src, err)
	}
	if err := os.Remove(srcPath); err != nil {
		return fmt.Errorf("copied %s but failed to remove source: %w", src, err)
	}
	return nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}

// copyFile copies contents, permissions and modification time
func copyFile(srcPath, dstPath string) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	written, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dstPath)
		return err
	}
	if written != info.Size() {
		os.Remove(dstPath)
		return fmt.Errorf("incomplete write: expected %d bytes, wrote %d", info.Size(), written)
	}

	if err := os.Chtimes(dstPath, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set modification time: %w", err)
	}
	return nil
}

func toFileInfo(fullPath string, info os.FileInfo) FileInfo {
	return FileInfo{
		Name:        info.Name(),
		Path:        fullPath,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		IsDir:       info.IsDir(),
		IsRegular:   info.Mode().IsRegular(),
		Permissions: uint32(info.Mode().Perm()),
	}
}
