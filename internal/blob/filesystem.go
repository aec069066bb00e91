package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemStore stores blobs as files under a root directory. Writes use
// the temp-file-then-rename pattern so a blob is either fully present or
// absent, never partial.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore creates a filesystem blob store rooted at root,
// creating the directory if needed.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return &FilesystemStore{root: root}, nil
}

// Put stores the content under path atomically and returns the byte count.
func (s *FilesystemStore) Put(path string, r io.Reader) (int64, error) {
	dest, err := s.resolve(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("creating blob directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".blob-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, fmt.Errorf("writing blob: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, fmt.Errorf("syncing blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return written, nil
}

// Open returns a reader over the blob at path.
func (s *FilesystemStore) Open(path string) (io.ReadCloser, error) {
	src, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("opening blob: %w", err)
	}
	return f, nil
}

// PublicURL returns a file:// URL for the blob.
func (s *FilesystemStore) PublicURL(path string) string {
	return "file://" + filepath.ToSlash(filepath.Join(s.root, filepath.FromSlash(path)))
}

// Remove deletes the blob at path. A missing blob is not an error.
func (s *FilesystemStore) Remove(path string) error {
	dest, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing blob: %w", err)
	}
	return nil
}

// resolve maps a logical blob path to a filesystem path, rejecting
// traversal outside the root.
func (s *FilesystemStore) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid blob path %q", path)
	}
	return filepath.Join(s.root, clean), nil
}

// Compile-time check that FilesystemStore implements Store.
var _ Store = (*FilesystemStore)(nil)
