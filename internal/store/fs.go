package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FS is a filesystem-backed Store rooted at a directory.
type FS struct {
	root string
}

// NewFS creates a filesystem store rooted at dir, creating it if needed.
func NewFS(dir string) (*FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store root: %w", err)
	}
	return &FS{root: dir}, nil
}

func (s *FS) resolve(path string) string {
	return filepath.Join(s.root, filepath.FromSlash(strings.Trim(path, "/")))
}

// Exists reports whether a file or directory exists at path.
func (s *FS) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(s.resolve(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// Read returns the contents of the file at path.
func (s *FS) Read(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(s.resolve(path))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Write creates or replaces the file at path.
func (s *FS) Write(_ context.Context, path string, data []byte) error {
	full := s.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating parent of %s: %w", path, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// MkdirAll creates the directory at path along with any parents.
func (s *FS) MkdirAll(_ context.Context, path string) error {
	if err := os.MkdirAll(s.resolve(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// List returns the immediate children of the directory at path.
func (s *FS) List(_ context.Context, path string) ([]Entry, error) {
	dirents, err := os.ReadDir(s.resolve(path))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		entries = append(entries, Entry{Name: d.Name(), IsDir: d.IsDir()})
	}
	return entries, nil
}

// Delete removes the file or directory (recursively) at path.
func (s *FS) Delete(_ context.Context, path string) error {
	full := s.resolve(path)
	if _, err := os.Stat(full); os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", path, ErrNotExist)
	}
	if err := os.RemoveAll(full); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}
