// Package store provides the persistent path namespace that session
// artifacts are written to. Paths are slash-separated and relative to the
// store root regardless of backend.
package store

import (
	"context"
	"errors"
)

// ErrNotExist is returned when a requested path doesn't exist.
var ErrNotExist = errors.New("path does not exist")

// Entry describes a child of a directory path.
type Entry struct {
	Name  string
	IsDir bool
}

// Store is a hierarchical key-value namespace for session artifacts.
type Store interface {
	// Exists reports whether a file or directory exists at path.
	Exists(ctx context.Context, path string) (bool, error)
	// Read returns the contents of the file at path, or ErrNotExist.
	Read(ctx context.Context, path string) ([]byte, error)
	// Write creates or replaces the file at path, creating parent
	// directories as needed.
	Write(ctx context.Context, path string, data []byte) error
	// MkdirAll creates the directory at path along with any parents.
	MkdirAll(ctx context.Context, path string) error
	// List returns the immediate children of the directory at path,
	// or ErrNotExist when the directory is absent.
	List(ctx context.Context, path string) ([]Entry, error)
	// Delete removes the file or directory (recursively) at path,
	// or ErrNotExist when nothing is there.
	Delete(ctx context.Context, path string) error
}
