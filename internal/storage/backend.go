package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when no object exists at the path.
var ErrNotFound = errors.New("object not found")

// Backend defines the interface for storage backends (local, S3, MinIO, Azure).
// Paths are slash-separated keys relative to the backend root.
type Backend interface {
	// Write writes data to the specified path, replacing any existing object
	Write(ctx context.Context, path string, data []byte) error

	// Read reads data from the specified path
	Read(ctx context.Context, path string) ([]byte, error)

	// List lists all objects with the given prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete deletes the object at the specified path
	Delete(ctx context.Context, path string) error

	// Exists checks if an object exists at the specified path
	Exists(ctx context.Context, path string) (bool, error)

	// Close closes any resources held by the backend
	Close() error

	// Type returns the storage type identifier ("local", "s3", "azure")
	Type() string
}
