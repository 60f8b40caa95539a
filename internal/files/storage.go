package files

import (
	"context"
	"io"
)

// Storage is the blob backend the core reads and writes file bytes through.
// Implemented by repositories.BlobStore in production and by an in-memory
// fake in tests.
type Storage interface {
	// Put uploads an object under the given key.
	Put(ctx context.Context, key string, body io.Reader, size int64) error
	// Get returns a reader over the object's bytes. The caller closes it.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Exists reports whether an object is stored under the key.
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes an object. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
