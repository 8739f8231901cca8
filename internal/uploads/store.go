package uploads

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound is returned when no object exists for a key.
	ErrNotFound = errors.New("uploads: object not found")
	// ErrInvalidKey is returned for keys that are empty or escape the store root.
	ErrInvalidKey = errors.New("uploads: invalid key")
)

// Store persists uploaded files by key.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
