package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by Get when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage defines the object store operations the pipeline needs.
type ObjectStorage interface {
	// Get reads the whole object into memory.
	Get(ctx context.Context, bucket, key string) ([]byte, error)

	// URL returns the address recorded for an object on image records.
	URL(bucket, key string) string

	// ParseURL is the inverse of URL.
	ParseURL(rawURL string) (bucket, key string, err error)
}
