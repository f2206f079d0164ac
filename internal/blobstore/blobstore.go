// Package blobstore stores original source files for audit and backup,
// keyed by deterministic slot paths ("csv/{course}/Day{n}.csv").
package blobstore

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// ErrNotFound indicates a missing object.
var ErrNotFound = eris.New("blobstore: object not found")

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key       string
	Size      int64
	UpdatedAt time.Time
}

// Store is the blob-store contract consumed by the pipeline.
type Store interface {
	// GetMetadata probes for an object. Missing objects return ErrNotFound.
	GetMetadata(ctx context.Context, key string) (*ObjectInfo, error)

	// Upload writes an object, replacing any existing content at key.
	Upload(ctx context.Context, key string, data []byte) error

	// Download reads an object's content.
	Download(ctx context.Context, key string) ([]byte, error)
}
