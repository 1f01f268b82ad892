package repositories

import (
	"context"
	"io"
)

// ObjectStore holds file contents, keyed by the stringified item id of the
// owning FILE item. Only files are ever paired with an object-store key.
type ObjectStore interface {
	Upload(ctx context.Context, key string, content io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Remove deletes the blobs behind the given keys, batching requests to
	// respect backend request-size limits. Keys with no blob are ignored.
	Remove(ctx context.Context, keys []string) error

	EnsureBucket(ctx context.Context) error
	DeleteBucket(ctx context.Context) error
}
