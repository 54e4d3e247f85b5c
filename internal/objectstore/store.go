package objectstore

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// Object is a readable object together with the metadata the gateway
// forwards to clients.
type Object struct {
	Body         io.ReadCloser
	ContentType  string
	ETag         string
	Size         int64
	LastModified time.Time
}

// Store is the object-store surface the pipeline and the gateway share.
// The uploader writes whole objects; the gateway reads them back.
type Store interface {
	// Put stores the object under key. The write is atomic from the
	// caller's perspective: the key is either fully visible or absent.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Get opens the object stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (*Object, error)

	// Endpoint names the remote host, for diagnostics only.
	Endpoint() string
}
