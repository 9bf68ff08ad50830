// Package storage abstracts the object store that holds uploaded media
// bytes. The database keeps metadata only; files live behind this interface.
package storage

import (
	"context"
	"io"
	"time"
)

// Storage defines the interface for object storage operations.
type Storage interface {
	// Upload stores an object and returns its key and public URL.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)

	// Delete removes an object by its key.
	Delete(ctx context.Context, key string) error

	// SetPrivacy flips an object between public and private visibility.
	// Private objects are only reachable through SignedURL.
	SetPrivacy(ctx context.Context, key string, private bool) error

	// SignedURL returns a time-limited read URL for a private object.
	SignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// UploadInput holds the parameters for uploading an object.
type UploadInput struct {
	Key         string
	ContentType string
	Size        int64
	Private     bool
	Data        io.Reader
}

// UploadResult holds the result of a successful upload.
type UploadResult struct {
	Key string
	URL string
}
