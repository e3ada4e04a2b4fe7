package repository

import (
	"context"
	"io"
)

// Blob is an open stored object.
type Blob struct {
	io.ReadCloser
	ContentType string
	Size        int64
}

// BlobStore defines the interface for binary object storage
type BlobStore interface {
	// Upload stores r under path and returns its public URL.
	Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error)
	Open(ctx context.Context, path string) (*Blob, error)
	// DeleteByURL removes the object a URL returned by Upload points at.
	DeleteByURL(ctx context.Context, url string) error
}
