package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MediaPrefix is the route under which stored objects are served.
const MediaPrefix = "/media/"

// GridFSBlobStore implements the BlobStore interface on a GridFS bucket.
// Object paths are stored as GridFS filenames.
type GridFSBlobStore struct {
	bucket  *gridfs.Bucket
	baseURL string
}

// NewGridFSBlobStore creates a blob store whose URLs start with baseURL.
func NewGridFSBlobStore(bucket *gridfs.Bucket, baseURL string) repository.BlobStore {
	return &GridFSBlobStore{
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Upload stores r under path and returns its public URL
func (s *GridFSBlobStore) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	if _, err := s.bucket.UploadFromStream(path, r, opts); err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	return s.URL(path), nil
}

// URL is the public address of path.
func (s *GridFSBlobStore) URL(path string) string {
	return s.baseURL + MediaPrefix + path
}

// Open streams the newest revision of path
func (s *GridFSBlobStore) Open(ctx context.Context, path string) (*repository.Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stream, err := s.bucket.OpenDownloadStreamByName(path)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, fmt.Errorf("blob %s: %w", path, entity.ErrNotFound)
		}
		return nil, err
	}

	file := stream.GetFile()
	contentType := "application/octet-stream"
	if file.Metadata != nil {
		if ct, ok := file.Metadata.Lookup("contentType").StringValueOK(); ok && ct != "" {
			contentType = ct
		}
	}
	return &repository.Blob{
		ReadCloser:  stream,
		ContentType: contentType,
		Size:        file.Length,
	}, nil
}

// DeleteByURL removes every revision stored under the URL's path
func (s *GridFSBlobStore) DeleteByURL(ctx context.Context, url string) error {
	path, ok := PathFromURL(url)
	if !ok {
		return fmt.Errorf("blob %s: %w", url, entity.ErrNotFound)
	}

	cursor, err := s.bucket.FindContext(ctx, bson.M{"filename": path})
	if err != nil {
		return err
	}
	var files []struct {
		ID interface{} `bson:"_id"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("blob %s: %w", path, entity.ErrNotFound)
	}

	for _, f := range files {
		if err := s.bucket.DeleteContext(ctx, f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return err
		}
	}
	return nil
}

// PathFromURL extracts the object path from a URL built by Upload. The host
// part is ignored so URLs survive a base URL change.
func PathFromURL(url string) (string, bool) {
	i := strings.Index(url, MediaPrefix)
	if i < 0 {
		return "", false
	}
	path := url[i+len(MediaPrefix):]
	if j := strings.IndexAny(path, "?#"); j >= 0 {
		path = path[:j]
	}
	if path == "" {
		return "", false
	}
	return path, true
}
