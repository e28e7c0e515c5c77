package filestorage

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// Object is a blob to be written to a bucket
type Object struct {
	Bucket      string
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
}

// Storage is a bucket-addressed blob store. Upload overwrites an existing
// object at the same key.
type Storage interface {
	// Upload stores obj and returns the reference to persist (bucket/key for
	// local and S3, the delivery URL for Cloudinary)
	Upload(ctx context.Context, obj Object) (string, error)

	// Delete removes bucket/key; deleting a missing object is not an error
	Delete(ctx context.Context, bucket, key string) error
}

// cleanKey rejects keys that would escape their bucket
func cleanKey(bucket, key string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) {
		return "", fmt.Errorf("invalid bucket %q", bucket)
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != key {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return cleaned, nil
}
