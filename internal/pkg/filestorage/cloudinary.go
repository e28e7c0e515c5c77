package filestorage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage maps buckets onto Cloudinary folders
type CloudinaryStorage struct {
	cld *cld.Cloudinary
}

// NewCloudinaryStorage builds a client from a cloudinary:// URL
func NewCloudinaryStorage(cloudinaryURL string) (*CloudinaryStorage, error) {
	c, err := cld.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return &CloudinaryStorage{cld: c}, nil
}

// publicID strips the extension; Cloudinary keeps the format separately
func publicID(bucket, key string) string {
	return bucket + "/" + strings.TrimSuffix(key, path.Ext(key))
}

// Upload stores the object and returns its secure delivery URL
func (s *CloudinaryStorage) Upload(ctx context.Context, obj Object) (string, error) {
	key, err := cleanKey(obj.Bucket, obj.Key)
	if err != nil {
		return "", err
	}

	res, err := s.cld.Upload.Upload(ctx, obj.Body, uploader.UploadParams{
		PublicID:     publicID(obj.Bucket, key),
		ResourceType: "image",
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", errors.New("cloudinary upload: " + res.Error.Message)
	}
	return res.SecureURL, nil
}

// Delete destroys the asset behind bucket/key
func (s *CloudinaryStorage) Delete(ctx context.Context, bucket, key string) error {
	key, err := cleanKey(bucket, key)
	if err != nil {
		return err
	}

	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID(bucket, key),
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res.Error.Message != "" {
		return errors.New("cloudinary destroy: " + res.Error.Message)
	}
	return nil
}
