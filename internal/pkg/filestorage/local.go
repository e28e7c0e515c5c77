package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yigit/careernest/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// Upload writes the object under basePath/bucket/key, replacing any existing file
func (ls *LocalStorage) Upload(ctx context.Context, obj Object) (string, error) {
	key, err := cleanKey(obj.Bucket, obj.Key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dstPath := filepath.Join(ls.basePath, obj.Bucket, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o750); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	// write to a temp file and rename so a failed copy never clobbers the old object
	tmp, err := os.CreateTemp(filepath.Dir(dstPath), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, obj.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		return "", fmt.Errorf("failed to save file content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}
	if err := os.Rename(tmpName, dstPath); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	ref := obj.Bucket + "/" + key
	logger.Info().Str("ref", ref).Msg("File saved successfully")
	return ref, nil
}

// Delete removes bucket/key. A missing file counts as deleted.
func (ls *LocalStorage) Delete(_ context.Context, bucket, key string) error {
	key, err := cleanKey(bucket, key)
	if err != nil {
		return err
	}

	physicalPath := filepath.Join(ls.basePath, bucket, filepath.FromSlash(key))
	if err := os.Remove(physicalPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// FullPath returns the filesystem path for bucket/key
func (ls *LocalStorage) FullPath(bucket, key string) string {
	return filepath.Join(ls.basePath, bucket, filepath.FromSlash(key))
}
