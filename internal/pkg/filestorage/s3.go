package filestorage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures the S3 driver. Endpoint is only needed for
// S3-compatible stores such as MinIO or SeaweedFS.
type S3Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// S3Storage stores objects in S3 buckets named after Object.Bucket
type S3Storage struct {
	api *s3.Client
}

// NewS3Storage builds an S3 client. Without static keys the default AWS
// credential chain is used.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &S3Storage{api: client}, nil
}

// Upload puts the object, overwriting any existing key
func (s *S3Storage) Upload(ctx context.Context, obj Object) (string, error) {
	if s == nil || s.api == nil {
		return "", errors.New("nil s3 client")
	}
	key, err := cleanKey(obj.Bucket, obj.Key)
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(key),
		Body:   obj.Body,
	}
	if obj.Size > 0 {
		input.ContentLength = aws.Int64(obj.Size)
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}

	if _, err := s.api.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3 put %s/%s: %w", obj.Bucket, key, err)
	}
	return obj.Bucket + "/" + key, nil
}

// Delete removes the object; S3 treats a missing key as success
func (s *S3Storage) Delete(ctx context.Context, bucket, key string) error {
	if s == nil || s.api == nil {
		return errors.New("nil s3 client")
	}
	key, err := cleanKey(bucket, key)
	if err != nil {
		return err
	}

	if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", bucket, key, err)
	}
	return nil
}
