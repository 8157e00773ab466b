package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"devcamper/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PhotoStore persists an uploaded bootcamp photo under name.
type PhotoStore interface {
	Save(ctx context.Context, name, contentType string, data []byte) error
}

// DiskPhotoStore writes photos below Dir, which is served as static files.
type DiskPhotoStore struct {
	Dir string
}

func (s DiskPhotoStore) Save(_ context.Context, name, _ string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("photo dir: %w", err)
	}
	return os.WriteFile(filepath.Join(s.Dir, filepath.Base(name)), data, 0o644)
}

type s3Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3PhotoStore uploads photos to an S3 compatible bucket.
type S3PhotoStore struct {
	client s3Putter
	bucket string
	prefix string
}

func NewS3PhotoStore(ctx context.Context, cfg config.S3Config) (*S3PhotoStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3PhotoStore{client: client, bucket: cfg.Bucket, prefix: "photos/"}, nil
}

func (s *S3PhotoStore) Save(ctx context.Context, name, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + filepath.Base(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", name, err)
	}
	return nil
}
