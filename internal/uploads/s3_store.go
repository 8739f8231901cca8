package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps uploads in a single bucket.
type S3Store struct {
	bucket   string
	s3Client S3API
	logger   *slog.Logger
}

// NewS3Store creates an S3-backed store.
func NewS3Store(s3Client S3API, bucket string, logger *slog.Logger) *S3Store {
	if s3Client == nil {
		panic("uploads: s3 client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Store{bucket: bucket, s3Client: s3Client, logger: logger}
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	if key == "" {
		return ErrInvalidKey
	}
	// PutObject needs a seekable body for request signing.
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("uploads: read body: %w", err)
	}
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("uploads: s3 put %s: %w", key, err)
	}
	s.logger.Debug("upload stored", "bucket", s.bucket, "key", key, "bytes", len(data))
	return nil
}

func (s *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("uploads: s3 get %s: %w", key, err)
	}
	return out.Body, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("uploads: s3 delete %s: %w", key, err)
	}
	return nil
}
