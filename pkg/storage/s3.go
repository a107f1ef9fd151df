package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/errors"
)

// S3Store is an ObjectStore backed by Amazon S3 or an S3-compatible endpoint.
type S3Store struct {
	client *s3.Client
	logger *slog.Logger
}

// NewS3Store loads AWS credentials from the environment and builds a client
// for cfg.Region, optionally pointed at a custom endpoint.
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &S3Store{
		client: client,
		logger: slog.Default().With("component", "s3-store"),
	}, nil
}

func (s *S3Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classify(err, bucket, key)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading s3://%s/%s: %w", bucket, key, err)
	}
	s.logger.Debug("object read", "bucket", bucket, "key", key, "size", len(data))
	return data, nil
}

func (s *S3Store) Put(ctx context.Context, bucket, key string, body []byte, opts PutOptions) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	if opts.StorageClass != "" {
		in.StorageClass = types.StorageClass(opts.StorageClass)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return classify(err, bucket, key)
	}
	s.logger.Debug("object written", "bucket", bucket, "key", key, "size", len(body), "storage_class", opts.StorageClass)
	return nil
}

func (s *S3Store) CheckBucket(ctx context.Context, bucket string) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return classify(err, bucket, "")
	}
	return nil
}

// classify maps S3 API errors onto the shared sentinels.
func classify(err error, bucket, key string) error {
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) || errors.As(err, &notFound) {
		return fmt.Errorf("s3://%s/%s: %w", bucket, key, apperrors.ErrNotFound)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return fmt.Errorf("s3://%s/%s: %w", bucket, key, apperrors.ErrNotFound)
		case "AccessDenied", "Forbidden", "AllAccessDisabled":
			return fmt.Errorf("s3://%s/%s: %w: %s", bucket, key, apperrors.ErrAccessDenied, apiErr.ErrorMessage())
		}
	}
	return fmt.Errorf("s3://%s/%s: %w", bucket, key, err)
}
