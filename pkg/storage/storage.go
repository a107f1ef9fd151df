// Package storage is the object-store boundary of the term search: reading
// OCR documents and writing match artifacts. It provides an S3 client, an
// in-memory store, and a wrapper that adds retry and a circuit breaker.
package storage

import (
	"context"
)

// ContentTypeJSON is the content type of every artifact written.
const ContentTypeJSON = "application/json"

// PutOptions carries per-object write hints.
type PutOptions struct {
	StorageClass string
	ContentType  string
}

// ObjectStore reads and writes whole objects. Get fails with
// errors.ErrNotFound or errors.ErrAccessDenied when the object is missing or
// unreadable.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte, opts PutOptions) error
}

// BucketChecker is implemented by stores that can probe a bucket for health
// checks.
type BucketChecker interface {
	CheckBucket(ctx context.Context, bucket string) error
}
