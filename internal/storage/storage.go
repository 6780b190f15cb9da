package storage

import (
	"context"
	"io"
	"time"
)

// UploadOptions conveys upload destination metadata.
type UploadOptions struct {
	Bucket      string
	ContentType string
}

// Service stores user-uploaded objects (avatars) in remote object storage.
type Service interface {
	UploadObject(ctx context.Context, key string, body io.Reader, opts UploadOptions) (string, error)
	PresignGet(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
}
