// Package storage persists user-uploaded images behind a small
// object-store interface with MinIO and GCS backends.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/placement-tracker/apiserver/config"
)

// ObjectStorage is the object-store surface the upload handler uses.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// NewFromConfig constructs the backend named by config. An empty
// backend name yields nil, which disables uploads.
func NewFromConfig(ctx context.Context, cfg config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "minio":
		return NewMinioClient(cfg.Minio)
	case "gcs":
		return NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
