package storage

import (
	"context"
	"fmt"

	"github.com/timmy/hotelsense/internal/config"
)

// NewStorage creates an ObjectStorage instance based on the configuration.
// Parameters:
//   - ctx: context used while loading cloud credentials.
//   - cfg: storage section of the application config.
// Returns:
//   - ObjectStorage: initialized storage client implementation.
//   - error: non-nil if the storage client cannot be created.
func NewStorage(ctx context.Context, cfg *config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Type {
	case "s3", "":
		return NewS3Storage(ctx, &S3Config{
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Endpoint:  cfg.Endpoint,
			UseSSL:    cfg.UseSSL,
		})
	case "minio":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("storage.endpoint is required for minio")
		}
		return NewMinIOStorage(&MinIOConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}
