package filestore

import (
	"context"
	"fmt"

	"sbs-go/internal/config"
)

// NewBackendFromConfig creates a Backend based on the files config type.
func NewBackendFromConfig(ctx context.Context, cfg config.FilesConfig) (Backend, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryBackend(), nil
	case "filesystem", "":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem file store requires fs_root to be set")
		}
		return NewFileSystemBackend(cfg.FSRoot)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 file store requires s3_bucket to be set")
		}
		return NewS3Backend(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown file store type: %s", cfg.Type)
	}
}
