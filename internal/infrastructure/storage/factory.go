package storage

import (
	"context"
	"fmt"

	"github.com/destocard/backend/internal/domain/media"
	"github.com/destocard/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New returns the object storage selected by cfg.Driver
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (media.ObjectStorage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalObjectStorage(cfg.UploadDir, cfg.PublicURL, logger)
	case "s3":
		s, err := NewS3ObjectStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
