package docstore

import (
	"fmt"
	"log/slog"

	"ommiquiz/internal/config"
	"ommiquiz/internal/domain/repositories"
)

// New builds the document store selected by configuration. Unknown backend
// names are rejected rather than silently falling back to local disk.
func New(cfg *config.Config, logger *slog.Logger) (repositories.ScopableStore, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		store, err := NewS3Store(S3Options{
			Bucket:      cfg.S3Bucket,
			Prefix:      cfg.S3Prefix,
			EndpointURL: cfg.S3EndpointURL,
			Region:      cfg.S3Region,
			AccessKey:   cfg.S3AccessKey,
			SecretKey:   cfg.S3SecretKey,
		}, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("using s3 document store", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
		return store, nil

	case config.StorageLocal:
		store, err := NewLocalStore(cfg.FlashcardsDir, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("using local document store", "dir", cfg.FlashcardsDir)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
