// Package bootstrap provides dependency initialization for the compress-video CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maauso/compress-video/internal/compress"
	"github.com/maauso/compress-video/internal/config"
	"github.com/maauso/compress-video/internal/media"
	"github.com/maauso/compress-video/internal/storage"
)

// Dependencies holds all initialized dependencies for one CLI run.
type Dependencies struct {
	Transcoder *compress.Transcoder
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	processor := media.NewFFmpegProcessor(cfg.FFmpegPath,
		media.WithFFprobePath(cfg.FFprobePath),
		media.WithLogger(logger),
	)

	transcoder := compress.NewTranscoder(processor, logger,
		compress.WithStorage(store),
	)

	return &Dependencies{
		Transcoder: transcoder,
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			Prefix:          cfg.S3Prefix,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(ctx, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Debug("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	logger.Debug("local storage configured")
	return storage.NewLocalStorage(), nil
}
