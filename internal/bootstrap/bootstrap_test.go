package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maauso/compress-video/internal/config"
	"github.com/maauso/compress-video/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewDependencies(t *testing.T) {
	cfg := &config.Config{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe"}

	deps, err := NewDependencies(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, deps.Transcoder)
}

func TestInitStorage(t *testing.T) {
	t.Run("local by default", func(t *testing.T) {
		store, err := initStorage(context.Background(), &config.Config{}, discardLogger())
		require.NoError(t, err)
		assert.IsType(t, &storage.LocalStorage{}, store)
	})

	t.Run("S3 when bucket and region are set", func(t *testing.T) {
		cfg := &config.Config{
			S3Bucket:           "bucket",
			S3Region:           "us-east-1",
			S3Endpoint:         "http://localhost:4566",
			AWSAccessKeyID:     "key",
			AWSSecretAccessKey: "secret",
		}
		store, err := initStorage(context.Background(), cfg, discardLogger())
		require.NoError(t, err)
		assert.IsType(t, &storage.S3Storage{}, store)
	})
}
