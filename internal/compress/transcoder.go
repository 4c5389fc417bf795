// Package compress shrinks a video by a percentage of its frame size and
// re-encodes it to H.264/AAC in an MP4 container.
package compress

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/compress-video/internal/media"
	"github.com/maauso/compress-video/internal/storage"
)

// Transcoder validates requests and drives a media.Processor through the
// open, resize and write steps.
type Transcoder struct {
	processor media.Processor
	store     storage.Storage
	codecs    media.Codecs
	validator *validator.Validate
	logger    *slog.Logger
}

// Option configures a Transcoder.
type Option func(*Transcoder)

// WithStorage sets where finished files are published. Defaults to local disk.
func WithStorage(store storage.Storage) Option {
	return func(t *Transcoder) {
		if store != nil {
			t.store = store
		}
	}
}

// WithCodecs overrides the output encoders.
func WithCodecs(codecs media.Codecs) Option {
	return func(t *Transcoder) {
		t.codecs = codecs
	}
}

// NewTranscoder creates a Transcoder backed by processor.
func NewTranscoder(processor media.Processor, logger *slog.Logger, opts ...Option) *Transcoder {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Transcoder{
		processor: processor,
		store:     storage.NewLocalStorage(),
		codecs:    media.DefaultCodecs,
		validator: newValidator(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Compress resizes req.InputPath by req.ScalePercent and writes the result to
// the request's output path, replacing any existing file. Invalid requests
// fail with ErrInvalidArgument before the source is touched.
func (t *Transcoder) Compress(ctx context.Context, req Request) (*Result, error) {
	if err := validate(t.validator, req); err != nil {
		return nil, err
	}

	output := req.OutputPath
	if output == "" {
		output = DefaultOutputPath(req.InputPath)
	}

	t.logger.Info("compressing video",
		slog.String("input", req.InputPath),
		slog.String("output", output),
		slog.Int("scale_percent", req.ScalePercent),
	)

	clip, err := t.processor.Open(ctx, req.InputPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := clip.Close(); err != nil {
			t.logger.Warn("failed to release source",
				slog.String("input", req.InputPath),
				slog.String("error", err.Error()),
			)
		}
	}()

	srcW, srcH := clip.Size()
	w, h := TargetSize(srcW, srcH, req.ScalePercent)

	t.logger.Info("resizing video",
		slog.Int("source_width", srcW),
		slog.Int("source_height", srcH),
		slog.Int("width", w),
		slog.Int("height", h),
		slog.Float64("duration_sec", clip.Info.Duration),
		slog.Bool("has_audio", clip.Info.HasAudio),
	)

	if err := t.processor.Write(ctx, clip.Resize(w, h), output, t.codecs); err != nil {
		return nil, err
	}

	location, err := t.store.Publish(ctx, output)
	if err != nil {
		return nil, fmt.Errorf("publish output: %w", err)
	}

	t.logger.Info("video compressed",
		slog.String("output", output),
		slog.String("location", location),
	)

	return &Result{
		OutputPath: output,
		Width:      w,
		Height:     h,
		Location:   location,
	}, nil
}
