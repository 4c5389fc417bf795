package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// Static errors for media operations.
var (
	// ErrMediaOpen is returned when the source is missing, unreadable or not a valid container.
	ErrMediaOpen = errors.New("media: cannot open source")
	// ErrMediaEncode is returned when the output cannot be encoded or written.
	ErrMediaEncode = errors.New("media: cannot encode output")
	// ErrInvalidDimensions is returned when the provided dimensions are not positive.
	ErrInvalidDimensions = errors.New("invalid dimensions: width and height must be positive")
	// ErrNoVideoStream is returned when the source has no video stream.
	ErrNoVideoStream = errors.New("no video stream")
	// ErrNotRegularFile is returned when the source path is a directory or device.
	ErrNotRegularFile = errors.New("not a regular file")
	// ErrFFprobeExecution is returned when ffprobe command fails.
	ErrFFprobeExecution = errors.New("ffprobe execution failed")
)

// outputPerm is the mode of encoded files, before umask.
const outputPerm = 0o644

// FFmpegProcessor implements Processor using the ffmpeg and ffprobe CLIs.
type FFmpegProcessor struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
	// ffprobePath is the path to the ffprobe binary. Defaults to "ffprobe".
	ffprobePath string
	logger      *slog.Logger
}

// Option configures an FFmpegProcessor.
type Option func(*FFmpegProcessor)

// WithFFprobePath sets the ffprobe binary. Empty keeps the default.
func WithFFprobePath(path string) Option {
	return func(p *FFmpegProcessor) {
		if path != "" {
			p.ffprobePath = path
		}
	}
}

// WithLogger sets the logger used for debug output of ffmpeg invocations.
func WithLogger(logger *slog.Logger) Option {
	return func(p *FFmpegProcessor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewFFmpegProcessor creates a new FFmpegProcessor.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpegProcessor(ffmpegPath string, opts ...Option) *FFmpegProcessor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	p := &FFmpegProcessor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: "ffprobe",
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open opens the source file and probes its streams. The returned Clip
// holds the file open until Close.
func (p *FFmpegProcessor) Open(ctx context.Context, path string) (*Clip, error) {
	f, err := os.Open(path) // #nosec G304 - path is the file the operator asked to compress
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMediaOpen, err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrMediaOpen, err)
	}
	if !fi.Mode().IsRegular() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrMediaOpen, path, ErrNotRegularFile)
	}

	info, err := p.Probe(ctx, path)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return NewClip(path, *info, f), nil
}

// Write encodes clip into an MP4 at dst. ffmpeg writes to a pending file in
// the destination directory which replaces dst only once encoding succeeded.
func (p *FFmpegProcessor) Write(ctx context.Context, clip *Clip, dst string, codecs Codecs) error {
	w, h := clip.OutputSize()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %w: width=%d, height=%d", ErrMediaEncode, ErrInvalidDimensions, w, h)
	}
	if codecs.Video == "" {
		codecs.Video = DefaultCodecs.Video
	}
	if codecs.Audio == "" {
		codecs.Audio = DefaultCodecs.Audio
	}

	pending, err := renameio.NewPendingFile(dst,
		renameio.WithTempDir(filepath.Dir(dst)),
		renameio.WithPermissions(outputPerm),
	)
	if err != nil {
		return fmt.Errorf("%w: create pending output: %w", ErrMediaEncode, err)
	}
	defer func() {
		// No-op once the pending file has replaced dst.
		if err := pending.Cleanup(); err != nil {
			p.logger.Debug("cleanup pending output", slog.String("error", err.Error()))
		}
	}()

	args := encodeArgs(clip.Path, pending.Name(), w, h, codecs)
	if err := p.runFFmpeg(ctx, args); err != nil {
		return fmt.Errorf("%w: %w", ErrMediaEncode, err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("%w: replace %s: %w", ErrMediaEncode, dst, err)
	}
	return nil
}

// encodeArgs builds the ffmpeg arguments that scale src to w x h.
// The muxer is forced because the pending file name has no extension.
func encodeArgs(src, dst string, w, h int, codecs Codecs) []string {
	return []string{
		"-y",
		"-nostdin",
		"-hide_banner",
		"-i", src,
		// First video stream and, if present, the first audio stream.
		"-map", "0:v:0",
		"-map", "0:a:0?",
		"-vf", fmt.Sprintf("scale=%d:%d,setsar=1", w, h),
		"-c:v", codecs.Video,
		"-pix_fmt", pixelFormat(w, h),
		"-c:a", codecs.Audio,
		"-movflags", "+faststart",
		"-f", "mp4",
		dst,
	}
}

// pixelFormat picks 4:2:0 chroma subsampling when both dimensions are even
// and falls back to 4:4:4, which H.264 accepts at odd sizes.
func pixelFormat(w, h int) string {
	if w%2 == 0 && h%2 == 0 {
		return "yuv420p"
	}
	return "yuv444p"
}

// runFFmpeg executes ffmpeg with the given arguments and returns an error
// containing stderr output if the command fails.
func (p *FFmpegProcessor) runFFmpeg(ctx context.Context, args []string) error {
	p.logger.Debug("running ffmpeg", slog.String("args", strings.Join(args, " ")))

	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		// Check if context was cancelled
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{
			Args:   args,
			Stderr: truncate(stderr.String()),
			Err:    err,
		}
	}

	return nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}
