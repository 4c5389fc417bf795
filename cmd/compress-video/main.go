// Package main provides the entry point for the compress-video CLI.
//
// Usage:
//
//	compress-video <path_to_video> <compression_percentage>
//
// The video is scaled to the given percentage of its frame size, re-encoded
// to H.264/AAC and saved next to the input as <name>_compressed.mp4.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/maauso/compress-video/internal/bootstrap"
	"github.com/maauso/compress-video/internal/compress"
	"github.com/maauso/compress-video/internal/config"
)

const usage = "Usage: compress-video <path_to_video> <compression_percentage>"

// errUsage is returned when the argument count is wrong.
var errUsage = errors.New("wrong number of arguments")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) != 2 {
		return errUsage
	}

	percent, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: compression percentage must be an integer: %w", compress.ErrInvalidArgument, err)
	}

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create structured logger
	logger := cfg.NewLogger(stderr)
	slog.SetDefault(logger)

	logger.Debug("starting compress-video", slog.String("config", cfg.String()))

	deps, err := bootstrap.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}

	res, err := deps.Transcoder.Compress(ctx, compress.Request{
		InputPath:    args[0],
		ScalePercent: percent,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Video compressed and saved as %s\n", res.OutputPath)
	if cfg.S3Enabled() {
		fmt.Fprintf(stdout, "Video uploaded to %s\n", res.Location)
	}
	return nil
}
