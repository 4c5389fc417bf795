// Package media provides the decode, resize and encode capability used to
// shrink videos. The FFmpegProcessor implementation drives the ffprobe and
// ffmpeg CLIs.
package media

import (
	"context"
	"io"
)

// Processor defines the interface for opening and encoding video clips.
type Processor interface {
	// Open probes the media at path and returns a Clip that owns the source
	// for the duration of the operation. The caller must Close it.
	Open(ctx context.Context, path string) (*Clip, error)

	// Write encodes clip at its output size into an MP4 container at dst,
	// replacing any existing file. Nothing is left at dst on failure.
	Write(ctx context.Context, clip *Clip, dst string, codecs Codecs) error
}

// Codecs names the encoders used for the output streams.
type Codecs struct {
	// Video is the ffmpeg video encoder name.
	Video string
	// Audio is the ffmpeg audio encoder name.
	Audio string
}

// DefaultCodecs re-encodes to H.264 video and AAC audio.
var DefaultCodecs = Codecs{Video: "libx264", Audio: "aac"}

// Info describes the streams of a media file.
type Info struct {
	// Width and Height are the displayed frame dimensions, with rotation applied.
	Width  int
	Height int
	// Duration is the video duration in seconds.
	Duration float64
	// FrameRate is the average frame rate of the video stream.
	FrameRate float64
	// VideoCodec is the codec name of the first video stream.
	VideoCodec string
	// AudioCodec is the codec name of the first audio stream, if any.
	AudioCodec string
	// HasAudio reports whether the file carries an audio stream.
	HasAudio bool
	// Container is the first format name ffprobe reports (e.g. "mov").
	Container string
}

// Clip is an opened source video. Resize returns a new Clip sharing the
// same source; only the Clip returned by Open should be closed.
type Clip struct {
	// Path is the source file path.
	Path string
	// Info holds the probed stream information of the source.
	Info Info

	width  int
	height int
	src    io.Closer
}

// NewClip returns a Clip for path with the given stream information.
// src, if non-nil, is closed when the Clip is closed.
func NewClip(path string, info Info, src io.Closer) *Clip {
	return &Clip{
		Path:   path,
		Info:   info,
		width:  info.Width,
		height: info.Height,
		src:    src,
	}
}

// Size returns the natural frame dimensions of the source.
func (c *Clip) Size() (width, height int) {
	return c.Info.Width, c.Info.Height
}

// OutputSize returns the frame dimensions the clip will be encoded at.
func (c *Clip) OutputSize() (width, height int) {
	return c.width, c.height
}

// Resize returns a Clip whose frames are scaled to width x height.
// Dimensions are validated when the clip is written.
func (c *Clip) Resize(width, height int) *Clip {
	resized := *c
	resized.width = width
	resized.height = height
	return &resized
}

// Close releases the source.
func (c *Clip) Close() error {
	if c.src == nil {
		return nil
	}
	err := c.src.Close()
	c.src = nil
	return err
}
