package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// maxStderr bounds how much ffprobe stderr is carried in errors.
const maxStderr = 4096

// Probe runs ffprobe on path and returns its stream information.
// Files without a decodable video stream are rejected with ErrMediaOpen.
func (p *FFmpegProcessor) Probe(ctx context.Context, path string) (*Info, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}

	// #nosec G204 - ffprobePath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffprobePath, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w: %w, stderr: %s", ErrMediaOpen, ErrFFprobeExecution, err, truncate(stderr.String()))
	}

	var data probeData
	if err := json.Unmarshal(stdout.Bytes(), &data); err != nil {
		return nil, fmt.Errorf("%w: decode ffprobe output: %w", ErrMediaOpen, err)
	}

	return data.info()
}

func (d *probeData) info() (*Info, error) {
	info := &Info{
		Container: strings.TrimSpace(strings.Split(d.Format.FormatName, ",")[0]),
	}

	foundVideo := false
	for _, s := range d.Streams {
		switch s.CodecType {
		case "video":
			// Cover art is reported as a video stream; skip it.
			if foundVideo || s.Disposition.AttachedPic == 1 || s.CodecName == "" {
				continue
			}
			foundVideo = true
			info.VideoCodec = s.CodecName
			info.Width = s.Width
			info.Height = s.Height
			if quarterTurn(s.rotation()) {
				info.Width, info.Height = info.Height, info.Width
			}
			info.FrameRate = parseRate(s.AvgFrameRate)
			if s.Duration != "" {
				if v, err := strconv.ParseFloat(s.Duration, 64); err == nil {
					info.Duration = v
				}
			}
		case "audio":
			if !info.HasAudio {
				info.HasAudio = true
				info.AudioCodec = s.CodecName
			}
		}
	}

	if !foundVideo {
		return nil, fmt.Errorf("%w: %w", ErrMediaOpen, ErrNoVideoStream)
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("%w: %w: width=%d, height=%d", ErrMediaOpen, ErrInvalidDimensions, info.Width, info.Height)
	}

	if info.Duration == 0 && d.Format.Duration != "" {
		if v, err := strconv.ParseFloat(d.Format.Duration, 64); err == nil {
			info.Duration = v
		}
	}

	return info, nil
}

type probeData struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration   string `json:"duration"`
		FormatName string `json:"format_name"`
	} `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Duration     string `json:"duration,omitempty"`
	AvgFrameRate string `json:"avg_frame_rate,omitempty"`
	Disposition  struct {
		AttachedPic int `json:"attached_pic"`
	} `json:"disposition"`
	Tags struct {
		Rotate string `json:"rotate,omitempty"`
	} `json:"tags"`
	SideDataList []struct {
		Rotation *float64 `json:"rotation,omitempty"`
	} `json:"side_data_list,omitempty"`
}

// rotation returns the display rotation in degrees. Newer ffprobe builds
// report it in the display matrix side data, older ones as a "rotate" tag.
func (s probeStream) rotation() int {
	for _, sd := range s.SideDataList {
		if sd.Rotation != nil {
			return int(math.Round(*sd.Rotation))
		}
	}
	if s.Tags.Rotate != "" {
		if v, err := strconv.Atoi(s.Tags.Rotate); err == nil {
			return v
		}
	}
	return 0
}

func quarterTurn(deg int) bool {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg == 90 || deg == 270
}

// parseRate parses an ffprobe rational such as "30000/1001".
func parseRate(rate string) float64 {
	if rate == "" || rate == "0/0" {
		return 0
	}
	num, den, ok := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func truncate(s string) string {
	if len(s) > maxStderr {
		return s[:maxStderr] + "..."
	}
	return s
}
