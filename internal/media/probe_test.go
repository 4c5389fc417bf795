package media

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func decodeProbe(t *testing.T, raw string) *probeData {
	t.Helper()
	var data probeData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("invalid fixture: %v", err)
	}
	return &data
}

func TestProbeData_Info(t *testing.T) {
	data := decodeProbe(t, `{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080,
			 "avg_frame_rate": "30000/1001", "duration": "10.010000"},
			{"codec_type": "audio", "codec_name": "aac"}
		],
		"format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "10.050000"}
	}`)

	info, err := data.info()
	if err != nil {
		t.Fatalf("info() error = %v", err)
	}

	if info.Width != 1920 || info.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", info.Width, info.Height)
	}
	if info.Duration != 10.01 {
		t.Errorf("expected stream duration 10.01, got %v", info.Duration)
	}
	if math.Abs(info.FrameRate-29.97) > 0.01 {
		t.Errorf("expected ~29.97 fps, got %v", info.FrameRate)
	}
	if info.VideoCodec != "h264" || info.AudioCodec != "aac" || !info.HasAudio {
		t.Errorf("unexpected codecs: %+v", info)
	}
	if info.Container != "mov" {
		t.Errorf("expected container mov, got %q", info.Container)
	}
}

func TestProbeData_Info_FormatDurationFallback(t *testing.T) {
	data := decodeProbe(t, `{
		"streams": [{"codec_type": "video", "codec_name": "hevc", "width": 640, "height": 360}],
		"format": {"format_name": "mov", "duration": "4.500000"}
	}`)

	info, err := data.info()
	if err != nil {
		t.Fatalf("info() error = %v", err)
	}
	if info.Duration != 4.5 {
		t.Errorf("expected format duration 4.5, got %v", info.Duration)
	}
	if info.HasAudio {
		t.Error("expected no audio")
	}
}

func TestProbeData_Info_Rotation(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		w, h   int
	}{
		{
			name:   "display matrix -90",
			stream: `{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "side_data_list": [{"rotation": -90}]}`,
			w:      1080, h: 1920,
		},
		{
			name:   "rotate tag 270",
			stream: `{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "tags": {"rotate": "270"}}`,
			w:      1080, h: 1920,
		},
		{
			name:   "upside down",
			stream: `{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "side_data_list": [{"rotation": 180}]}`,
			w:      1920, h: 1080,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := decodeProbe(t, `{"streams": [`+tc.stream+`], "format": {"format_name": "mov"}}`)
			info, err := data.info()
			if err != nil {
				t.Fatalf("info() error = %v", err)
			}
			if info.Width != tc.w || info.Height != tc.h {
				t.Errorf("expected %dx%d, got %dx%d", tc.w, tc.h, info.Width, info.Height)
			}
		})
	}
}

func TestProbeData_Info_SkipsCoverArt(t *testing.T) {
	data := decodeProbe(t, `{
		"streams": [
			{"codec_type": "video", "codec_name": "mjpeg", "width": 300, "height": 300, "disposition": {"attached_pic": 1}},
			{"codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720}
		],
		"format": {"format_name": "mov"}
	}`)

	info, err := data.info()
	if err != nil {
		t.Fatalf("info() error = %v", err)
	}
	if info.Width != 1280 || info.VideoCodec != "h264" {
		t.Errorf("expected the h264 stream, got %+v", info)
	}
}

func TestProbeData_Info_Errors(t *testing.T) {
	t.Run("audio only", func(t *testing.T) {
		data := decodeProbe(t, `{"streams": [{"codec_type": "audio", "codec_name": "aac"}], "format": {"format_name": "mov"}}`)
		_, err := data.info()
		if !errors.Is(err, ErrMediaOpen) || !errors.Is(err, ErrNoVideoStream) {
			t.Errorf("expected ErrMediaOpen wrapping ErrNoVideoStream, got %v", err)
		}
	})

	t.Run("zero dimensions", func(t *testing.T) {
		data := decodeProbe(t, `{"streams": [{"codec_type": "video", "codec_name": "h264"}], "format": {"format_name": "mov"}}`)
		_, err := data.info()
		if !errors.Is(err, ErrMediaOpen) || !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("expected ErrMediaOpen wrapping ErrInvalidDimensions, got %v", err)
		}
	})
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"25/1", 25},
		{"30000/1001", 30000.0 / 1001.0},
		{"0/0", 0},
		{"", 0},
		{"24", 24},
		{"x/1", 0},
		{"25/0", 0},
	}

	for _, tc := range tests {
		if got := parseRate(tc.in); got != tc.want {
			t.Errorf("parseRate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
