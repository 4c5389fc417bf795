package compress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"clip.mp4", "clip_compressed.mp4"},
		{"clip.MOV", "clip_compressed.mp4"},
		{"/videos/holiday.mov", "/videos/holiday_compressed.mp4"},
		{"dir.v2/clip.mp4", "dir.v2/clip_compressed.mp4"},
		{"my clip.mp4", "my clip_compressed.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, DefaultOutputPath(tt.input))
		})
	}
}

func TestTargetSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		percent       int
		wantW, wantH  int
	}{
		{"half of full HD", 1920, 1080, 50, 960, 540},
		{"identity", 1280, 720, 100, 1280, 720},
		{"truncates", 1920, 1080, 33, 633, 356},
		{"odd source", 641, 359, 50, 320, 179},
		{"zero", 1920, 1080, 0, 0, 0},
		{"tiny source", 3, 3, 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := TargetSize(tt.width, tt.height, tt.percent)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestValidate(t *testing.T) {
	v := newValidator()

	assert.NoError(t, validate(v, Request{InputPath: "clip.mp4", ScalePercent: 1}))
	assert.NoError(t, validate(v, Request{InputPath: "clip.mov", ScalePercent: 100}))

	err := validate(v, Request{InputPath: "clip.avi", ScalePercent: 200})
	if assert.ErrorIs(t, err, ErrInvalidArgument) {
		// Both problems are reported together.
		assert.Contains(t, err.Error(), "compression percentage")
		assert.Contains(t, err.Error(), `"clip.avi"`)
	}
}
