package compress

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidArgument is returned when a request is rejected before any file I/O.
var ErrInvalidArgument = errors.New("invalid argument")

// Scale bounds, in percent of the source frame size. Zero would produce an
// empty frame, so it is rejected up front.
const (
	MinScalePercent = 1
	MaxScalePercent = 100
)

// outputSuffix is appended to the input stem when no output path is given.
const outputSuffix = "_compressed.mp4"

// sourceExtensions are the accepted input extensions, lower case.
var sourceExtensions = map[string]bool{
	".mov": true,
	".mp4": true,
}

// Request describes one video to shrink.
type Request struct {
	// InputPath is the .mov or .mp4 file to read.
	InputPath string `validate:"required,videoext"`
	// ScalePercent is the output frame size as a percentage of the source.
	ScalePercent int `validate:"min=1,max=100"`
	// OutputPath is where the MP4 is written. Derived from InputPath when empty.
	OutputPath string
}

// Result describes a finished compression.
type Result struct {
	// OutputPath is the file the video was written to.
	OutputPath string
	// Width and Height are the encoded frame dimensions.
	Width  int
	Height int
	// Location is where the output was published: a local path or a URL.
	Location string
}

// DefaultOutputPath derives the output path for input by replacing its
// extension with "_compressed.mp4".
func DefaultOutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + outputSuffix
}

// TargetSize scales width and height by percent, truncating toward zero.
func TargetSize(width, height, percent int) (int, int) {
	return width * percent / 100, height * percent / 100
}

// newValidator returns a validator with the "videoext" rule registered.
func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("videoext", func(fl validator.FieldLevel) bool {
		return sourceExtensions[strings.ToLower(filepath.Ext(fl.Field().String()))]
	})
	return v
}

// validate checks req and maps validator failures to ErrInvalidArgument with
// an operator-facing message.
func validate(v *validator.Validate, req Request) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidArgument, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "ScalePercent":
		return fmt.Sprintf("compression percentage must be between %d and %d, got %v",
			MinScalePercent, MaxScalePercent, fe.Value())
	case "InputPath":
		if fe.Tag() == "required" {
			return "input path is required"
		}
		return fmt.Sprintf("input file must be a .mov or .mp4 file, got %q", fe.Value())
	default:
		return fe.Error()
	}
}
