package texture

import (
	"log"

	"github.com/Carmen-Shannon/oxy-slice/engine/renderer"
)

// SliceTextureBuilderOption is a functional option applied to a sliceTexture during construction.
type SliceTextureBuilderOption func(*sliceTexture)

// WithFormat fixes the texel format. Without it the format follows the slice's component
// count (1 luminance, 2 luminance-alpha, 3 RGB, 4 or more RGBA).
//
// Parameters:
//   - format: the texel format
//
// Returns:
//   - SliceTextureBuilderOption: option function to apply
func WithFormat(format renderer.PixelFormat) SliceTextureBuilderOption {
	return func(t *sliceTexture) {
		if format.Components() > 0 {
			t.format = format
			t.formatFixed = true
		}
	}
}

// WithInterpolation sets the initial sampling filter. Unknown modes are ignored.
//
// Parameters:
//   - mode: the sampling filter
//
// Returns:
//   - SliceTextureBuilderOption: option function to apply
func WithInterpolation(mode renderer.Interpolation) SliceTextureBuilderOption {
	return func(t *sliceTexture) {
		if mode.Valid() {
			t.interpolation = mode
		}
	}
}

// WithLabel sets the debug label used for GPU resources and log lines.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - SliceTextureBuilderOption: option function to apply
func WithLabel(label string) SliceTextureBuilderOption {
	return func(t *sliceTexture) {
		t.label = label
	}
}

// WithLogger sets the logger and whether storage allocations are logged.
//
// Parameters:
//   - logger: the destination logger (nil keeps log.Default())
//   - verbose: true to log every allocation
//
// Returns:
//   - SliceTextureBuilderOption: option function to apply
func WithLogger(logger *log.Logger, verbose bool) SliceTextureBuilderOption {
	return func(t *sliceTexture) {
		if logger != nil {
			t.logger = logger
		}
		t.verbose = verbose
	}
}
