package overlay

import (
	"log"

	"github.com/Carmen-Shannon/oxy-slice/common"
)

// VectorOverlayBuilderOption is a functional option applied to a vectorOverlay during construction.
type VectorOverlayBuilderOption func(*vectorOverlay)

// WithColor sets the glyph color.
//
// Parameters:
//   - c: the straight-alpha color
//
// Returns:
//   - VectorOverlayBuilderOption: option function to apply
func WithColor(c common.Color) VectorOverlayBuilderOption {
	return func(v *vectorOverlay) {
		v.style.Color = c
	}
}

// WithLineWidth sets the line width in pixels. Non-positive widths are ignored.
//
// Parameters:
//   - width: the line width
//
// Returns:
//   - VectorOverlayBuilderOption: option function to apply
func WithLineWidth(width float32) VectorOverlayBuilderOption {
	return func(v *vectorOverlay) {
		if width > 0 {
			v.style.LineWidth = width
		}
	}
}

// WithShrink sets the segment scale. Values outside (0, 1] are ignored.
//
// Parameters:
//   - shrink: the scale applied to each half-segment
//
// Returns:
//   - VectorOverlayBuilderOption: option function to apply
func WithShrink(shrink float32) VectorOverlayBuilderOption {
	return func(v *vectorOverlay) {
		if shrink > 0 && shrink <= 1 {
			v.style.Shrink = shrink
		}
	}
}

// WithMarker enables a square marker of the given edge length at each segment start.
func WithMarker(size float32) VectorOverlayBuilderOption {
	return func(v *vectorOverlay) {
		v.style.Marker = true
		if size > 0 {
			v.style.MarkerSize = size
		}
	}
}

// WithProjection sets the initial projection. An invalid projection is ignored.
func WithProjection(p Projection) VectorOverlayBuilderOption {
	return func(v *vectorOverlay) {
		if p.Validate() == nil {
			v.projection = p
		}
	}
}

// WithLogger sets the logger and whether rebuilds are logged.
func WithLogger(logger *log.Logger, verbose bool) VectorOverlayBuilderOption {
	return func(v *vectorOverlay) {
		if logger != nil {
			v.logger = logger
		}
		v.verbose = verbose
	}
}
