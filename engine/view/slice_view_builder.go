package view

import (
	"github.com/Carmen-Shannon/oxy-slice/common"
	"github.com/Carmen-Shannon/oxy-slice/engine/overlay"
	"github.com/Carmen-Shannon/oxy-slice/engine/texture"
)

// SliceViewBuilderOption is a functional option applied to a sliceView during construction.
type SliceViewBuilderOption func(*sliceView)

// WithBase sets the base layer.
//
// Parameters:
//   - t: the base texture
//
// Returns:
//   - SliceViewBuilderOption: option function to apply
func WithBase(t texture.SliceTexture) SliceViewBuilderOption {
	return func(v *sliceView) {
		v.base = t
	}
}

// WithOverlay sets the transparent overlay layer and its opacity.
//
// Parameters:
//   - t: the overlay texture
//   - alpha: the layer opacity, 0 to 255
//
// Returns:
//   - SliceViewBuilderOption: option function to apply
func WithOverlay(t texture.SliceTexture, alpha uint8) SliceViewBuilderOption {
	return func(v *sliceView) {
		v.overlay = t
		v.overlayAlpha = alpha
	}
}

// WithVectors sets the vector glyph layer.
//
// Parameters:
//   - o: the vector overlay
//
// Returns:
//   - SliceViewBuilderOption: option function to apply
func WithVectors(o overlay.VectorOverlay) SliceViewBuilderOption {
	return func(v *sliceView) {
		v.vectors = o
	}
}

// WithBackground sets the tint applied to the base layer.
//
// Parameters:
//   - c: the tint
//
// Returns:
//   - SliceViewBuilderOption: option function to apply
func WithBackground(c common.Color) SliceViewBuilderOption {
	return func(v *sliceView) {
		v.background = c
	}
}
