// Package view composes the layers of one slice display: a base texture, an optional
// transparent overlay texture and optional vector glyphs, all under one camera.
package view

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-slice/common"
	"github.com/Carmen-Shannon/oxy-slice/engine/camera"
	"github.com/Carmen-Shannon/oxy-slice/engine/overlay"
	"github.com/Carmen-Shannon/oxy-slice/engine/renderer"
	"github.com/Carmen-Shannon/oxy-slice/engine/texture"
)

// Stats collects the counters of every layer.
type Stats struct {
	Base    texture.Stats
	Overlay texture.Stats
	Vectors overlay.Stats
}

type sliceView struct {
	name       string
	camera     camera.Camera
	background common.Color

	base texture.SliceTexture

	overlay        texture.SliceTexture
	overlayAlpha   uint8
	overlayVisible bool

	vectors        overlay.VectorOverlay
	vectorsVisible bool
}

// SliceView draws one slice display. Layers are drawn in order: base, overlay, vectors.
type SliceView interface {
	// Name returns the view name used in log lines.
	Name() string

	// Camera returns the view camera.
	Camera() camera.Camera

	// Background returns the tint applied to the base layer.
	Background() common.Color

	// SetBackground sets the tint applied to the base layer.
	SetBackground(c common.Color)

	// Base returns the base layer, or nil.
	Base() texture.SliceTexture

	// SetBase replaces the base layer. The previous layer is not released.
	SetBase(t texture.SliceTexture)

	// Overlay returns the transparent overlay layer, or nil.
	Overlay() texture.SliceTexture

	// SetOverlay replaces the transparent overlay layer and its opacity.
	//
	// Parameters:
	//   - t: the overlay texture, or nil to remove it
	//   - alpha: the layer opacity, 0 to 255
	SetOverlay(t texture.SliceTexture, alpha uint8)

	// OverlayAlpha returns the overlay opacity.
	OverlayAlpha() uint8

	// SetOverlayAlpha changes the overlay opacity without touching the texture.
	SetOverlayAlpha(alpha uint8)

	// SetOverlayVisible shows or hides the overlay layer.
	SetOverlayVisible(visible bool)

	// Vectors returns the vector glyph layer, or nil.
	Vectors() overlay.VectorOverlay

	// SetVectors replaces the vector glyph layer.
	SetVectors(v overlay.VectorOverlay)

	// SetVectorsVisible shows or hides the vector glyph layer.
	SetVectorsVisible(visible bool)

	// Resize updates the camera viewport.
	//
	// Parameters:
	//   - width, height: the framebuffer size in pixels
	Resize(width, height int)

	// Draw brings the base layer up to date, fits the camera to it and draws every visible
	// layer through r. Call it between BeginFrame and EndFrame.
	//
	// Parameters:
	//   - r: the renderer of the current frame
	//
	// Returns:
	//   - error: the first layer error, wrapped with the layer name
	Draw(r renderer.Renderer) error

	// Stats returns the counters of every layer.
	Stats() Stats

	// Release releases every layer.
	Release()
}

var _ SliceView = &sliceView{}

// NewSliceView creates an empty view named name.
//
// Parameters:
//   - name: the view name
//   - cam: the camera, or nil for a default camera
//   - options: functional options (layers, background)
//
// Returns:
//   - SliceView: the new view
func NewSliceView(name string, cam camera.Camera, options ...SliceViewBuilderOption) SliceView {
	if cam == nil {
		cam = camera.NewCamera()
	}
	v := &sliceView{
		name:           name,
		camera:         cam,
		background:     common.White,
		overlayAlpha:   128,
		overlayVisible: true,
		vectorsVisible: true,
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

func (v *sliceView) Name() string {
	return v.name
}

func (v *sliceView) Camera() camera.Camera {
	return v.camera
}

func (v *sliceView) Background() common.Color {
	return v.background
}

func (v *sliceView) SetBackground(c common.Color) {
	v.background = c
}

func (v *sliceView) Base() texture.SliceTexture {
	return v.base
}

func (v *sliceView) SetBase(t texture.SliceTexture) {
	v.base = t
}

func (v *sliceView) Overlay() texture.SliceTexture {
	return v.overlay
}

func (v *sliceView) SetOverlay(t texture.SliceTexture, alpha uint8) {
	v.overlay = t
	v.overlayAlpha = alpha
}

func (v *sliceView) OverlayAlpha() uint8 {
	return v.overlayAlpha
}

func (v *sliceView) SetOverlayAlpha(alpha uint8) {
	v.overlayAlpha = alpha
}

func (v *sliceView) SetOverlayVisible(visible bool) {
	v.overlayVisible = visible
}

func (v *sliceView) Vectors() overlay.VectorOverlay {
	return v.vectors
}

func (v *sliceView) SetVectors(o overlay.VectorOverlay) {
	v.vectors = o
}

func (v *sliceView) SetVectorsVisible(visible bool) {
	v.vectorsVisible = visible
}

func (v *sliceView) Resize(width, height int) {
	v.camera.SetViewport(width, height)
}

func (v *sliceView) Draw(r renderer.Renderer) error {
	if v.base != nil {
		if err := v.base.Update(); err != nil {
			return fmt.Errorf("%s base: %w", v.name, err)
		}
		v.camera.SetExtent(v.base.Extent())
	}
	v.camera.Update()
	r.SetViewTransform(v.camera.ViewMatrix())

	if v.base != nil {
		if err := v.base.Draw(v.background); err != nil {
			return fmt.Errorf("%s base: %w", v.name, err)
		}
	}
	if v.overlay != nil && v.overlayVisible {
		if err := v.overlay.DrawTransparent(v.overlayAlpha); err != nil {
			return fmt.Errorf("%s overlay: %w", v.name, err)
		}
	}
	if v.vectors != nil && v.vectorsVisible {
		if err := v.vectors.Draw(); err != nil {
			return fmt.Errorf("%s vectors: %w", v.name, err)
		}
	}
	return nil
}

func (v *sliceView) Stats() Stats {
	var s Stats
	if v.base != nil {
		s.Base = v.base.Stats()
	}
	if v.overlay != nil {
		s.Overlay = v.overlay.Stats()
	}
	if v.vectors != nil {
		s.Vectors = v.vectors.Stats()
	}
	return s
}

func (v *sliceView) Release() {
	if v.base != nil {
		v.base.Release()
	}
	if v.overlay != nil {
		v.overlay.Release()
	}
	if v.vectors != nil {
		v.vectors.Release()
	}
}
