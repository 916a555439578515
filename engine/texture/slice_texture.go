// Package texture keeps a GPU texture in step with a 2D slice produced by an image pipeline.
//
// A SliceTexture converts the slice into a packed byte buffer and uploads it into a
// power-of-two texture, but only when the pipeline version has moved since the last upload.
// Calling Update (or a draw, which calls Update) on a fresh texture does no conversion and
// touches no GPU state.
package texture

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-slice/common"
	"github.com/Carmen-Shannon/oxy-slice/engine/renderer"
	"github.com/Carmen-Shannon/oxy-slice/engine/slice"
)

// Stats counts the work a SliceTexture has done.
type Stats struct {
	// Conversions counts slice-to-buffer conversions.
	Conversions int
	// Uploads counts sub-image uploads.
	Uploads int
	// Allocations counts full texture storage allocations.
	Allocations int
	// Skips counts Update calls that found the texture fresh.
	Skips int
}

// sliceTexture is the implementation of the SliceTexture interface.
type sliceTexture struct {
	r      renderer.Renderer
	source slice.Source

	format        renderer.PixelFormat
	formatFixed   bool
	interpolation renderer.Interpolation
	label         string
	logger        *log.Logger
	verbose       bool

	// buffer is the packed upload data of the last conversion.
	buffer []byte
	// extent is the slice extent of the last conversion.
	extent common.Extent2
	// texSize is the power-of-two storage extent of the last allocation.
	texSize common.Extent2

	handle    renderer.TextureHandle
	hasHandle bool
	// uploaded is set by the first successful Update and cleared by Release.
	uploaded  bool

	// allocated is the descriptor the current storage was allocated with.
	allocated    renderer.TextureDescriptor
	hasAllocated bool

	// token is the source version the texture mirrors; valid only when initialized.
	token       uint64
	initialized bool
	released    bool

	stats Stats
}

// SliceTexture mirrors the current slice of a pipeline source in a GPU texture.
//
// A SliceTexture is not safe for concurrent use; all calls belong on the render thread.
type SliceTexture interface {
	// SetSource binds a pipeline source. The source is evaluated once to validate its slice.
	// Binding always forces the next Update to reconvert, even if versions match.
	//
	// Parameters:
	//   - src: the source to mirror
	//
	// Returns:
	//   - error: ErrNilSource, ErrEmptyRegion, or the source's evaluation error; the previous
	//     source stays bound on error
	SetSource(src slice.Source) error

	// SetInterpolation selects the sampling filter. Setting the current mode does nothing;
	// a new mode forces the next Update to reupload.
	//
	// Parameters:
	//   - mode: InterpolationNearest or InterpolationLinear
	//
	// Returns:
	//   - error: ErrInvalidInterpolation for any other value
	SetInterpolation(mode renderer.Interpolation) error

	// SetFormat fixes the texel format. Setting the current format does nothing; a new format
	// forces the next Update to reconvert.
	//
	// Parameters:
	//   - format: the texel format
	//
	// Returns:
	//   - error: ErrInvalidFormat for a format with no components
	SetFormat(format renderer.PixelFormat) error

	// Update brings the texture up to the source's current version.
	//
	// The source is evaluated first. If the texture already mirrors the current version,
	// Update returns without converting or issuing renderer calls. Otherwise the slice is
	// packed into the upload buffer, the texture handle is created on first use, storage is
	// (re)allocated at the power-of-two extent when its description changed, and only the
	// slice-sized sub-rectangle is uploaded.
	//
	// Returns:
	//   - error: ErrNoSource, ErrEmptyRegion, ErrReleased, or a wrapped evaluation or renderer
	//     error; on error the version is not recorded, so the next Update retries
	Update() error

	// Draw updates the texture and draws it as an opaque quad covering [0, w] x [0, h],
	// sampling only the valid sub-rectangle, tinted by background.
	//
	// Parameters:
	//   - background: the modulation color
	//
	// Returns:
	//   - error: any Update error, or the renderer's draw error
	Draw(background common.Color) error

	// DrawTransparent updates the texture and draws it white-tinted with the given alpha and
	// blending enabled. Renderer state is restored afterwards.
	//
	// Parameters:
	//   - alpha: the layer opacity, 0 to 255
	//
	// Returns:
	//   - error: any Update error, or the renderer's draw error
	DrawTransparent(alpha uint8) error

	// Release deletes the texture handle. Later calls fail with ErrReleased. Releasing twice is a no-op.
	Release()

	// TextureSize returns the allocated power-of-two extent, or zero before the first upload.
	//
	// Returns:
	//   - common.Extent2: the storage extent
	TextureSize() common.Extent2

	// Extent returns the slice extent of the last upload.
	//
	// Returns:
	//   - common.Extent2: the slice extent
	Extent() common.Extent2

	// TextureHandle returns the renderer handle and whether it holds uploaded texels.
	//
	// Returns:
	//   - renderer.TextureHandle: the handle
	//   - bool: false before the first successful Update and after Release
	TextureHandle() (renderer.TextureHandle, bool)

	// Buffer returns the packed upload buffer of the last conversion. The slice is owned by the
	// texture and is overwritten by the next conversion.
	//
	// Returns:
	//   - []byte: the upload buffer, or nil before the first conversion
	Buffer() []byte

	// Format returns the texel format used by the last or next conversion.
	//
	// Returns:
	//   - renderer.PixelFormat: the texel format
	Format() renderer.PixelFormat

	// Interpolation returns the current sampling filter.
	//
	// Returns:
	//   - renderer.Interpolation: the filter
	Interpolation() renderer.Interpolation

	// Stats returns the work counters.
	//
	// Returns:
	//   - Stats: a copy of the counters
	Stats() Stats

	// Label returns the debug label.
	//
	// Returns:
	//   - string: the label
	Label() string
}

var _ SliceTexture = &sliceTexture{}

// NewSliceTexture creates a SliceTexture drawing through r. No GPU resources are created
// until the first Update.
//
// Parameters:
//   - r: the renderer that owns the texture
//   - options: functional options (format, interpolation, label, logger)
//
// Returns:
//   - SliceTexture: the new texture cache
func NewSliceTexture(r renderer.Renderer, options ...SliceTextureBuilderOption) SliceTexture {
	t := &sliceTexture{
		r:             r,
		format:        renderer.FormatLuminance,
		interpolation: renderer.InterpolationNearest,
		label:         "Slice",
		logger:        log.Default(),
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *sliceTexture) SetSource(src slice.Source) error {
	if t.released {
		return ErrReleased
	}
	if src == nil {
		return ErrNilSource
	}
	if err := src.EvaluateUpToDate(); err != nil {
		return fmt.Errorf("texture %s: evaluate source: %w", t.label, err)
	}
	s := src.Slice()
	if s == nil || s.Region().Empty() {
		return ErrEmptyRegion
	}

	t.source = src
	t.initialized = false
	// A new source may pack to the same size; drop the buffer so it is rebuilt from scratch.
	t.buffer = nil
	return nil
}

func (t *sliceTexture) SetInterpolation(mode renderer.Interpolation) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidInterpolation, int(mode))
	}
	if mode == t.interpolation {
		return nil
	}
	t.interpolation = mode
	t.initialized = false
	return nil
}

func (t *sliceTexture) SetFormat(format renderer.PixelFormat) error {
	if format.Components() == 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFormat, int(format))
	}
	if t.formatFixed && format == t.format {
		return nil
	}
	t.format = format
	t.formatFixed = true
	t.initialized = false
	return nil
}

func (t *sliceTexture) Update() error {
	if t.released {
		return ErrReleased
	}
	if t.source == nil {
		return ErrNoSource
	}

	if err := t.source.EvaluateUpToDate(); err != nil {
		return fmt.Errorf("texture %s: evaluate source: %w", t.label, err)
	}
	version := t.source.CurrentVersion()
	if t.initialized && t.token == version {
		t.stats.Skips++
		return nil
	}

	s := t.source.Slice()
	if s == nil || s.Region().Empty() {
		return ErrEmptyRegion
	}

	if !t.formatFixed {
		if f, ok := renderer.FormatForComponents(s.Components()); ok {
			t.format = f
		} else {
			t.format = renderer.FormatRGBA
		}
	}
	comps := t.format.Components()

	if n := packedSize(s, comps); len(t.buffer) != n {
		t.buffer = make([]byte, n)
	}
	pack(t.buffer, s, comps)
	t.stats.Conversions++

	t.extent = s.Region().Size
	size := common.PowerOfTwoExtent(t.extent)

	if !t.hasHandle {
		h, err := t.r.CreateTexture()
		if err != nil {
			return fmt.Errorf("texture %s: create: %w", t.label, err)
		}
		t.handle = h
		t.hasHandle = true
	}

	desc := renderer.TextureDescriptor{
		Size:          size,
		Format:        t.format,
		Interpolation: t.interpolation,
		Label:         t.label,
	}
	if !t.hasAllocated || t.allocated != desc {
		if err := t.r.AllocateTexture(t.handle, desc); err != nil {
			t.hasAllocated = false
			return fmt.Errorf("texture %s: allocate %dx%d: %w", t.label, size.Width, size.Height, err)
		}
		t.allocated = desc
		t.hasAllocated = true
		t.texSize = size
		t.stats.Allocations++
		if t.verbose {
			t.logger.Printf("[SliceTexture] %s: allocated %dx%d %s (%s)", t.label, size.Width, size.Height, t.format, t.interpolation)
		}
	}

	if err := t.r.UploadSubImage(t.handle, t.extent.Width, t.extent.Height, t.buffer); err != nil {
		return fmt.Errorf("texture %s: upload: %w", t.label, err)
	}
	t.stats.Uploads++

	t.token = version
	t.initialized = true
	t.uploaded = true
	return nil
}

// quad returns the slice-sized quad mapped onto the valid texel sub-rectangle.
func (t *sliceTexture) quad() renderer.Quad {
	w, h := float32(t.extent.Width), float32(t.extent.Height)
	return renderer.Quad{
		X0: 0, Y0: 0, X1: w, Y1: h,
		U0: 0, V0: 0,
		U1: w / float32(t.texSize.Width),
		V1: h / float32(t.texSize.Height),
	}
}

func (t *sliceTexture) Draw(background common.Color) error {
	if err := t.Update(); err != nil {
		return err
	}

	t.r.PushState()
	defer t.r.PopState()
	return t.r.DrawTexturedQuad(t.handle, t.quad(), background)
}

func (t *sliceTexture) DrawTransparent(alpha uint8) error {
	if err := t.Update(); err != nil {
		return err
	}

	t.r.PushState()
	defer t.r.PopState()
	t.r.SetBlend(true)
	tint := common.White
	tint.A = float32(alpha) / 255
	return t.r.DrawTexturedQuad(t.handle, t.quad(), tint)
}

func (t *sliceTexture) Release() {
	if t.released {
		return
	}
	t.released = true
	if t.hasHandle {
		t.r.DeleteTexture(t.handle)
		t.hasHandle = false
	}
	t.initialized = false
	t.uploaded = false
	t.hasAllocated = false
	t.buffer = nil
}

func (t *sliceTexture) TextureSize() common.Extent2 {
	return t.texSize
}

func (t *sliceTexture) Extent() common.Extent2 {
	return t.extent
}

func (t *sliceTexture) TextureHandle() (renderer.TextureHandle, bool) {
	return t.handle, t.hasHandle && t.uploaded
}

func (t *sliceTexture) Buffer() []byte {
	return t.buffer
}

func (t *sliceTexture) Format() renderer.PixelFormat {
	return t.format
}

func (t *sliceTexture) Interpolation() renderer.Interpolation {
	return t.interpolation
}

func (t *sliceTexture) Stats() Stats {
	return t.stats
}

func (t *sliceTexture) Label() string {
	return t.label
}
