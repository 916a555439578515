package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-slice/common"
)

var (
	// ErrUnknownTexture is returned when a TextureHandle was never created or has been deleted.
	ErrUnknownTexture = errors.New("renderer: unknown texture handle")

	// ErrUnknownBatch is returned when a BatchHandle was never created or has been deleted.
	ErrUnknownBatch = errors.New("renderer: unknown batch handle")

	// ErrTextureNotAllocated is returned when uploading to a texture that has no storage yet.
	ErrTextureNotAllocated = errors.New("renderer: texture storage not allocated")

	// ErrUploadOutOfBounds is returned when an upload does not fit the texture storage or the pixel data.
	ErrUploadOutOfBounds = errors.New("renderer: upload out of bounds")
)

// TextureHandle names a GPU texture owned by a Renderer. The zero value is never a valid handle.
type TextureHandle uint32

// BatchHandle names an uploaded primitive batch owned by a Renderer. The zero value is never valid.
type BatchHandle uint32

// Interpolation selects the texture sampling filter.
type Interpolation int

const (
	// InterpolationNearest samples the closest texel.
	InterpolationNearest Interpolation = iota
	// InterpolationLinear blends the four closest texels.
	InterpolationLinear
)

// Valid reports whether i is a known interpolation mode.
func (i Interpolation) Valid() bool {
	return i == InterpolationNearest || i == InterpolationLinear
}

func (i Interpolation) String() string {
	switch i {
	case InterpolationNearest:
		return "nearest"
	case InterpolationLinear:
		return "linear"
	default:
		return fmt.Sprintf("interpolation(%d)", int(i))
	}
}

// ParseInterpolation converts "nearest" or "linear" into an Interpolation.
//
// Parameters:
//   - s: the mode name
//
// Returns:
//   - Interpolation: the parsed mode
//   - error: an error for any other value
func ParseInterpolation(s string) (Interpolation, error) {
	switch s {
	case "nearest":
		return InterpolationNearest, nil
	case "linear":
		return InterpolationLinear, nil
	default:
		return 0, fmt.Errorf("renderer: unknown interpolation %q", s)
	}
}

// PixelFormat describes the component layout of uploaded texture data. Every component is one byte.
type PixelFormat int

const (
	// FormatLuminance is one gray component per texel.
	FormatLuminance PixelFormat = iota
	// FormatLuminanceAlpha is gray plus alpha.
	FormatLuminanceAlpha
	// FormatRGB is red, green and blue.
	FormatRGB
	// FormatRGBA is red, green, blue and alpha.
	FormatRGBA
)

// Components returns the number of bytes per texel in upload data.
func (f PixelFormat) Components() int {
	switch f {
	case FormatLuminance:
		return 1
	case FormatLuminanceAlpha:
		return 2
	case FormatRGB:
		return 3
	case FormatRGBA:
		return 4
	default:
		return 0
	}
}

func (f PixelFormat) String() string {
	switch f {
	case FormatLuminance:
		return "luminance"
	case FormatLuminanceAlpha:
		return "luminance-alpha"
	case FormatRGB:
		return "rgb"
	case FormatRGBA:
		return "rgba"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// FormatForComponents returns the pixel format holding n components per texel.
//
// Parameters:
//   - n: components per texel (1 to 4)
//
// Returns:
//   - PixelFormat: the matching format
//   - bool: false if no format holds n components
func FormatForComponents(n int) (PixelFormat, bool) {
	switch n {
	case 1:
		return FormatLuminance, true
	case 2:
		return FormatLuminanceAlpha, true
	case 3:
		return FormatRGB, true
	case 4:
		return FormatRGBA, true
	default:
		return 0, false
	}
}

// TextureDescriptor describes the storage allocated for a texture.
type TextureDescriptor struct {
	// Size is the full storage extent. Slice textures use power-of-two sizes.
	Size common.Extent2

	// Format is the layout of data passed to UploadSubImage.
	Format PixelFormat

	// Interpolation is the sampling filter used when the texture is drawn.
	Interpolation Interpolation

	// Label is a debug name for the GPU resources.
	Label string
}

// Quad is an axis-aligned textured rectangle in slice coordinates.
// (X0, Y0) maps to texcoord (U0, V0) and (X1, Y1) maps to (U1, V1).
type Quad struct {
	X0, Y0, X1, Y1 float32
	U0, V0, U1, V1 float32
}

// PrimitiveKind selects how a Primitive is drawn.
type PrimitiveKind int

const (
	// PrimitiveLine is a segment from A to B, Width pixels wide.
	PrimitiveLine PrimitiveKind = iota
	// PrimitiveRect is a filled axis-aligned rectangle with corners A and B.
	PrimitiveRect
)

// Primitive is one untextured shape in a batch, in slice coordinates.
type Primitive struct {
	Kind  PrimitiveKind
	A, B  [2]float32
	Color common.Color
	Width float32
}
