// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Extent2 is the size of a 2D region in texels or voxels.
type Extent2 struct {
	// Width is the size along the first (x) axis.
	Width int
	// Height is the size along the second (y) axis.
	Height int
}

// Area returns Width * Height, or 0 if either axis is non-positive.
func (e Extent2) Area() int {
	if e.Width <= 0 || e.Height <= 0 {
		return 0
	}
	return e.Width * e.Height
}

// Empty reports whether the extent covers no texels.
func (e Extent2) Empty() bool {
	return e.Area() == 0
}

// Index2 is a 2D voxel index.
type Index2 struct {
	X, Y int
}

// Region is a 2D index region: the index of its first element plus its extent.
// Origin is not necessarily zero; slices cut from a larger image keep the index of the
// first voxel they cover.
type Region struct {
	Origin Index2
	Size   Extent2
}

// Empty reports whether the region has zero area.
func (r Region) Empty() bool {
	return r.Size.Empty()
}

// Color is a straight (non-premultiplied) RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// RGB returns an opaque Color.
//
// Parameters:
//   - r, g, b: color components in [0, 1]
//
// Returns:
//   - Color: the opaque color
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// RGBA8 builds a Color from 8-bit components.
//
// Parameters:
//   - r, g, b, a: color components in [0, 255]
//
// Returns:
//   - Color: the normalized color
func RGBA8(r, g, b, a uint8) Color {
	return Color{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}
}

// White is the neutral tint used when a texture should be drawn unmodulated.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// TextureStagingData holds packed texel data pending GPU upload.
// The renderer copies Pixels into the sub-rectangle [0, Width) x [0, Height) of the
// target texture.
type TextureStagingData struct {
	// Pixels is the densely packed, row-major texel data. Its length must be Width * Height * Components.
	Pixels []byte
	// Width is the width of the uploaded region in texels.
	Width uint32
	// Height is the height of the uploaded region in texels.
	Height uint32
	// Components is the number of bytes per texel in Pixels (1 to 4).
	Components uint32
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}
