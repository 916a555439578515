// Package slice defines the contract between the image pipeline and the slice renderers,
// along with an in-memory volume pipeline that implements it.
//
// A Source is polled, never pushed: renderers call EvaluateUpToDate once per frame and
// compare CurrentVersion against the version they last consumed. Any Slice returned by a
// Source is only valid until the next evaluation.
package slice

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-slice/common"
)

// Numeric is the set of voxel component types a volume can hold.
type Numeric interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~float32 | ~float64
}

// Slice is a read-only view of a 2D region of scalar or fixed-length vector voxels.
type Slice interface {
	// Region returns the index region covered by the slice. Origin is the index of the
	// first voxel; it may be non-zero.
	//
	// Returns:
	//   - common.Region: the slice region
	Region() common.Region

	// Components returns the number of components per voxel (1 for scalar images).
	//
	// Returns:
	//   - int: the component count
	Components() int

	// At returns component k of the voxel at region-relative position (x, y).
	// x and y run from 0 to Region().Size.Width-1 and Region().Size.Height-1.
	//
	// Parameters:
	//   - x, y: region-relative voxel position
	//   - k: the component index
	//
	// Returns:
	//   - float64: the component value
	At(x, y, k int) float64
}

// Source is the pipeline stage that produces a Slice on demand.
type Source interface {
	// CurrentVersion returns the modification time of the data this source would produce.
	// It never decreases and moves forward whenever the produced slice changes.
	//
	// Returns:
	//   - uint64: the current version
	CurrentVersion() uint64

	// EvaluateUpToDate brings the produced slice up to CurrentVersion. It is synchronous
	// and does nothing when the slice is already current.
	//
	// Returns:
	//   - error: an error if evaluation failed
	EvaluateUpToDate() error

	// Slice returns the most recently evaluated slice, or nil before the first evaluation.
	//
	// Returns:
	//   - Slice: the current slice
	Slice() Slice
}

// clock is the shared modification clock. Stamping every modification from one counter
// keeps versions comparable across chained pipeline stages.
var clock atomic.Uint64

// Tick advances the modification clock and returns the new time.
//
// Returns:
//   - uint64: a version greater than every version handed out before
func Tick() uint64 {
	return clock.Add(1)
}

// Image is a densely packed, row-major 2D image with interleaved components.
type Image[T Numeric] struct {
	// Pix holds Width*Height*Comps values; the value for (x, y, k) lives at (y*Width+x)*Comps+k.
	Pix []T

	// Rect is the index region the image covers.
	Rect common.Region

	// Comps is the number of components per pixel.
	Comps int
}

var _ Slice = &Image[uint8]{}

// NewImage allocates a zeroed image covering region with comps components per pixel.
//
// Parameters:
//   - region: the index region of the image
//   - comps: components per pixel (must be > 0)
//
// Returns:
//   - *Image[T]: the new image
func NewImage[T Numeric](region common.Region, comps int) *Image[T] {
	if comps < 1 {
		comps = 1
	}
	return &Image[T]{
		Pix:   make([]T, region.Size.Area()*comps),
		Rect:  region,
		Comps: comps,
	}
}

// NewImageFrom wraps existing pixel data. The slice is not copied.
//
// Parameters:
//   - region: the index region of the image
//   - comps: components per pixel
//   - pix: pixel data, len(pix) must equal region area * comps
//
// Returns:
//   - *Image[T]: the wrapping image
//   - error: ErrInvalidComponents if the data length does not match
func NewImageFrom[T Numeric](region common.Region, comps int, pix []T) (*Image[T], error) {
	if comps < 1 || len(pix) != region.Size.Area()*comps {
		return nil, ErrInvalidComponents
	}
	return &Image[T]{Pix: pix, Rect: region, Comps: comps}, nil
}

func (im *Image[T]) Region() common.Region {
	return im.Rect
}

func (im *Image[T]) Components() int {
	return im.Comps
}

func (im *Image[T]) At(x, y, k int) float64 {
	return float64(im.Pix[im.PixOffset(x, y)+k])
}

// PixOffset returns the index in Pix of the first component of pixel (x, y).
func (im *Image[T]) PixOffset(x, y int) int {
	return (y*im.Rect.Size.Width + x) * im.Comps
}

// Set writes component k of pixel (x, y).
func (im *Image[T]) Set(x, y, k int, v T) {
	im.Pix[im.PixOffset(x, y)+k] = v
}

// sameShape reports whether im can be reused to hold a slice of the given region and component count.
func (im *Image[T]) sameShape(region common.Region, comps int) bool {
	return im != nil && im.Rect == region && im.Comps == comps
}
