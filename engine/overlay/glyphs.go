package overlay

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-slice/common"
	"github.com/Carmen-Shannon/oxy-slice/engine/renderer"
	"github.com/Carmen-Shannon/oxy-slice/engine/slice"
)

// Projection selects the two vector components drawn along the slice's x and y axes and
// their sign.
type Projection struct {
	// XIndex and YIndex are the vector components mapped onto the slice x and y axes.
	XIndex, YIndex int
	// XFacing and YFacing are +1 or -1 and follow display orientation flips.
	XFacing, YFacing int
}

// DefaultProjection maps component 0 to x and component 1 to y with no flips.
var DefaultProjection = Projection{XIndex: 0, YIndex: 1, XFacing: 1, YFacing: 1}

// Validate checks the facings and that both indices are non-negative.
func (p Projection) Validate() error {
	if p.XIndex < 0 || p.YIndex < 0 {
		return fmt.Errorf("%w: (%d, %d)", ErrInvalidComponent, p.XIndex, p.YIndex)
	}
	if (p.XFacing != 1 && p.XFacing != -1) || (p.YFacing != 1 && p.YFacing != -1) {
		return fmt.Errorf("%w: (%d, %d)", ErrInvalidFacing, p.XFacing, p.YFacing)
	}
	return nil
}

// Style is the fixed look of a glyph field.
type Style struct {
	// Color is the line and marker color.
	Color common.Color
	// LineWidth is the line width in screen pixels.
	LineWidth float32
	// Shrink scales segments so neighboring glyphs keep a gap; 1 spans a full voxel for a unit vector.
	Shrink float32
	// Marker adds a square at the start of each segment.
	Marker bool
	// MarkerSize is the marker edge length in voxels.
	MarkerSize float32
}

// DefaultStyle is the overlay look used when no options are given.
var DefaultStyle = Style{
	Color:      common.RGBA8(255, 100, 50, 100),
	LineWidth:  2,
	Shrink:     0.7,
	MarkerSize: 0.2,
}

// BuildGlyphs turns every voxel of s into a line segment centered on the voxel.
//
// Voxel (x, y) is centered at (x+0.5, y+0.5) in region-relative coordinates, so the glyphs
// line up with a SliceTexture drawn over [0, w] x [0, h]. The segment runs from c-d to c+d
// with d = facing * v[index] * 0.5 * shrink per axis; a unit vector therefore spans shrink
// voxels.
//
// Parameters:
//   - s: the vector slice
//   - p: the projected components and their facings
//   - style: the glyph look
//
// Returns:
//   - []renderer.Primitive: one line per voxel, each followed by its marker when enabled
//   - error: ErrInvalidFacing or ErrInvalidComponent
func BuildGlyphs(s slice.Slice, p Projection, style Style) ([]renderer.Primitive, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	comps := s.Components()
	if p.XIndex >= comps || p.YIndex >= comps {
		return nil, fmt.Errorf("%w: (%d, %d) with %d components", ErrInvalidComponent, p.XIndex, p.YIndex, comps)
	}

	size := s.Region().Size
	perVoxel := 1
	if style.Marker {
		perVoxel = 2
	}
	prims := make([]renderer.Primitive, 0, size.Area()*perVoxel)

	half := 0.5 * float64(style.Shrink)
	fx, fy := float64(p.XFacing), float64(p.YFacing)
	m := style.MarkerSize / 2
	for y := 0; y < size.Height; y++ {
		for x := 0; x < size.Width; x++ {
			cx, cy := float64(x)+0.5, float64(y)+0.5
			dx := fx * s.At(x, y, p.XIndex) * half
			dy := fy * s.At(x, y, p.YIndex) * half
			a := [2]float32{float32(cx - dx), float32(cy - dy)}
			b := [2]float32{float32(cx + dx), float32(cy + dy)}

			prims = append(prims, renderer.Primitive{
				Kind:  renderer.PrimitiveLine,
				A:     a,
				B:     b,
				Color: style.Color,
				Width: style.LineWidth,
			})
			if style.Marker {
				prims = append(prims, renderer.Primitive{
					Kind:  renderer.PrimitiveRect,
					A:     [2]float32{a[0] - m, a[1] - m},
					B:     [2]float32{a[0] + m, a[1] + m},
					Color: style.Color,
				})
			}
		}
	}
	return prims, nil
}
