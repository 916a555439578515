package slice

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-slice/common"
)

// Axis selects the volume axis a slice is perpendicular to.
type Axis int

const (
	// AxisX cuts sagittal-style slices spanning (y, z).
	AxisX Axis = iota
	// AxisY cuts coronal-style slices spanning (x, z).
	AxisY
	// AxisZ cuts axial-style slices spanning (x, y).
	AxisZ
)

// String returns the lower-case axis name.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// ParseAxis converts "x", "y" or "z" (either case) into an Axis.
//
// Parameters:
//   - s: the axis name
//
// Returns:
//   - Axis: the parsed axis
//   - error: ErrInvalidAxis for any other value
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidAxis, s)
	}
}

// PlaneAxes returns the volume axes spanned by a slice perpendicular to a, as (u, v).
// Slice x runs along volume axis u and slice y along v.
func (a Axis) PlaneAxes() (int, int) {
	switch a {
	case AxisX:
		return 1, 2
	case AxisY:
		return 0, 2
	default:
		return 0, 1
	}
}

// Volume is a dense 3D image with interleaved voxel components, stored x-fastest.
type Volume[T Numeric] struct {
	// Data holds Size[0]*Size[1]*Size[2]*Comps values.
	Data []T

	// Origin is the index of the first voxel along x, y and z.
	Origin [3]int

	// Size is the number of voxels along x, y and z.
	Size [3]int

	// Comps is the number of components per voxel.
	Comps int

	mtime uint64
}

// NewVolume allocates a zeroed volume.
//
// Parameters:
//   - width, height, depth: voxel counts along x, y and z
//   - comps: components per voxel (1 for scalar volumes)
//
// Returns:
//   - *Volume[T]: the new volume
//   - error: ErrInvalidComponents if comps < 1
func NewVolume[T Numeric](width, height, depth, comps int) (*Volume[T], error) {
	if comps < 1 {
		return nil, ErrInvalidComponents
	}
	n := max(width, 0) * max(height, 0) * max(depth, 0)
	return &Volume[T]{
		Data:  make([]T, n*comps),
		Size:  [3]int{width, height, depth},
		Comps: comps,
		mtime: Tick(),
	}, nil
}

// Version returns the time of the last modification.
func (v *Volume[T]) Version() uint64 {
	return v.mtime
}

// Modified marks the volume as changed. Call it after writing Data directly.
func (v *Volume[T]) Modified() {
	v.mtime = Tick()
}

// Offset returns the index in Data of the first component of voxel (x, y, z),
// relative to the volume's first voxel.
func (v *Volume[T]) Offset(x, y, z int) int {
	return ((z*v.Size[1]+y)*v.Size[0] + x) * v.Comps
}

// Voxel returns the components of voxel (x, y, z) as a sub-slice of Data.
func (v *Volume[T]) Voxel(x, y, z int) []T {
	off := v.Offset(x, y, z)
	return v.Data[off : off+v.Comps]
}

// SetVoxel copies vals into voxel (x, y, z) and marks the volume modified.
//
// Parameters:
//   - x, y, z: volume-relative voxel position
//   - vals: exactly Comps component values
//
// Returns:
//   - error: ErrInvalidComponents if len(vals) != Comps
func (v *Volume[T]) SetVoxel(x, y, z int, vals ...T) error {
	if len(vals) != v.Comps {
		return fmt.Errorf("%w: got %d values for %d components", ErrInvalidComponents, len(vals), v.Comps)
	}
	copy(v.Voxel(x, y, z), vals)
	v.Modified()
	return nil
}

// Fill sets every voxel from fn and marks the volume modified once.
//
// Parameters:
//   - fn: called with each volume-relative position and the voxel's component slice to fill
func (v *Volume[T]) Fill(fn func(x, y, z int, out []T)) {
	for z := 0; z < v.Size[2]; z++ {
		for y := 0; y < v.Size[1]; y++ {
			for x := 0; x < v.Size[0]; x++ {
				fn(x, y, z, v.Voxel(x, y, z))
			}
		}
	}
	v.Modified()
}

// SliceCount returns the number of slices along axis a.
func (v *Volume[T]) SliceCount(a Axis) int {
	switch a {
	case AxisX, AxisY, AxisZ:
		return v.Size[a]
	default:
		return 0
	}
}

// SliceRegion returns the 2D index region of a slice perpendicular to a.
func (v *Volume[T]) SliceRegion(a Axis) common.Region {
	u, w := a.PlaneAxes()
	return common.Region{
		Origin: common.Index2{X: v.Origin[u], Y: v.Origin[w]},
		Size:   common.Extent2{Width: v.Size[u], Height: v.Size[w]},
	}
}
