package common

import (
	"unsafe"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// Ortho creates an orthographic projection mapping the box [left, right] x [bottom, top]
// onto clip space x, y in [-1, 1]. Depth is fixed at z = 0, which lies inside the WebGPU
// clip range [0, 1].
//
// Passing bottom > top flips the vertical axis, which is how the viewer puts voxel row 0
// at the top of the screen.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - left, right: horizontal bounds in local units
//   - bottom, top: vertical bounds in local units
func Ortho(out []float32, left, right, bottom, top float32) {
	Identity(out)
	out[0] = 2 / (right - left)
	out[5] = 2 / (top - bottom)
	out[10] = 0
	out[12] = -(right + left) / (right - left)
	out[13] = -(top + bottom) / (top - bottom)
}

// TransformPoint applies a column-major 4x4 matrix to the 2D point (x, y, 0, 1).
//
// Parameters:
//   - m: the matrix (16 elements)
//   - x, y: the point
//
// Returns:
//   - float32, float32: the transformed x and y after the perspective divide
func TransformPoint(m []float32, x, y float32) (float32, float32) {
	tx := m[0]*x + m[4]*y + m[12]
	ty := m[1]*x + m[5]*y + m[13]
	tw := m[3]*x + m[7]*y + m[15]
	if tw != 0 && tw != 1 {
		tx /= tw
		ty /= tw
	}
	return tx, ty
}

// NextPowerOfTwo returns the smallest power of two that is >= n, doubling from 1.
// Values <= 1 yield 1.
//
// Parameters:
//   - n: the requested size
//
// Returns:
//   - int: the power-of-two size
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PowerOfTwoExtent promotes each axis of e to the next power of two independently.
//
// Parameters:
//   - e: the image extent
//
// Returns:
//   - Extent2: the texture storage extent, >= e on both axes
func PowerOfTwoExtent(e Extent2) Extent2 {
	return Extent2{
		Width:  NextPowerOfTwo(e.Width),
		Height: NextPowerOfTwo(e.Height),
	}
}
