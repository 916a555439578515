package slice

import (
	"gonum.org/v1/gonum/floats"
)

// NormalizeVectors scales every voxel of vol to unit L2 length in place. Zero vectors are
// left untouched. The volume is marked modified once.
//
// Parameters:
//   - vol: a vector volume
//
// Returns:
//   - float64: the largest norm seen before normalization
func NormalizeVectors(vol *Volume[float64]) float64 {
	var peak float64
	for off := 0; off+vol.Comps <= len(vol.Data); off += vol.Comps {
		v := vol.Data[off : off+vol.Comps]
		n := floats.Norm(v, 2)
		if n == 0 {
			continue
		}
		peak = max(peak, n)
		floats.Scale(1/n, v)
	}
	vol.Modified()
	return peak
}

// MaxNorm returns the largest voxel L2 norm in vol.
func MaxNorm(vol *Volume[float64]) float64 {
	var peak float64
	for off := 0; off+vol.Comps <= len(vol.Data); off += vol.Comps {
		peak = max(peak, floats.Norm(vol.Data[off:off+vol.Comps], 2))
	}
	return peak
}
