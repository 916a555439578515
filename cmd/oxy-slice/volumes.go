package main

import (
	"math"

	"github.com/Carmen-Shannon/oxy-slice/engine/slice"
)

// buildScalarVolume creates a uint16 volume holding a soft sphere with ripples, brightest
// at the center, so every axis shows a different cross-section.
//
// Parameters:
//   - w, h, d: the volume size in voxels
//
// Returns:
//   - *slice.Volume[uint16]: the filled volume
//   - error: an error if the size is invalid
func buildScalarVolume(w, h, d int) (*slice.Volume[uint16], error) {
	vol, err := slice.NewVolume[uint16](w, h, d, 1)
	if err != nil {
		return nil, err
	}
	cx, cy, cz := float64(w-1)/2, float64(h-1)/2, float64(d-1)/2
	radius := math.Min(cx, math.Min(cy, cz)) + 1
	vol.Fill(func(x, y, z int, out []uint16) {
		dx, dy, dz := float64(x)-cx, float64(y)-cy, float64(z)-cz
		r := math.Sqrt(dx*dx+dy*dy+dz*dz) / radius
		v := math.Max(0, 1-r) * (0.75 + 0.25*math.Cos(r*4*math.Pi))
		// Stored above 8 bits; the texture saturates anything past 255.
		out[0] = uint16(v * 320)
	})
	return vol, nil
}

// buildVectorVolume creates a 3-component float64 field swirling around the z axis with a
// slow drift along z. Vectors are normalized to unit length before returning.
//
// Parameters:
//   - w, h, d: the volume size in voxels
//
// Returns:
//   - *slice.Volume[float64]: the filled volume
//   - error: an error if the size is invalid
func buildVectorVolume(w, h, d int) (*slice.Volume[float64], error) {
	vol, err := slice.NewVolume[float64](w, h, d, 3)
	if err != nil {
		return nil, err
	}
	cx, cy := float64(w-1)/2, float64(h-1)/2
	vol.Fill(func(x, y, z int, out []float64) {
		dx, dy := float64(x)-cx, float64(y)-cy
		out[0] = -dy
		out[1] = dx
		out[2] = 0.25 * math.Hypot(dx, dy) * math.Sin(float64(z)/float64(max(d, 1))*math.Pi)
	})
	slice.NormalizeVectors(vol)
	return vol, nil
}
