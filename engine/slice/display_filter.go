package slice

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// VectorDisplayFilter maps a vector-valued slice to a 4-component RGBA display slice.
// Component i (for i < 3) drives color channel i by its magnitude; alpha follows the
// L2 norm of the whole vector. Values are scaled by the gain and clamped to [0, 255].
//
// The filter is a Source itself, so it can feed a SliceTexture in RGBA format while the
// unfiltered upstream feeds a VectorOverlay.
type VectorDisplayFilter struct {
	upstream Source

	// gain scales component magnitudes into the [0, 255] display range.
	gain  float64
	mtime uint64

	evaluatedAt uint64
	output      *Image[float32]
	scratch     []float64
}

var _ Source = &VectorDisplayFilter{}

// NewVectorDisplayFilter wraps upstream.
//
// Parameters:
//   - upstream: a source producing vector voxels
//   - gain: scale applied before clamping; 255 maps unit vectors to full intensity
//
// Returns:
//   - *VectorDisplayFilter: the filter
//   - error: ErrNilSource if upstream is nil
func NewVectorDisplayFilter(upstream Source, gain float64) (*VectorDisplayFilter, error) {
	if upstream == nil {
		return nil, ErrNilSource
	}
	return &VectorDisplayFilter{upstream: upstream, gain: gain, mtime: Tick()}, nil
}

// Gain returns the current display gain.
func (f *VectorDisplayFilter) Gain() float64 {
	return f.gain
}

// SetGain changes the display gain. The filter's version advances only when the value changes.
func (f *VectorDisplayFilter) SetGain(gain float64) {
	if gain == f.gain {
		return
	}
	f.gain = gain
	f.mtime = Tick()
}

// CurrentVersion is the later of the filter's own modification time and the upstream version.
func (f *VectorDisplayFilter) CurrentVersion() uint64 {
	return max(f.mtime, f.upstream.CurrentVersion())
}

func (f *VectorDisplayFilter) Slice() Slice {
	if f.output == nil {
		return nil
	}
	return f.output
}

func (f *VectorDisplayFilter) EvaluateUpToDate() error {
	if err := f.upstream.EvaluateUpToDate(); err != nil {
		return fmt.Errorf("vector display filter: %w", err)
	}
	version := f.CurrentVersion()
	if f.output != nil && f.evaluatedAt == version {
		return nil
	}

	in := f.upstream.Slice()
	if in == nil {
		return fmt.Errorf("vector display filter: upstream produced no slice: %w", ErrNilSource)
	}
	region := in.Region()
	if !f.output.sameShape(region, 4) {
		f.output = NewImage[float32](region, 4)
	}

	comps := in.Components()
	if cap(f.scratch) < comps {
		f.scratch = make([]float64, comps)
	}
	v := f.scratch[:comps]

	for y := 0; y < region.Size.Height; y++ {
		for x := 0; x < region.Size.Width; x++ {
			for k := range v {
				v[k] = in.At(x, y, k)
			}
			off := f.output.PixOffset(x, y)
			px := f.output.Pix[off : off+4]
			for c := 0; c < 3; c++ {
				if c < comps {
					px[c] = f.displayValue(math.Abs(v[c]))
				} else {
					px[c] = 0
				}
			}
			px[3] = f.displayValue(floats.Norm(v, 2))
		}
	}

	f.evaluatedAt = version
	return nil
}

func (f *VectorDisplayFilter) displayValue(mag float64) float32 {
	return float32(min(max(mag*f.gain, 0), 255))
}
