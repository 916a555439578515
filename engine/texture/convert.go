package texture

import (
	"github.com/Carmen-Shannon/oxy-slice/engine/slice"
)

// saturate narrows a component value to a byte: values are clamped to [0, 255] and the
// fraction is truncated. NaN maps to 0.
func saturate(v float64) byte {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}

// packedSize returns the upload buffer length for s packed with comps bytes per texel.
func packedSize(s slice.Slice, comps int) int {
	return s.Region().Size.Area() * comps
}

// pack converts s into dst, row-major with comps bytes per texel. dst must be packedSize long.
//
// Texel component k comes from slice component k. When the slice has fewer components than
// the texel, missing color components are 0 and a missing fourth (alpha) component is 255.
// Extra slice components are ignored.
func pack(dst []byte, s slice.Slice, comps int) {
	size := s.Region().Size
	srcComps := s.Components()

	// uint8 images with a matching layout are already in upload form.
	if img, ok := s.(*slice.Image[uint8]); ok && srcComps == comps && len(img.Pix) == len(dst) {
		copy(dst, img.Pix)
		return
	}

	i := 0
	for y := 0; y < size.Height; y++ {
		for x := 0; x < size.Width; x++ {
			for k := 0; k < comps; k++ {
				switch {
				case k < srcComps:
					dst[i] = saturate(s.At(x, y, k))
				case k == 3:
					dst[i] = 255
				default:
					dst[i] = 0
				}
				i++
			}
		}
	}
}
