package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-slice/engine/overlay"
	"github.com/Carmen-Shannon/oxy-slice/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-slice/engine/slice"
)

func newTestViewer(t *testing.T) *viewer {
	t.Helper()

	scalarVol, err := slice.NewVolume[uint16](3, 3, 3, 1)
	require.NoError(t, err)
	scalar, err := slice.NewVolumePipeline(scalarVol, slice.WithWorkers[uint16](1))
	require.NoError(t, err)
	t.Cleanup(scalar.Close)

	// A single vector along volume y, in the middle of the volume.
	vectorVol, err := slice.NewVolume[float64](3, 3, 3, 3)
	require.NoError(t, err)
	require.NoError(t, vectorVol.SetVoxel(1, 1, 1, 0, 1, 0))
	vectors, err := slice.NewVolumePipeline(vectorVol, slice.WithWorkers[float64](1))
	require.NoError(t, err)
	t.Cleanup(vectors.Close)

	glyphs := overlay.NewVectorOverlay(renderertest.NewRecorder())
	glyphs.SetSource(vectors)

	v := &viewer{
		scalar:      scalar,
		vectors:     vectors,
		glyphs:      glyphs,
		glyphFacing: [2]int{1, 1},
	}
	require.NoError(t, v.projectGlyphs())
	return v
}

func Test_Viewer_Projects_PlaneComponents_When_AxisChanges(t *testing.T) {
	t.Parallel()

	v := newTestViewer(t)
	assert.Equal(t, overlay.Projection{XIndex: 0, YIndex: 1, XFacing: 1, YFacing: 1}, v.glyphs.Projection())

	v.setAxis(slice.AxisY)
	assert.Equal(t, overlay.Projection{XIndex: 0, YIndex: 2, XFacing: 1, YFacing: 1}, v.glyphs.Projection())

	v.setAxis(slice.AxisX)
	assert.Equal(t, slice.AxisX, v.vectors.Axis())
	assert.Equal(t, overlay.Projection{XIndex: 1, YIndex: 2, XFacing: 1, YFacing: 1}, v.glyphs.Projection())
}

func Test_Viewer_Draws_HorizontalGlyph_When_VectorLiesAlongSliceX(t *testing.T) {
	t.Parallel()

	v := newTestViewer(t)
	v.setAxis(slice.AxisX)
	require.NoError(t, v.vectors.EvaluateUpToDate())

	prims, err := overlay.BuildGlyphs(v.vectors.Slice(), v.glyphs.Projection(), overlay.DefaultStyle)
	require.NoError(t, err)
	require.Len(t, prims, 9)

	// Voxel (1, 1, 1) sits at slice (1, 1) on the middle x slice.
	got := prims[1*3+1]
	assert.InDelta(t, float64(got.A[1]), float64(got.B[1]), 0)
	assert.InDelta(t, float64(overlay.DefaultStyle.Shrink), float64(got.B[0]-got.A[0]), 1e-6)
	assert.InDelta(t, 1.5, float64((got.A[0]+got.B[0])/2), 1e-6)
}
