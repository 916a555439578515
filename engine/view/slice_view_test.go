package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-slice/common"
	"github.com/Carmen-Shannon/oxy-slice/engine/camera"
	"github.com/Carmen-Shannon/oxy-slice/engine/overlay"
	"github.com/Carmen-Shannon/oxy-slice/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-slice/engine/slice"
	"github.com/Carmen-Shannon/oxy-slice/engine/texture"
	"github.com/Carmen-Shannon/oxy-slice/engine/view"
)

type fixture struct {
	rec     *renderertest.Recorder
	scalar  *slice.VolumePipeline[uint16]
	vectors *slice.VolumePipeline[float64]
	view    view.SliceView
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	scalarVol, err := slice.NewVolume[uint16](6, 4, 3, 1)
	require.NoError(t, err)
	scalarVol.Fill(func(x, y, z int, out []uint16) { out[0] = uint16(x + 10*y + 100*z) })
	scalar, err := slice.NewVolumePipeline(scalarVol, slice.WithWorkers[uint16](1))
	require.NoError(t, err)

	vectorVol, err := slice.NewVolume[float64](6, 4, 3, 3)
	require.NoError(t, err)
	vectorVol.Fill(func(x, y, z int, out []float64) { out[0], out[1], out[2] = 1, 0, 0 })
	vectors, err := slice.NewVolumePipeline(vectorVol, slice.WithWorkers[float64](1))
	require.NoError(t, err)
	display, err := slice.NewVectorDisplayFilter(vectors, 255)
	require.NoError(t, err)

	rec := renderertest.NewRecorder()
	base := texture.NewSliceTexture(rec, texture.WithLabel("base"))
	require.NoError(t, base.SetSource(scalar))
	tint := texture.NewSliceTexture(rec, texture.WithLabel("vector color"))
	require.NoError(t, tint.SetSource(display))
	glyphs := overlay.NewVectorOverlay(rec)
	glyphs.SetSource(vectors)

	v := view.NewSliceView("axial",
		camera.NewCamera(camera.WithViewport(600, 400)),
		view.WithBase(base),
		view.WithOverlay(tint, 64),
		view.WithVectors(glyphs),
		view.WithBackground(common.RGB(0.5, 0.5, 0.5)),
	)
	return &fixture{rec: rec, scalar: scalar, vectors: vectors, view: v}
}

func Test_SliceView_Draws_Layers_In_Order(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.NoError(t, f.view.Draw(f.rec))

	require.Len(t, f.rec.Quads, 2)
	assert.False(t, f.rec.Quads[0].Blend)
	assert.InDelta(t, 0.5, float64(f.rec.Quads[0].Tint.R), 0)
	assert.True(t, f.rec.Quads[1].Blend)
	assert.InDelta(t, 64.0/255, float64(f.rec.Quads[1].Tint.A), 1e-6)
	assert.Len(t, f.rec.DrawnBatches, 1)
	assert.Equal(t, 0, f.rec.Depth())

	assert.Equal(t, common.Extent2{Width: 6, Height: 4}, f.view.Camera().Extent())
	assert.Equal(t, f.view.Camera().ViewMatrix(), f.rec.View)
}

func Test_SliceView_Reuses_Caches_When_NothingChanged(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.view.Draw(f.rec))
	f.rec.Reset()

	require.NoError(t, f.view.Draw(f.rec))
	require.NoError(t, f.view.Draw(f.rec))

	assert.Zero(t, f.rec.Counts.UploadSubImage)
	assert.Zero(t, f.rec.Counts.CreateBatch)
	assert.Equal(t, 4, f.rec.Counts.DrawQuad)
	assert.Equal(t, 2, f.rec.Counts.DrawBatch)

	s := f.view.Stats()
	assert.Equal(t, 1, s.Base.Uploads)
	assert.Equal(t, 1, s.Overlay.Uploads)
	assert.Equal(t, 1, s.Vectors.Rebuilds)
	assert.Equal(t, 2, s.Vectors.Replays)
}

func Test_SliceView_Refreshes_OnlyMovedLayers_When_SliceMoves(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.view.Draw(f.rec))

	require.NoError(t, f.scalar.MoveToSlice(slice.AxisZ, 0))
	require.NoError(t, f.view.Draw(f.rec))

	s := f.view.Stats()
	assert.Equal(t, 2, s.Base.Uploads)
	assert.Equal(t, 1, s.Overlay.Uploads)
	assert.Equal(t, 1, s.Vectors.Rebuilds)

	require.NoError(t, f.vectors.MoveToSlice(slice.AxisZ, 2))
	require.NoError(t, f.view.Draw(f.rec))

	s = f.view.Stats()
	assert.Equal(t, 2, s.Base.Uploads)
	assert.Equal(t, 2, s.Overlay.Uploads)
	assert.Equal(t, 2, s.Vectors.Rebuilds)
}

func Test_SliceView_Skips_HiddenLayers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.view.SetOverlayVisible(false)
	f.view.SetVectorsVisible(false)

	require.NoError(t, f.view.Draw(f.rec))

	assert.Len(t, f.rec.Quads, 1)
	assert.Empty(t, f.rec.DrawnBatches)
}

func Test_SliceView_Returns_Error_When_BaseUnbound(t *testing.T) {
	t.Parallel()

	rec := renderertest.NewRecorder()
	v := view.NewSliceView("empty", nil, view.WithBase(texture.NewSliceTexture(rec)))

	err := v.Draw(rec)

	require.ErrorIs(t, err, texture.ErrNoSource)
	assert.Contains(t, err.Error(), "empty base")
	assert.Zero(t, rec.Counts.DrawQuad)
}

func Test_SliceView_Releases_AllLayers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.view.Draw(f.rec))

	f.view.Release()

	assert.Empty(t, f.rec.Textures)
	assert.Empty(t, f.rec.Batches)
	assert.Zero(t, f.rec.Counts.UnknownDeletes)
}
