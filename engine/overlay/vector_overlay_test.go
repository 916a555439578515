package overlay_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-slice/common"
	"github.com/Carmen-Shannon/oxy-slice/engine/overlay"
	"github.com/Carmen-Shannon/oxy-slice/engine/renderer"
	"github.com/Carmen-Shannon/oxy-slice/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-slice/engine/slice"
)

type stubSource struct {
	s       slice.Slice
	version uint64
}

func (s *stubSource) CurrentVersion() uint64  { return s.version }
func (s *stubSource) EvaluateUpToDate() error { return nil }
func (s *stubSource) Slice() slice.Slice      { return s.s }

func vectorSlice(t *testing.T, w, h int, pix []float32) *slice.Image[float32] {
	t.Helper()
	img, err := slice.NewImageFrom(common.Region{Origin: common.Index2{X: 10, Y: 20}, Size: common.Extent2{Width: w, Height: h}}, 2, pix)
	require.NoError(t, err)
	return img
}

func Test_BuildGlyphs_Draws_HorizontalSegment_When_VectorAlongX(t *testing.T) {
	t.Parallel()

	img := vectorSlice(t, 2, 1, []float32{0, 0, 1, 0})

	prims, err := overlay.BuildGlyphs(img, overlay.DefaultProjection, overlay.DefaultStyle)
	require.NoError(t, err)
	require.Len(t, prims, 2)

	got := prims[1]
	assert.Equal(t, renderer.PrimitiveLine, got.Kind)
	assert.InDelta(t, float64(got.A[1]), float64(got.B[1]), 0)
	assert.InDelta(t, 0.5, float64(got.A[1]), 1e-6)
	assert.InDelta(t, 1.5, float64((got.A[0]+got.B[0])/2), 1e-6)
	assert.InDelta(t, 0.7, float64(got.B[0]-got.A[0]), 1e-6)

	zero := prims[0]
	assert.Equal(t, zero.A, zero.B)
	assert.Equal(t, [2]float32{0.5, 0.5}, zero.A)
}

func Test_BuildGlyphs_Flips_Segment_When_FacingNegative(t *testing.T) {
	t.Parallel()

	img := vectorSlice(t, 1, 1, []float32{0.5, -1})
	p := overlay.Projection{XIndex: 0, YIndex: 1, XFacing: -1, YFacing: 1}

	prims, err := overlay.BuildGlyphs(img, p, overlay.DefaultStyle)
	require.NoError(t, err)
	require.Len(t, prims, 1)

	want := renderer.Primitive{
		Kind:  renderer.PrimitiveLine,
		A:     [2]float32{0.5 + 0.175, 0.5 + 0.35},
		B:     [2]float32{0.5 - 0.175, 0.5 - 0.35},
		Color: overlay.DefaultStyle.Color,
		Width: 2,
	}
	assert.Empty(t, cmp.Diff(want, prims[0], cmpopts.EquateApprox(0, 1e-6)))
}

func Test_BuildGlyphs_Adds_Marker_When_Enabled(t *testing.T) {
	t.Parallel()

	img := vectorSlice(t, 1, 1, []float32{1, 0})
	style := overlay.DefaultStyle
	style.Marker = true

	prims, err := overlay.BuildGlyphs(img, overlay.DefaultProjection, style)
	require.NoError(t, err)
	require.Len(t, prims, 2)

	marker := prims[1]
	assert.Equal(t, renderer.PrimitiveRect, marker.Kind)
	assert.InDelta(t, float64(prims[0].A[0]), float64((marker.A[0]+marker.B[0])/2), 1e-6)
	assert.InDelta(t, 0.2, float64(marker.B[0]-marker.A[0]), 1e-6)
}

func Test_BuildGlyphs_Returns_Error_When_ComponentMissing(t *testing.T) {
	t.Parallel()

	img := vectorSlice(t, 1, 1, []float32{1, 0})

	_, err := overlay.BuildGlyphs(img, overlay.Projection{XIndex: 0, YIndex: 2, XFacing: 1, YFacing: 1}, overlay.DefaultStyle)
	assert.ErrorIs(t, err, overlay.ErrInvalidComponent)

	_, err = overlay.BuildGlyphs(img, overlay.Projection{XIndex: 0, YIndex: 1, XFacing: 0, YFacing: 1}, overlay.DefaultStyle)
	assert.ErrorIs(t, err, overlay.ErrInvalidFacing)
}

func Test_VectorOverlay_Rebuilds_Only_When_ConfiguredOrSourceChanged(t *testing.T) {
	t.Parallel()

	rec := renderertest.NewRecorder()
	src := &stubSource{s: vectorSlice(t, 3, 2, make([]float32, 12)), version: 5}
	ov := overlay.NewVectorOverlay(rec)
	ov.SetSource(src)

	require.NoError(t, ov.Draw())
	require.NoError(t, ov.Draw())
	require.NoError(t, ov.Draw())
	assert.Equal(t, 1, ov.Stats().Rebuilds)
	assert.Equal(t, 2, ov.Stats().Replays)
	assert.Equal(t, 6, ov.Stats().Glyphs)

	require.NoError(t, ov.Configure(0, 1, 1, 1))
	require.NoError(t, ov.Draw())
	assert.Equal(t, 1, ov.Stats().Rebuilds)

	require.NoError(t, ov.Configure(1, 0, 1, -1))
	assert.True(t, ov.Dirty())
	require.NoError(t, ov.Draw())
	assert.Equal(t, 2, ov.Stats().Rebuilds)

	src.version++
	require.NoError(t, ov.Draw())
	require.NoError(t, ov.Draw())
	assert.Equal(t, 3, ov.Stats().Rebuilds)

	assert.Equal(t, 3, rec.Counts.CreateBatch)
	assert.Equal(t, 2, rec.Counts.DeleteBatch)
	assert.Len(t, rec.Batches, 1)
	assert.Equal(t, 7, rec.Counts.DrawBatch)
}

func Test_VectorOverlay_Skips_Draw_When_NoSource(t *testing.T) {
	t.Parallel()

	rec := renderertest.NewRecorder()
	ov := overlay.NewVectorOverlay(rec)

	require.NoError(t, ov.Draw())

	assert.Empty(t, cmp.Diff(renderertest.Counts{}, rec.Counts))
	assert.True(t, ov.Dirty())
}

func Test_VectorOverlay_Keeps_Projection_When_ConfigureInvalid(t *testing.T) {
	t.Parallel()

	ov := overlay.NewVectorOverlay(renderertest.NewRecorder())

	assert.ErrorIs(t, ov.Configure(0, 1, 2, 1), overlay.ErrInvalidFacing)
	assert.ErrorIs(t, ov.Configure(-1, 1, 1, 1), overlay.ErrInvalidComponent)
	assert.Equal(t, overlay.DefaultProjection, ov.Projection())
}

func Test_VectorOverlay_Stays_Dirty_When_RendererFails(t *testing.T) {
	t.Parallel()

	rec := renderertest.NewRecorder()
	ov := overlay.NewVectorOverlay(rec, overlay.WithLineWidth(3), overlay.WithColor(common.White))
	ov.SetSource(&stubSource{s: vectorSlice(t, 1, 1, []float32{1, 1}), version: 1})
	require.NoError(t, ov.Configure(0, 2, 1, 1))

	err := ov.Draw()
	require.ErrorIs(t, err, overlay.ErrInvalidComponent)
	assert.True(t, ov.Dirty())
	assert.Zero(t, rec.Counts.CreateBatch)

	require.NoError(t, ov.Configure(0, 1, 1, 1))
	rec.FailDraw = errors.New("lost")
	require.Error(t, ov.Draw())
	rec.FailDraw = nil
	require.NoError(t, ov.Draw())

	assert.Equal(t, 1, ov.Stats().Rebuilds)
	prims := rec.Batches[rec.DrawnBatches[0]]
	require.Len(t, prims, 1)
	assert.InDelta(t, 3.0, float64(prims[0].Width), 0)
	assert.Equal(t, common.White, prims[0].Color)
}

func Test_VectorOverlay_Deletes_BatchOnce_When_Released(t *testing.T) {
	t.Parallel()

	rec := renderertest.NewRecorder()
	ov := overlay.NewVectorOverlay(rec)
	ov.SetSource(&stubSource{s: vectorSlice(t, 2, 2, make([]float32, 8)), version: 1})
	require.NoError(t, ov.Draw())

	ov.Release()
	ov.Release()

	assert.Equal(t, 1, rec.Counts.DeleteBatch)
	assert.Empty(t, rec.Batches)
	assert.ErrorIs(t, ov.Draw(), overlay.ErrReleased)
}

func Test_VectorOverlay_Draws_With_BlendScoped(t *testing.T) {
	t.Parallel()

	rec := renderertest.NewRecorder()
	ov := overlay.NewVectorOverlay(rec)
	ov.SetSource(&stubSource{s: vectorSlice(t, 1, 1, []float32{1, 0}), version: 1})

	require.NoError(t, ov.Draw())

	assert.Equal(t, 1, rec.Counts.PushState)
	assert.Equal(t, 1, rec.Counts.PopState)
	assert.Equal(t, 0, rec.Depth())
}
