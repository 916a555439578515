package slice_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-slice/engine/slice"
)

func vectorPipeline(t *testing.T, vals ...[2]float64) (*slice.Volume[float64], *slice.VolumePipeline[float64]) {
	t.Helper()

	vol, err := slice.NewVolume[float64](len(vals), 1, 1, 2)
	require.NoError(t, err)
	vol.Fill(func(x, _, _ int, out []float64) {
		out[0], out[1] = vals[x][0], vals[x][1]
	})
	p, err := slice.NewVolumePipeline(vol, slice.WithWorkers[float64](1))
	require.NoError(t, err)
	return vol, p
}

func Test_VectorDisplayFilter_Maps_Magnitudes_When_Evaluated(t *testing.T) {
	t.Parallel()

	_, p := vectorPipeline(t, [2]float64{3, -4}, [2]float64{100, 0})
	f, err := slice.NewVectorDisplayFilter(p, 1)
	require.NoError(t, err)
	require.NoError(t, f.EvaluateUpToDate())

	img := f.Slice().(*slice.Image[float32])
	assert.Equal(t, 4, img.Components())

	want := []float32{
		3, 4, 0, 5,
		100, 0, 0, 100,
	}
	assert.Empty(t, cmp.Diff(want, img.Pix, cmpopts.EquateApprox(0, 1e-5)))
}

func Test_VectorDisplayFilter_Clamps_When_GainOverflows(t *testing.T) {
	t.Parallel()

	_, p := vectorPipeline(t, [2]float64{1, 0})
	f, err := slice.NewVectorDisplayFilter(p, 1000)
	require.NoError(t, err)
	require.NoError(t, f.EvaluateUpToDate())

	assert.InDelta(t, 255.0, f.Slice().At(0, 0, 0), 0)
	assert.InDelta(t, 255.0, f.Slice().At(0, 0, 3), 0)
}

func Test_VectorDisplayFilter_Tracks_UpstreamVersion_When_VolumeChanges(t *testing.T) {
	t.Parallel()

	vol, p := vectorPipeline(t, [2]float64{1, 1})
	f, err := slice.NewVectorDisplayFilter(p, 10)
	require.NoError(t, err)
	require.NoError(t, f.EvaluateUpToDate())
	assert.GreaterOrEqual(t, f.CurrentVersion(), p.CurrentVersion())

	require.NoError(t, vol.SetVoxel(0, 0, 0, 0, 2))
	assert.Equal(t, p.CurrentVersion(), f.CurrentVersion())

	require.NoError(t, f.EvaluateUpToDate())
	assert.InDelta(t, 0.0, f.Slice().At(0, 0, 0), 0)
	assert.InDelta(t, 20.0, f.Slice().At(0, 0, 1), 1e-6)
}

func Test_VectorDisplayFilter_Advances_Version_When_GainChanges(t *testing.T) {
	t.Parallel()

	_, p := vectorPipeline(t, [2]float64{1, 0})
	f, err := slice.NewVectorDisplayFilter(p, 10)
	require.NoError(t, err)
	require.NoError(t, f.EvaluateUpToDate())
	before := f.CurrentVersion()

	f.SetGain(10)
	assert.Equal(t, before, f.CurrentVersion())

	f.SetGain(200)
	assert.Greater(t, f.CurrentVersion(), before)
	assert.InDelta(t, 200.0, f.Gain(), 0)

	require.NoError(t, f.EvaluateUpToDate())
	assert.InDelta(t, 200.0, f.Slice().At(0, 0, 0), 1e-6)
}

func Test_NewVectorDisplayFilter_Returns_Error_When_UpstreamNil(t *testing.T) {
	t.Parallel()

	_, err := slice.NewVectorDisplayFilter(nil, 1)
	require.ErrorIs(t, err, slice.ErrNilSource)
}

func Test_NormalizeVectors_Scales_ToUnitLength_When_NonZero(t *testing.T) {
	t.Parallel()

	vol, p := vectorPipeline(t, [2]float64{3, 4}, [2]float64{0, 0}, [2]float64{0, -0.5})
	before := p.CurrentVersion()

	assert.InDelta(t, 5.0, slice.MaxNorm(vol), 1e-12)
	peak := slice.NormalizeVectors(vol)
	assert.InDelta(t, 5.0, peak, 1e-12)
	assert.Greater(t, p.CurrentVersion(), before)

	want := []float64{0.6, 0.8, 0, 0, 0, -1}
	assert.Empty(t, cmp.Diff(want, vol.Data, cmpopts.EquateApprox(0, 1e-12)))
	assert.InDelta(t, 1.0, slice.MaxNorm(vol), 1e-12)
	assert.False(t, math.IsNaN(vol.Data[2]))
}
