package engine

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-slice/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-slice/engine/slice"
	"github.com/Carmen-Shannon/oxy-slice/engine/texture"
	"github.com/Carmen-Shannon/oxy-slice/engine/view"
)

func newScalarView(t *testing.T, rec *renderertest.Recorder, name string) (view.SliceView, *slice.VolumePipeline[uint8]) {
	t.Helper()

	vol, err := slice.NewVolume[uint8](4, 4, 4, 1)
	require.NoError(t, err)
	vol.Fill(func(x, y, z int, out []uint8) { out[0] = uint8(x + 4*y + 16*z) })
	p, err := slice.NewVolumePipeline(vol, slice.WithWorkers[uint8](1))
	require.NoError(t, err)
	t.Cleanup(p.Close)

	base := texture.NewSliceTexture(rec, texture.WithLabel(name))
	require.NoError(t, base.SetSource(p))
	return view.NewSliceView(name, nil, view.WithBase(base)), p
}

func Test_Engine_Runs_FixedTicks_When_FrameIsLong(t *testing.T) {
	t.Parallel()

	e := NewEngine(WithTickRate(100)).(*engine)
	ticks := 0
	e.SetTickCallback(func(float32) { ticks++ })

	start := time.Unix(0, 0)
	e.lastFrame = start
	e.frame(start.Add(35 * time.Millisecond))

	assert.Equal(t, 3, ticks)
	assert.Equal(t, 5*time.Millisecond, e.accumulator)

	e.frame(start.Add(2 * time.Second))
	assert.Equal(t, 3+maxTicksPerFrame, ticks)
	assert.Zero(t, e.accumulator)
}

func Test_Engine_Draws_Views_In_KeyOrder(t *testing.T) {
	t.Parallel()

	rec := renderertest.NewRecorder()
	front, _ := newScalarView(t, rec, "front")
	back, _ := newScalarView(t, rec, "back")

	e := NewEngine(WithRenderer(rec), WithView(10, front), WithView(-1, back)).(*engine)
	e.lastFrame = time.Now()
	e.frame(e.lastFrame)

	backHandle, _ := back.Base().TextureHandle()
	frontHandle, _ := front.Base().TextureHandle()
	require.Len(t, rec.Quads, 2)
	assert.Equal(t, backHandle, rec.Quads[0].Handle)
	assert.Equal(t, frontHandle, rec.Quads[1].Handle)
	assert.Equal(t, 1, rec.Counts.Frames)
}

func Test_Engine_Skips_FailingView_And_DrawsTheRest(t *testing.T) {
	t.Parallel()

	rec := renderertest.NewRecorder()
	var buf bytes.Buffer
	good, p := newScalarView(t, rec, "good")
	broken := view.NewSliceView("broken", nil, view.WithBase(texture.NewSliceTexture(rec)))

	e := NewEngine(
		WithRenderer(rec),
		WithLogger(log.New(&buf, "", 0)),
		WithView(0, broken),
		WithView(1, good),
	).(*engine)
	now := time.Now()
	e.lastFrame = now
	for i := 0; i < 3; i++ {
		e.frame(now)
	}

	assert.Len(t, rec.Quads, 3)
	assert.Equal(t, 1, strings.Count(buf.String(), "[Engine] view broken incomplete"))

	require.NoError(t, broken.Base().SetSource(p))
	e.frame(now)

	assert.Len(t, rec.Quads, 5)
	assert.Contains(t, buf.String(), "[Engine] view broken recovered")
}

func Test_Engine_Reuses_Textures_Across_Frames(t *testing.T) {
	t.Parallel()

	rec := renderertest.NewRecorder()
	v, p := newScalarView(t, rec, "axial")
	e := NewEngine(WithRenderer(rec), WithView(0, v)).(*engine)

	now := time.Now()
	e.lastFrame = now
	for i := 0; i < 3; i++ {
		e.frame(now)
	}
	assert.Equal(t, 1, rec.Counts.UploadSubImage)

	e.SetTickCallback(func(float32) {
		require.NoError(t, p.MoveToSlice(slice.AxisZ, 0))
	})
	e.frame(now.Add(time.Second / 30))

	assert.Equal(t, 2, rec.Counts.UploadSubImage)
	assert.Equal(t, 4, rec.Counts.Frames)

	stats := cacheStats(e.sortedViews())
	assert.Equal(t, 2, stats.Uploads)
	assert.Equal(t, 2, stats.Conversions)
}

func Test_Engine_Views_Returns_Copy(t *testing.T) {
	t.Parallel()

	rec := renderertest.NewRecorder()
	v, _ := newScalarView(t, rec, "axial")
	e := NewEngine()
	e.AddView(3, v)

	views := e.Views()
	delete(views, 3)

	assert.Equal(t, v, e.View(3))
	e.RemoveView(3)
	assert.Nil(t, e.View(3))
}

func Test_Engine_Skips_Render_When_NoViews(t *testing.T) {
	t.Parallel()

	rec := renderertest.NewRecorder()
	e := NewEngine(WithRenderer(rec)).(*engine)
	rendered := 0
	e.SetRenderCallback(func(float32) { rendered++ })

	e.lastFrame = time.Now()
	e.frame(e.lastFrame)

	assert.Zero(t, rec.Counts.Frames)
	assert.Equal(t, 1, rendered)
}
