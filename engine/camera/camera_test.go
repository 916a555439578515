package camera_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-slice/common"
	"github.com/Carmen-Shannon/oxy-slice/engine/camera"
)

func project(c camera.Camera, x, y float32) (float32, float32) {
	m := c.ViewMatrix()
	return common.TransformPoint(m[:], x, y)
}

func Test_Camera_Fits_Slice_When_AspectMatches(t *testing.T) {
	t.Parallel()

	c := camera.NewCamera(camera.WithViewport(800, 600), camera.WithExtent(common.Extent2{Width: 4, Height: 3}))

	x, y := project(c, 0, 0)
	assert.InDelta(t, -1.0, float64(x), 1e-6)
	assert.InDelta(t, 1.0, float64(y), 1e-6)

	x, y = project(c, 4, 3)
	assert.InDelta(t, 1.0, float64(x), 1e-6)
	assert.InDelta(t, -1.0, float64(y), 1e-6)
}

func Test_Camera_Letterboxes_When_ViewportWider(t *testing.T) {
	t.Parallel()

	c := camera.NewCamera(camera.WithViewport(1000, 500), camera.WithExtent(common.Extent2{Width: 10, Height: 10}))

	x, y := project(c, 0, 0)
	assert.InDelta(t, -0.5, float64(x), 1e-6)
	assert.InDelta(t, 1.0, float64(y), 1e-6)
}

func Test_Camera_Mirrors_When_FacingFlipped(t *testing.T) {
	t.Parallel()

	c := camera.NewCamera(camera.WithViewport(800, 600), camera.WithExtent(common.Extent2{Width: 4, Height: 3}))
	c.SetFacing(-1, -1)

	x, y := project(c, 0, 0)
	assert.InDelta(t, 1.0, float64(x), 1e-6)
	assert.InDelta(t, -1.0, float64(y), 1e-6)

	fx, fy := c.Facing()
	assert.Equal(t, -1, fx)
	assert.Equal(t, -1, fy)
}

func Test_Camera_Magnifies_When_Zoomed(t *testing.T) {
	t.Parallel()

	c := camera.NewCamera(camera.WithViewport(800, 600), camera.WithExtent(common.Extent2{Width: 4, Height: 3}))
	c.Controller().SetZoom(2)
	c.Update()

	x, y := project(c, 1, 0.75)
	assert.InDelta(t, -1.0, float64(x), 1e-6)
	assert.InDelta(t, 1.0, float64(y), 1e-6)
}

func Test_Camera_Maps_ScreenToSlice_When_Panned(t *testing.T) {
	t.Parallel()

	c := camera.NewCamera(
		camera.WithViewport(800, 600),
		camera.WithExtent(common.Extent2{Width: 4, Height: 3}),
		camera.WithController(camera.NewCameraController(camera.WithPanSpeed(1))),
	)

	x, y := c.ScreenToSlice(400, 300)
	assert.InDelta(t, 2.0, float64(x), 1e-6)
	assert.InDelta(t, 1.5, float64(y), 1e-6)

	c.Controller().PanRight(1)
	c.Controller().PanDown(-0.5)
	c.Update()

	x, y = c.ScreenToSlice(0, 0)
	assert.InDelta(t, 1.0, float64(x), 1e-6)
	assert.InDelta(t, -0.5, float64(y), 1e-6)
}

func Test_Camera_Recenters_When_ExtentChanges(t *testing.T) {
	t.Parallel()

	c := camera.NewCamera(camera.WithViewport(100, 100))
	c.Controller().SetZoom(4)
	c.SetExtent(common.Extent2{Width: 64, Height: 32})

	cx, cy := c.Controller().Center()
	assert.InDelta(t, 32.0, float64(cx), 0)
	assert.InDelta(t, 16.0, float64(cy), 0)
	assert.InDelta(t, 1.0, float64(c.Controller().Zoom()), 0)
}

func Test_CameraController_Clamps_Zoom_When_OutOfBounds(t *testing.T) {
	t.Parallel()

	cc := camera.NewCameraController(camera.WithZoomBounds(0.5, 8), camera.WithZoomSpeed(1))

	cc.ZoomBy(2)
	assert.InDelta(t, 4.0, float64(cc.Zoom()), 1e-6)
	cc.ZoomBy(10)
	assert.InDelta(t, 8.0, float64(cc.Zoom()), 0)
	cc.SetZoom(0.01)
	assert.InDelta(t, 0.5, float64(cc.Zoom()), 0)
}
