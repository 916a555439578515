package camera

import "github.com/Carmen-Shannon/oxy-slice/common"

type CameraBuilderOption func(*cameraImpl)

// WithViewport sets the initial framebuffer size.
//
// Parameters:
//   - width, height: the viewport in pixels
//
// Returns:
//   - CameraBuilderOption: a function that sets the viewport
func WithViewport(width, height int) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.viewport = common.Extent2{Width: width, Height: height}
	}
}

// WithExtent sets the initial slice size.
//
// Parameters:
//   - extent: the slice extent in voxels
//
// Returns:
//   - CameraBuilderOption: a function that sets the slice extent
func WithExtent(extent common.Extent2) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.extent = extent
	}
}

// WithFacing sets the initial display orientation per axis.
//
// Parameters:
//   - x, y: +1 for normal, -1 for flipped
//
// Returns:
//   - CameraBuilderOption: a function that sets the facings
func WithFacing(x, y int) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.facingX, c.facingY = sign(x), sign(y)
	}
}

// WithController attaches a controller to the camera. It is recentered on the slice once
// all options are applied.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: functional option to set the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
