package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithZoom sets the initial zoom factor. Recenter resets it to 1.
//
// Parameters:
//   - zoom: the zoom factor
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom
func WithZoom(zoom float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoom = zoom
	}
}

// WithZoomBounds sets the minimum and maximum zoom factors.
//
// Parameters:
//   - min: smallest zoom (zoomed out)
//   - max: largest zoom (magnified)
//
// Returns:
//   - CameraControllerOption: functional option to set zoom bounds
func WithZoomBounds(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minZoom = min
		cc.maxZoom = max
	}
}

// WithZoomSpeed sets the fractional zoom change per step.
//
// Parameters:
//   - speed: zoom change per step, e.g. 0.1 for 10%
//
// Returns:
//   - CameraControllerOption: functional option to set zoom speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}

// WithPanSpeed sets the pan speed in voxels per step at zoom 1.
//
// Parameters:
//   - speed: voxels per pan step
//
// Returns:
//   - CameraControllerOption: functional option to set pan speed
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = speed
	}
}
