package camera

import "github.com/Carmen-Shannon/oxy-slice/common"

// CameraController owns the camera's positional state: the slice point at the viewport
// center and the zoom factor. Camera reads it each Update. Embeds zoomCameraController and
// planarCameraController so scroll zoom and keyboard or drag panning share one instance.
type CameraController interface {
	zoomCameraController
	planarCameraController

	// Center returns the slice point shown at the viewport center.
	//
	// Returns:
	//   - x, y: the center in slice coordinates
	Center() (x, y float32)

	// SetCenter moves the viewport center to a slice point.
	//
	// Parameters:
	//   - x, y: the center in slice coordinates
	SetCenter(x, y float32)

	// Recenter centers the view on a slice of the given extent and resets the zoom to 1.
	//
	// Parameters:
	//   - extent: the slice extent in voxels
	Recenter(extent common.Extent2)
}

// zoomCameraController defines zoom control methods. A zoom of 1 fits the slice into the
// viewport; larger values magnify.
type zoomCameraController interface {
	// Zoom returns the current zoom factor.
	//
	// Returns:
	//   - float32: the zoom factor
	Zoom() float32

	// SetZoom sets the zoom factor, clamped to the zoom bounds.
	//
	// Parameters:
	//   - zoom: the zoom factor
	SetZoom(zoom float32)

	// ZoomBy scales the zoom by (1 + ZoomSpeed) per step. Positive steps magnify.
	//
	// Parameters:
	//   - steps: zoom steps, typically the scroll delta
	ZoomBy(steps float32)

	// MinZoom returns the smallest allowed zoom factor.
	//
	// Returns:
	//   - float32: minimum zoom
	MinZoom() float32

	// MaxZoom returns the largest allowed zoom factor.
	//
	// Returns:
	//   - float32: maximum zoom
	MaxZoom() float32

	// ZoomSpeed returns the fractional zoom change per step.
	//
	// Returns:
	//   - float32: zoom change per step
	ZoomSpeed() float32
}

// planarCameraController defines panning in the slice plane. Pan amounts are scaled by
// PanSpeed and divided by the zoom, so one step moves the same distance on screen at any zoom.
type planarCameraController interface {
	// PanRight moves the view right along the slice x axis. Negative delta moves left.
	//
	// Parameters:
	//   - delta: pan amount scaled by PanSpeed
	PanRight(delta float32)

	// PanDown moves the view down along the slice y axis (towards higher rows).
	// Negative delta moves up.
	//
	// Parameters:
	//   - delta: pan amount scaled by PanSpeed
	PanDown(delta float32)

	// PanSpeed returns the pan speed in voxels per step at zoom 1.
	//
	// Returns:
	//   - float32: voxels per step
	PanSpeed() float32
}
