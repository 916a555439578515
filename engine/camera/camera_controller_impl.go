package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-slice/common"
)

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	center [2]float32

	zoom    float32
	minZoom float32
	maxZoom float32

	zoomSpeed float32
	panSpeed  float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller centered on the origin at zoom 1.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:        &sync.Mutex{},
		zoom:      1,
		minZoom:   0.25,
		maxZoom:   64,
		zoomSpeed: 0.1,
		panSpeed:  4,
	}
	for _, option := range options {
		option(cc)
	}
	cc.clampZoom()
	return cc
}

// clampZoom keeps zoom inside its bounds. Caller must hold the mutex.
func (cc *cameraControllerImpl) clampZoom() {
	if cc.zoom < cc.minZoom {
		cc.zoom = cc.minZoom
	}
	if cc.zoom > cc.maxZoom {
		cc.zoom = cc.maxZoom
	}
}

func (cc *cameraControllerImpl) Center() (x, y float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.center[0], cc.center[1]
}

func (cc *cameraControllerImpl) SetCenter(x, y float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.center = [2]float32{x, y}
}

func (cc *cameraControllerImpl) Recenter(extent common.Extent2) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.center = [2]float32{float32(extent.Width) / 2, float32(extent.Height) / 2}
	cc.zoom = 1
	cc.clampZoom()
}

func (cc *cameraControllerImpl) Zoom() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoom
}

func (cc *cameraControllerImpl) SetZoom(zoom float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.zoom = zoom
	cc.clampZoom()
}

func (cc *cameraControllerImpl) ZoomBy(steps float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.zoom *= float32(math.Pow(float64(1+cc.zoomSpeed), float64(steps)))
	cc.clampZoom()
}

func (cc *cameraControllerImpl) MinZoom() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minZoom
}

func (cc *cameraControllerImpl) MaxZoom() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.maxZoom
}

func (cc *cameraControllerImpl) ZoomSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomSpeed
}

func (cc *cameraControllerImpl) PanRight(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.center[0] += delta * cc.panSpeed / cc.zoom
}

func (cc *cameraControllerImpl) PanDown(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.center[1] += delta * cc.panSpeed / cc.zoom
}

func (cc *cameraControllerImpl) PanSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.panSpeed
}
