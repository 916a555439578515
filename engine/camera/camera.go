package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-slice/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	// viewport is the framebuffer size in pixels.
	viewport common.Extent2
	// extent is the slice size in voxels.
	extent common.Extent2

	facingX int
	facingY int

	viewMatrix [16]float32
	// box is the slice-space rectangle mapped onto the viewport: left, right, bottom, top.
	box [4]float32

	controller CameraController
}

// Camera maps slice coordinates onto the viewport.
//
// The slice [0, w] x [0, h] is fitted into the viewport keeping its aspect ratio, then the
// attached controller's center and zoom are applied. Voxel row 0 is drawn at the top unless
// the vertical facing is flipped.
type Camera interface {
	// Viewport returns the framebuffer size the camera projects onto.
	//
	// Returns:
	//   - common.Extent2: the viewport in pixels
	Viewport() common.Extent2

	// SetViewport sets the framebuffer size and recomputes the matrices.
	//
	// Parameters:
	//   - width, height: the viewport in pixels
	SetViewport(width, height int)

	// Extent returns the slice size being fitted.
	//
	// Returns:
	//   - common.Extent2: the slice extent in voxels
	Extent() common.Extent2

	// SetExtent sets the slice size. When it changes, the controller is recentered on the slice.
	//
	// Parameters:
	//   - extent: the slice extent in voxels
	SetExtent(extent common.Extent2)

	// Facing returns the display orientation per axis: +1 normal, -1 flipped.
	//
	// Returns:
	//   - x, y: the facings
	Facing() (x, y int)

	// SetFacing flips the display per axis. Values other than -1 are treated as +1.
	//
	// Parameters:
	//   - x, y: the facings
	SetFacing(x, y int)

	// ViewMatrix returns the slice-to-clip transform as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ScreenToSlice maps a framebuffer pixel position to slice coordinates.
	//
	// Parameters:
	//   - px, py: pixel position, origin at the top-left corner
	//
	// Returns:
	//   - x, y: the slice position in voxels
	ScreenToSlice(px, py float32) (x, y float32)

	// Controller returns the attached controller, or nil.
	//
	// Returns:
	//   - CameraController: the controller
	Controller() CameraController

	// SetController attaches a controller.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)

	// Update recomputes the matrices from the controller. Call it once per frame.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera with a 1x1 viewport and extent and an identity view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		viewport: common.Extent2{Width: 1, Height: 1},
		extent:   common.Extent2{Width: 1, Height: 1},
		facingX:  1,
		facingY:  1,
	}
	common.Identity(c.viewMatrix[:])
	for _, option := range options {
		option(c)
	}
	if c.controller == nil {
		c.controller = NewCameraController()
	}
	c.controller.Recenter(c.extent)
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Viewport() common.Extent2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

func (c *cameraImpl) SetViewport(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = common.Extent2{Width: width, Height: height}
	c.updateMatrices()
}

func (c *cameraImpl) Extent() common.Extent2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.extent
}

func (c *cameraImpl) SetExtent(extent common.Extent2) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if extent == c.extent {
		return
	}
	c.extent = extent
	if c.controller != nil {
		c.controller.Recenter(extent)
	}
	c.updateMatrices()
}

func (c *cameraImpl) Facing() (x, y int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.facingX, c.facingY
}

func (c *cameraImpl) SetFacing(x, y int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.facingX, c.facingY = sign(x), sign(y)
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ScreenToSlice(px, py float32) (x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.viewport.Empty() {
		return 0, 0
	}
	left, right, bottom, top := c.box[0], c.box[1], c.box[2], c.box[3]
	fx := px / float32(c.viewport.Width)
	fy := py / float32(c.viewport.Height)
	return left + fx*(right-left), top + fy*(bottom-top)
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	if ctrl != nil {
		ctrl.Recenter(c.extent)
	}
	c.updateMatrices()
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

// visibleBox returns the slice-space box shown in the viewport, before facing flips.
// Caller must hold the mutex.
func (c *cameraImpl) visibleBox() (left, right, top, bottom float32) {
	cx, cy := float32(c.extent.Width)/2, float32(c.extent.Height)/2
	zoom := float32(1)
	if c.controller != nil {
		cx, cy = c.controller.Center()
		zoom = c.controller.Zoom()
	}

	vw, vh := float32(max(c.viewport.Width, 1)), float32(max(c.viewport.Height, 1))
	ew, eh := float32(max(c.extent.Width, 1)), float32(max(c.extent.Height, 1))
	// Pixels per voxel when the whole slice just fits.
	scale := min(vw/ew, vh/eh) * zoom

	halfW := vw / (2 * scale)
	halfH := vh / (2 * scale)
	return cx - halfW, cx + halfW, cy - halfH, cy + halfH
}

// updateMatrices recalculates the view matrix. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	left, right, top, bottom := c.visibleBox()
	if c.facingX < 0 {
		left, right = right, left
	}
	// Row 0 at the top of the screen means the slice y axis points down.
	if c.facingY < 0 {
		top, bottom = bottom, top
	}
	c.box = [4]float32{left, right, bottom, top}
	common.Ortho(c.viewMatrix[:], left, right, bottom, top)
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}
