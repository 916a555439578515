package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-slice/common"
	"github.com/Carmen-Shannon/oxy-slice/engine/window"
)

// drawState is the scoped state saved by PushState and restored by PopState.
type drawState struct {
	blend bool
}

// renderer is the implementation of the FrameRenderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	// states is the PushState stack; the last entry is the current state.
	states []drawState

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	clearColor           common.Color
	maxQuadsPerFrame     int
}

// Renderer is the drawing-primitive API consumed by the slice caches.
//
// Coordinates are slice coordinates: one unit per voxel, origin at the corner of the first
// voxel. SetViewTransform maps them to the screen. Handles are opaque and owned by the
// Renderer; a deleted handle must not be used again.
type Renderer interface {
	// CreateTexture reserves a new texture handle. Storage is allocated separately by AllocateTexture.
	//
	// Returns:
	//   - TextureHandle: the new handle (never zero)
	//   - error: an error if the handle could not be created
	CreateTexture() (TextureHandle, error)

	// DeleteTexture releases the texture and all of its GPU resources. Unknown handles are ignored.
	//
	// Parameters:
	//   - h: the texture to delete
	DeleteTexture(h TextureHandle)

	// AllocateTexture (re)allocates the full storage of a texture with the given size, pixel
	// format and sampling filter. Previous contents are discarded.
	//
	// Parameters:
	//   - h: the texture to allocate
	//   - desc: the storage description
	//
	// Returns:
	//   - error: ErrUnknownTexture, or an error if GPU allocation failed
	AllocateTexture(h TextureHandle, desc TextureDescriptor) error

	// UploadSubImage copies a width x height block of tightly packed pixels into the texture at
	// texel (0, 0). The pixel layout is the format given to AllocateTexture.
	//
	// Parameters:
	//   - h: the destination texture
	//   - width, height: the extent of the block, at most the allocated size
	//   - pixels: width*height*format components bytes, row-major
	//
	// Returns:
	//   - error: ErrUnknownTexture, ErrTextureNotAllocated or ErrUploadOutOfBounds
	UploadSubImage(h TextureHandle, width, height int, pixels []byte) error

	// PushState saves the current blend state. Every PushState must be paired with a PopState.
	PushState()

	// PopState restores the state saved by the matching PushState. Popping the base state is a no-op.
	PopState()

	// SetBlend enables or disables source-alpha blending for subsequent textured quads.
	//
	// Parameters:
	//   - enabled: true to blend with SRC_ALPHA / ONE_MINUS_SRC_ALPHA
	SetBlend(enabled bool)

	// DrawTexturedQuad draws a rectangle textured with h, modulated by tint.
	//
	// Parameters:
	//   - h: the texture to sample
	//   - quad: the rectangle and its texture coordinates
	//   - tint: the color each texel is multiplied by
	//
	// Returns:
	//   - error: ErrUnknownTexture, ErrTextureNotAllocated, or a backend error
	DrawTexturedQuad(h TextureHandle, quad Quad, tint common.Color) error

	// CreateBatch uploads a list of primitives that can be replayed with DrawBatch.
	// Batches are always drawn with alpha blending.
	//
	// Parameters:
	//   - prims: the primitives, in draw order
	//
	// Returns:
	//   - BatchHandle: the new batch
	//   - error: an error if the upload failed
	CreateBatch(prims []Primitive) (BatchHandle, error)

	// DrawBatch replays a batch created by CreateBatch.
	//
	// Parameters:
	//   - b: the batch to draw
	//
	// Returns:
	//   - error: ErrUnknownBatch or a backend error
	DrawBatch(b BatchHandle) error

	// DeleteBatch releases a batch. Unknown handles are ignored.
	//
	// Parameters:
	//   - b: the batch to delete
	DeleteBatch(b BatchHandle)

	// SetViewTransform sets the column-major matrix mapping slice coordinates to clip space
	// for subsequent draws.
	//
	// Parameters:
	//   - m: the view transform
	SetViewTransform(m [16]float32)
}

// FrameRenderer is a Renderer bound to a presentation surface.
type FrameRenderer interface {
	Renderer

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// A call to Resize is required after changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color the surface is cleared to at the start of each frame.
	//
	// Parameters:
	//   - c: the clear color
	SetClearColor(c common.Color)

	// BeginFrame acquires the swapchain texture and begins the main render pass.
	// Must be paired with EndFrame after all draws within a single frame.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface; call Present after EndFrame to display the frame.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()

	// Release destroys every texture, batch and pipeline still owned by the renderer.
	Release()
}

var _ FrameRenderer = &renderer{}

// NewRenderer creates a new FrameRenderer drawing into the window's surface.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window providing the platform surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - FrameRenderer: a new renderer configured with the specified backend and options
//   - error: an error if the GPU pipelines could not be created
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) (FrameRenderer, error) {
	r := &renderer{
		mu:               &sync.Mutex{},
		backendType:      backendType,
		states:           []drawState{{}},
		clearColor:       common.Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
		maxQuadsPerFrame: defaultMaxQuadsPerFrame,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x // default
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, r.maxQuadsPerFrame)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.SetClearColor(r.clearColor)

	r.backend.ConfigureSurface(window.Width(), window.Height())
	if err := r.backend.CreatePipelines(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(c common.Color) {
	r.backend.SetClearColor(c)
}

func (r *renderer) CreateTexture() (TextureHandle, error) {
	return r.backend.CreateTexture()
}

func (r *renderer) DeleteTexture(h TextureHandle) {
	r.backend.DeleteTexture(h)
}

func (r *renderer) AllocateTexture(h TextureHandle, desc TextureDescriptor) error {
	return r.backend.AllocateTexture(h, desc)
}

func (r *renderer) UploadSubImage(h TextureHandle, width, height int, pixels []byte) error {
	return r.backend.UploadSubImage(h, width, height, pixels)
}

func (r *renderer) PushState() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, r.states[len(r.states)-1])
}

func (r *renderer) PopState() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) > 1 {
		r.states = r.states[:len(r.states)-1]
	}
}

func (r *renderer) SetBlend(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[len(r.states)-1].blend = enabled
}

func (r *renderer) DrawTexturedQuad(h TextureHandle, quad Quad, tint common.Color) error {
	r.mu.Lock()
	blend := r.states[len(r.states)-1].blend
	r.mu.Unlock()

	return r.backend.DrawTexturedQuad(h, quad, tint, blend)
}

func (r *renderer) CreateBatch(prims []Primitive) (BatchHandle, error) {
	return r.backend.CreateBatch(prims)
}

func (r *renderer) DrawBatch(b BatchHandle) error {
	return r.backend.DrawBatch(b)
}

func (r *renderer) DeleteBatch(b BatchHandle) {
	r.backend.DeleteBatch(b)
}

func (r *renderer) SetViewTransform(m [16]float32) {
	r.backend.SetViewTransform(m)
}

func (r *renderer) BeginFrame() error {
	r.mu.Lock()
	r.states = r.states[:1]
	r.states[0] = drawState{}
	r.mu.Unlock()

	return r.backend.BeginFrame()
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.backend.Release()
}
