// Package renderertest provides a Renderer that records calls instead of drawing,
// for tests and headless runs.
package renderertest

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-slice/common"
	"github.com/Carmen-Shannon/oxy-slice/engine/renderer"
)

// Texture is the recorded state of one texture handle.
type Texture struct {
	// Desc is the descriptor of the last AllocateTexture call.
	Desc renderer.TextureDescriptor

	// Allocated is true once AllocateTexture has succeeded.
	Allocated bool

	// Allocations counts AllocateTexture calls.
	Allocations int

	// Uploads counts UploadSubImage calls.
	Uploads int

	// Last is a copy of the most recent upload.
	Last common.TextureStagingData
}

// QuadCall is one recorded DrawTexturedQuad.
type QuadCall struct {
	Handle renderer.TextureHandle
	Quad   renderer.Quad
	Tint   common.Color
	Blend  bool
	Depth  int
}

// Counts tallies calls by kind.
type Counts struct {
	CreateTexture   int
	DeleteTexture   int
	AllocateTexture int
	UploadSubImage  int
	DrawQuad        int
	CreateBatch     int
	DrawBatch       int
	DeleteBatch     int
	PushState       int
	PopState        int
	UnknownDeletes  int
	Frames          int
}

// Recorder implements renderer.FrameRenderer in memory.
type Recorder struct {
	mu *sync.Mutex

	// Counts tallies every call.
	Counts Counts

	// Textures holds live textures by handle.
	Textures map[renderer.TextureHandle]*Texture

	// Batches holds the primitives of live batches.
	Batches map[renderer.BatchHandle][]renderer.Primitive

	// Quads lists every textured quad drawn since the last Reset.
	Quads []QuadCall

	// DrawnBatches lists every batch drawn since the last Reset.
	DrawnBatches []renderer.BatchHandle

	// View is the last view transform.
	View [16]float32

	// ClearColor is the last clear color.
	ClearColor common.Color

	// Width and Height are the last Resize arguments.
	Width, Height int

	// FailAllocate, when set, is returned by AllocateTexture.
	FailAllocate error

	// FailUpload, when set, is returned by UploadSubImage.
	FailUpload error

	// FailDraw, when set, is returned by DrawTexturedQuad and DrawBatch.
	FailDraw error

	blend       []bool
	nextTexture renderer.TextureHandle
	nextBatch   renderer.BatchHandle
}

var _ renderer.FrameRenderer = &Recorder{}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		mu:       &sync.Mutex{},
		Textures: make(map[renderer.TextureHandle]*Texture),
		Batches:  make(map[renderer.BatchHandle][]renderer.Primitive),
		blend:    []bool{false},
	}
}

// Depth returns the current PushState nesting depth.
func (r *Recorder) Depth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.blend) - 1
}

// LastQuad returns the most recent textured quad, or false if none was drawn.
func (r *Recorder) LastQuad() (QuadCall, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Quads) == 0 {
		return QuadCall{}, false
	}
	return r.Quads[len(r.Quads)-1], true
}

// Reset clears the counters and per-draw history but keeps live textures and batches.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts = Counts{}
	r.Quads = nil
	r.DrawnBatches = nil
	for _, t := range r.Textures {
		t.Allocations = 0
		t.Uploads = 0
	}
}

func (r *Recorder) CreateTexture() (renderer.TextureHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts.CreateTexture++
	r.nextTexture++
	r.Textures[r.nextTexture] = &Texture{}
	return r.nextTexture, nil
}

func (r *Recorder) DeleteTexture(h renderer.TextureHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts.DeleteTexture++
	if _, ok := r.Textures[h]; !ok {
		r.Counts.UnknownDeletes++
		return
	}
	delete(r.Textures, h)
}

func (r *Recorder) AllocateTexture(h renderer.TextureHandle, desc renderer.TextureDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts.AllocateTexture++
	if r.FailAllocate != nil {
		return r.FailAllocate
	}
	t, ok := r.Textures[h]
	if !ok {
		return fmt.Errorf("%w: %d", renderer.ErrUnknownTexture, h)
	}
	t.Desc = desc
	t.Allocated = true
	t.Allocations++
	return nil
}

func (r *Recorder) UploadSubImage(h renderer.TextureHandle, width, height int, pixels []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts.UploadSubImage++
	if r.FailUpload != nil {
		return r.FailUpload
	}
	t, ok := r.Textures[h]
	if !ok {
		return fmt.Errorf("%w: %d", renderer.ErrUnknownTexture, h)
	}
	if !t.Allocated {
		return fmt.Errorf("%w: %d", renderer.ErrTextureNotAllocated, h)
	}
	comps := t.Desc.Format.Components()
	if width > t.Desc.Size.Width || height > t.Desc.Size.Height || len(pixels) < width*height*comps {
		return fmt.Errorf("%w: %dx%d into %dx%d", renderer.ErrUploadOutOfBounds, width, height, t.Desc.Size.Width, t.Desc.Size.Height)
	}
	t.Uploads++
	t.Last = common.TextureStagingData{
		Pixels:     append([]byte(nil), pixels[:width*height*comps]...),
		Width:      uint32(width),
		Height:     uint32(height),
		Components: uint32(comps),
	}
	return nil
}

func (r *Recorder) PushState() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts.PushState++
	r.blend = append(r.blend, r.blend[len(r.blend)-1])
}

func (r *Recorder) PopState() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts.PopState++
	if len(r.blend) > 1 {
		r.blend = r.blend[:len(r.blend)-1]
	}
}

func (r *Recorder) SetBlend(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blend[len(r.blend)-1] = enabled
}

func (r *Recorder) DrawTexturedQuad(h renderer.TextureHandle, quad renderer.Quad, tint common.Color) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts.DrawQuad++
	if r.FailDraw != nil {
		return r.FailDraw
	}
	t, ok := r.Textures[h]
	if !ok {
		return fmt.Errorf("%w: %d", renderer.ErrUnknownTexture, h)
	}
	if !t.Allocated {
		return fmt.Errorf("%w: %d", renderer.ErrTextureNotAllocated, h)
	}
	r.Quads = append(r.Quads, QuadCall{
		Handle: h,
		Quad:   quad,
		Tint:   tint,
		Blend:  r.blend[len(r.blend)-1],
		Depth:  len(r.blend) - 1,
	})
	return nil
}

func (r *Recorder) CreateBatch(prims []renderer.Primitive) (renderer.BatchHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts.CreateBatch++
	r.nextBatch++
	r.Batches[r.nextBatch] = append([]renderer.Primitive(nil), prims...)
	return r.nextBatch, nil
}

func (r *Recorder) DrawBatch(b renderer.BatchHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts.DrawBatch++
	if r.FailDraw != nil {
		return r.FailDraw
	}
	if _, ok := r.Batches[b]; !ok {
		return fmt.Errorf("%w: %d", renderer.ErrUnknownBatch, b)
	}
	r.DrawnBatches = append(r.DrawnBatches, b)
	return nil
}

func (r *Recorder) DeleteBatch(b renderer.BatchHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts.DeleteBatch++
	if _, ok := r.Batches[b]; !ok {
		r.Counts.UnknownDeletes++
		return
	}
	delete(r.Batches, b)
}

func (r *Recorder) SetViewTransform(m [16]float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.View = m
}

func (r *Recorder) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Width, r.Height = width, height
}

func (r *Recorder) SetPresentMode(renderer.PresentMode) {}

func (r *Recorder) SetClearColor(c common.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ClearColor = c
}

func (r *Recorder) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts.Frames++
	r.blend = r.blend[:1]
	r.blend[0] = false
	return nil
}

func (r *Recorder) EndFrame() {}

func (r *Recorder) Present() {}

func (r *Recorder) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.Textures)
	clear(r.Batches)
}
