package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-slice/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// errNoFrame is returned by draws issued outside BeginFrame/EndFrame.
var errNoFrame = errors.New("renderer: no frame in progress")

// wgpuTexture holds the GPU resources behind one TextureHandle.
type wgpuTexture struct {
	desc      TextureDescriptor
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	sampler   *wgpu.Sampler
	bindGroup *wgpu.BindGroup

	// expand is scratch space for widening RGB uploads to RGBA.
	expand []byte
}

func (t *wgpuTexture) release() {
	if t.bindGroup != nil {
		t.bindGroup.Release()
		t.bindGroup = nil
	}
	if t.sampler != nil {
		t.sampler.Release()
		t.sampler = nil
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

// wgpuBatch is an uploaded primitive vertex buffer.
type wgpuBatch struct {
	buffer      *wgpu.Buffer
	vertexCount uint32
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	surfaceWidth         int
	surfaceHeight        int
	msaaTextureView      *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor
	clearColor           common.Color

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// Pipelines and shared layouts, created once by CreatePipelines
	viewLayout     *wgpu.BindGroupLayout
	textureLayout  *wgpu.BindGroupLayout
	quadOpaque     *wgpu.RenderPipeline
	quadBlend      *wgpu.RenderPipeline
	primPipeline   *wgpu.RenderPipeline
	quadBuffer     *wgpu.Buffer
	viewBuffer     *wgpu.Buffer
	viewBindGroups [maxViewSlots]*wgpu.BindGroup

	maxQuads  int
	quadCount int
	viewSlot  int
	viewUsed  bool
	view      viewUniform

	textures    map[TextureHandle]*wgpuTexture
	batches     map[BatchHandle]*wgpuBatch
	nextTexture TextureHandle
	nextBatch   BatchHandle
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	Surface() *wgpu.Surface

	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the load-op clear color of the main render pass.
	//
	// Parameters:
	//   - c: the clear color
	SetClearColor(c common.Color)

	// CreatePipelines builds the quad and primitive render pipelines, their bind group layouts
	// and the shared per-frame buffers. Must be called once after the first ConfigureSurface.
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	CreatePipelines() error

	// CreateTexture reserves a texture handle without allocating storage.
	//
	// Returns:
	//   - TextureHandle: the new handle
	//   - error: always nil for this backend
	CreateTexture() (TextureHandle, error)

	// DeleteTexture releases every GPU object behind h.
	//
	// Parameters:
	//   - h: the texture to delete
	DeleteTexture(h TextureHandle)

	// AllocateTexture creates the texture storage, view, sampler and bind group described by desc,
	// replacing any previous storage.
	//
	// Parameters:
	//   - h: the texture to allocate
	//   - desc: size, format and filter
	//
	// Returns:
	//   - error: ErrUnknownTexture or a GPU error
	AllocateTexture(h TextureHandle, desc TextureDescriptor) error

	// UploadSubImage writes tightly packed pixels into the top-left corner of the texture.
	//
	// Parameters:
	//   - h: the destination texture
	//   - width, height: the block extent
	//   - pixels: the block data in the texture's pixel format
	//
	// Returns:
	//   - error: ErrUnknownTexture, ErrTextureNotAllocated or ErrUploadOutOfBounds
	UploadSubImage(h TextureHandle, width, height int, pixels []byte) error

	// DrawTexturedQuad encodes one textured quad in the current render pass.
	//
	// Parameters:
	//   - h: the texture to sample
	//   - quad: geometry and texture coordinates
	//   - tint: the modulation color
	//   - blend: whether to use the alpha-blended pipeline
	//
	// Returns:
	//   - error: an error if the texture is unusable, the frame is not started, or the per-frame quad capacity is exhausted
	DrawTexturedQuad(h TextureHandle, quad Quad, tint common.Color, blend bool) error

	// CreateBatch expands primitives into a vertex buffer.
	//
	// Parameters:
	//   - prims: the primitives to upload
	//
	// Returns:
	//   - BatchHandle: the new batch
	//   - error: a GPU error
	CreateBatch(prims []Primitive) (BatchHandle, error)

	// DrawBatch encodes a batch draw in the current render pass.
	//
	// Parameters:
	//   - b: the batch to draw
	//
	// Returns:
	//   - error: ErrUnknownBatch or an error if the frame is not started
	DrawBatch(b BatchHandle) error

	// DeleteBatch releases the vertex buffer behind b.
	//
	// Parameters:
	//   - b: the batch to delete
	DeleteBatch(b BatchHandle)

	// SetViewTransform writes m to the next free view uniform slot for subsequent draws.
	//
	// Parameters:
	//   - m: the column-major view transform
	SetViewTransform(m [16]float32)

	// BeginFrame acquires the next swapchain texture, creates a command encoder, and begins
	// the main render pass. Must be paired with EndFrame.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	Present()

	// Release destroys all textures, batches, pipelines and buffers.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, maxQuads int) wgpuRendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: sampleCount,
		maxQuads:    maxQuads,
		textures:    make(map[TextureHandle]*wgpuTexture),
		batches:     make(map[BatchHandle]*wgpuBatch),
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Slice Viewer Device",
	})
	if err != nil {
		panic(err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]
	b.surfaceWidth = max(width, 1)
	b.surfaceHeight = max(height, 1)

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(b.surfaceWidth),
		Height:      uint32(b.surfaceHeight),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if msaaEnabled {
		// The render pass draws into the MSAA texture; the resolved result is written
		// to the swapchain view as the ResolveTarget.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(b.surfaceWidth),
				Height:             uint32(b.surfaceHeight),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	// Slices are flat and drawn in layer order, so the pass has no depth attachment.
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          b.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				ResolveTarget: nil,               // set per-frame when MSAA is on
				LoadOp:        wgpu.LoadOpClear,
				StoreOp:       storeOp,
				ClearValue:    b.wgpuClearColor(),
			},
		},
	}
}

func (b *wgpuRendererBackendImpl) wgpuClearColor() wgpu.Color {
	return wgpu.Color{
		R: float64(b.clearColor.R),
		G: float64(b.clearColor.G),
		B: float64(b.clearColor.B),
		A: float64(b.clearColor.A),
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) SetClearColor(c common.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clearColor = c
	if b.renderPassDescriptor != nil {
		b.renderPassDescriptor.ColorAttachments[0].ClearValue = b.wgpuClearColor()
	}
}

func (b *wgpuRendererBackendImpl) CreatePipelines() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	b.viewLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "View Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: viewUniformSize,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create view bind group layout: %w", err)
	}

	b.textureLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Slice Texture Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create texture bind group layout: %w", err)
	}

	b.viewBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "View Uniform Buffer",
		Size:  viewSlotStride * maxViewSlots,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	for slot := range b.viewBindGroups {
		b.viewBindGroups[slot], err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("View Bind Group %d", slot),
			Layout: b.viewLayout,
			Entries: []wgpu.BindGroupEntry{
				{
					Binding: 0,
					Buffer:  b.viewBuffer,
					Offset:  uint64(slot * viewSlotStride),
					Size:    viewUniformSize,
				},
			},
		})
		if err != nil {
			return err
		}
	}

	b.quadBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Quad Vertex Buffer",
		Size:  uint64(b.maxQuads * 6 * quadVertexSize),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}

	quadModule, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Slice Quad Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: quadShaderSource,
		},
	})
	if err != nil {
		return err
	}
	primModule, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Overlay Primitive Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: primitiveShaderSource,
		},
	})
	if err != nil {
		return err
	}

	quadLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Slice Quad",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.viewLayout, b.textureLayout},
	})
	if err != nil {
		return err
	}
	primLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Overlay Primitive",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.viewLayout},
	})
	if err != nil {
		return err
	}

	quadBuffers := []wgpu.VertexBufferLayout{{
		ArrayStride: quadVertexSize,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32, Offset: 32, ShaderLocation: 3},
		},
	}}
	primBuffers := []wgpu.VertexBufferLayout{{
		ArrayStride: primVertexSize,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32, Offset: 16, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32, Offset: 20, ShaderLocation: 3},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 24, ShaderLocation: 4},
		},
	}}

	if b.quadOpaque, err = b.createRenderPipeline("Slice Quad Opaque", quadLayout, quadModule, "vs_quad", "fs_quad", quadBuffers, nil); err != nil {
		return err
	}
	if b.quadBlend, err = b.createRenderPipeline("Slice Quad Blend", quadLayout, quadModule, "vs_quad", "fs_quad", quadBuffers, alphaBlend()); err != nil {
		return err
	}
	if b.primPipeline, err = b.createRenderPipeline("Overlay Primitive", primLayout, primModule, "vs_prim", "fs_prim", primBuffers, alphaBlend()); err != nil {
		return err
	}
	return nil
}

// alphaBlend is the SRC_ALPHA / ONE_MINUS_SRC_ALPHA blend used by transparent layers and glyphs.
func alphaBlend() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

func (b *wgpuRendererBackendImpl) createRenderPipeline(
	label string,
	layout *wgpu.PipelineLayout,
	module *wgpu.ShaderModule,
	vsEntry, fsEntry string,
	buffers []wgpu.VertexBufferLayout,
	blend *wgpu.BlendState,
) (*wgpu.RenderPipeline, error) {
	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: vsEntry,
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: fsEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					Blend:     blend,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipeline: %w", label, err)
	}
	return created, nil
}

func (b *wgpuRendererBackendImpl) CreateTexture() (TextureHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextTexture++
	b.textures[b.nextTexture] = &wgpuTexture{}
	return b.nextTexture, nil
}

func (b *wgpuRendererBackendImpl) DeleteTexture(h TextureHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.textures[h]; ok {
		t.release()
		delete(b.textures, h)
	}
}

// textureFormat returns the GPU format holding f and the bytes per texel as stored.
func textureFormat(f PixelFormat) (wgpu.TextureFormat, uint32) {
	switch f {
	case FormatLuminance:
		return wgpu.TextureFormatR8Unorm, 1
	case FormatLuminanceAlpha:
		return wgpu.TextureFormatRG8Unorm, 2
	default:
		// There is no 3-byte texel format; RGB is widened on upload.
		return wgpu.TextureFormatRGBA8Unorm, 4
	}
}

func (b *wgpuRendererBackendImpl) AllocateTexture(h TextureHandle, desc TextureDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.textures[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, h)
	}
	t.release()

	format, _ := textureFormat(desc.Format)
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(desc.Size.Width),
			Height:             uint32(desc.Size.Height),
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("failed to create texture %q: %w", desc.Label, err)
	}
	t.texture = tex

	t.view, err = tex.CreateView(nil)
	if err != nil {
		t.release()
		return fmt.Errorf("failed to create texture view %q: %w", desc.Label, err)
	}

	t.sampler, err = b.createSampler(desc.Label, samplerStagingData(desc.Interpolation))
	if err != nil {
		t.release()
		return err
	}

	t.bindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  desc.Label + " Bind Group",
		Layout: b.textureLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: t.view},
			{Binding: 1, Sampler: t.sampler},
		},
	})
	if err != nil {
		t.release()
		return fmt.Errorf("failed to create texture bind group %q: %w", desc.Label, err)
	}

	t.desc = desc
	return nil
}

// samplerStagingData maps an interpolation mode to a clamped, mip-less sampler configuration.
func samplerStagingData(mode Interpolation) common.SamplerStagingData {
	filter := wgpu.FilterModeNearest
	if mode == InterpolationLinear {
		filter = wgpu.FilterModeLinear
	}
	return common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
	}
}

func (b *wgpuRendererBackendImpl) createSampler(label string, data common.SamplerStagingData) (*wgpu.Sampler, error) {
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  data.AddressModeU,
		AddressModeV:  data.AddressModeV,
		AddressModeW:  data.AddressModeW,
		MagFilter:     data.MagFilter,
		MinFilter:     data.MinFilter,
		MipmapFilter:  data.MipmapFilter,
		LodMinClamp:   data.LodMinClamp,
		LodMaxClamp:   common.Coalesce(data.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(data.MaxAnisotropy, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler %q: %w", label, err)
	}
	return samp, nil
}

func (b *wgpuRendererBackendImpl) UploadSubImage(h TextureHandle, width, height int, pixels []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.textures[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, h)
	}
	if t.texture == nil {
		return fmt.Errorf("%w: %d", ErrTextureNotAllocated, h)
	}
	if width <= 0 || height <= 0 {
		return nil
	}
	comps := t.desc.Format.Components()
	if width > t.desc.Size.Width || height > t.desc.Size.Height || len(pixels) < width*height*comps {
		return fmt.Errorf("%w: %dx%d into %dx%d with %d bytes",
			ErrUploadOutOfBounds, width, height, t.desc.Size.Width, t.desc.Size.Height, len(pixels))
	}

	data := pixels[:width*height*comps]
	_, texelSize := textureFormat(t.desc.Format)
	if t.desc.Format == FormatRGB {
		n := width * height
		if cap(t.expand) < n*4 {
			t.expand = make([]byte, n*4)
		}
		rgba := t.expand[:n*4]
		for i := 0; i < n; i++ {
			rgba[i*4] = data[i*3]
			rgba[i*4+1] = data[i*3+1]
			rgba[i*4+2] = data[i*3+2]
			rgba[i*4+3] = 255
		}
		data = rgba
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(width) * texelSize,
			RowsPerImage: uint32(height),
		},
		&wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

// shaderMode returns the fs_quad channel mode for a pixel format.
func shaderMode(f PixelFormat) float32 {
	switch f {
	case FormatLuminance:
		return 0
	case FormatLuminanceAlpha:
		return 1
	default:
		return 2
	}
}

func (b *wgpuRendererBackendImpl) DrawTexturedQuad(h TextureHandle, quad Quad, tint common.Color, blend bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errNoFrame
	}
	t, ok := b.textures[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, h)
	}
	if t.bindGroup == nil {
		return fmt.Errorf("%w: %d", ErrTextureNotAllocated, h)
	}
	if b.quadCount >= b.maxQuads {
		return fmt.Errorf("renderer: quad capacity of %d per frame exhausted", b.maxQuads)
	}

	vertices := quadVertices(quad, [4]float32{tint.R, tint.G, tint.B, tint.A}, shaderMode(t.desc.Format))
	offset := uint64(b.quadCount * 6 * quadVertexSize)
	b.queue.WriteBuffer(b.quadBuffer, offset, common.SliceToBytes(vertices[:]))
	b.quadCount++

	p := b.quadOpaque
	if blend {
		p = b.quadBlend
	}
	b.framePass.SetPipeline(p)
	b.framePass.SetBindGroup(0, b.viewBindGroups[b.viewSlot], nil)
	b.framePass.SetBindGroup(1, t.bindGroup, nil)
	b.framePass.SetVertexBuffer(0, b.quadBuffer, offset, 6*quadVertexSize)
	b.framePass.Draw(6, 1, 0, 0)
	return nil
}

func (b *wgpuRendererBackendImpl) CreateBatch(prims []Primitive) (BatchHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	vertices := primitiveVertices(prims)
	batch := &wgpuBatch{vertexCount: uint32(len(vertices))}
	if len(vertices) > 0 {
		data := common.SliceToBytes(vertices)
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Overlay Batch Vertex Buffer",
			Size:  uint64(len(data)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to create batch buffer: %w", err)
		}
		b.queue.WriteBuffer(buf, 0, data)
		batch.buffer = buf
	}

	b.nextBatch++
	b.batches[b.nextBatch] = batch
	return b.nextBatch, nil
}

func (b *wgpuRendererBackendImpl) DrawBatch(h BatchHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errNoFrame
	}
	batch, ok := b.batches[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBatch, h)
	}
	if batch.vertexCount == 0 {
		return nil
	}

	b.framePass.SetPipeline(b.primPipeline)
	b.framePass.SetBindGroup(0, b.viewBindGroups[b.viewSlot], nil)
	b.framePass.SetVertexBuffer(0, batch.buffer, 0, wgpu.WholeSize)
	b.framePass.Draw(batch.vertexCount, 1, 0, 0)
	return nil
}

func (b *wgpuRendererBackendImpl) DeleteBatch(h BatchHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if batch, ok := b.batches[h]; ok {
		if batch.buffer != nil {
			batch.buffer.Release()
		}
		delete(b.batches, h)
	}
}

func (b *wgpuRendererBackendImpl) SetViewTransform(m [16]float32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Every transform set within a frame gets its own uniform slot, since all queue writes
	// land before the frame's command buffer runs. The last slot is reused when they run out.
	if b.viewUsed && b.viewSlot < maxViewSlots-1 {
		b.viewSlot++
	}
	b.viewUsed = true

	b.view.Transform = m
	b.view.Viewport = [2]float32{float32(b.surfaceWidth), float32(b.surfaceHeight)}
	b.queue.WriteBuffer(b.viewBuffer, uint64(b.viewSlot*viewSlotStride), common.StructToBytes(&b.view))
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If a previous frame's surface texture is still held, acquiring another one fails
	// with "Surface image is already acquired".
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view
	b.quadCount = 0
	b.viewSlot = 0
	b.viewUsed = false

	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for h, t := range b.textures {
		t.release()
		delete(b.textures, h)
	}
	for h, batch := range b.batches {
		if batch.buffer != nil {
			batch.buffer.Release()
		}
		delete(b.batches, h)
	}
	for i, bg := range b.viewBindGroups {
		if bg != nil {
			bg.Release()
			b.viewBindGroups[i] = nil
		}
	}
	for _, p := range []*wgpu.RenderPipeline{b.quadOpaque, b.quadBlend, b.primPipeline} {
		if p != nil {
			p.Release()
		}
	}
	b.quadOpaque, b.quadBlend, b.primPipeline = nil, nil, nil
	if b.quadBuffer != nil {
		b.quadBuffer.Release()
		b.quadBuffer = nil
	}
	if b.viewBuffer != nil {
		b.viewBuffer.Release()
		b.viewBuffer = nil
	}
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) Surface() *wgpu.Surface {
	return b.surface
}
