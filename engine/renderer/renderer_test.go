package renderer

import (
	"sync"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-slice/common"
)

// blendSpy is a backend that only remembers the blend flag of each quad draw.
type blendSpy struct {
	blends []bool
}

var _ RendererBackend = &blendSpy{}

func (p *blendSpy) Device() *wgpu.Device                  { return nil }
func (p *blendSpy) Queue() *wgpu.Queue                    { return nil }
func (p *blendSpy) Surface() *wgpu.Surface                { return nil }
func (p *blendSpy) ConfigureSurface(int, int)             {}
func (p *blendSpy) SetPresentMode(PresentMode)            {}
func (p *blendSpy) SetClearColor(common.Color)            {}
func (p *blendSpy) CreatePipelines() error                { return nil }
func (p *blendSpy) CreateTexture() (TextureHandle, error) { return 1, nil }
func (p *blendSpy) DeleteTexture(TextureHandle)           {}

func (p *blendSpy) AllocateTexture(TextureHandle, TextureDescriptor) error { return nil }

func (p *blendSpy) UploadSubImage(TextureHandle, int, int, []byte) error { return nil }

func (p *blendSpy) DrawTexturedQuad(_ TextureHandle, _ Quad, _ common.Color, blend bool) error {
	p.blends = append(p.blends, blend)
	return nil
}

func (p *blendSpy) CreateBatch([]Primitive) (BatchHandle, error) { return 1, nil }
func (p *blendSpy) DrawBatch(BatchHandle) error                  { return nil }
func (p *blendSpy) DeleteBatch(BatchHandle)                      {}
func (p *blendSpy) SetViewTransform([16]float32)                 {}
func (p *blendSpy) BeginFrame() error                            { return nil }
func (p *blendSpy) EndFrame()                                    {}
func (p *blendSpy) Present()                                     {}
func (p *blendSpy) Release()                                     {}

func Test_Renderer_Restores_Blend_When_StatePopped(t *testing.T) {
	t.Parallel()

	spy := &blendSpy{}
	r := &renderer{mu: &sync.Mutex{}, backend: spy, states: []drawState{{}}}

	require.NoError(t, r.DrawTexturedQuad(1, Quad{}, common.White))
	r.PushState()
	r.SetBlend(true)
	require.NoError(t, r.DrawTexturedQuad(1, Quad{}, common.White))
	r.PushState()
	r.SetBlend(false)
	require.NoError(t, r.DrawTexturedQuad(1, Quad{}, common.White))
	r.PopState()
	require.NoError(t, r.DrawTexturedQuad(1, Quad{}, common.White))
	r.PopState()
	r.PopState()
	require.NoError(t, r.DrawTexturedQuad(1, Quad{}, common.White))

	assert.Empty(t, cmp.Diff([]bool{false, true, false, true, false}, spy.blends))
}

func Test_Renderer_Resets_StateStack_When_FrameBegins(t *testing.T) {
	t.Parallel()

	spy := &blendSpy{}
	r := &renderer{mu: &sync.Mutex{}, backend: spy, states: []drawState{{}}}

	r.PushState()
	r.SetBlend(true)
	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.DrawTexturedQuad(1, Quad{}, common.White))

	assert.Len(t, r.states, 1)
	assert.Equal(t, []bool{false}, spy.blends)
}

func Test_PrimitiveVertices_Expands_LineToQuad_When_Line(t *testing.T) {
	t.Parallel()

	color := common.RGBA8(255, 100, 50, 100)
	got := primitiveVertices([]Primitive{{
		Kind:  PrimitiveLine,
		A:     [2]float32{0, 1},
		B:     [2]float32{2, 1},
		Color: color,
		Width: 2,
	}})
	require.Len(t, got, 6)

	for _, v := range got {
		assert.InDelta(t, 2.0, float64(v.Width), 0)
		assert.Equal(t, [4]float32{color.R, color.G, color.B, color.A}, v.Color)
		switch v.Position {
		case [2]float32{0, 1}:
			assert.Equal(t, [2]float32{2, 1}, v.Other)
		case [2]float32{2, 1}:
			assert.Equal(t, [2]float32{0, 1}, v.Other)
		default:
			t.Fatalf("unexpected vertex position %v", v.Position)
		}
	}
}

func Test_PrimitiveVertices_Emits_ZeroWidthCorners_When_Rect(t *testing.T) {
	t.Parallel()

	got := primitiveVertices([]Primitive{{Kind: PrimitiveRect, A: [2]float32{1, 1}, B: [2]float32{2, 3}}})
	require.Len(t, got, 6)

	corners := map[[2]float32]bool{}
	for _, v := range got {
		assert.Zero(t, v.Width)
		assert.Equal(t, v.Position, v.Other)
		corners[v.Position] = true
	}
	assert.Len(t, corners, 4)
}

func Test_QuadVertices_Maps_CornersToTexcoords(t *testing.T) {
	t.Parallel()

	q := Quad{X0: 0, Y0: 0, X1: 4, Y1: 3, U0: 0, V0: 0, U1: 1, V1: 0.75}
	got := quadVertices(q, [4]float32{1, 1, 1, 1}, 0)

	for _, v := range got {
		assert.InDelta(t, float64(v.Position[0]/4), float64(v.UV[0]), 1e-6)
		assert.InDelta(t, float64(v.Position[1]/3*0.75), float64(v.UV[1]), 1e-6)
	}
}

func Test_PixelFormat_Components_When_FormatKnown(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 4; n++ {
		f, ok := FormatForComponents(n)
		require.True(t, ok)
		assert.Equal(t, n, f.Components())
	}
	_, ok := FormatForComponents(5)
	assert.False(t, ok)
}

func Test_ParseInterpolation_Returns_Error_When_Unknown(t *testing.T) {
	t.Parallel()

	mode, err := ParseInterpolation("linear")
	require.NoError(t, err)
	assert.Equal(t, InterpolationLinear, mode)
	assert.True(t, mode.Valid())

	_, err = ParseInterpolation("cubic")
	require.Error(t, err)
	assert.False(t, Interpolation(9).Valid())
}

func Test_ShaderStructs_Match_VertexLayoutSizes(t *testing.T) {
	t.Parallel()

	assert.Len(t, common.StructToBytes(&quadVertex{}), quadVertexSize)
	assert.Len(t, common.StructToBytes(&primVertex{}), primVertexSize)
	assert.Len(t, common.StructToBytes(&viewUniform{}), viewUniformSize)
}
