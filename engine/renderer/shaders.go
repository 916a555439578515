package renderer

// viewUniformSource declares the per-draw view uniform shared by every pipeline.
// transform maps slice coordinates to clip space; viewport is the surface size in pixels.
const viewUniformSource = `
struct View {
    transform: mat4x4<f32>,
    viewport: vec2<f32>,
    _pad: vec2<f32>,
};

@group(0) @binding(0) var<uniform> view: View;
`

// quadShaderSource draws textured slice quads. mode selects how texel channels are read:
// 0 luminance (r), 1 luminance-alpha (r, g), 2 rgba.
const quadShaderSource = viewUniformSource + `
@group(1) @binding(0) var sliceTexture: texture_2d<f32>;
@group(1) @binding(1) var sliceSampler: sampler;

struct QuadIn {
    @location(0) position: vec2<f32>,
    @location(1) uv: vec2<f32>,
    @location(2) tint: vec4<f32>,
    @location(3) mode: f32,
};

struct QuadOut {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) tint: vec4<f32>,
    @location(2) @interpolate(flat) mode: f32,
};

@vertex
fn vs_quad(in: QuadIn) -> QuadOut {
    var out: QuadOut;
    out.clip = view.transform * vec4<f32>(in.position, 0.0, 1.0);
    out.uv = in.uv;
    out.tint = in.tint;
    out.mode = in.mode;
    return out;
}

@fragment
fn fs_quad(in: QuadOut) -> @location(0) vec4<f32> {
    let t = textureSample(sliceTexture, sliceSampler, in.uv);
    var texel = t;
    if (in.mode < 0.5) {
        texel = vec4<f32>(t.r, t.r, t.r, 1.0);
    } else if (in.mode < 1.5) {
        texel = vec4<f32>(t.r, t.r, t.r, t.g);
    }
    return texel * in.tint;
}
`

// primitiveShaderSource draws overlay batches. Line vertices carry the opposite endpoint and
// are pushed sideways by half the line width in screen pixels; rect vertices have zero width.
const primitiveShaderSource = viewUniformSource + `
struct PrimIn {
    @location(0) position: vec2<f32>,
    @location(1) other: vec2<f32>,
    @location(2) side: f32,
    @location(3) width: f32,
    @location(4) color: vec4<f32>,
};

struct PrimOut {
    @builtin(position) clip: vec4<f32>,
    @location(0) color: vec4<f32>,
};

@vertex
fn vs_prim(in: PrimIn) -> PrimOut {
    var clip = view.transform * vec4<f32>(in.position, 0.0, 1.0);
    let far = view.transform * vec4<f32>(in.other, 0.0, 1.0);
    let dir = (far.xy - clip.xy) * view.viewport * 0.5;
    if (in.width > 0.0 && length(dir) > 1e-6) {
        let n = normalize(vec2<f32>(-dir.y, dir.x));
        clip = vec4<f32>(clip.xy + n * in.side * in.width / view.viewport, clip.zw);
    }
    var out: PrimOut;
    out.clip = clip;
    out.color = in.color;
    return out;
}

@fragment
fn fs_prim(in: PrimOut) -> @location(0) vec4<f32> {
    return in.color;
}
`

// quadVertex matches QuadIn.
type quadVertex struct {
	Position [2]float32
	UV       [2]float32
	Tint     [4]float32
	Mode     float32
}

// primVertex matches PrimIn.
type primVertex struct {
	Position [2]float32
	Other    [2]float32
	Side     float32
	Width    float32
	Color    [4]float32
}

// viewUniform matches the View struct.
type viewUniform struct {
	Transform [16]float32
	Viewport  [2]float32
	_         [2]float32
}

const (
	quadVertexSize  = 36
	primVertexSize  = 40
	viewUniformSize = 80

	// viewSlotStride is the minimum uniform buffer offset alignment guaranteed by WebGPU.
	viewSlotStride = 256
	// maxViewSlots is how many view transforms one frame can use.
	maxViewSlots = 16
)

// quadVertices expands a quad into two triangles.
func quadVertices(q Quad, tint [4]float32, mode float32) [6]quadVertex {
	v := func(x, y, u, w float32) quadVertex {
		return quadVertex{Position: [2]float32{x, y}, UV: [2]float32{u, w}, Tint: tint, Mode: mode}
	}
	a := v(q.X0, q.Y0, q.U0, q.V0)
	b := v(q.X1, q.Y0, q.U1, q.V0)
	c := v(q.X1, q.Y1, q.U1, q.V1)
	d := v(q.X0, q.Y1, q.U0, q.V1)
	return [6]quadVertex{a, b, c, a, c, d}
}

// primitiveVertices expands primitives into triangle-list vertices.
func primitiveVertices(prims []Primitive) []primVertex {
	out := make([]primVertex, 0, len(prims)*6)
	for _, p := range prims {
		color := [4]float32{p.Color.R, p.Color.G, p.Color.B, p.Color.A}
		switch p.Kind {
		case PrimitiveLine:
			ap := primVertex{Position: p.A, Other: p.B, Side: 1, Width: p.Width, Color: color}
			am := primVertex{Position: p.A, Other: p.B, Side: -1, Width: p.Width, Color: color}
			// the normal flips when seen from B, so the sides swap
			bp := primVertex{Position: p.B, Other: p.A, Side: -1, Width: p.Width, Color: color}
			bm := primVertex{Position: p.B, Other: p.A, Side: 1, Width: p.Width, Color: color}
			out = append(out, ap, am, bp, am, bm, bp)
		case PrimitiveRect:
			corner := func(x, y float32) primVertex {
				pt := [2]float32{x, y}
				return primVertex{Position: pt, Other: pt, Color: color}
			}
			a := corner(p.A[0], p.A[1])
			b := corner(p.B[0], p.A[1])
			c := corner(p.B[0], p.B[1])
			d := corner(p.A[0], p.B[1])
			out = append(out, a, b, c, a, c, d)
		}
	}
	return out
}
