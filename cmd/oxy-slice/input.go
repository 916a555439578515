package main

import (
	"fmt"
	"log"
	"math"

	"github.com/Carmen-Shannon/oxy-slice/common"
	"github.com/Carmen-Shannon/oxy-slice/engine"
	"github.com/Carmen-Shannon/oxy-slice/engine/overlay"
	"github.com/Carmen-Shannon/oxy-slice/engine/renderer"
	"github.com/Carmen-Shannon/oxy-slice/engine/slice"
	"github.com/Carmen-Shannon/oxy-slice/engine/view"
	"github.com/Carmen-Shannon/oxy-slice/engine/window"
)

// viewer holds the state the input callbacks act on.
type viewer struct {
	title   string
	scalar  *slice.VolumePipeline[uint16]
	vectors *slice.VolumePipeline[float64]
	view    view.SliceView
	glyphs  overlay.VectorOverlay

	// glyphFacing flips the projected vector components along screen x and y.
	glyphFacing [2]int

	overlayOn bool
	vectorsOn bool

	cine     bool
	cineRate float64
	cineAcc  float64

	mouseX, mouseY int32
	titleDirty     bool
}

// moveTo puts both pipelines on the same slice.
func (v *viewer) moveTo(axis slice.Axis, index int) {
	if err := v.scalar.MoveToSlice(axis, index); err != nil {
		log.Printf("[Viewer] %v", err)
		return
	}
	if err := v.vectors.MoveToSlice(axis, index); err != nil {
		log.Printf("[Viewer] %v", err)
	}
	v.titleDirty = true
}

// step moves delta slices along the current axis, clamped to the volume.
func (v *viewer) step(delta int) {
	n := v.scalar.Volume().SliceCount(v.scalar.Axis())
	v.moveTo(v.scalar.Axis(), min(max(v.scalar.Index()+delta, 0), n-1))
}

// advanceCine steps forward one slice, wrapping at the end of the volume.
func (v *viewer) advanceCine() {
	n := v.scalar.Volume().SliceCount(v.scalar.Axis())
	v.moveTo(v.scalar.Axis(), (v.scalar.Index()+1)%n)
}

// setAxis switches both pipelines to the middle slice of axis.
func (v *viewer) setAxis(axis slice.Axis) {
	if axis == v.scalar.Axis() {
		return
	}
	v.moveTo(axis, v.scalar.Volume().SliceCount(axis)/2)
	if err := v.projectGlyphs(); err != nil {
		log.Printf("[Viewer] %v", err)
	}
}

// projectGlyphs points the glyph overlay at the vector components lying in the plane of
// the current slice.
func (v *viewer) projectGlyphs() error {
	if v.glyphs == nil {
		return nil
	}
	u, w := v.vectors.Axis().PlaneAxes()
	return v.glyphs.Configure(u, w, v.glyphFacing[0], v.glyphFacing[1])
}

// probe returns the scalar value under the cursor, if any.
func (v *viewer) probe() (x, y int, value float64, ok bool) {
	s := v.scalar.Slice()
	if s == nil {
		return 0, 0, 0, false
	}
	fx, fy := v.view.Camera().ScreenToSlice(float32(v.mouseX), float32(v.mouseY))
	x, y = int(math.Floor(float64(fx))), int(math.Floor(float64(fy)))
	size := s.Region().Size
	if x < 0 || y < 0 || x >= size.Width || y >= size.Height {
		return 0, 0, 0, false
	}
	return x, y, s.At(x, y, 0), true
}

// windowTitle formats the slice position and the voxel under the cursor.
func (v *viewer) windowTitle() string {
	axis := v.scalar.Axis()
	n := v.scalar.Volume().SliceCount(axis)
	t := fmt.Sprintf("%s | %s %d/%d", v.title, axis, v.scalar.Index(), n-1)
	if x, y, value, ok := v.probe(); ok {
		t += fmt.Sprintf(" | (%d, %d) = %g", x, y, value)
	}
	if v.cine {
		t += " | cine"
	}
	return t
}

// setupInput wires slice stepping (arrows, PageUp/PageDown, Home/End), axis selection
// (X/Y/Z), cine playback (Space), layer toggles (O=overlay, V=vectors), interpolation (I),
// camera pan (WASD, left-drag), zoom (scroll, -/=) and recenter (R). Esc is handled by the
// window itself.
//
// Parameters:
//   - eng: the engine instance providing window callbacks and tick
//   - v: the viewer state
func setupInput(eng engine.Engine, v *viewer) {
	keyState := make(map[uint32]bool)
	win := eng.Window()
	cam := v.view.Camera()

	shifted := func() bool {
		return keyState[common.KeyLeftShift] || keyState[common.KeyRightShift]
	}

	win.SetKeyDownCallback(func(keyCode uint32) {
		keyState[keyCode] = true

		stride := 1
		if shifted() {
			stride = 10
		}

		switch keyCode {
		case common.KeyUp, common.KeyRight:
			v.step(stride)
		case common.KeyDown, common.KeyLeft:
			v.step(-stride)
		case common.KeyPageUp:
			v.step(10 * stride)
		case common.KeyPageDown:
			v.step(-10 * stride)
		case common.KeyHome:
			v.moveTo(v.scalar.Axis(), 0)
		case common.KeyEnd:
			v.moveTo(v.scalar.Axis(), v.scalar.Volume().SliceCount(v.scalar.Axis())-1)
		case common.KeyX:
			v.setAxis(slice.AxisX)
		case common.KeyY:
			v.setAxis(slice.AxisY)
		case common.KeyZ:
			v.setAxis(slice.AxisZ)
		case common.KeySpace:
			v.cine = !v.cine
			v.cineAcc = 0
			v.titleDirty = true
		case common.KeyO:
			v.overlayOn = !v.overlayOn
			v.view.SetOverlayVisible(v.overlayOn)
			log.Printf("[Viewer] overlay %s", onOff(v.overlayOn))
		case common.KeyV:
			v.vectorsOn = !v.vectorsOn
			v.view.SetVectorsVisible(v.vectorsOn)
			log.Printf("[Viewer] vectors %s", onOff(v.vectorsOn))
		case common.KeyI:
			base := v.view.Base()
			next := renderer.InterpolationLinear
			if base.Interpolation() == renderer.InterpolationLinear {
				next = renderer.InterpolationNearest
			}
			if err := base.SetInterpolation(next); err != nil {
				log.Printf("[Viewer] %v", err)
				break
			}
			log.Printf("[Viewer] interpolation %s", next)
		case common.KeyR:
			cam.Controller().SetZoom(1)
			cam.Controller().Recenter(cam.Extent())
		case common.KeyEqual:
			cam.Controller().ZoomBy(1)
		case common.KeyMinus:
			cam.Controller().ZoomBy(-1)
		}
	})

	win.SetKeyUpCallback(func(keyCode uint32) {
		keyState[keyCode] = false
	})

	var dragging bool
	var lastX, lastY int32

	win.SetMouseDownCallback(func(button window.MouseButton, x, y int32) {
		if button == window.MouseButtonLeft {
			dragging = true
			lastX, lastY = x, y
		}
	})

	win.SetMouseUpCallback(func(button window.MouseButton, _, _ int32) {
		if button == window.MouseButtonLeft {
			dragging = false
		}
	})

	win.SetMouseMoveCallback(func(x, y int32) {
		v.mouseX, v.mouseY = x, y
		v.titleDirty = true
		if !dragging {
			return
		}
		// Grabbed voxel stays under the cursor.
		ax, ay := cam.ScreenToSlice(float32(lastX), float32(lastY))
		bx, by := cam.ScreenToSlice(float32(x), float32(y))
		cx, cy := cam.Controller().Center()
		cam.Controller().SetCenter(cx-(bx-ax), cy-(by-ay))
		cam.Update()
		lastX, lastY = x, y
	})

	win.SetScrollCallback(func(delta float32) {
		cam.Controller().ZoomBy(delta)
	})

	eng.SetTickCallback(func(dt float32) {
		if keyState[common.KeyW] {
			cam.Controller().PanDown(-1)
		}
		if keyState[common.KeyS] {
			cam.Controller().PanDown(1)
		}
		if keyState[common.KeyA] {
			cam.Controller().PanRight(-1)
		}
		if keyState[common.KeyD] {
			cam.Controller().PanRight(1)
		}

		if v.cine && v.cineRate > 0 {
			v.cineAcc += float64(dt)
			period := 1 / v.cineRate
			for v.cineAcc >= period {
				v.cineAcc -= period
				v.advanceCine()
			}
		}
	})

	eng.SetRenderCallback(func(float32) {
		if v.titleDirty {
			v.titleDirty = false
			win.SetTitle(v.windowTitle())
		}
	})
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
