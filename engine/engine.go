package engine

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-slice/engine/profiler"
	"github.com/Carmen-Shannon/oxy-slice/engine/renderer"
	"github.com/Carmen-Shannon/oxy-slice/engine/view"
	"github.com/Carmen-Shannon/oxy-slice/engine/window"
)

// maxTicksPerFrame bounds the tick catch-up after a long frame.
const maxTicksPerFrame = 5

// engine implements the Engine interface.
// Every callback, cache update and draw runs on the window thread.
type engine struct {
	window   window.Window
	renderer renderer.FrameRenderer
	logger   *log.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	views    map[int]view.SliceView
	// drawErrs holds the last draw error logged per view name.
	drawErrs map[string]string

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	lastFrame   time.Time
	accumulator time.Duration

	quitOnce sync.Once
	quit     bool
}

// Engine is the main entry point for the viewer.
// It owns the frame loop: fixed-rate ticks, then one render pass over all views.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the frame renderer.
	//
	// Returns:
	//   - renderer.FrameRenderer: the renderer, or nil if none was configured
	Renderer() renderer.FrameRenderer

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each tick, before the frame is drawn.
	// Use it for input-driven state changes such as slice stepping.
	//
	// Parameters:
	//   - callback: function receiving the tick duration in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each presented frame.
	//
	// Parameters:
	//   - callback: function receiving the frame delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap. Pass 0 to uncap.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddView registers a view at the given z-index key.
	// Views are drawn in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining draw order (lower draws first)
	//   - v: the view to register
	AddView(key int, v view.SliceView)

	// RemoveView removes the view at the given key without releasing it.
	//
	// Parameters:
	//   - key: the z-index of the view to remove
	RemoveView(key int)

	// View retrieves the view registered at the given key, or nil.
	//
	// Parameters:
	//   - key: the z-index of the view
	//
	// Returns:
	//   - view.SliceView: the view or nil
	View(key int) view.SliceView

	// Views returns a copy of all registered views keyed by z-index.
	//
	// Returns:
	//   - map[int]view.SliceView: a copy of the views map
	Views() map[int]view.SliceView

	// Run drives frames from the window message loop. Blocks until the window closes, then
	// releases every view and the renderer.
	Run()

	// Quit closes the window at the end of the current frame. Safe to call multiple times.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options (window, renderer, profiling, tick rate, views)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		views:          make(map[int]view.SliceView),
		drawErrs:       make(map[string]string),
		profiler:       profiler.NewProfiler(),
		logger:         log.Default(),
		engineTickRate: time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.resize)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.FrameRenderer {
	return e.renderer
}

func (e *engine) Run() {
	e.lastFrame = time.Now()
	e.window.SetUpdateCallback(func() {
		e.frame(time.Now())
		if e.quit {
			if err := e.window.Close(); err != nil {
				e.logger.Printf("[Engine] close window: %v", err)
			}
		}
	})
	e.window.ProcessMessages()
	e.release()
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		e.quit = true
	})
}

// resize forwards a framebuffer resize to the renderer and every view camera.
func (e *engine) resize(width, height int) {
	if e.renderer != nil {
		e.renderer.Resize(width, height)
	}
	for _, v := range e.views {
		v.Resize(width, height)
	}
}

// sortedViews returns the views in ascending key order.
func (e *engine) sortedViews() []view.SliceView {
	keys := make([]int, 0, len(e.views))
	for k := range e.views {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]view.SliceView, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.views[k])
	}
	return out
}

// frame runs one iteration of the loop: catch-up ticks, one render pass, the render
// callback, profiling and the optional frame cap.
func (e *engine) frame(now time.Time) {
	dt := now.Sub(e.lastFrame)
	e.lastFrame = now

	e.accumulator += dt
	for i := 0; e.accumulator >= e.engineTickRate; i++ {
		if i == maxTicksPerFrame {
			e.accumulator = 0
			break
		}
		if e.tickCallback != nil {
			e.tickCallback(float32(e.engineTickRate.Seconds()))
		}
		e.accumulator -= e.engineTickRate
	}

	views := e.sortedViews()
	if e.renderer != nil && len(views) > 0 {
		if err := e.renderer.BeginFrame(); err != nil {
			e.logger.Printf("[Engine] begin frame: %v", err)
		} else {
			for _, v := range views {
				e.drawView(v)
			}
			e.renderer.EndFrame()
			e.renderer.Present()
		}
	}

	if e.renderCallback != nil {
		e.renderCallback(float32(dt.Seconds()))
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick(cacheStats(views))
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// drawView draws one view. A failing layer stops the rest of that view for this frame and
// its caches retry on the next one. Each distinct error is logged once per view.
func (e *engine) drawView(v view.SliceView) {
	err := v.Draw(e.renderer)
	if err == nil {
		if _, failed := e.drawErrs[v.Name()]; failed {
			delete(e.drawErrs, v.Name())
			e.logger.Printf("[Engine] view %s recovered", v.Name())
		}
		return
	}
	msg := err.Error()
	if e.drawErrs[v.Name()] == msg {
		return
	}
	e.drawErrs[v.Name()] = msg
	e.logger.Printf("[Engine] view %s incomplete: %v", v.Name(), err)
}

// cacheStats sums the cache counters of every view.
func cacheStats(views []view.SliceView) profiler.CacheStats {
	var c profiler.CacheStats
	for _, v := range views {
		s := v.Stats()
		for _, t := range [...]struct{ conv, up, skip int }{
			{s.Base.Conversions, s.Base.Uploads, s.Base.Skips},
			{s.Overlay.Conversions, s.Overlay.Uploads, s.Overlay.Skips},
		} {
			c.Conversions += t.conv
			c.Uploads += t.up
			c.Skips += t.skip
		}
		c.Rebuilds += s.Vectors.Rebuilds
		c.Replays += s.Vectors.Replays
	}
	return c
}

// release frees every view and the renderer after the loop exits.
func (e *engine) release() {
	for _, v := range e.views {
		v.Release()
	}
	if e.renderer != nil {
		e.renderer.Release()
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	e.engineTickRate = time.Duration(float64(time.Second) / fps)
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddView(key int, v view.SliceView) {
	e.views[key] = v
	if e.window != nil {
		v.Resize(e.window.Width(), e.window.Height())
	}
}

func (e *engine) RemoveView(key int) {
	delete(e.views, key)
}

func (e *engine) View(key int) view.SliceView {
	return e.views[key]
}

func (e *engine) Views() map[int]view.SliceView {
	cp := make(map[int]view.SliceView, len(e.views))
	for k, v := range e.views {
		cp[k] = v
	}
	return cp
}
