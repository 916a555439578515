// Command oxy-slice shows 2D slices of a synthetic scalar volume with a vector field drawn
// over it, both as a color overlay and as line glyphs.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/natefinch/lumberjack"
	flag "github.com/spf13/pflag"

	"github.com/Carmen-Shannon/oxy-slice/config"
	"github.com/Carmen-Shannon/oxy-slice/engine"
	"github.com/Carmen-Shannon/oxy-slice/engine/camera"
	"github.com/Carmen-Shannon/oxy-slice/engine/overlay"
	"github.com/Carmen-Shannon/oxy-slice/engine/renderer"
	"github.com/Carmen-Shannon/oxy-slice/engine/slice"
	"github.com/Carmen-Shannon/oxy-slice/engine/texture"
	"github.com/Carmen-Shannon/oxy-slice/engine/view"
	"github.com/Carmen-Shannon/oxy-slice/engine/window"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("[Viewer] %v", err)
	}
}

// loadConfig parses the command line and returns the configuration it selects, with flag
// overrides applied. done is true when the invocation only wrote a config file.
func loadConfig(args []string) (cfg *config.Config, done bool, err error) {
	fs := flag.NewFlagSet("oxy-slice", flag.ContinueOnError)
	configPath := fs.StringP("config", "c", "oxy-slice.yaml", "path to the YAML config file")
	writeConfig := fs.String("write-config", "", "write the effective config to this path and exit")
	axis := fs.StringP("axis", "a", "", "initial slicing axis (x, y or z)")
	interpolation := fs.StringP("interpolation", "i", "", "texture filter (nearest or linear)")
	size := fs.IntSlice("size", nil, "synthetic volume size as width,height,depth")
	logFile := fs.String("log-file", "", "write logs to a rotating file instead of stderr")
	verbose := fs.BoolP("verbose", "v", false, "log every texture upload and glyph rebuild")
	profile := fs.BoolP("profile", "p", false, "log frame and cache statistics every interval")
	uncapped := fs.Bool("uncapped", false, "present without vsync")

	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}

	cfg, err = config.LoadConfig(*configPath)
	if err != nil {
		return nil, false, err
	}

	if fs.Changed("axis") {
		cfg.Volume.Axis = *axis
	}
	if fs.Changed("interpolation") {
		cfg.View.Interpolation = *interpolation
	}
	if fs.Changed("size") {
		if len(*size) != 3 {
			return nil, false, fmt.Errorf("--size wants 3 values, got %d", len(*size))
		}
		cfg.Volume.Width, cfg.Volume.Height, cfg.Volume.Depth = (*size)[0], (*size)[1], (*size)[2]
	}
	if fs.Changed("log-file") {
		cfg.Logging.File = *logFile
	}
	if fs.Changed("verbose") {
		cfg.Logging.Verbose = *verbose
	}
	if fs.Changed("profile") {
		cfg.Profiling.Enabled = *profile
	}
	if *uncapped {
		cfg.Renderer.PresentMode = "uncapped"
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}

	if *writeConfig != "" {
		if err := config.SaveConfig(cfg, *writeConfig); err != nil {
			return nil, false, err
		}
		fmt.Printf("Wrote config to %s\n", *writeConfig)
		return cfg, true, nil
	}
	return cfg, false, nil
}

// setLogger routes the standard logger to a rotating file when one is configured.
func setLogger(c config.LoggingConfig) {
	if c.File == "" {
		return
	}
	fmt.Printf("Sending log messages to: %s\n", c.File)
	log.SetOutput(&lumberjack.Logger{
		Filename: c.File,
		MaxSize:  c.MaxSize, // megabytes
		MaxAge:   c.MaxAge,  // days
	})
}

func run(args []string) error {
	cfg, done, err := loadConfig(args)
	if err != nil || done {
		return err
	}
	setLogger(cfg.Logging)
	logger := log.Default()

	axis, _ := slice.ParseAxis(cfg.Volume.Axis)
	interpolation, _ := renderer.ParseInterpolation(cfg.View.Interpolation)

	// ── Volumes ─────────────────────────────────────────────────────────
	scalarVol, err := buildScalarVolume(cfg.Volume.Width, cfg.Volume.Height, cfg.Volume.Depth)
	if err != nil {
		return err
	}
	vectorVol, err := buildVectorVolume(cfg.Volume.Width, cfg.Volume.Height, cfg.Volume.Depth)
	if err != nil {
		return err
	}
	start := scalarVol.SliceCount(axis) / 2

	scalar, err := slice.NewVolumePipeline(scalarVol,
		slice.WithSlice[uint16](axis, start),
		slice.WithWorkers[uint16](cfg.Volume.Workers),
	)
	if err != nil {
		return err
	}
	defer scalar.Close()

	vectors, err := slice.NewVolumePipeline(vectorVol,
		slice.WithSlice[float64](axis, start),
		slice.WithWorkers[float64](cfg.Volume.Workers),
	)
	if err != nil {
		return err
	}
	defer vectors.Close()

	colors, err := slice.NewVectorDisplayFilter(vectors, cfg.Vectors.Gain)
	if err != nil {
		return err
	}

	// ── Window + Renderer ───────────────────────────────────────────────
	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	r, err := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(renderer.ParsePresentMode(cfg.Renderer.PresentMode)),
	)
	if err != nil {
		return err
	}
	r.SetClearColor(cfg.Renderer.ClearColor.Color())

	// ── Engine ──────────────────────────────────────────────────────────
	eng := engine.NewEngine(
		engine.WithProfiling(cfg.Profiling.Enabled),
		engine.WithProfilingInterval(cfg.Profiling.Interval),
		engine.WithTickRate(cfg.Renderer.TickRate),
		engine.WithRenderFrameLimit(cfg.Renderer.FrameLimit),
		engine.WithLogger(logger),
		engine.WithWindow(win),
		engine.WithRenderer(r),
	)

	// ── Layers ──────────────────────────────────────────────────────────
	base := texture.NewSliceTexture(r,
		texture.WithLabel("scalar"),
		texture.WithInterpolation(interpolation),
		texture.WithLogger(logger, cfg.Logging.Verbose),
	)
	if err := base.SetSource(scalar); err != nil {
		return err
	}

	tint := texture.NewSliceTexture(r,
		texture.WithLabel("vector color"),
		texture.WithInterpolation(interpolation),
		texture.WithLogger(logger, cfg.Logging.Verbose),
	)
	if err := tint.SetSource(colors); err != nil {
		return err
	}

	glyphOptions := []overlay.VectorOverlayBuilderOption{
		overlay.WithColor(cfg.Vectors.Color.Color()),
		overlay.WithLineWidth(cfg.Vectors.LineWidth),
		overlay.WithShrink(cfg.Vectors.Shrink),
		overlay.WithLogger(logger, cfg.Logging.Verbose),
	}
	if cfg.Vectors.MarkerSize > 0 {
		glyphOptions = append(glyphOptions, overlay.WithMarker(cfg.Vectors.MarkerSize))
	}
	glyphs := overlay.NewVectorOverlay(r, glyphOptions...)
	glyphs.SetSource(vectors)

	// ── View ────────────────────────────────────────────────────────────
	cam := camera.NewCamera(
		camera.WithViewport(win.Width(), win.Height()),
		camera.WithFacing(cfg.View.FacingX, cfg.View.FacingY),
		camera.WithController(camera.NewCameraController(
			camera.WithZoomBounds(0.25, 64),
			camera.WithZoomSpeed(0.1),
			camera.WithPanSpeed(4),
		)),
	)
	sv := view.NewSliceView("main", cam,
		view.WithBase(base),
		view.WithOverlay(tint, cfg.View.OverlayAlpha),
		view.WithVectors(glyphs),
		view.WithBackground(cfg.View.Background.Color()),
	)
	sv.SetOverlayVisible(cfg.View.ShowOverlay)
	sv.SetVectorsVisible(cfg.View.ShowVectors)
	eng.AddView(0, sv)

	v := &viewer{
		title:       cfg.Window.Title,
		scalar:      scalar,
		vectors:     vectors,
		view:        sv,
		glyphs:      glyphs,
		glyphFacing: [2]int{cfg.Vectors.XFacing, cfg.Vectors.YFacing},
		overlayOn:   cfg.View.ShowOverlay,
		vectorsOn:   cfg.View.ShowVectors,
		cineRate:    cfg.Volume.CineRate,
		titleDirty:  true,
	}
	if err := v.projectGlyphs(); err != nil {
		return err
	}
	setupInput(eng, v)

	fmt.Println("╔══════════════════════════════════════════════════════╗")
	fmt.Println("║  oxy-slice                                           ║")
	fmt.Println("╠══════════════════════════════════════════════════════╣")
	fmt.Println("║  Arrows:         Step one slice (Shift: ten)         ║")
	fmt.Println("║  PgUp/PgDn:      Step ten slices                     ║")
	fmt.Println("║  Home/End:       First / last slice                  ║")
	fmt.Println("║  X/Y/Z:          Slice along axis                    ║")
	fmt.Println("║  Space:          Toggle cine playback                ║")
	fmt.Println("║  O:              Toggle vector color overlay         ║")
	fmt.Println("║  V:              Toggle vector glyphs                ║")
	fmt.Println("║  I:              Toggle nearest/linear filtering     ║")
	fmt.Println("║  WASD, drag:     Pan                                 ║")
	fmt.Println("║  Scroll, -/=:    Zoom                                ║")
	fmt.Println("║  R:              Reset camera                        ║")
	fmt.Println("║  Esc:            Quit                                ║")
	fmt.Println("╚══════════════════════════════════════════════════════╝")

	log.Printf("[Viewer] %dx%dx%d volume, %s axis, slice %d",
		cfg.Volume.Width, cfg.Volume.Height, cfg.Volume.Depth, axis, start)
	eng.Run()
	return nil
}
