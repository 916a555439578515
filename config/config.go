// Package config loads and saves the viewer configuration as YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/oxy-slice/common"
	"github.com/Carmen-Shannon/oxy-slice/engine/overlay"
	"github.com/Carmen-Shannon/oxy-slice/engine/renderer"
	"github.com/Carmen-Shannon/oxy-slice/engine/slice"
)

// ErrInvalidConfig is returned by Validate for out-of-range values.
var ErrInvalidConfig = errors.New("invalid config")

// RGBA8 is a color written as four 8-bit components, e.g. [255, 100, 50, 100].
type RGBA8 [4]uint8

// Color converts c into a normalized common.Color.
func (c RGBA8) Color() common.Color {
	return common.RGBA8(c[0], c[1], c[2], c[3])
}

// WindowConfig sizes and titles the viewer window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// RendererConfig controls frame presentation.
type RendererConfig struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `yaml:"presentMode"`

	// ClearColor fills the surface outside every slice.
	ClearColor RGBA8 `yaml:"clearColor"`

	// FrameLimit caps frames per second; 0 leaves the loop uncapped.
	FrameLimit float64 `yaml:"frameLimit"`

	// TickRate is the number of input ticks per second.
	TickRate float64 `yaml:"tickRate"`
}

// ViewConfig controls the base and overlay layers.
type ViewConfig struct {
	// Interpolation is "nearest" or "linear".
	Interpolation string `yaml:"interpolation"`

	// Background tints the base layer.
	Background RGBA8 `yaml:"background"`

	// OverlayAlpha is the opacity of the vector color overlay, 0 to 255.
	OverlayAlpha uint8 `yaml:"overlayAlpha"`

	// ShowOverlay and ShowVectors set the initial layer visibility.
	ShowOverlay bool `yaml:"showOverlay"`
	ShowVectors bool `yaml:"showVectors"`

	// FacingX and FacingY mirror the camera when -1.
	FacingX int `yaml:"facingX"`
	FacingY int `yaml:"facingY"`
}

// VectorsConfig styles the vector glyphs.
type VectorsConfig struct {
	Color     RGBA8   `yaml:"color"`
	LineWidth float32 `yaml:"lineWidth"`
	Shrink    float32 `yaml:"shrink"`

	// MarkerSize draws a square of this size at each glyph start when > 0.
	MarkerSize float32 `yaml:"markerSize"`

	// XFacing and YFacing flip the glyphs along screen x and y when -1. The projected
	// components follow the slicing axis.
	XFacing int `yaml:"xFacing"`
	YFacing int `yaml:"yFacing"`

	// Gain scales vector magnitudes into the color overlay.
	Gain float64 `yaml:"gain"`
}

// VolumeConfig describes the synthetic volume shown by the viewer.
type VolumeConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Depth  int `yaml:"depth"`

	// Axis is the initial slicing axis, "x", "y" or "z".
	Axis string `yaml:"axis"`

	// Workers is the number of slice extraction workers.
	Workers int `yaml:"workers"`

	// CineRate is the number of slices stepped per second in cine mode.
	CineRate float64 `yaml:"cineRate"`
}

// LoggingConfig routes log output.
type LoggingConfig struct {
	// File enables a rotating log file when set; otherwise logs go to stderr.
	File    string `yaml:"file"`
	MaxSize int    `yaml:"maxSize"` // megabytes
	MaxAge  int    `yaml:"maxAge"`  // days
	Verbose bool   `yaml:"verbose"`
}

// ProfilingConfig controls the periodic stats line.
type ProfilingConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Config represents the viewer configuration loaded from YAML.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Renderer  RendererConfig  `yaml:"renderer"`
	View      ViewConfig      `yaml:"view"`
	Vectors   VectorsConfig   `yaml:"vectors"`
	Volume    VolumeConfig    `yaml:"volume"`
	Logging   LoggingConfig   `yaml:"logging"`
	Profiling ProfilingConfig `yaml:"profiling"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	style := overlay.DefaultStyle
	proj := overlay.DefaultProjection

	return &Config{
		Window: WindowConfig{
			Title:  "oxy-slice",
			Width:  1024,
			Height: 768,
		},
		Renderer: RendererConfig{
			PresentMode: "vsync",
			ClearColor:  RGBA8{0, 0, 0, 255},
			TickRate:    60,
		},
		View: ViewConfig{
			Interpolation: "nearest",
			Background:    RGBA8{255, 255, 255, 255},
			OverlayAlpha:  128,
			ShowOverlay:   true,
			ShowVectors:   true,
			FacingX:       1,
			FacingY:       1,
		},
		Vectors: VectorsConfig{
			Color:     RGBA8{255, 100, 50, 100},
			LineWidth: style.LineWidth,
			Shrink:    style.Shrink,
			XFacing:   proj.XFacing,
			YFacing:   proj.YFacing,
			Gain:      255,
		},
		Volume: VolumeConfig{
			Width:    64,
			Height:   64,
			Depth:    32,
			Axis:     "z",
			Workers:  runtime.NumCPU(),
			CineRate: 10,
		},
		Logging: LoggingConfig{
			MaxSize: 10,
			MaxAge:  7,
		},
		Profiling: ProfilingConfig{
			Interval: time.Second,
		},
	}
}

// Validate reports the first field that cannot be applied.
//
// Returns:
//   - error: ErrInvalidConfig wrapped with the offending field, or nil
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if _, err := renderer.ParseInterpolation(c.View.Interpolation); err != nil {
		return fmt.Errorf("%w: view.interpolation: %v", ErrInvalidConfig, err)
	}
	if !unit(c.View.FacingX) || !unit(c.View.FacingY) {
		return fmt.Errorf("%w: view facing must be 1 or -1", ErrInvalidConfig)
	}
	if !unit(c.Vectors.XFacing) || !unit(c.Vectors.YFacing) {
		return fmt.Errorf("%w: vectors facing must be 1 or -1", ErrInvalidConfig)
	}
	if c.Vectors.Shrink <= 0 || c.Vectors.Shrink > 1 {
		return fmt.Errorf("%w: vectors.shrink %g outside (0, 1]", ErrInvalidConfig, c.Vectors.Shrink)
	}
	if c.Vectors.LineWidth <= 0 {
		return fmt.Errorf("%w: vectors.lineWidth %g", ErrInvalidConfig, c.Vectors.LineWidth)
	}
	if c.Volume.Width <= 0 || c.Volume.Height <= 0 || c.Volume.Depth <= 0 {
		return fmt.Errorf("%w: volume size %dx%dx%d", ErrInvalidConfig,
			c.Volume.Width, c.Volume.Height, c.Volume.Depth)
	}
	if _, err := slice.ParseAxis(c.Volume.Axis); err != nil {
		return fmt.Errorf("%w: volume.axis: %v", ErrInvalidConfig, err)
	}
	return nil
}

func unit(v int) bool {
	return v == 1 || v == -1
}

// LoadConfig loads configuration from a YAML file over the defaults.
// If the file doesn't exist, it returns the default configuration.
//
// Parameters:
//   - configPath: path to the YAML file
//
// Returns:
//   - *Config: the loaded configuration
//   - error: a read, parse or validation error
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig writes the configuration to a YAML file, replacing any existing file atomically.
//
// Parameters:
//   - cfg: the configuration to save
//   - configPath: destination path; parent directories are created
//
// Returns:
//   - error: a marshal or write error
func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := atomic.WriteFile(configPath, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
