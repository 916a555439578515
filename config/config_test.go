package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-slice/config"
)

func Test_LoadConfig_Returns_Defaults_When_FileMissing(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(config.DefaultConfig(), cfg))
}

func Test_DefaultConfig_Is_Valid(t *testing.T) {
	t.Parallel()

	require.NoError(t, config.DefaultConfig().Validate())
}

func Test_LoadConfig_Overlays_File_On_Defaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "viewer.yaml")
	data := []byte(`
view:
  interpolation: linear
  overlayAlpha: 200
vectors:
  color: [0, 255, 0, 255]
  xFacing: -1
profiling:
  enabled: true
  interval: 250ms
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	want := config.DefaultConfig()
	want.View.Interpolation = "linear"
	want.View.OverlayAlpha = 200
	want.Vectors.Color = config.RGBA8{0, 255, 0, 255}
	want.Vectors.XFacing = -1
	want.Profiling.Enabled = true
	want.Profiling.Interval = 250 * time.Millisecond
	assert.Empty(t, cmp.Diff(want, cfg))
}

func Test_SaveConfig_RoundTrips_Through_LoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "viewer.yaml")
	cfg := config.DefaultConfig()
	cfg.Volume.Axis = "x"
	cfg.Vectors.MarkerSize = 0.2
	cfg.Logging.File = "viewer.log"

	require.NoError(t, config.SaveConfig(cfg, path))
	got, err := config.LoadConfig(path)

	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(cfg, got))
}

func Test_LoadConfig_Rejects_InvalidValues(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"facing":        "vectors:\n  yFacing: 0\n",
		"interpolation": "view:\n  interpolation: cubic\n",
		"axis":          "volume:\n  axis: w\n",
		"shrink":        "vectors:\n  shrink: 1.5\n",
		"window":        "window:\n  width: 0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "viewer.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			_, err := config.LoadConfig(path)
			require.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func Test_LoadConfig_Returns_Error_When_YamlMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: [unclosed"), 0o644))

	_, err := config.LoadConfig(path)

	require.Error(t, err)
	assert.NotErrorIs(t, err, config.ErrInvalidConfig)
}

func Test_RGBA8_Color_Normalizes(t *testing.T) {
	t.Parallel()

	c := config.RGBA8{255, 0, 51, 255}.Color()

	assert.InDelta(t, 1.0, float64(c.R), 1e-6)
	assert.InDelta(t, 0.2, float64(c.B), 1e-6)
}
