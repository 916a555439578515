package main

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-slice/config"
)

func Test_LoadConfig_Applies_FlagOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, done, err := loadConfig([]string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--axis", "y",
		"-i", "linear",
		"--size", "8,6,4",
		"--uncapped",
	})

	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, "y", cfg.Volume.Axis)
	assert.Equal(t, "linear", cfg.View.Interpolation)
	assert.Equal(t, [3]int{8, 6, 4}, [3]int{cfg.Volume.Width, cfg.Volume.Height, cfg.Volume.Depth})
	assert.Equal(t, "uncapped", cfg.Renderer.PresentMode)
}

func Test_LoadConfig_Rejects_InvalidOverride(t *testing.T) {
	t.Parallel()

	_, _, err := loadConfig([]string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--axis", "w",
	})

	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func Test_LoadConfig_Writes_Config_When_Requested(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.yaml")
	_, done, err := loadConfig([]string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--write-config", out,
		"--profile",
	})
	require.NoError(t, err)
	assert.True(t, done)

	saved, err := config.LoadConfig(out)
	require.NoError(t, err)
	assert.True(t, saved.Profiling.Enabled)
}

func Test_BuildScalarVolume_Is_Brightest_At_Center(t *testing.T) {
	t.Parallel()

	vol, err := buildScalarVolume(9, 9, 9)
	require.NoError(t, err)

	center := vol.Voxel(4, 4, 4)[0]
	assert.Greater(t, center, vol.Voxel(0, 0, 0)[0])
	assert.Greater(t, center, vol.Voxel(4, 4, 0)[0])
}

func Test_BuildVectorVolume_Holds_UnitVectors(t *testing.T) {
	t.Parallel()

	vol, err := buildVectorVolume(5, 5, 3)
	require.NoError(t, err)

	v := vol.Voxel(0, 2, 1)
	assert.InDelta(t, 1.0, math.Sqrt(v[0]*v[0]+v[1]*v[1]+v[2]*v[2]), 1e-9)
	// The center column has no swirl.
	assert.Equal(t, []float64{0, 0, 0}, vol.Voxel(2, 2, 1))
}
