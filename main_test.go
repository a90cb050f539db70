package main

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-diffuse-pathtracer/pkg/config"
	"github.com/df07/go-diffuse-pathtracer/pkg/core"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func smallConfig() config.RenderConfig {
	cfg := config.Default()
	cfg.Scene = "single-sphere"
	cfg.Width = 16
	cfg.Height = 9
	cfg.SamplesPerPixel = 2
	cfg.MaxDepth = 3
	return cfg
}

func TestParseArgsDefaults(t *testing.T) {
	cfg, opts, err := parseArgs(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.False(t, opts.watch)
}

func TestParseArgsFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.toml")
	require.NoError(t, os.WriteFile(path, []byte("width = 640\nheight = 360\nsamples_per_pixel = 8\n"), 0o644))

	cfg, opts, err := parseArgs([]string{"-config", path, "-height", "100", "-sky", "0.1,0.2,0.3", "-watch"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Width, "from file")
	assert.Equal(t, 100, cfg.Height, "flag wins over file")
	assert.Equal(t, 8, cfg.SamplesPerPixel, "from file")
	assert.Equal(t, 70, cfg.MaxDepth, "default")
	require.NotNil(t, cfg.Sky)
	assert.Equal(t, [3]float64{0.1, 0.2, 0.3}, *cfg.Sky)
	assert.True(t, opts.watch)
	assert.Equal(t, path, opts.configPath)
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-nope"}},
		{"positional argument", []string{"scene.yaml"}},
		{"invalid sky", []string{"-sky", "1,2"}},
		{"invalid config", []string{"-width", "0"}},
		{"missing config file", []string{"-config", "does-not-exist.toml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseArgs(tt.args, io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestCreateScene(t *testing.T) {
	cfg := smallConfig()
	cfg.Sky = &[3]float64{0.2, 0.2, 0.2}

	sc, err := createScene(cfg)
	require.NoError(t, err)
	assert.True(t, sc.Prepared())
	assert.Equal(t, core.NewColor(0.2, 0.2, 0.2), sc.Sky)

	cfg.Scene = "nonexistent"
	_, err = createScene(cfg)
	assert.Error(t, err)
}

func TestRenderReference(t *testing.T) {
	cfg := smallConfig()
	require.True(t, cfg.Reference())

	first, stats, err := render(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 16, first.Bounds().Dx())
	assert.Equal(t, 9, first.Bounds().Dy())
	assert.Equal(t, 2, stats.MaxSamplesUsed)

	second, _, err := render(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, first, second, "same seed should reproduce the image")
}

func TestRenderProgressive(t *testing.T) {
	cfg := smallConfig()
	cfg.SamplesPerPixel = 4
	cfg.Workers = 2
	cfg.Passes = 2
	cfg.TileSize = 4
	require.False(t, cfg.Reference())

	img, stats, err := render(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 4, stats.MinSamples)
	assert.Equal(t, 4, stats.MaxSamplesUsed)
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := render(ctx, smallConfig(), quietLogger())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunWritesImage(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.png")
	args := []string{"-scene", "default", "-width", "8", "-height", "6", "-spp", "1", "-depth", "2", "-o", out}

	require.NoError(t, run(context.Background(), args, io.Discard, io.Discard))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
}

func TestRunListScenes(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-list", "-scenes", t.TempDir()}, &stdout, io.Discard))
	assert.Contains(t, stdout.String(), "Built-in Scenes:")
	assert.Contains(t, stdout.String(), "single-sphere")
}

func TestWatchedFiles(t *testing.T) {
	dir := t.TempDir()
	scenePath := filepath.Join(dir, "lone.yaml")
	require.NoError(t, os.WriteFile(scenePath, []byte("camera: {position: [0,0,0], direction: [0,0,1]}\n"), 0o644))
	configPath := filepath.Join(dir, "render.toml")

	cfg := smallConfig()
	cfg.Scene = "file:lone"
	cfg.ScenesDir = dir
	files := watchedFiles(cfg, options{configPath: configPath})
	assert.Equal(t, []string{configPath, scenePath}, files)

	cfg.Scene = "default"
	assert.Empty(t, watchedFiles(cfg, options{}))

	err := watch(context.Background(), nil, nil, quietLogger())
	assert.Error(t, err)
}
