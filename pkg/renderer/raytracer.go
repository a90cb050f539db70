package renderer

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
	"github.com/df07/go-diffuse-pathtracer/pkg/integrator"
	"github.com/df07/go-diffuse-pathtracer/pkg/scene"
)

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	SamplesPerPixel int // Number of rays per pixel
}

// DefaultSamplingConfig returns the reference sample count
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 100,
	}
}

// Raytracer renders a whole image on the calling goroutine, one row at a
// time, drawing every random number from a single sampler. For a given seed
// the output is reproducible bit for bit.
type Raytracer struct {
	width, height int
	config        SamplingConfig
	tiles         *TileRenderer
	logger        *slog.Logger
}

// NewRaytracer creates a new raytracer. The scene must already be preprocessed.
func NewRaytracer(sc *scene.Scene, integratorInst integrator.Integrator, width, height int) *Raytracer {
	return &Raytracer{
		width:  width,
		height: height,
		config: DefaultSamplingConfig(),
		tiles:  NewTileRenderer(sc, integratorInst, NewCamera(width, height)),
		logger: slog.Default(),
	}
}

// SetSamplingConfig updates the sampling configuration
func (rt *Raytracer) SetSamplingConfig(config SamplingConfig) {
	rt.config = config
}

// SetLogger replaces the logger used for progress output
func (rt *Raytracer) SetLogger(logger *slog.Logger) {
	rt.logger = logger
}

// RenderPixel averages SamplesPerPixel samples through pixel (x, y). The
// result is linear; the tone curve is applied on quantization.
func (rt *Raytracer) RenderPixel(x, y int, sampler core.Sampler) core.Color {
	var ps PixelStats
	rt.tiles.samplePixel(x, y, &ps, sampler, rt.config.SamplesPerPixel)
	return ps.GetColor()
}

// RenderPass renders every pixel and returns the quantized image. The context
// is checked between rows; on cancellation the partial image is discarded.
func (rt *Raytracer) RenderPass(ctx context.Context, sampler core.Sampler) (*image.RGBA, RenderStats, error) {
	img := image.NewRGBA(image.Rect(0, 0, rt.width, rt.height))
	pixelStats := newPixelGrid(rt.width, rt.height)
	stats := newRenderStats(0, rt.config.SamplesPerPixel)
	startTime := time.Now()
	lastDecile := -1

	for y := 0; y < rt.height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, RenderStats{}, err
		}

		percent := float64(y) / float64(rt.height) * 100
		rt.logger.Debug("rendering row", "row", y, "percent", percent)
		if decile := int(percent) / 10; decile != lastDecile {
			rt.logger.Info("render progress", "percent", decile*10)
			lastDecile = decile
		}

		rowStats := rt.tiles.RenderTileBounds(image.Rect(0, y, rt.width, y+1), pixelStats, sampler, rt.config.SamplesPerPixel)
		stats.merge(rowStats)

		for x := 0; x < rt.width; x++ {
			img.SetRGBA(x, y, colorToRGBA(pixelStats[y][x].GetColor()))
		}
	}

	stats.finalize()
	rt.logger.Info("render complete", "elapsed", time.Since(startTime), "samples", stats.TotalSamples)

	return img, stats, nil
}
