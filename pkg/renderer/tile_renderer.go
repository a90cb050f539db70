package renderer

import (
	"image"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
	"github.com/df07/go-diffuse-pathtracer/pkg/integrator"
	"github.com/df07/go-diffuse-pathtracer/pkg/scene"
)

// TileRenderer renders rectangular regions of the image using an integrator.
// It holds no mutable state, so one instance can serve many workers as long
// as each region gets its own sampler.
type TileRenderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	camera     *Camera
}

// NewTileRenderer creates a new tile renderer with the given scene and integrator
func NewTileRenderer(sc *scene.Scene, integratorInst integrator.Integrator, camera *Camera) *TileRenderer {
	return &TileRenderer{
		scene:      sc,
		integrator: integratorInst,
		camera:     camera,
	}
}

// RenderTileBounds brings every pixel within bounds up to targetSamples,
// visiting rows top to bottom and pixels left to right
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler, targetSamples int) RenderStats {
	stats := newRenderStats(bounds.Dx()*bounds.Dy(), targetSamples)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			samplesUsed := tr.samplePixel(x, y, &pixelStats[y][x], sampler, targetSamples)
			stats.addPixel(samplesUsed)
		}
	}

	stats.finalize()
	return stats
}

// samplePixel adds samples to ps until it holds targetSamples and returns the
// number of samples taken
func (tr *TileRenderer) samplePixel(x, y int, ps *PixelStats, sampler core.Sampler, targetSamples int) int {
	initialSampleCount := ps.SampleCount

	// A fresh PixelStats sums from black, so the pixel is the plain sample
	// mean. No sky color is folded into the sum.

	for ps.SampleCount < targetSamples {
		ray := tr.camera.GetRay(x, y, sampler)
		ps.AddSample(tr.integrator.RayColor(ray, tr.scene, sampler))
	}

	return ps.SampleCount - initialSampleCount
}
