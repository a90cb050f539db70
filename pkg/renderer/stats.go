package renderer

import (
	"image/color"
	"math"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int     // Total number of pixels rendered
	TotalSamples   int     // Total number of samples taken
	AverageSamples float64 // Average samples per pixel
	MaxSamples     int     // Samples per pixel requested
	MinSamples     int     // Minimum samples taken per pixel
	MaxSamplesUsed int     // Maximum samples actually used by any pixel
}

// newRenderStats starts statistics for pixelCount pixels
func newRenderStats(pixelCount, maxSamples int) RenderStats {
	return RenderStats{
		TotalPixels: pixelCount,
		MaxSamples:  maxSamples,
		MinSamples:  math.MaxInt, // Reduced as pixels are added
	}
}

// addPixel records the samples taken by one pixel
func (s *RenderStats) addPixel(samplesUsed int) {
	s.TotalSamples += samplesUsed
	s.MinSamples = min(s.MinSamples, samplesUsed)
	s.MaxSamplesUsed = max(s.MaxSamplesUsed, samplesUsed)
}

// merge folds the statistics of another region into s
func (s *RenderStats) merge(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.TotalSamples += other.TotalSamples
	s.MinSamples = min(s.MinSamples, other.MinSamples)
	s.MaxSamplesUsed = max(s.MaxSamplesUsed, other.MaxSamplesUsed)
	s.MaxSamples = max(s.MaxSamples, other.MaxSamples)
}

// finalize computes the averages once every pixel has been added
func (s *RenderStats) finalize() {
	if s.TotalPixels == 0 {
		s.MinSamples = 0
		return
	}
	s.AverageSamples = float64(s.TotalSamples) / float64(s.TotalPixels)
}

// PixelStats accumulates the samples of a single pixel
type PixelStats struct {
	ColorAccum  core.Color // Sum of all samples
	SampleCount int        // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(c core.Color) {
	ps.ColorAccum = ps.ColorAccum.Add(c)
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Color {
	if ps.SampleCount == 0 {
		return core.Black
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// colorToRGBA applies the square-root tone curve and quantizes to 8 bits
func colorToRGBA(c core.Color) color.RGBA {
	return color.RGBA{
		R: quantizeChannel(c.R),
		G: quantizeChannel(c.G),
		B: quantizeChannel(c.B),
		A: 255,
	}
}

// quantizeChannel computes 255*sqrt(v) truncated toward zero and saturated
// to [0, 255]. NaN, including the square root of a negative value, maps to 0.
func quantizeChannel(v float64) uint8 {
	scaled := 255.0 * math.Sqrt(v)
	switch {
	case math.IsNaN(scaled), scaled <= 0:
		return 0
	case scaled >= 255:
		return 255
	default:
		return uint8(scaled)
	}
}

// newPixelGrid allocates per-pixel statistics indexed [y][x]
func newPixelGrid(width, height int) [][]PixelStats {
	pixelStats := make([][]PixelStats, height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, width)
	}
	return pixelStats
}
