package renderer

import (
	"image/color"
	"math"
	"testing"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
)

func TestQuantizeChannel(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected uint8
	}{
		{"black", 0, 0},
		{"white", 1, 255},
		{"quarter is half", 0.25, 127},
		{"truncates", 0.5, 180},
		{"saturates high", 4, 255},
		{"infinite", math.Inf(1), 255},
		{"negative is NaN", -0.5, 0},
		{"NaN", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := quantizeChannel(tt.value); got != tt.expected {
				t.Errorf("quantizeChannel(%v) = %d, want %d", tt.value, got, tt.expected)
			}
		})
	}
}

func TestColorToRGBA(t *testing.T) {
	got := colorToRGBA(core.NewColor(1, 0.25, 0))
	expected := color.RGBA{R: 255, G: 127, B: 0, A: 255}
	if got != expected {
		t.Errorf("colorToRGBA() = %v, want %v", got, expected)
	}
}

func TestPixelStats(t *testing.T) {
	var ps PixelStats
	if ps.GetColor() != core.Black {
		t.Errorf("Expected black for an empty pixel, got %v", ps.GetColor())
	}

	ps.AddSample(core.NewColor(1, 0, 0.5))
	ps.AddSample(core.NewColor(0, 1, 0.5))

	if ps.SampleCount != 2 {
		t.Errorf("Expected 2 samples, got %d", ps.SampleCount)
	}
	expected := core.NewColor(0.5, 0.5, 0.5)
	if ps.GetColor() != expected {
		t.Errorf("Expected average %v, got %v", expected, ps.GetColor())
	}
}

func TestRenderStats(t *testing.T) {
	stats := newRenderStats(3, 10)
	stats.addPixel(10)
	stats.addPixel(4)
	stats.addPixel(7)
	stats.finalize()

	if stats.TotalSamples != 21 {
		t.Errorf("TotalSamples = %d, want 21", stats.TotalSamples)
	}
	if stats.MinSamples != 4 || stats.MaxSamplesUsed != 10 {
		t.Errorf("Min/Max = %d/%d, want 4/10", stats.MinSamples, stats.MaxSamplesUsed)
	}
	if math.Abs(stats.AverageSamples-7) > 1e-12 {
		t.Errorf("AverageSamples = %f, want 7", stats.AverageSamples)
	}

	empty := newRenderStats(0, 10)
	empty.finalize()
	if empty.MinSamples != 0 || empty.AverageSamples != 0 {
		t.Errorf("Expected zeroed stats for an empty region, got %+v", empty)
	}
}
