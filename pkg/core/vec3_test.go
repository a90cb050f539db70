package core

import (
	"math"
	"testing"
)

func TestVec3_Cross(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec3
		expected Vec3
	}{
		{"X cross Y", NewVec3(1, 0, 0), NewVec3(0, 1, 0), NewVec3(0, 0, 1)},
		{"Y cross Z", NewVec3(0, 1, 0), NewVec3(0, 0, 1), NewVec3(1, 0, 0)},
		{"Z cross X", NewVec3(0, 0, 1), NewVec3(1, 0, 0), NewVec3(0, 1, 0)},
		{"Parallel", NewVec3(2, 0, 0), NewVec3(5, 0, 0), NewVec3(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.a.Cross(tt.b)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestVec3_Normalize(t *testing.T) {
	v := NewVec3(3, 4, 0).Normalize()

	const tolerance = 1e-12
	if math.Abs(v.Length()-1.0) > tolerance {
		t.Errorf("Expected unit length, got %f", v.Length())
	}
	if math.Abs(v.X-0.6) > tolerance || math.Abs(v.Y-0.8) > tolerance {
		t.Errorf("Expected (0.6, 0.8, 0), got %v", v)
	}
}

func TestVec3_NormalizeZeroProducesNaN(t *testing.T) {
	v := Vec3{}.Normalize()
	if !v.IsNaN() {
		t.Errorf("Expected NaN components from normalizing the zero vector, got %v", v)
	}
}

func TestVec3_DotAndLength(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, -5, 6)

	if got := a.Dot(b); got != 12 {
		t.Errorf("Expected dot 12, got %f", got)
	}
	if got := a.LengthSquared(); got != 14 {
		t.Errorf("Expected squared length 14, got %f", got)
	}
	if got := a.Add(b).Subtract(b); got != a {
		t.Errorf("Expected add/subtract round trip to give %v, got %v", a, got)
	}
	if got := a.Negate().Multiply(-1); got != a {
		t.Errorf("Expected double negation to give %v, got %v", a, got)
	}
}

func TestColor_Lerp(t *testing.T) {
	sky := NewColor(0.5, 0.7, 1.0)

	if got := White.Lerp(sky, 0); got != White {
		t.Errorf("Expected white at t=0, got %v", got)
	}
	if got := White.Lerp(sky, 1); got != sky {
		t.Errorf("Expected sky at t=1, got %v", got)
	}

	mid := White.Lerp(sky, 0.5)
	expected := NewColor(0.75, 0.85, 1.0)
	const tolerance = 1e-12
	if math.Abs(mid.R-expected.R) > tolerance ||
		math.Abs(mid.G-expected.G) > tolerance ||
		math.Abs(mid.B-expected.B) > tolerance {
		t.Errorf("Expected %v at t=0.5, got %v", expected, mid)
	}
}
