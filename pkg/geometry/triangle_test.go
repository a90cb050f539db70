package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
)

var testMaterial = core.NewMaterial(core.NewColor(0.5, 0.5, 0.5), 0.2)

func TestTriangle_Intersect(t *testing.T) {
	// Create a triangle in the XY plane
	triangle := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), testMaterial)

	tests := []struct {
		name      string
		ray       core.Ray
		shouldHit bool
		expectedT float64
	}{
		{
			name:      "Ray hits triangle center",
			ray:       core.NewRay(core.NewVec3(0.25, 0.25, -1), core.NewVec3(0, 0, 1)),
			shouldHit: true,
			expectedT: 1.0,
		},
		{
			name:      "Ray hits triangle edge",
			ray:       core.NewRay(core.NewVec3(0.5, 0, -1), core.NewVec3(0, 0, 1)),
			shouldHit: true,
			expectedT: 1.0,
		},
		{
			name:      "Unnormalized direction reports normalized distance",
			ray:       core.NewRay(core.NewVec3(0.25, 0.25, -2), core.NewVec3(0, 0, 8)),
			shouldHit: true,
			expectedT: 2.0,
		},
		{
			name:      "Ray hits back side",
			ray:       core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, -1)),
			shouldHit: true,
			expectedT: 1.0,
		},
		{
			name:      "Ray misses triangle",
			ray:       core.NewRay(core.NewVec3(1, 1, -1), core.NewVec3(0, 0, 1)),
			shouldHit: false,
		},
		{
			name:      "Ray parallel to triangle",
			ray:       core.NewRay(core.NewVec3(0.25, 0.25, -1), core.NewVec3(1, 0, 0)),
			shouldHit: false,
		},
		{
			name:      "Triangle behind ray",
			ray:       core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, 1)),
			shouldHit: false,
		},
		{
			name:      "Origin on the surface",
			ray:       core.NewRay(core.NewVec3(0.25, 0.25, 0), core.NewVec3(0, 0, 1)),
			shouldHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := triangle.Intersect(tt.ray)

			if isHit != tt.shouldHit {
				t.Fatalf("Expected hit=%v, got hit=%v (t=%f)", tt.shouldHit, isHit, hit.T)
			}
			if !tt.shouldHit {
				return
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.Material != testMaterial {
				t.Errorf("Expected material %v, got %v", testMaterial, hit.Material)
			}
		})
	}
}

func TestTriangle_NormalIsUnnormalizedCross(t *testing.T) {
	triangle := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 3, 0), testMaterial)
	ray := core.NewRay(core.NewVec3(0.5, 0.5, -1), core.NewVec3(0, 0, 1))

	hit, isHit := triangle.Intersect(ray)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}

	expected := core.NewVec3(0, 0, 6)
	if hit.Normal != expected {
		t.Errorf("Expected normal %v, got %v", expected, hit.Normal)
	}
}

func TestTriangle_DegenerateIsMissed(t *testing.T) {
	// All three vertices on a line
	triangle := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(2, 0, 0), testMaterial)
	ray := core.NewRay(core.NewVec3(0.5, 0, -1), core.NewVec3(0, 0, 1))

	if hit, isHit := triangle.Intersect(ray); isHit {
		t.Errorf("Expected degenerate triangle to be missed, got t=%f", hit.T)
	}
}

func TestTriangle_ToViewSpace(t *testing.T) {
	triangle := NewTriangle(core.NewVec3(0, 1, 1.5), core.NewVec3(0.5, 0, 1.5), core.NewVec3(-0.5, 0, 1.5), testMaterial)
	view := core.LookToLH(core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1), core.NewVec3(0, 1, 0))

	triangle.ToViewSpace(view)

	expected := []core.Vec3{core.NewVec3(0, 0, 1.5), core.NewVec3(0.5, -1, 1.5), core.NewVec3(-0.5, -1, 1.5)}
	for i, got := range []core.Vec3{triangle.A, triangle.B, triangle.C} {
		if got.Subtract(expected[i]).Length() > 1e-9 {
			t.Errorf("Vertex %d: expected %v, got %v", i, expected[i], got)
		}
	}
}
