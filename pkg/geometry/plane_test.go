package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
)

func TestPlane_Intersect_BasicIntersection(t *testing.T) {
	// Create a horizontal plane at y=0
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), testMaterial)

	// Ray shooting down from above
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	hit, isHit := plane.Intersect(ray)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}

	// Distance is biased toward the origin by epsilon
	expectedT := 1.0 - core.Epsilon
	if math.Abs(hit.T-expectedT) > 1e-12 {
		t.Errorf("Expected t=%f, got t=%f", expectedT, hit.T)
	}
	if hit.Normal != core.NewVec3(0, 1, 0) {
		t.Errorf("Expected normal (0,1,0), got %v", hit.Normal)
	}
}

func TestPlane_Intersect_ParallelRay(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), testMaterial)

	tests := []struct {
		name      string
		direction core.Vec3
	}{
		{"exactly parallel", core.NewVec3(1, 0, 0)},
		{"within epsilon", core.NewVec3(1, core.Epsilon/2, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(core.NewVec3(0, 1, 0), tt.direction)
			if hit, isHit := plane.Intersect(ray); isHit {
				t.Errorf("Expected miss for parallel ray, but got hit at t=%f", hit.T)
			}
		})
	}
}

func TestPlane_Intersect_BehindRay(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), testMaterial)

	// Ray shooting up from above (intersection behind ray origin)
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0))

	if hit, isHit := plane.Intersect(ray); isHit {
		t.Errorf("Expected miss for intersection behind ray, but got hit at t=%f", hit.T)
	}
}

func TestPlane_Intersect_FromBelow(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), testMaterial)
	ray := core.NewRay(core.NewVec3(0, -2, 0), core.NewVec3(0, 1, 0))

	hit, isHit := plane.Intersect(ray)
	if !isHit {
		t.Fatal("Expected hit from below, but got miss")
	}
	if math.Abs(hit.T-(2.0-core.Epsilon)) > 1e-12 {
		t.Errorf("Expected t=%f, got t=%f", 2.0-core.Epsilon, hit.T)
	}
}

func TestPlane_ToViewSpaceKeepsNormal(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), testMaterial)

	// A camera turned to face +X rotates points but the normal stays in world orientation
	view := core.LookToLH(core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0))
	plane.ToViewSpace(view)

	if plane.Point.Subtract(core.NewVec3(0, -1, 0)).Length() > 1e-9 {
		t.Errorf("Expected point (0,-1,0), got %v", plane.Point)
	}
	if plane.Normal != core.NewVec3(0, 1, 0) {
		t.Errorf("Expected normal to stay (0,1,0), got %v", plane.Normal)
	}
}
