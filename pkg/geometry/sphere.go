package geometry

import (
	"math"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material core.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, material core.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: material,
	}
}

// Intersect tests the ray against the sphere using the closest-approach
// distance. Only the near intersection is reported, and spheres whose center
// lies behind the ray origin are missed. The returned normal runs from the
// center to the hit point and is not normalized.
func (s *Sphere) Intersect(ray core.Ray) (core.Hit, bool) {
	ray = ray.Normalized()

	// Vector from ray origin to sphere center
	l := s.Center.Subtract(ray.Origin)
	tc := l.Dot(ray.Direction)

	if tc < 0 {
		return core.Hit{}, false
	}

	// Squared distance from the center to the ray
	d2 := math.Abs(tc*tc - l.LengthSquared())

	r2 := s.Radius * s.Radius
	if d2 > r2 {
		return core.Hit{}, false
	}

	t := tc - math.Sqrt(r2-d2)
	point := ray.At(t)

	return core.Hit{
		T:        t,
		Normal:   point.Subtract(s.Center),
		Material: s.Material,
	}, true
}

// ToViewSpace transforms the center by the view matrix
func (s *Sphere) ToViewSpace(view core.Mat4) {
	s.Center = view.TransformPoint(s.Center)
}
