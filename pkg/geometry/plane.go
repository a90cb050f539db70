package geometry

import (
	"math"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point    core.Vec3     // A point on the plane
	Normal   core.Vec3     // Normal vector, used as given
	Material core.Material // Material of the plane
}

// NewPlane creates a new plane
func NewPlane(point, normal core.Vec3, material core.Material) *Plane {
	return &Plane{
		Point:    point,
		Normal:   normal,
		Material: material,
	}
}

// Intersect tests the ray against the plane. The returned distance is pulled
// back by core.Epsilon so the next bounce starts just above the surface.
func (p *Plane) Intersect(ray core.Ray) (core.Hit, bool) {
	denominator := p.Normal.Dot(ray.Direction)

	// Ray is parallel to the plane
	if math.Abs(denominator) <= core.Epsilon {
		return core.Hit{}, false
	}

	t := p.Point.Subtract(ray.Origin).Dot(p.Normal) / denominator
	if t < 0 {
		return core.Hit{}, false
	}

	return core.Hit{
		T:        t - core.Epsilon,
		Normal:   p.Normal,
		Material: p.Material,
	}, true
}

// ToViewSpace transforms the anchor point by the view matrix.
// The normal is left in world orientation.
func (p *Plane) ToViewSpace(view core.Mat4) {
	p.Point = view.TransformPoint(p.Point)
}
