package geometry

import (
	"github.com/df07/go-diffuse-pathtracer/pkg/core"
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	A, B, C  core.Vec3     // The three vertices
	Material core.Material // Material of the triangle
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(a, b, c core.Vec3, material core.Material) *Triangle {
	return &Triangle{
		A:        a,
		B:        b,
		C:        c,
		Material: material,
	}
}

// Intersect tests the ray against the triangle using the Möller-Trumbore algorithm.
// The returned normal is edge1 × edge2 and is not normalized.
func (t *Triangle) Intersect(ray core.Ray) (core.Hit, bool) {
	ray = ray.Normalized()

	// Calculate two edge vectors
	edge1 := t.B.Subtract(t.A)
	edge2 := t.C.Subtract(t.A)

	// Calculate determinant
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	if a > -core.Epsilon && a < core.Epsilon {
		return core.Hit{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.A)
	u := f * s.Dot(h)

	// Check if intersection is outside triangle
	if u < 0.0 || u > 1.0 {
		return core.Hit{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)

	if v < 0.0 || u+v > 1.0 {
		return core.Hit{}, false
	}

	tParam := f * edge2.Dot(q)

	// Reject hits at or behind the origin
	if tParam <= core.Epsilon {
		return core.Hit{}, false
	}

	return core.Hit{
		T:        tParam,
		Normal:   edge1.Cross(edge2),
		Material: t.Material,
	}, true
}

// ToViewSpace transforms all three vertices by the view matrix
func (t *Triangle) ToViewSpace(view core.Mat4) {
	t.A = view.TransformPoint(t.A)
	t.B = view.TransformPoint(t.B)
	t.C = view.TransformPoint(t.C)
}
