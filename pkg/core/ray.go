package core

// Ray represents a ray with an origin and direction.
// The direction is not required to be unit length.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay creates a new ray
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at parameter t along the raw (unnormalized) direction
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// Normalized returns a copy of the ray with a unit direction
func (r Ray) Normalized() Ray {
	return Ray{Origin: r.Origin, Direction: r.Direction.Normalize()}
}

// Reposition returns a ray whose origin is moved t units along the normalized direction
func (r Ray) Reposition(t float64) Ray {
	n := r.Normalized()
	n.Origin = n.Origin.Add(n.Direction.Multiply(t))
	return n
}

// Mirror reflects the ray direction about a surface normal: d' = d - 2(d·n)n.
// Both d and n are normalized first; the origin is kept.
func (r Ray) Mirror(normal Vec3) Ray {
	n := r.Normalized()
	unitNormal := normal.Normalize()
	n.Direction = n.Direction.Subtract(unitNormal.Multiply(2.0 * n.Direction.Dot(unitNormal)))
	return n
}
