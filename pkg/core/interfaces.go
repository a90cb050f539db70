package core

const (
	// Epsilon is the tolerance under which determinants, denominators and
	// distances are treated as zero by the primitives
	Epsilon = 1e-4

	// MinHitDistance rejects hits this close to the ray origin so a bounced
	// ray does not report the surface it just left
	MinHitDistance = 0.001
)

// Hit is the result of a successful ray/primitive test. Normal is not
// guaranteed to be unit length.
type Hit struct {
	T        float64  // Distance along the normalized ray direction
	Normal   Vec3     // Surface normal at the hit point
	Material Material // Material of the surface that was hit
}

// Primitive is a renderable piece of scene geometry
type Primitive interface {
	// Intersect tests the ray against the primitive and reports the nearest hit
	Intersect(ray Ray) (Hit, bool)
	// ToViewSpace moves the primitive's anchor points into camera space.
	// It is called exactly once, before any ray is cast.
	ToViewSpace(view Mat4)
}
