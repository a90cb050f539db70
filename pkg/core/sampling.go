package core

import (
	"pgregory.net/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing
type Sampler interface {
	Get1D() float64
	Get3D() Vec3
}

// RandomSampler wraps a seeded pseudo-random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a seed
func NewRandomSampler(seed uint64) *RandomSampler {
	return &RandomSampler{random: rand.New(seed)}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get3D returns three random float64 values in [0, 1), drawn X then Y then Z
func (r *RandomSampler) Get3D() Vec3 {
	x := r.random.Float64()
	y := r.random.Float64()
	z := r.random.Float64()
	return NewVec3(x, y, z)
}

// RandomVec returns a vector with each component uniform in [minVal, maxVal)
func RandomVec(minVal, maxVal float64, sampler Sampler) Vec3 {
	diff := maxVal - minVal
	u := sampler.Get3D()
	return Vec3{
		X: u.X*diff + minVal,
		Y: u.Y*diff + minVal,
		Z: u.Z*diff + minVal,
	}
}

// RandomVecInHemisphere returns a unit direction by rejection sampling the
// unit ball. The normal is accepted but not consulted, so the result is
// spread over the whole sphere rather than the hemisphere around normal.
func RandomVecInHemisphere(normal Vec3, sampler Sampler) Vec3 {
	for {
		v := RandomVec(-1, 1, sampler)
		if v.LengthSquared() >= 1.0 {
			continue
		}
		return v.Normalize()
	}
}
