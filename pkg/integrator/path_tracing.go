package integrator

import (
	"github.com/df07/go-diffuse-pathtracer/pkg/core"
	"github.com/df07/go-diffuse-pathtracer/pkg/scene"
)

// diffuseAttenuation is the fraction of radiance kept at every bounce
const diffuseAttenuation = 0.5

// PathTracingIntegrator traces diffuse bounce paths against a sky gradient.
// Every surface reflects half of the incoming radiance regardless of its
// material, and rays that escape the scene pick up the sky.
type PathTracingIntegrator struct {
	MaxDepth int        // Number of segments after which a path returns black
	Sky      core.Color // Sky color at the top of the gradient
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(maxDepth int, sky core.Color) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		MaxDepth: maxDepth,
		Sky:      sky,
	}
}

// RayColor computes the color for a camera ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Color {
	return pt.CastRay(ray, scene, sampler, 0)
}

// CastRay follows a path starting at the given depth. A path that reaches
// MaxDepth returns black, a path that leaves the scene returns the sky
// gradient, and each surface hit halves what the rest of the path returns.
func (pt *PathTracingIntegrator) CastRay(ray core.Ray, scene *scene.Scene, sampler core.Sampler, depth int) core.Color {
	attenuation := 1.0

	for ; depth < pt.MaxDepth; depth++ {
		hit, isHit := scene.FindClosest(ray)
		if !isHit {
			return pt.SkyGradient(ray).Multiply(attenuation)
		}

		// Hit point along the unnormalized direction
		point := ray.At(hit.T)
		target := point.Add(hit.Normal).Add(core.RandomVecInHemisphere(hit.Normal, sampler))
		ray = core.NewRay(point, target.Subtract(point))

		attenuation *= diffuseAttenuation
	}

	return core.Black
}

// SkyGradient blends from white looking straight down to Sky looking straight up
func (pt *PathTracingIntegrator) SkyGradient(ray core.Ray) core.Color {
	unitDirection := ray.Direction.Normalize()
	t := 0.5 * (unitDirection.Y + 1.0)
	return core.White.Lerp(pt.Sky, t)
}
