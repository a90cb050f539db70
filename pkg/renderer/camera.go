package renderer

import (
	"github.com/df07/go-diffuse-pathtracer/pkg/core"
)

// Camera maps pixels to view-space rays. The camera sits at the origin
// looking down +Z at an image plane one unit away that spans one unit
// horizontally; the vertical extent follows the aspect ratio.
type Camera struct {
	width, height int
	pixelSize     float64 // Side of one pixel on the image plane
	offsetHeight  float64 // Image plane Y of the top row
}

// NewCamera creates a camera for an image of the given size
func NewCamera(width, height int) *Camera {
	pixelSize := 1.0 / float64(width)
	return &Camera{
		width:        width,
		height:       height,
		pixelSize:    pixelSize,
		offsetHeight: pixelSize * (float64(height) / 2.0),
	}
}

// RayDirection returns the direction through pixel (x, y) offset by the
// jitter (jx, jy), both in pixel units. Rows run top to bottom.
func (c *Camera) RayDirection(x, y int, jx, jy float64) core.Vec3 {
	return core.NewVec3(
		-0.5+c.pixelSize*float64(x)+jx*c.pixelSize,
		c.offsetHeight-c.pixelSize*float64(y)+jy*c.pixelSize,
		1.0,
	)
}

// GetRay generates a jittered ray through pixel (x, y). The horizontal
// jitter is drawn before the vertical one.
func (c *Camera) GetRay(x, y int, sampler core.Sampler) core.Ray {
	jx := sampler.Get1D()
	jy := sampler.Get1D()
	return core.NewRay(core.NewVec3(0, 0, 0), c.RayDirection(x, y, jx, jy))
}
