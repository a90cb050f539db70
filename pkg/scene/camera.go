package scene

import (
	"github.com/pkg/errors"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
)

// worldUp is the up vector every camera is oriented against
var worldUp = core.NewVec3(0, 1, 0)

// Camera is a pinhole camera placed in world space
type Camera struct {
	Position  core.Vec3 // Eye position
	Direction core.Vec3 // Facing direction, need not be unit length
}

// NewCamera creates a camera at position facing direction
func NewCamera(position, direction core.Vec3) Camera {
	return Camera{Position: position, Direction: direction}
}

// Validate reports whether the camera can be oriented. A zero direction or
// one parallel to world up leaves the view basis undefined.
func (c Camera) Validate() error {
	if c.Direction.LengthSquared() == 0 {
		return errors.New("camera direction must not be zero")
	}
	if c.Direction.Cross(worldUp).LengthSquared() == 0 {
		return errors.Errorf("camera direction %v is parallel to world up %v; tilt it off the vertical", c.Direction, worldUp)
	}
	return nil
}

// ViewMatrix returns the left-handed look-to matrix that moves the camera to
// the origin with Direction along +Z and world +Y up
func (c Camera) ViewMatrix() core.Mat4 {
	return core.LookToLH(c.Position, c.Direction, worldUp)
}
