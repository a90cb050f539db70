package scene

import (
	"math"

	"github.com/pkg/errors"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
)

// ErrAlreadyPrepared is returned when Preprocess is called on a scene that
// has already been moved into view space
var ErrAlreadyPrepared = errors.New("scene already preprocessed")

var (
	// DefaultSky is the sky color used when a scene does not set one
	DefaultSky = core.NewColor(0.5, 0.7, 1.0)
	// DefaultSunDirection is the sun direction used when a scene does not set one
	DefaultSunDirection = core.NewVec3(0.1, 1.0, 0.3)
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name         string
	Camera       Camera
	Primitives   []core.Primitive // Insertion order, no semantic meaning
	Sky          core.Color       // Sky color at the top of the gradient
	SunDirection core.Vec3        // Stored for scene descriptions, not used by shading

	view     core.Mat4
	prepared bool
}

// NewScene creates an empty scene with the default sky and sun
func NewScene(name string, camera Camera) *Scene {
	return &Scene{
		Name:         name,
		Camera:       camera,
		Primitives:   make([]core.Primitive, 0),
		Sky:          DefaultSky,
		SunDirection: DefaultSunDirection,
	}
}

// Add appends primitives to the scene. Primitives added after Preprocess are
// moved into view space as they are added.
func (s *Scene) Add(primitives ...core.Primitive) {
	for _, p := range primitives {
		if s.prepared {
			p.ToViewSpace(s.view)
		}
		s.Primitives = append(s.Primitives, p)
	}
}

// Preprocess moves every primitive into the camera's view space. After it
// returns, rays are cast from the origin looking down +Z and the scene must be
// treated as read-only.
func (s *Scene) Preprocess() error {
	if s.prepared {
		return ErrAlreadyPrepared
	}
	if err := s.Camera.Validate(); err != nil {
		return err
	}

	s.view = s.Camera.ViewMatrix()
	for _, p := range s.Primitives {
		p.ToViewSpace(s.view)
	}
	s.prepared = true

	return nil
}

// Prepared reports whether Preprocess has run
func (s *Scene) Prepared() bool {
	return s.prepared
}

// PrimitiveCount returns the number of primitives in the scene
func (s *Scene) PrimitiveCount() int {
	return len(s.Primitives)
}

// FindClosest tests the ray against every primitive and returns the nearest
// hit. Hits closer than core.MinHitDistance are discarded so a bounced ray
// does not report the surface it starts on.
func (s *Scene) FindClosest(ray core.Ray) (core.Hit, bool) {
	var closest core.Hit
	found := false

	for _, p := range s.Primitives {
		hit, ok := p.Intersect(ray)
		if !ok || hit.T < core.MinHitDistance {
			continue
		}
		if !found || hitBefore(hit.T, closest.T) {
			closest = hit
			found = true
		}
	}

	return closest, found
}

// hitBefore orders distances ascending with NaN after every number.
// Ties keep the earlier primitive. The NaN sign is ignored on purpose: an
// IEEE total order would put negative NaN (what 0/0 yields on amd64) ahead
// of every number, letting a degenerate hit shadow real ones.
func hitBefore(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}
