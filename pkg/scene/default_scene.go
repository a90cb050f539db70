package scene

import (
	"github.com/pkg/errors"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
	"github.com/df07/go-diffuse-pathtracer/pkg/geometry"
)

// NewDefaultScene creates the reference scene: a yellow sphere resting above
// a red ground plane, seen from just above the ground
func NewDefaultScene() *Scene {
	camera := NewCamera(core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1))
	s := NewScene("default", camera)

	yellow := core.NewMaterial(core.NewColor(1, 1, 0), 0.5)
	red := core.NewMaterial(core.NewColor(1, 0, 0), 0)

	s.Add(
		geometry.NewSphere(core.NewVec3(0, 1, 10), 1, yellow),
		geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), red),
	)

	return s
}

// NewTriangleScene is the default scene with a purple triangle close to the camera
func NewTriangleScene() *Scene {
	s := NewDefaultScene()
	s.Name = "triangle"

	purple := core.NewMaterial(core.NewColor(0.5, 0, 0.5), 0.2)
	s.Add(geometry.NewTriangle(
		core.NewVec3(0, 1, 1.5),
		core.NewVec3(0.5, 0, 1.5),
		core.NewVec3(-0.5, 0, 1.5),
		purple,
	))

	return s
}

// NewSingleSphereScene creates a scene with one unit sphere straight ahead
// of the camera and nothing else
func NewSingleSphereScene() *Scene {
	camera := NewCamera(core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1))
	s := NewScene("single-sphere", camera)

	white := core.NewMaterial(core.White, 0)
	s.Add(geometry.NewSphere(core.NewVec3(0, 1, 10), 1, white))

	return s
}

// builtinScenes maps scene IDs to their constructors, in listing order
var builtinScenes = []struct {
	info SceneInfo
	new  func() *Scene
}{
	{
		info: SceneInfo{
			ID:          "default",
			Name:        "Default Scene",
			Description: "Yellow sphere above a red ground plane",
		},
		new: NewDefaultScene,
	},
	{
		info: SceneInfo{
			ID:          "triangle",
			Name:        "Triangle",
			Description: "Default scene with a purple triangle in front of the camera",
		},
		new: NewTriangleScene,
	},
	{
		info: SceneInfo{
			ID:          "single-sphere",
			Name:        "Single Sphere",
			Description: "One unit sphere against the sky",
		},
		new: NewSingleSphereScene,
	},
}

// NewBuiltinScene creates the built-in scene with the given ID
func NewBuiltinScene(id string) (*Scene, error) {
	for _, b := range builtinScenes {
		if b.info.ID == id {
			return b.new(), nil
		}
	}
	return nil, errors.Errorf("unknown built-in scene %q", id)
}
