package scene

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
	"github.com/df07/go-diffuse-pathtracer/pkg/geometry"
	"github.com/df07/go-diffuse-pathtracer/pkg/loaders"
)

// FileDescription is the on-disk YAML form of a scene
type FileDescription struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Group       string                 `yaml:"group"`
	Camera      CameraDescription      `yaml:"camera"`
	Sky         *[3]float64            `yaml:"sky"`
	Sun         *[3]float64            `yaml:"sun"`
	Primitives  []PrimitiveDescription `yaml:"primitives"`
}

// CameraDescription places the camera in a scene file
type CameraDescription struct {
	Position  [3]float64 `yaml:"position"`
	Direction [3]float64 `yaml:"direction"`
}

// MaterialDescription describes a surface in a scene file
type MaterialDescription struct {
	Color     [3]float64 `yaml:"color"`
	Metalness float64    `yaml:"metalness"`
}

// PrimitiveDescription is one entry of a scene file's primitive list. Type
// selects which of the remaining fields are read.
type PrimitiveDescription struct {
	Type     string              `yaml:"type"` // sphere, plane, triangle or mesh
	Material MaterialDescription `yaml:"material"`

	// sphere
	Center [3]float64 `yaml:"center"`
	Radius float64    `yaml:"radius"`

	// plane
	Point  [3]float64 `yaml:"point"`
	Normal [3]float64 `yaml:"normal"`

	// triangle
	Vertices [][3]float64 `yaml:"vertices"`

	// mesh
	File     string      `yaml:"file"`
	Scale    float64     `yaml:"scale"`
	Rotation *[3]float64 `yaml:"rotation"`
	Offset   [3]float64  `yaml:"offset"`
}

// LoadFile reads a YAML scene file. Mesh paths are resolved relative to the
// file's directory.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scene file")
	}

	s, err := Load(bytes.NewReader(data), filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load scene %s", path)
	}
	if s.Name == "" {
		s.Name = fileStem(path)
	}
	return s, nil
}

// Load decodes a YAML scene description. baseDir is used to resolve mesh files.
func Load(r io.Reader, baseDir string) (*Scene, error) {
	var desc FileDescription
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&desc); err != nil {
		return nil, errors.Wrap(err, "failed to decode scene")
	}

	return desc.Build(baseDir)
}

// Build creates the scene the description names
func (d FileDescription) Build(baseDir string) (*Scene, error) {
	camera := NewCamera(vec(d.Camera.Position), vec(d.Camera.Direction))
	if err := camera.Validate(); err != nil {
		return nil, err
	}

	s := NewScene(d.Name, camera)
	if d.Sky != nil {
		s.Sky = core.NewColor(d.Sky[0], d.Sky[1], d.Sky[2])
	}
	if d.Sun != nil {
		s.SunDirection = vec(*d.Sun)
	}

	for i, p := range d.Primitives {
		primitives, err := p.build(baseDir)
		if err != nil {
			return nil, errors.Wrapf(err, "primitive %d (%s)", i, p.Type)
		}
		s.Add(primitives...)
	}

	return s, nil
}

func (p PrimitiveDescription) build(baseDir string) ([]core.Primitive, error) {
	material := core.NewMaterial(core.NewColor(p.Material.Color[0], p.Material.Color[1], p.Material.Color[2]), p.Material.Metalness)
	if p.Material.Metalness < 0 || p.Material.Metalness > 1 {
		return nil, errors.Errorf("metalness %g outside [0, 1]", p.Material.Metalness)
	}

	switch p.Type {
	case "sphere":
		if p.Radius <= 0 {
			return nil, errors.Errorf("sphere radius must be positive, got %g", p.Radius)
		}
		return []core.Primitive{geometry.NewSphere(vec(p.Center), p.Radius, material)}, nil

	case "plane":
		return []core.Primitive{geometry.NewPlane(vec(p.Point), vec(p.Normal), material)}, nil

	case "triangle":
		if len(p.Vertices) != 3 {
			return nil, errors.Errorf("triangle needs 3 vertices, got %d", len(p.Vertices))
		}
		return []core.Primitive{geometry.NewTriangle(vec(p.Vertices[0]), vec(p.Vertices[1]), vec(p.Vertices[2]), material)}, nil

	case "mesh":
		if p.File == "" {
			return nil, errors.New("mesh needs a file")
		}
		path := p.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		ply, err := loaders.LoadPLYFile(path)
		if err != nil {
			return nil, err
		}

		options := &geometry.TriangleMeshOptions{Scale: p.Scale, Offset: vec(p.Offset)}
		if p.Rotation != nil {
			rotation := vec(*p.Rotation)
			options.Rotation = &rotation
		}
		triangles, err := geometry.NewTriangleMesh(ply.Vertices, ply.Faces, material, options)
		if err != nil {
			return nil, err
		}

		primitives := make([]core.Primitive, len(triangles))
		for i, tri := range triangles {
			primitives[i] = tri
		}
		return primitives, nil

	default:
		return nil, errors.Errorf("unknown primitive type %q", p.Type)
	}
}

func vec(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
