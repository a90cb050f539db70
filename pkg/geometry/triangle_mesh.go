package geometry

import (
	"math"

	"github.com/pkg/errors"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
)

// TriangleMeshOptions contains optional parameters for triangle mesh creation
type TriangleMeshOptions struct {
	Scale    float64    // Uniform scale applied before rotation (0 means 1)
	Rotation *core.Vec3 // Optional rotation in radians around X, then Y, then Z
	Offset   core.Vec3  // Translation applied last
}

// NewTriangleMesh expands indexed geometry into individual triangles.
// vertices: array of 3D points
// faces: array of triangle indices (each group of 3 indices forms a triangle)
// The scene holds the triangles directly; there is no acceleration structure.
func NewTriangleMesh(vertices []core.Vec3, faces []int, material core.Material, options *TriangleMeshOptions) ([]*Triangle, error) {
	if len(faces)%3 != 0 {
		return nil, errors.Errorf("face indices must be a multiple of 3, got %d", len(faces))
	}

	workingVertices := vertices
	if options != nil {
		workingVertices = make([]core.Vec3, len(vertices))
		scale := options.Scale
		if scale == 0 {
			scale = 1
		}
		for i, vertex := range vertices {
			vertex = vertex.Multiply(scale)
			if options.Rotation != nil {
				vertex = rotateVertex(vertex, *options.Rotation)
			}
			workingVertices[i] = vertex.Add(options.Offset)
		}
	}

	numTriangles := len(faces) / 3
	triangles := make([]*Triangle, numTriangles)
	for i := 0; i < numTriangles; i++ {
		i0, i1, i2 := faces[i*3], faces[i*3+1], faces[i*3+2]

		for _, idx := range []int{i0, i1, i2} {
			if idx < 0 || idx >= len(workingVertices) {
				return nil, errors.Errorf("face %d references vertex %d, mesh has %d vertices", i, idx, len(workingVertices))
			}
		}

		triangles[i] = NewTriangle(workingVertices[i0], workingVertices[i1], workingVertices[i2], material)
	}

	return triangles, nil
}

// rotateVertex applies rotation around X, Y, Z axes (in that order)
func rotateVertex(vertex, rotation core.Vec3) core.Vec3 {
	if rotation.X != 0 {
		cos := math.Cos(rotation.X)
		sin := math.Sin(rotation.X)
		y := vertex.Y*cos - vertex.Z*sin
		z := vertex.Y*sin + vertex.Z*cos
		vertex = core.NewVec3(vertex.X, y, z)
	}

	if rotation.Y != 0 {
		cos := math.Cos(rotation.Y)
		sin := math.Sin(rotation.Y)
		x := vertex.X*cos + vertex.Z*sin
		z := -vertex.X*sin + vertex.Z*cos
		vertex = core.NewVec3(x, vertex.Y, z)
	}

	if rotation.Z != 0 {
		cos := math.Cos(rotation.Z)
		sin := math.Sin(rotation.Z)
		x := vertex.X*cos - vertex.Y*sin
		y := vertex.X*sin + vertex.Y*cos
		vertex = core.NewVec3(x, y, vertex.Z)
	}

	return vertex
}
