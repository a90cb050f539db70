package core

// Material describes a surface. Shading treats every surface as the same flat
// diffuse reflector, so neither Color nor Metalness changes the rendered result.
type Material struct {
	Color     Color
	Metalness float64 // in [0, 1]
}

// NewMaterial creates a new material
func NewMaterial(color Color, metalness float64) Material {
	return Material{Color: color, Metalness: metalness}
}
