package core

// Color is a linear RGB triple. Components are not clamped; values above 1
// are legal until the final 8-bit quantization.
type Color struct {
	R, G, B float64
}

var (
	// Black is the zero color, returned when a path runs out of bounces
	Black = Color{0, 0, 0}
	// White is the horizon end of the sky gradient
	White = Color{1, 1, 1}
)

// NewColor creates a new Color
func NewColor(r, g, b float64) Color {
	return Color{R: r, G: g, B: b}
}

// Add returns the component-wise sum of two colors
func (c Color) Add(other Color) Color {
	return Color{c.R + other.R, c.G + other.G, c.B + other.B}
}

// Multiply returns the color scaled uniformly by a scalar
func (c Color) Multiply(scalar float64) Color {
	return Color{c.R * scalar, c.G * scalar, c.B * scalar}
}

// Lerp linearly interpolates from c (t=0) to other (t=1)
func (c Color) Lerp(other Color, t float64) Color {
	return c.Multiply(1.0 - t).Add(other.Multiply(t))
}
