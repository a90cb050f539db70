package core

// Mat4 is a 4x4 row-major matrix acting on column vectors (M * v)
type Mat4 [4][4]float64

// LookToLH builds a left-handed view matrix for a camera at eye facing dir.
// After the transform the camera sits at the origin, dir maps to +Z and up
// maps into the +Y half of the YZ plane.
// dir must not be zero or parallel to up: the right axis is then the zero
// vector and normalizing it fills the first two rows with NaN.
func LookToLH(eye, dir, up Vec3) Mat4 {
	forward := dir.Normalize()
	right := up.Cross(forward).Normalize()
	trueUp := forward.Cross(right)

	return Mat4{
		{right.X, right.Y, right.Z, -right.Dot(eye)},
		{trueUp.X, trueUp.Y, trueUp.Z, -trueUp.Dot(eye)},
		{forward.X, forward.Y, forward.Z, -forward.Dot(eye)},
		{0, 0, 0, 1},
	}
}

// TransformPoint applies the matrix to p as a homogeneous point (w = 1) and
// drops the resulting w, matching an affine view transform
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}
