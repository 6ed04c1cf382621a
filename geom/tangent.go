package geom

// Frame is an orthonormal tangent/bitangent/normal basis used to rotate
// directions between world space and local shading space.
type Frame struct {
	T, B, N Vec3
}

// NewFrame builds an orthonormal frame directly from a known tangent and
// normal, re-deriving the bitangent so the triple stays orthonormal even
// if the supplied tangent was only approximately perpendicular to n.
func NewFrame(tangent, normal Vec3) Frame {
	n := normal.Normalize()
	t := tangent.Sub(n.Mul(n.Dot(tangent))).Normalize()
	b := n.Cross(t)
	return Frame{T: t, B: b, N: n}
}

// FrameFromNormal builds a singularity-free orthonormal basis from a unit
// normal alone, using the sign-based branchless construction ("Building an
// Orthonormal Basis, Revisited", Duff et al.) rather than the
// axis-comparison branch the original renderer used — it avoids the
// precision loss that construction suffers as n approaches the coordinate
// axis it branches on.
func FrameFromNormal(normal Vec3) Frame {
	n := normal.Normalize()
	sign := float32(-1)
	if n.Z >= 0 {
		sign = 1
	}
	a := -1 / (sign + n.Z)
	c := n.X * n.Y * a
	t := Vec3{X: 1 + sign*n.X*n.X*a, Y: sign * c, Z: -sign * n.X}
	b := Vec3{X: c, Y: sign + n.Y*n.Y*a, Z: -n.Y}
	return Frame{T: t, B: b, N: n}
}

func (f Frame) ToLocal(v Vec3) Vec3 {
	return Vec3{X: f.T.Dot(v), Y: f.B.Dot(v), Z: f.N.Dot(v)}
}

func (f Frame) ToWorld(v Vec3) Vec3 {
	return f.T.Mul(v.X).Add(f.B.Mul(v.Y)).Add(f.N.Mul(v.Z))
}

// CosTheta returns the cosine of the angle between a local-space direction
// and the frame's normal axis — just its Z component, but named for
// readability at call sites in the BSDF and integrators.
func CosTheta(localDir Vec3) float32 { return localDir.Z }
