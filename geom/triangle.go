package geom

import "math"

// TriangleIntersectEpsilon bounds how small a Möller–Trumbore determinant
// can be before the triangle is treated as degenerate (grazing/parallel
// ray). The spec fixes this at 1e-5 — intentionally two orders tighter
// than the raycast epsilon this renderer's GUI-editing ancestor used, since
// a path tracer's shadow/BSDF rays graze geometry far more often than an
// editor's pick rays do.
const TriangleIntersectEpsilon = 1e-5

// TriangleHit reports a Möller–Trumbore intersection's barycentric
// coordinates (in the order 1-u-v, u, v) and ray parameter.
type TriangleHit struct {
	U, V, W float32
	T       float32
	Hit     bool
}

// IntersectTriangle implements the Möller–Trumbore ray/triangle test. It
// returns Hit=false for parallel/grazing rays (|det| below
// TriangleIntersectEpsilon) and for parameter values outside
// [r.TMin, r.TMax].
func IntersectTriangle(r Ray, p0, p1, p2 Vec3) TriangleHit {
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)

	pvec := r.Dir.Cross(e2)
	det := e1.Dot(pvec)
	if det > -TriangleIntersectEpsilon && det < TriangleIntersectEpsilon {
		return TriangleHit{}
	}
	invDet := 1 / det

	tvec := r.Org.Sub(p0)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return TriangleHit{}
	}

	qvec := tvec.Cross(e1)
	v := r.Dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return TriangleHit{}
	}

	t := e2.Dot(qvec) * invDet
	if t < r.TMin || t > r.TMax {
		return TriangleHit{}
	}

	return TriangleHit{U: 1 - u - v, V: u, W: v, T: t, Hit: true}
}

// GeometricNormal returns the (unnormalized-input) cross-product normal of
// a triangle's two edges, normalized.
func GeometricNormal(p0, p1, p2 Vec3) Vec3 {
	return p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
}

// BarycentricInterpolate combines three per-vertex quantities using
// barycentric weights (b0, b1, b2) from a TriangleHit (U, V, W).
func BarycentricInterpolate(b0, b1, b2 float32, v0, v1, v2 Vec3) Vec3 {
	return v0.Mul(b0).Add(v1.Mul(b1)).Add(v2.Mul(b2))
}

// BarycentricInterpolate2 is BarycentricInterpolate for Vec2-valued
// attributes (UVs).
func BarycentricInterpolate2(b0, b1, b2 float32, v0, v1, v2 Vec2) Vec2 {
	return v0.Mul(b0).Add(v1.Mul(b1)).Add(v2.Mul(b2))
}

// TriangleArea returns the area of the triangle p0,p1,p2.
func TriangleArea(p0, p1, p2 Vec3) float32 {
	return p1.Sub(p0).Cross(p2.Sub(p0)).Length() * 0.5
}

// SampleTriangleBarycentric maps a uniform 2D sample to uniformly
// distributed barycentric coordinates via the standard sqrt-u trick.
func SampleTriangleBarycentric(u1, u2 float32) (b0, b1, b2 float32) {
	su0 := float32(math.Sqrt(float64(u1)))
	b0 = 1 - su0
	b1 = u2 * su0
	b2 = 1 - b0 - b1
	return
}
