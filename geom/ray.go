package geom

import "math"

// Epsilon is the default ray origin offset used to avoid self-intersection
// (shadow acne) on the surface a ray was spawned from.
const Epsilon = 1e-4

// Ray is a parametric ray org + t*dir, valid over [TMin, TMax].
type Ray struct {
	Org    Vec3
	Dir    Vec3
	InvDir Vec3
	TMin   float32
	TMax   float32
}

func NewRay(org, dir Vec3) Ray {
	r := Ray{Org: org, Dir: dir, TMin: Epsilon, TMax: float32(math.Inf(1))}
	r.update()
	return r
}

func NewRayBounded(org, dir Vec3, tMin, tMax float32) Ray {
	r := Ray{Org: org, Dir: dir, TMin: tMin, TMax: tMax}
	r.update()
	return r
}

func (r *Ray) update() {
	r.InvDir = Vec3{1 / r.Dir.X, 1 / r.Dir.Y, 1 / r.Dir.Z}
}

func (r Ray) At(t float32) Vec3 {
	return r.Org.Add(r.Dir.Mul(t))
}

// Reverse returns a ray pointing the opposite direction from the same
// origin, preserving the t-range. Used by light-subpath construction in
// the bidirectional integrator.
func (r Ray) Reverse() Ray {
	rr := Ray{Org: r.Org, Dir: r.Dir.Negate(), TMin: r.TMin, TMax: r.TMax}
	rr.update()
	return rr
}
