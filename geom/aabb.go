package geom

import "math"

// AABB is an axis-aligned bounding box stored as min/max corners.
type AABB struct {
	Min, Max Vec3
}

// EmptyAABB returns a degenerate box (Min > Max on every axis) suitable as
// the identity element for Extend/Union.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

func AABBFromPoint(p Vec3) AABB {
	return AABB{Min: p, Max: p}
}

func AABBFromPoints(a, b, c Vec3) AABB {
	box := AABBFromPoint(a)
	box.Extend(b)
	box.Extend(c)
	return box
}

func (b *AABB) Extend(p Vec3) {
	b.Min = MinVec3(b.Min, p)
	b.Max = MaxVec3(b.Max, p)
}

func (b *AABB) ExtendBox(o AABB) {
	b.Min = MinVec3(b.Min, o.Min)
	b.Max = MaxVec3(b.Max, o.Max)
}

func UnionAABB(a, b AABB) AABB {
	r := a
	r.ExtendBox(b)
	return r
}

// Empty reports whether the box contains no volume. The original C++
// `AABB::empty()` dropped its `return` keyword and always evaluated to
// false; this implementation returns the comparison it was meant to.
func (b AABB) Empty() bool {
	return b.Max.X < b.Min.X
}

func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Width() float32  { return b.Max.X - b.Min.X }
func (b AABB) Height() float32 { return b.Max.Y - b.Min.Y }
func (b AABB) Depth() float32  { return b.Max.Z - b.Min.Z }

func (b AABB) SurfaceArea() float32 {
	w, h, d := b.Width(), b.Height(), b.Depth()
	if w < 0 || h < 0 || d < 0 {
		return 0
	}
	return 2 * (w*h + h*d + d*w)
}

func (b AABB) Volume() float32 {
	return b.Width() * b.Height() * b.Depth()
}

// MaxAxis returns the index (0=X, 1=Y, 2=Z) of the box's longest axis. The
// original C++ `getMaxAxis` always returned 0 regardless of extents; this
// is the true argmax of (width, height, depth) the builder needs for its
// split heuristic.
func (b AABB) MaxAxis() int {
	w, h, d := b.Width(), b.Height(), b.Depth()
	axis := 0
	longest := w
	if h > longest {
		axis = 1
		longest = h
	}
	if d > longest {
		axis = 2
	}
	return axis
}

func (b AABB) Inside(p Vec3) bool {
	if p.X < b.Min.X || p.X > b.Max.X {
		return false
	}
	if p.Y < b.Min.Y || p.Y > b.Max.Y {
		return false
	}
	if p.Z < b.Min.Z || p.Z > b.Max.Z {
		return false
	}
	return true
}

func (b AABB) Overlap(o AABB) bool {
	if b.Min.X > o.Max.X || b.Min.Y > o.Max.Y || b.Min.Z > o.Max.Z {
		return false
	}
	if b.Max.X < o.Min.X || b.Max.Y < o.Min.Y || b.Max.Z < o.Min.Z {
		return false
	}
	return true
}

// Intersect tests the slab method against the ray's current [TMin, TMax]
// range, accounting for the precomputed reciprocal direction on Ray.
func (b AABB) Intersect(r Ray) bool {
	tmin := (b.Min.X - r.Org.X) * r.InvDir.X
	tmax := (b.Max.X - r.Org.X) * r.InvDir.X
	if tmin > tmax {
		tmin, tmax = tmax, tmin
	}

	tymin := (b.Min.Y - r.Org.Y) * r.InvDir.Y
	tymax := (b.Max.Y - r.Org.Y) * r.InvDir.Y
	if tymin > tymax {
		tymin, tymax = tymax, tymin
	}

	if tmin > tymax || tymin > tmax {
		return false
	}
	if tymin > tmin {
		tmin = tymin
	}
	if tymax < tmax {
		tmax = tymax
	}

	tzmin := (b.Min.Z - r.Org.Z) * r.InvDir.Z
	tzmax := (b.Max.Z - r.Org.Z) * r.InvDir.Z
	if tzmin > tzmax {
		tzmin, tzmax = tzmax, tzmin
	}

	if tmin > tzmax || tzmin > tmax {
		return false
	}
	if tzmin > tmin {
		tmin = tzmin
	}
	if tzmax < tmax {
		tmax = tzmax
	}

	return tmin < r.TMax && tmax > r.TMin
}
