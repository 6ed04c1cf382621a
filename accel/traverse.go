package accel

import "pathtracer/geom"

// PrimitiveHit is a candidate intersection the caller's triangle test
// returns: did it hit, and at what ray parameter.
type PrimitiveHit struct {
	Hit bool
	T   float32
}

// IntersectFn tests ray against the primitive identified by its original
// (pre-sort) index, given the current best t_max via the ray's TMax.
type IntersectFn func(primIndex int, ray geom.Ray) PrimitiveHit

// Intersect walks the BVH with an explicit stack, shrinking ray.TMax as
// closer hits are found, and returns the index of the closest-hit
// primitive (or -1 on a miss) plus the committed ray parameter.
func (b *BVH) Intersect(ray geom.Ray, test IntersectFn) (primIndex int, t float32, hit bool) {
	primIndex = -1
	stack := make([]uint32, 0, 64)
	stack = append(stack, 0)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &b.Nodes[id]
		if node.IsLeaf() {
			for i := uint32(0); i < node.PrimCount; i++ {
				idx := int(b.PrimIDs[node.FirstID+i])
				res := test(idx, ray)
				if res.Hit {
					ray.TMax = res.T
					primIndex = idx
					t = res.T
					hit = true
				}
			}
			continue
		}
		if node.AABB.Intersect(ray) {
			left := node.FirstID
			right := node.FirstID + 1
			stack = append(stack, left, right)
		}
	}
	return
}

// IntersectAny is the occlusion-query traversal: it returns true as soon
// as any primitive confirms a hit within the ray's [TMin, TMax].
func (b *BVH) IntersectAny(ray geom.Ray, test IntersectFn) bool {
	stack := make([]uint32, 0, 64)
	stack = append(stack, 0)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &b.Nodes[id]
		if node.IsLeaf() {
			for i := uint32(0); i < node.PrimCount; i++ {
				idx := int(b.PrimIDs[node.FirstID+i])
				if test(idx, ray).Hit {
					return true
				}
			}
			continue
		}
		if node.AABB.Intersect(ray) {
			// Left child was chosen by the builder to have the larger
			// area (sibling-swap-by-area), so push it last to visit it
			// first — any-hit queries benefit from finding an occluder
			// early.
			right := node.FirstID + 1
			left := node.FirstID
			stack = append(stack, right, left)
		}
	}
	return false
}
