package accel

import (
	"testing"

	"pathtracer/geom"
)

// gridBoxes builds n x n axis-aligned boxes, half a unit on a side and
// spaced one unit apart on the XY plane, and returns them with their
// centers (the builder only needs AABBs/centroids, so no triangles are
// involved).
func gridBoxes(n int) ([]geom.AABB, []geom.Vec3) {
	aabbs := make([]geom.AABB, 0, n*n)
	centers := make([]geom.Vec3, 0, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			min := geom.Vec3{X: float32(x), Y: float32(y), Z: 0}
			max := geom.Vec3{X: float32(x) + 0.5, Y: float32(y) + 0.5, Z: 0.1}
			box := geom.AABB{Min: min, Max: max}
			aabbs = append(aabbs, box)
			centers = append(centers, box.Center())
		}
	}
	return aabbs, centers
}

func TestBuildPartitionsAllPrimitives(t *testing.T) {
	aabbs, centers := gridBoxes(6)
	bvh := Build(aabbs, centers)

	seen := make(map[int]bool)
	var walk func(id uint32)
	walk = func(id uint32) {
		node := bvh.Nodes[id]
		if node.IsLeaf() {
			for i := uint32(0); i < node.PrimCount; i++ {
				seen[int(bvh.PrimIDs[node.FirstID+i])] = true
			}
			return
		}
		walk(node.FirstID)
		walk(node.FirstID + 1)
	}
	walk(0)

	if len(seen) != len(aabbs) {
		t.Fatalf("expected %d primitives covered, got %d", len(aabbs), len(seen))
	}
}

func TestBuildLeafSizeBounds(t *testing.T) {
	aabbs, centers := gridBoxes(10)
	bvh := Build(aabbs, centers)

	for _, node := range bvh.Nodes {
		if node.IsLeaf() && node.PrimCount > MaxLeafSize {
			t.Errorf("leaf exceeds MaxLeafSize: %d primitives", node.PrimCount)
		}
	}
}

func TestIntersectFindsClosestBox(t *testing.T) {
	aabbs, centers := gridBoxes(4)
	bvh := Build(aabbs, centers)

	ray := geom.NewRay(geom.Vec3{X: 0.25, Y: 0.25, Z: -5}, geom.Vec3{X: 0, Y: 0, Z: 1})
	idx, tHit, hit := bvh.Intersect(ray, func(primIndex int, r geom.Ray) PrimitiveHit {
		box := aabbs[primIndex]
		if box.Intersect(r) {
			return PrimitiveHit{Hit: true, T: 5}
		}
		return PrimitiveHit{}
	})
	if !hit {
		t.Fatalf("expected a hit")
	}
	if idx != 0 {
		t.Errorf("expected box 0 to be hit, got %d", idx)
	}
	if tHit != 5 {
		t.Errorf("expected t=5, got %v", tHit)
	}
}

func TestIntersectAnyMiss(t *testing.T) {
	aabbs, centers := gridBoxes(4)
	bvh := Build(aabbs, centers)

	ray := geom.NewRay(geom.Vec3{X: 100, Y: 100, Z: -5}, geom.Vec3{X: 0, Y: 0, Z: 1})
	hit := bvh.IntersectAny(ray, func(primIndex int, r geom.Ray) PrimitiveHit {
		box := aabbs[primIndex]
		return PrimitiveHit{Hit: box.Intersect(r)}
	})
	if hit {
		t.Errorf("expected no occluder far from any box")
	}
}

func BenchmarkBuild(b *testing.B) {
	aabbs, centers := gridBoxes(32)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Build(aabbs, centers)
	}
}
