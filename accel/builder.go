package accel

import (
	"sort"

	"pathtracer/geom"
)

const sahChunkSize = 32

type workItem struct {
	nodeID     uint32
	begin, end int
}

func (w workItem) size() int { return w.end - w.begin }

type split struct {
	pos  int
	cost float32
	axis int
}

// Builder constructs a BVH over a set of primitive bounding boxes and
// centroids using binned-free exact SAH: three per-axis sorted primitive
// permutations, right-to-left/left-to-right cost sweeps with an early-exit
// chunk check, and a stable partition that keeps the other two axes'
// orderings coherent after each split.
type Builder struct {
	aabbs   []geom.AABB
	centers []geom.Vec3

	primIDs [3][]int
	marks   []bool
	accum   []float32

	bvh *BVH
}

// Build runs the SAH builder over the given per-primitive AABBs and
// centroids, returning the finished BVH.
func Build(aabbs []geom.AABB, centers []geom.Vec3) *BVH {
	n := len(aabbs)
	b := &Builder{
		aabbs:   aabbs,
		centers: centers,
		marks:   make([]bool, n),
		accum:   make([]float32, n),
		bvh:     &BVH{},
	}

	for axis := 0; axis < 3; axis++ {
		ids := make([]int, n)
		for i := range ids {
			ids[i] = i
		}
		axisCopy := axis
		sortByCenterAxis(ids, centers, axisCopy)
		b.primIDs[axis] = ids
	}

	b.bvh.Nodes = make([]Node, 1, 2*n)
	b.bvh.Nodes[0].AABB = b.computeAABB(0, n)

	stack := []workItem{{nodeID: 0, begin: 0, end: n}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &b.bvh.Nodes[item.nodeID]
		if item.size() > MinLeafSize {
			if splitPos, ok := b.trySplit(node.AABB, item.begin, item.end); ok {
				firstChild := uint32(len(b.bvh.Nodes))
				node.MakeInterior(firstChild)
				b.bvh.Nodes = append(b.bvh.Nodes, Node{}, Node{})
				// node pointer may be invalidated by the append-induced
				// reallocation above; re-fetch before further use.
				node = &b.bvh.Nodes[item.nodeID]

				firstBBox := b.computeAABB(item.begin, splitPos)
				secondBBox := b.computeAABB(splitPos, item.end)
				firstRange := [2]int{item.begin, splitPos}
				secondRange := [2]int{splitPos, item.end}

				// Sibling-swap-by-area (SATO, Nah & Manocha): visit the
				// larger-area child first during any-hit traversal since
				// it more likely contains an occluder.
				if firstBBox.SurfaceArea() < secondBBox.SurfaceArea() {
					firstBBox, secondBBox = secondBBox, firstBBox
					firstRange, secondRange = secondRange, firstRange
				}

				firstItem := workItem{nodeID: firstChild, begin: firstRange[0], end: firstRange[1]}
				secondItem := workItem{nodeID: firstChild + 1, begin: secondRange[0], end: secondRange[1]}
				b.bvh.Nodes[firstChild].AABB = firstBBox
				b.bvh.Nodes[firstChild+1].AABB = secondBBox

				// Push the larger item first and the smaller one last, so
				// the smaller item is processed next and the explicit
				// stack stays shallow.
				if firstItem.size() < secondItem.size() {
					firstItem, secondItem = secondItem, firstItem
				}
				stack = append(stack, firstItem, secondItem)
				continue
			}
		}
		node.MakeLeaf(uint32(item.begin), uint32(item.size()))
	}

	b.bvh.PrimIDs = make([]uint32, n)
	for i, id := range b.primIDs[0] {
		b.bvh.PrimIDs[i] = uint32(id)
	}
	return b.bvh
}

func sortByCenterAxis(ids []int, centers []geom.Vec3, axis int) {
	sort.Slice(ids, func(i, j int) bool {
		a, bb := centers[ids[i]], centers[ids[j]]
		switch axis {
		case 0:
			return a.X < bb.X
		case 1:
			return a.Y < bb.Y
		default:
			return a.Z < bb.Z
		}
	})
}

func (b *Builder) computeAABB(begin, end int) geom.AABB {
	ids := b.primIDs[0]
	box := geom.EmptyAABB()
	for i := begin; i < end; i++ {
		box.ExtendBox(b.aabbs[ids[i]])
	}
	return box
}

func halfSurfaceArea(box geom.AABB) float32 {
	return box.SurfaceArea() * 0.5
}

func computeLeafCost(begin, end int, box geom.AABB) float32 {
	return halfSurfaceArea(box) * float32(end-begin-1)
}

func computeNoSplitCost(begin, end int, box geom.AABB) float32 {
	return halfSurfaceArea(box) * float32(end-begin)
}

// trySplit evaluates the SAH cost of splitting [begin,end) along each
// axis, returning the winning split position. It falls back to a median
// split on the AABB's longest axis if no axis improves on the leaf cost
// and the range still exceeds MaxLeafSize.
func (b *Builder) trySplit(box geom.AABB, begin, end int) (int, bool) {
	leafCost := computeNoSplitCost(begin, end, box)
	best := split{pos: (begin + end + 1) / 2, cost: leafCost, axis: 0}

	for axis := 0; axis < 3; axis++ {
		b.findBestSplit(axis, begin, end, &best)
	}

	if best.cost >= leafCost {
		if end-begin <= MaxLeafSize {
			return 0, false
		}
		best.pos = (begin + end + 1) / 2
		best.axis = box.MaxAxis()
	}

	b.markPrimitives(best.axis, begin, best.pos, end)
	for axis := 0; axis < 3; axis++ {
		if axis == best.axis {
			continue
		}
		b.stablePartitionByMark(b.primIDs[axis], begin, end)
	}

	return best.pos, true
}

func (b *Builder) markPrimitives(axis, begin, splitPos, end int) {
	ids := b.primIDs[axis]
	for i := begin; i < splitPos; i++ {
		b.marks[ids[i]] = true
	}
	for i := splitPos; i < end; i++ {
		b.marks[ids[i]] = false
	}
}

// stablePartitionByMark reorders ids[begin:end] so every index whose mark
// is true precedes every index whose mark is false, preserving the
// relative order within each group — the builder relies on this to keep
// the two non-split axes centroid-sorted after the split axis partitions.
func (b *Builder) stablePartitionByMark(ids []int, begin, end int) {
	trues := make([]int, 0, end-begin)
	falses := make([]int, 0, end-begin)
	for i := begin; i < end; i++ {
		if b.marks[ids[i]] {
			trues = append(trues, ids[i])
		} else {
			falses = append(falses, ids[i])
		}
	}
	i := begin
	for _, v := range trues {
		ids[i] = v
		i++
	}
	for _, v := range falses {
		ids[i] = v
		i++
	}
}

func (b *Builder) findBestSplit(axis int, begin, end int, best *split) {
	ids := b.primIDs[axis]
	firstRight := begin

	rightBBox := geom.EmptyAABB()
	for i := end - 1; i > begin; {
		next := i - minInt(i-begin, sahChunkSize)
		rightCost := float32(0)
		for ; i > next; i-- {
			rightBBox.ExtendBox(b.aabbs[ids[i]])
			rightCost = computeLeafCost(i, end, rightBBox)
			b.accum[i] = rightCost
		}
		if rightCost > best.cost {
			firstRight = i
			break
		}
	}

	leftBBox := geom.EmptyAABB()
	for i := begin; i < firstRight; i++ {
		leftBBox.ExtendBox(b.aabbs[ids[i]])
	}
	for i := firstRight; i < end-1; i++ {
		leftBBox.ExtendBox(b.aabbs[ids[i]])
		leftCost := computeLeafCost(begin, i+1, leftBBox)
		cost := leftCost + b.accum[i+1]
		if cost < best.cost {
			*best = split{pos: i + 1, cost: cost, axis: axis}
		} else if leftCost > best.cost {
			break
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
