// Package accel implements the SAH-built bounding volume hierarchy used
// as the scene's spatial index: a flat node array plus an iterative
// stack-based traversal for both closest-hit and any-hit queries.
package accel

import "pathtracer/geom"

// MinLeafSize and MaxLeafSize bound how few/many primitives a leaf may
// hold before the builder either refuses to split further or falls back
// to a median split.
const (
	MinLeafSize = 1
	MaxLeafSize = 8
)

// Node is one entry of the flat BVH node array. A node is a leaf iff
// PrimCount != 0; interior nodes store the index of their first child
// (the second child is always FirstID+1 — siblings are consecutive).
type Node struct {
	AABB      geom.AABB
	FirstID   uint32
	PrimCount uint32
}

func (n *Node) MakeLeaf(firstPrim, primCount uint32) {
	n.FirstID = firstPrim
	n.PrimCount = primCount
}

func (n *Node) MakeInterior(firstChild uint32) {
	n.PrimCount = 0
	n.FirstID = firstChild
}

func (n Node) IsLeaf() bool { return n.PrimCount != 0 }

// BVH is the built hierarchy: a flat node array plus the final primitive
// permutation (m_prim_ids[0] in the reference builder — the X-axis
// ordering, reused as the single canonical post-build order).
type BVH struct {
	Nodes   []Node
	PrimIDs []uint32
}
