// Package scene owns the renderer's geometric and shading data: meshes,
// materials, triangle primitives, area lights, and the BVH-backed
// intersection gateway the integrators query.
package scene

import "pathtracer/geom"

// Mesh is a flat, immutable-once-loaded triangle mesh: position/normal/uv
// arrays plus per-face vertex index triples and a material id per face.
type Mesh struct {
	Positions []geom.Vec3
	Normals   []geom.Vec3 // empty if the mesh carries no shading normals
	UVs       []geom.Vec2 // empty if the mesh carries no texture coordinates

	// Indices holds 3 vertex indices per face; MaterialIDs holds 1 entry
	// per face indexing into the owning Scene's material list.
	Indices     [][3]uint32
	MaterialIDs []uint32
}

func (m *Mesh) FaceCount() int { return len(m.Indices) }

func (m *Mesh) vertex(face int) (v0, v1, v2 geom.Vec3) {
	idx := m.Indices[face]
	return m.Positions[idx[0]], m.Positions[idx[1]], m.Positions[idx[2]]
}

func (m *Mesh) hasNormals() bool { return len(m.Normals) == len(m.Positions) && len(m.Normals) > 0 }
func (m *Mesh) hasUVs() bool     { return len(m.UVs) == len(m.Positions) && len(m.UVs) > 0 }

func (m *Mesh) normal(face int) (n0, n1, n2 geom.Vec3, ok bool) {
	if !m.hasNormals() {
		return
	}
	idx := m.Indices[face]
	return m.Normals[idx[0]], m.Normals[idx[1]], m.Normals[idx[2]], true
}

func (m *Mesh) uv(face int) (uv0, uv1, uv2 geom.Vec2, ok bool) {
	if !m.hasUVs() {
		return geom.Vec2{X: 0, Y: 0}, geom.Vec2{X: 1, Y: 0}, geom.Vec2{X: 1, Y: 1}, false
	}
	idx := m.Indices[face]
	return m.UVs[idx[0]], m.UVs[idx[1]], m.UVs[idx[2]], true
}

// FaceAABB returns the bounding box of a single face.
func (m *Mesh) FaceAABB(face int) geom.AABB {
	v0, v1, v2 := m.vertex(face)
	return geom.AABBFromPoints(v0, v1, v2)
}

// FaceArea returns the surface area of a single face.
func (m *Mesh) FaceArea(face int) float32 {
	v0, v1, v2 := m.vertex(face)
	return geom.TriangleArea(v0, v1, v2)
}
