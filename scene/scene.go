package scene

import (
	"pathtracer/accel"
	"pathtracer/geom"
)

// Scene owns every mesh, material and light loaded for a render, the
// flattened list of triangle primitives built from them, and the BVH over
// those primitives. It is the single entry point the integrators use to
// intersect rays and test visibility.
type Scene struct {
	Meshes    []*Mesh
	Materials []*Material
	Triangles []*Triangle
	Lights    *UniformLightSelector

	bvh *accel.BVH
}

// AddMesh registers a mesh and returns its index, for callers (the scene
// loader) building up a Scene incrementally.
func (s *Scene) AddMesh(m *Mesh) int {
	s.Meshes = append(s.Meshes, m)
	return len(s.Meshes) - 1
}

// AddMaterial registers a material and returns its index.
func (s *Scene) AddMaterial(m *Material) int {
	s.Materials = append(s.Materials, m)
	return len(s.Materials) - 1
}

// Material looks up a material by index.
func (s *Scene) Material(id uint32) *Material {
	return s.Materials[id]
}

// Preprocess flattens every mesh's faces into Triangle primitives,
// attaches AreaLights for faces whose material is emissive, and builds
// the BVH over the resulting primitive list. Call once after every mesh
// and material has been added.
func (s *Scene) Preprocess(emission map[int]geom.Vec3) {
	s.Triangles = nil
	var lights []*AreaLight

	for meshIdx, mesh := range s.Meshes {
		for face := 0; face < mesh.FaceCount(); face++ {
			tri := &Triangle{
				Mesh:       mesh,
				Face:       face,
				MaterialID: mesh.MaterialIDs[face],
			}
			s.Triangles = append(s.Triangles, tri)

			if le, ok := emission[meshIdx]; ok && !le.IsBlack() {
				light := &AreaLight{Shape: tri, Lemit: le}
				tri.Light = light
				lights = append(lights, light)
			}
		}
	}
	s.Lights = NewUniformLightSelector(lights)

	aabbs := make([]geom.AABB, len(s.Triangles))
	centers := make([]geom.Vec3, len(s.Triangles))
	for i, tri := range s.Triangles {
		box := tri.AABB()
		aabbs[i] = box
		centers[i] = box.Center()
	}
	s.bvh = accel.Build(aabbs, centers)
}

// RayIntersect finds the closest committed hit along ray, returning the
// completed Intersection. hit is false on a miss.
func (s *Scene) RayIntersect(ray geom.Ray) (its Intersection, hit bool) {
	idx, _, found := s.bvh.Intersect(ray, func(primIndex int, r geom.Ray) accel.PrimitiveHit {
		h := s.Triangles[primIndex].Intersect(r)
		return accel.PrimitiveHit{Hit: h.Hit, T: h.T}
	})
	if !found {
		return Intersection{}, false
	}
	tri := s.Triangles[idx]
	rehit := tri.Intersect(ray)
	return tri.Complete(rehit), true
}

// Unoccluded tests visibility between p0 and p1, nudging the shadow ray's
// origin and extent along each endpoint's normal (when given) to avoid
// self-intersection with the surfaces p0/p1 sit on.
func (s *Scene) Unoccluded(p0, p1, n0, n1 geom.Vec3) bool {
	d := p1.Sub(p0)
	dist := d.Length()
	if dist <= 0 {
		return true
	}
	dir := d.Mul(1 / dist)

	origin := p0
	if !n0.IsBlack() {
		origin = origin.Add(n0.Mul(geom.Epsilon))
	}
	maxT := dist * (1 - 1e-3)
	if !n1.IsBlack() {
		maxT -= geom.Epsilon
	}

	ray := geom.NewRayBounded(origin, dir, geom.Epsilon, maxT)
	return !s.bvh.IntersectAny(ray, func(primIndex int, r geom.Ray) accel.PrimitiveHit {
		h := s.Triangles[primIndex].Intersect(r)
		return accel.PrimitiveHit{Hit: h.Hit, T: h.T}
	})
}
