package scene

import "pathtracer/geom"

// Triangle is a cheap, non-owning handle into a Mesh: it borrows the mesh
// and a face index rather than copying vertex data, and optionally
// back-references the AreaLight it emits from.
type Triangle struct {
	Mesh       *Mesh
	Face       int
	MaterialID uint32
	Light      *AreaLight // nil unless this face is an emitter
}

func (t *Triangle) vertices() (v0, v1, v2 geom.Vec3) {
	return t.Mesh.vertex(t.Face)
}

func (t *Triangle) AABB() geom.AABB {
	return t.Mesh.FaceAABB(t.Face)
}

func (t *Triangle) SurfaceArea() float32 {
	return t.Mesh.FaceArea(t.Face)
}

// Intersect runs Möller-Trumbore against this triangle's vertices.
func (t *Triangle) Intersect(r geom.Ray) geom.TriangleHit {
	v0, v1, v2 := t.vertices()
	return geom.IntersectTriangle(r, v0, v1, v2)
}

// Complete builds the full Intersection record from a committed
// barycentric hit: position, geometric and shading normals, UV, and
// tangent frame.
func (t *Triangle) Complete(hit geom.TriangleHit) Intersection {
	v0, v1, v2 := t.vertices()
	p := geom.BarycentricInterpolate(hit.U, hit.V, hit.W, v0, v1, v2)
	ng := geom.GeometricNormal(v0, v1, v2)

	n := ng
	if n0, n1, n2, ok := t.Mesh.normal(t.Face); ok {
		shading := geom.BarycentricInterpolate(hit.U, hit.V, hit.W, n0, n1, n2)
		if shading.LengthSqr() > 0 {
			n = shading.Normalize()
		}
	}

	uv0, uv1, uv2, _ := t.Mesh.uv(t.Face)
	uv := geom.BarycentricInterpolate2(hit.U, hit.V, hit.W, uv0, uv1, uv2)

	return Intersection{
		P:    p,
		N:    n,
		NG:   ng,
		UV:   uv,
		T:    hit.T,
		Tri:  t,
		Frame: geom.FrameFromNormal(n),
	}
}

// Sample draws a uniformly distributed point on this triangle via the
// sqrt-u barycentric mapping, returning the point, its geometric normal,
// and the area-measure pdf (1/area).
func (t *Triangle) Sample(u1, u2 float32) (p, n geom.Vec3, pdfArea float32) {
	v0, v1, v2 := t.vertices()
	b0, b1, b2 := geom.SampleTriangleBarycentric(u1, u2)
	p = geom.BarycentricInterpolate(b0, b1, b2, v0, v1, v2)
	n = geom.GeometricNormal(v0, v1, v2)
	area := t.SurfaceArea()
	if area <= 0 {
		return p, n, 0
	}
	return p, n, 1.0 / area
}

// Pdf returns this triangle's area-measure sampling density, 1/area.
func (t *Triangle) Pdf() float32 {
	area := t.SurfaceArea()
	if area <= 0 {
		return 0
	}
	return 1.0 / area
}

// Intersection is the value-object produced after a committed BVH hit:
// world-space position, shading/geometric normals, UV, tangent frame, and
// a non-owning reference to the hit triangle (and by extension its
// material and optional area light).
type Intersection struct {
	P, N, NG geom.Vec3
	UV       geom.Vec2
	Frame    geom.Frame
	T        float32
	Tri      *Triangle
}

// Light returns the area light this intersection's triangle emits from,
// or nil.
func (its Intersection) Light() *AreaLight {
	if its.Tri == nil {
		return nil
	}
	return its.Tri.Light
}
