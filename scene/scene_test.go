package scene

import (
	"math"
	"testing"

	"pathtracer/geom"
)

func singleTriangleMesh() *Mesh {
	return &Mesh{
		Positions:   []geom.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		Indices:     [][3]uint32{{0, 1, 2}},
		MaterialIDs: []uint32{0},
	}
}

func quadFloorMesh() *Mesh {
	return &Mesh{
		Positions: []geom.Vec3{
			{X: -5, Y: 0, Z: -5}, {X: 5, Y: 0, Z: -5}, {X: 5, Y: 0, Z: 5}, {X: -5, Y: 0, Z: 5},
		},
		// wound so the cross product (v1-v0)x(v2-v0) faces +Y, matching
		// this suite's expectation of an upward-facing floor normal
		Indices:     [][3]uint32{{0, 2, 1}, {0, 3, 2}},
		MaterialIDs: []uint32{0, 0},
	}
}

func TestTriangleSampleIsOnPlane(t *testing.T) {
	mesh := singleTriangleMesh()
	tri := &Triangle{Mesh: mesh, Face: 0}
	p, n, pdf := tri.Sample(0.3, 0.6)
	if p.Z != 0 {
		t.Errorf("expected sampled point in z=0 plane, got z=%v", p.Z)
	}
	if n.Z == 0 {
		t.Errorf("expected a non-degenerate normal")
	}
	wantPdf := 1.0 / tri.SurfaceArea()
	if math.Abs(float64(pdf-wantPdf)) > 1e-5 {
		t.Errorf("pdf = %v, want %v", pdf, wantPdf)
	}
}

func TestSceneRayIntersectHitsFloor(t *testing.T) {
	var s Scene
	s.AddMesh(quadFloorMesh())
	mat := &Material{Kd: geom.Vec3{X: 0.8, Y: 0.8, Z: 0.8}}
	s.AddMaterial(mat)
	s.Preprocess(nil)

	ray := geom.NewRay(geom.Vec3{X: 0, Y: 5, Z: 0}, geom.Vec3{X: 0, Y: -1, Z: 0})
	its, hit := s.RayIntersect(ray)
	if !hit {
		t.Fatalf("expected a hit on the floor")
	}
	if math.Abs(float64(its.P.Y)) > 1e-3 {
		t.Errorf("expected hit at y=0, got %v", its.P.Y)
	}
	if its.N.Y <= 0 {
		t.Errorf("expected an upward-facing normal, got %v", its.N)
	}
}

func TestSceneRayIntersectMiss(t *testing.T) {
	var s Scene
	s.AddMesh(quadFloorMesh())
	s.AddMaterial(&Material{})
	s.Preprocess(nil)

	ray := geom.NewRay(geom.Vec3{X: 100, Y: 5, Z: 100}, geom.Vec3{X: 0, Y: -1, Z: 0})
	_, hit := s.RayIntersect(ray)
	if hit {
		t.Errorf("expected a miss far from the floor")
	}
}

func TestSceneUnoccludedBlockedBehindGeometry(t *testing.T) {
	var s Scene
	s.AddMesh(quadFloorMesh())
	s.AddMaterial(&Material{})
	s.Preprocess(nil)

	p0 := geom.Vec3{X: 0, Y: 5, Z: 0}
	p1 := geom.Vec3{X: 0, Y: -5, Z: 0}
	if s.Unoccluded(p0, p1, geom.Vec3Zero, geom.Vec3Zero) {
		t.Errorf("expected the floor to occlude p0<->p1")
	}
}

func TestSceneUnoccludedClearPath(t *testing.T) {
	var s Scene
	s.AddMesh(quadFloorMesh())
	s.AddMaterial(&Material{})
	s.Preprocess(nil)

	p0 := geom.Vec3{X: 0, Y: 5, Z: 0}
	p1 := geom.Vec3{X: 0, Y: 1, Z: 0}
	if !s.Unoccluded(p0, p1, geom.Vec3Zero, geom.Vec3Zero) {
		t.Errorf("expected a clear path above the floor")
	}
}

func TestPreprocessAttachesAreaLights(t *testing.T) {
	var s Scene
	s.AddMesh(singleTriangleMesh())
	s.AddMaterial(&Material{})
	s.Preprocess(map[int]geom.Vec3{0: {X: 10, Y: 10, Z: 10}})

	if s.Lights.Count() != 1 {
		t.Fatalf("expected 1 light, got %d", s.Lights.Count())
	}
	if s.Triangles[0].Light == nil {
		t.Errorf("expected the emissive triangle to carry a Light back-reference")
	}
}

func TestUniformLightSelectorPdf(t *testing.T) {
	lights := []*AreaLight{{}, {}, {}}
	sel := NewUniformLightSelector(lights)
	if got := sel.Pdf(lights[0]); math.Abs(float64(got-1.0/3.0)) > 1e-6 {
		t.Errorf("pdf = %v, want 1/3", got)
	}
	if sel.Select(0) != lights[0] {
		t.Errorf("expected u=0 to select the first light")
	}
	if sel.Select(0.999) != lights[2] {
		t.Errorf("expected u close to 1 to select the last light")
	}
}

func TestMaterialSampleFConsistentWithPdf(t *testing.T) {
	m := &Material{Kd: geom.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, Ks: geom.Vec3{X: 0.3, Y: 0.3, Z: 0.3}, N: 20}
	ns := geom.Vec3{X: 0, Y: 0, Z: 1}
	wo := geom.Vec3{X: 0, Y: 0, Z: 1}

	wi, f, pdf := m.SampleF(ns, wo, 0.9, 0.2, 0.4)
	if pdf <= 0 {
		t.Fatalf("expected a positive pdf for a sampled direction, got %v", pdf)
	}
	if f.IsBlack() {
		t.Errorf("expected non-zero BSDF value for the sampled direction")
	}
	gotPdf := m.Pdf(ns, wo, wi)
	if math.Abs(float64(gotPdf-pdf)) > 1e-4 {
		t.Errorf("Pdf(wi) = %v does not match SampleF's returned pdf %v", gotPdf, pdf)
	}
}

func TestCorrectShadingNormalMatchesFlatGeometry(t *testing.T) {
	n := geom.Vec3{X: 0, Y: 0, Z: 1}
	wo := geom.Vec3{X: 0, Y: 0.3, Z: 1}.Normalize()
	wi := geom.Vec3{X: 0.2, Y: 0, Z: 1}.Normalize()
	got := CorrectShadingNormal(n, n, wo, wi)
	if math.Abs(float64(got-1)) > 1e-5 {
		t.Errorf("expected correction factor 1 when ns==ng, got %v", got)
	}
}
