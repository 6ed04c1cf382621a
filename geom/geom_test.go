package geom

import (
	"math"
	"testing"
)

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	result := v1.Add(v2)
	expected := NewVec3(5, 7, 9)
	if result != expected {
		t.Errorf("Add: expected %v, got %v", expected, result)
	}

	dot := v1.Dot(v2)
	expectedDot := float32(32)
	if dot != expectedDot {
		t.Errorf("Dot: expected %v, got %v", expectedDot, dot)
	}

	cross := Vec3Right.Cross(Vec3Up)
	if cross != Vec3Front {
		t.Errorf("Cross: expected %v, got %v", Vec3Front, cross)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := NewVec3(3, 0, 0)
	normalized := v.Normalize()
	expected := NewVec3(1, 0, 0)
	if normalized != expected {
		t.Errorf("Normalize: expected %v, got %v", expected, normalized)
	}
	length := normalized.Length()
	if math.Abs(float64(length-1)) > 0.0001 {
		t.Errorf("Normalize: expected length 1, got %v", length)
	}
}

func TestAABBEmpty(t *testing.T) {
	b := EmptyAABB()
	if !b.Empty() {
		t.Errorf("EmptyAABB: expected Empty() true")
	}
	b.Extend(Vec3{1, 2, 3})
	if b.Empty() {
		t.Errorf("AABB with one point should not be empty")
	}
}

func TestAABBMaxAxis(t *testing.T) {
	b := AABBFromPoint(Vec3Zero)
	b.Extend(Vec3{1, 5, 2})
	if axis := b.MaxAxis(); axis != 1 {
		t.Errorf("MaxAxis: expected 1 (Y, height=5), got %v", axis)
	}

	b2 := AABBFromPoint(Vec3Zero)
	b2.Extend(Vec3{9, 1, 2})
	if axis := b2.MaxAxis(); axis != 0 {
		t.Errorf("MaxAxis: expected 0 (X, width=9), got %v", axis)
	}
}

func TestAABBIntersectSlab(t *testing.T) {
	b := AABB{Min: Vec3{-1, -1, -1}, Max: Vec3{1, 1, 1}}
	r := NewRay(Vec3{0, 0, -5}, Vec3{0, 0, 1})
	if !b.Intersect(r) {
		t.Errorf("expected ray through box center to hit")
	}
	rMiss := NewRay(Vec3{5, 5, -5}, Vec3{0, 0, 1})
	if b.Intersect(rMiss) {
		t.Errorf("expected ray missing box to not hit")
	}
}

func TestIntersectTriangleCenter(t *testing.T) {
	p0 := Vec3{-1, -1, 0}
	p1 := Vec3{1, -1, 0}
	p2 := Vec3{0, 1, 0}
	r := NewRay(Vec3{0, -0.3, -5}, Vec3{0, 0, 1})

	hit := IntersectTriangle(r, p0, p1, p2)
	if !hit.Hit {
		t.Fatalf("expected hit")
	}
	if math.Abs(float64(hit.T-5)) > 1e-4 {
		t.Errorf("expected t=5, got %v", hit.T)
	}
	sum := hit.U + hit.V + hit.W
	if math.Abs(float64(sum-1)) > 1e-4 {
		t.Errorf("barycentrics should sum to 1, got %v", sum)
	}
}

func TestIntersectTriangleParallelMiss(t *testing.T) {
	p0 := Vec3{-1, -1, 0}
	p1 := Vec3{1, -1, 0}
	p2 := Vec3{0, 1, 0}
	r := NewRay(Vec3{0, 0, -5}, Vec3{0, 1, 0})

	hit := IntersectTriangle(r, p0, p1, p2)
	if hit.Hit {
		t.Errorf("expected parallel ray to miss")
	}
}

func TestFrameFromNormalOrthonormal(t *testing.T) {
	normals := []Vec3{
		{0, 0, 1},
		{0, 0, -1},
		{1, 0, 0},
		{0, 1, 0},
		NewVec3(1, 1, 1).Normalize(),
		NewVec3(0.2, -0.7, 0.4).Normalize(),
	}
	for _, n := range normals {
		f := FrameFromNormal(n)
		const tol = 1e-4
		if math.Abs(float64(f.T.Dot(f.B))) > tol {
			t.Errorf("T.B not orthogonal for normal %v: %v", n, f.T.Dot(f.B))
		}
		if math.Abs(float64(f.T.Dot(f.N))) > tol {
			t.Errorf("T.N not orthogonal for normal %v: %v", n, f.T.Dot(f.N))
		}
		if math.Abs(float64(f.B.Dot(f.N))) > tol {
			t.Errorf("B.N not orthogonal for normal %v: %v", n, f.B.Dot(f.N))
		}
		if math.Abs(float64(f.T.Length()-1)) > tol {
			t.Errorf("T not unit length for normal %v: %v", n, f.T.Length())
		}
		if math.Abs(float64(f.B.Length()-1)) > tol {
			t.Errorf("B not unit length for normal %v: %v", n, f.B.Length())
		}
	}
}

func TestFrameToLocalToWorldRoundTrip(t *testing.T) {
	f := FrameFromNormal(NewVec3(0.3, 0.9, 0.1).Normalize())
	v := NewVec3(1, 2, 3)
	local := f.ToLocal(v)
	world := f.ToWorld(local)
	if world.Distance(v) > 1e-3 {
		t.Errorf("round trip mismatch: got %v, want %v", world, v)
	}
}

func TestMat4InverseRoundTrip(t *testing.T) {
	m := Mat4Translation(Vec3{1, 2, 3}).Mul(Mat4RotationY(0.7)).Mul(Mat4Scale(Vec3{2, 3, 4}))
	inv := m.Inverse()
	identity := m.Mul(inv)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			if math.Abs(float64(identity[i][j]-want)) > 1e-3 {
				t.Errorf("Inverse round trip [%d][%d]: expected %v, got %v", i, j, want, identity[i][j])
			}
		}
	}
}

func BenchmarkIntersectTriangle(b *testing.B) {
	p0 := Vec3{-1, -1, 0}
	p1 := Vec3{1, -1, 0}
	p2 := Vec3{0, 1, 0}
	r := NewRay(Vec3{0, 0, -5}, Vec3{0, 0, 1})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = IntersectTriangle(r, p0, p1, p2)
	}
}
