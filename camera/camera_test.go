package camera

import (
	"math"
	"testing"

	"pathtracer/geom"
)

func testCamera() *Camera {
	return New(640, 480, 60,
		geom.Vec3{X: 0, Y: 0, Z: -5},
		geom.Vec3{X: 0, Y: 0, Z: 0},
		geom.Vec3Up,
	)
}

func TestSampleRayPointsTowardLookAt(t *testing.T) {
	c := testCamera()
	center := geom.Vec2{X: float32(c.Width) / 2, Y: float32(c.Height) / 2}
	ray := c.SampleRay(center)

	forward := c.LookAt.Sub(c.Eye).Normalize()
	cosTheta := ray.Dir.Normalize().Dot(forward)
	if cosTheta < 0.999 {
		t.Errorf("expected the center ray to align with the view direction, cos=%v", cosTheta)
	}
}

func TestProjectRoundTrip(t *testing.T) {
	c := testCamera()
	p := geom.Vec3{X: 0.5, Y: 0.2, Z: 0}
	raster, onscreen := c.Project(p)
	if !onscreen {
		t.Fatalf("expected the point to project on screen")
	}

	ray := c.SampleRay(raster)
	t_param := (p.Z - ray.Org.Z) / ray.Dir.Z
	hit := ray.At(t_param)
	if math.Abs(float64(hit.X-p.X)) > 1e-2 || math.Abs(float64(hit.Y-p.Y)) > 1e-2 {
		t.Errorf("round trip mismatch: got %v, want %v", hit, p)
	}
}

func TestProjectOffscreenBehind(t *testing.T) {
	c := testCamera()
	behind := geom.Vec3{X: 0, Y: 0, Z: -100}
	if _, onscreen := c.Project(behind); onscreen {
		t.Errorf("expected a point behind the camera to be offscreen")
	}
}

func TestLeZeroBehindCamera(t *testing.T) {
	c := testCamera()
	backward := c.Eye.Sub(c.LookAt).Normalize()
	if !c.Le(backward).IsBlack() {
		t.Errorf("expected zero importance for a ray leaving backward")
	}
}

func TestSampleLiValidForVisiblePoint(t *testing.T) {
	c := testCamera()
	p := geom.Vec3{X: 0, Y: 0, Z: 0}
	sample := c.SampleLi(p)
	if !sample.Valid {
		t.Errorf("expected a valid camera importance sample for a point on the view axis")
	}
	if sample.PdfDir <= 0 {
		t.Errorf("expected a positive pdf, got %v", sample.PdfDir)
	}
}
