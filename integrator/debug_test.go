package integrator

import (
	"testing"

	"pathtracer/geom"
	"pathtracer/sampler"
)

func TestGeometryLiReturnsAbsNormal(t *testing.T) {
	s := cornellLikeScene()
	g := NewGeometry(s)
	smp := sampler.NewIndependent(6)

	// Start below the ceiling light (y=4) so the ray reaches the floor.
	ray := geom.NewRay(geom.Vec3{X: 0, Y: 3, Z: 0}, geom.Vec3{X: 0, Y: -1, Z: 0})
	c := g.Li(ray, smp)
	if c.X < 0 || c.Y < 0 || c.Z < 0 {
		t.Errorf("expected non-negative absolute-normal color, got %v", c)
	}
	if c.Y != 1 {
		t.Errorf("expected a straight-down ray to hit the floor's +Y normal, got %v", c)
	}
}

func TestGeometryLiMissIsBlack(t *testing.T) {
	var s = cornellLikeScene()
	g := NewGeometry(s)
	smp := sampler.NewIndependent(7)

	ray := geom.NewRay(geom.Vec3{X: 1000, Y: 1000, Z: 1000}, geom.Vec3{X: 0, Y: 1, Z: 0})
	c := g.Li(ray, smp)
	if !c.IsBlack() {
		t.Errorf("expected black for a ray that hits nothing, got %v", c)
	}
}

func TestBaseColorLiMatchesFloorAlbedo(t *testing.T) {
	s := cornellLikeScene()
	bc := NewBaseColor(s)
	smp := sampler.NewIndependent(8)

	// Start below the ceiling light (y=4) so the ray reaches the floor.
	ray := geom.NewRay(geom.Vec3{X: 0, Y: 3, Z: 0}, geom.Vec3{X: 0, Y: -1, Z: 0})
	c := bc.Li(ray, smp)
	if c.X != 0.7 || c.Y != 0.7 || c.Z != 0.7 {
		t.Errorf("expected the floor's Kd (0.7,0.7,0.7), got %v", c)
	}
}
