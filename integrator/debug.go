package integrator

import (
	"pathtracer/geom"
	"pathtracer/sampler"
	"pathtracer/scene"
)

// Geometry is a debug AOV integrator: it returns the absolute value of
// the shading normal as a color, one ray per pixel regardless of the
// caller's sample count.
type Geometry struct {
	Scene *scene.Scene
}

func NewGeometry(sc *scene.Scene) *Geometry { return &Geometry{Scene: sc} }

func (g *Geometry) Li(ray geom.Ray, _ sampler.Sampler) geom.Vec3 {
	its, hit := g.Scene.RayIntersect(ray)
	if !hit {
		return geom.Vec3Zero
	}
	n := its.N
	return geom.Vec3{X: absf32(n.X), Y: absf32(n.Y), Z: absf32(n.Z)}
}

// BaseColor is a debug AOV integrator returning the hit surface's
// diffuse albedo, for an "albedo.*" auxiliary render alongside the main
// result.
type BaseColor struct {
	Scene *scene.Scene
}

func NewBaseColor(sc *scene.Scene) *BaseColor { return &BaseColor{Scene: sc} }

func (b *BaseColor) Li(ray geom.Ray, _ sampler.Sampler) geom.Vec3 {
	its, hit := b.Scene.RayIntersect(ray)
	if !hit {
		return geom.Vec3Zero
	}
	return b.Scene.Material(its.Tri.MaterialID).Kd
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
