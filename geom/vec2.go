package geom

import "math"

// Vec2 stores UV texture coordinates and 2D sample-space quantities
// (pixel-plane offsets, lens samples).
type Vec2 struct {
	X, Y float32
}

var Vec2Zero = Vec2{0, 0}

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2    { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2    { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Mul(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

func (v Vec2) Dot(o Vec2) float32 { return v.X*o.X + v.Y*o.Y }

func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l > 0 {
		return v.Mul(1.0 / l)
	}
	return v
}

func (v Vec2) Lerp(o Vec2, t float32) Vec2 { return v.Add(o.Sub(v).Mul(t)) }
