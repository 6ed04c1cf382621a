package geom

import "math"

// Vec3 is a single-precision 3-component tuple used throughout the renderer
// for positions, directions, normals and unweighted radiance.
type Vec3 struct {
	X, Y, Z float32
}

var (
	Vec3Zero  = Vec3{0, 0, 0}
	Vec3One   = Vec3{1, 1, 1}
	Vec3Up    = Vec3{0, 1, 0}
	Vec3Down  = Vec3{0, -1, 0}
	Vec3Right = Vec3{1, 0, 0}
	Vec3Left  = Vec3{-1, 0, 0}
	Vec3Front = Vec3{0, 0, 1}
	Vec3Back  = Vec3{0, 0, -1}
)

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Mul(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) MulVec(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Vec3) Div(s float32) Vec3 { return v.Mul(1.0 / s) }
func (v Vec3) Negate() Vec3       { return Vec3{-v.X, -v.Y, -v.Z} }

func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

func (v Vec3) LengthSqr() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l > 0 {
		return v.Mul(1.0 / l)
	}
	return v
}

func (v Vec3) Distance(o Vec3) float32 { return v.Sub(o).Length() }

func (v Vec3) Lerp(o Vec3, t float32) Vec3 { return v.Add(o.Sub(v).Mul(t)) }

func (v Vec3) ToVec4(w float32) Vec4 { return Vec4{X: v.X, Y: v.Y, Z: v.Z, W: w} }

// MaxComponent returns the largest of X, Y, Z — used by Russian roulette
// termination in the integrators (spec calls it max(beta)).
func (v Vec3) MaxComponent() float32 {
	m := v.X
	if v.Y > m {
		m = v.Y
	}
	if v.Z > m {
		m = v.Z
	}
	return m
}

// IsBlack reports whether every component is exactly zero.
func (v Vec3) IsBlack() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// AbsDot returns the absolute value of the dot product; used pervasively
// for cosine terms that must stay non-negative under shading-normal
// correction.
func AbsDot(a, b Vec3) float32 {
	d := a.Dot(b)
	if d < 0 {
		return -d
	}
	return d
}

// Reflect reflects d (pointing away from the surface, as wo is stored
// throughout this renderer) about normal n.
func Reflect(d, n Vec3) Vec3 {
	return n.Mul(2 * d.Dot(n)).Sub(d)
}

func MinVec3(a, b Vec3) Vec3 {
	return Vec3{min32(a.X, b.X), min32(a.Y, b.Y), min32(a.Z, b.Z)}
}

func MaxVec3(a, b Vec3) Vec3 {
	return Vec3{max32(a.X, b.X), max32(a.Y, b.Y), max32(a.Z, b.Z)}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
