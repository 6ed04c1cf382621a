// Package filter implements the pixel reconstruction filter, the
// per-tile image accumulator, and the spiral tile generator the render
// pipeline dispatches to its worker pool.
package filter

import "math"

// TableResolution is the number of tabulated samples across the filter's
// positive half-support.
const TableResolution = 32

// Gaussian is a tabulated Gaussian pixel reconstruction filter,
// `w(x) = max(0, exp(-x^2 / 2*sigma^2) - exp(-r^2 / 2*sigma^2))`, evaluated
// once at init and looked up thereafter so the per-sample splat cost stays
// a single table read instead of two exp() calls.
type Gaussian struct {
	radius float32
	stddev float32
	table  [TableResolution]float32
}

// NewGaussian builds the filter and fills its lookup table. radius=2,
// stddev=0.5 are the renderer's defaults.
func NewGaussian(radius, stddev float32) *Gaussian {
	g := &Gaussian{radius: radius, stddev: stddev}
	alpha := -1.0 / (2 * stddev * stddev)
	edge := expf(alpha * radius * radius)
	for i := 0; i < TableResolution; i++ {
		x := (float32(i) + 0.5) / TableResolution * radius
		v := expf(alpha*x*x) - edge
		if v < 0 {
			v = 0
		}
		g.table[i] = v
	}
	return g
}

func expf(x float32) float32 {
	return float32(math.Exp(float64(x)))
}

func (g *Gaussian) Radius() float32 { return g.radius }

// Eval returns the filter weight at offset x (in pixels from the sample
// center), clamping to 0 outside the radius.
func (g *Gaussian) Eval(x float32) float32 {
	ax := x
	if ax < 0 {
		ax = -ax
	}
	if ax >= g.radius {
		return 0
	}
	idx := int(ax / g.radius * TableResolution)
	if idx >= TableResolution {
		idx = TableResolution - 1
	}
	return g.table[idx]
}

// Eval2D returns the separable 2D filter weight for an (dx, dy) pixel
// offset.
func (g *Gaussian) Eval2D(dx, dy float32) float32 {
	return g.Eval(dx) * g.Eval(dy)
}
