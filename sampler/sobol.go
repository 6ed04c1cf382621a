// Package sampler implements the renderer's low-discrepancy and
// fallback pseudo-random sample sources.
package sampler

// NDimensions bounds the number of Sobol' direction-number columns
// generated at init time. Sample1D and Sample2D wrap the dimension counter
// back to 2 once it reaches NDimensions, so a path that draws more than
// NDimensions-2 values reuses earlier dimensions. The path integrator
// draws up to seven per bounce (light selection and point, BSDF lobe and
// direction, Russian roulette), which reaches the wrap on its fifth bounce.
const NDimensions = 32

const floatOneMinusEpsilon = 1 - 1.0/(1<<24)

// sobolMatrices[d] holds the 32 direction numbers (already shifted into
// bit position, i.e. v_i = m_i << (32-i)) for dimension d.
var sobolMatrices [NDimensions][32]uint32

// primitivePoly lists low-degree primitive polynomials over GF(2), encoded
// as their middle coefficients a_1..a_{s-1} (the leading and trailing
// terms of a primitive polynomial are always 1 and are implicit). Degree s
// is len(coeffs)+1. This is the standard Sobol' direction-number recurrence
// input (Bratley & Fox 1988). Only ten polynomials are listed, instead of
// the full Joe-Kuo 1024-column polynomial table: dimension d uses
// primitivePoly[d%10]. Some dimensions that share a low-degree polynomial
// end up with identical direction numbers: 0/10/20/30, 1/11/21/31, 2/22
// and 3/23.
var primitivePoly = [][]uint32{
	{},           // degree 1: x+1
	{1},          // degree 2: x^2+x+1
	{0, 1},       // degree 3: x^3+x+1
	{1, 0},       // degree 3: x^3+x^2+1
	{0, 0, 1},    // degree 4: x^4+x+1
	{1, 1, 1, 0}, // degree 5: x^5+x^4+x^3+x^2+1 (via its a-coeffs)
	{0, 1, 0, 0}, // degree 5
	{1, 1, 0, 1}, // degree 5
	{0, 0, 1, 0}, // degree 5
	{1, 0, 1, 1}, // degree 5
}

func init() {
	generateSobolMatrices()
}

func generateSobolMatrices() {
	for dim := 0; dim < NDimensions; dim++ {
		poly := primitivePoly[dim%len(primitivePoly)]
		s := len(poly) + 1

		// m is 1-indexed (m[0] unused) and grows to hold m[1..32].
		m := make([]uint32, 33)
		for i := 1; i <= s; i++ {
			// Any odd value below 2^i yields a valid (if not maximally
			// equidistributed) Sobol' sequence; deriving the values from
			// the dimension index separates most dimensions that share a
			// polynomial, but not all of them (see primitivePoly).
			mi := (uint32(2*dim+1) ^ uint32(i)) | 1
			mi &= (1 << uint(i)) - 1
			if mi == 0 {
				mi = 1
			}
			m[i] = mi
		}

		// Standard Sobol' recurrence (Bratley & Fox 1988):
		// m_i = XOR_{j=1}^{s-1}(2^j * a_j * m_{i-j}) xor 2^s*m_{i-s} xor m_{i-s}
		for i := s + 1; i <= 32; i++ {
			acc := m[i-s] << uint(s)
			acc ^= m[i-s]
			for j := 1; j < s; j++ {
				if poly[j-1] != 0 {
					acc ^= m[i-j] << uint(j)
				}
			}
			m[i] = acc
		}

		for i := 1; i <= 32; i++ {
			sobolMatrices[dim][i-1] = m[i] << (32 - uint(i))
		}
	}
}

// sobolSample returns the 1D Sobol' sample for index a along the given
// dimension's generator matrix.
func sobolSample(a uint32, dimension int) float32 {
	col := sobolMatrices[dimension%NDimensions]
	var v uint32
	for i := 0; a != 0; i++ {
		if a&1 != 0 {
			v ^= col[i]
		}
		a >>= 1
	}
	f := float32(v) * 0x1p-32
	if f > floatOneMinusEpsilon {
		return floatOneMinusEpsilon
	}
	return f
}

func roundUpPow2(v int) int {
	if v <= 1 {
		return 1
	}
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	return v + 1
}

func log2Int(v int) int {
	r := 0
	for v > 1 {
		v >>= 1
		r++
	}
	return r
}

// Sampler is the per-thread sample source consumed by the integrators.
// Implementations must be safe to Clone per worker so each tile-render
// goroutine owns an independent stream.
type Sampler interface {
	StartPixelSample(px, py, sampleIndex int)
	Sample1D() float32
	Sample2D() (float32, float32)
	SamplePixel2D() (float32, float32)
	Clone() Sampler
}

// Sobol is a Sobol'-sequence sampler indexed per pixel by bit-interleaving
// the pixel coordinates below the sample index, matching the shape of the
// renderer's reference sampler (startPixelSample/sample1D/sample2D/
// samplePixel2D/clone) without the published 1024-column Owen-scrambling
// matrix tables; no scrambling is applied.
type Sobol struct {
	scale      int
	logScale   int
	pixelX     int
	pixelY     int
	sobolIndex uint64
	dimension  int
}

func NewSobol(resolutionX, resolutionY int) *Sobol {
	scale := roundUpPow2(max(resolutionX, resolutionY))
	return &Sobol{scale: scale, logScale: log2Int(scale)}
}

func (s *Sobol) StartPixelSample(px, py, sampleIndex int) {
	s.pixelX, s.pixelY = px, py
	s.dimension = 2
	s.sobolIndex = sobolIntervalToIndex(s.logScale, uint64(sampleIndex), px, py)
}

// sobolIntervalToIndex folds the per-pixel coordinate into the global
// sample index via bit-interleaving at the render's power-of-two
// resolution scale, so that each pixel draws from a disjoint stratum of
// the shared Sobol' sequence.
func sobolIntervalToIndex(logScale int, frame uint64, px, py int) uint64 {
	if logScale == 0 {
		return frame
	}
	return (frame << uint(2*logScale)) | (uint64(uint32(px))<<uint(logScale) | uint64(uint32(py)))
}

func (s *Sobol) sampleDimension(dim int) float32 {
	return sobolSample(uint32(s.sobolIndex), dim)
}

func (s *Sobol) Sample1D() float32 {
	if s.dimension >= NDimensions {
		s.dimension = 2
	}
	v := s.sampleDimension(s.dimension)
	s.dimension++
	return v
}

func (s *Sobol) Sample2D() (float32, float32) {
	if s.dimension+1 >= NDimensions {
		s.dimension = 2
	}
	u := s.sampleDimension(s.dimension)
	v := s.sampleDimension(s.dimension + 1)
	s.dimension += 2
	return u, v
}

func (s *Sobol) SamplePixel2D() (float32, float32) {
	u := s.sampleDimension(0)
	v := s.sampleDimension(1)
	return clampPixelDim(u, s.scale, s.pixelX), clampPixelDim(v, s.scale, s.pixelY)
}

func clampPixelDim(u float32, scale, pixel int) float32 {
	v := u*float32(scale) - float32(pixel)
	if v < 0 {
		v = 0
	}
	if v > floatOneMinusEpsilon {
		v = floatOneMinusEpsilon
	}
	return v
}

func (s *Sobol) Clone() Sampler {
	clone := *s
	return &clone
}
