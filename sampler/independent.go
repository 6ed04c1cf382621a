package sampler

import "math/rand"

// Independent is a plain PRNG-backed sampler satisfying the same
// StartPixelSample/Sample1D/Sample2D/SamplePixel2D/Clone interface as
// Sobol. It carries no stratification guarantees, but the integrators only
// depend on the interface, so it is a valid drop-in fallback and the
// sampler this package's tests reach for first.
type Independent struct {
	rng *rand.Rand
	seq uint64
}

func NewIndependent(seed int64) *Independent {
	return &Independent{rng: rand.New(rand.NewSource(seed))}
}

func (s *Independent) StartPixelSample(px, py, sampleIndex int) {
	// Re-seed deterministically per pixel-sample so repeated renders of
	// the same scene and spp are reproducible.
	s.seq = uint64(px)*2654435761 ^ uint64(py)*40503 ^ uint64(sampleIndex)*2246822519
	s.rng = rand.New(rand.NewSource(int64(s.seq)))
}

func (s *Independent) Sample1D() float32 {
	return s.rng.Float32()
}

func (s *Independent) Sample2D() (float32, float32) {
	return s.rng.Float32(), s.rng.Float32()
}

func (s *Independent) SamplePixel2D() (float32, float32) {
	return s.rng.Float32(), s.rng.Float32()
}

func (s *Independent) Clone() Sampler {
	return NewIndependent(int64(s.seq) + 1)
}
