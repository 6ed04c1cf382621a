package sampler

import "testing"

func TestSobolSamplesInUnitRange(t *testing.T) {
	s := NewSobol(64, 64)
	for py := 0; py < 4; py++ {
		for px := 0; px < 4; px++ {
			s.StartPixelSample(px, py, 0)
			for i := 0; i < 8; i++ {
				v := s.Sample1D()
				if v < 0 || v >= 1 {
					t.Fatalf("Sample1D out of range: %v", v)
				}
				u, v2 := s.Sample2D()
				if u < 0 || u >= 1 || v2 < 0 || v2 >= 1 {
					t.Fatalf("Sample2D out of range: %v, %v", u, v2)
				}
			}
		}
	}
}

func TestSobolDeterministicPerPixelSample(t *testing.T) {
	s := NewSobol(32, 32)
	s.StartPixelSample(5, 7, 3)
	a := s.Sample1D()

	s2 := NewSobol(32, 32)
	s2.StartPixelSample(5, 7, 3)
	b := s2.Sample1D()

	if a != b {
		t.Errorf("expected deterministic sample, got %v vs %v", a, b)
	}
}

func TestSobolDimensionWrap(t *testing.T) {
	s := NewSobol(16, 16)
	s.StartPixelSample(0, 0, 1)
	for i := 0; i < NDimensions*3; i++ {
		v := s.Sample1D()
		if v < 0 || v >= 1 {
			t.Fatalf("Sample1D out of range after wrap at iteration %d: %v", i, v)
		}
	}
}

func TestSobolClonePreservesState(t *testing.T) {
	s := NewSobol(16, 16)
	s.StartPixelSample(2, 2, 0)
	_ = s.Sample1D()
	clone := s.Clone()

	a := s.Sample1D()
	b := clone.Sample1D()
	if a != b {
		t.Errorf("clone should continue from the same stream state: %v vs %v", a, b)
	}
}

func TestIndependentSamplesInUnitRange(t *testing.T) {
	s := NewIndependent(42)
	s.StartPixelSample(1, 1, 0)
	for i := 0; i < 64; i++ {
		v := s.Sample1D()
		if v < 0 || v >= 1 {
			t.Fatalf("Sample1D out of range: %v", v)
		}
		u, v2 := s.SamplePixel2D()
		if u < 0 || u >= 1 || v2 < 0 || v2 >= 1 {
			t.Fatalf("SamplePixel2D out of range: %v, %v", u, v2)
		}
	}
}

func BenchmarkSobolSample2D(b *testing.B) {
	s := NewSobol(512, 512)
	s.StartPixelSample(100, 100, 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Sample2D()
	}
}
