package imageio

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func testImage() *HDRImage {
	img := NewHDRImage(4, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, float32(x)*0.5, float32(y)*0.25, 1.0)
		}
	}
	return img
}

func TestWritePNGProducesDecodableImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := WritePNG(path, testImage()); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("decoded size = %dx%d, want 4x3", b.Dx(), b.Dy())
	}
}

func TestToneMapReinhardCompressesHighRadiance(t *testing.T) {
	if got := reinhard(1e6); got >= 1 {
		t.Errorf("expected Reinhard to compress large radiance below 1, got %v", got)
	}
	if got := reinhard(0); got != 0 {
		t.Errorf("expected zero radiance to map to zero, got %v", got)
	}
}

func TestWriteEXRHeaderMagicAndVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.exr")
	if err := WriteEXR(path, testImage()); err != nil {
		t.Fatalf("WriteEXR: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) < 8 {
		t.Fatalf("file too short: %d bytes", len(data))
	}
	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != 0x01312f76 {
		t.Errorf("magic = %#x, want 0x01312f76", magic)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}
}

func TestFloat32ToHalfRoundTripsSimpleValues(t *testing.T) {
	cases := []float32{0, 1, -1, 0.5, 2, 15.5}
	for _, v := range cases {
		h := float32ToHalf(v)
		got := halfToFloat32(h)
		if math.Abs(float64(got-v)) > 1e-3 {
			t.Errorf("float32ToHalf(%v) round-trip = %v", v, got)
		}
	}
}

// halfToFloat32 decodes a binary16 value, used only to verify
// float32ToHalf's encoding in tests.
func halfToFloat32(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := (h >> 10) & 0x1f
	mant := uint32(h & 0x3ff)

	if exp == 0 {
		if mant == 0 {
			return math.Float32frombits(sign)
		}
		for mant&0x400 == 0 {
			mant <<= 1
			exp--
		}
		exp++
		mant &= 0x3ff
	} else if exp == 0x1f {
		if mant == 0 {
			return math.Float32frombits(sign | 0x7f800000)
		}
		return math.Float32frombits(sign | 0x7f800000 | (mant << 13))
	}
	exp = exp - 15 + 127
	bits := sign | (uint32(exp) << 23) | (mant << 13)
	return math.Float32frombits(bits)
}

func TestBox2iEncodesFourInt32s(t *testing.T) {
	b := box2i(0, 0, 9, 19)
	if len(b) != 16 {
		t.Fatalf("expected 16 bytes, got %d", len(b))
	}
	var xMax int32
	buf := bytes.NewReader(b[8:12])
	binary.Read(buf, binary.LittleEndian, &xMax)
	if xMax != 9 {
		t.Errorf("xMax = %d, want 9", xMax)
	}
}
