package imageio

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"

	"pathtracer/rendererror"
)

// WriteEXR encodes img as a minimal uncompressed single-part scanline
// OpenEXR file: magic, version, a fixed attribute set (channels, compression
// "none", dataWindow/displayWindow, lineOrder, pixelAspectRatio,
// screenWindowCenter/Width), the scanline offset table, then each
// scanline as (y int32, packedSize int32, then the row's half-float B
// values, G values and R values, one channel after another).
// No compression, tiling, multipart or deep-data support — those are
// outside what this renderer ever produces.
func WriteEXR(path string, img *HDRImage) error {
	f, err := os.Create(path)
	if err != nil {
		return rendererror.Wrap(rendererror.InputMalformed, "imageio.WriteEXR: create", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writeHeader(&buf, img.Width, img.Height)

	w, h := img.Width, img.Height
	bytesPerChannel := 2
	rowBytes := w * 3 * bytesPerChannel
	scanlineBytes := 4 + 4 + rowBytes // y + size + pixel data

	headerEnd := buf.Len()
	offsetTableBytes := h * 8
	firstScanlineOffset := int64(headerEnd) + int64(offsetTableBytes)

	offsets := make([]int64, h)
	for y := 0; y < h; y++ {
		offsets[y] = firstScanlineOffset + int64(y)*int64(scanlineBytes)
	}
	for _, off := range offsets {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(off))
		buf.Write(b[:])
	}

	row := make([]byte, rowBytes)
	for y := 0; y < h; y++ {
		var head [8]byte
		binary.LittleEndian.PutUint32(head[0:4], uint32(y))
		binary.LittleEndian.PutUint32(head[4:8], uint32(rowBytes))
		buf.Write(head[:])

		for x := 0; x < w; x++ {
			r, g, b := img.At(x, y)
			putHalf(row, x*2, b)
			putHalf(row, (w+x)*2, g)
			putHalf(row, (2*w+x)*2, r)
		}
		buf.Write(row)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return rendererror.Wrap(rendererror.InputMalformed, "imageio.WriteEXR: write", err)
	}
	return nil
}

func writeHeader(buf *bytes.Buffer, width, height int) {
	binary.Write(buf, binary.LittleEndian, uint32(0x01312f76)) // magic
	binary.Write(buf, binary.LittleEndian, uint32(2))          // version 2, no flags

	writeAttr(buf, "channels", "chlist", channelListBytes())
	writeAttr(buf, "compression", "compression", []byte{0}) // NO_COMPRESSION
	writeAttr(buf, "dataWindow", "box2i", box2i(0, 0, width-1, height-1))
	writeAttr(buf, "displayWindow", "box2i", box2i(0, 0, width-1, height-1))
	writeAttr(buf, "lineOrder", "lineOrder", []byte{0}) // INCREASING_Y
	writeAttr(buf, "pixelAspectRatio", "float", float32Bytes(1))
	writeAttr(buf, "screenWindowCenter", "v2f", append(float32Bytes(0), float32Bytes(0)...))
	writeAttr(buf, "screenWindowWidth", "float", float32Bytes(1))
	buf.WriteByte(0) // end of header
}

func writeAttr(buf *bytes.Buffer, name, typ string, value []byte) {
	buf.WriteString(name)
	buf.WriteByte(0)
	buf.WriteString(typ)
	buf.WriteByte(0)
	binary.Write(buf, binary.LittleEndian, uint32(len(value)))
	buf.Write(value)
}

// channelListBytes encodes the three half-float channels EXR readers
// expect in alphabetical order (B, G, R), each:
// name\0, pixelType(int32=1 half), pLinear+reserved(4 bytes), xSampling, ySampling.
func channelListBytes() []byte {
	var b bytes.Buffer
	for _, name := range []string{"B", "G", "R"} {
		b.WriteString(name)
		b.WriteByte(0)
		binary.Write(&b, binary.LittleEndian, uint32(1)) // half
		b.Write([]byte{0, 0, 0, 0})                      // pLinear, reserved
		binary.Write(&b, binary.LittleEndian, uint32(1)) // xSampling
		binary.Write(&b, binary.LittleEndian, uint32(1)) // ySampling
	}
	b.WriteByte(0) // end of channel list
	return b.Bytes()
}

func box2i(xMin, yMin, xMax, yMax int) []byte {
	var b bytes.Buffer
	binary.Write(&b, binary.LittleEndian, int32(xMin))
	binary.Write(&b, binary.LittleEndian, int32(yMin))
	binary.Write(&b, binary.LittleEndian, int32(xMax))
	binary.Write(&b, binary.LittleEndian, int32(yMax))
	return b.Bytes()
}

func float32Bytes(v float32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	return b[:]
}

// putHalf writes a IEEE-754 binary16 float at byte offset off into dst.
func putHalf(dst []byte, off int, v float32) {
	binary.LittleEndian.PutUint16(dst[off:], float32ToHalf(v))
}

func float32ToHalf(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16((bits >> 16) & 0x8000)
	exp := int32((bits>>23)&0xff) - 127 + 15
	mant := bits & 0x7fffff

	switch {
	case exp <= 0:
		if exp < -10 {
			return sign
		}
		mant |= 0x800000
		shift := uint(14 - exp)
		return sign | uint16(mant>>shift)
	case exp >= 0x1f:
		if (bits>>23)&0xff == 0xff {
			if mant != 0 {
				return sign | 0x7e00
			}
			return sign | 0x7c00
		}
		return sign | 0x7c00
	default:
		return sign | uint16(exp)<<10 | uint16(mant>>13)
	}
}
