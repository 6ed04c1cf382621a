package imageio

import (
	stdimage "image"
	"image/color"
	"image/png"
	"math"
	"os"

	"pathtracer/rendererror"
)

// Tonemap maps an HDRImage's linear radiance to display-referred sRGB
// via Reinhard compression (r/(1+r)) followed by the sRGB gamma curve —
// a thin, uninteresting operator relative to the path tracer itself, so
// no tone-mapping operator selection or exposure control is exposed.
func Tonemap(img *HDRImage) *stdimage.RGBA {
	out := stdimage.NewRGBA(stdimage.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b := img.At(x, y)
			out.SetRGBA(x, y, color.RGBA{
				R: toSRGB8(reinhard(r)),
				G: toSRGB8(reinhard(g)),
				B: toSRGB8(reinhard(b)),
				A: 255,
			})
		}
	}
	return out
}

func reinhard(v float32) float32 {
	if v < 0 {
		v = 0
	}
	return v / (1 + v)
}

func toSRGB8(linear float32) uint8 {
	var s float32
	if linear <= 0.0031308 {
		s = 12.92 * linear
	} else {
		s = 1.055*powf(linear, 1.0/2.4) - 0.055
	}
	if s < 0 {
		s = 0
	}
	if s > 1 {
		s = 1
	}
	return uint8(s*255 + 0.5)
}

func powf(base, exp float32) float32 {
	if base <= 0 {
		return 0
	}
	return float32(math.Pow(float64(base), float64(exp)))
}

// WritePNG tonemaps img and encodes it as an sRGB PNG at path.
func WritePNG(path string, img *HDRImage) error {
	f, err := os.Create(path)
	if err != nil {
		return rendererror.Wrap(rendererror.InputMalformed, "imageio.WritePNG: create", err)
	}
	defer f.Close()

	if err := png.Encode(f, Tonemap(img)); err != nil {
		return rendererror.Wrap(rendererror.InputMalformed, "imageio.WritePNG: encode", err)
	}
	return nil
}
