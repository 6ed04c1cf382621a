// Package imageio writes the renderer's final HDR buffer to disk: a
// minimal uncompressed OpenEXR for the raw radiance values and a
// tonemapped sRGB PNG for quick viewing.
package imageio

// HDRImage is a flat width*height array of linear-light RGB radiance
// values, the renderer's internal currency between the render loop and
// the output encoders.
type HDRImage struct {
	Width, Height int
	Pixels        []float32 // RGB triples, row-major, len == Width*Height*3
}

// NewHDRImage allocates a zeroed image.
func NewHDRImage(width, height int) *HDRImage {
	return &HDRImage{Width: width, Height: height, Pixels: make([]float32, width*height*3)}
}

// Set writes the radiance at pixel (x, y).
func (img *HDRImage) Set(x, y int, r, g, b float32) {
	i := (y*img.Width + x) * 3
	img.Pixels[i] = r
	img.Pixels[i+1] = g
	img.Pixels[i+2] = b
}

// At returns the radiance at pixel (x, y).
func (img *HDRImage) At(x, y int) (r, g, b float32) {
	i := (y*img.Width + x) * 3
	return img.Pixels[i], img.Pixels[i+1], img.Pixels[i+2]
}
