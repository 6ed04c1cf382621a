package filter

import "sync"

// BorderSize is the number of extra accumulator pixels padded around each
// block to absorb contributions from samples whose filter footprint spills
// past the block's visible edge.
const BorderSize = 2

// cell holds one (r, g, b, w) accumulator.
type cell struct {
	r, g, b, w float32
}

// ImageBlock is a (size+2*border)x(size+2*border) grid of filtered-sample
// accumulators plus a same-shaped splat buffer. Sample writes (Add) are
// unsynchronized — the render loop's contract is that each tile is owned
// by exactly one worker — while splat writes (AddSplat) take mu, because a
// splat's projected pixel can land in any block, including ones owned by
// other workers.
type ImageBlock struct {
	offsetX, offsetY int
	width, height    int
	filter           *Gaussian

	cells  []cell // (width+2*border) * (height+2*border)
	stride int

	mu     sync.Mutex
	splats []cell
}

func NewImageBlock(width, height int, f *Gaussian) *ImageBlock {
	stride := width + 2*BorderSize
	rows := height + 2*BorderSize
	return &ImageBlock{
		width:  width,
		height: height,
		filter: f,
		stride: stride,
		cells:  make([]cell, stride*rows),
		splats: make([]cell, stride*rows),
	}
}

func (b *ImageBlock) SetOffset(x, y int) { b.offsetX, b.offsetY = x, y }
func (b *ImageBlock) Offset() (int, int) { return b.offsetX, b.offsetY }
func (b *ImageBlock) Size() (int, int)   { return b.width, b.height }

func (b *ImageBlock) index(x, y int) int {
	return (y+BorderSize)*b.stride + (x + BorderSize)
}

// Add accumulates a filtered camera sample at global-pixel position
// (px, py) (may be fractional) with color value v. Not safe for concurrent
// callers on the same block — each tile has exactly one writer.
func (b *ImageBlock) Add(px, py float32, r, g, bl float32) {
	lx := px - float32(b.offsetX)
	ly := py - float32(b.offsetY)

	radius := b.filter.Radius()
	xmin := clampInt(int(lx-radius+0.5), -BorderSize, b.width+BorderSize-1)
	xmax := clampInt(int(lx+radius+0.5), -BorderSize, b.width+BorderSize-1)
	ymin := clampInt(int(ly-radius+0.5), -BorderSize, b.height+BorderSize-1)
	ymax := clampInt(int(ly+radius+0.5), -BorderSize, b.height+BorderSize-1)

	for y := ymin; y <= ymax; y++ {
		wy := b.filter.Eval(float32(y) + 0.5 - ly)
		if wy == 0 {
			continue
		}
		for x := xmin; x <= xmax; x++ {
			wx := b.filter.Eval(float32(x) + 0.5 - lx)
			if wx == 0 {
				continue
			}
			w := wx * wy
			c := &b.cells[b.index(x, y)]
			c.r += r * w
			c.g += g * w
			c.b += bl * w
			c.w += w
		}
	}
}

// AddSplat accumulates a BDPT camera-subpath (t=1) contribution at global
// pixel (px, py). Splats may land in any block, so writes are mutex-guarded.
func (b *ImageBlock) AddSplat(px, py float32, r, g, bl float32) {
	x := int(px) - b.offsetX
	y := int(py) - b.offsetY
	if x < -BorderSize || x >= b.width+BorderSize || y < -BorderSize || y >= b.height+BorderSize {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c := &b.splats[b.index(x, y)]
	c.r += r
	c.g += g
	c.b += bl
}

// Merge folds the contents of a (smaller, tile-local) block into this
// (larger, final) block at the tile's recorded offset. Used to fold a
// completed worker tile into the global image; guarded by mu since
// multiple workers merge concurrently.
func (b *ImageBlock) Merge(src *ImageBlock) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for y := -BorderSize; y < src.height+BorderSize; y++ {
		gy := src.offsetY + y
		dy := gy - b.offsetY
		if dy < -BorderSize || dy >= b.height+BorderSize {
			continue
		}
		for x := -BorderSize; x < src.width+BorderSize; x++ {
			gx := src.offsetX + x
			dx := gx - b.offsetX
			if dx < -BorderSize || dx >= b.width+BorderSize {
				continue
			}
			sc := src.cells[src.index(x, y)]
			dc := &b.cells[b.index(dx, dy)]
			dc.r += sc.r
			dc.g += sc.g
			dc.b += sc.b
			dc.w += sc.w

			ss := src.splats[src.index(x, y)]
			ds := &b.splats[b.index(dx, dy)]
			ds.r += ss.r
			ds.g += ss.g
			ds.b += ss.b
		}
	}
}

// ResolvePixel returns the final filtered color for global pixel (px, py):
// the normalized sample accumulator plus the splat accumulator multiplied
// by splatScale. BDPT splats are summed unnormalized over every sample, so
// the render loop passes splatScale = 1/spp at image finalize time and
// this is the one place the splat sum is scaled.
func (b *ImageBlock) ResolvePixel(px, py int, splatScale float32) (r, g, bl float32) {
	x := px - b.offsetX
	y := py - b.offsetY
	c := b.cells[b.index(x, y)]
	s := b.splats[b.index(x, y)]
	if c.w > 0 {
		r = c.r / c.w
		g = c.g / c.w
		bl = c.b / c.w
	}
	r += s.r * splatScale
	g += s.g * splatScale
	bl += s.b * splatScale
	return
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
