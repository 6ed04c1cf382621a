package filter

import "sync"

type direction int

const (
	dirRight direction = iota
	dirDown
	dirLeft
	dirUp
)

// Tile describes one block of work handed to a render worker: its offset
// and size in the final image.
type Tile struct {
	X, Y          int
	Width, Height int
}

// TileGenerator hands out tiles in a spiral from the image center
// outward, so that a render which is interrupted partway through has
// already covered a representative cross-section of the frame. next() is
// serialized by mu so many workers can pull concurrently.
type TileGenerator struct {
	mu sync.Mutex

	imageW, imageH int
	tileSize       int
	numBlocksX     int
	numBlocksY     int
	blocksLeft     int
	blockX, blockY int
	dir            direction
	stepsLeft      int
	numSteps       int
}

func NewTileGenerator(imageW, imageH, tileSize int) *TileGenerator {
	numBlocksX := ceilDiv(imageW, tileSize)
	numBlocksY := ceilDiv(imageH, tileSize)
	g := &TileGenerator{
		imageW:     imageW,
		imageH:     imageH,
		tileSize:   tileSize,
		numBlocksX: numBlocksX,
		numBlocksY: numBlocksY,
		blocksLeft: numBlocksX * numBlocksY,
		blockX:     numBlocksX / 2,
		blockY:     numBlocksY / 2,
		dir:        dirRight,
		stepsLeft:  1,
		numSteps:   1,
	}
	return g
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Next returns the next tile to render, or ok=false once every tile has
// been handed out.
func (g *TileGenerator) Next() (Tile, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.blocksLeft == 0 {
		return Tile{}, false
	}

	x := g.blockX * g.tileSize
	y := g.blockY * g.tileSize
	w := minInt(g.tileSize, g.imageW-x)
	h := minInt(g.tileSize, g.imageH-y)
	tile := Tile{X: x, Y: y, Width: w, Height: h}

	g.blocksLeft--
	if g.blocksLeft == 0 {
		return tile, true
	}

	for {
		switch g.dir {
		case dirRight:
			g.blockX++
		case dirDown:
			g.blockY++
		case dirLeft:
			g.blockX--
		case dirUp:
			g.blockY--
		}

		g.stepsLeft--
		if g.stepsLeft == 0 {
			g.dir = (g.dir + 1) % 4
			if g.dir == dirLeft || g.dir == dirRight {
				g.numSteps++
			}
			g.stepsLeft = g.numSteps
		}

		if g.blockX >= 0 && g.blockX < g.numBlocksX && g.blockY >= 0 && g.blockY < g.numBlocksY {
			break
		}
	}

	return tile, true
}

// TotalTiles returns the total number of tiles this generator will yield.
func (g *TileGenerator) TotalTiles() int {
	return g.numBlocksX * g.numBlocksY
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
