// Package render owns the tile-parallel render loop: a worker pool pulls
// tiles from a filter.TileGenerator, draws (pixel, sample) pairs through
// an integrator, and accumulates the result into a shared ImageBlock.
package render

import (
	"fmt"
	"sync"

	"pathtracer/camera"
	"pathtracer/filter"
	"pathtracer/geom"
	"pathtracer/imageio"
	"pathtracer/integrator"
	"pathtracer/rendererror"
	"pathtracer/rlog"
	"pathtracer/sampler"
	"pathtracer/scene"
)

const (
	defaultTileSize  = 32
	filterRadius     = 2
	filterStddev     = 0.5
	defaultPathDepth = 16
	defaultBDPTDepth = 5
)

// SampleEstimator is satisfied by integrator.Path, integrator.Geometry,
// and integrator.BaseColor: any integrator returning a single per-sample
// radiance estimate with no splat contribution.
type SampleEstimator interface {
	Li(ray geom.Ray, smp sampler.Sampler) geom.Vec3
}

// Config holds the CLI-resolved render settings.
type Config struct {
	Threads  int
	SPP      int
	UseBDPT  bool
	MaxDepth int // 0 selects the integrator's own default
}

// Result is the render's final buffers, ready for imageio encoding.
type Result struct {
	Beauty *imageio.HDRImage
	Albedo *imageio.HDRImage
	Normal *imageio.HDRImage
}

func validate(cfg Config) error {
	if cfg.Threads <= 0 {
		return rendererror.Wrap(rendererror.ConfigInvalid, "render.Run",
			fmt.Errorf("threads must be positive, got %d", cfg.Threads))
	}
	if cfg.SPP <= 0 {
		return rendererror.Wrap(rendererror.ConfigInvalid, "render.Run",
			fmt.Errorf("spp must be positive, got %d", cfg.SPP))
	}
	return nil
}

// Run renders sc through cam with cfg's settings, dispatching tile work
// across cfg.Threads workers, then renders the albedo/normal debug AOVs
// with a single sample per pixel each.
func Run(sc *scene.Scene, cam *camera.Camera, cfg Config) (*Result, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	depth := cfg.MaxDepth
	var beauty *filter.ImageBlock
	if cfg.UseBDPT {
		if depth == 0 {
			depth = defaultBDPTDepth
		}
		rlog.Info("render start", "integrator", "bdpt", "spp", cfg.SPP, "threads", cfg.Threads, "maxDepth", depth)
		b := integrator.NewBDPT(sc, cam, depth)
		beauty = runBDPT(cam, b, cfg)
	} else {
		if depth == 0 {
			depth = defaultPathDepth
		}
		rlog.Info("render start", "integrator", "path", "spp", cfg.SPP, "threads", cfg.Threads, "maxDepth", depth)
		p := integrator.NewPath(sc, depth)
		beauty = runSamples(cam, p, cfg.SPP, cfg.Threads)
	}
	rlog.Info("render finished")

	albedoBlock := runSamples(cam, integrator.NewBaseColor(sc), 1, cfg.Threads)
	normalBlock := runSamples(cam, integrator.NewGeometry(sc), 1, cfg.Threads)

	return &Result{
		Beauty: resolve(beauty, cam.Width, cam.Height, cfg.SPP),
		Albedo: resolve(albedoBlock, cam.Width, cam.Height, 1),
		Normal: resolve(normalBlock, cam.Width, cam.Height, 1),
	}, nil
}

// resolve reads every pixel of block into a flat HDRImage, dividing the
// splat accumulator by spp exactly once (per filter.ImageBlock.ResolvePixel's contract).
func resolve(block *filter.ImageBlock, width, height, spp int) *imageio.HDRImage {
	img := imageio.NewHDRImage(width, height)
	splatScale := float32(1) / float32(spp)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b := block.ResolvePixel(x, y, splatScale)
			img.Set(x, y, r, g, b)
		}
	}
	return img
}

// runSamples dispatches a tile-parallel render for any SampleEstimator
// (no splats): each worker owns a tile's local ImageBlock, unsynchronized
// writes within it, merged into the shared block under its mutex.
func runSamples(cam *camera.Camera, estimator SampleEstimator, spp, threads int) *filter.ImageBlock {
	f := filter.NewGaussian(filterRadius, filterStddev)
	shared := filter.NewImageBlock(cam.Width, cam.Height, f)
	gen := filter.NewTileGenerator(cam.Width, cam.Height, defaultTileSize)
	baseSampler := sampler.NewSobol(cam.Width, cam.Height)

	var wg sync.WaitGroup
	for w := 0; w < threads; w++ {
		wg.Add(1)
		workerSampler := baseSampler.Clone()
		go func() {
			defer wg.Done()
			for {
				tile, ok := gen.Next()
				if !ok {
					return
				}
				local := filter.NewImageBlock(tile.Width, tile.Height, f)
				local.SetOffset(tile.X, tile.Y)
				for py := 0; py < tile.Height; py++ {
					for px := 0; px < tile.Width; px++ {
						gx, gy := tile.X+px, tile.Y+py
						for s := 0; s < spp; s++ {
							workerSampler.StartPixelSample(gx, gy, s)
							jx, jy := workerSampler.SamplePixel2D()
							screen := geom.Vec2{X: float32(gx) + jx, Y: float32(gy) + jy}
							ray := cam.SampleRay(screen)
							L := estimator.Li(ray, workerSampler)
							local.Add(float32(gx)+jx, float32(gy)+jy, L.X, L.Y, L.Z)
						}
					}
				}
				shared.Merge(local)
			}
		}()
	}
	wg.Wait()
	return shared
}

// runBDPT dispatches a tile-parallel BDPT render: same tile/worker shape
// as runSamples, but every sample may also contribute splats, which are
// accumulated into the shared block directly (AddSplat is its own
// mutex-guarded path since a splat's pixel can land in any tile).
func runBDPT(cam *camera.Camera, b *integrator.BDPT, cfg Config) *filter.ImageBlock {
	f := filter.NewGaussian(filterRadius, filterStddev)
	shared := filter.NewImageBlock(cam.Width, cam.Height, f)
	gen := filter.NewTileGenerator(cam.Width, cam.Height, defaultTileSize)
	baseSampler := sampler.NewSobol(cam.Width, cam.Height)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Threads; w++ {
		wg.Add(1)
		workerSampler := baseSampler.Clone()
		go func() {
			defer wg.Done()
			for {
				tile, ok := gen.Next()
				if !ok {
					return
				}
				local := filter.NewImageBlock(tile.Width, tile.Height, f)
				local.SetOffset(tile.X, tile.Y)
				for py := 0; py < tile.Height; py++ {
					for px := 0; px < tile.Width; px++ {
						gx, gy := tile.X+px, tile.Y+py
						for s := 0; s < cfg.SPP; s++ {
							workerSampler.StartPixelSample(gx, gy, s)
							jx, jy := workerSampler.SamplePixel2D()
							screen := geom.Vec2{X: float32(gx) + jx, Y: float32(gy) + jy}
							ray := cam.SampleRay(screen)
							L, splats := b.Sample(ray, workerSampler)
							local.Add(float32(gx)+jx, float32(gy)+jy, L.X, L.Y, L.Z)
							for _, sp := range splats {
								shared.AddSplat(sp.X, sp.Y, sp.L.X, sp.L.Y, sp.L.Z)
							}
						}
					}
				}
				shared.Merge(local)
			}
		}()
	}
	wg.Wait()
	return shared
}
