// Package camera implements the renderer's pinhole camera model: a
// perspective projection cached as a pair of world<->camera and
// camera<->raster matrices, rebuilt lazily whenever the camera's pose
// changes.
package camera

import (
	"math"

	"pathtracer/geom"
)

const (
	near    = 0.01
	far     = 10000.0
	sampleZ = 0.5
)

// Camera is a pinhole perspective camera. Eye/LookAt/Up and the
// resolution/FOV fully determine its matrices; mutate them through the
// setters below so the cached matrices get invalidated.
type Camera struct {
	Width, Height int
	FovY          float32 // degrees
	Eye, LookAt, Up geom.Vec3

	worldToCamera geom.Mat4
	cameraToWorld geom.Mat4
	cameraToSample geom.Mat4
	sampleToCamera geom.Mat4
	sampleArea    float32
	projNume      float32
	dirty         bool
}

func New(width, height int, fovY float32, eye, lookAt, up geom.Vec3) *Camera {
	c := &Camera{
		Width: width, Height: height, FovY: fovY,
		Eye: eye, LookAt: lookAt, Up: up,
		dirty: true,
	}
	c.update()
	return c
}

func (c *Camera) SetPose(eye, lookAt, up geom.Vec3) {
	c.Eye, c.LookAt, c.Up = eye, lookAt, up
	c.dirty = true
}

func deg2rad(deg float32) float32 { return deg * (math.Pi / 180) }

func (c *Camera) update() {
	// The projection below looks down +Z in camera space, while
	// Mat4LookAt points its Z axis from the target back toward the eye;
	// mirroring the target through the eye makes camera +Z the view
	// direction.
	c.worldToCamera = geom.Mat4LookAt(c.Eye, c.Eye.Sub(c.LookAt.Sub(c.Eye)), c.Up)
	c.cameraToWorld = c.worldToCamera.Inverse()

	aspect := float32(c.Width) / float32(c.Height)
	fovx := c.FovY * aspect
	cotx := 1 / float32(math.Tan(float64(deg2rad(0.5*fovx))))
	coty := 1 / float32(math.Tan(float64(deg2rad(0.5*c.FovY))))

	proj := geom.Mat4{
		{cotx, 0, 0, 0},
		{0, coty, 0, 0},
		{0, 0, far / (far - near), 1},
		{0, 0, -(far * near) / (far - near), 0},
	}

	w, h := float32(c.Width), float32(c.Height)
	ndcToPixel := geom.Mat4{
		{-0.5 * w, 0, 0, 0},
		{0, -0.5 * h, 0, 0},
		{0, 0, 1, 0},
		{0.5 * w, 0.5 * h, 0, 1},
	}

	c.cameraToSample = proj.Mul(ndcToPixel)
	c.sampleToCamera = c.cameraToSample.Inverse()

	pMin := c.sampleToCamera.MulVec3(geom.Vec3{X: 0, Y: 0, Z: sampleZ})
	pMin = pMin.Mul(1 / pMin.Z)
	pMax := c.sampleToCamera.MulVec3(geom.Vec3{X: w, Y: h, Z: sampleZ})
	pMax = pMax.Mul(1 / pMax.Z)
	c.sampleArea = absf32((pMax.X - pMin.X) * (pMax.Y - pMin.Y))

	tmp := c.sampleToCamera.MulVec3(geom.Vec3{X: 0.5 * w, Y: 0.5 * h, Z: sampleZ})
	c.projNume = 1 / tmp.Z

	c.dirty = false
}

func (c *Camera) ensureFresh() {
	if c.dirty {
		c.update()
	}
}

// SampleRay spawns a camera ray through raster-space point screenPos
// (pixel coordinates, (0,0) at the top-left corner of the image).
func (c *Camera) SampleRay(screenPos geom.Vec2) geom.Ray {
	c.ensureFresh()
	d := c.sampleToCamera.MulVec3(geom.Vec3{X: screenPos.X, Y: screenPos.Y, Z: sampleZ})
	d = d.Normalize()
	proj := c.projNume / d.Z
	d = c.cameraToWorld.MulDir(d)
	return geom.NewRayBounded(c.Eye, d, near*proj, far*proj)
}

// Project maps a world-space point to raster space, reporting false if it
// falls outside the image or behind the near/far planes.
func (c *Camera) Project(p geom.Vec3) (geom.Vec2, bool) {
	c.ensureFresh()
	pCam := c.worldToCamera.MulVec3(p)
	pNdc := c.cameraToSample.MulVec3(pCam)
	if pNdc.Z < 0 || pNdc.Z > 1 || pNdc.X < 0 || pNdc.X > float32(c.Width) || pNdc.Y < 0 || pNdc.Y > float32(c.Height) {
		return geom.Vec2{}, false
	}
	return geom.Vec2{X: pNdc.X, Y: pNdc.Y}, true
}

// Le is the camera's importance function W_e (PBRT eq. 16.4): the
// importance carried by a ray leaving the lens in direction w.
func (c *Camera) Le(w geom.Vec3) geom.Vec3 {
	c.ensureFresh()
	forward := c.LookAt.Sub(c.Eye).Normalize()
	cosTheta := forward.Dot(w)
	if cosTheta <= 0 {
		return geom.Vec3Zero
	}
	cosTheta2 := cosTheta * cosTheta
	v := 1 / (c.sampleArea * cosTheta2 * cosTheta2)
	return geom.Vec3{X: v, Y: v, Z: v}
}

// PdfLe returns the directional pdf of the camera ray ray, used by the
// bidirectional integrator when connecting a light subpath vertex
// directly to the camera.
func (c *Camera) PdfLe(ray geom.Ray) float32 {
	c.ensureFresh()
	forward := c.LookAt.Sub(c.Eye).Normalize()
	cosTheta := forward.Dot(ray.Dir)
	if cosTheta <= 0 {
		return 0
	}
	return 1 / (c.sampleArea * cosTheta * cosTheta * cosTheta)
}

// LiSample is the importance-sampling counterpart of an area light's
// LiSample: the camera is treated as a point light with a directional
// response function when connecting a path vertex back to the lens.
type LiSample struct {
	We     geom.Vec3
	Wi     geom.Vec3
	P      geom.Vec3
	PdfDir float32
	Raster geom.Vec2
	Valid  bool
}

// SampleLi samples the importance arriving at surfP from the camera's
// lens point, used by BDPT's t=1 connection strategy.
func (c *Camera) SampleLi(surfP geom.Vec3) LiSample {
	c.ensureFresh()
	wi := c.Eye.Sub(surfP)
	dist := wi.Length()
	if dist <= 0 {
		return LiSample{}
	}
	wi = wi.Mul(1 / dist)

	forward := c.LookAt.Sub(c.Eye).Normalize()
	cosTheta := geom.AbsDot(forward, wi)
	if cosTheta <= 0 {
		return LiSample{}
	}
	pdfDir := dist * dist / cosTheta

	raster, onscreen := c.Project(surfP)
	we := c.Le(wi.Negate())
	return LiSample{We: we, Wi: wi, P: c.Eye, PdfDir: pdfDir, Raster: raster, Valid: onscreen && !we.IsBlack()}
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
