package integrator

import (
	"math"

	"pathtracer/camera"
	"pathtracer/geom"
	"pathtracer/sampler"
	"pathtracer/scene"
)

const piF32 = float32(math.Pi)

func sqrtf32(v float32) float32 { return float32(math.Sqrt(float64(v))) }

type vertexKind int

const (
	vertexCamera vertexKind = iota
	vertexLight
	vertexSurface
)

// vertex is one node of a BDPT subpath: a camera/light endpoint or a
// surface hit, carrying accumulated throughput and the area-measure
// densities needed for the MIS weight's hypothetical-strategy sum.
type vertex struct {
	Kind       vertexKind
	P, N       geom.Vec3
	Beta       geom.Vec3
	PdfAreaFwd float32
	PdfAreaRev float32
	Wo         geom.Vec3 // direction back toward the previous vertex on this subpath
	Mat        *scene.Material
	Light      *scene.AreaLight // set on the light endpoint, and on surface vertices that happen to emit
	Its        scene.Intersection
}

// Splat is an out-of-band contribution routed to an arbitrary raster
// position rather than the pixel currently being estimated — produced by
// t=1 (light-subpath-to-camera) connection strategies.
type Splat struct {
	X, Y float32
	L    geom.Vec3
}

// BDPT is the bidirectional path tracer: it builds a camera subpath and a
// light subpath independently, then sums every valid (s,t) connection
// strategy, each weighted by the power heuristic over every other
// strategy that could have produced a path of the same total length.
type BDPT struct {
	Scene    *scene.Scene
	Camera   *camera.Camera
	MaxDepth int
}

func NewBDPT(sc *scene.Scene, cam *camera.Camera, maxDepth int) *BDPT {
	return &BDPT{Scene: sc, Camera: cam, MaxDepth: maxDepth}
}

func convertPdf(cur, next vertex, pdfDir float32) float32 {
	d := next.P.Sub(cur.P)
	dist2 := d.LengthSqr()
	if dist2 <= 0 {
		return 0
	}
	invDist2 := 1 / dist2
	pdf := pdfDir
	if next.Kind == vertexSurface {
		wn := d.Mul(sqrtf32(invDist2))
		pdf *= geom.AbsDot(wn, next.N)
	}
	return pdf * invDist2
}

// lightPdfAt is the area-measure density of the light at cur generating
// a ray toward to, under its cosine-weighted emission profile.
func lightPdfAt(cur, to vertex) float32 {
	if cur.Light == nil {
		return 0
	}
	w := to.P.Sub(cur.P)
	d2 := w.LengthSqr()
	if d2 <= 0 {
		return 0
	}
	invD2 := 1 / d2
	w = w.Mul(sqrtf32(invD2))
	cosTheta := w.Dot(cur.N)
	if cosTheta <= 0 {
		return 0
	}
	pdf := (cosTheta / piF32) * invD2
	if to.Kind == vertexSurface {
		pdf *= geom.AbsDot(to.N, w)
	}
	return pdf
}

func (b *BDPT) lightOriginPdf(v vertex) float32 {
	if v.Light == nil {
		return 0
	}
	return v.Light.Shape.Pdf() * b.Scene.Lights.Pdf(v.Light)
}

// vertexPdf returns the area-measure density of sampling next from cur,
// given the vertex (if any) that preceded cur on its own subpath.
func (b *BDPT) vertexPdf(cur vertex, prev *vertex, next vertex) float32 {
	if cur.Light != nil {
		return lightPdfAt(cur, next)
	}
	wn := next.P.Sub(cur.P)
	if wn.LengthSqr() <= 0 {
		return 0
	}
	wn = wn.Normalize()

	var pdfDir float32
	if cur.Kind == vertexCamera {
		ray := geom.NewRay(cur.P, wn)
		pdfDir = b.Camera.PdfLe(ray)
	} else {
		if prev == nil || cur.Mat == nil {
			return 0
		}
		wp := prev.P.Sub(cur.P)
		if wp.LengthSqr() <= 0 {
			return 0
		}
		wp = wp.Normalize()
		pdfDir = cur.Mat.Pdf(cur.N, wp, wn)
	}
	return convertPdf(cur, next, pdfDir)
}

// randomWalk extends path by tracing ray through the scene, sampling a
// BSDF direction at every hit. isCameraPath controls whether the
// importance-transport shading-normal correction is applied — only the
// light subpath needs it (Veach 3.7.2). path must have spare capacity so
// appends never reallocate: every pointer taken into it during the walk
// stays valid for the walk's own lifetime.
func randomWalk(sc *scene.Scene, path []vertex, ray geom.Ray, beta geom.Vec3, pdfDir float32, maxBounces int, isCameraPath bool, smp sampler.Sampler) []vertex {
	for bounce := 0; bounce < maxBounces; bounce++ {
		prev := &path[len(path)-1]

		its, hit := sc.RayIntersect(ray)
		if !hit {
			break
		}
		wo := ray.Dir.Negate()
		mat := sc.Material(its.Tri.MaterialID)

		v := vertex{Kind: vertexSurface, P: its.P, N: its.N, Beta: beta, Wo: wo, Mat: mat, Its: its, Light: its.Light()}
		v.PdfAreaFwd = convertPdf(*prev, v, pdfDir)
		path = append(path, v)
		cur := &path[len(path)-1]

		lobe := smp.Sample1D()
		u1, u2 := smp.Sample2D()
		wi, f, pdf := mat.SampleF(its.N, wo, lobe, u1, u2)
		if f.IsBlack() || pdf <= 0 {
			break
		}
		cos := geom.AbsDot(its.N, wi)

		corr := float32(1)
		if !isCameraPath {
			corr = scene.CorrectShadingNormal(its.N, its.NG, wo, wi)
		}
		beta = beta.MulVec(f).Mul(cos * corr / pdf)

		pdfRev := mat.Pdf(its.N, wi, wo)
		prev.PdfAreaRev = convertPdf(*cur, *prev, pdfRev)

		ray = genRay(its, wi)
		pdfDir = pdf
	}
	return path
}

func (b *BDPT) generateCameraSubpath(ray geom.Ray, smp sampler.Sampler) []vertex {
	path := make([]vertex, 1, b.MaxDepth+2)
	path[0] = vertex{Kind: vertexCamera, P: ray.Org, N: ray.Dir.Negate(), Beta: geom.Vec3One}
	pdfDir := b.Camera.PdfLe(ray)
	return randomWalk(b.Scene, path, ray, geom.Vec3One, pdfDir, b.MaxDepth, true, smp)
}

func (b *BDPT) generateLightSubpath(smp sampler.Sampler) []vertex {
	path := make([]vertex, 0, b.MaxDepth+2)
	if b.Scene.Lights.Count() == 0 {
		return path
	}

	light := b.Scene.Lights.Select(smp.Sample1D())
	lightSelectPdf := b.Scene.Lights.Pdf(light)
	u1, u2 := smp.Sample2D()
	u3, u4 := smp.Sample2D()
	le := light.SampleLe(u1, u2, u3, u4)

	v0 := vertex{
		Kind:       vertexLight,
		P:          le.Ray.Org,
		N:          le.N,
		Beta:       le.Le,
		Light:      light,
		PdfAreaFwd: lightSelectPdf * le.PdfArea,
	}
	path = append(path, v0)

	cosTheta := le.PdfDir
	if cosTheta <= 0 || le.PdfArea <= 0 {
		return path
	}
	pdfDirActual := cosTheta / piF32
	denom := lightSelectPdf * le.PdfArea * pdfDirActual
	if denom <= 0 {
		return path
	}
	beta1 := le.Le.Mul(cosTheta / denom)
	return randomWalk(b.Scene, path, le.Ray, beta1, pdfDirActual, b.MaxDepth-1, false, smp)
}

func vtxNG(v vertex) geom.Vec3 {
	if v.Kind == vertexSurface {
		return v.Its.NG
	}
	return v.N
}

// evalS0 is the pure-path-tracing strategy: the camera subpath happened
// to hit an emitter at vertex t-1.
func evalS0(camPath []vertex, t int) geom.Vec3 {
	v := camPath[t-1]
	if v.Light == nil {
		return geom.Vec3Zero
	}
	return v.Beta.MulVec(v.Light.L(v.N, v.Wo))
}

// evalS1 connects camPath[t-1] to a freshly resampled point on a light —
// identical in spirit to the unidirectional integrator's next-event
// estimation step.
func (b *BDPT) evalS1(camPath []vertex, t int, smp sampler.Sampler) (geom.Vec3, *vertex) {
	pv := camPath[t-1]
	if pv.Mat == nil {
		return geom.Vec3Zero, nil
	}
	lights := b.Scene.Lights
	if lights.Count() == 0 {
		return geom.Vec3Zero, nil
	}
	light := lights.Select(smp.Sample1D())
	lightSelectPdf := lights.Pdf(light)
	u1, u2 := smp.Sample2D()
	ls := light.SampleLi(pv.P, pv.N, u1, u2)
	if !ls.Valid || ls.PdfSolidAngle <= 0 {
		return geom.Vec3Zero, nil
	}

	f := pv.Mat.F(pv.N, pv.Wo, ls.Wi)
	if f.IsBlack() {
		return geom.Vec3Zero, nil
	}
	cos := geom.AbsDot(pv.N, ls.Wi)
	if !b.Scene.Unoccluded(pv.P, ls.P, vtxNG(pv), ls.N) {
		return geom.Vec3Zero, nil
	}

	lightPdf := ls.PdfSolidAngle * lightSelectPdf
	contribution := pv.Beta.MulVec(f).MulVec(ls.Li).Mul(cos / lightPdf)

	sampled := &vertex{
		Kind:       vertexLight,
		P:          ls.P,
		N:          ls.N,
		Light:      light,
		Beta:       ls.Li.Mul(1 / lightPdf),
		PdfAreaFwd: lightSelectPdf * ls.PdfArea,
	}
	return contribution, sampled
}

// evalT1 connects lightPath[s-1] to a resampled point on the camera lens,
// routing its contribution to that point's projected pixel rather than
// the pixel currently being estimated.
func (b *BDPT) evalT1(lightPath []vertex, s int) (geom.Vec3, Splat, *vertex, bool) {
	lv := lightPath[s-1]
	cs := b.Camera.SampleLi(lv.P)
	if !cs.Valid {
		return geom.Vec3Zero, Splat{}, nil, false
	}

	var f geom.Vec3
	if lv.Light != nil && lv.Mat == nil {
		f = lv.Light.L(lv.N, cs.Wi)
	} else {
		f = lv.Mat.F(lv.N, lv.Wo, cs.Wi)
		corr := scene.CorrectShadingNormal(lv.N, vtxNG(lv), lv.Wo, cs.Wi)
		f = f.Mul(corr)
	}
	if f.IsBlack() {
		return geom.Vec3Zero, Splat{}, nil, false
	}
	cos := geom.AbsDot(lv.N, cs.Wi)
	if !b.Scene.Unoccluded(lv.P, cs.P, vtxNG(lv), geom.Vec3Zero) {
		return geom.Vec3Zero, Splat{}, nil, false
	}

	contribution := lv.Beta.MulVec(f).MulVec(cs.We).Mul(cos / cs.PdfDir)
	sampled := &vertex{Kind: vertexCamera, P: cs.P, N: geom.Vec3Zero, Beta: geom.Vec3One}
	return contribution, Splat{X: cs.Raster.X, Y: cs.Raster.Y, L: contribution}, sampled, true
}

// evalConnect is the general (s>=2, t>=2) connection strategy: test
// visibility between the two subpaths' tail vertices and multiply
// through both BSDFs and the geometric term.
func (b *BDPT) evalConnect(camPath, lightPath []vertex, s, t int) geom.Vec3 {
	cv := camPath[t-1]
	lv := lightPath[s-1]

	d := lv.P.Sub(cv.P)
	dist := d.Length()
	if dist <= 0 {
		return geom.Vec3Zero
	}
	wToLight := d.Mul(1 / dist)
	wToCam := wToLight.Negate()

	fCam := cv.Mat.F(cv.N, cv.Wo, wToLight)
	if fCam.IsBlack() {
		return geom.Vec3Zero
	}

	var fLight geom.Vec3
	if lv.Light != nil && lv.Mat == nil {
		fLight = lv.Light.L(lv.N, wToCam)
	} else {
		fLight = lv.Mat.F(lv.N, lv.Wo, wToCam)
		corr := scene.CorrectShadingNormal(lv.N, vtxNG(lv), lv.Wo, wToCam)
		fLight = fLight.Mul(corr)
	}
	if fLight.IsBlack() {
		return geom.Vec3Zero
	}

	if !b.Scene.Unoccluded(cv.P, lv.P, vtxNG(cv), vtxNG(lv)) {
		return geom.Vec3Zero
	}

	cosCam := geom.AbsDot(cv.N, wToLight)
	cosLight := geom.AbsDot(lv.N, wToCam)
	g := cosCam * cosLight / (dist * dist)

	return cv.Beta.MulVec(fCam).MulVec(fLight).MulVec(lv.Beta).Mul(g)
}

// misWeight computes the power-heuristic (exponent 2) MIS weight for
// strategy (s,t) by temporarily rewriting the reverse densities at the
// connection vertices and their predecessors, walking outward along both
// subpaths to sum the squared density ratios of every hypothetical
// strategy that could produce the same path length, then restoring the
// rewritten fields before returning. Any zero density is treated as 1,
// the Dirac-delta proxy value.
func (b *BDPT) misWeight(camPath, lightPath []vertex, s, t int, sampledLight, sampledCam *vertex) float32 {
	if s+t == 2 {
		return 1
	}
	remap0 := func(f float32) float32 {
		if f != 0 {
			return f
		}
		return 1
	}

	var qs, pt, qsMinus, ptMinus *vertex
	if s > 0 {
		qs = &lightPath[s-1]
	}
	if t > 0 {
		pt = &camPath[t-1]
	}
	if s > 1 {
		qsMinus = &lightPath[s-2]
	}
	if t > 1 {
		ptMinus = &camPath[t-2]
	}

	var savedQs, savedPt vertex
	haveSavedQs, haveSavedPt := false, false
	if s == 1 && qs != nil && sampledLight != nil {
		savedQs, haveSavedQs = *qs, true
		*qs = *sampledLight
	}
	if t == 1 && pt != nil && sampledCam != nil {
		savedPt, haveSavedPt = *pt, true
		*pt = *sampledCam
	}

	var savedPtRev, savedPtMinusRev, savedQsRev, savedQsMinusRev float32
	defer func() {
		if pt != nil {
			pt.PdfAreaRev = savedPtRev
		}
		if ptMinus != nil {
			ptMinus.PdfAreaRev = savedPtMinusRev
		}
		if qs != nil {
			qs.PdfAreaRev = savedQsRev
		}
		if qsMinus != nil {
			qsMinus.PdfAreaRev = savedQsMinusRev
		}
		if haveSavedQs {
			*qs = savedQs
		}
		if haveSavedPt {
			*pt = savedPt
		}
	}()

	if pt != nil {
		savedPtRev = pt.PdfAreaRev
		if s > 0 {
			pt.PdfAreaRev = b.vertexPdf(*qs, qsMinus, *pt)
		} else {
			pt.PdfAreaRev = b.lightOriginPdf(*pt)
		}
	}
	if ptMinus != nil {
		savedPtMinusRev = ptMinus.PdfAreaRev
		if s > 0 {
			ptMinus.PdfAreaRev = b.vertexPdf(*pt, qs, *ptMinus)
		} else {
			ptMinus.PdfAreaRev = lightPdfAt(*pt, *ptMinus)
		}
	}
	if qs != nil {
		savedQsRev = qs.PdfAreaRev
		if pt != nil {
			qs.PdfAreaRev = b.vertexPdf(*pt, ptMinus, *qs)
		}
	}
	if qsMinus != nil {
		savedQsMinusRev = qsMinus.PdfAreaRev
		if qs != nil && pt != nil {
			qsMinus.PdfAreaRev = b.vertexPdf(*qs, pt, *qsMinus)
		}
	}

	sumRi := float32(0)
	ri := float32(1)
	for i := t - 1; i > 0; i-- {
		v := &camPath[i]
		ratio := remap0(v.PdfAreaRev) / remap0(v.PdfAreaFwd)
		ri *= ratio * ratio
		sumRi += ri
	}
	ri = 1
	for i := s - 1; i >= 0; i-- {
		v := &lightPath[i]
		ratio := remap0(v.PdfAreaRev) / remap0(v.PdfAreaFwd)
		ri *= ratio * ratio
		sumRi += ri
	}
	return 1 / (1 + sumRi)
}

// Sample estimates radiance arriving along ray via every valid (s,t)
// strategy, returning the direct contribution to the pixel the ray was
// spawned for plus any splats destined for other pixels (from t=1
// strategies).
func (b *BDPT) Sample(ray geom.Ray, smp sampler.Sampler) (geom.Vec3, []Splat) {
	camPath := b.generateCameraSubpath(ray, smp)
	lightPath := b.generateLightSubpath(smp)

	var L geom.Vec3
	var splats []Splat

	for t := 1; t <= len(camPath); t++ {
		for s := 0; s <= len(lightPath); s++ {
			if s == 1 && t == 1 {
				continue
			}
			depth := s + t - 2
			if depth < 0 || depth > b.MaxDepth {
				continue
			}

			var contrib geom.Vec3
			var sampledLight, sampledCam *vertex
			var splat Splat
			isSplat := false

			switch {
			case s == 0:
				contrib = evalS0(camPath, t)
			case t == 1:
				var ok bool
				contrib, splat, sampledCam, ok = b.evalT1(lightPath, s)
				if !ok {
					continue
				}
				isSplat = true
			case s == 1:
				contrib, sampledLight = b.evalS1(camPath, t, smp)
			default:
				contrib = b.evalConnect(camPath, lightPath, s, t)
			}

			if contrib.IsBlack() {
				continue
			}
			w := b.misWeight(camPath, lightPath, s, t, sampledLight, sampledCam)
			weighted := contrib.Mul(w)

			if isSplat {
				splats = append(splats, Splat{X: splat.X, Y: splat.Y, L: weighted})
			} else {
				L = L.Add(weighted)
			}
		}
	}
	return L, splats
}
