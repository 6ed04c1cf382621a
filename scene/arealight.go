package scene

import "pathtracer/geom"

// AreaLight turns a triangle into a one-sided diffuse emitter radiating
// Lemit uniformly over its front-facing hemisphere.
type AreaLight struct {
	Shape *Triangle
	Lemit geom.Vec3
}

// LiSample is the result of sampling a point on the light as seen from a
// shading point: radiance, direction toward the light, the sampled point
// and its normal, and both the area- and solid-angle-measure pdf.
type LiSample struct {
	Li             geom.Vec3
	Wi             geom.Vec3
	P, N           geom.Vec3
	PdfArea        float32
	PdfSolidAngle  float32
	Valid          bool
}

// LeSample is the result of sampling an emitted ray directly off the
// light's surface, used by the light subpath of the bidirectional
// integrator.
type LeSample struct {
	Le      geom.Vec3
	Ray     geom.Ray
	N       geom.Vec3
	PdfArea float32
	PdfDir  float32
}

// L returns the emitted radiance leaving point with normal n in direction
// w; zero on the back face, since this renderer only supports one-sided
// emitters.
func (a *AreaLight) L(n, w geom.Vec3) geom.Vec3 {
	if n.Dot(w) > 0 {
		return a.Lemit
	}
	return geom.Vec3Zero
}

// SampleLi samples a point on the light visible from surfP/surfN and
// converts its area-measure pdf to the solid-angle measure the path
// integrators want directly.
func (a *AreaLight) SampleLi(surfP, surfN geom.Vec3, u1, u2 float32) LiSample {
	p, n, pdfArea := a.Shape.Sample(u1, u2)
	wi := p.Sub(surfP)
	distance := wi.Length()
	if distance <= 0 {
		return LiSample{}
	}
	wi = wi.Mul(1 / distance)

	cosLW := n.Dot(wi.Negate())
	cosSW := surfN.Dot(wi)
	if cosLW <= 0 || cosSW <= 0 {
		return LiSample{}
	}

	solidAnglePdf := pdfArea * distance * distance / cosLW
	return LiSample{
		Li:            a.Lemit,
		Wi:            wi,
		P:             p,
		N:             n,
		PdfArea:       pdfArea,
		PdfSolidAngle: solidAnglePdf,
		Valid:         true,
	}
}

// SampleLe samples an emitted ray leaving the light's surface: a position
// via the shape's area sampling, and a cosine-weighted direction about
// the sampled normal.
func (a *AreaLight) SampleLe(u1, u2, u3, u4 float32) LeSample {
	p, n, pdfArea := a.Shape.Sample(u1, u2)
	local := cosineSampleHemisphere(u3, u4)
	pdfDir := local.Z

	frame := geom.FrameFromNormal(n)
	w := frame.ToWorld(local)
	origin := p.Add(n.Mul(geom.Epsilon))
	ray := geom.NewRay(origin, w)

	return LeSample{
		Le:      a.Lemit,
		Ray:     ray,
		N:       n,
		PdfArea: pdfArea,
		PdfDir:  pdfDir,
	}
}

// PdfLi converts this light's area-measure sampling density into the
// solid-angle measure as seen along ray from lightP with normal lightN,
// used when an integrator needs the light pdf for a direction it found by
// BSDF sampling rather than by SampleLi (MIS).
func (a *AreaLight) PdfLi(lightP, lightN geom.Vec3, ray geom.Ray) float32 {
	distance := lightP.Sub(ray.Org).Length()
	cosLW := lightN.Dot(ray.Dir.Negate())
	if cosLW <= 0 {
		return 0
	}
	return a.Shape.Pdf() * distance * distance / cosLW
}
