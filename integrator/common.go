// Package integrator implements the renderer's two light transport
// estimators: a unidirectional path tracer with multiple importance
// sampling against next-event estimation, and a bidirectional path
// tracer connecting a camera subpath to a light subpath at every
// (s,t) pair.
package integrator

import (
	"pathtracer/geom"
	"pathtracer/sampler"
	"pathtracer/scene"
)

// powerHeuristic is the MIS power heuristic with exponent 2 (Veach 9.3):
// it favors whichever strategy's pdf dominates, more aggressively than
// the balance heuristic.
func powerHeuristic(pdfA, pdfB float32) float32 {
	if pdfA <= 0 {
		return 0
	}
	a2 := pdfA * pdfA
	b2 := pdfB * pdfB
	if a2+b2 <= 0 {
		return 0
	}
	return a2 / (a2 + b2)
}

// sampleLd performs next-event estimation at its: pick a light uniformly,
// sample a point on it, test visibility, and MIS-weight the BSDF/light
// strategies with the power heuristic.
func sampleLd(sc *scene.Scene, smp sampler.Sampler, its scene.Intersection, wo geom.Vec3, mat *scene.Material) geom.Vec3 {
	lights := sc.Lights
	if lights.Count() == 0 {
		return geom.Vec3Zero
	}

	light := lights.Select(smp.Sample1D())
	lightSelectPdf := lights.Pdf(light)

	u1, u2 := smp.Sample2D()
	ls := light.SampleLi(its.P, its.N, u1, u2)
	if !ls.Valid || ls.PdfSolidAngle <= 0 {
		return geom.Vec3Zero
	}

	f := mat.F(its.N, wo, ls.Wi)
	if f.IsBlack() {
		return geom.Vec3Zero
	}
	cos := geom.AbsDot(its.N, ls.Wi)
	if cos <= 0 {
		return geom.Vec3Zero
	}

	if !sc.Unoccluded(its.P, ls.P, its.NG, ls.N) {
		return geom.Vec3Zero
	}

	lightPdf := ls.PdfSolidAngle * lightSelectPdf
	brdfPdf := mat.Pdf(its.N, wo, ls.Wi)
	w := powerHeuristic(lightPdf, brdfPdf)

	contrib := f.MulVec(ls.Li).Mul(cos * w / lightPdf)
	return contrib
}

// genRay spawns the next path segment leaving its in direction wi,
// offsetting the origin along the geometric normal to dodge self-
// intersection.
func genRay(its scene.Intersection, wi geom.Vec3) geom.Ray {
	bias := its.NG
	if bias.Dot(wi) < 0 {
		bias = bias.Negate()
	}
	origin := its.P.Add(bias.Mul(geom.Epsilon))
	return geom.NewRay(origin, wi)
}
