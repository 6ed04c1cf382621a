package integrator

import (
	"pathtracer/geom"
	"pathtracer/sampler"
	"pathtracer/scene"
)

// Path is the unidirectional MIS path tracer: BSDF sampling drives the
// random walk, next-event estimation adds direct lighting at every
// vertex, and the two strategies are reconciled with the power
// heuristic so neither double-counts nor misses a light.
type Path struct {
	Scene      *scene.Scene
	MaxBounces int
}

func NewPath(sc *scene.Scene, maxBounces int) *Path {
	return &Path{Scene: sc, MaxBounces: maxBounces}
}

// Li estimates the radiance arriving along ray.
func (p *Path) Li(ray geom.Ray, smp sampler.Sampler) geom.Vec3 {
	L := geom.Vec3Zero
	beta := geom.Vec3One
	brdfPdf := float32(1)

	for bounce := 0; bounce <= p.MaxBounces; bounce++ {
		its, hit := p.Scene.RayIntersect(ray)
		if !hit {
			break
		}
		wo := ray.Dir.Negate()

		if light := its.Light(); light != nil {
			le := light.L(its.N, wo)
			if bounce == 0 {
				L = L.Add(beta.MulVec(le))
			} else {
				lightPdf := light.PdfLi(its.P, its.N, ray) * p.Scene.Lights.Pdf(light)
				w := powerHeuristic(brdfPdf, lightPdf)
				L = L.Add(beta.MulVec(le).Mul(w))
			}
		}

		mat := p.Scene.Material(its.Tri.MaterialID)
		L = L.Add(beta.MulVec(sampleLd(p.Scene, smp, its, wo, mat)))

		lobeSelect := smp.Sample1D()
		u1, u2 := smp.Sample2D()
		wi, f, pdf := mat.SampleF(its.N, wo, lobeSelect, u1, u2)
		if f.IsBlack() || pdf == 0 {
			break
		}
		cos := geom.AbsDot(its.N, wi)
		beta = beta.MulVec(f).Mul(cos / pdf)
		brdfPdf = pdf
		ray = genRay(its, wi)

		if bounce > 1 {
			maxBeta := beta.MaxComponent()
			if maxBeta < 1 {
				q := maxf32(0, 1-maxBeta)
				if smp.Sample1D() < q {
					break
				}
				beta = beta.Mul(1 / (1 - q))
			}
		}
	}
	return L
}

func maxf32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
