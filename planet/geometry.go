package planet

import (
	"math"

	"github.com/pthm-cable/planetforge/bspline"
	"gonum.org/v1/gonum/spatial/r3"
)

// curvatureEpsilon guards the first fundamental form determinant.
const curvatureEpsilon = 1e-12

type basisFunc func(dst []float64, span int, t float64, knots bspline.KnotVector, degree int) []float64

var basisByOrder = [3]basisFunc{bspline.Basis, bspline.D1Basis, bspline.D2Basis}

// eval returns the surface partial derivative of order (du, dv) at (tu, tv).
func (p *Planet) eval(tu, tv float64, du, dv int) r3.Vec {
	var ubuf, vbuf [8]float64
	spanU := p.knotsU.Span(tu, p.degreeU)
	spanV := p.knotsV.Span(tv, p.degreeV)
	bu := basisByOrder[du](ubuf[:0], spanU, tu, p.knotsU, p.degreeU)
	bv := basisByOrder[dv](vbuf[:0], spanV, tv, p.knotsV, p.degreeV)
	return bspline.EvaluatePatch(p.grid.Points, bu, bv,
		bspline.FirstActive(spanU, p.degreeU), bspline.FirstActive(spanV, p.degreeV))
}

// Evaluate returns the surface point at normalized (tu, tv).
func (p *Planet) Evaluate(tu, tv float64) r3.Vec { return p.eval(tu, tv, 0, 0) }

// UDerivative returns dS/dtu.
func (p *Planet) UDerivative(tu, tv float64) r3.Vec { return p.eval(tu, tv, 1, 0) }

// VDerivative returns dS/dtv.
func (p *Planet) VDerivative(tu, tv float64) r3.Vec { return p.eval(tu, tv, 0, 1) }

// USecondDerivative returns d²S/dtu².
func (p *Planet) USecondDerivative(tu, tv float64) r3.Vec { return p.eval(tu, tv, 2, 0) }

// VSecondDerivative returns d²S/dtv².
func (p *Planet) VSecondDerivative(tu, tv float64) r3.Vec { return p.eval(tu, tv, 0, 2) }

// UVMixedDerivative returns d²S/dtu dtv.
func (p *Planet) UVMixedDerivative(tu, tv float64) r3.Vec { return p.eval(tu, tv, 1, 1) }

// Normal returns the unit outward normal cross(dS/du, dS/dv). At a collapsed
// pole the cross product vanishes and the result is NaN.
func (p *Planet) Normal(tu, tv float64) r3.Vec {
	n := r3.Cross(p.UDerivative(tu, tv), p.VDerivative(tu, tv))
	l := r3.Norm(n)
	if l == 0 {
		nan := math.NaN()
		return r3.Vec{X: nan, Y: nan, Z: nan}
	}
	return r3.Scale(1/l, n)
}

// FundamentalForms holds the coefficients of the first (E, F, G) and second
// (L, M, N) fundamental forms at a surface point.
type FundamentalForms struct {
	E, F, G float64
	L, M, N float64
}

// Forms computes both fundamental forms at (tu, tv).
func (p *Planet) Forms(tu, tv float64) FundamentalForms {
	su := p.UDerivative(tu, tv)
	sv := p.VDerivative(tu, tv)
	n := p.Normal(tu, tv)
	return FundamentalForms{
		E: r3.Dot(su, su),
		F: r3.Dot(su, sv),
		G: r3.Dot(sv, sv),
		L: r3.Dot(p.USecondDerivative(tu, tv), n),
		M: r3.Dot(p.UVMixedDerivative(tu, tv), n),
		N: r3.Dot(p.VSecondDerivative(tu, tv), n),
	}
}

func (f FundamentalForms) det() float64 {
	return f.E*f.G - f.F*f.F
}

// GaussianCurvature returns (LN-M²)/(EG-F²), or 0 where the metric degenerates.
func (p *Planet) GaussianCurvature(tu, tv float64) float64 {
	f := p.Forms(tu, tv)
	d := f.det()
	if math.Abs(d) < curvatureEpsilon || math.IsNaN(f.L) {
		return 0
	}
	return (f.L*f.N - f.M*f.M) / d
}

// MeanCurvature returns (LG - 2MF + NE)/(2(EG-F²)), or 0 where the metric
// degenerates. With the outward normal a sphere has negative mean curvature.
func (p *Planet) MeanCurvature(tu, tv float64) float64 {
	f := p.Forms(tu, tv)
	d := f.det()
	if math.Abs(d) < curvatureEpsilon || math.IsNaN(f.L) {
		return 0
	}
	return (f.L*f.G - 2*f.M*f.F + f.N*f.E) / (2 * d)
}

// CurvatureSample is one curvature reading on the sampling lattice.
type CurvatureSample struct {
	TU, TV   float64
	Gaussian float64
	Mean     float64
}

// SampleCurvature evaluates curvature on an n x n lattice of cell centres.
func (p *Planet) SampleCurvature(n int) []CurvatureSample {
	out := make([]CurvatureSample, 0, n*n)
	for k := 0; k < n; k++ {
		for l := 0; l < n; l++ {
			tu := (float64(k) + 0.5) / float64(n)
			tv := (float64(l) + 0.5) / float64(n)
			out = append(out, CurvatureSample{
				TU: tu, TV: tv,
				Gaussian: p.GaussianCurvature(tu, tv),
				Mean:     p.MeanCurvature(tu, tv),
			})
		}
	}
	return out
}
