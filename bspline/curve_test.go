package bspline

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func hexagon(radius float64) []r3.Vec {
	pts := make([]r3.Vec, 6)
	for i := range pts {
		a := float64(i) * math.Pi / 3
		pts[i] = r3.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return pts
}

func TestClosedCurveStartsOverFirstControlPoint(t *testing.T) {
	poly := hexagon(1)
	c, err := NewClosedCurve(poly, 3)
	if err != nil {
		t.Fatalf("NewClosedCurve: %v", err)
	}

	p := c.Evaluate(0)

	// A uniform cubic B-spline passes through (P[-1] + 4P[0] + P[1]) / 6 at a
	// knot. On a regular hexagon P[-1] + P[1] = 2cos(60°)P[0] = P[0], so the
	// curve starts at 5/6 of the first vertex, not on it.
	want := r3.Scale(5.0/6.0, poly[0])
	if d := r3.Norm(r3.Sub(p, want)); d > 1e-12 {
		t.Errorf("Evaluate(0) = %v, want %v", p, want)
	}
	if cos := r3.Dot(p, poly[0]) / (r3.Norm(p) * r3.Norm(poly[0])); math.Abs(cos-1) > 1e-12 {
		t.Errorf("Evaluate(0) not on the first control point's ray, cos = %v", cos)
	}
}

func TestClosedCurveIsPeriodic(t *testing.T) {
	c, err := NewClosedCurve(hexagon(2), 3)
	if err != nil {
		t.Fatalf("NewClosedCurve: %v", err)
	}

	if d := r3.Norm(r3.Sub(c.Evaluate(0), c.Evaluate(1))); d > 1e-12 {
		t.Errorf("curve not closed: gap %v", d)
	}
	if d := r3.Norm(r3.Sub(c.Derivative(0), c.Derivative(1))); d > 1e-9 {
		t.Errorf("tangent discontinuous at seam: gap %v", d)
	}
}

func TestClosedCurveDerivativeMatchesFiniteDifference(t *testing.T) {
	c, err := NewClosedCurve(hexagon(1), 3)
	if err != nil {
		t.Fatalf("NewClosedCurve: %v", err)
	}

	const h = 1e-6
	for _, tt := range []float64{0.1, 0.33, 0.5, 0.77} {
		fd := r3.Scale(1/(2*h), r3.Sub(c.Evaluate(tt+h), c.Evaluate(tt-h)))
		if d := r3.Norm(r3.Sub(fd, c.Derivative(tt))); d > 1e-5 {
			t.Errorf("t=%v: derivative %v, finite difference %v", tt, c.Derivative(tt), fd)
		}
	}
}

func TestClosedCurveRejectsShortPolygon(t *testing.T) {
	if _, err := NewClosedCurve(hexagon(1)[:3], 3); err == nil {
		t.Error("expected error for 3 points at degree 3")
	}
}

func TestEvaluatePatchMatchesCurveProduct(t *testing.T) {
	// A patch whose rows are translated copies of one polygon evaluates to the
	// row curve plus the v-blend of the offsets.
	poly := hexagon(1)
	grid := make([][]r3.Vec, 4)
	for i := range grid {
		row := make([]r3.Vec, len(poly))
		for j, p := range poly {
			row[j] = r3.Add(p, r3.Vec{Z: float64(i)})
		}
		grid[i] = row
	}

	bu := []float64{1.0 / 6, 4.0 / 6, 1.0 / 6, 0}
	bv := []float64{0.25, 0.25, 0.25, 0.25}
	got := EvaluatePatch(grid, bu, bv, 0, 0)
	want := r3.Add(EvaluateCurve(poly, bu, 0), r3.Vec{Z: 1.5})
	if d := r3.Norm(r3.Sub(got, want)); d > 1e-12 {
		t.Errorf("EvaluatePatch = %v, want %v", got, want)
	}
}
