package bspline

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ClosedCurve is a periodic B-spline through a closed control polygon.
type ClosedCurve struct {
	degree int
	points []r3.Vec // control polygon with the first degree points appended
	knots  KnotVector
}

// NewClosedCurve builds a periodic curve from a control polygon.
// The polygon is rotated so that t=0 sits over the first control point
// (for odd degrees the curve point there lies on that point's ray).
func NewClosedCurve(polygon []r3.Vec, degree int) (*ClosedCurve, error) {
	n := len(polygon)
	if n < degree+1 {
		return nil, fmt.Errorf("closed curve: %d points for degree %d: %w", n, degree, ErrInsufficientControlPoints)
	}

	shift := (degree - 1) / 2
	points := make([]r3.Vec, n+degree)
	for i := range points {
		points[i] = polygon[((i-shift)%n+n)%n]
	}

	knots, err := GenerateKnots(len(points), degree, 0)
	if err != nil {
		return nil, fmt.Errorf("closed curve: %w", err)
	}
	return &ClosedCurve{degree: degree, points: points, knots: knots}, nil
}

// Degree returns the curve degree.
func (c *ClosedCurve) Degree() int {
	return c.degree
}

// Evaluate returns the curve point at normalized t.
func (c *ClosedCurve) Evaluate(t float64) r3.Vec {
	span := c.knots.Span(t, c.degree)
	return EvaluateCurve(c.points, Basis(nil, span, t, c.knots, c.degree), FirstActive(span, c.degree))
}

// Derivative returns the first derivative with respect to t.
func (c *ClosedCurve) Derivative(t float64) r3.Vec {
	span := c.knots.Span(t, c.degree)
	return EvaluateCurve(c.points, D1Basis(nil, span, t, c.knots, c.degree), FirstActive(span, c.degree))
}

// EvaluateCurve sums the active control points weighted by basis values.
func EvaluateCurve(points []r3.Vec, basis []float64, first int) r3.Vec {
	var p r3.Vec
	for k, b := range basis {
		p = r3.Add(p, r3.Scale(b, points[first+k]))
	}
	return p
}

// EvaluatePatch double-sums the active (len(bv))x(len(bu)) block of grid,
// rows indexed by the v direction and columns by u.
func EvaluatePatch(grid [][]r3.Vec, bu, bv []float64, firstU, firstV int) r3.Vec {
	var p r3.Vec
	for l, wv := range bv {
		if wv == 0 {
			continue
		}
		row := grid[firstV+l]
		var acc r3.Vec
		for k, wu := range bu {
			acc = r3.Add(acc, r3.Scale(wu, row[firstU+k]))
		}
		p = r3.Add(p, r3.Scale(wv, acc))
	}
	return p
}
