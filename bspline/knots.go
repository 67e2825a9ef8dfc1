// Package bspline implements the B-spline machinery used by planet surfaces:
// knot vector generation, span location, basis functions and their first and
// second derivatives, and closed curve / patch evaluation.
//
// Knot vectors omit the two superfluous end knots, so a vector for n control
// points of a given degree has n+degree-1 entries and the parameter domain is
// [k[degree-1], k[len-degree]].
package bspline

import (
	"errors"
	"fmt"
)

// ErrInsufficientControlPoints is returned when fewer than degree+1 control
// points are supplied in a direction.
var ErrInsufficientControlPoints = errors.New("insufficient control points")

// KnotVector is a monotone non-decreasing sequence of integer-valued knots.
type KnotVector []float64

// GenerateKnots builds a knot vector for n control points.
// boundaryRepetition == 0 yields a uniform (periodic) vector; otherwise the
// first and last boundaryRepetition knots share a value (clamped vector) and
// interior knots increase by one per step.
func GenerateKnots(n, degree, boundaryRepetition int) (KnotVector, error) {
	if degree < 1 {
		return nil, fmt.Errorf("generate knots: degree %d must be positive", degree)
	}
	if n < degree+1 {
		return nil, fmt.Errorf("generate knots: %d points for degree %d: %w", n, degree, ErrInsufficientControlPoints)
	}
	if boundaryRepetition < 0 || 2*boundaryRepetition > n+degree-1 {
		return nil, fmt.Errorf("generate knots: invalid boundary repetition %d", boundaryRepetition)
	}

	length := n + degree - 1
	knots := make(KnotVector, length)
	value := 0.0
	for i := range knots {
		knots[i] = value
		if i >= boundaryRepetition-1 && i < length-boundaryRepetition {
			value++
		}
	}
	return knots, nil
}

// Clone returns an independent copy of the knot vector.
func (k KnotVector) Clone() KnotVector {
	return append(KnotVector(nil), k...)
}

// Domain returns the valid parameter range for the given degree.
func (k KnotVector) Domain(degree int) (lo, hi float64) {
	return k[degree-1], k[len(k)-degree]
}

// Param maps a normalized t in [0,1] to the global knot parameter.
func (k KnotVector) Param(t float64, degree int) float64 {
	lo, hi := k.Domain(degree)
	return lo + (hi-lo)*t
}

// Span returns the knot interval containing t.
// A linear scan is fine here: planet grids have a few dozen knots at most.
func (k KnotVector) Span(t float64, degree int) int {
	u := k.Param(t, degree)
	last := len(k) - degree - 1
	span := degree - 1
	for span < last && u >= k[span+1] {
		span++
	}
	return span
}

// FirstActive returns the index of the first control point influencing span.
func FirstActive(span, degree int) int {
	return span - degree + 1
}
