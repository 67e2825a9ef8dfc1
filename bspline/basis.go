package bspline

// Basis returns the degree+1 nonzero basis functions at span for the
// normalized parameter t. dst is reused when it has enough capacity.
func Basis(dst []float64, span int, t float64, knots KnotVector, degree int) []float64 {
	n := resize(dst, degree+1)
	coxDeBoor(n, span, knots.Param(t, degree), knots, degree, 0)
	return n
}

// D1Basis returns the first derivatives of the nonzero basis functions with
// respect to the normalized parameter t.
func D1Basis(dst []float64, span int, t float64, knots KnotVector, degree int) []float64 {
	return derivative(dst, span, t, knots, degree, 1)
}

// D2Basis returns the second derivatives of the nonzero basis functions with
// respect to the normalized parameter t.
func D2Basis(dst []float64, span int, t float64, knots KnotVector, degree int) []float64 {
	return derivative(dst, span, t, knots, degree, 2)
}

func derivative(dst []float64, span int, t float64, knots KnotVector, degree, order int) []float64 {
	n := resize(dst, degree+1)
	if order > degree {
		for i := range n {
			n[i] = 0
		}
		return n
	}

	coxDeBoor(n, span, knots.Param(t, degree), knots, degree, order)

	// Chain rule: du/dt is the domain length.
	lo, hi := knots.Domain(degree)
	scale := 1.0
	for i := 0; i < order; i++ {
		scale *= hi - lo
	}
	for i := range n {
		n[i] *= scale
	}
	return n
}

// coxDeBoor runs the triangular recursion for orders 1..degree in place.
// The last derivs steps swap the blending weights (u-k_lo, k_hi-u) for the
// derivative weights (+j, -j), which differentiates the result once per step.
func coxDeBoor(n []float64, span int, u float64, knots KnotVector, degree, derivs int) {
	n[0] = 1
	for j := 1; j <= degree; j++ {
		deriv := j > degree-derivs
		w := float64(j)
		saved := 0.0
		for r := 0; r < j; r++ {
			lo := knots[span+r+1-j]
			hi := knots[span+r+1]
			temp := 0.0
			if d := hi - lo; d != 0 {
				temp = n[r] / d
			}
			if deriv {
				n[r] = saved - w*temp
				saved = w * temp
			} else {
				n[r] = saved + (hi-u)*temp
				saved = (u - lo) * temp
			}
		}
		n[j] = saved
	}
}

func resize(dst []float64, n int) []float64 {
	if cap(dst) < n {
		return make([]float64, n)
	}
	return dst[:n]
}
