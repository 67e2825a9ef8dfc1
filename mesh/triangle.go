package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// planeEpsilon is the signed-distance tolerance (in surface units) below
// which a vertex is treated as lying on the other triangle's plane.
const planeEpsilon = 1e-10

// TrianglesIntersect reports whether two triangles overlap, using Möller's
// interval test with the coplanar fallback.
func TrianglesIntersect(a, b [3]r3.Vec) bool {
	n2, ok := unitNormal(b)
	if !ok {
		return false
	}
	d2 := -r3.Dot(n2, b[0])
	da := [3]float64{}
	for i, p := range a {
		da[i] = snap(r3.Dot(n2, p) + d2)
	}
	if da[0]*da[1] > 0 && da[0]*da[2] > 0 {
		return false
	}

	n1, ok := unitNormal(a)
	if !ok {
		return false
	}
	d1 := -r3.Dot(n1, a[0])
	db := [3]float64{}
	for i, p := range b {
		db[i] = snap(r3.Dot(n1, p) + d1)
	}
	if db[0]*db[1] > 0 && db[0]*db[2] > 0 {
		return false
	}

	dir := r3.Cross(n1, n2)
	if r3.Norm(dir) < 1e-12 {
		return coplanarIntersect(n1, a, b)
	}

	// Project onto the dominant axis of the intersection line
	axis := dominantAxis(dir)
	var pa, pb [3]float64
	for i := range a {
		pa[i] = axisOf(a[i], axis)
		pb[i] = axisOf(b[i], axis)
	}

	a0, a1, okA := interval(pa, da)
	if !okA {
		return coplanarIntersect(n1, a, b)
	}
	b0, b1, okB := interval(pb, db)
	if !okB {
		return coplanarIntersect(n1, a, b)
	}
	if a0 > a1 {
		a0, a1 = a1, a0
	}
	if b0 > b1 {
		b0, b1 = b1, b0
	}
	return !(a1 < b0 || b1 < a0)
}

func unitNormal(t [3]r3.Vec) (r3.Vec, bool) {
	n := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
	norm := r3.Norm(n)
	if norm == 0 {
		return r3.Vec{}, false
	}
	return r3.Scale(1/norm, n), true
}

func snap(d float64) float64 {
	if math.Abs(d) < planeEpsilon {
		return 0
	}
	return d
}

func dominantAxis(v r3.Vec) int {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	switch {
	case ax >= ay && ax >= az:
		return 0
	case ay >= az:
		return 1
	default:
		return 2
	}
}

// interval computes where a triangle crosses the other triangle's plane,
// projected onto the intersection line. ok is false for coplanar input.
func interval(p, d [3]float64) (t0, t1 float64, ok bool) {
	switch {
	case d[0]*d[1] > 0:
		t0, t1 = crossing(p[2], p[0], p[1], d[2], d[0], d[1])
	case d[0]*d[2] > 0:
		t0, t1 = crossing(p[1], p[0], p[2], d[1], d[0], d[2])
	case d[1]*d[2] > 0 || d[0] != 0:
		t0, t1 = crossing(p[0], p[1], p[2], d[0], d[1], d[2])
	case d[1] != 0:
		t0, t1 = crossing(p[1], p[0], p[2], d[1], d[0], d[2])
	case d[2] != 0:
		t0, t1 = crossing(p[2], p[0], p[1], d[2], d[0], d[1])
	default:
		return 0, 0, false
	}
	return t0, t1, true
}

// crossing interpolates the two edges leaving the lone vertex v0.
func crossing(v0, v1, v2, d0, d1, d2 float64) (float64, float64) {
	t0 := v0 + (v1-v0)*d0/(d0-d1)
	t1 := v0 + (v2-v0)*d0/(d0-d2)
	return t0, t1
}

// coplanarIntersect tests two triangles lying in the plane with normal n by
// projecting onto the axis plane that maximises their area.
func coplanarIntersect(n r3.Vec, a, b [3]r3.Vec) bool {
	i0, i1 := projectionAxes(n)
	var pa, pb [3][2]float64
	for k := 0; k < 3; k++ {
		pa[k] = [2]float64{axisOf(a[k], i0), axisOf(a[k], i1)}
		pb[k] = [2]float64{axisOf(b[k], i0), axisOf(b[k], i1)}
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if segmentsIntersect(pa[i], pa[(i+1)%3], pb[j], pb[(j+1)%3]) {
				return true
			}
		}
	}
	return pointInTriangle(pa[0], pb) || pointInTriangle(pb[0], pa)
}

func projectionAxes(n r3.Vec) (int, int) {
	switch dominantAxis(n) {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

func orient2(a, b, c [2]float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func segmentsIntersect(p1, p2, q1, q2 [2]float64) bool {
	d1 := orient2(q1, q2, p1)
	d2 := orient2(q1, q2, p2)
	d3 := orient2(p1, p2, q1)
	d4 := orient2(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}

func onSegment(a, b, p [2]float64) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}

func pointInTriangle(p [2]float64, t [3][2]float64) bool {
	d1 := orient2(t[0], t[1], p)
	d2 := orient2(t[1], t[2], p)
	d3 := orient2(t[2], t[0], p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
