// Package gravity approximates the gravitational field of a closed surface by
// decomposing its tessellation into solid tubes, one per triangle, and summing
// the closed-form field of each tube.
package gravity

import (
	"math"

	"github.com/pthm-cable/planetforge/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tube is a uniform rod from A to B. Radius softens the field near the axis.
type Tube struct {
	A, B   r3.Vec
	Radius float64
	Mass   float64
}

// TubeFromTriangle lays a tube along the triangle's longest median, with mass
// equal to the triangle area and a cross-section of the same area.
func TubeFromTriangle(t mesh.Triangle) Tube {
	area := t.Area()
	var best Tube
	bestLen := -1.0
	for k := 0; k < 3; k++ {
		a := t.P[k]
		mid := r3.Scale(0.5, r3.Add(t.P[(k+1)%3], t.P[(k+2)%3]))
		if l := r3.Norm(r3.Sub(mid, a)); l > bestLen {
			bestLen = l
			best = Tube{A: a, B: mid}
		}
	}
	best.Mass = area
	best.Radius = math.Sqrt(area / math.Pi)
	return best
}

// Midpoint returns the centre of the tube axis.
func (t Tube) Midpoint() r3.Vec {
	return r3.Scale(0.5, r3.Add(t.A, t.B))
}

// Length returns the axis length.
func (t Tube) Length() float64 {
	return r3.Norm(r3.Sub(t.B, t.A))
}

// Field returns the acceleration at p per unit gravitational constant.
// The axial distance is softened by the radius, d² -> d² + r², which keeps the
// field finite on and inside the tube.
func (t Tube) Field(p r3.Vec) r3.Vec {
	axis := r3.Sub(t.B, t.A)
	length := r3.Norm(axis)
	a2 := t.Radius * t.Radius

	if length == 0 {
		// Point mass
		r := r3.Sub(t.A, p)
		d2 := r3.Dot(r, r) + a2
		if d2 == 0 {
			return r3.Vec{}
		}
		return r3.Scale(t.Mass/(d2*math.Sqrt(d2)), r)
	}

	e := r3.Scale(1/length, axis)
	rel := r3.Sub(p, t.A)
	s0 := r3.Dot(rel, e)
	perp := r3.Sub(rel, r3.Scale(s0, e))
	d2 := r3.Dot(perp, perp) + a2
	if d2 == 0 {
		return r3.Vec{}
	}

	near := 1 / math.Sqrt(s0*s0+d2)
	far := 1 / math.Sqrt((length-s0)*(length-s0)+d2)
	lambda := t.Mass / length

	along := r3.Scale(near-far, e)
	across := r3.Scale(((length-s0)*far+s0*near)/d2, perp)
	return r3.Scale(lambda, r3.Sub(along, across))
}
