package planet

import (
	"fmt"
	"math"

	"github.com/ojrac/opensimplex-go"
	"github.com/pthm-cable/planetforge/bspline"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultDegree is the degree used by the factories in both directions.
const DefaultDegree = 3

// Sphere builds an approximately round planet of the given radius with cubic
// degrees in both directions.
func Sphere(meridians, parallels int, radius float64) (*Planet, error) {
	return SphereWithDegrees(meridians, parallels, radius, DefaultDegree, DefaultDegree)
}

// SphereWithDegrees places control points on evenly spaced parallels, collapses
// the outer rows onto the poles and flattens the next row into the pole
// tangent plane. Control radii are scaled up to compensate for the shrink of
// a B-spline relative to its control polygon, so the surface radius stays
// close to radius away from the poles.
func SphereWithDegrees(meridians, parallels int, radius float64, degreeU, degreeV int) (*Planet, error) {
	if meridians < degreeU+1 || parallels < degreeV+1 || degreeU < 1 || degreeV < 1 {
		return nil, fmt.Errorf("sphere %dx%d degree (%d,%d): %w", meridians, parallels, degreeU, degreeV, ErrInsufficientControlPoints)
	}

	ring := shrinkFactor(meridians, degreeU)
	profile := shrinkFactor(2*(parallels-1), degreeV)
	xyScale := radius / (ring * profile)
	zScale := radius / profile

	raw := make([][]r3.Vec, parallels)
	for i := range raw {
		phi := -math.Pi/2 + math.Pi*float64(i)/float64(parallels-1)
		rho := math.Cos(phi) * xyScale
		h := math.Sin(phi) * zScale
		switch i {
		case 0, parallels - 1:
			rho = 0
			h = math.Copysign(radius, phi)
		case 1, parallels - 2:
			h = math.Copysign(radius, phi)
		}

		raw[i] = make([]r3.Vec, meridians)
		for j := range raw[i] {
			theta := 2 * math.Pi * float64(j) / float64(meridians)
			raw[i][j] = r3.Vec{X: rho * math.Cos(theta), Y: rho * math.Sin(theta), Z: h}
		}
	}
	return New(degreeU, degreeV, raw)
}

// shrinkFactor is the mean radius of a closed uniform B-spline of the given
// degree over a regular unit n-gon.
func shrinkFactor(n, degree int) float64 {
	polygon := make([]r3.Vec, n)
	for k := range polygon {
		a := 2 * math.Pi * float64(k) / float64(n)
		polygon[k] = r3.Vec{X: math.Cos(a), Y: math.Sin(a)}
	}
	curve, err := bspline.NewClosedCurve(polygon, degree)
	if err != nil {
		return 1
	}
	const samples = 64
	sum := 0.0
	for s := 0; s < samples; s++ {
		sum += r3.Norm(curve.Evaluate(float64(s) / samples))
	}
	return sum / samples
}

// AsteroidParams configures radial noise for Asteroid.
type AsteroidParams struct {
	Amplitude float64 // relative radius perturbation
	Frequency float64 // noise frequency on the unit sphere
	Seed      int64
}

// Asteroid builds a sphere and perturbs its interior parallels radially with
// 3-D simplex noise. Plateaus are left round so the poles stay smooth. The
// result is not validated; callers check it against their oracle.
func Asteroid(meridians, parallels int, radius float64, params AsteroidParams) (*Planet, error) {
	p, err := Sphere(meridians, parallels, radius)
	if err != nil {
		return nil, fmt.Errorf("asteroid: %w", err)
	}
	noise := opensimplex.New(params.Seed)
	lo, hi := p.interiorRows()
	for i := lo; i < hi; i++ {
		for j := 0; j < p.grid.Meridians; j++ {
			q := p.grid.Points[i][j]
			l := r3.Norm(q)
			if l == 0 {
				continue
			}
			u := r3.Scale(params.Frequency/l, q)
			p.grid.Points[i][j] = r3.Scale(1+params.Amplitude*noise.Eval3(u.X, u.Y, u.Z), q)
		}
	}
	p.grid.EnforcePeriodicity()
	return p, nil
}

// Empty builds a planet whose control points all sit at the origin.
func Empty(meridians, parallels int) (*Planet, error) {
	raw := make([][]r3.Vec, parallels)
	for i := range raw {
		raw[i] = make([]r3.Vec, meridians)
	}
	return New(DefaultDegree, DefaultDegree, raw)
}
