package validity

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/planetforge/mesh"
	"github.com/pthm-cable/planetforge/planet"
	"gonum.org/v1/gonum/spatial/r3"
)

// pierced returns a sphere whose first meridian is pulled through the centre
// and out past the opposite wall.
func pierced(t *testing.T) *planet.Planet {
	t.Helper()
	s, err := planet.Sphere(12, 12, 1)
	if err != nil {
		t.Fatal(err)
	}
	raw := s.RawGrid()
	for i := 4; i < 8; i++ {
		q := raw[i][0]
		raw[i][0] = r3.Vec{X: -3 * q.X, Y: -3 * q.Y, Z: q.Z}
	}
	p, err := planet.New(3, 3, raw)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestOracle(t *testing.T) {
	sphere, err := planet.Sphere(12, 12, 1)
	if err != nil {
		t.Fatal(err)
	}
	bad := pierced(t)

	oracles := map[string]*Oracle{
		"bvh":         New(1.0/20, 2),
		"brute force": {Step: 1.0 / 20, Intersector: mesh.BruteForce{Workers: 2}},
		"defaults":    {},
	}
	for name, o := range oracles {
		t.Run(name, func(t *testing.T) {
			if !o.Valid(sphere) {
				t.Error("sphere reported invalid")
			}
			if o.Valid(bad) {
				t.Error("pierced planet reported valid")
			}
		})
	}
}

func TestOracleDoesNotModifyPlanet(t *testing.T) {
	p := pierced(t)
	before := p.Grid().Clone()
	New(1.0/16, 1).Valid(p)
	if !p.Grid().Equal(before) {
		t.Error("Valid modified the planet")
	}
}

func TestMutateThroughOracleStaysValid(t *testing.T) {
	p, err := planet.Sphere(12, 12, 1)
	if err != nil {
		t.Fatal(err)
	}
	o := New(1.0/16, 2)
	rng := rand.New(rand.NewSource(21))
	params := planet.MutationParams{MinDistance: 0.05, MaxDistance: 0.6, Sigma: 1}
	for i := 0; i < 15; i++ {
		p.Mutate(rng, params, o)
		if !o.Valid(p) {
			t.Fatalf("mutation %d committed an invalid planet", i)
		}
	}
}
