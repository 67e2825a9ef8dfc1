package planet

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

type validatorFunc func(*Planet) bool

func (f validatorFunc) Valid(p *Planet) bool { return f(p) }

var (
	acceptAll = validatorFunc(func(*Planet) bool { return true })
	rejectAll = validatorFunc(func(*Planet) bool { return false })
)

func mustSphere(t testing.TB, meridians, parallels int) *Planet {
	t.Helper()
	p, err := Sphere(meridians, parallels, 1)
	if err != nil {
		t.Fatalf("Sphere: %v", err)
	}
	return p
}

func gridsClose(a, b *Grid, tol float64) bool {
	if !a.SameShape(b) {
		return false
	}
	for i := range a.Points {
		for j := range a.Points[i] {
			if r3.Norm(r3.Sub(a.Points[i][j], b.Points[i][j])) > tol {
				return false
			}
		}
	}
	return true
}

func rawGrid(rows, cols int) [][]r3.Vec {
	raw := make([][]r3.Vec, rows)
	for i := range raw {
		raw[i] = make([]r3.Vec, cols)
	}
	return raw
}

func TestNewRejectsBadGrids(t *testing.T) {
	ragged := rawGrid(10, 6)
	ragged[4] = ragged[4][:5]

	tests := []struct {
		name string
		raw  [][]r3.Vec
		want error
	}{
		{"empty", nil, ErrInvalidTopology},
		{"ragged", ragged, ErrInvalidTopology},
		{"too few meridians", rawGrid(10, 3), ErrInsufficientControlPoints},
		{"too few parallels", rawGrid(3, 6), ErrInsufficientControlPoints},
		{"plateaus overlap", rawGrid(6, 6), ErrInvalidTopology},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(3, 3, tt.raw)
			if !errors.Is(err, tt.want) {
				t.Errorf("New error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewWrapsColumnsAndBuildsPlateaus(t *testing.T) {
	p := mustSphere(t, 14, 14)
	g := p.Grid()
	if len(g.Points[0]) != 14+3 {
		t.Fatalf("row length = %d, want %d", len(g.Points[0]), 17)
	}
	if !g.IsPeriodic() {
		t.Error("fresh sphere grid is not periodic")
	}
	pl := p.Plateaus()
	if pl[0].Rows[0] != 0 || pl[1].Rows[len(pl[1].Rows)-1] != 13 || len(pl[0].Rows) != 3 {
		t.Errorf("plateaus = %v", pl)
	}

	round, err := New(3, 3, p.RawGrid())
	if err != nil {
		t.Fatalf("New from RawGrid: %v", err)
	}
	if !round.Grid().Equal(g) {
		t.Error("RawGrid does not round-trip through New")
	}
}

func TestSphereSurfaceIsPeriodicAndRound(t *testing.T) {
	p := mustSphere(t, 14, 14)
	for _, tv := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		a, b := p.Evaluate(0, tv), p.Evaluate(1, tv)
		if r3.Norm(r3.Sub(a, b)) > 1e-9 {
			t.Errorf("tv=%v: S(0)=%v S(1)=%v", tv, a, b)
		}
	}
	for k := 0; k < 20; k++ {
		for _, tv := range []float64{0.3, 0.4, 0.5, 0.6, 0.7} {
			tu := float64(k) / 20
			if r := r3.Norm(p.Evaluate(tu, tv)); math.Abs(r-1) > 0.01 {
				t.Errorf("radius at (%v,%v) = %v", tu, tv, r)
			}
		}
	}
	if south := p.Evaluate(0.3, 0); math.Abs(south.Z+1) > 1e-9 {
		t.Errorf("south pole = %v, want z=-1", south)
	}
}

func TestSphereNormalPointsOutward(t *testing.T) {
	p := mustSphere(t, 14, 14)
	for k := 0; k < 10; k++ {
		for _, tv := range []float64{0.2, 0.5, 0.8} {
			tu := float64(k) / 10
			n := p.Normal(tu, tv)
			if r3.Dot(n, p.Evaluate(tu, tv)) <= 0 {
				t.Errorf("normal at (%v,%v) points inward", tu, tv)
			}
		}
	}
}

func TestSphereGaussianCurvatureNearOne(t *testing.T) {
	p := mustSphere(t, 14, 14)
	for k := 0; k < 12; k++ {
		for _, tv := range []float64{0.35, 0.45, 0.5, 0.55, 0.65} {
			tu := (float64(k) + 0.25) / 12
			if kk := p.GaussianCurvature(tu, tv); math.Abs(kk-1) > 0.1 {
				t.Errorf("K(%v,%v) = %v, want ~1", tu, tv, kk)
			}
			if h := p.MeanCurvature(tu, tv); math.Abs(h+1) > 0.1 {
				t.Errorf("H(%v,%v) = %v, want ~-1", tu, tv, h)
			}
		}
	}
}

func TestEmptyPlanetCurvatureIsZero(t *testing.T) {
	p, err := Empty(8, 10)
	if err != nil {
		t.Fatalf("Empty: %v", err)
	}
	if k := p.GaussianCurvature(0.5, 0.5); k != 0 {
		t.Errorf("K on empty planet = %v, want 0", k)
	}
}

func TestMutateZeroDistanceIsNoOp(t *testing.T) {
	p := mustSphere(t, 14, 14)
	before := p.Grid().Clone()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		if !p.Mutate(rng, MutationParams{Sigma: 1.5}, acceptAll) {
			t.Fatal("zero mutation rejected")
		}
	}
	if !gridsClose(before, p.Grid(), 1e-12) {
		t.Error("zero-distance mutation changed the grid")
	}
}

func TestMutateKeepsInvariants(t *testing.T) {
	p := mustSphere(t, 12, 12)
	rng := rand.New(rand.NewSource(3))
	params := MutationParams{MinDistance: 0.01, MaxDistance: 0.05, Sigma: 1.5}
	for i := 0; i < 200; i++ {
		before := p.Grid().Clone()
		if !p.Mutate(rng, params, acceptAll) {
			t.Fatal("mutation rejected by accept-all validator")
		}
		if !p.Grid().IsPeriodic() {
			t.Fatalf("mutation %d broke periodicity", i)
		}
		for _, pl := range p.Plateaus() {
			if !pl.IsRigidTranslate(before, p.Grid(), 1e-12) {
				t.Fatalf("mutation %d deformed plateau %v", i, pl.Rows)
			}
		}
	}
}

func TestRejectedOperatorsLeavePlanetUntouched(t *testing.T) {
	p := mustSphere(t, 12, 12)
	q, _ := Asteroid(12, 12, 1, AsteroidParams{Amplitude: 0.1, Frequency: 2, Seed: 5})
	before := p.Grid().Clone()
	rng := rand.New(rand.NewSource(9))

	if p.Mutate(rng, MutationParams{MinDistance: 0.1, MaxDistance: 0.2, Sigma: 1}, rejectAll) {
		t.Error("Mutate committed a rejected candidate")
	}
	if _, ok := DifferentialMutation(p, q, p, 0.5, rejectAll); ok {
		t.Error("DifferentialMutation accepted")
	}
	if _, ok := ContinuousCrossover(p, q, 0.5, rejectAll); ok {
		t.Error("ContinuousCrossover accepted")
	}
	if _, ok := UniformCrossover(rng, p, q, 0.5, rejectAll); ok {
		t.Error("UniformCrossover accepted")
	}
	if _, ok := ParallelCrossover(rng, p, q, 0.5, rejectAll); ok {
		t.Error("ParallelCrossover accepted")
	}
	if !p.Grid().Equal(before) {
		t.Error("rejected operators modified the planet")
	}
}

func TestOperatorsRejectIncompatiblePlanets(t *testing.T) {
	a := mustSphere(t, 12, 12)
	b := mustSphere(t, 14, 12)
	rng := rand.New(rand.NewSource(1))
	if _, ok := UniformCrossover(rng, a, b, 0.5, acceptAll); ok {
		t.Error("crossover of different shapes succeeded")
	}
	if d := Diversity(a, b); !math.IsInf(d, 1) {
		t.Errorf("Diversity of different shapes = %v, want +Inf", d)
	}
}

func TestContinuousCrossoverEndpoints(t *testing.T) {
	a := mustSphere(t, 12, 12)
	raw := a.RawGrid()
	shift := r3.Vec{X: 0.1, Y: -0.05, Z: 0.02}
	for i := range raw {
		for j := range raw[i] {
			raw[i][j] = r3.Add(raw[i][j], shift)
		}
	}
	b, err := New(3, 3, raw)
	if err != nil {
		t.Fatal(err)
	}

	c0, ok := ContinuousCrossover(a, b, 0, acceptAll)
	if !ok || !gridsClose(c0.Grid(), a.Grid(), 1e-12) {
		t.Error("alpha=0 child differs from first parent")
	}
	c1, ok := ContinuousCrossover(a, b, 1, acceptAll)
	if !ok || !gridsClose(c1.Grid(), b.Grid(), 1e-12) {
		t.Error("alpha=1 child differs from second parent")
	}
	if !a.Grid().Equal(mustSphere(t, 12, 12).Grid()) {
		t.Error("crossover modified a parent")
	}
}

func TestUniformCrossoverRates(t *testing.T) {
	a := mustSphere(t, 12, 12)
	b, _ := Asteroid(12, 12, 1, AsteroidParams{Amplitude: 0.1, Frequency: 2, Seed: 11})
	rng := rand.New(rand.NewSource(2))

	c, ok := UniformCrossover(rng, a, b, 0, acceptAll)
	if !ok || !c.Grid().Equal(a.Grid()) {
		t.Error("rate 0 child differs from first parent")
	}

	c, ok = UniformCrossover(rng, a, b, 1, acceptAll)
	if !ok {
		t.Fatal("rate 1 crossover rejected")
	}
	smoothed := make(map[int]bool)
	for _, r := range a.smoothingRows() {
		smoothed[r] = true
	}
	for i := 0; i < c.Parallels(); i++ {
		if smoothed[i] {
			continue
		}
		for j := 0; j < c.Meridians(); j++ {
			if c.Grid().Points[i][j] != b.Grid().Points[i][j] {
				t.Fatalf("rate 1 child point (%d,%d) not taken from second parent", i, j)
			}
		}
	}
}

func TestDifferentialMutationWithEqualDonorsKeepsBase(t *testing.T) {
	base := mustSphere(t, 12, 12)
	donor, _ := Asteroid(12, 12, 1, AsteroidParams{Amplitude: 0.2, Frequency: 1.5, Seed: 4})
	child, ok := DifferentialMutation(base, donor, donor, 0.8, acceptAll)
	if !ok {
		t.Fatal("differential mutation rejected")
	}
	if !gridsClose(child.Grid(), base.Grid(), 1e-12) {
		t.Error("a - a difference moved the base")
	}
}

func TestDiversity(t *testing.T) {
	a := mustSphere(t, 12, 12)
	b, _ := Asteroid(12, 12, 1, AsteroidParams{Amplitude: 0.15, Frequency: 2, Seed: 8})
	if d := Diversity(a, a); d != 0 {
		t.Errorf("self diversity = %v", d)
	}
	if ab, ba := Diversity(a, b), Diversity(b, a); ab != ba || ab <= 0 {
		t.Errorf("Diversity(a,b)=%v Diversity(b,a)=%v", ab, ba)
	}
}

func TestMinDistancesCreditsMutualPairOnce(t *testing.T) {
	// Points on a line at 0, 1 and 5
	dist := [][]float64{
		{0, 1, 5},
		{1, 0, 4},
		{5, 4, 0},
	}
	got := minDistances(dist)
	want := []float64{1, 4, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("minDistances[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	pair := minDistances([][]float64{{0, 2}, {2, 0}})
	if pair[0] != 2 || pair[1] != 0 {
		t.Errorf("pair = %v, want [2 0]", pair)
	}
}

func TestAsteroidIsDeterministic(t *testing.T) {
	params := AsteroidParams{Amplitude: 0.1, Frequency: 2, Seed: 42}
	a, _ := Asteroid(12, 12, 1, params)
	b, _ := Asteroid(12, 12, 1, params)
	if !a.Grid().Equal(b.Grid()) {
		t.Error("same seed produced different asteroids")
	}
	sphere := mustSphere(t, 12, 12)
	for _, pl := range a.Plateaus() {
		for _, r := range pl.Rows {
			for j := range a.Grid().Points[r] {
				if a.Grid().Points[r][j] != sphere.Grid().Points[r][j] {
					t.Fatalf("asteroid perturbed plateau row %d", r)
				}
			}
		}
	}
	if Diversity(a, sphere) == 0 {
		t.Error("asteroid equals the sphere")
	}
}

func BenchmarkGaussianCurvature(b *testing.B) {
	p := mustSphere(b, 14, 14)
	for i := 0; i < b.N; i++ {
		p.GaussianCurvature(0.37, 0.52)
	}
}
