package planet

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Validator decides whether a candidate planet may be committed.
type Validator interface {
	Valid(p *Planet) bool
}

// MutationParams controls Mutate.
type MutationParams struct {
	MinDistance float64 // lower bound of the displacement magnitude
	MaxDistance float64 // upper bound of the displacement magnitude
	Sigma       float64 // Gaussian falloff in grid-index units
}

// gaussianCutoff drops negligible Gaussian weights.
const gaussianCutoff = 1e-9

// TryOperator applies op to a copy of start, restores periodicity, smooths the
// pole neighbourhood and validates the result against p's layout. start is
// never modified. It returns the committed-ready grid or ErrRejected.
func TryOperator(p *Planet, start *Grid, v Validator, op func(g *Grid)) (*Grid, error) {
	cand := start.Clone()
	op(cand)
	cand.EnforcePeriodicity()
	p.smoothPoles(start, cand)
	cand.EnforcePeriodicity()
	if v != nil && !v.Valid(p.withGrid(cand)) {
		return nil, ErrRejected
	}
	return cand, nil
}

// Mutate displaces the grid around a random control point. A plateau hit moves
// the whole plateau; otherwise interior points move with Gaussian falloff in
// grid-index distance. The planet is unchanged when the result is invalid.
func (p *Planet) Mutate(rng *rand.Rand, params MutationParams, v Validator) bool {
	d := r3.Scale(params.MinDistance+rng.Float64()*(params.MaxDistance-params.MinDistance), randomDirection(rng))
	row := rng.Intn(p.grid.Rows)
	col := rng.Intn(p.grid.Meridians)

	g, err := TryOperator(p, p.grid, v, func(g *Grid) {
		if b, ok := p.plateauOf(row); ok {
			b.Translate(g, d)
			return
		}
		p.gaussianDisplace(g, row, col, d, params.Sigma)
	})
	if err != nil {
		return false
	}
	p.grid = g
	return true
}

// gaussianDisplace adds w*d to every interior point, w = exp(-dist²/2σ²).
func (p *Planet) gaussianDisplace(g *Grid, row, col int, d r3.Vec, sigma float64) {
	if sigma <= 0 {
		g.Points[row][col] = r3.Add(g.Points[row][col], d)
		return
	}
	lo, hi := p.interiorRows()
	m := g.Meridians
	for i := lo; i < hi; i++ {
		di := float64(i - row)
		for j := 0; j < m; j++ {
			dj := math.Abs(float64(j - col))
			dj = math.Min(dj, float64(m)-dj)
			w := math.Exp(-(di*di + dj*dj) / (2 * sigma * sigma))
			if w < gaussianCutoff {
				continue
			}
			g.Points[i][j] = r3.Add(g.Points[i][j], r3.Scale(w, d))
		}
	}
}

// randomDirection returns a uniformly distributed unit vector.
func randomDirection(rng *rand.Rand) r3.Vec {
	for {
		v := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		if l := r3.Norm(v); l > 1e-12 {
			return r3.Scale(1/l, v)
		}
	}
}

// DifferentialMutation builds base + scale*(a - b). Plateaus move rigidly by
// their mean difference. It returns false if the planets are incompatible or
// the result is invalid.
func DifferentialMutation(base, a, b *Planet, scale float64, v Validator) (*Planet, bool) {
	if !base.Compatible(a) || !base.Compatible(b) {
		return nil, false
	}
	return base.derive(base.grid, v, func(g *Grid) {
		for _, pl := range base.plateaus {
			pl.Translate(g, r3.Scale(scale, pl.MeanDelta(b.grid, a.grid)))
		}
		lo, hi := base.interiorRows()
		for i := lo; i < hi; i++ {
			for j := 0; j < g.Meridians; j++ {
				diff := r3.Sub(a.grid.Points[i][j], b.grid.Points[i][j])
				g.Points[i][j] = r3.Add(g.Points[i][j], r3.Scale(scale, diff))
			}
		}
	})
}

// ContinuousCrossover blends (1-alpha)*a + alpha*b. Plateaus of a translate
// rigidly by alpha times their mean offset to b.
func ContinuousCrossover(a, b *Planet, alpha float64, v Validator) (*Planet, bool) {
	if !a.Compatible(b) {
		return nil, false
	}
	return a.derive(a.grid, v, func(g *Grid) {
		for _, pl := range a.plateaus {
			pl.Translate(g, r3.Scale(alpha, pl.MeanDelta(a.grid, b.grid)))
		}
		lo, hi := a.interiorRows()
		for i := lo; i < hi; i++ {
			for j := 0; j < g.Meridians; j++ {
				g.Points[i][j] = r3.Add(r3.Scale(1-alpha, a.grid.Points[i][j]), r3.Scale(alpha, b.grid.Points[i][j]))
			}
		}
	})
}

// UniformCrossover starts from a and takes each interior control point from b
// with probability rate. Each plateau is taken whole from b with the same
// probability.
func UniformCrossover(rng *rand.Rand, a, b *Planet, rate float64, v Validator) (*Planet, bool) {
	if !a.Compatible(b) {
		return nil, false
	}
	return a.derive(a.grid, v, func(g *Grid) {
		for _, pl := range a.plateaus {
			if rng.Float64() < rate {
				pl.CopyFrom(g, b.grid)
			}
		}
		lo, hi := a.interiorRows()
		for i := lo; i < hi; i++ {
			for j := 0; j < g.Meridians; j++ {
				if rng.Float64() < rate {
					g.Points[i][j] = b.grid.Points[i][j]
				}
			}
		}
	})
}

// ParallelCrossover is UniformCrossover at the granularity of whole parallels.
func ParallelCrossover(rng *rand.Rand, a, b *Planet, rate float64, v Validator) (*Planet, bool) {
	if !a.Compatible(b) {
		return nil, false
	}
	return a.derive(a.grid, v, func(g *Grid) {
		for _, pl := range a.plateaus {
			if rng.Float64() < rate {
				pl.CopyFrom(g, b.grid)
			}
		}
		lo, hi := a.interiorRows()
		for i := lo; i < hi; i++ {
			if rng.Float64() < rate {
				copy(g.Points[i], b.grid.Points[i])
			}
		}
	})
}

// derive runs op through TryOperator and wraps the result as a new planet.
func (p *Planet) derive(start *Grid, v Validator, op func(g *Grid)) (*Planet, bool) {
	g, err := TryOperator(p, start, v, op)
	if err != nil {
		return nil, false
	}
	return p.withGrid(g), true
}
