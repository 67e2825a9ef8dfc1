package evolution

import (
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/pthm-cable/planetforge/gravity"
	"github.com/pthm-cable/planetforge/planet"
)

// Operators is the set of capabilities the engine needs from an individual
// type. Operators that produce a new individual return ok=false when the
// candidate is rejected; the inputs are never modified except by Mutate.
type Operators[T any] interface {
	// Baseline returns a fresh baseline individual.
	Baseline() (T, error)
	Clone(x T) T
	// Mutate modifies x in place, or leaves it untouched and returns false.
	Mutate(rng *rand.Rand, x T) bool
	DifferentialMutate(base, a, b T, scale float64) (T, bool)
	Crossover(rng *rand.Rand, a, b T, rate float64) (T, bool)
	ContinuousCrossover(a, b T, alpha float64) (T, bool)
	Fitness(x T) (Evaluation, error)
	Diversity(a, b T) float64
	MinDiversities(xs []T) []float64
}

// CrossoverKind selects the discrete crossover used by PlanetOperators.
type CrossoverKind int

const (
	CrossoverUniform CrossoverKind = iota
	CrossoverParallel
)

// PlanetConfig configures PlanetOperators.
type PlanetConfig struct {
	Meridians int
	Parallels int
	Radius    float64
	// Noise roughens baselines when Amplitude > 0; each baseline gets the
	// next seed.
	Noise     planet.AsteroidParams
	Mutation  planet.MutationParams
	Crossover CrossoverKind
	Fitness   FitnessParams
}

// PlanetOperators implements Operators for planets.
type PlanetOperators struct {
	cfg       PlanetConfig
	validator planet.Validator
	evaluator gravity.Evaluator
	seed      atomic.Int64
}

// NewPlanetOperators wires the planet operators to a validity oracle and a
// gravity evaluator.
func NewPlanetOperators(cfg PlanetConfig, validator planet.Validator, evaluator gravity.Evaluator) *PlanetOperators {
	return &PlanetOperators{cfg: cfg, validator: validator, evaluator: evaluator}
}

// Config returns the operator configuration.
func (o *PlanetOperators) Config() PlanetConfig {
	return o.cfg
}

// Baseline implements Operators. Noisy baselines that fail validation fall
// back to the plain sphere.
func (o *PlanetOperators) Baseline() (*planet.Planet, error) {
	if o.cfg.Noise.Amplitude > 0 {
		noise := o.cfg.Noise
		noise.Seed += o.seed.Add(1) - 1
		p, err := planet.Asteroid(o.cfg.Meridians, o.cfg.Parallels, o.cfg.Radius, noise)
		if err != nil {
			return nil, fmt.Errorf("baseline asteroid: %w", err)
		}
		if o.validator == nil || o.validator.Valid(p) {
			return p, nil
		}
	}
	p, err := planet.Sphere(o.cfg.Meridians, o.cfg.Parallels, o.cfg.Radius)
	if err != nil {
		return nil, fmt.Errorf("baseline sphere: %w", err)
	}
	return p, nil
}

// Clone implements Operators.
func (o *PlanetOperators) Clone(p *planet.Planet) *planet.Planet {
	return p.Clone()
}

// Mutate implements Operators.
func (o *PlanetOperators) Mutate(rng *rand.Rand, p *planet.Planet) bool {
	return p.Mutate(rng, o.cfg.Mutation, o.validator)
}

// DifferentialMutate implements Operators.
func (o *PlanetOperators) DifferentialMutate(base, a, b *planet.Planet, scale float64) (*planet.Planet, bool) {
	return planet.DifferentialMutation(base, a, b, scale, o.validator)
}

// Crossover implements Operators.
func (o *PlanetOperators) Crossover(rng *rand.Rand, a, b *planet.Planet, rate float64) (*planet.Planet, bool) {
	if o.cfg.Crossover == CrossoverParallel {
		return planet.ParallelCrossover(rng, a, b, rate, o.validator)
	}
	return planet.UniformCrossover(rng, a, b, rate, o.validator)
}

// ContinuousCrossover implements Operators.
func (o *PlanetOperators) ContinuousCrossover(a, b *planet.Planet, alpha float64) (*planet.Planet, bool) {
	return planet.ContinuousCrossover(a, b, alpha, o.validator)
}

// Fitness implements Operators.
func (o *PlanetOperators) Fitness(p *planet.Planet) (Evaluation, error) {
	return EvaluateFitness(p, o.cfg.Fitness, o.evaluator)
}

// Diversity implements Operators.
func (o *PlanetOperators) Diversity(a, b *planet.Planet) float64 {
	return planet.Diversity(a, b)
}

// MinDiversities implements Operators.
func (o *PlanetOperators) MinDiversities(ps []*planet.Planet) []float64 {
	return planet.MinDiversities(ps)
}
