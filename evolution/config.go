package evolution

import (
	"github.com/pthm-cable/planetforge/config"
	"github.com/pthm-cable/planetforge/gravity"
	"github.com/pthm-cable/planetforge/mesh"
	"github.com/pthm-cable/planetforge/planet"
	"github.com/pthm-cable/planetforge/validity"
)

// ParamsFromConfig maps the loaded configuration onto engine parameters.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		PopulationSize:            cfg.Population.Size,
		InitMutations:             cfg.Population.InitMutations,
		MutationAttempts:          cfg.Mutation.Attempts,
		DifferentialScale:         cfg.Mutation.DifferentialScale,
		CrossoverRate:             cfg.Crossover.Rate,
		CrossoverAttempts:         cfg.Crossover.Attempts,
		ContinuousAlpha:           cfg.Crossover.ContinuousAlpha,
		CrossoverFallbackAttempts: cfg.Crossover.FallbackAttempts,
		DiversityCoefficient:      cfg.Selection.DiversityCoefficient,
		MaxIterations:             cfg.Termination.MaxIterations,
		DiversityLimit:            cfg.Termination.DiversityLimit,
		FitnessThreshold:          cfg.Termination.FitnessThreshold,
		EpochsWithoutImprovement:  cfg.Termination.EpochsWithoutImprovement,
		Immigration: ImmigrationParams{
			Policy:      ImmigrationPolicy(cfg.Derived.ImmigrationPolicy),
			Count:       cfg.Immigration.Count,
			Interval:    cfg.Immigration.Interval,
			FreshSphere: cfg.Immigration.FreshSphere,
		},
		Workers: cfg.Parallel.Workers,
	}
}

// PlanetConfigFromConfig maps the loaded configuration onto planet operator
// settings. seed offsets the noise of roughened baselines.
func PlanetConfigFromConfig(cfg *config.Config, seed int64) PlanetConfig {
	kind := CrossoverUniform
	if cfg.Derived.ParallelCrossover {
		kind = CrossoverParallel
	}
	return PlanetConfig{
		Meridians: cfg.Planet.Meridians,
		Parallels: cfg.Planet.Parallels,
		Radius:    cfg.Planet.Radius,
		Noise: planet.AsteroidParams{
			Amplitude: cfg.Planet.NoiseAmplitude,
			Frequency: cfg.Planet.NoiseFrequency,
			Seed:      seed,
		},
		Mutation: planet.MutationParams{
			MinDistance: cfg.Mutation.MinDistance,
			MaxDistance: cfg.Mutation.MaxDistance,
			Sigma:       cfg.Mutation.Sigma,
		},
		Crossover: kind,
		Fitness: FitnessParams{
			Type:                FitnessType(cfg.Fitness.Type),
			SampleSize:          cfg.Fitness.SampleSize,
			DistanceFromSurface: cfg.Fitness.DistanceFromSurface,
			TessellationStep:    cfg.Fitness.TessellationStep,
			G:                   cfg.Fitness.G,
		},
	}
}

// OracleFromConfig builds the validity oracle the configuration selects.
func OracleFromConfig(cfg *config.Config) *validity.Oracle {
	o := &validity.Oracle{Step: cfg.Validity.Step}
	if cfg.Derived.BruteForce {
		o.Intersector = mesh.BruteForce{Workers: cfg.Parallel.Workers}
	} else {
		o.Intersector = mesh.BVHIntersector{Workers: cfg.Parallel.Workers, LeafSize: cfg.Validity.LeafSize}
	}
	return o
}

// NewPlanetOperatorsFromConfig wires planet operators, the validity oracle and
// the gravity evaluator from the loaded configuration.
func NewPlanetOperatorsFromConfig(cfg *config.Config, seed int64) *PlanetOperators {
	eval := gravity.ParallelEvaluator{
		Workers:   cfg.Parallel.GravityWorkers,
		ChunkSize: cfg.Parallel.GravityChunk,
	}
	return NewPlanetOperators(PlanetConfigFromConfig(cfg, seed), OracleFromConfig(cfg), eval)
}
