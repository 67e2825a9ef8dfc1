package main

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/planetforge/config"
	"github.com/pthm-cable/planetforge/evolution"
	"github.com/pthm-cable/planetforge/planet"
	"github.com/pthm-cable/planetforge/telemetry"
)

// FitnessEvaluator runs short headless evolutions and scores a parameter
// vector by the best planet fitness they reach.
type FitnessEvaluator struct {
	params     *ParamVector
	epochs     int
	seeds      []int64
	baseConfig *config.Config
	logger     *slog.Logger

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastSpread     float64 // std of per-seed fitness from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, epochs int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		epochs:      epochs,
		seeds:       seeds,
		baseConfig:  baseCfg,
		logger:      slog.New(slog.DiscardHandler),
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastSpread returns the per-seed standard deviation from the most recent
// evaluation.
func (fe *FitnessEvaluator) LastSpread() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSpread
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	best       float64
	hallOfFame *telemetry.HallOfFame
}

// Evaluate computes fitness for a parameter vector (lower = better).
// It is the negated mean over seeds of the best planet fitness reached.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	p := pool.NewWithResults[seedResult]()
	for _, seed := range fe.seeds {
		p.Go(func() seedResult {
			return fe.runEvolution(cfg, seed)
		})
	}
	results := p.Wait()

	bests := make([]float64, 0, len(results))
	var bestSeed seedResult
	bestSeed.best = math.Inf(-1)
	for _, r := range results {
		if math.IsNaN(r.best) {
			continue
		}
		bests = append(bests, r.best)
		if r.best > bestSeed.best {
			bestSeed = r
		}
	}

	// Every seed failed: worst possible score
	if len(bests) == 0 {
		return 0
	}
	mean, std := stat.MeanStdDev(bests, nil)
	fitness := -mean

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestHallOfFame = bestSeed.hallOfFame
	}
	fe.lastSpread = std
	fe.mu.Unlock()

	return fitness
}

// runEvolution executes a single headless evolution of fe.epochs epochs.
func (fe *FitnessEvaluator) runEvolution(cfg *config.Config, seed int64) seedResult {
	params := evolution.ParamsFromConfig(cfg)
	params.MaxIterations = fe.epochs

	hof := telemetry.NewHallOfFame(cfg.HallOfFame.Size)
	var engine *evolution.Engine[*planet.Planet]
	engine = evolution.NewEngine[*planet.Planet](
		evolution.NewPlanetOperatorsFromConfig(cfg, seed),
		params,
		rand.New(rand.NewSource(seed)),
		evolution.Hooks{
			Logger: fe.logger,
			OnEpoch: func(stats telemetry.EpochStats) {
				hof.ConsiderAll(engine.Population(), engine.Fitness(), stats.Epoch)
			},
		},
	)

	failed := seedResult{best: math.NaN()}
	ctx := context.Background()
	if err := engine.Start(); err != nil {
		slog.Warn("run failed to start", "seed", seed, "error", err)
		return failed
	}
	if err := engine.Initialize(ctx); err != nil {
		slog.Warn("run failed to initialize", "seed", seed, "error", err)
		return failed
	}
	for !engine.Terminated() {
		if err := engine.Epoch(ctx); err != nil {
			slog.Warn("run aborted", "seed", seed, "epoch", engine.Generation(), "error", err)
			break
		}
	}

	_, best, ok := engine.Best()
	if !ok {
		return failed
	}
	return seedResult{best: best, hallOfFame: hof}
}

// copyConfig returns a copy of the base config. Config sections are plain
// values, so a struct copy is independent.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
