// Package evolution runs the genetic algorithm over a population of
// individuals described by an Operators implementation.
package evolution

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"runtime"
	"slices"
	"sort"

	"github.com/pthm-cable/planetforge/telemetry"
	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Hooks are optional observers of an engine.
type Hooks struct {
	Collector *telemetry.Collector
	Perf      *telemetry.PerfCollector
	OnEpoch   func(telemetry.EpochStats)
	Logger    *slog.Logger
}

// Engine owns a population and advances it one epoch at a time. It is not
// safe for concurrent use; Runner drives it from a single goroutine and
// publishes copies.
type Engine[T any] struct {
	ops    Operators[T]
	params Params
	rng    *rand.Rand

	state         State
	population    []T
	fitness       []float64
	errs          []float64
	diversity     []float64
	history       History
	generation    int
	noImprovement int
	initCursor    int

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	onEpoch   func(telemetry.EpochStats)
	logger    *slog.Logger
}

// NewEngine creates an engine in the Uninitialized state.
func NewEngine[T any](ops Operators[T], params Params, rng *rand.Rand, hooks Hooks) *Engine[T] {
	e := &Engine[T]{
		ops:       ops,
		params:    params,
		rng:       rng,
		collector: hooks.Collector,
		perf:      hooks.Perf,
		onEpoch:   hooks.OnEpoch,
		logger:    hooks.Logger,
	}
	if e.collector == nil {
		e.collector = telemetry.NewCollector("")
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Start fills the population with baseline individuals and enters
// Initializing.
func (e *Engine[T]) Start() error {
	if e.state != Uninitialized {
		return fmt.Errorf("start: %w (%s)", ErrWrongState, e.state)
	}
	if e.params.PopulationSize < 1 {
		return fmt.Errorf("start: size %d: %w", e.params.PopulationSize, ErrEmptyPopulation)
	}
	pop := make([]T, e.params.PopulationSize)
	for i := range pop {
		x, err := e.ops.Baseline()
		if err != nil {
			return fmt.Errorf("start: individual %d: %w", i, err)
		}
		pop[i] = x
	}
	e.population = pop
	e.initCursor = 0
	e.state = Initializing
	return nil
}

// StartWith adopts an existing population, skipping the initial mutations.
func (e *Engine[T]) StartWith(pop []T) error {
	if e.state != Uninitialized {
		return fmt.Errorf("start with: %w (%s)", ErrWrongState, e.state)
	}
	if len(pop) == 0 {
		return fmt.Errorf("start with: %w", ErrEmptyPopulation)
	}
	e.population = make([]T, len(pop))
	for i, x := range pop {
		e.population[i] = e.ops.Clone(x)
	}
	e.initCursor = len(pop)
	e.state = Initializing
	_, err := e.InitStep()
	return err
}

// InitStep applies the initial mutations to the next individual. When the
// last individual is done it evaluates the population and enters Ready.
func (e *Engine[T]) InitStep() (done bool, err error) {
	if e.state != Initializing {
		return false, fmt.Errorf("init step: %w (%s)", ErrWrongState, e.state)
	}
	if e.initCursor < len(e.population) {
		x := e.population[e.initCursor]
		for k := 0; k < e.params.InitMutations; k++ {
			e.ops.Mutate(e.rng, x)
		}
		e.initCursor++
		if e.initCursor < len(e.population) {
			return false, nil
		}
	}

	evals, err := e.evaluateAll(e.population)
	if err != nil {
		return false, fmt.Errorf("init step: %w", err)
	}
	e.fitness = make([]float64, len(evals))
	e.errs = make([]float64, len(evals))
	for i, ev := range evals {
		e.fitness[i] = ev.Fitness
		e.errs[i] = ev.Error
	}
	e.diversity = e.ops.MinDiversities(e.population)
	e.appendHistory()
	e.state = Ready
	e.logger.Info("population initialized", "size", len(e.population), "fitness_mean", e.history.MeanFitness[0])
	return true, nil
}

// Initialize runs InitStep until Ready. Cancellation is checked between
// individuals.
func (e *Engine[T]) Initialize(ctx context.Context) error {
	for e.state == Initializing {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := e.InitStep(); err != nil {
			return err
		}
	}
	return nil
}

// Epoch advances the population by one generation: immigration, mutation,
// crossover, fitness, selection, history. On any error the committed state
// is left exactly as it was.
func (e *Engine[T]) Epoch(ctx context.Context) error {
	if e.state != Ready {
		return fmt.Errorf("epoch: %w (%s)", ErrWrongState, e.state)
	}
	e.collector.Reset()
	e.perf.StartEpoch()

	pop := slices.Clone(e.population)
	fit := slices.Clone(e.fitness)
	errs := slices.Clone(e.errs)
	div := slices.Clone(e.diversity)

	e.perf.StartPhase(telemetry.PhaseImmigration)
	if e.immigrationDue() {
		if err := e.immigrate(pop, fit, errs, div); err != nil {
			return fmt.Errorf("epoch %d: immigration: %w", e.generation, err)
		}
	}

	e.perf.StartPhase(telemetry.PhaseMutation)
	offspring := make([]T, len(pop))
	for i := range pop {
		if err := ctx.Err(); err != nil {
			return err
		}
		x, err := e.mutateSlot(pop, i)
		if err != nil {
			return fmt.Errorf("epoch %d: mutation slot %d: %w", e.generation, i, err)
		}
		offspring[i] = x
	}

	e.perf.StartPhase(telemetry.PhaseCrossover)
	children := make([]T, len(pop))
	for i := range pop {
		if err := ctx.Err(); err != nil {
			return err
		}
		children[i] = e.crossSlot(pop[i], offspring[i])
	}

	e.perf.StartPhase(telemetry.PhaseFitness)
	evals, err := e.evaluateAll(children)
	if err != nil {
		e.logger.Warn("epoch aborted", "epoch", e.generation, "err", err)
		return fmt.Errorf("epoch %d: %w", e.generation, err)
	}

	e.perf.StartPhase(telemetry.PhaseSelection)
	e.selectSurvivors(pop, fit, errs, children, evals)
	div = e.ops.MinDiversities(pop)

	e.perf.StartPhase(telemetry.PhaseHistory)
	e.population, e.fitness, e.errs, e.diversity = pop, fit, errs, div
	e.appendHistory()
	e.updateNoImprovement()
	e.generation++

	stats := e.collector.Flush(e.generation, e.fitness, e.errs, e.diversity, e.noImprovement)
	e.perf.EndEpoch()
	if e.onEpoch != nil {
		e.onEpoch(stats)
	}
	return nil
}

// mutateSlot returns a differential mutant for slot i, or a baseline
// individual if every attempt is rejected.
func (e *Engine[T]) mutateSlot(pop []T, i int) (T, error) {
	attempts := max(1, e.params.MutationAttempts)
	if len(pop) >= 3 {
		for k := 0; k < attempts; k++ {
			r := e.donors(len(pop), i)
			x, ok := e.ops.DifferentialMutate(pop[r[0]], pop[r[1]], pop[r[2]], e.params.DifferentialScale)
			e.collector.RecordDiffMutation(ok)
			if ok {
				return x, nil
			}
		}
	}
	e.collector.RecordSphereFallback()
	return e.ops.Baseline()
}

// donors picks three distinct slots, excluding i when the population allows.
func (e *Engine[T]) donors(n, i int) [3]int {
	candidates := make([]int, 0, n)
	for j := 0; j < n; j++ {
		if j != i || n < 4 {
			candidates = append(candidates, j)
		}
	}
	perm := e.rng.Perm(len(candidates))
	return [3]int{candidates[perm[0]], candidates[perm[1]], candidates[perm[2]]}
}

// crossSlot crosses a parent with its mutant. Discrete crossover is retried at
// decreasing rates, then continuous crossover at decreasing blend ratios, and
// finally the parent is mutated.
func (e *Engine[T]) crossSlot(parent, mutant T) T {
	p := e.params
	for k := 0; k < p.CrossoverAttempts; k++ {
		rate := p.CrossoverRate * (1 - float64(k)/float64(p.CrossoverAttempts))
		x, ok := e.ops.Crossover(e.rng, parent, mutant, rate)
		e.collector.RecordCrossover(ok)
		if ok {
			return x
		}
	}
	for k := 0; k < p.CrossoverFallbackAttempts; k++ {
		alpha := p.ContinuousAlpha * (1 - float64(k)/float64(p.CrossoverFallbackAttempts))
		if x, ok := e.ops.ContinuousCrossover(parent, mutant, alpha); ok {
			e.collector.RecordContinuousFallback()
			return x
		}
	}

	e.collector.RecordMutationFallback()
	x := e.ops.Clone(parent)
	for k := 0; k < max(1, p.MutationAttempts); k++ {
		if e.ops.Mutate(e.rng, x) {
			break
		}
	}
	return x
}

// nearest returns the smallest diversity between x and any slot but skip.
// selectSurvivors keeps, per slot, the parent or its child by the higher
// fitness − coef·diversity. Both sides measure diversity to the other parents
// as they were before selection, so the result does not depend on slot order.
func (e *Engine[T]) selectSurvivors(pop []T, fit, errs []float64, children []T, evals []Evaluation) {
	coef := e.params.DiversityCoefficient
	parents := slices.Clone(pop)
	for i := range parents {
		parentScore := fit[i]
		childScore := evals[i].Fitness
		if coef != 0 {
			parentScore -= coef * e.nearest(parents[i], parents, i)
			childScore -= coef * e.nearest(children[i], parents, i)
		}
		if childScore > parentScore {
			pop[i] = children[i]
			fit[i] = evals[i].Fitness
			errs[i] = evals[i].Error
			e.collector.RecordReplacement()
		}
	}
}

func (e *Engine[T]) nearest(x T, pop []T, skip int) float64 {
	best := math.Inf(1)
	for j := range pop {
		if j == skip {
			continue
		}
		best = math.Min(best, e.ops.Diversity(x, pop[j]))
	}
	if math.IsInf(best, 1) {
		return 0
	}
	return best
}

func (e *Engine[T]) immigrationDue() bool {
	im := e.params.Immigration
	return im.Interval > 0 && im.Count > 0 && e.generation > 0 && e.generation%im.Interval == 0
}

// immigrate replaces slots in place and re-evaluates them.
func (e *Engine[T]) immigrate(pop []T, fit, errs, div []float64) error {
	im := e.params.Immigration
	slots := e.immigrantSlots(div, min(im.Count, len(pop)))

	immigrants := make([]T, len(slots))
	for k, s := range slots {
		var x T
		if im.FreshSphere {
			b, err := e.ops.Baseline()
			if err != nil {
				return err
			}
			x = b
		} else {
			x = e.ops.Clone(pop[s])
		}
		for m := 0; m < e.params.InitMutations; m++ {
			e.ops.Mutate(e.rng, x)
		}
		immigrants[k] = x
	}

	evals, err := e.evaluateAll(immigrants)
	if err != nil {
		return err
	}
	for k, s := range slots {
		pop[s] = immigrants[k]
		fit[s] = evals[k].Fitness
		errs[s] = evals[k].Error
		e.collector.RecordImmigrant()
	}
	e.logger.Debug("immigration", "epoch", e.generation, "slots", slots)
	return nil
}

func (e *Engine[T]) immigrantSlots(div []float64, count int) []int {
	if e.params.Immigration.Policy == ImmigrationLeastDiverse {
		idx := make([]int, len(div))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return div[idx[a]] < div[idx[b]] })
		return idx[:count]
	}
	return e.rng.Perm(len(div))[:count]
}

// evaluateAll computes fitness for every individual in parallel.
func (e *Engine[T]) evaluateAll(xs []T) ([]Evaluation, error) {
	workers := e.params.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]Evaluation, len(xs))
	p := pool.New().WithErrors().WithFirstError().WithMaxGoroutines(workers)
	for i := range xs {
		p.Go(func() error {
			ev, err := e.ops.Fitness(xs[i])
			if err != nil {
				return fmt.Errorf("individual %d: %w", i, err)
			}
			out[i] = ev
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine[T]) appendHistory() {
	e.history.MeanFitness = append(e.history.MeanFitness, stat.Mean(e.fitness, nil))
	e.history.BestFitness = append(e.history.BestFitness, floats.Max(e.fitness))
	e.history.MeanError = append(e.history.MeanError, stat.Mean(e.errs, nil))
	e.history.MeanDiversity = append(e.history.MeanDiversity, stat.Mean(e.diversity, nil))
}

func (e *Engine[T]) updateNoImprovement() {
	h := e.history.MeanFitness
	if len(h) < 2 {
		return
	}
	if math.Abs(h[len(h)-1]-h[len(h)-2]) < e.params.FitnessThreshold {
		e.noImprovement++
	} else {
		e.noImprovement = 0
	}
}

// Terminated reports whether the run is over, moving a Ready engine to
// Terminated when a stop condition holds.
func (e *Engine[T]) Terminated() bool {
	if e.state == Terminated {
		return true
	}
	if e.state != Ready {
		return false
	}
	if reason := e.stopReason(); reason != "" {
		e.state = Terminated
		e.logger.Info("evolution terminated", "epoch", e.generation, "reason", reason)
		return true
	}
	return false
}

func (e *Engine[T]) stopReason() string {
	p := e.params
	switch {
	case p.MaxIterations > 0 && e.generation > p.MaxIterations:
		return "max_iterations"
	case p.DiversityLimit > 0 && e.history.Len() > 0 && e.history.MeanDiversity[e.history.Len()-1] < p.DiversityLimit:
		return "diversity_limit"
	case p.EpochsWithoutImprovement > 0 && e.noImprovement >= p.EpochsWithoutImprovement:
		return "no_improvement"
	}
	return ""
}

// State returns the lifecycle state.
func (e *Engine[T]) State() State { return e.state }

// Generation returns the number of completed epochs.
func (e *Engine[T]) Generation() int { return e.generation }

// NoImprovement returns the current no-improvement counter.
func (e *Engine[T]) NoImprovement() int { return e.noImprovement }

// Population returns the committed population slice (shared individuals).
func (e *Engine[T]) Population() []T { return slices.Clone(e.population) }

// Fitness returns per-individual fitness.
func (e *Engine[T]) Fitness() []float64 { return slices.Clone(e.fitness) }

// Errors returns per-individual fitness error terms.
func (e *Engine[T]) Errors() []float64 { return slices.Clone(e.errs) }

// Diversity returns per-individual nearest-neighbour diversity.
func (e *Engine[T]) Diversity() []float64 { return slices.Clone(e.diversity) }

// History returns a copy of the per-epoch history.
func (e *Engine[T]) History() History { return e.history.clone() }

// Best returns the fittest individual and its fitness.
func (e *Engine[T]) Best() (T, float64, bool) {
	var zero T
	if len(e.fitness) == 0 {
		return zero, 0, false
	}
	i := floats.MaxIdx(e.fitness)
	return e.population[i], e.fitness[i], true
}
