package telemetry

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Collector accumulates operator outcomes within an epoch and produces
// EpochStats.
type Collector struct {
	runID string

	immigrants          int
	diffMutations       int
	diffMutationRejects int
	sphereFallbacks     int
	crossovers          int
	crossoverRejects    int
	continuousFallbacks int
	mutationFallbacks   int
	replacements        int
}

// NewCollector creates a new stats collector tagging rows with runID.
func NewCollector(runID string) *Collector {
	return &Collector{runID: runID}
}

// RecordImmigrant records a slot replaced by immigration.
func (c *Collector) RecordImmigrant() {
	c.immigrants++
}

// RecordDiffMutation records a differential mutation attempt and its outcome.
func (c *Collector) RecordDiffMutation(ok bool) {
	if ok {
		c.diffMutations++
	} else {
		c.diffMutationRejects++
	}
}

// RecordSphereFallback records a slot that fell back to a fresh sphere.
func (c *Collector) RecordSphereFallback() {
	c.sphereFallbacks++
}

// RecordCrossover records a discrete crossover attempt and its outcome.
func (c *Collector) RecordCrossover(ok bool) {
	if ok {
		c.crossovers++
	} else {
		c.crossoverRejects++
	}
}

// RecordContinuousFallback records a child produced by continuous crossover.
func (c *Collector) RecordContinuousFallback() {
	c.continuousFallbacks++
}

// RecordMutationFallback records a child produced by plain mutation.
func (c *Collector) RecordMutationFallback() {
	c.mutationFallbacks++
}

// RecordReplacement records an offspring winning selection.
func (c *Collector) RecordReplacement() {
	c.replacements++
}

// Flush produces EpochStats from the committed population values and resets
// counters for the next epoch.
func (c *Collector) Flush(epoch int, fitness, errs, diversity []float64, noImprovement int) EpochStats {
	mean, best, p10, p50, p90 := ComputeStats(fitness)

	stats := EpochStats{
		RunID:      c.runID,
		Epoch:      epoch,
		Population: len(fitness),

		FitnessMean: mean,
		FitnessBest: best,
		FitnessP10:  p10,
		FitnessP50:  p50,
		FitnessP90:  p90,

		Immigrants:          c.immigrants,
		DiffMutations:       c.diffMutations,
		DiffMutationRejects: c.diffMutationRejects,
		SphereFallbacks:     c.sphereFallbacks,
		Crossovers:          c.crossovers,
		CrossoverRejects:    c.crossoverRejects,
		ContinuousFallbacks: c.continuousFallbacks,
		MutationFallbacks:   c.mutationFallbacks,
		Replacements:        c.replacements,

		NoImprovement: noImprovement,
	}
	if len(errs) > 0 {
		stats.ErrorMean = stat.Mean(errs, nil)
	}
	if len(diversity) > 0 {
		stats.DiversityMean = stat.Mean(diversity, nil)
		stats.DiversityMin = floats.Min(diversity)
	}

	c.Reset()
	return stats
}

// Reset clears the per-epoch counters.
func (c *Collector) Reset() {
	runID := c.runID
	*c = Collector{runID: runID}
}
