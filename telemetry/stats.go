package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EpochStats holds aggregated statistics for one evolution epoch.
type EpochStats struct {
	RunID string `csv:"run_id"`
	Epoch int    `csv:"epoch"`

	Population int `csv:"population"`

	// Fitness distribution after selection
	FitnessMean float64 `csv:"fitness_mean"`
	FitnessBest float64 `csv:"fitness_best"`
	FitnessP10  float64 `csv:"fitness_p10"`
	FitnessP50  float64 `csv:"fitness_p50"`
	FitnessP90  float64 `csv:"fitness_p90"`
	ErrorMean   float64 `csv:"error_mean"`

	// Nearest-neighbour diversity
	DiversityMean float64 `csv:"diversity_mean"`
	DiversityMin  float64 `csv:"diversity_min"`

	// Operator outcomes during the epoch
	Immigrants          int `csv:"immigrants"`
	DiffMutations       int `csv:"diff_mutations"`
	DiffMutationRejects int `csv:"diff_mutation_rejects"`
	SphereFallbacks     int `csv:"sphere_fallbacks"`
	Crossovers          int `csv:"crossovers"`
	CrossoverRejects    int `csv:"crossover_rejects"`
	ContinuousFallbacks int `csv:"continuous_fallbacks"`
	MutationFallbacks   int `csv:"mutation_fallbacks"`
	Replacements        int `csv:"replacements"`

	NoImprovement int `csv:"no_improvement"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeStats returns mean, max and percentiles of values. NaNs are ignored.
func ComputeStats(values []float64) (mean, best, p10, p50, p90 float64) {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(clean, nil)
	best = floats.Max(clean)

	sort.Float64s(clean)
	p10 = Percentile(clean, 0.10)
	p50 = Percentile(clean, 0.50)
	p90 = Percentile(clean, 0.90)
	return mean, best, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s EpochStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("epoch", s.Epoch),
		slog.Int("population", s.Population),
		slog.Float64("fitness_mean", s.FitnessMean),
		slog.Float64("fitness_best", s.FitnessBest),
		slog.Float64("fitness_p50", s.FitnessP50),
		slog.Float64("error_mean", s.ErrorMean),
		slog.Float64("diversity_mean", s.DiversityMean),
		slog.Float64("diversity_min", s.DiversityMin),
		slog.Int("immigrants", s.Immigrants),
		slog.Int("diff_mutations", s.DiffMutations),
		slog.Int("diff_mutation_rejects", s.DiffMutationRejects),
		slog.Int("sphere_fallbacks", s.SphereFallbacks),
		slog.Int("crossovers", s.Crossovers),
		slog.Int("crossover_rejects", s.CrossoverRejects),
		slog.Int("continuous_fallbacks", s.ContinuousFallbacks),
		slog.Int("mutation_fallbacks", s.MutationFallbacks),
		slog.Int("replacements", s.Replacements),
		slog.Int("no_improvement", s.NoImprovement),
	)
}

// LogStats logs the epoch stats using slog.
func (s EpochStats) LogStats() {
	slog.Info("epoch",
		"epoch", s.Epoch,
		"fitness_mean", s.FitnessMean,
		"fitness_best", s.FitnessBest,
		"error_mean", s.ErrorMean,
		"diversity_mean", s.DiversityMean,
		"replacements", s.Replacements,
		"no_improvement", s.NoImprovement,
	)
}
