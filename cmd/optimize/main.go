// Package main provides CMA-ES optimization for finding evolution parameters
// that grow planets with the best gravity alignment.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/planetforge/config"
	"github.com/pthm-cable/planetforge/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	epochs := flag.Int("epochs", 30, "Epochs per evolution run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if *outputDir == "" {
		fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fatal("failed to create output directory", "error", err)
	}
	if err := config.Init(*configPath); err != nil {
		fatal("failed to load config", "error", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector()
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, *epochs, evalSeeds, baseCfg)

	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	progress, err := newProgress(logPath, params, *maxEvals)
	if err != nil {
		fatal("failed to create log file", "error", err)
	}
	defer progress.Close()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			progress.Record(clamped, fitness, evaluator.LastSpread())
			return fitness
		},
	}

	dim := params.Dim()
	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // seeds already run in parallel
	}

	// Start from the base config rather than the built-in defaults
	initX := params.Normalize(params.Clamp(params.ExtractFromConfig(baseCfg)))

	slog.Info("starting CMA-ES optimization",
		"params", dim, "population", popSize, "max_evals", *maxEvals,
		"seeds", *seeds, "epochs", *epochs,
	)
	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}

	best := progress.Best()
	if best == nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	progress.Summary(best)

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		fatal("failed to reload config", "error", err)
	}
	params.ApplyToConfig(bestCfg, best)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		slog.Error("failed to write best config", "error", err)
	} else {
		slog.Info("best config saved", "path", configOutPath)
	}

	if hof := evaluator.BestHallOfFame(); hof != nil {
		p := bestCfg.Planet
		hofPath := filepath.Join(*outputDir, telemetry.HallOfFameFile)
		if err := telemetry.SavePopulation(hofPath, hof.Population(p.Meridians, p.Parallels, p.Radius)); err != nil {
			slog.Error("failed to write hall of fame", "error", err)
		} else {
			slog.Info("hall of fame saved", "path", hofPath, "planets", hof.Size())
		}
	}
}

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
