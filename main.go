package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/planetforge/config"
	"github.com/pthm-cable/planetforge/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output epoch stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and population files")
	loadPath := flag.String("load", "", "Resume from a population file instead of fresh spheres")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	epochs := flag.Int("epochs", 0, "Stop after N epochs (0 = use config)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *epochs > 0 {
		cfg.Termination.MaxIterations = *epochs
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(cfg, sessionOptions{
		RunID:     uuid.NewString(),
		Seed:      rngSeed,
		OutputDir: *outputDir,
		LoadPath:  *loadPath,
		LogStats:  *logStats,
		Logger:    logger,
	})
	if err != nil {
		slog.Error("failed to set up run", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	slog.Info("starting evolution",
		"run_id", s.runID,
		"seed", rngSeed,
		"headless", *headless,
		"population", cfg.Population.Size,
		"max_iterations", cfg.Termination.MaxIterations,
		"resumed", *loadPath != "",
	)

	s.runner.Start(ctx)

	if *headless {
		// Headless mode - no raylib needed
		<-s.runner.Done()
	} else {
		v := viewer.New(viewer.OptionsFromConfig(cfg), s.runner, s.perf)
		if err := v.Run(ctx); err != nil {
			slog.Error("viewer failed", "error", err)
		}
	}

	if err := s.runner.Stop(); err != nil {
		slog.Error("evolution failed", "error", err)
	}
	if err := s.Finish(); err != nil {
		slog.Error("failed to write results", "error", err)
		os.Exit(1)
	}
}
