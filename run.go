package main

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/planetforge/config"
	"github.com/pthm-cable/planetforge/evolution"
	"github.com/pthm-cable/planetforge/planet"
	"github.com/pthm-cable/planetforge/telemetry"
)

type sessionOptions struct {
	RunID     string
	Seed      int64
	OutputDir string
	LoadPath  string
	LogStats  bool
	Logger    *slog.Logger
}

// session wires one evolution run to its telemetry outputs.
type session struct {
	cfg    *config.Config
	runID  string
	opts   sessionOptions
	engine *evolution.Engine[*planet.Planet]
	runner *evolution.Runner[*planet.Planet]

	perf   *telemetry.PerfCollector
	output *telemetry.OutputManager
	hof    *telemetry.HallOfFame
}

func newSession(cfg *config.Config, opts sessionOptions) (*session, error) {
	out, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := out.WriteConfig(cfg); err != nil {
		out.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	s := &session{
		cfg:    cfg,
		runID:  opts.RunID,
		opts:   opts,
		perf:   telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output: out,
		hof:    telemetry.NewHallOfFame(cfg.HallOfFame.Size),
	}

	ops := evolution.NewPlanetOperatorsFromConfig(cfg, opts.Seed)
	s.engine = evolution.NewEngine[*planet.Planet](
		ops,
		evolution.ParamsFromConfig(cfg),
		rand.New(rand.NewSource(opts.Seed)),
		evolution.Hooks{
			Collector: telemetry.NewCollector(opts.RunID),
			Perf:      s.perf,
			OnEpoch:   s.onEpoch,
			Logger:    opts.Logger,
		},
	)

	if opts.LoadPath != "" {
		if err := s.resume(opts.LoadPath); err != nil {
			out.Close()
			return nil, err
		}
	}

	s.runner = evolution.NewRunner(s.engine)
	return s, nil
}

// resume seeds the engine with a saved population.
func (s *session) resume(path string) error {
	pop, err := telemetry.LoadPopulation(path)
	if err != nil {
		return fmt.Errorf("loading population: %w", err)
	}
	planets, err := pop.BuildPlanets()
	if err != nil {
		return fmt.Errorf("rebuilding population: %w", err)
	}
	if pop.Meridians != s.cfg.Planet.Meridians || pop.Parallels != s.cfg.Planet.Parallels {
		slog.Warn("population grid differs from config",
			"file_meridians", pop.Meridians, "file_parallels", pop.Parallels,
			"config_meridians", s.cfg.Planet.Meridians, "config_parallels", s.cfg.Planet.Parallels,
		)
	}
	slog.Info("resuming population", "path", path, "size", len(planets))
	return s.engine.StartWith(planets)
}

// onEpoch runs on the runner goroutine right after an epoch commits, so it
// may read the engine directly.
func (s *session) onEpoch(stats telemetry.EpochStats) {
	if s.opts.LogStats {
		stats.LogStats()
		slog.Info("perf", "epoch", stats.Epoch, "stats", s.perf.Stats())
	}

	if err := s.output.WriteEpoch(stats); err != nil {
		slog.Error("failed to write epoch stats", "error", err)
	}
	if err := s.output.WritePerf(s.perf.Stats(), stats.Epoch); err != nil {
		slog.Error("failed to write perf stats", "error", err)
	}

	s.hof.ConsiderAll(s.engine.Population(), s.engine.Fitness(), stats.Epoch)

	if n := s.cfg.Telemetry.SnapshotInterval; n > 0 && stats.Epoch%n == 0 {
		name := fmt.Sprintf("population_%05d.popu", stats.Epoch)
		if err := s.output.WritePopulation(name, s.population(s.engine.Population())); err != nil {
			slog.Error("failed to write population snapshot", "error", err)
		}
	}
}

func (s *session) population(planets []*planet.Planet) *telemetry.Population {
	p := s.cfg.Planet
	return telemetry.NewPopulation(planets, p.Meridians, p.Parallels, p.Radius)
}

// Finish writes the final population and hall of fame. Call it after the
// runner has stopped.
func (s *session) Finish() error {
	snap := s.runner.Latest()
	if snap == nil {
		slog.Warn("no committed population to save")
		return nil
	}
	s.hof.ConsiderAll(snap.Population, snap.Fitness, snap.Generation)

	best := -1.0
	if b := snap.Best(); b >= 0 {
		best = snap.Fitness[b]
	}
	slog.Info("evolution finished",
		"run_id", s.runID,
		"generation", snap.Generation,
		"state", snap.State.String(),
		"best_fitness", best,
		"hall_of_fame_top", s.hof.TopFitness(),
	)

	if err := s.output.WritePopulation("", s.population(snap.Population)); err != nil {
		return err
	}
	p := s.cfg.Planet
	if err := s.output.WriteHallOfFame(s.hof, s.runID, p.Meridians, p.Parallels, p.Radius); err != nil {
		return err
	}
	if dir := s.output.Dir(); dir != "" {
		slog.Info("results written", "dir", dir)
	}
	return nil
}

// Close flushes output files.
func (s *session) Close() {
	if err := s.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
