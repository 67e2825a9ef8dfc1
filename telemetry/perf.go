package telemetry

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Phase names for one evolution epoch.
const (
	PhaseImmigration = "immigration"
	PhaseMutation    = "mutation"
	PhaseCrossover   = "crossover"
	PhaseFitness     = "fitness"
	PhaseSelection   = "selection"
	PhaseHistory     = "history"
)

var epochPhases = []string{
	PhaseImmigration, PhaseMutation, PhaseCrossover,
	PhaseFitness, PhaseSelection, PhaseHistory,
}

// PerfSample holds timing data for a single epoch.
type PerfSample struct {
	EpochDuration time.Duration
	Phases        map[string]time.Duration
}

// PerfCollector tracks epoch timings over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	epochStart    time.Time
	phaseStart    time.Time
	lastPhase     string

	// Frame timing, written by the viewer goroutine
	lastFrameTime time.Time
	frameNanos    atomic.Int64
}

// NewPerfCollector creates a new performance collector averaging over
// windowSize epochs.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 10
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartEpoch begins timing a new epoch.
func (p *PerfCollector) StartEpoch() {
	if p == nil {
		return
	}
	p.epochStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a phase, closing the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndEpoch finishes timing the current epoch and records the sample.
func (p *PerfCollector) EndEpoch() {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		EpochDuration: now.Sub(p.epochStart),
		Phases:        p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordFrame records frame timing for the viewer.
func (p *PerfCollector) RecordFrame() {
	if p == nil {
		return
	}
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameNanos.Store(int64(now.Sub(p.lastFrameTime)))
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgEpochDuration time.Duration
	MinEpochDuration time.Duration
	MaxEpochDuration time.Duration

	// Phase breakdown (average durations and share of the epoch)
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	EpochsPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	frame := time.Duration(p.frameNanos.Load())
	var fps float64
	if frame > 0 {
		fps = float64(time.Second) / float64(frame)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:      make(map[string]time.Duration),
			PhasePct:      make(map[string]float64),
			FrameDuration: frame,
			FPS:           fps,
		}
	}

	var total, minEpoch, maxEpoch time.Duration
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.EpochDuration
		if i == 0 || s.EpochDuration < minEpoch {
			minEpoch = s.EpochDuration
		}
		if s.EpochDuration > maxEpoch {
			maxEpoch = s.EpochDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)
	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var perSec float64
	if avg > 0 {
		perSec = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgEpochDuration: avg,
		MinEpochDuration: minEpoch,
		MaxEpochDuration: maxEpoch,
		PhaseAvg:         phaseAvg,
		PhasePct:         phasePct,
		EpochsPerSecond:  perSec,
		FrameDuration:    frame,
		FPS:              fps,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_epoch_ms", s.AvgEpochDuration.Milliseconds()),
		slog.Int64("min_epoch_ms", s.MinEpochDuration.Milliseconds()),
		slog.Int64("max_epoch_ms", s.MaxEpochDuration.Milliseconds()),
		slog.Float64("epochs_per_sec", s.EpochsPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range epochPhases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Epoch          int     `csv:"epoch"`
	AvgEpochMS     int64   `csv:"avg_epoch_ms"`
	MinEpochMS     int64   `csv:"min_epoch_ms"`
	MaxEpochMS     int64   `csv:"max_epoch_ms"`
	EpochsPerSec   float64 `csv:"epochs_per_sec"`
	ImmigrationPct float64 `csv:"immigration_pct"`
	MutationPct    float64 `csv:"mutation_pct"`
	CrossoverPct   float64 `csv:"crossover_pct"`
	FitnessPct     float64 `csv:"fitness_pct"`
	SelectionPct   float64 `csv:"selection_pct"`
	HistoryPct     float64 `csv:"history_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(epoch int) PerfStatsCSV {
	return PerfStatsCSV{
		Epoch:          epoch,
		AvgEpochMS:     s.AvgEpochDuration.Milliseconds(),
		MinEpochMS:     s.MinEpochDuration.Milliseconds(),
		MaxEpochMS:     s.MaxEpochDuration.Milliseconds(),
		EpochsPerSec:   s.EpochsPerSecond,
		ImmigrationPct: s.PhasePct[PhaseImmigration],
		MutationPct:    s.PhasePct[PhaseMutation],
		CrossoverPct:   s.PhasePct[PhaseCrossover],
		FitnessPct:     s.PhasePct[PhaseFitness],
		SelectionPct:   s.PhasePct[PhaseSelection],
		HistoryPct:     s.PhasePct[PhaseHistory],
	}
}
