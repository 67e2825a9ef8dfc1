package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartEpoch()
		pc.StartPhase(PhaseMutation)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseFitness)
		time.Sleep(200 * time.Microsecond)
		pc.EndEpoch()
	}

	stats := pc.Stats()

	if stats.AvgEpochDuration <= 0 {
		t.Error("expected positive average epoch duration")
	}
	if _, ok := stats.PhaseAvg[PhaseMutation]; !ok {
		t.Error("expected mutation phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseFitness]; !ok {
		t.Error("expected fitness phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartEpoch()
		pc.StartPhase(PhaseSelection)
		pc.EndEpoch()
	}

	stats := pc.Stats()
	if stats.AvgEpochDuration <= 0 {
		t.Error("expected positive average epoch duration after window filled")
	}
	if stats.EpochsPerSecond <= 0 {
		t.Error("expected positive epochs per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartEpoch()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndEpoch()
	}

	stats := pc.Stats()
	if stats.PhasePct["slow"] <= stats.PhasePct["fast"] {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", stats.PhasePct["slow"], stats.PhasePct["fast"])
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgEpochDuration != 0 {
		t.Error("expected zero avg epoch duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfCollector_NilSafe(t *testing.T) {
	var pc *PerfCollector
	pc.StartEpoch()
	pc.StartPhase(PhaseFitness)
	pc.EndEpoch()
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}
	if stats.FPS <= 0 || stats.FPS > 70 {
		t.Errorf("expected FPS in (0, 70] with 16ms frame time, got %v", stats.FPS)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	s := PerfStats{
		AvgEpochDuration: 3 * time.Millisecond,
		PhasePct:         map[string]float64{PhaseFitness: 60, PhaseMutation: 25},
	}
	row := s.ToCSV(7)
	if row.Epoch != 7 || row.AvgEpochMS != 3 || row.FitnessPct != 60 || row.MutationPct != 25 {
		t.Errorf("ToCSV = %+v", row)
	}
}
