package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Planet.Meridians != 14 || cfg.Planet.Parallels != 14 {
		t.Errorf("planet grid = %dx%d", cfg.Planet.Meridians, cfg.Planet.Parallels)
	}
	if cfg.Derived.ImmigrationPolicy != 1 {
		t.Errorf("derived policy = %d, want least_diverse", cfg.Derived.ImmigrationPolicy)
	}
	if cfg.Derived.SampleCount != cfg.Fitness.SampleSize*cfg.Fitness.SampleSize {
		t.Errorf("derived sample count = %d", cfg.Derived.SampleCount)
	}
	if cfg.Derived.ValidityTriangles != 2*24*23 {
		t.Errorf("derived validity triangles = %d", cfg.Derived.ValidityTriangles)
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	data := "population:\n  size: 4\ncrossover:\n  kind: parallel\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Population.Size != 4 {
		t.Errorf("population size = %d, want 4", cfg.Population.Size)
	}
	if cfg.Population.InitMutations != 6 {
		t.Errorf("init mutations lost default: %d", cfg.Population.InitMutations)
	}
	if !cfg.Derived.ParallelCrossover {
		t.Error("parallel crossover not derived")
	}
}

func TestLoadRejectsUnknownEnums(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"policy", "immigration:\n  policy: oldest\n"},
		{"crossover", "crossover:\n  kind: blend\n"},
		{"intersector", "validity:\n  intersector: gpu\n"},
		{"fitness type", "fitness:\n  type: 7\n"},
		{"mutation range", "mutation:\n  min_distance: 1\n  max_distance: 0.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load accepted an invalid config")
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Termination.MaxIterations = 17

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Termination.MaxIterations != 17 {
		t.Errorf("max iterations = %d, want 17", back.Termination.MaxIterations)
	}
}

func TestMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
