// Package config provides configuration loading and access for planet
// evolution runs.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all evolution configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	Planet      PlanetConfig      `yaml:"planet"`
	Population  PopulationConfig  `yaml:"population"`
	Mutation    MutationConfig    `yaml:"mutation"`
	Crossover   CrossoverConfig   `yaml:"crossover"`
	Selection   SelectionConfig   `yaml:"selection"`
	Fitness     FitnessConfig     `yaml:"fitness"`
	Validity    ValidityConfig    `yaml:"validity"`
	Termination TerminationConfig `yaml:"termination"`
	Immigration ImmigrationConfig `yaml:"immigration"`
	Parallel    ParallelConfig    `yaml:"parallel"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	HallOfFame  HallOfFameConfig  `yaml:"hall_of_fame"`
	Viewer      ViewerConfig      `yaml:"viewer"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds window parameters for the viewer.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// PlanetConfig describes the baseline planet.
type PlanetConfig struct {
	Meridians      int     `yaml:"meridians"`
	Parallels      int     `yaml:"parallels"`
	Radius         float64 `yaml:"radius"`
	NoiseAmplitude float64 `yaml:"noise_amplitude"` // 0 = plain spheres
	NoiseFrequency float64 `yaml:"noise_frequency"`
}

// PopulationConfig holds population sizing.
type PopulationConfig struct {
	Size          int `yaml:"size"`
	InitMutations int `yaml:"init_mutations"`
}

// MutationConfig holds Gaussian and differential mutation parameters.
type MutationConfig struct {
	MinDistance       float64 `yaml:"min_distance"`
	MaxDistance       float64 `yaml:"max_distance"`
	Sigma             float64 `yaml:"sigma"`
	Attempts          int     `yaml:"attempts"`
	DifferentialScale float64 `yaml:"differential_scale"`
}

// CrossoverConfig holds crossover parameters.
type CrossoverConfig struct {
	Kind             string  `yaml:"kind"` // uniform | parallel
	Rate             float64 `yaml:"rate"`
	Attempts         int     `yaml:"attempts"`
	ContinuousAlpha  float64 `yaml:"continuous_alpha"`
	FallbackAttempts int     `yaml:"fallback_attempts"`
}

// SelectionConfig holds selection parameters.
type SelectionConfig struct {
	// Score = fitness - diversity_coefficient * diversity
	DiversityCoefficient float64 `yaml:"diversity_coefficient"`
}

// FitnessConfig holds fitness sampling parameters.
type FitnessConfig struct {
	Type                int     `yaml:"type"` // 0 outward alignment, 1 recentered
	SampleSize          int     `yaml:"sample_size"`
	DistanceFromSurface float64 `yaml:"distance_from_surface"`
	TessellationStep    float64 `yaml:"tessellation_step"`
	G                   float64 `yaml:"g"`
}

// ValidityConfig holds self-intersection oracle parameters.
type ValidityConfig struct {
	Step        float64 `yaml:"step"`
	Intersector string  `yaml:"intersector"` // bvh | brute_force
	LeafSize    int     `yaml:"leaf_size"`
}

// TerminationConfig holds stop conditions. Zero disables a condition.
type TerminationConfig struct {
	MaxIterations            int     `yaml:"max_iterations"`
	DiversityLimit           float64 `yaml:"diversity_limit"`
	FitnessThreshold         float64 `yaml:"fitness_threshold"`
	EpochsWithoutImprovement int     `yaml:"epochs_without_improvement"`
}

// ImmigrationConfig holds immigration parameters.
type ImmigrationConfig struct {
	Policy      string `yaml:"policy"` // random | least_diverse
	Count       int    `yaml:"count"`
	Interval    int    `yaml:"interval"`
	FreshSphere bool   `yaml:"fresh_sphere"`
}

// ParallelConfig holds worker counts. Zero uses GOMAXPROCS.
type ParallelConfig struct {
	Workers        int `yaml:"workers"`
	GravityChunk   int `yaml:"gravity_chunk"`
	GravityWorkers int `yaml:"gravity_workers"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfCollectorWindow int `yaml:"perf_collector_window"`
	SnapshotInterval    int `yaml:"snapshot_interval"` // epochs between population files; 0 = final only
}

// HallOfFameConfig holds hall of fame parameters.
type HallOfFameConfig struct {
	Size int `yaml:"size"`
}

// ViewerConfig holds display parameters.
type ViewerConfig struct {
	TessellationStep float64 `yaml:"tessellation_step"`
	Columns          int     `yaml:"columns"`
	Spacing          float64 `yaml:"spacing"`
	ShowCount        int     `yaml:"show_count"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ImmigrationPolicy int  // 0 random, 1 least diverse
	ParallelCrossover bool // crossover.kind == parallel
	BruteForce        bool // validity.intersector == brute_force
	SampleCount       int  // fitness.sample_size squared
	ValidityTriangles int  // triangles per validity tessellation
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Immigration.Policy {
	case "random", "least_diverse":
	default:
		return fmt.Errorf("config: unknown immigration policy %q", c.Immigration.Policy)
	}
	switch c.Crossover.Kind {
	case "uniform", "parallel":
	default:
		return fmt.Errorf("config: unknown crossover kind %q", c.Crossover.Kind)
	}
	switch c.Validity.Intersector {
	case "bvh", "brute_force":
	default:
		return fmt.Errorf("config: unknown intersector %q", c.Validity.Intersector)
	}
	if c.Fitness.Type != 0 && c.Fitness.Type != 1 {
		return fmt.Errorf("config: unknown fitness type %d", c.Fitness.Type)
	}
	if c.Mutation.MinDistance > c.Mutation.MaxDistance {
		return fmt.Errorf("config: mutation min_distance %v exceeds max_distance %v", c.Mutation.MinDistance, c.Mutation.MaxDistance)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ImmigrationPolicy = 0
	if c.Immigration.Policy == "least_diverse" {
		c.Derived.ImmigrationPolicy = 1
	}
	c.Derived.ParallelCrossover = c.Crossover.Kind == "parallel"
	c.Derived.BruteForce = c.Validity.Intersector == "brute_force"
	c.Derived.SampleCount = c.Fitness.SampleSize * c.Fitness.SampleSize

	n := 3
	if c.Validity.Step > 0 {
		n = max(3, int(math.Ceil(1/c.Validity.Step-1e-9)))
	}
	c.Derived.ValidityTriangles = 2 * n * (n - 1)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
