package evolution

import "errors"

// State is the lifecycle state of an Engine.
type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
	Terminated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

var (
	// ErrWrongState is returned when an engine method is called in a state
	// that does not allow it.
	ErrWrongState = errors.New("engine in wrong state")

	// ErrEmptyPopulation is returned when starting with no individuals.
	ErrEmptyPopulation = errors.New("empty population")
)

// ImmigrationPolicy selects which slots immigration replaces.
type ImmigrationPolicy int

const (
	// ImmigrationRandom replaces random slots.
	ImmigrationRandom ImmigrationPolicy = iota
	// ImmigrationLeastDiverse replaces the slots closest to the rest of the
	// population.
	ImmigrationLeastDiverse
)

// ImmigrationParams configures immigration.
type ImmigrationParams struct {
	Policy      ImmigrationPolicy
	Count       int  // slots replaced per immigration
	Interval    int  // epochs between immigrations; 0 disables
	FreshSphere bool // start immigrants from a baseline individual
}

// Params configures the engine.
type Params struct {
	PopulationSize int
	InitMutations  int

	MutationAttempts  int
	DifferentialScale float64

	CrossoverRate             float64
	CrossoverAttempts         int
	ContinuousAlpha           float64
	CrossoverFallbackAttempts int

	// Selection keeps the higher of fitness - DiversityCoefficient*diversity.
	// A negative coefficient rewards diversity.
	DiversityCoefficient float64

	// Termination; non-positive values disable a condition.
	MaxIterations            int
	DiversityLimit           float64
	FitnessThreshold         float64
	EpochsWithoutImprovement int

	Immigration ImmigrationParams

	// Workers bounds parallel fitness evaluation; 0 uses GOMAXPROCS.
	Workers int
}

// History holds per-epoch aggregates, index 0 being the initialized population.
type History struct {
	MeanFitness   []float64
	BestFitness   []float64
	MeanError     []float64
	MeanDiversity []float64
}

func (h History) clone() History {
	return History{
		MeanFitness:   append([]float64(nil), h.MeanFitness...),
		BestFitness:   append([]float64(nil), h.BestFitness...),
		MeanError:     append([]float64(nil), h.MeanError...),
		MeanDiversity: append([]float64(nil), h.MeanDiversity...),
	}
}

// Len returns the number of recorded epochs.
func (h History) Len() int {
	return len(h.MeanFitness)
}
