package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/planetforge/config"
)

// Output file names.
const (
	EpochsFile         = "epochs.csv"
	PerfFile           = "perf.csv"
	ConfigFile         = "config.yaml"
	PopulationFile     = "population.popu"
	HallOfFameFile     = "hall_of_fame.popu"
	HallOfFameRowsFile = "hall_of_fame.csv"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir        string
	epochsFile *os.File
	perfFile   *os.File

	// Track if headers have been written
	epochsHeaderWritten bool
	perfHeaderWritten   bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, EpochsFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", EpochsFile, err)
	}
	om.epochsFile = f

	f, err = os.Create(filepath.Join(dir, PerfFile))
	if err != nil {
		om.epochsFile.Close()
		return nil, fmt.Errorf("creating %s: %w", PerfFile, err)
	}
	om.perfFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, ConfigFile))
}

// WriteEpoch writes an epoch stats record to epochs.csv.
func (om *OutputManager) WriteEpoch(stats EpochStats) error {
	if om == nil {
		return nil
	}
	if err := writeCSV(om.epochsFile, []EpochStats{stats}, &om.epochsHeaderWritten); err != nil {
		return fmt.Errorf("writing epoch: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, epoch int) error {
	if om == nil {
		return nil
	}
	if err := writeCSV(om.perfFile, []PerfStatsCSV{stats.ToCSV(epoch)}, &om.perfHeaderWritten); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// writeCSV appends records, including the header only on the first write.
func writeCSV[T any](f *os.File, records []T, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// WritePopulation saves a population file under the output directory.
// An empty name writes the final population file.
func (om *OutputManager) WritePopulation(name string, pop *Population) error {
	if om == nil || pop == nil {
		return nil
	}
	if name == "" {
		name = PopulationFile
	}
	return SavePopulation(filepath.Join(om.dir, name), pop)
}

// WriteHallOfFame saves the hall's planets as a population file and its
// ranking as CSV.
func (om *OutputManager) WriteHallOfFame(hof *HallOfFame, runID string, meridians, parallels int, radius float64) error {
	if om == nil || hof == nil {
		return nil
	}
	if err := om.WritePopulation(HallOfFameFile, hof.Population(meridians, parallels, radius)); err != nil {
		return fmt.Errorf("writing hall of fame: %w", err)
	}

	f, err := os.Create(filepath.Join(om.dir, HallOfFameRowsFile))
	if err != nil {
		return fmt.Errorf("creating %s: %w", HallOfFameRowsFile, err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(hof.Rows(runID), f); err != nil {
		return fmt.Errorf("writing %s: %w", HallOfFameRowsFile, err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error

	if om.epochsFile != nil {
		if err := om.epochsFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.perfFile != nil {
		if err := om.perfFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
