package telemetry

import (
	"sort"

	"github.com/pthm-cable/planetforge/planet"
)

// HallEntry is a planet that scored well at some point of the run.
type HallEntry struct {
	Planet  *planet.Planet
	Fitness float64
	Epoch   int
	Slot    int
}

// HallEntryCSV is the CSV row describing a hall entry; the planets themselves
// go to a population file in the same order.
type HallEntryCSV struct {
	RunID   string  `csv:"run_id"`
	Rank    int     `csv:"rank"`
	Fitness float64 `csv:"fitness"`
	Epoch   int     `csv:"epoch"`
	Slot    int     `csv:"slot"`
}

// HallOfFame keeps the fittest distinct planets seen across a run, sorted by
// descending fitness. Survivors that reappear every epoch are stored once.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
}

// NewHallOfFame creates a hall holding at most maxSize planets.
func NewHallOfFame(maxSize int) *HallOfFame {
	return &HallOfFame{
		entries: make([]HallEntry, 0, max(maxSize, 0)),
		maxSize: maxSize,
	}
}

// Consider offers a planet to the hall. The planet is cloned on entry.
// Returns true if it was added.
func (hof *HallOfFame) Consider(p *planet.Planet, fitness float64, epoch, slot int) bool {
	if hof == nil || hof.maxSize <= 0 || p == nil || fitness != fitness {
		return false
	}
	for _, e := range hof.entries {
		if e.Planet.Grid().Equal(p.Grid()) {
			return false
		}
	}

	// Sorted descending by fitness; ties keep the earlier entry first
	idx := sort.Search(len(hof.entries), func(i int) bool {
		return hof.entries[i].Fitness < fitness
	})
	if len(hof.entries) >= hof.maxSize && idx >= hof.maxSize {
		return false
	}

	entry := HallEntry{Planet: p.Clone(), Fitness: fitness, Epoch: epoch, Slot: slot}
	hof.entries = append(hof.entries, HallEntry{})
	copy(hof.entries[idx+1:], hof.entries[idx:])
	hof.entries[idx] = entry

	if len(hof.entries) > hof.maxSize {
		hof.entries = hof.entries[:hof.maxSize]
	}
	return true
}

// ConsiderAll offers a whole population.
func (hof *HallOfFame) ConsiderAll(pop []*planet.Planet, fitness []float64, epoch int) int {
	added := 0
	for i, p := range pop {
		if i < len(fitness) && hof.Consider(p, fitness[i], epoch, i) {
			added++
		}
	}
	return added
}

// Entries returns the entries, best first. The slice is a copy; planets are shared.
func (hof *HallOfFame) Entries() []HallEntry {
	if hof == nil {
		return nil
	}
	return append([]HallEntry(nil), hof.entries...)
}

// Size returns the number of entries.
func (hof *HallOfFame) Size() int {
	if hof == nil {
		return 0
	}
	return len(hof.entries)
}

// TopFitness returns the best fitness recorded, or 0 if the hall is empty.
func (hof *HallOfFame) TopFitness() float64 {
	if hof.Size() == 0 {
		return 0
	}
	return hof.entries[0].Fitness
}

// Population captures the hall's planets for a population file.
func (hof *HallOfFame) Population(meridians, parallels int, radius float64) *Population {
	planets := make([]*planet.Planet, 0, hof.Size())
	for _, e := range hof.Entries() {
		planets = append(planets, e.Planet)
	}
	return NewPopulation(planets, meridians, parallels, radius)
}

// Rows returns the CSV rows for the hall.
func (hof *HallOfFame) Rows(runID string) []HallEntryCSV {
	rows := make([]HallEntryCSV, 0, hof.Size())
	for i, e := range hof.Entries() {
		rows = append(rows, HallEntryCSV{RunID: runID, Rank: i + 1, Fitness: e.Fitness, Epoch: e.Epoch, Slot: e.Slot})
	}
	return rows
}
