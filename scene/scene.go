// Package scene keeps an ECS world of displayed planets in step with the
// evolution runner's committed snapshots. It has no graphics dependency.
package scene

import (
	"math"
	"sort"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/planetforge/camera"
	"github.com/pthm-cable/planetforge/components"
	"github.com/pthm-cable/planetforge/evolution"
	"github.com/pthm-cable/planetforge/planet"
)

// Options controls tessellation and layout.
type Options struct {
	Step      float64 // tessellation step for display meshes
	Columns   int
	Spacing   float32
	ShowCount int     // planets shown, best first; 0 shows all
	SpinRate  float32 // radians per second
}

// Scene is the viewer's entity world.
type Scene struct {
	world *ecs.World
	opts  Options

	planetMapper *ecs.Map4[
		components.Position,
		components.Spin,
		components.Surface,
		components.Specimen,
	]
	planetFilter *ecs.Filter4[
		components.Position,
		components.Spin,
		components.Surface,
		components.Specimen,
	]
	specMap *ecs.Map1[components.Specimen]

	entities   []ecs.Entity
	generation int
	state      evolution.State
	angle      float32

	selectedSlot int
}

// New creates an empty scene.
func New(opts Options) *Scene {
	if opts.Columns <= 0 {
		opts.Columns = 4
	}
	if opts.Spacing <= 0 {
		opts.Spacing = 2.5
	}
	world := ecs.NewWorld()
	return &Scene{
		world: world,
		opts:  opts,
		planetMapper: ecs.NewMap4[
			components.Position,
			components.Spin,
			components.Surface,
			components.Specimen,
		](world),
		planetFilter: ecs.NewFilter4[
			components.Position,
			components.Spin,
			components.Surface,
			components.Specimen,
		](world),
		specMap:      ecs.NewMap1[components.Specimen](world),
		generation:   -1,
		selectedSlot: -1,
	}
}

// Generation returns the generation currently displayed, or -1.
func (s *Scene) Generation() int { return s.generation }

// State returns the engine state of the displayed snapshot.
func (s *Scene) State() evolution.State { return s.state }

// Len returns the number of displayed planets.
func (s *Scene) Len() int { return len(s.entities) }

// Sync rebuilds the world from snap when it carries a new generation or
// state. Returns true if the world changed.
func (s *Scene) Sync(snap *evolution.Snapshot[*planet.Planet]) bool {
	if snap == nil || len(snap.Population) == 0 {
		return false
	}
	if snap.Generation == s.generation && snap.State == s.state && len(s.entities) > 0 {
		return false
	}

	for _, e := range s.entities {
		s.world.RemoveEntity(e)
	}
	s.entities = s.entities[:0]

	order := ranked(snap.Fitness, len(snap.Population))
	if s.opts.ShowCount > 0 && len(order) > s.opts.ShowCount {
		order = order[:s.opts.ShowCount]
	}
	best := snap.Best()

	for i, slot := range order {
		p := snap.Population[slot]
		pos := Layout(i, len(order), s.opts.Columns, s.opts.Spacing)
		spin := components.Spin{Angle: s.angle, Rate: s.opts.SpinRate}
		surf := components.SurfaceFromPlanet(p, s.opts.Step)
		spec := components.Specimen{
			Slot:       slot,
			Generation: snap.Generation,
			Fitness:    at(snap.Fitness, slot),
			Diversity:  at(snap.Diversity, slot),
			Best:       slot == best,
		}
		spec.MeasureCurvature(p)
		s.entities = append(s.entities, s.planetMapper.NewEntity(&pos, &spin, &surf, &spec))
	}

	s.generation = snap.Generation
	s.state = snap.State
	return true
}

// ranked returns slot indices ordered by descending fitness; NaN sorts last.
func ranked(fitness []float64, n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		fa, fb := at(fitness, order[a]), at(fitness, order[b])
		if math.IsNaN(fb) {
			return !math.IsNaN(fa)
		}
		return fa > fb
	})
	return order
}

func at(xs []float64, i int) float64 {
	if i < len(xs) {
		return xs[i]
	}
	return math.NaN()
}

// Layout places item i of n on a grid in the XZ plane centered on the origin.
func Layout(i, n, columns int, spacing float32) components.Position {
	if columns <= 0 {
		columns = 1
	}
	cols := min(columns, n)
	rows := (n + columns - 1) / columns
	r, c := i/columns, i%columns
	return components.Position{
		X: (float32(c) - float32(cols-1)/2) * spacing,
		Z: (float32(r) - float32(rows-1)/2) * spacing,
	}
}

// ToScene maps a planet-space point to scene space: the planet's polar z axis
// becomes the scene's vertical y axis, keeping handedness.
func ToScene(v r3.Vec) (x, y, z float32) {
	return float32(v.X), float32(v.Z), float32(-v.Y)
}

// Update advances every planet's spin by dt seconds.
func (s *Scene) Update(dt float32) {
	query := s.planetFilter.Query()
	for query.Next() {
		_, spin, _, _ := query.Get()
		spin.Advance(dt)
		s.angle = spin.Angle
	}
}

// Each calls fn for every displayed planet.
func (s *Scene) Each(fn func(pos *components.Position, spin *components.Spin, surf *components.Surface, spec *components.Specimen, selected bool)) {
	query := s.planetFilter.Query()
	for query.Next() {
		pos, spin, surf, spec := query.Get()
		fn(pos, spin, surf, spec, spec.Slot == s.selectedSlot)
	}
}

// Pick selects the planet whose projected disc contains the screen point,
// preferring the one nearest the eye. Returns false and clears the selection
// when nothing is hit.
func (s *Scene) Pick(cam *camera.Camera, sx, sy float32) bool {
	ex, ey, ez := cam.Position()
	bestDepth := float32(math.Inf(1))
	slot := -1

	query := s.planetFilter.Query()
	for query.Next() {
		pos, _, surf, spec := query.Get()
		cx, cy, ok := cam.WorldToScreen(pos.X, pos.Y, pos.Z)
		if !ok {
			continue
		}
		_, ty, ok := cam.WorldToScreen(pos.X, pos.Y+surf.Radius, pos.Z)
		if !ok {
			continue
		}
		rad := float32(math.Abs(float64(cy - ty)))
		dx, dy := sx-cx, sy-cy
		if dx*dx+dy*dy > rad*rad {
			continue
		}
		dxe, dye, dze := pos.X-ex, pos.Y-ey, pos.Z-ez
		depth := dxe*dxe + dye*dye + dze*dze
		if depth < bestDepth {
			bestDepth = depth
			slot = spec.Slot
		}
	}

	s.selectedSlot = slot
	return slot >= 0
}

// Select selects the planet in the given population slot; -1 clears.
func (s *Scene) Select(slot int) {
	s.selectedSlot = slot
}

// Deselect clears the selection.
func (s *Scene) Deselect() {
	s.selectedSlot = -1
}

// Selected returns the selected specimen, if it is displayed.
func (s *Scene) Selected() (*components.Specimen, bool) {
	if s.selectedSlot < 0 {
		return nil, false
	}
	for _, e := range s.entities {
		if spec := s.specMap.Get(e); spec != nil && spec.Slot == s.selectedSlot {
			return spec, true
		}
	}
	return nil, false
}
