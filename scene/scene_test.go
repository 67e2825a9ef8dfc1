package scene

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/planetforge/camera"
	"github.com/pthm-cable/planetforge/components"
	"github.com/pthm-cable/planetforge/evolution"
	"github.com/pthm-cable/planetforge/planet"
)

func snapshot(t *testing.T, gen int, fitness []float64) *evolution.Snapshot[*planet.Planet] {
	t.Helper()
	pop := make([]*planet.Planet, len(fitness))
	for i := range pop {
		p, err := planet.Sphere(8, 10, 1)
		if err != nil {
			t.Fatal(err)
		}
		pop[i] = p
	}
	return &evolution.Snapshot[*planet.Planet]{
		Generation: gen,
		State:      evolution.Ready,
		Population: pop,
		Fitness:    fitness,
		Diversity:  make([]float64, len(fitness)),
	}
}

func testOptions() Options {
	return Options{Step: 1.0 / 8, Columns: 2, Spacing: 3, SpinRate: 1}
}

func TestSyncOrdersByFitness(t *testing.T) {
	s := New(testOptions())
	if !s.Sync(snapshot(t, 1, []float64{0.2, 0.9, math.NaN(), 0.5})) {
		t.Fatal("first sync did not build the world")
	}
	if s.Len() != 4 || s.Generation() != 1 {
		t.Fatalf("len = %d, generation = %d", s.Len(), s.Generation())
	}

	var slots []int
	var bests int
	s.Each(func(_ *components.Position, _ *components.Spin, surf *components.Surface, spec *components.Specimen, _ bool) {
		slots = append(slots, spec.Slot)
		if spec.Best {
			bests++
		}
		if surf.Mesh == nil || surf.Radius <= 0 {
			t.Errorf("slot %d has no surface", spec.Slot)
		}
	})
	want := []int{1, 3, 0, 2}
	for i := range want {
		if slots[i] != want[i] {
			t.Fatalf("slots = %v, want %v", slots, want)
		}
	}
	if bests != 1 {
		t.Errorf("%d planets marked best", bests)
	}
}

func TestSyncSkipsSameGeneration(t *testing.T) {
	s := New(testOptions())
	s.Sync(snapshot(t, 2, []float64{0.1, 0.2}))
	if s.Sync(snapshot(t, 2, []float64{0.1, 0.2})) {
		t.Error("same generation rebuilt the world")
	}
	if s.Sync(nil) {
		t.Error("nil snapshot changed the world")
	}
	if !s.Sync(snapshot(t, 3, []float64{0.1, 0.2, 0.3})) {
		t.Error("new generation ignored")
	}
	if s.Len() != 3 {
		t.Errorf("len = %d, want 3", s.Len())
	}
}

func TestShowCountLimitsPlanets(t *testing.T) {
	opts := testOptions()
	opts.ShowCount = 2
	s := New(opts)
	s.Sync(snapshot(t, 0, []float64{0.1, 0.3, 0.2}))
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
}

func TestSelectionSurvivesResync(t *testing.T) {
	s := New(testOptions())
	s.Sync(snapshot(t, 1, []float64{0.1, 0.2, 0.3}))
	s.Select(1)
	spec, ok := s.Selected()
	if !ok || spec.Slot != 1 {
		t.Fatalf("selected = %+v, %v", spec, ok)
	}

	s.Sync(snapshot(t, 2, []float64{0.4, 0.5, 0.6}))
	spec, ok = s.Selected()
	if !ok || spec.Generation != 2 {
		t.Errorf("selection lost after resync: %+v, %v", spec, ok)
	}

	s.Deselect()
	if _, ok := s.Selected(); ok {
		t.Error("deselect kept the selection")
	}
}

func TestLayoutCentered(t *testing.T) {
	var sx, sz float32
	n := 6
	for i := range n {
		p := Layout(i, n, 3, 2)
		sx += p.X
		sz += p.Z
	}
	if math.Abs(float64(sx)) > 1e-5 || math.Abs(float64(sz)) > 1e-5 {
		t.Errorf("layout centroid = (%f, %f)", sx/float32(n), sz/float32(n))
	}
	if p := Layout(0, 1, 4, 2); p.X != 0 || p.Z != 0 {
		t.Errorf("single planet at %+v", p)
	}
}

func TestToSceneKeepsHandedness(t *testing.T) {
	ax, ay, az := ToScene(r3.Vec{X: 1})
	bx, by, bz := ToScene(r3.Vec{Y: 1})
	cx, cy, cz := ToScene(r3.Vec{Z: 1})
	a := r3.Vec{X: float64(ax), Y: float64(ay), Z: float64(az)}
	b := r3.Vec{X: float64(bx), Y: float64(by), Z: float64(bz)}
	c := r3.Vec{X: float64(cx), Y: float64(cy), Z: float64(cz)}
	if r3.Dot(r3.Cross(a, b), c) != 1 {
		t.Error("mapping flips handedness")
	}
	if cy != 1 {
		t.Error("polar axis should map to scene up")
	}
}

func TestPickSelectsPlanetUnderCursor(t *testing.T) {
	s := New(Options{Step: 1.0 / 8, Columns: 2, Spacing: 4})
	s.Sync(snapshot(t, 0, []float64{0.9, 0.1}))

	cam := camera.New(800, 600, 12)
	var target components.Position
	var targetSlot int
	s.Each(func(pos *components.Position, _ *components.Spin, _ *components.Surface, spec *components.Specimen, _ bool) {
		if spec.Slot == 1 {
			target, targetSlot = *pos, spec.Slot
		}
	})

	sx, sy, ok := cam.WorldToScreen(target.X, target.Y, target.Z)
	if !ok {
		t.Fatal("planet behind camera")
	}
	if !s.Pick(cam, sx, sy) {
		t.Fatal("pick missed the planet")
	}
	if spec, _ := s.Selected(); spec.Slot != targetSlot {
		t.Errorf("picked slot %d, want %d", spec.Slot, targetSlot)
	}

	if s.Pick(cam, -1000, -1000) {
		t.Error("pick off screen hit something")
	}
	if _, ok := s.Selected(); ok {
		t.Error("missed pick kept the selection")
	}
}

func TestUpdateSpins(t *testing.T) {
	s := New(testOptions())
	s.Sync(snapshot(t, 0, []float64{0.5}))
	s.Update(0.5)
	s.Each(func(_ *components.Position, spin *components.Spin, _ *components.Surface, _ *components.Specimen, _ bool) {
		if math.Abs(float64(spin.Angle)-0.5) > 1e-6 {
			t.Errorf("angle = %f, want 0.5", spin.Angle)
		}
	})
}

func TestExtractFields(t *testing.T) {
	spec := components.Specimen{Slot: 3, Fitness: 0.75, Best: true, GaussianMin: 0.5}
	fields := ExtractFields(&spec)
	byName := map[string]Field{}
	for _, f := range fields {
		byName[f.Name] = f
	}
	if f := byName["Fitness"]; f.Widget != WidgetBar || f.Ratio() != 0.75 {
		t.Errorf("fitness field = %+v", f)
	}
	if f := byName["Best"]; f.Widget != WidgetBool {
		t.Errorf("best field = %+v", f)
	}
	if f := byName["GaussianMin"]; f.Text() != "0.500" {
		t.Errorf("gaussian text = %q", f.Text())
	}

	surfFields := ExtractFields(components.Surface{Radius: 1})
	for _, f := range surfFields {
		if f.Name == "Mesh" {
			t.Error("skipped field extracted")
		}
	}
	if ExtractFields(42) != nil {
		t.Error("non-struct produced fields")
	}
}

func TestParseTag(t *testing.T) {
	w, opts := ParseTag("bar, max:2, fmt:%.1f")
	if w != WidgetBar || opts.Max != 2 || opts.Format != "%.1f" {
		t.Errorf("ParseTag = %v, %+v", w, opts)
	}
	if w, _ := ParseTag(""); w != WidgetAuto {
		t.Errorf("empty tag widget = %v", w)
	}
	if w, _ := ParseTag("sparkline"); w != WidgetAuto {
		t.Errorf("unknown widget = %v", w)
	}
	f := Field{Value: 3.0, Widget: WidgetBar, Options: opts}
	if f.Ratio() != 1 {
		t.Errorf("ratio = %f, want clamped 1", f.Ratio())
	}
	f = Field{Value: 1.0, Widget: WidgetBar, Options: opts}
	if f.Ratio() != 0.5 {
		t.Errorf("ratio = %f, want 0.5", f.Ratio())
	}
}

func TestAngleFieldInDegrees(t *testing.T) {
	fields := ExtractFields(components.Spin{Angle: float32(math.Pi / 2), Rate: 1})
	if len(fields) != 1 {
		t.Fatalf("fields = %+v, want only Angle", fields)
	}
	if got := fields[0].Text(); got != "90.0°" {
		t.Errorf("angle text = %q", got)
	}
}
