package gravity

import (
	"runtime"

	"github.com/pthm-cable/planetforge/mesh"
	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/spatial/r3"
)

// minArea excludes collapsed pole triangles.
const minArea = 1e-14

// Evaluator sums tube fields at a batch of points.
type Evaluator interface {
	FieldAt(tubes []Tube, points []r3.Vec, g float64) []r3.Vec
}

// SerialEvaluator evaluates every point on the calling goroutine.
type SerialEvaluator struct{}

// FieldAt implements Evaluator.
func (SerialEvaluator) FieldAt(tubes []Tube, points []r3.Vec, g float64) []r3.Vec {
	out := make([]r3.Vec, len(points))
	for i, p := range points {
		out[i] = sum(tubes, p, g)
	}
	return out
}

// ParallelEvaluator splits the points into chunks evaluated concurrently.
type ParallelEvaluator struct {
	Workers   int
	ChunkSize int
}

// FieldAt implements Evaluator. Results are identical to SerialEvaluator.
func (pe ParallelEvaluator) FieldAt(tubes []Tube, points []r3.Vec, g float64) []r3.Vec {
	out := make([]r3.Vec, len(points))
	workers := pe.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := pe.ChunkSize
	if chunk <= 0 {
		chunk = 32
	}

	p := pool.New().WithMaxGoroutines(workers)
	for start := 0; start < len(points); start += chunk {
		end := min(start+chunk, len(points))
		p.Go(func() {
			for i := start; i < end; i++ {
				out[i] = sum(tubes, points[i], g)
			}
		})
	}
	p.Wait()
	return out
}

func sum(tubes []Tube, p r3.Vec, g float64) r3.Vec {
	var acc r3.Vec
	for _, t := range tubes {
		acc = r3.Add(acc, t.Field(p))
	}
	return r3.Scale(g, acc)
}

// Field is the gravity approximation of one tessellated surface.
type Field struct {
	tubes  []Tube
	g      float64
	eval   Evaluator
	center r3.Vec
	mass   float64
}

// FromMesh decomposes m into tubes. A nil evaluator selects SerialEvaluator.
func FromMesh(m *mesh.Mesh, g float64, eval Evaluator) *Field {
	if eval == nil {
		eval = SerialEvaluator{}
	}
	f := &Field{g: g, eval: eval}
	for i := 0; i < m.TriangleCount(); i++ {
		tri := m.Triangle(i)
		if tri.Area() <= minArea {
			continue
		}
		t := TubeFromTriangle(tri)
		f.tubes = append(f.tubes, t)
		f.center = r3.Add(f.center, t.Midpoint())
		f.mass += t.Mass
	}
	if len(f.tubes) > 0 {
		f.center = r3.Scale(1/float64(len(f.tubes)), f.center)
	}
	return f
}

// FieldAt returns the acceleration at p.
func (f *Field) FieldAt(p r3.Vec) r3.Vec {
	return sum(f.tubes, p, f.g)
}

// FieldAtBatch returns the acceleration at each point, in order.
func (f *Field) FieldAtBatch(points []r3.Vec) []r3.Vec {
	return f.eval.FieldAt(f.tubes, points, f.g)
}

// MassCenter returns the mean of the tube midpoints.
func (f *Field) MassCenter() r3.Vec {
	return f.center
}

// TotalMass returns the summed tube mass (the surface area).
func (f *Field) TotalMass() float64 {
	return f.mass
}

// Tubes returns the tube decomposition. Callers must not modify it.
func (f *Field) Tubes() []Tube {
	return f.tubes
}
