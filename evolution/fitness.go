package evolution

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/planetforge/gravity"
	"github.com/pthm-cable/planetforge/planet"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateFitness is returned when no fitness sample is usable.
var ErrDegenerateFitness = errors.New("degenerate fitness: no valid samples")

// FitnessType selects where the gravity field is sampled.
type FitnessType int

const (
	// FitnessOutwardAlignment samples the field on the surface.
	FitnessOutwardAlignment FitnessType = iota
	// FitnessRecentered moves each sample toward the mass center first.
	FitnessRecentered
)

// FitnessParams configures fitness evaluation.
type FitnessParams struct {
	Type                FitnessType
	SampleSize          int     // samples per parameter direction
	DistanceFromSurface float64 // recentering distance for FitnessRecentered
	TessellationStep    float64 // mesh step for the gravity decomposition
	G                   float64
}

// Evaluation is the result of a fitness computation.
type Evaluation struct {
	Fitness float64 // mean alignment of inward normal and gravity, in [-1, 1]
	Error   float64 // RMS of (1 - alignment)
	Samples int     // samples that contributed
}

// EvaluateFitness scores how well the surface's inward normal follows the
// gravity field generated by the surface itself. Samples with a degenerate
// normal or a vanishing field are skipped.
func EvaluateFitness(p *planet.Planet, params FitnessParams, eval gravity.Evaluator) (Evaluation, error) {
	n := params.SampleSize
	if n < 1 {
		n = 1
	}
	field := gravity.FromMesh(p.Tessellate(params.TessellationStep), params.G, eval)
	center := field.MassCenter()

	normals := make([]r3.Vec, 0, n*n)
	points := make([]r3.Vec, 0, n*n)
	for k := 0; k < n; k++ {
		tu := float64(k) / float64(n)
		for l := 0; l < n; l++ {
			tv := (float64(l) + 0.5) / float64(n)
			pos := p.Evaluate(tu, tv)
			if params.Type == FitnessRecentered {
				toCenter := r3.Sub(center, pos)
				if d := r3.Norm(toCenter); d > 0 {
					pos = r3.Add(pos, r3.Scale(params.DistanceFromSurface/d, toCenter))
				}
			}
			points = append(points, pos)
			normals = append(normals, p.Normal(tu, tv))
		}
	}

	g := field.FieldAtBatch(points)

	sum, sq := 0.0, 0.0
	count := 0
	for i, normal := range normals {
		gl := r3.Norm(g[i])
		if isNaN(normal) || gl == 0 || math.IsNaN(gl) {
			continue
		}
		// normal is unit length; -normal points inward
		dot := -r3.Dot(normal, g[i]) / gl
		if math.IsNaN(dot) {
			continue
		}
		sum += dot
		sq += (1 - dot) * (1 - dot)
		count++
	}
	if count == 0 {
		return Evaluation{}, fmt.Errorf("evaluate fitness over %d samples: %w", len(normals), ErrDegenerateFitness)
	}
	return Evaluation{
		Fitness: sum / float64(count),
		Error:   math.Sqrt(sq / float64(count)),
		Samples: count,
	}, nil
}

func isNaN(v r3.Vec) bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}
