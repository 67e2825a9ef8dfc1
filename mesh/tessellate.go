package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Surface is a closed parametric surface, periodic in tu and collapsing to
// a pole at tv=0 and tv=1.
type Surface interface {
	Evaluate(tu, tv float64) r3.Vec
	Normal(tu, tv float64) r3.Vec
}

// Resolution returns the number of parameter steps per direction for step.
func Resolution(step float64) int {
	if step <= 0 {
		return 3
	}
	n := int(math.Ceil(1/step - 1e-9))
	if n < 3 {
		n = 3
	}
	return n
}

// Tessellate samples s on a regular (tu, tv) grid with the given step and
// returns the triangle mesh. Each pole becomes a single shared vertex and the
// tu seam is stitched, so every triangle's neighbours share vertex indices.
// The result is deterministic for a fixed step.
func Tessellate(s Surface, step float64) *Mesh {
	n := Resolution(step)
	rings := n - 1
	cols := n

	m := &Mesh{
		Positions: make([]r3.Vec, 0, rings*cols+2),
		Normals:   make([]r3.Vec, 0, rings*cols+2),
		Indices:   make([]uint32, 0, 6*cols*rings),
	}

	// First pole, rings, last pole
	m.Positions = append(m.Positions, s.Evaluate(0, 0))
	m.Normals = append(m.Normals, r3.Vec{})
	for r := 1; r <= rings; r++ {
		tv := float64(r) / float64(n)
		for c := 0; c < cols; c++ {
			tu := float64(c) / float64(cols)
			m.Positions = append(m.Positions, s.Evaluate(tu, tv))
			m.Normals = append(m.Normals, s.Normal(tu, tv))
		}
	}
	m.Positions = append(m.Positions, s.Evaluate(0, 1))
	m.Normals = append(m.Normals, r3.Vec{})

	first := uint32(0)
	last := uint32(len(m.Positions) - 1)
	vertex := func(r, c int) uint32 {
		return uint32(1 + r*cols + (c % cols))
	}

	// Pole normals are the mean of the adjacent ring
	m.Normals[first] = ringMeanNormal(m, 0, cols)
	m.Normals[last] = ringMeanNormal(m, rings-1, cols)

	for c := 0; c < cols; c++ {
		m.Indices = append(m.Indices, first, vertex(0, c+1), vertex(0, c))
	}
	for r := 0; r < rings-1; r++ {
		for c := 0; c < cols; c++ {
			a, b := vertex(r, c), vertex(r, c+1)
			d, e := vertex(r+1, c), vertex(r+1, c+1)
			m.Indices = append(m.Indices, a, b, e, a, e, d)
		}
	}
	for c := 0; c < cols; c++ {
		m.Indices = append(m.Indices, vertex(rings-1, c), vertex(rings-1, c+1), last)
	}

	return m
}

func ringMeanNormal(m *Mesh, ring, cols int) r3.Vec {
	var sum r3.Vec
	for c := 0; c < cols; c++ {
		n := m.Normals[1+ring*cols+c]
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsNaN(n.Z) {
			continue
		}
		sum = r3.Add(sum, n)
	}
	if norm := r3.Norm(sum); norm > 0 {
		return r3.Scale(1/norm, sum)
	}
	return sum
}
