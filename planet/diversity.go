package planet

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Diversity is the mean distance between corresponding control points of two
// planets. Incompatible planets are infinitely diverse.
func Diversity(a, b *Planet) float64 {
	if !a.Compatible(b) {
		return math.Inf(1)
	}
	sum := 0.0
	for i := 0; i < a.grid.Rows; i++ {
		ra, rb := a.grid.Points[i], b.grid.Points[i]
		for j := 0; j < a.grid.Meridians; j++ {
			sum += r3.Norm(r3.Sub(ra[j], rb[j]))
		}
	}
	return sum / float64(a.grid.Count())
}

// MinDiversities returns, for each planet, its diversity to the nearest other
// planet. A mutually nearest pair is credited once: the second member of the
// pair reports its distance to its next-nearest neighbour instead, or 0 if it
// has none.
func MinDiversities(planets []*Planet) []float64 {
	n := len(planets)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := Diversity(planets[i], planets[j])
			dist[i][j], dist[j][i] = d, d
		}
	}
	return minDistances(dist)
}

// minDistances applies the mutual-pair rule to a symmetric distance matrix.
func minDistances(dist [][]float64) []float64 {
	n := len(dist)
	nearest := make([]int, n)
	for i := 0; i < n; i++ {
		nearest[i] = argMin(dist[i], i, -1)
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		j := nearest[i]
		if j < 0 {
			continue
		}
		if nearest[j] == i && j < i {
			// Pair already credited to j
			if k := argMin(dist[i], i, j); k >= 0 {
				out[i] = dist[i][k]
			}
			continue
		}
		out[i] = dist[i][j]
	}
	return out
}

// argMin returns the index of the smallest entry in row, skipping self and
// exclude, or -1.
func argMin(row []float64, self, exclude int) int {
	best := -1
	for j, d := range row {
		if j == self || j == exclude {
			continue
		}
		if best < 0 || d < row[best] {
			best = j
		}
	}
	return best
}
