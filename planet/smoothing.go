package planet

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// smoothingRows returns the two parallels adjacent to each plateau.
func (p *Planet) smoothingRows() []int {
	lo, hi := p.interiorRows()
	rows := []int{lo, lo + 1, hi - 2, hi - 1}
	out := rows[:0]
	seen := make(map[int]bool, len(rows))
	for _, r := range rows {
		if r >= lo && r < hi && !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// smoothPoles replaces the displacement applied to the parallels next to each
// plateau with its 5-point cross-stencil average, so a rigid plateau move and
// an unrelated interior move blend without a crease. Only the displacement is
// averaged: an operator that moved nothing leaves the grid bit-for-bit intact.
func (p *Planet) smoothPoles(before, after *Grid) {
	m := after.Meridians
	delta := func(i, j int) r3.Vec {
		j = ((j % m) + m) % m
		return r3.Sub(after.Points[i][j], before.Points[i][j])
	}

	rows := p.smoothingRows()
	smoothed := make([][]r3.Vec, len(rows))
	for k, i := range rows {
		smoothed[k] = make([]r3.Vec, m)
		for j := 0; j < m; j++ {
			sum := delta(i, j)
			sum = r3.Add(sum, delta(i-1, j))
			sum = r3.Add(sum, delta(i+1, j))
			sum = r3.Add(sum, delta(i, j-1))
			sum = r3.Add(sum, delta(i, j+1))
			smoothed[k][j] = r3.Scale(1.0/5, sum)
		}
	}

	for k, i := range rows {
		for j := 0; j < m; j++ {
			if d := smoothed[k][j]; d != (r3.Vec{}) {
				after.Points[i][j] = r3.Add(before.Points[i][j], d)
			} else {
				after.Points[i][j] = before.Points[i][j]
			}
		}
	}
}
