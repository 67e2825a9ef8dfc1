package planet

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// PlateauBlock is a band of parallels at a pole that only ever moves as a
// rigid unit. Keeping the band rigid preserves tangent continuity at the
// pole, where every meridian meets.
type PlateauBlock struct {
	Rows []int
}

// Contains reports whether row belongs to the plateau.
func (b PlateauBlock) Contains(row int) bool {
	for _, r := range b.Rows {
		if r == row {
			return true
		}
	}
	return false
}

// Translate moves every point of the plateau by d.
func (b PlateauBlock) Translate(g *Grid, d r3.Vec) {
	for _, r := range b.Rows {
		row := g.Points[r]
		for j := range row {
			row[j] = r3.Add(row[j], d)
		}
	}
}

// MeanDelta returns the mean displacement of the plateau's distinct points
// from one grid to another.
func (b PlateauBlock) MeanDelta(from, to *Grid) r3.Vec {
	var sum r3.Vec
	n := 0
	for _, r := range b.Rows {
		for j := 0; j < from.Meridians; j++ {
			sum = r3.Add(sum, r3.Sub(to.Points[r][j], from.Points[r][j]))
			n++
		}
	}
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/float64(n), sum)
}

// CopyFrom overwrites the plateau rows of dst with those of src.
func (b PlateauBlock) CopyFrom(dst, src *Grid) {
	for _, r := range b.Rows {
		copy(dst.Points[r], src.Points[r])
	}
}

// IsRigidTranslate reports whether the plateau in to is a translated copy of
// the plateau in from, within tol.
func (b PlateauBlock) IsRigidTranslate(from, to *Grid, tol float64) bool {
	d := b.MeanDelta(from, to)
	for _, r := range b.Rows {
		for j := 0; j < from.Meridians; j++ {
			moved := r3.Sub(to.Points[r][j], from.Points[r][j])
			if r3.Norm(r3.Sub(moved, d)) > tol {
				return false
			}
		}
	}
	return true
}
