package planet

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Grid is the control grid of a planet: Rows parallels by Meridians+Wrap
// columns. The last Wrap columns duplicate the first Wrap so that the basis
// recursion never needs modular indexing.
type Grid struct {
	Rows      int
	Meridians int
	Wrap      int
	Points    [][]r3.Vec
}

// NewGrid copies raw (rows x meridians) into a wrapped grid.
func NewGrid(raw [][]r3.Vec, wrap int) *Grid {
	g := &Grid{
		Rows:      len(raw),
		Meridians: len(raw[0]),
		Wrap:      wrap,
		Points:    make([][]r3.Vec, len(raw)),
	}
	for i, row := range raw {
		g.Points[i] = make([]r3.Vec, g.Meridians+wrap)
		copy(g.Points[i], row)
	}
	g.EnforcePeriodicity()
	return g
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{Rows: g.Rows, Meridians: g.Meridians, Wrap: g.Wrap, Points: make([][]r3.Vec, g.Rows)}
	for i, row := range g.Points {
		c.Points[i] = append([]r3.Vec(nil), row...)
	}
	return c
}

// At returns the control point at parallel i, meridian j (j taken modulo the
// meridian count).
func (g *Grid) At(i, j int) r3.Vec {
	return g.Points[i][g.wrapIndex(j)]
}

// Set stores p at parallel i, meridian j (modulo the meridian count).
// Wrapped duplicates are refreshed by EnforcePeriodicity.
func (g *Grid) Set(i, j int, p r3.Vec) {
	g.Points[i][g.wrapIndex(j)] = p
}

func (g *Grid) wrapIndex(j int) int {
	return ((j % g.Meridians) + g.Meridians) % g.Meridians
}

// EnforcePeriodicity copies the leading columns over their wrapped duplicates.
func (g *Grid) EnforcePeriodicity() {
	for _, row := range g.Points {
		copy(row[g.Meridians:], row[:g.Wrap])
	}
}

// IsPeriodic reports whether every wrapped column equals its source.
func (g *Grid) IsPeriodic() bool {
	for _, row := range g.Points {
		for j := 0; j < g.Wrap; j++ {
			if row[j] != row[j+g.Meridians] {
				return false
			}
		}
	}
	return true
}

// SameShape reports whether two grids have identical dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Rows == o.Rows && g.Meridians == o.Meridians && g.Wrap == o.Wrap
}

// Equal reports bit-for-bit equality.
func (g *Grid) Equal(o *Grid) bool {
	if !g.SameShape(o) {
		return false
	}
	for i := range g.Points {
		for j := range g.Points[i] {
			if g.Points[i][j] != o.Points[i][j] {
				return false
			}
		}
	}
	return true
}

// Raw returns an unwrapped copy (rows x meridians).
func (g *Grid) Raw() [][]r3.Vec {
	raw := make([][]r3.Vec, g.Rows)
	for i, row := range g.Points {
		raw[i] = append([]r3.Vec(nil), row[:g.Meridians]...)
	}
	return raw
}

// Count returns the number of distinct control points.
func (g *Grid) Count() int {
	return g.Rows * g.Meridians
}
