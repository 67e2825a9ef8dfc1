// Package planet models a closed genus-0 B-spline surface whose control grid
// is periodic along meridians (u) and clamped along parallels (v). Row 0 is
// the south pole and the last row the north pole; the first and last DegreeV
// rows form rigid pole plateaus.
package planet

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/planetforge/bspline"
	"github.com/pthm-cable/planetforge/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrInvalidTopology is returned for empty or ragged grids and for grids
	// too short to hold both pole plateaus and an interior.
	ErrInvalidTopology = errors.New("invalid planet topology")

	// ErrInsufficientControlPoints aliases the bspline sentinel so callers can
	// match on either package.
	ErrInsufficientControlPoints = bspline.ErrInsufficientControlPoints

	// ErrRejected is returned by TryOperator when a candidate fails validation.
	ErrRejected = errors.New("candidate rejected")
)

// Planet is a B-spline surface with its control grid, knot vectors and pole
// plateaus. All operators either commit a valid new grid or leave the planet
// untouched.
type Planet struct {
	degreeU, degreeV int
	grid             *Grid
	knotsU, knotsV   bspline.KnotVector
	plateaus         [2]PlateauBlock
}

// New builds a planet from an unwrapped raw grid (parallels x meridians).
func New(degreeU, degreeV int, raw [][]r3.Vec) (*Planet, error) {
	if degreeU < 1 || degreeV < 1 {
		return nil, fmt.Errorf("new planet: degrees (%d,%d): %w", degreeU, degreeV, ErrInvalidTopology)
	}
	if len(raw) == 0 || len(raw[0]) == 0 {
		return nil, fmt.Errorf("new planet: empty grid: %w", ErrInvalidTopology)
	}
	meridians := len(raw[0])
	for i, row := range raw {
		if len(row) != meridians {
			return nil, fmt.Errorf("new planet: row %d has %d points, want %d: %w", i, len(row), meridians, ErrInvalidTopology)
		}
	}
	if meridians < degreeU+1 {
		return nil, fmt.Errorf("new planet: %d meridians for degree %d: %w", meridians, degreeU, ErrInsufficientControlPoints)
	}
	if len(raw) < degreeV+1 {
		return nil, fmt.Errorf("new planet: %d parallels for degree %d: %w", len(raw), degreeV, ErrInsufficientControlPoints)
	}
	// Both plateaus plus at least two interior parallels for pole smoothing
	if len(raw) < 2*degreeV+2 {
		return nil, fmt.Errorf("new planet: %d parallels cannot hold two %d-row plateaus: %w", len(raw), degreeV, ErrInvalidTopology)
	}

	knotsU, err := bspline.GenerateKnots(meridians+degreeU, degreeU, 0)
	if err != nil {
		return nil, fmt.Errorf("new planet: u knots: %w", err)
	}
	knotsV, err := bspline.GenerateKnots(len(raw), degreeV, degreeV)
	if err != nil {
		return nil, fmt.Errorf("new planet: v knots: %w", err)
	}

	p := &Planet{
		degreeU: degreeU,
		degreeV: degreeV,
		grid:    NewGrid(raw, degreeU),
		knotsU:  knotsU,
		knotsV:  knotsV,
	}
	p.plateaus = plateausFor(len(raw), degreeV)
	return p, nil
}

func plateausFor(parallels, size int) [2]PlateauBlock {
	south := PlateauBlock{Rows: make([]int, size)}
	north := PlateauBlock{Rows: make([]int, size)}
	for k := 0; k < size; k++ {
		south.Rows[k] = k
		north.Rows[k] = parallels - size + k
	}
	return [2]PlateauBlock{south, north}
}

// DegreeU returns the meridian-direction degree.
func (p *Planet) DegreeU() int { return p.degreeU }

// DegreeV returns the parallel-direction degree.
func (p *Planet) DegreeV() int { return p.degreeV }

// Meridians returns the number of distinct control columns.
func (p *Planet) Meridians() int { return p.grid.Meridians }

// Parallels returns the number of control rows.
func (p *Planet) Parallels() int { return p.grid.Rows }

// Grid exposes the wrapped control grid. Callers must not modify it.
func (p *Planet) Grid() *Grid { return p.grid }

// Plateaus returns the south and north pole plateaus.
func (p *Planet) Plateaus() [2]PlateauBlock { return p.plateaus }

// RawGrid returns an unwrapped copy of the control grid.
func (p *Planet) RawGrid() [][]r3.Vec {
	return p.grid.Raw()
}

// Clone returns a deep copy. Knot vectors and plateaus are immutable and shared.
func (p *Planet) Clone() *Planet {
	c := *p
	c.grid = p.grid.Clone()
	return &c
}

// withGrid returns a view of p over another grid of the same shape.
func (p *Planet) withGrid(g *Grid) *Planet {
	c := *p
	c.grid = g
	return &c
}

// Compatible reports whether two planets share degrees and grid dimensions.
func (p *Planet) Compatible(o *Planet) bool {
	return p.degreeU == o.degreeU && p.degreeV == o.degreeV && p.grid.SameShape(o.grid)
}

// plateauOf returns the plateau containing row.
func (p *Planet) plateauOf(row int) (PlateauBlock, bool) {
	for _, b := range p.plateaus {
		if b.Contains(row) {
			return b, true
		}
	}
	return PlateauBlock{}, false
}

// interiorRows returns the first and one-past-last non-plateau parallels.
func (p *Planet) interiorRows() (int, int) {
	return p.degreeV, p.grid.Rows - p.degreeV
}

// Tessellate samples the surface into a closed triangle mesh.
func (p *Planet) Tessellate(step float64) *mesh.Mesh {
	return mesh.Tessellate(p, step)
}
