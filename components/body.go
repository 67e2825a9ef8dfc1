// Package components defines ECS components for the planet viewer.
package components

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/planetforge/mesh"
	"github.com/pthm-cable/planetforge/planet"
)

// Surface holds the displayable tessellation of a planet.
type Surface struct {
	Mesh   *mesh.Mesh `inspect:"skip"`
	Radius float32    `inspect:"label,fmt:%.3f"` // bounding radius about the origin
}

// SurfaceFromPlanet tessellates p at the given step.
func SurfaceFromPlanet(p *planet.Planet, step float64) Surface {
	m := p.Tessellate(step)
	var r float64
	for _, v := range m.Positions {
		r = math.Max(r, r3.Norm(v))
	}
	return Surface{Mesh: m, Radius: float32(r)}
}
