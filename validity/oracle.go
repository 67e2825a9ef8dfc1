// Package validity decides whether a planet surface is acceptable: its
// tessellation at a fixed step must not intersect itself.
package validity

import (
	"github.com/pthm-cable/planetforge/mesh"
	"github.com/pthm-cable/planetforge/planet"
)

// DefaultStep is the tessellation step used when Oracle.Step is zero.
const DefaultStep = 1.0 / 24

// Oracle is the single source of validity decisions for planet operators.
// It never mutates the planet it inspects.
type Oracle struct {
	Step        float64
	Intersector mesh.Intersector
}

// New returns an oracle using a BVH intersector with the given worker count.
func New(step float64, workers int) *Oracle {
	return &Oracle{Step: step, Intersector: mesh.BVHIntersector{Workers: workers}}
}

// Valid implements planet.Validator.
func (o *Oracle) Valid(p *planet.Planet) bool {
	return !o.SelfIntersects(p.Tessellate(o.step()))
}

// SelfIntersects reports whether any two non-adjacent triangles of m overlap.
func (o *Oracle) SelfIntersects(m *mesh.Mesh) bool {
	in := o.Intersector
	if in == nil {
		in = mesh.BVHIntersector{}
	}
	return in.AnyIntersect(m.Triangles())
}

func (o *Oracle) step() float64 {
	if o.Step <= 0 {
		return DefaultStep
	}
	return o.Step
}
