package components

import (
	"math"

	"github.com/pthm-cable/planetforge/planet"
)

// Specimen is a population member as committed by the latest epoch.
type Specimen struct {
	Slot       int     `inspect:"label"`
	Generation int     `inspect:"label"`
	Fitness    float64 `inspect:"bar"`
	Diversity  float64 `inspect:"label,fmt:%.4f"`
	Best       bool    `inspect:"bool"`

	// Curvature range over a coarse lattice
	GaussianMin float64 `inspect:"label,fmt:%.3f"`
	GaussianMax float64 `inspect:"label,fmt:%.3f"`
	MeanMin     float64 `inspect:"label,fmt:%.3f"`
	MeanMax     float64 `inspect:"label,fmt:%.3f"`
}

// CurvatureLattice is the lattice size used for specimen curvature ranges.
const CurvatureLattice = 8

// MeasureCurvature fills the curvature ranges from p.
func (s *Specimen) MeasureCurvature(p *planet.Planet) {
	s.GaussianMin, s.GaussianMax = math.Inf(1), math.Inf(-1)
	s.MeanMin, s.MeanMax = math.Inf(1), math.Inf(-1)
	for _, c := range p.SampleCurvature(CurvatureLattice) {
		if math.IsNaN(c.Gaussian) || math.IsNaN(c.Mean) {
			continue
		}
		s.GaussianMin = math.Min(s.GaussianMin, c.Gaussian)
		s.GaussianMax = math.Max(s.GaussianMax, c.Gaussian)
		s.MeanMin = math.Min(s.MeanMin, c.Mean)
		s.MeanMax = math.Max(s.MeanMax, c.Mean)
	}
	if math.IsInf(s.GaussianMin, 1) {
		s.GaussianMin, s.GaussianMax, s.MeanMin, s.MeanMax = 0, 0, 0, 0
	}
}
