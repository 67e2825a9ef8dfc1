package main

import (
	"github.com/pthm-cable/planetforge/config"
)

// ParamSpec is one tunable config value and its search interval.
type ParamSpec struct {
	Name    string // column name in the optimize log
	Path    string // YAML path
	Min     float64
	Max     float64
	Default float64

	field func(*config.Config) *float64
}

func (s ParamSpec) clamp(v float64) float64  { return min(max(v, s.Min), s.Max) }
func (s ParamSpec) toUnit(v float64) float64 { return (v - s.Min) / (s.Max - s.Min) }
func (s ParamSpec) fromUnit(u float64) float64 {
	return s.Min + u*(s.Max-s.Min)
}

// ParamVector is the ordered search space. CMA-ES works on the unit cube;
// Normalize and Denormalize map between it and config values.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the mutation, crossover and selection parameters.
// The two distance intervals only touch at 0.05, so clamped values always
// satisfy min_distance <= max_distance.
func NewParamVector() *ParamVector {
	return &ParamVector{Specs: []ParamSpec{
		{"min_distance", "mutation.min_distance", 0.005, 0.05, 0.02,
			func(c *config.Config) *float64 { return &c.Mutation.MinDistance }},
		{"max_distance", "mutation.max_distance", 0.05, 0.3, 0.15,
			func(c *config.Config) *float64 { return &c.Mutation.MaxDistance }},
		{"sigma", "mutation.sigma", 0.5, 3.0, 1.5,
			func(c *config.Config) *float64 { return &c.Mutation.Sigma }},
		{"differential_scale", "mutation.differential_scale", 0.2, 1.0, 0.5,
			func(c *config.Config) *float64 { return &c.Mutation.DifferentialScale }},
		{"crossover_rate", "crossover.rate", 0.1, 0.9, 0.5,
			func(c *config.Config) *float64 { return &c.Crossover.Rate }},
		{"continuous_alpha", "crossover.continuous_alpha", 0.1, 0.9, 0.5,
			func(c *config.Config) *float64 { return &c.Crossover.ContinuousAlpha }},
		{"diversity_coefficient", "selection.diversity_coefficient", -0.2, 0.1, -0.05,
			func(c *config.Config) *float64 { return &c.Selection.DiversityCoefficient }},
	}}
}

// Dim is the search-space dimension.
func (pv *ParamVector) Dim() int { return len(pv.Specs) }

func (pv *ParamVector) mapEach(v []float64, f func(ParamSpec, float64) float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = f(s, v[i])
	}
	return out
}

// DefaultVector returns each spec's default.
func (pv *ParamVector) DefaultVector() []float64 {
	return pv.mapEach(make([]float64, pv.Dim()), func(s ParamSpec, _ float64) float64 { return s.Default })
}

// Normalize maps config values onto [0, 1] per dimension.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	return pv.mapEach(raw, ParamSpec.toUnit)
}

// Denormalize maps unit-cube coordinates back to config values. The result
// may lie outside the bounds; Clamp it before use.
func (pv *ParamVector) Denormalize(unit []float64) []float64 {
	return pv.mapEach(unit, ParamSpec.fromUnit)
}

// Clamp limits every value to its spec's interval.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	return pv.mapEach(v, ParamSpec.clamp)
}

// ApplyToConfig writes clamped values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, s := range pv.Specs {
		*s.field(cfg) = s.clamp(values[i])
	}
}

// ExtractFromConfig reads the current values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = *s.field(cfg)
	}
	return out
}
