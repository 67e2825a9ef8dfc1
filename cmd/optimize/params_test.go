package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/planetforge/config"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(raw[i]-back[i]) > 1e-12 {
			t.Errorf("%s: %f -> %f", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestDefaultsWithinBounds(t *testing.T) {
	pv := NewParamVector()
	for _, spec := range pv.Specs {
		if spec.Default < spec.Min || spec.Default > spec.Max {
			t.Errorf("%s default %f outside [%f, %f]", spec.Name, spec.Default, spec.Min, spec.Max)
		}
	}
}

func TestApplyToConfigClampsAndValidates(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()

	extreme := make([]float64, pv.Dim())
	for i := range extreme {
		extreme[i] = 1e6
	}
	pv.ApplyToConfig(cfg, extreme)

	if cfg.Mutation.MinDistance > cfg.Mutation.MaxDistance {
		t.Errorf("min distance %f above max %f", cfg.Mutation.MinDistance, cfg.Mutation.MaxDistance)
	}
	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Max {
			t.Errorf("%s = %f, want clamped %f", spec.Name, got[i], spec.Max)
		}
	}
}

func TestExtractMatchesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	got := pv.ExtractFromConfig(cfg)
	want := pv.DefaultVector()
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("%s: config %f, default %f", pv.Specs[i].Name, got[i], want[i])
		}
	}
}

func TestEachSpecBindsItsOwnField(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	mid := pv.Denormalize([]float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5})
	pv.ApplyToConfig(cfg, mid)
	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if math.Abs(got[i]-mid[i]) > 1e-12 {
			t.Errorf("%s: wrote %f, read back %f", spec.Path, mid[i], got[i])
		}
	}
}
