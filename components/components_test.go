package components

import (
	"math"
	"testing"

	"github.com/pthm-cable/planetforge/planet"
)

func TestSpinWraps(t *testing.T) {
	s := Spin{Angle: 6, Rate: 1}
	s.Advance(1)
	if s.Angle < 0 || s.Angle >= twoPi {
		t.Errorf("angle %f not wrapped", s.Angle)
	}
	if math.Abs(float64(s.Angle)-(7-twoPi)) > 1e-5 {
		t.Errorf("angle = %f, want %f", s.Angle, 7-twoPi)
	}

	s = Spin{Angle: 0.5, Rate: -1}
	s.Advance(1)
	if math.Abs(float64(s.Angle)-(twoPi-0.5)) > 1e-5 {
		t.Errorf("negative spin angle = %f", s.Angle)
	}
}

func TestSurfaceFromSphere(t *testing.T) {
	p, err := planet.Sphere(8, 10, 2)
	if err != nil {
		t.Fatal(err)
	}
	s := SurfaceFromPlanet(p, 1.0/12)
	if s.Mesh.TriangleCount() == 0 {
		t.Fatal("empty mesh")
	}
	if math.Abs(float64(s.Radius)-2) > 0.05 {
		t.Errorf("bounding radius = %f, want about 2", s.Radius)
	}
}

func TestMeasureCurvature(t *testing.T) {
	p, err := planet.Sphere(10, 12, 1)
	if err != nil {
		t.Fatal(err)
	}
	var s Specimen
	s.MeasureCurvature(p)
	if s.GaussianMin > s.GaussianMax || s.MeanMin > s.MeanMax {
		t.Errorf("ranges inverted: %+v", s)
	}
	if s.GaussianMax <= 0 {
		t.Errorf("sphere should have positive Gaussian curvature somewhere: %+v", s)
	}

	empty, err := planet.Empty(8, 10)
	if err != nil {
		t.Fatal(err)
	}
	s.MeasureCurvature(empty)
	if s.GaussianMin != 0 || s.GaussianMax != 0 {
		t.Errorf("empty planet ranges = %+v", s)
	}
}
