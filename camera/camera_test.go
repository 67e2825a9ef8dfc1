package camera

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cam := New(1280, 720, 5)

	x, y, z := cam.Position()
	d := math.Sqrt(float64(x*x + y*y + z*z))
	if math.Abs(d-5) > 1e-4 {
		t.Errorf("eye distance = %f, want 5", d)
	}
	if y <= 0 {
		t.Errorf("expected eye above the equator, got y=%f", y)
	}
}

func TestTargetProjectsToCenter(t *testing.T) {
	cam := New(1280, 720, 5)
	cam.LookAt(1, 2, 3)

	sx, sy, ok := cam.WorldToScreen(1, 2, 3)
	if !ok {
		t.Fatal("target not in front of camera")
	}
	if math.Abs(float64(sx-640)) > 0.01 || math.Abs(float64(sy-360)) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestBehindEyeNotProjected(t *testing.T) {
	cam := New(1280, 720, 5)
	x, y, z := cam.Position()

	// Mirror of the target through the eye
	if _, _, ok := cam.WorldToScreen(2*x, 2*y, 2*z); ok {
		t.Error("point behind the eye projected")
	}
}

func TestUpIsUpOnScreen(t *testing.T) {
	cam := New(1280, 720, 5)
	_, sy, ok := cam.WorldToScreen(0, 1, 0)
	if !ok {
		t.Fatal("point not projected")
	}
	if sy >= 360 {
		t.Errorf("world +Y should appear above center, got y=%f", sy)
	}
}

func TestOrbitWrapsYawAndClampsPitch(t *testing.T) {
	cam := New(1280, 720, 5)
	cam.Sensitivity = 1

	cam.Orbit(2*math.Pi, 0)
	if math.Abs(float64(cam.Yaw-defaultYaw)) > 1e-4 {
		t.Errorf("full turn yaw = %f, want %f", cam.Yaw, float32(defaultYaw))
	}

	cam.Orbit(0, 10)
	if cam.Pitch > maxPitch {
		t.Errorf("pitch %f exceeds %f", cam.Pitch, float32(maxPitch))
	}
	cam.Orbit(0, -20)
	if cam.Pitch < -maxPitch {
		t.Errorf("pitch %f below %f", cam.Pitch, float32(-maxPitch))
	}
}

func TestZoomClamping(t *testing.T) {
	cam := New(1280, 720, 4)

	cam.ZoomBy(100)
	if cam.Distance != cam.MinDistance {
		t.Errorf("expected distance clamped to min %f, got %f", cam.MinDistance, cam.Distance)
	}

	cam.ZoomBy(0.0001)
	if cam.Distance != cam.MaxDistance {
		t.Errorf("expected distance clamped to max %f, got %f", cam.MaxDistance, cam.Distance)
	}

	before := cam.Distance
	cam.ZoomBy(0)
	if cam.Distance != before {
		t.Error("zero factor changed distance")
	}
}

func TestFrameFitsSphere(t *testing.T) {
	cam := New(800, 800, 5)
	cam.Frame(2)

	// Sphere edge sits on the view boundary
	half := float64(cam.FovY) * math.Pi / 360
	got := math.Asin(2 / float64(cam.Distance))
	if math.Abs(got-half) > 1e-4 {
		t.Errorf("framed half-angle = %f, want %f", got, half)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 5)

	if !cam.IsVisible(0, 0, 0, 1) {
		t.Error("target should be visible")
	}
	x, y, z := cam.Position()
	if cam.IsVisible(3*x, 3*y, 3*z, 1) {
		t.Error("sphere far behind the eye should be culled")
	}
	// Large radius overlapping the eye stays visible
	if !cam.IsVisible(x, y, z, 10) {
		t.Error("sphere containing the eye should be visible")
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 5)
	cam.LookAt(3, 3, 3)
	cam.Orbit(100, 50)
	cam.Reset()

	if cam.TargetX != 0 || cam.Yaw != defaultYaw || cam.Pitch != defaultPitch {
		t.Errorf("reset state = %+v", cam)
	}
}
