// Package camera provides an orbit camera for viewing planets.
package camera

import "math"

// Camera orbits a target point. Yaw wraps around the vertical axis; pitch is
// clamped short of the poles so the view never flips.
type Camera struct {
	// Target is the orbit center in world coordinates
	TargetX, TargetY, TargetZ float32

	// Yaw and Pitch in radians
	Yaw, Pitch float32

	// Distance from target to eye
	Distance float32

	// Vertical field of view in degrees
	FovY float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Distance constraints
	MinDistance, MaxDistance float32

	// Sensitivity in radians per screen pixel
	Sensitivity float32
}

const (
	defaultYaw   = math.Pi / 4
	defaultPitch = math.Pi / 8
	maxPitch     = math.Pi/2 - 0.01
)

// New creates a camera looking at the origin from the given distance.
func New(viewportW, viewportH, distance float32) *Camera {
	return &Camera{
		Yaw:         defaultYaw,
		Pitch:       defaultPitch,
		Distance:    distance,
		FovY:        45,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		MinDistance: distance / 8,
		MaxDistance: distance * 8,
		Sensitivity: 0.005,
	}
}

// Position returns the eye position in world coordinates. Y is up.
func (c *Camera) Position() (x, y, z float32) {
	cp := math.Cos(float64(c.Pitch))
	x = c.TargetX + c.Distance*float32(cp*math.Cos(float64(c.Yaw)))
	y = c.TargetY + c.Distance*float32(math.Sin(float64(c.Pitch)))
	z = c.TargetZ + c.Distance*float32(cp*math.Sin(float64(c.Yaw)))
	return x, y, z
}

// Orbit rotates the camera by a mouse drag of dx, dy screen pixels.
func (c *Camera) Orbit(dx, dy float32) {
	c.Yaw = mod(c.Yaw+dx*c.Sensitivity, 2*math.Pi)
	c.Pitch = clamp(c.Pitch+dy*c.Sensitivity, -maxPitch, maxPitch)
}

// SetDistance sets the eye distance, clamped to min/max.
func (c *Camera) SetDistance(d float32) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy divides the distance by the given factor; factors above 1 move closer.
func (c *Camera) ZoomBy(factor float32) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance / factor)
}

// LookAt moves the orbit center, keeping angles and distance.
func (c *Camera) LookAt(x, y, z float32) {
	c.TargetX, c.TargetY, c.TargetZ = x, y, z
}

// Frame sets the distance so a sphere of the given radius around the target
// fills the vertical field of view.
func (c *Camera) Frame(radius float32) {
	half := float64(c.FovY) * math.Pi / 360
	d := float32(float64(radius) / math.Sin(half))
	if d > c.MaxDistance {
		c.MaxDistance = d * 2
	}
	c.SetDistance(d)
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Reset returns the camera to the default angles around the origin.
func (c *Camera) Reset() {
	c.TargetX, c.TargetY, c.TargetZ = 0, 0, 0
	c.Yaw = defaultYaw
	c.Pitch = defaultPitch
}

// basis returns the eye position and the forward, right and up unit vectors.
func (c *Camera) basis() (eye, fwd, right, up [3]float64) {
	ex, ey, ez := c.Position()
	eye = [3]float64{float64(ex), float64(ey), float64(ez)}
	fwd = normalize([3]float64{
		float64(c.TargetX) - eye[0],
		float64(c.TargetY) - eye[1],
		float64(c.TargetZ) - eye[2],
	})
	right = normalize(cross(fwd, [3]float64{0, 1, 0}))
	up = cross(right, fwd)
	return eye, fwd, right, up
}

// WorldToScreen projects a world point to screen coordinates. ok is false
// for points behind the eye.
func (c *Camera) WorldToScreen(wx, wy, wz float32) (sx, sy float32, ok bool) {
	eye, fwd, right, up := c.basis()
	d := [3]float64{float64(wx) - eye[0], float64(wy) - eye[1], float64(wz) - eye[2]}
	depth := dot(d, fwd)
	if depth <= 1e-6 {
		return 0, 0, false
	}
	f := float64(c.ViewportH) / 2 / math.Tan(float64(c.FovY)*math.Pi/360)
	sx = c.ViewportW/2 + float32(dot(d, right)/depth*f)
	sy = c.ViewportH/2 - float32(dot(d, up)/depth*f)
	return sx, sy, true
}

// IsVisible returns true if a sphere at the given point could be visible on
// screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, wz, radius float32) bool {
	eye, fwd, right, up := c.basis()
	d := [3]float64{float64(wx) - eye[0], float64(wy) - eye[1], float64(wz) - eye[2]}
	depth := dot(d, fwd)
	r := float64(radius)
	if depth < -r {
		return false
	}
	tanY := math.Tan(float64(c.FovY) * math.Pi / 360)
	tanX := tanY * float64(c.ViewportW) / float64(c.ViewportH)
	slack := r * math.Sqrt(1+tanX*tanX+tanY*tanY)
	return math.Abs(dot(d, right)) <= depth*tanX+slack &&
		math.Abs(dot(d, up)) <= depth*tanY+slack
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(v [3]float64) [3]float64 {
	n := math.Sqrt(dot(v, v))
	if n == 0 {
		return v
	}
	return [3]float64{v[0] / n, v[1] / n, v[2] / n}
}

// mod computes the positive modulo (Go's % can return negative).
func mod(x, m float32) float32 {
	r := float32(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	return r
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
