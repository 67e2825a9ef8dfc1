package viewer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// clickTolerance is the mouse travel in pixels below which a press is a click.
const clickTolerance = 4

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyH) {
		v.showHelp = !v.showHelp
	}
	if rl.IsKeyPressed(rl.KeyS) && rl.IsKeyDown(rl.KeyLeftShift) {
		v.requestStop()
	}

	v.handleCameraInput()
	v.handleSelection()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h
	v.cam.Resize(w, h)
}

// handleCameraInput processes orbit and zoom controls.
func (v *Viewer) handleCameraInput() {
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		v.dragTravel = 0
	}
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		d := rl.GetMouseDelta()
		v.dragTravel += float32(math.Abs(float64(d.X)) + math.Abs(float64(d.Y)))
		v.cam.Orbit(d.X, d.Y)
	}

	// Arrow keys orbit too
	const step = 6
	if rl.IsKeyDown(rl.KeyRight) {
		v.cam.Orbit(step, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.cam.Orbit(-step, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.cam.Orbit(0, step)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.cam.Orbit(0, -step)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.cam.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.cam.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		v.cam.Reset()
		v.frameScene()
	}
}

// handleSelection picks a planet on click and clears it on right click.
func (v *Viewer) handleSelection() {
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		v.scene.Deselect()
		return
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) && v.dragTravel < clickTolerance {
		m := rl.GetMousePosition()
		if m.X > v.screenWidth-inspectorWidth-2*panelMargin {
			if _, ok := v.scene.Selected(); ok {
				return // click landed on the inspector
			}
		}
		v.scene.Pick(v.cam, m.X, m.Y)
	}
}

func mathHypot(a, b float32) float64 {
	return math.Hypot(float64(a), float64(b))
}
