package viewer

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/planetforge/components"
	"github.com/pthm-cable/planetforge/evolution"
	"github.com/pthm-cable/planetforge/planet"
	"github.com/pthm-cable/planetforge/scene"
)

// Panel layout
const (
	inspectorWidth = 260
	panelMargin    = 10
	rowHeight      = 20
	chartWidth     = 260
	chartHeight    = 80
)

// Colors
var (
	colorBackground = rl.Color{R: 18, G: 20, B: 28, A: 255}
	colorLow        = rl.Color{R: 70, G: 110, B: 190, A: 255}
	colorHigh       = rl.Color{R: 230, G: 160, B: 70, A: 255}
	colorSelected   = rl.Color{R: 255, G: 230, B: 90, A: 255}
	colorChartBest  = rl.Color{R: 240, G: 190, B: 80, A: 255}
	colorChartMean  = rl.Color{R: 120, G: 170, B: 240, A: 255}
)

// lightDir is the unit direction towards the key light in scene space.
var lightDir = r3.Unit(r3.Vec{X: 0.4, Y: 0.8, Z: 0.45})

// Draw renders the scene and overlays.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(colorBackground)

	rl.BeginMode3D(v.camera3D())
	v.scene.Each(v.drawPlanet)
	rl.EndMode3D()

	snap := v.runner.Latest()
	v.drawHUD(snap)
	v.drawHistory(snap)
	v.drawInspector()
	if v.showHelp {
		v.drawHelp()
	}

	rl.EndDrawing()
}

func (v *Viewer) camera3D() rl.Camera3D {
	x, y, z := v.cam.Position()
	return rl.Camera3D{
		Position:   rl.NewVector3(x, y, z),
		Target:     rl.NewVector3(v.cam.TargetX, v.cam.TargetY, v.cam.TargetZ),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       v.cam.FovY,
		Projection: rl.CameraPerspective,
	}
}

// drawPlanet draws one tessellated planet with flat Lambert shading tinted by
// fitness.
func (v *Viewer) drawPlanet(pos *components.Position, spin *components.Spin, surf *components.Surface, spec *components.Specimen, selected bool) {
	if !v.cam.IsVisible(pos.X, pos.Y, pos.Z, surf.Radius) {
		return
	}
	base := lerpColor(colorLow, colorHigh, float32(clamp01(spec.Fitness)))
	sin, cos := math.Sincos(float64(spin.Angle))

	m := surf.Mesh
	for i := 0; i < m.TriangleCount(); i++ {
		tri := m.Triangle(i)
		var pts [3]r3.Vec
		for k, p := range tri.P {
			x, y, z := scene.ToScene(p)
			pts[k] = r3.Vec{
				X: cos*float64(x) + sin*float64(z) + float64(pos.X),
				Y: float64(y) + float64(pos.Y),
				Z: -sin*float64(x) + cos*float64(z) + float64(pos.Z),
			}
		}
		n := r3.Cross(r3.Sub(pts[1], pts[0]), r3.Sub(pts[2], pts[0]))
		if r3.Norm(n) == 0 {
			continue
		}
		shade := 0.25 + 0.75*math.Max(0, r3.Dot(r3.Unit(n), lightDir))
		rl.DrawTriangle3D(vec3(pts[0]), vec3(pts[1]), vec3(pts[2]), scaleColor(base, float32(shade)))
	}

	if selected {
		rl.DrawSphereWires(rl.NewVector3(pos.X, pos.Y, pos.Z), surf.Radius*1.08, 8, 12, colorSelected)
	}
}

func (v *Viewer) drawHUD(snap *evolution.Snapshot[*planet.Planet]) {
	rl.DrawText(v.opts.Title, panelMargin, panelMargin, 20, rl.White)
	if snap == nil {
		rl.DrawText("initializing population...", panelMargin, 35, 16, rl.LightGray)
		return
	}

	best := math.NaN()
	if b := snap.Best(); b >= 0 {
		best = snap.Fitness[b]
	}
	rl.DrawText(
		fmt.Sprintf("Generation: %d | State: %s | Population: %d", snap.Generation, snap.State, len(snap.Population)),
		panelMargin, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Best fitness: %.4f | No improvement: %d | FPS: %d", best, snap.NoImprovement, rl.GetFPS()),
		panelMargin, 55, 16, rl.LightGray,
	)

	status := "Evolving"
	switch {
	case v.stopRequested:
		status = "STOPPING"
	case snap.State == evolution.Terminated:
		status = "TERMINATED"
	}
	if v.paused {
		status += " | spin paused"
	}
	rl.DrawText(status, panelMargin, 75, 16, rl.Yellow)

	rl.DrawText("H: Help", panelMargin, int32(v.screenHeight)-25, 14, rl.Gray)
}

// drawHistory plots best and mean fitness per epoch.
func (v *Viewer) drawHistory(snap *evolution.Snapshot[*planet.Planet]) {
	if snap == nil || snap.History.Len() < 2 {
		return
	}
	x0 := float32(panelMargin)
	y0 := v.screenHeight - chartHeight - 40
	rl.DrawRectangleLines(int32(x0), int32(y0), chartWidth, chartHeight, rl.DarkGray)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range [][]float64{snap.History.BestFitness, snap.History.MeanFitness} {
		for _, f := range s {
			if !math.IsNaN(f) {
				lo, hi = math.Min(lo, f), math.Max(hi, f)
			}
		}
	}
	if hi <= lo {
		hi = lo + 1
	}

	plot := func(series []float64, c rl.Color) {
		n := len(series)
		for i := 1; i < n; i++ {
			a, b := series[i-1], series[i]
			if math.IsNaN(a) || math.IsNaN(b) {
				continue
			}
			xa := x0 + float32(i-1)/float32(n-1)*chartWidth
			xb := x0 + float32(i)/float32(n-1)*chartWidth
			ya := y0 + chartHeight - float32((a-lo)/(hi-lo))*chartHeight
			yb := y0 + chartHeight - float32((b-lo)/(hi-lo))*chartHeight
			rl.DrawLineV(rl.NewVector2(xa, ya), rl.NewVector2(xb, yb), c)
		}
	}
	plot(snap.History.MeanFitness, colorChartMean)
	plot(snap.History.BestFitness, colorChartBest)
	rl.DrawText(fmt.Sprintf("%.3f", hi), int32(x0+chartWidth+5), int32(y0), 12, rl.Gray)
	rl.DrawText(fmt.Sprintf("%.3f", lo), int32(x0+chartWidth+5), int32(y0+chartHeight-12), 12, rl.Gray)
}

// drawInspector shows the selected specimen's fields.
func (v *Viewer) drawInspector() {
	spec, ok := v.scene.Selected()
	if !ok {
		return
	}
	fields := scene.ExtractFields(spec)
	x := v.screenWidth - inspectorWidth - panelMargin
	y := float32(panelMargin)
	h := float32(len(fields)*rowHeight + 70)

	gui.GroupBox(rl.Rectangle{X: x, Y: y, Width: inspectorWidth, Height: h}, fmt.Sprintf("Slot %d", spec.Slot))
	y += 12
	for _, f := range fields {
		bounds := rl.Rectangle{X: x + 10, Y: y, Width: inspectorWidth - 20, Height: rowHeight - 4}
		switch f.Widget {
		case scene.WidgetBar:
			gui.ProgressBar(
				rl.Rectangle{X: x + 100, Y: y, Width: inspectorWidth - 160, Height: rowHeight - 6},
				f.Name, f.Text(), f.Ratio(), 0, 1,
			)
		case scene.WidgetBool:
			gui.CheckBox(rl.Rectangle{X: x + 10, Y: y + 2, Width: 12, Height: 12}, f.Name, f.Value == true)
		default:
			gui.Label(bounds, fmt.Sprintf("%s: %s", f.Name, f.Text()))
		}
		y += rowHeight
	}

	y += 8
	if gui.Button(rl.Rectangle{X: x + 10, Y: y, Width: 110, Height: 26}, "Deselect") {
		v.scene.Deselect()
	}
	label := "Stop evolution"
	if v.stopRequested {
		label = "Stopping..."
	}
	if gui.Button(rl.Rectangle{X: x + 130, Y: y, Width: 120, Height: 26}, label) {
		v.requestStop()
	}
}

func (v *Viewer) drawHelp() {
	lines := []string{
		"Drag / arrows: orbit",
		"Wheel / + -: zoom",
		"Click: inspect planet | Right click: deselect",
		"Space: pause spin | Home: reset camera",
		"Shift+S: stop evolution | F11: fullscreen",
	}
	y := int32(v.screenHeight) - int32(len(lines)*18) - 140
	for _, l := range lines {
		rl.DrawText(l, panelMargin, y, 14, rl.LightGray)
		y += 18
	}
}

func vec3(p r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(p.X), float32(p.Y), float32(p.Z))
}

func lerpColor(a, b rl.Color, t float32) rl.Color {
	l := func(x, y uint8) uint8 { return uint8(float32(x) + (float32(y)-float32(x))*t) }
	return rl.Color{R: l(a.R, b.R), G: l(a.G, b.G), B: l(a.B, b.B), A: 255}
}

func scaleColor(c rl.Color, s float32) rl.Color {
	return rl.Color{R: uint8(float32(c.R) * s), G: uint8(float32(c.G) * s), B: uint8(float32(c.B) * s), A: c.A}
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Min(math.Max(x, 0), 1)
}
