// B-spline basis preview tool - interactive plot of basis functions and their
// derivatives with sliders.
//
// Usage: go run ./cmd/basispreview
package main

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/planetforge/bspline"
)

const (
	windowWidth  = 1100
	windowHeight = 640
	plotWidth    = 640
	plotHeight   = 440
	plotX        = 20
	plotY        = 60
	panelX       = plotX + plotWidth + 30
	panelWidth   = windowWidth - panelX - 20
	sampleCount  = 400
)

// BasisParams selects the knot vector and derivative order to plot.
type BasisParams struct {
	Degree  int
	Points  int
	Clamped bool
	Order   int // 0 = values, 1 = first derivative, 2 = second derivative
}

var defaultParams = BasisParams{Degree: 3, Points: 8, Clamped: true}

// curveColors cycles across basis functions.
var curveColors = []rl.Color{
	{R: 230, G: 80, B: 70, A: 255},
	{R: 70, G: 150, B: 230, A: 255},
	{R: 90, G: 190, B: 90, A: 255},
	{R: 230, G: 170, B: 40, A: 255},
	{R: 160, G: 90, B: 210, A: 255},
	{R: 40, G: 190, B: 190, A: 255},
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "B-spline Basis Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams
	curves, sum, err := sampleBasis(params)
	needsRegen := false

	for !rl.WindowShouldClose() {
		if needsRegen {
			curves, sum, err = sampleBasis(params)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawText(fmt.Sprintf("%s, degree %d, %d control points", orderName(params.Order), params.Degree, params.Points), plotX, 20, 20, rl.DarkGray)
		if err != nil {
			rl.DrawText(err.Error(), plotX, plotY+10, 16, rl.Red)
		} else {
			drawPlot(curves, sum, params.Order == 0)
		}

		// Control panel
		y := float32(plotY)
		rl.DrawText("Knot Vector", panelX, int32(y), 20, rl.DarkGray)
		y += 35

		rl.DrawText("Degree", panelX, int32(y), 14, rl.Gray)
		y += 18
		newDegree := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: y, Width: panelWidth - 60, Height: 20},
			"1", "5",
			float32(params.Degree), 1, 5,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Degree), panelX+panelWidth-50, int32(y+2), 16, rl.DarkGray)
		if d := int(math.Round(float64(newDegree))); d != params.Degree {
			params.Degree = d
			params.Points = max(params.Points, d+1)
			needsRegen = true
		}
		y += 35

		rl.DrawText("Control points", panelX, int32(y), 14, rl.Gray)
		y += 18
		newPoints := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: y, Width: panelWidth - 60, Height: 20},
			fmt.Sprintf("%d", params.Degree+1), "16",
			float32(params.Points), float32(params.Degree+1), 16,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Points), panelX+panelWidth-50, int32(y+2), 16, rl.DarkGray)
		if p := int(math.Round(float64(newPoints))); p != params.Points {
			params.Points = p
			needsRegen = true
		}
		y += 35

		rl.DrawText("Derivative order", panelX, int32(y), 14, rl.Gray)
		y += 18
		newOrder := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: y, Width: panelWidth - 60, Height: 20},
			"0", "2",
			float32(params.Order), 0, 2,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Order), panelX+panelWidth-50, int32(y+2), 16, rl.DarkGray)
		if o := int(math.Round(float64(newOrder))); o != params.Order {
			params.Order = o
			needsRegen = true
		}
		y += 45

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 150, Height: 30}, toggleText(params.Clamped, "Clamped (V)", "Uniform (U)")) {
			params.Clamped = !params.Clamped
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 160, Y: y, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams
			needsRegen = true
		}
		y += 50

		// Knot listing
		if knots, kerr := knotsFor(params); kerr == nil {
			rl.DrawText("Knots:", panelX, int32(y), 16, rl.DarkGray)
			y += 22
			lo, hi := knots.Domain(params.Degree)
			rl.DrawText(fmt.Sprintf("%v", []float64(knots)), panelX, int32(y), 14, rl.Gray)
			y += 18
			rl.DrawText(fmt.Sprintf("domain [%g, %g]", lo, hi), panelX, int32(y), 14, rl.Gray)
			y += 30
		}

		if params.Order == 0 && err == nil {
			minSum, maxSum := sumRange(sum)
			rl.DrawText(fmt.Sprintf("Sum of basis: %.6f .. %.6f", minSum, maxSum), panelX, int32(y), 14, rl.DarkGray)
		}

		rl.DrawText("Uniform knots wrap meridians; clamped knots close the poles", plotX, windowHeight-30, 12, rl.LightGray)

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

func orderName(order int) string {
	switch order {
	case 1:
		return "First derivatives"
	case 2:
		return "Second derivatives"
	default:
		return "Basis functions"
	}
}

func knotsFor(p BasisParams) (bspline.KnotVector, error) {
	rep := 0
	if p.Clamped {
		rep = p.Degree
	}
	return bspline.GenerateKnots(p.Points, p.Degree, rep)
}

// sampleBasis evaluates every basis function over the normalized domain.
// curves[i][s] is function i at sample s; sum[s] is the total at sample s.
func sampleBasis(p BasisParams) (curves [][]float64, sum []float64, err error) {
	knots, err := knotsFor(p)
	if err != nil {
		return nil, nil, err
	}

	curves = make([][]float64, p.Points)
	for i := range curves {
		curves[i] = make([]float64, sampleCount)
	}
	sum = make([]float64, sampleCount)

	var buf []float64
	for s := 0; s < sampleCount; s++ {
		t := float64(s) / float64(sampleCount-1)
		span := knots.Span(t, p.Degree)
		switch p.Order {
		case 1:
			buf = bspline.D1Basis(buf, span, t, knots, p.Degree)
		case 2:
			buf = bspline.D2Basis(buf, span, t, knots, p.Degree)
		default:
			buf = bspline.Basis(buf, span, t, knots, p.Degree)
		}
		first := bspline.FirstActive(span, p.Degree)
		for k, v := range buf {
			if i := first + k; i >= 0 && i < p.Points {
				curves[i][s] = v
				sum[s] += v
			}
		}
	}
	return curves, sum, nil
}

// drawPlot draws the sampled curves scaled to their value range.
func drawPlot(curves [][]float64, sum []float64, showSum bool) {
	lo, hi := 0.0, 1.0
	for _, c := range curves {
		for _, v := range c {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if hi-lo < 1e-9 {
		hi = lo + 1
	}
	toScreen := func(s int, v float64) rl.Vector2 {
		x := plotX + float32(s)/float32(sampleCount-1)*plotWidth
		y := plotY + plotHeight - float32((v-lo)/(hi-lo))*plotHeight
		return rl.NewVector2(x, y)
	}

	rl.DrawRectangleLines(plotX, plotY, plotWidth, plotHeight, rl.DarkGray)
	if lo < 0 {
		zero := toScreen(0, 0)
		rl.DrawLine(plotX, int32(zero.Y), plotX+plotWidth, int32(zero.Y), rl.LightGray)
	}

	for i, c := range curves {
		col := curveColors[i%len(curveColors)]
		for s := 1; s < len(c); s++ {
			rl.DrawLineV(toScreen(s-1, c[s-1]), toScreen(s, c[s]), col)
		}
	}
	if showSum {
		for s := 1; s < len(sum); s++ {
			rl.DrawLineV(toScreen(s-1, sum[s-1]), toScreen(s, sum[s]), rl.Black)
		}
	}

	rl.DrawText(fmt.Sprintf("%.2f", hi), plotX+plotWidth+4, plotY, 12, rl.Gray)
	rl.DrawText(fmt.Sprintf("%.2f", lo), plotX+plotWidth+4, plotY+plotHeight-12, 12, rl.Gray)
}

func sumRange(sum []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range sum {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	return lo, hi
}
