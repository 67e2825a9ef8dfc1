// Package viewer displays the evolving population in a raylib window. The
// evolution runs on the runner's goroutine; the viewer only reads committed
// snapshots.
package viewer

import (
	"context"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/planetforge/camera"
	"github.com/pthm-cable/planetforge/config"
	"github.com/pthm-cable/planetforge/evolution"
	"github.com/pthm-cable/planetforge/planet"
	"github.com/pthm-cable/planetforge/scene"
	"github.com/pthm-cable/planetforge/telemetry"
)

// Options holds window and scene settings.
type Options struct {
	Width, Height int
	TargetFPS     int
	Title         string
	Scene         scene.Options
}

// OptionsFromConfig builds viewer options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Width:     cfg.Screen.Width,
		Height:    cfg.Screen.Height,
		TargetFPS: cfg.Screen.TargetFPS,
		Title:     cfg.Screen.Title,
		Scene: scene.Options{
			Step:      cfg.Viewer.TessellationStep,
			Columns:   cfg.Viewer.Columns,
			Spacing:   float32(cfg.Viewer.Spacing),
			ShowCount: cfg.Viewer.ShowCount,
			SpinRate:  0.3,
		},
	}
}

// Viewer is the graphical front end.
type Viewer struct {
	opts   Options
	runner *evolution.Runner[*planet.Planet]
	scene  *scene.Scene
	cam    *camera.Camera
	perf   *telemetry.PerfCollector

	screenWidth, screenHeight float32

	paused        bool
	showHelp      bool
	framed        bool
	stopRequested bool

	// Mouse travel since the left button went down, to tell clicks from drags
	dragTravel float32
}

// New creates a viewer over a started runner.
func New(opts Options, runner *evolution.Runner[*planet.Planet], perf *telemetry.PerfCollector) *Viewer {
	w, h := float32(opts.Width), float32(opts.Height)
	return &Viewer{
		opts:         opts,
		runner:       runner,
		scene:        scene.New(opts.Scene),
		cam:          camera.New(w, h, 8),
		perf:         perf,
		screenWidth:  w,
		screenHeight: h,
	}
}

// Run opens the window and loops until it is closed or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(v.opts.Width), int32(v.opts.Height), v.opts.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(v.opts.TargetFPS))

	for !rl.WindowShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		v.Update()
		v.Draw()
	}
	slog.Info("viewer closed", "generation", v.scene.Generation())
	return nil
}

// Update handles input and picks up the latest snapshot.
func (v *Viewer) Update() {
	v.handleInput()

	if v.scene.Sync(v.runner.Latest()) && !v.framed {
		v.frameScene()
		v.framed = true
	}
	if !v.paused {
		v.scene.Update(rl.GetFrameTime())
	}
	v.perf.RecordFrame()
}

// frameScene fits the whole planet grid into view.
func (v *Viewer) frameScene() {
	n := v.scene.Len()
	if n == 0 {
		return
	}
	cols := min(max(v.opts.Scene.Columns, 1), n)
	rows := (n + cols - 1) / cols
	spacing := v.opts.Scene.Spacing
	halfW := float32(cols-1)/2*spacing + spacing/2
	halfD := float32(rows-1)/2*spacing + spacing/2
	v.cam.Frame(float32(mathHypot(halfW, halfD)))
}

// Stopped reports whether the user asked the evolution to stop.
func (v *Viewer) Stopped() bool {
	return v.stopRequested
}

func (v *Viewer) requestStop() {
	if v.stopRequested {
		return
	}
	v.stopRequested = true
	go func() {
		if err := v.runner.Stop(); err != nil {
			slog.Error("evolution stopped with error", "error", err)
		}
	}()
}
