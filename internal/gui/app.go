package gui

import (
	"errors"
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/massim/internal/dynamo"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)    // Deep Black
	ColAccent  = rl.NewColor(180, 180, 180, 255) // Soft White
	ColSelect  = rl.NewColor(255, 255, 255, 255) // Bright White
	ColText    = rl.NewColor(140, 140, 140, 255) // Neutral Gray
	ColTextDim = rl.NewColor(60, 60, 60, 255)    // Dark Gray (Subtle)
	ColGrid    = rl.NewColor(30, 30, 30, 255)    // Barely visible grid
	ColSpring  = rl.NewColor(110, 110, 110, 255)
	ColVector  = rl.NewColor(255, 80, 80, 200)
)

const (
	screenW    = 1280
	screenH    = 720
	maxTrail   = 200
	maxHistory = 400
)

// Options control the window.
type Options struct {
	Title string
	// Scale is pixels per world unit. Zero fits the initial positions.
	Scale float32
	// FPS is the target frame rate. Zero derives it from the step size.
	FPS int32
	// StepsPerFrame is the number of outer steps taken per drawn frame.
	StepsPerFrame int
}

// SceneBuilder returns a fresh scene in its initial state.
type SceneBuilder func() (*dynamo.Scene, error)

// App holds what both the realtime and playback windows draw.
type App struct {
	Title       string
	Camera      rl.Camera2D
	Running     bool
	ShowVectors bool
	ShowTrails  bool
	Font        rl.Font
	Speed       int

	Positions  []dynamo.Vec2
	Velocities []dynamo.Vec2
	Masses     []float64
	Links      [][2]int
	Trails     [][]dynamo.Vec2
	Telemetry  []float64 // energy history
	Time       float64

	scale float32
}

// initWindow opens the window, sets the target frame rate and disables the
// default exit key.
func initWindow(title string, fps int32) {
	rl.InitWindow(screenW, screenH, title)
	rl.SetTargetFPS(fps)
	rl.SetExitKey(0)
}

// loadFont loads the Liberation Mono font from the system path and enables
// bilinear filtering, falling back to the raylib default font.
func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	if font.Texture.ID == 0 {
		return rl.GetFontDefault()
	}
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func newApp(title string, opts Options, masses []float64, links [][2]int, initial []dynamo.Vec2) *App {
	a := &App{
		Title:       title,
		Running:     true,
		ShowVectors: false,
		ShowTrails:  true,
		Font:        loadFont(),
		Speed:       max(opts.StepsPerFrame, 1),
		Masses:      masses,
		Links:       links,
		Trails:      make([][]dynamo.Vec2, len(masses)),
		Telemetry:   make([]float64, 0, maxHistory),
		scale:       opts.Scale,
	}
	if a.scale <= 0 {
		a.scale = fitScale(initial, screenW, screenH)
	}
	c := centroid(initial)
	a.Camera = rl.NewCamera2D(rl.NewVector2(screenW/2, screenH/2), rl.NewVector2(c.X*a.scale, c.Y*a.scale), 0, 1)
	return a
}

// fitScale is the pixels per world unit that fits every finite point into
// the middle two thirds of a w by h screen.
func fitScale(points []dynamo.Vec2, w, h float32) float32 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		if !p.IsFinite() {
			continue
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	ext := math.Max(maxX-minX, maxY-minY)
	if math.IsInf(ext, 0) || ext < 1e-9 {
		return 40
	}
	return float32(math.Min(float64(w), float64(h)) * 2 / 3 / ext)
}

// centroid is the mean of the finite points with y flipped to screen
// orientation.
func centroid(points []dynamo.Vec2) rl.Vector2 {
	var c dynamo.Vec2
	n := 0
	for _, p := range points {
		if p.IsFinite() {
			c = c.Add(p)
			n++
		}
	}
	if n == 0 {
		return rl.NewVector2(0, 0)
	}
	c = c.Scale(1 / float64(n))
	return rl.NewVector2(float32(c.X), float32(-c.Y))
}

func links(forces []dynamo.Force) [][2]int {
	var out [][2]int
	for _, f := range forces {
		if s, ok := f.(dynamo.Spring); ok {
			out = append(out, [2]int{s.A, s.B})
		}
	}
	return out
}

// fpsFor targets one drawn frame per outer step, within display limits.
func fpsFor(dt float64, opts Options) int32 {
	if opts.FPS > 0 {
		return opts.FPS
	}
	fps := math.Round(1 / dt)
	return int32(math.Min(math.Max(fps, 10), 240))
}

// observe records a frame for drawing.
func (a *App) observe(positions, velocities []dynamo.Vec2, t, energy float64) {
	a.Positions, a.Velocities, a.Time = positions, velocities, t
	a.Telemetry = append(a.Telemetry, energy)
	if len(a.Telemetry) > maxHistory {
		a.Telemetry = a.Telemetry[1:]
	}
	if !a.ShowTrails {
		return
	}
	for i, p := range positions {
		if a.Masses[i] == 0 {
			continue
		}
		a.Trails[i] = append(a.Trails[i], p)
		if len(a.Trails[i]) > maxTrail {
			a.Trails[i] = a.Trails[i][1:]
		}
	}
}

func (a *App) clearTrails() {
	for i := range a.Trails {
		a.Trails[i] = nil
	}
}

// handleCommonKeys processes keys shared by both windows. It reports whether
// the window should close.
func (a *App) handleCommonKeys() bool {
	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		return true
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyV) {
		a.ShowVectors = !a.ShowVectors
	}
	if rl.IsKeyPressed(rl.KeyT) {
		a.ShowTrails = !a.ShowTrails
		a.clearTrails()
	}
	if rl.IsKeyPressed(rl.KeyUp) {
		a.Speed = min(a.Speed*2, 256)
	}
	if rl.IsKeyPressed(rl.KeyDown) {
		a.Speed = max(a.Speed/2, 1)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.Camera.Zoom = float32(math.Max(0.05, float64(a.Camera.Zoom)*(1+0.1*float64(wheel))))
	}
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		d := rl.GetMouseDelta()
		a.Camera.Target.X -= d.X / a.Camera.Zoom
		a.Camera.Target.Y -= d.Y / a.Camera.Zoom
	}
	return false
}

// Realtime opens a window that steps the scene once per frame until closed.
func Realtime(name string, build SceneBuilder, dt float64, substeps int, opts Options) error {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) || substeps < 1 {
		return fmt.Errorf("%w: dt %v, substeps %d", dynamo.ErrInvalidArgument, dt, substeps)
	}
	scene, err := build()
	if err != nil {
		return err
	}

	initWindow(titleOr(opts.Title, name), fpsFor(dt, opts))
	defer rl.CloseWindow()

	a := newApp(name, opts, scene.Masses(), links(scene.Forces()), scene.Positions())
	a.observe(scene.Positions(), scene.Velocities(), 0, scene.Energy())

	for !rl.WindowShouldClose() {
		if a.handleCommonKeys() {
			break
		}
		if rl.IsKeyPressed(rl.KeyR) {
			if scene, err = build(); err != nil {
				return err
			}
			a.Telemetry = a.Telemetry[:0]
			a.clearTrails()
			a.observe(scene.Positions(), scene.Velocities(), 0, scene.Energy())
		}
		if a.Running {
			for i := 0; i < a.Speed; i++ {
				frame, err := scene.Step(dt, substeps)
				if err != nil {
					return err
				}
				a.observe(frame.Positions, frame.Velocities, frame.Time, frame.Energy)
			}
		}
		a.Draw(fmt.Sprintf("%s  dt %g x %d", scene.Integrator().Name(), dt, substeps))
	}
	return nil
}

// Animate opens a window that plays back recorded per-particle series.
// energies may be nil.
func Animate(title string, series []dynamo.ParticleSeries, times, energies []float64, opts Options) error {
	frames := len(times)
	if frames == 0 {
		return errors.New("gui: no frames to play")
	}
	masses := make([]float64, len(series))
	var all []dynamo.Vec2
	for i, s := range series {
		if len(s.Positions) != frames || len(s.Velocities) != frames {
			return fmt.Errorf("%w: particle %d has %d frames, want %d", dynamo.ErrInvalidArgument, s.Index, len(s.Positions), frames)
		}
		masses[i] = s.Mass
		all = append(all, s.Positions...)
	}

	dt := 1.0 / 60
	if frames > 1 && times[1] > times[0] {
		dt = times[1] - times[0]
	}
	initWindow(titleOr(opts.Title, title), fpsFor(dt, opts))
	defer rl.CloseWindow()

	a := newApp(title, opts, masses, nil, all)
	frameAt := func(f int) ([]dynamo.Vec2, []dynamo.Vec2) {
		pos := make([]dynamo.Vec2, len(series))
		vel := make([]dynamo.Vec2, len(series))
		for i, s := range series {
			pos[i], vel[i] = s.Positions[f], s.Velocities[f]
		}
		return pos, vel
	}

	f := 0
	for !rl.WindowShouldClose() {
		if a.handleCommonKeys() {
			break
		}
		if rl.IsKeyPressed(rl.KeyR) || f >= frames {
			f = 0
			a.Telemetry = a.Telemetry[:0]
			a.clearTrails()
		}
		pos, vel := frameAt(f)
		a.Positions, a.Velocities, a.Time = pos, vel, times[f]
		if a.Running {
			e := 0.0
			if f < len(energies) {
				e = energies[f]
			}
			a.observe(pos, vel, times[f], e)
			f += a.Speed
		}
		a.Draw(fmt.Sprintf("frame %d/%d", min(f, frames-1), frames-1))
	}
	return nil
}

func titleOr(title, fallback string) string {
	if title != "" {
		return title
	}
	return "massim :: " + fallback
}
