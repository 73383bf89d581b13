package gui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/massim/internal/dynamo"
)

// screen maps a world point into the camera's pixel space, y up.
func (a *App) screen(p dynamo.Vec2) rl.Vector2 {
	return rl.NewVector2(float32(p.X)*a.scale, -float32(p.Y)*a.scale)
}

// radius grows with the cube root of mass so heavy bodies stand out.
func radius(m float64) float32 {
	return float32(4 + 3*math.Cbrt(m))
}

func (a *App) Draw(status string) {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginMode2D(a.Camera)
	a.drawGrid()
	a.drawScene()
	rl.EndMode2D()

	a.DrawHUD(status)
	rl.EndDrawing()
}

// drawGrid draws one line per world unit around the origin, coarsened so
// lines stay at least 20 pixels apart.
func (a *App) drawGrid() {
	step := float32(1)
	for step*a.scale*a.Camera.Zoom < 20 {
		step *= 10
	}
	const lines = 40
	half := step * lines / 2 * a.scale
	for i := -lines / 2; i <= lines/2; i++ {
		pos := float32(i) * step * a.scale
		rl.DrawLineV(rl.NewVector2(pos, -half), rl.NewVector2(pos, half), ColGrid)
		rl.DrawLineV(rl.NewVector2(-half, pos), rl.NewVector2(half, pos), ColGrid)
	}
}

func (a *App) drawScene() {
	if a.ShowTrails {
		for _, trail := range a.Trails {
			for i := 1; i < len(trail); i++ {
				if !trail[i-1].IsFinite() || !trail[i].IsFinite() {
					continue
				}
				alpha := uint8(255 * i / len(trail))
				rl.DrawLineV(a.screen(trail[i-1]), a.screen(trail[i]), rl.NewColor(120, 120, 120, alpha))
			}
		}
	}

	for _, l := range a.Links {
		if l[0] >= len(a.Positions) || l[1] >= len(a.Positions) {
			continue
		}
		p, q := a.Positions[l[0]], a.Positions[l[1]]
		if p.IsFinite() && q.IsFinite() {
			rl.DrawLineEx(a.screen(p), a.screen(q), 2, ColSpring)
		}
	}

	for i, p := range a.Positions {
		if !p.IsFinite() {
			continue
		}
		pos := a.screen(p)
		if a.Masses[i] == 0 {
			r := float32(5)
			rl.DrawRectangleLines(int32(pos.X-r), int32(pos.Y-r), int32(2*r), int32(2*r), ColAccent)
			continue
		}
		rl.DrawCircleV(pos, radius(a.Masses[i]), ColSelect)
		if a.ShowVectors && i < len(a.Velocities) && a.Velocities[i].IsFinite() {
			tip := a.screen(p.Add(a.Velocities[i].Scale(0.5)))
			rl.DrawLineEx(pos, tip, 2, ColVector)
		}
	}
}

func (a *App) DrawHUD(status string) {
	a.drawText("massim", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Title), 140, 34, 16, ColText)
	a.drawText(status, 30, 64, 14, ColTextDim)
	a.drawText(fmt.Sprintf("t = %.3fs   %dx", a.Time, a.Speed), 30, 84, 14, ColText)

	a.DrawTelemetry()

	state, col := "RUNNING", ColSelect
	if !a.Running {
		state, col = "PAUSED", ColTextDim
	}
	a.drawText(state, 1150, 30, 16, col)

	a.drawText("[SPACE] PAUSE  [R] RESET  [V] VECTORS  [T] TRAILS  [UP/DOWN] SPEED  [Q] QUIT", 520, 680, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 680, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

// DrawTelemetry plots the energy history in the lower left corner.
func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, 600
	width, height := 400, 60

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, v := range a.Telemetry {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		minVal, maxVal = math.Min(minVal, v), math.Max(maxVal, v)
	}
	if minVal > maxVal {
		a.drawText("E: non-finite", rectX+width+10, rectY+height-10, 14, rl.Red)
		return
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, 0, len(a.Telemetry))
	for i, val := range a.Telemetry {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			continue
		}
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points = append(points, rl.NewVector2(px, py))
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("E: %.2e", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}
