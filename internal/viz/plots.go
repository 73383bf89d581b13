package viz

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/massim/internal/dynamo"
)

const (
	PlotWidth  = 60
	PlotHeight = 12
)

var ErrNoData = errors.New("viz: nothing to plot")

// PlotOptions sizes a chart in terminal cells.
type PlotOptions struct {
	Width, Height int
}

func (o PlotOptions) withDefaults() PlotOptions {
	if o.Width <= 0 {
		o.Width = PlotWidth
	}
	if o.Height <= 0 {
		o.Height = PlotHeight
	}
	return o
}

// PositionVsTime plots the x and y position of each listed particle.
func PositionVsTime(d dynamo.Data, particles []int, o PlotOptions) (string, error) {
	return componentPlot(d.Positions, particles, "position", o)
}

// VelocityVsTime plots the x and y velocity of each listed particle.
func VelocityVsTime(d dynamo.Data, particles []int, o PlotOptions) (string, error) {
	return componentPlot(d.Velocities, particles, "velocity", o)
}

// EnergyVsTime plots the total energy of every frame.
func EnergyVsTime(d dynamo.Data, o PlotOptions) (string, error) {
	o = o.withDefaults()
	series := plottable(d.Energies)
	if series == nil {
		return "", ErrNoData
	}
	return asciigraph.Plot(series,
		asciigraph.Width(o.Width),
		asciigraph.Height(o.Height),
		asciigraph.Caption(fmt.Sprintf("energy over %s", span(d.Time))),
	), nil
}

func componentPlot(frames [][]dynamo.Vec2, particles []int, what string, o PlotOptions) (string, error) {
	o = o.withDefaults()
	if len(frames) == 0 || len(particles) == 0 {
		return "", ErrNoData
	}

	var (
		data    [][]float64
		legends []string
		colors  []asciigraph.AnsiColor
	)
	for n, i := range particles {
		if i < 0 || i >= len(frames[0]) {
			return "", fmt.Errorf("%w: particle %d of %d", dynamo.ErrOutOfRange, i, len(frames[0]))
		}
		xs := make([]float64, len(frames))
		ys := make([]float64, len(frames))
		for f, row := range frames {
			xs[f], ys[f] = row[i].X, row[i].Y
		}
		for axis, s := range [][]float64{xs, ys} {
			s = plottable(s)
			if s == nil {
				continue
			}
			data = append(data, s)
			legends = append(legends, fmt.Sprintf("%d.%c", i, "xy"[axis]))
			colors = append(colors, palette[(2*n+axis)%len(palette)])
		}
	}
	if len(data) == 0 {
		return "", ErrNoData
	}
	return asciigraph.PlotMany(data,
		asciigraph.Width(o.Width),
		asciigraph.Height(o.Height),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption(what),
	), nil
}

var palette = []asciigraph.AnsiColor{
	asciigraph.Red, asciigraph.Blue, asciigraph.Green, asciigraph.Yellow,
	asciigraph.Magenta, asciigraph.Cyan,
}

// plottable replaces infinities with NaN so they leave a gap, and returns nil
// when no finite value remains.
func plottable(s []float64) []float64 {
	out := make([]float64, len(s))
	finite := false
	for i, v := range s {
		if math.IsInf(v, 0) {
			v = math.NaN()
		}
		if !math.IsNaN(v) {
			finite = true
		}
		out[i] = v
	}
	if !finite {
		return nil
	}
	return out
}

func span(t []float64) string {
	if len(t) == 0 {
		return "0s"
	}
	return fmt.Sprintf("%.3gs", t[len(t)-1]-t[0])
}

// ScatterCanvas draws the x-y path of the listed particles on a width by
// height braille canvas. A nil list draws every particle.
func ScatterCanvas(d dynamo.Data, particles []int, width, height int) (*Canvas, Viewport, error) {
	if len(d.Positions) == 0 {
		return nil, Viewport{}, ErrNoData
	}
	if particles == nil {
		particles = allParticles(len(d.Masses))
	}

	var points []dynamo.Vec2
	for _, i := range particles {
		if i < 0 || i >= len(d.Masses) {
			return nil, Viewport{}, fmt.Errorf("%w: particle %d of %d", dynamo.ErrOutOfRange, i, len(d.Masses))
		}
		for _, row := range d.Positions {
			points = append(points, row[i])
		}
	}
	if len(points) == 0 {
		return nil, Viewport{}, ErrNoData
	}

	c := NewCanvas(width, height)
	v := FitViewport(points, 0.05, c)
	for _, p := range points {
		if v.Contains(p) {
			x, y := v.Project(p, c)
			c.Set(x, y)
		}
	}
	return c, v, nil
}

// Scatter renders ScatterCanvas with the plotted ranges as a caption.
func Scatter(d dynamo.Data, particles []int, o PlotOptions) (string, error) {
	o = o.withDefaults()
	c, v, err := ScatterCanvas(d, particles, o.Width, o.Height)
	if err != nil {
		return "", err
	}
	caption := fmt.Sprintf("x [%.3g, %.3g]  y [%.3g, %.3g]", v.MinX, v.MaxX, v.MinY, v.MaxY)
	return c.String() + Subtle.Render(caption), nil
}

// FullPlot lays out position, velocity, energy and scatter charts in a 2x2
// grid.
func FullPlot(d dynamo.Data, particles []int, o PlotOptions) (string, error) {
	o = o.withDefaults()
	if particles == nil {
		particles = allParticles(len(d.Masses))
	}
	half := PlotOptions{Width: o.Width / 2, Height: o.Height / 2}
	if half.Width < 10 {
		half.Width = 10
	}
	if half.Height < 4 {
		half.Height = 4
	}

	pos, err := PositionVsTime(d, particles, half)
	if err != nil {
		return "", err
	}
	vel, err := VelocityVsTime(d, particles, half)
	if err != nil {
		return "", err
	}
	energy, err := EnergyVsTime(d, half)
	if err != nil && !errors.Is(err, ErrNoData) {
		return "", err
	}
	scatter, err := Scatter(d, particles, half)
	if err != nil {
		return "", err
	}

	panel := func(title, body string) string {
		return PanelStyle.Render(HeaderStyle.Render(title) + "\n" + body)
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top, panel("Position", pos), panel("Velocity", vel))
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, panel("Energy", energy), panel("Path", scatter))
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom), nil
}

func allParticles(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// ParticleList parses a comma separated list of particle indices.
func ParticleList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []int
	for _, f := range strings.Split(s, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("particle %q: %w", f, err)
		}
		out = append(out, i)
	}
	return out, nil
}
