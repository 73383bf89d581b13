package analysis

import (
	"strings"

	"github.com/san-kum/massim/internal/dynamo"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	Particle int
	Axis     Axis
	Points   []Point
}

// PhasePortrait records one coordinate of a particle against its velocity
// component along the same axis.
func PhasePortrait(r *dynamo.Result, particle int, axis Axis) (*PhasePortrait2D, error) {
	pos, err := r.PositionsOf(particle)
	if err != nil {
		return nil, err
	}
	vel, err := r.VelocitiesOf(particle)
	if err != nil {
		return nil, err
	}

	xs, vs := Component(pos, axis), Component(vel, axis)
	portrait := &PhasePortrait2D{
		Particle: particle,
		Axis:     axis,
		Points:   make([]Point, len(xs)),
	}
	for i := range xs {
		portrait.Points[i] = Point{X: xs[i], Y: vs[i]}
	}
	return portrait, nil
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	// 10% padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// axes, where visible
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection records points when a trajectory crosses a line
type PoincareSection struct {
	Points []Point
}

// Crossings finds the positive-going crossings of threshold by the cross
// coordinate of particle and records the particle's position there, linearly
// interpolated between frames.
func Crossings(r *dynamo.Result, particle int, cross Axis, threshold float64) (*PoincareSection, error) {
	pos, err := r.PositionsOf(particle)
	if err != nil {
		return nil, err
	}

	section := &PoincareSection{Points: make([]Point, 0)}
	vals := Component(pos, cross)
	for i := 1; i < len(vals); i++ {
		prev, curr := vals[i-1], vals[i]
		if !(prev < threshold && curr >= threshold) {
			continue
		}
		frac := (threshold - prev) / (curr - prev)
		p := pos[i-1].Add(pos[i].Sub(pos[i-1]).Scale(frac))
		section.Points = append(section.Points, Point{X: p.X, Y: p.Y})
	}
	return section, nil
}

// PoincareSectionToASCII converts section data to ASCII plot
func PoincareSectionToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}

	portrait := &PhasePortrait2D{Points: section.Points}
	return PhasePortraitToASCII(portrait, width, height)
}
