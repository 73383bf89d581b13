package export

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/viz"
)

// Palette colors particle paths in index order.
var Palette = []string{"#00ffff", "#ff00ff", "#ffff00", "#00ff88", "#ff8800", "#8888ff"}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	// Braille dot-to-bit mapping
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// bounds is the padded bounding box of the finite points.
type bounds struct{ minX, minY, rangeX, rangeY float64 }

func fit(series []dynamo.ParticleSeries) (bounds, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range series {
		for _, p := range s.Positions {
			if !p.IsFinite() {
				continue
			}
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	if minX > maxX {
		return bounds{}, false
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	// equal scale on both axes
	r := math.Max(rangeX, rangeY) * 1.2
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	return bounds{minX: cx - r/2, minY: cy - r/2, rangeX: r, rangeY: r}, true
}

func (b bounds) project(p dynamo.Vec2, width, height int) (float64, float64) {
	x := (p.X - b.minX) / b.rangeX * float64(width)
	y := float64(height) - (p.Y-b.minY)/b.rangeY*float64(height)
	return x, y
}

// TrajectoriesToSVG draws the path of every particle, the springs between
// their final positions, and their final positions. Anchors are drawn as
// squares. Non-finite points break a path.
func TrajectoriesToSVG(series []dynamo.ParticleSeries, links []viz.Link, width, height int) (string, error) {
	b, ok := fit(series)
	if !ok {
		return "", fmt.Errorf("export: no finite positions to draw")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, s := range series {
		if s.Mass == 0 || len(s.Positions) < 2 {
			continue
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" stroke-opacity="0.8" d="`, Palette[i%len(Palette)])
		move := true
		for _, p := range s.Positions {
			if !p.IsFinite() {
				move = true
				continue
			}
			x, y := b.project(p, width, height)
			if move {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
				move = false
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	last := func(s dynamo.ParticleSeries) (dynamo.Vec2, bool) {
		if len(s.Positions) == 0 {
			return dynamo.Vec2{}, false
		}
		p := s.Positions[len(s.Positions)-1]
		return p, p.IsFinite()
	}

	for _, l := range links {
		if l.A >= len(series) || l.B >= len(series) {
			continue
		}
		pa, okA := last(series[l.A])
		pb, okB := last(series[l.B])
		if !okA || !okB {
			continue
		}
		x0, y0 := b.project(pa, width, height)
		x1, y1 := b.project(pb, width, height)
		fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\" stroke=\"#666666\" stroke-width=\"1\"/>\n", x0, y0, x1, y1)
	}

	for i, s := range series {
		p, ok := last(s)
		if !ok {
			continue
		}
		x, y := b.project(p, width, height)
		if s.Mass == 0 {
			fmt.Fprintf(&sb, "<rect x=\"%.1f\" y=\"%.1f\" width=\"8\" height=\"8\" fill=\"none\" stroke=\"#b4b4b4\"/>\n", x-4, y-4)
			continue
		}
		r := 3 + 2*math.Cbrt(s.Mass)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", x, y, r, Palette[i%len(Palette)])
	}

	sb.WriteString("</svg>")
	return sb.String(), nil
}

// WriteFile writes an SVG document to path.
func WriteFile(path, svg string) error {
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}
