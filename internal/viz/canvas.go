package viz

import (
	"math"
	"strings"

	"github.com/san-kum/massim/internal/dynamo"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// Set sets a pixel at (x, y) in sub-pixel coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	// Early bounds check for negative coordinates
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	subX := x % 2
	subY := y % 4

	c.Grid[row][col] |= rune(pixelMap[subY][subX])
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	subX := x % 2
	subY := y % 4

	mask := ^rune(pixelMap[subY][subX])
	c.Grid[row][col] &= mask
	if c.Grid[row][col] < 0x2800 {
		c.Grid[row][col] = 0x2800
	}
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Dot fills a square of radius r sub-pixels around (x, y).
func (c *Canvas) Dot(x, y, r int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			c.Set(x+dx, y+dy)
		}
	}
}

// SubWidth and SubHeight are the canvas size in sub-pixels.
func (c *Canvas) SubWidth() int  { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

// Viewport is the world-space rectangle mapped onto a canvas.
type Viewport struct {
	MinX, MinY, MaxX, MaxY float64
}

// FitViewport returns the bounding box of the finite points, padded by pad
// times its size and widened so that one world unit spans the same number of
// sub-pixels on both axes of c.
func FitViewport(points []dynamo.Vec2, pad float64, c *Canvas) Viewport {
	v := Viewport{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, p := range points {
		if !p.IsFinite() {
			continue
		}
		v.MinX, v.MaxX = min(v.MinX, p.X), max(v.MaxX, p.X)
		v.MinY, v.MaxY = min(v.MinY, p.Y), max(v.MaxY, p.Y)
	}
	if v.MinX > v.MaxX {
		return Viewport{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1}
	}

	w, h := v.MaxX-v.MinX, v.MaxY-v.MinY
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	cx, cy := (v.MinX+v.MaxX)/2, (v.MinY+v.MaxY)/2
	w, h = w*(1+2*pad), h*(1+2*pad)

	aspect := float64(c.SubWidth()) / float64(c.SubHeight())
	if w/h < aspect {
		w = h * aspect
	} else {
		h = w / aspect
	}
	return Viewport{MinX: cx - w/2, MinY: cy - h/2, MaxX: cx + w/2, MaxY: cy + h/2}
}

// Contains reports whether p lies inside the viewport.
func (v Viewport) Contains(p dynamo.Vec2) bool {
	return p.X >= v.MinX && p.X <= v.MaxX && p.Y >= v.MinY && p.Y <= v.MaxY
}

// Project maps a world point to canvas sub-pixels, with y growing downwards.
func (v Viewport) Project(p dynamo.Vec2, c *Canvas) (int, int) {
	x := (p.X - v.MinX) / (v.MaxX - v.MinX) * float64(c.SubWidth()-1)
	y := (v.MaxY - p.Y) / (v.MaxY - v.MinY) * float64(c.SubHeight()-1)
	return int(math.Round(x)), int(math.Round(y))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
