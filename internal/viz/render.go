package viz

import "github.com/san-kum/massim/internal/dynamo"

// Link is a drawn connection between two particles.
type Link struct{ A, B int }

// Links returns the spring connections of forces, in declaration order.
func Links(forces []dynamo.Force) []Link {
	var out []Link
	for _, f := range forces {
		switch s := f.(type) {
		case dynamo.Spring:
			out = append(out, Link{s.A, s.B})
		case *dynamo.Spring:
			out = append(out, Link{s.A, s.B})
		}
	}
	return out
}

// Sprite describes what to draw for one frame.
type Sprite struct {
	Positions []dynamo.Vec2
	Masses    []float64
	Links     []Link
	Trails    [][]dynamo.Vec2
}

// Draw renders s onto c through v. Anchors are drawn as hollow squares,
// moving particles as filled dots.
func Draw(c *Canvas, v Viewport, s Sprite) {
	c.Clear()
	for _, trail := range s.Trails {
		for _, p := range trail {
			if v.Contains(p) {
				x, y := v.Project(p, c)
				c.Set(x, y)
			}
		}
	}
	for _, l := range s.Links {
		if l.A >= len(s.Positions) || l.B >= len(s.Positions) {
			continue
		}
		drawSegment(c, v, s.Positions[l.A], s.Positions[l.B])
	}
	for i, p := range s.Positions {
		if !v.Contains(p) {
			continue
		}
		x, y := v.Project(p, c)
		if i < len(s.Masses) && s.Masses[i] == 0 {
			c.DrawLine(x-2, y-2, x+2, y-2)
			c.DrawLine(x+2, y-2, x+2, y+2)
			c.DrawLine(x+2, y+2, x-2, y+2)
			c.DrawLine(x-2, y+2, x-2, y-2)
			continue
		}
		c.Dot(x, y, 1)
	}
}

// drawSegment draws a line between two world points, skipping segments with
// an endpoint far outside the viewport.
func drawSegment(c *Canvas, v Viewport, a, b dynamo.Vec2) {
	if !a.IsFinite() || !b.IsFinite() {
		return
	}
	grown := v.grow(1)
	if !grown.Contains(a) || !grown.Contains(b) {
		return
	}
	x0, y0 := v.Project(a, c)
	x1, y1 := v.Project(b, c)
	c.DrawLine(x0, y0, x1, y1)
}

// grow widens v by f times its size on every side.
func (v Viewport) grow(f float64) Viewport {
	dx, dy := (v.MaxX-v.MinX)*f, (v.MaxY-v.MinY)*f
	return Viewport{MinX: v.MinX - dx, MinY: v.MinY - dy, MaxX: v.MaxX + dx, MaxY: v.MaxY + dy}
}

// appendTrail appends p to trail, keeping at most n points.
func appendTrail(trail []dynamo.Vec2, p dynamo.Vec2, n int) []dynamo.Vec2 {
	trail = append(trail, p)
	if len(trail) > n {
		trail = trail[len(trail)-n:]
	}
	return trail
}
