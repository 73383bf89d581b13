package export

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 2) != "" {
		t.Error("nil canvas should give empty output")
	}

	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(7, 7)
	svg := CanvasToSVG(c, 2)
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("got %d dots, want 2", n)
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("unterminated svg")
	}
}

func TestTrajectoriesToSVG(t *testing.T) {
	series := []dynamo.ParticleSeries{
		{Index: 0, Mass: 0, Positions: []dynamo.Vec2{dynamo.V(0, 0), dynamo.V(0, 0), dynamo.V(0, 0)}},
		{Index: 1, Mass: 1, Positions: []dynamo.Vec2{dynamo.V(1, 0), dynamo.V(math.NaN(), 0), dynamo.V(2, 1)}},
	}
	svg, err := TrajectoriesToSVG(series, []viz.Link{{A: 0, B: 1}}, 200, 100)
	if err != nil {
		t.Fatal(err)
	}

	for what, want := range map[string]int{"<path": 1, "<line": 1, "<rect x=": 1, "<circle": 1} {
		if got := strings.Count(svg, what); got != want {
			t.Errorf("count(%q) = %d, want %d", what, got, want)
		}
	}

	// the NaN sample restarts the path
	path := svg[strings.Index(svg, "<path"):]
	d := path[strings.Index(path, ` d="`)+4:]
	d = d[:strings.Index(d, `"`)]
	if strings.Count(d, "M") != 2 || strings.Contains(d, "L") {
		t.Errorf("path data = %q", d)
	}
}

func TestTrajectoriesToSVG_NoFinitePoints(t *testing.T) {
	series := []dynamo.ParticleSeries{{Mass: 1, Positions: []dynamo.Vec2{dynamo.V(math.Inf(1), 0)}}}
	if _, err := TrajectoriesToSVG(series, nil, 10, 10); err == nil {
		t.Error("expected error")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.svg")
	if err := WriteFile(path, "<svg/>"); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "<svg/>" {
		t.Errorf("got %q", b)
	}
}
