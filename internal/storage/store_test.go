package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/metrics"
)

func simulated(t *testing.T) *dynamo.Result {
	t.Helper()
	s := dynamo.NewScene(dynamo.WithGravity(dynamo.V(0, -9.81)))
	anchor := s.Mass().Mass(0).At(dynamo.V(0, 5))
	bob := s.Mass().Mass(2).At(dynamo.V(1.5, 2)).Vel(dynamo.V(0.3, 0))
	require.NoError(t, s.AddForce(dynamo.NewSpring(anchor.Index(), bob.Index(), dynamo.WithStiffness(20))))

	r, err := s.Simulate(30, 10, 1.0/60)
	require.NoError(t, err)
	return r
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	require.NoError(t, st.Init())

	result := simulated(t)
	runID, err := st.Save(RunMetadata{
		Scene:      "pendulum",
		Dt:         1.0 / 60,
		Substeps:   10,
		Steps:      30,
		Integrator: "symplectic",
		Names:      []string{"anchor", "bob"},
		Metrics:    map[string]float64{"energy_drift": 1.5},
	}, result)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "pendulum_"), runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, "pendulum", meta.Scene)
	assert.Equal(t, 10, meta.Substeps)
	assert.Equal(t, []float64{0, 2}, meta.Masses)
	assert.Equal(t, 1.5, meta.Metrics["energy_drift"])
	assert.False(t, meta.Timestamp.IsZero())

	loaded, err := st.LoadResult(runID)
	require.NoError(t, err)
	want, got := result.Extract(), loaded.Extract()
	assert.Equal(t, want.Time, got.Time)
	assert.Equal(t, want.Positions, got.Positions, "stored trajectory is lossless")
	assert.Equal(t, want.Velocities, got.Velocities)
	assert.Equal(t, want.Masses, got.Masses)
	assert.InDeltaSlice(t, want.Energies, got.Energies, 1e-9)
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	result := simulated(t)
	first, err := st.Save(RunMetadata{Scene: "a"}, result)
	require.NoError(t, err)
	second, err := st.Save(RunMetadata{Scene: "orbit/rk4"}, result)
	require.NoError(t, err)
	assert.NotContains(t, second, "/")

	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "not-a-run"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
	assert.Equal(t, second, runs[1].ID)
}

func TestStoreList_MissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	require.NoError(t, st.Init())

	runID, err := st.Save(RunMetadata{Scene: "test"}, simulated(t))
	require.NoError(t, err)

	for _, name := range []string{metadataFile, trajectoryFile, energyFile} {
		_, err := os.Stat(filepath.Join(tmpDir, runID, name))
		assert.NoError(t, err, "%s not created", name)
	}

	energy, err := os.ReadFile(filepath.Join(tmpDir, runID, energyFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(energy)), "\n")
	assert.Equal(t, "# time energy", lines[0])
	assert.Len(t, lines, 32)
}

func TestLoadResult_Corrupt(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	require.NoError(t, st.Init())

	runID, err := st.Save(RunMetadata{Scene: "test"}, simulated(t))
	require.NoError(t, err)

	energyPath := filepath.Join(tmpDir, runID, energyFile)
	require.NoError(t, os.WriteFile(energyPath, []byte("# time energy\n0 1\n"), 0644))

	_, err = st.LoadResult(runID)
	assert.True(t, errors.Is(err, ErrCorruptRun), "got %v", err)

	_, err = st.LoadResult("missing")
	assert.Error(t, err)
}

func TestCSVRoundTrip(t *testing.T) {
	result := simulated(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, result))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "time,particle,x,y,vx,vy", lines[0])
	assert.Len(t, lines, 1+result.Len()*result.Particles())

	times, positions, velocities, err := ReadCSV(&buf, result.Particles())
	require.NoError(t, err)
	d := result.Extract()
	assert.Equal(t, d.Time, times)
	assert.Equal(t, d.Positions, positions)
	assert.Equal(t, d.Velocities, velocities)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		particles int
	}{
		{"empty", "", 1},
		{"ragged particle count", "time,particle,x,y,vx,vy\n0,0,1,1,0,0\n", 2},
		{"bad number", "time,particle,x,y,vx,vy\n0,0,one,1,0,0\n", 1},
		{"wrong particle order", "time,particle,x,y,vx,vy\n0,1,1,1,0,0\n0,0,1,1,0,0\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := ReadCSV(strings.NewReader(tt.input), tt.particles)
			assert.True(t, errors.Is(err, ErrCorruptRun), "got %v", err)
		})
	}
}

func TestExportJSON(t *testing.T) {
	result := simulated(t)
	path := filepath.Join(t.TempDir(), "run.json")

	require.NoError(t, ExportJSON(path, RunMetadata{Scene: "pendulum", Integrator: "symplectic"}, result))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got ExportData
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "pendulum", got.Scene)
	assert.Equal(t, result.Extract(), got.Data)
	require.Len(t, got.Particles, 2)
	assert.Equal(t, 2.0, got.Particles[1].Mass)
	assert.Len(t, got.Particles[1].Positions, result.Len())
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	require.NoError(t, ExportCSV(path, simulated(t)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	times, _, _, err := ReadCSV(f, 2)
	require.NoError(t, err)
	assert.Len(t, times, 31)
}

// blownUp integrates a stiff spring with one coarse substep until the state
// overflows to infinities and NaN.
func blownUp(t *testing.T) (*dynamo.Result, map[string]float64) {
	t.Helper()
	s := dynamo.NewScene()
	a := s.Mass().At(dynamo.V(0, 0))
	b := s.Mass().At(dynamo.V(1.5, 0))
	require.NoError(t, s.AddForce(dynamo.NewSpring(a.Index(), b.Index(),
		dynamo.WithStiffness(1e6), dynamo.WithRestLength(1))))

	r, err := s.Simulate(200, 1, 0.1)
	require.NoError(t, err)

	finite := true
	for _, frame := range r.Extract().Positions {
		for _, p := range frame {
			finite = finite && p.IsFinite()
		}
	}
	require.False(t, finite, "scene did not blow up")
	return r, metrics.Evaluate(r, metrics.Defaults()...)
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func assertSameFloats(t *testing.T, want, got []float64, what string) {
	t.Helper()
	require.Len(t, got, len(want), what)
	for i := range want {
		assert.True(t, sameFloat(want[i], got[i]), "%s[%d]: want %v, got %v", what, i, want[i], got[i])
	}
}

func assertSameFrames(t *testing.T, want, got [][]dynamo.Vec2, what string) {
	t.Helper()
	require.Len(t, got, len(want), what)
	for f := range want {
		require.Len(t, got[f], len(want[f]), what)
		for i := range want[f] {
			w, g := want[f][i], got[f][i]
			assert.True(t, sameFloat(w.X, g.X) && sameFloat(w.Y, g.Y),
				"%s[%d][%d]: want %v, got %v", what, f, i, w, g)
		}
	}
}

func TestStoreSaveLoad_NonFinite(t *testing.T) {
	result, m := blownUp(t)
	require.True(t, math.IsInf(m["energy_drift"], 1), "drift %v", m["energy_drift"])
	require.Less(t, m["stability"], 1.0)

	tmpDir := t.TempDir()
	st := New(tmpDir)
	require.NoError(t, st.Init())

	runID, err := st.Save(RunMetadata{Scene: "stiff", Dt: 0.1, Substeps: 1, Steps: 200, Metrics: m}, result)
	require.NoError(t, err)

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	require.Len(t, meta.Metrics, len(m))
	for name, v := range m {
		assert.True(t, sameFloat(v, meta.Metrics[name]), "%s: want %v, got %v", name, v, meta.Metrics[name])
	}

	loaded, err := st.LoadResult(runID)
	require.NoError(t, err)
	want, got := result.Extract(), loaded.Extract()
	assertSameFloats(t, want.Time, got.Time, "time")
	assertSameFrames(t, want.Positions, got.Positions, "positions")
	assertSameFrames(t, want.Velocities, got.Velocities, "velocities")
	assertSameFloats(t, want.Energies, got.Energies, "energies")
}

func TestExportJSON_NonFinite(t *testing.T) {
	result, m := blownUp(t)

	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, RunMetadata{Scene: "stiff", Metrics: m}, result))
	assert.Contains(t, buf.String(), `"+Inf"`)
	assert.Contains(t, buf.String(), `"NaN"`)

	var got ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	want := result.Extract()
	assertSameFrames(t, want.Positions, got.Data.Positions, "positions")
	assertSameFrames(t, want.Velocities, got.Data.Velocities, "velocities")
	assertSameFloats(t, want.Energies, got.Data.Energies, "energies")
	assert.True(t, math.IsInf(got.Metrics["energy_drift"], 1))
	require.Len(t, got.Particles, 2)
	for i, series := range dynamo.SeparateByParticle(want) {
		assertSameFrames(t, [][]dynamo.Vec2{series.Positions}, [][]dynamo.Vec2{got.Particles[i].Positions}, "particle positions")
	}
}

func TestJSONFloat(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{1.5, "1.5"},
		{math.NaN(), `"NaN"`},
		{math.Inf(1), `"+Inf"`},
		{math.Inf(-1), `"-Inf"`},
	}
	for _, tt := range tests {
		raw, err := json.Marshal(jsonFloat(tt.v))
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(raw))

		var back jsonFloat
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.True(t, sameFloat(tt.v, float64(back)), "%v came back as %v", tt.v, back)
	}

	var f jsonFloat
	err := json.Unmarshal([]byte(`"many"`), &f)
	assert.True(t, errors.Is(err, ErrCorruptRun), "got %v", err)
}

func TestStoreSave_FailureLeavesNothing(t *testing.T) {
	fixed := time.Unix(1700000000, 0)
	now = func() time.Time { return fixed }
	defer func() { now = time.Now }()

	tmpDir := t.TempDir()
	st := New(tmpDir)
	require.NoError(t, st.Init())

	taken := filepath.Join(tmpDir, fmt.Sprintf("test_%d", fixed.UnixNano()))
	require.NoError(t, os.MkdirAll(taken, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(taken, "keep"), []byte("x"), 0644))

	_, err := st.Save(RunMetadata{Scene: "test"}, simulated(t))
	require.Error(t, err)

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary run directory left behind")
	assert.Equal(t, filepath.Base(taken), entries[0].Name())

	left, err := os.ReadDir(taken)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "keep", left[0].Name())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreList_SkipsHidden(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	runID, err := st.Save(RunMetadata{Scene: "test"}, simulated(t))
	require.NoError(t, err)

	// a copy of a complete run under a hidden name, as an interrupted save
	// would leave it
	src := filepath.Join(tmpDir, runID)
	hidden := filepath.Join(tmpDir, "."+runID+"-123")
	require.NoError(t, os.MkdirAll(hidden, 0755))
	raw, err := os.ReadFile(filepath.Join(src, metadataFile))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(hidden, metadataFile), raw, 0644))

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
}
