package dynamo

import "fmt"

// Result is the recorded trajectory of one simulation run, stored frame-major.
// It is immutable; every accessor returns copies.
type Result struct {
	times      []float64
	positions  [][]Vec2
	velocities [][]Vec2
	masses     []float64
	energies   []float64
}

// Data is the frame-major extraction of a Result.
type Data struct {
	Time       []float64 `json:"time"`
	Positions  [][]Vec2  `json:"positions"`
	Velocities [][]Vec2  `json:"velocities"`
	Masses     []float64 `json:"masses"`
	Energies   []float64 `json:"energies"`
}

// ParticleSeries is the trajectory of a single particle.
type ParticleSeries struct {
	Index      int     `json:"index"`
	Mass       float64 `json:"mass"`
	Positions  []Vec2  `json:"positions"`
	Velocities []Vec2  `json:"velocities"`
}

// NewResult rebuilds a result from frame-major series, e.g. when loading a
// stored run.
func NewResult(times []float64, positions, velocities [][]Vec2, masses, energies []float64) (*Result, error) {
	n := len(times)
	if len(positions) != n || len(velocities) != n || len(energies) != n {
		return nil, invalidArg("series lengths differ: times=%d positions=%d velocities=%d energies=%d",
			n, len(positions), len(velocities), len(energies))
	}
	for f := 0; f < n; f++ {
		if len(positions[f]) != len(masses) || len(velocities[f]) != len(masses) {
			return nil, invalidArg("frame %d has %d positions and %d velocities for %d particles",
				f, len(positions[f]), len(velocities[f]), len(masses))
		}
	}
	r := &Result{
		times:      append([]float64(nil), times...),
		positions:  cloneFrames(positions),
		velocities: cloneFrames(velocities),
		masses:     append([]float64(nil), masses...),
		energies:   append([]float64(nil), energies...),
	}
	return r, nil
}

func (r *Result) append(f Frame) {
	r.times = append(r.times, f.Time)
	r.positions = append(r.positions, f.Positions)
	r.velocities = append(r.velocities, f.Velocities)
	r.energies = append(r.energies, f.Energy)
}

// Len is the number of recorded frames.
func (r *Result) Len() int { return len(r.times) }

// Particles is the number of particles in each frame.
func (r *Result) Particles() int { return len(r.masses) }

func (r *Result) Times() []float64    { return append([]float64(nil), r.times...) }
func (r *Result) Energies() []float64 { return append([]float64(nil), r.energies...) }
func (r *Result) Masses() []float64   { return append([]float64(nil), r.masses...) }

func (r *Result) checkFrame(f int) error {
	if f < 0 || f >= len(r.times) {
		return fmt.Errorf("%w: frame %d of %d", ErrOutOfRange, f, len(r.times))
	}
	return nil
}

func (r *Result) checkParticle(i int) error {
	if i < 0 || i >= len(r.masses) {
		return fmt.Errorf("%w: particle %d of %d", ErrOutOfRange, i, len(r.masses))
	}
	return nil
}

// Frame returns frame f.
func (r *Result) Frame(f int) (Frame, error) {
	if err := r.checkFrame(f); err != nil {
		return Frame{}, err
	}
	return Frame{
		Time:       r.times[f],
		Positions:  append([]Vec2(nil), r.positions[f]...),
		Velocities: append([]Vec2(nil), r.velocities[f]...),
		Masses:     r.Masses(),
		Energy:     r.energies[f],
	}, nil
}

func (r *Result) PositionsAt(f int) ([]Vec2, error) {
	if err := r.checkFrame(f); err != nil {
		return nil, err
	}
	return append([]Vec2(nil), r.positions[f]...), nil
}

func (r *Result) VelocitiesAt(f int) ([]Vec2, error) {
	if err := r.checkFrame(f); err != nil {
		return nil, err
	}
	return append([]Vec2(nil), r.velocities[f]...), nil
}

// PositionsOf returns the position series of particle i.
func (r *Result) PositionsOf(i int) ([]Vec2, error) {
	if err := r.checkParticle(i); err != nil {
		return nil, err
	}
	return column(r.positions, i), nil
}

// VelocitiesOf returns the velocity series of particle i.
func (r *Result) VelocitiesOf(i int) ([]Vec2, error) {
	if err := r.checkParticle(i); err != nil {
		return nil, err
	}
	return column(r.velocities, i), nil
}

// InfoOf returns the full series of particle i.
func (r *Result) InfoOf(i int) (ParticleSeries, error) {
	if err := r.checkParticle(i); err != nil {
		return ParticleSeries{}, err
	}
	return ParticleSeries{
		Index:      i,
		Mass:       r.masses[i],
		Positions:  column(r.positions, i),
		Velocities: column(r.velocities, i),
	}, nil
}

// Extract returns a copy of the trajectory as named series.
func (r *Result) Extract() Data {
	return Data{
		Time:       r.Times(),
		Positions:  cloneFrames(r.positions),
		Velocities: cloneFrames(r.velocities),
		Masses:     r.Masses(),
		Energies:   r.Energies(),
	}
}

// SeparateByParticle reshapes frame-major data into one series per particle.
func SeparateByParticle(d Data) []ParticleSeries {
	out := make([]ParticleSeries, len(d.Masses))
	for i := range out {
		out[i] = ParticleSeries{
			Index:      i,
			Mass:       d.Masses[i],
			Positions:  column(d.Positions, i),
			Velocities: column(d.Velocities, i),
		}
	}
	return out
}

// JoinParticles is the inverse of SeparateByParticle: it rebuilds the
// frame-major position and velocity series and the mass list.
func JoinParticles(series []ParticleSeries) (positions, velocities [][]Vec2, masses []float64) {
	masses = make([]float64, len(series))
	frames := 0
	for i, s := range series {
		masses[i] = s.Mass
		if len(s.Positions) > frames {
			frames = len(s.Positions)
		}
	}
	positions = make([][]Vec2, frames)
	velocities = make([][]Vec2, frames)
	for f := 0; f < frames; f++ {
		positions[f] = make([]Vec2, len(series))
		velocities[f] = make([]Vec2, len(series))
		for i, s := range series {
			if f < len(s.Positions) {
				positions[f][i] = s.Positions[f]
			}
			if f < len(s.Velocities) {
				velocities[f][i] = s.Velocities[f]
			}
		}
	}
	return positions, velocities, masses
}

func column(frames [][]Vec2, i int) []Vec2 {
	out := make([]Vec2, len(frames))
	for f, row := range frames {
		out[f] = row[i]
	}
	return out
}

func cloneFrames(frames [][]Vec2) [][]Vec2 {
	out := make([][]Vec2, len(frames))
	for f, row := range frames {
		out[f] = append([]Vec2(nil), row...)
	}
	return out
}
