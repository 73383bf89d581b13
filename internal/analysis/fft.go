package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/massim/internal/dynamo"
)

type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	}
	return AxisX, fmt.Errorf("unknown axis: %s", s)
}

// Component extracts one coordinate of a vector series.
func Component(series []dynamo.Vec2, axis Axis) []float64 {
	out := make([]float64, len(series))
	for i, v := range series {
		if axis == AxisY {
			out[i] = v.Y
		} else {
			out[i] = v.X
		}
	}
	return out
}

// PowerSpectrum returns the magnitudes of the first half of the discrete
// Fourier transform of data. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	spectrum := fft.FFTReal(data)
	ps := make([]float64, len(spectrum)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}

	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-constant
// component of a series sampled every dt, together with its magnitude.
func DominantFrequency(data []float64, dt float64) (freq, power float64) {
	n := len(data)
	if n < 4 || dt <= 0 {
		return 0, 0
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	best := 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > power {
			best, power = k, ps[k]
		}
	}
	if best == 0 {
		return 0, 0
	}
	return float64(best) / (float64(n) * dt), power
}
