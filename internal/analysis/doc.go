// Package analysis characterises recorded trajectories.
//
//   - [PowerSpectrum], [DominantFrequency]: oscillation content of a coordinate series
//   - [PhasePortrait]: position against velocity for one particle and axis
//   - [Crossings]: positions where a particle crosses a line
//   - [LyapunovExponent]: divergence rate of two nearby copies of a scene
//
// # Oscillation Frequency
//
// The frequency of a spring-mass oscillator can be read off its trajectory:
//
//	pos, _ := result.PositionsOf(1)
//	freq, _ := analysis.DominantFrequency(analysis.Component(pos, analysis.AxisX), dt)
package analysis
