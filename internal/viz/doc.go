// Package viz provides terminal plots and animations of particle scenes.
//
//   - [PositionVsTime], [VelocityVsTime], [EnergyVsTime], [Scatter] and
//     [FullPlot]: asciigraph and braille charts of recorded trajectories
//   - [LiveModel]: steps a scene once per tick and draws it
//   - [PlaybackModel]: replays per-particle series frame by frame
//   - [Canvas]: Braille-based pixel canvas with a world [Viewport]
//   - [Themes]: five color schemes, cycled with T or chosen with [SetTheme]
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to initial state
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[]    - Time travel (rewind/forward)
//
// # Recording
//
// Recordings made with the G key are saved as simulation.gif in the current
// directory.
package viz
