// Package viz renders trajectories in the terminal.
//
//   - [PlotComponents]: asciigraph line chart of every species against time
//   - [Canvas]: Braille sub-pixel canvas used for phase portraits
//   - [Watch]: Bubble Tea replay of a stored run
//
// # Key Bindings (watch)
//
//	Space - Pause/Resume replay
//	←/→   - Step one row back/forward
//	Home  - Rewind to the first row
//	T     - Cycle color themes
//	Q     - Quit
package viz
