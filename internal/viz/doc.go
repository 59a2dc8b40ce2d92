// Package viz renders runs in the terminal.
//
// [Model] is a Bubble Tea program that drives a streaming run and shows
// the separation as it grows, a trend chart and, for tracked runs, the two
// trajectories on a Braille [Canvas].
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+/-   - More or fewer cycles per frame
//	?     - Show help overlay
//	Q     - Quit
package viz
