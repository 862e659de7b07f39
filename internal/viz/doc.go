// Package viz previews documents in the terminal.
//
// A [Frame] is a read-only snapshot of a document at one frame: evaluated
// star positions and colors, camera paths and the scene camera pose. [Render]
// projects a frame onto a braille [Canvas] through a [View], either the scene
// camera or a free [Orbit].
//
// # Key Bindings
//
//	Space - Play/Pause
//	←/→   - Previous/next frame
//	[/]   - Jump 10 frames
//	h/l   - Orbit left/right
//	j/k   - Orbit down/up
//	+/-   - Zoom
//	C     - Toggle scene camera
//	T     - Cycle color themes
package viz
