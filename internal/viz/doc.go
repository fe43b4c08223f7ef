// Package viz renders the hydraulic testbed in the terminal and to image
// files.
//
// The live dashboard is a Bubble Tea program. It advances the scripted
// aircraft itself, one frame per tick, and shows:
//
//   - one panel per circuit with pressure and reservoir level
//   - an overlaid pressure chart drawn with asciigraph
//   - a braille [Canvas] schematic of the reservoirs and the PTU rotor
//
// Cockpit controls, engines and failures are driven from the keyboard,
// press ? in the dashboard for the key map.
//
// Recorded runs are plotted with [PlotSeries] and [PlotMany] as ASCII
// charts or saved as images with [SavePNG].
package viz
