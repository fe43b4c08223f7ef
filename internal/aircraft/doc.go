// Package aircraft assembles an A320-like hydraulic testbed from the
// hydraulic package: three circuits, their pumps, the PTU between green
// and yellow, the RAT on blue, and the cockpit logic that commands them.
//
// The Aircraft type satisfies sim.Plant. One call to Step advances a frame
// and runs as many fixed hydraulic steps as fit in it.
package aircraft
