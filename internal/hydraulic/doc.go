// Package hydraulic is a fixed-step fluid-power network solver for aircraft
// hydraulic circuits.
//
// A [Circuit] is a chain of pressurised [Section]s: one pump section per
// main pump, joined by check valves to a system section and optionally an
// auxiliary section. Each step runs a single ordered pass over the network
// instead of solving for pressure simultaneously:
//
//  1. fluid heat and reservoir update
//  2. fire shutoff, leak measurement and auxiliary routing valves
//  3. section flow accounting (leaks, accumulator, PTU, actuators)
//  4. target volume and maximum pump capacity per section
//  5. check valve forecasts and rationing
//  6. pump regulation to the remaining need
//  7. pressure from volume via the fluid bulk modulus
//
// Pressure is derived from fluid volume using a linear compressibility law:
//
//	P = 14.7 + (V - Vmax) / Vmax * B
//
// # Units
//
// Pressures are psi, volumes US gallons, flows gallons per second, pump
// displacement cubic inches per revolution, shaft speeds rpm and time
// seconds. SI conversions only happen inside torque computations.
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. A circuit and the
// components wired to it belong to one goroutine. Run independent aircraft
// instances for parallel work.
package hydraulic
