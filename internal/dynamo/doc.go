// Package dynamo provides the numerical primitives shared by the hydraulic
// solver and its outer layers.
//
// The package defines:
//
//   - [State]: vector representing continuous state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical integrator interface
//   - [Table]: piecewise-linear characteristic map
//   - [LowPassFilter] and [DelayedTrueGate]: first-order and latching signal shaping
//   - [Random]: seedable source for component variability
//   - [Ensemble]: concurrent runs over a range of seeds
//
// # Example
//
//	tbl := dynamo.MustTable(
//		[]float64{0, 500, 1000},
//		[]float64{2.4, 2.4, 0},
//	)
//	disp := tbl.Lookup(750) // 1.2
//
// # Thread Safety
//
// Filters, gates and Random are NOT thread-safe. A Table is read-only after
// construction and may be shared. [Ensemble] runs each seed on its own
// goroutine and expects the run function to build independent state.
package dynamo
