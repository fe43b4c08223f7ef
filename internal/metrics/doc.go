// Package metrics reduces a run's telemetry frames to scalar figures. Each
// metric watches one telemetry series by name.
package metrics
