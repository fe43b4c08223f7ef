package hydraulic

import "math"

const (
	ambientPressure = 14.7

	psiToPascal           = 6894.757
	cubicInchToCubicMeter = 1.6387064e-5
	cubicInchesPerGallon  = 231.0
	secondsPerMinute      = 60.0
	lbfInchToNewtonMeter  = 0.112984829

	// Flows below this are treated as no flow for heat transfer.
	heatTransferMinFlow = 0.01
)

func rpmToRadPerSec(rpm float64) float64 { return rpm * 2 * math.Pi / secondsPerMinute }

func radPerSecToRpm(w float64) float64 { return w * secondsPerMinute / (2 * math.Pi) }

// gallonsPerSecond is the flow of a positive displacement pump.
func gallonsPerSecond(rpm, displacement float64) float64 {
	return rpm * displacement / cubicInchesPerGallon / secondsPerMinute
}

// hydraulicTorque is the shaft torque in N.m produced by pressure (psi)
// acting on a displacement (in3 per revolution).
func hydraulicTorque(pressure, displacement float64) float64 {
	return pressure * psiToPascal * displacement * cubicInchToCubicMeter / (2 * math.Pi)
}
