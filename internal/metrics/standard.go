package metrics

import (
	"fmt"
	"strings"

	"github.com/san-kum/hydrosim/internal/hydraulic"
	"github.com/san-kum/hydrosim/internal/sim"
)

const (
	// PressurisedPsi is the pressure a circuit counts as available at. It
	// matches the system section pressure switch.
	PressurisedPsi = 1750.
	nominalPsi     = 2500.
)

// SystemPressureSeries names the system section pressure of a circuit.
func SystemPressureSeries(color hydraulic.Color) string {
	return fmt.Sprintf("HYD_%s_SYSTEM_1_SECTION_PRESSURE", color)
}

func ReservoirLevelSeries(color hydraulic.Color) string {
	return fmt.Sprintf("HYD_%s_RESERVOIR_LEVEL", color)
}

// Standard is the metric set reported for every run.
func Standard(colors []hydraulic.Color) []sim.Metric {
	out := make([]sim.Metric, 0, 5*len(colors)+4)
	for _, c := range colors {
		prefix := strings.ToLower(string(c))
		pressure := SystemPressureSeries(c)
		out = append(out,
			NewTimeToThreshold(prefix+"_time_to_2500psi", pressure, nominalPsi),
			NewMax(prefix+"_max_pressure", pressure),
			NewMin(prefix+"_min_pressure", pressure),
			NewAvailability(prefix+"_availability", pressure, PressurisedPsi),
			NewDrift(prefix+"_reservoir_loss", ReservoirLevelSeries(c)),
		)
	}
	out = append(out,
		NewEdgeCount("ptu_barks", "HYD_PTU_BARK_STRENGTH"),
		NewMeanAbs("ptu_mean_rpm", "HYD_PTU_SHAFT_RPM"),
		NewDominantFrequency("ptu_cycle_hz", "HYD_PTU_SHAFT_RPM"),
		NewMax("rat_max_rpm", "RAT_RPM"),
	)
	return out
}
