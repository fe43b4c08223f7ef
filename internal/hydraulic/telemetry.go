package hydraulic

// Writer receives named telemetry values. Implementations must not call
// back into the components being written.
type Writer interface {
	WriteFloat(name string, value float64)
	WriteBool(name string, value bool)
}

// MapWriter collects telemetry in memory. Booleans are stored as 0 or 1.
type MapWriter map[string]float64

func (m MapWriter) WriteFloat(name string, value float64) { m[name] = value }

func (m MapWriter) WriteBool(name string, value bool) {
	if value {
		m[name] = 1
	} else {
		m[name] = 0
	}
}
