package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/hydrosim/internal/sim"
)

const namespace = "hydrosim"

// Registry mirrors every telemetry value of the latest frame into
// Prometheus gauges labelled by telemetry name.
type Registry struct {
	registry *prometheus.Registry
	values   *prometheus.GaugeVec
	frames   prometheus.Counter
	simTime  prometheus.Gauge
	clients  prometheus.Gauge
}

func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "telemetry_value",
			Help:      "Latest value of each simulator telemetry variable",
		}, []string{"name"}),

		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames simulated since start",
		}),

		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sim_time_seconds",
			Help:      "Simulated time of the latest frame",
		}),

		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "clients_connected",
			Help:      "Open websocket snapshot streams",
		}),
	}

	r.registry.MustRegister(r.values, r.frames, r.simTime, r.clients)
	return r
}

func (r *Registry) OnFrame(f sim.Frame) {
	for name, v := range f.Values {
		r.values.WithLabelValues(name).Set(v)
	}
	r.frames.Inc()
	r.simTime.Set(f.Time)
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (r *Registry) Prometheus() *prometheus.Registry { return r.registry }

var _ sim.Observer = (*Registry)(nil)
