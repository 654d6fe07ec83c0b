package cubefield

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "cubefield"

// Metrics exposes per-tick counters on its own registry.
type Metrics struct {
	Registry *prometheus.Registry

	ticks         prometheus.Counter
	frameDelta    prometheus.Histogram
	instances     prometheus.Gauge
	pointerLocked prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ticks_total",
			Help:      "Completed update ticks.",
		}),
		frameDelta: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "frame_delta_seconds",
			Help:      "Time between consecutive ticks.",
			Buckets:   []float64{1.0 / 240, 1.0 / 144, 1.0 / 120, 1.0 / 60, 1.0 / 30, 1.0 / 15, 0.25, 1},
		}),
		instances: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "instances",
			Help:      "Cube instances drawn in the last tick.",
		}),
		pointerLocked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pointer_locked",
			Help:      "1 while the pointer is locked to the window.",
		}),
	}
	m.Registry.MustRegister(
		m.ticks, m.frameDelta, m.instances, m.pointerLocked,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) observe(frame *Frame, input *Input) {
	m.ticks.Inc()
	if frame.Tick > 1 {
		m.frameDelta.Observe(frame.Dt.Seconds())
	}
	m.instances.Set(float64(frame.InstanceCount()))
	if input.PointerLocked {
		m.pointerLocked.Set(1)
	} else {
		m.pointerLocked.Set(0)
	}
}

type MetricsModule struct {
	// Metrics may be supplied so the caller can serve its registry; a fresh
	// one is created otherwise.
	Metrics *Metrics
}

func (mod MetricsModule) Install(app *App, cmd *Commands) error {
	m := mod.Metrics
	if m == nil {
		m = NewMetrics()
	}
	cmd.AddResources(m)
	app.UseSystem(
		System(metricsSystem).
			InStage(PostRender),
	)
	return nil
}

func metricsSystem(m *Metrics, frame *Frame, input *Input) {
	m.observe(frame, input)
}
