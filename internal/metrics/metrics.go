// Package metrics exposes lifecycle and launcher activity as Prometheus
// metrics on a private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/awsl-project/hostlink/internal/launcher"
	"github.com/awsl-project/hostlink/internal/lifecycle"
)

const namespace = "hostlink"

// Collector holds the host metrics.
type Collector struct {
	registry      *prometheus.Registry
	transitions   *prometheus.CounterVec
	failures      *prometheus.CounterVec
	live          prometheus.Gauge
	generation    prometheus.Gauge
	presentations *prometheus.CounterVec
}

// New creates a collector with Go runtime and process collectors registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_transitions_total",
			Help:      "Service slot transitions by kind.",
		}, []string{"transition"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_transition_errors_total",
			Help:      "Transitions whose Initialize or Dispose returned an error.",
		}, []string{"transition"}),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_live",
			Help:      "1 while the slot holds a service, 0 otherwise.",
		}),
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_generation",
			Help:      "Generation of the most recently created or disposed service.",
		}),
		presentations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "surface_presentations_total",
			Help:      "Window presentations by kind (show, open).",
		}, []string{"kind"}),
	}

	c.registry.MustRegister(
		c.transitions,
		c.failures,
		c.live,
		c.generation,
		c.presentations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveTransition implements lifecycle.Observer.
func (c *Collector) ObserveTransition(t lifecycle.Transition) {
	kind := string(t.Kind)
	c.transitions.WithLabelValues(kind).Inc()
	if t.Err != nil {
		c.failures.WithLabelValues(kind).Inc()
	}
	if t.To == lifecycle.Active {
		c.live.Set(1)
	} else {
		c.live.Set(0)
	}
	c.generation.Set(float64(t.Generation))
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// InstrumentSurface counts presentations made through s.
func (c *Collector) InstrumentSurface(s launcher.Surface) launcher.Surface {
	return &surface{next: s, presentations: c.presentations}
}

type surface struct {
	next          launcher.Surface
	presentations *prometheus.CounterVec
}

func (s *surface) Show() {
	s.presentations.WithLabelValues("show").Inc()
	s.next.Show()
}

func (s *surface) Open() {
	s.presentations.WithLabelValues("open").Inc()
	s.next.Open()
}
