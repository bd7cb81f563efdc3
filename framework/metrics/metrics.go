// Package metrics exposes container activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/errors"
)

// Collector holds the container metrics on its own registry.
type Collector struct {
	namespace string
	registry  *prometheus.Registry

	Resolutions        *prometheus.CounterVec
	ResolutionFailures *prometheus.CounterVec
}

// NewCollector creates a collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	resolutions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "container_resolutions_total",
			Help:      "Total number of resolved bindings, nested dependencies included",
		},
		[]string{"name"},
	)

	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "container_resolution_failures_total",
			Help:      "Total number of failed resolutions by requested name and error code",
		},
		[]string{"name", "code"},
	)

	registry.MustRegister(resolutions, failures)

	return &Collector{
		namespace:          namespace,
		registry:           registry,
		Resolutions:        resolutions,
		ResolutionFailures: failures,
	}
}

// Attach starts counting resolutions of c and exposes its binding count as
// a gauge. A collector can be attached to one container.
func (m *Collector) Attach(c *container.Container) {
	c.AfterResolving(func(name string, _ any) {
		m.Resolutions.WithLabelValues(name).Inc()
	})
	c.OnResolveError(func(name string, err error) {
		m.ResolutionFailures.WithLabelValues(name, string(errors.GetErrorCode(err))).Inc()
	})

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Name:      "container_bindings",
			Help:      "Number of registered bindings",
		},
		func() float64 { return float64(len(c.Bindings())) },
	))
}

// Registry returns the underlying registry.
func (m *Collector) Registry() *prometheus.Registry { return m.registry }

// Handler serves the collector's metrics in the Prometheus text format.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
