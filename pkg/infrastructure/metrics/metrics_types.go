package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the metrics of one simulation run
type Registry struct {
	// Event metrics
	EventQuantityTotal   *prometheus.CounterVec
	ReleaseWaitPeriods   *prometheus.HistogramVec
	UntimedReleasesTotal *prometheus.CounterVec
	EventsTotal          *prometheus.CounterVec

	// Node state metrics
	NodeOnHand            *prometheus.GaugeVec
	NodeInTransit         *prometheus.GaugeVec
	NodeOutstandingOrders *prometheus.GaugeVec
	NodeBackorders        *prometheus.GaugeVec
	NodePosition          *prometheus.GaugeVec

	// Run metrics
	CurrentPeriod prometheus.Gauge
	PeriodsTotal  prometheus.Counter

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all metrics initialized. Each
// registry is independent, so concurrent runs never share series.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initEventMetrics()
	r.initNodeMetrics()
	r.initRunMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
