package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEventMetrics() {
	r.EventQuantityTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "echelon_event_quantity_total",
			Help: "Units moved per node, SKU and event",
		},
		[]string{"node", "sku", "event"},
	)

	r.ReleaseWaitPeriods = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "echelon_release_wait_periods",
			Help:    "Periods an order batch waited before release",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"node"},
	)

	r.UntimedReleasesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "echelon_untimed_releases_total",
			Help: "Released order batches with no recorded placement period",
		},
		[]string{"node"},
	)

	r.EventsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "echelon_events_total",
			Help: "Measurements received per node, event and metric",
		},
		[]string{"node", "event", "metric"},
	)
}

func (r *Registry) initNodeMetrics() {
	r.NodeOnHand = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "echelon_node_on_hand",
			Help: "Own-SKU stock on hand at the end of the period",
		},
		[]string{"node"},
	)

	r.NodeInTransit = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "echelon_node_in_transit",
			Help: "Units in the node's pipeline at the end of the period",
		},
		[]string{"node"},
	)

	r.NodeOutstandingOrders = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "echelon_node_outstanding_orders",
			Help: "Units ordered from the node and not yet released",
		},
		[]string{"node"},
	)

	r.NodeBackorders = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "echelon_node_backorders",
			Help: "Unfilled customer demand owed by the node",
		},
		[]string{"node"},
	)

	r.NodePosition = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "echelon_node_inventory_position",
			Help: "Inventory position in units of the node's own SKU",
		},
		[]string{"node"},
	)
}

func (r *Registry) initRunMetrics() {
	r.CurrentPeriod = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "echelon_current_period",
			Help: "Last completed simulation period",
		},
	)

	r.PeriodsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "echelon_periods_total",
			Help: "Simulation periods completed",
		},
	)
}
