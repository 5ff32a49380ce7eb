package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/common/expfmt"

	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/supplychain"
)

// LogEvent records a supply chain measurement. Backorder quantities are
// levels and set a gauge; other quantities accumulate.
func (r *Registry) LogEvent(node, sku entities.NodeID, event, metric string, value int64) {
	r.EventsTotal.WithLabelValues(string(node), event, metric).Inc()

	switch {
	case metric == supplychain.MetricWaitTime && value < 0:
		r.UntimedReleasesTotal.WithLabelValues(string(node)).Inc()
	case metric == supplychain.MetricWaitTime:
		r.ReleaseWaitPeriods.WithLabelValues(string(node)).Observe(float64(value))
	case metric == supplychain.MetricQuantity && event == supplychain.EventBackorder:
		r.NodeBackorders.WithLabelValues(string(node)).Set(float64(value))
	case metric == supplychain.MetricQuantity && value >= 0:
		r.EventQuantityTotal.WithLabelValues(string(node), string(sku), event).Add(float64(value))
	}
}

// RecordNodeState sets the end-of-period gauges of one node
func (r *Registry) RecordNodeState(node entities.NodeID, onHand, inTransit, outstanding, backorders, position entities.Quantity) {
	id := string(node)
	r.NodeOnHand.WithLabelValues(id).Set(float64(onHand))
	r.NodeInTransit.WithLabelValues(id).Set(float64(inTransit))
	r.NodeOutstandingOrders.WithLabelValues(id).Set(float64(outstanding))
	r.NodeBackorders.WithLabelValues(id).Set(float64(backorders))
	r.NodePosition.WithLabelValues(id).Set(float64(position))
}

// RecordPeriod marks period as completed
func (r *Registry) RecordPeriod(period entities.Period) {
	r.CurrentPeriod.Set(float64(period))
	r.PeriodsTotal.Inc()
}

// WriteText writes every metric family in the Prometheus text exposition format
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", family.GetName(), err)
		}
	}
	return nil
}
