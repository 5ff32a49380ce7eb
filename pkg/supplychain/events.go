package supplychain

import "github.com/vsinha/echelon/pkg/domain/entities"

// Event names emitted to the EventLogger
const (
	EventOrderCreate  = "order-create"
	EventOrderRelease = "order-release"
	EventReceipt      = "receipt"
	EventAssembly     = "assembly"
	EventDemand       = "demand"
	EventSales        = "sales"
	EventBackorder    = "backorder"
)

// Metric names emitted to the EventLogger
const (
	MetricQuantity = "quantity"
	MetricWaitTime = "wait-time"
)

// EventLogger receives one measurement per call. For release events node is
// the releasing node and sku the requesting node.
type EventLogger interface {
	LogEvent(node, sku entities.NodeID, event, metric string, value int64)
}

// EventLoggerFunc adapts a function to EventLogger
type EventLoggerFunc func(node, sku entities.NodeID, event, metric string, value int64)

// LogEvent calls f
func (f EventLoggerFunc) LogEvent(node, sku entities.NodeID, event, metric string, value int64) {
	f(node, sku, event, metric, value)
}

type nopEventLogger struct{}

func (nopEventLogger) LogEvent(entities.NodeID, entities.NodeID, string, string, int64) {}
