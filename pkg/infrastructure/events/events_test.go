package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/supplychain"
)

var (
	_ supplychain.EventLogger = (*StoreLogger)(nil)
	_ supplychain.EventLogger = MultiLogger(nil)
	_ EventHandler            = (*Aggregator)(nil)
)

type failingHandler struct{}

func (failingHandler) CanHandle(string) bool { return true }
func (failingHandler) Handle(Event) error    { return errors.New("rejected") }

func TestInMemoryEventStore_StreamsAndVersions(t *testing.T) {
	store := NewInMemoryEventStore()

	require.NoError(t, store.AppendEvent("A", NewEvent("x", "A", 1)))
	require.NoError(t, store.AppendEvent("B", NewEvent("x", "B", 2)))
	require.NoError(t, store.AppendEvent("A", NewEvent("y", "A", 3)))

	events, err := store.ReadEvents("A", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].Version())
	assert.Equal(t, 2, events[1].Version())

	events, err = store.ReadEvents("A", 2)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "y", events[0].Type())

	all, err := store.ReadAllEvents(1)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 3, store.Len())
	assert.ElementsMatch(t, []string{"A", "B"}, store.Streams())

	assert.Error(t, store.AppendEvent("", NewEvent("x", "", nil)))
}

func TestInMemoryEventStore_SynchronousSubscribers(t *testing.T) {
	store := NewInMemoryEventStore()
	agg := NewAggregator()
	require.NoError(t, store.Subscribe([]string{AllEvents}, agg))

	logger := NewStoreLogger(store)
	logger.SetPeriod(4)
	logger.LogEvent("B", "A", supplychain.EventOrderRelease, supplychain.MetricQuantity, 7)
	logger.LogEvent("B", "A", supplychain.EventOrderRelease, supplychain.MetricWaitTime, 3)
	logger.LogEvent("B", "A", supplychain.EventOrderRelease, supplychain.MetricQuantity, 2)
	require.NoError(t, logger.Err())

	// no waiting: handlers ran inside AppendEvent
	assert.Equal(t, int64(9), agg.Sum("B", supplychain.EventOrderRelease, supplychain.MetricQuantity))
	assert.Equal(t, int64(2), agg.Count("B", supplychain.EventOrderRelease, supplychain.MetricQuantity))
	assert.Equal(t, int64(3), agg.Sum("B", supplychain.EventOrderRelease, supplychain.MetricWaitTime))

	events, err := store.ReadEvents("B", 1)
	require.NoError(t, err)
	require.Len(t, events, 3)
	m, ok := events[0].Data().(Measurement)
	require.True(t, ok)
	assert.Equal(t, Measurement{Period: 4, Node: "B", SKU: "A", Event: "order-release", Metric: "quantity", Value: 7}, m)
	assert.Equal(t, "order-release.quantity", events[0].Type())

	// untimed batches are counted apart from real waits
	logger.LogEvent("B", "A", supplychain.EventOrderRelease, supplychain.MetricWaitTime, -1)
	assert.Equal(t, int64(1), agg.Sum("B", supplychain.EventOrderRelease, UntimedWaitMetric))
	assert.Equal(t, int64(3), agg.Sum("B", supplychain.EventOrderRelease, supplychain.MetricWaitTime))

	require.NoError(t, store.Unsubscribe(agg))
	logger.LogEvent("B", "A", supplychain.EventOrderRelease, supplychain.MetricQuantity, 100)
	assert.Equal(t, int64(9), agg.Sum("B", supplychain.EventOrderRelease, supplychain.MetricQuantity))

	agg.Reset()
	assert.Zero(t, agg.Count("B", supplychain.EventOrderRelease, supplychain.MetricQuantity))
}

func TestInMemoryEventStore_HandlerErrors(t *testing.T) {
	store := NewInMemoryEventStore()
	require.NoError(t, store.Subscribe([]string{EventType("demand", "quantity")}, failingHandler{}))

	logger := NewStoreLogger(store)
	logger.LogEvent("A", "A", "demand", "quantity", 1)
	logger.LogEvent("A", "A", "sales", "quantity", 1)

	require.Error(t, logger.Err())
	assert.Contains(t, logger.Err().Error(), "rejected")
	assert.Equal(t, 2, store.Len(), "events are stored even when a handler fails")
}

func TestMultiLogger(t *testing.T) {
	var seen []entities.NodeID
	capture := supplychain.EventLoggerFunc(func(node, sku entities.NodeID, event, metric string, value int64) {
		seen = append(seen, node)
	})

	store := NewInMemoryEventStore()
	multi := MultiLogger{capture, NewStoreLogger(store), capture}
	multi.LogEvent("DC", "DC", "receipt", "quantity", 5)

	assert.Equal(t, []entities.NodeID{"DC", "DC"}, seen)
	assert.Equal(t, 1, store.Len())
}
