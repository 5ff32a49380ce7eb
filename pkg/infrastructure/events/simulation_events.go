package events

import (
	"fmt"
	"sync"

	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/supplychain"
)

// Measurement is one value reported by the supply chain during a period
type Measurement struct {
	Period entities.Period `json:"period"`
	Node   entities.NodeID `json:"node"`
	SKU    entities.NodeID `json:"sku"`
	Event  string          `json:"event"`
	Metric string          `json:"metric"`
	Value  int64           `json:"value"`
}

// EventType returns the store event type for an event and metric pair
func EventType(event, metric string) string {
	return event + "." + metric
}

// Type returns the store event type of the measurement
func (m Measurement) Type() string {
	return EventType(m.Event, m.Metric)
}

// StoreLogger records measurements as events in a store, one stream per
// node. The simulator moves it forward with SetPeriod.
type StoreLogger struct {
	store  EventStore
	period entities.Period
	err    error
	mu     sync.Mutex
}

// NewStoreLogger creates a logger appending to store
func NewStoreLogger(store EventStore) *StoreLogger {
	return &StoreLogger{store: store}
}

// SetPeriod sets the period stamped on subsequent measurements
func (l *StoreLogger) SetPeriod(period entities.Period) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.period = period
}

// LogEvent appends a measurement. The first append error is kept for Err.
func (l *StoreLogger) LogEvent(node, sku entities.NodeID, event, metric string, value int64) {
	l.mu.Lock()
	m := Measurement{Period: l.period, Node: node, SKU: sku, Event: event, Metric: metric, Value: value}
	l.mu.Unlock()

	if err := l.store.AppendEvent(string(node), NewEvent(m.Type(), string(node), m)); err != nil {
		l.mu.Lock()
		if l.err == nil {
			l.err = err
		}
		l.mu.Unlock()
	}
}

// Err returns the first error raised while appending
func (l *StoreLogger) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// MultiLogger fans each measurement out to several loggers
type MultiLogger []supplychain.EventLogger

func (m MultiLogger) LogEvent(node, sku entities.NodeID, event, metric string, value int64) {
	for _, l := range m {
		l.LogEvent(node, sku, event, metric, value)
	}
}

type totalKey struct {
	node   entities.NodeID
	event  string
	metric string
}

type total struct {
	sum   int64
	count int64
}

// UntimedWaitMetric counts released batches that had no placement period.
// The aggregator files negative wait times under it instead of summing them.
const UntimedWaitMetric = "wait-time-untimed"

// Aggregator is an EventHandler summing measurement values per node, event
// and metric
type Aggregator struct {
	totals map[totalKey]total
	mu     sync.RWMutex
}

func NewAggregator() *Aggregator {
	return &Aggregator{totals: make(map[totalKey]total)}
}

func (a *Aggregator) CanHandle(eventType string) bool {
	return true
}

func (a *Aggregator) Handle(event Event) error {
	m, ok := event.Data().(Measurement)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Data())
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := totalKey{node: m.Node, event: m.Event, metric: m.Metric}
	value := m.Value
	if m.Metric == supplychain.MetricWaitTime && value < 0 {
		key.metric = UntimedWaitMetric
		value = 1
	}

	t := a.totals[key]
	t.sum += value
	t.count++
	a.totals[key] = t
	return nil
}

// Sum returns the sum of values recorded for node, event and metric
func (a *Aggregator) Sum(node entities.NodeID, event, metric string) int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.totals[totalKey{node: node, event: event, metric: metric}].sum
}

// Count returns the number of values recorded for node, event and metric
func (a *Aggregator) Count(node entities.NodeID, event, metric string) int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.totals[totalKey{node: node, event: event, metric: metric}].count
}

// Reset drops all totals
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totals = make(map[totalKey]total)
}
