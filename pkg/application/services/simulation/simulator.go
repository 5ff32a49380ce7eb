package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/echelon/pkg/application/dto"
	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/domain/repositories"
	"github.com/vsinha/echelon/pkg/infrastructure/events"
	"github.com/vsinha/echelon/pkg/infrastructure/logging"
	"github.com/vsinha/echelon/pkg/infrastructure/metrics"
	"github.com/vsinha/echelon/pkg/supplychain"
)

// Simulator advances a supply chain period by period, driving it with
// ordering policies and customer demand
type Simulator struct {
	chain    *supplychain.SupplyChain
	policies map[entities.NodeID]OrderingPolicy
	demand   map[entities.NodeID]DemandProfile

	logger    logging.Logger
	metrics   *metrics.Registry
	snapshots repositories.SnapshotRepository

	store      *events.InMemoryEventStore
	recorder   *events.StoreLogger
	aggregator *events.Aggregator

	runID    string
	scenario string
	start    entities.Period
	next     entities.Period

	states    []dto.NodeState
	shipments []supplychain.Shipment
}

// Option configures a Simulator
type Option func(*Simulator)

// WithLogger sets the structured logger
func WithLogger(logger logging.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records measurements and node states into registry
func WithMetrics(registry *metrics.Registry) Option {
	return func(s *Simulator) { s.metrics = registry }
}

// WithSnapshots saves the chain state after every period
func WithSnapshots(repo repositories.SnapshotRepository) Option {
	return func(s *Simulator) { s.snapshots = repo }
}

// WithEventStore records measurements into store instead of a private one
func WithEventStore(store *events.InMemoryEventStore) Option {
	return func(s *Simulator) { s.store = store }
}

// WithRunID sets the run id; a random UUID is used otherwise
func WithRunID(id string) Option {
	return func(s *Simulator) {
		if id != "" {
			s.runID = id
		}
	}
}

// WithScenarioName labels the result
func WithScenarioName(name string) Option {
	return func(s *Simulator) { s.scenario = name }
}

// WithStartPeriod sets the first period simulated
func WithStartPeriod(period entities.Period) Option {
	return func(s *Simulator) { s.start = period }
}

// WithPolicy sets the ordering policy of node
func WithPolicy(node entities.NodeID, policy OrderingPolicy) Option {
	return func(s *Simulator) { s.policies[node] = policy }
}

// WithDemand sets the customer demand profile of node
func WithDemand(node entities.NodeID, profile DemandProfile) Option {
	return func(s *Simulator) { s.demand[node] = profile }
}

// New creates a simulator over chain and installs its measurement
// recorders next to the chain's current event logger
func New(chain *supplychain.SupplyChain, opts ...Option) (*Simulator, error) {
	if chain == nil {
		return nil, errors.New("supply chain cannot be nil")
	}

	s := &Simulator{
		chain:    chain,
		policies: make(map[entities.NodeID]OrderingPolicy),
		demand:   make(map[entities.NodeID]DemandProfile),
		logger:   logging.NewNopLogger(),
		runID:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for id := range s.policies {
		if !chain.NodeExists(id) {
			return nil, fmt.Errorf("%w: policy for %s", supplychain.ErrUnknownNode, id)
		}
	}
	for id := range s.demand {
		if !chain.NodeExists(id) {
			return nil, fmt.Errorf("%w: demand for %s", supplychain.ErrUnknownNode, id)
		}
	}

	if s.store == nil {
		s.store = events.NewInMemoryEventStore()
	}
	s.aggregator = events.NewAggregator()
	if err := s.store.Subscribe([]string{events.AllEvents}, s.aggregator); err != nil {
		return nil, fmt.Errorf("failed to subscribe aggregator: %w", err)
	}
	s.recorder = events.NewStoreLogger(s.store)

	loggers := events.MultiLogger{chain.EventLogger(), s.recorder}
	if s.metrics != nil {
		loggers = append(loggers, s.metrics)
	}
	chain.SetEventLogger(loggers)

	s.next = s.start
	s.logger = s.logger.With(logging.RunID(s.runID), logging.Component("simulator"))
	return s, nil
}

// Chain returns the simulated supply chain
func (s *Simulator) Chain() *supplychain.SupplyChain {
	return s.chain
}

// RunID returns the id stamped on results and snapshots
func (s *Simulator) RunID() string {
	return s.runID
}

// NextPeriod returns the period the next Step simulates
func (s *Simulator) NextPeriod() entities.Period {
	return s.next
}

// EventStore returns the store holding every measurement of the run
func (s *Simulator) EventStore() *events.InMemoryEventStore {
	return s.store
}

func (s *Simulator) policyFor(id entities.NodeID) OrderingPolicy {
	if policy, ok := s.policies[id]; ok && policy != nil {
		return policy
	}
	return NoOrderPolicy{}
}

// Step simulates one period:
//  1. every node receives arrived shipments and assembles what it can
//  2. by ascending low-level code, each node serves customer demand,
//     releases stock against outstanding orders, then places new orders
//  3. node states are recorded and the chain is snapshotted
func (s *Simulator) Step() error {
	period := s.next
	s.recorder.SetPeriod(period)
	nodes := s.chain.Nodes()

	// Step 1: receipts and assembly
	for _, node := range nodes {
		if _, err := s.chain.ReceiveShipments(node, period); err != nil {
			return fmt.Errorf("period %d: %w", period, err)
		}
		if _, err := s.chain.Assemble(node, period); err != nil {
			return fmt.Errorf("period %d: %w", period, err)
		}
	}

	// Step 2: demand, releases and orders, customer-facing nodes first
	demand := make(map[entities.NodeID]entities.Quantity)
	sales := make(map[entities.NodeID]entities.Quantity)

	for llc := 0; llc <= s.chain.MaxLLC(); llc++ {
		for node := range s.chain.NodesByLLC(llc) {
			if profile, ok := s.demand[node.ID]; ok {
				d := profile.Demand(period)
				shipped, err := s.chain.FulfillDemand(node, d, period)
				if err != nil {
					return fmt.Errorf("period %d: %w", period, err)
				}
				demand[node.ID] = d
				sales[node.ID] = shipped
			}

			shipments, err := s.chain.ReleaseAll(node, period)
			if err != nil {
				return fmt.Errorf("period %d: %w", period, err)
			}
			s.shipments = append(s.shipments, shipments...)

			orders, err := s.policyFor(node.ID).Orders(s.chain, node, period)
			if err != nil {
				return fmt.Errorf("period %d: policy of %s: %w", period, node.ID, err)
			}
			if err := s.chain.CreateOrders(node, orders, period); err != nil {
				return fmt.Errorf("period %d: %w", period, err)
			}
		}
	}

	if err := s.recorder.Err(); err != nil {
		return fmt.Errorf("period %d: failed to record measurements: %w", period, err)
	}

	// Step 3: record states
	for _, node := range nodes {
		state := s.nodeState(node, period, demand[node.ID], sales[node.ID])
		s.states = append(s.states, state)

		if s.metrics != nil {
			s.metrics.RecordNodeState(node.ID, state.OnHand, state.InTransit, state.Outstanding, state.Backorders, state.Position)
		}
		s.logger.Debug("node state",
			logging.Period(int(period)),
			logging.Node(string(node.ID)),
			logging.Int64("on_hand", int64(state.OnHand)),
			logging.Int64("in_transit", int64(state.InTransit)),
			logging.Int64("outstanding", int64(state.Outstanding)),
			logging.Int64("backorders", int64(state.Backorders)),
			logging.Int64("position", int64(state.Position)),
		)
	}
	if s.metrics != nil {
		s.metrics.RecordPeriod(period)
	}

	if s.snapshots != nil {
		if err := s.saveSnapshot(period); err != nil {
			return err
		}
	}

	s.next++
	return nil
}

func (s *Simulator) nodeState(node *entities.Node, period entities.Period, demand, sales entities.Quantity) dto.NodeState {
	stock := entities.InventoryOf(node.Stock)

	var components entities.Quantity
	for _, edge := range node.Predecessors {
		components += stock.Get(edge.Source())
	}

	return dto.NodeState{
		Period:      period,
		Node:        node.ID,
		LLC:         node.LLC,
		OnHand:      stock.Get(node.ID),
		Components:  components,
		InTransit:   node.Pipeline.Total(),
		Outstanding: node.Orders.Sum(),
		Backorders:  node.Backorders,
		Position:    s.chain.InventoryAssembliesFeasible(node),
		Demand:      demand,
		Sales:       sales,
	}
}

func (s *Simulator) saveSnapshot(period entities.Period) error {
	state, err := s.chain.ToJSON()
	if err != nil {
		return fmt.Errorf("period %d: failed to encode snapshot: %w", period, err)
	}

	snapshot := &entities.Snapshot{
		RunID:     s.runID,
		Period:    period,
		CreatedAt: time.Now().UTC(),
		State:     state,
	}
	if err := s.snapshots.SaveSnapshot(snapshot); err != nil {
		return fmt.Errorf("period %d: failed to save snapshot: %w", period, err)
	}
	return nil
}

// Run simulates periods periods. The context is checked between periods
// only; a cancelled run returns the result so far along with the error.
func (s *Simulator) Run(ctx context.Context, periods int) (*dto.SimulationResult, error) {
	if periods < 0 {
		return nil, fmt.Errorf("periods cannot be negative, got %d", periods)
	}

	s.logger.Info("simulation started",
		logging.String("scenario", s.scenario),
		logging.Period(int(s.next)),
		logging.Int("periods", periods),
		logging.Count(len(s.chain.Nodes())),
	)
	timer := logging.StartTimer(s.logger, "simulation finished", logging.Int("periods", periods))

	for i := 0; i < periods; i++ {
		if err := ctx.Err(); err != nil {
			err = fmt.Errorf("simulation stopped before period %d: %w", s.next, err)
			timer.EndError(err)
			return s.Result(), err
		}
		if err := s.Step(); err != nil {
			timer.EndError(err)
			return s.Result(), err
		}
	}

	result := s.Result()
	result.Duration = timer.End(logging.Int("shipments", len(result.Shipments)))
	return result, nil
}

// Result assembles the states, shipments and per-node summaries recorded so far
func (s *Simulator) Result() *dto.SimulationResult {
	result := &dto.SimulationResult{
		RunID:       s.runID,
		Scenario:    s.scenario,
		StartPeriod: s.start,
		EndPeriod:   s.next - 1,
		States:      append([]dto.NodeState(nil), s.states...),
		Shipments:   append([]supplychain.Shipment(nil), s.shipments...),
	}

	onHand := make(map[entities.NodeID]int64)
	counts := make(map[entities.NodeID]int64)
	for _, state := range s.states {
		onHand[state.Node] += int64(state.OnHand)
		counts[state.Node]++
	}

	for _, node := range s.chain.Nodes() {
		id := node.ID
		demand := s.aggregator.Sum(id, supplychain.EventDemand, supplychain.MetricQuantity)
		sales := s.aggregator.Sum(id, supplychain.EventSales, supplychain.MetricQuantity)

		result.Summaries = append(result.Summaries, dto.NodeSummary{
			Node:            id,
			TotalDemand:     entities.Quantity(demand),
			TotalSales:      entities.Quantity(sales),
			Received:        entities.Quantity(s.aggregator.Sum(id, supplychain.EventReceipt, supplychain.MetricQuantity)),
			Released:        entities.Quantity(s.aggregator.Sum(id, supplychain.EventOrderRelease, supplychain.MetricQuantity)),
			Assembled:       entities.Quantity(s.aggregator.Sum(id, supplychain.EventAssembly, supplychain.MetricQuantity)),
			FinalBackorders: node.Backorders,
			FillRate:        dto.Ratio(sales, demand, 4, decimal.NewFromInt(1)),
			AverageOnHand:   dto.Ratio(onHand[id], counts[id], 2, decimal.Zero),
			AverageWait: dto.Ratio(
				s.aggregator.Sum(id, supplychain.EventOrderRelease, supplychain.MetricWaitTime),
				s.aggregator.Count(id, supplychain.EventOrderRelease, supplychain.MetricWaitTime),
				2, decimal.Zero),
			UntimedReleases: s.aggregator.Sum(id, supplychain.EventOrderRelease, events.UntimedWaitMetric),
		})
	}

	return result
}
