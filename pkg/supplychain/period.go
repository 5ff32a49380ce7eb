package supplychain

import (
	"fmt"

	"github.com/vsinha/echelon/pkg/domain/entities"
)

// Shipment records one release of stock into a requester's pipeline
type Shipment struct {
	Period   entities.Period   `json:"period"`
	From     entities.NodeID   `json:"from"`
	To       entities.NodeID   `json:"to"`
	Quantity entities.Quantity `json:"quantity"`
	ETA      int               `json:"eta"`
}

// Arrival returns the period in which the shipment is received. Receipts
// count down starting the period after they ship.
func (s Shipment) Arrival() entities.Period {
	if s.ETA < 1 {
		return s.Period + 1
	}
	return s.Period + entities.Period(s.ETA)
}

// CreateOrders places node's orders for period. A key equal to node is an
// order for its own SKU: intercompany nodes explode it through their
// predecessor edges, other nodes receive it from external supply after
// their lead time. Any other key places the order on that node's ledger.
func (sc *SupplyChain) CreateOrders(node *entities.Node, orders *entities.Orders, period entities.Period) error {
	if err := sc.member(node); err != nil {
		return err
	}

	for _, target := range orders.Keys() {
		if orders.Get(target) > 0 && !sc.NodeExists(target) {
			return fmt.Errorf("%w: %s cannot order from %s", ErrUnknownNode, node.ID, target)
		}
	}

	for _, target := range orders.Keys() {
		quantity := orders.Get(target)
		if quantity <= 0 {
			continue
		}

		switch {
		case target == node.ID && node.Intercompany:
			for _, edge := range node.Predecessors {
				pred := sc.nodes[edge.Source()]
				if err := pred.Orders.AddAt(node.ID, quantity*edge.Number(), period); err != nil {
					return fmt.Errorf("failed to order %s from %s: %w", node.ID, pred.ID, err)
				}
			}
		case target == node.ID:
			receipt, err := entities.NewReceipt(node.ID, node.GetLeadTime(period), quantity)
			if err != nil {
				return fmt.Errorf("failed to order %s from external supply: %w", node.ID, err)
			}
			node.Pipeline.AddReceipt(receipt)
		default:
			if err := sc.nodes[target].Orders.AddAt(node.ID, quantity, period); err != nil {
				return fmt.Errorf("failed to order %s from %s: %w", node.ID, target, err)
			}
		}

		sc.logger.LogEvent(node.ID, target, EventOrderCreate, MetricQuantity, int64(quantity))
	}

	return nil
}

type release struct {
	requester *entities.Node
	quantity  entities.Quantity
}

// ReleaseOrders ships node's own stock against the orders its requesters
// placed. Each release is clamped to the stock left on hand. Shipments
// enter the requester's pipeline with the requester's lead time.
//
// Releasing more than a requester has outstanding is an error, returned
// before anything is mutated.
func (sc *SupplyChain) ReleaseOrders(node *entities.Node, releases *entities.Orders, period entities.Period) ([]Shipment, error) {
	if err := sc.member(node); err != nil {
		return nil, err
	}

	available := node.Stock.Get(node.ID)
	plan := make([]release, 0, releases.Len())

	for _, id := range releases.Keys() {
		wanted := releases.Get(id)
		if wanted <= 0 {
			continue
		}
		requester, ok := sc.nodes[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s cannot release to %s", ErrUnknownNode, node.ID, id)
		}

		quantity := min(wanted, available)
		if quantity <= 0 {
			continue
		}
		if outstanding := node.Orders.Get(id); quantity > outstanding {
			return nil, fmt.Errorf("%w: %s releasing %d to %s with only %d ordered",
				entities.ErrInsufficientQuantity, node.ID, quantity, id, outstanding)
		}

		available -= quantity
		plan = append(plan, release{requester: requester, quantity: quantity})
	}

	shipments := make([]Shipment, 0, len(plan))
	for _, r := range plan {
		eta := r.requester.GetLeadTime(period)
		receipt, err := entities.NewReceipt(node.ID, eta, r.quantity)
		if err != nil {
			return shipments, fmt.Errorf("failed to ship %s to %s: %w", node.ID, r.requester.ID, err)
		}
		r.requester.Pipeline.AddReceipt(receipt)

		if _, err := node.Stock.Consume(node.ID, r.quantity); err != nil {
			return shipments, fmt.Errorf("failed to consume stock of %s: %w", node.ID, err)
		}
		fragments, err := node.Orders.Consume(r.requester.ID, r.quantity)
		if err != nil {
			return shipments, fmt.Errorf("failed to consume orders of %s at %s: %w", r.requester.ID, node.ID, err)
		}

		for _, fragment := range fragments {
			sc.logger.LogEvent(node.ID, r.requester.ID, EventOrderRelease, MetricQuantity, int64(fragment.Quantity))
			sc.logger.LogEvent(node.ID, r.requester.ID, EventOrderRelease, MetricWaitTime, int64(fragment.WaitTime(period)))
		}

		shipments = append(shipments, Shipment{
			Period:   period,
			From:     node.ID,
			To:       r.requester.ID,
			Quantity: r.quantity,
			ETA:      eta,
		})
	}

	return shipments, nil
}

// ReleaseAll releases against every positive order outstanding on node
func (sc *SupplyChain) ReleaseAll(node *entities.Node, period entities.Period) ([]Shipment, error) {
	if err := sc.member(node); err != nil {
		return nil, err
	}
	return sc.ReleaseOrders(node, node.Orders.Positive(), period)
}

// ReceiveShipments advances node's pipeline one period and books every
// arrived receipt into stock under its SKU
func (sc *SupplyChain) ReceiveShipments(node *entities.Node, period entities.Period) ([]entities.Receipt, error) {
	if err := sc.member(node); err != nil {
		return nil, err
	}

	node.Pipeline.Update()
	received := node.Pipeline.PopReceived()

	for _, r := range received {
		if err := node.Stock.AddAt(r.SKU, r.Quantity, period); err != nil {
			return received, fmt.Errorf("failed to receive %s at %s: %w", r.SKU, node.ID, err)
		}
		sc.logger.LogEvent(node.ID, r.SKU, EventReceipt, MetricQuantity, int64(r.Quantity))
	}

	return received, nil
}

// Assemble converts component stock on hand into node's own SKU, building
// as many complete units as every predecessor edge allows
func (sc *SupplyChain) Assemble(node *entities.Node, period entities.Period) (entities.Quantity, error) {
	if err := sc.member(node); err != nil {
		return 0, err
	}

	builds := node.AssembliesFeasible(entities.InventoryOf(node.Stock))
	if builds <= 0 {
		return 0, nil
	}

	for _, edge := range node.Predecessors {
		if _, err := node.Stock.Consume(edge.Source(), builds*edge.Number()); err != nil {
			return 0, fmt.Errorf("failed to consume component %s at %s: %w", edge.Source(), node.ID, err)
		}
	}
	if err := node.Stock.AddAt(node.ID, builds, period); err != nil {
		return 0, fmt.Errorf("failed to stock assemblies of %s: %w", node.ID, err)
	}

	sc.logger.LogEvent(node.ID, node.ID, EventAssembly, MetricQuantity, int64(builds))
	return builds, nil
}

// FulfillDemand ships node's own stock against backorders plus new demand.
// Whatever cannot be shipped becomes the new backorder level.
func (sc *SupplyChain) FulfillDemand(node *entities.Node, demand entities.Quantity, period entities.Period) (entities.Quantity, error) {
	if err := sc.member(node); err != nil {
		return 0, err
	}
	if demand < 0 {
		return 0, fmt.Errorf("%w: demand of %d at %s", entities.ErrNegativeQuantity, demand, node.ID)
	}

	due := node.Backorders + demand
	shipped := min(node.Stock.Get(node.ID), due)
	if shipped > 0 {
		if _, err := node.Stock.Consume(node.ID, shipped); err != nil {
			return 0, fmt.Errorf("failed to fulfill demand at %s: %w", node.ID, err)
		}
	} else {
		shipped = 0
	}
	node.Backorders = due - shipped

	sc.logger.LogEvent(node.ID, node.ID, EventDemand, MetricQuantity, int64(demand))
	sc.logger.LogEvent(node.ID, node.ID, EventSales, MetricQuantity, int64(shipped))
	sc.logger.LogEvent(node.ID, node.ID, EventBackorder, MetricQuantity, int64(node.Backorders))
	return shipped, nil
}
