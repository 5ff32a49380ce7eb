package simulation

import "github.com/vsinha/echelon/pkg/domain/entities"

// DemandProfile yields customer demand at a node per period
type DemandProfile interface {
	Demand(period entities.Period) entities.Quantity
}

// ConstantDemand is the same quantity every period
type ConstantDemand entities.Quantity

func (d ConstantDemand) Demand(entities.Period) entities.Quantity {
	return entities.Quantity(d)
}

// TableDemand looks demand up by period, falling back to Default outside the table
type TableDemand struct {
	Table   []entities.Quantity
	Default entities.Quantity
}

func (d TableDemand) Demand(period entities.Period) entities.Quantity {
	if period < 0 || int(period) >= len(d.Table) {
		return d.Default
	}
	return d.Table[period]
}
