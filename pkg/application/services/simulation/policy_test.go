package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/infrastructure/config"
	testhelpers "github.com/vsinha/echelon/pkg/infrastructure/testing"
	"github.com/vsinha/echelon/pkg/supplychain"
)

func singleNode(t *testing.T, stock entities.Quantity) (*supplychain.SupplyChain, *entities.Node) {
	t.Helper()
	node := testhelpers.MustNode("RETAIL", false, 2)
	require.NoError(t, node.Stock.Set("RETAIL", stock))

	chain, err := supplychain.New([]*entities.Node{node}, nil)
	require.NoError(t, err)
	return chain, node
}

func TestReplenish(t *testing.T) {
	bike, err := entities.NewNode("BIKE", false, nil)
	require.NoError(t, err)
	bike.Predecessors = []entities.Edge{
		entities.MustEdge("FRAME", "BIKE", 1),
		entities.MustEdge("WHEEL", "BIKE", 2),
	}

	orders, err := Replenish(bike, 3)
	require.NoError(t, err)
	assert.Equal(t, entities.Quantity(3), orders.Get("FRAME"))
	assert.Equal(t, entities.Quantity(6), orders.Get("WHEEL"))
	assert.False(t, orders.Has("BIKE"))

	bike.Intercompany = true
	orders, err = Replenish(bike, 3)
	require.NoError(t, err)
	assert.Equal(t, []entities.NodeID{"BIKE"}, orders.Keys())
	assert.Equal(t, entities.Quantity(3), orders.Get("BIKE"))

	raw, err := entities.NewNode("RAW", false, nil)
	require.NoError(t, err)
	orders, err = Replenish(raw, 4)
	require.NoError(t, err)
	assert.Equal(t, entities.Quantity(4), orders.Get("RAW"))

	orders, err = Replenish(raw, -2)
	require.NoError(t, err)
	assert.Zero(t, orders.Len())
}

func TestOrderUpToPolicy(t *testing.T) {
	chain, node := singleNode(t, 7)

	orders, err := OrderUpToPolicy{Level: 10}.Orders(chain, node, 0)
	require.NoError(t, err)
	assert.Equal(t, entities.Quantity(3), orders.Get("RETAIL"))

	orders, err = OrderUpToPolicy{Level: 5}.Orders(chain, node, 0)
	require.NoError(t, err)
	assert.Zero(t, orders.Sum())
}

func TestMinMaxPolicy(t *testing.T) {
	policy := MinMaxPolicy{Min: 5, Max: 12}

	chain, node := singleNode(t, 7)
	orders, err := policy.Orders(chain, node, 0)
	require.NoError(t, err)
	assert.Zero(t, orders.Sum(), "position above min orders nothing")

	chain, node = singleNode(t, 5)
	orders, err = policy.Orders(chain, node, 0)
	require.NoError(t, err)
	assert.Equal(t, entities.Quantity(7), orders.Get("RETAIL"))
}

func TestNoOrderPolicy(t *testing.T) {
	chain, node := singleNode(t, 0)
	orders, err := NoOrderPolicy{}.Orders(chain, node, 3)
	require.NoError(t, err)
	assert.Zero(t, orders.Len())
}

func TestDemandProfiles(t *testing.T) {
	assert.Equal(t, entities.Quantity(4), ConstantDemand(4).Demand(99))

	table := TableDemand{Table: []entities.Quantity{1, 2, 3}, Default: 9}
	assert.Equal(t, entities.Quantity(1), table.Demand(0))
	assert.Equal(t, entities.Quantity(3), table.Demand(2))
	assert.Equal(t, entities.Quantity(9), table.Demand(3))
	assert.Equal(t, entities.Quantity(9), table.Demand(-1))
}

func TestPolicyFromConfig(t *testing.T) {
	testCases := []struct {
		name     string
		config   config.PolicyConfig
		expected OrderingPolicy
		wantErr  bool
	}{
		{"empty", config.PolicyConfig{}, nil, false},
		{"none", config.PolicyConfig{Type: config.PolicyNone}, nil, false},
		{"order up to", config.PolicyConfig{Type: config.PolicyOrderUpTo, Level: 20}, OrderUpToPolicy{Level: 20}, false},
		{"min max", config.PolicyConfig{Type: config.PolicyMinMax, Min: 2, Max: 8}, MinMaxPolicy{Min: 2, Max: 8}, false},
		{"min max inverted", config.PolicyConfig{Type: config.PolicyMinMax, Min: 8, Max: 2}, nil, true},
		{"unknown", config.PolicyConfig{Type: "kanban"}, nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			policy, err := PolicyFromConfig(tc.config)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, policy)
		})
	}
}

func TestDemandFromConfig(t *testing.T) {
	profile, err := DemandFromConfig(config.DemandConfig{Type: config.DemandConstant, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, ConstantDemand(5), profile)

	profile, err = DemandFromConfig(config.DemandConfig{Type: config.DemandTable, Table: []int64{3, 4}, Default: 1})
	require.NoError(t, err)
	assert.Equal(t, TableDemand{Table: []entities.Quantity{3, 4}, Default: 1}, profile)

	profile, err = DemandFromConfig(config.DemandConfig{})
	require.NoError(t, err)
	assert.Nil(t, profile)

	_, err = DemandFromConfig(config.DemandConfig{Type: "seasonal"})
	assert.Error(t, err)
}
