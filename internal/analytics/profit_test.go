package analytics_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tour-inventory/internal/analytics"
	"github.com/noah-isme/tour-inventory/internal/catalog"
)

func ptr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s got %s", want, got)
}

func poolFixture() catalog.Data {
	return catalog.Data{
		Rates: []catalog.Rate{
			{ID: "r1", AllocationPoolID: ptr("pool_a"), SellingPrice: dec("90")},
			{ID: "r2", AllocationPoolID: ptr("pool_a"), SellingPrice: dec("110")},
			{ID: "r3", AllocationPoolID: ptr("pool_b"), SellingPrice: dec("999")},
		},
		Contracts: []catalog.Contract{
			{ID: "c-cheap", SupplierID: "sup-1", SupplierName: "Alpine Coaches", CostPerUnit: dec("5"), CostCurrency: "EUR"},
			{ID: "c-pricey", SupplierID: "sup-2", CostPerUnit: dec("9"), CostCurrency: "EUR"},
			{ID: "c-tie", SupplierID: "sup-3", CostPerUnit: dec("5"), CostCurrency: "EUR"},
		},
		Allocations: []catalog.Allocation{
			{ID: "a1", AllocationPoolID: ptr("pool_a"), Quantity: 10, SupplierID: "sup-1", ContractID: "c-cheap"},
			{ID: "a2", AllocationPoolID: ptr("pool_b"), Quantity: 4, SupplierID: "sup-2", ContractID: "c-pricey"},
		},
		PoolCapacities: []catalog.AllocationPoolCapacity{
			{PoolID: "pool_a", ItemName: "Glacier day trip", TotalCapacity: 10, CurrentBookings: 4, AvailableSpots: 6},
			{PoolID: "pool_zero", TotalCapacity: 0, CurrentBookings: 3},
		},
	}
}

func TestPoolProfitScenario(t *testing.T) {
	d := poolFixture()
	summary, ok := analytics.PoolProfit("pool_a", d.Allocations, d.Contracts, d.Rates, d.PoolCapacities)
	require.True(t, ok)
	require.Equal(t, "Glacier day trip", summary.ItemName)
	require.Len(t, summary.SupplierCosts, 1)
	requireDec(t, "50", summary.SupplierCosts[0].TotalCost)
	requireDec(t, "50", summary.TotalCost)
	requireDec(t, "5", summary.CostPerUnit)
	requireDec(t, "100", summary.AverageSellingPrice)
	requireDec(t, "400", summary.EstimatedRevenue)
	requireDec(t, "380", summary.EstimatedProfit)
	requireDec(t, "95", summary.EstimatedProfitMargin)
	requireDec(t, "40", summary.UtilizationPercentage)
}

func TestPoolProfitZeroCapacity(t *testing.T) {
	d := poolFixture()
	summary, ok := analytics.PoolProfit("pool_zero", d.Allocations, d.Contracts, d.Rates, d.PoolCapacities)
	require.True(t, ok)
	requireDec(t, "0", summary.CostPerUnit)
	requireDec(t, "0", summary.UtilizationPercentage)
	requireDec(t, "0", summary.AverageSellingPrice)
	requireDec(t, "0", summary.EstimatedRevenue)
	requireDec(t, "0", summary.EstimatedProfitMargin)
	require.Empty(t, summary.SupplierCosts)
}

func TestPoolProfitUnknownPool(t *testing.T) {
	d := poolFixture()
	_, ok := analytics.PoolProfit("pool_b", d.Allocations, d.Contracts, d.Rates, d.PoolCapacities)
	require.False(t, ok, "pool_b has allocations but no capacity rollup")
}

func TestPoolProfitMissingContractCostsZero(t *testing.T) {
	allocations := []catalog.Allocation{{ID: "a1", AllocationPoolID: ptr("p"), Quantity: 3, ContractID: "ghost"}}
	capacities := []catalog.AllocationPoolCapacity{{PoolID: "p", TotalCapacity: 3, CurrentBookings: 1}}
	summary, ok := analytics.PoolProfit("p", allocations, nil, nil, capacities)
	require.True(t, ok)
	require.Len(t, summary.SupplierCosts, 1)
	requireDec(t, "0", summary.SupplierCosts[0].TotalCost)
	requireDec(t, "0", summary.TotalCost)
}

func TestCheapestSupplierForPool(t *testing.T) {
	d := poolFixture()
	d.Allocations = append(d.Allocations,
		catalog.Allocation{ID: "a3", AllocationPoolID: ptr("pool_a"), Quantity: 2, ContractID: "c-pricey"},
		catalog.Allocation{ID: "a4", AllocationPoolID: ptr("pool_a"), Quantity: 2, SupplierID: "sup-3", ContractID: "c-tie"},
	)
	choice, ok := analytics.CheapestSupplierForPool("pool_a", d.Allocations, d.Contracts)
	require.True(t, ok)
	require.Equal(t, "a1", choice.AllocationID, "ties keep the first allocation")
	require.Equal(t, "Alpine Coaches", choice.SupplierName)
	requireDec(t, "5", choice.CostPerUnit)

	_, ok = analytics.CheapestSupplierForPool("pool_empty", d.Allocations, d.Contracts)
	require.False(t, ok)
}

func TestCheapestSupplierSkipsUnknownContracts(t *testing.T) {
	contracts := []catalog.Contract{{ID: "c1", SupplierID: "sup-1", CostPerUnit: dec("5")}}
	allocations := []catalog.Allocation{
		{ID: "a1", AllocationPoolID: ptr("p"), Quantity: 4, ContractID: "c1"},
		{ID: "a2", AllocationPoolID: ptr("p"), Quantity: 4, ContractID: "ghost"},
	}
	choice, ok := analytics.CheapestSupplierForPool("p", allocations, contracts)
	require.True(t, ok)
	require.Equal(t, "a1", choice.AllocationID)
	require.Equal(t, "c1", choice.ContractID)
	requireDec(t, "5", choice.CostPerUnit)

	_, ok = analytics.CheapestSupplierForPool("p", allocations[1:], contracts)
	require.False(t, ok, "an allocation without a contract is not a supplier choice")
}

func TestAllPoolProfitsOrdered(t *testing.T) {
	snap, err := catalog.NewSnapshot(poolFixture(), time.Unix(0, 0))
	require.NoError(t, err)
	rows := analytics.AllPoolProfits(snap)
	require.Len(t, rows, 2)
	require.Equal(t, "pool_a", rows[0].PoolID)
	require.Equal(t, "pool_zero", rows[1].PoolID)
	require.Nil(t, analytics.AllPoolProfits(nil))
}
