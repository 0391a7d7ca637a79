package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/tour-inventory/internal/catalog"
)

var hundred = decimal.NewFromInt(100)

// SupplierCost is the cost attributed to one allocation of a pool.
type SupplierCost struct {
	AllocationID string          `json:"allocationId"`
	SupplierID   string          `json:"supplierId"`
	ContractID   string          `json:"contractId"`
	Quantity     int             `json:"quantity"`
	CostPerUnit  decimal.Decimal `json:"costPerUnit"`
	CostCurrency string          `json:"costCurrency,omitempty"`
	TotalCost    decimal.Decimal `json:"totalCost"`
}

// PoolProfitSummary is the estimated economics of an allocation pool.
type PoolProfitSummary struct {
	PoolID                string          `json:"poolId"`
	ItemName              string          `json:"itemName,omitempty"`
	TotalCapacity         int             `json:"totalCapacity"`
	CurrentBookings       int             `json:"currentBookings"`
	AvailableSpots        int             `json:"availableSpots"`
	SupplierCosts         []SupplierCost  `json:"supplierCosts"`
	TotalCost             decimal.Decimal `json:"totalCost"`
	CostPerUnit           decimal.Decimal `json:"costPerUnit"`
	AverageSellingPrice   decimal.Decimal `json:"averageSellingPrice"`
	EstimatedRevenue      decimal.Decimal `json:"estimatedRevenue"`
	EstimatedProfit       decimal.Decimal `json:"estimatedProfit"`
	EstimatedProfitMargin decimal.Decimal `json:"estimatedProfitMargin"`
	UtilizationPercentage decimal.Decimal `json:"utilizationPercentage"`
}

// SupplierChoice is the cheapest allocation/contract pair of a pool.
type SupplierChoice struct {
	PoolID       string          `json:"poolId"`
	AllocationID string          `json:"allocationId"`
	SupplierID   string          `json:"supplierId"`
	SupplierName string          `json:"supplierName,omitempty"`
	ContractID   string          `json:"contractId"`
	Quantity     int             `json:"quantity"`
	CostPerUnit  decimal.Decimal `json:"costPerUnit"`
	CostCurrency string          `json:"costCurrency,omitempty"`
}

// PoolProfit estimates cost, revenue and profit for poolID. The boolean is
// false when the pool has no capacity rollup. Allocations whose contract is
// unknown are costed at zero.
func PoolProfit(
	poolID string,
	allocations []catalog.Allocation,
	contracts []catalog.Contract,
	rates []catalog.Rate,
	capacities []catalog.AllocationPoolCapacity,
) (PoolProfitSummary, bool) {
	capacity, ok := findCapacity(poolID, capacities)
	if !ok {
		return PoolProfitSummary{}, false
	}
	byID := contractIndex(contracts)

	lines := make([]SupplierCost, 0)
	totalCost := decimal.Zero
	for _, a := range allocations {
		if !a.InPool(poolID) {
			continue
		}
		c := byID[a.ContractID]
		line := SupplierCost{
			AllocationID: a.ID,
			SupplierID:   a.SupplierID,
			ContractID:   a.ContractID,
			Quantity:     a.Quantity,
			CostPerUnit:  c.CostPerUnit,
			CostCurrency: c.CostCurrency,
			TotalCost:    c.CostPerUnit.Mul(decimal.NewFromInt(int64(a.Quantity))),
		}
		if line.SupplierID == "" {
			line.SupplierID = c.SupplierID
		}
		lines = append(lines, line)
		totalCost = totalCost.Add(line.TotalCost)
	}

	sum := decimal.Zero
	pooledRates := 0
	for _, r := range rates {
		if r.AllocationPoolID != nil && *r.AllocationPoolID == poolID {
			sum = sum.Add(r.SellingPrice)
			pooledRates++
		}
	}

	totalCapacity := decimal.NewFromInt(int64(capacity.TotalCapacity))
	bookings := decimal.NewFromInt(int64(capacity.CurrentBookings))
	avgPrice := safeDiv(sum, decimal.NewFromInt(int64(pooledRates)))
	costPerUnit := safeDiv(totalCost, totalCapacity)
	revenue := bookings.Mul(avgPrice)
	profit := revenue.Sub(bookings.Mul(costPerUnit))

	return PoolProfitSummary{
		PoolID:                poolID,
		ItemName:              capacity.ItemName,
		TotalCapacity:         capacity.TotalCapacity,
		CurrentBookings:       capacity.CurrentBookings,
		AvailableSpots:        capacity.AvailableSpots,
		SupplierCosts:         lines,
		TotalCost:             totalCost,
		CostPerUnit:           costPerUnit,
		AverageSellingPrice:   avgPrice,
		EstimatedRevenue:      revenue,
		EstimatedProfit:       profit,
		EstimatedProfitMargin: safeDiv(profit, revenue).Mul(hundred),
		UtilizationPercentage: safeDiv(bookings, totalCapacity).Mul(hundred),
	}, true
}

// CheapestSupplierForPool returns the pool allocation with the lowest contract
// cost per unit. Allocations whose contract is unknown are skipped. Ties keep
// the first allocation encountered.
func CheapestSupplierForPool(poolID string, allocations []catalog.Allocation, contracts []catalog.Contract) (SupplierChoice, bool) {
	byID := contractIndex(contracts)
	var best SupplierChoice
	found := false
	for _, a := range allocations {
		if !a.InPool(poolID) {
			continue
		}
		c, ok := byID[a.ContractID]
		if !ok {
			continue
		}
		if found && !c.CostPerUnit.LessThan(best.CostPerUnit) {
			continue
		}
		supplier := a.SupplierID
		if supplier == "" {
			supplier = c.SupplierID
		}
		best = SupplierChoice{
			PoolID:       poolID,
			AllocationID: a.ID,
			SupplierID:   supplier,
			SupplierName: c.SupplierName,
			ContractID:   a.ContractID,
			Quantity:     a.Quantity,
			CostPerUnit:  c.CostPerUnit,
			CostCurrency: c.CostCurrency,
		}
		found = true
	}
	return best, found
}

// AllPoolProfits summarises every pool with a capacity rollup, ordered by pool id.
func AllPoolProfits(snap *catalog.Snapshot) []PoolProfitSummary {
	if snap == nil {
		return nil
	}
	capacities := snap.PoolCapacities()
	sort.SliceStable(capacities, func(i, j int) bool { return capacities[i].PoolID < capacities[j].PoolID })

	allocations := snap.Allocations()
	contracts := snap.Contracts()
	rates := snap.Rates()
	out := make([]PoolProfitSummary, 0, len(capacities))
	for _, c := range capacities {
		if summary, ok := PoolProfit(c.PoolID, allocations, contracts, rates, capacities); ok {
			out = append(out, summary)
		}
	}
	return out
}

func findCapacity(poolID string, capacities []catalog.AllocationPoolCapacity) (catalog.AllocationPoolCapacity, bool) {
	for _, c := range capacities {
		if c.PoolID == poolID {
			return c, true
		}
	}
	return catalog.AllocationPoolCapacity{}, false
}

func contractIndex(contracts []catalog.Contract) map[string]catalog.Contract {
	out := make(map[string]catalog.Contract, len(contracts))
	for _, c := range contracts {
		if _, dup := out[c.ID]; !dup {
			out[c.ID] = c
		}
	}
	return out
}

func safeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}
