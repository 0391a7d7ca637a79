package catalog

import (
	"github.com/shopspring/decimal"
)

// Strategy names the markup function a pricing policy applies.
type Strategy string

const (
	StrategyMarkupPct       Strategy = "markup_pct"
	StrategyGrossFixed      Strategy = "gross_fixed"
	StrategyAgentCommission Strategy = "agent_commission"
)

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyMarkupPct, StrategyGrossFixed, StrategyAgentCommission:
		return true
	default:
		return false
	}
}

// Rate is a sellable price point. SellingPrice is a cached figure maintained
// by the console and is only used for revenue estimates, never for quoting.
type Rate struct {
	ID               string          `json:"id"`
	Name             string          `json:"name,omitempty"`
	BaseRate         decimal.Decimal `json:"baseRate"`
	Currency         string          `json:"currency,omitempty"`
	AllocationPoolID *string         `json:"allocationPoolId,omitempty"`
	SellingPrice     decimal.Decimal `json:"sellingPrice"`
}

// Offer links a sell context to the contract it is bought under.
type Offer struct {
	ID         string  `json:"id"`
	Name       string  `json:"name,omitempty"`
	ContractID string  `json:"contractId"`
	RateID     *string `json:"rateId,omitempty"`
	TourID     *string `json:"tourId,omitempty"`
}

// Economics carries the commercial terms of a contract. The quote engine does
// not fold these into the gross price yet.
type Economics struct {
	CommissionPct decimal.Decimal `json:"commissionPct"`
	VATPct        decimal.Decimal `json:"vatPct"`
	FeeAmount     decimal.Decimal `json:"feeAmount"`
}

// Contract describes the terms agreed with a supplier.
type Contract struct {
	ID           string          `json:"id"`
	SupplierID   string          `json:"supplierId"`
	SupplierName string          `json:"supplierName,omitempty"`
	CostPerUnit  decimal.Decimal `json:"costPerUnit"`
	CostCurrency string          `json:"costCurrency,omitempty"`
	Economics    Economics       `json:"economics"`
}

// PolicyScope selects the sell contexts a policy applies to. A nil field is
// unconstrained; a scope with every field nil is global.
type PolicyScope struct {
	OfferID *string `json:"offerId,omitempty"`
	Channel *string `json:"channel,omitempty"`
	TourID  *string `json:"tourId,omitempty"`
}

// Global reports whether the scope places no constraint at all.
func (s PolicyScope) Global() bool {
	return s.OfferID == nil && s.Channel == nil && s.TourID == nil
}

// PricingPolicy is a markup rule applied on top of a rate's net price.
type PricingPolicy struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Scope    PolicyScope     `json:"scope"`
	Strategy Strategy        `json:"strategy"`
	Value    decimal.Decimal `json:"value"`
	Active   bool            `json:"active"`
}

// Allocation is a capacity grant for a product, optionally shared through a pool.
type Allocation struct {
	ID               string  `json:"id"`
	ProductID        string  `json:"productId,omitempty"`
	AllocationPoolID *string `json:"allocationPoolId,omitempty"`
	Quantity         int     `json:"quantity"`
	SupplierID       string  `json:"supplierId,omitempty"`
	ContractID       string  `json:"contractId,omitempty"`
}

// InPool reports whether the allocation belongs to poolID.
func (a Allocation) InPool(poolID string) bool {
	return poolID != "" && a.AllocationPoolID != nil && *a.AllocationPoolID == poolID
}

// AllocationPoolCapacity is the materialised capacity rollup of a pool. It is
// maintained by the booking workflow and treated as authoritative.
type AllocationPoolCapacity struct {
	PoolID          string `json:"poolId"`
	ItemName        string `json:"itemName,omitempty"`
	TotalCapacity   int    `json:"totalCapacity"`
	CurrentBookings int    `json:"currentBookings"`
	AvailableSpots  int    `json:"availableSpots"`
}
