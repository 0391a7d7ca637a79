package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/tour-inventory/internal/catalog"
)

// DefaultCurrency is used when neither the rate nor the engine names one.
const DefaultCurrency = "EUR"

// Request describes a single sell attempt.
type Request struct {
	OfferID  string `json:"offerId"`
	RateID   string `json:"rateId"`
	Quantity int    `json:"quantity"`
	Channel  string `json:"channel"`
}

// ContractEconomics is reported alongside every quote. Commission, VAT and
// fees are modelled on contracts but are not folded into the price, so the
// block is always zero.
type ContractEconomics struct {
	Commission decimal.Decimal `json:"commission"`
	VAT        decimal.Decimal `json:"vat"`
	Fees       decimal.Decimal `json:"fees"`
}

// AppliedPolicy summarises the policy chosen by the resolver.
type AppliedPolicy struct {
	ID       string           `json:"id"`
	Name     string           `json:"name,omitempty"`
	Strategy catalog.Strategy `json:"strategy"`
	Value    decimal.Decimal  `json:"value"`
}

// Response is the full breakdown of a computed price.
type Response struct {
	OfferID           string            `json:"offerId"`
	RateID            string            `json:"rateId"`
	ContractID        string            `json:"contractId"`
	SupplierID        string            `json:"supplierId"`
	Channel           string            `json:"channel"`
	Quantity          int               `json:"quantity"`
	Currency          string            `json:"currency"`
	NetRate           decimal.Decimal   `json:"netRate"`
	GrossRate         decimal.Decimal   `json:"grossRate"`
	AppliedMarkup     decimal.Decimal   `json:"appliedMarkup"`
	TotalGross        decimal.Decimal   `json:"totalGross"`
	Breakdown         Breakdown         `json:"breakdown"`
	Policy            *AppliedPolicy    `json:"policy,omitempty"`
	ContractEconomics ContractEconomics `json:"contractEconomics"`
	Availability      Availability      `json:"availability"`
	NetCapacity       *NetCapacity      `json:"netCapacity,omitempty"`
}

// Engine composes lookups, policy resolution, pricing and availability into a
// single quote. It holds no state besides configuration and is safe for
// concurrent use.
type Engine struct {
	DefaultCurrency string
}

// NewEngine returns an engine falling back to currency when a rate has none.
func NewEngine(currency string) *Engine {
	return &Engine{DefaultCurrency: strings.TrimSpace(currency)}
}

// ComputePrice prices req against snap. Any failed lookup aborts the whole
// computation and no partial response is returned.
func (e *Engine) ComputePrice(snap *catalog.Snapshot, req Request) (Response, error) {
	if snap == nil {
		return Response{}, fmt.Errorf("%w: nil snapshot", ErrInvalidRequest)
	}
	if req.Quantity < 0 {
		return Response{}, fmt.Errorf("%w: quantity must not be negative", ErrInvalidRequest)
	}

	rate, ok := snap.Rate(req.RateID)
	if !ok {
		return Response{}, notFound(KindRate, req.RateID)
	}
	offer, ok := snap.Offer(req.OfferID)
	if !ok {
		return Response{}, notFound(KindOffer, req.OfferID)
	}
	contract, ok := snap.Contract(offer.ContractID)
	if !ok {
		return Response{}, notFound(KindContract, offer.ContractID)
	}

	sc := SellContext{Channel: req.Channel, OfferID: offer.ID}

	var applied *AppliedPolicy
	var policyRef *catalog.PricingPolicy
	if p, found := ResolvePolicy(snap.Policies(), sc); found {
		policyRef = &p
		applied = &AppliedPolicy{ID: p.ID, Name: p.Name, Strategy: p.Strategy, Value: p.Value}
	}
	breakdown := Price(rate.BaseRate, policyRef)

	avail := CheckAvailability(rate.AllocationPoolID, snap.Allocations(), req.Quantity)
	var net *NetCapacity
	if rate.AllocationPoolID != nil {
		if c, found := snap.PoolCapacity(*rate.AllocationPoolID); found {
			v := NetAvailability(c)
			net = &v
		}
	}

	return Response{
		OfferID:           offer.ID,
		RateID:            rate.ID,
		ContractID:        contract.ID,
		SupplierID:        contract.SupplierID,
		Channel:           req.Channel,
		Quantity:          req.Quantity,
		Currency:          e.currency(rate),
		NetRate:           breakdown.NetRate,
		GrossRate:         breakdown.GrossRate,
		AppliedMarkup:     breakdown.AppliedMarkup,
		TotalGross:        breakdown.GrossRate.Mul(decimal.NewFromInt(int64(req.Quantity))),
		Breakdown:         breakdown,
		Policy:            applied,
		ContractEconomics: ContractEconomics{Commission: decimal.Zero, VAT: decimal.Zero, Fees: decimal.Zero},
		Availability:      avail,
		NetCapacity:       net,
	}, nil
}

func (e *Engine) currency(rate catalog.Rate) string {
	if c := strings.TrimSpace(rate.Currency); c != "" {
		return c
	}
	if e != nil && e.DefaultCurrency != "" {
		return e.DefaultCurrency
	}
	return DefaultCurrency
}
