// Package fixture reads catalog data from YAML files so operators can price
// quotes and inspect pools offline.
package fixture

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/tour-inventory/internal/catalog"
)

// File mirrors the YAML layout. Money fields are strings so values like
// "19.90" keep their exact decimal form.
type File struct {
	Rates          []Rate     `yaml:"rates"`
	Offers         []Offer    `yaml:"offers"`
	Contracts      []Contract `yaml:"contracts"`
	Policies       []Policy   `yaml:"policies"`
	Allocations    []Alloc    `yaml:"allocations"`
	PoolCapacities []Capacity `yaml:"poolCapacities"`
}

type Rate struct {
	ID               string  `yaml:"id"`
	Name             string  `yaml:"name"`
	BaseRate         string  `yaml:"baseRate"`
	Currency         string  `yaml:"currency"`
	AllocationPoolID *string `yaml:"allocationPoolId"`
	SellingPrice     string  `yaml:"sellingPrice"`
}

type Offer struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	ContractID string  `yaml:"contractId"`
	RateID     *string `yaml:"rateId"`
	TourID     *string `yaml:"tourId"`
}

type Contract struct {
	ID            string `yaml:"id"`
	SupplierID    string `yaml:"supplierId"`
	SupplierName  string `yaml:"supplierName"`
	CostPerUnit   string `yaml:"costPerUnit"`
	CostCurrency  string `yaml:"costCurrency"`
	CommissionPct string `yaml:"commissionPct"`
	VATPct        string `yaml:"vatPct"`
	FeeAmount     string `yaml:"feeAmount"`
}

type Policy struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Scope    struct {
		OfferID *string `yaml:"offerId"`
		Channel *string `yaml:"channel"`
		TourID  *string `yaml:"tourId"`
	} `yaml:"scope"`
	Strategy string `yaml:"strategy"`
	Value    string `yaml:"value"`
	// Active defaults to true when omitted.
	Active *bool `yaml:"active"`
}

type Alloc struct {
	ID               string  `yaml:"id"`
	ProductID        string  `yaml:"productId"`
	AllocationPoolID *string `yaml:"allocationPoolId"`
	Quantity         int     `yaml:"quantity"`
	SupplierID       string  `yaml:"supplierId"`
	ContractID       string  `yaml:"contractId"`
}

type Capacity struct {
	PoolID          string `yaml:"poolId"`
	ItemName        string `yaml:"itemName"`
	TotalCapacity   int    `yaml:"totalCapacity"`
	CurrentBookings int    `yaml:"currentBookings"`
	AvailableSpots  *int   `yaml:"availableSpots"`
}

// LoadFile reads path and builds a snapshot stamped with the file's mtime.
func LoadFile(path string) (*catalog.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	data, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog.NewSnapshot(data, info.ModTime().UTC())
}

// Decode parses YAML into catalog data.
func Decode(r io.Reader) (catalog.Data, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return catalog.Data{}, fmt.Errorf("decode fixture: %w", err)
	}
	return file.Data()
}

// Data converts the file into catalog data, parsing every money field.
func (f File) Data() (catalog.Data, error) {
	p := parser{}
	out := catalog.Data{
		Rates:          make([]catalog.Rate, 0, len(f.Rates)),
		Offers:         make([]catalog.Offer, 0, len(f.Offers)),
		Contracts:      make([]catalog.Contract, 0, len(f.Contracts)),
		Policies:       make([]catalog.PricingPolicy, 0, len(f.Policies)),
		Allocations:    make([]catalog.Allocation, 0, len(f.Allocations)),
		PoolCapacities: make([]catalog.AllocationPoolCapacity, 0, len(f.PoolCapacities)),
	}
	for _, r := range f.Rates {
		out.Rates = append(out.Rates, catalog.Rate{
			ID:               r.ID,
			Name:             r.Name,
			BaseRate:         p.money("rate "+r.ID+" baseRate", r.BaseRate),
			Currency:         strings.ToUpper(r.Currency),
			AllocationPoolID: r.AllocationPoolID,
			SellingPrice:     p.money("rate "+r.ID+" sellingPrice", r.SellingPrice),
		})
	}
	for _, o := range f.Offers {
		out.Offers = append(out.Offers, catalog.Offer(o))
	}
	for _, c := range f.Contracts {
		out.Contracts = append(out.Contracts, catalog.Contract{
			ID:           c.ID,
			SupplierID:   c.SupplierID,
			SupplierName: c.SupplierName,
			CostPerUnit:  p.money("contract "+c.ID+" costPerUnit", c.CostPerUnit),
			CostCurrency: c.CostCurrency,
			Economics: catalog.Economics{
				CommissionPct: p.money("contract "+c.ID+" commissionPct", c.CommissionPct),
				VATPct:        p.money("contract "+c.ID+" vatPct", c.VATPct),
				FeeAmount:     p.money("contract "+c.ID+" feeAmount", c.FeeAmount),
			},
		})
	}
	for _, pol := range f.Policies {
		active := true
		if pol.Active != nil {
			active = *pol.Active
		}
		out.Policies = append(out.Policies, catalog.PricingPolicy{
			ID:   pol.ID,
			Name: pol.Name,
			Scope: catalog.PolicyScope{
				OfferID: pol.Scope.OfferID,
				Channel: pol.Scope.Channel,
				TourID:  pol.Scope.TourID,
			},
			Strategy: catalog.Strategy(pol.Strategy),
			Value:    p.money("policy "+pol.ID+" value", pol.Value),
			Active:   active,
		})
	}
	for _, a := range f.Allocations {
		out.Allocations = append(out.Allocations, catalog.Allocation(a))
	}
	for _, c := range f.PoolCapacities {
		available := c.TotalCapacity - c.CurrentBookings
		if c.AvailableSpots != nil {
			available = *c.AvailableSpots
		}
		out.PoolCapacities = append(out.PoolCapacities, catalog.AllocationPoolCapacity{
			PoolID:          c.PoolID,
			ItemName:        c.ItemName,
			TotalCapacity:   c.TotalCapacity,
			CurrentBookings: c.CurrentBookings,
			AvailableSpots:  max(available, 0),
		})
	}
	if p.err != nil {
		return catalog.Data{}, p.err
	}
	return out, nil
}

type parser struct {
	err error
}

// money parses a decimal; blank means zero. The first failure is kept.
func (p *parser) money(field, raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" || p.err != nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		p.err = fmt.Errorf("%s: invalid amount %q", field, raw)
		return decimal.Zero
	}
	return d
}

