package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	// ErrInvalidSnapshot is returned when catalog data violates a structural invariant.
	ErrInvalidSnapshot = errors.New("catalog: invalid snapshot")
	// ErrSnapshotUnavailable is returned when no snapshot could be loaded.
	ErrSnapshotUnavailable = errors.New("catalog: snapshot unavailable")
)

// Data is the raw catalog content a Snapshot is built from.
type Data struct {
	Rates          []Rate                   `json:"rates"`
	Offers         []Offer                  `json:"offers"`
	Contracts      []Contract               `json:"contracts"`
	Policies       []PricingPolicy          `json:"policies"`
	Allocations    []Allocation             `json:"allocations"`
	PoolCapacities []AllocationPoolCapacity `json:"poolCapacities"`
}

// Snapshot is an immutable, indexed view over catalog data. Accessors return
// deep copies, including optional pointer fields, so callers can never mutate
// the shared state.
type Snapshot struct {
	data      Data
	loadedAt  time.Time
	rates     map[string]int
	offers    map[string]int
	contracts map[string]int
	pools     map[string]int
}

// NewSnapshot validates data and builds lookup indexes over a private copy of it.
func NewSnapshot(data Data, loadedAt time.Time) (*Snapshot, error) {
	s := &Snapshot{
		data: Data{
			Rates:          cloneEach(data.Rates, copyRate),
			Offers:         cloneEach(data.Offers, copyOffer),
			Contracts:      slices.Clone(data.Contracts),
			Policies:       cloneEach(data.Policies, copyPolicy),
			Allocations:    cloneEach(data.Allocations, copyAllocation),
			PoolCapacities: slices.Clone(data.PoolCapacities),
		},
		loadedAt: loadedAt,
	}
	var problems []string
	var err error

	s.rates, err = index(s.data.Rates, func(r Rate) string { return r.ID })
	if err != nil {
		problems = append(problems, "rates: "+err.Error())
	}
	s.offers, err = index(s.data.Offers, func(o Offer) string { return o.ID })
	if err != nil {
		problems = append(problems, "offers: "+err.Error())
	}
	s.contracts, err = index(s.data.Contracts, func(c Contract) string { return c.ID })
	if err != nil {
		problems = append(problems, "contracts: "+err.Error())
	}
	s.pools, err = index(s.data.PoolCapacities, func(p AllocationPoolCapacity) string { return p.PoolID })
	if err != nil {
		problems = append(problems, "pool capacities: "+err.Error())
	}

	for _, r := range s.data.Rates {
		if r.BaseRate.IsNegative() {
			problems = append(problems, fmt.Sprintf("rate %s: negative base rate", r.ID))
		}
		if r.SellingPrice.IsNegative() {
			problems = append(problems, fmt.Sprintf("rate %s: negative selling price", r.ID))
		}
	}
	for _, c := range s.data.Contracts {
		if c.CostPerUnit.IsNegative() {
			problems = append(problems, fmt.Sprintf("contract %s: negative cost per unit", c.ID))
		}
	}
	for _, a := range s.data.Allocations {
		if a.Quantity < 0 {
			problems = append(problems, fmt.Sprintf("allocation %s: negative quantity", a.ID))
		}
	}
	for _, p := range s.data.PoolCapacities {
		if p.TotalCapacity < 0 || p.CurrentBookings < 0 {
			problems = append(problems, fmt.Sprintf("pool %s: negative capacity figures", p.PoolID))
		}
	}
	for _, p := range s.data.Policies {
		if strings.TrimSpace(p.ID) == "" {
			problems = append(problems, "policy with empty id")
		}
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSnapshot, strings.Join(problems, "; "))
	}
	return s, nil
}

func index[T any](items []T, id func(T) string) (map[string]int, error) {
	out := make(map[string]int, len(items))
	for i, item := range items {
		key := id(item)
		if strings.TrimSpace(key) == "" {
			return nil, errors.New("empty id")
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("duplicate id %q", key)
		}
		out[key] = i
	}
	return out, nil
}

// LoadedAt returns when the underlying data was read from its source.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Data returns a copy of the raw catalog content.
func (s *Snapshot) Data() Data {
	return Data{
		Rates:          s.Rates(),
		Offers:         s.Offers(),
		Contracts:      s.Contracts(),
		Policies:       s.Policies(),
		Allocations:    s.Allocations(),
		PoolCapacities: s.PoolCapacities(),
	}
}

// Rate looks up a rate by id.
func (s *Snapshot) Rate(id string) (Rate, bool) {
	i, ok := s.rates[id]
	if !ok {
		return Rate{}, false
	}
	return copyRate(s.data.Rates[i]), true
}

// Offer looks up an offer by id.
func (s *Snapshot) Offer(id string) (Offer, bool) {
	i, ok := s.offers[id]
	if !ok {
		return Offer{}, false
	}
	return copyOffer(s.data.Offers[i]), true
}

// Contract looks up a contract by id.
func (s *Snapshot) Contract(id string) (Contract, bool) {
	i, ok := s.contracts[id]
	if !ok {
		return Contract{}, false
	}
	return s.data.Contracts[i], true
}

// PoolCapacity looks up the capacity rollup of a pool.
func (s *Snapshot) PoolCapacity(poolID string) (AllocationPoolCapacity, bool) {
	i, ok := s.pools[poolID]
	if !ok {
		return AllocationPoolCapacity{}, false
	}
	return s.data.PoolCapacities[i], true
}

// Rates returns a copy of all rates.
func (s *Snapshot) Rates() []Rate { return cloneEach(s.data.Rates, copyRate) }

// Offers returns a copy of all offers.
func (s *Snapshot) Offers() []Offer { return cloneEach(s.data.Offers, copyOffer) }

// Contracts returns a copy of all contracts.
func (s *Snapshot) Contracts() []Contract { return slices.Clone(s.data.Contracts) }

// Policies returns a copy of all pricing policies in their stored order.
func (s *Snapshot) Policies() []PricingPolicy { return cloneEach(s.data.Policies, copyPolicy) }

// Allocations returns a copy of all allocations.
func (s *Snapshot) Allocations() []Allocation { return cloneEach(s.data.Allocations, copyAllocation) }

// PoolCapacities returns a copy of all pool capacity rollups.
func (s *Snapshot) PoolCapacities() []AllocationPoolCapacity {
	return slices.Clone(s.data.PoolCapacities)
}

func cloneEach[T any](items []T, copyItem func(T) T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = copyItem(item)
	}
	return out
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyRate(r Rate) Rate {
	r.AllocationPoolID = copyString(r.AllocationPoolID)
	return r
}

func copyOffer(o Offer) Offer {
	o.RateID = copyString(o.RateID)
	o.TourID = copyString(o.TourID)
	return o
}

func copyPolicy(p PricingPolicy) PricingPolicy {
	p.Scope = PolicyScope{
		OfferID: copyString(p.Scope.OfferID),
		Channel: copyString(p.Scope.Channel),
		TourID:  copyString(p.Scope.TourID),
	}
	return p
}

func copyAllocation(a Allocation) Allocation {
	a.AllocationPoolID = copyString(a.AllocationPoolID)
	return a
}
