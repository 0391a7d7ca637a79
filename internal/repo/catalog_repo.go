package repo

import (
	"context"
	"fmt"

	"github.com/noah-isme/tour-inventory/internal/catalog"
)

// CatalogQuerier lists the catalog tables.
type CatalogQuerier interface {
	ListRates(ctx context.Context) ([]catalog.Rate, error)
	ListOffers(ctx context.Context) ([]catalog.Offer, error)
	ListContracts(ctx context.Context) ([]catalog.Contract, error)
	ListPolicies(ctx context.Context) ([]catalog.PricingPolicy, error)
	ListAllocations(ctx context.Context) ([]catalog.Allocation, error)
	ListPoolCapacities(ctx context.Context) ([]catalog.AllocationPoolCapacity, error)
}

// CatalogRepo assembles a full catalog read for snapshot building.
type CatalogRepo struct {
	Q CatalogQuerier
}

// LoadCatalog reads every catalog table. Any failure aborts the whole read.
func (r CatalogRepo) LoadCatalog(ctx context.Context) (catalog.Data, error) {
	var (
		data catalog.Data
		err  error
	)
	if data.Rates, err = r.Q.ListRates(ctx); err != nil {
		return catalog.Data{}, fmt.Errorf("list rates: %w", err)
	}
	if data.Offers, err = r.Q.ListOffers(ctx); err != nil {
		return catalog.Data{}, fmt.Errorf("list offers: %w", err)
	}
	if data.Contracts, err = r.Q.ListContracts(ctx); err != nil {
		return catalog.Data{}, fmt.Errorf("list contracts: %w", err)
	}
	if data.Policies, err = r.Q.ListPolicies(ctx); err != nil {
		return catalog.Data{}, fmt.Errorf("list policies: %w", err)
	}
	if data.Allocations, err = r.Q.ListAllocations(ctx); err != nil {
		return catalog.Data{}, fmt.Errorf("list allocations: %w", err)
	}
	if data.PoolCapacities, err = r.Q.ListPoolCapacities(ctx); err != nil {
		return catalog.Data{}, fmt.Errorf("list pool capacities: %w", err)
	}
	return data, nil
}
