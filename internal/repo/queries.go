package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/tour-inventory/internal/catalog"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries reads catalog tables. Numeric columns are selected as text and
// parsed into decimals so no precision is lost on the way.
type Queries struct {
	DB DBTX
}

// New constructs Queries over db.
func New(db DBTX) *Queries {
	return &Queries{DB: db}
}

const listRates = `SELECT id, name, base_rate::text, currency, allocation_pool_id, selling_price::text
FROM rates ORDER BY id`

// ListRates returns every rate.
func (q *Queries) ListRates(ctx context.Context) ([]catalog.Rate, error) {
	return collect(ctx, q.DB, listRates, func(row pgx.CollectableRow) (catalog.Rate, error) {
		var r catalog.Rate
		var base, selling string
		if err := row.Scan(&r.ID, &r.Name, &base, &r.Currency, &r.AllocationPoolID, &selling); err != nil {
			return r, err
		}
		var err error
		if r.BaseRate, err = parseDecimal("rates.base_rate", base); err != nil {
			return r, err
		}
		r.SellingPrice, err = parseDecimal("rates.selling_price", selling)
		return r, err
	})
}

const listOffers = `SELECT id, name, contract_id, rate_id, tour_id FROM offers ORDER BY id`

// ListOffers returns every offer.
func (q *Queries) ListOffers(ctx context.Context) ([]catalog.Offer, error) {
	return collect(ctx, q.DB, listOffers, func(row pgx.CollectableRow) (catalog.Offer, error) {
		var o catalog.Offer
		err := row.Scan(&o.ID, &o.Name, &o.ContractID, &o.RateID, &o.TourID)
		return o, err
	})
}

const listContracts = `SELECT c.id, c.supplier_id, s.name, c.cost_per_unit::text, c.cost_currency,
       c.commission_pct::text, c.vat_pct::text, c.fee_amount::text
FROM contracts c
JOIN suppliers s ON s.id = c.supplier_id
ORDER BY c.id`

// ListContracts returns every contract with its supplier name.
func (q *Queries) ListContracts(ctx context.Context) ([]catalog.Contract, error) {
	return collect(ctx, q.DB, listContracts, func(row pgx.CollectableRow) (catalog.Contract, error) {
		var c catalog.Contract
		var cost, commission, vat, fee string
		if err := row.Scan(&c.ID, &c.SupplierID, &c.SupplierName, &cost, &c.CostCurrency, &commission, &vat, &fee); err != nil {
			return c, err
		}
		var err error
		if c.CostPerUnit, err = parseDecimal("contracts.cost_per_unit", cost); err != nil {
			return c, err
		}
		if c.Economics.CommissionPct, err = parseDecimal("contracts.commission_pct", commission); err != nil {
			return c, err
		}
		if c.Economics.VATPct, err = parseDecimal("contracts.vat_pct", vat); err != nil {
			return c, err
		}
		c.Economics.FeeAmount, err = parseDecimal("contracts.fee_amount", fee)
		return c, err
	})
}

// Policies keep their configured position; resolution ties depend on it.
const listPolicies = `SELECT id, name, scope_offer_id, scope_channel, scope_tour_id, strategy, value::text, active
FROM pricing_policies ORDER BY position, created_at, id`

// ListPolicies returns every pricing policy, active or not.
func (q *Queries) ListPolicies(ctx context.Context) ([]catalog.PricingPolicy, error) {
	return collect(ctx, q.DB, listPolicies, func(row pgx.CollectableRow) (catalog.PricingPolicy, error) {
		var p catalog.PricingPolicy
		var strategy, value string
		if err := row.Scan(&p.ID, &p.Name, &p.Scope.OfferID, &p.Scope.Channel, &p.Scope.TourID, &strategy, &value, &p.Active); err != nil {
			return p, err
		}
		p.Strategy = catalog.Strategy(strategy)
		var err error
		p.Value, err = parseDecimal("pricing_policies.value", value)
		return p, err
	})
}

const listAllocations = `SELECT id, product_id, allocation_pool_id, quantity, supplier_id, contract_id
FROM allocations ORDER BY created_at, id`

// ListAllocations returns every allocation in creation order.
func (q *Queries) ListAllocations(ctx context.Context) ([]catalog.Allocation, error) {
	return collect(ctx, q.DB, listAllocations, func(row pgx.CollectableRow) (catalog.Allocation, error) {
		var a catalog.Allocation
		var qty int32
		err := row.Scan(&a.ID, &a.ProductID, &a.AllocationPoolID, &qty, &a.SupplierID, &a.ContractID)
		a.Quantity = int(qty)
		return a, err
	})
}

const listPoolCapacities = `SELECT pool_id, item_name, total_capacity, current_bookings, available_spots
FROM allocation_pool_capacity ORDER BY pool_id`

// ListPoolCapacities returns the capacity rollup of every pool.
func (q *Queries) ListPoolCapacities(ctx context.Context) ([]catalog.AllocationPoolCapacity, error) {
	return collect(ctx, q.DB, listPoolCapacities, func(row pgx.CollectableRow) (catalog.AllocationPoolCapacity, error) {
		var c catalog.AllocationPoolCapacity
		var total, booked, available int32
		err := row.Scan(&c.PoolID, &c.ItemName, &total, &booked, &available)
		c.TotalCapacity, c.CurrentBookings, c.AvailableSpots = int(total), int(booked), int(available)
		return c, err
	})
}

func collect[T any](ctx context.Context, db DBTX, sql string, fn pgx.RowToFunc[T]) ([]T, error) {
	rows, err := db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, fn)
}

func parseDecimal(column, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s: %w", column, err)
	}
	return d, nil
}
