package repo_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tour-inventory/internal/catalog"
	"github.com/noah-isme/tour-inventory/internal/repo"
)

type fakeRows struct {
	rows [][]any
	idx  int
}

func (f *fakeRows) Close()                                       {}
func (f *fakeRows) Err() error                                   { return nil }
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) RawValues() [][]byte                          { return nil }
func (f *fakeRows) Conn() *pgx.Conn                              { return nil }

func (f *fakeRows) Next() bool {
	if f.idx >= len(f.rows) {
		return false
	}
	f.idx++
	return true
}

func (f *fakeRows) Values() ([]any, error) { return f.rows[f.idx-1], nil }

func (f *fakeRows) Scan(dest ...any) error {
	row := f.rows[f.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: got %d targets for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if row[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(row[i]))
	}
	return nil
}

type fakeDB struct {
	byTable map[string][][]any
	queries []string
}

func (f *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (f *fakeDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, sql)
	for table, rows := range f.byTable {
		if strings.Contains(sql, "FROM "+table) {
			return &fakeRows{rows: rows}, nil
		}
	}
	return &fakeRows{}, nil
}

func sp(s string) *string { return &s }

func TestQueriesScanCatalog(t *testing.T) {
	db := &fakeDB{byTable: map[string][][]any{
		"rates": {
			{"rate-1", "Standard", "100.5000", "EUR", sp("pool_a"), "130.0000"},
			{"rate-2", "", "80", "", (*string)(nil), "0"},
		},
		"offers": {
			{"off-1", "Summer", "con-1", sp("rate-1"), sp("tour-1")},
		},
		"contracts c": {
			{"con-1", "sup-1", "Alpine Coaches", "40.25", "EUR", "10", "0", "2.5"},
		},
		"pricing_policies": {
			{"pol-1", "B2B", (*string)(nil), sp("b2b"), (*string)(nil), "markup_pct", "20", true},
		},
		"allocations": {
			{"al-1", "prod-1", sp("pool_a"), int32(30), "sup-1", "con-1"},
		},
		"allocation_pool_capacity": {
			{"pool_a", "Glacier trip", int32(30), int32(12), int32(18)},
		},
	}}
	loader := repo.CatalogRepo{Q: repo.New(db)}

	data, err := loader.LoadCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, db.queries, 6)

	require.Len(t, data.Rates, 2)
	require.Equal(t, "100.5", data.Rates[0].BaseRate.String())
	require.Equal(t, "pool_a", *data.Rates[0].AllocationPoolID)
	require.Nil(t, data.Rates[1].AllocationPoolID)

	require.Equal(t, "tour-1", *data.Offers[0].TourID)
	require.Equal(t, "Alpine Coaches", data.Contracts[0].SupplierName)
	require.Equal(t, "2.5", data.Contracts[0].Economics.FeeAmount.String())

	require.Equal(t, catalog.StrategyMarkupPct, data.Policies[0].Strategy)
	require.Equal(t, "b2b", *data.Policies[0].Scope.Channel)
	require.Nil(t, data.Policies[0].Scope.OfferID)

	require.Equal(t, 30, data.Allocations[0].Quantity)
	require.Equal(t, 18, data.PoolCapacities[0].AvailableSpots)

	_, err = catalog.NewSnapshot(data, time.Now())
	require.NoError(t, err)
}

func TestQueriesRejectMalformedNumeric(t *testing.T) {
	db := &fakeDB{byTable: map[string][][]any{
		"rates": {{"rate-1", "", "not-a-number", "", (*string)(nil), "0"}},
	}}
	_, err := repo.New(db).ListRates(context.Background())
	require.ErrorContains(t, err, "rates.base_rate")
}

type failingQuerier struct {
	repo.CatalogQuerier
}

func (failingQuerier) ListRates(context.Context) ([]catalog.Rate, error) {
	return nil, errors.New("connection reset")
}

func TestCatalogRepoWrapsFailures(t *testing.T) {
	_, err := repo.CatalogRepo{Q: failingQuerier{}}.LoadCatalog(context.Background())
	require.ErrorContains(t, err, "list rates: connection reset")
}
