package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedSuppliersAndTours(db)
	seedPools(db)
	seedContracts(db)
	seedRates(db)
	seedOffers(db)
	seedPolicies(db)
	seedAllocations(db)

	log.Println("Seeding completed successfully!")
}

func exec(db *sql.DB, what, query string, args ...any) {
	if _, err := db.Exec(query, args...); err != nil {
		log.Printf("Failed to seed %s: %v", what, err)
	}
}

func seedSuppliersAndTours(db *sql.DB) {
	fmt.Println("Seeding Suppliers...")
	suppliers := []struct{ ID, Name string }{
		{"sup-aegean", "Aegean Coach Lines"},
		{"sup-cycladic", "Cycladic Ferries"},
		{"sup-olive", "Olive Grove Guides"},
	}
	for _, s := range suppliers {
		exec(db, "supplier "+s.ID, `
			INSERT INTO suppliers (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;
		`, s.ID, s.Name)
	}

	fmt.Println("Seeding Tours...")
	tours := []struct{ ID, Name string }{
		{"tour-athens", "Athens Highlights Day Tour"},
		{"tour-santorini", "Santorini Sunset Cruise"},
	}
	for _, t := range tours {
		exec(db, "tour "+t.ID, `
			INSERT INTO tours (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;
		`, t.ID, t.Name)
	}
}

func seedPools(db *sql.DB) {
	fmt.Println("Seeding Allocation Pools...")
	pools := []struct {
		ID       string
		Item     string
		Capacity int
		Bookings int
	}{
		{"pool-athens-am", "Athens morning coach seats", 50, 20},
		{"pool-santorini", "Santorini catamaran berths", 30, 12},
	}
	for _, p := range pools {
		exec(db, "pool "+p.ID, `
			INSERT INTO allocation_pools (id, item_name, total_capacity, current_bookings)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET item_name = EXCLUDED.item_name,
				total_capacity = EXCLUDED.total_capacity,
				current_bookings = EXCLUDED.current_bookings,
				updated_at = now();
		`, p.ID, p.Item, p.Capacity, p.Bookings)
	}
}

func seedContracts(db *sql.DB) {
	fmt.Println("Seeding Contracts...")
	contracts := []struct {
		ID, Supplier, Cost, Currency string
	}{
		{"ctr-aegean-2026", "sup-aegean", "38.50", "EUR"},
		{"ctr-olive-2026", "sup-olive", "41.00", "EUR"},
		{"ctr-cycladic-2026", "sup-cycladic", "72.00", "EUR"},
	}
	for _, c := range contracts {
		exec(db, "contract "+c.ID, `
			INSERT INTO contracts (id, supplier_id, cost_per_unit, cost_currency)
			VALUES ($1, $2, $3::numeric, $4)
			ON CONFLICT (id) DO UPDATE SET cost_per_unit = EXCLUDED.cost_per_unit,
				cost_currency = EXCLUDED.cost_currency;
		`, c.ID, c.Supplier, c.Cost, c.Currency)
	}
}

func seedRates(db *sql.DB) {
	fmt.Println("Seeding Rates...")
	rates := []struct {
		ID, Name, Base, Currency, Pool, Selling string
	}{
		{"rate-athens-adult", "Athens adult", "55.00", "EUR", "pool-athens-am", "79.00"},
		{"rate-athens-child", "Athens child", "35.00", "EUR", "pool-athens-am", "49.00"},
		{"rate-santorini-adult", "Santorini adult", "95.00", "EUR", "pool-santorini", "139.00"},
	}
	for _, r := range rates {
		exec(db, "rate "+r.ID, `
			INSERT INTO rates (id, name, base_rate, currency, allocation_pool_id, selling_price)
			VALUES ($1, $2, $3::numeric, $4, $5, $6::numeric)
			ON CONFLICT (id) DO UPDATE SET base_rate = EXCLUDED.base_rate,
				selling_price = EXCLUDED.selling_price;
		`, r.ID, r.Name, r.Base, r.Currency, r.Pool, r.Selling)
	}
}

func seedOffers(db *sql.DB) {
	fmt.Println("Seeding Offers...")
	offers := []struct {
		ID, Name, Contract, Rate, Tour string
	}{
		{"offer-athens-web", "Athens highlights (web)", "ctr-aegean-2026", "rate-athens-adult", "tour-athens"},
		{"offer-athens-trade", "Athens highlights (trade)", "ctr-aegean-2026", "rate-athens-adult", "tour-athens"},
		{"offer-santorini", "Santorini sunset", "ctr-cycladic-2026", "rate-santorini-adult", "tour-santorini"},
	}
	for _, o := range offers {
		exec(db, "offer "+o.ID, `
			INSERT INTO offers (id, name, contract_id, rate_id, tour_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET contract_id = EXCLUDED.contract_id;
		`, o.ID, o.Name, o.Contract, o.Rate, o.Tour)
	}
}

func seedPolicies(db *sql.DB) {
	fmt.Println("Seeding Pricing Policies...")
	policies := []struct {
		ID, Name        string
		Offer, Channel  *string
		Tour            *string
		Strategy, Value string
		Position        int
	}{
		{"pol-global", "Default 25% margin", nil, nil, nil, "markup_pct", "25", 0},
		{"pol-b2b", "Trade commission", nil, strPtr("b2b"), nil, "agent_commission", "15", 1},
		{"pol-santorini", "Santorini premium", strPtr("offer-santorini"), nil, strPtr("tour-santorini"), "markup_pct", "40", 2},
		{"pol-athens-web", "Athens web fixed price", strPtr("offer-athens-web"), nil, nil, "gross_fixed", "75", 3},
	}
	for _, p := range policies {
		exec(db, "policy "+p.ID, `
			INSERT INTO pricing_policies (id, name, scope_offer_id, scope_channel, scope_tour_id, strategy, value, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8)
			ON CONFLICT (id) DO UPDATE SET strategy = EXCLUDED.strategy,
				value = EXCLUDED.value,
				position = EXCLUDED.position;
		`, p.ID, p.Name, p.Offer, p.Channel, p.Tour, p.Strategy, p.Value, p.Position)
	}
}

func seedAllocations(db *sql.DB) {
	fmt.Println("Seeding Allocations...")
	allocations := []struct {
		ID, Product, Pool, Supplier, Contract string
		Quantity                              int
	}{
		{"alloc-athens-aegean", "coach-seat", "pool-athens-am", "sup-aegean", "ctr-aegean-2026", 30},
		{"alloc-athens-olive", "guide-seat", "pool-athens-am", "sup-olive", "ctr-olive-2026", 20},
		{"alloc-santorini", "berth", "pool-santorini", "sup-cycladic", "ctr-cycladic-2026", 30},
	}
	for _, a := range allocations {
		exec(db, "allocation "+a.ID, `
			INSERT INTO allocations (id, product_id, allocation_pool_id, quantity, supplier_id, contract_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET quantity = EXCLUDED.quantity;
		`, a.ID, a.Product, a.Pool, a.Quantity, a.Supplier, a.Contract)
	}
}

func strPtr(s string) *string { return &s }
