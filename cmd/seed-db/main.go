// Command seed-db provisions a development database: it runs migrations and
// loads stores, managers, products, and demo principals from a JSON fixture.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meatkart/meatkart/internal/domain/catalog"
	"github.com/meatkart/meatkart/internal/postgres"
)

type seedFile struct {
	Managers  []managerJSON  `json:"managers"`
	Stores    []storeJSON    `json:"stores"`
	Products  []productJSON  `json:"products"`
	Customers []customerJSON `json:"customers"`
	Partners  []partnerJSON  `json:"partners"`
}

type managerJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type storeJSON struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Phone     *string  `json:"phone"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Pincode   int      `json:"pincode"`
	ManagerID *string  `json:"managerId"`
	Sells     struct {
		Chicken bool `json:"chicken"`
		Mutton  bool `json:"mutton"`
		Seafood bool `json:"seafood"`
		Eggs    bool `json:"eggs"`
	} `json:"sells"`
}

type productJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Stock       []struct {
		ManagerID string `json:"managerId"`
		Quantity  int    `json:"quantity"`
	} `json:"stock"`
}

type customerJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Wallet int    `json:"wallet"`
}

type partnerJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func main() {
	var (
		databaseURL string
		seedPath    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/seed.json", "path to seed JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath string) error {
	slog.Info("reading seed file", slog.String("path", seedPath))

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed JSON")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedManagers(ctx, pool, seed.Managers); err != nil {
		return errors.Wrap(err, "seed managers")
	}
	if err := seedStores(ctx, pool, seed.Stores); err != nil {
		return errors.Wrap(err, "seed stores")
	}
	if err := seedProducts(ctx, pool, seed.Products); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedCustomers(ctx, pool, seed.Customers); err != nil {
		return errors.Wrap(err, "seed customers")
	}
	if err := seedPartners(ctx, pool, seed.Partners); err != nil {
		return errors.Wrap(err, "seed partners")
	}

	return nil
}

func seedManagers(ctx context.Context, pool *pgxpool.Pool, managers []managerJSON) error {
	slog.Info("upserting managers", slog.Int("count", len(managers)))

	const q = `INSERT INTO managers (id, name, phone, email)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = $2, phone = $3, email = $4`

	for _, m := range managers {
		if _, err := pool.Exec(ctx, q, m.ID, m.Name, m.Phone, m.Email); err != nil {
			return errors.Wrapf(err, "upsert manager %s", m.ID)
		}
	}
	return nil
}

func seedStores(ctx context.Context, pool *pgxpool.Pool, stores []storeJSON) error {
	slog.Info("upserting stores", slog.Int("count", len(stores)))

	const q = `INSERT INTO stores
		(id, name, address, phone, latitude, longitude, pincode,
		 sells_chicken, sells_mutton, sells_seafood, sells_eggs, manager_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			name = $2, address = $3, phone = $4, latitude = $5, longitude = $6,
			pincode = $7, sells_chicken = $8, sells_mutton = $9,
			sells_seafood = $10, sells_eggs = $11, manager_id = $12`

	for _, s := range stores {
		if _, err := pool.Exec(ctx, q,
			s.ID, s.Name, s.Address, s.Phone, s.Latitude, s.Longitude, s.Pincode,
			s.Sells.Chicken, s.Sells.Mutton, s.Sells.Seafood, s.Sells.Eggs, s.ManagerID,
		); err != nil {
			return errors.Wrapf(err, "upsert store %s", s.ID)
		}
		slog.Info("upserted store", slog.String("id", s.ID), slog.String("name", s.Name))
	}
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, products []productJSON) error {
	slog.Info("upserting products", slog.Int("count", len(products)))

	const q = `INSERT INTO products (id, name, description, price, discount, discount_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = $2, description = $3, price = $4, discount = $5, discount_price = $6`

	const stockQ = `INSERT INTO product_stock (product_id, manager_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, manager_id) DO UPDATE SET quantity = $3`

	for _, p := range products {
		discounted := catalog.DiscountPrice(p.Price, p.Discount)
		if _, err := pool.Exec(ctx, q, p.ID, p.Name, p.Description, p.Price, p.Discount, discounted); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		for _, st := range p.Stock {
			if _, err := pool.Exec(ctx, stockQ, p.ID, st.ManagerID, st.Quantity); err != nil {
				return errors.Wrapf(err, "upsert stock for product %s", p.ID)
			}
		}
		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}
	return nil
}

func seedCustomers(ctx context.Context, pool *pgxpool.Pool, customers []customerJSON) error {
	slog.Info("upserting customers", slog.Int("count", len(customers)))

	const q = `INSERT INTO customers (id, name, phone, wallet)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = $2, phone = $3, wallet = $4`

	for _, c := range customers {
		if _, err := pool.Exec(ctx, q, c.ID, c.Name, c.Phone, c.Wallet); err != nil {
			return errors.Wrapf(err, "upsert customer %s", c.ID)
		}
	}
	return nil
}

func seedPartners(ctx context.Context, pool *pgxpool.Pool, partners []partnerJSON) error {
	slog.Info("upserting delivery partners", slog.Int("count", len(partners)))

	const q = `INSERT INTO delivery_partners (id, name, phone, status, is_active)
		VALUES ($1, $2, $3, 'verified', TRUE)
		ON CONFLICT (id) DO UPDATE SET name = $2, phone = $3`

	for _, p := range partners {
		if _, err := pool.Exec(ctx, q, p.ID, p.Name, p.Phone); err != nil {
			return errors.Wrapf(err, "upsert partner %s", p.ID)
		}
	}
	return nil
}
