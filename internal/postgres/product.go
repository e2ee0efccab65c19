package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meatkart/meatkart/internal/domain/catalog"
)

const productColumns = `id, name, description, price, discount, discount_price, created_at`

const getProductSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

const listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY id`

const updatePricingSQL = `UPDATE products
	SET price = $2, discount = $3, discount_price = $4
	WHERE id = $1
	RETURNING ` + productColumns

const productStockSQL = `SELECT manager_id, quantity
	FROM product_stock WHERE product_id = $1 ORDER BY manager_id`

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, getProductSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting product %q", id)
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing products")
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning product row")
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdatePricing writes price, discount, and the recomputed discount price in
// one statement so the derived column can never drift.
func (r *ProductRepository) UpdatePricing(ctx context.Context, id string, price, discount decimal.Decimal) (*catalog.Product, error) {
	discountPrice := catalog.DiscountPrice(price, discount)

	p, err := scanProduct(r.pool.QueryRow(ctx, updatePricingSQL, id, price, discount, discountPrice))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "updating pricing for product %q", id)
	}
	return p, nil
}

func (r *ProductRepository) Stock(ctx context.Context, productID string) ([]catalog.StockEntry, error) {
	rows, err := r.pool.Query(ctx, productStockSQL, productID)
	if err != nil {
		return nil, errors.Wrapf(err, "reading stock for product %q", productID)
	}
	defer rows.Close()

	var out []catalog.StockEntry
	for rows.Next() {
		var e catalog.StockEntry
		if err := rows.Scan(&e.ManagerID, &e.Quantity); err != nil {
			return nil, errors.Wrap(err, "scanning stock row")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (*catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Discount, &p.DiscountPrice, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
