package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meatkart/meatkart/internal/domain/customer"
)

// uniqueViolation is the PostgreSQL error code for duplicate key rows.
const uniqueViolation = "23505"

const getCustomerSQL = `SELECT id, name, phone, wallet, created_at
	FROM customers WHERE id = $1`

const listAddressesSQL = `SELECT id, line, pincode, latitude, longitude
	FROM customer_addresses WHERE customer_id = $1 ORDER BY position`

const listCartSQL = `SELECT product_id, quantity, added_at
	FROM cart_items WHERE customer_id = $1`

const addCartItemSQL = `INSERT INTO cart_items (customer_id, product_id, quantity)
	VALUES ($1, $2, $3)`

const updateCartItemSQL = `UPDATE cart_items SET quantity = $3
	WHERE customer_id = $1 AND product_id = $2`

const removeCartItemSQL = `DELETE FROM cart_items
	WHERE customer_id = $1 AND product_id = $2`

const clearCartSQL = `DELETE FROM cart_items WHERE customer_id = $1`

const listHistorySQL = `SELECT order_id, ordered_at
	FROM order_history WHERE customer_id = $1 ORDER BY ordered_at DESC`

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*customer.Customer, error) {
	var c customer.Customer
	err := r.pool.QueryRow(ctx, getCustomerSQL, id).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Wallet, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting customer %q", id)
	}
	return &c, nil
}

func (r *CustomerRepository) ListAddresses(ctx context.Context, customerID string) ([]customer.Address, error) {
	rows, err := r.pool.Query(ctx, listAddressesSQL, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "listing addresses")
	}
	defer rows.Close()

	var out []customer.Address
	for rows.Next() {
		var a customer.Address
		if err := rows.Scan(&a.ID, &a.Line, &a.Pincode, &a.Latitude, &a.Longitude); err != nil {
			return nil, errors.Wrap(err, "scanning address row")
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *CustomerRepository) ListCart(ctx context.Context, customerID string) ([]customer.CartItem, error) {
	rows, err := r.pool.Query(ctx, listCartSQL, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "listing cart")
	}
	defer rows.Close()

	var out []customer.CartItem
	for rows.Next() {
		var it customer.CartItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.AddedAt); err != nil {
			return nil, errors.Wrap(err, "scanning cart row")
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// AddCartItem inserts a new cart line. The (customer, product) primary key
// turns a duplicate add into ErrAlreadyInCart rather than a merge.
func (r *CustomerRepository) AddCartItem(ctx context.Context, customerID, productID string, quantity int) error {
	_, err := r.pool.Exec(ctx, addCartItemSQL, customerID, productID, quantity)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return customer.ErrAlreadyInCart
		}
		return errors.Wrapf(err, "adding product %q to cart", productID)
	}
	return nil
}

func (r *CustomerRepository) UpdateCartItem(ctx context.Context, customerID, productID string, quantity int) error {
	tag, err := r.pool.Exec(ctx, updateCartItemSQL, customerID, productID, quantity)
	if err != nil {
		return errors.Wrapf(err, "updating cart line %q", productID)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotInCart
	}
	return nil
}

func (r *CustomerRepository) RemoveCartItem(ctx context.Context, customerID, productID string) error {
	tag, err := r.pool.Exec(ctx, removeCartItemSQL, customerID, productID)
	if err != nil {
		return errors.Wrapf(err, "removing cart line %q", productID)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotInCart
	}
	return nil
}

func (r *CustomerRepository) ClearCart(ctx context.Context, customerID string) error {
	if _, err := r.pool.Exec(ctx, clearCartSQL, customerID); err != nil {
		return errors.Wrap(err, "clearing cart")
	}
	return nil
}

func (r *CustomerRepository) ListHistory(ctx context.Context, customerID string) ([]customer.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, listHistorySQL, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "listing order history")
	}
	defer rows.Close()

	var out []customer.HistoryEntry
	for rows.Next() {
		var h customer.HistoryEntry
		if err := rows.Scan(&h.OrderID, &h.OrderedAt); err != nil {
			return nil, errors.Wrap(err, "scanning history row")
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
