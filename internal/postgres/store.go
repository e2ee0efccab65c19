package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meatkart/meatkart/internal/domain/store"
)

const storeColumns = `id, name, address, phone, latitude, longitude, pincode,
	sells_chicken, sells_mutton, sells_seafood, sells_eggs,
	manager_id, is_active, created_at`

const getStoreSQL = `SELECT ` + storeColumns + ` FROM stores WHERE id = $1`

const listActiveStoresSQL = `SELECT ` + storeColumns + `
	FROM stores WHERE is_active ORDER BY id`

const listStoresByBandSQL = `SELECT ` + storeColumns + `
	FROM stores
	WHERE is_active AND ABS(pincode - $1) <= $2
	ORDER BY ABS(pincode - $1), id`

const getManagerSQL = `SELECT id, name, phone, email, store_id, created_at
	FROM managers WHERE id = $1`

var _ store.Repository = (*StoreRepository)(nil)

// StoreRepository implements store.Repository backed by PostgreSQL.
type StoreRepository struct {
	pool *pgxpool.Pool
}

// NewStoreRepository returns a StoreRepository that uses the given pool.
func NewStoreRepository(pool *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{pool: pool}
}

func (r *StoreRepository) GetByID(ctx context.Context, id string) (*store.Store, error) {
	s, err := scanStore(r.pool.QueryRow(ctx, getStoreSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting store %q", id)
	}
	return s, nil
}

func (r *StoreRepository) ListActive(ctx context.Context) ([]store.Store, error) {
	rows, err := r.pool.Query(ctx, listActiveStoresSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing active stores")
	}
	return collectStores(rows)
}

func (r *StoreRepository) ListActiveByPincodeBand(ctx context.Context, pin, band int) ([]store.Store, error) {
	rows, err := r.pool.Query(ctx, listStoresByBandSQL, pin, band)
	if err != nil {
		return nil, errors.Wrapf(err, "listing stores near pincode %d", pin)
	}
	return collectStores(rows)
}

func (r *StoreRepository) GetManager(ctx context.Context, id string) (*store.Manager, error) {
	var m store.Manager
	err := r.pool.QueryRow(ctx, getManagerSQL, id).Scan(
		&m.ID, &m.Name, &m.Phone, &m.Email, &m.StoreID, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting manager %q", id)
	}
	return &m, nil
}

// Update applies the non-nil fields of params. The SET clause is built from
// the explicit allow-list only.
func (r *StoreRepository) Update(ctx context.Context, id string, params store.UpdateParams) (*store.Store, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}

	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Address != nil {
		add("address", *params.Address)
	}
	if params.Phone != nil {
		add("phone", *params.Phone)
	}
	if params.Latitude != nil {
		add("latitude", *params.Latitude)
	}
	if params.Longitude != nil {
		add("longitude", *params.Longitude)
	}
	if params.Pincode != nil {
		add("pincode", *params.Pincode)
	}
	if params.Categories != nil {
		add("sells_chicken", params.Categories.Chicken)
		add("sells_mutton", params.Categories.Mutton)
		add("sells_seafood", params.Categories.Seafood)
		add("sells_eggs", params.Categories.Eggs)
	}
	if params.IsActive != nil {
		add("is_active", *params.IsActive)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	sql := "UPDATE stores SET " + strings.Join(sets, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING " + storeColumns

	s, err := scanStore(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrapf(err, "updating store %q", id)
	}
	return s, nil
}

func scanStore(row pgx.Row) (*store.Store, error) {
	var s store.Store
	err := row.Scan(
		&s.ID, &s.Name, &s.Address, &s.Phone, &s.Latitude, &s.Longitude, &s.Pincode,
		&s.Categories.Chicken, &s.Categories.Mutton, &s.Categories.Seafood, &s.Categories.Eggs,
		&s.ManagerID, &s.IsActive, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectStores(rows pgx.Rows) ([]store.Store, error) {
	defer rows.Close()

	var out []store.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning store row")
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
