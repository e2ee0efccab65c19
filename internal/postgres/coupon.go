package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meatkart/meatkart/internal/domain/coupon"
)

const couponColumns = `id, code, discount_percent, expires_at, redemption_limit, created_at`

const getCouponSQL = `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

// listAvailableCouponsSQL filters expired coupons. This is the only path
// that enforces expiry; checkout pricing intentionally does not.
const listAvailableCouponsSQL = `SELECT c.id, c.code, c.discount_percent, c.expires_at, c.redemption_limit, c.created_at
	FROM coupons c
	JOIN customer_coupons cc ON cc.coupon_id = c.id
	WHERE cc.customer_id = $1 AND c.expires_at > $2
	ORDER BY c.expires_at`

const upsertCouponSQL = `INSERT INTO coupons (id, code, discount_percent, expires_at, redemption_limit)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (code) DO UPDATE SET
		discount_percent = EXCLUDED.discount_percent,
		expires_at = EXCLUDED.expires_at,
		redemption_limit = EXCLUDED.redemption_limit`

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

func (r *CouponRepository) GetByID(ctx context.Context, id string) (*coupon.Coupon, error) {
	c, err := scanCoupon(r.pool.QueryRow(ctx, getCouponSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting coupon %q", id)
	}
	return c, nil
}

func (r *CouponRepository) ListAvailable(ctx context.Context, customerID string, now time.Time) ([]coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, listAvailableCouponsSQL, customerID, now)
	if err != nil {
		return nil, errors.Wrap(err, "listing available coupons")
	}
	defer rows.Close()

	var out []coupon.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning coupon row")
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *CouponRepository) Upsert(ctx context.Context, c *coupon.Coupon) error {
	_, err := r.pool.Exec(ctx, upsertCouponSQL,
		c.ID, c.Code, c.DiscountPercent, c.ExpiresAt, c.RedemptionLimit,
	)
	if err != nil {
		return errors.Wrapf(err, "upserting coupon %q", c.Code)
	}
	return nil
}

func scanCoupon(row pgx.Row) (*coupon.Coupon, error) {
	var c coupon.Coupon
	err := row.Scan(
		&c.ID, &c.Code, &c.DiscountPercent, &c.ExpiresAt, &c.RedemptionLimit, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
