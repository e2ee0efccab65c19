// Package coupon holds percentage promo codes assignable to customers.
package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested coupon does not exist.
var ErrNotFound = errors.New("coupon not found")

// Coupon is a redeemable percentage discount. A coupon is usable only while
// now < ExpiresAt; the expiry check is applied by ListAvailable, not by the
// checkout pricing path.
type Coupon struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	ExpiresAt       time.Time       `json:"expiresAt"`
	RedemptionLimit int             `json:"redemptionLimit"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Repository defines persistence operations for coupons.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Coupon, error)
	// ListAvailable returns the unexpired coupons assigned to a customer.
	ListAvailable(ctx context.Context, customerID string, now time.Time) ([]Coupon, error)
	// Upsert inserts a coupon or refreshes an existing code. Used by the
	// promo-ingest pipeline.
	Upsert(ctx context.Context, c *Coupon) error
}
