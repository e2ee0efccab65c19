package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/meatkart/meatkart/internal/domain/coupon"
)

// DeliveryFee is the flat surcharge added to every order after discounting.
var DeliveryFee = decimal.NewFromInt(39)

// minWalletSubtotal is the smallest subtotal eligible for wallet redemption.
var minWalletSubtotal = decimal.NewFromInt(500)

var hundred = decimal.NewFromInt(100)

// Quote is the priced outcome of a cart. WalletDebit is the number of points
// to deduct from the customer's balance; it is applied only inside the
// checkout transaction, never by the pricer itself.
type Quote struct {
	Subtotal    decimal.Decimal
	Total       decimal.Decimal
	WalletDebit int
	CouponID    string
}

// Pricer computes order totals. At most one discount mechanism applies per
// order; wallet redemption takes precedence when both are requested.
type Pricer struct {
	coupons coupon.Repository
}

// NewPricer creates a Pricer backed by the given coupon repository.
func NewPricer(coupons coupon.Repository) *Pricer {
	return &Pricer{coupons: coupons}
}

// Quote prices the snapshotted line items. Line subtotals use the base unit
// price captured in the snapshot; per-product discounts do not apply here.
//
// Wallet redemption requires a subtotal of at least 500 and sufficient
// balance. Coupons are looked up by id; expiry is intentionally not checked
// on this path. The total is not clamped at zero: an oversized discount
// flows through as-is.
func (p *Pricer) Quote(ctx context.Context, items []LineItem, walletPoints int, couponID string, walletBalance int) (*Quote, error) {
	subtotal := decimal.Zero
	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		subtotal = subtotal.Add(it.UnitPrice.Mul(qty))
	}

	q := &Quote{Subtotal: subtotal, Total: subtotal}

	switch {
	case walletPoints > 0:
		if subtotal.LessThan(minWalletSubtotal) {
			return nil, ErrMinimumOrderNotMet
		}
		if walletBalance < walletPoints {
			return nil, ErrInsufficientWallet
		}
		q.Total = subtotal.Sub(decimal.NewFromInt(int64(walletPoints)))
		q.WalletDebit = walletPoints

	case couponID != "":
		c, err := p.coupons.GetByID(ctx, couponID)
		if err != nil {
			return nil, errors.Wrapf(err, "get coupon %s", couponID)
		}
		discount := subtotal.Mul(c.DiscountPercent).Div(hundred)
		q.Total = subtotal.Sub(discount)
		q.CouponID = c.ID
	}

	q.Total = q.Total.Add(DeliveryFee).Round(2)

	return q, nil
}
