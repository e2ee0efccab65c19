// Package catalog holds the product catalog read and pricing-maintenance
// surface consumed by checkout.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

var hundred = decimal.NewFromInt(100)

// Product is a catalog item. DiscountPrice is derived from Price and
// Discount and recomputed on every pricing change; it is never written
// directly.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Discount      decimal.Decimal `json:"discount"`
	DiscountPrice decimal.Decimal `json:"discountPrice"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// StockEntry records how many units a manager holds for a product.
type StockEntry struct {
	ManagerID string `json:"managerId"`
	Quantity  int    `json:"quantity"`
}

// DiscountPrice computes the discounted unit price for a base price and a
// percentage discount, rounded half-up to two decimal places.
func DiscountPrice(price, discount decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discount.Div(hundred))
	return price.Mul(factor).Round(2)
}

// Recalculate refreshes the derived DiscountPrice from the current Price and
// Discount.
func (p *Product) Recalculate() {
	p.DiscountPrice = DiscountPrice(p.Price, p.Discount)
}

// Repository defines catalog persistence operations.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	// UpdatePricing sets the price and discount of a product and stores the
	// recomputed discount price in the same statement.
	UpdatePricing(ctx context.Context, id string, price, discount decimal.Decimal) (*Product, error)
	// Stock returns the per-manager stock ledger for a product.
	Stock(ctx context.Context, productID string) ([]StockEntry, error)
}
