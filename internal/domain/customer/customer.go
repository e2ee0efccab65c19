// Package customer holds the customer aggregate: profile, wallet, saved
// addresses, and the mutable cart consumed by checkout.
package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested customer does not exist.
	ErrNotFound = errors.New("customer not found")
	// ErrAlreadyInCart is returned when a product is added to a cart that
	// already contains it. Re-adding is an error, never a quantity merge.
	ErrAlreadyInCart = errors.New("product already in cart")
	// ErrNotInCart is returned when updating or removing a product the cart
	// does not contain.
	ErrNotInCart = errors.New("product not in cart")
)

// Customer is a buyer principal. Wallet is a non-negative point balance
// redeemable at checkout.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	Wallet    int
	CreatedAt time.Time
}

// Address is one saved delivery address. Coordinates are nil when geocoding
// failed; checkout then relies on the coordinates sent with the request.
type Address struct {
	ID        string   `json:"id"`
	Line      string   `json:"line"`
	Pincode   string   `json:"pincode"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// CartItem is one cart line. A cart holds at most one line per product.
type CartItem struct {
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// HistoryEntry records a successfully placed order.
type HistoryEntry struct {
	OrderID   string    `json:"orderId"`
	OrderedAt time.Time `json:"orderedAt"`
}

// Repository defines persistence operations for customers and their carts.
// Wallet debits are not exposed here: the only wallet mutation happens
// inside the checkout transaction owned by the order repository.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Customer, error)
	ListAddresses(ctx context.Context, customerID string) ([]Address, error)

	ListCart(ctx context.Context, customerID string) ([]CartItem, error)
	AddCartItem(ctx context.Context, customerID, productID string, quantity int) error
	UpdateCartItem(ctx context.Context, customerID, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, customerID, productID string) error
	ClearCart(ctx context.Context, customerID string) error

	ListHistory(ctx context.Context, customerID string) ([]HistoryEntry, error)
}
