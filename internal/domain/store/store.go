// Package store holds the fulfillment-store aggregate and the resolver that
// picks a fulfilling store for a checkout.
package store

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested store or manager does not exist.
	ErrNotFound = errors.New("store not found")
	// ErrNoStoreAvailable is returned when no active store can fulfill an order.
	ErrNoStoreAvailable = errors.New("no store available")
	// ErrNoManagerAssigned is returned when the nearest store has no manager.
	// This is a data-integrity problem, not a retryable condition.
	ErrNoManagerAssigned = errors.New("store has no manager assigned")
)

// Categories flags which meat types a store carries.
type Categories struct {
	Chicken bool `json:"chicken"`
	Mutton  bool `json:"mutton"`
	Seafood bool `json:"seafood"`
	Eggs    bool `json:"eggs"`
}

// Store is a physical fulfillment location. Latitude and Longitude are nil
// until the address has been geocoded; such stores are never selected by
// proximity. Soft-deleted stores keep their row with IsActive=false.
type Store struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Address    string     `json:"address"`
	Phone      *string    `json:"phone,omitempty"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	Pincode    int        `json:"pincode"`
	Categories Categories `json:"categories"`
	ManagerID  *string    `json:"managerId,omitempty"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Manager is the staff principal responsible for one store.
type Manager struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	StoreID   *string
	CreatedAt time.Time
}

// UpdateParams is the allow-list of store fields a manager may patch.
// Nil fields are left untouched; there is no blind merge of request bodies.
type UpdateParams struct {
	Name       *string
	Address    *string
	Phone      *string
	Latitude   *float64
	Longitude  *float64
	Pincode    *int
	Categories *Categories
	IsActive   *bool
}

// Repository defines persistence operations for stores and managers.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Store, error)
	// ListActive returns every active store.
	ListActive(ctx context.Context) ([]Store, error)
	// ListActiveByPincodeBand returns active stores whose pincode lies within
	// band of pin, ordered ascending by absolute pincode difference.
	ListActiveByPincodeBand(ctx context.Context, pin, band int) ([]Store, error)
	GetManager(ctx context.Context, id string) (*Manager, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Store, error)
}
