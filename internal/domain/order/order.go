// Package order implements the order lifecycle: checkout, pricing, the
// status state machine, and the delivery-partner claim protocol.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order operations. Wrong-state and wrong-owner
// lifecycle failures are both reported as ErrNotFound so that callers
// cannot probe for the existence or ownership of orders they do not hold.
var (
	ErrNotFound           = errors.New("order not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrMissingCoordinates = errors.New("delivery coordinates required")
	ErrNoteRequired       = errors.New("cancellation note required")
	ErrReasonRequired     = errors.New("rejection reason required")
	ErrOrderTaken         = errors.New("order already claimed by another partner")
	ErrInsufficientWallet = errors.New("insufficient wallet balance")
	ErrMinimumOrderNotMet = errors.New("minimum order amount not met for wallet redemption")
	ErrInvalidTransition  = errors.New("invalid status transition")
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusPickedUp  Status = "picked_up"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// transitions is the single source of truth for the state machine. Every
// status change anywhere in the system goes through CanTransition; there are
// no per-endpoint string comparisons.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusPickedUp, StatusCancelled},
	StatusPickedUp:  {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusDelivered, StatusCancelled},
	StatusDelivered: nil,
	StatusCancelled: nil,
}

// prepChain maps each manager-advanceable status to its required
// predecessor.
var prepChain = map[Status]Status{
	StatusConfirmed: StatusPending,
	StatusPreparing: StatusConfirmed,
	StatusReady:     StatusPreparing,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// LineItem is one snapshotted order line. Items are captured at checkout
// from the live catalog and never re-derived afterwards, so later price or
// discount edits cannot retroactively alter historical orders.
type LineItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Order is an immutable-snapshot transaction record. PickedUpBy may differ
// from DeliveryPartnerID only transiently during the claim race; once a
// claim commits they are equal.
type Order struct {
	ID                string
	CustomerID        string
	StoreID           string
	ManagerID         string
	DeliveryPartnerID *string
	PickedUpBy        *string
	Items             []LineItem
	Amount            decimal.Decimal
	Location          string
	Pincode           string
	Latitude          *float64
	Longitude         *float64
	Notes             string
	IsUrgent          bool
	Status            Status
	EstimatedDelivery *time.Time
	ActualDelivery    *time.Time
	CreatedAt         time.Time
}

// ClaimResult is the outcome of a successful partner claim.
type ClaimResult struct {
	Order *Order
	// NewlyClaimed is false on an idempotent re-accept by the partner that
	// already holds the order.
	NewlyClaimed bool
}

// Repository defines persistence operations for orders. Methods that guard
// on status or ownership push the condition into a single conditional write
// at the database, never a read followed by a write.
type Repository interface {
	// Checkout persists the order, appends the customer's order history,
	// clears the cart, and debits the wallet, all in one transaction. A
	// failure at any step leaves cart and wallet untouched.
	Checkout(ctx context.Context, o *Order, walletDebit int) error

	GetByID(ctx context.Context, id string) (*Order, error)
	ListForCustomer(ctx context.Context, customerID string) ([]Order, error)

	// AdvanceForManager moves an order from 'from' to 'to' iff the order is
	// owned by the manager's store and currently in 'from'. Returns
	// ErrNotFound when no row matches.
	AdvanceForManager(ctx context.Context, orderID, managerID string, from, to Status) (*Order, error)

	// Claim atomically assigns a ready order to the partner. The write is a
	// single conditional update keyed on status='ready' and an unassigned or
	// self-assigned partner; a losing racer gets ErrOrderTaken and mutates
	// nothing. First-time claims also insert the assignment row and bump the
	// partner's accepted counter in the same transaction.
	Claim(ctx context.Context, orderID, partnerID string) (*ClaimResult, error)

	// StartDelivery moves a picked-up order held by the partner to
	// in_transit and stamps the estimated delivery time.
	StartDelivery(ctx context.Context, orderID, partnerID string, eta time.Time) (*Order, error)

	// CompleteDelivery moves an in-transit order held by the partner to
	// delivered, stamps the actual delivery time, and bumps the partner's
	// delivery counter in the same transaction.
	CompleteDelivery(ctx context.Context, orderID, partnerID string, at time.Time) (*Order, error)

	// AbortDelivery cancels a picked-up or in-transit order held by the
	// partner, removes the assignment, and bumps the partner's rejected
	// counter in the same transaction.
	AbortDelivery(ctx context.Context, orderID, partnerID, reason string) (*Order, error)

	// CancelByCustomer cancels a non-terminal order owned by the customer
	// with the given note.
	CancelByCustomer(ctx context.Context, orderID, customerID, note string) (*Order, error)
}
