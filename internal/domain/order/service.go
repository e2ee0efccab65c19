package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/meatkart/meatkart/internal/domain/catalog"
	"github.com/meatkart/meatkart/internal/domain/customer"
	"github.com/meatkart/meatkart/internal/domain/partner"
	"github.com/meatkart/meatkart/internal/domain/store"
)

// transitDuration is the delivery window promised when a partner starts a
// delivery.
const transitDuration = time.Hour

// CheckoutRequest is the input for placing an order from a customer's cart.
type CheckoutRequest struct {
	CustomerID   string
	Latitude     *float64
	Longitude    *float64
	Pincode      string
	Location     string
	Notes        string
	IsUrgent     bool
	WalletPoints int
	CouponID     string
}

// Service encapsulates checkout and lifecycle business logic.
type Service struct {
	resolver  *store.Resolver
	products  catalog.Repository
	customers customer.Repository
	pricer    *Pricer
	orders    Repository
	partners  partner.Repository
	now       func() time.Time

	placed         metric.Int64Counter
	delivered      metric.Int64Counter
	claimConflicts metric.Int64Counter
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	resolver *store.Resolver,
	products catalog.Repository,
	customers customer.Repository,
	pricer *Pricer,
	orders Repository,
	partners partner.Repository,
	meter metric.Meter,
) (*Service, error) {
	placed, err := meter.Int64Counter("orders.placed")
	if err != nil {
		return nil, errors.Wrap(err, "create placed counter")
	}
	delivered, err := meter.Int64Counter("orders.delivered")
	if err != nil {
		return nil, errors.Wrap(err, "create delivered counter")
	}
	conflicts, err := meter.Int64Counter("orders.claim_conflicts")
	if err != nil {
		return nil, errors.Wrap(err, "create conflicts counter")
	}

	return &Service{
		resolver:       resolver,
		products:       products,
		customers:      customers,
		pricer:         pricer,
		orders:         orders,
		partners:       partners,
		now:            time.Now,
		placed:         placed,
		delivered:      delivered,
		claimConflicts: conflicts,
	}, nil
}

// Checkout turns the customer's cart into an order: resolves the fulfilling
// store, snapshots and prices the cart, and persists everything atomically.
// The cart is cleared and the wallet debited only when the order commits.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if req.Latitude == nil || req.Longitude == nil {
		return nil, ErrMissingCoordinates
	}

	cust, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, errors.Wrap(err, "get customer")
	}

	cart, err := s.customers.ListCart(ctx, req.CustomerID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart")
	}
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	res, err := s.resolver.Resolve(ctx, req.Pincode, *req.Latitude, *req.Longitude)
	if err != nil {
		return nil, err
	}

	// Snapshot the cart against the live catalog. The snapshot holds base
	// unit prices; it is never re-derived after this point.
	items := make([]LineItem, len(cart))
	for i, line := range cart {
		p, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, errors.Wrapf(err, "get product %s", line.ProductID)
		}
		items[i] = LineItem{
			Name:      p.Name,
			Quantity:  line.Quantity,
			UnitPrice: p.Price,
		}
	}

	quote, err := s.pricer.Quote(ctx, items, req.WalletPoints, req.CouponID, cust.Wallet)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:         uuid.New().String(),
		CustomerID: cust.ID,
		StoreID:    res.Store.ID,
		ManagerID:  res.Manager.ID,
		Items:      items,
		Amount:     quote.Total,
		Location:   req.Location,
		Pincode:    req.Pincode,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Notes:      req.Notes,
		IsUrgent:   req.IsUrgent,
		Status:     StatusPending,
		CreatedAt:  s.now(),
	}

	if err := s.orders.Checkout(ctx, o, quote.WalletDebit); err != nil {
		return nil, errors.Wrap(err, "persist order")
	}

	s.placed.Add(ctx, 1)
	return o, nil
}

// Get returns an order when the actor is a participant: the owning
// customer, the fulfilling manager, or the assigned partner. Anyone else
// sees not-found.
func (s *Service) Get(ctx context.Context, orderID, actorID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(o, actorID) {
		return nil, ErrNotFound
	}
	return o, nil
}

// ListForCustomer returns the customer's orders, most recent first.
func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]Order, error) {
	return s.orders.ListForCustomer(ctx, customerID)
}

// AdvanceStatus moves an order along the store-prep chain
// (pending→confirmed→preparing→ready) on behalf of the manager owning the
// order's store. Any precondition failure surfaces as not-found.
func (s *Service) AdvanceStatus(ctx context.Context, managerID, orderID string, to Status) (*Order, error) {
	from, ok := prepChain[to]
	if !ok {
		return nil, ErrInvalidTransition
	}
	return s.orders.AdvanceForManager(ctx, orderID, managerID, from, to)
}

// Scan returns the order a partner is about to accept or reject. Only open
// ready orders and the partner's own assignments are visible.
func (s *Service) Scan(ctx context.Context, partnerID, orderID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == StatusReady && (o.DeliveryPartnerID == nil || *o.DeliveryPartnerID == partnerID) {
		return o, nil
	}
	if o.DeliveryPartnerID != nil && *o.DeliveryPartnerID == partnerID {
		return o, nil
	}
	return nil, ErrNotFound
}

// Accept claims a ready order for the partner. The claim is a single
// conditional write, so under concurrent accepts exactly one partner wins;
// the loser gets ErrOrderTaken and nothing is mutated on its behalf.
// Re-accepting an order the partner already holds is idempotent.
func (s *Service) Accept(ctx context.Context, partnerID, orderID string) (*Order, error) {
	res, err := s.orders.Claim(ctx, orderID, partnerID)
	if err != nil {
		if errors.Is(err, ErrOrderTaken) {
			s.claimConflicts.Add(ctx, 1)
		}
		return nil, err
	}
	return res.Order, nil
}

// Reject records that a partner declined an open ready order. The order is
// left untouched for other partners; only the partner's rejection counter
// moves.
func (s *Service) Reject(ctx context.Context, partnerID, orderID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusReady {
		return nil, ErrNotFound
	}
	if err := s.partners.IncrementRejected(ctx, partnerID); err != nil {
		return nil, errors.Wrap(err, "record rejection")
	}
	return o, nil
}

// StartDelivery moves a picked-up order to in_transit and stamps the
// estimated delivery time. Only the assigned partner may start it.
func (s *Service) StartDelivery(ctx context.Context, partnerID, orderID string) (*Order, error) {
	return s.orders.StartDelivery(ctx, orderID, partnerID, s.now().Add(transitDuration))
}

// CompleteDelivery marks an in-transit order delivered, stamps the actual
// delivery time, and bumps the partner's delivery tally.
func (s *Service) CompleteDelivery(ctx context.Context, partnerID, orderID string) (*Order, error) {
	o, err := s.orders.CompleteDelivery(ctx, orderID, partnerID, s.now())
	if err != nil {
		return nil, err
	}
	s.delivered.Add(ctx, 1)
	return o, nil
}

// AbortDelivery cancels an order the partner has in custody, with a
// mandatory reason. The assignment is removed and the rejection counter
// bumped atomically with the cancellation.
func (s *Service) AbortDelivery(ctx context.Context, partnerID, orderID, reason string) (*Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	return s.orders.AbortDelivery(ctx, orderID, partnerID, reason)
}

// Cancel cancels a non-terminal order on behalf of its owning customer.
// The free-text note is mandatory.
func (s *Service) Cancel(ctx context.Context, customerID, orderID, note string) (*Order, error) {
	if strings.TrimSpace(note) == "" {
		return nil, ErrNoteRequired
	}
	return s.orders.CancelByCustomer(ctx, orderID, customerID, note)
}

func isParticipant(o *Order, actorID string) bool {
	if o.CustomerID == actorID || o.ManagerID == actorID {
		return true
	}
	return o.DeliveryPartnerID != nil && *o.DeliveryPartnerID == actorID
}
