// Package partner holds the delivery-partner aggregate: verification state,
// running counters, and order assignments.
package partner

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested delivery partner does not exist.
var ErrNotFound = errors.New("delivery partner not found")

// Status is the account-level verification status of a partner.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

// DocumentStatus is the verification status of a single uploaded document.
type DocumentStatus string

const (
	DocPending  DocumentStatus = "pending"
	DocVerified DocumentStatus = "verified"
	DocRejected DocumentStatus = "rejected"
)

// DeliveryPartner is the courier principal. The counters are maintained by
// atomic increments at the persistence layer; application code never does a
// read-modify-write on them.
type DeliveryPartner struct {
	ID              string                    `json:"id"`
	Name            string                    `json:"name"`
	Phone           string                    `json:"phone"`
	Status          Status                    `json:"status"`
	Documents       map[string]DocumentStatus `json:"documents"`
	IsActive        bool                      `json:"isActive"`
	TotalDeliveries int                       `json:"totalDeliveries"`
	TotalAccepted   int                       `json:"totalAccepted"`
	TotalRejected   int                       `json:"totalRejected"`
	Rating          decimal.Decimal           `json:"rating"`
	AssignedOrders  []string                  `json:"assignedOrders"`
	StoreID         *string                   `json:"storeId,omitempty"`
	CreatedAt       time.Time                 `json:"createdAt"`
}

// OverallDocumentStatus derives the aggregate verification status from the
// per-document statuses: rejected if any document is rejected, verified only
// when every document is verified, pending otherwise (including no docs).
func (p *DeliveryPartner) OverallDocumentStatus() DocumentStatus {
	if len(p.Documents) == 0 {
		return DocPending
	}
	allVerified := true
	for _, s := range p.Documents {
		switch s {
		case DocRejected:
			return DocRejected
		case DocVerified:
		default:
			allVerified = false
		}
	}
	if allVerified {
		return DocVerified
	}
	return DocPending
}

// Repository defines persistence operations for delivery partners.
type Repository interface {
	GetByID(ctx context.Context, id string) (*DeliveryPartner, error)
	// IncrementRejected atomically bumps the partner's rejection counter.
	IncrementRejected(ctx context.Context, id string) error
	// SetDocumentStatus updates one document's verification status.
	SetDocumentStatus(ctx context.Context, id, docType string, status DocumentStatus) error
}
