package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meatkart/meatkart/internal/domain/partner"
)

const getPartnerSQL = `SELECT id, name, phone, status, is_active,
	total_deliveries, total_accepted, total_rejected, rating, store_id, created_at
	FROM delivery_partners WHERE id = $1`

const partnerDocsSQL = `SELECT doc_type, status
	FROM partner_documents WHERE partner_id = $1`

const partnerAssignedSQL = `SELECT order_id
	FROM partner_assigned_orders WHERE partner_id = $1 ORDER BY assigned_at`

// incrementRejectedSQL is an in-database increment so concurrent rejections
// cannot lose updates.
const incrementRejectedSQL = `UPDATE delivery_partners
	SET total_rejected = total_rejected + 1 WHERE id = $1`

const setDocumentStatusSQL = `INSERT INTO partner_documents (partner_id, doc_type, status, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (partner_id, doc_type) DO UPDATE SET
		status = EXCLUDED.status,
		updated_at = NOW()`

var _ partner.Repository = (*PartnerRepository)(nil)

// PartnerRepository implements partner.Repository backed by PostgreSQL.
type PartnerRepository struct {
	pool *pgxpool.Pool
}

// NewPartnerRepository returns a PartnerRepository that uses the given pool.
func NewPartnerRepository(pool *pgxpool.Pool) *PartnerRepository {
	return &PartnerRepository{pool: pool}
}

func (r *PartnerRepository) GetByID(ctx context.Context, id string) (*partner.DeliveryPartner, error) {
	var p partner.DeliveryPartner
	err := r.pool.QueryRow(ctx, getPartnerSQL, id).Scan(
		&p.ID, &p.Name, &p.Phone, &p.Status, &p.IsActive,
		&p.TotalDeliveries, &p.TotalAccepted, &p.TotalRejected,
		&p.Rating, &p.StoreID, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, partner.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting delivery partner %q", id)
	}

	p.Documents, err = r.documents(ctx, id)
	if err != nil {
		return nil, err
	}
	p.AssignedOrders, err = r.assignedOrders(ctx, id)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *PartnerRepository) IncrementRejected(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, incrementRejectedSQL, id)
	if err != nil {
		return errors.Wrapf(err, "incrementing rejections for partner %q", id)
	}
	if tag.RowsAffected() == 0 {
		return partner.ErrNotFound
	}
	return nil
}

func (r *PartnerRepository) SetDocumentStatus(ctx context.Context, id, docType string, status partner.DocumentStatus) error {
	if _, err := r.pool.Exec(ctx, setDocumentStatusSQL, id, docType, string(status)); err != nil {
		return errors.Wrapf(err, "setting %q document status for partner %q", docType, id)
	}
	return nil
}

func (r *PartnerRepository) documents(ctx context.Context, id string) (map[string]partner.DocumentStatus, error) {
	rows, err := r.pool.Query(ctx, partnerDocsSQL, id)
	if err != nil {
		return nil, errors.Wrap(err, "listing partner documents")
	}
	defer rows.Close()

	docs := make(map[string]partner.DocumentStatus)
	for rows.Next() {
		var docType, status string
		if err := rows.Scan(&docType, &status); err != nil {
			return nil, errors.Wrap(err, "scanning document row")
		}
		docs[docType] = partner.DocumentStatus(status)
	}
	return docs, rows.Err()
}

func (r *PartnerRepository) assignedOrders(ctx context.Context, id string) ([]string, error) {
	rows, err := r.pool.Query(ctx, partnerAssignedSQL, id)
	if err != nil {
		return nil, errors.Wrap(err, "listing assigned orders")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var orderID string
		if err := rows.Scan(&orderID); err != nil {
			return nil, errors.Wrap(err, "scanning assignment row")
		}
		out = append(out, orderID)
	}
	return out, rows.Err()
}
