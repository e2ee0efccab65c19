package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meatkart/meatkart/internal/domain/order"
)

const orderColumns = `id, customer_id, store_id, manager_id, delivery_partner_id, picked_up_by,
	items, amount, location, pincode, latitude, longitude, notes, is_urgent,
	status, estimated_delivery, actual_delivery, created_at`

const insertOrderSQL = `INSERT INTO orders
	(id, customer_id, store_id, manager_id, items, amount, location, pincode,
	 latitude, longitude, notes, is_urgent, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

const insertHistorySQL = `INSERT INTO order_history (customer_id, order_id, ordered_at)
	VALUES ($1, $2, $3)`

// debitWalletSQL is conditional on sufficient balance so a concurrent
// checkout can never push the wallet negative.
const debitWalletSQL = `UPDATE customers SET wallet = wallet - $2
	WHERE id = $1 AND wallet >= $2`

const getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

const listCustomerOrdersSQL = `SELECT ` + orderColumns + `
	FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`

const advanceOrderSQL = `UPDATE orders SET status = $4
	WHERE id = $1 AND manager_id = $2 AND status = $3
	RETURNING ` + orderColumns

// claimOrderSQL is the single conditional write that closes the accept
// race: only an unassigned ready order, or one already held by this same
// partner, matches. A concurrent loser matches zero rows and mutates
// nothing.
const claimOrderSQL = `UPDATE orders
	SET status = 'picked_up', delivery_partner_id = $2, picked_up_by = $2
	WHERE id = $1
	  AND ((status = 'ready' AND delivery_partner_id IS NULL)
	       OR (status IN ('ready', 'picked_up') AND delivery_partner_id = $2))
	RETURNING ` + orderColumns

const claimProbeSQL = `SELECT delivery_partner_id FROM orders WHERE id = $1`

const insertAssignmentSQL = `INSERT INTO partner_assigned_orders (partner_id, order_id)
	VALUES ($1, $2) ON CONFLICT DO NOTHING`

const incrementAcceptedSQL = `UPDATE delivery_partners
	SET total_accepted = total_accepted + 1 WHERE id = $1`

const startDeliverySQL = `UPDATE orders SET status = 'in_transit', estimated_delivery = $3
	WHERE id = $1 AND delivery_partner_id = $2 AND status = 'picked_up'
	RETURNING ` + orderColumns

const completeDeliverySQL = `UPDATE orders SET status = 'delivered', actual_delivery = $3
	WHERE id = $1 AND delivery_partner_id = $2 AND status = 'in_transit'
	RETURNING ` + orderColumns

const incrementDeliveriesSQL = `UPDATE delivery_partners
	SET total_deliveries = total_deliveries + 1 WHERE id = $1`

const abortDeliverySQL = `UPDATE orders SET status = 'cancelled', notes = $3
	WHERE id = $1 AND delivery_partner_id = $2 AND status IN ('picked_up', 'in_transit')
	RETURNING ` + orderColumns

const removeAssignmentSQL = `DELETE FROM partner_assigned_orders
	WHERE partner_id = $1 AND order_id = $2`

const cancelByCustomerSQL = `UPDATE orders SET status = 'cancelled', notes = $3
	WHERE id = $1 AND customer_id = $2 AND status NOT IN ('delivered', 'cancelled')
	RETURNING ` + orderColumns

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Checkout persists the order, the history entry, the cart clear, and the
// wallet debit in one transaction. Rollback on any step leaves cart and
// wallet exactly as they were.
func (r *OrderRepository) Checkout(ctx context.Context, o *order.Order, walletDebit int) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrap(err, "marshaling order items")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin checkout tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.CustomerID, o.StoreID, o.ManagerID, itemsJSON, o.Amount,
		o.Location, o.Pincode, o.Latitude, o.Longitude, o.Notes, o.IsUrgent,
		string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "creating order %q", o.ID)
	}

	if _, err := tx.Exec(ctx, insertHistorySQL, o.CustomerID, o.ID, o.CreatedAt); err != nil {
		return errors.Wrap(err, "appending order history")
	}

	if _, err := tx.Exec(ctx, clearCartSQL, o.CustomerID); err != nil {
		return errors.Wrap(err, "clearing cart")
	}

	if walletDebit > 0 {
		tag, err := tx.Exec(ctx, debitWalletSQL, o.CustomerID, walletDebit)
		if err != nil {
			return errors.Wrap(err, "debiting wallet")
		}
		if tag.RowsAffected() == 0 {
			return order.ErrInsufficientWallet
		}
	}

	return errors.Wrap(tx.Commit(ctx), "commit checkout tx")
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, getOrderSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting order %q", id)
	}
	return o, nil
}

func (r *OrderRepository) ListForCustomer(ctx context.Context, customerID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listCustomerOrdersSQL, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "listing customer orders")
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning order row")
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *OrderRepository) AdvanceForManager(ctx context.Context, orderID, managerID string, from, to order.Status) (*order.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, advanceOrderSQL, orderID, managerID, string(from), string(to)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "advancing order %q to %s", orderID, to)
	}
	return o, nil
}

func (r *OrderRepository) Claim(ctx context.Context, orderID, partnerID string) (*order.ClaimResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin claim tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := scanOrder(tx.QueryRow(ctx, claimOrderSQL, orderID, partnerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyClaimMiss(ctx, orderID, partnerID)
		}
		return nil, errors.Wrapf(err, "claiming order %q", orderID)
	}

	tag, err := tx.Exec(ctx, insertAssignmentSQL, partnerID, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "recording assignment")
	}
	newly := tag.RowsAffected() > 0

	if newly {
		if _, err := tx.Exec(ctx, incrementAcceptedSQL, partnerID); err != nil {
			return nil, errors.Wrap(err, "incrementing accepted counter")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit claim tx")
	}

	return &order.ClaimResult{Order: o, NewlyClaimed: newly}, nil
}

// classifyClaimMiss distinguishes a lost race from a plain miss after the
// conditional claim matched nothing. An order held by another partner is a
// conflict; everything else (absent order, wrong state) is not-found.
func (r *OrderRepository) classifyClaimMiss(ctx context.Context, orderID, partnerID string) error {
	var holder *string
	if err := r.pool.QueryRow(ctx, claimProbeSQL, orderID).Scan(&holder); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.ErrNotFound
		}
		return errors.Wrapf(err, "probing order %q", orderID)
	}
	if holder != nil && *holder != partnerID {
		return order.ErrOrderTaken
	}
	return order.ErrNotFound
}

func (r *OrderRepository) StartDelivery(ctx context.Context, orderID, partnerID string, eta time.Time) (*order.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, startDeliverySQL, orderID, partnerID, eta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "starting delivery of order %q", orderID)
	}
	return o, nil
}

func (r *OrderRepository) CompleteDelivery(ctx context.Context, orderID, partnerID string, at time.Time) (*order.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin delivery tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := scanOrder(tx.QueryRow(ctx, completeDeliverySQL, orderID, partnerID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "completing delivery of order %q", orderID)
	}

	if _, err := tx.Exec(ctx, incrementDeliveriesSQL, partnerID); err != nil {
		return nil, errors.Wrap(err, "incrementing delivery counter")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit delivery tx")
	}
	return o, nil
}

func (r *OrderRepository) AbortDelivery(ctx context.Context, orderID, partnerID, reason string) (*order.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin abort tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := scanOrder(tx.QueryRow(ctx, abortDeliverySQL, orderID, partnerID, reason))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "aborting delivery of order %q", orderID)
	}

	if _, err := tx.Exec(ctx, removeAssignmentSQL, partnerID, orderID); err != nil {
		return nil, errors.Wrap(err, "removing assignment")
	}

	if _, err := tx.Exec(ctx, incrementRejectedSQL, partnerID); err != nil {
		return nil, errors.Wrap(err, "incrementing rejected counter")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit abort tx")
	}
	return o, nil
}

func (r *OrderRepository) CancelByCustomer(ctx context.Context, orderID, customerID, note string) (*order.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, cancelByCustomerSQL, orderID, customerID, note))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "cancelling order %q", orderID)
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o         order.Order
		itemsJSON []byte
		status    string
	)
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.StoreID, &o.ManagerID, &o.DeliveryPartnerID, &o.PickedUpBy,
		&itemsJSON, &o.Amount, &o.Location, &o.Pincode, &o.Latitude, &o.Longitude,
		&o.Notes, &o.IsUrgent, &status, &o.EstimatedDelivery, &o.ActualDelivery, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, errors.Wrap(err, "unmarshaling order items")
	}
	o.Status = order.Status(status)
	return &o, nil
}
