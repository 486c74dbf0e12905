package orders

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anonb2b/orders-backend/internal/apperr"
)

// Ledger owns order rows. Orders are never deleted; the only mutation after
// creation is a status transition.
type Ledger struct{ DB *pgxpool.Pool }

const orderCols = `id, order_number, user_id, delivery_address_id, status, total_amount,
	tax_amount, shipping_cost, estimated_delivery_date, actual_delivery_date,
	COALESCE(notes,''), created_at, COALESCE(updated_at, created_at)`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.DeliveryAddressID, &o.Status,
		&o.TotalAmount, &o.TaxAmount, &o.ShippingCost, &o.EstimatedDeliveryDate,
		&o.ActualDeliveryDate, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// InsertTx writes an order and its items inside the caller's transaction.
// Used by the fulfillment coordinator so the order, its items and the stock
// decrements commit as one unit.
func (l *Ledger) InsertTx(ctx context.Context, tx pgx.Tx, o *Order) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO orders (id, order_number, user_id, delivery_address_id, status,
		                    total_amount, tax_amount, shipping_cost,
		                    estimated_delivery_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,''))
		RETURNING created_at`,
		o.ID, o.OrderNumber, o.UserID, o.DeliveryAddressID, o.Status,
		o.TotalAmount, o.TaxAmount, o.ShippingCost, o.EstimatedDeliveryDate, o.Notes,
	).Scan(&o.CreatedAt)
	if err != nil {
		return err
	}
	o.UpdatedAt = o.CreatedAt
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		if err := tx.QueryRow(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, total_price)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING created_at`,
			it.ID, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.TotalPrice,
		).Scan(&it.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

// Transition moves an order along the status graph. The row is locked for the
// check-and-write; entering DELIVERED stamps actual_delivery_date in the same
// statement, and nothing else ever touches that column. The returned prior
// status comes from the locked read, so it is exact even under concurrent
// transitions.
func (l *Ledger) Transition(ctx context.Context, orderID string, next Status) (*Order, Status, error) {
	if !next.Valid() {
		return nil, "", apperr.Validation("unknown order status %q", next)
	}
	tx, err := l.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, "", apperr.Internal(err, "begin transition")
	}
	defer tx.Rollback(ctx)

	var cur Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", apperr.NotFound("order %s not found", orderID)
	}
	if err != nil {
		return nil, "", apperr.Internal(err, "lock order")
	}
	if !CanTransition(cur, next) {
		return nil, "", apperr.InvalidTransition("cannot move order from %s to %s", cur, next)
	}

	o, err := scanOrder(tx.QueryRow(ctx, `
		UPDATE orders
		SET status=$2,
		    actual_delivery_date = CASE WHEN $2 = 'DELIVERED' THEN now() ELSE actual_delivery_date END,
		    updated_at=now()
		WHERE id=$1
		RETURNING `+orderCols, orderID, next))
	if err != nil {
		return nil, "", apperr.Internal(err, "update order status")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, "", apperr.Internal(err, "commit transition")
	}
	o.Items, err = l.items(ctx, o.ID)
	if err != nil {
		return nil, "", err
	}
	return o, cur, nil
}

func (l *Ledger) GetByID(ctx context.Context, orderID string) (*Order, error) {
	return l.one(ctx, `WHERE id=$1`, orderID)
}

func (l *Ledger) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	return l.one(ctx, `WHERE order_number=$1`, orderNumber)
}

func (l *Ledger) ListByUser(ctx context.Context, userID string, skip, limit int) ([]Order, error) {
	return l.list(ctx, `WHERE user_id=$3 ORDER BY created_at DESC OFFSET $1 LIMIT $2`,
		skip, pageLimit(limit), userID)
}

func (l *Ledger) ListByStatus(ctx context.Context, status Status, skip, limit int) ([]Order, error) {
	if !status.Valid() {
		return nil, apperr.Validation("unknown order status %q", status)
	}
	return l.list(ctx, `WHERE status=$3 ORDER BY created_at DESC OFFSET $1 LIMIT $2`,
		skip, pageLimit(limit), status)
}

func (l *Ledger) ListByDateRange(ctx context.Context, from, to time.Time, skip, limit int) ([]Order, error) {
	if to.Before(from) {
		return nil, apperr.Validation("date range end precedes start")
	}
	return l.list(ctx, `WHERE created_at >= $3 AND created_at <= $4
		ORDER BY created_at DESC OFFSET $1 LIMIT $2`,
		skip, pageLimit(limit), from, to)
}

// ListOverdue returns undelivered orders whose estimate has passed, soonest
// overdue first.
func (l *Ledger) ListOverdue(ctx context.Context, skip, limit int) ([]Order, error) {
	return l.list(ctx, `WHERE estimated_delivery_date < now()
		AND status IN ('CONFIRMED','PROCESSING','SHIPPED')
		ORDER BY estimated_delivery_date ASC OFFSET $1 LIMIT $2`,
		skip, pageLimit(limit))
}

func (l *Ledger) one(ctx context.Context, where string, args ...any) (*Order, error) {
	o, err := scanOrder(l.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders `+where, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "query order")
	}
	o.Items, err = l.items(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (l *Ledger) list(ctx context.Context, tail string, args ...any) ([]Order, error) {
	rows, err := l.DB.Query(ctx, `SELECT `+orderCols+` FROM orders `+tail, args...)
	if err != nil {
		return nil, apperr.Internal(err, "query orders")
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, apperr.Internal(err, "scan order")
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "read orders")
	}
	for i := range out {
		out[i].Items, err = l.items(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (l *Ledger) items(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := l.DB.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, total_price, created_at
		FROM order_items WHERE order_id=$1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, apperr.Internal(err, "query order items")
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity,
			&it.UnitPrice, &it.TotalPrice, &it.CreatedAt); err != nil {
			return nil, apperr.Internal(err, "scan order item")
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "read order items")
	}
	return out, nil
}

func pageLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
