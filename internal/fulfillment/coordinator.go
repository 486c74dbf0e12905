// Package fulfillment turns a validated order request into one atomic write:
// stock decrements, the order row and its items commit together or not at all.
package fulfillment

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/anonb2b/orders-backend/internal/apperr"
	"github.com/anonb2b/orders-backend/internal/orders"
	"github.com/anonb2b/orders-backend/internal/users"
)

type Coordinator struct {
	DB     *pgxpool.Pool
	Ledger *orders.Ledger
	// FlatShipping applies when the request carries no shipping cost.
	FlatShipping decimal.Decimal
}

type CreateOrderInput struct {
	UserID                string
	DeliveryAddressID     string
	Items                 []LineInput
	TaxAmount             decimal.Decimal
	ShippingCost          *decimal.Decimal
	EstimatedDeliveryDate *time.Time
	Notes                 string
}

// CreateOrder runs the whole contract in one transaction. Product rows are
// locked in ascending id order so two concurrent multi-item orders cannot
// deadlock each other.
func (c *Coordinator) CreateOrder(ctx context.Context, in CreateOrderInput) (*orders.Order, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Validation("order must contain at least one item")
	}
	if in.TaxAmount.IsNegative() {
		return nil, apperr.Validation("tax amount cannot be negative")
	}
	shipping := c.FlatShipping
	if in.ShippingCost != nil {
		if in.ShippingCost.IsNegative() {
			return nil, apperr.Validation("shipping cost cannot be negative")
		}
		shipping = *in.ShippingCost
	}

	tx, err := c.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperr.Internal(err, "begin create order")
	}
	defer tx.Rollback(ctx)

	// buyer tier decides which of the two catalog prices is snapshotted
	var tier users.BusinessType
	err = tx.QueryRow(ctx, `SELECT business_type FROM users WHERE id=$1 AND is_active`, in.UserID).Scan(&tier)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user %s not found", in.UserID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "query user tier")
	}

	var owned bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM addresses WHERE id=$1 AND user_id=$2)`,
		in.DeliveryAddressID, in.UserID).Scan(&owned)
	if err != nil {
		return nil, apperr.Internal(err, "check delivery address")
	}
	if !owned {
		return nil, apperr.NotFound("address %s not found for user %s", in.DeliveryAddressID, in.UserID)
	}

	views, err := lockProducts(ctx, tx, in.Items)
	if err != nil {
		return nil, err
	}
	p, err := buildPlan(tier, in.Items, views)
	if err != nil {
		return nil, err
	}

	// all-or-nothing: any short line aborts the transaction untouched
	for _, productID := range p.LockOrder {
		need := p.Required[productID]
		have := views[productID].Stock
		if have < need {
			return nil, apperr.InvalidState(
				"insufficient stock for product %s: have %d, need %d", productID, have, need)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE products SET stock_quantity = stock_quantity - $2, updated_at=now()
			WHERE id=$1`, productID, need); err != nil {
			return nil, apperr.Internal(err, "reserve stock")
		}
	}

	now := time.Now().UTC()
	o := &orders.Order{
		ID:                    uuid.NewString(),
		OrderNumber:           NewOrderNumber(now),
		UserID:                in.UserID,
		DeliveryAddressID:     in.DeliveryAddressID,
		Status:                orders.StatusPending,
		TotalAmount:           p.Subtotal.Add(in.TaxAmount).Add(shipping),
		TaxAmount:             in.TaxAmount,
		ShippingCost:          shipping,
		EstimatedDeliveryDate: in.EstimatedDeliveryDate,
		Notes:                 in.Notes,
		Items:                 p.Items,
	}
	if err := c.Ledger.InsertTx(ctx, tx, o); err != nil {
		return nil, apperr.Internal(err, "insert order")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internal(err, "commit create order")
	}
	return o, nil
}

// lockProducts takes FOR UPDATE locks on every referenced product in
// ascending id order and returns their current state.
func lockProducts(ctx context.Context, tx pgx.Tx, lines []LineInput) (map[string]productView, error) {
	ids := make(map[string]bool, len(lines))
	ordered := make([]string, 0, len(lines))
	for _, ln := range lines {
		if !ids[ln.ProductID] {
			ids[ln.ProductID] = true
			ordered = append(ordered, ln.ProductID)
		}
	}
	sort.Strings(ordered)

	views := make(map[string]productView, len(ordered))
	for _, id := range ordered {
		var v productView
		err := tx.QueryRow(ctx, `
			SELECT id, retail_price, company_price, is_active, stock_quantity
			FROM products WHERE id=$1 FOR UPDATE`, id,
		).Scan(&v.ID, &v.Retail, &v.Company, &v.Active, &v.Stock)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("product %s not found", id)
		}
		if err != nil {
			return nil, apperr.Internal(err, "lock product")
		}
		views[id] = v
	}
	return views, nil
}
