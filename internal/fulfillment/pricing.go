package fulfillment

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anonb2b/orders-backend/internal/apperr"
	"github.com/anonb2b/orders-backend/internal/orders"
	"github.com/anonb2b/orders-backend/internal/users"
)

type LineInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// productView is what the planner needs to know about a product row; the
// coordinator fills it from the locked rows.
type productView struct {
	ID      string
	Retail  decimal.Decimal
	Company decimal.Decimal
	Active  bool
	Stock   int
}

// unitPrice applies the pricing-tier rule: company accounts buy at company
// price, everyone else at retail.
func unitPrice(tier users.BusinessType, p productView) decimal.Decimal {
	if tier == users.Company {
		return p.Company
	}
	return p.Retail
}

// plan is the priced, validated shape of an order before anything is written.
type plan struct {
	Items    []orders.Item
	Subtotal decimal.Decimal
	// Required sums quantities per product (duplicate lines are legal);
	// LockOrder is ascending product id, the order locks are taken in.
	Required  map[string]int
	LockOrder []string
}

// buildPlan validates the item list against the product views and snapshots
// tier prices. It writes nothing.
func buildPlan(tier users.BusinessType, lines []LineInput, products map[string]productView) (*plan, error) {
	if len(lines) == 0 {
		return nil, apperr.Validation("order must contain at least one item")
	}

	p := &plan{
		Subtotal: decimal.Zero,
		Required: make(map[string]int, len(lines)),
	}
	for _, ln := range lines {
		if ln.Quantity <= 0 {
			return nil, apperr.Validation("quantity must be positive for product %s", ln.ProductID)
		}
		pv, ok := products[ln.ProductID]
		if !ok || !pv.Active {
			return nil, apperr.NotFound("product %s not found", ln.ProductID)
		}
		unit := unitPrice(tier, pv)
		total := unit.Mul(decimal.NewFromInt(int64(ln.Quantity)))
		p.Items = append(p.Items, orders.Item{
			ID:         uuid.NewString(),
			ProductID:  ln.ProductID,
			Quantity:   ln.Quantity,
			UnitPrice:  unit,
			TotalPrice: total,
		})
		p.Subtotal = p.Subtotal.Add(total)
		p.Required[ln.ProductID] += ln.Quantity
	}

	p.LockOrder = make([]string, 0, len(p.Required))
	for id := range p.Required {
		p.LockOrder = append(p.LockOrder, id)
	}
	sort.Strings(p.LockOrder)
	return p, nil
}

// NewOrderNumber builds the human-facing order key: date-prefixed so numbers
// sort roughly by time, uuid fragment so they never collide.
func NewOrderNumber(now time.Time) string {
	frag := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:12]
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), frag)
}
