package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID                    string
	OrderNumber           string
	UserID                string
	DeliveryAddressID     string
	Status                Status
	TotalAmount           decimal.Decimal
	TaxAmount             decimal.Decimal
	ShippingCost          decimal.Decimal
	EstimatedDeliveryDate *time.Time
	ActualDeliveryDate    *time.Time
	Notes                 string
	Items                 []Item
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Item snapshots the product price at order time; later catalog price changes
// never touch it.
type Item struct {
	ID         string
	OrderID    string
	ProductID  string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
}
