package httpx

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/anonb2b/orders-backend/internal/address"
	"github.com/anonb2b/orders-backend/internal/catalog"
	"github.com/anonb2b/orders-backend/internal/orders"
	"github.com/anonb2b/orders-backend/internal/users"
)

type OrderItemResp struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type OrderResp struct {
	ID                    string          `json:"id"`
	OrderNumber           string          `json:"order_number"`
	UserID                string          `json:"user_id"`
	DeliveryAddressID     string          `json:"delivery_address_id"`
	Status                string          `json:"status"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	TaxAmount             decimal.Decimal `json:"tax_amount"`
	ShippingCost          decimal.Decimal `json:"shipping_cost"`
	EstimatedDeliveryDate *time.Time      `json:"estimated_delivery_date,omitempty"`
	ActualDeliveryDate    *time.Time      `json:"actual_delivery_date,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
	Items                 []OrderItemResp `json:"items"`
	CreatedAt             time.Time       `json:"created_at"`
}

func toOrderResp(o *orders.Order) OrderResp {
	items := make([]OrderItemResp, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResp{
			ID:         it.ID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}
	return OrderResp{
		ID:                    o.ID,
		OrderNumber:           o.OrderNumber,
		UserID:                o.UserID,
		DeliveryAddressID:     o.DeliveryAddressID,
		Status:                string(o.Status),
		TotalAmount:           o.TotalAmount,
		TaxAmount:             o.TaxAmount,
		ShippingCost:          o.ShippingCost,
		EstimatedDeliveryDate: o.EstimatedDeliveryDate,
		ActualDeliveryDate:    o.ActualDeliveryDate,
		Notes:                 o.Notes,
		Items:                 items,
		CreatedAt:             o.CreatedAt,
	}
}

func toOrderResps(os []orders.Order) []OrderResp {
	out := make([]OrderResp, 0, len(os))
	for i := range os {
		out = append(out, toOrderResp(&os[i]))
	}
	return out
}

type ProductResp struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	SKU           string          `json:"sku"`
	RetailPrice   decimal.Decimal `json:"retail_price"`
	CompanyPrice  decimal.Decimal `json:"company_price"`
	StockQuantity int             `json:"stock_quantity"`
	IsActive      bool            `json:"is_active"`
	WeightKg      decimal.Decimal `json:"weight_kg,omitempty"`
	Dimensions    string          `json:"dimensions,omitempty"`
	Category      string          `json:"category,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toProductResp(p *catalog.Product) ProductResp {
	return ProductResp{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		SKU:           p.SKU,
		RetailPrice:   p.RetailPrice,
		CompanyPrice:  p.CompanyPrice,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
		WeightKg:      p.WeightKg,
		Dimensions:    p.Dimensions,
		Category:      p.Category,
		CreatedAt:     p.CreatedAt,
	}
}

func toProductResps(ps []catalog.Product) []ProductResp {
	out := make([]ProductResp, 0, len(ps))
	for i := range ps {
		out = append(out, toProductResp(&ps[i]))
	}
	return out
}

type AddressResp struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	AddressLine1 string    `json:"address_line_1"`
	AddressLine2 string    `json:"address_line_2,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postal_code"`
	Country      string    `json:"country"`
	IsDefault    bool      `json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
}

func toAddressResp(a *address.Address) AddressResp {
	return AddressResp{
		ID:           a.ID,
		UserID:       a.UserID,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
		IsDefault:    a.IsDefault,
		CreatedAt:    a.CreatedAt,
	}
}

func toAddressResps(as []address.Address) []AddressResp {
	out := make([]AddressResp, 0, len(as))
	for i := range as {
		out = append(out, toAddressResp(&as[i]))
	}
	return out
}

type UserResp struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	BusinessName string    `json:"business_name"`
	GSTIN        string    `json:"gstin,omitempty"`
	BusinessType string    `json:"business_type"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

func toUserResp(u *users.User) UserResp {
	return UserResp{
		ID:           u.ID,
		Email:        u.Email,
		Phone:        u.Phone,
		BusinessName: u.BusinessName,
		GSTIN:        u.GSTIN,
		BusinessType: string(u.BusinessType),
		IsActive:     u.IsActive,
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
	}
}
