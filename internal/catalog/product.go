package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anonb2b/orders-backend/internal/apperr"
)

type Product struct {
	ID            string
	Name          string
	Description   string
	SKU           string
	RetailPrice   decimal.Decimal
	CompanyPrice  decimal.Decimal
	StockQuantity int
	IsActive      bool
	WeightKg      decimal.Decimal
	Dimensions    string // "LxWxH in cm"
	Category      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ProductSpec struct {
	Name         string
	Description  string
	SKU          string
	RetailPrice  decimal.Decimal
	CompanyPrice decimal.Decimal
	StockQty     int
	WeightKg     decimal.Decimal
	Dimensions   string
	Category     string
}

// NormalizeSKU trims and upper-cases; SKUs are stored and compared in this form.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// Validate checks the spec and returns it with the SKU normalized.
// Company price must stay strictly below retail price.
func (s ProductSpec) Validate() (ProductSpec, error) {
	s.SKU = NormalizeSKU(s.SKU)
	if s.Name == "" {
		return s, apperr.Validation("product name is required")
	}
	if s.SKU == "" {
		return s, apperr.Validation("sku is required")
	}
	if s.RetailPrice.LessThanOrEqual(decimal.Zero) {
		return s, apperr.Validation("retail price must be positive")
	}
	if s.CompanyPrice.LessThanOrEqual(decimal.Zero) {
		return s, apperr.Validation("company price must be positive")
	}
	if s.CompanyPrice.GreaterThanOrEqual(s.RetailPrice) {
		return s, apperr.Validation("company price must be less than retail price")
	}
	if s.StockQty < 0 {
		return s, apperr.Validation("stock quantity cannot be negative")
	}
	return s, nil
}
