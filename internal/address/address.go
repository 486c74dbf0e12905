package address

import (
	"time"

	"github.com/anonb2b/orders-backend/internal/apperr"
)

type Address struct {
	ID           string
	UserID       string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
	IsDefault    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Spec struct {
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
}

func (s Spec) Validate() (Spec, error) {
	if s.AddressLine1 == "" {
		return s, apperr.Validation("address line 1 is required")
	}
	if s.City == "" || s.State == "" {
		return s, apperr.Validation("city and state are required")
	}
	if s.PostalCode == "" {
		return s, apperr.Validation("postal code is required")
	}
	if s.Country == "" {
		s.Country = "India"
	}
	return s, nil
}
