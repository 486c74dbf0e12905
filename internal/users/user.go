package users

import "time"

// BusinessType is the buyer's pricing tier: company accounts see company
// prices, retail stores see retail prices.
type BusinessType string

const (
	RetailStore BusinessType = "RETAIL_STORE"
	Company     BusinessType = "COMPANY"
)

func (b BusinessType) Valid() bool {
	return b == RetailStore || b == Company
}

type User struct {
	ID             string
	Email          string
	Phone          string
	HashedPassword string
	BusinessName   string
	GSTIN          string
	BusinessType   BusinessType
	IsActive       bool
	IsVerified     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
