package fulfillment

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonb2b/orders-backend/internal/apperr"
	"github.com/anonb2b/orders-backend/internal/users"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testProducts() map[string]productView {
	return map[string]productView{
		"p1": {ID: "p1", Retail: d("100.00"), Company: d("80.00"), Active: true, Stock: 50},
		"p2": {ID: "p2", Retail: d("25.50"), Company: d("19.99"), Active: true, Stock: 5},
		"p3": {ID: "p3", Retail: d("10.00"), Company: d("7.00"), Active: false, Stock: 10},
	}
}

func TestUnitPrice_TierRule(t *testing.T) {
	p := testProducts()["p1"]
	assert.True(t, unitPrice(users.Company, p).Equal(d("80.00")))
	assert.True(t, unitPrice(users.RetailStore, p).Equal(d("100.00")))
}

func TestBuildPlan_SnapshotsTierPrices(t *testing.T) {
	lines := []LineInput{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}}

	p, err := buildPlan(users.Company, lines, testProducts())
	require.NoError(t, err)
	require.Len(t, p.Items, 2)
	assert.True(t, p.Items[0].UnitPrice.Equal(d("80.00")))
	assert.True(t, p.Items[0].TotalPrice.Equal(d("160.00")))
	assert.True(t, p.Items[1].UnitPrice.Equal(d("19.99")))
	assert.True(t, p.Subtotal.Equal(d("179.99")))

	p, err = buildPlan(users.RetailStore, lines, testProducts())
	require.NoError(t, err)
	assert.True(t, p.Subtotal.Equal(d("225.50")))
}

func TestBuildPlan_EmptyAndBadQuantity(t *testing.T) {
	_, err := buildPlan(users.Company, nil, testProducts())
	assert.True(t, apperr.IsValidation(err))

	_, err = buildPlan(users.Company, []LineInput{{ProductID: "p1", Quantity: 0}}, testProducts())
	assert.True(t, apperr.IsValidation(err))

	_, err = buildPlan(users.Company, []LineInput{{ProductID: "p1", Quantity: -2}}, testProducts())
	assert.True(t, apperr.IsValidation(err))
}

func TestBuildPlan_MissingOrInactiveProduct(t *testing.T) {
	_, err := buildPlan(users.Company, []LineInput{{ProductID: "ghost", Quantity: 1}}, testProducts())
	assert.True(t, apperr.IsNotFound(err))

	// inactive products are invisible to ordering
	_, err = buildPlan(users.Company, []LineInput{{ProductID: "p3", Quantity: 1}}, testProducts())
	assert.True(t, apperr.IsNotFound(err))
}

func TestBuildPlan_DuplicateLinesSumRequirements(t *testing.T) {
	lines := []LineInput{
		{ProductID: "p2", Quantity: 2},
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 3},
	}
	p, err := buildPlan(users.RetailStore, lines, testProducts())
	require.NoError(t, err)
	assert.Len(t, p.Items, 3, "duplicate lines stay separate items")
	assert.Equal(t, 5, p.Required["p2"])
	assert.Equal(t, 1, p.Required["p1"])
	assert.Equal(t, []string{"p1", "p2"}, p.LockOrder, "locks taken in ascending id order")
}

func TestNewOrderNumber(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	re := regexp.MustCompile(`^ORD-20260314-[0-9A-F]{12}$`)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := NewOrderNumber(now)
		assert.Regexp(t, re, n)
		require.False(t, seen[n], "order numbers must not collide")
		seen[n] = true
	}
}
