package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonb2b/orders-backend/internal/apperr"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func validSpec() ProductSpec {
	return ProductSpec{
		Name:         "A4 Paper Ream",
		SKU:          "  pap-a4-500 ",
		RetailPrice:  d("299.00"),
		CompanyPrice: d("249.50"),
		StockQty:     120,
	}
}

func TestValidate_NormalizesSKU(t *testing.T) {
	spec, err := validSpec().Validate()
	require.NoError(t, err)
	assert.Equal(t, "PAP-A4-500", spec.SKU)
}

func TestValidate_PriceInvariant(t *testing.T) {
	cases := []struct {
		name    string
		retail  string
		company string
		wantErr bool
	}{
		{"company below retail", "100.00", "99.99", false},
		{"company equals retail", "100.00", "100.00", true},
		{"company above retail", "100.00", "100.01", true},
		{"zero company", "100.00", "0", true},
		{"negative retail", "-1.00", "0.50", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := validSpec()
			spec.RetailPrice = d(tc.retail)
			spec.CompanyPrice = d(tc.company)
			_, err := spec.Validate()
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	spec := validSpec()
	spec.Name = ""
	_, err := spec.Validate()
	assert.True(t, apperr.IsValidation(err))

	spec = validSpec()
	spec.SKU = "   "
	_, err = spec.Validate()
	assert.True(t, apperr.IsValidation(err))

	spec = validSpec()
	spec.StockQty = -1
	_, err = spec.Validate()
	assert.True(t, apperr.IsValidation(err))
}
