package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonb2b/orders-backend/internal/apperr"
)

func TestSpecValidate(t *testing.T) {
	spec := Spec{
		AddressLine1: "14 MG Road",
		City:         "Bengaluru",
		State:        "Karnataka",
		PostalCode:   "560001",
	}
	got, err := spec.Validate()
	require.NoError(t, err)
	assert.Equal(t, "India", got.Country, "country defaults when empty")

	spec.Country = "Nepal"
	got, err = spec.Validate()
	require.NoError(t, err)
	assert.Equal(t, "Nepal", got.Country)
}

func TestSpecValidate_Missing(t *testing.T) {
	cases := []Spec{
		{City: "Pune", State: "MH", PostalCode: "411001"},
		{AddressLine1: "x", State: "MH", PostalCode: "411001"},
		{AddressLine1: "x", City: "Pune", PostalCode: "411001"},
		{AddressLine1: "x", City: "Pune", State: "MH"},
	}
	for _, spec := range cases {
		_, err := spec.Validate()
		assert.True(t, apperr.IsValidation(err), "spec %+v", spec)
	}
}
