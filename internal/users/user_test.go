package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessTypeValid(t *testing.T) {
	assert.True(t, RetailStore.Valid())
	assert.True(t, Company.Valid())
	assert.False(t, BusinessType("").Valid())
	assert.False(t, BusinessType("company").Valid())
	assert.False(t, BusinessType("WHOLESALE").Valid())
}
