package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad input")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("product %s", "p1")))
	assert.Equal(t, KindConflict, KindOf(Conflict("duplicate sku")))
	assert.Equal(t, KindInvalidState, KindOf(InvalidState("stock cannot go negative")))
	assert.Equal(t, KindInvalidTransition, KindOf(InvalidTransition("delivered is terminal")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindOf_WrappedChain(t *testing.T) {
	inner := NotFound("address a1")
	wrapped := fmt.Errorf("set default: %w", inner)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
}

func TestInternal_PreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause, "query orders")
	require.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Contains(t, err.Error(), "query orders")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestKindCodes_Stable(t *testing.T) {
	codes := map[Kind]string{
		KindValidation:        "VALIDATION_ERROR",
		KindNotFound:          "NOT_FOUND",
		KindConflict:          "CONFLICT",
		KindInvalidState:      "INVALID_STATE",
		KindInvalidTransition: "INVALID_TRANSITION",
		KindInternal:          "INTERNAL",
	}
	for k, want := range codes {
		assert.Equal(t, want, k.Code())
	}
	seen := map[string]bool{}
	for k := range codes {
		require.False(t, seen[k.Code()], "duplicate code %s", k.Code())
		seen[k.Code()] = true
	}
}
