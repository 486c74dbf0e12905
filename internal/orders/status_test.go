package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition_MainSequence(t *testing.T) {
	seq := []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered}
	for i := 0; i < len(seq)-1; i++ {
		assert.True(t, CanTransition(seq[i], seq[i+1]), "%s -> %s", seq[i], seq[i+1])
	}
	// no skipping ahead, no going back
	assert.False(t, CanTransition(StatusPending, StatusProcessing))
	assert.False(t, CanTransition(StatusPending, StatusShipped))
	assert.False(t, CanTransition(StatusConfirmed, StatusPending))
	assert.False(t, CanTransition(StatusShipped, StatusConfirmed))
	assert.False(t, CanTransition(StatusShipped, StatusProcessing))
}

func TestCanTransition_CancelSideExit(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusCancelled))
	assert.True(t, CanTransition(StatusProcessing, StatusCancelled))
	assert.False(t, CanTransition(StatusShipped, StatusCancelled))
	assert.False(t, CanTransition(StatusDelivered, StatusCancelled))
}

func TestCanTransition_TerminalStates(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}
	for _, to := range all {
		assert.False(t, CanTransition(StatusDelivered, to), "DELIVERED -> %s", to)
		assert.False(t, CanTransition(StatusCancelled, to), "CANCELLED -> %s", to)
	}
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusShipped.Terminal())
}

func TestCanTransition_SelfLoopRejected(t *testing.T) {
	for from := range validNext {
		assert.False(t, CanTransition(from, from), "%s -> %s", from, from)
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("SHIPPED")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, st)

	_, err = ParseStatus("shipped")
	assert.Error(t, err, "statuses are case-sensitive on the wire")
	_, err = ParseStatus("RETURNED")
	assert.Error(t, err)
}
